// Copyright (c) 2015-2021, NVIDIA CORPORATION.
// SPDX-License-Identifier: Apache-2.0

package treesort

import (
	"math"

	"github.com/NVIDIA/treesort/blunder"
	"github.com/NVIDIA/treesort/scratch"
	"github.com/NVIDIA/treesort/sortctx"
)

// nodeIndex addresses a node in an arena; noNode marks an absent child.
type nodeIndex int32

const noNode nodeIndex = -1

// maxArenaNodes is the largest tree an arena can address.
const maxArenaNodes = math.MaxInt32

// node is one arena slot.  item is the element value as it was read through
// the Array when the node was created; height is only maintained by the AVL
// insertions.
type node[T any] struct {
	item   T
	left   nodeIndex
	right  nodeIndex
	height int32
}

// tree is the per-call state of an arena tree sort.  Node i is the i'th node
// allocated; nodes are never freed individually, the arena is released as a
// unit by release().
type tree[T any] struct {
	array     *sortctx.Array[T]
	arena     *scratch.Buffer[node[T]]
	nodes     []node[T]
	count     int
	root      nodeIndex
	rotations uint64
}

// newTree acquires an arena of array.Len() nodes.  On success the caller must
// call release() exactly once.
func newTree[T any](array *sortctx.Array[T]) (t *tree[T], err error) {
	n := array.Len()
	if n > maxArenaNodes {
		err = blunder.NewError(blunder.TooBigError, "%d elements exceeds the arena limit of %d", n, maxArenaNodes)
		return
	}

	arena, err := scratch.Acquire[node[T]](n)
	if nil != err {
		return
	}

	t = &tree[T]{
		array: array,
		arena: arena,
		nodes: arena.Slice,
		root:  noNode,
	}
	return
}

func (t *tree[T]) release() {
	t.nodes = nil
	t.arena.Release()
}

// alloc places item in the next free arena slot as a leaf.
func (t *tree[T]) alloc(item T) (idx nodeIndex) {
	idx = nodeIndex(t.count)
	t.nodes[idx] = node[T]{item: item, left: noNode, right: noNode, height: 1}
	t.count++
	return
}
