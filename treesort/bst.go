// Copyright (c) 2015-2021, NVIDIA CORPORATION.
// SPDX-License-Identifier: Apache-2.0

package treesort

import (
	"github.com/NVIDIA/treesort/halter"
	"github.com/NVIDIA/treesort/logger"
	"github.com/NVIDIA/treesort/scratch"
	"github.com/NVIDIA/treesort/sortctx"
)

// insertBST adds item below t.root without rebalancing.  Strictly smaller
// items go left, everything else goes right.
func (t *tree[T]) insertBST(item T) {
	newIdx := t.alloc(item)
	if noNode == t.root {
		t.root = newIdx
		return
	}

	cur := t.root
	for {
		curNode := &t.nodes[cur]
		if t.array.Compare(item, curNode.item) < 0 {
			if noNode == curNode.left {
				curNode.left = newIdx
				return
			}
			cur = curNode.left
		} else {
			if noNode == curNode.right {
				curNode.right = newIdx
				return
			}
			cur = curNode.right
		}
	}
}

// binaryTreeSort builds an unbalanced tree in an arena then walks it with an
// explicit stack, since an adversarial input makes the tree a chain of
// array.Len() nodes.
func binaryTreeSort[T any](array *sortctx.Array[T]) (err error) {
	n := array.Len()
	if n <= 1 {
		return
	}

	logger.Tracef("binaryTreeSort of %d elements", n)

	t, err := newTree(array)
	if nil != err {
		return
	}
	defer t.release()

	for i := 0; i < n; i++ {
		err = halter.Trigger(halter.TreeSortInsert)
		if nil != err {
			return
		}
		t.insertBST(array.Read(i))
	}

	stack, err := scratch.Acquire[nodeIndex](n)
	if nil != err {
		return
	}
	defer stack.Release()

	t.emitIterative(stack.Slice)
	return
}
