// Copyright (c) 2015-2021, NVIDIA CORPORATION.
// SPDX-License-Identifier: Apache-2.0

package treesort

import (
	"github.com/NVIDIA/treesort/halter"
	"github.com/NVIDIA/treesort/logger"
	"github.com/NVIDIA/treesort/scratch"
	"github.com/NVIDIA/treesort/sortctx"
)

// maxAVLHeight bounds the height of an AVL tree of at most maxArenaNodes
// nodes (1.44 * log2(2^31 + 2) is under 45).
const maxAVLHeight = 64

// pathStep records a node visited on the way down and the branch taken.
type pathStep struct {
	idx      nodeIndex
	wentLeft bool
}

func (t *tree[T]) height(idx nodeIndex) int32 {
	if noNode == idx {
		return 0
	}
	return t.nodes[idx].height
}

func (t *tree[T]) updateHeight(idx nodeIndex) {
	curNode := &t.nodes[idx]
	leftHeight := t.height(curNode.left)
	rightHeight := t.height(curNode.right)
	if leftHeight > rightHeight {
		curNode.height = 1 + leftHeight
	} else {
		curNode.height = 1 + rightHeight
	}
}

func (t *tree[T]) balanceFactor(idx nodeIndex) int32 {
	return t.height(t.nodes[idx].left) - t.height(t.nodes[idx].right)
}

// rotateRight lifts y's left child into y's place:
//
//	    y            x
//	   / \          / \
//	  x   C   =>   A   y
//	 / \              / \
//	A   B            B   C
func (t *tree[T]) rotateRight(y nodeIndex) (x nodeIndex) {
	x = t.nodes[y].left
	t.nodes[y].left = t.nodes[x].right
	t.nodes[x].right = y
	t.updateHeight(y)
	t.updateHeight(x)
	t.rotations++
	return
}

// rotateLeft is the mirror of rotateRight:
//
//	  x                y
//	 / \              / \
//	A   y     =>     x   C
//	   / \          / \
//	  B   C        A   B
func (t *tree[T]) rotateLeft(x nodeIndex) (y nodeIndex) {
	y = t.nodes[x].right
	t.nodes[x].right = t.nodes[y].left
	t.nodes[y].left = x
	t.updateHeight(x)
	t.updateHeight(y)
	t.rotations++
	return
}

// rebalance restores the AVL invariant at idx, whose height is current and
// whose subtrees are balanced, and returns the root of the resulting subtree.
func (t *tree[T]) rebalance(idx nodeIndex) nodeIndex {
	balance := t.balanceFactor(idx)

	if balance > 1 {
		if t.balanceFactor(t.nodes[idx].left) < 0 {
			t.nodes[idx].left = t.rotateLeft(t.nodes[idx].left)
		}
		return t.rotateRight(idx)
	}

	if balance < -1 {
		if t.balanceFactor(t.nodes[idx].right) > 0 {
			t.nodes[idx].right = t.rotateRight(t.nodes[idx].right)
		}
		return t.rotateLeft(idx)
	}

	return idx
}

// insertAVLRecursive adds item and rebalances on the way back up.
func (t *tree[T]) insertAVLRecursive(item T) {
	newIdx := t.alloc(item)
	t.root = t.insertAVLSubtree(t.root, newIdx)
}

func (t *tree[T]) insertAVLSubtree(idx nodeIndex, newIdx nodeIndex) nodeIndex {
	if noNode == idx {
		return newIdx
	}

	if t.array.Compare(t.nodes[newIdx].item, t.nodes[idx].item) < 0 {
		t.nodes[idx].left = t.insertAVLSubtree(t.nodes[idx].left, newIdx)
	} else {
		t.nodes[idx].right = t.insertAVLSubtree(t.nodes[idx].right, newIdx)
	}

	t.updateHeight(idx)
	return t.rebalance(idx)
}

// insertAVLIterative records the descent in path, links the new leaf, then
// walks path bottom-up reattaching each (possibly rotated) child to its
// parent and rebalancing the parent.
func (t *tree[T]) insertAVLIterative(item T) {
	var (
		path  [maxAVLHeight]pathStep
		depth int
	)

	newIdx := t.alloc(item)

	cur := t.root
	for noNode != cur {
		wentLeft := t.array.Compare(item, t.nodes[cur].item) < 0
		path[depth] = pathStep{idx: cur, wentLeft: wentLeft}
		depth++
		if wentLeft {
			cur = t.nodes[cur].left
		} else {
			cur = t.nodes[cur].right
		}
	}

	child := newIdx
	for depth > 0 {
		depth--
		parent := path[depth]
		if parent.wentLeft {
			t.nodes[parent.idx].left = child
		} else {
			t.nodes[parent.idx].right = child
		}
		t.updateHeight(parent.idx)
		child = t.rebalance(parent.idx)
	}
	t.root = child
}

// balancedTreeSort builds an AVL tree in an arena using the insertion
// strategy then writes it back using the traversal strategy.
func balancedTreeSort[T any](array *sortctx.Array[T], insertion Strategy, traversal Strategy) (err error) {
	n := array.Len()
	if n <= 1 {
		return
	}

	logger.Tracef("balancedTreeSort of %d elements with %v insertion and %v traversal", n, insertion, traversal)

	t, err := newTree(array)
	if nil != err {
		return
	}
	defer t.release()

	insert := t.insertAVLIterative
	if Recursive == insertion {
		insert = t.insertAVLRecursive
	}

	for i := 0; i < n; i++ {
		err = halter.Trigger(halter.TreeSortInsert)
		if nil != err {
			globals.stats.Rotations.Add(t.rotations)
			return
		}
		insert(array.Read(i))
	}

	globals.stats.Rotations.Add(t.rotations)
	globals.stats.AVLHeight.Add(uint64(t.height(t.root)))

	if Recursive == traversal {
		t.emitRecursive()
		return
	}

	stack, err := scratch.Acquire[nodeIndex](int(t.height(t.root)))
	if nil != err {
		return
	}
	defer stack.Release()

	t.emitIterative(stack.Slice)
	return
}
