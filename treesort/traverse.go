// Copyright (c) 2015-2021, NVIDIA CORPORATION.
// SPDX-License-Identifier: Apache-2.0

package treesort

// emitIterative writes the tree in order to positions 0..count-1 of the
// Array.  stack must hold at least as many entries as the tree is high.
func (t *tree[T]) emitIterative(stack []nodeIndex) {
	var (
		out int
		top int
	)

	cur := t.root
	for (noNode != cur) || (top > 0) {
		// push the left spine
		for noNode != cur {
			stack[top] = cur
			top++
			cur = t.nodes[cur].left
		}

		top--
		cur = stack[top]
		t.array.Write(out, t.nodes[cur].item)
		out++
		cur = t.nodes[cur].right
	}
}

// emitRecursive is the left-root-right form of emitIterative.  Its depth is
// the tree height, so it is only used on balanced trees.
func (t *tree[T]) emitRecursive() {
	var out int
	t.emitSubtree(t.root, &out)
}

func (t *tree[T]) emitSubtree(idx nodeIndex, out *int) {
	if noNode == idx {
		return
	}
	curNode := &t.nodes[idx]
	t.emitSubtree(curNode.left, out)
	t.array.Write(*out, curNode.item)
	*out++
	t.emitSubtree(curNode.right, out)
}
