// Copyright (c) 2015-2021, NVIDIA CORPORATION.
// SPDX-License-Identifier: Apache-2.0

package treesort

import (
	"github.com/NVIDIA/treesort/halter"
	"github.com/NVIDIA/treesort/logger"
	"github.com/NVIDIA/treesort/sortctx"
)

// naiveNode is a heap allocated tree node linked by pointers.
type naiveNode[T any] struct {
	item  T
	left  *naiveNode[T]
	right *naiveNode[T]
}

// naiveInsert places item exactly where insertBST would.
func naiveInsert[T any](array *sortctx.Array[T], root **naiveNode[T], item T) {
	link := root
	for nil != *link {
		if array.Compare(item, (*link).item) < 0 {
			link = &(*link).left
		} else {
			link = &(*link).right
		}
	}
	*link = &naiveNode[T]{item: item}
}

// naiveBinaryTreeSort is binaryTreeSort with one allocation per node and a
// growable stack, leaving all reclamation to the garbage collector.
func naiveBinaryTreeSort[T any](array *sortctx.Array[T]) (err error) {
	var (
		root  *naiveNode[T]
		stack []*naiveNode[T]
	)

	n := array.Len()
	if n <= 1 {
		return
	}

	logger.Tracef("naiveBinaryTreeSort of %d elements", n)

	for i := 0; i < n; i++ {
		err = halter.Trigger(halter.TreeSortInsert)
		if nil != err {
			return
		}
		naiveInsert(array, &root, array.Read(i))
	}

	out := 0
	cur := root
	for (nil != cur) || (len(stack) > 0) {
		for nil != cur {
			stack = append(stack, cur)
			cur = cur.left
		}
		cur = stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		array.Write(out, cur.item)
		out++
		cur = cur.right
	}
	return
}
