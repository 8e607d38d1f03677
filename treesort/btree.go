// Copyright (c) 2015-2021, NVIDIA CORPORATION.
// SPDX-License-Identifier: Apache-2.0

package treesort

import (
	"github.com/google/btree"

	"github.com/NVIDIA/treesort/halter"
	"github.com/NVIDIA/treesort/logger"
	"github.com/NVIDIA/treesort/scratch"
	"github.com/NVIDIA/treesort/sortctx"
)

// btreeFreeList is shared by every BTreeSort; btree.FreeList is safe for
// concurrent use.
var btreeFreeList = btree.NewFreeList(btree.DefaultFreeListSize)

// btreeItem orders equal items by their original position, so the B-tree
// sort is stable.
type btreeItem[T any] struct {
	item     T
	position int
	array    *sortctx.Array[T]
}

func (item *btreeItem[T]) Less(than btree.Item) bool {
	other := than.(*btreeItem[T])
	result := item.array.Compare(item.item, other.item)
	if 0 != result {
		return result < 0
	}
	return item.position < other.position
}

// bTreeSort inserts pointers to scratch held items into a google/btree of
// the configured degree then writes them back in ascending order.
func bTreeSort[T any](array *sortctx.Array[T], degree int) (err error) {
	n := array.Len()
	if n <= 1 {
		return
	}

	logger.Tracef("bTreeSort of %d elements with degree %d", n, degree)

	items, err := scratch.Acquire[btreeItem[T]](n)
	if nil != err {
		return
	}
	defer items.Release()

	bt := btree.NewWithFreeList(degree, btreeFreeList)
	defer bt.Clear(true)

	for i := 0; i < n; i++ {
		err = halter.Trigger(halter.TreeSortInsert)
		if nil != err {
			return
		}
		items.Slice[i] = btreeItem[T]{item: array.Read(i), position: i, array: array}
		_ = bt.ReplaceOrInsert(&items.Slice[i])
	}

	out := 0
	bt.Ascend(func(i btree.Item) bool {
		array.Write(out, i.(*btreeItem[T]).item)
		out++
		return true
	})
	return
}
