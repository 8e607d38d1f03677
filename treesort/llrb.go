// Copyright (c) 2015-2021, NVIDIA CORPORATION.
// SPDX-License-Identifier: Apache-2.0

package treesort

import (
	"fmt"

	"github.com/NVIDIA/sortedmap"

	"github.com/NVIDIA/treesort/blunder"
	"github.com/NVIDIA/treesort/halter"
	"github.com/NVIDIA/treesort/logger"
	"github.com/NVIDIA/treesort/sortctx"
)

// llrbKey orders equal items by their original position, so keys are unique
// and the red-black sort is stable.
type llrbKey[T any] struct {
	item     T
	position int
}

type llrbSorter[T any] struct {
	array *sortctx.Array[T]
}

func (sorter *llrbSorter[T]) compare(key1 sortedmap.Key, key2 sortedmap.Key) (result int, err error) {
	key1Typed, ok := key1.(llrbKey[T])
	if !ok {
		err = fmt.Errorf("llrbSorter.compare(non-llrbKey,) not supported")
		return
	}
	key2Typed, ok := key2.(llrbKey[T])
	if !ok {
		err = fmt.Errorf("llrbSorter.compare(llrbKey, non-llrbKey) not supported")
		return
	}

	result = sorter.array.Compare(key1Typed.item, key2Typed.item)
	if 0 == result {
		result = key1Typed.position - key2Typed.position
	}
	return
}

func (sorter *llrbSorter[T]) DumpKey(key sortedmap.Key) (keyAsString string, err error) {
	keyAsString = fmt.Sprintf("%v", key)
	return
}

func (sorter *llrbSorter[T]) DumpValue(value sortedmap.Value) (valueAsString string, err error) {
	valueAsString = fmt.Sprintf("%v", value)
	return
}

// redBlackTreeSort inserts every element into a sortedmap LLRB tree then
// reads it back by index.
func redBlackTreeSort[T any](array *sortctx.Array[T]) (err error) {
	n := array.Len()
	if n <= 1 {
		return
	}

	logger.Tracef("redBlackTreeSort of %d elements", n)

	sorter := &llrbSorter[T]{array: array}
	llrb := sortedmap.NewLLRBTree(sorter.compare, sorter)

	for i := 0; i < n; i++ {
		err = halter.Trigger(halter.TreeSortInsert)
		if nil != err {
			return
		}
		var ok bool
		ok, err = llrb.Put(llrbKey[T]{item: array.Read(i), position: i}, nil)
		if nil != err {
			return
		}
		if !ok {
			err = blunder.NewError(blunder.CorruptTreeError, "redBlackTreeSort found position %d already inserted", i)
			return
		}
	}

	for i := 0; i < n; i++ {
		key, _, ok, getErr := llrb.GetByIndex(i)
		if nil != getErr {
			err = getErr
			return
		}
		if !ok {
			err = blunder.NewError(blunder.CorruptTreeError, "redBlackTreeSort lost index %d of %d", i, n)
			return
		}
		array.Write(i, key.(llrbKey[T]).item)
	}
	return
}
