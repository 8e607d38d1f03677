// Copyright (c) 2015-2021, NVIDIA CORPORATION.
// SPDX-License-Identifier: Apache-2.0

package refcntpool

import (
	"fmt"
	"sort"
	"sync/atomic"

	"github.com/NVIDIA/treesort/blunder"
	"github.com/NVIDIA/treesort/logger"
)

// RefCntItem implementation
func (item *RefCntItem) Hold() {
	newCnt := atomic.AddInt32(&item.refCnt, 1)
	if newCnt < 2 {
		panic(fmt.Sprintf("RefCntItem.Hold(): item %T at %p was not held when called: newCnt %d",
			item, item, newCnt))
	}
}

func (item *RefCntItem) Release() {
	// Decrement cnt by 1.  Even if two threads do this concurrently,
	// only one will have newcnt == 0
	newCnt := atomic.AddInt32(&item.refCnt, -1)

	if newCnt == 0 {
		item.pool.put(item.cntItem)
	} else if newCnt < 0 {
		panic(fmt.Sprintf("RefCntItem.Release(): item was not held when called: newCnt %d", newCnt))
	}
}

func (item *RefCntItem) AssertIsHeld() {
	refCnt := atomic.LoadInt32(&item.refCnt)
	if refCnt < 1 {
		panic(fmt.Sprintf("(*RefCntItem).AssertIsHeld(): refCnt %d < 1 for RefCntItem at %p",
			refCnt, item))
	}
}

// This Init() routine cannot be sub-classed.  An object that needs custom
// initialization should come from its own RefCntItemPooler which does the
// initialization (this is the approach taken by RefCntSlicePool).
func (item *RefCntItem) Init(pool RefCntItemPooler, cntItem interface{}) {
	newCnt := atomic.AddInt32(&item.refCnt, 1)
	if newCnt != 1 {
		panic(fmt.Sprintf("RefCntItem.Init(): item %T at %p in pool %T at %p was not free: newCnt %d",
			item, item, item.pool, item.pool, newCnt))
	}
	item.pool = pool
	item.cntItem = cntItem
}

// RefCntPool implementation
func (refCntPool *RefCntItemPool) Get() (item interface{}) {
	item = refCntPool.itemPool.Get()
	if item == nil {
		item = refCntPool.New()
	}

	refCntItem := item.(RefCntItemer)
	refCntItem.Init(refCntPool, item)

	return
}

func (refCntPool *RefCntItemPool) put(item interface{}) {
	refCntPool.itemPool.Put(item)
}

func refCntSlicePoolMake[T any](sliceCap uint64) (poolp *RefCntSlicePool[T]) {
	poolp = &RefCntSlicePool[T]{}

	poolp.slicePool.New = func() interface{} {

		// Make a new RefCntSlice
		slicep := &RefCntSlice[T]{
			origSlice: make([]T, 0, sliceCap),
		}
		return slicep
	}

	poolp.sliceCap = sliceCap
	return
}

// Get a RefCntSlice from the pool.
//
// The caller must use a type assertion like (*RefCntSlicePool[T]).Get().(*RefCntSlice[T])
// to get a pointer to the slice.
func (poolp *RefCntSlicePool[T]) Get() (item interface{}) {

	// get a slice
	item = poolp.slicePool.Get()

	// reinitialize the slice
	slicep := item.(*RefCntSlice[T])
	slicep.Init(poolp, slicep)
	slicep.Slice = slicep.origSlice

	return
}

func (poolp *RefCntSlicePool[T]) put(item interface{}) {

	slicep := item.(*RefCntSlice[T])
	clear(slicep.origSlice[:cap(slicep.origSlice)])
	slicep.Slice = nil

	poolp.slicePool.Put(item)
}

func (slabs *RefCntSlicePoolSet[T]) init(caps []uint64) {
	if len(slabs.slicePools) != 0 {
		panic(fmt.Sprintf("(*RefCntSlicePoolSet).Init() called more than once for RefCntSlicePoolSet at %p", slabs))
	}
	slabs.slicePools = make([]*RefCntSlicePool[T], len(caps))
	for i, sliceCap := range caps {
		if i > 0 && caps[i-1] >= sliceCap {
			panic(fmt.Sprintf("(*RefCntSlicePoolSet).Init() capacity not increasing: caps[%d] %d  caps[%d] %d",
				i-1, caps[i-1], i, sliceCap))
		}
		slabs.slicePools[i] = refCntSlicePoolMake[T](sliceCap)
	}
	slabs.poolCaps = append([]uint64(nil), caps...)
}

func (slabs *RefCntSlicePoolSet[T]) getRefCntSlice(sliceLen uint64) (slicep *RefCntSlice[T], err error) {

	sizeCnt := len(slabs.poolCaps)
	if sizeCnt == 0 {
		panic(fmt.Sprintf("GetRefCntSlice(): no pools have been allocated for RefCntSlicePoolSet at %p",
			slabs))
	}

	// binary search for the smallest pool that's big enough
	idx := sort.Search(sizeCnt, func(i int) bool { return slabs.poolCaps[i] >= sliceLen })
	if idx == sizeCnt {
		err = blunder.NewError(blunder.TooBigError,
			"GetRefCntSlice(): requested length %d is larger then the largest pool capacity %d",
			sliceLen, slabs.poolCaps[sizeCnt-1])
		logger.TracefWithError(err, "refcntpool request refused")
		return
	}

	slicep = slabs.slicePools[idx].Get().(*RefCntSlice[T])
	slicep.Slice = slicep.Slice[:sliceLen]
	return
}
