// Copyright (c) 2015-2021, NVIDIA CORPORATION.
// SPDX-License-Identifier: Apache-2.0

// Package refcntpool provides interfaces and objects to implement pools of
// reference counted items, where the item is returned to the pool when its
// reference count drops to zero (upon a call to object.Release()).
//
// There are two ways to use reference counted items: 1) the first is to embed a
// RefCntItem object in the object you want reference counted and use the
// generic RefCntItemPool object with a custom New() routine that creates
// objects of the desired type; or 2) embed a RefCntItem object in the object
// you want reference counted and write your own pool that supports the
// RefCntItemPooler interface.  The second approach allows more flexible actions
// to be taken when objects are released and reallocated.
//
// An implementation of reference counted slices is also provided, which also
// serves as an example.  Use RefCntSlicePoolMake[T](sliceCap) to create a pool
// of reference counted slices of T with capacity sliceCap, or a
// RefCntSlicePoolSet[T] to draw from a set of pools of increasing capacity.
package refcntpool

import (
	"sync"
)

// A object implementing the RefCntItemer interface is acquired from a
// RefCntItemPooler.  Hold() increments the reference count and Release()
// decrements it.  Upon final release (when the reference count drops to zero) it
// is returned the pool from whence it came.
//
// An object returned by Get() starts with one hold.  When all the holds are
// released the object must not be accessed.
//
// Init() is invoked by the pool before the item is returned via Get().  It
// should only be called by the RefCntItemPooler.  It is called with a pointer
// to the pool and a pointer to the reference counted item that its embedded in.
type RefCntItemer interface {
	Init(RefCntItemPooler, interface{}) // invoked by RefCntItemPooler.Get() before the item is returned
	Hold()                              // get an additional hold on the item
	Release()                           // release a hold on the item
}

// The RefCntItemPooler interface defines Get() and put() methods for objects
// that support the RefCntItemer interface.
//
// While Get() is called to get a new object, put() should only be called via
// the object's Release() method and not called directly.
type RefCntItemPooler interface {
	// Return an object of the type held by the pool which also supports
	// the RefCntItem methods (Hold() and Release())
	Get() interface{}

	// Put an object of the type held by the pool back in the pool.
	put(interface{})
}

// RefCntItem is an object that implements the RefCntItemer interface.  It can
// be embedded in other objects to allow them to be reference counted.
type RefCntItem struct {
	pool    RefCntItemPooler
	cntItem interface{} // the acutal item this is embedded in
	refCnt  int32       // updated atomically
	_       sync.Mutex  // insure a RefCntItem is not copied
}

// RefCntItemPool is an object that implements a pool of reference counted items.
// The items must support the RefCntItemer interface.  Items are "allocated" by
// calling Get() on the pool.
//
// Like sync.pool, the user must supply a New() routine to allocate new objects.
type RefCntItemPool struct {
	itemPool sync.Pool
	_        sync.Mutex // insure a RefCntItemPool is not copied

	New func() interface{}
}

// A reference counted slice implementing Hold() and Release().
//
// Slice starts out with length 0 and the capacity of the pool it came from.
// The backing array is zeroed upon final release so the pool does not keep
// anything it referenced alive.
type RefCntSlice[T any] struct {
	RefCntItem     // track reference count; provides Hold() and Release()
	origSlice  []T // original slice allocation
	Slice      []T // current slice
}

// A pool of reference counted slices, where slices are acquired by calling
// Get() and returned on the final Release().
type RefCntSlicePool[T any] struct {
	slicePool sync.Pool  // slice pool
	sliceCap  uint64     // all slices in this pool have capacity sliceCap
	_         sync.Mutex // insure a RefCntSlicePool is not copied
}

// Create and return a pool of reference counted slices with the specified
// capacity.
func RefCntSlicePoolMake[T any](sliceCap uint64) (poolp *RefCntSlicePool[T]) {
	return refCntSlicePoolMake[T](sliceCap)
}

// Cap returns the capacity of every slice in the pool.
func (poolp *RefCntSlicePool[T]) Cap() uint64 {
	return poolp.sliceCap
}

// A set of reference counted slice pools of various capacities.
//
// The GetRefCntSlice() method returns a slice from the pool with the smallest
// capacity large enough to hold the requested number of elements.
type RefCntSlicePoolSet[T any] struct {
	slicePools []*RefCntSlicePool[T]
	poolCaps   []uint64
}

// Initialize a set of reference counted slice pools.  The capacity of each
// pool must be specified (in ascending order).
//
// Init() must be called exactly once and before any allocations are requested.
func (slabs *RefCntSlicePoolSet[T]) Init(caps []uint64) {
	slabs.init(caps)
}

// Get a reference counted slice large enough to hold sliceLen elements.  The
// slice is returned with length sliceLen.
//
// Asking for more than the largest pool holds returns a blunder.TooBigError.
func (slabs *RefCntSlicePoolSet[T]) GetRefCntSlice(sliceLen uint64) (slicep *RefCntSlice[T], err error) {
	return slabs.getRefCntSlice(sliceLen)
}

// MaxCap returns the capacity of the largest pool in the set (0 if the set has
// not been initialized).
func (slabs *RefCntSlicePoolSet[T]) MaxCap() uint64 {
	if len(slabs.poolCaps) == 0 {
		return 0
	}
	return slabs.poolCaps[len(slabs.poolCaps)-1]
}
