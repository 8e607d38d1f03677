// Copyright (c) 2015-2021, NVIDIA CORPORATION.
// SPDX-License-Identifier: Apache-2.0

// Package scratch hands out per-call scratch slices.
//
// A request of at most Scratch.TransientThresholdBytes bytes is served by a
// transient slice that is simply dropped on release.  Larger requests borrow a
// slice from a per-element-type set of refcntpool pools whose capacities are
// powers of two, up to Scratch.MaxPooledBytes.  A request that does not fit the
// largest pool fails with a blunder.OutOfMemoryError.
//
// Every Buffer must be released exactly once.  The usual pattern is:
//
//	buf, err := scratch.Acquire[node](n)
//	if nil != err {
//	    return err
//	}
//	defer buf.Release()
package scratch

import (
	"fmt"
	"sync/atomic"
	"unsafe"

	"github.com/NVIDIA/treesort/blunder"
	"github.com/NVIDIA/treesort/halter"
	"github.com/NVIDIA/treesort/logger"
	"github.com/NVIDIA/treesort/refcntpool"
)

// Buffer is a scratch slice of exactly the requested length.
type Buffer[T any] struct {
	Slice    []T
	pooled   *refcntpool.RefCntSlice[T]
	released int32
}

// Acquire returns a Buffer holding n zero-valued elements.
func Acquire[T any](n int) (buf *Buffer[T], err error) {
	if n < 0 {
		err = blunder.NewError(blunder.InvalidArgError, "scratch.Acquire() called with n == %d", n)
		return
	}

	err = halter.Trigger(halter.ScratchAcquire)
	if nil != err {
		globals.stats.FailedCnt.Increment()
		return
	}

	requestBytes := uint64(n) * elementSize[T]()
	globals.stats.RequestBytes.Add(requestBytes)

	if requestBytes <= atomic.LoadUint64(&globals.transientThresholdBytes) {
		buf = &Buffer[T]{Slice: make([]T, n)}
		globals.stats.TransientCnt.Increment()
	} else {
		var pooled *refcntpool.RefCntSlice[T]
		pooled, err = poolSetFor[T]().getRefCntSlice(uint64(n))
		if nil != err {
			err = blunder.NewError(blunder.OutOfMemoryError,
				"scratch.Acquire() of %d elements (%d bytes) exceeds Scratch.MaxPooledBytes (%d)",
				n, requestBytes, atomic.LoadUint64(&globals.maxPooledBytes))
			logger.WarnfWithError(err, "scratch exhausted")
			globals.stats.FailedCnt.Increment()
			return
		}
		buf = &Buffer[T]{Slice: pooled.Slice, pooled: pooled}
		globals.stats.PooledCnt.Increment()
	}

	globals.stats.AcquireCnt.Increment()
	atomic.AddInt64(&globals.outstanding, 1)
	return
}

// Release returns the Buffer's storage.  Buffer.Slice must not be used
// afterwards.  Releasing a Buffer twice panics.
func (buf *Buffer[T]) Release() {
	if !atomic.CompareAndSwapInt32(&buf.released, 0, 1) {
		panic(fmt.Sprintf("scratch.Buffer.Release() called twice for Buffer at %p", buf))
	}

	buf.Slice = nil
	if nil != buf.pooled {
		buf.pooled.Release()
		buf.pooled = nil
	}

	globals.stats.ReleaseCnt.Increment()
	atomic.AddInt64(&globals.outstanding, -1)
}

// IsPooled reports whether the Buffer was borrowed from a pool.
func (buf *Buffer[T]) IsPooled() bool {
	return nil != buf.pooled
}

// Outstanding returns the number of Buffers acquired but not yet released.
func Outstanding() int64 {
	return atomic.LoadInt64(&globals.outstanding)
}

// TransientThresholdBytes returns the current Scratch.TransientThresholdBytes.
func TransientThresholdBytes() uint64 {
	return atomic.LoadUint64(&globals.transientThresholdBytes)
}

// MaxPooledBytes returns the current Scratch.MaxPooledBytes.
func MaxPooledBytes() uint64 {
	return atomic.LoadUint64(&globals.maxPooledBytes)
}

func elementSize[T any]() uint64 {
	var t T
	size := uint64(unsafe.Sizeof(t))
	if 0 == size {
		size = 1
	}
	return size
}
