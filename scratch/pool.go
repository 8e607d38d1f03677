// Copyright (c) 2015-2021, NVIDIA CORPORATION.
// SPDX-License-Identifier: Apache-2.0

package scratch

import (
	"reflect"
	"sync/atomic"

	"github.com/NVIDIA/treesort/blunder"
	"github.com/NVIDIA/treesort/logger"
	"github.com/NVIDIA/treesort/refcntpool"
)

// poolSet wraps the refcntpool set for one element type; a set with no
// classes (MaxPooledBytes smaller than the transient threshold) refuses
// everything
type poolSet[T any] struct {
	refcntpool.RefCntSlicePoolSet[T]
	empty bool
}

// poolCaps returns the power-of-two element capacities for an element of
// elemSize bytes: the smallest holds more than the transient threshold, the
// largest holds at most maxPooledBytes
func poolCaps(elemSize uint64, transientThresholdBytes uint64, maxPooledBytes uint64) (caps []uint64) {
	minCap := uint64(1)
	for minCap*elemSize <= transientThresholdBytes {
		minCap <<= 1
	}
	maxCap := maxPooledBytes / elemSize
	for sliceCap := minCap; sliceCap <= maxCap; sliceCap <<= 1 {
		caps = append(caps, sliceCap)
		if sliceCap > (^uint64(0) >> 1) {
			break
		}
	}
	return
}

// poolSetFor returns the pool set for T, creating it on first use after each
// configuration change
func poolSetFor[T any]() (set *poolSet[T]) {
	typeKey := reflect.TypeOf((*T)(nil)).Elem()

	globals.Lock()
	defer globals.Unlock()

	existing, ok := globals.poolSets[typeKey]
	if ok {
		set = existing.(*poolSet[T])
		return
	}

	caps := poolCaps(elementSize[T](), atomic.LoadUint64(&globals.transientThresholdBytes), atomic.LoadUint64(&globals.maxPooledBytes))
	set = &poolSet[T]{empty: 0 == len(caps)}
	if !set.empty {
		set.Init(caps)
	}
	globals.poolSets[typeKey] = set

	logger.Tracef("scratch created %d pool classes for %v", len(caps), typeKey)
	return
}

func (set *poolSet[T]) getRefCntSlice(sliceLen uint64) (slicep *refcntpool.RefCntSlice[T], err error) {
	if set.empty {
		err = blunder.NewError(blunder.TooBigError, "no pool classes configured")
		return
	}
	return set.GetRefCntSlice(sliceLen)
}
