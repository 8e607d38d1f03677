// Copyright (c) 2015-2021, NVIDIA CORPORATION.
// SPDX-License-Identifier: Apache-2.0

// Package sortctx is the access layer every tree sort goes through.  An
// Array wraps the caller's slice, its comparator and a Context; each Read,
// Write and Compare is reported to the Context before it is performed.
//
// Nop observes nothing.  Counters tallies reads, writes and compares in
// bucketstats totals and can be registered so the tallies show up in
// bucketstats.SprintStats().
package sortctx

import (
	"cmp"

	"github.com/NVIDIA/treesort/bucketstats"
)

// Context observes the data accesses of a sort.  Implementations shared by
// concurrent sorts must be safe for concurrent use.
type Context interface {
	OnRead()
	OnWrite()
	OnCompare()
}

// Nop is the Context used when the caller supplies none.
type Nop struct{}

func (Nop) OnRead()    {}
func (Nop) OnWrite()   {}
func (Nop) OnCompare() {}

// Counters is a Context counting every access.
type Counters struct {
	Reads    bucketstats.Total
	Writes   bucketstats.Total
	Compares bucketstats.Total
}

// Counts is a point in time copy of a Counters.
type Counts struct {
	Reads    uint64
	Writes   uint64
	Compares uint64
}

func (counters *Counters) OnRead() {
	counters.Reads.Increment()
}

func (counters *Counters) OnWrite() {
	counters.Writes.Increment()
}

func (counters *Counters) OnCompare() {
	counters.Compares.Increment()
}

// Register makes the counters visible as bucketstats group "sortctx.<groupName>"
func (counters *Counters) Register(groupName string) {
	bucketstats.Register("sortctx", groupName, counters)
}

func (counters *Counters) UnRegister(groupName string) {
	bucketstats.UnRegister("sortctx", groupName)
}

// Reset zeroes all three counters.
func (counters *Counters) Reset() {
	counters.Reads.Reset()
	counters.Writes.Reset()
	counters.Compares.Reset()
}

func (counters *Counters) Snapshot() (counts Counts) {
	counts.Reads = counters.Reads.TotalGet()
	counts.Writes = counters.Writes.TotalGet()
	counts.Compares = counters.Compares.TotalGet()
	return
}

// Array routes access to data through ctx.
type Array[T any] struct {
	data    []T
	compare func(a, b T) int
	ctx     Context
}

// NewArray wraps data.  compare must be a three-way comparison defining a
// total order; a nil ctx means Nop.
func NewArray[T any](data []T, compare func(a, b T) int, ctx Context) *Array[T] {
	if nil == ctx {
		ctx = Nop{}
	}
	return &Array[T]{data: data, compare: compare, ctx: ctx}
}

func (array *Array[T]) Len() int {
	return len(array.data)
}

func (array *Array[T]) Read(i int) T {
	array.ctx.OnRead()
	return array.data[i]
}

func (array *Array[T]) Write(i int, value T) {
	array.ctx.OnWrite()
	array.data[i] = value
}

// Compare returns -1, 0 or +1 as a is less than, equal to or greater than b.
func (array *Array[T]) Compare(a T, b T) int {
	array.ctx.OnCompare()
	result := array.compare(a, b)
	switch {
	case result < 0:
		return -1
	case result > 0:
		return 1
	default:
		return 0
	}
}

func (array *Array[T]) Less(a T, b T) bool {
	return array.Compare(a, b) < 0
}

// Context returns the Context accesses are reported to.
func (array *Array[T]) Context() Context {
	return array.ctx
}

// Ordered returns the natural three-way comparison of an ordered type.
func Ordered[T cmp.Ordered]() func(a, b T) int {
	return cmp.Compare[T]
}
