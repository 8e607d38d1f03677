// Copyright (c) 2015-2021, NVIDIA CORPORATION.
// SPDX-License-Identifier: Apache-2.0

// Package patterns generates the int64 input sequences used to exercise and
// benchmark the tree sorts.  Seeded generators are deterministic: the same
// (n, seed) always yields the same sequence.
package patterns

import (
	"encoding/binary"
	"sort"

	"github.com/creachadair/cityhash"

	"github.com/NVIDIA/treesort/blunder"
)

// Defaults used by ByName for the generators taking a k.
const (
	DefaultFewUniqueK = 8
	DefaultSawtoothK  = 16
)

// Sorted returns 0, 1, ..., n-1.
func Sorted(n int) []int64 {
	seq := make([]int64, n)
	for i := range seq {
		seq[i] = int64(i)
	}
	return seq
}

// Reversed returns n-1, n-2, ..., 0.
func Reversed(n int) []int64 {
	seq := make([]int64, n)
	for i := range seq {
		seq[i] = int64(n - 1 - i)
	}
	return seq
}

// hash64 is the i'th value of the stream selected by seed.
func hash64(i int, seed uint64) uint64 {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], uint64(i))
	return cityhash.Hash64WithSeed(buf[:], seed)
}

// Random returns n values spread over the whole int64 range, negatives
// included.
func Random(n int, seed uint64) []int64 {
	seq := make([]int64, n)
	for i := range seq {
		seq[i] = int64(hash64(i, seed))
	}
	return seq
}

// FewUnique returns n values drawn from 0..k-1.
func FewUnique(n int, k int, seed uint64) []int64 {
	if k < 1 {
		k = 1
	}
	seq := make([]int64, n)
	for i := range seq {
		seq[i] = int64(hash64(i, seed) % uint64(k))
	}
	return seq
}

func AllEqual(n int) []int64 {
	return make([]int64, n)
}

// Sawtooth returns ascending runs 0..k-1 repeated.
func Sawtooth(n int, k int) []int64 {
	if k < 1 {
		k = 1
	}
	seq := make([]int64, n)
	for i := range seq {
		seq[i] = int64(i % k)
	}
	return seq
}

// OrganPipe ascends to the middle then descends.
func OrganPipe(n int) []int64 {
	seq := make([]int64, n)
	for i := range seq {
		if i < (n+1)/2 {
			seq[i] = int64(i)
		} else {
			seq[i] = int64(n - 1 - i)
		}
	}
	return seq
}

var generators = map[string]func(n int, seed uint64) []int64{
	"sorted":    func(n int, seed uint64) []int64 { return Sorted(n) },
	"reversed":  func(n int, seed uint64) []int64 { return Reversed(n) },
	"random":    Random,
	"fewunique": func(n int, seed uint64) []int64 { return FewUnique(n, DefaultFewUniqueK, seed) },
	"allequal":  func(n int, seed uint64) []int64 { return AllEqual(n) },
	"sawtooth":  func(n int, seed uint64) []int64 { return Sawtooth(n, DefaultSawtoothK) },
	"organpipe": func(n int, seed uint64) []int64 { return OrganPipe(n) },
}

// Names lists the patterns ByName accepts, sorted.
func Names() (names []string) {
	names = make([]string, 0, len(generators))
	for name := range generators {
		names = append(names, name)
	}
	sort.Strings(names)
	return
}

// ByName generates pattern name.  Unseeded patterns ignore seed.
func ByName(name string, n int, seed uint64) (seq []int64, err error) {
	if n < 0 {
		err = blunder.NewError(blunder.InvalidArgError, "patterns.ByName(\"%s\", %d,) negative length", name, n)
		return
	}
	generator, ok := generators[name]
	if !ok {
		err = blunder.NewError(blunder.UnknownPatternError, "unknown pattern \"%s\"", name)
		return
	}
	seq = generator(n, seed)
	return
}
