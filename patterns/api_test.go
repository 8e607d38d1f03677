// Copyright (c) 2015-2021, NVIDIA CORPORATION.
// SPDX-License-Identifier: Apache-2.0

package patterns

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/NVIDIA/treesort/blunder"
)

func TestFixedPatterns(t *testing.T) {
	assert := assert.New(t)

	assert.Equal([]int64{0, 1, 2, 3}, Sorted(4))
	assert.Equal([]int64{3, 2, 1, 0}, Reversed(4))
	assert.Equal([]int64{0, 0, 0}, AllEqual(3))
	assert.Equal([]int64{0, 1, 2, 0, 1, 2, 0}, Sawtooth(7, 3))
	assert.Equal([]int64{0, 1, 2, 1, 0}, OrganPipe(5))
	assert.Equal([]int64{0, 1, 1, 0}, OrganPipe(4))
	assert.Equal(0, len(Sorted(0)))
}

func TestSeededPatterns(t *testing.T) {
	assert := assert.New(t)

	a := Random(1000, 42)
	assert.Equal(a, Random(1000, 42))
	assert.NotEqual(a, Random(1000, 43))

	negatives := 0
	for _, v := range a {
		if v < 0 {
			negatives++
		}
	}
	assert.True(negatives > 100, "only %d negatives", negatives)

	few := FewUnique(1000, 5, 7)
	seen := make(map[int64]bool)
	for _, v := range few {
		assert.True((v >= 0) && (v < 5), "%d out of range", v)
		seen[v] = true
	}
	assert.Equal(5, len(seen))
}

func TestByName(t *testing.T) {
	assert := assert.New(t)

	names := Names()
	assert.Equal([]string{"allequal", "fewunique", "organpipe", "random", "reversed", "sawtooth", "sorted"}, names)

	for _, name := range names {
		seq, err := ByName(name, 33, 1)
		assert.Nil(err)
		assert.Equal(33, len(seq), name)
	}

	seq, err := ByName("reversed", 3, 0)
	assert.Nil(err)
	assert.Equal([]int64{2, 1, 0}, seq)

	_, err = ByName("bogus", 3, 0)
	assert.True(blunder.Is(err, blunder.UnknownPatternError))

	_, err = ByName("sorted", -1, 0)
	assert.True(blunder.Is(err, blunder.InvalidArgError))
}
