// Copyright (c) 2015-2021, NVIDIA CORPORATION.
// SPDX-License-Identifier: Apache-2.0

package treesort

import (
	"fmt"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/NVIDIA/treesort/blunder"
	"github.com/NVIDIA/treesort/conf"
	"github.com/NVIDIA/treesort/halter"
	"github.com/NVIDIA/treesort/patterns"
	"github.com/NVIDIA/treesort/scratch"
	"github.com/NVIDIA/treesort/sortctx"
	"github.com/NVIDIA/treesort/transitions"
)

var testLengths = []int{0, 1, 2, 3, 9, 100, 1000}

func testSorted(data []int64) []int64 {
	expected := slices.Clone(data)
	slices.Sort(expected)
	return expected
}

func testUp(t *testing.T, confStrings ...string) {
	confMap, err := conf.MakeConfMapFromStrings(confStrings)
	if nil != err {
		t.Fatalf("conf.MakeConfMapFromStrings() failed: %v", err)
	}
	err = globals.Up(confMap)
	if nil != err {
		t.Fatalf("treesort Up() failed: %v", err)
	}
}

func testDown(t *testing.T) {
	err := globals.Down(conf.MakeConfMap())
	if nil != err {
		t.Fatalf("treesort Down() failed: %v", err)
	}
}

func TestAllVariantsAllPatterns(t *testing.T) {
	assert := assert.New(t)

	for _, variant := range Variants() {
		for _, pattern := range patterns.Names() {
			for _, n := range testLengths {
				data, err := patterns.ByName(pattern, n, uint64(n))
				assert.Nil(err)
				expected := testSorted(data)

				err = SortByName(variant, data, sortctx.Ordered[int64](), nil)
				assert.Nil(err)
				assert.Equal(expected, data, "%s sort of %d element %s input", variant, n, pattern)
			}
		}
	}
}

func TestBalancedStrategies(t *testing.T) {
	assert := assert.New(t)

	for _, insertion := range []Strategy{Iterative, Recursive} {
		for _, traversal := range []Strategy{Iterative, Recursive} {
			for _, pattern := range patterns.Names() {
				data, err := patterns.ByName(pattern, 500, 3)
				assert.Nil(err)
				expected := testSorted(data)

				err = BalancedTreeSortUsing(data, sortctx.Ordered[int64](), nil, insertion, traversal)
				assert.Nil(err)
				assert.Equal(expected, data, "%v/%v on %s", insertion, traversal, pattern)
			}
		}
	}
}

func TestOrderedEntryPoints(t *testing.T) {
	assert := assert.New(t)

	input := []int{5, -3, 8, 1, -4, 7, 9, 2, 6, 1, 0}
	expected := []int{-4, -3, 0, 1, 1, 2, 5, 6, 7, 8, 9}

	for _, sort := range []func([]int) error{
		BinaryTreeSort[int],
		NaiveBinaryTreeSort[int],
		BalancedTreeSort[int],
		RedBlackTreeSort[int],
		BTreeSort[int],
	} {
		data := slices.Clone(input)
		assert.Nil(sort(data))
		assert.Equal(expected, data)

		// sorting again changes nothing
		assert.Nil(sort(data))
		assert.Equal(expected, data)
	}

	words := []string{"pear", "apple", "fig", "banana"}
	assert.Nil(BalancedTreeSort(words))
	assert.Equal([]string{"apple", "banana", "fig", "pear"}, words)

	floats := []float64{2.5, -1, 0, 2.25}
	assert.Nil(BinaryTreeSort(floats))
	assert.Equal([]float64{-1, 0, 2.25, 2.5}, floats)
}

func TestFuncEntryPoints(t *testing.T) {
	assert := assert.New(t)

	descending := func(a, b int) int { return b - a }

	for _, sort := range []func([]int, func(a, b int) int) error{
		BinaryTreeSortFunc[int],
		NaiveBinaryTreeSortFunc[int],
		BalancedTreeSortFunc[int],
		RedBlackTreeSortFunc[int],
		BTreeSortFunc[int],
	} {
		data := []int{1, 2, 3, 4, 5}
		assert.Nil(sort(data, descending))
		assert.Equal([]int{5, 4, 3, 2, 1}, data)
	}
}

func TestNineElements(t *testing.T) {
	assert := assert.New(t)

	input := []int64{5, 3, 8, 1, 4, 7, 9, 2, 6}
	expected := []int64{1, 2, 3, 4, 5, 6, 7, 8, 9}

	compares := make(map[string]uint64)
	for _, variant := range Variants() {
		var counters sortctx.Counters
		data := slices.Clone(input)
		assert.Nil(SortByName(variant, data, sortctx.Ordered[int64](), &counters))
		assert.Equal(expected, data, variant)
		compares[variant] = counters.Compares.TotalGet()
	}

	// 3 and 8 take one compare, 1 4 7 and 9 take two, 2 and 6 take three
	assert.Equal(uint64(16), compares[BinaryVariant])
	assert.Equal(uint64(16), compares[NaiveBinaryVariant])

	// the AVL tree stays well under the degenerate n(n-1)/2 even on sorted input
	var counters sortctx.Counters
	sorted := slices.Clone(expected)
	assert.Nil(BalancedTreeSortWithContext(sorted, sortctx.Ordered[int64](), &counters))
	assert.Equal(expected, sorted)
	assert.True(counters.Compares.TotalGet() < 36, "AVL compares %d", counters.Compares.TotalGet())
}

func TestFacadeAccounting(t *testing.T) {
	assert := assert.New(t)

	for _, variant := range []string{BinaryVariant, NaiveBinaryVariant, BalancedVariant} {
		var counters sortctx.Counters
		data := patterns.Random(257, 11)
		assert.Nil(SortByName(variant, data, sortctx.Ordered[int64](), &counters))

		// one read per insertion and one write per emitted element
		counts := counters.Snapshot()
		assert.Equal(uint64(257), counts.Reads, variant)
		assert.Equal(uint64(257), counts.Writes, variant)
	}

	// nothing is touched for n <= 1
	for _, n := range []int{0, 1} {
		var counters sortctx.Counters
		data := patterns.Sorted(n)
		for _, variant := range Variants() {
			assert.Nil(SortByName(variant, data, sortctx.Ordered[int64](), &counters))
		}
		assert.Equal(sortctx.Counts{}, counters.Snapshot())
	}
}

func TestDegenerateInput(t *testing.T) {
	assert := assert.New(t)

	const n = 200
	const chainCompares = uint64(n * (n - 1) / 2)

	for _, pattern := range []string{"sorted", "reversed"} {
		for _, variant := range []string{BinaryVariant, NaiveBinaryVariant} {
			var counters sortctx.Counters
			data, _ := patterns.ByName(pattern, n, 0)
			assert.Nil(SortByName(variant, data, sortctx.Ordered[int64](), &counters))
			assert.Equal(chainCompares, counters.Compares.TotalGet(), "%s on %s", variant, pattern)
		}

		// n * ceil(log2 n) is 1600 for n == 200
		var counters sortctx.Counters
		data, _ := patterns.ByName(pattern, n, 0)
		assert.Nil(BalancedTreeSortWithContext(data, sortctx.Ordered[int64](), &counters))
		assert.True(counters.Compares.TotalGet() <= 1600, "AVL on %s took %d compares", pattern, counters.Compares.TotalGet())
	}
}

func TestStability(t *testing.T) {
	assert := assert.New(t)

	type keyed struct {
		key      int64
		position int
	}

	keys := patterns.FewUnique(1000, 4, 9)
	byKey := func(a, b keyed) int {
		switch {
		case a.key < b.key:
			return -1
		case a.key > b.key:
			return 1
		}
		return 0
	}

	for _, sort := range []func([]keyed, func(a, b keyed) int) error{
		RedBlackTreeSortFunc[keyed],
		BTreeSortFunc[keyed],
	} {
		data := make([]keyed, len(keys))
		for i, key := range keys {
			data[i] = keyed{key: key, position: i}
		}
		assert.Nil(sort(data, byKey))
		for i := 1; i < len(data); i++ {
			assert.True(data[i-1].key <= data[i].key)
			if data[i-1].key == data[i].key {
				assert.True(data[i-1].position < data[i].position, "equal keys reordered at %d", i)
			}
		}
	}
}

func TestComparatorPanic(t *testing.T) {
	assert := assert.New(t)

	for _, n := range []int{20, 5000} {
		for _, variant := range Variants() {
			input := patterns.Random(n, 5)
			data := slices.Clone(input)
			startOutstanding := scratch.Outstanding()

			calls := 0
			exploding := func(a, b int64) int {
				calls++
				if calls == n {
					panic(fmt.Sprintf("comparator exploded on call %d", calls))
				}
				if a < b {
					return -1
				}
				if a > b {
					return 1
				}
				return 0
			}

			assert.Panics(func() { _ = SortByName(variant, data, exploding, nil) }, variant)
			assert.Equal(startOutstanding, scratch.Outstanding(), "%s leaked scratch", variant)
			assert.Equal(input, data, "%s modified data before panicking", variant)
		}
	}
}

func TestScratchFailure(t *testing.T) {
	assert := assert.New(t)

	defer halter.DisarmAll()

	// the arena is the first acquisition, the traversal stack the second
	for _, sort := range []func([]int64) error{BinaryTreeSort[int64], BalancedTreeSort[int64]} {
		input := patterns.Random(3000, 1)
		data := slices.Clone(input)
		startOutstanding := scratch.Outstanding()
		startFailed := globals.stats.FailedSorts.TotalGet()

		assert.Nil(halter.Arm("scratch.Acquire", 2))
		err := sort(data)
		assert.True(blunder.Is(err, blunder.InjectedFaultError), "err: %v", err)
		assert.Equal(startOutstanding, scratch.Outstanding())
		assert.Equal(input, data)
		assert.Equal(startFailed+1, globals.stats.FailedSorts.TotalGet())

		// the point disarmed itself
		assert.Nil(sort(data))
		assert.Equal(testSorted(input), data)
	}

	// exhausting the pooled classes fails the arena acquisition itself
	confMap, err := conf.MakeConfMapFromStrings([]string{
		"Scratch.TransientThresholdBytes=64",
		"Scratch.MaxPooledBytes=4096",
	})
	assert.Nil(err)
	assert.Nil(transitions.Up(confMap))
	defer func() { assert.Nil(transitions.Down(confMap)) }()

	data := patterns.Random(1000, 2)
	input := slices.Clone(data)
	err = BinaryTreeSort(data)
	assert.True(blunder.Is(err, blunder.OutOfMemoryError), "err: %v", err)
	assert.Equal(input, data)
}

func TestInsertFault(t *testing.T) {
	assert := assert.New(t)

	defer halter.DisarmAll()

	for _, variant := range Variants() {
		input := patterns.Random(100, 8)
		data := slices.Clone(input)
		startOutstanding := scratch.Outstanding()

		assert.Nil(halter.Arm("treesort.Insert", 50))
		err := SortByName(variant, data, sortctx.Ordered[int64](), nil)
		assert.True(blunder.Is(err, blunder.InjectedFaultError), "%s err: %v", variant, err)
		assert.Equal(input, data, variant)
		assert.Equal(startOutstanding, scratch.Outstanding(), variant)
	}
}

func TestStrategy(t *testing.T) {
	assert := assert.New(t)

	strategy, err := ParseStrategy("Recursive")
	assert.Nil(err)
	assert.Equal(Recursive, strategy)
	assert.Equal("recursive", strategy.String())

	strategy, err = ParseStrategy("iterative")
	assert.Nil(err)
	assert.Equal(Iterative, strategy)
	assert.Equal("iterative", strategy.String())

	_, err = ParseStrategy("sideways")
	assert.True(blunder.Is(err, blunder.UnknownStrategyError))

	err = SortByName("bubble", []int64{2, 1}, sortctx.Ordered[int64](), nil)
	assert.True(blunder.Is(err, blunder.InvalidArgError))
}

func TestConfig(t *testing.T) {
	assert := assert.New(t)

	defer testDown(t)

	testUp(t, "TreeSort.AVLInsertion=recursive", "TreeSort.AVLTraversal=Recursive", "TreeSort.BTreeDegree=3")
	assert.Equal(Recursive, avlInsertion())
	assert.Equal(Recursive, avlTraversal())
	assert.Equal(3, btreeDegree())

	data := patterns.Reversed(300)
	assert.Nil(BalancedTreeSort(data))
	assert.Equal(patterns.Sorted(300), data)
	data = patterns.OrganPipe(300)
	expected := testSorted(data)
	assert.Nil(BTreeSort(data))
	assert.Equal(expected, data)

	testDown(t)
	assert.Equal(Iterative, avlInsertion())
	assert.Equal(Iterative, avlTraversal())
	assert.Equal(defaultBTreeDegree, btreeDegree())

	for _, bad := range []string{
		"TreeSort.AVLInsertion=sideways",
		"TreeSort.AVLTraversal=",
		"TreeSort.BTreeDegree=1",
		"TreeSort.BTreeDegree=4096",
		"TreeSort.BTreeDegree=many",
	} {
		confMap, err := conf.MakeConfMapFromStrings([]string{bad})
		assert.Nil(err)
		err = globals.Up(confMap)
		assert.True(blunder.Is(err, blunder.BadConfigError), "%s gave %v", bad, err)
		assert.Equal(Iterative, avlInsertion())
		assert.Equal(defaultBTreeDegree, btreeDegree())
	}
}

func TestStats(t *testing.T) {
	assert := assert.New(t)

	startSorts := globals.stats.RedBlackTreeSorts.TotalGet()
	startCount := globals.stats.SortedElements.CountGet()
	startElements := globals.stats.SortedElements.TotalGet()

	assert.Nil(RedBlackTreeSort(patterns.Random(64, 4)))
	assert.Nil(RedBlackTreeSort(patterns.Random(36, 4)))

	assert.Equal(startSorts+2, globals.stats.RedBlackTreeSorts.TotalGet())
	assert.Equal(startCount+2, globals.stats.SortedElements.CountGet())
	assert.Equal(startElements+100, globals.stats.SortedElements.TotalGet())

	startRotations := globals.stats.Rotations.TotalGet()
	assert.Nil(BalancedTreeSort(patterns.Sorted(3)))
	assert.Equal(startRotations+1, globals.stats.Rotations.TotalGet())
}

func benchmarkVariant(b *testing.B, variant string, pattern string, n int) {
	input, err := patterns.ByName(pattern, n, 1)
	if nil != err {
		b.Fatal(err)
	}
	data := make([]int64, n)
	compare := sortctx.Ordered[int64]()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		b.StopTimer()
		copy(data, input)
		b.StartTimer()
		err = SortByName(variant, data, compare, nil)
		if nil != err {
			b.Fatal(err)
		}
	}
}

func BenchmarkTreeSorts(b *testing.B) {
	for _, variant := range Variants() {
		for _, pattern := range []string{"random", "sorted", "fewunique"} {
			b.Run(fmt.Sprintf("%s/%s", variant, pattern), func(b *testing.B) {
				benchmarkVariant(b, variant, pattern, 4096)
			})
		}
	}
}
