// Copyright (c) 2015-2021, NVIDIA CORPORATION.
// SPDX-License-Identifier: Apache-2.0

// Package treesort sorts slices in place by building a search tree from the
// elements and writing the tree back in order.
//
// Every variant comes in three forms:
//
//	X(data)                           natural order of a cmp.Ordered type
//	XFunc(data, compare)              caller supplied three-way comparison
//	XWithContext(data, compare, ctx)  accesses reported to a sortctx.Context
//
// BinaryTreeSort builds an unbalanced tree in a scratch arena: O(n log n) on
// random input, n(n-1)/2 compares on sorted or reversed input.
// NaiveBinaryTreeSort is the same tree built from heap allocated nodes.
// BalancedTreeSort builds an AVL tree in a scratch arena and is O(n log n)
// on every input.  None of these three is stable.
//
// RedBlackTreeSort (a sortedmap LLRB tree) and BTreeSort (a google/btree
// B-tree) order equal elements by position and are stable.
//
// Sequences of length 0 or 1 are returned untouched.  A non-nil error means
// scratch storage could not be obtained (blunder.OutOfMemoryError) or a fault
// was injected through halter; data is unchanged in either case.  A panic
// from compare propagates to the caller after all scratch storage has been
// released, leaving data unchanged.
package treesort

import (
	"cmp"
	"strings"

	"github.com/NVIDIA/treesort/blunder"
	"github.com/NVIDIA/treesort/bucketstats"
	"github.com/NVIDIA/treesort/logger"
	"github.com/NVIDIA/treesort/sortctx"
)

// Strategy selects between an explicit-stack and a recursive algorithm.
type Strategy int32

const (
	Iterative Strategy = iota
	Recursive
)

func (strategy Strategy) String() string {
	switch strategy {
	case Iterative:
		return "iterative"
	case Recursive:
		return "recursive"
	}
	return "unknown"
}

// ParseStrategy accepts "iterative" or "recursive" in any case.
func ParseStrategy(strategyString string) (strategy Strategy, err error) {
	switch strings.ToLower(strategyString) {
	case "iterative":
		strategy = Iterative
	case "recursive":
		strategy = Recursive
	default:
		err = blunder.NewError(blunder.UnknownStrategyError, "unknown strategy \"%s\"", strategyString)
	}
	return
}

// Variant names accepted by SortByName.
const (
	BinaryVariant      = "binary"
	NaiveBinaryVariant = "naive"
	BalancedVariant    = "balanced"
	RedBlackVariant    = "redblack"
	BTreeVariant       = "btree"
)

// Variants returns every name SortByName accepts.
func Variants() []string {
	return []string{BinaryVariant, NaiveBinaryVariant, BalancedVariant, RedBlackVariant, BTreeVariant}
}

func run[T any](data []T, compare func(a, b T) int, ctx sortctx.Context, sortStat *bucketstats.Total,
	sort func(array *sortctx.Array[T]) error) (err error) {

	array := sortctx.NewArray(data, compare, ctx)
	err = sort(array)
	sortStat.Increment()
	if nil != err {
		globals.stats.FailedSorts.Increment()
		logger.WarnfWithError(err, "tree sort of %d elements failed", len(data))
		return
	}
	globals.stats.SortedElements.Add(uint64(len(data)))
	return
}

func BinaryTreeSort[T cmp.Ordered](data []T) error {
	return BinaryTreeSortWithContext(data, sortctx.Ordered[T](), nil)
}

func BinaryTreeSortFunc[T any](data []T, compare func(a, b T) int) error {
	return BinaryTreeSortWithContext(data, compare, nil)
}

func BinaryTreeSortWithContext[T any](data []T, compare func(a, b T) int, ctx sortctx.Context) error {
	return run(data, compare, ctx, &globals.stats.BinaryTreeSorts, binaryTreeSort[T])
}

func NaiveBinaryTreeSort[T cmp.Ordered](data []T) error {
	return NaiveBinaryTreeSortWithContext(data, sortctx.Ordered[T](), nil)
}

func NaiveBinaryTreeSortFunc[T any](data []T, compare func(a, b T) int) error {
	return NaiveBinaryTreeSortWithContext(data, compare, nil)
}

func NaiveBinaryTreeSortWithContext[T any](data []T, compare func(a, b T) int, ctx sortctx.Context) error {
	return run(data, compare, ctx, &globals.stats.NaiveBinaryTreeSorts, naiveBinaryTreeSort[T])
}

// BalancedTreeSort uses the TreeSort.AVLInsertion and TreeSort.AVLTraversal
// strategies (both iterative unless configured otherwise).
func BalancedTreeSort[T cmp.Ordered](data []T) error {
	return BalancedTreeSortWithContext(data, sortctx.Ordered[T](), nil)
}

func BalancedTreeSortFunc[T any](data []T, compare func(a, b T) int) error {
	return BalancedTreeSortWithContext(data, compare, nil)
}

func BalancedTreeSortWithContext[T any](data []T, compare func(a, b T) int, ctx sortctx.Context) error {
	return BalancedTreeSortUsing(data, compare, ctx, avlInsertion(), avlTraversal())
}

// BalancedTreeSortUsing is BalancedTreeSortWithContext with explicit
// insertion and traversal strategies.
func BalancedTreeSortUsing[T any](data []T, compare func(a, b T) int, ctx sortctx.Context, insertion Strategy, traversal Strategy) error {
	return run(data, compare, ctx, &globals.stats.BalancedTreeSorts, func(array *sortctx.Array[T]) error {
		return balancedTreeSort(array, insertion, traversal)
	})
}

func RedBlackTreeSort[T cmp.Ordered](data []T) error {
	return RedBlackTreeSortWithContext(data, sortctx.Ordered[T](), nil)
}

func RedBlackTreeSortFunc[T any](data []T, compare func(a, b T) int) error {
	return RedBlackTreeSortWithContext(data, compare, nil)
}

func RedBlackTreeSortWithContext[T any](data []T, compare func(a, b T) int, ctx sortctx.Context) error {
	return run(data, compare, ctx, &globals.stats.RedBlackTreeSorts, redBlackTreeSort[T])
}

// BTreeSort uses a B-tree of degree TreeSort.BTreeDegree (32 unless
// configured otherwise).
func BTreeSort[T cmp.Ordered](data []T) error {
	return BTreeSortWithContext(data, sortctx.Ordered[T](), nil)
}

func BTreeSortFunc[T any](data []T, compare func(a, b T) int) error {
	return BTreeSortWithContext(data, compare, nil)
}

func BTreeSortWithContext[T any](data []T, compare func(a, b T) int, ctx sortctx.Context) error {
	degree := btreeDegree()
	return run(data, compare, ctx, &globals.stats.BTreeSorts, func(array *sortctx.Array[T]) error {
		return bTreeSort(array, degree)
	})
}

// SortByName runs the variant named by one of the Variant constants.
func SortByName[T any](variant string, data []T, compare func(a, b T) int, ctx sortctx.Context) (err error) {
	switch variant {
	case BinaryVariant:
		err = BinaryTreeSortWithContext(data, compare, ctx)
	case NaiveBinaryVariant:
		err = NaiveBinaryTreeSortWithContext(data, compare, ctx)
	case BalancedVariant:
		err = BalancedTreeSortWithContext(data, compare, ctx)
	case RedBlackVariant:
		err = RedBlackTreeSortWithContext(data, compare, ctx)
	case BTreeVariant:
		err = BTreeSortWithContext(data, compare, ctx)
	default:
		err = blunder.NewError(blunder.InvalidArgError, "unknown variant \"%s\" (want one of %s)",
			variant, strings.Join(Variants(), ", "))
	}
	return
}
