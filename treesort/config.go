// Copyright (c) 2015-2021, NVIDIA CORPORATION.
// SPDX-License-Identifier: Apache-2.0

package treesort

import (
	"sync/atomic"

	"github.com/NVIDIA/treesort/blunder"
	"github.com/NVIDIA/treesort/bucketstats"
	"github.com/NVIDIA/treesort/conf"
	"github.com/NVIDIA/treesort/logger"
	"github.com/NVIDIA/treesort/transitions"
)

const (
	defaultAVLInsertion = Iterative
	defaultAVLTraversal = Iterative
	defaultBTreeDegree  = 32
)

type statsStruct struct {
	BinaryTreeSorts      bucketstats.Total
	NaiveBinaryTreeSorts bucketstats.Total
	BalancedTreeSorts    bucketstats.Total
	RedBlackTreeSorts    bucketstats.Total
	BTreeSorts           bucketstats.Total
	FailedSorts          bucketstats.Total
	SortedElements       bucketstats.Average
	Rotations            bucketstats.Total
	AVLHeight            bucketstats.BucketLog2Round
}

type globalsStruct struct {
	avlInsertion int32 // atomic; holds a Strategy
	avlTraversal int32 // atomic; holds a Strategy
	btreeDegree  int32 // atomic
	stats        statsStruct
}

var globals globalsStruct

func init() {
	globals.set(defaultAVLInsertion, defaultAVLTraversal, defaultBTreeDegree)

	bucketstats.Register("treesort", "", &globals.stats)

	transitions.Register("treesort", &globals)
}

func (dummy *globalsStruct) set(avlInsertion Strategy, avlTraversal Strategy, btreeDegree int32) {
	atomic.StoreInt32(&globals.avlInsertion, int32(avlInsertion))
	atomic.StoreInt32(&globals.avlTraversal, int32(avlTraversal))
	atomic.StoreInt32(&globals.btreeDegree, btreeDegree)
}

func fetchStrategy(confMap conf.ConfMap, optionName string, defaultStrategy Strategy) (strategy Strategy, err error) {
	if !confMap.HasOption("TreeSort", optionName) {
		strategy = defaultStrategy
		return
	}
	strategyString, err := confMap.FetchOptionValueString("TreeSort", optionName)
	if nil != err {
		err = blunder.NewError(blunder.BadConfigError, "TreeSort.%s: %v", optionName, err)
		return
	}
	strategy, err = ParseStrategy(strategyString)
	return
}

func (dummy *globalsStruct) Up(confMap conf.ConfMap) (err error) {
	avlInsertion, err := fetchStrategy(confMap, "AVLInsertion", defaultAVLInsertion)
	if nil != err {
		return
	}
	avlTraversal, err := fetchStrategy(confMap, "AVLTraversal", defaultAVLTraversal)
	if nil != err {
		return
	}

	btreeDegree := uint32(defaultBTreeDegree)
	if confMap.HasOption("TreeSort", "BTreeDegree") {
		btreeDegree, err = confMap.FetchOptionValueUint32("TreeSort", "BTreeDegree")
		if (nil != err) || (btreeDegree < 2) || (btreeDegree > 1024) {
			err = blunder.NewError(blunder.BadConfigError, "TreeSort.BTreeDegree must be in [2, 1024] (err: %v)", err)
			return
		}
	}

	dummy.set(avlInsertion, avlTraversal, int32(btreeDegree))

	logger.Infof("treesort up: AVLInsertion %v AVLTraversal %v BTreeDegree %d", avlInsertion, avlTraversal, btreeDegree)
	return
}

func (dummy *globalsStruct) Signaled(confMap conf.ConfMap) (err error) {
	return dummy.Up(confMap)
}

func (dummy *globalsStruct) Down(confMap conf.ConfMap) (err error) {
	dummy.set(defaultAVLInsertion, defaultAVLTraversal, defaultBTreeDegree)
	return
}

func avlInsertion() Strategy {
	return Strategy(atomic.LoadInt32(&globals.avlInsertion))
}

func avlTraversal() Strategy {
	return Strategy(atomic.LoadInt32(&globals.avlTraversal))
}

func btreeDegree() int {
	return int(atomic.LoadInt32(&globals.btreeDegree))
}
