// Copyright (c) 2015-2021, NVIDIA CORPORATION.
// SPDX-License-Identifier: Apache-2.0

package scratch

import (
	"reflect"
	"sync"
	"sync/atomic"

	"github.com/NVIDIA/treesort/blunder"
	"github.com/NVIDIA/treesort/bucketstats"
	"github.com/NVIDIA/treesort/conf"
	"github.com/NVIDIA/treesort/logger"
	"github.com/NVIDIA/treesort/transitions"
)

const (
	defaultTransientThresholdBytes = uint64(1024)
	defaultMaxPooledBytes          = uint64(1) << 30
)

type statsStruct struct {
	AcquireCnt   bucketstats.Total
	ReleaseCnt   bucketstats.Total
	TransientCnt bucketstats.Total
	PooledCnt    bucketstats.Total
	FailedCnt    bucketstats.Total
	RequestBytes bucketstats.BucketLog2Round
}

type globalsStruct struct {
	sync.Mutex                                           // protects poolSets
	transientThresholdBytes uint64                       // atomic
	maxPooledBytes          uint64                       // atomic
	outstanding             int64                        // atomic
	poolSets                map[reflect.Type]interface{} // Value: *poolSet[T] for Key T
	stats                   statsStruct
}

var globals globalsStruct

func init() {
	globals.poolSets = make(map[reflect.Type]interface{})
	globals.transientThresholdBytes = defaultTransientThresholdBytes
	globals.maxPooledBytes = defaultMaxPooledBytes

	bucketstats.Register("scratch", "", &globals.stats)

	transitions.Register("scratch", &globals)
}

// fetchOptionValueUint64 returns defaultValue if the option is absent
func fetchOptionValueUint64(confMap conf.ConfMap, optionName string, defaultValue uint64) (optionValue uint64, err error) {
	if !confMap.HasOption("Scratch", optionName) {
		optionValue = defaultValue
		return
	}
	optionValue, err = confMap.FetchOptionValueUint64("Scratch", optionName)
	if nil != err {
		err = blunder.NewError(blunder.BadConfigError, "Scratch.%s: %v", optionName, err)
	}
	return
}

// apply installs new limits and drops the existing pool sets; buffers borrowed
// from a dropped set still return to it
func (dummy *globalsStruct) apply(transientThresholdBytes uint64, maxPooledBytes uint64) {
	globals.Lock()
	atomic.StoreUint64(&globals.transientThresholdBytes, transientThresholdBytes)
	atomic.StoreUint64(&globals.maxPooledBytes, maxPooledBytes)
	globals.poolSets = make(map[reflect.Type]interface{})
	globals.Unlock()
}

func (dummy *globalsStruct) Up(confMap conf.ConfMap) (err error) {
	transientThresholdBytes, err := fetchOptionValueUint64(confMap, "TransientThresholdBytes", defaultTransientThresholdBytes)
	if nil != err {
		return
	}
	maxPooledBytes, err := fetchOptionValueUint64(confMap, "MaxPooledBytes", defaultMaxPooledBytes)
	if nil != err {
		return
	}

	if 0 == maxPooledBytes {
		err = blunder.NewError(blunder.BadConfigError, "Scratch.MaxPooledBytes must be non-zero")
		return
	}

	dummy.apply(transientThresholdBytes, maxPooledBytes)

	logger.Infof("scratch up: TransientThresholdBytes %d MaxPooledBytes %d", transientThresholdBytes, maxPooledBytes)
	return
}

func (dummy *globalsStruct) Signaled(confMap conf.ConfMap) (err error) {
	return dummy.Up(confMap)
}

func (dummy *globalsStruct) Down(confMap conf.ConfMap) (err error) {
	outstanding := atomic.LoadInt64(&globals.outstanding)
	if 0 != outstanding {
		logger.Warnf("scratch going down with %d buffer(s) outstanding", outstanding)
	}
	dummy.apply(defaultTransientThresholdBytes, defaultMaxPooledBytes)
	return
}
