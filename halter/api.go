// Copyright (c) 2015-2021, NVIDIA CORPORATION.
// SPDX-License-Identifier: Apache-2.0

// Package halter provides named fault injection points. A point armed with
// a count fails on the count'th call to Trigger() with a
// blunder.InjectedFaultError and is then disarmed.
package halter

import (
	"sort"
	"sync/atomic"

	"github.com/NVIDIA/treesort/blunder"
	"github.com/NVIDIA/treesort/logger"
)

// Note 1: Following const block and HaltLabelStrings should be kept in sync
// Note 2: HaltLabelStrings should be usable as conf option values (no commas)

const (
	apiTestHaltLabel1 = iota
	apiTestHaltLabel2
	ScratchAcquire
	TreeSortInsert
)

var (
	HaltLabelStrings = []string{
		"halter.testHaltLabel1",
		"halter.testHaltLabel2",
		"scratch.Acquire",
		"treesort.Insert",
	}
)

// Arm sets up a failure on the haltAfterCount'd call to Trigger()
func Arm(haltLabelString string, haltAfterCount uint32) (err error) {
	globals.Lock()
	defer globals.Unlock()

	haltLabel, ok := globals.triggerNamesToNumbers[haltLabelString]
	if !ok {
		err = blunder.NewError(blunder.InvalidArgError, "halter.Arm(haltLabelString='%v',) - label unknown", haltLabelString)
		return
	}
	if 0 == haltAfterCount {
		err = blunder.NewError(blunder.InvalidArgError, "halter.Arm(haltLabel==%v,) called with haltAfterCount==0", haltLabelString)
		return
	}

	if _, alreadyArmed := globals.armedTriggers[haltLabel]; !alreadyArmed {
		atomic.AddInt32(&globals.armedCount, 1)
	}
	globals.armedTriggers[haltLabel] = haltAfterCount

	logger.Infof("halter armed %v to fail after %v call(s)", haltLabelString, haltAfterCount)
	return
}

// Disarm removes a previously armed trigger via a call to Arm()
func Disarm(haltLabelString string) (err error) {
	globals.Lock()
	defer globals.Unlock()

	haltLabel, ok := globals.triggerNamesToNumbers[haltLabelString]
	if !ok {
		err = blunder.NewError(blunder.InvalidArgError, "halter.Disarm(haltLabelString='%v') - label unknown", haltLabelString)
		return
	}
	globals.disarmLocked(haltLabel)
	return
}

// DisarmAll removes every armed trigger
func DisarmAll() {
	globals.Lock()
	for haltLabel := range globals.armedTriggers {
		globals.disarmLocked(haltLabel)
	}
	globals.Unlock()
}

// Trigger decrements the haltAfterCount if armed and, should it reach 0,
// disarms the trigger and returns a blunder.InjectedFaultError
func Trigger(haltLabel uint32) (err error) {
	if 0 == atomic.LoadInt32(&globals.armedCount) {
		return
	}

	globals.Lock()
	defer globals.Unlock()

	numTriggersRemaining, armed := globals.armedTriggers[haltLabel]
	if !armed {
		return
	}
	numTriggersRemaining--
	if 0 == numTriggersRemaining {
		globals.disarmLocked(haltLabel)
		err = blunder.NewError(blunder.InjectedFaultError, "halter.Trigger(haltLabelString==%v) triggered failure", globals.triggerNumbersToNames[haltLabel])
		logger.WarnfWithError(err, "halter fired")
		return
	}
	globals.armedTriggers[haltLabel] = numTriggersRemaining
	return
}

// Dump returns a map of currently armed triggers and their remaining trigger count
func Dump() (armedTriggers map[string]uint32) {
	globals.Lock()
	defer globals.Unlock()

	armedTriggers = make(map[string]uint32)
	for k, v := range globals.armedTriggers {
		armedTriggers[globals.triggerNumbersToNames[k]] = v
	}
	return
}

// List returns a sorted slice of available triggers
func List() (availableTriggers []string) {
	availableTriggers = make([]string, 0, len(HaltLabelStrings))
	availableTriggers = append(availableTriggers, HaltLabelStrings...)
	sort.Strings(availableTriggers)
	return
}
