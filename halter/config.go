// Copyright (c) 2015-2021, NVIDIA CORPORATION.
// SPDX-License-Identifier: Apache-2.0

package halter

import (
	"strconv"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/NVIDIA/treesort/blunder"
	"github.com/NVIDIA/treesort/conf"
	"github.com/NVIDIA/treesort/transitions"
)

type globalsStruct struct {
	sync.Mutex
	armedCount            int32             // atomic; len(armedTriggers)
	armedTriggers         map[uint32]uint32 // key: haltLabel; value: haltAfterCount (remaining)
	triggerNamesToNumbers map[string]uint32
	triggerNumbersToNames map[uint32]string
}

var globals globalsStruct

func init() {
	globals.armedTriggers = make(map[uint32]uint32)
	globals.triggerNamesToNumbers = make(map[string]uint32)
	globals.triggerNumbersToNames = make(map[uint32]string)
	for i, s := range HaltLabelStrings {
		globals.triggerNamesToNumbers[s] = uint32(i)
		globals.triggerNumbersToNames[uint32(i)] = s
	}

	transitions.Register("halter", &globals)
}

func (g *globalsStruct) disarmLocked(haltLabel uint32) {
	if _, armed := g.armedTriggers[haltLabel]; armed {
		delete(g.armedTriggers, haltLabel)
		atomic.AddInt32(&g.armedCount, -1)
	}
}

// armFromConf arms every "label:count" entry of Halter.Arm
func armFromConf(confMap conf.ConfMap) (err error) {
	if !confMap.HasOption("Halter", "Arm") {
		return
	}
	armSlice, err := confMap.FetchOptionValueStringSlice("Halter", "Arm")
	if nil != err {
		return
	}
	for _, armString := range armSlice {
		labelAndCount := strings.Split(armString, ":")
		if 2 != len(labelAndCount) {
			err = blunder.NewError(blunder.BadConfigError, "Halter.Arm entry \"%s\" must be of the form label:count", armString)
			return
		}
		var count uint64
		count, err = strconv.ParseUint(labelAndCount[1], 10, 32)
		if nil != err {
			err = blunder.NewError(blunder.BadConfigError, "Halter.Arm entry \"%s\" has bad count: %v", armString, err)
			return
		}
		err = Arm(labelAndCount[0], uint32(count))
		if nil != err {
			return
		}
	}
	return
}

// Up disarms everything then arms the triggers listed in Halter.Arm
func (dummy *globalsStruct) Up(confMap conf.ConfMap) (err error) {
	DisarmAll()
	err = armFromConf(confMap)
	if nil != err {
		DisarmAll()
	}
	return
}

func (dummy *globalsStruct) Signaled(confMap conf.ConfMap) (err error) {
	return dummy.Up(confMap)
}

func (dummy *globalsStruct) Down(confMap conf.ConfMap) (err error) {
	DisarmAll()
	return
}
