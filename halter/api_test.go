// Copyright (c) 2015-2021, NVIDIA CORPORATION.
// SPDX-License-Identifier: Apache-2.0

package halter

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/NVIDIA/treesort/blunder"
	"github.com/NVIDIA/treesort/conf"
)

func TestAPI(t *testing.T) {
	assert := assert.New(t)

	DisarmAll()
	defer DisarmAll()

	m1 := Dump()
	assert.Equal(0, len(m1), "Dump() unexpectedly returned non-empty map at start-up")

	err := Arm("halter.testHaltLabel0", 1)
	assert.NotNil(err)
	assert.True(blunder.Is(err, blunder.InvalidArgError))
	assert.Equal("halter.Arm(haltLabelString='halter.testHaltLabel0',) - label unknown", err.Error())

	err = Arm("halter.testHaltLabel1", 0)
	assert.NotNil(err)
	assert.Equal("halter.Arm(haltLabel==halter.testHaltLabel1,) called with haltAfterCount==0", err.Error())

	err = Arm("halter.testHaltLabel1", 1)
	assert.Nil(err)
	assert.Equal(map[string]uint32{"halter.testHaltLabel1": 1}, Dump())

	err = Arm("halter.testHaltLabel2", 2)
	assert.Nil(err)
	assert.Equal(map[string]uint32{"halter.testHaltLabel1": 1, "halter.testHaltLabel2": 2}, Dump())

	err = Disarm("halter.testHaltLabel0")
	assert.NotNil(err)
	assert.Equal("halter.Disarm(haltLabelString='halter.testHaltLabel0') - label unknown", err.Error())

	err = Disarm("halter.testHaltLabel1")
	assert.Nil(err)
	assert.Equal(map[string]uint32{"halter.testHaltLabel2": 2}, Dump())

	// an unarmed label never fails
	assert.Nil(Trigger(apiTestHaltLabel1))

	err = Trigger(apiTestHaltLabel2)
	assert.Nil(err, "Trigger(apiTestHaltLabel2) [case 1] unexpectedly failed")
	assert.Equal(map[string]uint32{"halter.testHaltLabel2": 1}, Dump())

	err = Trigger(apiTestHaltLabel2)
	assert.NotNil(err, "Trigger(apiTestHaltLabel2) [case 2] unexpectedly succeeded")
	assert.True(blunder.Is(err, blunder.InjectedFaultError))
	assert.Equal("halter.Trigger(haltLabelString==halter.testHaltLabel2) triggered failure", err.Error())

	// firing disarms
	assert.Equal(0, len(Dump()))
	assert.Nil(Trigger(apiTestHaltLabel2))
}

func TestList(t *testing.T) {
	assert := assert.New(t)

	available := List()
	assert.Equal(len(HaltLabelStrings), len(available))
	assert.Contains(available, "scratch.Acquire")
	assert.Contains(available, "treesort.Insert")
	for i := 1; i < len(available); i++ {
		assert.True(available[i-1] < available[i])
	}
}

func TestArmFromConf(t *testing.T) {
	assert := assert.New(t)

	defer DisarmAll()

	confMap, err := conf.MakeConfMapFromStrings([]string{
		"Halter.Arm=halter.testHaltLabel1:3, scratch.Acquire:1",
	})
	assert.Nil(err)

	err = globals.Up(confMap)
	assert.Nil(err)
	assert.Equal(map[string]uint32{"halter.testHaltLabel1": 3, "scratch.Acquire": 1}, Dump())

	err = globals.Down(confMap)
	assert.Nil(err)
	assert.Equal(0, len(Dump()))

	confMap, err = conf.MakeConfMapFromStrings([]string{
		"Halter.Arm=halter.testHaltLabel1",
	})
	assert.Nil(err)
	err = globals.Up(confMap)
	assert.True(blunder.Is(err, blunder.BadConfigError))
	assert.Equal(0, len(Dump()))

	confMap, err = conf.MakeConfMapFromStrings([]string{
		"Halter.Arm=halter.testHaltLabel1:many",
	})
	assert.Nil(err)
	err = globals.Up(confMap)
	assert.NotNil(err)
	assert.Equal(0, len(Dump()))
}
