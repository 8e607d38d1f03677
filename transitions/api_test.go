// Copyright (c) 2015-2021, NVIDIA CORPORATION.
// SPDX-License-Identifier: Apache-2.0

package transitions

import (
	"fmt"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/NVIDIA/treesort/conf"
)

type testCallbacksInterfaceStruct struct {
	name     string
	failUp   bool
	calls    *[]string
	lastConf conf.ConfMap
}

var (
	testCalls []string
	testA     = &testCallbacksInterfaceStruct{name: "testA", calls: &testCalls}
	testB     = &testCallbacksInterfaceStruct{name: "testB", calls: &testCalls}
)

func init() {
	Register("testA", testA)
	Register("testB", testB)
}

func (tc *testCallbacksInterfaceStruct) Up(confMap conf.ConfMap) (err error) {
	*tc.calls = append(*tc.calls, tc.name+".Up")
	tc.lastConf = confMap
	if tc.failUp {
		err = fmt.Errorf("%s told to fail", tc.name)
	}
	return
}

func (tc *testCallbacksInterfaceStruct) Signaled(confMap conf.ConfMap) (err error) {
	*tc.calls = append(*tc.calls, tc.name+".Signaled")
	tc.lastConf = confMap
	return
}

func (tc *testCallbacksInterfaceStruct) Down(confMap conf.ConfMap) (err error) {
	*tc.calls = append(*tc.calls, tc.name+".Down")
	return
}

func testConfMap(t *testing.T) conf.ConfMap {
	confMap, err := conf.MakeConfMapFromStrings([]string{
		"Logging.LogFilePath=" + filepath.Join(t.TempDir(), "transitions.log"),
	})
	if nil != err {
		t.Fatalf("conf.MakeConfMapFromStrings() failed: %v", err)
	}
	return confMap
}

func TestRegistrationOrder(t *testing.T) {
	assert := assert.New(t)

	assert.Equal([]string{"logger", "testA", "testB"}, Registered())

	// registering twice panics
	assert.Panics(func() { Register("testA", testA) })
}

func TestUpSignaledDown(t *testing.T) {
	assert := assert.New(t)

	confMap := testConfMap(t)
	testCalls = nil

	err := Up(confMap)
	assert.Nil(err)
	assert.Equal([]string{"testA.Up", "testB.Up"}, testCalls)

	err = Signaled(confMap)
	assert.Nil(err)
	assert.Equal([]string{"testA.Up", "testB.Up", "testA.Signaled", "testB.Signaled"}, testCalls)

	err = Down(confMap)
	assert.Nil(err)
	assert.Equal([]string{"testA.Up", "testB.Up", "testA.Signaled", "testB.Signaled", "testB.Down", "testA.Down"}, testCalls)

	// Signaled() while down fails
	err = Signaled(confMap)
	assert.NotNil(err)
}

func TestUpFailureUnwinds(t *testing.T) {
	assert := assert.New(t)

	confMap := testConfMap(t)
	testCalls = nil
	testB.failUp = true
	defer func() { testB.failUp = false }()

	err := Up(confMap)
	assert.NotNil(err)
	assert.Equal([]string{"testA.Up", "testB.Up", "testA.Down"}, testCalls)

	// nothing is left up
	testCalls = nil
	err = Down(confMap)
	assert.Nil(err)
	assert.Equal(0, len(testCalls))
}
