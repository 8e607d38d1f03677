// Copyright (c) 2015-2021, NVIDIA CORPORATION.
// SPDX-License-Identifier: Apache-2.0

package logger

import (
	"fmt"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/NVIDIA/treesort/conf"
)

func testNestedFunc() {
	myint := 3
	ctx := TraceEnter("the prefix", 1, myint)
	defer ctx.TraceExit("the prefix", myint)
}

func TestAPI(t *testing.T) {
	assert := assert.New(t)

	confMap, err := conf.MakeConfMapFromStrings([]string{
		"Logging.LogFilePath=" + filepath.Join(t.TempDir(), "logger.log"),
		"Logging.TraceLevelLogging=logger",
		"Logging.DebugLevelLogging=none",
	})
	assert.Nil(err)

	err = Up(confMap)
	assert.Nil(err)

	var target LogTarget
	target.Init(10)
	AddLogTarget(target)

	Tracef("hello there!")
	assert.Equal(1, target.LogBuf.TotalEntries)
	assert.True(strings.Contains(target.LogBuf.LogEntries[0], "hello there!"), target.LogBuf.LogEntries[0])
	assert.True(strings.Contains(target.LogBuf.LogEntries[0], "package=logger"), target.LogBuf.LogEntries[0])
	assert.True(strings.Contains(target.LogBuf.LogEntries[0], "function=TestAPI"), target.LogBuf.LogEntries[0])

	Warnf("%v: %v", "IAmTheCaller", "this is the error")
	assert.Equal(2, target.LogBuf.TotalEntries)
	assert.True(strings.Contains(target.LogBuf.LogEntries[0], "level=warning"), target.LogBuf.LogEntries[0])

	err = fmt.Errorf("this is the error")
	ErrorfWithError(err, "we had an error!")
	assert.Equal(3, target.LogBuf.TotalEntries)
	assert.True(strings.Contains(target.LogBuf.LogEntries[0], "this is the error"), target.LogBuf.LogEntries[0])

	testNestedFunc()
	assert.Equal(5, target.LogBuf.TotalEntries)
	assert.True(strings.Contains(target.LogBuf.LogEntries[1], ">> called the prefix 1 3"), target.LogBuf.LogEntries[1])
	assert.True(strings.Contains(target.LogBuf.LogEntries[0], "<< returning the prefix 3"), target.LogBuf.LogEntries[0])

	// debug logging is off
	DebugfID(DbgTesting, "should not be logged")
	assert.Equal(5, target.LogBuf.TotalEntries)

	assert.True(TraceEnabled())

	err = Down(confMap)
	assert.Nil(err)

	// tracing is off after Down()
	assert.False(TraceEnabled())
}

func TestLogTargetWrap(t *testing.T) {
	assert := assert.New(t)

	var target LogTarget
	target.Init(2)

	target.Write([]byte("one\n"))
	target.Write([]byte("two\n"))
	target.Write([]byte("three\n"))

	assert.Equal(3, target.LogBuf.TotalEntries)
	assert.Equal([]string{"three", "two"}, target.LogBuf.LogEntries)
}
