// Copyright (c) 2015-2021, NVIDIA CORPORATION.
// SPDX-License-Identifier: Apache-2.0

package logger

import (
	"io"
	"os"
	"strings"
	"sync"

	log "github.com/sirupsen/logrus"

	"github.com/NVIDIA/treesort/conf"
)

// multiWriter fans each log entry out to every registered writer; logrus
// holds its own lock while calling Write() but targets may be added while
// logging is in progress
type multiWriter struct {
	sync.Mutex
	writers []io.Writer
}

func (mw *multiWriter) addWriter(writer io.Writer) {
	mw.Lock()
	mw.writers = append(mw.writers, writer)
	mw.Unlock()
}

func (mw *multiWriter) Write(p []byte) (n int, err error) {
	mw.Lock()
	defer mw.Unlock()

	for _, writer := range mw.writers {
		n, err = writer.Write(p)
		// if there's an error, report it and give up
		if nil != err {
			return
		}
	}
	n = len(p)
	return
}

var (
	logFile   *os.File
	logOutput = &multiWriter{writers: []io.Writer{os.Stderr}}
)

func init() {
	log.SetFormatter(&log.TextFormatter{DisableColors: true})
	log.SetOutput(logOutput)
	log.SetLevel(log.DebugLevel)
}

// Up configures the log destination and the per-package trace and debug
// settings from the "Logging" section of confMap.
func Up(confMap conf.ConfMap) (err error) {
	log.SetFormatter(&log.TextFormatter{DisableColors: true})

	output := &multiWriter{}

	logFilePath, _ := confMap.FetchOptionValueString("Logging", "LogFilePath")
	if logFilePath != "" {
		logFile, err = os.OpenFile(logFilePath, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0666)
		if err != nil {
			log.Errorf("couldn't open log file: %v", err)
			return err
		}
		output.addWriter(logFile)

		// Determine whether we should also log to console. Default is false.
		logToConsole, err := confMap.FetchOptionValueBool("Logging", "LogToConsole")
		if (nil == err) && logToConsole {
			output.addWriter(os.Stderr)
		}
	} else {
		// accept default destination of stderr
		output.addWriter(os.Stderr)
	}

	logOutput = output
	log.SetOutput(logOutput)

	// NOTE: We always enable max logging in logrus, and decide in this
	//       package whether to log
	log.SetLevel(log.DebugLevel)

	traceConfSlice, _ := confMap.FetchOptionValueStringSlice("Logging", "TraceLevelLogging")
	setTraceLoggingLevel(traceConfSlice)

	debugConfSlice, _ := confMap.FetchOptionValueStringSlice("Logging", "DebugLevelLogging")
	setDebugLoggingLevel(debugConfSlice)

	return nil
}

// Signaled re-applies the trace and debug settings from confMap
func Signaled(confMap conf.ConfMap) (err error) {
	traceConfSlice, _ := confMap.FetchOptionValueStringSlice("Logging", "TraceLevelLogging")
	setTraceLoggingLevel(traceConfSlice)

	debugConfSlice, _ := confMap.FetchOptionValueStringSlice("Logging", "DebugLevelLogging")
	setDebugLoggingLevel(debugConfSlice)

	return nil
}

func Down(confMap conf.ConfMap) (err error) {
	setTraceLoggingLevel(nil)
	setDebugLoggingLevel(nil)

	logOutput = &multiWriter{writers: []io.Writer{os.Stderr}}
	log.SetOutput(logOutput)

	// We open and close our own logfile
	if logFile != nil {
		err = logFile.Close()
		logFile = nil
	}
	return
}

func addLogTarget(writer io.Writer) {
	logOutput.addWriter(writer)
}

func (target LogTarget) write(p []byte) (n int, err error) {
	buf := target.LogBuf

	buf.Lock()
	defer buf.Unlock()

	buf.TotalEntries++

	// shift the older entries down, dropping the oldest
	if len(buf.LogEntries) > 0 {
		copy(buf.LogEntries[1:], buf.LogEntries[:len(buf.LogEntries)-1])
		buf.LogEntries[0] = strings.TrimRight(string(p), " \t\n")
	}

	n = len(p)
	return
}
