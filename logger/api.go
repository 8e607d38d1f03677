// Copyright (c) 2015-2021, NVIDIA CORPORATION.
// SPDX-License-Identifier: Apache-2.0

// Package logger provides logging wrappers
//
// These wrappers allow us to standardize logging while still using a third-party
// logging package.
//
// This package is currently implemented on top of the sirupsen/logrus package:
//
//	https://github.com/sirupsen/logrus
//
// The APIs here add package and calling function to all logs.
//
// Logging of trace and debug logs are enabled/disabled on a per package basis.
package logger

import (
	"fmt"
	"io"
	"sync"

	log "github.com/sirupsen/logrus"

	"github.com/NVIDIA/treesort/utils"
)

type Level int

// Our logging levels - These are the different logging levels supported by this package.
//
// We have more detailed logging levels than the logrus log package.
// As a result, when we do our logging we need to map from our levels
// to the logrus ones before calling logrus APIs.
const (
	// PanicLevel corresponds to logrus.PanicLevel; Logrus will log and then call panic with the log message
	PanicLevel Level = iota
	// FatalLevel corresponds to logrus.FatalLevel; Logrus will log and then calls `os.Exit(1)`.
	FatalLevel
	// ErrorLevel corresponds to logrus.ErrorLevel
	ErrorLevel
	// WarnLevel corresponds to logrus.WarnLevel
	WarnLevel
	// InfoLevel corresponds to logrus.InfoLevel
	InfoLevel

	// TraceLevel is used for operational logs that trace success path through the sorts.
	// Whether these are logged is controlled on a per-package basis.
	// When enabled, these are logged at logrus.InfoLevel.
	TraceLevel

	// DebugLevel is used for very verbose logging, intended to debug internal operations of a
	// particular area. Whether these are logged is controlled on a per-package basis.
	// When enabled, these are logged at logrus.DebugLevel.
	DebugLevel
)

// Flag to disable all logging, for performance testing.
var disableLoggingForPerfTesting = false

// Enable/disable for trace and debug levels.
// These are defaulted to disabled unless otherwise specified in .conf file
var traceLevelEnabled = false
var debugLevelEnabled = false

// settingsLock protects the per-package maps which Up() rewrites while
// sorts on other goroutines may be logging
var settingsLock sync.RWMutex

// packageTraceSettings controls whether tracing is enabled for particular packages.
//
// Note: In order to enable tracing for a package using the "Logging.TraceLevelLogging"
// config variable, the package must be in this map with a value of false (or true).
var packageTraceSettings = map[string]bool{
	"bucketstats": false,
	"halter":      false,
	"logger":      false,
	"patterns":    false,
	"refcntpool":  false,
	"scratch":     false,
	"sortctx":     false,
	"transitions": false,
	"treesort":    false,
}

// Debug IDs.  These are evaluated on a package + tag basis.
const DbgInternal string = "debug_internal"
const DbgTesting string = "debug_test"

var packageDebugSettings = map[string][]string{
	"scratch":     []string{},
	"transitions": []string{},
	"treesort":    []string{},
}

func setTraceLoggingLevel(confStrSlice []string) {
	settingsLock.Lock()

	for pkg := range packageTraceSettings {
		packageTraceSettings[pkg] = false
	}
	traceLevelEnabled = false

HandlePkgs:
	for _, pkg := range confStrSlice {
		switch pkg {
		case "none":
			traceLevelEnabled = false
			break HandlePkgs
		default:
			if _, ok := packageTraceSettings[pkg]; ok {
				packageTraceSettings[pkg] = true

				// If any trace level is enabled, need to enable trace level in general.
				// This flag lets us avoid the performance hit of trace-level API calls
				// if the trace level is disabled.
				traceLevelEnabled = true
			}
		}
	}

	enabled := traceLevelEnabled
	settingsLock.Unlock()

	if enabled {
		settingsLock.RLock()
		for pkg, isEnabled := range packageTraceSettings {
			if isEnabled {
				Infof("Package %v trace logging is enabled.", pkg)
			}
		}
		settingsLock.RUnlock()
	}
}

func setDebugLoggingLevel(confStrSlice []string) {
	settingsLock.Lock()

	for pkg := range packageDebugSettings {
		packageDebugSettings[pkg] = []string{}
	}
	debugLevelEnabled = false

HandlePkgs:
	for _, pkg := range confStrSlice {
		switch pkg {
		case "none":
			debugLevelEnabled = false
			break HandlePkgs
		default:
			if _, ok := packageDebugSettings[pkg]; ok {
				packageDebugSettings[pkg] = []string{DbgInternal, DbgTesting}
				debugLevelEnabled = true
			}
		}
	}

	settingsLock.Unlock()
}

func traceEnabled(pkg string) bool {
	settingsLock.RLock()
	defer settingsLock.RUnlock()

	return packageTraceSettings[pkg]
}

// TraceEnabled reports whether trace logging is on for the calling package.
// Callers use it to skip building expensive trace arguments.
func TraceEnabled() bool {
	if !logEnabled(TraceLevel) {
		return false
	}
	_, pkg, _ := utils.GetFuncPackage(1)
	return traceEnabled(pkg)
}

func debugEnabled(pkg string, debugID string) bool {
	settingsLock.RLock()
	defer settingsLock.RUnlock()

	for _, id := range packageDebugSettings[pkg] {
		if id == debugID {
			return true
		}
	}
	return false
}

// Log fields supported by logger:
const packageKey string = "package"
const functionKey string = "function"
const errorKey string = "error"
const gidKey string = "goroutine"

// This struct is an optimization so that package and function are only
// extracted once per function.
type FuncCtx struct {
	funcContext *log.Entry // Struct allows us to save fields common between log calls within a function
}

// getPackage extracts the package name from the FuncCtx
func (ctx *FuncCtx) getPackage() string {
	pkg, ok := ctx.funcContext.Data[packageKey].(string)
	if ok {
		return pkg
	}
	return ""
}

// newFuncCtxWithFields creates a new function logging context including the
// supplied fields, extracting the calling function from the call stack.
func newFuncCtxWithFields(level int, fields log.Fields) (ctx *FuncCtx) {
	fn, pkg, gid := utils.GetFuncPackage(level + 1)

	fields[functionKey] = fn
	fields[packageKey] = pkg
	fields[gidKey] = gid

	ctx = &FuncCtx{funcContext: log.WithFields(fields)}
	return ctx
}

var backtraceOneLevel int = 1

func logEnabled(level Level) bool {
	if disableLoggingForPerfTesting {
		return false
	}
	if (level == TraceLevel) && !traceLevelEnabled {
		return false
	}
	if (level == DebugLevel) && !debugLevelEnabled {
		return false
	}
	return true
}

// EXTERNAL logging APIs
// These APIs are in the style of those provided by the logrus package.

// Logger intentionally does not provide a Debug() API; use DebugfID() instead.

func DebugfID(id string, format string, args ...interface{}) {
	if !logEnabled(DebugLevel) {
		return
	}
	newFuncCtxWithFields(backtraceOneLevel, log.Fields{}).logWithID(DebugLevel, id, fmt.Sprintf(format, args...))
}

func Errorf(format string, args ...interface{}) {
	if !logEnabled(ErrorLevel) {
		return
	}
	newFuncCtxWithFields(backtraceOneLevel, log.Fields{}).log(ErrorLevel, fmt.Sprintf(format, args...))
}

func Infof(format string, args ...interface{}) {
	if !logEnabled(InfoLevel) {
		return
	}
	newFuncCtxWithFields(backtraceOneLevel, log.Fields{}).log(InfoLevel, fmt.Sprintf(format, args...))
}

func Tracef(format string, args ...interface{}) {
	if !logEnabled(TraceLevel) {
		return
	}
	newFuncCtxWithFields(backtraceOneLevel, log.Fields{}).log(TraceLevel, fmt.Sprintf(format, args...))
}

func Warnf(format string, args ...interface{}) {
	if !logEnabled(WarnLevel) {
		return
	}
	newFuncCtxWithFields(backtraceOneLevel, log.Fields{}).log(WarnLevel, fmt.Sprintf(format, args...))
}

func ErrorfWithError(err error, format string, args ...interface{}) {
	if !logEnabled(ErrorLevel) {
		return
	}
	newFuncCtxWithFields(backtraceOneLevel, log.Fields{errorKey: err}).log(ErrorLevel, fmt.Sprintf(format, args...))
}

func TracefWithError(err error, format string, args ...interface{}) {
	if !logEnabled(TraceLevel) {
		return
	}
	newFuncCtxWithFields(backtraceOneLevel, log.Fields{errorKey: err}).log(TraceLevel, fmt.Sprintf(format, args...))
}

func WarnfWithError(err error, format string, args ...interface{}) {
	if !logEnabled(WarnLevel) {
		return
	}
	newFuncCtxWithFields(backtraceOneLevel, log.Fields{errorKey: err}).log(WarnLevel, fmt.Sprintf(format, args...))
}

// TraceEnter logs function entry (if tracing is enabled for the calling
// package) and returns a FuncCtx for the matching, usually deferred, TraceExit.
func TraceEnter(argsPrefix string, args ...interface{}) (ctx FuncCtx) {
	if !logEnabled(TraceLevel) {
		return
	}

	ctx.funcContext = newFuncCtxWithFields(backtraceOneLevel, log.Fields{}).funcContext
	ctx.traceInternal(">> called", argsPrefix, args...)

	return ctx
}

// TraceExit generates a function exit trace with the provided parameters, and using
// the package and function set in FuncCtx by TraceEnter.
func (ctx *FuncCtx) TraceExit(argsPrefix string, args ...interface{}) {
	if !logEnabled(TraceLevel) || (nil == ctx.funcContext) {
		return
	}

	ctx.traceInternal("<< returning", argsPrefix, args...)
}

func (ctx *FuncCtx) traceInternal(formatPrefix string, argsPrefix string, args ...interface{}) {
	format := formatPrefix + " %s"
	for range args {
		format += " %+v"
	}
	ctx.log(TraceLevel, fmt.Sprintf(format, append([]interface{}{argsPrefix}, args...)...))
}

// log is our equivalent to logrus.entry.go's log function, and is intended to
// be the common low-level logging function used internal to this package.
//
// Following the example of logrus.entry.go's equivalent function, "this function
// is not declared with a pointer value because otherwise race conditions will
// occur when using multiple goroutines"
func (ctx FuncCtx) log(level Level, args ...interface{}) {

	// Return if trace level not enabled for this package
	if (level == TraceLevel) && !traceEnabled(ctx.getPackage()) {
		return
	}

	switch level {
	case PanicLevel:
		ctx.funcContext.Panic(args...)
	case FatalLevel:
		ctx.funcContext.Fatal(args...)
	case ErrorLevel:
		ctx.funcContext.Error(args...)
	case WarnLevel:
		ctx.funcContext.Warn(args...)
	case TraceLevel:
		ctx.funcContext.Info(args...)
	case InfoLevel:
		ctx.funcContext.Info(args...)
	case DebugLevel:
		ctx.funcContext.Debug(args...)
	}
}

func (ctx FuncCtx) logWithID(level Level, id string, args ...interface{}) {
	if (level == DebugLevel) && !debugEnabled(ctx.getPackage(), id) {
		return
	}
	ctx.log(level, args...)
}

// Add another target for log messages to be written to.  writer is an object
// with an io.Writer interface that's called once for each log message.
func AddLogTarget(writer io.Writer) {
	addLogTarget(writer)
}

// An example of a log target that captures the most recent n lines of log into
// an array.  Useful for writing test cases.
type LogBuffer struct {
	sync.Mutex
	LogEntries   []string // most recent log entry is [0]
	TotalEntries int      // count of all entries seen
}

type LogTarget struct {
	LogBuf *LogBuffer
}

// Initialize a LogTarget to hold upto nEntry log entries.
func (target *LogTarget) Init(nEntry int) {
	target.LogBuf = &LogBuffer{TotalEntries: 0}
	target.LogBuf.LogEntries = make([]string, nEntry)
}

// Called by logger for each log entry
func (target LogTarget) Write(p []byte) (n int, err error) {
	return target.write(p)
}
