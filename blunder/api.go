// Copyright (c) 2015-2021, NVIDIA CORPORATION.
// SPDX-License-Identifier: Apache-2.0

// Package blunder provides error-handling wrappers
//
// These wrappers allow callers to provide additional information in Go errors
// while still conforming to the Go error interface.
//
// This package provides APIs to add an errno-style error kind to regular Go
// errors.  Callers of the sort packages can then tell resource exhaustion
// (OutOfMemoryError) from bad configuration (InvalidArgError) without string
// matching.
//
// This package is currently implemented on top of the ansel1/merry package:
//
//	https://github.com/ansel1/merry
//
//	merry comes with built-in support for adding information to errors:
//	 - stacktraces
//	 - overriding the error message
//	 - your own additional information
package blunder

import (
	"fmt"

	"github.com/ansel1/merry"
	"golang.org/x/sys/unix"

	"github.com/NVIDIA/treesort/logger"
)

// SortError is the kind of a treesort error.
//
// There are two groups of constants:
//   - constants that correspond to linux/POSIX errnos as defined in errno.h
//   - treesort-specific constants for errors not covered in the errno space
type SortError int

const (
	// Errors that map to linux/POSIX errnos as defined in errno.h
	//
	OutOfMemoryError    SortError = SortError(int(unix.ENOMEM))  // Out of memory
	InvalidArgError     SortError = SortError(int(unix.EINVAL))  // Invalid argument
	NotSupportedError   SortError = SortError(int(unix.ENOTSUP)) // Operation not supported
	OutOfRangeError     SortError = SortError(int(unix.ERANGE))  // Math result not representable
	TooBigError         SortError = SortError(int(unix.E2BIG))   // Argument list too long
	NotImplementedError SortError = SortError(int(unix.ENOSYS))  // Function not implemented
)

// Errors that map to constants already defined above
const (
	ScratchExhaustedError SortError = OutOfMemoryError
	BadConfigError        SortError = InvalidArgError
	UnknownStrategyError  SortError = InvalidArgError
	UnknownPatternError   SortError = InvalidArgError
)

// Success error
const SuccessError SortError = 0

const ( // reset iota to 0
	// Errors that are internal/specific to treesort
	InjectedFaultError SortError = 1000 + iota
	CorruptTreeError
)

// Default errno values for success and failure
const successErrno = 0
const failureErrno = -1

// Value returns the int value for the specified SortError constant
func (err SortError) Value() int {
	return int(err)
}

func (err SortError) String() string {
	switch err {
	case SuccessError:
		return "SuccessError"
	case OutOfMemoryError:
		return "OutOfMemoryError"
	case InvalidArgError:
		return "InvalidArgError"
	case NotSupportedError:
		return "NotSupportedError"
	case OutOfRangeError:
		return "OutOfRangeError"
	case TooBigError:
		return "TooBigError"
	case NotImplementedError:
		return "NotImplementedError"
	case InjectedFaultError:
		return "InjectedFaultError"
	case CorruptTreeError:
		return "CorruptTreeError"
	}
	return fmt.Sprintf("SortError(%d)", int(err))
}

// NewError creates a new merry/blunder.SortError-annotated error using the given
// format string and arguments.
func NewError(errValue SortError, format string, a ...interface{}) error {
	return merry.WrapSkipping(fmt.Errorf(format, a...), 1).WithValue("errno", int(errValue))
}

// AddError is used to add a SortError kind to a Go error.
//
// NOTE: Checks whether the error value has already been set
//
//	Note that by default merry will replace the old with the new.
func AddError(e error, errValue SortError) error {
	if e == nil {
		// The caller obviously intends to make this a non-nil error.
		return merry.New("regular error").WithValue("errno", int(errValue))
	}

	prevValue := Errno(e)
	if prevValue != successErrno && prevValue != failureErrno {
		logger.Warnf("replacing error value %v with value %v for error %v", prevValue, int(errValue), e)
	}

	return merry.WrapSkipping(e, 1).WithValue("errno", int(errValue))
}

// Errno extracts errno from the error, if it was previously wrapped.
// Otherwise a default value is returned.
func Errno(e error) int {
	if e == nil {
		// nil error = success
		return successErrno
	}

	// If the "errno" key/value was not present, merry.Value returns nil.
	var errno = failureErrno
	tmp := merry.Value(e, "errno")
	if tmp != nil {
		errno = tmp.(int)
	}

	return errno
}

func ErrorString(e error) string {
	if e == nil {
		return ""
	}

	errPlusVal := e.Error()

	tmp := merry.Value(e, "errno")
	if tmp != nil {
		errPlusVal = fmt.Sprintf("%s. Error Value: %v", errPlusVal, SortError(tmp.(int)))
	}

	return errPlusVal
}

// Check if an error matches a particular SortError
//
// NOTE: Because the value of the underlying errno is used to do this check, one cannot
//
//	use this API to distinguish between SortErrors that use the same errno value.
//	IOW, it can't tell the difference between BadConfigError and InvalidArgError.
func Is(e error, theError SortError) bool {
	return Errno(e) == theError.Value()
}

// Check if an error is NOT a particular SortError
func IsNot(e error, theError SortError) bool {
	return Errno(e) != theError.Value()
}

// Check if an error is the success SortError
func IsSuccess(e error) bool {
	return Errno(e) == successErrno
}

// Check if an error is NOT the success SortError
func IsNotSuccess(e error) bool {
	return Errno(e) != successErrno
}

// Location returns the file and line number of the code that generated the error.
// Returns zero values if e has no stacktrace.
func Location(e error) (file string, line int) {
	file, line = merry.Location(e)
	return
}

// SourceLine returns the string representation of Location's result
// Returns empty string if e has no stacktrace.
func SourceLine(e error) string {
	return merry.SourceLine(e)
}

// Details wraps merry.Details, which returns all error details including stacktrace in a string.
func Details(e error) string {
	return merry.Details(e)
}

// Stacktrace wraps merry.Stacktrace, which returns error stacktrace (if set) in a string.
func Stacktrace(e error) string {
	return merry.Stacktrace(e)
}
