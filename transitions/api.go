// Copyright (c) 2015-2021, NVIDIA CORPORATION.
// SPDX-License-Identifier: Apache-2.0

package transitions

import (
	"github.com/NVIDIA/treesort/conf"
)

// Callbacks is the interface implemented by each package desiring notification of
// configuration changes. Each such package should implement a struct with pointer
// receivers for each API listed below even when there is no interest in being
// notified of a particular condition.
//
// By calling transitions.Register() in the package's init() func, the proper order
// of registration will be ensured. Up() and Signaled() callbacks are issued in the
// same order as package init() func calls have registered while Down() callbacks
// are issued in the reverse order.
type Callbacks interface {
	Up(confMap conf.ConfMap) (err error)
	Signaled(confMap conf.ConfMap) (err error)
	Down(confMap conf.ConfMap) (err error)
}

// Register should be called from a package's init() func should the package be interested
// in one or more of the callbacks that they will receive. Each callback func should receive
// a struct implementing the Callbacks interface by reference.
//
// As an example, consider the following:
//
//	package foo
//
//	import "github.com/NVIDIA/treesort/conf"
//	import "github.com/NVIDIA/treesort/transitions"
//
//	type transitionsCallbackInterfaceStruct struct {
//	}
//
//	var transitionsCallbackInterface transitionsCallbackInterfaceStruct
//
//	func init() {
//	    transitions.Register("foo", &transitionsCallbackInterface)
//	}
//
//	func (transitionsCallbackInterface *transitionsCallbackInterfaceStruct) Up(confMap conf.ConfMap) (err error) {
//	    // Perform start-up initialization derived from confMap
//	    // ...set err at some point
//	    return
//	}
//
//	...
//
// A special exception to the need for registration is the package logger. Package
// transitions makes an explicit reference to logging functions in package logger and,
// as such, will perform the registration for package logger itself.
func Register(packageName string, callbacks Callbacks) {
	register(packageName, callbacks)
}

// Up should be called at startup by the main() (or setup func) of each program including
// any of the packages needing callback notifications. This will trigger Up() callbacks
// to each of the packages that have registered with package transitions starting with
// package logger (that was registered automatically by package transitions).
//
// Should one of the Up() callbacks fail, the packages already brought up are brought
// back down (in reverse order) before the error is returned.
func Up(confMap conf.ConfMap) (err error) {
	return up(confMap)
}

// Signaled should be called during execution of a signal handler for e.g. SIGHUP by the
// main() (or monitoring func) of each program to apply an updated confMap. Signaled()
// callbacks are issued in registration order.
func Signaled(confMap conf.ConfMap) (err error) {
	return signaled(confMap)
}

// Down should be called just before shutdown by the main() (or teardown func) of each
// program including any of the packages needing callback notifications. This will trigger
// Down() callbacks to each of the packages that have registered with package transitions
// ending with package logger (that was registered automatically by package transitions).
func Down(confMap conf.ConfMap) (err error) {
	return down(confMap)
}

// Registered returns the names of the registered packages in registration order.
func Registered() (packageNames []string) {
	return registered()
}
