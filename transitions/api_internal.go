// Copyright (c) 2015-2021, NVIDIA CORPORATION.
// SPDX-License-Identifier: Apache-2.0

package transitions

import (
	"container/list"
	"fmt"
	"sync"

	"github.com/NVIDIA/treesort/conf"
	"github.com/NVIDIA/treesort/logger"
)

type loggerCallbacksInterfaceStruct struct {
}

var loggerCallbacksInterface loggerCallbacksInterfaceStruct

type registrationItemStruct struct {
	packageName string
	callbacks   Callbacks
	up          bool
}

type globalsStruct struct {
	sync.Mutex       // Serializes Register() against Up()/Signaled()/Down()
	registrationList *list.List
	registrationSet  map[string]*registrationItemStruct // Key: registrationItemStruct.packageName
}

var globals globalsStruct

func init() {
	globals.Lock()
	globals.registrationList = list.New()
	globals.registrationSet = make(map[string]*registrationItemStruct)
	globals.Unlock()

	Register("logger", &loggerCallbacksInterface)
}

func register(packageName string, callbacks Callbacks) {
	globals.Lock()
	defer globals.Unlock()

	_, alreadyRegistered := globals.registrationSet[packageName]
	if alreadyRegistered {
		panic(fmt.Sprintf("transitions.Register(%s,) called twice", packageName))
	}

	registrationItem := &registrationItemStruct{packageName: packageName, callbacks: callbacks}
	_ = globals.registrationList.PushBack(registrationItem)
	globals.registrationSet[packageName] = registrationItem
}

func registered() (packageNames []string) {
	globals.Lock()
	defer globals.Unlock()

	packageNames = make([]string, 0, globals.registrationList.Len())
	for element := globals.registrationList.Front(); nil != element; element = element.Next() {
		packageNames = append(packageNames, element.Value.(*registrationItemStruct).packageName)
	}
	return
}

func up(confMap conf.ConfMap) (err error) {
	globals.Lock()
	defer globals.Unlock()

	defer func() {
		if nil == err {
			logger.Infof("transitions.Up() returning successfully")
		} else {
			// On the relatively good likelihood that at least logger.Up() worked...
			logger.Errorf("transitions.Up() returning with failure: %v", err)
		}
	}()

	// Issue Callbacks.Up() calls from Front() to Back() of globals.registrationList

	for element := globals.registrationList.Front(); nil != element; element = element.Next() {
		registrationItem := element.Value.(*registrationItemStruct)
		if registrationItem.up {
			continue
		}
		logger.Tracef("transitions.Up() calling %s.Up()", registrationItem.packageName)
		err = registrationItem.callbacks.Up(confMap)
		if nil != err {
			logger.Errorf("transitions.Up() call to %s.Up() failed: %v", registrationItem.packageName, err)
			err = fmt.Errorf("%s.Up() failed: %v", registrationItem.packageName, err)
			unwindLocked(confMap, element.Prev())
			return
		}
		registrationItem.up = true
	}

	return
}

// unwindLocked calls Down() from element back to the Front() of
// globals.registrationList for every package that is up
func unwindLocked(confMap conf.ConfMap, element *list.Element) {
	for ; nil != element; element = element.Prev() {
		registrationItem := element.Value.(*registrationItemStruct)
		if !registrationItem.up {
			continue
		}
		downErr := registrationItem.callbacks.Down(confMap)
		if nil != downErr {
			logger.Errorf("transitions unwind call to %s.Down() failed: %v", registrationItem.packageName, downErr)
		}
		registrationItem.up = false
	}
}

func signaled(confMap conf.ConfMap) (err error) {
	globals.Lock()
	defer globals.Unlock()

	logger.Infof("transitions.Signaled() called")
	defer func() {
		if nil == err {
			logger.Infof("transitions.Signaled() returning successfully")
		} else {
			logger.Errorf("transitions.Signaled() returning with failure: %v", err)
		}
	}()

	for element := globals.registrationList.Front(); nil != element; element = element.Next() {
		registrationItem := element.Value.(*registrationItemStruct)
		if !registrationItem.up {
			err = fmt.Errorf("transitions.Signaled() called while %s is not up", registrationItem.packageName)
			return
		}
		logger.Tracef("transitions.Signaled() calling %s.Signaled()", registrationItem.packageName)
		err = registrationItem.callbacks.Signaled(confMap)
		if nil != err {
			err = fmt.Errorf("%s.Signaled() failed: %v", registrationItem.packageName, err)
			return
		}
	}

	return
}

func down(confMap conf.ConfMap) (err error) {
	globals.Lock()
	defer globals.Unlock()

	logger.Infof("transitions.Down() called")

	// Issue Callbacks.Down() calls from Back() to Front() of globals.registrationList
	// continuing past failures so that every package gets its chance

	for element := globals.registrationList.Back(); nil != element; element = element.Prev() {
		registrationItem := element.Value.(*registrationItemStruct)
		if !registrationItem.up {
			continue
		}
		logger.Tracef("transitions.Down() calling %s.Down()", registrationItem.packageName)
		downErr := registrationItem.callbacks.Down(confMap)
		registrationItem.up = false
		if (nil != downErr) && (nil == err) {
			// On the relatively good likelihood that the failure occurred before calling logger.Down()...
			logger.Errorf("transitions.Down() call to %s.Down() failed: %v", registrationItem.packageName, downErr)
			err = fmt.Errorf("%s.Down() failed: %v", registrationItem.packageName, downErr)
		}
	}

	return
}

func (loggerCallbacksInterface *loggerCallbacksInterfaceStruct) Up(confMap conf.ConfMap) (err error) {
	return logger.Up(confMap)
}

func (loggerCallbacksInterface *loggerCallbacksInterfaceStruct) Signaled(confMap conf.ConfMap) (err error) {
	return logger.Signaled(confMap)
}

func (loggerCallbacksInterface *loggerCallbacksInterfaceStruct) Down(confMap conf.ConfMap) (err error) {
	return logger.Down(confMap)
}
