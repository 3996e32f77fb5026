// Copyright 2026 The ulua Authors
// SPDX-License-Identifier: MIT

package ulua

import (
	"errors"
	"runtime"
	"sync"
	"time"

	"ulua.dev/go/lua"
)

// A Thread is a state running a callable on its own goroutine.
// The state is owned by that goroutine for the thread's whole lifetime;
// the spawner only ever observes the completion token through [Thread.Wait].
type Thread struct {
	once sync.Once
	done chan error
	err  error
}

// Spawn pops the callable on top of l,
// moves it into a fresh state,
// and runs it with no arguments on a new goroutine.
// The new state is closed after the callable returns,
// running any pending finalizers.
// Exactly one completion token is delivered; retrieve it with [Thread.Wait].
func Spawn(l *lua.State) (*Thread, error) {
	if l.Type(-1) != lua.TypeFunction {
		return nil, errors.New("ulua: spawn: top of stack is not callable")
	}
	dst := new(lua.State)
	l.XMove(dst, 1)
	t := &Thread{done: make(chan error, 1)}
	go func() {
		err := dst.Call(0, 0, 0)
		if err != nil {
			dst.Pop(1) // error text
		}
		t.done <- errors.Join(err, dst.Close())
	}()
	return t, nil
}

// Wait blocks until the thread's callable has returned
// and its state has been closed,
// then returns the thread's outcome.
// Wait may be called any number of times, from any goroutine;
// every call returns the same outcome.
func (t *Thread) Wait() error {
	t.once.Do(func() {
		t.err = <-t.done
	})
	return t.err
}

// threadType is the object type for thread handles
// returned by the thread library's spawn function.
var threadType = newThreadType()

func newThreadType() *ObjectType {
	tp := NewObjectType("thread")
	tp.IndexSelf = true
	tp.Methods = map[string]lua.Function{
		"join": Method(tp, func(self *Thread, _ Tuple0) (Tuple1[Opt[string]], error) {
			if err := self.Wait(); err != nil {
				return Tuple1[Opt[string]]{A: Some(err.Error())}, nil
			}
			return Tuple1[Opt[string]]{}, nil
		}),
	}
	return tp
}

// OpenThread is a [lua.Function] that loads the thread library.
// The library provides:
//
//	spawn(f)     start f on a new goroutine in its own state; returns a handle
//	sleep(ms)    block the calling goroutine for ms milliseconds
//	yield_now()  yield the calling goroutine's processor
//
// A handle's join() method waits for completion
// and returns the error message, or nil on success.
func OpenThread(l *lua.State) (int, error) {
	err := lua.NewLib(l, map[string]lua.Function{
		"spawn":     threadSpawn,
		"sleep":     threadSleep,
		"yield_now": threadYieldNow,
	})
	if err != nil {
		return 0, err
	}
	return 1, nil
}

func threadSpawn(l *lua.State) (int, error) {
	if l.Type(1) != lua.TypeFunction {
		return 0, lua.NewTypeError(l, 1, lua.TypeFunction.String())
	}
	l.SetTop(1)
	t, err := Spawn(l)
	if err != nil {
		return 0, err
	}
	PushObject(l, threadType, t)
	return 1, nil
}

func threadSleep(l *lua.State) (int, error) {
	ms, err := Arg[int64](l, 1)
	if err != nil {
		return 0, err
	}
	if ms < 0 {
		return 0, lua.NewArgError(l, 1, "negative duration")
	}
	time.Sleep(time.Duration(ms) * time.Millisecond)
	return 0, nil
}

func threadYieldNow(l *lua.State) (int, error) {
	runtime.Gosched()
	return 0, nil
}

// OpenLibraries makes this package's libraries available in the state.
// Currently this is only the thread library.
func OpenLibraries(l *lua.State) error {
	if err := lua.Require(l, "thread", true, OpenThread); err != nil {
		return err
	}
	l.Pop(1)
	return nil
}
