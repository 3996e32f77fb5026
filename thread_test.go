// Copyright 2026 The ulua Authors
// SPDX-License-Identifier: MIT

package ulua_test

import (
	"strings"
	"sync/atomic"
	"testing"

	ulua "ulua.dev/go"
	"ulua.dev/go/lua"
)

func TestSpawn(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		state := new(lua.State)
		defer state.Close()

		var ran atomic.Bool
		state.PushClosure(0, func(l *lua.State) (int, error) {
			ran.Store(true)
			return 0, nil
		})
		th, err := ulua.Spawn(state)
		if err != nil {
			t.Fatal(err)
		}
		if err := th.Wait(); err != nil {
			t.Fatal(err)
		}
		if !ran.Load() {
			t.Error("spawned callable did not run")
		}
		// The callable was moved off the spawner's stack.
		if got, want := state.Top(), 0; got != want {
			t.Errorf("state.Top() = %d; want %d", got, want)
		}
	})

	t.Run("Failure", func(t *testing.T) {
		state := new(lua.State)
		defer state.Close()

		state.PushClosure(0, func(l *lua.State) (int, error) {
			panic("kablooey")
		})
		th, err := ulua.Spawn(state)
		if err != nil {
			t.Fatal(err)
		}
		werr := th.Wait()
		if werr == nil {
			t.Fatal("th.Wait() = <nil>; want error")
		}
		if !strings.Contains(werr.Error(), "kablooey") {
			t.Errorf("th.Wait() = %v; want to contain %q", werr, "kablooey")
		}
		// Wait is idempotent: the single completion token is cached.
		if again := th.Wait(); again != werr {
			t.Errorf("second th.Wait() = %v; want %v", again, werr)
		}
	})

	t.Run("NotCallable", func(t *testing.T) {
		state := new(lua.State)
		defer state.Close()

		state.PushInteger(42)
		if _, err := ulua.Spawn(state); err == nil {
			t.Error("ulua.Spawn(state) = _, <nil> on integer; want error")
		}
		state.Pop(1)
	})

	t.Run("FinalizersRunInSpawnedState", func(t *testing.T) {
		state := new(lua.State)
		defer state.Close()

		var released atomic.Int32
		ulua.PushClosureRelease(state, func(l *lua.State) (int, error) {
			return 0, nil
		}, func() {
			released.Add(1)
		})
		th, err := ulua.Spawn(state)
		if err != nil {
			t.Fatal(err)
		}
		if err := th.Wait(); err != nil {
			t.Fatal(err)
		}
		if got := released.Load(); got != 1 {
			t.Errorf("release hook ran %d times after thread completion; want 1", got)
		}
	})
}

func TestThreadLibrary(t *testing.T) {
	state := new(lua.State)
	defer state.Close()

	if err := ulua.OpenLibraries(state); err != nil {
		t.Fatal(err)
	}

	var ran atomic.Bool
	state.PushClosure(0, func(l *lua.State) (int, error) {
		ran.Store(true)
		return 0, nil
	})
	if err := state.SetGlobal("work", 0); err != nil {
		t.Fatal(err)
	}

	// handle = thread.spawn(work)
	if _, err := state.Global("thread", 0); err != nil {
		t.Fatal(err)
	}
	if _, err := state.Field(-1, "spawn", 0); err != nil {
		t.Fatal(err)
	}
	if _, err := state.Global("work", 0); err != nil {
		t.Fatal(err)
	}
	if err := state.Call(1, 1, 0); err != nil {
		t.Fatal(err)
	}

	// err = handle:join()
	if _, err := state.Field(-1, "join", 0); err != nil {
		t.Fatal(err)
	}
	state.PushValue(-2)
	if err := state.Call(1, 1, 0); err != nil {
		t.Fatal(err)
	}
	if !state.IsNil(-1) {
		msg, _ := state.ToString(-1)
		t.Errorf("handle:join() = %q; want nil", msg)
	}
	if !ran.Load() {
		t.Error("spawned callable did not run")
	}
	state.Pop(3) // join result, handle, thread table

	// thread.sleep rejects non-integer durations.
	if _, err := state.Global("thread", 0); err != nil {
		t.Fatal(err)
	}
	if _, err := state.Field(-1, "sleep", 0); err != nil {
		t.Fatal(err)
	}
	state.PushString("soon")
	if err := state.Call(1, 0, 0); err == nil {
		t.Error("thread.sleep(\"soon\") succeeded; want error")
	} else {
		state.Pop(1) // error text
	}
	state.Pop(1)
}
