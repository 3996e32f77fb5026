// Copyright 2026 The ulua Authors
// SPDX-License-Identifier: MIT

package ulua_test

import (
	"errors"
	"strings"
	"testing"

	ulua "ulua.dev/go"
	"ulua.dev/go/lua"
)

func TestPushClosure(t *testing.T) {
	t.Run("CallableManyTimes", func(t *testing.T) {
		state := new(lua.State)
		defer state.Close()

		calls := 0
		ulua.PushClosure(state, func(l *lua.State) (int, error) {
			calls++
			l.PushInteger(int64(calls))
			return 1, nil
		})
		const n = 100
		for i := 1; i <= n; i++ {
			state.PushValue(-1)
			if err := state.Call(0, 1, 0); err != nil {
				t.Fatal(err)
			}
			if got, ok := state.ToInteger(-1); got != int64(i) || !ok {
				t.Fatalf("call %d returned %d, %t; want %d, true", i, got, ok, i)
			}
			state.Pop(1)
		}
		if calls != n {
			t.Errorf("closure ran %d times; want %d", calls, n)
		}
	})

	t.Run("ErrorPropagates", func(t *testing.T) {
		state := new(lua.State)
		defer state.Close()

		bork := errors.New("bork")
		ulua.PushClosure(state, func(l *lua.State) (int, error) {
			return 0, bork
		})
		err := state.Call(0, 0, 0)
		if err == nil {
			t.Fatal("call succeeded; want error")
		}
		if !strings.Contains(err.Error(), "bork") {
			t.Errorf("error = %v; want to contain %q", err, "bork")
		}
		state.Pop(1) // error text
	})

	t.Run("PanicBecomesError", func(t *testing.T) {
		state := new(lua.State)
		defer state.Close()

		ulua.PushClosure(state, func(l *lua.State) (int, error) {
			panic("kablooey")
		})
		top := state.Top()
		err := state.Call(0, 0, 0)
		if err == nil {
			t.Fatal("call succeeded; want error")
		}
		if !strings.Contains(err.Error(), "kablooey") {
			t.Errorf("error = %v; want to contain %q", err, "kablooey")
		}
		// Function popped, error text pushed.
		if got := state.Top(); got != top {
			t.Errorf("state.Top() = %d after failed call; want %d", got, top)
		}
		state.Pop(1)
	})
}

func TestPushClosureRelease(t *testing.T) {
	t.Run("ReleaseOnceOnGC", func(t *testing.T) {
		state := new(lua.State)
		defer state.Close()

		released := 0
		calls := 0
		ulua.PushClosureRelease(state, func(l *lua.State) (int, error) {
			calls++
			return 0, nil
		}, func() {
			released++
		})

		// Call a few times, then drop the only reference.
		for i := 0; i < 3; i++ {
			state.PushValue(-1)
			if err := state.Call(0, 0, 0); err != nil {
				t.Fatal(err)
			}
		}
		state.Pop(1)
		if released != 0 {
			t.Fatalf("release hook ran %d times before collection; want 0", released)
		}
		if err := state.GC(); err != nil {
			t.Fatal(err)
		}
		if released != 1 {
			t.Errorf("release hook ran %d times after GC; want 1", released)
		}
		if err := state.GC(); err != nil {
			t.Fatal(err)
		}
		if released != 1 {
			t.Errorf("release hook ran %d times after second GC; want 1", released)
		}
		if calls != 3 {
			t.Errorf("closure ran %d times; want 3", calls)
		}
	})

	t.Run("ReleaseOnClose", func(t *testing.T) {
		state := new(lua.State)

		released := 0
		ulua.PushClosureRelease(state, func(l *lua.State) (int, error) {
			return 0, nil
		}, func() {
			released++
		})
		if err := state.Close(); err != nil {
			t.Fatal(err)
		}
		if released != 1 {
			t.Errorf("release hook ran %d times after Close; want 1", released)
		}
	})

	t.Run("NotReleasedWhileReachable", func(t *testing.T) {
		state := new(lua.State)
		defer state.Close()

		released := 0
		ulua.PushClosureRelease(state, func(l *lua.State) (int, error) {
			return 0, nil
		}, func() {
			released++
		})
		if err := state.SetGlobal("f", 0); err != nil {
			t.Fatal(err)
		}
		if err := state.GC(); err != nil {
			t.Fatal(err)
		}
		if released != 0 {
			t.Errorf("release hook ran %d times while closure reachable as global; want 0", released)
		}
	})
}

func TestWrap(t *testing.T) {
	state := new(lua.State)
	defer state.Close()

	concat := ulua.Wrap(func(l *lua.State, args ulua.Tuple2[int64, string]) (ulua.Tuple1[string], error) {
		out := args.B
		for i := int64(0); i < args.A; i++ {
			out += "!"
		}
		return ulua.Tuple1[string]{A: out}, nil
	})

	state.PushClosure(0, concat)
	state.PushInteger(3)
	state.PushString("go")
	if err := state.Call(2, 1, 0); err != nil {
		t.Fatal(err)
	}
	if got, ok := state.ToString(-1); got != "go!!!" || !ok {
		t.Errorf("wrapped call returned %q, %t; want %q, true", got, ok, "go!!!")
	}
	state.Pop(1)

	// Argument mismatch aborts with a positional message.
	state.PushClosure(0, concat)
	state.PushString("not a number")
	state.PushString("go")
	err := state.Call(2, 1, 0)
	if err == nil {
		t.Fatal("wrapped call succeeded; want argument error")
	}
	if got := err.Error(); !strings.Contains(got, "#1") || !strings.Contains(got, "integer expected") {
		t.Errorf("error %q does not report the offending argument", got)
	}
	state.Pop(1)
}
