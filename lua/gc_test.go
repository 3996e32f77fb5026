// Copyright 2026 The ulua Authors
// SPDX-License-Identifier: MIT

package lua

import (
	"testing"
)

// pushFinalizedUserdata pushes a userdata whose __gc metamethod
// increments *count.
func pushFinalizedUserdata(tb testing.TB, state *State, count *int) {
	tb.Helper()
	state.NewUserdata("payload", 0)
	state.CreateTable(0, 1)
	state.PushClosure(0, func(l *State) (int, error) {
		*count++
		return 0, nil
	})
	state.RawSetField(-2, "__gc")
	state.SetMetatable(-2)
}

func TestGC(t *testing.T) {
	t.Run("UnreachableFinalized", func(t *testing.T) {
		state := new(State)
		defer state.Close()

		count := 0
		pushFinalizedUserdata(t, state, &count)
		state.Pop(1)
		if err := state.GC(); err != nil {
			t.Fatal(err)
		}
		if count != 1 {
			t.Errorf("finalizer ran %d times; want 1", count)
		}

		// A second collection must not run the finalizer again.
		if err := state.GC(); err != nil {
			t.Fatal(err)
		}
		if count != 1 {
			t.Errorf("finalizer ran %d times after second GC; want 1", count)
		}
	})

	t.Run("ReachableKept", func(t *testing.T) {
		state := new(State)
		defer state.Close()

		count := 0
		pushFinalizedUserdata(t, state, &count)
		if err := state.GC(); err != nil {
			t.Fatal(err)
		}
		if count != 0 {
			t.Errorf("finalizer ran %d times while value on stack; want 0", count)
		}

		// Reachable through the registry only.
		state.RawSetField(RegistryIndex, "keep")
		if err := state.GC(); err != nil {
			t.Fatal(err)
		}
		if count != 0 {
			t.Errorf("finalizer ran %d times while value in registry; want 0", count)
		}
	})

	t.Run("CloseFinalizes", func(t *testing.T) {
		state := new(State)

		count := 0
		pushFinalizedUserdata(t, state, &count)
		if err := state.Close(); err != nil {
			t.Fatal(err)
		}
		if count != 1 {
			t.Errorf("finalizer ran %d times after Close; want 1", count)
		}
	})

	t.Run("ReachableThroughUpvalue", func(t *testing.T) {
		state := new(State)
		defer state.Close()

		count := 0
		pushFinalizedUserdata(t, state, &count)
		state.PushClosure(1, func(l *State) (int, error) {
			return 0, nil
		})
		if err := state.GC(); err != nil {
			t.Fatal(err)
		}
		if count != 0 {
			t.Errorf("finalizer ran %d times while value held as upvalue; want 0", count)
		}
		state.Pop(1)
		if err := state.GC(); err != nil {
			t.Fatal(err)
		}
		if count != 1 {
			t.Errorf("finalizer ran %d times after dropping closure; want 1", count)
		}
	})
}

func TestXMoveTransfersFinalization(t *testing.T) {
	src := new(State)
	dst := new(State)
	defer dst.Close()

	count := 0
	pushFinalizedUserdata(t, src, &count)
	src.XMove(dst, 1)
	if err := src.Close(); err != nil {
		t.Fatal(err)
	}
	if count != 0 {
		t.Errorf("finalizer ran %d times after closing source state; want 0", count)
	}
	if err := dst.Close(); err != nil {
		t.Fatal(err)
	}
	if count != 1 {
		t.Errorf("finalizer ran %d times after closing destination state; want 1", count)
	}
}
