// Copyright 2026 The ulua Authors
// SPDX-License-Identifier: MIT

package ulua_test

import (
	"math"
	"testing"

	ulua "ulua.dev/go"
	"ulua.dev/go/lua"
)

func TestRoundTripScalars(t *testing.T) {
	state := new(lua.State)
	defer state.Close()

	t.Run("Integer", func(t *testing.T) {
		for _, want := range []int64{0, 1, -1, 42, math.MaxInt64, math.MinInt64} {
			ulua.Push(state, want)
			got, ok := ulua.FromValue[int64](state, -1)
			state.Pop(1)
			if got != want || !ok {
				t.Errorf("round trip of %d = %d, %t; want %d, true", want, got, ok, want)
			}
		}
	})

	t.Run("Number", func(t *testing.T) {
		for _, want := range []float64{0, -0.5, 3.14, math.MaxFloat64, math.Inf(1)} {
			ulua.Push(state, want)
			got, ok := ulua.FromValue[float64](state, -1)
			state.Pop(1)
			if got != want || !ok {
				t.Errorf("round trip of %g = %g, %t; want %g, true", want, got, ok, want)
			}
		}
	})

	t.Run("NaN", func(t *testing.T) {
		ulua.Push(state, math.NaN())
		got, ok := ulua.FromValue[float64](state, -1)
		state.Pop(1)
		if !math.IsNaN(got) || !ok {
			t.Errorf("round trip of NaN = %g, %t; want NaN, true", got, ok)
		}
	})

	t.Run("String", func(t *testing.T) {
		for _, want := range []string{"", "hello", "with\x00byte"} {
			ulua.Push(state, want)
			got, ok := ulua.FromValue[string](state, -1)
			state.Pop(1)
			if got != want || !ok {
				t.Errorf("round trip of %q = %q, %t; want %q, true", want, got, ok, want)
			}
		}
	})

	t.Run("Bytes", func(t *testing.T) {
		want := []byte{0, 1, 2, 0xff}
		ulua.Push(state, want)
		got, ok := ulua.FromValue[[]byte](state, -1)
		state.Pop(1)
		if string(got) != string(want) || !ok {
			t.Errorf("round trip of %v = %v, %t; want %v, true", want, got, ok, want)
		}
	})

	t.Run("Boolean", func(t *testing.T) {
		for _, want := range []bool{true, false} {
			ulua.Push(state, want)
			got, ok := ulua.FromValue[bool](state, -1)
			state.Pop(1)
			if got != want || !ok {
				t.Errorf("round trip of %t = %t, %t; want %t, true", want, got, ok, want)
			}
		}
	})
}

func TestFromValueStrictness(t *testing.T) {
	state := new(lua.State)
	defer state.Close()

	t.Run("FloatIsNotInteger", func(t *testing.T) {
		state.PushNumber(3.0)
		defer state.Pop(1)
		if got, ok := ulua.FromValue[int64](state, -1); ok {
			t.Errorf("FromValue[int64] of float slot = %d, true; want _, false", got)
		}
		// The same slot still converts as a float.
		if got, ok := ulua.FromValue[float64](state, -1); got != 3.0 || !ok {
			t.Errorf("FromValue[float64] of float slot = %g, %t; want 3, true", got, ok)
		}
	})

	t.Run("StringIsNotInteger", func(t *testing.T) {
		state.PushString("42")
		defer state.Pop(1)
		if got, ok := ulua.FromValue[int64](state, -1); ok {
			t.Errorf("FromValue[int64] of string slot = %d, true; want _, false", got)
		}
	})

	t.Run("IntegerIsNumber", func(t *testing.T) {
		state.PushInteger(42)
		defer state.Pop(1)
		if got, ok := ulua.FromValue[float64](state, -1); got != 42 || !ok {
			t.Errorf("FromValue[float64] of integer slot = %g, %t; want 42, true", got, ok)
		}
	})

	t.Run("TruthyBool", func(t *testing.T) {
		state.PushString("anything")
		defer state.Pop(1)
		if got, ok := ulua.FromValue[bool](state, -1); !got || !ok {
			t.Errorf("FromValue[bool] of string slot = %t, %t; want true, true", got, ok)
		}
	})

	t.Run("MissingSlot", func(t *testing.T) {
		if _, ok := ulua.FromValue[int64](state, state.Top()+1); ok {
			t.Error("FromValue[int64] past the top = _, true; want _, false")
		}
	})
}

func TestOpt(t *testing.T) {
	state := new(lua.State)
	defer state.Close()

	ulua.Push(state, ulua.Some(int64(7)))
	if got, ok := ulua.FromValue[int64](state, -1); got != 7 || !ok {
		t.Errorf("pushed Some(7), read back %d, %t; want 7, true", got, ok)
	}
	state.Pop(1)

	ulua.Push(state, ulua.Opt[int64]{})
	if tp := state.Type(-1); tp != lua.TypeNil {
		t.Errorf("pushed invalid Opt, slot type = %v; want nil", tp)
	}
	state.Pop(1)
}

func TestStrictBool(t *testing.T) {
	state := new(lua.State)
	defer state.Close()

	// A truthy non-boolean converts as bool but not as StrictBool.
	state.PushClosure(0, func(l *lua.State) (int, error) {
		if _, err := ulua.Args[ulua.Tuple1[ulua.StrictBool]](l); err == nil {
			t.Error("Args[Tuple1[StrictBool]] on string argument succeeded; want error")
		}
		return 0, nil
	})
	state.PushString("truthy")
	if err := state.Call(1, 0, 0); err != nil {
		t.Fatal(err)
	}

	// An actual false is distinct from a conversion failure.
	var b ulua.Tuple1[ulua.StrictBool]
	state.PushClosure(0, func(l *lua.State) (int, error) {
		var err error
		b, err = ulua.Args[ulua.Tuple1[ulua.StrictBool]](l)
		return 0, err
	})
	state.PushBoolean(false)
	if err := state.Call(1, 0, 0); err != nil {
		t.Fatal(err)
	}
	if bool(b.A) {
		t.Error("StrictBool of false slot = true; want false")
	}
}
