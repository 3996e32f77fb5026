// Copyright 2026 The ulua Authors
// SPDX-License-Identifier: MIT

package ulua_test

import (
	"strings"
	"testing"

	ulua "ulua.dev/go"
	"ulua.dev/go/lua"
)

func TestTupleArity(t *testing.T) {
	tuples := []ulua.Tuple{
		new(ulua.Tuple0),
		new(ulua.Tuple1[int64]),
		new(ulua.Tuple2[int64, string]),
		new(ulua.Tuple3[int64, string, bool]),
		new(ulua.Tuple4[int64, int64, int64, int64]),
		new(ulua.Tuple5[int64, int64, int64, int64, int64]),
		new(ulua.Tuple6[int64, int64, int64, int64, int64, int64]),
		new(ulua.Tuple7[int64, int64, int64, int64, int64, int64, int64]),
		new(ulua.Tuple8[int64, int64, int64, int64, int64, int64, int64, int64]),
		new(ulua.Tuple9[int64, int64, int64, int64, int64, int64, int64, int64, int64]),
	}
	for want, tuple := range tuples {
		if got := tuple.Arity(); got != want {
			t.Errorf("%T.Arity() = %d; want %d", tuple, got, want)
		}
	}
}

func TestTuplePush(t *testing.T) {
	state := new(lua.State)
	defer state.Close()

	for _, tuple := range []ulua.Tuple{
		new(ulua.Tuple0),
		&ulua.Tuple1[int64]{A: 1},
		&ulua.Tuple2[int64, string]{A: 1, B: "two"},
		&ulua.Tuple9[int64, int64, int64, int64, int64, int64, int64, int64, int64]{},
	} {
		before := state.Top()
		tuple.PushLua(state)
		if got, want := state.Top()-before, tuple.Arity(); got != want {
			t.Errorf("%T.PushLua pushed %d slots; want %d", tuple, got, want)
		}
		state.SetTop(before)
	}
}

func TestTuplePushOrder(t *testing.T) {
	state := new(lua.State)
	defer state.Close()

	tuple := &ulua.Tuple3[int64, string, bool]{A: 1, B: "two", C: true}
	tuple.PushLua(state)
	if got, want := state.Top(), 3; got != want {
		t.Fatalf("state.Top() = %d; want %d", got, want)
	}
	if n, ok := state.ToInteger(1); n != 1 || !ok {
		t.Errorf("slot 1 = %d, %t; want 1, true", n, ok)
	}
	if s, ok := state.ToString(2); s != "two" || !ok {
		t.Errorf("slot 2 = %q, %t; want %q, true", s, ok, "two")
	}
	if b := state.ToBoolean(3); !b {
		t.Error("slot 3 = false; want true")
	}
}

func TestArgsReportsFirstMismatch(t *testing.T) {
	state := new(lua.State)
	defer state.Close()

	state.PushClosure(0, func(l *lua.State) (int, error) {
		_, err := ulua.Args[ulua.Tuple3[int64, int64, int64]](l)
		return 0, err
	})
	state.PushInteger(1)
	state.PushString("two")
	state.PushInteger(3)
	err := state.Call(3, 0, 0)
	if err == nil {
		t.Fatal("call succeeded; want argument error")
	}
	got := err.Error()
	for _, want := range []string{"#2", "integer expected", "got string"} {
		if !strings.Contains(got, want) {
			t.Errorf("error %q does not contain %q", got, want)
		}
	}
}
