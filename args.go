// Copyright 2026 The ulua Authors
// SPDX-License-Identifier: MIT

package ulua

import "ulua.dev/go/lua"

// Arg extracts the mandatory native-function argument at the given index.
// On mismatch it returns an error naming the argument position
// and the expected versus actual types;
// returning that error from a [lua.Function] aborts the call
// and surfaces the message to the caller.
//
// For bool, Arg follows Lua truthiness and never fails.
func Arg[T Scalar](l *lua.State, idx int) (T, error) {
	var v T
	if err := fromLuaElem(l, idx, &v); err != nil {
		var zero T
		return zero, lua.NewTypeError(l, idx, err.Want)
	}
	return v, nil
}

// OptArg extracts an optional native-function argument.
// A missing, nil, or mismatched slot yields (zero, false)
// and the native call proceeds.
//
// Unlike [Arg], OptArg for bool requires an actual boolean:
// an optional truthiness test would be satisfied by every value,
// which is never what an optional argument means.
func OptArg[T Scalar](l *lua.State, idx int) (T, bool) {
	var v T
	if _, isBool := any(v).(bool); isBool && l.Type(idx) != lua.TypeBoolean {
		return v, false
	}
	if err := fromLuaElem(l, idx, &v); err != nil {
		var zero T
		return zero, false
	}
	return v, true
}

// Args unpacks all of a native function's arguments at once,
// as a tuple starting at index 1.
// On mismatch it returns the same positional error [Arg] would.
func Args[A any, PA tuplePtr[A]](l *lua.State) (A, error) {
	var args A
	if err := PA(&args).fromStack(l, 1); err != nil {
		return args, lua.NewTypeError(l, err.Index, err.Want)
	}
	return args, nil
}
