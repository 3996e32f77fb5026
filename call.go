// Copyright 2026 The ulua Authors
// SPDX-License-Identifier: MIT

package ulua

import (
	"errors"
	"fmt"

	"ulua.dev/go/lua"
)

// ErrResultMismatch reports that a call completed
// but its results did not convert to the requested tuple type.
// It is distinct from the machine's own runtime errors,
// which carry a status code retrievable with [lua.AsError].
var ErrResultMismatch = errors.New("ulua: call results do not match expected types")

// Call invokes the callable at fnIndex in protected mode
// with the given argument tuple,
// and decodes the results as the tuple R.
// The callable itself is not popped,
// and the stack height around the call is restored
// whether the call succeeds or fails:
// unlike [lua.State.Call], the error text of a failed call
// is popped before returning.
//
// A runtime error inside the callable is returned as-is
// (inspect it with [lua.AsError]);
// results that do not convert return an error
// wrapping [ErrResultMismatch].
func Call[R any, PR tuplePtr[R]](l *lua.State, fnIndex int, args Tuple) (R, error) {
	var results R
	pr := PR(&results)
	fnIndex = l.AbsIndex(fnIndex)
	l.PushValue(fnIndex)
	base := l.Top()
	args.PushLua(l)
	if err := l.Call(args.Arity(), pr.Arity(), 0); err != nil {
		l.Pop(1)
		return results, err
	}
	convErr := pr.fromStack(l, base)
	l.SetTop(base - 1)
	if convErr != nil {
		return results, fmt.Errorf("%w: %v", ErrResultMismatch, convErr)
	}
	return results, nil
}

// Balanced runs f and restores the stack top afterward,
// on success, error, and panic alike.
// Values pushed beyond the recorded top are discarded;
// slots popped below it are refilled with nil.
func Balanced(l *lua.State, f func(l *lua.State) error) error {
	top := l.Top()
	defer func() {
		l.SetTop(top)
	}()
	return f(l)
}
