// Copyright 2026 The ulua Authors
// SPDX-License-Identifier: MIT

package lua

import "errors"

// Status codes reported by [AsError].
const (
	// Yield indicates a suspended coroutine.
	Yield int = 1
	// ErrRun indicates a runtime error.
	ErrRun int = 2
	// ErrSyntax indicates a syntax error during precompilation.
	ErrSyntax int = 3
	// ErrMem indicates a memory allocation error.
	ErrMem int = 4
	// ErrGC indicates an error while running a __gc metamethod.
	ErrGC int = 5
	// ErrErr indicates an error while running the message handler.
	ErrErr int = 6
)

// luaError is an error raised by the virtual machine,
// carrying the status code of the failed operation.
type luaError struct {
	code  int
	msg   string
	cause error
}

func (e *luaError) Error() string {
	if e.msg != "" {
		return e.msg
	}
	switch e.code {
	case ErrRun:
		return "runtime error"
	case ErrMem:
		return "memory allocation error"
	case ErrGC:
		return "error in __gc metamethod"
	case ErrErr:
		return "error while running message handler"
	case ErrSyntax:
		return "syntax error"
	case Yield:
		return "coroutine yield"
	default:
		return "unknown error"
	}
}

func (e *luaError) Unwrap() error {
	return e.cause
}

// AsError returns the status code of an error returned by the virtual machine.
// AsError(nil) returns (0, true).
// ok is false if the error did not originate from the virtual machine.
func AsError(err error) (code int, ok bool) {
	if err == nil {
		return 0, true
	}
	var e *luaError
	if !errors.As(err, &e) {
		return 0, false
	}
	return e.code, true
}
