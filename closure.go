// Copyright 2026 The ulua Authors
// SPDX-License-Identifier: MIT

package ulua

import (
	"errors"

	"ulua.dev/go/lua"
)

// closureMetatableName is the registry key for the metatable
// shared by all boxed closures in a state.
const closureMetatableName = "ulua.Closure"

// closureBox holds a bridged Go closure inside a userdata.
// fn is cleared when the box is finalized,
// so a release hook can never run twice
// and a stale trampoline invocation fails loudly instead of
// calling through a released closure.
type closureBox struct {
	fn      lua.Function
	release func()
}

// PushClosure pushes the Go closure f onto the stack as a callable value.
//
// The closure is boxed in a userdata carried as an upvalue of a
// shared trampoline function,
// and the box's metatable finalizes it when the value becomes unreachable
// (see [lua.State.GC]).
// A panic inside f is recovered at the protected-call boundary
// and reported as an ordinary call error.
func PushClosure(l *lua.State, f lua.Function) {
	pushClosure(l, f, nil)
}

// PushClosureRelease is like [PushClosure],
// but additionally runs release when the machine reclaims the closure,
// either through [lua.State.GC] or [lua.State.Close].
// release runs exactly once, and never before the closure's last invocation.
func PushClosureRelease(l *lua.State, f lua.Function, release func()) {
	if release == nil {
		panic("ulua: nil release hook")
	}
	pushClosure(l, f, release)
}

func pushClosure(l *lua.State, f lua.Function, release func()) {
	if f == nil {
		panic("ulua: nil closure")
	}
	box := &closureBox{fn: f, release: release}
	l.NewUserdata(box, 0)
	if lua.NewMetatable(l, closureMetatableName) {
		l.PushClosure(0, finalizeClosureBox)
		l.RawSetField(-2, "__gc")
		l.PushBoolean(false)
		l.RawSetField(-2, "__metatable")
	}
	l.SetMetatable(-2)
	l.PushClosure(1, closureTrampoline)
}

// closureTrampoline is the single entry point for every bridged closure.
// The box travels as upvalue 1.
func closureTrampoline(l *lua.State) (int, error) {
	payload, ok := lua.TestUserdata(l, lua.UpvalueIndex(1), closureMetatableName)
	if !ok {
		return 0, errors.New("ulua: closure box missing")
	}
	box, ok := payload.(*closureBox)
	if !ok {
		return 0, errors.New("ulua: closure box missing")
	}
	if box.fn == nil {
		return 0, errors.New("ulua: closure invoked after release")
	}
	return box.fn(l)
}

// finalizeClosureBox is the __gc metamethod for closure boxes.
func finalizeClosureBox(l *lua.State) (int, error) {
	payload, _ := l.ToUserdata(1)
	box, ok := payload.(*closureBox)
	if !ok {
		return 0, nil
	}
	if box.fn != nil {
		box.fn = nil
		if box.release != nil {
			box.release()
		}
	}
	return 0, nil
}

// Wrap adapts a typed Go function into a [lua.Function]:
// arguments are unpacked as the tuple A starting at index 1,
// results are pushed as the tuple R,
// and the result count is R's arity.
// Argument mismatches abort the call with a positional error,
// exactly as [Args] reports them.
//
//	add := ulua.Wrap(func(l *lua.State, args ulua.Tuple2[int64, int64]) (ulua.Tuple1[int64], error) {
//		return ulua.Tuple1[int64]{A: args.A + args.B}, nil
//	})
func Wrap[A, R any, PA tuplePtr[A], PR tuplePtr[R]](f func(l *lua.State, args A) (R, error)) lua.Function {
	return func(l *lua.State) (int, error) {
		var args A
		if err := PA(&args).fromStack(l, 1); err != nil {
			return 0, lua.NewTypeError(l, err.Index, err.Want)
		}
		results, err := f(l, args)
		if err != nil {
			return 0, err
		}
		pr := PR(&results)
		pr.PushLua(l)
		return pr.Arity(), nil
	}
}
