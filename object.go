// Copyright 2026 The ulua Authors
// SPDX-License-Identifier: MIT

package ulua

import (
	"fmt"
	"sync"

	"ulua.dev/go/lua"
)

// objectCacheField is the registry key of the hidden per-state table
// that caches behavior tables, keyed by [ObjectType] token.
const objectCacheField = "ulua.ObjectTypes"

// An ObjectType describes a kind of Go object embedded in the machine
// as typed userdata.
// The type's identity is a process-unique token minted by [NewObjectType];
// two ObjectTypes never share behavior tables,
// even if they carry the same name.
//
// Configure the public fields before the first [PushObject] call;
// later changes have no effect on states that already built
// their behavior table.
type ObjectType struct {
	name  string
	token uint64

	// IndexSelf makes the behavior table its own __index,
	// so methods are reachable directly on the object.
	IndexSelf bool
	// Methods holds the named functions registered on the behavior table.
	Methods map[string]lua.Function
	// Finalizer, if set, runs when an object of this type
	// becomes unreachable, receiving the embedded Go value.
	Finalizer func(v any)
}

var objectTokens struct {
	mu sync.Mutex
	n  uint64
}

// NewObjectType mints a new object type with the given display name.
// The name appears in error messages and __name;
// identity comes from the minted token, never from the name.
func NewObjectType(name string) *ObjectType {
	objectTokens.mu.Lock()
	defer objectTokens.mu.Unlock()
	objectTokens.n++
	return &ObjectType{name: name, token: objectTokens.n}
}

// Name returns the type's display name.
func (tp *ObjectType) Name() string {
	return tp.name
}

// pushBehaviorTable pushes the behavior (meta)table for tp,
// building and caching it on first use in this state.
// The cache lives in a registry subtable and is torn down with the state.
func pushBehaviorTable(l *lua.State, tp *ObjectType) {
	if l.RawField(lua.RegistryIndex, objectCacheField) != lua.TypeTable {
		l.Pop(1)
		l.CreateTable(0, 1)
		l.PushValue(-1)
		l.RawSetField(lua.RegistryIndex, objectCacheField)
	}
	if l.RawIndex(-1, int64(tp.token)) == lua.TypeTable {
		l.Remove(-2)
		return
	}
	l.Pop(1)

	l.CreateTable(0, len(tp.Methods)+3)
	l.PushString(tp.name)
	l.RawSetField(-2, "__name")
	for name, f := range tp.Methods {
		l.PushClosure(0, f)
		l.RawSetField(-2, name)
	}
	if tp.IndexSelf {
		l.PushValue(-1)
		l.RawSetField(-2, "__index")
	}
	if tp.Finalizer != nil {
		final := tp.Finalizer
		l.PushClosure(0, func(l *lua.State) (int, error) {
			v, ok := l.ToUserdata(1)
			if ok {
				final(v)
			}
			return 0, nil
		})
		l.RawSetField(-2, "__gc")
	}
	l.PushValue(-1)
	l.RawSetIndex(-3, int64(tp.token))
	l.Remove(-2)
}

// PushObject embeds v in the machine as a userdata of type tp
// and pushes it onto the stack.
// All objects of the same type in the same state
// share a single behavior table.
func PushObject(l *lua.State, tp *ObjectType, v any) {
	l.NewUserdata(v, 1)
	pushBehaviorTable(l, tp)
	l.SetMetatable(-2)
}

// TestObject returns the Go value embedded at the given index
// if it is a userdata of type tp holding a T.
func TestObject[T any](l *lua.State, idx int, tp *ObjectType) (T, bool) {
	var zero T
	payload, ok := l.ToUserdata(idx)
	if !ok {
		return zero, false
	}
	if !l.Metatable(idx) {
		return zero, false
	}
	pushBehaviorTable(l, tp)
	match := l.RawEqual(-1, -2)
	l.Pop(2)
	if !match {
		return zero, false
	}
	v, ok := payload.(T)
	if !ok {
		return zero, false
	}
	return v, true
}

// CheckObject is like [TestObject],
// but returns a positional argument error on mismatch,
// suitable for returning from a [lua.Function].
func CheckObject[T any](l *lua.State, arg int, tp *ObjectType) (T, error) {
	v, ok := TestObject[T](l, arg, tp)
	if !ok {
		var zero T
		return zero, lua.NewTypeError(l, arg, tp.name)
	}
	return v, nil
}

// Method adapts a typed method handler into a [lua.Function].
// The receiver is checked as argument 1;
// the remaining arguments are unpacked as the tuple A starting at index 2.
func Method[T, A, R any, PA tuplePtr[A], PR tuplePtr[R]](tp *ObjectType, f func(self T, args A) (R, error)) lua.Function {
	return func(l *lua.State) (int, error) {
		self, err := CheckObject[T](l, 1, tp)
		if err != nil {
			return 0, err
		}
		var args A
		if convErr := PA(&args).fromStack(l, 2); convErr != nil {
			return 0, lua.NewTypeError(l, convErr.Index, convErr.Want)
		}
		results, err := f(self, args)
		if err != nil {
			return 0, fmt.Errorf("%s: %w", tp.name, err)
		}
		pr := PR(&results)
		pr.PushLua(l)
		return pr.Arity(), nil
	}
}
