// Copyright 2026 The ulua Authors
// SPDX-License-Identifier: MIT

package lua

import "fmt"

// userdata is a full userdata:
// an arbitrary Go value with an optional metatable
// and a fixed number of associated Lua values (user values).
type userdata struct {
	id         uint64
	x          any
	meta       *table
	userValues []any
}

// NewUserdata creates a new full userdata holding the Go value x,
// with nUValue associated Lua values (called user values),
// and pushes it onto the stack.
// The userdata is tracked by the state:
// when it becomes unreachable,
// [State.GC] or [State.Close] will run its __gc metamethod, if any.
func (l *State) NewUserdata(x any, nUValue int) {
	if nUValue < 0 {
		panic("negative user value count")
	}
	l.init()
	ud := &userdata{
		id:         nextID(),
		x:          x,
		userValues: make([]any, nUValue),
	}
	l.userdatas[ud] = struct{}{}
	l.push(ud)
}

// ToUserdata returns the Go value held by the full userdata at the given index.
// ok is true if and only if the value at the given index is a full userdata.
func (l *State) ToUserdata(idx int) (x any, ok bool) {
	l.init()
	v, _, err := l.valueByIndex(idx)
	if err != nil {
		return nil, false
	}
	ud, ok := v.(*userdata)
	if !ok {
		return nil, false
	}
	return ud.x, true
}

// UserValue pushes onto the stack the n-th user value
// associated with the full userdata at the given index
// and returns the type of the pushed value.
// If the userdata does not have that value,
// UserValue pushes nil and returns [TypeNone].
func (l *State) UserValue(idx int, n int) Type {
	l.init()
	v, _, err := l.valueByIndex(idx)
	if err != nil {
		panic(err)
	}
	ud, ok := v.(*userdata)
	if !ok {
		panic(fmt.Sprintf("lua: value at index %d is a %v, not a userdata", idx, valueType(v)))
	}
	if n < 1 || n > len(ud.userValues) {
		l.push(nil)
		return TypeNone
	}
	uv := ud.userValues[n-1]
	l.push(uv)
	return valueType(uv)
}

// SetUserValue pops a value from the stack
// and sets it as the new n-th user value
// associated with the full userdata at the given index.
// It reports whether the userdata has that value.
func (l *State) SetUserValue(idx int, n int) bool {
	l.init()
	v, _, err := l.valueByIndex(idx)
	if err != nil {
		panic(err)
	}
	ud, ok := v.(*userdata)
	if !ok {
		panic(fmt.Sprintf("lua: value at index %d is a %v, not a userdata", idx, valueType(v)))
	}
	if n < 1 || n > len(ud.userValues) {
		l.Pop(1)
		return false
	}
	ud.userValues[n-1] = l.stack[len(l.stack)-1]
	l.Pop(1)
	return true
}
