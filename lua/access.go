// Copyright 2026 The ulua Authors
// SPDX-License-Identifier: MIT

package lua

import (
	"errors"
	"fmt"
)

// maxMetaDepth is the maximum number of __index/__newindex hops
// followed before reporting a chain loop.
const maxMetaDepth = 100

// CreateTable creates a new empty table and pushes it onto the stack.
// nArr is a hint for how many elements the table will have as a sequence;
// nRec is a hint for how many other elements the table will have.
// Lua may use these hints to preallocate memory for the new table.
func (l *State) CreateTable(nArr, nRec int) {
	l.init()
	l.push(newTable(nArr + nRec))
}

func (l *State) tableByIndex(idx int) *table {
	v, _, err := l.valueByIndex(idx)
	if err != nil {
		panic(err)
	}
	t, ok := v.(*table)
	if !ok {
		panic(fmt.Sprintf("lua: value at index %d is a %v, not a table", idx, valueType(v)))
	}
	return t
}

// RawGet pushes onto the stack t[k],
// where t is the value at the given index
// and k is the value on the top of the stack.
// This function pops the key from the stack,
// pushing the resulting value in its place.
// RawGet does a raw access (i.e. without metamethods).
// The value at idx must be a table.
func (l *State) RawGet(idx int) Type {
	l.init()
	t := l.tableByIndex(idx)
	k := l.stack[len(l.stack)-1]
	v := t.get(k)
	l.stack[len(l.stack)-1] = v
	return valueType(v)
}

// RawField pushes onto the stack t[k],
// where t is the table at the given index and k is the given string.
// It returns the type of the pushed value.
func (l *State) RawField(idx int, k string) Type {
	l.init()
	t := l.tableByIndex(idx)
	v := t.get(k)
	l.push(v)
	return valueType(v)
}

// RawIndex pushes onto the stack t[n],
// where t is the table at the given index.
// It returns the type of the pushed value.
func (l *State) RawIndex(idx int, n int64) Type {
	l.init()
	t := l.tableByIndex(idx)
	v := t.get(n)
	l.push(v)
	return valueType(v)
}

// RawSet does the equivalent of t[k] = v,
// where t is the table at the given index,
// v is the value on the top of the stack,
// and k is the value just below the top.
// This function pops both the key and the value from the stack.
func (l *State) RawSet(idx int) {
	l.init()
	t := l.tableByIndex(idx)
	k := l.stack[len(l.stack)-2]
	v := l.stack[len(l.stack)-1]
	if err := t.set(k, v); err != nil {
		l.Pop(2)
		panic("lua: " + err.Error())
	}
	l.Pop(2)
}

// RawSetField does the equivalent of t[k] = v,
// where t is the table at the given index
// and v is the value on the top of the stack.
// This function pops the value from the stack.
func (l *State) RawSetField(idx int, k string) {
	l.init()
	t := l.tableByIndex(idx)
	v := l.stack[len(l.stack)-1]
	if err := t.set(k, v); err != nil {
		l.Pop(1)
		panic("lua: " + err.Error())
	}
	l.Pop(1)
}

// RawSetIndex does the equivalent of t[n] = v,
// where t is the table at the given index
// and v is the value on the top of the stack.
// This function pops the value from the stack.
func (l *State) RawSetIndex(idx int, n int64) {
	l.init()
	t := l.tableByIndex(idx)
	v := l.stack[len(l.stack)-1]
	if err := t.set(n, v); err != nil {
		l.Pop(1)
		panic("lua: " + err.Error())
	}
	l.Pop(1)
}

// RawLen returns the raw "length" of the value at the given index:
// for strings, this is the string length;
// for tables, this is the result of the length operator with no metamethods.
// For other values, RawLen returns 0.
func (l *State) RawLen(idx int) int64 {
	l.init()
	v, _, err := l.valueByIndex(idx)
	if err != nil {
		return 0
	}
	switch v := v.(type) {
	case string:
		return int64(len(v))
	case *table:
		return v.len()
	default:
		return 0
	}
}

// RawEqual reports whether the two values in the given indices
// are primitively equal (that is, equal without calling metamethods).
func (l *State) RawEqual(idx1, idx2 int) bool {
	l.init()
	v1, valid1, err1 := l.valueByIndex(idx1)
	v2, valid2, err2 := l.valueByIndex(idx2)
	if err1 != nil || err2 != nil || !valid1 || !valid2 {
		return false
	}
	if valueType(v1) != valueType(v2) {
		return false
	}
	return compareValues(v1, v2) == 0
}

// Next pops a key from the stack
// and pushes a key–value pair from the table at the given index,
// the "next" pair after the given key.
// If there are no more elements in the table,
// then Next returns false and pushes nothing.
//
// While traversing a table,
// avoid calling [State.ToString] directly on a key,
// unless you know that the key is actually a string.
// [State.ToString] may change the value at the given index;
// this confuses the next call to Next.
func (l *State) Next(idx int) bool {
	l.init()
	t := l.tableByIndex(idx)
	k := l.stack[len(l.stack)-1]
	nextKey, nextValue, ok := t.next(k)
	if !ok {
		l.Pop(1)
		return false
	}
	l.stack[len(l.stack)-1] = nextKey
	l.push(nextValue)
	return true
}

// Field pushes onto the stack the value t[k],
// where t is the value at the given index.
// As in Lua, this function may trigger a metamethod for the "index" event.
// Field returns the type of the pushed value.
//
// If msgHandler is not 0, it is treated the same as in [State.Call].
func (l *State) Field(idx int, k string, msgHandler int) (Type, error) {
	l.init()
	if msgHandler != 0 {
		return TypeNil, errors.New("lua: message handlers not supported")
	}
	v, _, err := l.valueByIndex(idx)
	if err != nil {
		panic(err)
	}
	return l.index(v, k)
}

// Index pushes onto the stack the value t[i],
// where t is the value at the given index.
// As in Lua, this function may trigger a metamethod for the "index" event.
func (l *State) Index(idx int, i int64, msgHandler int) (Type, error) {
	l.init()
	if msgHandler != 0 {
		return TypeNil, errors.New("lua: message handlers not supported")
	}
	v, _, err := l.valueByIndex(idx)
	if err != nil {
		panic(err)
	}
	return l.index(v, i)
}

// Table pushes onto the stack the value t[k],
// where t is the value at the given index
// and k is the value on the top of the stack.
// This function pops the key from the stack,
// pushing the resulting value in its place.
// As in Lua, this function may trigger a metamethod for the "index" event.
func (l *State) Table(idx int, msgHandler int) (Type, error) {
	l.init()
	if msgHandler != 0 {
		return TypeNil, errors.New("lua: message handlers not supported")
	}
	v, _, err := l.valueByIndex(idx)
	if err != nil {
		panic(err)
	}
	k := l.stack[len(l.stack)-1]
	l.Pop(1)
	return l.index(v, k)
}

// index pushes v[key] onto the stack,
// following the __index metamethod chain.
func (l *State) index(v, key any) (Type, error) {
	for i := 0; i < maxMetaDepth; i++ {
		switch obj := v.(type) {
		case *table:
			raw := obj.get(key)
			if raw != nil || obj.meta == nil {
				l.push(raw)
				return valueType(raw), nil
			}
			mm := obj.meta.get("__index")
			if mm == nil {
				l.push(nil)
				return TypeNil, nil
			}
			if f, ok := mm.(goFunction); ok {
				return l.callIndexMetamethod(f, v, key)
			}
			v = mm
		case *userdata:
			var mm any
			if obj.meta != nil {
				mm = obj.meta.get("__index")
			}
			if mm == nil {
				return TypeNil, &luaError{
					code: ErrRun,
					msg:  "attempt to index a userdata value",
				}
			}
			if f, ok := mm.(goFunction); ok {
				return l.callIndexMetamethod(f, v, key)
			}
			v = mm
		default:
			return TypeNil, &luaError{
				code: ErrRun,
				msg:  fmt.Sprintf("attempt to index a %v value", valueType(v)),
			}
		}
	}
	return TypeNil, &luaError{code: ErrRun, msg: "'__index' chain too long; possible loop"}
}

func (l *State) callIndexMetamethod(f goFunction, obj, key any) (Type, error) {
	if !l.grow(len(l.stack) + 3) {
		return TypeNil, errStackOverflow
	}
	l.push(f)
	l.push(obj)
	l.push(key)
	if err := l.pcall(2, 1); err != nil {
		l.Pop(1)
		return TypeNil, err
	}
	return valueType(l.stack[len(l.stack)-1]), nil
}

// SetField does the equivalent of t[k] = v,
// where t is the value at the given index
// and v is the value on the top of the stack.
// This function pops the value from the stack.
// As in Lua, this function may trigger a metamethod for the "newindex" event.
func (l *State) SetField(idx int, k string, msgHandler int) error {
	l.init()
	if msgHandler != 0 {
		return errors.New("lua: message handlers not supported")
	}
	v, _, err := l.valueByIndex(idx)
	if err != nil {
		panic(err)
	}
	newValue := l.stack[len(l.stack)-1]
	err = l.setIndex(v, k, newValue)
	l.Pop(1)
	return err
}

// SetTable does the equivalent of t[k] = v,
// where t is the value at the given index,
// v is the value on the top of the stack,
// and k is the value just below the top.
// This function pops both the key and the value from the stack.
// As in Lua, this function may trigger a metamethod for the "newindex" event.
func (l *State) SetTable(idx int, msgHandler int) error {
	l.init()
	if msgHandler != 0 {
		return errors.New("lua: message handlers not supported")
	}
	v, _, err := l.valueByIndex(idx)
	if err != nil {
		panic(err)
	}
	k := l.stack[len(l.stack)-2]
	newValue := l.stack[len(l.stack)-1]
	err = l.setIndex(v, k, newValue)
	l.Pop(2)
	return err
}

// setIndex performs v[key] = newValue,
// following the __newindex metamethod chain.
func (l *State) setIndex(v, key, newValue any) error {
	for i := 0; i < maxMetaDepth; i++ {
		switch obj := v.(type) {
		case *table:
			if obj.get(key) != nil || obj.meta == nil {
				return obj.set(key, newValue)
			}
			mm := obj.meta.get("__newindex")
			if mm == nil {
				return obj.set(key, newValue)
			}
			if f, ok := mm.(goFunction); ok {
				return l.callNewIndexMetamethod(f, v, key, newValue)
			}
			v = mm
		case *userdata:
			var mm any
			if obj.meta != nil {
				mm = obj.meta.get("__newindex")
			}
			if mm == nil {
				return &luaError{code: ErrRun, msg: "attempt to index a userdata value"}
			}
			if f, ok := mm.(goFunction); ok {
				return l.callNewIndexMetamethod(f, v, key, newValue)
			}
			v = mm
		default:
			return &luaError{
				code: ErrRun,
				msg:  fmt.Sprintf("attempt to index a %v value", valueType(v)),
			}
		}
	}
	return &luaError{code: ErrRun, msg: "'__newindex' chain too long; possible loop"}
}

func (l *State) callNewIndexMetamethod(f goFunction, obj, key, newValue any) error {
	if !l.grow(len(l.stack) + 4) {
		return errStackOverflow
	}
	l.push(f)
	l.push(obj)
	l.push(key)
	l.push(newValue)
	if err := l.pcall(3, 0); err != nil {
		l.Pop(1)
		return err
	}
	return nil
}

// Global pushes onto the stack the value of the global with the given name
// and returns the type of that value.
// As in Lua, this function may trigger a metamethod for the "index" event.
func (l *State) Global(name string, msgHandler int) (Type, error) {
	l.init()
	if msgHandler != 0 {
		return TypeNil, errors.New("lua: message handlers not supported")
	}
	return l.index(l.registry.get(RegistryIndexGlobals), name)
}

// SetGlobal pops a value from the stack
// and sets it as the new value of the global with the given name.
// As in Lua, this function may trigger a metamethod for the "newindex" event.
func (l *State) SetGlobal(name string, msgHandler int) error {
	l.init()
	if msgHandler != 0 {
		return errors.New("lua: message handlers not supported")
	}
	newValue := l.stack[len(l.stack)-1]
	err := l.setIndex(l.registry.get(RegistryIndexGlobals), name, newValue)
	l.Pop(1)
	return err
}

// Len pushes the length of the value at the given index onto the stack.
// It is equivalent to the "#" operator in Lua
// and may trigger a metamethod for the "length" event.
func (l *State) Len(idx int, msgHandler int) error {
	l.init()
	if msgHandler != 0 {
		return errors.New("lua: message handlers not supported")
	}
	v, _, err := l.valueByIndex(idx)
	if err != nil {
		panic(err)
	}
	switch obj := v.(type) {
	case string:
		l.push(int64(len(obj)))
		return nil
	case *table:
		if obj.meta != nil {
			if f, ok := obj.meta.get("__len").(goFunction); ok {
				if !l.grow(len(l.stack) + 2) {
					return errStackOverflow
				}
				l.push(f)
				l.push(v)
				if err := l.pcall(1, 1); err != nil {
					l.Pop(1)
					return err
				}
				return nil
			}
		}
		l.push(obj.len())
		return nil
	default:
		return &luaError{
			code: ErrRun,
			msg:  fmt.Sprintf("attempt to get length of a %v value", valueType(v)),
		}
	}
}

// Metatable reports whether the value at the given index has a metatable
// and if so, pushes that metatable onto the stack.
func (l *State) Metatable(idx int) bool {
	l.init()
	v, _, err := l.valueByIndex(idx)
	if err != nil {
		panic(err)
	}
	var meta *table
	switch v := v.(type) {
	case *table:
		meta = v.meta
	case *userdata:
		meta = v.meta
	}
	if meta == nil {
		return false
	}
	l.push(meta)
	return true
}

// SetMetatable pops a table or nil from the stack
// and sets that value as the new metatable for the value at the given index.
// (nil means no metatable.)
func (l *State) SetMetatable(objIndex int) {
	l.init()
	var meta *table
	switch v := l.stack[len(l.stack)-1].(type) {
	case nil:
	case *table:
		meta = v
	default:
		panic("lua: SetMetatable: table or nil expected on top of stack")
	}
	obj, _, err := l.valueByIndex(objIndex)
	if err != nil {
		panic(err)
	}
	switch obj := obj.(type) {
	case *table:
		obj.meta = meta
	case *userdata:
		obj.meta = meta
	default:
		panic(fmt.Sprintf("lua: SetMetatable: cannot set metatable on a %v value", valueType(obj)))
	}
	l.Pop(1)
}
