// Copyright 2026 The ulua Authors
// SPDX-License-Identifier: MIT

package ulua

import (
	"fmt"

	"ulua.dev/go/lua"
)

// Scalar is the set of Go types
// that convert to and from a single stack slot.
type Scalar interface {
	bool | int | int8 | int16 | int32 | int64 |
		uint | uint8 | uint16 | uint32 | uint64 |
		float32 | float64 | string | []byte
}

// A Pusher pushes itself onto a state's stack.
// PushLua must push exactly one value
// (tuples are the exception and push their arity).
type Pusher interface {
	PushLua(l *lua.State)
}

// Push pushes a single Go value onto the stack.
// Supported types are nil, booleans, all integer and float widths,
// strings, byte slices, [lua.Function], and any [Pusher]
// (which includes [Opt], [StrictBool], and the TupleN types).
// Push panics on an unsupported type:
// passing one is a bug in the calling code, not a runtime condition.
func Push(l *lua.State, v any) {
	switch v := v.(type) {
	case nil:
		l.PushNil()
	case bool:
		l.PushBoolean(v)
	case int:
		l.PushInteger(int64(v))
	case int8:
		l.PushInteger(int64(v))
	case int16:
		l.PushInteger(int64(v))
	case int32:
		l.PushInteger(int64(v))
	case int64:
		l.PushInteger(v)
	case uint:
		l.PushInteger(int64(v))
	case uint8:
		l.PushInteger(int64(v))
	case uint16:
		l.PushInteger(int64(v))
	case uint32:
		l.PushInteger(int64(v))
	case uint64:
		l.PushInteger(int64(v))
	case float32:
		l.PushNumber(float64(v))
	case float64:
		l.PushNumber(v)
	case string:
		l.PushString(v)
	case []byte:
		l.PushString(string(v))
	case lua.Function:
		l.PushClosure(0, v)
	case Pusher:
		v.PushLua(l)
	default:
		panic(fmt.Sprintf("ulua: cannot push value of type %T", v))
	}
}

// FromValue converts the stack slot at the given acceptable index
// to the Go type T.
// ok is false when the slot does not hold a matching value.
//
// Integer types require the slot to hold an integer-subtype number:
// floats do not truncate and numeric strings do not convert.
// Float types accept any number (including numeric strings).
// bool follows Lua truthiness and therefore always succeeds;
// use [StrictBool] in a tuple to require an actual boolean.
// string and []byte accept strings and numbers.
// []byte results are always fresh copies;
// string results share Go's immutable string storage
// and remain valid after the slot is popped.
func FromValue[T Scalar](l *lua.State, idx int) (_ T, ok bool) {
	var v T
	if err := fromLuaElem(l, idx, &v); err != nil {
		var zero T
		return zero, false
	}
	return v, true
}

// A ConvertError records a stack slot that failed to convert
// to its requested Go type.
type ConvertError struct {
	// Index is the acceptable index of the offending slot.
	Index int
	// Want names the expected Lua type.
	Want string
	// Got is the actual type of the slot.
	Got lua.Type
}

func (e *ConvertError) Error() string {
	return fmt.Sprintf("ulua: slot %d: %s expected, got %v", e.Index, e.Want, e.Got)
}

// fetcher is implemented by element types with custom extraction rules.
type fetcher interface {
	fromLua(l *lua.State, idx int) bool
	luaName() string
}

// fromLuaElem converts the slot at idx into the pointed-to destination.
// dst must be a pointer to a [Scalar] type or to a [fetcher].
func fromLuaElem(l *lua.State, idx int, dst any) *ConvertError {
	ok := true
	switch p := dst.(type) {
	case *bool:
		*p = l.ToBoolean(idx)
	case *int:
		var n int64
		if n, ok = integerAt(l, idx); ok {
			*p = int(n)
		}
	case *int8:
		var n int64
		if n, ok = integerAt(l, idx); ok {
			*p = int8(n)
		}
	case *int16:
		var n int64
		if n, ok = integerAt(l, idx); ok {
			*p = int16(n)
		}
	case *int32:
		var n int64
		if n, ok = integerAt(l, idx); ok {
			*p = int32(n)
		}
	case *int64:
		*p, ok = integerAt(l, idx)
	case *uint:
		var n int64
		if n, ok = integerAt(l, idx); ok {
			*p = uint(n)
		}
	case *uint8:
		var n int64
		if n, ok = integerAt(l, idx); ok {
			*p = uint8(n)
		}
	case *uint16:
		var n int64
		if n, ok = integerAt(l, idx); ok {
			*p = uint16(n)
		}
	case *uint32:
		var n int64
		if n, ok = integerAt(l, idx); ok {
			*p = uint32(n)
		}
	case *uint64:
		var n int64
		if n, ok = integerAt(l, idx); ok {
			*p = uint64(n)
		}
	case *float32:
		var n float64
		if n, ok = l.ToNumber(idx); ok {
			*p = float32(n)
		}
	case *float64:
		*p, ok = l.ToNumber(idx)
	case *string:
		*p, ok = l.ToString(idx)
	case *[]byte:
		var s string
		if s, ok = l.ToString(idx); ok {
			*p = []byte(s)
		}
	default:
		f, isFetcher := dst.(fetcher)
		if !isFetcher {
			panic(fmt.Sprintf("ulua: unsupported element type %T", dst))
		}
		if !f.fromLua(l, idx) {
			return &ConvertError{Index: idx, Want: f.luaName(), Got: l.Type(idx)}
		}
		return nil
	}
	if !ok {
		return &ConvertError{Index: idx, Want: elemName(dst), Got: l.Type(idx)}
	}
	return nil
}

// integerAt reads an integer-subtype number from the given slot.
// Floats and numeric strings do not convert.
func integerAt(l *lua.State, idx int) (int64, bool) {
	if !l.IsInteger(idx) {
		return 0, false
	}
	return l.ToInteger(idx)
}

// elemName names the Lua type expected by a destination pointer,
// for use in error messages.
func elemName(dst any) string {
	switch dst.(type) {
	case *bool:
		return "boolean"
	case *int, *int8, *int16, *int32, *int64,
		*uint, *uint8, *uint16, *uint32, *uint64:
		return "integer"
	case *float32, *float64:
		return "number"
	case *string, *[]byte:
		return "string"
	default:
		if f, ok := dst.(fetcher); ok {
			return f.luaName()
		}
		return "value"
	}
}

// Opt is an optional scalar.
// Pushing an invalid Opt pushes nil;
// extracting never fails:
// a missing or mismatched slot yields an invalid Opt.
type Opt[T Scalar] struct {
	Value T
	Valid bool
}

// Some returns a valid [Opt] holding v.
func Some[T Scalar](v T) Opt[T] {
	return Opt[T]{Value: v, Valid: true}
}

func (o Opt[T]) PushLua(l *lua.State) {
	if !o.Valid {
		l.PushNil()
		return
	}
	Push(l, o.Value)
}

func (o *Opt[T]) fromLua(l *lua.State, idx int) bool {
	o.Value, o.Valid = FromValue[T](l, idx)
	return true
}

func (o *Opt[T]) luaName() string {
	var zero T
	return elemName(&zero)
}

// StrictBool is a bool that only converts from a boolean-typed slot.
// Plain bool follows Lua truthiness and accepts any value;
// StrictBool reports a conversion failure for non-booleans instead.
type StrictBool bool

func (b StrictBool) PushLua(l *lua.State) {
	l.PushBoolean(bool(b))
}

func (b *StrictBool) fromLua(l *lua.State, idx int) bool {
	if l.Type(idx) != lua.TypeBoolean {
		return false
	}
	*b = StrictBool(l.ToBoolean(idx))
	return true
}

func (b *StrictBool) luaName() string {
	return "boolean"
}
