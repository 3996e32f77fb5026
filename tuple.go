// Copyright 2026 The ulua Authors
// SPDX-License-Identifier: MIT

package ulua

import "ulua.dev/go/lua"

// A Tuple is a fixed-arity group of values
// moved to and from consecutive stack slots as a unit.
// Its arity is a property of the concrete type, not of any instance,
// so result counts are known before a call is made.
//
// The TupleN types in this package are the only implementations.
type Tuple interface {
	Pusher
	// Arity returns the number of stack slots the tuple occupies.
	Arity() int
	// fromStack reads Arity() consecutive slots starting at begin.
	// On failure, no information about prior elements is retained.
	fromStack(l *lua.State, begin int) *ConvertError
}

// tuplePtr constrains PT to a pointer to a tuple type,
// letting call sites name only the struct type
// while the methods use the pointer.
type tuplePtr[T any] interface {
	*T
	Tuple
}

// Tuple0 is the empty tuple: no arguments or no results.
type Tuple0 struct{}

func (*Tuple0) Arity() int { return 0 }

func (*Tuple0) PushLua(l *lua.State) {}

func (*Tuple0) fromStack(l *lua.State, begin int) *ConvertError { return nil }

// Tuple1 is a single value.
// It exists so one-value and multi-value calls share the same shape.
type Tuple1[A any] struct {
	A A
}

func (*Tuple1[A]) Arity() int { return 1 }

func (t *Tuple1[A]) PushLua(l *lua.State) {
	Push(l, t.A)
}

func (t *Tuple1[A]) fromStack(l *lua.State, begin int) *ConvertError {
	return fromLuaElem(l, begin, &t.A)
}

// Tuple2 is a pair of values.
type Tuple2[A, B any] struct {
	A A
	B B
}

func (*Tuple2[A, B]) Arity() int { return 2 }

func (t *Tuple2[A, B]) PushLua(l *lua.State) {
	Push(l, t.A)
	Push(l, t.B)
}

func (t *Tuple2[A, B]) fromStack(l *lua.State, begin int) *ConvertError {
	if err := fromLuaElem(l, begin, &t.A); err != nil {
		return err
	}
	return fromLuaElem(l, begin+1, &t.B)
}

// Tuple3 is a triple of values.
type Tuple3[A, B, C any] struct {
	A A
	B B
	C C
}

func (*Tuple3[A, B, C]) Arity() int { return 3 }

func (t *Tuple3[A, B, C]) PushLua(l *lua.State) {
	Push(l, t.A)
	Push(l, t.B)
	Push(l, t.C)
}

func (t *Tuple3[A, B, C]) fromStack(l *lua.State, begin int) *ConvertError {
	if err := fromLuaElem(l, begin, &t.A); err != nil {
		return err
	}
	if err := fromLuaElem(l, begin+1, &t.B); err != nil {
		return err
	}
	return fromLuaElem(l, begin+2, &t.C)
}

// Tuple4 is a quadruple of values.
type Tuple4[A, B, C, D any] struct {
	A A
	B B
	C C
	D D
}

func (*Tuple4[A, B, C, D]) Arity() int { return 4 }

func (t *Tuple4[A, B, C, D]) PushLua(l *lua.State) {
	Push(l, t.A)
	Push(l, t.B)
	Push(l, t.C)
	Push(l, t.D)
}

func (t *Tuple4[A, B, C, D]) fromStack(l *lua.State, begin int) *ConvertError {
	if err := fromLuaElem(l, begin, &t.A); err != nil {
		return err
	}
	if err := fromLuaElem(l, begin+1, &t.B); err != nil {
		return err
	}
	if err := fromLuaElem(l, begin+2, &t.C); err != nil {
		return err
	}
	return fromLuaElem(l, begin+3, &t.D)
}

// Tuple5 is a quintuple of values.
type Tuple5[A, B, C, D, E any] struct {
	A A
	B B
	C C
	D D
	E E
}

func (*Tuple5[A, B, C, D, E]) Arity() int { return 5 }

func (t *Tuple5[A, B, C, D, E]) PushLua(l *lua.State) {
	Push(l, t.A)
	Push(l, t.B)
	Push(l, t.C)
	Push(l, t.D)
	Push(l, t.E)
}

func (t *Tuple5[A, B, C, D, E]) fromStack(l *lua.State, begin int) *ConvertError {
	if err := fromLuaElem(l, begin, &t.A); err != nil {
		return err
	}
	if err := fromLuaElem(l, begin+1, &t.B); err != nil {
		return err
	}
	if err := fromLuaElem(l, begin+2, &t.C); err != nil {
		return err
	}
	if err := fromLuaElem(l, begin+3, &t.D); err != nil {
		return err
	}
	return fromLuaElem(l, begin+4, &t.E)
}

// Tuple6 is a sextuple of values.
type Tuple6[A, B, C, D, E, F any] struct {
	A A
	B B
	C C
	D D
	E E
	F F
}

func (*Tuple6[A, B, C, D, E, F]) Arity() int { return 6 }

func (t *Tuple6[A, B, C, D, E, F]) PushLua(l *lua.State) {
	Push(l, t.A)
	Push(l, t.B)
	Push(l, t.C)
	Push(l, t.D)
	Push(l, t.E)
	Push(l, t.F)
}

func (t *Tuple6[A, B, C, D, E, F]) fromStack(l *lua.State, begin int) *ConvertError {
	if err := fromLuaElem(l, begin, &t.A); err != nil {
		return err
	}
	if err := fromLuaElem(l, begin+1, &t.B); err != nil {
		return err
	}
	if err := fromLuaElem(l, begin+2, &t.C); err != nil {
		return err
	}
	if err := fromLuaElem(l, begin+3, &t.D); err != nil {
		return err
	}
	if err := fromLuaElem(l, begin+4, &t.E); err != nil {
		return err
	}
	return fromLuaElem(l, begin+5, &t.F)
}

// Tuple7 is a septuple of values.
type Tuple7[A, B, C, D, E, F, G any] struct {
	A A
	B B
	C C
	D D
	E E
	F F
	G G
}

func (*Tuple7[A, B, C, D, E, F, G]) Arity() int { return 7 }

func (t *Tuple7[A, B, C, D, E, F, G]) PushLua(l *lua.State) {
	Push(l, t.A)
	Push(l, t.B)
	Push(l, t.C)
	Push(l, t.D)
	Push(l, t.E)
	Push(l, t.F)
	Push(l, t.G)
}

func (t *Tuple7[A, B, C, D, E, F, G]) fromStack(l *lua.State, begin int) *ConvertError {
	if err := fromLuaElem(l, begin, &t.A); err != nil {
		return err
	}
	if err := fromLuaElem(l, begin+1, &t.B); err != nil {
		return err
	}
	if err := fromLuaElem(l, begin+2, &t.C); err != nil {
		return err
	}
	if err := fromLuaElem(l, begin+3, &t.D); err != nil {
		return err
	}
	if err := fromLuaElem(l, begin+4, &t.E); err != nil {
		return err
	}
	if err := fromLuaElem(l, begin+5, &t.F); err != nil {
		return err
	}
	return fromLuaElem(l, begin+6, &t.G)
}

// Tuple8 is an octuple of values.
type Tuple8[A, B, C, D, E, F, G, H any] struct {
	A A
	B B
	C C
	D D
	E E
	F F
	G G
	H H
}

func (*Tuple8[A, B, C, D, E, F, G, H]) Arity() int { return 8 }

func (t *Tuple8[A, B, C, D, E, F, G, H]) PushLua(l *lua.State) {
	Push(l, t.A)
	Push(l, t.B)
	Push(l, t.C)
	Push(l, t.D)
	Push(l, t.E)
	Push(l, t.F)
	Push(l, t.G)
	Push(l, t.H)
}

func (t *Tuple8[A, B, C, D, E, F, G, H]) fromStack(l *lua.State, begin int) *ConvertError {
	if err := fromLuaElem(l, begin, &t.A); err != nil {
		return err
	}
	if err := fromLuaElem(l, begin+1, &t.B); err != nil {
		return err
	}
	if err := fromLuaElem(l, begin+2, &t.C); err != nil {
		return err
	}
	if err := fromLuaElem(l, begin+3, &t.D); err != nil {
		return err
	}
	if err := fromLuaElem(l, begin+4, &t.E); err != nil {
		return err
	}
	if err := fromLuaElem(l, begin+5, &t.F); err != nil {
		return err
	}
	if err := fromLuaElem(l, begin+6, &t.G); err != nil {
		return err
	}
	return fromLuaElem(l, begin+7, &t.H)
}

// Tuple9 is a nonuple of values.
type Tuple9[A, B, C, D, E, F, G, H, I any] struct {
	A A
	B B
	C C
	D D
	E E
	F F
	G G
	H H
	I I
}

func (*Tuple9[A, B, C, D, E, F, G, H, I]) Arity() int { return 9 }

func (t *Tuple9[A, B, C, D, E, F, G, H, I]) PushLua(l *lua.State) {
	Push(l, t.A)
	Push(l, t.B)
	Push(l, t.C)
	Push(l, t.D)
	Push(l, t.E)
	Push(l, t.F)
	Push(l, t.G)
	Push(l, t.H)
	Push(l, t.I)
}

func (t *Tuple9[A, B, C, D, E, F, G, H, I]) fromStack(l *lua.State, begin int) *ConvertError {
	if err := fromLuaElem(l, begin, &t.A); err != nil {
		return err
	}
	if err := fromLuaElem(l, begin+1, &t.B); err != nil {
		return err
	}
	if err := fromLuaElem(l, begin+2, &t.C); err != nil {
		return err
	}
	if err := fromLuaElem(l, begin+3, &t.D); err != nil {
		return err
	}
	if err := fromLuaElem(l, begin+4, &t.E); err != nil {
		return err
	}
	if err := fromLuaElem(l, begin+5, &t.F); err != nil {
		return err
	}
	if err := fromLuaElem(l, begin+6, &t.G); err != nil {
		return err
	}
	if err := fromLuaElem(l, begin+7, &t.H); err != nil {
		return err
	}
	return fromLuaElem(l, begin+8, &t.I)
}
