// Copyright 2026 The ulua Authors
// SPDX-License-Identifier: MIT

package lua

import (
	"errors"
	"fmt"
	"slices"
)

const (
	// minStack is the minimum number of elements a Go function can push onto the stack.
	minStack = 20

	maxStack = 1_000_000
)

const maxUpvalues = 256

// MultipleReturns is the sentinel
// that indicates that an arbitrary number of result values are accepted.
const MultipleReturns = -1

// RegistryIndex is a pseudo-index to the [registry],
// a predefined table that can be used by any Go code
// to store whatever Lua values it needs to store.
//
// [registry]: https://www.lua.org/manual/5.4/manual.html#4.3
const RegistryIndex int = -maxStack - 1000

// Predefined keys in the registry.
const (
	RegistryIndexGlobals int64 = 2
)

// UpvalueIndex returns the pseudo-index that represents the i-th upvalue
// of the running function.
// If i is outside the range [1, 256], UpvalueIndex panics.
func UpvalueIndex(i int) int {
	if i < 1 || i > maxUpvalues {
		panic("UpvalueIndex out of range")
	}
	return RegistryIndex - i
}

func isUpvalueIndex(idx int) bool {
	_, ok := upvalueFromIndex(idx)
	return ok
}

func upvalueFromIndex(idx int) (upvalue int, ok bool) {
	if idx >= RegistryIndex || idx < RegistryIndex-maxUpvalues {
		return 0, false
	}
	return RegistryIndex - idx, true
}

func isPseudo(i int) bool {
	return i <= RegistryIndex
}

// State represents a Lua execution environment.
// The zero value is a ready-to-use environment
// with an empty stack.
type State struct {
	stack     []any
	registry  *table
	callStack []callFrame
	userdatas map[*userdata]struct{}
}

type callFrame struct {
	functionIndex int
	numResults    int
}

func (f callFrame) registerStart() int {
	return f.functionIndex + 1
}

func (l *State) init() {
	if cap(l.stack) < minStack {
		l.stack = slices.Grow(l.stack, minStack*2-len(l.stack))
	}
	if l.registry == nil {
		l.registry = newTable(1)
		l.registry.set(RegistryIndexGlobals, newTable(0))
	}
	if len(l.callStack) == 0 {
		l.stack = append(l.stack, goFunction{
			id: nextID(),
		})
		l.callStack = append(l.callStack, callFrame{
			functionIndex: len(l.stack) - 1,
			numResults:    MultipleReturns,
		})
	}
	if l.userdatas == nil {
		l.userdatas = make(map[*userdata]struct{})
	}
}

// frame returns the top [callFrame] from the stack.
func (l *State) frame() *callFrame {
	return &l.callStack[len(l.callStack)-1]
}

func (l *State) stackIndex(idx int) (int, error) {
	if isPseudo(idx) {
		return -1, errors.New("pseudo-index not allowed")
	}
	if idx == 0 {
		return -1, errors.New("invalid index 0")
	}
	if idx < 0 {
		if idx < -l.Top() {
			return -1, fmt.Errorf("invalid index %d (top = %d)", idx, l.Top())
		}
		return len(l.stack) + idx, nil
	}
	i := l.frame().registerStart() + idx - 1
	if i >= cap(l.stack) {
		return i, fmt.Errorf("unacceptable index %d (capacity = %d)", idx, cap(l.stack)-l.frame().registerStart())
	}
	return i, nil
}

func (l *State) valueByIndex(idx int) (v any, valid bool, err error) {
	switch {
	case idx == RegistryIndex:
		return l.registry, true, nil
	case isUpvalueIndex(idx):
		fv := l.stack[l.frame().functionIndex]
		f, ok := fv.(goFunction)
		if !ok {
			return nil, false, fmt.Errorf("internal error: call frame missing function (found %T)", fv)
		}
		i, _ := upvalueFromIndex(idx)
		if i > len(f.upvalues) {
			return nil, false, nil
		}
		return f.upvalues[i-1], true, nil
	case isPseudo(idx):
		return nil, false, fmt.Errorf("invalid pseudo-index (%d)", idx)
	default:
		i, err := l.stackIndex(idx)
		if err != nil {
			return nil, false, err
		}
		if i >= len(l.stack) {
			return nil, false, nil
		}
		return l.stack[i], true, nil
	}
}

// setValueByIndex stores v at the given index.
// Unlike reads, writes to a non-valid index panic.
func (l *State) setValueByIndex(idx int, v any) {
	switch {
	case idx == RegistryIndex:
		panic("cannot replace registry")
	case isUpvalueIndex(idx):
		fv := l.stack[l.frame().functionIndex]
		f, ok := fv.(goFunction)
		if !ok {
			panic("call frame missing function")
		}
		i, _ := upvalueFromIndex(idx)
		if i > len(f.upvalues) {
			panic("upvalue index out of range")
		}
		f.upvalues[i-1] = v
	case isPseudo(idx):
		panic(fmt.Sprintf("invalid pseudo-index (%d)", idx))
	default:
		i, err := l.stackIndex(idx)
		if err != nil {
			panic(err)
		}
		if i >= len(l.stack) {
			panic(fmt.Sprintf("invalid index %d (top = %d)", idx, l.Top()))
		}
		l.stack[i] = v
	}
}

// AbsIndex converts the acceptable index idx
// into an equivalent absolute index
// (that is, one that does not depend on the stack size).
// AbsIndex panics if idx is not an acceptable index.
func (l *State) AbsIndex(idx int) int {
	if isPseudo(idx) {
		return idx
	}
	l.init()
	i, err := l.stackIndex(idx)
	if err != nil {
		panic(err)
	}
	return i - l.frame().registerStart() + 1
}

// Top returns the index of the top element in the stack.
// Because indices start at 1,
// this result is equal to the number of elements in the stack;
// in particular, 0 means an empty stack.
func (l *State) Top() int {
	if len(l.callStack) == 0 {
		return 0
	}
	return len(l.stack) - l.frame().registerStart()
}

// SetTop accepts any index, or 0, and sets the stack top to this index.
// If the new top is greater than the old one,
// then the new elements are filled with nil.
// If idx is 0, then all stack elements are removed.
func (l *State) SetTop(idx int) {
	l.init()
	if idx == 0 {
		l.setTop(l.frame().registerStart())
		return
	}
	if idx > 0 {
		i := l.frame().registerStart() + idx
		if !l.grow(i) {
			panic(errStackOverflow)
		}
		for len(l.stack) < i {
			l.stack = append(l.stack, nil)
		}
		l.setTop(i)
		return
	}
	i, err := l.stackIndex(idx)
	if err != nil {
		panic(err)
	}
	l.setTop(i + 1)
}

func (l *State) setTop(i int) {
	if i < len(l.stack) {
		clear(l.stack[i:])
	}
	l.stack = l.stack[:i]
}

// Pop pops n elements from the stack.
func (l *State) Pop(n int) {
	l.SetTop(-n - 1)
}

// Rotate rotates the stack elements
// between the valid index idx and the top of the stack.
// The elements are rotated n positions in the direction of the top, for a positive n,
// or -n positions in the direction of the bottom, for a negative n.
// If the absolute value of n is greater than the size of the slice being rotated,
// or if idx is a pseudo-index,
// Rotate panics.
func (l *State) Rotate(idx, n int) {
	l.init()
	i, err := l.stackIndex(idx)
	if err != nil {
		panic(err)
	}
	absN := n
	if n < 0 {
		absN = -n
	}
	if absN > len(l.stack)-i {
		panic("invalid rotation")
	}
	rotate(l.stack[i:], n)
}

// rotate rotates the elements of a slice
// n positions toward the end of the slice.
// n may be negative.
// If the absolute value of n is greater than len(s),
// then rotate panics.
func rotate[S ~[]E, E any](s S, n int) {
	var m int
	if n >= 0 {
		m = len(s) - n
	} else {
		m = -n
	}
	slices.Reverse(s[:m])
	slices.Reverse(s[m:])
	slices.Reverse(s)
}

// Insert moves the top element into the given valid index,
// shifting up the elements above this index to open space.
// If idx is a pseudo-index, Insert panics.
func (l *State) Insert(idx int) {
	l.Rotate(idx, 1)
}

// Remove removes the element at the given valid index,
// shifting down the elements above this index to fill the gap.
// This function cannot be called with a pseudo-index,
// because a pseudo-index is not an actual stack position.
func (l *State) Remove(idx int) {
	l.Rotate(idx, -1)
	l.Pop(1)
}

// Replace moves the top element into the given valid index without shifting any element
// (therefore replacing the value at that given index),
// and then pops the top element.
func (l *State) Replace(idx int) {
	l.init()
	v := l.stack[len(l.stack)-1]
	l.setValueByIndex(idx, v)
	l.Pop(1)
}

// CheckStack ensures that the stack has space for at least n extra elements,
// that is, that you can safely push up to n values into it.
// It returns false if it cannot fulfill the request,
// either because it would cause the stack to be greater than a fixed maximum size
// or because it cannot allocate memory for the extra space.
// This function never shrinks the stack;
// if the stack already has space for the extra elements, it is left unchanged.
func (l *State) CheckStack(n int) bool {
	l.init()
	return l.grow(len(l.stack) + n)
}

// grow ensures that the capacity of the stack is at least the given value,
// or returns false if it could not be fulfilled.
func (l *State) grow(wantTop int) bool {
	if wantTop <= cap(l.stack) {
		return true
	}
	if wantTop > maxStack {
		return false
	}
	l.stack = slices.Grow(l.stack, wantTop-len(l.stack))
	if cap(l.stack) > maxStack {
		l.stack = l.stack[:len(l.stack):maxStack]
	}
	return true
}

// IsNumber reports if the value at the given index is a number
// or a string convertible to a number.
func (l *State) IsNumber(idx int) bool {
	l.init()
	v, _, err := l.valueByIndex(idx)
	if err != nil {
		return false
	}
	_, ok := toNumber(v)
	return ok
}

// IsString reports if the value at the given index is a string
// or a number (which is always convertible to a string).
func (l *State) IsString(idx int) bool {
	l.init()
	v, _, err := l.valueByIndex(idx)
	if err != nil {
		return false
	}
	t := valueType(v)
	return t == TypeString || t == TypeNumber
}

// IsInteger reports if the value at the given index is an integer
// (that is, the value is a number and is represented as an integer).
func (l *State) IsInteger(idx int) bool {
	l.init()
	v, _, err := l.valueByIndex(idx)
	if err != nil {
		return false
	}
	_, ok := v.(int64)
	return ok
}

// IsUserdata reports if the value at the given index is a full userdata.
func (l *State) IsUserdata(idx int) bool {
	l.init()
	v, _, err := l.valueByIndex(idx)
	if err != nil {
		return false
	}
	_, ok := v.(*userdata)
	return ok
}

// Type returns the type of the value in the given valid index,
// or [TypeNone] for a non-valid but acceptable index.
func (l *State) Type(idx int) Type {
	l.init()
	v, valid, err := l.valueByIndex(idx)
	if err != nil {
		panic(err)
	}
	if !valid {
		return TypeNone
	}
	return valueType(v)
}

// IsFunction reports if the value at the given index is a function.
func (l *State) IsFunction(idx int) bool {
	l.init()
	v, _, err := l.valueByIndex(idx)
	return err == nil && valueType(v) == TypeFunction
}

// IsTable reports if the value at the given index is a table.
func (l *State) IsTable(idx int) bool {
	l.init()
	v, _, err := l.valueByIndex(idx)
	return err == nil && valueType(v) == TypeTable
}

// IsNil reports if the value at the given index is nil.
func (l *State) IsNil(idx int) bool {
	l.init()
	v, valid, err := l.valueByIndex(idx)
	return err == nil && valid && v == nil
}

// IsBoolean reports if the value at the given index is a boolean.
func (l *State) IsBoolean(idx int) bool {
	l.init()
	v, _, err := l.valueByIndex(idx)
	return err == nil && valueType(v) == TypeBoolean
}

// IsNone reports if the index is not valid.
func (l *State) IsNone(idx int) bool {
	l.init()
	_, valid, err := l.valueByIndex(idx)
	return err == nil && !valid
}

// IsNoneOrNil reports if the index is not valid or the value at this index is nil.
func (l *State) IsNoneOrNil(idx int) bool {
	l.init()
	v, _, err := l.valueByIndex(idx)
	return err == nil && v == nil
}

// ToNumber converts the Lua value at the given index to a floating point number.
// The Lua value must be a number or a [string convertible to a number];
// otherwise, ToNumber returns (0, false).
// ok is true if the operation succeeded.
//
// [string convertible to a number]: https://www.lua.org/manual/5.4/manual.html#3.4.3
func (l *State) ToNumber(idx int) (n float64, ok bool) {
	l.init()
	v, _, err := l.valueByIndex(idx)
	if err != nil {
		return 0, false
	}
	return toNumber(v)
}

// ToInteger converts the Lua value at the given index to a signed 64-bit integer.
// The Lua value must be an integer, a float with an exact integer representation,
// or a [string convertible to an integer];
// otherwise, ToInteger returns (0, false).
// ok is true if the operation succeeded.
//
// [string convertible to an integer]: https://www.lua.org/manual/5.4/manual.html#3.4.3
func (l *State) ToInteger(idx int) (n int64, ok bool) {
	l.init()
	v, _, err := l.valueByIndex(idx)
	if err != nil {
		return 0, false
	}
	switch v := v.(type) {
	case float64:
		return floatToInteger(v)
	case int64:
		return v, true
	case string:
		return parseInteger(v)
	default:
		return 0, false
	}
}

// ToBoolean converts the Lua value at the given index to a boolean value.
// Like all tests in Lua,
// ToBoolean returns true for any Lua value different from false and nil;
// otherwise it returns false.
func (l *State) ToBoolean(idx int) bool {
	l.init()
	v, _, err := l.valueByIndex(idx)
	if err != nil {
		return false
	}
	return toBoolean(v)
}

// ToString converts the Lua value at the given index to a Go string.
// The Lua value must be a string or a number; otherwise, the function returns ("", false).
// If the value is a number, then ToString also changes the actual value in the stack to a string.
// (This change confuses [State.Next]
// when ToString is applied to keys during a table traversal.)
func (l *State) ToString(idx int) (s string, ok bool) {
	l.init()
	var p *any
	switch {
	case idx == RegistryIndex:
		return "", false
	case isUpvalueIndex(idx):
		fv := l.stack[l.frame().functionIndex]
		f, ok := fv.(goFunction)
		if !ok {
			return "", false
		}
		i, _ := upvalueFromIndex(idx)
		if i > len(f.upvalues) {
			return "", false
		}
		p = &f.upvalues[i-1]
	case isPseudo(idx):
		return "", false
	default:
		i, err := l.stackIndex(idx)
		if err != nil || i >= len(l.stack) {
			return "", false
		}
		p = &l.stack[i]
	}

	switch v := (*p).(type) {
	case string:
		return v, true
	case int64, float64:
		s, _ := numberToString(v)
		*p = s
		return s, true
	default:
		return "", false
	}
}

// ID returns a process-unique identifier for the reference value
// (table, function, or userdata) at the given index,
// or 0 if the value is not a reference value.
// Two values have the same identifier if and only if they are the same object.
func (l *State) ID(idx int) uint64 {
	l.init()
	v, _, err := l.valueByIndex(idx)
	if err != nil {
		return 0
	}
	switch v := v.(type) {
	case *table:
		return v.id
	case goFunction:
		return v.id
	case *userdata:
		return v.id
	default:
		return 0
	}
}

func (l *State) push(x any) {
	if len(l.stack) == cap(l.stack) {
		panic(errStackOverflow)
	}
	l.stack = append(l.stack, x)
}

// PushValue pushes a copy of the element at the given index onto the stack.
func (l *State) PushValue(idx int) {
	l.init()
	v, _, err := l.valueByIndex(idx)
	if err != nil {
		panic(err)
	}
	l.push(v)
}

// PushNil pushes a nil value onto the stack.
func (l *State) PushNil() {
	l.init()
	l.push(nil)
}

// PushNumber pushes a floating point number onto the stack.
func (l *State) PushNumber(n float64) {
	l.init()
	l.push(n)
}

// PushInteger pushes an integer onto the stack.
func (l *State) PushInteger(i int64) {
	l.init()
	l.push(i)
}

// PushString pushes a string onto the stack.
func (l *State) PushString(s string) {
	l.init()
	l.push(s)
}

// PushBoolean pushes a boolean onto the stack.
func (l *State) PushBoolean(b bool) {
	l.init()
	l.push(b)
}

// PushClosure pushes a Go closure onto the stack.
// n is how many upvalues this function will have,
// popped off the top of the stack.
// (When there are multiple upvalues, the first value is pushed first.)
// If n is negative or greater than 256, then PushClosure panics.
func (l *State) PushClosure(n int, f Function) {
	if f == nil {
		panic("nil Function")
	}
	if n < 0 || n > maxUpvalues {
		panic("invalid upvalue count")
	}
	l.init()
	if l.Top() < n {
		panic("not enough upvalues on the stack")
	}
	upvalues := make([]any, n)
	copy(upvalues, l.stack[len(l.stack)-n:])
	l.setTop(len(l.stack) - n)
	l.push(goFunction{
		id:       nextID(),
		cb:       f,
		upvalues: upvalues,
	})
}

// Call calls a function in protected mode.
//
// To do a call you must use the following protocol:
// first, the function to be called is pushed onto the stack;
// then, the arguments to the call are pushed in direct order;
// that is, the first argument is pushed first.
// Finally you call Call;
// nArgs is the number of arguments that you pushed onto the stack.
// When the function returns,
// all arguments and the function value are popped
// and the call results are pushed onto the stack.
// The number of results is adjusted to nResults,
// unless nResults is [MultipleReturns].
// The function results are pushed onto the stack in direct order
// (the first result is pushed first),
// so that after the call the last result is on the top of the stack.
//
// If the function raises an error (or panics),
// Call returns the error,
// the function and its arguments are popped,
// and the error text is pushed onto the stack.
// Use [AsError] to inspect the status code of the returned error.
func (l *State) Call(nArgs, nResults, msgHandler int) error {
	l.init()
	if nArgs < 0 {
		return errors.New("lua: negative argument count")
	}
	if l.Top() < nArgs+1 {
		return errors.New("lua: not enough elements in the stack")
	}
	if msgHandler != 0 {
		return errors.New("lua: message handlers not supported")
	}
	return l.pcall(nArgs, nResults)
}

func (l *State) pcall(nArgs, nResults int) error {
	functionIndex := len(l.stack) - nArgs - 1
	l.callStack = append(l.callStack, callFrame{
		functionIndex: functionIndex,
		numResults:    nResults,
	})
	f, ok := l.stack[functionIndex].(goFunction)
	if !ok {
		l.popCallStack()
		err := &luaError{
			code: ErrRun,
			msg:  fmt.Sprintf("attempt to call a %v value", valueType(l.stack[functionIndex])),
		}
		l.setTop(functionIndex)
		l.push(err.msg)
		return err
	}
	if !l.grow(len(l.stack) + minStack) {
		l.popCallStack()
		l.setTop(functionIndex)
		l.push(errStackOverflow.Error())
		return errStackOverflow
	}
	n, err := protectedCall(f.cb, l)
	if err != nil {
		l.popCallStack()
		l.setTop(functionIndex)
		lerr := &luaError{code: ErrRun, msg: err.Error(), cause: err}
		l.push(lerr.msg)
		return lerr
	}
	l.finishCall(n)
	return nil
}

// protectedCall invokes a Go function,
// converting any panic into an error.
func protectedCall(f Function, l *State) (n int, err error) {
	defer func() {
		if v := recover(); v != nil {
			n = 0
			switch v := v.(type) {
			case error:
				err = v
			case string:
				err = errors.New(v)
			default:
				err = fmt.Errorf("%v", v)
			}
		}
	}()
	return f(l)
}

// finishCall moves the results of the returning function into place
// and pops the call frame.
func (l *State) finishCall(numResults int) {
	frame := l.frame()
	fi := frame.functionIndex
	if numResults < 0 || numResults > len(l.stack)-frame.registerStart() {
		panic("result count out of range")
	}
	results := l.stack[len(l.stack)-numResults:]
	copy(l.stack[fi:], results)
	want := frame.numResults
	if want == MultipleReturns {
		want = numResults
	}
	newTop := fi + want
	for i := fi + numResults; i < min(newTop, len(l.stack)); i++ {
		l.stack[i] = nil
	}
	if newTop <= len(l.stack) {
		l.setTop(newTop)
	} else {
		if !l.grow(newTop) {
			panic(errStackOverflow)
		}
		for len(l.stack) < newTop {
			l.stack = append(l.stack, nil)
		}
	}
	l.popCallStack()
}

func (l *State) popCallStack() {
	l.callStack[len(l.callStack)-1] = callFrame{}
	l.callStack = l.callStack[:len(l.callStack)-1]
}

// XMove exchanges values between different states sharing nothing:
// it pops n values from the stack of l and pushes them onto the stack of to.
// Userdata reachable from the moved values migrate their finalization
// to the destination state.
func (l *State) XMove(to *State, n int) {
	if l == to || n == 0 {
		return
	}
	l.init()
	to.init()
	if l.Top() < n {
		panic("not enough elements in the stack")
	}
	if !to.grow(len(to.stack) + n) {
		panic(errStackOverflow)
	}
	moved := l.stack[len(l.stack)-n:]
	to.stack = append(to.stack, moved...)
	seen := make(map[uint64]struct{})
	for _, v := range moved {
		markValue(v, seen, func(ud *userdata) {
			if _, tracked := l.userdatas[ud]; tracked {
				delete(l.userdatas, ud)
				to.userdatas[ud] = struct{}{}
			}
		})
	}
	l.setTop(len(l.stack) - n)
}

var errStackOverflow = errors.New("stack overflow")
