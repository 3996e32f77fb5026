// Copyright 2026 The ulua Authors
// SPDX-License-Identifier: MIT

package lua

import (
	"cmp"
	"fmt"
	"math"
	"strconv"
	"strings"
	"sync"
)

// Type is an enumeration of Lua data types.
type Type int

// TypeNone is the value returned from [State.Type]
// for a non-valid but acceptable index.
const TypeNone Type = -1

// Value types.
const (
	TypeNil      Type = 0
	TypeBoolean  Type = 1
	TypeNumber   Type = 3
	TypeString   Type = 4
	TypeTable    Type = 5
	TypeFunction Type = 6
	TypeUserdata Type = 7
)

// String returns the name of the type encoded by the value tp.
func (tp Type) String() string {
	switch tp {
	case TypeNone:
		return "no value"
	case TypeNil:
		return "nil"
	case TypeBoolean:
		return "boolean"
	case TypeUserdata:
		return "userdata"
	case TypeNumber:
		return "number"
	case TypeString:
		return "string"
	case TypeTable:
		return "table"
	case TypeFunction:
		return "function"
	default:
		return fmt.Sprintf("lua.Type(%d)", int(tp))
	}
}

func valueType(v any) Type {
	switch v.(type) {
	case nil:
		return TypeNil
	case bool:
		return TypeBoolean
	case float64, int64:
		return TypeNumber
	case string:
		return TypeString
	case *table:
		return TypeTable
	case goFunction:
		return TypeFunction
	case *userdata:
		return TypeUserdata
	default:
		panic("unhandled type")
	}
}

// compareValues defines a total order over all values
// so that tables can keep their entries sorted.
// Values of different types are ordered by type;
// reference values of the same type are ordered by identity.
func compareValues(v1, v2 any) int {
	switch v1 := v1.(type) {
	case nil:
		return cmp.Compare(TypeNil, valueType(v2))
	case bool:
		b2, ok := v2.(bool)
		switch {
		case !ok:
			return cmp.Compare(TypeBoolean, valueType(v2))
		case v1 && !b2:
			return 1
		case !v1 && b2:
			return -1
		default:
			return 0
		}
	case float64:
		switch v2.(type) {
		case int64, float64:
			f2, _ := toNumber(v2)
			return cmp.Compare(v1, f2)
		default:
			return cmp.Compare(TypeNumber, valueType(v2))
		}
	case int64:
		switch v2 := v2.(type) {
		case int64:
			return cmp.Compare(v1, v2)
		case float64:
			return cmp.Compare(float64(v1), v2)
		default:
			return cmp.Compare(TypeNumber, valueType(v2))
		}
	case string:
		s2, ok := v2.(string)
		if !ok {
			return cmp.Compare(TypeString, valueType(v2))
		}
		return cmp.Compare(v1, s2)
	case *table:
		t2, ok := v2.(*table)
		if !ok {
			return cmp.Compare(TypeTable, valueType(v2))
		}
		return cmp.Compare(v1.id, t2.id)
	case goFunction:
		f2, ok := v2.(goFunction)
		if !ok {
			return cmp.Compare(TypeFunction, valueType(v2))
		}
		return cmp.Compare(v1.id, f2.id)
	case *userdata:
		u2, ok := v2.(*userdata)
		if !ok {
			return cmp.Compare(TypeUserdata, valueType(v2))
		}
		return cmp.Compare(v1.id, u2.id)
	default:
		panic("unhandled type")
	}
}

func toNumber(v any) (_ float64, isNumber bool) {
	switch v := v.(type) {
	case float64:
		return v, true
	case int64:
		return float64(v), true
	case string:
		return parseNumber(v)
	default:
		return 0, false
	}
}

func toBoolean(v any) bool {
	switch v := v.(type) {
	case nil:
		return false
	case bool:
		return v
	default:
		return true
	}
}

// parseNumber converts a string to a float
// following the Lua lexer's conventions:
// optional surrounding space, decimal or 0x-prefixed hexadecimal.
func parseNumber(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	if i, ok := parseInteger(s); ok {
		return float64(i), true
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// parseInteger converts a string to a signed 64-bit integer
// following the Lua lexer's conventions.
// Fractional strings do not convert, even if integral.
func parseInteger(s string) (int64, bool) {
	s = strings.TrimSpace(s)
	neg := false
	if len(s) > 0 && (s[0] == '+' || s[0] == '-') {
		neg = s[0] == '-'
		s = s[1:]
	}
	base := 10
	if len(s) > 2 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X') {
		base = 16
		s = s[2:]
	}
	i, err := strconv.ParseInt(s, base, 64)
	if err != nil {
		return 0, false
	}
	if neg {
		i = -i
	}
	return i, true
}

// floatToInteger converts a float to an integer
// if and only if it has an exact integer representation.
func floatToInteger(f float64) (int64, bool) {
	if f != math.Trunc(f) || f < math.MinInt64 || f >= math.MaxInt64 {
		return 0, false
	}
	return int64(f), true
}

// numberToString formats a number the way the Lua tostring function does.
func numberToString(v any) (string, bool) {
	switch v := v.(type) {
	case int64:
		return strconv.FormatInt(v, 10), true
	case float64:
		switch {
		case math.IsInf(v, 1):
			return "inf", true
		case math.IsInf(v, -1):
			return "-inf", true
		case math.IsNaN(v):
			return "nan", true
		}
		s := strconv.FormatFloat(v, 'g', 14, 64)
		if !strings.ContainsAny(s, ".eE") {
			s += ".0"
		}
		return s, true
	default:
		return "", false
	}
}

var globalIDs struct {
	mu sync.Mutex
	n  uint64
}

func nextID() uint64 {
	globalIDs.mu.Lock()
	defer globalIDs.mu.Unlock()
	globalIDs.n++
	return globalIDs.n
}
