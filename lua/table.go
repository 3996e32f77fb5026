// Copyright 2026 The ulua Authors
// SPDX-License-Identifier: MIT

package lua

import (
	"errors"
	"math"
	"slices"
	"sort"
)

type table struct {
	id      uint64
	entries []tableEntry
	meta    *table
}

func newTable(capacity int) *table {
	tab := &table{id: nextID()}
	if capacity > 0 {
		tab.entries = make([]tableEntry, 0, capacity)
	}
	return tab
}

// len returns a [border in the table].
// This is equivalent to the Lua length ("#") operator.
//
// [border in the table]: https://lua.org/manual/5.4/manual.html#3.4.7
func (tab *table) len() int64 {
	if tab == nil {
		return 0
	}
	start, ok := findEntry(tab.entries, int64(1))
	if !ok {
		return 0
	}

	// Find the last entry with a numeric key in the possible range.
	// For example, if len(tab.entries) - start == 3,
	// then we can ignore any values greater than 3
	// because there necessarily must be a border before any of those values.
	maxKey := len(tab.entries) - start
	searchSpace := tab.entries[start+1:] // Can skip 1.
	n := sort.Search(len(searchSpace), func(i int) bool {
		switch k := searchSpace[i].key.(type) {
		case int64:
			return k > int64(maxKey)
		case float64:
			return k > float64(maxKey)
		default:
			return true
		}
	})
	searchSpace = searchSpace[:n]
	// Maximum key cannot be larger than the number of elements
	// (plus one, because we excluded the 1 entry).
	maxKey = n + 1

	// Instead of searching over slice indices,
	// we binary search over the key space to find the first i
	// for which table[i + 1] == nil.
	i := sort.Search(maxKey, func(i int) bool {
		_, found := findEntry(searchSpace, int64(i)+2)
		return !found
	})
	return int64(i) + 1
}

func (tab *table) get(key any) any {
	if tab == nil {
		return nil
	}
	i, found := findEntry(tab.entries, normalizeKey(key))
	if !found {
		return nil
	}
	return tab.entries[i].value
}

func (tab *table) set(key, value any) error {
	switch k := key.(type) {
	case nil:
		return errors.New("table index is nil")
	case float64:
		if math.IsNaN(k) {
			return errors.New("table index is NaN")
		}
	}
	key = normalizeKey(key)

	i, found := findEntry(tab.entries, key)
	switch {
	case found && value != nil:
		tab.entries[i].value = value
	case found && value == nil:
		tab.entries = slices.Delete(tab.entries, i, i+1)
	case !found && value != nil:
		tab.entries = slices.Insert(tab.entries, i, tableEntry{
			key:   key,
			value: value,
		})
	}
	return nil
}

// next returns the entry following the given key
// in the table's internal order.
// A nil key requests the first entry.
// ok is false when the iteration is exhausted.
func (tab *table) next(key any) (nextKey, nextValue any, ok bool) {
	if tab == nil || len(tab.entries) == 0 {
		return nil, nil, false
	}
	i := 0
	if key != nil {
		var found bool
		i, found = findEntry(tab.entries, normalizeKey(key))
		if found {
			i++
		}
	}
	if i >= len(tab.entries) {
		return nil, nil, false
	}
	e := tab.entries[i]
	return e.key, e.value, true
}

// normalizeKey collapses float keys with an exact integer representation
// into integer keys, so that t[1] and t[1.0] address the same slot.
func normalizeKey(key any) any {
	if f, ok := key.(float64); ok {
		if i, ok := floatToInteger(f); ok {
			return i
		}
	}
	return key
}

type tableEntry struct {
	key, value any
}

func findEntry(entries []tableEntry, key any) (int, bool) {
	return slices.BinarySearchFunc(entries, key, func(e tableEntry, key any) int {
		return compareValues(e.key, key)
	})
}
