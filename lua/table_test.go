// Copyright 2026 The ulua Authors
// SPDX-License-Identifier: MIT

package lua

import (
	"testing"
)

func TestEmptyTable(t *testing.T) {
	tab := newTable(0)
	if got, want := valueType(tab), TypeTable; got != want {
		t.Errorf("valueType(newTable(0)) = %v; want %v", got, want)
	}
	if got := tab.len(); got != 0 {
		t.Errorf("newTable(0).len() = %d; want 0", got)
	}
	if got := tab.get("bork"); got != nil {
		t.Errorf("newTable(0).get(\"bork\") = %#v; want <nil>", got)
	}
}

func TestArrayTable(t *testing.T) {
	tab := newTable(3)
	const want1 = int64(42)
	tab.set(int64(1), want1)
	const want2 = "abc"
	tab.set(int64(2), want2)
	const want3 = float64(3.14)
	tab.set(int64(3), want3)

	if got, want := tab.len(), int64(3); got != want {
		t.Errorf("tab.len() = %d; want %d", got, want)
	}
	if got := tab.get(int64(1)); got != want1 {
		t.Errorf("tab.get(int64(1)) = %#v; want %#v", got, want1)
	}
	if got := tab.get(int64(2)); got != want2 {
		t.Errorf("tab.get(int64(2)) = %#v; want %#v", got, want2)
	}
	if got := tab.get(int64(3)); got != want3 {
		t.Errorf("tab.get(int64(3)) = %#v; want %#v", got, want3)
	}
	if got := tab.get(int64(4)); got != nil {
		t.Errorf("tab.get(int64(4)) = %#v; want <nil>", got)
	}
}

func TestTableKeyNormalization(t *testing.T) {
	tab := newTable(0)
	tab.set(float64(1), "one")
	if got := tab.get(int64(1)); got != "one" {
		t.Errorf("tab.get(int64(1)) = %#v; want \"one\"", got)
	}
	tab.set(int64(1), "uno")
	if got := tab.get(float64(1)); got != "uno" {
		t.Errorf("tab.get(float64(1)) = %#v; want \"uno\"", got)
	}
	if got, want := len(tab.entries), 1; got != want {
		t.Errorf("len(tab.entries) = %d; want %d", got, want)
	}
}

func TestTableNext(t *testing.T) {
	tab := newTable(0)
	tab.set("a", int64(1))
	tab.set("b", int64(2))
	tab.set(int64(1), "first")

	got := make(map[any]any)
	var key any
	for {
		k, v, ok := tab.next(key)
		if !ok {
			break
		}
		got[k] = v
		key = k
	}
	want := map[any]any{
		"a":      int64(1),
		"b":      int64(2),
		int64(1): "first",
	}
	if len(got) != len(want) {
		t.Fatalf("iterated over %d entries; want %d", len(got), len(want))
	}
	for k, v := range want {
		if got[k] != v {
			t.Errorf("got[%#v] = %#v; want %#v", k, got[k], v)
		}
	}
}
