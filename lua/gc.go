// Copyright 2026 The ulua Authors
// SPDX-License-Identifier: MIT

package lua

import (
	"errors"
	"fmt"
)

// GC finalizes userdata that are no longer reachable
// from the state's stack or registry.
// Each userdata's __gc metamethod runs at most once
// over the lifetime of the userdata,
// even if the userdata becomes reachable again while it runs.
// GC returns the joined errors raised by finalizers, if any.
func (l *State) GC() error {
	l.init()
	reachable := make(map[*userdata]struct{})
	seen := make(map[uint64]struct{})
	track := func(ud *userdata) {
		reachable[ud] = struct{}{}
	}
	for _, v := range l.stack {
		markValue(v, seen, track)
	}
	markValue(l.registry, seen, track)

	var errs []error
	for ud := range l.userdatas {
		if _, ok := reachable[ud]; ok {
			continue
		}
		delete(l.userdatas, ud)
		if err := l.finalize(ud); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Close finalizes all tracked userdata and releases the state.
// Calling methods on the state afterward creates a fresh execution environment.
func (l *State) Close() error {
	if l.registry == nil && len(l.stack) == 0 && len(l.userdatas) == 0 {
		return nil
	}
	var errs []error
	// Finalizers may create new userdata; loop until quiescent.
	for len(l.userdatas) > 0 {
		for ud := range l.userdatas {
			delete(l.userdatas, ud)
			if err := l.finalize(ud); err != nil {
				errs = append(errs, err)
			}
			break
		}
	}
	*l = State{}
	return errors.Join(errs...)
}

// finalize runs the __gc metamethod of ud, if it has one.
func (l *State) finalize(ud *userdata) error {
	if ud.meta == nil {
		return nil
	}
	f, ok := ud.meta.get("__gc").(goFunction)
	if !ok {
		return nil
	}
	if !l.grow(len(l.stack) + 2) {
		return errStackOverflow
	}
	l.push(f)
	l.push(ud)
	if err := l.pcall(1, 0); err != nil {
		l.Pop(1)
		return &luaError{
			code:  ErrGC,
			msg:   fmt.Sprintf("error in __gc metamethod (%v)", err),
			cause: err,
		}
	}
	return nil
}

// markValue walks the value graph rooted at v,
// invoking found for every userdata encountered.
// seen guards against cycles, keyed by reference identity.
func markValue(v any, seen map[uint64]struct{}, found func(*userdata)) {
	switch v := v.(type) {
	case *table:
		if v == nil {
			return
		}
		if _, ok := seen[v.id]; ok {
			return
		}
		seen[v.id] = struct{}{}
		for _, e := range v.entries {
			markValue(e.key, seen, found)
			markValue(e.value, seen, found)
		}
		markValue(v.meta, seen, found)
	case goFunction:
		if _, ok := seen[v.id]; ok {
			return
		}
		seen[v.id] = struct{}{}
		for _, uv := range v.upvalues {
			markValue(uv, seen, found)
		}
	case *userdata:
		if v == nil {
			return
		}
		if _, ok := seen[v.id]; ok {
			return
		}
		seen[v.id] = struct{}{}
		found(v)
		markValue(v.meta, seen, found)
		for _, uv := range v.userValues {
			markValue(uv, seen, found)
		}
	}
}
