// Copyright 2026 The ulua Authors
// SPDX-License-Identifier: MIT

/*
Package ulua provides typed marshalling and closure bridging
on top of the stack-based virtual machine in [ulua.dev/go/lua].

The package converts between Go values and stack slots ([Push], [FromValue]),
moves fixed-arity groups of values at once ([Tuple] and the TupleN types),
exposes Go closures to the machine with deterministic release hooks
([PushClosure], [Wrap]),
embeds Go objects as typed userdata with memoized behavior tables
([ObjectType], [PushObject]),
and performs protected calls with typed results ([Call]).
*/
package ulua
