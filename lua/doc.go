// Copyright 2026 The ulua Authors
// SPDX-License-Identifier: MIT

/*
Package lua implements a Lua-style virtual machine state.
It is similar to the de facto C Lua implementation,
but holds Go values directly and takes advantage of the Go runtime
and garbage collector.
Functions are implemented in Go (see [Function]);
the package does not include a compiler or bytecode interpreter.

[State] is the main entrypoint for this package.
*/
package lua
