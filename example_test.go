// Copyright 2026 The ulua Authors
// SPDX-License-Identifier: MIT

package ulua_test

import (
	"fmt"
	"log"

	ulua "ulua.dev/go"
	"ulua.dev/go/lua"
)

func Example() {
	// Create an execution environment.
	state := new(lua.State)
	defer state.Close()

	// Expose a typed Go function.
	ulua.PushClosure(state, ulua.Wrap(func(l *lua.State, args ulua.Tuple2[int64, int64]) (ulua.Tuple1[int64], error) {
		return ulua.Tuple1[int64]{A: args.A + args.B}, nil
	}))

	// Call it with typed arguments and results.
	sum, err := ulua.Call[ulua.Tuple1[int64]](state, -1, &ulua.Tuple2[int64, int64]{A: 2, B: 40})
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(sum.A)
	// Output:
	// 42
}

func ExamplePushObject() {
	state := new(lua.State)
	defer state.Close()

	// Declare an object type with a method.
	type account struct{ balance int64 }
	tp := ulua.NewObjectType("account")
	tp.IndexSelf = true
	tp.Methods = map[string]lua.Function{
		"deposit": ulua.Method(tp, func(self *account, args ulua.Tuple1[int64]) (ulua.Tuple1[int64], error) {
			self.balance += args.A
			return ulua.Tuple1[int64]{A: self.balance}, nil
		}),
	}

	// Embed an object and call its method.
	ulua.PushObject(state, tp, &account{balance: 100})
	if _, err := state.Field(-1, "deposit", 0); err != nil {
		log.Fatal(err)
	}
	state.PushValue(-2)
	state.PushInteger(25)
	if err := state.Call(2, 1, 0); err != nil {
		log.Fatal(err)
	}
	balance, _ := state.ToInteger(-1)
	fmt.Println(balance)
	// Output:
	// 125
}
