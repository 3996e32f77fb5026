// Copyright 2026 The ulua Authors
// SPDX-License-Identifier: MIT

// uluastress exercises the marshalling and closure bridge
// across many independent states at once.
// It is a smoke-test harness, not a benchmark.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"sync/atomic"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
	"zombiezen.com/go/bass/sigterm"
	"zombiezen.com/go/log"

	ulua "ulua.dev/go"
	"ulua.dev/go/lua"
)

func main() {
	rootCommand := &cobra.Command{
		Use:           "uluastress",
		Short:         "hammer typed calls across concurrent states",
		SilenceErrors: true,
		SilenceUsage:  true,
	}

	opts := new(stressOptions)
	rootCommand.Flags().IntVar(&opts.instances, "instances", 8, "number of concurrent states")
	rootCommand.Flags().IntVar(&opts.iterations, "iterations", 10_000, "typed calls per state")
	showDebug := rootCommand.PersistentFlags().Bool("debug", false, "show debugging output")

	rootCommand.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		initLogging(*showDebug)
		return nil
	}
	rootCommand.RunE = func(cmd *cobra.Command, args []string) error {
		return runStress(cmd.Context(), opts)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), sigterm.Signals()...)
	err := rootCommand.ExecuteContext(ctx)
	cancel()
	if err != nil {
		initLogging(*showDebug)
		log.Errorf(context.Background(), "%v", err)
		os.Exit(1)
	}
}

type stressOptions struct {
	instances  int
	iterations int
}

func runStress(ctx context.Context, opts *stressOptions) error {
	var calls, released atomic.Int64

	g, ctx := errgroup.WithContext(ctx)
	for i := 0; i < opts.instances; i++ {
		g.Go(func() error {
			return stressState(ctx, opts.iterations, &calls, &released)
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	log.Infof(ctx, "completed %d typed calls across %d states; %d closures released",
		calls.Load(), opts.instances, released.Load())
	return nil
}

// stressState drives one state:
// a bridged typed function called in a tight loop,
// typed objects pushed and collected,
// and a closure release hook checked for exactly-once semantics.
func stressState(ctx context.Context, iterations int, calls, released *atomic.Int64) error {
	state := new(lua.State)
	defer state.Close()

	ulua.PushClosureRelease(state, ulua.Wrap(func(l *lua.State, args ulua.Tuple2[int64, string]) (ulua.Tuple1[int64], error) {
		return ulua.Tuple1[int64]{A: args.A + int64(len(args.B))}, nil
	}), func() {
		released.Add(1)
	})

	tp := ulua.NewObjectType("stress.probe")
	tp.IndexSelf = true
	tp.Methods = map[string]lua.Function{
		"poke": ulua.Method(tp, func(self *probe, _ ulua.Tuple0) (ulua.Tuple1[int64], error) {
			self.pokes++
			return ulua.Tuple1[int64]{A: self.pokes}, nil
		}),
	}

	for i := 0; i < iterations; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		res, err := ulua.Call[ulua.Tuple1[int64]](state, -1, &ulua.Tuple2[int64, string]{A: int64(i), B: "x"})
		if err != nil {
			return fmt.Errorf("typed call %d: %w", i, err)
		}
		if want := int64(i) + 1; res.A != want {
			return fmt.Errorf("typed call %d returned %d; want %d", i, res.A, want)
		}
		calls.Add(1)

		if i%1000 == 0 {
			ulua.PushObject(state, tp, new(probe))
			state.Pop(1)
			if err := state.GC(); err != nil {
				return fmt.Errorf("collect: %w", err)
			}
			log.Debugf(ctx, "state progressed to iteration %d", i)
		}
	}
	return nil
}

type probe struct {
	pokes int64
}

var initLogOnce sync.Once

func initLogging(showDebug bool) {
	initLogOnce.Do(func() {
		minLogLevel := log.Info
		if showDebug {
			minLogLevel = log.Debug
		}
		log.SetDefault(&log.LevelFilter{
			Min:    minLogLevel,
			Output: log.New(os.Stderr, "uluastress: ", log.StdFlags, nil),
		})
	})
}
