// Copyright (C) MongoDB, Inc. 2025-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package benchmark

import (
	"context"
	"errors"
	"fmt"
	"io"
	"reflect"
	"runtime"
	"strings"
	"time"
)

// CaseDefinition describes how a BenchCase is run outside of go test: Count
// iterations per trial, repeated until Runtime has passed and at least
// MinIterations trials have run.
type CaseDefinition struct {
	Bench   BenchCase
	Count   int
	Size    int
	Runtime time.Duration

	Out io.Writer

	cumulativeRuntime time.Duration
	elapsed           time.Duration
	startAt           time.Time
	isRunning         bool
}

// TimerManager implementation.

func (c *CaseDefinition) StartTimer() {
	c.startAt = time.Now()
	c.isRunning = true
}

func (c *CaseDefinition) StopTimer() {
	if !c.isRunning {
		return
	}
	c.elapsed += time.Since(c.startAt)
	c.isRunning = false
}

func (c *CaseDefinition) ResetTimer() {
	c.startAt = time.Now()
	c.elapsed = 0
	c.isRunning = true
}

func (c *CaseDefinition) roundedRuntime() time.Duration {
	return roundDurationMS(c.Runtime)
}

// Run runs trials of the case and returns their timings.
func (c *CaseDefinition) Run(ctx context.Context) *BenchResult {
	out := &BenchResult{
		DataSize:   c.Size,
		Name:       c.Name(),
		Operations: c.Count,
	}
	var cancel context.CancelFunc
	ctx, cancel = context.WithTimeout(ctx, ExecutionTimeout)
	defer cancel()

	w := c.Out
	if w == nil {
		w = io.Discard
	}

	fmt.Fprintln(w, "=== RUN", out.Name)
	if c.Runtime < time.Millisecond {
		c.Runtime = MinimumRuntime
	}
	begin := time.Now()
	for {
		if time.Since(begin) > c.Runtime && out.Trials >= MinIterations {
			break
		}
		if ctx.Err() != nil {
			break
		}

		res := Result{
			Iterations: c.Count,
		}

		c.StartTimer()
		res.Error = c.Bench(ctx, c, c.Count)
		c.StopTimer()
		res.Duration = c.elapsed
		c.cumulativeRuntime += res.Duration

		if errors.Is(res.Error, context.Canceled) || errors.Is(res.Error, context.DeadlineExceeded) {
			break
		}

		out.Trials++
		out.Raw = append(out.Raw, res)
		c.elapsed = 0
	}
	out.Duration = c.cumulativeRuntime

	if out.HasErrors() {
		fmt.Fprintf(w, "--- FAIL: %s (%s)\n", out.Name, out.roundedRuntime())
	} else {
		fmt.Fprintf(w, "--- PASS: %s (%s)\n", out.Name, out.roundedRuntime())
	}

	return out
}

func (c *CaseDefinition) String() string {
	return fmt.Sprintf("name=%s, count=%d, runtime=%s timeout=%s",
		c.Name(), c.Count, c.roundedRuntime(), ExecutionTimeout)
}

func (c *CaseDefinition) Name() string { return getName(c.Bench) }

func getName(i interface{}) string {
	n := runtime.FuncForPC(reflect.ValueOf(i).Pointer()).Name()
	parts := strings.Split(n, ".")
	if len(parts) > 1 {
		return parts[len(parts)-1]
	}

	return n
}
