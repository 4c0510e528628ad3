// Copyright (C) MongoDB, Inc. 2025-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

// Package benchmark measures column extraction and row reconstruction
// without a server.
package benchmark

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

const (
	ExecutionTimeout = 5 * time.Minute
	StandardRuntime  = time.Minute
	MinimumRuntime   = 10 * time.Second
	MinIterations    = 100

	ten         = 10
	hundred     = ten * ten
	thousand    = ten * hundred
	tenThousand = ten * thousand
)

// TimerManager is the subset of *testing.B used by cases to exclude setup
// from the measured time.
type TimerManager interface {
	ResetTimer()
	StartTimer()
	StopTimer()
}

// BenchCase runs iters iterations of one benchmark.
type BenchCase func(context.Context, TimerManager, int) error

type BenchFunction func(*testing.B)

// WrapCase adapts a BenchCase to a go test benchmark.
func WrapCase(bench BenchCase) BenchFunction {
	name := getName(bench)
	return func(b *testing.B) {
		ctx := context.Background()
		b.ResetTimer()
		err := bench(ctx, b, b.N)
		require.NoError(b, err, "case='%s'", name)
	}
}

func getAllCases() []*CaseDefinition {
	return []*CaseDefinition{
		{
			Bench:   ExtractFlatDocuments,
			Count:   tenThousand,
			Size:    flatDocumentSize * tenThousand,
			Runtime: StandardRuntime,
		},
		{
			Bench:   ExtractNestedDocuments,
			Count:   tenThousand,
			Size:    nestedDocumentSize * tenThousand,
			Runtime: StandardRuntime,
		},
		{
			Bench:   ExtractParallel,
			Count:   tenThousand,
			Size:    flatDocumentSize * tenThousand,
			Runtime: StandardRuntime,
		},
		{
			Bench:   ReconstructRows,
			Count:   tenThousand,
			Size:    -1,
			Runtime: StandardRuntime,
		},
		{
			Bench:   ProjectionBuild,
			Count:   thousand,
			Size:    -1,
			Runtime: MinimumRuntime,
		},
	}
}
