// Copyright (C) MongoDB, Inc. 2025-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package benchmark

import (
	"fmt"
	"time"

	"github.com/montanaflynn/stats"
	"github.com/pkg/errors"
)

type BenchResult struct {
	Name       string
	Trials     int
	Duration   time.Duration
	Raw        []Result
	DataSize   int
	Operations int
	hasErrors  *bool
}

// Summary reports the throughput of a case over its trials.
type Summary struct {
	Name         string  `json:"name"`
	Trials       int     `json:"trials"`
	Seconds      float64 `json:"seconds"`
	OpsPerSecond float64 `json:"opsPerSecond"`
	OpsMin       float64 `json:"opsPerSecondMin"`
	OpsMax       float64 `json:"opsPerSecondMax"`
	OpsP90       float64 `json:"opsPerSecondP90"`
	MBPerSecond  float64 `json:"mbPerSecond,omitempty"`
}

// Summarize computes throughput statistics from the trial timings. The
// slowest trial gives the minimum throughput.
func (r *BenchResult) Summarize() (*Summary, error) {
	timings := r.timings()

	median, err := stats.Median(timings)
	if err != nil {
		return nil, errors.Wrapf(err, "median of %s", r.Name)
	}
	slowest, err := stats.Max(timings)
	if err != nil {
		return nil, errors.Wrapf(err, "max of %s", r.Name)
	}
	fastest, err := stats.Min(timings)
	if err != nil {
		return nil, errors.Wrapf(err, "min of %s", r.Name)
	}
	// The 90th percentile of throughput is the 10th percentile of time.
	p10, err := stats.Percentile(timings, 10)
	if err != nil {
		return nil, errors.Wrapf(err, "percentile of %s", r.Name)
	}

	s := &Summary{
		Name:         r.Name,
		Trials:       r.Trials,
		Seconds:      r.roundedRuntime().Seconds(),
		OpsPerSecond: r.getThroughput(median),
		OpsMin:       r.getThroughput(slowest),
		OpsMax:       r.getThroughput(fastest),
		OpsP90:       r.getThroughput(p10),
	}
	if r.DataSize > 0 {
		s.MBPerSecond = r.adjustResults(median) / 1e6
	}
	return s, nil
}

func (r *BenchResult) timings() []float64 {
	out := []float64{}
	for _, r := range r.Raw {
		out = append(out, r.Duration.Seconds())
	}
	return out
}

func (r *BenchResult) adjustResults(data float64) float64 { return float64(r.DataSize) / data }
func (r *BenchResult) getThroughput(data float64) float64 { return float64(r.Operations) / data }
func (r *BenchResult) roundedRuntime() time.Duration      { return roundDurationMS(r.Duration) }

func (r *BenchResult) String() string {
	return fmt.Sprintf("name=%s, trials=%d, secs=%s", r.Name, r.Trials, r.Duration)
}

func (r *BenchResult) HasErrors() bool {
	if r.hasErrors == nil {
		var val bool
		for _, res := range r.Raw {
			if res.Error != nil {
				val = true
				break
			}
		}
		r.hasErrors = &val
	}

	return *r.hasErrors
}

// Errors returns the distinct errors of failed trials.
func (r *BenchResult) Errors() []string {
	seen := map[string]bool{}
	errs := []string{}
	for _, res := range r.Raw {
		if res.Error == nil || seen[res.Error.Error()] {
			continue
		}
		seen[res.Error.Error()] = true
		errs = append(errs, res.Error.Error())
	}
	return errs
}

type Result struct {
	Duration   time.Duration
	Iterations int
	Error      error
}

func roundDurationMS(d time.Duration) time.Duration {
	rounded := d.Round(time.Millisecond)
	if rounded == 1<<63-1 {
		return 0
	}
	return rounded
}
