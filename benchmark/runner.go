// Copyright (C) MongoDB, Inc. 2025-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package benchmark

import (
	"context"
	"io"
	"strings"

	"github.com/pkg/errors"
)

// Run runs every case whose name contains filter, printing progress to out,
// and returns a summary per case. It stops at the first case with failed
// trials.
func Run(ctx context.Context, out io.Writer, filter string) ([]*Summary, error) {
	return runCases(ctx, out, filter, getAllCases())
}

func runCases(ctx context.Context, out io.Writer, filter string, cases []*CaseDefinition) ([]*Summary, error) {
	var summaries []*Summary
	for _, c := range cases {
		if !strings.Contains(c.Name(), filter) {
			continue
		}

		c.Out = out
		res := c.Run(ctx)
		if res.HasErrors() {
			return summaries, errors.Errorf("%s failed: %s", res.Name, strings.Join(res.Errors(), "; "))
		}
		if res.Trials == 0 {
			return summaries, errors.Wrapf(ctx.Err(), "%s ran no trials", res.Name)
		}

		s, err := res.Summarize()
		if err != nil {
			return summaries, err
		}
		summaries = append(summaries, s)
	}
	return summaries, nil
}
