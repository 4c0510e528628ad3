// Copyright (C) MongoDB, Inc. 2025-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/ikmak/monary/column"
)

const previewRows = 3

// printSummary writes one line per column: its field, type, the number of
// present values among the first rows rows and a preview of the first
// values.
func printSummary(w io.Writer, cs *column.ColumnSet, rows int) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "FIELD\tTYPE\tPRESENT\tFIRST")
	for _, c := range cs.Columns() {
		fmt.Fprintf(tw, "%s\t%s\t%d/%d\t%s\n", c.Field(), typeName(c), c.Present(rows), rows, preview(c, rows))
	}
	return tw.Flush()
}

func typeName(c *column.Column) string {
	if c.Type().FixedWidth() {
		return fmt.Sprintf("%s:%d", c.Type(), c.Width())
	}
	return c.Type().String()
}

func preview(c *column.Column, rows int) string {
	n := min(rows, previewRows)
	vals := make([]string, 0, n)
	for row := 0; row < n; row++ {
		v, ok := c.Value(row)
		if !ok {
			vals = append(vals, "-")
			continue
		}
		vals = append(vals, formatValue(v))
	}
	return strings.Join(vals, ", ")
}

func formatValue(v any) string {
	switch v := v.(type) {
	case string:
		return fmt.Sprintf("%q", v)
	case []byte:
		return fmt.Sprintf("%x", v)
	case fmt.Stringer:
		return v.String()
	default:
		return fmt.Sprint(v)
	}
}
