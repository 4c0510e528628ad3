// Copyright (C) MongoDB, Inc. 2025-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package monary

import (
	"context"

	"github.com/ikmak/monary/column"
)

// Cursor loads the documents of a DocumentStream into the rows of a
// ColumnSet. A Cursor is not safe for concurrent use.
type Cursor struct {
	stream  DocumentStream
	columns *column.ColumnSet
	rows    int
	masked  int
	drained bool
}

// NewCursor returns a Cursor that loads documents from stream into cs. Every
// column of cs must be defined.
func NewCursor(stream DocumentStream, cs *column.ColumnSet) (*Cursor, error) {
	if stream == nil {
		return nil, ErrNilStream
	}
	if err := cs.Validate(); err != nil {
		return nil, err
	}
	return &Cursor{stream: stream, columns: cs}, nil
}

// LoadAll loads documents into consecutive rows until the stream is drained or
// every row of the ColumnSet is filled, and returns the number of rows loaded.
// Documents beyond the ColumnSet's capacity are left in the stream.
//
// If the stream fails, LoadAll returns the rows loaded so far and a
// *StreamError wrapping the stream's error. Those rows are valid.
func (c *Cursor) LoadAll(ctx context.Context) (int, error) {
	capacity := c.columns.NumRows()
	for c.rows < capacity {
		if !c.stream.Next(ctx) {
			if err := c.stream.Err(); err != nil {
				return c.rows, &StreamError{Rows: c.rows, Masked: c.masked, Err: err}
			}
			c.drained = true
			break
		}

		c.masked += c.columns.ExtractRow(c.rows, c.stream.Document())
		c.rows++
	}
	return c.rows, nil
}

// Rows returns the number of rows loaded.
func (c *Cursor) Rows() int { return c.rows }

// Masked returns the number of masked values in the loaded rows, summed over
// all columns.
func (c *Cursor) Masked() int { return c.masked }

// Columns returns the ColumnSet rows are loaded into.
func (c *Cursor) Columns() *column.ColumnSet { return c.columns }

// Drained reports whether the stream has been read to its end.
func (c *Cursor) Drained() bool { return c.drained }

// Close closes the underlying stream.
func (c *Cursor) Close(ctx context.Context) error {
	return c.stream.Close(ctx)
}

// rewind masks every row and clears the counters so the ColumnSet can hold
// the next rows of the stream.
func (c *Cursor) rewind() {
	c.columns.Reset()
	c.rows = 0
	c.masked = 0
}
