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

// BlockCursor reads the results of a query one block of rows at a time into a
// single reused ColumnSet. The ColumnSet returned by Block is overwritten by
// each call to Next.
//
// A BlockCursor is not safe for concurrent use.
type BlockCursor struct {
	cur     *Cursor
	tracker *loadTracker

	blocks      int
	totalRows   int
	totalMasked int
	err         error
	finished    bool
}

func newBlockCursor(cur *Cursor, tracker *loadTracker) *BlockCursor {
	return &BlockCursor{cur: cur, tracker: tracker}
}

// Next loads the next block of rows and reports whether one was loaded. Before
// loading, every row is masked and the slots of fixed-width columns are
// zeroed. Next returns false once the stream is drained or fails; a block
// with no rows is never returned. After a failure Err returns the error, and
// Block and Rows describe the rows loaded before it.
func (bc *BlockCursor) Next(ctx context.Context) bool {
	if bc.finished {
		return false
	}
	if bc.cur.Drained() {
		bc.succeed(ctx)
		return false
	}

	bc.cur.rewind()
	n, err := bc.cur.LoadAll(ctx)
	bc.totalRows += n
	bc.totalMasked += bc.cur.Masked()
	if err != nil {
		bc.err = err
		bc.finished = true
		bc.tracker.failed(ctx, err, bc.totalRows, bc.totalMasked)
		return false
	}
	if n == 0 {
		bc.succeed(ctx)
		return false
	}

	bc.tracker.block(ctx, bc.blocks, n, bc.cur.Masked())
	bc.blocks++
	return true
}

func (bc *BlockCursor) succeed(ctx context.Context) {
	bc.finished = true
	bc.tracker.succeeded(ctx, bc.totalRows, bc.totalMasked)
}

// Block returns the ColumnSet holding the current block.
func (bc *BlockCursor) Block() *column.ColumnSet { return bc.cur.Columns() }

// Rows returns the number of rows in the current block.
func (bc *BlockCursor) Rows() int { return bc.cur.Rows() }

// Masked returns the number of masked values in the current block.
func (bc *BlockCursor) Masked() int { return bc.cur.Masked() }

// Err returns the error that ended iteration, if any.
func (bc *BlockCursor) Err() error { return bc.err }

// Close closes the underlying stream. Closing a cursor before it is drained
// ends the operation successfully with the rows read so far.
func (bc *BlockCursor) Close(ctx context.Context) error {
	if !bc.finished {
		bc.succeed(ctx)
	}
	return bc.cur.Close(ctx)
}
