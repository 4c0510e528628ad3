// Copyright (C) MongoDB, Inc. 2025-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package monary

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"go.mongodb.org/mongo-driver/v2/mongo"
)

// ErrClientDisconnected is returned when disconnected Client is used to run
// an operation.
var ErrClientDisconnected = errors.New("client is disconnected")

// ErrLimitRequired is returned when the number of rows to allocate cannot be
// determined because no count is available and no limit was set.
var ErrLimitRequired = errors.New("a positive limit is required to size the column buffers")

// ErrMissingID is returned by Insert when an _id column that is not an
// ObjectID column has masked rows, since no identifier can be generated for
// them.
var ErrMissingID = errors.New("_id column has masked rows and is not an id column")

// ErrNilStream is returned when a cursor is created without a document
// stream.
var ErrNilStream = errors.New("document stream is nil")

// StreamError is returned when the document stream fails while rows are
// being loaded. Rows and Masked describe what was loaded before the failure;
// those rows are valid.
type StreamError struct {
	Rows   int
	Masked int
	Err    error
}

// Error implements the error interface.
func (e *StreamError) Error() string {
	return fmt.Sprintf("document stream failed after %d rows: %v", e.Rows, e.Err)
}

// Unwrap returns the error reported by the stream.
func (e *StreamError) Unwrap() error {
	return e.Err
}

// InsertError is returned by Insert when a batch could not be sent or the
// server's report of it could not be interpreted. Every row of Failed is
// masked in the identifier column.
type InsertError struct {
	Batch  int   // index of the batch that failed
	Failed []int // rows masked because of this error
	Err    error
}

// Error implements the error interface.
func (e *InsertError) Error() string {
	return fmt.Sprintf("insert batch %d failed (%d rows masked): %v", e.Batch, len(e.Failed), e.Err)
}

// Unwrap returns the underlying error.
func (e *InsertError) Unwrap() error {
	return e.Err
}

// failedWrites returns the batch-relative indexes the server reported as
// failed. ok is false if err is not a structured bulk write report or names
// an index outside the batch, in which case the whole batch must be treated
// as failed. A report that only carries a write concern error names no rows.
func failedWrites(err error, batchLen int) (indexes []int, ok bool) {
	var bwe mongo.BulkWriteException
	if !errors.As(err, &bwe) {
		return nil, false
	}

	seen := make(map[int]bool, len(bwe.WriteErrors))
	for _, we := range bwe.WriteErrors {
		if we.Index < 0 || we.Index >= batchLen {
			return nil, false
		}
		if !seen[we.Index] {
			seen[we.Index] = true
			indexes = append(indexes, we.Index)
		}
	}
	sort.Ints(indexes)

	return indexes, true
}

// joinIndexes renders row indexes for log messages.
func joinIndexes(rows []int) string {
	var sb strings.Builder
	for i, r := range rows {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(strconv.Itoa(r))
	}
	return sb.String()
}
