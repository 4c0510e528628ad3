// Copyright (C) MongoDB, Inc. 2025-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package options

import "errors"

// DefaultBlockSize is the number of rows per block used by block queries when
// no block size is set.
const DefaultBlockSize = 8192

// QueryOptions represents arguments that can be used to configure a Query,
// Aggregate, BlockQuery or BlockAggregate operation.
type QueryOptions struct {
	// The maximum number of rows to load. For Query, the default value of 0
	// sizes the column buffers from a count of the matching documents. For
	// Aggregate, a limit is required because the result size cannot be
	// counted ahead of time.
	Limit int

	// The number of matching documents to skip before loading rows. The
	// default value is 0.
	Skip int

	// A document specifying the order in which documents should be returned.
	// The driver will return an error if the sort parameter is a multi-key
	// map.
	Sort interface{}

	// The index to use for the query. This should either be the index name as
	// a string or the index specification as a document.
	Hint interface{}

	// If true, the query requests only the fields the columns read, using a
	// projection built from the column fields. The default value is false.
	SelectFields bool

	// If true, documents matching the filter are counted before the query so
	// the column buffers are no larger than the result. If false and Limit is
	// positive, Limit rows are allocated without counting. Query counts by
	// default.
	DoCount *bool

	// The number of rows per block for BlockQuery and BlockAggregate. The
	// default value is DefaultBlockSize.
	BlockSize int

	// The maximum number of documents to be included in each batch returned
	// by the server.
	BatchSize *int32

	// If true, the server can write temporary data to disk while executing an
	// aggregation. Ignored by queries.
	AllowDiskUse *bool

	// A string or document that will be included in server logs, profiling
	// logs, and currentOp queries to help trace the operation.
	Comment interface{}
}

// QueryOptionsBuilder contains options to configure query operations. Each
// option can be set through setter functions. See documentation for each
// setter function for an explanation of the option.
type QueryOptionsBuilder struct {
	Opts []func(*QueryOptions) error
}

// Query creates a new QueryOptionsBuilder instance.
func Query() *QueryOptionsBuilder {
	return &QueryOptionsBuilder{}
}

// List returns a list of QueryOptions setter functions.
func (q *QueryOptionsBuilder) List() []func(*QueryOptions) error {
	return q.Opts
}

// SetLimit sets the value for the Limit field. A negative limit is rejected.
func (q *QueryOptionsBuilder) SetLimit(i int) *QueryOptionsBuilder {
	q.Opts = append(q.Opts, func(opts *QueryOptions) error {
		if i < 0 {
			return errors.New("limit must not be negative")
		}
		opts.Limit = i
		return nil
	})
	return q
}

// SetSkip sets the value for the Skip field. A negative skip is rejected.
func (q *QueryOptionsBuilder) SetSkip(i int) *QueryOptionsBuilder {
	q.Opts = append(q.Opts, func(opts *QueryOptions) error {
		if i < 0 {
			return errors.New("skip must not be negative")
		}
		opts.Skip = i
		return nil
	})
	return q
}

// SetSort sets the value for the Sort field.
func (q *QueryOptionsBuilder) SetSort(sort interface{}) *QueryOptionsBuilder {
	q.Opts = append(q.Opts, func(opts *QueryOptions) error {
		opts.Sort = sort
		return nil
	})
	return q
}

// SetHint sets the value for the Hint field.
func (q *QueryOptionsBuilder) SetHint(hint interface{}) *QueryOptionsBuilder {
	q.Opts = append(q.Opts, func(opts *QueryOptions) error {
		opts.Hint = hint
		return nil
	})
	return q
}

// SetSelectFields sets the value for the SelectFields field.
func (q *QueryOptionsBuilder) SetSelectFields(b bool) *QueryOptionsBuilder {
	q.Opts = append(q.Opts, func(opts *QueryOptions) error {
		opts.SelectFields = b
		return nil
	})
	return q
}

// SetDoCount sets the value for the DoCount field.
func (q *QueryOptionsBuilder) SetDoCount(b bool) *QueryOptionsBuilder {
	q.Opts = append(q.Opts, func(opts *QueryOptions) error {
		opts.DoCount = &b
		return nil
	})
	return q
}

// SetBlockSize sets the value for the BlockSize field. The block size must be
// positive.
func (q *QueryOptionsBuilder) SetBlockSize(i int) *QueryOptionsBuilder {
	q.Opts = append(q.Opts, func(opts *QueryOptions) error {
		if i <= 0 {
			return errors.New("block size must be positive")
		}
		opts.BlockSize = i
		return nil
	})
	return q
}

// SetBatchSize sets the value for the BatchSize field.
func (q *QueryOptionsBuilder) SetBatchSize(i int32) *QueryOptionsBuilder {
	q.Opts = append(q.Opts, func(opts *QueryOptions) error {
		opts.BatchSize = &i
		return nil
	})
	return q
}

// SetAllowDiskUse sets the value for the AllowDiskUse field.
func (q *QueryOptionsBuilder) SetAllowDiskUse(b bool) *QueryOptionsBuilder {
	q.Opts = append(q.Opts, func(opts *QueryOptions) error {
		opts.AllowDiskUse = &b
		return nil
	})
	return q
}

// SetComment sets the value for the Comment field.
func (q *QueryOptionsBuilder) SetComment(comment interface{}) *QueryOptionsBuilder {
	q.Opts = append(q.Opts, func(opts *QueryOptions) error {
		opts.Comment = comment
		return nil
	})
	return q
}
