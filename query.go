// Copyright (C) MongoDB, Inc. 2025-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package monary

import (
	"context"
	"fmt"

	"github.com/ikmak/monary/column"
	"github.com/ikmak/monary/internal/logger"
	"github.com/ikmak/monary/internal/mongoutil"
	"github.com/ikmak/monary/options"
	"go.mongodb.org/mongo-driver/v2/bson"
	mopts "go.mongodb.org/mongo-driver/v2/mongo/options"
)

// Result holds the columns loaded by Query or Aggregate.
type Result struct {
	// Columns has one column per requested spec. Only the first Rows rows
	// hold loaded values; the rest stay masked.
	Columns *column.ColumnSet

	// Rows is the number of documents loaded.
	Rows int

	// Masked is the number of masked values in the loaded rows, summed over
	// all columns.
	Masked int
}

// Query runs a find on the collection and loads the matching documents into
// newly allocated columns, one per spec.
//
// Unless QueryOptions.DoCount is false and a Limit is set, the matching
// documents are counted first (honoring Skip and Limit) and exactly that many
// rows are allocated; otherwise Limit rows are allocated.
//
// If the result stream fails, Query returns the rows loaded so far along with
// a *StreamError.
func (c *Client) Query(
	ctx context.Context,
	db, coll string,
	filter interface{},
	specs []column.Spec,
	opts ...options.Lister[options.QueryOptions],
) (*Result, error) {
	args, err := mongoutil.NewOptions[options.QueryOptions](opts...)
	if err != nil {
		return nil, err
	}
	col, err := c.coll(db, coll, nil)
	if err != nil {
		return nil, err
	}
	if filter == nil {
		filter = bson.D{}
	}

	rows := args.Limit
	if mongoutil.Deref(args.DoCount, true) || args.Limit == 0 {
		n, err := countDocuments(ctx, col, filter, args)
		if err != nil {
			return nil, err
		}
		if args.Limit == 0 || n < int64(args.Limit) {
			rows = int(n)
		}
	}

	cs, err := column.Allocate(specs, rows)
	if err != nil {
		return nil, err
	}

	ctx, tracker := c.startLoad(ctx, "query", db, coll, marshalFilter(filter), len(specs), rows)
	if rows == 0 {
		tracker.succeeded(ctx, 0, 0)
		return &Result{Columns: cs}, nil
	}

	stream, err := col.Find(ctx, filter, findOptions(args, cs, rows))
	if err != nil {
		tracker.failed(ctx, err, 0, 0)
		return nil, err
	}
	return c.load(ctx, stream, cs, tracker)
}

// Aggregate runs an aggregation pipeline on the collection and loads the
// resulting documents into newly allocated columns, one per spec. The size
// of an aggregation's result cannot be counted ahead of time, so
// QueryOptions.Limit rows are allocated; a positive Limit is required.
// Results beyond Limit are not read.
func (c *Client) Aggregate(
	ctx context.Context,
	db, coll string,
	pipeline interface{},
	specs []column.Spec,
	opts ...options.Lister[options.QueryOptions],
) (*Result, error) {
	args, err := mongoutil.NewOptions[options.QueryOptions](opts...)
	if err != nil {
		return nil, err
	}
	if args.Limit <= 0 {
		return nil, ErrLimitRequired
	}
	col, err := c.coll(db, coll, nil)
	if err != nil {
		return nil, err
	}

	cs, err := column.Allocate(specs, args.Limit)
	if err != nil {
		return nil, err
	}

	ctx, tracker := c.startLoad(ctx, "aggregate", db, coll, marshalPipeline(pipeline), len(specs), args.Limit)
	stream, err := col.Aggregate(ctx, pipeline, aggregateOptions(args))
	if err != nil {
		tracker.failed(ctx, err, 0, 0)
		return nil, err
	}
	return c.load(ctx, stream, cs, tracker)
}

func (c *Client) load(ctx context.Context, stream DocumentStream, cs *column.ColumnSet, tracker *loadTracker) (*Result, error) {
	cur, err := NewCursor(stream, cs)
	if err != nil {
		_ = stream.Close(ctx)
		tracker.failed(ctx, err, 0, 0)
		return nil, err
	}
	defer func() { _ = cur.Close(ctx) }()

	n, err := cur.LoadAll(ctx)
	res := &Result{Columns: cs, Rows: n, Masked: cur.Masked()}
	if err != nil {
		tracker.failed(ctx, err, n, res.Masked)
		return res, err
	}

	tracker.succeeded(ctx, n, res.Masked)
	return res, nil
}

// BlockQuery runs a find on the collection and returns a BlockCursor that
// loads the matching documents QueryOptions.BlockSize rows at a time.
func (c *Client) BlockQuery(
	ctx context.Context,
	db, coll string,
	filter interface{},
	specs []column.Spec,
	opts ...options.Lister[options.QueryOptions],
) (*BlockCursor, error) {
	args, err := mongoutil.NewOptions[options.QueryOptions](opts...)
	if err != nil {
		return nil, err
	}
	col, err := c.coll(db, coll, nil)
	if err != nil {
		return nil, err
	}
	if filter == nil {
		filter = bson.D{}
	}

	cs, err := column.Allocate(specs, blockSize(args))
	if err != nil {
		return nil, err
	}

	ctx, tracker := c.startLoad(ctx, "blockQuery", db, coll, marshalFilter(filter), len(specs), cs.NumRows())
	stream, err := col.Find(ctx, filter, findOptions(args, cs, args.Limit))
	if err != nil {
		tracker.failed(ctx, err, 0, 0)
		return nil, err
	}
	return c.blockCursor(ctx, stream, cs, tracker)
}

// BlockAggregate runs an aggregation pipeline on the collection and returns a
// BlockCursor that loads the results QueryOptions.BlockSize rows at a time.
func (c *Client) BlockAggregate(
	ctx context.Context,
	db, coll string,
	pipeline interface{},
	specs []column.Spec,
	opts ...options.Lister[options.QueryOptions],
) (*BlockCursor, error) {
	args, err := mongoutil.NewOptions[options.QueryOptions](opts...)
	if err != nil {
		return nil, err
	}
	col, err := c.coll(db, coll, nil)
	if err != nil {
		return nil, err
	}

	cs, err := column.Allocate(specs, blockSize(args))
	if err != nil {
		return nil, err
	}

	ctx, tracker := c.startLoad(ctx, "blockAggregate", db, coll, marshalPipeline(pipeline), len(specs), cs.NumRows())
	stream, err := col.Aggregate(ctx, pipeline, aggregateOptions(args))
	if err != nil {
		tracker.failed(ctx, err, 0, 0)
		return nil, err
	}
	return c.blockCursor(ctx, stream, cs, tracker)
}

func (c *Client) blockCursor(ctx context.Context, stream DocumentStream, cs *column.ColumnSet, tracker *loadTracker) (*BlockCursor, error) {
	cur, err := NewCursor(stream, cs)
	if err != nil {
		_ = stream.Close(ctx)
		tracker.failed(ctx, err, 0, 0)
		return nil, err
	}
	return newBlockCursor(cur, tracker), nil
}

// Count returns the number of documents in the collection matching filter,
// honoring the Skip, Limit, Hint and Comment query options.
func (c *Client) Count(
	ctx context.Context,
	db, coll string,
	filter interface{},
	opts ...options.Lister[options.QueryOptions],
) (int64, error) {
	args, err := mongoutil.NewOptions[options.QueryOptions](opts...)
	if err != nil {
		return 0, err
	}
	col, err := c.coll(db, coll, nil)
	if err != nil {
		return 0, err
	}
	if filter == nil {
		filter = bson.D{}
	}

	op := logger.Operation{Name: "count", ID: logger.NextOperationID(), Database: db, Collection: coll}
	n, err := countDocuments(ctx, col, filter, args)
	if err != nil {
		c.logger.Error(err, logger.ComponentQuery, logger.QueryFailed,
			logger.SerializeOperation(op, logger.KeyFailure, err.Error())...)
		return 0, err
	}

	c.logger.Print(logger.LevelInfo, logger.ComponentQuery, logger.QuerySucceeded,
		logger.SerializeOperation(op, logger.KeyRowCount, n)...)
	return n, nil
}

func countDocuments(ctx context.Context, col collection, filter interface{}, args *options.QueryOptions) (int64, error) {
	countOpts := mopts.Count()
	if args.Skip > 0 {
		countOpts.SetSkip(int64(args.Skip))
	}
	if args.Limit > 0 {
		countOpts.SetLimit(int64(args.Limit))
	}
	if args.Hint != nil {
		countOpts.SetHint(args.Hint)
	}
	if args.Comment != nil {
		countOpts.SetComment(args.Comment)
	}

	n, err := col.CountDocuments(ctx, filter, countOpts)
	if err != nil {
		return 0, fmt.Errorf("counting documents: %w", err)
	}
	return n, nil
}

func findOptions(args *options.QueryOptions, cs *column.ColumnSet, limit int) *mopts.FindOptionsBuilder {
	findOpts := mopts.Find()
	if args.Skip > 0 {
		findOpts.SetSkip(int64(args.Skip))
	}
	if limit > 0 {
		findOpts.SetLimit(int64(limit))
	}
	if args.Sort != nil {
		findOpts.SetSort(args.Sort)
	}
	if args.Hint != nil {
		findOpts.SetHint(args.Hint)
	}
	if args.BatchSize != nil {
		findOpts.SetBatchSize(*args.BatchSize)
	}
	if args.Comment != nil {
		findOpts.SetComment(args.Comment)
	}
	if args.SelectFields {
		findOpts.SetProjection(bson.Raw(cs.Projection()))
	}
	return findOpts
}

func aggregateOptions(args *options.QueryOptions) *mopts.AggregateOptionsBuilder {
	aggOpts := mopts.Aggregate()
	if args.AllowDiskUse != nil {
		aggOpts.SetAllowDiskUse(*args.AllowDiskUse)
	}
	if args.BatchSize != nil {
		aggOpts.SetBatchSize(*args.BatchSize)
	}
	if args.Hint != nil {
		aggOpts.SetHint(args.Hint)
	}
	if args.Comment != nil {
		aggOpts.SetComment(args.Comment)
	}
	return aggOpts
}

func blockSize(args *options.QueryOptions) int {
	if args.BlockSize > 0 {
		return args.BlockSize
	}
	return options.DefaultBlockSize
}

// marshalFilter returns filter as a document for events and log messages, or
// nil if it cannot be marshaled.
func marshalFilter(filter interface{}) bson.Raw {
	switch f := filter.(type) {
	case bson.Raw:
		return f
	case []byte:
		return bson.Raw(f)
	}
	b, err := bson.Marshal(filter)
	if err != nil {
		return nil
	}
	return bson.Raw(b)
}

// marshalPipeline returns pipeline wrapped in a {pipeline: [...]} document.
func marshalPipeline(pipeline interface{}) bson.Raw {
	return marshalFilter(bson.D{{Key: "pipeline", Value: pipeline}})
}
