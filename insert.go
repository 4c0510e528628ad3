// Copyright (C) MongoDB, Inc. 2025-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package monary

import (
	"context"
	"errors"

	"github.com/ikmak/monary/column"
	"github.com/ikmak/monary/internal/mongoutil"
	"github.com/ikmak/monary/options"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	mopts "go.mongodb.org/mongo-driver/v2/mongo/options"
)

const idField = "_id"

// InsertResult describes the outcome of Insert.
type InsertResult struct {
	// IDs is the _id column of the inserted documents. It is the caller's
	// _id column when one was given, or a newly allocated ObjectID column.
	// Rows whose document was not written are masked.
	IDs *column.Column

	// Inserted is the number of documents written.
	Inserted int

	// Failed lists, in ascending order, the rows whose document was not
	// written.
	Failed []int
}

// Insert writes one document per row of cols to the collection. A column's
// dotted field name places its value in an embedded document; masked values
// are left out of the document.
//
// Rows without an _id get a new ObjectID. If cols has an ObjectID column
// named "_id" the generated identifiers are stored in its masked rows,
// otherwise a new ObjectID column is allocated for them. An "_id" column of
// any other type must have no masked rows.
//
// Rows are sent InsertOptions.BatchSize at a time. Rows the server reports
// as failed are masked in the IDs column and listed in InsertResult.Failed;
// this is not an error. For ordered inserts, rows after the first failure are
// not attempted and are reported as failed too. If a batch cannot be sent or
// the server's report cannot be attributed to rows, the batch and every
// later row are reported as failed and Insert returns an *InsertError.
func (c *Client) Insert(
	ctx context.Context,
	db, coll string,
	cols []*column.Column,
	opts ...options.Lister[options.InsertOptions],
) (*InsertResult, error) {
	args, err := mongoutil.NewOptions[options.InsertOptions](opts...)
	if err != nil {
		return nil, err
	}
	col, err := c.coll(db, coll, args.WriteConcern)
	if err != nil {
		return nil, err
	}

	cols, ids, err := withIDs(cols)
	if err != nil {
		return nil, err
	}
	tmpl, err := column.NewTemplate(cols)
	if err != nil {
		return nil, err
	}
	fillIDs(ids)

	ordered := mongoutil.Deref(args.Ordered, true)
	batchSize := args.BatchSize
	if batchSize <= 0 {
		batchSize = options.DefaultInsertBatchSize
	}

	insertOpts := mopts.InsertMany().SetOrdered(ordered)
	if args.BypassDocumentValidation != nil {
		insertOpts.SetBypassDocumentValidation(*args.BypassDocumentValidation)
	}
	if args.Comment != nil {
		insertOpts.SetComment(args.Comment)
	}

	numRows := tmpl.NumRows()
	ctx, tracker := c.startInsert(ctx, db, coll, len(cols), numRows, ordered)

	res := &InsertResult{IDs: ids}
	var wcErr error
	fail := func(rows ...int) {
		mask := ids.Mask()
		for _, r := range rows {
			mask[r] = true
		}
		res.Failed = append(res.Failed, rows...)
	}

	batch := 0
	for start := 0; start < numRows; start, batch = start+batchSize, batch+1 {
		end := min(start+batchSize, numRows)

		docs := make([]interface{}, 0, end-start)
		for row := start; row < end; row++ {
			doc, err := tmpl.Document(row)
			if err != nil {
				return res, c.abortInsert(ctx, tracker, res, fail, batch, start, numRows, err)
			}
			docs = append(docs, bson.Raw(doc))
		}

		_, err := col.InsertMany(ctx, docs, insertOpts)
		if err == nil {
			res.Inserted += len(docs)
			continue
		}

		failed, ok := failedWrites(err, len(docs))
		if !ok {
			return res, c.abortInsert(ctx, tracker, res, fail, batch, start, numRows, err)
		}

		var bwe mongo.BulkWriteException
		if errors.As(err, &bwe) && bwe.WriteConcernError != nil && wcErr == nil {
			wcErr = err
		}

		if ordered && len(failed) > 0 {
			res.Inserted += failed[0]
			fail(rowRange(start+failed[0], numRows)...)
			tracker.batchFailed(batch, res.Failed, err)
			break
		}

		res.Inserted += len(docs) - len(failed)
		if len(failed) > 0 {
			rows := make([]int, len(failed))
			for i, idx := range failed {
				rows[i] = start + idx
			}
			fail(rows...)
			tracker.batchFailed(batch, rows, err)
		}
	}

	if wcErr != nil {
		tracker.failed(ctx, wcErr, res.Inserted, res.Failed)
		return res, wcErr
	}
	tracker.succeeded(ctx, res.Inserted, res.Failed)
	return res, nil
}

// abortInsert reports every row from start on as failed and returns the
// *InsertError describing why.
func (c *Client) abortInsert(
	ctx context.Context,
	tracker *insertTracker,
	res *InsertResult,
	fail func(rows ...int),
	batch, start, numRows int,
	err error,
) error {
	rows := rowRange(start, numRows)
	fail(rows...)
	tracker.batchFailed(batch, rows, err)

	ierr := &InsertError{Batch: batch, Failed: rows, Err: err}
	tracker.failed(ctx, ierr, res.Inserted, res.Failed)
	return ierr
}

// withIDs returns cols with an _id column, and that column. A new ObjectID
// column is prepended when cols has none; its rows stay masked until
// fillIDs.
func withIDs(cols []*column.Column) ([]*column.Column, *column.Column, error) {
	if len(cols) == 0 {
		return nil, nil, column.ErrNoColumns
	}

	for i, c := range cols {
		if c == nil {
			return nil, nil, &column.DefineError{Index: i, Err: column.ErrUndefinedColumn}
		}
		if c.Field() != idField {
			continue
		}
		if c.Type() != column.TypeObjectID && c.Present(c.NumRows()) != c.NumRows() {
			return nil, nil, ErrMissingID
		}
		return cols, c, nil
	}

	ids, err := column.AllocateColumn(column.Spec{Field: idField, Type: column.TypeObjectID}, cols[0].NumRows())
	if err != nil {
		return nil, nil, err
	}

	withID := make([]*column.Column, 0, len(cols)+1)
	withID = append(withID, ids)
	withID = append(withID, cols...)
	return withID, ids, nil
}

// fillIDs stores a new ObjectID in every masked row of an ObjectID _id
// column.
func fillIDs(ids *column.Column) {
	if ids.Type() != column.TypeObjectID {
		return
	}
	oids := ids.Storage().([]bson.ObjectID)
	mask := ids.Mask()
	for row, masked := range mask {
		if masked {
			oids[row] = bson.NewObjectID()
			mask[row] = false
		}
	}
}

func rowRange(from, to int) []int {
	rows := make([]int, 0, to-from)
	for r := from; r < to; r++ {
		rows = append(rows, r)
	}
	return rows
}
