// Copyright (C) MongoDB, Inc. 2025-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package monary

import (
	"context"
	"time"

	"github.com/ikmak/monary/event"
	"github.com/ikmak/monary/internal/logger"
	"go.mongodb.org/mongo-driver/v2/bson"
)

// loadTracker publishes the monitor events and log messages of one load
// operation.
type loadTracker struct {
	logger  *logger.Logger
	monitor *event.LoadMonitor
	op      logger.Operation
	start   time.Time
}

func (c *Client) startLoad(
	ctx context.Context,
	name, db, coll string,
	filter bson.Raw,
	numColumns, rowLimit int,
) (context.Context, *loadTracker) {
	t := &loadTracker{
		logger:  c.logger,
		monitor: c.loadMonitor,
		op: logger.Operation{
			Name:        name,
			ID:          logger.NextOperationID(),
			Database:    db,
			Collection:  coll,
			ColumnCount: numColumns,
		},
		start: time.Now(),
	}

	if t.logger.LevelComponentEnabled(logger.LevelDebug, logger.ComponentQuery) {
		t.logger.Print(logger.LevelDebug, logger.ComponentQuery, logger.QueryStarted,
			logger.SerializeOperation(t.op,
				logger.KeyFilter, logger.FormatDocument(filter, t.logger.MaxDocumentLength),
				logger.KeyRowLimit, rowLimit)...)
	}

	if t.monitor != nil && t.monitor.Started != nil {
		t.monitor.Started(ctx, &event.LoadStartedEvent{
			OperationID:    t.op.ID,
			OperationName:  name,
			DatabaseName:   db,
			CollectionName: coll,
			Filter:         filter,
			NumColumns:     numColumns,
			RowLimit:       rowLimit,
		})
	}

	return ctx, t
}

func (t *loadTracker) finished(rows, masked int) event.LoadFinishedEvent {
	return event.LoadFinishedEvent{
		OperationID:   t.op.ID,
		OperationName: t.op.Name,
		Duration:      time.Since(t.start),
		Rows:          rows,
		Masked:        masked,
	}
}

func (t *loadTracker) block(ctx context.Context, index, rows, masked int) {
	fin := t.finished(rows, masked)

	t.logger.Print(logger.LevelDebug, logger.ComponentQuery, logger.QueryBlockLoaded,
		logger.SerializeOperation(t.op,
			logger.KeyBlockIndex, index,
			logger.KeyRowCount, rows,
			logger.KeyMaskedCount, masked,
			logger.KeyDurationMS, logger.Duration(fin.Duration))...)

	if t.monitor != nil && t.monitor.Block != nil {
		t.monitor.Block(ctx, &event.LoadBlockEvent{LoadFinishedEvent: fin, BlockIndex: index})
	}
}

func (t *loadTracker) succeeded(ctx context.Context, rows, masked int) {
	fin := t.finished(rows, masked)

	t.logger.Print(logger.LevelInfo, logger.ComponentQuery, logger.QuerySucceeded,
		logger.SerializeOperation(t.op,
			logger.KeyRowCount, rows,
			logger.KeyMaskedCount, masked,
			logger.KeyDurationMS, logger.Duration(fin.Duration))...)

	if t.monitor != nil && t.monitor.Succeeded != nil {
		t.monitor.Succeeded(ctx, &event.LoadSucceededEvent{LoadFinishedEvent: fin})
	}
}

func (t *loadTracker) failed(ctx context.Context, err error, rows, masked int) {
	fin := t.finished(rows, masked)

	t.logger.Error(err, logger.ComponentQuery, logger.QueryFailed,
		logger.SerializeOperation(t.op,
			logger.KeyRowCount, rows,
			logger.KeyMaskedCount, masked,
			logger.KeyDurationMS, logger.Duration(fin.Duration),
			logger.KeyFailure, err.Error())...)

	if t.monitor != nil && t.monitor.Failed != nil {
		t.monitor.Failed(ctx, &event.LoadFailedEvent{LoadFinishedEvent: fin, Failure: err})
	}
}

// insertTracker publishes the monitor events and log messages of one insert.
type insertTracker struct {
	logger  *logger.Logger
	monitor *event.InsertMonitor
	op      logger.Operation
	start   time.Time
}

func (c *Client) startInsert(ctx context.Context, db, coll string, numColumns, numRows int, ordered bool) (context.Context, *insertTracker) {
	t := &insertTracker{
		logger:  c.logger,
		monitor: c.insertMonitor,
		op: logger.Operation{
			Name:        "insert",
			ID:          logger.NextOperationID(),
			Database:    db,
			Collection:  coll,
			ColumnCount: numColumns,
		},
		start: time.Now(),
	}

	t.logger.Print(logger.LevelDebug, logger.ComponentInsert, logger.InsertStarted,
		logger.SerializeOperation(t.op, logger.KeyRowCount, numRows)...)

	if t.monitor != nil && t.monitor.Started != nil {
		t.monitor.Started(ctx, &event.InsertStartedEvent{
			OperationID:    t.op.ID,
			DatabaseName:   db,
			CollectionName: coll,
			NumColumns:     numColumns,
			NumRows:        numRows,
			Ordered:        ordered,
		})
	}

	return ctx, t
}

func (t *insertTracker) batchFailed(batch int, failed []int, err error) {
	t.logger.Error(err, logger.ComponentInsert, logger.InsertBatchFailed,
		logger.SerializeOperation(t.op,
			logger.KeyBatchIndex, batch,
			logger.KeyFailedCount, len(failed),
			logger.KeyMessage, joinIndexes(failed))...)
}

func (t *insertTracker) finished(inserted int, failed []int) event.InsertFinishedEvent {
	return event.InsertFinishedEvent{
		OperationID: t.op.ID,
		Duration:    time.Since(t.start),
		Inserted:    inserted,
		Failed:      failed,
	}
}

func (t *insertTracker) succeeded(ctx context.Context, inserted int, failed []int) {
	fin := t.finished(inserted, failed)

	t.logger.Print(logger.LevelInfo, logger.ComponentInsert, logger.InsertSucceeded,
		logger.SerializeOperation(t.op,
			logger.KeyInsertedCount, inserted,
			logger.KeyFailedCount, len(failed),
			logger.KeyDurationMS, logger.Duration(fin.Duration))...)

	if t.monitor != nil && t.monitor.Succeeded != nil {
		t.monitor.Succeeded(ctx, &event.InsertSucceededEvent{InsertFinishedEvent: fin})
	}
}

func (t *insertTracker) failed(ctx context.Context, err error, inserted int, failed []int) {
	fin := t.finished(inserted, failed)

	t.logger.Error(err, logger.ComponentInsert, logger.InsertFailed,
		logger.SerializeOperation(t.op,
			logger.KeyInsertedCount, inserted,
			logger.KeyFailedCount, len(failed),
			logger.KeyDurationMS, logger.Duration(fin.Duration),
			logger.KeyFailure, err.Error())...)

	if t.monitor != nil && t.monitor.Failed != nil {
		t.monitor.Failed(ctx, &event.InsertFailedEvent{InsertFinishedEvent: fin, Failure: err})
	}
}
