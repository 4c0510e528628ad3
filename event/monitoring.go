// Copyright (C) MongoDB, Inc. 2025-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

// Package event defines the monitors that observe loads and inserts.
package event // import "github.com/ikmak/monary/event"

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// LoadStartedEvent represents an event generated when a query, aggregation or
// block query starts loading documents into columns.
type LoadStartedEvent struct {
	OperationID    int64
	OperationName  string // "query", "aggregate", "blockQuery" or "blockAggregate"
	DatabaseName   string
	CollectionName string
	Filter         bson.Raw // filter or pipeline, as sent to the server
	NumColumns     int
	RowLimit       int // capacity of the column buffers
}

// LoadFinishedEvent represents a generic load finishing.
type LoadFinishedEvent struct {
	OperationID   int64
	OperationName string
	Duration      time.Duration
	Rows          int
	Masked        int
}

// LoadBlockEvent represents an event generated each time a block cursor fills
// a block.
type LoadBlockEvent struct {
	LoadFinishedEvent
	BlockIndex int
}

// LoadSucceededEvent represents an event generated when a load completes.
type LoadSucceededEvent struct {
	LoadFinishedEvent
}

// LoadFailedEvent represents an event generated when a load stops because of
// a stream error. Rows and Masked describe what was loaded before the error.
type LoadFailedEvent struct {
	LoadFinishedEvent
	Failure error
}

// LoadMonitor represents a monitor that is triggered for different load
// events. Any of the functions may be nil.
type LoadMonitor struct {
	Started   func(context.Context, *LoadStartedEvent)
	Block     func(context.Context, *LoadBlockEvent)
	Succeeded func(context.Context, *LoadSucceededEvent)
	Failed    func(context.Context, *LoadFailedEvent)
}

// InsertStartedEvent represents an event generated when rows of columns start
// being written to a collection.
type InsertStartedEvent struct {
	OperationID    int64
	DatabaseName   string
	CollectionName string
	NumColumns     int
	NumRows        int
	Ordered        bool
}

// InsertFinishedEvent represents a generic insert finishing.
type InsertFinishedEvent struct {
	OperationID int64
	Duration    time.Duration
	Inserted    int
	Failed      []int // row indices whose documents were not written
}

// InsertSucceededEvent represents an event generated when every batch of an
// insert has been sent. Individual rows may still have failed.
type InsertSucceededEvent struct {
	InsertFinishedEvent
}

// InsertFailedEvent represents an event generated when an insert stops early.
type InsertFailedEvent struct {
	InsertFinishedEvent
	Failure error
}

// InsertMonitor represents a monitor that is triggered for different insert
// events. Any of the functions may be nil.
type InsertMonitor struct {
	Started   func(context.Context, *InsertStartedEvent)
	Succeeded func(context.Context, *InsertSucceededEvent)
	Failed    func(context.Context, *InsertFailedEvent)
}
