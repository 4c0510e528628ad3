// Copyright (C) MongoDB, Inc. 2025-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package logger

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// Messages logged by the query and insert paths.
const (
	QueryStarted      = "Query started"
	QueryBlockLoaded  = "Query block loaded"
	QuerySucceeded    = "Query succeeded"
	QueryFailed       = "Query failed"
	InsertStarted     = "Insert started"
	InsertBatchFailed = "Insert batch failed"
	InsertSucceeded   = "Insert succeeded"
	InsertFailed      = "Insert failed"
)

// Keys used in structured log messages.
const (
	KeyBatchIndex     = "batchIndex"
	KeyBlockIndex     = "blockIndex"
	KeyCollectionName = "collectionName"
	KeyColumnCount    = "columnCount"
	KeyDatabaseName   = "databaseName"
	KeyDurationMS     = "durationMS"
	KeyError          = "error"
	KeyFailedCount    = "failedCount"
	KeyFailure        = "failure"
	KeyFilter         = "filter"
	KeyInsertedCount  = "insertedCount"
	KeyMaskedCount    = "maskedCount"
	KeyMessage        = "message"
	KeyOperation      = "operation"
	KeyOperationID    = "operationId"
	KeyRowCount       = "rowCount"
	KeyRowLimit       = "rowLimit"
	KeyTimestamp      = "timestamp"
)

// KeyValues is a list of key-value pairs.
type KeyValues []interface{}

// Add adds a key-value pair to an instance of a KeyValues list.
func (kvs *KeyValues) Add(key string, value interface{}) {
	*kvs = append(*kvs, key, value)
}

// Component is an enumeration representing the "components" which can be
// logged against. A LogLevel can be configured on a per-component basis.
type Component int

const (
	// ComponentAll enables logging for all components.
	ComponentAll Component = iota

	// ComponentQuery enables logging of queries, aggregations, counts and
	// block loads.
	ComponentQuery

	// ComponentInsert enables logging of column inserts.
	ComponentInsert
)

const (
	monaryLogAllEnvVar    = "MONARY_LOG_ALL"
	monaryLogQueryEnvVar  = "MONARY_LOG_QUERY"
	monaryLogInsertEnvVar = "MONARY_LOG_INSERT"
)

var componentEnvVarMap = map[string]Component{
	monaryLogAllEnvVar:    ComponentAll,
	monaryLogQueryEnvVar:  ComponentQuery,
	monaryLogInsertEnvVar: ComponentInsert,
}

// Operation holds the identifying fields shared by every message logged for
// one query or insert.
type Operation struct {
	Name        string // "query", "aggregate", "count" or "insert"
	ID          int64
	Database    string
	Collection  string
	ColumnCount int
}

// SerializeOperation returns the key/value pairs identifying op followed by
// extraKeysAndValues.
func SerializeOperation(op Operation, extraKeysAndValues ...interface{}) KeyValues {
	keysAndValues := KeyValues{
		KeyOperation, op.Name,
		KeyOperationID, op.ID,
		KeyDatabaseName, op.Database,
		KeyCollectionName, op.Collection,
		KeyColumnCount, op.ColumnCount,
	}

	// Add the extra keys and values.
	for i := 0; i+1 < len(extraKeysAndValues); i += 2 {
		keysAndValues.Add(extraKeysAndValues[i].(string), extraKeysAndValues[i+1])
	}

	return keysAndValues
}

// Duration returns d in the unit used for KeyDurationMS.
func Duration(d time.Duration) int64 {
	return d.Milliseconds()
}

// FormatDocument formats a BSON document or RawValue for logging as relaxed
// extended JSON, truncated to width bytes.
func FormatDocument(doc interface{}, width uint) string {
	if doc == nil {
		return "{}"
	}

	b, err := bson.MarshalExtJSON(doc, false, false)
	if err != nil {
		return "{}"
	}

	return truncate(string(b), width)
}
