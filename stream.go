// Copyright (C) MongoDB, Inc. 2025-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package monary

import (
	"context"

	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/x/bsonx/bsoncore"
)

// DocumentStream is a lazy, forward-only sequence of raw documents, such as
// the results of a find or aggregate.
//
// Next blocks until the next document is available and reports false when
// the stream is exhausted or fails; Err distinguishes the two. The document
// returned by Document is only valid until the next call to Next.
type DocumentStream interface {
	Next(ctx context.Context) bool
	Document() bsoncore.Document
	Err() error
	Close(ctx context.Context) error
}

// cursorStream adapts a driver cursor to a DocumentStream.
type cursorStream struct {
	cur *mongo.Cursor
}

var _ DocumentStream = (*cursorStream)(nil)

// NewCursorStream returns a DocumentStream over a driver cursor.
func NewCursorStream(cur *mongo.Cursor) DocumentStream {
	return &cursorStream{cur: cur}
}

func (s *cursorStream) Next(ctx context.Context) bool {
	return s.cur.Next(ctx)
}

func (s *cursorStream) Document() bsoncore.Document {
	return bsoncore.Document(s.cur.Current)
}

func (s *cursorStream) Err() error {
	return s.cur.Err()
}

func (s *cursorStream) Close(ctx context.Context) error {
	return s.cur.Close(ctx)
}
