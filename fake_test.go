// Copyright (C) MongoDB, Inc. 2025-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package monary

import (
	"context"
	"sync"
	"testing"

	"github.com/ikmak/monary/options"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	mopts "go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.mongodb.org/mongo-driver/v2/mongo/writeconcern"
	"go.mongodb.org/mongo-driver/v2/x/bsonx/bsoncore"
)

func mustDoc(t testing.TB, d bson.D) bsoncore.Document {
	t.Helper()

	b, err := bson.Marshal(d)
	require.NoError(t, err)
	return bsoncore.Document(b)
}

// fakeStream yields docs and then reports err.
type fakeStream struct {
	docs   []bsoncore.Document
	err    error
	pos    int
	cur    bsoncore.Document
	nexts  int
	closed bool
}

var _ DocumentStream = (*fakeStream)(nil)

func (s *fakeStream) Next(context.Context) bool {
	s.nexts++
	if s.pos >= len(s.docs) {
		return false
	}
	s.cur = s.docs[s.pos]
	s.pos++
	return true
}

func (s *fakeStream) Document() bsoncore.Document { return s.cur }

func (s *fakeStream) Err() error {
	if s.pos < len(s.docs) {
		return nil
	}
	return s.err
}

func (s *fakeStream) Close(context.Context) error {
	s.closed = true
	return nil
}

type findCall struct {
	filter interface{}
	opts   *mopts.FindOptions
}

// fakeCollection serves docs to Find and Aggregate and replays insertErrs,
// one per InsertMany call.
type fakeCollection struct {
	mu sync.Mutex

	docs      []bsoncore.Document
	streamErr error
	findErr   error
	count     int64
	countErr  error

	insertErrs []error

	finds      []findCall
	counts     []*mopts.CountOptions
	pipelines  []interface{}
	inserts    [][]interface{}
	insertOpts []*mopts.InsertManyOptions
	streams    []*fakeStream
	wcs        []*writeconcern.WriteConcern
}

var _ collection = (*fakeCollection)(nil)

func (fc *fakeCollection) stream() *fakeStream {
	s := &fakeStream{docs: fc.docs, err: fc.streamErr}
	fc.streams = append(fc.streams, s)
	return s
}

func (fc *fakeCollection) Find(_ context.Context, filter interface{}, opts *mopts.FindOptionsBuilder) (DocumentStream, error) {
	fc.mu.Lock()
	defer fc.mu.Unlock()

	args := &mopts.FindOptions{}
	for _, set := range opts.List() {
		_ = set(args)
	}
	fc.finds = append(fc.finds, findCall{filter: filter, opts: args})
	if fc.findErr != nil {
		return nil, fc.findErr
	}
	return fc.stream(), nil
}

func (fc *fakeCollection) Aggregate(_ context.Context, pipeline interface{}, _ *mopts.AggregateOptionsBuilder) (DocumentStream, error) {
	fc.mu.Lock()
	defer fc.mu.Unlock()

	fc.pipelines = append(fc.pipelines, pipeline)
	if fc.findErr != nil {
		return nil, fc.findErr
	}
	return fc.stream(), nil
}

func (fc *fakeCollection) CountDocuments(_ context.Context, _ interface{}, opts *mopts.CountOptionsBuilder) (int64, error) {
	fc.mu.Lock()
	defer fc.mu.Unlock()

	args := &mopts.CountOptions{}
	for _, set := range opts.List() {
		_ = set(args)
	}
	fc.counts = append(fc.counts, args)
	return fc.count, fc.countErr
}

func (fc *fakeCollection) InsertMany(_ context.Context, documents []interface{}, opts *mopts.InsertManyOptionsBuilder) (*mongo.InsertManyResult, error) {
	fc.mu.Lock()
	defer fc.mu.Unlock()

	args := &mopts.InsertManyOptions{}
	for _, set := range opts.List() {
		_ = set(args)
	}
	call := len(fc.inserts)
	fc.inserts = append(fc.inserts, documents)
	fc.insertOpts = append(fc.insertOpts, args)

	if call < len(fc.insertErrs) && fc.insertErrs[call] != nil {
		return &mongo.InsertManyResult{}, fc.insertErrs[call]
	}
	return &mongo.InsertManyResult{InsertedIDs: make([]interface{}, len(documents))}, nil
}

func newTestClient(t testing.TB, fc *fakeCollection, opts ...*options.ClientOptions) *Client {
	t.Helper()

	c, err := newClient(options.MergeClientOptions(opts...), func(_, _ string, wc *writeconcern.WriteConcern) collection {
		fc.wcs = append(fc.wcs, wc)
		return fc
	})
	require.NoError(t, err)
	return c
}

// recordingSink records the messages passed to it.
type recordingSink struct {
	mu       sync.Mutex
	messages []string
	errors   []error
}

func (s *recordingSink) Info(_ int, msg string, _ ...interface{}) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages = append(s.messages, msg)
}

func (s *recordingSink) Error(err error, msg string, _ ...interface{}) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages = append(s.messages, msg)
	s.errors = append(s.errors, err)
}

func writeErrors(indexes ...int) mongo.BulkWriteException {
	bwe := mongo.BulkWriteException{}
	for _, idx := range indexes {
		bwe.WriteErrors = append(bwe.WriteErrors, mongo.BulkWriteError{
			WriteError: mongo.WriteError{Index: idx, Code: 11000, Message: "E11000 duplicate key error"},
		})
	}
	return bwe
}
