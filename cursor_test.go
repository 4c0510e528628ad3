// Copyright (C) MongoDB, Inc. 2025-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package monary

import (
	"context"
	"errors"
	"testing"

	"github.com/ikmak/monary/column"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/x/bsonx/bsoncore"
)

func peopleDocs(t testing.TB) []bsoncore.Document {
	return []bsoncore.Document{
		mustDoc(t, bson.D{{Key: "name", Value: "alice"}, {Key: "age", Value: int32(31)}}),
		mustDoc(t, bson.D{{Key: "age", Value: int32(40)}}),
		mustDoc(t, bson.D{{Key: "name", Value: int32(7)}}),
	}
}

func peopleSpecs() []column.Spec {
	return []column.Spec{
		{Field: "name", Type: column.TypeString, Width: 8},
		{Field: "age", Type: column.TypeInt32},
	}
}

func TestNewCursor(t *testing.T) {
	t.Parallel()

	cs, err := column.Allocate(peopleSpecs(), 2)
	require.NoError(t, err)

	_, err = NewCursor(nil, cs)
	assert.ErrorIs(t, err, ErrNilStream)

	undefined, err := column.NewColumnSet(1, 2)
	require.NoError(t, err)
	_, err = NewCursor(&fakeStream{}, undefined)
	assert.ErrorIs(t, err, column.ErrUndefinedColumn)
}

func TestCursorLoadAll(t *testing.T) {
	t.Parallel()

	t.Run("drains the stream", func(t *testing.T) {
		t.Parallel()

		cs, err := column.Allocate(peopleSpecs(), 4)
		require.NoError(t, err)
		stream := &fakeStream{docs: peopleDocs(t)}
		cur, err := NewCursor(stream, cs)
		require.NoError(t, err)

		n, err := cur.LoadAll(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 3, n)
		assert.Equal(t, 3, cur.Masked())
		assert.True(t, cur.Drained())

		assert.Equal(t, []bool{false, true, true, true}, cs.Column(0).Mask())
		assert.Equal(t, []bool{false, false, true, true}, cs.Column(1).Mask())
		assert.Equal(t, []int32{31, 40, 0, 0}, cs.Column(1).Storage())
	})

	t.Run("stops at capacity", func(t *testing.T) {
		t.Parallel()

		cs, err := column.Allocate(peopleSpecs(), 2)
		require.NoError(t, err)
		stream := &fakeStream{docs: peopleDocs(t)}
		cur, err := NewCursor(stream, cs)
		require.NoError(t, err)

		n, err := cur.LoadAll(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 2, n)
		assert.Equal(t, 2, stream.nexts, "no document beyond capacity is read")
		assert.False(t, cur.Drained())
	})

	t.Run("stream error keeps loaded rows", func(t *testing.T) {
		t.Parallel()

		streamErr := errors.New("connection reset")
		cs, err := column.Allocate(peopleSpecs(), 5)
		require.NoError(t, err)
		cur, err := NewCursor(&fakeStream{docs: peopleDocs(t)[:2], err: streamErr}, cs)
		require.NoError(t, err)

		n, err := cur.LoadAll(context.Background())
		assert.Equal(t, 2, n)
		assert.ErrorIs(t, err, streamErr)

		var se *StreamError
		require.ErrorAs(t, err, &se)
		assert.Equal(t, 2, se.Rows)
		assert.Equal(t, 1, se.Masked)
		assert.Equal(t, "alice", mustValue(t, cs.Column(0), 0))
	})

	t.Run("zero capacity reads nothing", func(t *testing.T) {
		t.Parallel()

		cs, err := column.Allocate(peopleSpecs(), 0)
		require.NoError(t, err)
		stream := &fakeStream{docs: peopleDocs(t)}
		cur, err := NewCursor(stream, cs)
		require.NoError(t, err)

		n, err := cur.LoadAll(context.Background())
		require.NoError(t, err)
		assert.Zero(t, n)
		assert.Zero(t, stream.nexts)
	})
}

func TestCursorStream(t *testing.T) {
	t.Parallel()

	docs := []interface{}{
		bson.D{{Key: "x", Value: 1.5}, {Key: "tag", Value: "a"}},
		bson.D{{Key: "x", Value: int32(2)}},
		bson.D{{Key: "tag", Value: "c"}},
	}
	mc, err := mongo.NewCursorFromDocuments(docs, nil, nil)
	require.NoError(t, err)

	cs, err := column.Allocate([]column.Spec{
		{Field: "x", Type: column.TypeFloat64},
		{Field: "tag", Type: column.TypeString, Width: 4},
	}, 3)
	require.NoError(t, err)

	cur, err := NewCursor(NewCursorStream(mc), cs)
	require.NoError(t, err)
	defer func() { _ = cur.Close(context.Background()) }()

	n, err := cur.LoadAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.Equal(t, 2, cur.Masked())
	assert.Equal(t, []float64{1.5, 2, 0}, cs.Column(0).Storage())
	assert.Equal(t, []bool{false, false, true}, cs.Column(0).Mask())
	assert.Equal(t, []bool{false, true, false}, cs.Column(1).Mask())
	assert.Equal(t, "c", mustValue(t, cs.Column(1), 2))
}

func mustValue(t testing.TB, c *column.Column, row int) interface{} {
	t.Helper()

	v, ok := c.Value(row)
	require.True(t, ok, "row %d of %q is masked", row, c.Field())
	return v
}
