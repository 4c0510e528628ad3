// Copyright (C) MongoDB, Inc. 2025-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package column

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/x/bsonx/bsoncore"
)

func TestExtractRow(t *testing.T) {
	t.Parallel()

	cs, err := Allocate([]Spec{
		{Field: "name", Type: TypeString, Width: 10},
		{Field: "age", Type: TypeInt32},
	}, 3)
	require.NoError(t, err)

	docs := []bsoncore.Document{
		mustMarshal(t, bson.D{{Key: "name", Value: "Al"}, {Key: "age", Value: int32(30)}}),
		mustMarshal(t, bson.D{{Key: "age", Value: "bad"}}),
		mustMarshal(t, bson.D{{Key: "name", Value: "Cy"}}),
	}

	masked := 0
	for i, doc := range docs {
		masked += cs.ExtractRow(i, doc)
	}

	name, age := cs.Column(0), cs.Column(1)
	assert.Equal(t, []bool{false, true, false}, name.Mask())
	assert.Equal(t, []bool{false, true, true}, age.Mask())
	assert.Equal(t, 3, masked)
	assert.Equal(t, 2, age.NumRows()-age.Present(3), "age column masks")

	wantNames := []byte("Al\x00\x00\x00\x00\x00\x00\x00\x00" + "\x00\x00\x00\x00\x00\x00\x00\x00\x00\x00" + "Cy\x00\x00\x00\x00\x00\x00\x00\x00")
	assert.Equal(t, wantNames, name.Storage())
	assert.Equal(t, int32(30), age.Storage().([]int32)[0])
}

func TestExtractRowNestedPaths(t *testing.T) {
	t.Parallel()

	doc := mustMarshal(t, bson.D{
		{Key: "a", Value: bson.D{
			{Key: "b", Value: bson.D{{Key: "c", Value: 2.5}}},
			{Key: "list", Value: bson.A{int32(10), int32(20), bson.D{{Key: "k", Value: "deep"}}}},
		}},
		{Key: "scalar", Value: int32(1)},
	})

	cs, err := Allocate([]Spec{
		{Field: "a.b.c", Type: TypeFloat64},
		{Field: "a.list.1", Type: TypeInt64},
		{Field: "a.list.2.k", Type: TypeString, Width: 4},
		{Field: "a.list.9", Type: TypeInt64},
		{Field: "scalar.x", Type: TypeInt32},
		{Field: "a.b", Type: TypeLength},
		{Field: "a.list", Type: TypeType},
	}, 1)
	require.NoError(t, err)

	masked := cs.ExtractRow(0, doc)
	assert.Equal(t, 2, masked)

	got := make([]any, 0, cs.NumColumns())
	mask := make([]bool, 0, cs.NumColumns())
	for _, c := range cs.Columns() {
		v, ok := c.Value(0)
		got = append(got, v)
		mask = append(mask, !ok)
	}

	want := []any{2.5, int64(20), "deep", int64(0), int32(0), uint32(1), bsoncore.TypeArray}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("extracted values mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, []bool{false, false, false, true, true, false, false}, mask)
}

func TestExtractRowRemasksReusedRow(t *testing.T) {
	t.Parallel()

	cs, err := Allocate([]Spec{{Field: "n", Type: TypeInt32}}, 1)
	require.NoError(t, err)

	assert.Equal(t, 0, cs.ExtractRow(0, mustMarshal(t, bson.D{{Key: "n", Value: int32(7)}})))
	assert.Equal(t, 1, cs.ExtractRow(0, mustMarshal(t, bson.D{{Key: "m", Value: int32(8)}})))

	c := cs.Column(0)
	assert.True(t, c.Masked(0))
	assert.Equal(t, []int32{7}, c.Storage(), "masked rows keep stale data")
}

func TestExtractRowMalformedDocument(t *testing.T) {
	t.Parallel()

	cs, err := Allocate([]Spec{
		{Field: "a", Type: TypeInt32},
		{Field: "b", Type: TypeType},
	}, 1)
	require.NoError(t, err)

	assert.Equal(t, 2, cs.ExtractRow(0, bsoncore.Document{0x05, 0x00}))
	assert.Equal(t, 2, cs.ExtractRow(0, nil))
}

func TestExtractRowSkipsUndefinedColumns(t *testing.T) {
	t.Parallel()

	cs, err := NewColumnSet(2, 1)
	require.NoError(t, err)
	require.NoError(t, cs.DefineColumn(1, "x", TypeBool, 0, make([]bool, 1), NewMask(1)))

	assert.Equal(t, 0, cs.ExtractRow(0, mustMarshal(t, bson.D{{Key: "x", Value: true}})))
	assert.Equal(t, []bool{true}, cs.Column(1).Storage())
}

func TestExtractRowOutOfRange(t *testing.T) {
	t.Parallel()

	cs, err := Allocate([]Spec{{Field: "a", Type: TypeInt32}}, 2)
	require.NoError(t, err)

	doc := mustMarshal(t, bson.D{{Key: "a", Value: int32(1)}})
	assert.Panics(t, func() { cs.ExtractRow(2, doc) })
	assert.Panics(t, func() { cs.ExtractRow(-1, doc) })
}

func TestProjection(t *testing.T) {
	t.Parallel()

	cs, err := Allocate([]Spec{
		{Field: "b.c", Type: TypeInt32},
		{Field: "a", Type: TypeInt32},
		{Field: "b", Type: TypeType},
		{Field: "a", Type: TypeSize},
		{Field: "ab", Type: TypeInt32},
	}, 1)
	require.NoError(t, err)

	want := mustMarshal(t, bson.D{
		{Key: "a", Value: int32(1)},
		{Key: "b", Value: int32(1)},
		{Key: "ab", Value: int32(1)},
	})
	assert.Equal(t, want, cs.Projection())
}
