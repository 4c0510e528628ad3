// Copyright (C) MongoDB, Inc. 2025-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package parquetexport

import (
	"bytes"
	"errors"
	"io"
	"testing"

	"github.com/ikmak/monary/column"
	"github.com/parquet-go/parquet-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"
)

func loadedColumns(t *testing.T) *column.ColumnSet {
	t.Helper()

	specs, err := column.ParseSpecs(
		[]string{"name", "stats.score", "active"},
		[]string{"string:8", "float64", "bool"},
	)
	require.NoError(t, err)
	cs, err := column.Allocate(specs, 3)
	require.NoError(t, err)

	docs := []bson.D{
		{{Key: "name", Value: "alice"}, {Key: "stats", Value: bson.D{{Key: "score", Value: 9.5}}}, {Key: "active", Value: true}},
		{{Key: "name", Value: "bob"}},
		{{Key: "stats", Value: bson.D{{Key: "score", Value: int32(4)}}}, {Key: "active", Value: false}},
	}
	for i, d := range docs {
		b, err := bson.Marshal(d)
		require.NoError(t, err)
		cs.ExtractRow(i, b)
	}
	return cs
}

func readRows(t *testing.T, b []byte) (*parquet.File, []parquet.Row) {
	t.Helper()

	f, err := parquet.OpenFile(bytes.NewReader(b), int64(len(b)))
	require.NoError(t, err)

	r := parquet.NewReader(f)
	defer func() { _ = r.Close() }()

	rows := make([]parquet.Row, f.NumRows())
	n, err := r.ReadRows(rows)
	if err != nil && !errors.Is(err, io.EOF) {
		require.NoError(t, err)
	}
	return f, rows[:n]
}

func TestSchema(t *testing.T) {
	t.Parallel()

	schema, err := Schema("people", loadedColumns(t))
	require.NoError(t, err)

	assert.Equal(t, "people", schema.Name())
	assert.Equal(t, [][]string{{"active"}, {"name"}, {"stats_score"}}, schema.Columns())
	for _, f := range schema.Fields() {
		assert.True(t, f.Optional(), f.Name())
	}
}

func TestSchemaRejectsDuplicateLeaves(t *testing.T) {
	t.Parallel()

	cs, err := column.Allocate([]column.Spec{
		{Field: "a.b", Type: column.TypeInt32},
		{Field: "a_b", Type: column.TypeInt32},
	}, 1)
	require.NoError(t, err)

	_, err = Schema("dup", cs)
	assert.ErrorIs(t, err, ErrDuplicateLeaf)
}

func TestNodeCoversEveryType(t *testing.T) {
	t.Parallel()

	for typ := column.TypeObjectID; typ <= column.TypeLength; typ++ {
		node, err := Node(typ)
		require.NoError(t, err, typ.String())
		assert.True(t, node.Leaf(), typ.String())
	}

	_, err := Node(column.TypeUndefined)
	assert.ErrorIs(t, err, column.ErrUnknownType)
}

func TestWrite(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, loadedColumns(t), 3))

	f, rows := readRows(t, buf.Bytes())
	assert.Equal(t, int64(3), f.NumRows())
	require.Len(t, rows, 3)

	// Leaves are ordered active, name, stats_score.
	assert.True(t, rows[0][0].Boolean())
	assert.Equal(t, "alice", string(rows[0][1].ByteArray()))
	assert.Equal(t, 9.5, rows[0][2].Double())

	assert.True(t, rows[1][0].IsNull())
	assert.Equal(t, "bob", string(rows[1][1].ByteArray()))
	assert.True(t, rows[1][2].IsNull())

	assert.False(t, rows[2][0].Boolean())
	assert.True(t, rows[2][1].IsNull())
	assert.Equal(t, 4.0, rows[2][2].Double())
}

func TestWriterBlocks(t *testing.T) {
	t.Parallel()

	cs := loadedColumns(t)
	schema, err := Schema("people", cs)
	require.NoError(t, err)

	var buf bytes.Buffer
	w := NewWriter(&buf, schema)
	require.NoError(t, w.Write(cs, 2))
	require.NoError(t, w.Write(cs, 1))
	assert.ErrorIs(t, w.Write(cs, 4), ErrRowsOutOfRange)

	other, err := column.Allocate([]column.Spec{{Field: "missing", Type: column.TypeBool}}, 1)
	require.NoError(t, err)
	assert.Error(t, w.Write(other, 1))
	require.NoError(t, w.Close())

	f, rows := readRows(t, buf.Bytes())
	assert.Equal(t, int64(3), f.NumRows())
	assert.Equal(t, "alice", string(rows[2][1].ByteArray()))
}

func TestLeafName(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "a_b_c", LeafName("a.b.c"))
	assert.Equal(t, "plain", LeafName("plain"))
}
