// Copyright (C) MongoDB, Inc. 2025-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

// Package parquetexport writes loaded columns to Parquet files. Every column
// becomes an optional leaf and masked rows are written as nulls.
package parquetexport

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/ikmak/monary/column"
	"github.com/parquet-go/parquet-go"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/x/bsonx/bsoncore"
)

// ErrDuplicateLeaf is returned when two columns map to the same leaf name.
var ErrDuplicateLeaf = errors.New("duplicate parquet column name")

// ErrRowsOutOfRange is returned when more rows are requested than the columns
// hold.
var ErrRowsOutOfRange = errors.New("row count out of range")

// LeafName returns the Parquet column name used for a field. Dots are replaced
// by underscores so that nested fields stay flat leaves.
func LeafName(field string) string {
	return strings.ReplaceAll(field, ".", "_")
}

// Node returns the Parquet node, before optionality, of a column of type t.
func Node(t column.Type) (parquet.Node, error) {
	switch t {
	case column.TypeObjectID:
		return parquet.Leaf(parquet.FixedLenByteArrayType(12)), nil
	case column.TypeBool:
		return parquet.Leaf(parquet.BooleanType), nil
	case column.TypeInt8:
		return parquet.Int(8), nil
	case column.TypeInt16:
		return parquet.Int(16), nil
	case column.TypeInt32:
		return parquet.Int(32), nil
	case column.TypeInt64:
		return parquet.Int(64), nil
	case column.TypeUint8, column.TypeType:
		return parquet.Uint(8), nil
	case column.TypeUint16:
		return parquet.Uint(16), nil
	case column.TypeUint32, column.TypeSize, column.TypeLength:
		return parquet.Uint(32), nil
	case column.TypeUint64, column.TypeTimestamp:
		return parquet.Uint(64), nil
	case column.TypeFloat32:
		return parquet.Leaf(parquet.FloatType), nil
	case column.TypeFloat64:
		return parquet.Leaf(parquet.DoubleType), nil
	case column.TypeDate:
		return parquet.Timestamp(parquet.Millisecond), nil
	case column.TypeString:
		return parquet.String(), nil
	case column.TypeBinary, column.TypeBSON:
		return parquet.Leaf(parquet.ByteArrayType), nil
	default:
		return nil, fmt.Errorf("%w: %d", column.ErrUnknownType, uint8(t))
	}
}

// Schema returns the Parquet schema of cs, named name.
func Schema(name string, cs *column.ColumnSet) (*parquet.Schema, error) {
	if err := cs.Validate(); err != nil {
		return nil, err
	}

	group := make(parquet.Group, cs.NumColumns())
	for i, c := range cs.Columns() {
		leaf := LeafName(c.Field())
		if _, ok := group[leaf]; ok {
			return nil, fmt.Errorf("%w: column %d (%q) maps to %q", ErrDuplicateLeaf, i, c.Field(), leaf)
		}
		node, err := Node(c.Type())
		if err != nil {
			return nil, err
		}
		group[leaf] = parquet.Optional(node)
	}
	return parquet.NewSchema(name, group), nil
}

// Write writes the first rows rows of cs to w as a Parquet file.
func Write(w io.Writer, cs *column.ColumnSet, rows int) error {
	schema, err := Schema("monary", cs)
	if err != nil {
		return err
	}

	pw := NewWriter(w, schema)
	if err := pw.Write(cs, rows); err != nil {
		_ = pw.Close()
		return err
	}
	return pw.Close()
}

// Writer writes the rows of one or more ColumnSets shaped like its schema.
type Writer struct {
	schema *parquet.Schema
	pw     *parquet.Writer
	leaves map[string]int
}

// NewWriter returns a Writer for schema, as built by Schema.
func NewWriter(w io.Writer, schema *parquet.Schema) *Writer {
	leaves := make(map[string]int)
	for i, path := range schema.Columns() {
		leaves[path[0]] = i
	}
	return &Writer{
		schema: schema,
		pw:     parquet.NewWriter(w, schema),
		leaves: leaves,
	}
}

// Write appends the first rows rows of cs.
func (w *Writer) Write(cs *column.ColumnSet, rows int) error {
	if rows < 0 || rows > cs.NumRows() {
		return fmt.Errorf("%w: %d, columns hold %d", ErrRowsOutOfRange, rows, cs.NumRows())
	}

	cols := cs.Columns()
	index := make([]int, len(cols))
	for i, c := range cols {
		idx, ok := w.leaves[LeafName(c.Field())]
		if !ok {
			return fmt.Errorf("column %q is not in the schema", c.Field())
		}
		index[i] = idx
	}

	batch := make([]parquet.Row, 0, rows)
	for row := 0; row < rows; row++ {
		r := make(parquet.Row, len(cols))
		for i, c := range cols {
			r[index[i]] = value(c, row).Level(0, 1, index[i])
			if c.Masked(row) {
				r[index[i]] = parquet.NullValue().Level(0, 0, index[i])
			}
		}
		batch = append(batch, r)
	}

	_, err := w.pw.WriteRows(batch)
	return err
}

// Close flushes buffered rows and writes the file footer.
func (w *Writer) Close() error {
	return w.pw.Close()
}

func value(c *column.Column, row int) parquet.Value {
	switch c.Type() {
	case column.TypeObjectID:
		oid := c.Storage().([]bson.ObjectID)[row]
		return parquet.FixedLenByteArrayValue(oid[:])
	case column.TypeBool:
		return parquet.BooleanValue(c.Storage().([]bool)[row])
	case column.TypeInt8:
		return parquet.Int32Value(int32(c.Storage().([]int8)[row]))
	case column.TypeInt16:
		return parquet.Int32Value(int32(c.Storage().([]int16)[row]))
	case column.TypeInt32:
		return parquet.Int32Value(c.Storage().([]int32)[row])
	case column.TypeInt64, column.TypeDate:
		return parquet.Int64Value(c.Storage().([]int64)[row])
	case column.TypeUint8, column.TypeType:
		return parquet.Int32Value(int32(c.Storage().([]uint8)[row]))
	case column.TypeUint16:
		return parquet.Int32Value(int32(c.Storage().([]uint16)[row]))
	case column.TypeUint32, column.TypeSize, column.TypeLength:
		return parquet.Int32Value(int32(c.Storage().([]uint32)[row]))
	case column.TypeUint64:
		return parquet.Int64Value(int64(c.Storage().([]uint64)[row]))
	case column.TypeTimestamp:
		ts := c.Storage().([]bson.Timestamp)[row]
		return parquet.Int64Value(int64(uint64(ts.T)<<32 | uint64(ts.I)))
	case column.TypeFloat32:
		return parquet.FloatValue(c.Storage().([]float32)[row])
	case column.TypeFloat64:
		return parquet.DoubleValue(c.Storage().([]float64)[row])
	case column.TypeString:
		slot := c.Slot(row)
		if n := bytes.IndexByte(slot, 0); n >= 0 {
			slot = slot[:n]
		}
		return parquet.ByteArrayValue(slot)
	case column.TypeBSON:
		slot := c.Slot(row)
		if length, _, ok := bsoncore.ReadLength(slot); ok && length >= 5 && int(length) <= len(slot) {
			slot = slot[:length]
		}
		return parquet.ByteArrayValue(slot)
	default:
		return parquet.ByteArrayValue(c.Slot(row))
	}
}
