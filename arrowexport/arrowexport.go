// Copyright (C) MongoDB, Inc. 2025-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

// Package arrowexport converts loaded columns to Apache Arrow records and
// writes them as Arrow IPC files. Masked rows become nulls.
package arrowexport

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/ipc"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/ikmak/monary/column"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/x/bsonx/bsoncore"
)

// ErrRowsOutOfRange is returned when more rows are requested than the columns
// hold.
var ErrRowsOutOfRange = errors.New("row count out of range")

// DataType returns the Arrow type of a column of type t.
//
// ObjectIDs are 12 byte fixed size binaries, dates are UTC millisecond
// timestamps, and BSON timestamps are uint64 values holding T<<32 | I.
func DataType(t column.Type) (arrow.DataType, error) {
	switch t {
	case column.TypeObjectID:
		return &arrow.FixedSizeBinaryType{ByteWidth: 12}, nil
	case column.TypeBool:
		return arrow.FixedWidthTypes.Boolean, nil
	case column.TypeInt8:
		return arrow.PrimitiveTypes.Int8, nil
	case column.TypeInt16:
		return arrow.PrimitiveTypes.Int16, nil
	case column.TypeInt32:
		return arrow.PrimitiveTypes.Int32, nil
	case column.TypeInt64:
		return arrow.PrimitiveTypes.Int64, nil
	case column.TypeUint8, column.TypeType:
		return arrow.PrimitiveTypes.Uint8, nil
	case column.TypeUint16:
		return arrow.PrimitiveTypes.Uint16, nil
	case column.TypeUint32, column.TypeSize, column.TypeLength:
		return arrow.PrimitiveTypes.Uint32, nil
	case column.TypeUint64, column.TypeTimestamp:
		return arrow.PrimitiveTypes.Uint64, nil
	case column.TypeFloat32:
		return arrow.PrimitiveTypes.Float32, nil
	case column.TypeFloat64:
		return arrow.PrimitiveTypes.Float64, nil
	case column.TypeDate:
		return &arrow.TimestampType{Unit: arrow.Millisecond, TimeZone: "UTC"}, nil
	case column.TypeString:
		return arrow.BinaryTypes.String, nil
	case column.TypeBinary, column.TypeBSON:
		return arrow.BinaryTypes.Binary, nil
	default:
		return nil, fmt.Errorf("%w: %d", column.ErrUnknownType, uint8(t))
	}
}

// Schema returns the Arrow schema of cs: one nullable field per column, named
// by the column's field.
func Schema(cs *column.ColumnSet) (*arrow.Schema, error) {
	if err := cs.Validate(); err != nil {
		return nil, err
	}

	fields := make([]arrow.Field, 0, cs.NumColumns())
	for _, c := range cs.Columns() {
		dt, err := DataType(c.Type())
		if err != nil {
			return nil, err
		}
		fields = append(fields, arrow.Field{Name: c.Field(), Type: dt, Nullable: true})
	}
	return arrow.NewSchema(fields, nil), nil
}

// Record returns the first rows rows of cs as an Arrow record allocated from
// mem. The caller must Release the record.
func Record(mem memory.Allocator, cs *column.ColumnSet, rows int) (arrow.Record, error) {
	schema, err := Schema(cs)
	if err != nil {
		return nil, err
	}
	return record(mem, schema, cs, rows)
}

func record(mem memory.Allocator, schema *arrow.Schema, cs *column.ColumnSet, rows int) (arrow.Record, error) {
	if rows < 0 || rows > cs.NumRows() {
		return nil, fmt.Errorf("%w: %d, columns hold %d", ErrRowsOutOfRange, rows, cs.NumRows())
	}

	arrs := make([]arrow.Array, 0, cs.NumColumns())
	defer func() {
		for _, arr := range arrs {
			arr.Release()
		}
	}()

	for i, c := range cs.Columns() {
		arr, err := buildArray(mem, schema.Field(i).Type, c, rows)
		if err != nil {
			return nil, fmt.Errorf("column %d (%q): %w", i, c.Field(), err)
		}
		arrs = append(arrs, arr)
	}

	return array.NewRecord(schema, arrs, int64(rows)), nil
}

// validity returns the Arrow validity of the first rows rows of c.
func validity(c *column.Column, rows int) []bool {
	valid := make([]bool, rows)
	for i, masked := range c.Mask()[:rows] {
		valid[i] = !masked
	}
	return valid
}

func buildArray(mem memory.Allocator, dt arrow.DataType, c *column.Column, rows int) (arrow.Array, error) {
	bldr := array.NewBuilder(mem, dt)
	defer bldr.Release()

	valid := validity(c, rows)
	switch b := bldr.(type) {
	case *array.BooleanBuilder:
		b.AppendValues(c.Storage().([]bool)[:rows], valid)
	case *array.Int8Builder:
		b.AppendValues(c.Storage().([]int8)[:rows], valid)
	case *array.Int16Builder:
		b.AppendValues(c.Storage().([]int16)[:rows], valid)
	case *array.Int32Builder:
		b.AppendValues(c.Storage().([]int32)[:rows], valid)
	case *array.Int64Builder:
		b.AppendValues(c.Storage().([]int64)[:rows], valid)
	case *array.Uint8Builder:
		b.AppendValues(c.Storage().([]uint8)[:rows], valid)
	case *array.Uint16Builder:
		b.AppendValues(c.Storage().([]uint16)[:rows], valid)
	case *array.Uint32Builder:
		b.AppendValues(c.Storage().([]uint32)[:rows], valid)
	case *array.Uint64Builder:
		if c.Type() == column.TypeTimestamp {
			ts := c.Storage().([]bson.Timestamp)[:rows]
			vals := make([]uint64, rows)
			for i, t := range ts {
				vals[i] = uint64(t.T)<<32 | uint64(t.I)
			}
			b.AppendValues(vals, valid)
		} else {
			b.AppendValues(c.Storage().([]uint64)[:rows], valid)
		}
	case *array.Float32Builder:
		b.AppendValues(c.Storage().([]float32)[:rows], valid)
	case *array.Float64Builder:
		b.AppendValues(c.Storage().([]float64)[:rows], valid)
	case *array.TimestampBuilder:
		ms := c.Storage().([]int64)[:rows]
		vals := make([]arrow.Timestamp, rows)
		for i, v := range ms {
			vals[i] = arrow.Timestamp(v)
		}
		b.AppendValues(vals, valid)
	case *array.FixedSizeBinaryBuilder:
		oids := c.Storage().([]bson.ObjectID)
		for i := 0; i < rows; i++ {
			if !valid[i] {
				b.AppendNull()
				continue
			}
			b.Append(oids[i][:])
		}
	case *array.StringBuilder:
		for i := 0; i < rows; i++ {
			if !valid[i] {
				b.AppendNull()
				continue
			}
			slot := c.Slot(i)
			if n := bytes.IndexByte(slot, 0); n >= 0 {
				slot = slot[:n]
			}
			b.Append(string(slot))
		}
	case *array.BinaryBuilder:
		for i := 0; i < rows; i++ {
			if !valid[i] {
				b.AppendNull()
				continue
			}
			b.Append(binaryValue(c, i))
		}
	default:
		return nil, fmt.Errorf("no Arrow builder for %s", dt)
	}

	return bldr.NewArray(), nil
}

// binaryValue returns the bytes exported for row of a binary or BSON column.
// BSON slots are trimmed to the length of the embedded document.
func binaryValue(c *column.Column, row int) []byte {
	slot := c.Slot(row)
	if c.Type() != column.TypeBSON {
		return slot
	}
	length, _, ok := bsoncore.ReadLength(slot)
	if !ok || length < 5 || int(length) > len(slot) {
		return slot
	}
	return slot[:length]
}

// Writer writes the rows of a ColumnSet, possibly over several calls, to an
// Arrow IPC file. Each call to Write becomes one record batch.
type Writer struct {
	mem    memory.Allocator
	schema *arrow.Schema
	fw     *ipc.FileWriter
}

// NewWriter returns a Writer for ColumnSets shaped like cs.
func NewWriter(w io.Writer, cs *column.ColumnSet, mem memory.Allocator) (*Writer, error) {
	if mem == nil {
		mem = memory.DefaultAllocator
	}
	schema, err := Schema(cs)
	if err != nil {
		return nil, err
	}

	fw, err := ipc.NewFileWriter(w, ipc.WithSchema(schema), ipc.WithAllocator(mem))
	if err != nil {
		return nil, err
	}
	return &Writer{mem: mem, schema: schema, fw: fw}, nil
}

// Write appends the first rows rows of cs as a record batch. cs must have the
// columns the Writer was created for.
func (w *Writer) Write(cs *column.ColumnSet, rows int) error {
	if cs.NumColumns() != w.schema.NumFields() {
		return fmt.Errorf("column set has %d columns, schema has %d", cs.NumColumns(), w.schema.NumFields())
	}

	rec, err := record(w.mem, w.schema, cs, rows)
	if err != nil {
		return err
	}
	defer rec.Release()

	return w.fw.Write(rec)
}

// Close writes the file footer.
func (w *Writer) Close() error {
	return w.fw.Close()
}

// WriteFile writes the first rows rows of cs to w as an Arrow IPC file.
func WriteFile(w io.Writer, cs *column.ColumnSet, rows int) error {
	aw, err := NewWriter(w, cs, nil)
	if err != nil {
		return err
	}
	if err := aw.Write(cs, rows); err != nil {
		_ = aw.Close()
		return err
	}
	return aw.Close()
}
