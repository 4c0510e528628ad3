// Copyright (C) MongoDB, Inc. 2025-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package column

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/x/bsonx/bsoncore"
)

const (
	// MaxColumns is the maximum number of columns in a ColumnSet.
	MaxColumns = 1024

	// MaxFieldLength is the maximum length in bytes of a column's field path.
	MaxFieldLength = 1024
)

// Errors returned when a column definition is rejected.
var (
	ErrUnknownType      = errors.New("unknown column type")
	ErrIndexOutOfRange  = errors.New("column index out of range")
	ErrTooManyColumns   = errors.New("too many columns")
	ErrFieldTooLong     = errors.New("field path too long")
	ErrEmptyField       = errors.New("field path is empty")
	ErrNilStorage       = errors.New("column storage is nil")
	ErrNilMask          = errors.New("column mask is nil")
	ErrStorageType      = errors.New("column storage has the wrong element type")
	ErrStorageSize      = errors.New("column storage is not sized for the row count")
	ErrInvalidWidth     = errors.New("invalid element width")
	ErrUndefinedColumn  = errors.New("column is not defined")
	ErrInvalidRowCount  = errors.New("invalid row count")
	ErrRowCountMismatch = errors.New("columns have different row counts")
)

// DefineError is returned when a column definition is rejected.
type DefineError struct {
	Index int
	Field string
	Err   error
}

// Error implements the error interface.
func (e *DefineError) Error() string {
	return fmt.Sprintf("column %d (%q): %v", e.Index, e.Field, e.Err)
}

// Unwrap returns the underlying rejection reason.
func (e *DefineError) Unwrap() error { return e.Err }

// Column is one typed output array and its validity mask. The storage and the
// mask are owned by whoever allocated them; a Column only references them.
//
// Mask[i] is true when row i is absent, could not be decoded, or had a type
// that is incompatible with the column, and false when the row holds a value.
type Column struct {
	field string
	path  []string
	typ   Type
	width int
	rows  int
	mask  []bool

	// Exactly one of the following is set, matching typ.
	oids  []bson.ObjectID
	bools []bool
	i8    []int8
	i16   []int16
	i32   []int32
	i64   []int64 // TypeInt64 and TypeDate
	u8    []uint8 // TypeUint8 and TypeType
	u16   []uint16
	u32   []uint32 // TypeUint32, TypeSize and TypeLength
	u64   []uint64
	f32   []float32
	f64   []float64
	ts    []bson.Timestamp
	bytes []byte // fixed-width types
}

// NewColumn validates a column definition over caller-owned storage. storage
// must be a slice of the Go type that matches t (see Allocate) holding exactly
// numRows elements, or numRows*width bytes for fixed-width types, and mask
// must hold exactly numRows flags.
func NewColumn(field string, t Type, width int, storage any, mask []bool, numRows int) (*Column, error) {
	if !t.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownType, uint8(t))
	}
	if field == "" {
		return nil, ErrEmptyField
	}
	if len(field) > MaxFieldLength {
		return nil, fmt.Errorf("%w: %d bytes, limit is %d", ErrFieldTooLong, len(field), MaxFieldLength)
	}
	if numRows < 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidRowCount, numRows)
	}
	if mask == nil {
		return nil, ErrNilMask
	}
	if len(mask) != numRows {
		return nil, fmt.Errorf("%w: mask has %d entries, want %d", ErrStorageSize, len(mask), numRows)
	}

	c := &Column{
		field: strings.Clone(field),
		typ:   t,
		rows:  numRows,
		mask:  mask,
	}
	c.path = strings.Split(c.field, ".")
	for _, seg := range c.path {
		if seg == "" {
			return nil, fmt.Errorf("%w: %q has an empty path segment", ErrEmptyField, field)
		}
	}

	if t.FixedWidth() {
		if width <= 0 {
			return nil, fmt.Errorf("%w: %s column needs a positive width, got %d", ErrInvalidWidth, t, width)
		}
		c.width = width
	}

	n, err := c.bind(storage)
	if err != nil {
		return nil, err
	}
	want := numRows
	if t.FixedWidth() {
		want = numRows * width
	}
	if n != want {
		return nil, fmt.Errorf("%w: storage has %d elements, want %d", ErrStorageSize, n, want)
	}
	return c, nil
}

// bind stores storage in the typed field matching c.typ and returns its length.
func (c *Column) bind(storage any) (int, error) {
	if storage == nil {
		return 0, ErrNilStorage
	}

	var n int
	var isNil, ok bool
	switch c.typ {
	case TypeObjectID:
		c.oids, ok = storage.([]bson.ObjectID)
		n, isNil = len(c.oids), c.oids == nil
	case TypeBool:
		c.bools, ok = storage.([]bool)
		n, isNil = len(c.bools), c.bools == nil
	case TypeInt8:
		c.i8, ok = storage.([]int8)
		n, isNil = len(c.i8), c.i8 == nil
	case TypeInt16:
		c.i16, ok = storage.([]int16)
		n, isNil = len(c.i16), c.i16 == nil
	case TypeInt32:
		c.i32, ok = storage.([]int32)
		n, isNil = len(c.i32), c.i32 == nil
	case TypeInt64, TypeDate:
		c.i64, ok = storage.([]int64)
		n, isNil = len(c.i64), c.i64 == nil
	case TypeUint8, TypeType:
		c.u8, ok = storage.([]uint8)
		n, isNil = len(c.u8), c.u8 == nil
	case TypeUint16:
		c.u16, ok = storage.([]uint16)
		n, isNil = len(c.u16), c.u16 == nil
	case TypeUint32, TypeSize, TypeLength:
		c.u32, ok = storage.([]uint32)
		n, isNil = len(c.u32), c.u32 == nil
	case TypeUint64:
		c.u64, ok = storage.([]uint64)
		n, isNil = len(c.u64), c.u64 == nil
	case TypeFloat32:
		c.f32, ok = storage.([]float32)
		n, isNil = len(c.f32), c.f32 == nil
	case TypeFloat64:
		c.f64, ok = storage.([]float64)
		n, isNil = len(c.f64), c.f64 == nil
	case TypeTimestamp:
		c.ts, ok = storage.([]bson.Timestamp)
		n, isNil = len(c.ts), c.ts == nil
	case TypeString, TypeBinary, TypeBSON:
		c.bytes, ok = storage.([]byte)
		n, isNil = len(c.bytes), c.bytes == nil
	}

	if !ok {
		return 0, fmt.Errorf("%w: %s column cannot use %T", ErrStorageType, c.typ, storage)
	}
	if isNil {
		return 0, ErrNilStorage
	}
	return n, nil
}

// NewStorage allocates zeroed storage of the Go type used by columns of type
// t, sized for numRows rows.
func NewStorage(t Type, width, numRows int) (any, error) {
	switch t {
	case TypeObjectID:
		return make([]bson.ObjectID, numRows), nil
	case TypeBool:
		return make([]bool, numRows), nil
	case TypeInt8:
		return make([]int8, numRows), nil
	case TypeInt16:
		return make([]int16, numRows), nil
	case TypeInt32:
		return make([]int32, numRows), nil
	case TypeInt64, TypeDate:
		return make([]int64, numRows), nil
	case TypeUint8, TypeType:
		return make([]uint8, numRows), nil
	case TypeUint16:
		return make([]uint16, numRows), nil
	case TypeUint32, TypeSize, TypeLength:
		return make([]uint32, numRows), nil
	case TypeUint64:
		return make([]uint64, numRows), nil
	case TypeFloat32:
		return make([]float32, numRows), nil
	case TypeFloat64:
		return make([]float64, numRows), nil
	case TypeTimestamp:
		return make([]bson.Timestamp, numRows), nil
	case TypeString, TypeBinary, TypeBSON:
		if width <= 0 {
			return nil, fmt.Errorf("%w: %s column needs a positive width, got %d", ErrInvalidWidth, t, width)
		}
		return make([]byte, numRows*width), nil
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnknownType, uint8(t))
	}
}

// NewMask allocates a mask for numRows rows with every row masked.
func NewMask(numRows int) []bool {
	mask := make([]bool, numRows)
	for i := range mask {
		mask[i] = true
	}
	return mask
}

// AllocateColumn allocates storage and a fully masked mask for spec.
func AllocateColumn(spec Spec, numRows int) (*Column, error) {
	if numRows < 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidRowCount, numRows)
	}
	storage, err := NewStorage(spec.Type, spec.Width, numRows)
	if err != nil {
		return nil, err
	}
	return NewColumn(spec.Field, spec.Type, spec.Width, storage, NewMask(numRows), numRows)
}

// Field returns the column's dotted field path.
func (c *Column) Field() string { return c.field }

// Path returns the field path split into its segments. The returned slice
// must not be modified.
func (c *Column) Path() []string { return c.path }

// Type returns the column's type.
func (c *Column) Type() Type { return c.typ }

// Width returns the number of bytes per row of a fixed-width column and zero
// for every other column.
func (c *Column) Width() int { return c.width }

// NumRows returns the number of rows the column holds.
func (c *Column) NumRows() int { return c.rows }

// Mask returns the column's mask.
func (c *Column) Mask() []bool { return c.mask }

// Masked reports whether row is masked.
func (c *Column) Masked(row int) bool { return c.mask[row] }

// Storage returns the column's storage slice.
func (c *Column) Storage() any {
	switch c.typ {
	case TypeObjectID:
		return c.oids
	case TypeBool:
		return c.bools
	case TypeInt8:
		return c.i8
	case TypeInt16:
		return c.i16
	case TypeInt32:
		return c.i32
	case TypeInt64, TypeDate:
		return c.i64
	case TypeUint8, TypeType:
		return c.u8
	case TypeUint16:
		return c.u16
	case TypeUint32, TypeSize, TypeLength:
		return c.u32
	case TypeUint64:
		return c.u64
	case TypeFloat32:
		return c.f32
	case TypeFloat64:
		return c.f64
	case TypeTimestamp:
		return c.ts
	default:
		return c.bytes
	}
}

// Slot returns the bytes that back row of a fixed-width column. It panics for
// other column types.
func (c *Column) Slot(row int) []byte {
	if !c.typ.FixedWidth() {
		panic(fmt.Sprintf("column.Column.Slot called on %s column", c.typ))
	}
	return c.slot(row)
}

func (c *Column) slot(row int) []byte {
	start := row * c.width
	return c.bytes[start : start+c.width : start+c.width]
}

// Value returns the value stored at row and whether it is present. String
// values are returned up to the first NUL byte in the slot, BSON values are
// trimmed to their encoded length, and binary values are copies of the slot.
func (c *Column) Value(row int) (any, bool) {
	present := !c.mask[row]
	switch c.typ {
	case TypeObjectID:
		return c.oids[row], present
	case TypeBool:
		return c.bools[row], present
	case TypeInt8:
		return c.i8[row], present
	case TypeInt16:
		return c.i16[row], present
	case TypeInt32:
		return c.i32[row], present
	case TypeInt64:
		return c.i64[row], present
	case TypeDate:
		return bson.DateTime(c.i64[row]), present
	case TypeUint8:
		return c.u8[row], present
	case TypeType:
		return bsoncore.Type(c.u8[row]), present
	case TypeUint16:
		return c.u16[row], present
	case TypeUint32, TypeSize, TypeLength:
		return c.u32[row], present
	case TypeUint64:
		return c.u64[row], present
	case TypeFloat32:
		return c.f32[row], present
	case TypeFloat64:
		return c.f64[row], present
	case TypeTimestamp:
		return c.ts[row], present
	case TypeString:
		return string(trimNUL(c.slot(row))), present
	case TypeBinary:
		return bytes.Clone(c.slot(row)), present
	default:
		doc, _ := slotDocument(c.slot(row))
		return bson.Raw(bytes.Clone(doc)), present
	}
}

// Reset masks every row and zeroes the slots of a fixed-width column, so a
// column can be reused for another block of rows.
func (c *Column) Reset() {
	for i := range c.mask {
		c.mask[i] = true
	}
	clear(c.bytes)
}

// Present returns the number of unmasked rows among the first n rows.
func (c *Column) Present(n int) int {
	count := 0
	for _, masked := range c.mask[:n] {
		if !masked {
			count++
		}
	}
	return count
}

func trimNUL(b []byte) []byte {
	if i := bytes.IndexByte(b, 0x00); i >= 0 {
		return b[:i]
	}
	return b
}

// slotDocument returns the document at the start of a BSON slot, or false if
// the slot does not start with a complete, validly sized document.
func slotDocument(slot []byte) (bsoncore.Document, bool) {
	length, _, ok := bsoncore.ReadLength(slot)
	if !ok || length < 5 || int(length) > len(slot) {
		return nil, false
	}
	return bsoncore.Document(slot[:length]), true
}
