// Copyright (C) MongoDB, Inc. 2025-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package column

import (
	"unicode/utf8"

	"go.mongodb.org/mongo-driver/v2/x/bsonx/bsoncore"
)

// loader decodes v into row of c. It reports false, without writing anything,
// when v cannot be represented in the column.
type loader func(v bsoncore.Value, c *Column, row int) bool

var loaders = [...]loader{
	TypeUndefined: loadNothing,
	TypeObjectID:  loadObjectID,
	TypeBool:      loadBool,
	TypeInt8:      loadInt8,
	TypeInt16:     loadInt16,
	TypeInt32:     loadInt32,
	TypeInt64:     loadInt64,
	TypeUint8:     loadUint8,
	TypeUint16:    loadUint16,
	TypeUint32:    loadUint32,
	TypeUint64:    loadUint64,
	TypeFloat32:   loadFloat32,
	TypeFloat64:   loadFloat64,
	TypeDate:      loadDate,
	TypeTimestamp: loadTimestamp,
	TypeString:    loadString,
	TypeBinary:    loadBinary,
	TypeBSON:      loadBSON,
	TypeType:      loadType,
	TypeSize:      loadSize,
	TypeLength:    loadLength,
}

// Load decodes v into row of c and reports whether it succeeded. It does not
// touch the mask. A false result means v's type is incompatible with the
// column, and nothing was written.
func Load(v bsoncore.Value, c *Column, row int) bool {
	return loaders[c.typ](v, c, row)
}

func loadNothing(bsoncore.Value, *Column, int) bool { return false }

// asInt64 converts int32, int64 and double values to int64. Doubles are
// truncated toward zero.
func asInt64(v bsoncore.Value) (int64, bool) {
	switch v.Type {
	case bsoncore.TypeInt32:
		i32, ok := v.Int32OK()
		return int64(i32), ok
	case bsoncore.TypeInt64:
		return v.Int64OK()
	case bsoncore.TypeDouble:
		f, ok := v.DoubleOK()
		return int64(f), ok
	default:
		return 0, false
	}
}

// asFloat64 converts int32, int64 and double values to float64.
func asFloat64(v bsoncore.Value) (float64, bool) {
	switch v.Type {
	case bsoncore.TypeInt32:
		i32, ok := v.Int32OK()
		return float64(i32), ok
	case bsoncore.TypeInt64:
		i64, ok := v.Int64OK()
		return float64(i64), ok
	case bsoncore.TypeDouble:
		return v.DoubleOK()
	default:
		return 0, false
	}
}

func loadObjectID(v bsoncore.Value, c *Column, row int) bool {
	oid, ok := v.ObjectIDOK()
	if !ok {
		return false
	}
	copy(c.oids[row][:], oid[:])
	return true
}

func loadBool(v bsoncore.Value, c *Column, row int) bool {
	b, ok := v.BooleanOK()
	if !ok {
		return false
	}
	c.bools[row] = b
	return true
}

// Integer loaders narrow with two's complement truncation.

func loadInt8(v bsoncore.Value, c *Column, row int) bool {
	i, ok := asInt64(v)
	if ok {
		c.i8[row] = int8(i)
	}
	return ok
}

func loadInt16(v bsoncore.Value, c *Column, row int) bool {
	i, ok := asInt64(v)
	if ok {
		c.i16[row] = int16(i)
	}
	return ok
}

func loadInt32(v bsoncore.Value, c *Column, row int) bool {
	i, ok := asInt64(v)
	if ok {
		c.i32[row] = int32(i)
	}
	return ok
}

func loadInt64(v bsoncore.Value, c *Column, row int) bool {
	i, ok := asInt64(v)
	if ok {
		c.i64[row] = i
	}
	return ok
}

func loadUint8(v bsoncore.Value, c *Column, row int) bool {
	i, ok := asInt64(v)
	if ok {
		c.u8[row] = uint8(i)
	}
	return ok
}

func loadUint16(v bsoncore.Value, c *Column, row int) bool {
	i, ok := asInt64(v)
	if ok {
		c.u16[row] = uint16(i)
	}
	return ok
}

func loadUint32(v bsoncore.Value, c *Column, row int) bool {
	i, ok := asInt64(v)
	if ok {
		c.u32[row] = uint32(i)
	}
	return ok
}

func loadUint64(v bsoncore.Value, c *Column, row int) bool {
	i, ok := asInt64(v)
	if ok {
		c.u64[row] = uint64(i)
	}
	return ok
}

func loadFloat32(v bsoncore.Value, c *Column, row int) bool {
	f, ok := asFloat64(v)
	if ok {
		c.f32[row] = float32(f)
	}
	return ok
}

func loadFloat64(v bsoncore.Value, c *Column, row int) bool {
	f, ok := asFloat64(v)
	if ok {
		c.f64[row] = f
	}
	return ok
}

func loadDate(v bsoncore.Value, c *Column, row int) bool {
	dt, ok := v.DateTimeOK()
	if ok {
		c.i64[row] = dt
	}
	return ok
}

func loadTimestamp(v bsoncore.Value, c *Column, row int) bool {
	t, i, ok := v.TimestampOK()
	if ok {
		c.ts[row].T = t
		c.ts[row].I = i
	}
	return ok
}

// stringValue returns the text of string, symbol and JavaScript code values.
func stringValue(v bsoncore.Value) (string, bool) {
	switch v.Type {
	case bsoncore.TypeString:
		return v.StringValueOK()
	case bsoncore.TypeSymbol:
		return v.SymbolOK()
	case bsoncore.TypeJavaScript:
		return v.JavaScriptOK()
	default:
		return "", false
	}
}

// rawDocument returns the encoded bytes of document and array values.
func rawDocument(v bsoncore.Value) ([]byte, bool) {
	switch v.Type {
	case bsoncore.TypeEmbeddedDocument:
		doc, ok := v.DocumentOK()
		return doc, ok
	case bsoncore.TypeArray:
		arr, ok := v.ArrayOK()
		return arr, ok
	default:
		return nil, false
	}
}

// Fixed-width loaders copy at most Width bytes. Slot bytes past the copied
// length keep their previous contents.

func loadString(v bsoncore.Value, c *Column, row int) bool {
	s, ok := stringValue(v)
	if ok {
		copy(c.slot(row), s)
	}
	return ok
}

func loadBinary(v bsoncore.Value, c *Column, row int) bool {
	_, data, ok := v.BinaryOK()
	if ok {
		copy(c.slot(row), data)
	}
	return ok
}

func loadBSON(v bsoncore.Value, c *Column, row int) bool {
	raw, ok := rawDocument(v)
	if ok {
		copy(c.slot(row), raw)
	}
	return ok
}

func loadType(v bsoncore.Value, c *Column, row int) bool {
	c.u8[row] = uint8(v.Type)
	return true
}

func loadSize(v bsoncore.Value, c *Column, row int) bool {
	var size int
	switch v.Type {
	case bsoncore.TypeString, bsoncore.TypeSymbol, bsoncore.TypeJavaScript:
		s, ok := stringValue(v)
		if !ok {
			return false
		}
		size = len(s)
	case bsoncore.TypeBinary:
		_, data, ok := v.BinaryOK()
		if !ok {
			return false
		}
		size = len(data)
	case bsoncore.TypeEmbeddedDocument, bsoncore.TypeArray:
		raw, ok := rawDocument(v)
		if !ok {
			return false
		}
		size = len(raw)
	default:
		return false
	}
	c.u32[row] = uint32(size)
	return true
}

// loadLength stores the number of characters in a string, the number of bytes
// in a binary value, or the number of elements in a document or array.
func loadLength(v bsoncore.Value, c *Column, row int) bool {
	var length int
	switch v.Type {
	case bsoncore.TypeString, bsoncore.TypeSymbol, bsoncore.TypeJavaScript:
		s, ok := stringValue(v)
		if !ok {
			return false
		}
		length = utf8.RuneCountInString(s)
	case bsoncore.TypeBinary:
		_, data, ok := v.BinaryOK()
		if !ok {
			return false
		}
		length = len(data)
	case bsoncore.TypeEmbeddedDocument, bsoncore.TypeArray:
		raw, ok := rawDocument(v)
		if !ok {
			return false
		}
		length, ok = countElements(raw)
		if !ok {
			return false
		}
	default:
		return false
	}
	c.u32[row] = uint32(length)
	return true
}

// countElements counts the elements of an encoded document or array.
func countElements(doc []byte) (int, bool) {
	length, _, ok := bsoncore.ReadLength(doc)
	if !ok || length < 5 || int(length) > len(doc) {
		return 0, false
	}

	rem := doc[4 : length-1]
	n := 0
	for len(rem) > 0 {
		_, rem, ok = bsoncore.ReadElement(rem)
		if !ok {
			return 0, false
		}
		n++
	}
	return n, true
}
