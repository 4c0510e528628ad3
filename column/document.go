// Copyright (C) MongoDB, Inc. 2025-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package column

import (
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/v2/x/bsonx/bsoncore"
)

// MaxNestingDepth is the maximum number of nested documents a field path may
// describe when writing columns back to BSON.
const MaxNestingDepth = 100

// Errors returned when building documents from columns.
var (
	ErrNestingTooDeep = errors.New("field path nests too deeply")
	ErrFieldConflict  = errors.New("conflicting field paths")
	ErrNotInsertable  = errors.New("column type cannot be written to BSON")
	ErrInvalidSlot    = errors.New("slot does not hold a valid BSON document")
	ErrNoColumns      = errors.New("no columns")
)

// node is either a leaf holding a column or a group of children that share a
// key prefix and are written as one embedded document.
type node struct {
	key      string
	col      *Column
	children []*node
}

func (n *node) child(key string) *node {
	for _, c := range n.children {
		if c.key == key {
			return c
		}
	}
	return nil
}

// Template writes rows of a fixed list of columns as BSON documents. Columns
// whose paths share a prefix up to a '.' are grouped into an embedded document
// under that prefix segment. The grouping is computed once, when the template
// is built.
type Template struct {
	rows int
	root node
}

// NewTemplate builds a Template for cols. It fails if the columns have
// different row counts, a column type cannot be written to BSON, two paths
// conflict (such as "a" and "a.b", or a repeated path), or a path nests more
// than MaxNestingDepth levels.
func NewTemplate(cols []*Column) (*Template, error) {
	if len(cols) == 0 {
		return nil, ErrNoColumns
	}

	t := &Template{rows: cols[0].NumRows()}
	for i, c := range cols {
		if c == nil {
			return nil, &DefineError{Index: i, Err: ErrUndefinedColumn}
		}
		if c.NumRows() != t.rows {
			return nil, &DefineError{
				Index: i,
				Field: c.field,
				Err:   fmt.Errorf("%w: %d rows, want %d", ErrRowCountMismatch, c.NumRows(), t.rows),
			}
		}
		if !c.typ.Insertable() {
			return nil, &DefineError{Index: i, Field: c.field, Err: fmt.Errorf("%w: %s", ErrNotInsertable, c.typ)}
		}
		if len(c.path)-1 >= MaxNestingDepth {
			return nil, &DefineError{
				Index: i,
				Field: c.field,
				Err:   fmt.Errorf("%w: %d levels, limit is %d", ErrNestingTooDeep, len(c.path)-1, MaxNestingDepth),
			}
		}
		if err := t.root.insert(c, c.path); err != nil {
			return nil, &DefineError{Index: i, Field: c.field, Err: err}
		}
	}
	return t, nil
}

func (n *node) insert(c *Column, path []string) error {
	existing := n.child(path[0])
	if len(path) == 1 {
		if existing != nil {
			return ErrFieldConflict
		}
		n.children = append(n.children, &node{key: path[0], col: c})
		return nil
	}

	if existing == nil {
		existing = &node{key: path[0]}
		n.children = append(n.children, existing)
	} else if existing.col != nil {
		return ErrFieldConflict
	}
	return existing.insert(c, path[1:])
}

// NumRows returns the number of rows the template's columns hold.
func (t *Template) NumRows() int { return t.rows }

// AppendRow appends the document for row to dst. Masked columns are left out,
// as are embedded documents whose columns are all masked.
func (t *Template) AppendRow(dst []byte, row int) ([]byte, error) {
	if row < 0 || row >= t.rows {
		panic(fmt.Sprintf("column.Template.AppendRow: row %d out of range [0, %d)", row, t.rows))
	}

	var idx int32
	idx, dst = bsoncore.AppendDocumentStart(dst)
	dst, _, err := appendChildren(dst, &t.root, row)
	if err != nil {
		return dst, err
	}
	return bsoncore.AppendDocumentEnd(dst, idx)
}

// Document returns the document for row.
func (t *Template) Document(row int) (bsoncore.Document, error) {
	return t.AppendRow(nil, row)
}

// appendChildren appends n's children for row and returns how many elements
// were written.
func appendChildren(dst []byte, n *node, row int) ([]byte, int, error) {
	written := 0
	for _, child := range n.children {
		if child.col != nil {
			if child.col.mask[row] {
				continue
			}
			var err error
			dst, err = appendValue(dst, child.key, child.col, row)
			if err != nil {
				return dst, written, err
			}
			written++
			continue
		}

		start := len(dst)
		var (
			idx    int32
			nested int
			err    error
		)
		idx, dst = bsoncore.AppendDocumentElementStart(dst, child.key)
		dst, nested, err = appendChildren(dst, child, row)
		if err != nil {
			return dst, written, err
		}
		if nested == 0 {
			dst = dst[:start]
			continue
		}
		if dst, err = bsoncore.AppendDocumentEnd(dst, idx); err != nil {
			return dst, written, err
		}
		written++
	}
	return dst, written, nil
}

// appendValue writes row of c as an element named key, using the inverse of
// the column's loader.
func appendValue(dst []byte, key string, c *Column, row int) ([]byte, error) {
	switch c.typ {
	case TypeObjectID:
		return bsoncore.AppendObjectIDElement(dst, key, [12]byte(c.oids[row])), nil
	case TypeBool:
		return bsoncore.AppendBooleanElement(dst, key, c.bools[row]), nil
	case TypeInt8:
		return bsoncore.AppendInt32Element(dst, key, int32(c.i8[row])), nil
	case TypeInt16:
		return bsoncore.AppendInt32Element(dst, key, int32(c.i16[row])), nil
	case TypeInt32:
		return bsoncore.AppendInt32Element(dst, key, c.i32[row]), nil
	case TypeInt64:
		return bsoncore.AppendInt64Element(dst, key, c.i64[row]), nil
	case TypeUint8:
		return bsoncore.AppendInt32Element(dst, key, int32(c.u8[row])), nil
	case TypeUint16:
		return bsoncore.AppendInt32Element(dst, key, int32(c.u16[row])), nil
	case TypeUint32:
		return bsoncore.AppendInt64Element(dst, key, int64(c.u32[row])), nil
	case TypeUint64:
		return bsoncore.AppendInt64Element(dst, key, int64(c.u64[row])), nil
	case TypeFloat32:
		return bsoncore.AppendDoubleElement(dst, key, float64(c.f32[row])), nil
	case TypeFloat64:
		return bsoncore.AppendDoubleElement(dst, key, c.f64[row]), nil
	case TypeDate:
		return bsoncore.AppendDateTimeElement(dst, key, c.i64[row]), nil
	case TypeTimestamp:
		return bsoncore.AppendTimestampElement(dst, key, c.ts[row].T, c.ts[row].I), nil
	case TypeString:
		return bsoncore.AppendStringElement(dst, key, string(trimNUL(c.slot(row)))), nil
	case TypeBinary:
		return bsoncore.AppendBinaryElement(dst, key, 0x00, c.slot(row)), nil
	case TypeBSON:
		doc, ok := slotDocument(c.slot(row))
		if !ok || doc.Validate() != nil {
			return dst, fmt.Errorf("%w: field %q, row %d", ErrInvalidSlot, c.field, row)
		}
		return bsoncore.AppendDocumentElement(dst, key, doc), nil
	default:
		return dst, fmt.Errorf("%w: %s", ErrNotInsertable, c.typ)
	}
}

// RowToDocument builds the document for row from cols. Callers writing many
// rows should build a Template once instead.
func RowToDocument(cols []*Column, row int) (bsoncore.Document, error) {
	t, err := NewTemplate(cols)
	if err != nil {
		return nil, err
	}
	return t.Document(row)
}
