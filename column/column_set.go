// Copyright (C) MongoDB, Inc. 2025-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package column

import "fmt"

// ColumnSet is an ordered set of columns that share a row count. A ColumnSet
// is created once per query; apart from the contents of the column buffers it
// does not change after its columns are defined.
//
// A ColumnSet is not safe for concurrent use.
type ColumnSet struct {
	numRows int
	columns []*Column
}

// NewColumnSet creates a ColumnSet with room for numColumns columns of
// numRows rows each. Columns are added with DefineColumn or SetColumn.
func NewColumnSet(numColumns, numRows int) (*ColumnSet, error) {
	if numColumns < 0 || numColumns > MaxColumns {
		return nil, fmt.Errorf("%w: %d, limit is %d", ErrTooManyColumns, numColumns, MaxColumns)
	}
	if numRows < 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidRowCount, numRows)
	}
	return &ColumnSet{
		numRows: numRows,
		columns: make([]*Column, numColumns),
	}, nil
}

// Allocate creates a ColumnSet with one freshly allocated, fully masked column
// per spec.
func Allocate(specs []Spec, numRows int) (*ColumnSet, error) {
	cs, err := NewColumnSet(len(specs), numRows)
	if err != nil {
		return nil, err
	}
	for i, spec := range specs {
		c, err := AllocateColumn(spec, numRows)
		if err != nil {
			return nil, &DefineError{Index: i, Field: spec.Field, Err: err}
		}
		cs.columns[i] = c
	}
	return cs, nil
}

// DefineColumn defines column i over caller-owned storage and mask. The
// definition is rejected, leaving the set unchanged, if i is out of range, the
// type is unknown, the storage or mask is nil or mis-sized, or the field path
// is longer than MaxFieldLength bytes. The field path is copied.
func (cs *ColumnSet) DefineColumn(i int, field string, t Type, width int, storage any, mask []bool) error {
	if i < 0 || i >= len(cs.columns) {
		return &DefineError{Index: i, Field: field, Err: ErrIndexOutOfRange}
	}
	c, err := NewColumn(field, t, width, storage, mask, cs.numRows)
	if err != nil {
		return &DefineError{Index: i, Field: field, Err: err}
	}
	cs.columns[i] = c
	return nil
}

// SetColumn places an existing column at index i. The column must have the
// set's row count.
func (cs *ColumnSet) SetColumn(i int, c *Column) error {
	if i < 0 || i >= len(cs.columns) {
		return &DefineError{Index: i, Field: c.Field(), Err: ErrIndexOutOfRange}
	}
	if c.NumRows() != cs.numRows {
		return &DefineError{
			Index: i,
			Field: c.Field(),
			Err:   fmt.Errorf("%w: column has %d rows, set has %d", ErrRowCountMismatch, c.NumRows(), cs.numRows),
		}
	}
	cs.columns[i] = c
	return nil
}

// NumRows returns the row capacity shared by every column.
func (cs *ColumnSet) NumRows() int { return cs.numRows }

// NumColumns returns the number of column slots.
func (cs *ColumnSet) NumColumns() int { return len(cs.columns) }

// Column returns column i, or nil if it has not been defined.
func (cs *ColumnSet) Column(i int) *Column { return cs.columns[i] }

// Columns returns the set's columns in order. The returned slice must not be
// modified.
func (cs *ColumnSet) Columns() []*Column { return cs.columns }

// Validate returns an error if any column slot has not been defined.
func (cs *ColumnSet) Validate() error {
	for i, c := range cs.columns {
		if c == nil {
			return &DefineError{Index: i, Err: ErrUndefinedColumn}
		}
	}
	return nil
}

// Reset masks every row of every column and zeroes fixed-width slots.
func (cs *ColumnSet) Reset() {
	for _, c := range cs.columns {
		if c != nil {
			c.Reset()
		}
	}
}
