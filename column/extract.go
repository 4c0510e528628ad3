// Copyright (C) MongoDB, Inc. 2025-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package column

import (
	"fmt"

	"go.mongodb.org/mongo-driver/v2/x/bsonx/bsoncore"
)

// Lookup finds the value at path in doc, descending into embedded documents
// and arrays one segment at a time. Array elements are addressed by their
// decimal index. It reports false if any segment is missing or doc is
// malformed.
func Lookup(doc bsoncore.Document, path []string) (bsoncore.Value, bool) {
	v, err := doc.LookupErr(path...)
	if err != nil {
		return bsoncore.Value{}, false
	}
	return v, true
}

// ExtractRow loads one document into row of every column and returns the
// number of columns that were masked. Each column is handled independently:
// its mask is cleared if the field was found and decoded, and set otherwise.
//
// row must be less than NumRows.
func (cs *ColumnSet) ExtractRow(row int, doc bsoncore.Document) int {
	if row < 0 || row >= cs.numRows {
		panic(fmt.Sprintf("column.ColumnSet.ExtractRow: row %d out of range [0, %d)", row, cs.numRows))
	}

	masked := 0
	for _, c := range cs.columns {
		if c == nil {
			continue
		}

		ok := false
		if v, found := Lookup(doc, c.path); found {
			ok = loaders[c.typ](v, c, row)
		}

		c.mask[row] = !ok
		if !ok {
			masked++
		}
	}
	return masked
}
