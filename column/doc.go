// Copyright (C) MongoDB, Inc. 2025-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

// Package column decodes BSON documents directly into typed, preallocated
// column buffers and encodes rows of such buffers back into BSON documents.
//
// A Column pairs a dotted field path and a Type with caller-owned storage and
// a mask that records, per row, whether a value was loaded. A ColumnSet groups
// columns that share a row count. ExtractRow loads one raw document into one
// row of every column in a set:
//
//	cs, err := column.Allocate([]column.Spec{
//		{Field: "name", Type: column.TypeString, Width: 10},
//		{Field: "age", Type: column.TypeInt32},
//	}, 3)
//	if err != nil {
//		return err
//	}
//	masked := cs.ExtractRow(0, doc)
//
// Missing fields and values whose BSON type does not fit the column are not
// errors: the row is masked and the destination is left untouched. Numeric
// columns accept int32, int64 and double values and narrow them with two's
// complement truncation.
//
// A Template performs the reverse transformation: it builds one BSON
// document per row, skipping masked values and nesting dotted paths into
// embedded documents.
package column
