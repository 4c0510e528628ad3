// Copyright (C) MongoDB, Inc. 2025-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package column

import (
	"sort"
	"strings"

	"go.mongodb.org/mongo-driver/v2/x/bsonx/bsoncore"
)

// Projection returns a projection document of the form {field: 1, ...}
// selecting exactly the fields the columns read. A field is listed once, and
// a path nested under another listed path is left out because the server
// rejects overlapping projections.
func (cs *ColumnSet) Projection() bsoncore.Document {
	fields := make([]string, 0, len(cs.columns))
	for _, c := range cs.columns {
		if c != nil {
			fields = append(fields, c.field)
		}
	}
	return projection(fields)
}

func projection(fields []string) bsoncore.Document {
	sorted := append([]string(nil), fields...)
	sort.Strings(sorted)

	keep := make(map[string]bool, len(sorted))
	var kept []string
	for _, f := range sorted {
		if keep[f] || coveredBy(f, kept) {
			continue
		}
		keep[f] = true
		kept = append(kept, f)
	}

	// Emit in column order so the projection reads like the request.
	idx, doc := bsoncore.AppendDocumentStart(nil)
	for _, f := range fields {
		if !keep[f] {
			continue
		}
		doc = bsoncore.AppendInt32Element(doc, f, 1)
		keep[f] = false
	}
	doc, _ = bsoncore.AppendDocumentEnd(doc, idx)
	return doc
}

// coveredBy reports whether field is nested under one of the paths in kept.
// kept is sorted, so a covering prefix sorts before field.
func coveredBy(field string, kept []string) bool {
	for _, k := range kept {
		if strings.HasPrefix(field, k+".") {
			return true
		}
	}
	return false
}
