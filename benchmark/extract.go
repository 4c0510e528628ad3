// Copyright (C) MongoDB, Inc. 2025-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package benchmark

import (
	"context"
	"runtime"

	"github.com/ikmak/monary/column"
	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/x/bsonx/bsoncore"
	"golang.org/x/sync/errgroup"
)

const corpusSize = thousand

var (
	flatDocumentSize   = len(flatDocument(0))
	nestedDocumentSize = len(nestedDocument(0))
)

func flatSpecs() []column.Spec {
	return []column.Spec{
		{Field: "_id", Type: column.TypeObjectID},
		{Field: "name", Type: column.TypeString, Width: 16},
		{Field: "age", Type: column.TypeInt32},
		{Field: "score", Type: column.TypeFloat64},
		{Field: "active", Type: column.TypeBool},
		{Field: "joined", Type: column.TypeDate},
		{Field: "visits", Type: column.TypeInt64},
		{Field: "tag", Type: column.TypeBinary, Width: 8},
	}
}

func flatDocument(i int) bsoncore.Document {
	var oid bson.ObjectID
	oid[11] = byte(i)
	oid[10] = byte(i >> 8)

	return bsoncore.NewDocumentBuilder().
		AppendObjectID("_id", [12]byte(oid)).
		AppendString("name", "user-name").
		AppendInt32("age", int32(20+i%50)).
		AppendDouble("score", float64(i)/3).
		AppendBoolean("active", i%2 == 0).
		AppendDateTime("joined", 1500000000000+int64(i)*1000).
		AppendInt64("visits", int64(i)*7).
		AppendBinary("tag", 0, []byte("tagvalue")).
		Build()
}

func nestedSpecs() []column.Spec {
	return []column.Spec{
		{Field: "user.name", Type: column.TypeString, Width: 16},
		{Field: "user.address.zip", Type: column.TypeString, Width: 8},
		{Field: "user.address.city", Type: column.TypeString, Width: 16},
		{Field: "stats.score", Type: column.TypeFloat32},
		{Field: "items.0.sku", Type: column.TypeInt32},
		{Field: "items", Type: column.TypeLength},
	}
}

func nestedDocument(i int) bsoncore.Document {
	address := bsoncore.NewDocumentBuilder().
		AppendString("zip", "10001").
		AppendString("city", "New York").
		Build()
	user := bsoncore.NewDocumentBuilder().
		AppendString("name", "user-name").
		AppendDocument("address", address).
		Build()
	stats := bsoncore.NewDocumentBuilder().
		AppendDouble("score", float64(i)/7).
		Build()
	items := bsoncore.NewArrayBuilder().
		AppendDocument(bsoncore.NewDocumentBuilder().AppendInt32("sku", int32(i)).Build()).
		AppendDocument(bsoncore.NewDocumentBuilder().AppendInt32("sku", int32(i+1)).Build()).
		Build()

	return bsoncore.NewDocumentBuilder().
		AppendDocument("user", user).
		AppendDocument("stats", stats).
		AppendArray("items", items).
		Build()
}

func corpus(build func(int) bsoncore.Document) []bsoncore.Document {
	docs := make([]bsoncore.Document, corpusSize)
	for i := range docs {
		docs[i] = build(i)
	}
	return docs
}

// extract loads iters documents from docs into the rows of cs, wrapping
// around both, and fails if any value is masked.
func extract(ctx context.Context, cs *column.ColumnSet, docs []bsoncore.Document, iters int) error {
	rows := cs.NumRows()
	for i := 0; i < iters; i++ {
		if i%thousand == 0 && ctx.Err() != nil {
			return ctx.Err()
		}
		if masked := cs.ExtractRow(i%rows, docs[i%len(docs)]); masked != 0 {
			return errors.Errorf("document %d: %d values masked", i%len(docs), masked)
		}
	}
	return nil
}

func ExtractFlatDocuments(ctx context.Context, tm TimerManager, iters int) error {
	docs := corpus(flatDocument)
	cs, err := column.Allocate(flatSpecs(), corpusSize)
	if err != nil {
		return err
	}

	tm.ResetTimer()

	return extract(ctx, cs, docs, iters)
}

func ExtractNestedDocuments(ctx context.Context, tm TimerManager, iters int) error {
	docs := corpus(nestedDocument)
	cs, err := column.Allocate(nestedSpecs(), corpusSize)
	if err != nil {
		return err
	}

	tm.ResetTimer()

	if err := extract(ctx, cs, docs, iters); err != nil {
		return err
	}
	if got := cs.Column(5).Storage().([]uint32)[0]; got != 2 {
		return errors.Errorf("items length is %d, expected 2", got)
	}
	return nil
}

// ExtractParallel extracts with one ColumnSet per worker.
func ExtractParallel(ctx context.Context, tm TimerManager, iters int) error {
	docs := corpus(flatDocument)
	workers := runtime.GOMAXPROCS(0)

	sets := make([]*column.ColumnSet, workers)
	for i := range sets {
		cs, err := column.Allocate(flatSpecs(), corpusSize)
		if err != nil {
			return err
		}
		sets[i] = cs
	}

	tm.ResetTimer()

	g, ctx := errgroup.WithContext(ctx)
	per := iters / workers
	for i, cs := range sets {
		n := per
		if i == 0 {
			n += iters % workers
		}
		g.Go(func() error {
			return errors.Wrapf(extract(ctx, cs, docs, n), "worker %d", i)
		})
	}
	return g.Wait()
}

func ReconstructRows(ctx context.Context, tm TimerManager, iters int) error {
	docs := corpus(flatDocument)
	cs, err := column.Allocate(flatSpecs(), corpusSize)
	if err != nil {
		return err
	}
	if err := extract(ctx, cs, docs, corpusSize); err != nil {
		return err
	}
	tmpl, err := column.NewTemplate(cs.Columns())
	if err != nil {
		return err
	}

	tm.ResetTimer()

	var buf []byte
	for i := 0; i < iters; i++ {
		row := i % corpusSize
		buf, err = tmpl.AppendRow(buf[:0], row)
		if err != nil {
			return errors.Wrapf(err, "row %d", row)
		}
		if len(buf) != len(docs[row]) {
			return errors.Errorf("row %d: rebuilt %d bytes, source has %d", row, len(buf), len(docs[row]))
		}
	}
	return nil
}

func ProjectionBuild(ctx context.Context, tm TimerManager, iters int) error {
	cs, err := column.Allocate(append(flatSpecs(), nestedSpecs()...), 1)
	if err != nil {
		return err
	}

	tm.ResetTimer()

	for i := 0; i < iters; i++ {
		if len(cs.Projection()) == 0 {
			return errors.New("empty projection")
		}
	}
	return nil
}
