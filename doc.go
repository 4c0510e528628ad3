// Copyright (C) MongoDB, Inc. 2025-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

// Package monary loads MongoDB query results directly into typed column
// buffers and writes column buffers back to MongoDB.
//
// Basic usage starts with connecting a Client:
//
//	client, err := monary.Connect(options.Client().ApplyURI("mongodb://localhost:27017"))
//	if err != nil { log.Fatal(err) }
//	defer client.Disconnect(context.TODO())
//
// A query names the fields to read and the column type of each:
//
//	specs, err := column.ParseSpecs(
//		[]string{"name", "age", "address.zip"},
//		[]string{"string:32", "int32", "string:10"},
//	)
//	if err != nil { log.Fatal(err) }
//
//	res, err := client.Query(ctx, "test", "people", bson.D{}, specs,
//		options.Query().SetLimit(1000).SetSelectFields(true))
//	if err != nil { log.Fatal(err) }
//
//	ages := res.Columns.Column(1).Storage().([]int32)
//	for row := 0; row < res.Rows; row++ {
//		if !res.Columns.Column(1).Masked(row) {
//			fmt.Println(ages[row])
//		}
//	}
//
// A value that is missing from a document, or whose BSON type does not fit
// its column, is not an error: the row is masked in that column.
//
// Results too large to hold at once are read one block at a time:
//
//	cur, err := client.BlockQuery(ctx, "test", "people", bson.D{}, specs,
//		options.Query().SetBlockSize(8192))
//	if err != nil { log.Fatal(err) }
//	defer cur.Close(ctx)
//
//	for cur.Next(ctx) {
//		process(cur.Block(), cur.Rows())
//	}
//	if err := cur.Err(); err != nil { log.Fatal(err) }
//
// Insert writes one document per row, leaving out masked values, and reports
// the rows the server rejected:
//
//	res, err := client.Insert(ctx, "test", "people", cs.Columns(),
//		options.Insert().SetOrdered(false))
package monary // import "github.com/ikmak/monary"
