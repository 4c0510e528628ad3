// Copyright (C) MongoDB, Inc. 2025-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package options_test

import (
	"testing"

	"github.com/ikmak/monary/internal/mongoutil"
	"github.com/ikmak/monary/options"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo/writeconcern"
)

func TestQueryOptions(t *testing.T) {
	t.Parallel()

	sort := bson.D{{Key: "age", Value: -1}}
	args, err := mongoutil.NewOptions[options.QueryOptions](
		options.Query().SetLimit(10).SetSkip(2).SetSort(sort),
		nil,
		options.Query().SetLimit(20).SetSelectFields(true).SetDoCount(false).SetBlockSize(64).SetBatchSize(8),
	)
	require.NoError(t, err)

	assert.Equal(t, 20, args.Limit)
	assert.Equal(t, 2, args.Skip)
	assert.Equal(t, sort, args.Sort)
	assert.True(t, args.SelectFields)
	assert.False(t, mongoutil.Deref(args.DoCount, true))
	assert.Equal(t, 64, args.BlockSize)
	assert.Equal(t, int32(8), mongoutil.Deref(args.BatchSize, 0))
	assert.Nil(t, args.AllowDiskUse)
}

func TestQueryOptionsErrors(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name string
		opts *options.QueryOptionsBuilder
		err  string
	}{
		{name: "negative limit", opts: options.Query().SetLimit(-1), err: "limit"},
		{name: "negative skip", opts: options.Query().SetSkip(-3), err: "skip"},
		{name: "zero block size", opts: options.Query().SetBlockSize(0), err: "block size"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			_, err := mongoutil.NewOptions[options.QueryOptions](tc.opts)
			assert.ErrorContains(t, err, tc.err)
		})
	}
}

func TestInsertOptions(t *testing.T) {
	t.Parallel()

	args, err := mongoutil.NewOptions[options.InsertOptions](
		options.Insert().SetOrdered(false).SetWriteConcern(writeconcern.Majority()).SetBatchSize(500),
	)
	require.NoError(t, err)
	assert.False(t, mongoutil.Deref(args.Ordered, true))
	assert.Equal(t, writeconcern.Majority(), args.WriteConcern)
	assert.Equal(t, 500, args.BatchSize)

	_, err = mongoutil.NewOptions[options.InsertOptions](options.Insert().SetBatchSize(0))
	assert.ErrorContains(t, err, "batch size")
}
