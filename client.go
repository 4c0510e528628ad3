// Copyright (C) MongoDB, Inc. 2025-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package monary

import (
	"context"
	"sync/atomic"

	"github.com/ikmak/monary/event"
	"github.com/ikmak/monary/internal/logger"
	"github.com/ikmak/monary/options"
	"go.mongodb.org/mongo-driver/v2/mongo"
	mopts "go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.mongodb.org/mongo-driver/v2/mongo/writeconcern"
)

// collection is the subset of a driver collection used by the query and
// insert paths.
type collection interface {
	Find(ctx context.Context, filter interface{}, opts *mopts.FindOptionsBuilder) (DocumentStream, error)
	Aggregate(ctx context.Context, pipeline interface{}, opts *mopts.AggregateOptionsBuilder) (DocumentStream, error)
	CountDocuments(ctx context.Context, filter interface{}, opts *mopts.CountOptionsBuilder) (int64, error)
	InsertMany(ctx context.Context, documents []interface{}, opts *mopts.InsertManyOptionsBuilder) (*mongo.InsertManyResult, error)
}

// collectionFunc returns the collection named coll in database db, using wc
// as its write concern when wc is not nil.
type collectionFunc func(db, coll string, wc *writeconcern.WriteConcern) collection

// driverCollection adapts a *mongo.Collection to collection.
type driverCollection struct {
	coll *mongo.Collection
}

func (dc driverCollection) Find(ctx context.Context, filter interface{}, opts *mopts.FindOptionsBuilder) (DocumentStream, error) {
	cur, err := dc.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	return NewCursorStream(cur), nil
}

func (dc driverCollection) Aggregate(ctx context.Context, pipeline interface{}, opts *mopts.AggregateOptionsBuilder) (DocumentStream, error) {
	cur, err := dc.coll.Aggregate(ctx, pipeline, opts)
	if err != nil {
		return nil, err
	}
	return NewCursorStream(cur), nil
}

func (dc driverCollection) CountDocuments(ctx context.Context, filter interface{}, opts *mopts.CountOptionsBuilder) (int64, error) {
	return dc.coll.CountDocuments(ctx, filter, opts)
}

func (dc driverCollection) InsertMany(ctx context.Context, documents []interface{}, opts *mopts.InsertManyOptionsBuilder) (*mongo.InsertManyResult, error) {
	return dc.coll.InsertMany(ctx, documents, opts)
}

// Client loads query results into columns and inserts columns as documents.
// It is safe for concurrent use by multiple goroutines; each operation uses
// its own columns.
type Client struct {
	client        *mongo.Client
	collection    collectionFunc
	logger        *logger.Logger
	loadMonitor   *event.LoadMonitor
	insertMonitor *event.InsertMonitor
	disconnected  atomic.Bool
}

// Connect creates a new Client and connects it to the deployment named by the
// connection string in opts. Options are merged in a last one wins fashion.
//
// The Disconnect method must be called to release the client's resources.
func Connect(opts ...*options.ClientOptions) (*Client, error) {
	clientOpts := options.MergeClientOptions(opts...)
	if err := clientOpts.Validate(); err != nil {
		return nil, err
	}

	driverOpts := []*mopts.ClientOptions{clientOpts.DriverOptions()}
	if clientOpts.Driver != nil {
		driverOpts = append(driverOpts, clientOpts.Driver)
	}

	mc, err := mongo.Connect(driverOpts...)
	if err != nil {
		return nil, err
	}

	c, err := newClient(clientOpts, func(db, coll string, wc *writeconcern.WriteConcern) collection {
		collOpts := mopts.Collection()
		if wc != nil {
			collOpts.SetWriteConcern(wc)
		}
		return driverCollection{coll: mc.Database(db).Collection(coll, collOpts)}
	})
	if err != nil {
		_ = mc.Disconnect(context.Background())
		return nil, err
	}
	c.client = mc

	return c, nil
}

func newClient(opts *options.ClientOptions, coll collectionFunc) (*Client, error) {
	l, err := newLogger(opts.LoggerOptions)
	if err != nil {
		return nil, err
	}

	return &Client{
		collection:    coll,
		logger:        l,
		loadMonitor:   opts.LoadMonitor,
		insertMonitor: opts.InsertMonitor,
	}, nil
}

// newLogger will use the LoggerOptions to create an internal logger and
// publish messages using a LogSink. It returns nil when no component is
// enabled.
func newLogger(opts *options.LoggerOptions) (*logger.Logger, error) {
	// If there are no logger options, then create a default logger so the
	// environment can still enable logging.
	if opts == nil {
		opts = options.Logger()
	}

	var sink logger.LogSink
	if opts.Sink != nil {
		sink = opts.Sink
	}

	componentLevels := make(map[logger.Component]logger.Level, len(opts.ComponentLevels))
	for component, level := range opts.ComponentLevels {
		componentLevels[logger.Component(component)] = logger.Level(level)
	}

	l, err := logger.New(sink, opts.MaxDocumentLength, componentLevels)
	if err != nil {
		return nil, err
	}

	// If no component is enabled there is nothing to log.
	for _, level := range l.ComponentLevels {
		if level != logger.LevelOff {
			return l, nil
		}
	}
	_ = l.Close()

	return nil, nil
}

// Disconnect closes the connections to the deployment and the log file, if
// any. Operations started after Disconnect return ErrClientDisconnected.
func (c *Client) Disconnect(ctx context.Context) error {
	if !c.disconnected.CompareAndSwap(false, true) {
		return ErrClientDisconnected
	}

	var err error
	if c.client != nil {
		err = c.client.Disconnect(ctx)
	}
	if lerr := c.logger.Close(); err == nil {
		err = lerr
	}
	return err
}

// Driver returns the underlying driver client, or nil for clients that were
// not created with Connect.
func (c *Client) Driver() *mongo.Client {
	return c.client
}

func (c *Client) coll(db, coll string, wc *writeconcern.WriteConcern) (collection, error) {
	if c.disconnected.Load() {
		return nil, ErrClientDisconnected
	}
	return c.collection(db, coll, wc), nil
}
