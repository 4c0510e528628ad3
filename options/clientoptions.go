// Copyright (C) MongoDB, Inc. 2025-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package options

import (
	"errors"
	"time"

	"github.com/ikmak/monary/event"
	mopts "go.mongodb.org/mongo-driver/v2/mongo/options"
)

// DefaultURI is the connection string used when none is set.
const DefaultURI = "mongodb://localhost:27017"

// ClientOptions contains options to configure a Client instance. Each option
// can be set through setter functions. See documentation for each setter
// function for an explanation of the option.
type ClientOptions struct {
	// The connection string. The default is DefaultURI.
	URI string

	// The application name sent to the server in the connection handshake.
	AppName *string

	// The timeout for establishing a connection.
	ConnectTimeout *time.Duration

	// The maximum number of connections in each server's pool.
	MaxPoolSize *uint64

	// LoggerOptions configures the structured logger.
	LoggerOptions *LoggerOptions

	// LoadMonitor receives load events for queries and aggregations.
	LoadMonitor *event.LoadMonitor

	// InsertMonitor receives insert events.
	InsertMonitor *event.InsertMonitor

	// Driver holds additional options applied to the underlying MongoDB
	// client after the ones above.
	Driver *mopts.ClientOptions

	err error
}

// Client creates a new ClientOptions instance.
func Client() *ClientOptions {
	return &ClientOptions{}
}

// Validate validates the client options. This method will return the first
// error found.
func (c *ClientOptions) Validate() error {
	if c.err != nil {
		return c.err
	}
	if c.MaxPoolSize != nil && *c.MaxPoolSize == 0 {
		return errors.New("max pool size must be positive")
	}
	return nil
}

// ApplyURI sets the connection string.
func (c *ClientOptions) ApplyURI(uri string) *ClientOptions {
	if uri == "" {
		c.err = errors.New("connection string must not be empty")
		return c
	}
	c.URI = uri
	return c
}

// SetAppName specifies an application name that is sent to the server when
// creating new connections.
func (c *ClientOptions) SetAppName(s string) *ClientOptions {
	c.AppName = &s
	return c
}

// SetConnectTimeout specifies a timeout that is used for creating connections
// to the server.
func (c *ClientOptions) SetConnectTimeout(d time.Duration) *ClientOptions {
	c.ConnectTimeout = &d
	return c
}

// SetMaxPoolSize specifies that maximum number of connections allowed in the
// driver's connection pool to each server.
func (c *ClientOptions) SetMaxPoolSize(u uint64) *ClientOptions {
	c.MaxPoolSize = &u
	return c
}

// SetLoggerOptions specifies a LoggerOptions containing options for
// configuring a logger.
func (c *ClientOptions) SetLoggerOptions(lopts *LoggerOptions) *ClientOptions {
	c.LoggerOptions = lopts
	return c
}

// SetLoadMonitor specifies a LoadMonitor to receive load events.
func (c *ClientOptions) SetLoadMonitor(m *event.LoadMonitor) *ClientOptions {
	c.LoadMonitor = m
	return c
}

// SetInsertMonitor specifies an InsertMonitor to receive insert events.
func (c *ClientOptions) SetInsertMonitor(m *event.InsertMonitor) *ClientOptions {
	c.InsertMonitor = m
	return c
}

// SetDriverOptions specifies options applied to the underlying MongoDB client.
func (c *ClientOptions) SetDriverOptions(opts *mopts.ClientOptions) *ClientOptions {
	c.Driver = opts
	return c
}

// MergeClientOptions combines the given *ClientOptions into a single
// *ClientOptions in a last one wins fashion. Nil options are ignored.
func MergeClientOptions(opts ...*ClientOptions) *ClientOptions {
	c := Client()
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if opt.URI != "" {
			c.URI = opt.URI
		}
		if opt.AppName != nil {
			c.AppName = opt.AppName
		}
		if opt.ConnectTimeout != nil {
			c.ConnectTimeout = opt.ConnectTimeout
		}
		if opt.MaxPoolSize != nil {
			c.MaxPoolSize = opt.MaxPoolSize
		}
		if opt.LoggerOptions != nil {
			c.LoggerOptions = opt.LoggerOptions
		}
		if opt.LoadMonitor != nil {
			c.LoadMonitor = opt.LoadMonitor
		}
		if opt.InsertMonitor != nil {
			c.InsertMonitor = opt.InsertMonitor
		}
		if opt.Driver != nil {
			c.Driver = opt.Driver
		}
		if opt.err != nil {
			c.err = opt.err
		}
	}
	return c
}

// DriverOptions returns the options for the underlying MongoDB client.
func (c *ClientOptions) DriverOptions() *mopts.ClientOptions {
	uri := c.URI
	if uri == "" {
		uri = DefaultURI
	}

	opts := mopts.Client().ApplyURI(uri)
	if c.AppName != nil {
		opts.SetAppName(*c.AppName)
	}
	if c.ConnectTimeout != nil {
		opts.SetConnectTimeout(*c.ConnectTimeout)
	}
	if c.MaxPoolSize != nil {
		opts.SetMaxPoolSize(*c.MaxPoolSize)
	}

	if lo := c.LoggerOptions; lo != nil && lo.DriverCommands && lo.Sink != nil {
		level := mopts.LogLevelInfo
		if lo.ComponentLevels[LogComponentAll] >= LogLevelDebug {
			level = mopts.LogLevelDebug
		}
		opts.SetLoggerOptions(mopts.Logger().
			SetSink(lo.Sink).
			SetMaxDocumentLength(lo.MaxDocumentLength).
			SetComponentLevel(mopts.LogComponentCommand, level))
	}

	return opts
}
