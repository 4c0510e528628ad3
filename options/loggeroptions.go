// Copyright (C) MongoDB, Inc. 2025-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package options

import (
	"github.com/ikmak/monary/internal/logger"
)

// LogLevel is an enumeration representing the supported log severity levels.
type LogLevel int

const (
	// LogLevelInfo enables logging of informational messages. These logs are
	// high-level information about normal behavior. Example: a query
	// finishing with its row count.
	LogLevelInfo LogLevel = LogLevel(logger.LevelInfo)

	// LogLevelDebug enables logging of debug messages. These logs can be
	// voluminous and are intended for detailed information that may be
	// helpful when debugging an application. Example: every block of a block
	// query.
	LogLevelDebug LogLevel = LogLevel(logger.LevelDebug)
)

// LogComponent is an enumeration representing the "components" which can be
// logged against. A LogLevel can be configured on a per-component basis.
type LogComponent int

const (
	// LogComponentAll enables logging for all components.
	LogComponentAll LogComponent = LogComponent(logger.ComponentAll)

	// LogComponentQuery enables query, aggregation and count logging.
	LogComponentQuery LogComponent = LogComponent(logger.ComponentQuery)

	// LogComponentInsert enables insert logging.
	LogComponentInsert LogComponent = LogComponent(logger.ComponentInsert)
)

// LogSink is an interface that can be implemented to provide a custom sink
// for logs. It is a subset of the go-logr/logr LogSink interface, so the sink
// of a logr.Logger (for example one built with logrusr or zapr) can be used
// directly.
type LogSink interface {
	// Info logs a non-error message with the given key/value pairs. The
	// level argument is provided for optional logging.
	Info(level int, message string, keysAndValues ...interface{})

	// Error logs an error, with the given message and key/value pairs.
	Error(err error, message string, keysAndValues ...interface{})
}

// ComponentLevels maps components to the level they log at.
type ComponentLevels map[LogComponent]LogLevel

// LoggerOptions represent options used to configure logging.
type LoggerOptions struct {
	// ComponentLevels is a map of LogComponent to LogLevel. The LogLevel for
	// a given LogComponent will be used to determine if a log message should
	// be logged.
	ComponentLevels ComponentLevels

	// Sink is the LogSink that will be used to log messages. If this is nil,
	// messages are written as extended JSON to stderr, or to the file named
	// by MONARY_LOG_PATH.
	Sink LogSink

	// MaxDocumentLength is the maximum length of a document to be logged. If
	// the underlying document is larger than this value, it will be
	// truncated and appended with an ellipses "...".
	MaxDocumentLength uint

	// DriverCommands, if true, passes the same sink to the MongoDB driver
	// with command logging enabled at the level set for LogComponentAll.
	DriverCommands bool
}

// Logger creates a new LoggerOptions instance.
func Logger() *LoggerOptions {
	return &LoggerOptions{
		ComponentLevels: ComponentLevels{},
	}
}

// SetComponentLevel sets the LogLevel value for a LogComponent.
func (opts *LoggerOptions) SetComponentLevel(component LogComponent, level LogLevel) *LoggerOptions {
	if opts.ComponentLevels == nil {
		opts.ComponentLevels = ComponentLevels{}
	}

	opts.ComponentLevels[component] = level

	return opts
}

// SetMaxDocumentLength sets the maximum length of a document to be logged.
func (opts *LoggerOptions) SetMaxDocumentLength(maxDocumentLength uint) *LoggerOptions {
	opts.MaxDocumentLength = maxDocumentLength

	return opts
}

// SetSink sets the LogSink to use for logging.
func (opts *LoggerOptions) SetSink(sink LogSink) *LoggerOptions {
	opts.Sink = sink

	return opts
}

// SetDriverCommands sets whether driver command logging uses the same sink.
func (opts *LoggerOptions) SetDriverCommands(b bool) *LoggerOptions {
	opts.DriverCommands = b

	return opts
}
