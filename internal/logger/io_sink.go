// Copyright (C) MongoDB, Inc. 2025-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package logger

import (
	"io"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// IOSink writes a relaxed extended JSON document per message to an io.Writer.
// It is the default sink for the logger, writing to os.Stderr.
type IOSink struct {
	mu  sync.Mutex
	out io.Writer
}

// Compile-time check to ensure IOSink implements the LogSink interface.
var _ LogSink = &IOSink{}

// NewIOSink will create an IOSink object that writes JSON messages to the
// provided io.Writer.
func NewIOSink(out io.Writer) *IOSink {
	return &IOSink{out: out}
}

// Info will write a JSON-encoded message to the io.Writer.
func (sink *IOSink) Info(_ int, msg string, keysAndValues ...interface{}) {
	kvMap := make(map[string]interface{}, len(keysAndValues)/2+2)

	kvMap[KeyTimestamp] = time.Now().UnixNano()
	kvMap[KeyMessage] = msg

	for i := 0; i+1 < len(keysAndValues); i += 2 {
		key, ok := keysAndValues[i].(string)
		if !ok {
			continue
		}
		kvMap[key] = keysAndValues[i+1]
	}

	b, err := bson.MarshalExtJSON(kvMap, false, false)
	if err != nil {
		return
	}

	sink.mu.Lock()
	defer sink.mu.Unlock()

	_, _ = sink.out.Write(append(b, '\n'))
}

// Error will write a JSON-encoded error message to the io.Writer.
func (sink *IOSink) Error(err error, msg string, kv ...interface{}) {
	kv = append(kv, KeyError, err.Error())
	sink.Info(0, msg, kv...)
}
