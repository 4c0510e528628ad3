// Copyright (C) MongoDB, Inc. 2025-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package options

import (
	"errors"

	"go.mongodb.org/mongo-driver/v2/mongo/writeconcern"
)

// DefaultInsertBatchSize is the number of rows sent per insert command when no
// batch size is set.
const DefaultInsertBatchSize = 10000

// InsertOptions represents arguments that can be used to configure an Insert
// operation.
type InsertOptions struct {
	// If true, no writes will be executed after one fails. Rows after the
	// first failure are reported as failed. The default value is true.
	Ordered *bool

	// The write concern to use for the insert. The default is the write
	// concern of the client.
	WriteConcern *writeconcern.WriteConcern

	// The number of rows serialized and sent per insert command. The default
	// value is DefaultInsertBatchSize.
	BatchSize int

	// If true, writes executed as part of the operation will opt out of
	// document-level validation on the server. The default value is false.
	BypassDocumentValidation *bool

	// A string or document that will be included in server logs, profiling
	// logs, and currentOp queries to help trace the operation.
	Comment interface{}
}

// InsertOptionsBuilder contains options to configure insert operations. Each
// option can be set through setter functions. See documentation for each
// setter function for an explanation of the option.
type InsertOptionsBuilder struct {
	Opts []func(*InsertOptions) error
}

// Insert creates a new InsertOptionsBuilder instance.
func Insert() *InsertOptionsBuilder {
	return &InsertOptionsBuilder{}
}

// List returns a list of InsertOptions setter functions.
func (i *InsertOptionsBuilder) List() []func(*InsertOptions) error {
	return i.Opts
}

// SetOrdered sets the value for the Ordered field.
func (i *InsertOptionsBuilder) SetOrdered(b bool) *InsertOptionsBuilder {
	i.Opts = append(i.Opts, func(opts *InsertOptions) error {
		opts.Ordered = &b
		return nil
	})
	return i
}

// SetWriteConcern sets the value for the WriteConcern field.
func (i *InsertOptionsBuilder) SetWriteConcern(wc *writeconcern.WriteConcern) *InsertOptionsBuilder {
	i.Opts = append(i.Opts, func(opts *InsertOptions) error {
		opts.WriteConcern = wc
		return nil
	})
	return i
}

// SetBatchSize sets the value for the BatchSize field. The batch size must be
// positive.
func (i *InsertOptionsBuilder) SetBatchSize(n int) *InsertOptionsBuilder {
	i.Opts = append(i.Opts, func(opts *InsertOptions) error {
		if n <= 0 {
			return errors.New("insert batch size must be positive")
		}
		opts.BatchSize = n
		return nil
	})
	return i
}

// SetBypassDocumentValidation sets the value for the BypassDocumentValidation
// field.
func (i *InsertOptionsBuilder) SetBypassDocumentValidation(b bool) *InsertOptionsBuilder {
	i.Opts = append(i.Opts, func(opts *InsertOptions) error {
		opts.BypassDocumentValidation = &b
		return nil
	})
	return i
}

// SetComment sets the value for the Comment field.
func (i *InsertOptionsBuilder) SetComment(comment interface{}) *InsertOptionsBuilder {
	i.Opts = append(i.Opts, func(opts *InsertOptions) error {
		opts.Comment = comment
		return nil
	})
	return i
}
