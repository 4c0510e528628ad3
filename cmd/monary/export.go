// Copyright (C) MongoDB, Inc. 2025-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/ikmak/monary/arrowexport"
	"github.com/ikmak/monary/column"
	"github.com/ikmak/monary/parquetexport"
)

// exporter writes loaded rows to the files named in the config. The files
// are created on the first write, once the column layout is known.
type exporter struct {
	arrowPath   string
	parquetPath string
	schemaName  string

	files []*os.File
	aw    *arrowexport.Writer
	pw    *parquetexport.Writer
}

func newExporter(cfg *Config) *exporter {
	return &exporter{arrowPath: cfg.Arrow, parquetPath: cfg.Parquet, schemaName: cfg.Collection}
}

func (e *exporter) open(cs *column.ColumnSet) error {
	if e.arrowPath != "" {
		f, err := e.create(e.arrowPath)
		if err != nil {
			return err
		}
		if e.aw, err = arrowexport.NewWriter(f, cs, nil); err != nil {
			return fmt.Errorf("arrow writer: %w", err)
		}
	}
	if e.parquetPath != "" {
		f, err := e.create(e.parquetPath)
		if err != nil {
			return err
		}
		schema, err := parquetexport.Schema(e.schemaName, cs)
		if err != nil {
			return fmt.Errorf("parquet schema: %w", err)
		}
		e.pw = parquetexport.NewWriter(f, schema)
	}
	return nil
}

func (e *exporter) create(path string) (*os.File, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	e.files = append(e.files, f)
	return f, nil
}

func (e *exporter) write(cs *column.ColumnSet, rows int) error {
	if e.aw == nil && e.pw == nil {
		if err := e.open(cs); err != nil {
			return err
		}
	}
	if e.aw != nil {
		if err := e.aw.Write(cs, rows); err != nil {
			return fmt.Errorf("writing %s: %w", e.arrowPath, err)
		}
	}
	if e.pw != nil {
		if err := e.pw.Write(cs, rows); err != nil {
			return fmt.Errorf("writing %s: %w", e.parquetPath, err)
		}
	}
	return nil
}

// close finishes the writers and closes their files.
func (e *exporter) close() error {
	var errs []error
	if e.aw != nil {
		errs = append(errs, e.aw.Close())
	}
	if e.pw != nil {
		errs = append(errs, e.pw.Close())
	}
	for _, f := range e.files {
		errs = append(errs, f.Close())
	}
	return errors.Join(errs...)
}
