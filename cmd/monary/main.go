// Copyright (C) MongoDB, Inc. 2025-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

// Command monary loads query and aggregation results from MongoDB into
// columns and optionally writes them to Arrow or Parquet files.
//
// Usage:
//
//	monary query|count|aggregate [flags]
//	monary bench [name]
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/ikmak/monary"
	"github.com/ikmak/monary/benchmark"
	"github.com/ikmak/monary/column"
	"github.com/ikmak/monary/options"
	"go.mongodb.org/mongo-driver/v2/bson"
)

const usage = "usage: monary query|count|aggregate [flags] | monary bench [name]"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	if err != nil && !errors.Is(err, flag.ErrHelp) {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	if len(args) == 0 {
		return errors.New(usage)
	}

	cmd := args[0]
	switch cmd {
	case "bench":
		return runBench(ctx, args[1:], stdout, stderr)
	case "query", "count", "aggregate":
	default:
		return fmt.Errorf("unknown command %q\n%s", cmd, usage)
	}

	fs, configPath := newFlagSet(cmd, stderr)
	cfg, _, err := loadConfig(fs, configPath, args[1:])
	if err != nil {
		return err
	}
	if err := cfg.validate(cmd); err != nil {
		return err
	}

	lopts, flush, err := loggerOptions(cfg, stderr)
	if err != nil {
		return err
	}
	defer flush()

	copts := options.Client().ApplyURI(cfg.URI).SetAppName("monary")
	if lopts != nil {
		copts.SetLoggerOptions(lopts)
	}
	client, err := monary.Connect(copts)
	if err != nil {
		return err
	}
	defer func() { _ = client.Disconnect(context.Background()) }()

	switch cmd {
	case "count":
		return runCount(ctx, client, cfg, stdout)
	default:
		return runLoad(ctx, client, cmd, cfg, stdout)
	}
}

func queryOptions(cfg *Config) (*options.QueryOptionsBuilder, error) {
	q := options.Query().SetSelectFields(cfg.SelectFields)
	if cfg.Skip > 0 {
		q.SetSkip(cfg.Skip)
	}
	if cfg.Limit > 0 {
		q.SetLimit(cfg.Limit)
	}
	if cfg.BlockSize > 0 {
		q.SetBlockSize(cfg.BlockSize)
	}
	if cfg.Sort != "" {
		sort, err := parseDocument(cfg.Sort)
		if err != nil {
			return nil, fmt.Errorf("parsing -sort: %w", err)
		}
		q.SetSort(sort)
	}
	return q, nil
}

func runCount(ctx context.Context, client *monary.Client, cfg *Config, stdout io.Writer) error {
	filter, err := parseDocument(cfg.Filter)
	if err != nil {
		return fmt.Errorf("parsing -filter: %w", err)
	}
	q, err := queryOptions(cfg)
	if err != nil {
		return err
	}

	n, err := client.Count(ctx, cfg.Database, cfg.Collection, filter, q)
	if err != nil {
		return err
	}
	fmt.Fprintln(stdout, n)
	return nil
}

func runLoad(ctx context.Context, client *monary.Client, cmd string, cfg *Config, stdout io.Writer) (err error) {
	specs, err := column.ParseSpecs(cfg.Fields, cfg.Types)
	if err != nil {
		return err
	}
	q, err := queryOptions(cfg)
	if err != nil {
		return err
	}

	var source interface{}
	if cmd == "aggregate" {
		if source, err = parsePipeline(cfg.Pipeline); err != nil {
			return fmt.Errorf("parsing -pipeline: %w", err)
		}
	} else if source, err = parseDocument(cfg.Filter); err != nil {
		return fmt.Errorf("parsing -filter: %w", err)
	}

	exp := newExporter(cfg)
	defer func() {
		if cerr := exp.close(); err == nil {
			err = cerr
		}
	}()

	if cfg.BlockSize > 0 {
		return loadBlocks(ctx, client, cmd, cfg, source, specs, q, exp, stdout)
	}

	var res *monary.Result
	if cmd == "aggregate" {
		res, err = client.Aggregate(ctx, cfg.Database, cfg.Collection, source, specs, q)
	} else {
		res, err = client.Query(ctx, cfg.Database, cfg.Collection, source, specs, q)
	}
	if res == nil {
		return err
	}
	// A stream error still leaves the loaded rows valid.
	if werr := exp.write(res.Columns, res.Rows); werr != nil {
		return werr
	}
	fmt.Fprintf(stdout, "%d rows, %d masked values\n", res.Rows, res.Masked)
	if perr := printSummary(stdout, res.Columns, res.Rows); perr != nil {
		return perr
	}
	return err
}

func loadBlocks(
	ctx context.Context,
	client *monary.Client,
	cmd string,
	cfg *Config,
	source interface{},
	specs []column.Spec,
	q *options.QueryOptionsBuilder,
	exp *exporter,
	stdout io.Writer,
) error {
	var (
		bc  *monary.BlockCursor
		err error
	)
	if cmd == "aggregate" {
		bc, err = client.BlockAggregate(ctx, cfg.Database, cfg.Collection, source, specs, q)
	} else {
		bc, err = client.BlockQuery(ctx, cfg.Database, cfg.Collection, source, specs, q)
	}
	if err != nil {
		return err
	}
	defer func() { _ = bc.Close(ctx) }()

	var blocks, rows, masked int
	for bc.Next(ctx) {
		if err := exp.write(bc.Block(), bc.Rows()); err != nil {
			return err
		}
		if blocks == 0 {
			if err := printSummary(stdout, bc.Block(), bc.Rows()); err != nil {
				return err
			}
		}
		blocks++
		rows += bc.Rows()
		masked += bc.Masked()
	}
	fmt.Fprintf(stdout, "%d blocks, %d rows, %d masked values\n", blocks, rows, masked)
	return bc.Err()
}

func runBench(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	var filter string
	if len(args) > 0 {
		filter = args[0]
	}

	summaries, err := benchmark.Run(ctx, stderr, filter)
	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	if eerr := enc.Encode(summaries); eerr != nil {
		return eerr
	}
	return err
}

// parseDocument parses an extended JSON document. An empty string is the
// empty document.
func parseDocument(s string) (bson.D, error) {
	if s == "" {
		return bson.D{}, nil
	}
	var doc bson.D
	if err := bson.UnmarshalExtJSON([]byte(s), false, &doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// parsePipeline parses an extended JSON array of stages.
func parsePipeline(s string) ([]bson.D, error) {
	var wrapper struct {
		Pipeline []bson.D `bson:"pipeline"`
	}
	if err := bson.UnmarshalExtJSON([]byte(`{"pipeline":`+s+`}`), false, &wrapper); err != nil {
		return nil, err
	}
	return wrapper.Pipeline, nil
}
