// Copyright (C) MongoDB, Inc. 2025-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package main

import (
	"errors"
	"flag"
	"fmt"
	"io"

	"github.com/ikmak/monary/options"
	"github.com/spf13/viper"
)

// Config holds the settings of one command. It is read from an optional YAML
// file and overridden by the flags given on the command line.
type Config struct {
	URI        string `mapstructure:"uri"`
	Database   string `mapstructure:"db"`
	Collection string `mapstructure:"coll"`

	Filter   string `mapstructure:"filter"`
	Pipeline string `mapstructure:"pipeline"`
	Sort     string `mapstructure:"sort"`

	Fields []string `mapstructure:"fields"`
	Types  []string `mapstructure:"types"`

	Limit        int  `mapstructure:"limit"`
	Skip         int  `mapstructure:"skip"`
	SelectFields bool `mapstructure:"select_fields"`
	BlockSize    int  `mapstructure:"block_size"`

	Arrow   string `mapstructure:"arrow"`
	Parquet string `mapstructure:"parquet"`

	Log struct {
		Sink  string `mapstructure:"sink"`
		Level string `mapstructure:"level"`
	} `mapstructure:"log"`
}

// flagKeys maps flag names to config keys.
var flagKeys = map[string]string{
	"uri":           "uri",
	"db":            "db",
	"coll":          "coll",
	"filter":        "filter",
	"pipeline":      "pipeline",
	"sort":          "sort",
	"fields":        "fields",
	"types":         "types",
	"limit":         "limit",
	"skip":          "skip",
	"select-fields": "select_fields",
	"block-size":    "block_size",
	"arrow":         "arrow",
	"parquet":       "parquet",
	"log":           "log.sink",
	"log-level":     "log.level",
}

func newFlagSet(name string, out io.Writer) (*flag.FlagSet, *string) {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(out)

	config := fs.String("config", "", "YAML config file; flags override its values")
	fs.String("uri", options.DefaultURI, "connection string")
	fs.String("db", "", "database name")
	fs.String("coll", "", "collection name")
	fs.String("filter", "", "query filter as extended JSON")
	fs.String("pipeline", "", "aggregation pipeline as an extended JSON array")
	fs.String("sort", "", "sort document as extended JSON")
	fs.String("fields", "", "comma-separated field paths")
	fs.String("types", "", "comma-separated column types, one per field (string:N for widths)")
	fs.Int("limit", 0, "maximum number of rows")
	fs.Int("skip", 0, "number of documents to skip")
	fs.Bool("select-fields", false, "project only the requested fields")
	fs.Int("block-size", 0, "load in blocks of this many rows")
	fs.String("arrow", "", "write the rows to this Arrow IPC file")
	fs.String("parquet", "", "write the rows to this Parquet file")
	fs.String("log", "none", "log sink: logrus, zap or none")
	fs.String("log-level", "info", "log level: off, info or debug")
	return fs, config
}

// loadConfig parses args and returns the resulting Config and the remaining
// positional arguments.
func loadConfig(fs *flag.FlagSet, configPath *string, args []string) (*Config, []string, error) {
	if err := fs.Parse(args); err != nil {
		return nil, nil, err
	}

	v := viper.New()
	fs.VisitAll(func(f *flag.Flag) {
		if key, ok := flagKeys[f.Name]; ok {
			v.SetDefault(key, f.DefValue)
		}
	})

	if *configPath != "" {
		v.SetConfigFile(*configPath)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, nil, fmt.Errorf("read config: %w", err)
		}
	}

	fs.Visit(func(f *flag.Flag) {
		if key, ok := flagKeys[f.Name]; ok {
			v.Set(key, f.Value.String())
		}
	})

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return &cfg, fs.Args(), nil
}

var errNoNamespace = errors.New("-db and -coll are required")

func (cfg *Config) validate(cmd string) error {
	if cfg.Database == "" || cfg.Collection == "" {
		return errNoNamespace
	}
	if cmd == "count" {
		return nil
	}
	if len(cfg.Fields) == 0 {
		return errors.New("-fields is required")
	}
	if cmd == "aggregate" && cfg.Pipeline == "" {
		return errors.New("-pipeline is required")
	}
	return nil
}
