// Copyright (C) MongoDB, Inc. 2025-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package main

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/apache/arrow-go/v18/arrow/ipc"
	"github.com/google/go-cmp/cmp"
	"github.com/ikmak/monary/column"
	"github.com/ikmak/monary/options"
	"github.com/parquet-go/parquet-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/x/bsonx/bsoncore"
)

func parseArgs(t *testing.T, args ...string) *Config {
	t.Helper()

	fs, configPath := newFlagSet("query", io.Discard)
	cfg, _, err := loadConfig(fs, configPath, args)
	require.NoError(t, err)
	return cfg
}

func TestLoadConfig(t *testing.T) {
	t.Parallel()

	t.Run("defaults", func(t *testing.T) {
		t.Parallel()

		cfg := parseArgs(t, "-db", "test", "-coll", "people", "-fields", "name,age", "-types", "string:8,int32")
		assert.Equal(t, options.DefaultURI, cfg.URI)
		assert.Equal(t, "test", cfg.Database)
		assert.Equal(t, "people", cfg.Collection)
		assert.Equal(t, []string{"name", "age"}, cfg.Fields)
		assert.Equal(t, []string{"string:8", "int32"}, cfg.Types)
		assert.Equal(t, 0, cfg.Limit)
		assert.False(t, cfg.SelectFields)
		assert.Equal(t, "none", cfg.Log.Sink)
		assert.Equal(t, "info", cfg.Log.Level)
	})

	t.Run("file with flag overrides", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "monary.yaml")
		yaml := `
uri: mongodb://db.example:27017
db: test
coll: people
fields: [name, stats.score]
types: [string:16, float64]
limit: 100
select_fields: true
log:
  sink: logrus
  level: debug
`
		require.NoError(t, os.WriteFile(path, []byte(yaml), 0o600))

		cfg := parseArgs(t, "-config", path, "-limit", "5", "-log", "zap", "-block-size", "2")
		assert.Equal(t, "mongodb://db.example:27017", cfg.URI)
		assert.Equal(t, []string{"name", "stats.score"}, cfg.Fields)
		assert.Equal(t, []string{"string:16", "float64"}, cfg.Types)
		assert.Equal(t, 5, cfg.Limit)
		assert.Equal(t, 2, cfg.BlockSize)
		assert.True(t, cfg.SelectFields)
		assert.Equal(t, "zap", cfg.Log.Sink)
		assert.Equal(t, "debug", cfg.Log.Level)
	})

	t.Run("missing file", func(t *testing.T) {
		t.Parallel()

		fs, configPath := newFlagSet("query", io.Discard)
		_, _, err := loadConfig(fs, configPath, []string{"-config", filepath.Join(t.TempDir(), "absent.yaml")})
		assert.ErrorContains(t, err, "read config")
	})
}

func TestValidate(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name string
		cmd  string
		cfg  Config
		err  string
	}{
		{name: "no namespace", cmd: "query", cfg: Config{Fields: []string{"a"}}, err: errNoNamespace.Error()},
		{name: "count needs no fields", cmd: "count", cfg: Config{Database: "d", Collection: "c"}},
		{name: "query needs fields", cmd: "query", cfg: Config{Database: "d", Collection: "c"}, err: "-fields"},
		{name: "aggregate needs pipeline", cmd: "aggregate", cfg: Config{Database: "d", Collection: "c", Fields: []string{"a"}}, err: "-pipeline"},
		{name: "query", cmd: "query", cfg: Config{Database: "d", Collection: "c", Fields: []string{"a"}}},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			err := tc.cfg.validate(tc.cmd)
			if tc.err == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tc.err)
		})
	}
}

func TestRunErrors(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name string
		args []string
		err  string
	}{
		{name: "no command", args: nil, err: "usage"},
		{name: "unknown command", args: []string{"drop"}, err: `unknown command "drop"`},
		{name: "no namespace", args: []string{"query", "-fields", "a"}, err: errNoNamespace.Error()},
		{
			name: "unknown sink",
			args: []string{"count", "-db", "d", "-coll", "c", "-log", "syslog"},
			err:  `unknown log sink "syslog"`,
		},
		{
			name: "bad filter",
			args: []string{"query", "-db", "d", "-coll", "c", "-fields", "a", "-types", "int32", "-filter", "{bad"},
			err:  "parsing -filter",
		},
		{
			name: "bad types",
			args: []string{"query", "-db", "d", "-coll", "c", "-fields", "a,b", "-types", "int32"},
			err:  "do not match",
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			var stdout, stderr bytes.Buffer
			err := run(context.Background(), tc.args, &stdout, &stderr)
			require.Error(t, err)
			assert.ErrorContains(t, err, tc.err)
		})
	}
}

func TestParseDocument(t *testing.T) {
	t.Parallel()

	doc, err := parseDocument("")
	require.NoError(t, err)
	assert.Empty(t, doc)

	doc, err = parseDocument(`{"age": {"$gte": 21}, "_id": {"$oid": "5f1b2c3d4e5f607182930a1b"}}`)
	require.NoError(t, err)
	oid, err := bson.ObjectIDFromHex("5f1b2c3d4e5f607182930a1b")
	require.NoError(t, err)
	want := bson.D{
		{Key: "age", Value: bson.D{{Key: "$gte", Value: int32(21)}}},
		{Key: "_id", Value: oid},
	}
	assert.True(t, cmp.Equal(want, doc), cmp.Diff(want, doc))

	_, err = parseDocument(`{bad`)
	assert.Error(t, err)
}

func TestParsePipeline(t *testing.T) {
	t.Parallel()

	pipeline, err := parsePipeline(`[{"$match": {"active": true}}, {"$limit": 10}]`)
	require.NoError(t, err)
	want := []bson.D{
		{{Key: "$match", Value: bson.D{{Key: "active", Value: true}}}},
		{{Key: "$limit", Value: int32(10)}},
	}
	assert.True(t, cmp.Equal(want, pipeline), cmp.Diff(want, pipeline))

	_, err = parsePipeline(`[{"$match"`)
	assert.Error(t, err)
}

func TestNewLogr(t *testing.T) {
	t.Parallel()

	for _, kind := range []string{"logrus", "zap"} {
		t.Run(kind, func(t *testing.T) {
			t.Parallel()

			var buf bytes.Buffer
			l, flush, err := newLogr(kind, "info", &buf)
			require.NoError(t, err)

			l.Info("query succeeded", "rows", 3)
			l.V(1).Info("block loaded")
			flush()

			assert.Contains(t, buf.String(), "query succeeded")
			assert.NotContains(t, buf.String(), "block loaded")
		})
	}

	t.Run("none", func(t *testing.T) {
		t.Parallel()

		l, _, err := newLogr("none", "info", io.Discard)
		require.NoError(t, err)
		assert.Nil(t, l.GetSink())
	})

	t.Run("bad level", func(t *testing.T) {
		t.Parallel()

		_, _, err := newLogr("logrus", "loud", io.Discard)
		assert.Error(t, err)
	})
}

func TestLoggerOptions(t *testing.T) {
	t.Parallel()

	cfg := &Config{}
	cfg.Log.Sink = "logrus"
	cfg.Log.Level = "debug"
	lopts, _, err := loggerOptions(cfg, io.Discard)
	require.NoError(t, err)
	require.NotNil(t, lopts)
	assert.NotNil(t, lopts.Sink)
	assert.Equal(t, options.LogLevelDebug, lopts.ComponentLevels[options.LogComponentAll])

	cfg.Log.Level = "off"
	lopts, _, err = loggerOptions(cfg, io.Discard)
	require.NoError(t, err)
	assert.Nil(t, lopts)

	cfg.Log.Sink = "none"
	cfg.Log.Level = "info"
	lopts, _, err = loggerOptions(cfg, io.Discard)
	require.NoError(t, err)
	assert.Nil(t, lopts)
}

func peopleColumns(t *testing.T) *column.ColumnSet {
	t.Helper()

	cs, err := column.Allocate([]column.Spec{
		{Field: "name", Type: column.TypeString, Width: 8},
		{Field: "age", Type: column.TypeInt32},
	}, 2)
	require.NoError(t, err)

	docs := []bsoncore.Document{
		bsoncore.NewDocumentBuilder().AppendString("name", "alice").AppendInt32("age", 31).Build(),
		bsoncore.NewDocumentBuilder().AppendString("name", "bob").Build(),
	}
	for i, doc := range docs {
		cs.ExtractRow(i, doc)
	}
	return cs
}

func TestPrintSummary(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, printSummary(&buf, peopleColumns(t), 2))

	out := buf.String()
	assert.Contains(t, out, "FIELD")
	assert.Regexp(t, `name\s+string:8\s+2/2\s+"alice", "bob"`, out)
	assert.Regexp(t, `age\s+int32\s+1/2\s+31, -`, out)
}

func TestExporter(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	cfg := &Config{
		Collection: "people",
		Arrow:      filepath.Join(dir, "people.arrow"),
		Parquet:    filepath.Join(dir, "people.parquet"),
	}
	cs := peopleColumns(t)

	exp := newExporter(cfg)
	require.NoError(t, exp.write(cs, 2))
	require.NoError(t, exp.write(cs, 1))
	require.NoError(t, exp.close())

	af, err := os.Open(cfg.Arrow)
	require.NoError(t, err)
	defer af.Close()
	r, err := ipc.NewFileReader(af)
	require.NoError(t, err)
	defer r.Close()
	assert.Equal(t, 2, r.NumRecords())

	pf, err := os.Open(cfg.Parquet)
	require.NoError(t, err)
	defer pf.Close()
	info, err := pf.Stat()
	require.NoError(t, err)
	f, err := parquet.OpenFile(pf, info.Size())
	require.NoError(t, err)
	assert.Equal(t, int64(3), f.NumRows())
}

func TestExporterDisabled(t *testing.T) {
	t.Parallel()

	exp := newExporter(&Config{})
	require.NoError(t, exp.write(peopleColumns(t), 2))
	assert.NoError(t, exp.close())
	assert.Empty(t, exp.files)
}
