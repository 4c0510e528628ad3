// Copyright (C) MongoDB, Inc. 2025-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package main

import (
	"fmt"
	"io"

	"github.com/bombsimon/logrusr/v4"
	"github.com/go-logr/logr"
	"github.com/go-logr/zapr"
	"github.com/ikmak/monary/internal/logger"
	"github.com/ikmak/monary/options"
	"github.com/sirupsen/logrus"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// newLogr builds a logr.Logger of the named kind writing to w. The returned
// function flushes buffered entries.
func newLogr(kind, level string, w io.Writer) (logr.Logger, func(), error) {
	switch kind {
	case "logrus":
		l := logrus.New()
		l.SetOutput(w)
		l.SetFormatter(&logrus.JSONFormatter{})
		lvl, err := logrus.ParseLevel(level)
		if err != nil {
			return logr.Discard(), nil, err
		}
		l.SetLevel(lvl)
		return logrusr.New(l), func() {}, nil
	case "zap":
		lvl, err := zapcore.ParseLevel(level)
		if err != nil {
			return logr.Discard(), nil, err
		}
		core := zapcore.NewCore(
			zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig()),
			zapcore.AddSync(w),
			zap.NewAtomicLevelAt(lvl),
		)
		zl := zap.New(core)
		return zapr.NewLogger(zl), func() { _ = zl.Sync() }, nil
	case "none", "":
		return logr.Discard(), func() {}, nil
	default:
		return logr.Discard(), nil, fmt.Errorf("unknown log sink %q", kind)
	}
}

// loggerOptions returns the client logger options for cfg, or nil when
// logging is disabled.
func loggerOptions(cfg *Config, w io.Writer) (*options.LoggerOptions, func(), error) {
	lvl := logger.ParseLevel(cfg.Log.Level)
	if lvl == logger.LevelOff {
		return nil, func() {}, nil
	}

	l, flush, err := newLogr(cfg.Log.Sink, cfg.Log.Level, w)
	if err != nil {
		return nil, nil, err
	}
	if l.GetSink() == nil {
		return nil, flush, nil
	}

	lopts := options.Logger().
		SetSink(l.GetSink()).
		SetMaxDocumentLength(512).
		SetComponentLevel(options.LogComponentAll, options.LogLevel(lvl))
	return lopts, flush, nil
}
