// Copyright (C) MongoDB, Inc. 2025-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package logger

import "strings"

// DiffToInfo is the number of levels that come before the "Info" level. This
// should ensure that "Info" is the 0th level passed to the sink.
const DiffToInfo = 1

// Level is an enumeration representing the log severity levels supported by
// the logger. The order of the logging levels is important: sinks built on
// go-logr treat Info as verbosity 0, and any level added before LevelInfo
// must update DiffToInfo.
type Level int

const (
	// LevelOff suppresses logging.
	LevelOff Level = iota

	// LevelInfo enables logging of informational messages. These logs are
	// high-level information about normal behavior, such as a query
	// finishing with its row and mask counts.
	LevelInfo

	// LevelDebug enables logging of debug messages. These logs can be
	// voluminous and are intended for detailed information that may be
	// helpful when debugging an application, such as every block of a block
	// query.
	LevelDebug
)

const (
	levelLiteralOff       = "off"
	levelLiteralEmergency = "emergency"
	levelLiteralAlert     = "alert"
	levelLiteralCritical  = "critical"
	levelLiteralError     = "error"
	levelLiteralWarning   = "warn"
	levelLiteralNotice    = "notice"
	levelLiteralInfo      = "info"
	levelLiteralDebug     = "debug"
	levelLiteralTrace     = "trace"
)

var allLevelLiterals = []string{
	levelLiteralOff,
	levelLiteralEmergency,
	levelLiteralAlert,
	levelLiteralCritical,
	levelLiteralError,
	levelLiteralWarning,
	levelLiteralNotice,
	levelLiteralInfo,
	levelLiteralDebug,
	levelLiteralTrace,
}

// ParseLevel will check if the given string is a valid level literal for a
// logging severity level. If it is, then it will return the associated
// logging severity level. If it is not, then it will return LevelOff. The
// comparison is case-insensitive.
func ParseLevel(str string) Level {
	for _, literal := range allLevelLiterals {
		if !strings.EqualFold(literal, str) {
			continue
		}

		switch literal {
		case levelLiteralError, levelLiteralWarning, levelLiteralNotice, levelLiteralInfo,
			levelLiteralEmergency, levelLiteralAlert, levelLiteralCritical:
			return LevelInfo
		case levelLiteralDebug, levelLiteralTrace:
			return LevelDebug
		}
	}

	return LevelOff
}
