// Copyright (C) MongoDB, Inc. 2025-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package column

import "time"

// DateTimeToTime converts a date column value, in milliseconds since the Unix
// epoch, to a UTC time.
func DateTimeToTime(ms int64) time.Time {
	return time.UnixMilli(ms).UTC()
}

// TimeToDateTime converts t to the millisecond representation stored in date
// columns. Sub-millisecond precision is truncated.
func TimeToDateTime(t time.Time) int64 {
	return t.UnixMilli()
}

// MillisToDuration converts a difference between two date column values to a
// time.Duration.
func MillisToDuration(ms int64) time.Duration {
	return time.Duration(ms) * time.Millisecond
}

// DurationToMillis converts d to a difference between date column values.
func DurationToMillis(d time.Duration) int64 {
	return d.Milliseconds()
}
