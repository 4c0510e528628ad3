// Copyright (C) MongoDB, Inc. 2025-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package logger

import "sync/atomic"

var nextOperationID atomic.Int64

// NextOperationID returns a process-unique identifier for a new operation.
func NextOperationID() int64 {
	return nextOperationID.Add(1)
}
