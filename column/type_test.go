// Copyright (C) MongoDB, Inc. 2025-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package column

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSpec(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		typeSpec string
		want     Spec
		wantErr  bool
	}{
		{"int32", Spec{Field: "f", Type: TypeInt32}, false},
		{"id", Spec{Field: "f", Type: TypeObjectID}, false},
		{"objectid", Spec{Field: "f", Type: TypeObjectID}, false},
		{"date", Spec{Field: "f", Type: TypeDate}, false},
		{"string:12", Spec{Field: "f", Type: TypeString, Width: 12}, false},
		{"bson:256", Spec{Field: "f", Type: TypeBSON, Width: 256}, false},
		{"binary:1", Spec{Field: "f", Type: TypeBinary, Width: 1}, false},
		{"string", Spec{}, true},
		{"string:0", Spec{}, true},
		{"string:-4", Spec{}, true},
		{"string:abc", Spec{}, true},
		{"int32:4", Spec{}, true},
		{"decimal", Spec{}, true},
		{"undefined", Spec{}, true},
		{"", Spec{}, true},
	}

	for _, tc := range testCases {
		tc := tc

		t.Run(tc.typeSpec, func(t *testing.T) {
			t.Parallel()

			got, err := ParseSpec("f", tc.typeSpec)
			if tc.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
			if tc.typeSpec != "objectid" {
				assert.Equal(t, "f:"+tc.typeSpec, got.String())
			}
		})
	}
}

func TestParseSpecs(t *testing.T) {
	t.Parallel()

	specs, err := ParseSpecs([]string{"a", "b.c"}, []string{"float64", "string:3"})
	require.NoError(t, err)
	assert.Equal(t, []Spec{
		{Field: "a", Type: TypeFloat64},
		{Field: "b.c", Type: TypeString, Width: 3},
	}, specs)

	_, err = ParseSpecs([]string{"a"}, nil)
	assert.Error(t, err)

	_, err = ParseSpecs([]string{"a"}, []string{"nope"})
	assert.True(t, errors.Is(err, ErrUnknownType))
}

func TestTypeProperties(t *testing.T) {
	t.Parallel()

	assert.False(t, TypeUndefined.Valid())
	assert.Equal(t, "undefined", TypeUndefined.String())
	assert.Equal(t, "Type(99)", Type(99).String())

	for typ := TypeObjectID; typ <= lastType; typ++ {
		assert.True(t, typ.Valid(), typ.String())

		parsed, err := ParseType(typ.String())
		require.NoError(t, err)
		assert.Equal(t, typ, parsed)
	}

	assert.True(t, TypeString.FixedWidth())
	assert.False(t, TypeDate.FixedWidth())
	assert.False(t, TypeLength.Insertable())
	assert.True(t, TypeBSON.Insertable())
	assert.False(t, TypeUndefined.Insertable())
}

func TestDateHelpers(t *testing.T) {
	t.Parallel()

	when := time.Date(2024, time.February, 29, 12, 30, 0, 0, time.UTC)
	ms := TimeToDateTime(when)
	assert.True(t, when.Equal(DateTimeToTime(ms)))
	assert.Equal(t, time.UTC, DateTimeToTime(-1).Location())

	assert.Equal(t, 90*time.Second, MillisToDuration(90000))
	assert.Equal(t, int64(1500), DurationToMillis(1500*time.Millisecond+300*time.Microsecond))
}
