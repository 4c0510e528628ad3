// Copyright (C) MongoDB, Inc. 2025-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package column

import (
	"fmt"
	"strconv"
	"strings"
)

// Type is the target type of a column. It fixes both how a BSON value is
// decoded into the column and the Go type of the column's storage.
type Type uint8

// These constants enumerate the supported column types. TypeUndefined is the
// zero value and is never a valid column type.
const (
	TypeUndefined Type = iota
	TypeObjectID
	TypeBool
	TypeInt8
	TypeInt16
	TypeInt32
	TypeInt64
	TypeUint8
	TypeUint16
	TypeUint32
	TypeUint64
	TypeFloat32
	TypeFloat64
	TypeDate      // BSON UTC datetime, milliseconds since the epoch
	TypeTimestamp // BSON timestamp
	TypeString    // fixed-width UTF-8 bytes
	TypeBinary    // fixed-width bytes
	TypeBSON      // fixed-width raw embedded document
	TypeType      // BSON element type byte
	TypeSize      // encoded byte size of a string, binary, document or array
	TypeLength    // semantic length of a string, binary, document or array

	lastType = TypeLength
)

var typeNames = [...]string{
	TypeUndefined: "undefined",
	TypeObjectID:  "id",
	TypeBool:      "bool",
	TypeInt8:      "int8",
	TypeInt16:     "int16",
	TypeInt32:     "int32",
	TypeInt64:     "int64",
	TypeUint8:     "uint8",
	TypeUint16:    "uint16",
	TypeUint32:    "uint32",
	TypeUint64:    "uint64",
	TypeFloat32:   "float32",
	TypeFloat64:   "float64",
	TypeDate:      "date",
	TypeTimestamp: "timestamp",
	TypeString:    "string",
	TypeBinary:    "binary",
	TypeBSON:      "bson",
	TypeType:      "type",
	TypeSize:      "size",
	TypeLength:    "length",
}

// String returns the name used for t in column specs.
func (t Type) String() string {
	if t.Valid() {
		return typeNames[t]
	}
	return "Type(" + strconv.Itoa(int(t)) + ")"
}

// Valid reports whether t is one of the enumerated column types.
func (t Type) Valid() bool {
	return t > TypeUndefined && t <= lastType
}

// FixedWidth reports whether t stores a caller-specified number of bytes per
// row rather than a single Go value.
func (t Type) FixedWidth() bool {
	switch t {
	case TypeString, TypeBinary, TypeBSON:
		return true
	default:
		return false
	}
}

// Insertable reports whether columns of type t can be written back to BSON.
// Type, size and length columns describe a value rather than hold it.
func (t Type) Insertable() bool {
	switch t {
	case TypeType, TypeSize, TypeLength:
		return false
	default:
		return t.Valid()
	}
}

// ParseType returns the Type with the given spec name.
func ParseType(name string) (Type, error) {
	for t := TypeObjectID; t <= lastType; t++ {
		if typeNames[t] == name {
			return t, nil
		}
	}
	if name == "objectid" {
		return TypeObjectID, nil
	}
	return TypeUndefined, fmt.Errorf("%w: %q", ErrUnknownType, name)
}

// Spec describes one requested column: the field path to read, the target
// type, and, for fixed-width types, the number of bytes per row.
type Spec struct {
	Field string
	Type  Type
	Width int
}

// String returns the spec in "field:type[:width]" form.
func (s Spec) String() string {
	if s.Type.FixedWidth() {
		return s.Field + ":" + s.Type.String() + ":" + strconv.Itoa(s.Width)
	}
	return s.Field + ":" + s.Type.String()
}

// ParseSpec parses a type spec such as "int32", "string:12" or "bson:256"
// for the given field.
func ParseSpec(field, typeSpec string) (Spec, error) {
	name, arg, hasArg := strings.Cut(typeSpec, ":")
	t, err := ParseType(name)
	if err != nil {
		return Spec{}, err
	}

	spec := Spec{Field: field, Type: t}
	if !t.FixedWidth() {
		if hasArg {
			return Spec{}, fmt.Errorf("type %s does not take a width, got %q", t, typeSpec)
		}
		return spec, nil
	}

	if !hasArg {
		return Spec{}, fmt.Errorf("%w: type %s requires a width, e.g. %s:16", ErrInvalidWidth, t, t)
	}
	width, err := strconv.Atoi(arg)
	if err != nil || width <= 0 {
		return Spec{}, fmt.Errorf("%w: %q", ErrInvalidWidth, typeSpec)
	}
	spec.Width = width
	return spec, nil
}

// ParseSpecs pairs each field with its type spec.
func ParseSpecs(fields, typeSpecs []string) ([]Spec, error) {
	if len(fields) != len(typeSpecs) {
		return nil, fmt.Errorf("number of fields (%d) and types (%d) do not match", len(fields), len(typeSpecs))
	}
	specs := make([]Spec, 0, len(fields))
	for i, field := range fields {
		spec, err := ParseSpec(field, typeSpecs[i])
		if err != nil {
			return nil, fmt.Errorf("column %d (%s): %w", i, field, err)
		}
		specs = append(specs, spec)
	}
	return specs, nil
}
