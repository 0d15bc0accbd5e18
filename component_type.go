// component_type.go: Pixel component types accepted by the image tools
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package cmdline

import (
	"strings"

	"github.com/agilira/go-errors"
)

// ComponentType is the scalar type of one pixel component.
type ComponentType int

const (
	ComponentUnknown ComponentType = iota
	ComponentUChar
	ComponentChar
	ComponentUShort
	ComponentShort
	ComponentUInt
	ComponentInt
	ComponentULong
	ComponentLong
	ComponentFloat
	ComponentDouble
)

var componentTypeNames = map[ComponentType]string{
	ComponentUnknown: "unknown",
	ComponentUChar:   "unsigned_char",
	ComponentChar:    "char",
	ComponentUShort:  "unsigned_short",
	ComponentShort:   "short",
	ComponentUInt:    "unsigned_int",
	ComponentInt:     "int",
	ComponentULong:   "unsigned_long",
	ComponentLong:    "long",
	ComponentFloat:   "float",
	ComponentDouble:  "double",
}

var componentTypeAliases = map[string]ComponentType{
	"uchar":   ComponentUChar,
	"ushort":  ComponentUShort,
	"uint":    ComponentUInt,
	"ulong":   ComponentULong,
	"integer": ComponentInt,
}

// String returns the underscore form used on the command line.
func (c ComponentType) String() string {
	if name, ok := componentTypeNames[c]; ok {
		return name
	}
	return "unknown"
}

// ParseComponentType accepts the names printed by String, the same names
// with a space instead of an underscore, and the short aliases uchar,
// ushort, uint, ulong and integer. Case is ignored.
func ParseComponentType(s string) (ComponentType, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	name = strings.Join(strings.Fields(name), "_")

	if c, ok := componentTypeAliases[name]; ok {
		return c, nil
	}
	for c, n := range componentTypeNames {
		if c != ComponentUnknown && n == name {
			return c, nil
		}
	}
	return ComponentUnknown, errors.New(ErrCodeUnknownComponentType, "unknown component type: "+s).
		WithContext("value", s)
}

// IsInteger reports whether c is one of the integer types.
func (c ComponentType) IsInteger() bool {
	return c >= ComponentUChar && c <= ComponentLong
}

// IsValid reports whether c is a known type other than ComponentUnknown.
func (c ComponentType) IsValid() bool {
	return c >= ComponentUChar && c <= ComponentDouble
}

// RemoveUnsigned maps an unsigned integer type to its signed counterpart.
func (c ComponentType) RemoveUnsigned() ComponentType {
	switch c {
	case ComponentUChar:
		return ComponentChar
	case ComponentUShort:
		return ComponentShort
	case ComponentUInt:
		return ComponentInt
	case ComponentULong:
		return ComponentLong
	default:
		return c
	}
}

var componentRank = map[ComponentType]int{
	ComponentChar:   1,
	ComponentShort:  2,
	ComponentInt:    3,
	ComponentLong:   4,
	ComponentFloat:  5,
	ComponentDouble: 6,
}

// LargestComponentType returns whichever of a and b ranks higher in
// char < short < int < long < float < double. Signedness is ignored for the
// ranking; when both rank the same, a is returned unchanged.
func LargestComponentType(a, b ComponentType) ComponentType {
	ca, cb := a.RemoveUnsigned(), b.RemoveUnsigned()
	if ca == cb {
		return a
	}
	if componentRank[ca] > componentRank[cb] {
		return a
	}
	return b
}

// StringIsInteger reports whether arg has no decimal point.
func StringIsInteger(arg string) bool {
	return !strings.Contains(arg, ".")
}

// ReplaceUnderscoreWithSpace replaces the first "_" in arg with a space.
func ReplaceUnderscoreWithSpace(arg string) string {
	return strings.Replace(arg, "_", " ", 1)
}

// ReplaceSpaceWithUnderscore replaces the first space in arg with "_".
func ReplaceSpaceWithUnderscore(arg string) string {
	return strings.Replace(arg, " ", "_", 1)
}

// RemoveUnsignedFromString strips an "unsigned " or "unsigned_" prefix and
// anything before it.
func RemoveUnsignedFromString(arg string) string {
	for _, prefix := range []string{"unsigned ", "unsigned_"} {
		if i := strings.Index(arg, prefix); i >= 0 {
			arg = arg[i+len(prefix):]
		}
	}
	return arg
}
