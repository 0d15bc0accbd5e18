// extract.go: Type-generic extraction of flag values
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package cmdline

import (
	"github.com/agilira/go-errors"
)

// Value lists the types a flag value can be extracted as.
type Value interface {
	string |
		int | int8 | int16 | int32 | int64 |
		uint | uint8 | uint16 | uint32 | uint64 |
		float32 | float64
}

// LookupList extracts the values following key into dst.
//
// The length of *dst on entry is how callers pass defaults:
//   - if *dst holds more than one element and exactly one value was given,
//     every element is replaced by that value (a single "-r 5" fills an
//     N-dimensional radius);
//   - otherwise *dst is grown to max(len(*dst), number of values) and the
//     values are written from index 0, leaving later defaults in place.
//
// On error *dst is not modified. The error carries CMDLINE_KEY_NOT_FOUND when
// key is absent, CMDLINE_KEY_NOT_USABLE when it has no values and
// CMDLINE_MALFORMED_VALUE when a token fails strict numeric conversion.
func LookupList[T Value](p *Parser, key string, dst *[]T) error {
	span, ok := p.FindKey(key)
	if !ok {
		if !p.ArgumentExists(key) {
			return errors.Wrap(ErrKeyNotFound, ErrCodeKeyNotFound, "argument "+key+" not specified").
				WithContext("key", key)
		}
		err := errors.Wrap(ErrKeyNotUsable, ErrCodeKeyNotUsable, "argument "+key+" has no values").
			WithContext("key", key)
		p.auditExtraction(key, err)
		return err
	}

	tokens := p.values(span)
	parsed := make([]T, len(tokens))
	for i, token := range tokens {
		v, err := convertToken[T](token, p.config.NumericMode)
		if err != nil {
			err = errors.Wrap(err, ErrCodeMalformedValue, "invalid value for argument "+key).
				WithContext("key", key).
				WithContext("value", token).
				WithContext("position", i)
			p.auditExtraction(key, err)
			return err
		}
		parsed[i] = v
	}

	*dst = fillValues(*dst, parsed)
	return nil
}

// GetList is LookupList reduced to a found/not-found answer.
func GetList[T Value](p *Parser, key string, dst *[]T) bool {
	return LookupList(p, key, dst) == nil
}

// Lookup extracts the first value following key into dst. *dst is the
// default and is left unchanged on error.
func Lookup[T Value](p *Parser, key string, dst *T) error {
	list := []T{*dst}
	if err := LookupList(p, key, &list); err != nil {
		return err
	}
	if len(list) == 0 {
		return errors.New(ErrCodeKeyNotUsable, "argument "+key+" has no values").
			WithContext("key", key)
	}
	*dst = list[0]
	return nil
}

// Get is Lookup reduced to a found/not-found answer.
func Get[T Value](p *Parser, key string, dst *T) bool {
	return Lookup(p, key, dst) == nil
}

// fillValues applies the broadcast and positional rules described on
// LookupList. values is never empty.
func fillValues[T any](dst, values []T) []T {
	oldSize := len(dst)

	if oldSize > 1 && len(values) == 1 {
		out := make([]T, oldSize)
		for i := range out {
			out[i] = values[0]
		}
		return out
	}

	out := make([]T, max(oldSize, len(values)))
	copy(out, dst)
	copy(out, values)
	return out
}

func (p *Parser) auditExtraction(key string, err error) {
	if p.auditor == nil {
		return
	}
	p.auditor.LogExtractionFailure(p.argv.Program(), key, err)
}
