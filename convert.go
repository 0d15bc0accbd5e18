// convert.go: Token to value conversion for the typed extractor
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package cmdline

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/agilira/go-errors"
)

// convertToken converts one value token to T according to mode.
func convertToken[T Value](token string, mode NumericMode) (T, error) {
	var out T
	var err error

	switch ptr := any(&out).(type) {
	case *string:
		*ptr = token
	case *int:
		err = setSigned(ptr, token, strconv.IntSize, mode)
	case *int8:
		err = setSigned(ptr, token, 8, mode)
	case *int16:
		err = setSigned(ptr, token, 16, mode)
	case *int32:
		err = setSigned(ptr, token, 32, mode)
	case *int64:
		err = setSigned(ptr, token, 64, mode)
	case *uint:
		err = setUnsigned(ptr, token, strconv.IntSize, mode)
	case *uint8:
		err = setUnsigned(ptr, token, 8, mode)
	case *uint16:
		err = setUnsigned(ptr, token, 16, mode)
	case *uint32:
		err = setUnsigned(ptr, token, 32, mode)
	case *uint64:
		err = setUnsigned(ptr, token, 64, mode)
	case *float32:
		err = setFloat(ptr, token, 32, mode)
	case *float64:
		err = setFloat(ptr, token, 64, mode)
	default:
		err = errors.New(ErrCodeInvalidArgument, fmt.Sprintf("unsupported value type %T", out))
	}

	return out, err
}

func setSigned[I int | int8 | int16 | int32 | int64](dst *I, token string, bits int, mode NumericMode) error {
	if mode == NumericStrict {
		v, err := strconv.ParseInt(token, 10, bits)
		if err != nil {
			return malformed(token, err)
		}
		*dst = I(v)
		return nil
	}
	*dst = I(leadingInt(token))
	return nil
}

func setUnsigned[U uint | uint8 | uint16 | uint32 | uint64](dst *U, token string, bits int, mode NumericMode) error {
	if mode == NumericStrict {
		v, err := strconv.ParseUint(token, 10, bits)
		if err != nil {
			return malformed(token, err)
		}
		*dst = U(v)
		return nil
	}
	// A negative value wraps around, as a cast from a signed integer would.
	*dst = U(leadingInt(token))
	return nil
}

func setFloat[F float32 | float64](dst *F, token string, bits int, mode NumericMode) error {
	if mode == NumericStrict {
		v, err := strconv.ParseFloat(token, bits)
		if err != nil {
			return malformed(token, err)
		}
		*dst = F(v)
		return nil
	}
	*dst = F(leadingFloat(token))
	return nil
}

func malformed(token string, err error) error {
	return errors.Wrap(err, ErrCodeMalformedValue, "malformed numeric value '"+token+"'").
		WithContext("token", token)
}

// leadingInt parses the longest decimal integer prefix of s after leading
// white space. It returns 0 when there is none and saturates on overflow.
func leadingInt(s string) int64 {
	s = strings.TrimLeft(s, " \t\n\v\f\r")
	end := 0
	if end < len(s) && (s[end] == '+' || s[end] == '-') {
		end++
	}
	digits := end
	for end < len(s) && isDigit(s[end]) {
		end++
	}
	if end == digits {
		return 0
	}
	// ParseInt returns the saturated value together with ErrRange.
	v, _ := strconv.ParseInt(s[:end], 10, 64)
	return v
}

// leadingFloat parses the longest floating-point prefix of s after leading
// white space: an optional sign, digits with an optional fraction, and an
// optional exponent, or one of "inf", "infinity", "nan". It returns 0 when
// there is no such prefix.
func leadingFloat(s string) float64 {
	s = strings.TrimLeft(s, " \t\n\v\f\r")
	end := 0
	if end < len(s) && (s[end] == '+' || s[end] == '-') {
		end++
	}

	rest := strings.ToLower(s[end:])
	for _, word := range []string{"infinity", "inf", "nan"} {
		if strings.HasPrefix(rest, word) {
			v, _ := strconv.ParseFloat(s[:end+len(word)], 64)
			return v
		}
	}

	mantissa := 0
	for end < len(s) && isDigit(s[end]) {
		end++
		mantissa++
	}
	if end < len(s) && s[end] == '.' {
		end++
		for end < len(s) && isDigit(s[end]) {
			end++
			mantissa++
		}
	}
	if mantissa == 0 {
		return 0
	}

	if end < len(s) && (s[end] == 'e' || s[end] == 'E') {
		exp := end + 1
		if exp < len(s) && (s[exp] == '+' || s[exp] == '-') {
			exp++
		}
		if exp < len(s) && isDigit(s[exp]) {
			for exp < len(s) && isDigit(s[exp]) {
				exp++
			}
			end = exp
		}
	}

	// On overflow ParseFloat returns ±Inf together with ErrRange.
	v, _ := strconv.ParseFloat(s[:end], 64)
	return v
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }
