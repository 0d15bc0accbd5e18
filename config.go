// config.go: Configuration for the cmdline parser
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package cmdline

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/agilira/go-errors"
)

// DefaultHelpText is printed when a tool never registered its own help.
const DefaultHelpText = "No help text provided."

// DefaultHelpFlags are the tokens that short-circuit validation with
// VerdictHelpRequested.
var DefaultHelpFlags = []string{"--help", "-help", "--h"}

// NumericMode selects how integer and floating-point tokens are converted.
type NumericMode int

const (
	// NumericLenient parses the longest numeric prefix of a token and
	// yields 0 when there is none, so "12abc" reads as 12 and "abc" as 0.
	// Existing scripts rely on this.
	NumericLenient NumericMode = iota

	// NumericStrict rejects any token that is not entirely a valid number
	// of the target type with a CMDLINE_MALFORMED_VALUE error.
	NumericStrict
)

// String returns the mode name used in environment variables and flags.
func (m NumericMode) String() string {
	switch m {
	case NumericLenient:
		return "lenient"
	case NumericStrict:
		return "strict"
	default:
		return fmt.Sprintf("NumericMode(%d)", int(m))
	}
}

// ParseNumericMode maps "lenient" or "strict" (any case) to a NumericMode.
func ParseNumericMode(s string) (NumericMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "lenient":
		return NumericLenient, nil
	case "strict":
		return NumericStrict, nil
	default:
		return NumericLenient, errors.New(ErrCodeInvalidConfig, "unknown numeric mode: "+s)
	}
}

// Config configures a Parser. The zero value is usable after WithDefaults.
type Config struct {
	// HelpText is printed when help is requested.
	HelpText string

	// HelpFlags lists the tokens that request help.
	HelpFlags []string

	// NumericMode controls conversion of malformed numeric tokens.
	NumericMode NumericMode

	// Stdout receives help text, Stderr receives validation errors.
	Stdout io.Writer
	Stderr io.Writer

	// NoColor disables coloured diagnostics.
	NoColor bool

	// Audit configures the optional audit trail.
	Audit AuditConfig
}

// WithDefaults returns a copy of the configuration with unset fields filled in.
func (c *Config) WithDefaults() *Config {
	config := *c

	if config.HelpText == "" {
		config.HelpText = DefaultHelpText
	}

	if len(config.HelpFlags) == 0 {
		config.HelpFlags = append([]string(nil), DefaultHelpFlags...)
	}

	if config.Stdout == nil {
		config.Stdout = os.Stdout
	}
	if config.Stderr == nil {
		config.Stderr = os.Stderr
	}

	if config.Audit.BufferSize <= 0 {
		config.Audit.BufferSize = 100
	}

	return &config
}
