// config_validation.go: Configuration validation for cmdline
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package cmdline

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/agilira/go-errors"
)

// Validation errors
var (
	ErrInvalidHelpFlag      = errors.New(ErrCodeInvalidConfig, "help flags must start with '-'")
	ErrInvalidNumericMode   = errors.New(ErrCodeInvalidConfig, "unknown numeric mode")
	ErrInvalidAuditLevel    = errors.New(ErrCodeInvalidAuditConfig, "unknown audit level")
	ErrInvalidBufferSize    = errors.New(ErrCodeInvalidAuditConfig, "audit buffer size must not be negative")
	ErrInvalidFlushInterval = errors.New(ErrCodeInvalidAuditConfig, "audit flush interval must not be negative")
	ErrInvalidOutputFile    = errors.New(ErrCodeInvalidAuditConfig, "audit output file must be a .db or .jsonl path")
	ErrUnwritableOutputFile = errors.New(ErrCodeInvalidAuditConfig, "audit output directory is not writable")
)

// ValidationResult contains the result of configuration validation.
type ValidationResult struct {
	Valid    bool     `json:"valid" yaml:"valid"`
	Errors   []string `json:"errors,omitempty" yaml:"errors,omitempty"`
	Warnings []string `json:"warnings,omitempty" yaml:"warnings,omitempty"`

	// first error value, returned by Validate
	err error
}

// String returns a human-readable representation of validation results
func (vr ValidationResult) String() string {
	if vr.Valid {
		if len(vr.Warnings) == 0 {
			return "Configuration is valid"
		}
		return fmt.Sprintf("Configuration is valid with %d warning(s)", len(vr.Warnings))
	}
	return fmt.Sprintf("Configuration is invalid: %d error(s), %d warning(s)",
		len(vr.Errors), len(vr.Warnings))
}

func (vr *ValidationResult) addError(err error, detail string) {
	msg := err.Error()
	if detail != "" {
		msg += ": " + detail
	}
	vr.Errors = append(vr.Errors, msg)
	if vr.err == nil {
		vr.err = err
	}
}

// Validate returns the first configuration error, or nil.
func (c *Config) Validate() error {
	result := c.ValidateDetailed()
	if !result.Valid {
		return result.err
	}
	return nil
}

// ValidateDetailed returns every error and warning found in the
// configuration.
func (c *Config) ValidateDetailed() ValidationResult {
	result := ValidationResult{
		Valid:    true,
		Errors:   make([]string, 0),
		Warnings: make([]string, 0),
	}

	c.validateHelp(&result)
	c.validateNumericMode(&result)
	c.validateAuditConfig(&result)

	result.Valid = len(result.Errors) == 0
	return result
}

func (c *Config) validateHelp(result *ValidationResult) {
	for _, flag := range c.HelpFlags {
		if !strings.HasPrefix(flag, "-") || IsNumericToken(flag) {
			result.addError(ErrInvalidHelpFlag, fmt.Sprintf("%q", flag))
		}
	}

	if c.HelpText == "" {
		result.Warnings = append(result.Warnings,
			"No help text set, tools will print \""+DefaultHelpText+"\"")
	}
}

func (c *Config) validateNumericMode(result *ValidationResult) {
	if c.NumericMode != NumericLenient && c.NumericMode != NumericStrict {
		result.addError(ErrInvalidNumericMode, c.NumericMode.String())
	}
}

func (c *Config) validateAuditConfig(result *ValidationResult) {
	if !c.Audit.Enabled {
		return
	}

	if c.Audit.MinLevel < AuditInfo || c.Audit.MinLevel > AuditCritical {
		result.addError(ErrInvalidAuditLevel, c.Audit.MinLevel.String())
	}

	if c.Audit.BufferSize < 0 {
		result.addError(ErrInvalidBufferSize, "")
	} else if c.Audit.BufferSize > 10000 {
		result.Warnings = append(result.Warnings,
			"Large audit buffer may lose many events if the process is killed")
	}

	if c.Audit.FlushInterval < 0 {
		result.addError(ErrInvalidFlushInterval, "")
	}

	if c.Audit.OutputFile != "" {
		if err := validateOutputFile(c.Audit.OutputFile); err != nil {
			result.addError(err, c.Audit.OutputFile)
		}
	}
}

// validateOutputFile checks the extension and that the parent directory
// exists and is a directory, or can be created.
func validateOutputFile(outputFile string) error {
	cleanPath := filepath.Clean(outputFile)
	switch filepath.Ext(cleanPath) {
	case ".db", ".jsonl":
	default:
		return ErrInvalidOutputFile
	}

	dir := filepath.Dir(cleanPath)
	info, err := os.Stat(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil // created on first use
		}
		return ErrUnwritableOutputFile
	}
	if !info.IsDir() {
		return ErrUnwritableOutputFile
	}
	return nil
}
