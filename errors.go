// errors.go: Error codes and sentinel errors for cmdline
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package cmdline

import (
	goerrors "errors"

	"github.com/agilira/go-errors"
)

// Error codes for cmdline operations
const (
	ErrCodeMissingRequired      = "CMDLINE_MISSING_REQUIRED"
	ErrCodeAmbiguousGroup       = "CMDLINE_AMBIGUOUS_GROUP"
	ErrCodeHelpRequested        = "CMDLINE_HELP_REQUESTED"
	ErrCodeMalformedValue       = "CMDLINE_MALFORMED_VALUE"
	ErrCodeKeyNotFound          = "CMDLINE_KEY_NOT_FOUND"
	ErrCodeKeyNotUsable         = "CMDLINE_KEY_NOT_USABLE"
	ErrCodeInvalidConfig        = "CMDLINE_INVALID_CONFIG"
	ErrCodeInvalidAuditConfig   = "CMDLINE_INVALID_AUDIT_CONFIG"
	ErrCodeUnknownComponentType = "CMDLINE_UNKNOWN_COMPONENT_TYPE"
	ErrCodeUnknownTool          = "CMDLINE_UNKNOWN_TOOL"
	ErrCodeInvalidArgument      = "CMDLINE_INVALID_ARGUMENT"
	ErrCodePipelineError        = "CMDLINE_PIPELINE_ERROR"
	ErrCodeIOError              = "CMDLINE_IO_ERROR"
)

// Sentinel errors. Use IsCode to compare, the values returned by the parser
// carry extra context.
var (
	ErrHelpRequested = errors.New(ErrCodeHelpRequested, "help requested")
	ErrKeyNotFound   = errors.New(ErrCodeKeyNotFound, "argument not specified")
	ErrKeyNotUsable  = errors.New(ErrCodeKeyNotUsable, "argument has no values")
)

// IsCode reports whether err carries the given cmdline error code.
func IsCode(err error, code string) bool {
	return ErrorCode(err) == code
}

// ErrorCode extracts the go-errors code from the first coded error in err's
// chain, or "" when there is none.
func ErrorCode(err error) string {
	var coder errors.ErrorCoder
	if goerrors.As(err, &coder) {
		return string(coder.ErrorCode())
	}
	return ""
}
