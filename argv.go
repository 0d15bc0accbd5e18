// argv.go: Immutable argument vector for the cmdline parser
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package cmdline

import (
	"github.com/agilira/go-errors"
	"github.com/google/shlex"
)

// Argv is the ordered, immutable sequence of raw process arguments.
// Index 0 is the program name and is never scanned for flags.
type Argv struct {
	tokens []string
}

// NewArgv copies args into a new Argv. Later changes to args are not
// visible through the returned value.
func NewArgv(args []string) Argv {
	tokens := make([]string, len(args))
	copy(tokens, args)
	return Argv{tokens: tokens}
}

// SplitCommandLine tokenizes a shell-quoted command line, including the
// program name, into an Argv.
func SplitCommandLine(line string) (Argv, error) {
	tokens, err := shlex.Split(line)
	if err != nil {
		return Argv{}, errors.Wrap(err, ErrCodeInvalidArgument, "cannot split command line").
			WithContext("line", line)
	}
	return Argv{tokens: tokens}, nil
}

// Len returns the number of tokens, program name included.
func (a Argv) Len() int { return len(a.tokens) }

// At returns the token at index i.
func (a Argv) At(i int) string { return a.tokens[i] }

// Program returns the program name, or "" for an empty Argv.
func (a Argv) Program() string {
	if len(a.tokens) == 0 {
		return ""
	}
	return a.tokens[0]
}

// Tokens returns a copy of all tokens.
func (a Argv) Tokens() []string {
	out := make([]string, len(a.tokens))
	copy(out, a.tokens)
	return out
}

// HasArguments reports whether anything follows the program name.
func (a Argv) HasArguments() bool { return len(a.tokens) > 1 }
