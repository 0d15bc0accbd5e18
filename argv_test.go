// argv_test.go: Tests for the argument vector
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package cmdline

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestNewArgvCopiesInput(t *testing.T) {
	args := []string{"pxtool", "-in", "a.mhd"}
	argv := NewArgv(args)
	args[1] = "-out"

	if argv.At(1) != "-in" {
		t.Errorf("Argv must not alias its input, got %q", argv.At(1))
	}

	tokens := argv.Tokens()
	tokens[0] = "changed"
	if argv.Program() != "pxtool" {
		t.Errorf("Tokens must return a copy, program is now %q", argv.Program())
	}
}

func TestArgvAccessors(t *testing.T) {
	tests := []struct {
		name         string
		args         []string
		wantProgram  string
		wantLen      int
		hasArguments bool
	}{
		{"empty", nil, "", 0, false},
		{"program only", []string{"pxtool"}, "pxtool", 1, false},
		{"with arguments", []string{"pxtool", "-in", "x"}, "pxtool", 3, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			argv := NewArgv(tt.args)
			if got := argv.Program(); got != tt.wantProgram {
				t.Errorf("Program() = %q, want %q", got, tt.wantProgram)
			}
			if got := argv.Len(); got != tt.wantLen {
				t.Errorf("Len() = %d, want %d", got, tt.wantLen)
			}
			if got := argv.HasArguments(); got != tt.hasArguments {
				t.Errorf("HasArguments() = %v, want %v", got, tt.hasArguments)
			}
		})
	}
}

func TestSplitCommandLine(t *testing.T) {
	argv, err := SplitCommandLine(`pxcastconvert -in "my image.mhd" -out 'out file.nii' -opct float`)
	if err != nil {
		t.Fatalf("SplitCommandLine failed: %v", err)
	}

	want := []string{"pxcastconvert", "-in", "my image.mhd", "-out", "out file.nii", "-opct", "float"}
	if diff := cmp.Diff(want, argv.Tokens()); diff != "" {
		t.Errorf("tokens mismatch (-want +got):\n%s", diff)
	}
}

func TestSplitCommandLineUnterminatedQuote(t *testing.T) {
	_, err := SplitCommandLine(`pxtool -in "broken`)
	if err == nil {
		t.Fatal("Expected error for unterminated quote")
	}
	if !IsCode(err, ErrCodeInvalidArgument) {
		t.Errorf("Expected %s, got %v", ErrCodeInvalidArgument, err)
	}
}
