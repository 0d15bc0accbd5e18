// requirements_test.go: Tests for validation verdicts and diagnostics
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package cmdline

import (
	"bytes"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

// newTestParser returns a parser writing to buffers, without colour.
func newTestParser(args ...string) (*Parser, *bytes.Buffer, *bytes.Buffer) {
	stdout, stderr := &bytes.Buffer{}, &bytes.Buffer{}
	p := NewWithConfig(args, Config{Stdout: stdout, Stderr: stderr, NoColor: true})
	return p, stdout, stderr
}

func TestHelpRequested(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"no arguments", []string{"pxtool"}},
		{"--help", []string{"pxtool", "-in", "x", "--help"}},
		{"-help", []string{"pxtool", "-help"}},
		{"--h", []string{"pxtool", "--h"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, stdout, stderr := newTestParser(tt.args...)
			p.MarkArgumentAsRequired("-out", "The output filename.")
			p.SetProgramHelpText("Usage: pxtool -in <file> -out <file>")

			if got := p.CheckForRequiredArguments(); got != VerdictHelpRequested {
				t.Fatalf("verdict = %s, want %s", got, VerdictHelpRequested)
			}
			if got := stdout.String(); got != "Usage: pxtool -in <file> -out <file>\n" {
				t.Errorf("stdout = %q", got)
			}
			if stderr.Len() != 0 {
				t.Errorf("help must not print errors, got %q", stderr.String())
			}
		})
	}
}

func TestDefaultHelpText(t *testing.T) {
	p, stdout, _ := newTestParser("pxtool")
	if p.ProgramHelpText() != DefaultHelpText {
		t.Errorf("ProgramHelpText() = %q", p.ProgramHelpText())
	}

	p.SetProgramHelpText("custom")
	p.SetProgramHelpText("")
	p.CheckForRequiredArguments()

	if got := stdout.String(); got != "No help text provided.\n" {
		t.Errorf("stdout = %q", got)
	}
}

func TestSingleDashHIsNotHelp(t *testing.T) {
	p, _, _ := newTestParser("pxtool", "-h")
	if p.WantsHelp() {
		t.Error("-h is not a help flag")
	}
}

func TestCustomHelpFlags(t *testing.T) {
	p := NewWithConfig([]string{"pxtool", "-?"}, Config{HelpFlags: []string{"-?"}, Stdout: &bytes.Buffer{}})
	if !p.WantsHelp() {
		t.Error("custom help flag not honoured")
	}
	p = NewWithConfig([]string{"pxtool", "--help"}, Config{HelpFlags: []string{"-?"}})
	if p.WantsHelp() {
		t.Error("--help should not request help when help flags are overridden")
	}
}

func TestMissingRequiredArgument(t *testing.T) {
	p, stdout, stderr := newTestParser("pxtool", "-in", "a.mhd")
	p.MarkArgumentAsRequired("-in", "The input filename.")
	p.MarkArgumentAsRequired("-out", "The output filename.")

	if got := p.CheckForRequiredArguments(); got != VerdictFailed {
		t.Fatalf("verdict = %s, want %s", got, VerdictFailed)
	}

	want := "ERROR: Argument -out is required but not specified.\n" +
		"  This argument is: The output filename.\n"
	if got := stderr.String(); got != want {
		t.Errorf("stderr mismatch\n got: %q\nwant: %q", got, want)
	}
	if stdout.Len() != 0 {
		t.Errorf("stdout should be empty, got %q", stdout.String())
	}
}

func TestExactlyOneGroup(t *testing.T) {
	tests := []struct {
		name        string
		args        []string
		wantVerdict Verdict
		wantPresent int
	}{
		{"none given", []string{"pxcreatebox", "-out", "x"}, VerdictFailed, 0},
		{"both given", []string{"pxcreatebox", "-c", "1", "-cp1", "2"}, VerdictFailed, 2},
		{"one given", []string{"pxcreatebox", "-cp1", "2"}, VerdictPassed, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, _, stderr := newTestParser(tt.args...)
			p.MarkExactlyOneOfArgumentsAsRequired("The box definition.", "-c", "-cp1")

			if p.ExactlyOneExists("-c", "-cp1") != (tt.wantPresent == 1) {
				t.Errorf("ExactlyOneExists disagrees with present count %d", tt.wantPresent)
			}

			report := p.Validate()
			if report.Verdict != tt.wantVerdict {
				t.Fatalf("verdict = %s, want %s", report.Verdict, tt.wantVerdict)
			}
			if tt.wantVerdict == VerdictPassed {
				return
			}

			if len(report.Violations) != 1 || report.Violations[0].Present != tt.wantPresent {
				t.Fatalf("violations = %+v", report.Violations)
			}

			p.CheckForRequiredArguments()
			out := stderr.String()
			if !strings.Contains(out, "Exactly one of the arguments -c, -cp1 is required") {
				t.Errorf("missing group message: %q", out)
			}
			if !strings.Contains(out, "These arguments are: The box definition.") {
				t.Errorf("missing group description: %q", out)
			}
		})
	}
}

func TestValidateReportsEveryViolation(t *testing.T) {
	p, _, stderr := newTestParser("pxtool", "-a", "-b", "-x")
	p.MarkArgumentAsRequired("-in", "input")
	p.MarkArgumentAsRequired("-out", "output")
	p.MarkExactlyOneOfArgumentsAsRequired("a or b", "-a", "-b")
	p.MarkExactlyOneOfArgumentsAsRequired("c or d", "-c", "-d")

	report := p.Validate()
	if report.Verdict != VerdictFailed {
		t.Fatalf("verdict = %s", report.Verdict)
	}

	var codes []string
	for _, v := range report.Violations {
		codes = append(codes, v.Code)
	}
	want := []string{ErrCodeMissingRequired, ErrCodeMissingRequired, ErrCodeAmbiguousGroup, ErrCodeAmbiguousGroup}
	if diff := cmp.Diff(want, codes); diff != "" {
		t.Errorf("violation codes mismatch (-want +got):\n%s", diff)
	}

	if stderr.Len() != 0 {
		t.Error("Validate must not print")
	}
	if !IsCode(report.Err(), ErrCodeMissingRequired) {
		t.Errorf("Err() = %v", report.Err())
	}
	if report.String() != "FAILED: 4 violation(s)" {
		t.Errorf("String() = %q", report.String())
	}

	p.CheckForRequiredArguments()
	if n := strings.Count(stderr.String(), "ERROR:"); n != 4 {
		t.Errorf("expected 4 printed errors, got %d:\n%s", n, stderr.String())
	}
}

func TestCheckSendsVerdictToAuditor(t *testing.T) {
	auditor := &recordingAuditor{}
	p, _, _ := newTestParser("pxtool", "-in", "x")
	p.WithAudit(auditor)
	p.MarkArgumentAsRequired("-in", "input")

	if got := p.CheckForRequiredArguments(); got != VerdictPassed {
		t.Fatalf("verdict = %s", got)
	}
	if len(auditor.reports) != 1 || auditor.reports[0].Verdict != VerdictPassed {
		t.Errorf("auditor reports = %+v", auditor.reports)
	}
}

func TestColouredLabel(t *testing.T) {
	stderr := &bytes.Buffer{}
	p := NewWithConfig([]string{"pxtool", "-x"}, Config{Stderr: stderr})
	p.MarkArgumentAsRequired("-in", "input")

	p.CheckForRequiredArguments()
	if !strings.Contains(stderr.String(), "Argument -in is required but not specified.") {
		t.Errorf("stderr = %q", stderr.String())
	}
}

func TestRegisteredRulesAreCopies(t *testing.T) {
	p := New([]string{"pxtool"})
	flags := []string{"-a", "-b"}
	p.MarkExactlyOneOfArgumentsAsRequired("group", flags...)
	flags[0] = "-changed"

	groups := p.RequiredExactlyOneGroups()
	if groups[0].Flags[0] != "-a" {
		t.Errorf("group flags alias caller slice: %v", groups[0].Flags)
	}
	groups[0].Description = "mutated"
	if p.RequiredExactlyOneGroups()[0].Description != "group" {
		t.Error("RequiredExactlyOneGroups must return a copy")
	}
}

func TestVerdictStringsAndExitCodes(t *testing.T) {
	tests := []struct {
		verdict Verdict
		str     string
		code    int
	}{
		{VerdictUnvalidated, "UNVALIDATED", 1},
		{VerdictPassed, "PASSED", 0},
		{VerdictFailed, "FAILED", 1},
		{VerdictHelpRequested, "HELPREQUESTED", 0},
	}
	for _, tt := range tests {
		if got := tt.verdict.String(); got != tt.str {
			t.Errorf("String() = %q, want %q", got, tt.str)
		}
		if got := ExitCode(tt.verdict); got != tt.code {
			t.Errorf("ExitCode(%s) = %d, want %d", tt.verdict, got, tt.code)
		}
	}

	var zero Verdict
	if zero != VerdictUnvalidated {
		t.Error("zero Verdict must be VerdictUnvalidated")
	}
}

func TestReportErr(t *testing.T) {
	if err := (RequirementReport{Verdict: VerdictPassed}).Err(); err != nil {
		t.Errorf("passed report Err() = %v", err)
	}
	if err := (RequirementReport{Verdict: VerdictHelpRequested}).Err(); !IsCode(err, ErrCodeHelpRequested) {
		t.Errorf("help report Err() = %v", err)
	}
	if err := (RequirementReport{}).Err(); err == nil {
		t.Error("unvalidated report must return an error")
	}
}
