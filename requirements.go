// requirements.go: Required-argument and exactly-one-of validation
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package cmdline

import (
	"fmt"
	"strings"

	"github.com/agilira/go-errors"
	"github.com/fatih/color"
)

// Verdict is the outcome of CheckForRequiredArguments.
type Verdict int

const (
	// VerdictUnvalidated is the zero value, before validation ran.
	VerdictUnvalidated Verdict = iota
	VerdictPassed
	VerdictFailed
	VerdictHelpRequested
)

func (v Verdict) String() string {
	switch v {
	case VerdictUnvalidated:
		return "UNVALIDATED"
	case VerdictPassed:
		return "PASSED"
	case VerdictFailed:
		return "FAILED"
	case VerdictHelpRequested:
		return "HELPREQUESTED"
	default:
		return "UNKNOWN"
	}
}

// ExitCode maps a verdict to the process exit status used by the tools:
// 0 for passed and help, 1 otherwise.
func ExitCode(v Verdict) int {
	switch v {
	case VerdictPassed, VerdictHelpRequested:
		return 0
	default:
		return 1
	}
}

// RequiredArgument is a flag that must be present.
type RequiredArgument struct {
	Flag        string
	Description string
}

// RequiredExactlyOneGroup is a set of flags of which exactly one must be
// present.
type RequiredExactlyOneGroup struct {
	Flags       []string
	Description string
}

// Violation describes one broken rule.
type Violation struct {
	Code        string
	Flags       []string
	Description string
	// Present is the number of group flags found; always 0 for a missing
	// required argument.
	Present int
	Err     error
}

// RequirementReport is the detailed result of Validate.
type RequirementReport struct {
	Verdict    Verdict
	Violations []Violation
}

// Err returns nil for a passed report, ErrHelpRequested when help was asked
// for, and the first violation otherwise.
func (r RequirementReport) Err() error {
	switch r.Verdict {
	case VerdictPassed:
		return nil
	case VerdictHelpRequested:
		return ErrHelpRequested
	}
	if len(r.Violations) > 0 {
		return r.Violations[0].Err
	}
	return errors.New(ErrCodeInvalidArgument, "arguments not validated")
}

// String returns a one-line summary.
func (r RequirementReport) String() string {
	if r.Verdict == VerdictFailed {
		return fmt.Sprintf("%s: %d violation(s)", r.Verdict, len(r.Violations))
	}
	return r.Verdict.String()
}

// MarkArgumentAsRequired registers flag as mandatory. description is shown
// when it is missing.
func (p *Parser) MarkArgumentAsRequired(flag, description string) {
	p.required = append(p.required, RequiredArgument{Flag: flag, Description: description})
}

// MarkExactlyOneOfArgumentsAsRequired registers a group of flags of which
// exactly one must be given.
func (p *Parser) MarkExactlyOneOfArgumentsAsRequired(description string, flags ...string) {
	group := RequiredExactlyOneGroup{
		Flags:       append([]string(nil), flags...),
		Description: description,
	}
	p.groups = append(p.groups, group)
}

// RequiredArguments returns the registered required flags in order.
func (p *Parser) RequiredArguments() []RequiredArgument {
	return append([]RequiredArgument(nil), p.required...)
}

// RequiredExactlyOneGroups returns the registered groups in order.
func (p *Parser) RequiredExactlyOneGroups() []RequiredExactlyOneGroup {
	return append([]RequiredExactlyOneGroup(nil), p.groups...)
}

// ExactlyOneExists reports whether exactly one of keys is present.
func (p *Parser) ExactlyOneExists(keys ...string) bool {
	return p.countPresent(keys) == 1
}

func (p *Parser) countPresent(keys []string) int {
	count := 0
	for _, key := range keys {
		if p.ArgumentExists(key) {
			count++
		}
	}
	return count
}

// Validate evaluates help requests and every registered rule without
// printing anything. All rules are checked even after the first failure.
func (p *Parser) Validate() RequirementReport {
	if p.WantsHelp() {
		return RequirementReport{Verdict: VerdictHelpRequested}
	}

	report := RequirementReport{Verdict: VerdictPassed}
	p.validateRequired(&report)
	p.validateGroups(&report)

	if len(report.Violations) > 0 {
		report.Verdict = VerdictFailed
	}
	return report
}

func (p *Parser) validateRequired(report *RequirementReport) {
	for _, req := range p.required {
		if p.ArgumentExists(req.Flag) {
			continue
		}
		report.Violations = append(report.Violations, Violation{
			Code:        ErrCodeMissingRequired,
			Flags:       []string{req.Flag},
			Description: req.Description,
			Err: errors.New(ErrCodeMissingRequired, "argument "+req.Flag+" is required but not specified").
				WithContext("flag", req.Flag),
		})
	}
}

func (p *Parser) validateGroups(report *RequirementReport) {
	for _, group := range p.groups {
		present := p.countPresent(group.Flags)
		if present == 1 {
			continue
		}
		report.Violations = append(report.Violations, Violation{
			Code:        ErrCodeAmbiguousGroup,
			Flags:       append([]string(nil), group.Flags...),
			Description: group.Description,
			Present:     present,
			Err: errors.New(ErrCodeAmbiguousGroup,
				fmt.Sprintf("exactly one of %s is required, %d specified", strings.Join(group.Flags, ", "), present)).
				WithContext("flags", group.Flags).
				WithContext("present", present),
		})
	}
}

// CheckForRequiredArguments validates the command line and reports the
// outcome: help text goes to the configured stdout, every violation goes to
// stderr. The verdict is also sent to the auditor, if any.
func (p *Parser) CheckForRequiredArguments() Verdict {
	report := p.Validate()

	switch report.Verdict {
	case VerdictHelpRequested:
		p.PrintHelp()
	case VerdictFailed:
		p.printViolations(report.Violations)
	}

	if p.auditor != nil {
		p.auditor.LogValidation(p.argv.Program(), report)
	}
	return report.Verdict
}

func (p *Parser) printViolations(violations []Violation) {
	label := color.New(color.FgRed, color.Bold)
	if p.config.NoColor {
		label.DisableColor()
	}
	w := p.config.Stderr

	for _, v := range violations {
		_, _ = label.Fprint(w, "ERROR:")
		switch v.Code {
		case ErrCodeMissingRequired:
			_, _ = fmt.Fprintf(w, " Argument %s is required but not specified.\n", v.Flags[0])
			_, _ = fmt.Fprintf(w, "  This argument is: %s\n", v.Description)
		default:
			_, _ = fmt.Fprintf(w, " Exactly one of the arguments %s is required, but %d were specified.\n",
				strings.Join(v.Flags, ", "), v.Present)
			_, _ = fmt.Fprintf(w, "  These arguments are: %s\n", v.Description)
		}
	}
}
