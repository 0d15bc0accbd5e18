// Command handlers for the catalogue management CLI
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package cli

import (
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/agilira/cmdline"
	"github.com/agilira/go-errors"
	"github.com/agilira/orpheus/pkg/orpheus"
)

// handleList prints every tool with its summary.
func (m *Manager) handleList(ctx *orpheus.Context) error {
	tw := tabwriter.NewWriter(m.out, 0, 4, 2, ' ', 0)
	for _, t := range m.catalogue.Tools() {
		fmt.Fprintf(tw, "%s\t%s\n", t.Name, t.Summary)
	}
	return tw.Flush()
}

// handleDescribe prints the rules and help text of one tool.
func (m *Manager) handleDescribe(ctx *orpheus.Context) error {
	name := ctx.GetArg(0)
	if name == "" {
		return errors.New(cmdline.ErrCodeInvalidArgument, "usage: describe <tool>")
	}
	tool, err := m.catalogue.Lookup(name)
	if err != nil {
		return err
	}

	desc := describeTool(tool)
	switch format := ctx.GetFlagString("format"); format {
	case "yaml":
		return writeYAML(m.out, desc)
	case "", "text":
		fmt.Fprintf(m.out, "%s: %s\n", desc.Name, desc.Summary)
		if len(desc.Required) > 0 {
			fmt.Fprintf(m.out, "\nRequired:\n")
			for _, r := range desc.Required {
				fmt.Fprintf(m.out, "  %-8s %s\n", r.Flag, r.Description)
			}
		}
		if len(desc.Groups) > 0 {
			fmt.Fprintf(m.out, "\nExactly one of:\n")
			for _, g := range desc.Groups {
				fmt.Fprintf(m.out, "  %s  %s\n", strings.Join(g.Flags, ", "), g.Description)
			}
		}
		fmt.Fprintf(m.out, "\n%s\n", desc.Help)
		return nil
	default:
		return errors.New(cmdline.ErrCodeInvalidArgument, "unsupported format: "+format)
	}
}

// handleCheck validates a quoted command line whose first word names the
// tool. The whole line must be a single positional argument.
func (m *Manager) handleCheck(ctx *orpheus.Context) error {
	line := strings.TrimSpace(ctx.GetArg(0))
	if line == "" {
		return errors.New(cmdline.ErrCodeInvalidArgument, `usage: check "<tool> <arguments>"`)
	}
	if extra := ctx.GetArg(1); extra != "" {
		return errors.New(cmdline.ErrCodeInvalidArgument,
			`check takes one quoted command line; quote the tool and its arguments together`).
			WithContext("unexpected", extra)
	}

	argv, err := cmdline.SplitCommandLine(line)
	if err != nil {
		return err
	}
	tool, err := m.catalogue.Lookup(argv.Program())
	if err != nil {
		return err
	}

	config := m.config
	if ctx.GetFlagBool("strict") {
		config.NumericMode = cmdline.NumericStrict
	}

	report, plan, err := tool.Check(argv, config)
	if m.auditLogger != nil {
		m.auditLogger.LogValidation(tool.Name, report)
	}

	fmt.Fprintf(m.out, "%s: %s\n", tool.Name, report.Verdict)
	for _, v := range report.Violations {
		fmt.Fprintf(m.out, "  %s %s: %s\n", v.Code, strings.Join(v.Flags, ", "), v.Description)
	}
	if err != nil {
		fmt.Fprintf(m.out, "  %s\n", err)
		return err
	}
	if report.Verdict == cmdline.VerdictFailed {
		return report.Err()
	}
	if plan != nil && ctx.GetFlagBool("plan") {
		return writeYAML(m.out, plan)
	}
	return nil
}

// handleAuditQuery lists audit events matching the filters.
func (m *Manager) handleAuditQuery(ctx *orpheus.Context) error {
	since, err := parseExtendedDuration(ctx.GetFlagString("since"))
	if err != nil {
		return errors.Wrap(err, cmdline.ErrCodeInvalidArgument, "invalid --since")
	}

	query := cmdline.AuditQuery{
		Tool:    ctx.GetFlagString("tool"),
		Event:   ctx.GetFlagString("event"),
		Verdict: strings.ToUpper(ctx.GetFlagString("verdict")),
		Since:   time.Now().Add(-since),
		Limit:   ctx.GetFlagInt("limit"),
	}

	events, err := cmdline.QueryAudit(m.auditPath(ctx), query)
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(m.out, 0, 4, 2, ' ', 0)
	for _, e := range events {
		detail := e.Verdict
		if e.Flag != "" {
			detail = e.Flag + " " + e.Code
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
			e.Timestamp.Format(time.RFC3339), e.Level, e.Event, e.Tool, detail)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	fmt.Fprintf(m.out, "%d event(s)\n", len(events))
	return nil
}

// handleAuditCleanup removes audit events older than --older-than.
func (m *Manager) handleAuditCleanup(ctx *orpheus.Context) error {
	maxAge, err := parseExtendedDuration(ctx.GetFlagString("older-than"))
	if err != nil {
		return errors.Wrap(err, cmdline.ErrCodeInvalidArgument, "invalid --older-than")
	}
	path := m.auditPath(ctx)

	if ctx.GetFlagBool("dry-run") {
		events, err := cmdline.QueryAudit(path, cmdline.AuditQuery{})
		if err != nil {
			return err
		}
		cutoff := time.Now().Add(-maxAge)
		count := 0
		for _, e := range events {
			if e.Timestamp.Before(cutoff) {
				count++
			}
		}
		fmt.Fprintf(m.out, "Would delete %d event(s) older than %s from %s\n", count, maxAge, path)
		return nil
	}

	removed, err := cmdline.CleanupAudit(path, maxAge)
	if err != nil {
		return err
	}
	fmt.Fprintf(m.out, "Deleted %d event(s) older than %s from %s\n", removed, maxAge, path)
	return nil
}

// handleAuditStats summarizes the audit store.
func (m *Manager) handleAuditStats(ctx *orpheus.Context) error {
	stats, err := cmdline.AuditStoreStats(m.auditPath(ctx))
	if err != nil {
		return err
	}
	return writeYAML(m.out, stats)
}

// handleConfigValidate validates a YAML configuration file.
func (m *Manager) handleConfigValidate(ctx *orpheus.Context) error {
	path := ctx.GetArg(0)
	if path == "" {
		return errors.New(cmdline.ErrCodeInvalidArgument, "usage: config validate <file>")
	}

	config, err := cmdline.LoadConfigFile(path)
	if err != nil {
		return err
	}

	result := config.ValidateDetailed()
	fmt.Fprintf(m.out, "%s\n", result)
	for _, e := range result.Errors {
		fmt.Fprintf(m.out, "  error: %s\n", e)
	}
	for _, w := range result.Warnings {
		fmt.Fprintf(m.out, "  warning: %s\n", w)
	}
	if !result.Valid {
		return config.Validate()
	}
	return nil
}

// handleInfo displays the version and effective configuration.
func (m *Manager) handleInfo(ctx *orpheus.Context) error {
	fmt.Fprintf(m.out, "itktools %s\n", Version)
	fmt.Fprintf(m.out, "Tools: %d\n", len(m.catalogue.Names()))
	fmt.Fprintf(m.out, "Numeric mode: %s\n", m.config.NumericMode)
	if m.config.Audit.Enabled {
		fmt.Fprintf(m.out, "Audit: enabled (%s, min level %s)\n", m.auditPath(ctx), m.config.Audit.MinLevel)
	} else {
		fmt.Fprintf(m.out, "Audit: disabled\n")
	}

	if ctx.GetFlagBool("verbose") {
		fmt.Fprintf(m.out, "Help flags: %s\n", strings.Join(m.config.HelpFlags, " "))
		fmt.Fprintf(m.out, "Colour: %v\n", !m.config.NoColor)
		if m.auditLogger != nil {
			fmt.Fprintf(m.out, "Invocation: %s\n", m.auditLogger.InvocationID())
		}
	}
	return nil
}

// handleCompletion generates shell completion scripts.
func (m *Manager) handleCompletion(ctx *orpheus.Context) error {
	shell := ctx.GetArg(0)
	words := strings.Join(append(commandNames(), m.catalogue.Names()...), " ")

	switch shell {
	case "bash":
		fmt.Fprintf(m.out, "# Bash completion for itktools\n")
		fmt.Fprintf(m.out, "# Add to ~/.bashrc: source <(itktools completion bash)\n")
		fmt.Fprintf(m.out, "_itktools_completion() {\n")
		fmt.Fprintf(m.out, "  COMPREPLY=($(compgen -W '%s' -- \"${COMP_WORDS[COMP_CWORD]}\"))\n", words)
		fmt.Fprintf(m.out, "}\n")
		fmt.Fprintf(m.out, "complete -F _itktools_completion itktools\n")
	case "zsh":
		fmt.Fprintf(m.out, "#compdef itktools\n")
		fmt.Fprintf(m.out, "# Add to ~/.zshrc: source <(itktools completion zsh)\n")
		fmt.Fprintf(m.out, "_itktools() {\n")
		fmt.Fprintf(m.out, "  _arguments '1: :(%s)'\n", words)
		fmt.Fprintf(m.out, "}\n")
	case "fish":
		fmt.Fprintf(m.out, "# Fish completion for itktools\n")
		fmt.Fprintf(m.out, "complete -c itktools -f -a '%s'\n", words)
	default:
		return errors.New(cmdline.ErrCodeInvalidArgument, fmt.Sprintf("unsupported shell: %s", shell))
	}

	return nil
}
