// Command itktools runs the image tool catalogue.
//
// Invoked through a link named after a tool (pxcastconvert, pxpca, ...), or
// as "itktools <tool> [arguments]", it validates the arguments of that tool
// and emits the resolved plan. Any other first word selects a management
// command: list, describe, check, audit, config, info or completion.
//
// Global options precede the tool or command name:
//
//	itktools --strict-numbers --audit-file=/var/log/itktools.db pxpca -in a.mhd b.mhd
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/agilira/cmdline"
	"github.com/agilira/cmdline/cmd/cli"
	"github.com/agilira/cmdline/internal/tools"
	"github.com/fatih/color"
)

func main() {
	os.Exit(run(os.Args, os.Stdout, os.Stderr))
}

// run dispatches args and returns the process exit code. args[0] is the name
// the binary was invoked by.
func run(args []string, stdout, stderr io.Writer) int {
	if len(args) == 0 {
		args = []string{"itktools"}
	}
	base := filepath.Base(args[0])
	catalogue := tools.Default()

	// Linked as a tool binary: every argument belongs to the tool.
	if tool, err := catalogue.Lookup(base); err == nil {
		config, err := cmdline.LoadConfigMultiSource("")
		if err != nil {
			return fail(stderr, base, err, false)
		}
		config.Stdout, config.Stderr = stdout, stderr
		return invoke(tool, args, *config)
	}

	settings := cmdline.NewSettings("itktools", cli.Version)
	rest, err := settings.Parse(args[1:])
	if err != nil {
		return fail(stderr, base, err, false)
	}

	config, err := cmdline.LoadConfigMultiSource(settings.ConfigFile())
	if err != nil {
		return fail(stderr, base, err, false)
	}
	if err := settings.Apply(config); err != nil {
		return fail(stderr, base, err, config.NoColor)
	}
	config.Stdout, config.Stderr = stdout, stderr

	if len(rest) > 0 {
		if tool, err := catalogue.Lookup(rest[0]); err == nil {
			return invoke(tool, rest, *config)
		}
	}

	manager := cli.NewManager().WithConfig(*config).WithOutput(stdout)
	if config.Audit.Enabled {
		auditLogger, err := cmdline.NewAuditLogger(config.Audit)
		if err != nil {
			return fail(stderr, base, err, config.NoColor)
		}
		defer func() { _ = auditLogger.Close() }()
		manager.WithAudit(auditLogger)
	}

	if err := manager.Run(rest); err != nil {
		return fail(stderr, base, err, config.NoColor)
	}
	return 0
}

// invoke runs one tool. args[0] is the name the tool was called by.
func invoke(tool *tools.Tool, args []string, config cmdline.Config) int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	opts := tools.InvokeOptions{
		Config: config,
		Runner: tools.NewPlanWriter(config.Stdout),
	}
	if config.Audit.Enabled {
		auditLogger, err := cmdline.NewAuditLogger(config.Audit)
		if err != nil {
			return fail(config.Stderr, tool.Name, err, config.NoColor)
		}
		defer func() { _ = auditLogger.Close() }()
		opts.Auditor = auditLogger
	}

	invocation := append([]string{tool.Name}, args[1:]...)
	verdict, err := tool.Invoke(ctx, invocation, opts)
	if err != nil {
		return fail(config.Stderr, tool.Name, err, config.NoColor)
	}
	return cmdline.ExitCode(verdict)
}

func fail(w io.Writer, name string, err error, noColor bool) int {
	label := color.New(color.FgRed, color.Bold)
	if noColor {
		label.DisableColor()
	}
	_, _ = label.Fprint(w, "ERROR:")
	fmt.Fprintf(w, " %s: %v\n", name, err)
	return 1
}
