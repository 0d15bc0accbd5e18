// Package cli provides the management command line of the image tool
// catalogue.
//
// The Manager lists and describes tools, checks a command line against a
// tool without running it, and queries or prunes the audit trail. It is
// built on the Orpheus framework with git-style subcommands.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package cli

import (
	"io"
	"os"

	"github.com/agilira/cmdline"
	"github.com/agilira/cmdline/internal/tools"
	"github.com/agilira/orpheus/pkg/orpheus"
)

// Version is reported by the info command.
const Version = "1.0.0"

// Manager routes management commands.
type Manager struct {
	app         *orpheus.App
	catalogue   *tools.Catalogue
	config      cmdline.Config
	auditLogger *cmdline.AuditLogger // Optional audit integration
	out         io.Writer
}

// NewManager creates a manager over the built-in tool catalogue.
func NewManager() *Manager {
	app := orpheus.New("itktools").
		SetDescription("Command-line image tools: catalogue, argument checks and audit trail").
		SetVersion(Version)

	var config cmdline.Config
	manager := &Manager{
		app:       app,
		catalogue: tools.Default(),
		config:    *config.WithDefaults(),
		out:       os.Stdout,
	}

	manager.setupCatalogueCommands()
	manager.setupAuditCommands()
	manager.setupUtilityCommands()

	return manager
}

// WithAudit records management operations in auditLogger.
func (m *Manager) WithAudit(auditLogger *cmdline.AuditLogger) *Manager {
	m.auditLogger = auditLogger
	return m
}

// WithConfig sets the configuration used by check, audit and info.
func (m *Manager) WithConfig(config cmdline.Config) *Manager {
	m.config = *config.WithDefaults()
	return m
}

// WithOutput redirects command output, stdout by default.
func (m *Manager) WithOutput(w io.Writer) *Manager {
	m.out = w
	return m
}

// Catalogue returns the tools the manager knows about.
func (m *Manager) Catalogue() *tools.Catalogue { return m.catalogue }

// Run executes the CLI application with the provided arguments.
func (m *Manager) Run(args []string) error {
	return m.app.Run(args)
}

// setupCatalogueCommands configures list, describe and check.
func (m *Manager) setupCatalogueCommands() {
	listCmd := orpheus.NewCommand("list", "List the available tools")
	listCmd.SetHandler(m.handleList)
	m.app.AddCommand(listCmd)

	// describe <tool> [--format=text]
	describeCmd := orpheus.NewCommand("describe", "Show the arguments and help of a tool")
	describeCmd.SetHandler(m.handleDescribe)
	describeCmd.AddFlag("format", "f", "text", "Output format (text|yaml)")
	m.app.AddCommand(describeCmd)

	// check "<tool> <arguments>" [--plan]
	checkCmd := orpheus.NewCommand("check", "Validate a quoted tool command line without running it")
	checkCmd.SetHandler(m.handleCheck)
	checkCmd.AddBoolFlag("plan", "p", false, "Print the resolved plan as YAML")
	checkCmd.AddBoolFlag("strict", "s", false, "Reject malformed numeric values")
	m.app.AddCommand(checkCmd)
}

// setupAuditCommands configures the 'audit' command group.
func (m *Manager) setupAuditCommands() {
	auditCmd := orpheus.NewCommand("audit", "Audit trail management")

	queryCmd := auditCmd.Subcommand("query", "Query the audit trail", m.handleAuditQuery)
	queryCmd.AddFlag("since", "s", "24h", "Time range (e.g., 24h, 7d, 2w)")
	queryCmd.AddFlag("event", "e", "", "Event type filter")
	queryCmd.AddFlag("tool", "t", "", "Tool name filter")
	queryCmd.AddFlag("verdict", "v", "", "Verdict filter (PASSED|FAILED|HELPREQUESTED)")
	queryCmd.AddFlag("file", "f", "", "Audit store, default from configuration")
	queryCmd.AddIntFlag("limit", "l", 100, "Maximum results")

	cleanupCmd := auditCmd.Subcommand("cleanup", "Delete old audit events", m.handleAuditCleanup)
	cleanupCmd.AddFlag("older-than", "o", "30d", "Delete entries older than")
	cleanupCmd.AddFlag("file", "f", "", "Audit store, default from configuration")
	cleanupCmd.AddBoolFlag("dry-run", "d", false, "Show what would be deleted")

	statsCmd := auditCmd.Subcommand("stats", "Summarize the audit trail", m.handleAuditStats)
	statsCmd.AddFlag("file", "f", "", "Audit store, default from configuration")

	m.app.AddCommand(auditCmd)
}

// setupUtilityCommands configures config validation, info and completion.
func (m *Manager) setupUtilityCommands() {
	configCmd := orpheus.NewCommand("config", "Configuration file operations")
	configCmd.Subcommand("validate", "Validate a YAML configuration file", m.handleConfigValidate)
	m.app.AddCommand(configCmd)

	infoCmd := orpheus.NewCommand("info", "Show version and effective configuration")
	infoCmd.SetHandler(m.handleInfo)
	infoCmd.AddBoolFlag("verbose", "v", false, "Verbose information")
	m.app.AddCommand(infoCmd)

	completionCmd := orpheus.NewCommand("completion", "Generate shell completion scripts")
	completionCmd.SetHandler(m.handleCompletion)
	m.app.AddCommand(completionCmd)
}
