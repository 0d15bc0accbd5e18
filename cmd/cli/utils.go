// Helpers shared by the management command handlers
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package cli

import (
	"fmt"
	"io"
	"regexp"
	"strconv"
	"time"

	"github.com/agilira/cmdline"
	"github.com/agilira/cmdline/internal/tools"
	"github.com/agilira/orpheus/pkg/orpheus"
	"go.yaml.in/yaml/v3"
)

var extendedDuration = regexp.MustCompile(`^(\d+)(d|w)$`)

// parseExtendedDuration parses duration strings with extended units (d, w).
// Supports all Go standard units (ns, us, ms, s, m, h) plus:
// - d: days (24 hours)
// - w: weeks (7 days)
//
// Examples: "30d", "2w", "7d", "24h", "5m", "30s"
func parseExtendedDuration(s string) (time.Duration, error) {
	d, stdErr := time.ParseDuration(s)
	if stdErr == nil {
		return d, nil
	}

	matches := extendedDuration.FindStringSubmatch(s)
	if len(matches) != 3 {
		return 0, stdErr
	}

	value, err := strconv.ParseInt(matches[1], 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid duration value: %s", matches[1])
	}

	day := 24 * time.Hour
	if matches[2] == "w" {
		return time.Duration(value) * 7 * day, nil
	}
	return time.Duration(value) * day, nil
}

// auditPath resolves the audit store: --file, then the configuration, then
// the default location.
func (m *Manager) auditPath(ctx *orpheus.Context) string {
	if path := ctx.GetFlagString("file"); path != "" {
		return path
	}
	if m.config.Audit.OutputFile != "" {
		return m.config.Audit.OutputFile
	}
	return cmdline.DefaultAuditPath()
}

// writeYAML encodes v as a single YAML document.
func writeYAML(w io.Writer, v interface{}) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		_ = enc.Close()
		return err
	}
	return enc.Close()
}

type requiredView struct {
	Flag        string `yaml:"flag"`
	Description string `yaml:"description"`
}

type groupView struct {
	Flags       []string `yaml:"flags"`
	Description string   `yaml:"description"`
}

// toolView is the describe output.
type toolView struct {
	Name     string         `yaml:"name"`
	Summary  string         `yaml:"summary"`
	Required []requiredView `yaml:"required,omitempty"`
	Groups   []groupView    `yaml:"exactly_one_of,omitempty"`
	Help     string         `yaml:"help"`
}

func describeTool(t *tools.Tool) toolView {
	view := toolView{Name: t.Name, Summary: t.Summary, Help: t.Help}
	for _, r := range t.Required {
		view.Required = append(view.Required, requiredView{Flag: r.Flag, Description: r.Description})
	}
	for _, g := range t.Groups {
		view.Groups = append(view.Groups, groupView{Flags: g.Flags, Description: g.Description})
	}
	return view
}

// commandNames lists the management commands for shell completion.
func commandNames() []string {
	return []string{"list", "describe", "check", "audit", "config", "info", "completion"}
}
