// settings_test.go: Tests for the catalogue's global options
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package cmdline

import (
	"sort"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestSettingsSplit(t *testing.T) {
	s := NewSettings("itktools-test", "1.0.0")

	tests := []struct {
		name        string
		args        []string
		wantGlobals []string
		wantRest    []string
	}{
		{
			name:     "no globals",
			args:     []string{"pxpca", "-in", "a"},
			wantRest: []string{"pxpca", "-in", "a"},
		},
		{
			name:        "bool and inline value",
			args:        []string{"--strict-numbers", "--audit-file=/tmp/a.db", "pxpca", "--strict-numbers"},
			wantGlobals: []string{"--strict-numbers", "--audit-file=/tmp/a.db"},
			wantRest:    []string{"pxpca", "--strict-numbers"},
		},
		{
			name:        "separate value",
			args:        []string{"--config", "itktools.yaml", "list"},
			wantGlobals: []string{"--config", "itktools.yaml"},
			wantRest:    []string{"list"},
		},
		{
			name:     "help is left to the tool",
			args:     []string{"--help"},
			wantRest: []string{"--help"},
		},
		{
			name:     "unknown option stops the scan",
			args:     []string{"--unknown", "--audit"},
			wantRest: []string{"--unknown", "--audit"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			globals, rest := s.Split(tt.args)
			if diff := cmp.Diff(tt.wantGlobals, globals); diff != "" {
				t.Errorf("globals mismatch (-want +got):\n%s", diff)
			}
			if diff := cmp.Diff(tt.wantRest, rest); diff != "" {
				t.Errorf("rest mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestSettingsParseAndApply(t *testing.T) {
	s := NewSettings("itktools-test", "1.0.0")

	rest, err := s.Parse([]string{"--strict-numbers", "--no-color", "--audit-file=/tmp/itk.jsonl", "--audit-level=critical", "pxpca", "-in", "a"})
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if diff := cmp.Diff([]string{"pxpca", "-in", "a"}, rest); diff != "" {
		t.Errorf("rest mismatch (-want +got):\n%s", diff)
	}

	config := Config{Audit: AuditConfig{MinLevel: AuditWarn}}
	if err := s.Apply(&config); err != nil {
		t.Fatalf("Apply failed: %v", err)
	}

	if config.NumericMode != NumericStrict || !config.NoColor {
		t.Errorf("bool settings not applied: %+v", config)
	}
	if !config.Audit.Enabled || config.Audit.OutputFile != "/tmp/itk.jsonl" {
		t.Errorf("audit file should enable auditing: %+v", config.Audit)
	}
	if config.Audit.MinLevel != AuditCritical {
		t.Errorf("MinLevel = %s", config.Audit.MinLevel)
	}
}

func TestSettingsApplyKeepsStricterLevel(t *testing.T) {
	s := NewSettings("itktools-test", "1.0.0")
	if _, err := s.Parse([]string{"--audit"}); err != nil {
		t.Fatal(err)
	}

	config := Config{Audit: AuditConfig{MinLevel: AuditWarn}}
	if err := s.Apply(&config); err != nil {
		t.Fatal(err)
	}
	if !config.Audit.Enabled || config.Audit.MinLevel != AuditWarn {
		t.Errorf("default level must not lower the configured one: %+v", config.Audit)
	}
}

func TestSettingsApplyWithoutOptions(t *testing.T) {
	s := NewSettings("itktools-test", "1.0.0")
	if _, err := s.Parse(nil); err != nil {
		t.Fatal(err)
	}

	config := Config{NumericMode: NumericStrict}
	if err := s.Apply(&config); err != nil {
		t.Fatal(err)
	}
	if config.NumericMode != NumericStrict || config.Audit.Enabled {
		t.Errorf("unset options must not override: %+v", config)
	}
	if s.ConfigFile() != "" {
		t.Errorf("ConfigFile() = %q", s.ConfigFile())
	}
}

func TestSettingsNames(t *testing.T) {
	names := NewSettings("itktools-test", "1.0.0").Names()
	sort.Strings(names)

	want := []string{SettingAudit, SettingAuditFile, SettingAuditLevel, SettingConfig, SettingNoColor, SettingStrictNumbers}
	sort.Strings(want)
	if diff := cmp.Diff(want, names); diff != "" {
		t.Errorf("names mismatch (-want +got):\n%s", diff)
	}
}
