// env_config_test.go: Tests for environment and file configuration
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package cmdline

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func TestLoadConfigFromEnv(t *testing.T) {
	t.Setenv(EnvStrictNumbers, "yes")
	t.Setenv(EnvNoColor, "1")
	t.Setenv(EnvHelpFlags, "--help, -?,")
	t.Setenv(EnvAuditEnabled, "true")
	t.Setenv(EnvAuditOutputFile, "/tmp/itktools-test.jsonl")
	t.Setenv(EnvAuditMinLevel, "warn")
	t.Setenv(EnvAuditBufferSize, "500")
	t.Setenv(EnvAuditFlushInterval, "3s")

	config, err := LoadConfigFromEnv()
	if err != nil {
		t.Fatalf("Failed to load config from env: %v", err)
	}

	if config.NumericMode != NumericStrict {
		t.Errorf("NumericMode = %s", config.NumericMode)
	}
	if !config.NoColor {
		t.Error("NoColor should be set")
	}
	if diff := cmp.Diff([]string{"--help", "-?"}, config.HelpFlags); diff != "" {
		t.Errorf("HelpFlags mismatch (-want +got):\n%s", diff)
	}

	want := AuditConfig{
		Enabled:       true,
		OutputFile:    "/tmp/itktools-test.jsonl",
		MinLevel:      AuditWarn,
		BufferSize:    500,
		FlushInterval: 3 * time.Second,
	}
	if diff := cmp.Diff(want, config.Audit); diff != "" {
		t.Errorf("Audit mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadConfigFromEnvErrors(t *testing.T) {
	tests := map[string]string{
		EnvAuditMinLevel:      "loud",
		EnvAuditBufferSize:    "-5",
		EnvAuditFlushInterval: "soon",
	}
	for key, value := range tests {
		t.Run(key, func(t *testing.T) {
			t.Setenv(key, value)
			if _, err := LoadConfigFromEnv(); !IsCode(err, ErrCodeInvalidConfig) {
				t.Errorf("expected %s, got %v", ErrCodeInvalidConfig, err)
			}
		})
	}
}

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "itktools.yaml")
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}
	return path
}

func TestLoadConfigFile(t *testing.T) {
	path := writeConfigFile(t, `
help_flags: ["--help", "--usage"]
numeric_mode: strict
no_color: true
audit:
  enabled: true
  output_file: /var/tmp/itktools.db
  min_level: critical
  buffer_size: 50
  flush_interval: 2s
`)

	config, err := LoadConfigFile(path)
	if err != nil {
		t.Fatalf("LoadConfigFile failed: %v", err)
	}

	if config.NumericMode != NumericStrict || !config.NoColor {
		t.Errorf("unexpected core settings: %+v", config)
	}
	if config.HelpText != DefaultHelpText {
		t.Errorf("defaults not applied: %q", config.HelpText)
	}
	want := AuditConfig{
		Enabled:       true,
		OutputFile:    "/var/tmp/itktools.db",
		MinLevel:      AuditCritical,
		BufferSize:    50,
		FlushInterval: 2 * time.Second,
	}
	if diff := cmp.Diff(want, config.Audit); diff != "" {
		t.Errorf("Audit mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadConfigFileErrors(t *testing.T) {
	if _, err := LoadConfigFile(filepath.Join(t.TempDir(), "missing.yaml")); !IsCode(err, ErrCodeIOError) {
		t.Errorf("missing file: expected %s, got %v", ErrCodeIOError, err)
	}

	bad := writeConfigFile(t, "numeric_mode: [unclosed")
	if _, err := LoadConfigFile(bad); !IsCode(err, ErrCodeInvalidConfig) {
		t.Errorf("bad yaml: expected %s, got %v", ErrCodeInvalidConfig, err)
	}

	unknown := writeConfigFile(t, "numeric_mode: fuzzy\n")
	if _, err := LoadConfigFile(unknown); !IsCode(err, ErrCodeInvalidConfig) {
		t.Errorf("bad mode: expected %s, got %v", ErrCodeInvalidConfig, err)
	}
}

func TestLoadConfigMultiSourceEnvWins(t *testing.T) {
	path := writeConfigFile(t, "numeric_mode: strict\naudit:\n  enabled: true\n  buffer_size: 10\n")
	t.Setenv(EnvStrictNumbers, "false")
	t.Setenv(EnvAuditBufferSize, "20")

	config, err := LoadConfigMultiSource(path)
	if err != nil {
		t.Fatal(err)
	}
	if config.NumericMode != NumericLenient {
		t.Errorf("environment should override file, NumericMode = %s", config.NumericMode)
	}
	if !config.Audit.Enabled || config.Audit.BufferSize != 20 {
		t.Errorf("unexpected audit config: %+v", config.Audit)
	}

	config, err = LoadConfigMultiSource("")
	if err != nil {
		t.Fatal(err)
	}
	if config.Audit.Enabled {
		t.Error("no file and no audit env should leave audit disabled")
	}
}

func TestParseBool(t *testing.T) {
	for _, v := range []string{"true", "1", "YES", "on", "enabled"} {
		if !parseBool(v) {
			t.Errorf("parseBool(%q) = false", v)
		}
	}
	for _, v := range []string{"false", "0", "no", "", "maybe"} {
		if parseBool(v) {
			t.Errorf("parseBool(%q) = true", v)
		}
	}
}
