// env_config.go: Environment and file configuration for cmdline
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package cmdline

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/agilira/go-errors"
	"go.yaml.in/yaml/v3"
)

// Environment variables read by LoadConfigFromEnv.
const (
	EnvStrictNumbers      = "CMDLINE_STRICT_NUMBERS"
	EnvNoColor            = "CMDLINE_NO_COLOR"
	EnvHelpFlags          = "CMDLINE_HELP_FLAGS"
	EnvAuditEnabled       = "CMDLINE_AUDIT_ENABLED"
	EnvAuditOutputFile    = "CMDLINE_AUDIT_OUTPUT_FILE"
	EnvAuditMinLevel      = "CMDLINE_AUDIT_MIN_LEVEL"
	EnvAuditBufferSize    = "CMDLINE_AUDIT_BUFFER_SIZE"
	EnvAuditFlushInterval = "CMDLINE_AUDIT_FLUSH_INTERVAL"
)

// FileConfig is the on-disk YAML form of Config.
type FileConfig struct {
	HelpFlags   []string `yaml:"help_flags,omitempty"`
	NumericMode string   `yaml:"numeric_mode,omitempty"`
	NoColor     bool     `yaml:"no_color,omitempty"`
	Audit       struct {
		Enabled       bool          `yaml:"enabled"`
		OutputFile    string        `yaml:"output_file,omitempty"`
		MinLevel      string        `yaml:"min_level,omitempty"`
		BufferSize    int           `yaml:"buffer_size,omitempty"`
		FlushInterval time.Duration `yaml:"flush_interval,omitempty"`
	} `yaml:"audit"`
}

// LoadConfigFromEnv builds a Config from CMDLINE_* environment variables.
// Unset variables leave the defaults in place.
func LoadConfigFromEnv() (*Config, error) {
	config := &Config{}
	if err := applyEnv(config); err != nil {
		return nil, err
	}
	return config.WithDefaults(), nil
}

// LoadConfigFile reads a YAML configuration file.
func LoadConfigFile(path string) (*Config, error) {
	data, err := os.ReadFile(path) // #nosec G304 - path is chosen by the operator
	if err != nil {
		return nil, errors.Wrap(err, ErrCodeIOError, "failed to read config file").
			WithContext("path", path)
	}

	var fc FileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return nil, errors.Wrap(err, ErrCodeInvalidConfig, "failed to parse config file").
			WithContext("path", path)
	}

	config, err := fc.toConfig()
	if err != nil {
		return nil, errors.Wrap(err, ErrCodeInvalidConfig, "invalid config file").
			WithContext("path", path)
	}
	return config.WithDefaults(), nil
}

// LoadConfigMultiSource loads configuration with precedence:
// 1. Environment variables (highest priority)
// 2. File configuration, when configFile is not empty
// 3. Default values (lowest priority)
func LoadConfigMultiSource(configFile string) (*Config, error) {
	config := &Config{}
	if configFile != "" {
		loaded, err := LoadConfigFile(configFile)
		if err != nil {
			return nil, err
		}
		config = loaded
	}

	if err := applyEnv(config); err != nil {
		return nil, err
	}
	return config.WithDefaults(), nil
}

func (fc FileConfig) toConfig() (*Config, error) {
	mode, err := ParseNumericMode(fc.NumericMode)
	if err != nil {
		return nil, err
	}
	level, err := ParseAuditLevel(fc.Audit.MinLevel)
	if err != nil {
		return nil, err
	}
	return &Config{
		HelpFlags:   fc.HelpFlags,
		NumericMode: mode,
		NoColor:     fc.NoColor,
		Audit: AuditConfig{
			Enabled:       fc.Audit.Enabled,
			OutputFile:    fc.Audit.OutputFile,
			MinLevel:      level,
			BufferSize:    fc.Audit.BufferSize,
			FlushInterval: fc.Audit.FlushInterval,
		},
	}, nil
}

// applyEnv overrides config with every CMDLINE_* variable that is set.
func applyEnv(config *Config) error {
	if v := os.Getenv(EnvStrictNumbers); v != "" {
		if parseBool(v) {
			config.NumericMode = NumericStrict
		} else {
			config.NumericMode = NumericLenient
		}
	}

	if v := os.Getenv(EnvNoColor); v != "" {
		config.NoColor = parseBool(v)
	}

	if v := os.Getenv(EnvHelpFlags); v != "" {
		config.HelpFlags = splitList(v)
	}

	return applyAuditEnv(&config.Audit)
}

func applyAuditEnv(audit *AuditConfig) error {
	if v := os.Getenv(EnvAuditEnabled); v != "" {
		audit.Enabled = parseBool(v)
	}

	if v := os.Getenv(EnvAuditOutputFile); v != "" {
		audit.OutputFile = v
	}

	if v := os.Getenv(EnvAuditMinLevel); v != "" {
		level, err := ParseAuditLevel(v)
		if err != nil {
			return errors.Wrap(err, ErrCodeInvalidConfig, "invalid "+EnvAuditMinLevel)
		}
		audit.MinLevel = level
	}

	if v := os.Getenv(EnvAuditBufferSize); v != "" {
		size, err := strconv.Atoi(v)
		if err != nil || size <= 0 {
			return errors.New(ErrCodeInvalidConfig, "invalid "+EnvAuditBufferSize+" value").
				WithContext("value", v)
		}
		audit.BufferSize = size
	}

	if v := os.Getenv(EnvAuditFlushInterval); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return errors.Wrap(err, ErrCodeInvalidConfig, "invalid "+EnvAuditFlushInterval+" format")
		}
		audit.FlushInterval = d
	}
	return nil
}

// splitList splits a comma separated list and drops empty items.
func splitList(s string) []string {
	var out []string
	for _, item := range strings.Split(s, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

// parseBool parses boolean values from environment variables
// Supports: true/false, 1/0, yes/no, on/off, enabled/disabled
func parseBool(value string) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "true", "1", "yes", "on", "enabled":
		return true
	default:
		return false
	}
}
