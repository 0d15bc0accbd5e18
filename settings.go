// settings.go: Global options of the tool catalogue binary
//
// The catalogue accepts a few GNU-style options before the tool name, for
// example "itktools --strict-numbers --audit pxgaussianimagefilter -in a.mhd".
// They are parsed with flash-flags and then folded into a Config.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package cmdline

import (
	"strings"

	flashflags "github.com/agilira/flash-flags"
	"github.com/agilira/go-errors"
)

// Setting names.
const (
	SettingStrictNumbers = "strict-numbers"
	SettingNoColor       = "no-color"
	SettingAudit         = "audit"
	SettingAuditFile     = "audit-file"
	SettingAuditLevel    = "audit-level"
	SettingConfig        = "config"
)

// Settings holds the global options of the catalogue binary.
type Settings struct {
	flags   *flashflags.FlagSet
	appName string

	// setting name -> true when the option takes a separate value
	known map[string]bool
}

// NewSettings registers the global options. Environment variables with the
// upper-cased appName prefix act as fallbacks, e.g. ITKTOOLS_AUDIT_FILE.
func NewSettings(appName, version string) *Settings {
	s := &Settings{
		flags:   flashflags.New(appName),
		appName: appName,
		known:   make(map[string]bool),
	}
	s.flags.SetDescription("Command-line image tools")
	s.flags.SetVersion(version)

	s.boolSetting(SettingStrictNumbers, "Reject malformed numeric values instead of reading them as 0")
	s.boolSetting(SettingNoColor, "Disable coloured diagnostics")
	s.boolSetting(SettingAudit, "Record invocations in the audit trail")
	s.stringSetting(SettingAuditFile, "", "Audit store (.db for SQLite, .jsonl for JSON lines)")
	s.stringSetting(SettingAuditLevel, "INFO", "Minimum audit level (INFO, WARN, CRITICAL)")
	s.stringSetting(SettingConfig, "", "YAML configuration file")
	return s
}

func (s *Settings) boolSetting(name, usage string) {
	s.flags.Bool(name, false, usage)
	s.known[name] = false
}

func (s *Settings) stringSetting(name, defaultValue, usage string) {
	s.flags.String(name, defaultValue, usage)
	s.known[name] = true
}

// Split separates the leading global options of args from the rest. It stops
// at the first token that is not a known "--" option, so tool flags such as
// "-in" or "--help" are never consumed.
func (s *Settings) Split(args []string) (globals, rest []string) {
	i := 0
	for i < len(args) {
		arg := args[i]
		if !strings.HasPrefix(arg, "--") {
			break
		}
		name, _, hasValue := strings.Cut(strings.TrimPrefix(arg, "--"), "=")
		takesValue, ok := s.known[name]
		if !ok {
			break
		}
		globals = append(globals, arg)
		i++
		if takesValue && !hasValue && i < len(args) {
			globals = append(globals, args[i])
			i++
		}
	}
	return globals, args[i:]
}

// Parse consumes the leading global options of args and returns what
// follows them.
func (s *Settings) Parse(args []string) ([]string, error) {
	globals, rest := s.Split(args)
	s.flags.SetEnvPrefix(strings.ToUpper(s.appName))
	if err := s.flags.Parse(globals); err != nil {
		return nil, errors.Wrap(err, ErrCodeInvalidArgument, "failed to parse global options").
			WithContext("options", strings.Join(globals, " "))
	}
	return rest, nil
}

// ConfigFile returns the --config value.
func (s *Settings) ConfigFile() string { return s.flags.GetString(SettingConfig) }

// Apply folds the parsed options into config. Options left at their
// defaults do not override values already in config.
func (s *Settings) Apply(config *Config) error {
	if s.flags.GetBool(SettingStrictNumbers) {
		config.NumericMode = NumericStrict
	}
	if s.flags.GetBool(SettingNoColor) {
		config.NoColor = true
	}
	if s.flags.GetBool(SettingAudit) {
		config.Audit.Enabled = true
	}
	if file := s.flags.GetString(SettingAuditFile); file != "" {
		config.Audit.OutputFile = file
		config.Audit.Enabled = true
	}
	if config.Audit.Enabled {
		level, err := ParseAuditLevel(s.flags.GetString(SettingAuditLevel))
		if err != nil {
			return err
		}
		if level > config.Audit.MinLevel {
			config.Audit.MinLevel = level
		}
	}
	return nil
}

// Names returns the registered option names.
func (s *Settings) Names() []string {
	var names []string
	s.flags.VisitAll(func(flag *flashflags.Flag) {
		names = append(names, flag.Name())
	})
	return names
}

// PrintUsage prints help for the global options.
func (s *Settings) PrintUsage() { s.flags.PrintHelp() }
