// Package cmdline provides the command-line argument parser shared by a
// catalogue of image tools.
//
// Each tool is a thin program whose arguments follow one convention: flags are
// tokens starting with "-", and the values of a flag are the tokens between it
// and the next flag. A token such as "-5" or "-0.25" is a negative number, not
// a flag, because its second byte is a digit.
//
// # Parsing and Validation
//
// A Parser indexes the argument vector once. Tools register their rules, then
// ask for a verdict:
//
//	p := cmdline.New(os.Args)
//	p.SetProgramHelpText(helpText)
//	p.MarkArgumentAsRequired("-in", "The input filename.")
//	p.MarkExactlyOneOfArgumentsAsRequired("The box definition.", "-c", "-cp1")
//
//	switch p.CheckForRequiredArguments() {
//	case cmdline.VerdictHelpRequested:
//		os.Exit(0)
//	case cmdline.VerdictFailed:
//		os.Exit(1)
//	}
//
// Help is requested by "--help", "-help", "--h", or by giving no arguments at
// all; the help text goes to stdout. Every violated rule is reported on
// stderr, not only the first one. Validate returns the same outcome as a
// RequirementReport without printing.
//
// # Typed Extraction
//
// Values are read with the generic functions Lookup, LookupList, Get and
// GetList. The destination slice doubles as the default:
//
//	radius := []int{1, 1, 1}
//	err := cmdline.LookupList(p, "-r", &radius) // "-r 5" yields [5 5 5]
//
// A single value is broadcast over a longer default; otherwise values are
// written from the start and the remaining defaults are kept. Errors carry
// go-errors codes: CMDLINE_KEY_NOT_FOUND, CMDLINE_KEY_NOT_USABLE and
// CMDLINE_MALFORMED_VALUE.
//
// Numbers are converted leniently by default: the longest numeric prefix is
// used and a token without one reads as 0. NumericStrict rejects such tokens.
//
// # Configuration and Audit
//
// Config can be loaded from CMDLINE_* environment variables and a YAML file
// (LoadConfigMultiSource), and the catalogue binary accepts global options
// parsed by Settings. When auditing is enabled, an AuditLogger records every
// verdict and every failed extraction in an SQLite database or a JSON lines
// file, each event carrying a SHA-256 checksum.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0
package cmdline
