// parser.go: Command-line argument parser shared by every image tool
//
// The parser indexes the flags of an argument vector once, locates the value
// tokens that follow a flag, and validates required and exactly-one-of rules.
// Typed extraction lives in extract.go.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package cmdline

import (
	"strings"
)

// Parser holds one process's arguments and the rules registered against them.
// It is built once, configured by registration calls, validated once and then
// only read. It is not safe for concurrent registration.
type Parser struct {
	config *Config
	argv   Argv

	// flag token -> argv index of its last occurrence
	index map[string]int

	required []RequiredArgument
	groups   []RequiredExactlyOneGroup

	auditor Auditor
}

// Span is the location of a flag and its values in the argument vector.
// Values occupy [Key+1, Next).
type Span struct {
	Key  int
	Next int
}

// Len returns the number of value tokens in the span.
func (s Span) Len() int { return s.Next - s.Key - 1 }

// New creates a parser over args (args[0] is the program name) with the
// default configuration.
func New(args []string) *Parser {
	return NewWithConfig(args, Config{})
}

// NewWithConfig creates a parser over args with the given configuration.
func NewWithConfig(args []string, config Config) *Parser {
	return NewFromArgv(NewArgv(args), config)
}

// NewFromArgv creates a parser over an existing Argv.
func NewFromArgv(argv Argv, config Config) *Parser {
	p := &Parser{
		config: config.WithDefaults(),
		argv:   argv,
	}
	p.index = buildArgumentIndex(argv)
	return p
}

// buildArgumentIndex maps every token that starts with "-" to its position.
// A repeated flag keeps the index of its last occurrence.
func buildArgumentIndex(argv Argv) map[string]int {
	index := make(map[string]int)
	for i := 1; i < argv.Len(); i++ {
		token := argv.At(i)
		if strings.HasPrefix(token, "-") {
			index[token] = i
		}
	}
	return index
}

// WithAudit attaches an auditor that records verdicts and failed extractions.
func (p *Parser) WithAudit(auditor Auditor) *Parser {
	p.auditor = auditor
	return p
}

// Argv returns the argument vector the parser was built from.
func (p *Parser) Argv() Argv { return p.argv }

// Config returns the effective configuration.
func (p *Parser) Config() Config { return *p.config }

// ArgumentExists reports whether key appeared on the command line, with or
// without values.
func (p *Parser) ArgumentExists(key string) bool {
	_, ok := p.index[key]
	return ok
}

// IndexOf returns the argv position of the last occurrence of key.
func (p *Parser) IndexOf(key string) (int, bool) {
	i, ok := p.index[key]
	return i, ok
}

// FindKey locates the first occurrence of key and the position of the next
// flag after it. It scans the raw tokens rather than the index, so for a
// repeated flag the first occurrence wins here while ArgumentExists and
// IndexOf see the last one.
//
// ok is false when key is absent or is followed directly by another flag.
func (p *Parser) FindKey(key string) (span Span, ok bool) {
	n := p.argv.Len()
	found := false
	span = Span{Key: 0, Next: n}

	for i := 1; i < n; i++ {
		token := p.argv.At(i)
		if !found {
			if token == key {
				found = true
				span.Key = i
			}
			continue
		}
		if strings.HasPrefix(token, "-") && !IsNumericToken(token) {
			span.Next = i
			break
		}
	}

	if !found || span.Len() == 0 {
		return Span{}, false
	}
	return span, true
}

// IsNumericToken reports whether a token starting with "-" is a negative
// number rather than a flag: it must be longer than one byte and its second
// byte must be an ASCII digit. "-5" is a number, "-out" is a flag, and "-.5"
// is classified as a flag.
func IsNumericToken(token string) bool {
	return len(token) > 1 && token[1] >= '0' && token[1] <= '9'
}

// values returns the value tokens of span.
func (p *Parser) values(span Span) []string {
	out := make([]string, 0, span.Len())
	for i := span.Key + 1; i < span.Next; i++ {
		out = append(out, p.argv.At(i))
	}
	return out
}
