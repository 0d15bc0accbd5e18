// help.go: Help handling for the cmdline parser
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package cmdline

import (
	"fmt"
)

// SetProgramHelpText sets the text printed when help is requested. An empty
// string restores DefaultHelpText.
func (p *Parser) SetProgramHelpText(text string) {
	if text == "" {
		text = DefaultHelpText
	}
	p.config.HelpText = text
}

// ProgramHelpText returns the current help text.
func (p *Parser) ProgramHelpText() string { return p.config.HelpText }

// WantsHelp reports whether the invocation asks for help: either nothing
// follows the program name or one of the help flags is present.
func (p *Parser) WantsHelp() bool {
	if !p.argv.HasArguments() {
		return true
	}
	for _, flag := range p.config.HelpFlags {
		if p.ArgumentExists(flag) {
			return true
		}
	}
	return false
}

// PrintHelp writes the help text to the configured stdout.
func (p *Parser) PrintHelp() {
	_, _ = fmt.Fprintln(p.config.Stdout, p.config.HelpText)
}
