// tool.go: Tool definitions and the catalogue of image tools
//
// Every tool declares its help text and argument rules, and turns a
// validated command line into a Plan: the tool name plus its resolved
// parameters in a fixed order. Running the plan is left to a Runner.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package tools

import (
	"context"
	"path/filepath"
	"sort"
	"strings"

	"github.com/agilira/cmdline"
	"github.com/agilira/go-errors"
)

// Parameter is one resolved tool parameter.
type Parameter struct {
	Name  string      `yaml:"name" json:"name"`
	Value interface{} `yaml:"value" json:"value"`
}

// Plan is a validated tool invocation.
type Plan struct {
	Tool       string      `yaml:"tool" json:"tool"`
	Parameters []Parameter `yaml:"parameters" json:"parameters"`
}

// NewPlan creates an empty plan for tool.
func NewPlan(tool string) *Plan {
	return &Plan{Tool: tool}
}

// Set appends a parameter, or replaces it if name is already set.
func (p *Plan) Set(name string, value interface{}) *Plan {
	for i := range p.Parameters {
		if p.Parameters[i].Name == name {
			p.Parameters[i].Value = value
			return p
		}
	}
	p.Parameters = append(p.Parameters, Parameter{Name: name, Value: value})
	return p
}

// Get returns the value of a parameter.
func (p *Plan) Get(name string) (interface{}, bool) {
	for _, param := range p.Parameters {
		if param.Name == name {
			return param.Value, true
		}
	}
	return nil, false
}

// Tool is one command of the catalogue.
type Tool struct {
	Name     string
	Summary  string
	Help     string
	Required []cmdline.RequiredArgument
	Groups   []cmdline.RequiredExactlyOneGroup

	// Configure reads the arguments of a parser that already passed
	// validation and applies the tool's own checks.
	Configure func(p *cmdline.Parser) (*Plan, error)
}

// Register installs the help text and argument rules of t on p.
func (t *Tool) Register(p *cmdline.Parser) {
	p.SetProgramHelpText(t.Help)
	for _, req := range t.Required {
		p.MarkArgumentAsRequired(req.Flag, req.Description)
	}
	for _, group := range t.Groups {
		p.MarkExactlyOneOfArgumentsAsRequired(group.Description, group.Flags...)
	}
}

// InvokeOptions controls Invoke.
type InvokeOptions struct {
	Config  cmdline.Config
	Auditor cmdline.Auditor
	Runner  Runner
}

// Invoke runs t the way a standalone tool binary would: argument checks,
// help, configuration and finally the runner. args[0] is the program name.
//
// The verdict is VerdictFailed whenever err is not nil.
func (t *Tool) Invoke(ctx context.Context, args []string, opts InvokeOptions) (cmdline.Verdict, error) {
	p := cmdline.NewWithConfig(args, opts.Config)
	if opts.Auditor != nil {
		p.WithAudit(opts.Auditor)
	}
	t.Register(p)

	verdict := p.CheckForRequiredArguments()
	if verdict != cmdline.VerdictPassed {
		return verdict, nil
	}

	plan, err := t.Configure(p)
	if err != nil {
		return cmdline.VerdictFailed, err
	}

	if opts.Runner == nil {
		return cmdline.VerdictPassed, nil
	}
	if err := opts.Runner.Run(ctx, *plan); err != nil {
		return cmdline.VerdictFailed, errors.Wrap(err, cmdline.ErrCodePipelineError, "tool failed").
			WithContext("tool", t.Name)
	}
	return cmdline.VerdictPassed, nil
}

// Check validates argv against t without printing. When the rules pass, the
// plan is built as well, so tool-level errors are reported too.
func (t *Tool) Check(argv cmdline.Argv, config cmdline.Config) (cmdline.RequirementReport, *Plan, error) {
	p := cmdline.NewFromArgv(argv, config)
	t.Register(p)

	report := p.Validate()
	if report.Verdict != cmdline.VerdictPassed {
		return report, nil, nil
	}
	plan, err := t.Configure(p)
	return report, plan, err
}

// Catalogue is a set of tools addressed by name.
type Catalogue struct {
	tools map[string]*Tool
}

// NewCatalogue creates a catalogue of the given tools.
func NewCatalogue(tools ...*Tool) *Catalogue {
	c := &Catalogue{tools: make(map[string]*Tool, len(tools))}
	for _, t := range tools {
		c.tools[t.Name] = t
	}
	return c
}

// Default returns the catalogue of every built-in tool.
func Default() *Catalogue {
	return NewCatalogue(
		GaussianImageFilter(),
		Morphology(),
		DistanceTransform(),
		CreateZeroImage(),
		CreateBox(),
		ReplaceVoxel(),
		PCA(),
		BinaryImageOperator(),
		CastConvert(),
	)
}

// Lookup finds a tool by name. A directory part is ignored and the "px"
// prefix is optional, so "/usr/bin/pxcastconvert" and "castconvert" both
// resolve to pxcastconvert.
func (c *Catalogue) Lookup(name string) (*Tool, error) {
	base := filepath.Base(name)
	if t, ok := c.tools[base]; ok {
		return t, nil
	}
	if !strings.HasPrefix(base, "px") {
		if t, ok := c.tools["px"+base]; ok {
			return t, nil
		}
	}
	return nil, errors.New(cmdline.ErrCodeUnknownTool, "unknown tool: "+name).
		WithContext("tool", name)
}

// Has reports whether name resolves to a tool.
func (c *Catalogue) Has(name string) bool {
	_, err := c.Lookup(name)
	return err == nil
}

// Tools returns all tools sorted by name.
func (c *Catalogue) Tools() []*Tool {
	out := make([]*Tool, 0, len(c.tools))
	for _, t := range c.tools {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Names returns the sorted tool names.
func (c *Catalogue) Names() []string {
	tools := c.Tools()
	names := make([]string, len(tools))
	for i, t := range tools {
		names[i] = t.Name
	}
	return names
}

// invalid reports a tool-level argument error.
func invalid(tool, msg string) error {
	return errors.New(cmdline.ErrCodeInvalidArgument, msg).WithContext("tool", tool)
}

// optional drops the errors that mean "keep the default": the flag is absent
// or has no values. Malformed values still fail.
func optional(err error) error {
	if cmdline.IsCode(err, cmdline.ErrCodeKeyNotFound) || cmdline.IsCode(err, cmdline.ErrCodeKeyNotUsable) {
		return nil
	}
	return err
}

// valueCount returns how many value tokens follow key, 0 when absent.
func valueCount(p *cmdline.Parser, key string) int {
	span, ok := p.FindKey(key)
	if !ok {
		return 0
	}
	return span.Len()
}

// stem strips the last extension of a file name.
func stem(path string) string {
	return strings.TrimSuffix(path, filepath.Ext(path))
}

// componentType reads an optional -opct style flag and checks it names a
// known component type. The empty string means "same as input".
func componentType(p *cmdline.Parser, tool, key string) (string, error) {
	var name string
	if err := optional(cmdline.Lookup(p, key, &name)); err != nil {
		return "", err
	}
	if name == "" {
		return "", nil
	}
	ct, err := cmdline.ParseComponentType(name)
	if err != nil {
		return "", errors.Wrap(err, cmdline.ErrCodeUnknownComponentType, "invalid "+key).
			WithContext("tool", tool)
	}
	return ct.String(), nil
}

func oneOf(value string, allowed ...string) bool {
	for _, a := range allowed {
		if value == a {
			return true
		}
	}
	return false
}
