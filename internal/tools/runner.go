// runner.go: Execution of tool plans
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package tools

import (
	"context"
	"io"
	"sync"

	"github.com/agilira/cmdline"
	"github.com/agilira/go-errors"
	"go.yaml.in/yaml/v3"
)

// Runner executes a validated plan. Image processing itself lives behind
// this interface.
type Runner interface {
	Run(ctx context.Context, plan Plan) error
}

// RunnerFunc adapts a function to Runner.
type RunnerFunc func(ctx context.Context, plan Plan) error

// Run calls f.
func (f RunnerFunc) Run(ctx context.Context, plan Plan) error { return f(ctx, plan) }

// PlanWriter is a dry-run Runner that writes each plan as a YAML document.
type PlanWriter struct {
	mu sync.Mutex
	w  io.Writer
}

// NewPlanWriter creates a PlanWriter writing to w.
func NewPlanWriter(w io.Writer) *PlanWriter {
	return &PlanWriter{w: w}
}

// Run writes plan.
func (pw *PlanWriter) Run(ctx context.Context, plan Plan) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	pw.mu.Lock()
	defer pw.mu.Unlock()

	enc := yaml.NewEncoder(pw.w)
	enc.SetIndent(2)
	if err := enc.Encode(plan); err != nil {
		return errors.Wrap(err, cmdline.ErrCodeIOError, "failed to write plan").
			WithContext("tool", plan.Tool)
	}
	if err := enc.Close(); err != nil {
		return errors.Wrap(err, cmdline.ErrCodeIOError, "failed to flush plan").
			WithContext("tool", plan.Tool)
	}
	return nil
}
