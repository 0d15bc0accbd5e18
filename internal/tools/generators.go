// generators.go: Tools that create new images
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package tools

import (
	"fmt"
	"math"

	"github.com/agilira/cmdline"
)

// perDimension reads a per-axis vector for an image of dim axes. One value
// is broadcast to every axis; otherwise exactly dim values are needed. An
// absent optional key yields dim copies of def.
func perDimension[T cmdline.Value](p *cmdline.Parser, tool, key string, dim int, def T, required bool) ([]T, error) {
	values := make([]T, dim)
	for i := range values {
		values[i] = def
	}

	err := cmdline.LookupList(p, key, &values)
	if !required {
		err = optional(err)
	}
	if err != nil {
		return nil, err
	}

	if n := valueCount(p, key); n > 1 && n != dim {
		return nil, invalid(tool, fmt.Sprintf("the number of values for %q should be 1 or the dimension (%d), got %d", key, dim, n))
	}
	return values, nil
}

// dimension reads -dim, default 3, and accepts 2 or 3.
func dimension(p *cmdline.Parser, tool string) (int, error) {
	dim := uint32(3)
	if err := optional(cmdline.Lookup(p, "-dim", &dim)); err != nil {
		return 0, err
	}
	if dim != 2 && dim != 3 {
		return 0, invalid(tool, fmt.Sprintf("images of dimension %d are not supported", dim))
	}
	return int(dim), nil
}

// generatorPixelType reads -pt, default short, limited to the types the
// generators support.
func generatorPixelType(p *cmdline.Parser, tool string) (string, error) {
	name := "short"
	if err := optional(cmdline.Lookup(p, "-pt", &name)); err != nil {
		return "", err
	}
	ct, err := cmdline.ParseComponentType(name)
	if err != nil {
		return "", err
	}
	switch ct.RemoveUnsigned() {
	case cmdline.ComponentChar, cmdline.ComponentShort, cmdline.ComponentFloat, cmdline.ComponentDouble:
		return ct.String(), nil
	default:
		return "", invalid(tool, "pixel type "+ct.String()+" is not supported")
	}
}

// CreateZeroImage writes an image filled with zeros.
func CreateZeroImage() *Tool {
	return &Tool{
		Name:    "pxcreatezeroimage",
		Summary: "Create an image filled with zeros",
		Help: `Usage:
pxcreatezeroimage
  -out     outputFilename
  -sz      size
  [-sp]    spacing
  [-o]     origin
  [-dim]   dimension, default 3
  [-pt]    pixelType, default short
Supported: 2D, 3D, (unsigned) char, (unsigned) short, float, double.`,
		Required: []cmdline.RequiredArgument{
			{Flag: "-out", Description: "The output filename."},
			{Flag: "-sz", Description: "The image size."},
		},
		Configure: configureCreateZeroImage,
	}
}

func configureCreateZeroImage(p *cmdline.Parser) (*Plan, error) {
	const name = "pxcreatezeroimage"

	var out string
	if err := cmdline.Lookup(p, "-out", &out); err != nil {
		return nil, err
	}
	dim, err := dimension(p, name)
	if err != nil {
		return nil, err
	}
	pt, err := generatorPixelType(p, name)
	if err != nil {
		return nil, err
	}

	size, err := perDimension[uint32](p, name, "-sz", dim, 0, true)
	if err != nil {
		return nil, err
	}
	spacing, err := perDimension(p, name, "-sp", dim, 1.0, false)
	if err != nil {
		return nil, err
	}
	origin, err := perDimension(p, name, "-o", dim, 0.0, false)
	if err != nil {
		return nil, err
	}

	for _, s := range size {
		if s < 1 {
			return nil, invalid(name, "for each dimension the size should be at least 1")
		}
	}
	for _, s := range spacing {
		if s < 0 {
			return nil, invalid(name, "no negative numbers are allowed in the spacing")
		}
	}

	return NewPlan(name).
		Set("out", out).
		Set("dim", dim).
		Set("pt", pt).
		Set("size", size).
		Set("spacing", spacing).
		Set("origin", origin), nil
}

// CreateBox writes an image containing a box, given either by its center and
// radius or by two opposite corners.
func CreateBox() *Tool {
	return &Tool{
		Name:    "pxcreatebox",
		Summary: "Create an image containing a box",
		Help: `Usage:
pxcreatebox
	-out	outputFilename
	-s	image size (voxels)
	[-sp]	image spacing (mm)
	[-c]	center (mm)
	[-r]	radii (mm)
	[-cp1]	cornerpoint 1 (mm)
	[-cp2]	cornerpoint 2 (mm)
	[-o]	orientation, default xyz
	[-dim]	dimension, default 3
	[-pt]	pixelType, default short
The user should EITHER specify the center and the radius,
OR the positions of two opposite corner points.
The orientation is a vector with the Euler angles (rad).
Supported: 2D, 3D, (unsigned) char, (unsigned) short, float, double.`,
		Required: []cmdline.RequiredArgument{
			{Flag: "-out", Description: "The output filename."},
			{Flag: "-s", Description: "The image size."},
		},
		Groups: []cmdline.RequiredExactlyOneGroup{
			{
				Flags:       []string{"-c", "-cp1"},
				Description: "Either the center (with -r) or the first corner point (with -cp2).",
			},
		},
		Configure: configureCreateBox,
	}
}

func configureCreateBox(p *cmdline.Parser) (*Plan, error) {
	const name = "pxcreatebox"

	var out string
	if err := cmdline.Lookup(p, "-out", &out); err != nil {
		return nil, err
	}
	dim, err := dimension(p, name)
	if err != nil {
		return nil, err
	}
	pt, err := generatorPixelType(p, name)
	if err != nil {
		return nil, err
	}
	size, err := perDimension[uint32](p, name, "-s", dim, 0, true)
	if err != nil {
		return nil, err
	}
	spacing, err := perDimension(p, name, "-sp", dim, 1.0, false)
	if err != nil {
		return nil, err
	}

	var center, radius []float64
	if p.ArgumentExists("-c") {
		if !p.ArgumentExists("-r") || p.ArgumentExists("-cp2") {
			return nil, invalid(name, `specify either "-c" and "-r", or "-cp1" and "-cp2"`)
		}
		if center, err = perDimension(p, name, "-c", dim, 0.0, true); err != nil {
			return nil, err
		}
		if radius, err = perDimension(p, name, "-r", dim, 0.0, true); err != nil {
			return nil, err
		}
	} else {
		if !p.ArgumentExists("-cp2") || p.ArgumentExists("-r") {
			return nil, invalid(name, `specify either "-c" and "-r", or "-cp1" and "-cp2"`)
		}
		corner1, err := perDimension(p, name, "-cp1", dim, 0.0, true)
		if err != nil {
			return nil, err
		}
		corner2, err := perDimension(p, name, "-cp2", dim, 0.0, true)
		if err != nil {
			return nil, err
		}
		center = make([]float64, dim)
		radius = make([]float64, dim)
		for i := 0; i < dim; i++ {
			center[i] = (corner1[i] + corner2[i]) / 2
			radius[i] = math.Abs(corner1[i] - center[i])
		}
	}

	orientation := make([]float64, dim*dim)
	for i := 0; i < dim; i++ {
		orientation[i*(dim+1)] = 1
	}
	if err := optional(cmdline.LookupList(p, "-o", &orientation)); err != nil {
		return nil, err
	}

	return NewPlan(name).
		Set("out", out).
		Set("dim", dim).
		Set("pt", pt).
		Set("size", size).
		Set("spacing", spacing).
		Set("center", center).
		Set("radius", radius).
		Set("orientation", orientation), nil
}
