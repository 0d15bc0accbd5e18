// filters.go: Filtering tools
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package tools

import (
	"fmt"
	"path/filepath"

	"github.com/agilira/cmdline"
)

var gaussianInvariants = []string{"LiLi", "LiLijLj", "LiLijLjkLk", "Lii", "LijLji", "LijLjkLki"}

// GaussianImageFilter blurs an image or computes Gaussian derivatives.
func GaussianImageFilter() *Tool {
	return &Tool{
		Name:    "pxgaussianimagefilter",
		Summary: "Gaussian blurring, derivatives, magnitude, laplacian and invariants",
		Help: `Usage:
pxgaussianimagefilter
  -in      inputFilename
  [-out]   outputFilename, default in + BLURRED.mhd
  [-std]   sigma, for each dimension, default 1.0
  [-ord]   order, for each dimension, default zero
             0: zero order = blurring
             1: first order = gradient
             2: second order derivative
  [-mag]   compute the magnitude of the separate blurrings, default false
  [-lap]   compute the laplacian, default false
  [-inv]   compute invariants, choose one of
           {LiLi, LiLijLj, LiLijLjkLk, Lii, LijLji, LijLjkLki}
  [-opct]  output pixel type, default equal to input
Supported: 2D, 3D, (unsigned) char, (unsigned) short, (unsigned) int, (unsigned) long, float, double.`,
		Required: []cmdline.RequiredArgument{
			{Flag: "-in", Description: "The input filename."},
		},
		Configure: configureGaussian,
	}
}

func configureGaussian(p *cmdline.Parser) (*Plan, error) {
	const name = "pxgaussianimagefilter"

	var in string
	if err := cmdline.Lookup(p, "-in", &in); err != nil {
		return nil, err
	}

	sigma := []float32{1.0}
	if err := optional(cmdline.LookupList(p, "-std", &sigma)); err != nil {
		return nil, err
	}

	var order []uint32
	if err := optional(cmdline.LookupList(p, "-ord", &order)); err != nil {
		return nil, err
	}

	out := stem(in) + "BLURRED.mhd"
	if err := optional(cmdline.Lookup(p, "-out", &out)); err != nil {
		return nil, err
	}

	invariant := "LiLi"
	inv := cmdline.Get(p, "-inv", &invariant)
	mag := p.ArgumentExists("-mag")
	lap := p.ArgumentExists("-lap")

	opct, err := componentType(p, name, "-opct")
	if err != nil {
		return nil, err
	}

	for _, o := range order {
		if o > 2 {
			return nil, invalid(name, "the order should not be higher than 2, only zeroth, first and second order derivatives are supported")
		}
	}
	if mag && lap {
		return nil, invalid(name, `only one of "-mag" and "-lap" should be given`)
	}
	if inv && !oneOf(invariant, gaussianInvariants...) {
		return nil, invalid(name, "unknown invariant: "+invariant)
	}
	if len(sigma) > 3 {
		return nil, invalid(name, "the number of sigmas should be equal to 1 or the image dimension")
	}
	if !lap && !inv && len(order) > 0 && len(order) != 2 && len(order) != 3 {
		return nil, invalid(name, "the number of orders should be equal to the image dimension")
	}
	if len(sigma) > 1 && len(order) > 0 && len(sigma) != len(order) {
		return nil, invalid(name, fmt.Sprintf("%d sigmas and %d orders imply different image dimensions", len(sigma), len(order)))
	}

	var modes []string
	if mag {
		modes = append(modes, "magnitude")
	}
	if lap {
		modes = append(modes, "laplacian")
	}
	if inv {
		modes = append(modes, "invariants")
	}
	if len(modes) == 0 {
		modes = append(modes, "blur")
	}

	plan := NewPlan(name).
		Set("in", in).
		Set("out", out).
		Set("sigma", sigma).
		Set("mode", modes)
	if len(order) > 0 {
		plan.Set("order", order)
	}
	if inv {
		plan.Set("invariant", invariant)
	}
	if opct != "" {
		plan.Set("opct", opct)
	}
	return plan, nil
}

// Morphology applies a morphological operation.
func Morphology() *Tool {
	return &Tool{
		Name:    "pxmorphology",
		Summary: "Erosion, dilation, opening, closing and gradient filters",
		Help: `Usage:
pxmorphology
  -in      inputFilename
  -op      operation, choose one of {erosion, dilation, opening, closing, gradient}
  [-type]  type, choose one of {grayscale, binary, parabolic}, default grayscale
  [-out]   outputFilename, default in_operation_type.extension
  [-z]     compression flag; if provided, the output image is compressed
  -r       radius
  [-bc]    boundaryCondition (grayscale): the gray value outside the image
  [-bin]   foreground and background values
  [-a]     algorithm type for op=gradient
           BASIC = 0, HISTO = 1, ANCHOR = 2, VHGW = 3, default 0
  [-opct]  pixelType, default: automatically determined from input image
Examples:
  1) Dilate a binary image (1 = foreground, 0 = background)
    pxmorphology -in input.mhd -op dilation -type binary -out output.mhd -r 1
  2) Dilate a binary image (255 = foreground, 0 = background)
    pxmorphology -in input.mhd -op dilation -type binary -out output.mhd -r 1 -bin 255 0
Supported: 2D, 3D, (unsigned) char, (unsigned) short.`,
		Required: []cmdline.RequiredArgument{
			{Flag: "-in", Description: "The input filename."},
			{Flag: "-op", Description: "The morphological operation."},
			{Flag: "-r", Description: "The radius."},
		},
		Configure: configureMorphology,
	}
}

func configureMorphology(p *cmdline.Parser) (*Plan, error) {
	const name = "pxmorphology"

	var in, op string
	if err := cmdline.Lookup(p, "-in", &in); err != nil {
		return nil, err
	}
	if err := cmdline.Lookup(p, "-op", &op); err != nil {
		return nil, err
	}

	var radius []int32
	if err := cmdline.LookupList(p, "-r", &radius); err != nil {
		return nil, err
	}

	kind := "grayscale"
	if err := optional(cmdline.Lookup(p, "-type", &kind)); err != nil {
		return nil, err
	}

	out := stem(in) + "_" + op + "_" + kind + filepath.Ext(in)
	if err := optional(cmdline.Lookup(p, "-out", &out)); err != nil {
		return nil, err
	}

	bin := []float64{1, 0}
	if err := optional(cmdline.LookupList(p, "-bin", &bin)); err != nil {
		return nil, err
	}

	var algorithm int
	if err := optional(cmdline.Lookup(p, "-a", &algorithm)); err != nil {
		return nil, err
	}

	opct, err := componentType(p, name, "-opct")
	if err != nil {
		return nil, err
	}

	if !oneOf(op, "erosion", "dilation", "opening", "closing", "gradient") {
		return nil, invalid(name, `"-op" should be one of {erosion, dilation, opening, closing, gradient}`)
	}
	if !oneOf(kind, "grayscale", "binary", "parabolic") {
		return nil, invalid(name, `"-type" should be one of {grayscale, binary, parabolic}`)
	}
	if len(radius) > 3 {
		return nil, invalid(name, "the number of radii should be 1 or the image dimension")
	}
	for _, r := range radius {
		if r < 0 {
			return nil, invalid(name, "the radius should not be negative")
		}
	}
	if len(bin) > 3 {
		return nil, invalid(name, `"-bin" takes foreground, background and optionally the erosion value`)
	}
	if algorithm < 0 || algorithm > 3 {
		return nil, invalid(name, `"-a" should be one of {0, 1, 2, 3}`)
	}

	plan := NewPlan(name).
		Set("in", in).
		Set("out", out).
		Set("op", op).
		Set("type", kind).
		Set("radius", radius)

	var bc float64
	if cmdline.Get(p, "-bc", &bc) {
		plan.Set("boundary", bc)
	}
	if kind == "binary" {
		plan.Set("bin", bin)
	}
	if op == "gradient" {
		plan.Set("algorithm", algorithm)
	}
	plan.Set("compress", p.ArgumentExists("-z"))
	if opct != "" {
		plan.Set("opct", opct)
	}
	return plan, nil
}

// DistanceTransform computes a signed distance map of a binary mask.
func DistanceTransform() *Tool {
	return &Tool{
		Name:    "pxdistancetransform",
		Summary: "Signed distance transform of a binary mask",
		Help: `This program creates a signed distance transform.

Usage:
pxdistancetransform
  -in      inputFilename: the input image (a binary mask; threshold at 0 is performed if the image is not binary).
  -out     outputFilename: the output of distance transform
  [-s]     flag: if set, output squared distances instead of distances
  [-m]     method, one of {Maurer, Danielsson}, default Maurer
Note: voxel spacing is taken into account. Voxels inside the object (=1) receive a negative distance.
Supported: 2D/3D. input: unsigned char, output: float`,
		Required: []cmdline.RequiredArgument{
			{Flag: "-in", Description: "The input filename."},
			{Flag: "-out", Description: "The output filename."},
		},
		Configure: configureDistanceTransform,
	}
}

func configureDistanceTransform(p *cmdline.Parser) (*Plan, error) {
	const name = "pxdistancetransform"

	var in string
	if err := cmdline.Lookup(p, "-in", &in); err != nil {
		return nil, err
	}
	var outs []string
	if err := cmdline.LookupList(p, "-out", &outs); err != nil {
		return nil, err
	}

	method := "Maurer"
	if err := optional(cmdline.Lookup(p, "-m", &method)); err != nil {
		return nil, err
	}
	if !oneOf(method, "Maurer", "Danielsson") {
		return nil, invalid(name, "the method should be one of { Maurer, Danielsson }")
	}

	return NewPlan(name).
		Set("in", in).
		Set("out", outs[0]).
		Set("method", method).
		Set("squared", p.ArgumentExists("-s")), nil
}
