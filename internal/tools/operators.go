// operators.go: Voxel, arithmetic, statistics and conversion tools
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package tools

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/agilira/cmdline"
)

// ReplaceVoxel replaces the value of a single voxel.
func ReplaceVoxel() *Tool {
	return &Tool{
		Name:    "pxreplacevoxel",
		Summary: "Replace the value of a user specified voxel",
		Help: `This program replaces the value of a user specified voxel.
Usage:
pxreplacevoxel
  -in      inputFilename
  [-out]   outputFilename, default in + VOXELREPLACED.mhd
  -vox     input voxel index
  -val     value that replaces the voxel
Supported: 2D, 3D, (unsigned) char, (unsigned) short, (unsigned) int,
(unsigned) long, float, double.`,
		Required: []cmdline.RequiredArgument{
			{Flag: "-in", Description: "The input filename."},
			{Flag: "-vox", Description: "Voxel."},
			{Flag: "-val", Description: "Value."},
		},
		Configure: configureReplaceVoxel,
	}
}

func configureReplaceVoxel(p *cmdline.Parser) (*Plan, error) {
	const name = "pxreplacevoxel"

	var in string
	if err := cmdline.Lookup(p, "-in", &in); err != nil {
		return nil, err
	}
	out := stem(in) + "VOXELREPLACED.mhd"
	if err := optional(cmdline.Lookup(p, "-out", &out)); err != nil {
		return nil, err
	}

	var voxel []int64
	if err := cmdline.LookupList(p, "-vox", &voxel); err != nil {
		return nil, err
	}
	if len(voxel) != 2 && len(voxel) != 3 {
		return nil, invalid(name, fmt.Sprintf(`you should specify 2 or 3 numbers with "-vox", got %d`, len(voxel)))
	}

	var value float64
	if err := cmdline.Lookup(p, "-val", &value); err != nil {
		return nil, err
	}

	return NewPlan(name).
		Set("in", in).
		Set("out", out).
		Set("voxel", voxel).
		Set("value", value), nil
}

// PCA computes principal components over a set of images.
func PCA() *Tool {
	return &Tool{
		Name:    "pxpca",
		Summary: "Principal component analysis over a set of images",
		Help: `Usage:
pxpca
  -in      inputFilenames
  [-out]   outputDirectory, default equal to the inputFilename directory
  [-npc]   the number of principal components that you want to output, default all
  [-opct]  output pixel component type, default derived from the input image
Supported: 2D, 3D, (unsigned) char, (unsigned) short, (unsigned) int, (unsigned) long, float, double.`,
		Required: []cmdline.RequiredArgument{
			{Flag: "-in", Description: "The input filenames."},
		},
		Configure: configurePCA,
	}
}

func configurePCA(p *cmdline.Parser) (*Plan, error) {
	const name = "pxpca"

	var in []string
	if err := cmdline.LookupList(p, "-in", &in); err != nil {
		return nil, err
	}

	out := filepath.Dir(in[0]) + string(filepath.Separator)
	if err := optional(cmdline.Lookup(p, "-out", &out)); err != nil {
		return nil, err
	}
	if !strings.HasSuffix(out, string(filepath.Separator)) {
		out += string(filepath.Separator)
	}

	npc := uint32(len(in))
	if err := optional(cmdline.Lookup(p, "-npc", &npc)); err != nil {
		return nil, err
	}
	if int(npc) > len(in) {
		return nil, invalid(name, fmt.Sprintf("you should specify at most %d output pc's", len(in)))
	}

	opct, err := componentType(p, name, "-opct")
	if err != nil {
		return nil, err
	}

	plan := NewPlan(name).
		Set("in", in).
		Set("out", out).
		Set("npc", npc)
	if opct != "" {
		plan.Set("opct", opct)
	}
	return plan, nil
}

// binaryOperators maps each operator to its accepted aliases.
var binaryOperators = map[string][]string{
	"ADDITION":           {"ADD", "PLUS"},
	"WEIGHTEDADDITION":   {"WEIGHTEDADD", "WEIGHTEDPLUS"},
	"MINUS":              {"DIFF"},
	"TIMES":              {"MULTIPLY"},
	"DIVIDE":             nil,
	"POWER":              nil,
	"MAXIMUM":            {"MAX"},
	"MINIMUM":            {"MIN"},
	"ABSOLUTEDIFFERENCE": {"ABSDIFFERENCE", "ABSOLUTEDIFF", "ABSDIFF", "ABSOLUTEMINUS", "ABSMINUS"},
	"SQUAREDDIFFERENCE":  {"SQUAREDDIFF", "SQUAREDMINUS"},
	"BINARYMAGNITUDE":    {"BINARYMAG", "BINMAGNITUDE", "BINMAG", "MAGNITUDE", "MAG"},
	"MASK":               nil,
	"MASKNEGATED":        {"MASKNEG"},
	"MODULO":             {"MOD"},
	"LOG":                {"LOGN"},
}

// canonicalOperator resolves an operator name or alias, ignoring case.
func canonicalOperator(op string) (string, bool) {
	op = strings.ToUpper(op)
	for canonical, aliases := range binaryOperators {
		if op == canonical || oneOf(op, aliases...) {
			return canonical, true
		}
	}
	return "", false
}

// operatorNeedsArgument lists the operators that read -arg.
var operatorNeedsArgument = map[string]bool{
	"WEIGHTEDADDITION": true,
	"MASK":             true,
	"MASKNEGATED":      true,
}

// BinaryImageOperator combines two images voxel by voxel.
func BinaryImageOperator() *Tool {
	return &Tool{
		Name:    "pxbinaryimageoperator",
		Summary: "Voxel-wise arithmetic on two images",
		Help: `Usage:
pxbinaryimageoperator
  -in      inputFilenames, two of them
  -ops     operation, choose one of {ADDITION, WEIGHTEDADDITION, MINUS, TIMES, DIVIDE, POWER,
           MAXIMUM, MINIMUM, ABSOLUTEDIFFERENCE, SQUAREDDIFFERENCE, BINARYMAGNITUDE, MASK,
           MASKNEGATED, MODULO, LOG}
  [-out]   outputFilename, default in1 + ops + in2 + .mhd
  [-arg]   argument, necessary for some ops
             WEIGHTEDADDITION: 0.0 < weight alpha < 1.0
             MASK[NEG]: background value, e.g. 0.
  [-z]     compression flag; if provided, the output image is compressed
  [-opct]  output component type, by default the largest of the two input images
Supported: 2D, 3D, (unsigned) char, (unsigned) short, (unsigned) int, (unsigned) long, float, double.`,
		Required: []cmdline.RequiredArgument{
			{Flag: "-in", Description: "The input filename."},
			{Flag: "-ops", Description: "The operation to perform."},
		},
		Configure: configureBinaryImageOperator,
	}
}

func configureBinaryImageOperator(p *cmdline.Parser) (*Plan, error) {
	const name = "pxbinaryimageoperator"

	var in []string
	if err := cmdline.LookupList(p, "-in", &in); err != nil {
		return nil, err
	}
	if len(in) != 2 {
		return nil, invalid(name, "you should specify two input file names")
	}

	var ops string
	if err := cmdline.Lookup(p, "-ops", &ops); err != nil {
		return nil, err
	}
	canonical, ok := canonicalOperator(ops)
	if !ok {
		return nil, invalid(name, "unknown operator: "+ops)
	}

	var out string
	if err := optional(cmdline.Lookup(p, "-out", &out)); err != nil {
		return nil, err
	}
	if out == "" {
		name1 := stem(filepath.Base(in[0]))
		name2 := stem(filepath.Base(in[1]))
		out = filepath.Join(filepath.Dir(in[0]), name1+canonical+name2+filepath.Ext(in[0]))
	}

	opct, err := componentType(p, name, "-opct")
	if err != nil {
		return nil, err
	}

	plan := NewPlan(name).
		Set("in", in).
		Set("out", out).
		Set("ops", canonical)

	hasArg := p.ArgumentExists("-arg")
	switch {
	case operatorNeedsArgument[canonical] && !hasArg:
		return nil, invalid(name, `operator `+canonical+` needs an argument, specify it with "-arg"`)
	case operatorNeedsArgument[canonical]:
		var arg float64
		if err := cmdline.Lookup(p, "-arg", &arg); err != nil {
			return nil, err
		}
		if canonical == "WEIGHTEDADDITION" && (arg < 0 || arg > 1) {
			return nil, invalid(name, "the weight should be between 0.0 and 1.0")
		}
		plan.Set("arg", arg)
	}

	plan.Set("compress", p.ArgumentExists("-z"))
	if opct != "" {
		plan.Set("opct", opct)
	}
	return plan, nil
}

// CastConvert converts between file formats and pixel types.
func CastConvert() *Tool {
	return &Tool{
		Name:    "pxcastconvert",
		Summary: "Convert an image or DICOM series to another format or pixel type",
		Help: `Usage:
pxcastconvert
  -in      inputfilename
  -out     outputfilename
  [-opct]  outputPixelComponentType
  [-z]     compression flag; if provided, the output image is compressed
OR pxcastconvert
  -in      dicomDirectory
  -out     outputfilename
  [-opct]  outputPixelComponentType
  [-s]     seriesUID
  [-r]     add restrictions to generate a unique seriesUID
           e.g. "0020|0012" to add a check for acquisition number.
  [-z]     compression flag; if provided, the output image is compressed
where outputPixelComponentType is one of:
  [unsigned_]char, [unsigned_]short, [unsigned_]int,
  [unsigned_]long, float, double,
provided that the outputPixelComponentType is supported by the output file format.
By default the outputPixelComponentType is set to the inputPixelComponentType.
By default the seriesUID is the first UID found.
The compression flag "-z" may be ignored by some output image formats.`,
		Required: []cmdline.RequiredArgument{
			{Flag: "-in", Description: "The input filename or DICOM directory."},
			{Flag: "-out", Description: "The output filename."},
		},
		Configure: configureCastConvert,
	}
}

func configureCastConvert(p *cmdline.Parser) (*Plan, error) {
	const name = "pxcastconvert"

	var in, out string
	if err := cmdline.Lookup(p, "-in", &in); err != nil {
		return nil, err
	}
	if err := cmdline.Lookup(p, "-out", &out); err != nil {
		return nil, err
	}

	opct, err := componentType(p, name, "-opct")
	if err != nil {
		return nil, err
	}

	plan := NewPlan(name).
		Set("in", in).
		Set("out", out)
	if opct != "" {
		plan.Set("opct", opct)
	}

	var series string
	if cmdline.Get(p, "-s", &series) {
		plan.Set("series", series)
	}
	var restrictions []string
	if cmdline.GetList(p, "-r", &restrictions) {
		plan.Set("restrictions", restrictions)
	}
	plan.Set("compress", p.ArgumentExists("-z"))
	return plan, nil
}
