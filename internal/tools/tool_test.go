// tool_test.go: Tests for the tool catalogue and invocation
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package tools

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/agilira/cmdline"
	"github.com/google/go-cmp/cmp"
	"go.yaml.in/yaml/v3"
)

// quietConfig sends help and diagnostics to buffers.
func quietConfig() (cmdline.Config, *bytes.Buffer, *bytes.Buffer) {
	stdout, stderr := &bytes.Buffer{}, &bytes.Buffer{}
	return cmdline.Config{Stdout: stdout, Stderr: stderr, NoColor: true}, stdout, stderr
}

func TestCatalogueLookup(t *testing.T) {
	c := Default()

	for _, name := range []string{"pxcastconvert", "/usr/local/bin/pxcastconvert", "castconvert"} {
		tool, err := c.Lookup(name)
		if err != nil {
			t.Errorf("Lookup(%q) failed: %v", name, err)
			continue
		}
		if tool.Name != "pxcastconvert" {
			t.Errorf("Lookup(%q) = %s", name, tool.Name)
		}
	}

	if _, err := c.Lookup("pxunknown"); !cmdline.IsCode(err, cmdline.ErrCodeUnknownTool) {
		t.Errorf("expected %s, got %v", cmdline.ErrCodeUnknownTool, err)
	}
	if c.Has("list") || !c.Has("pca") {
		t.Error("Has misreports tool names")
	}
}

func TestCatalogueNames(t *testing.T) {
	want := []string{
		"pxbinaryimageoperator",
		"pxcastconvert",
		"pxcreatebox",
		"pxcreatezeroimage",
		"pxdistancetransform",
		"pxgaussianimagefilter",
		"pxmorphology",
		"pxpca",
		"pxreplacevoxel",
	}
	if diff := cmp.Diff(want, Default().Names()); diff != "" {
		t.Errorf("names mismatch (-want +got):\n%s", diff)
	}

	for _, tool := range Default().Tools() {
		if tool.Help == "" || tool.Summary == "" || tool.Configure == nil {
			t.Errorf("%s is incomplete", tool.Name)
		}
	}
}

func TestPlanSetReplaces(t *testing.T) {
	plan := NewPlan("pxtool").Set("a", 1).Set("b", 2).Set("a", 3)

	if len(plan.Parameters) != 2 {
		t.Fatalf("expected 2 parameters, got %+v", plan.Parameters)
	}
	if v, ok := plan.Get("a"); !ok || v != 3 {
		t.Errorf("Get(a) = %v, %v", v, ok)
	}
	if _, ok := plan.Get("c"); ok {
		t.Error("Get(c) should fail")
	}
}

func TestInvokeWritesPlan(t *testing.T) {
	config, _, stderr := quietConfig()
	out := &bytes.Buffer{}

	tool := CastConvert()
	verdict, err := tool.Invoke(context.Background(),
		[]string{"pxcastconvert", "-in", "a.mhd", "-out", "b.nii", "-opct", "unsigned char", "-z"},
		InvokeOptions{Config: config, Runner: NewPlanWriter(out)})
	if err != nil || verdict != cmdline.VerdictPassed {
		t.Fatalf("Invoke = %s, %v (stderr %q)", verdict, err, stderr.String())
	}

	var decoded struct {
		Tool       string `yaml:"tool"`
		Parameters []struct {
			Name  string      `yaml:"name"`
			Value interface{} `yaml:"value"`
		} `yaml:"parameters"`
	}
	if err := yaml.Unmarshal(out.Bytes(), &decoded); err != nil {
		t.Fatalf("plan is not valid YAML: %v\n%s", err, out.String())
	}
	if decoded.Tool != "pxcastconvert" {
		t.Errorf("tool = %q", decoded.Tool)
	}
	got := map[string]interface{}{}
	for _, p := range decoded.Parameters {
		got[p.Name] = p.Value
	}
	if got["opct"] != "unsigned_char" || got["compress"] != true || got["out"] != "b.nii" {
		t.Errorf("unexpected plan parameters: %v", got)
	}
}

func TestInvokeHelpAndFailure(t *testing.T) {
	runs := 0
	runner := RunnerFunc(func(ctx context.Context, plan Plan) error {
		runs++
		return nil
	})

	config, stdout, _ := quietConfig()
	verdict, err := PCA().Invoke(context.Background(), []string{"pxpca"}, InvokeOptions{Config: config, Runner: runner})
	if err != nil || verdict != cmdline.VerdictHelpRequested {
		t.Errorf("no arguments: %s, %v", verdict, err)
	}
	if !strings.HasPrefix(stdout.String(), "Usage:\npxpca") {
		t.Errorf("help not printed: %q", stdout.String())
	}

	config, _, stderr := quietConfig()
	verdict, err = Morphology().Invoke(context.Background(), []string{"pxmorphology", "-in", "a.mhd"},
		InvokeOptions{Config: config, Runner: runner})
	if err != nil || verdict != cmdline.VerdictFailed {
		t.Errorf("missing arguments: %s, %v", verdict, err)
	}
	if strings.Count(stderr.String(), "ERROR:") != 2 {
		t.Errorf("expected both missing arguments reported, got %q", stderr.String())
	}

	config, _, _ = quietConfig()
	verdict, err = ReplaceVoxel().Invoke(context.Background(), []string{"pxreplacevoxel", "-in", "a", "-vox", "1", "-val", "2"},
		InvokeOptions{Config: config, Runner: runner})
	if verdict != cmdline.VerdictFailed || !cmdline.IsCode(err, cmdline.ErrCodeInvalidArgument) {
		t.Errorf("tool-level error: %s, %v", verdict, err)
	}

	if runs != 0 {
		t.Errorf("runner must not run when validation fails, ran %d times", runs)
	}
}

func TestInvokeRunnerError(t *testing.T) {
	config, _, _ := quietConfig()
	boom := errors.New("disk full")

	verdict, err := CastConvert().Invoke(context.Background(), []string{"pxcastconvert", "-in", "a", "-out", "b"},
		InvokeOptions{Config: config, Runner: RunnerFunc(func(context.Context, Plan) error { return boom })})
	if verdict != cmdline.VerdictFailed || !cmdline.IsCode(err, cmdline.ErrCodePipelineError) {
		t.Errorf("Invoke = %s, %v", verdict, err)
	}
	if !errors.Is(err, boom) {
		t.Errorf("runner error not wrapped: %v", err)
	}
}

func TestPlanWriterHonoursCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	out := &bytes.Buffer{}
	if err := NewPlanWriter(out).Run(ctx, *NewPlan("pxpca")); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
	if out.Len() != 0 {
		t.Errorf("nothing should be written, got %q", out.String())
	}
}

func TestInvokeAuditsVerdict(t *testing.T) {
	config, _, _ := quietConfig()
	auditor := &countingAuditor{}

	_, _ = PCA().Invoke(context.Background(), []string{"pxpca", "-in", "a", "-npc"},
		InvokeOptions{Config: config, Auditor: auditor})

	if auditor.validations != 1 {
		t.Errorf("validations = %d", auditor.validations)
	}
	if auditor.extractions != 1 {
		t.Errorf("expected the valueless -npc to be audited, got %d", auditor.extractions)
	}
}

type countingAuditor struct {
	validations int
	extractions int
}

func (a *countingAuditor) LogValidation(string, cmdline.RequirementReport) { a.validations++ }
func (a *countingAuditor) LogExtractionFailure(string, string, error)      { a.extractions++ }

func TestCheck(t *testing.T) {
	tool := CreateBox()

	argv, err := cmdline.SplitCommandLine("pxcreatebox -out box.mhd -s 10")
	if err != nil {
		t.Fatal(err)
	}
	report, plan, err := tool.Check(argv, cmdline.Config{})
	if report.Verdict != cmdline.VerdictFailed || plan != nil || err != nil {
		t.Errorf("missing group: %s, %v, %v", report.Verdict, plan, err)
	}
	if len(report.Violations) != 1 || report.Violations[0].Code != cmdline.ErrCodeAmbiguousGroup {
		t.Errorf("violations = %+v", report.Violations)
	}

	argv, _ = cmdline.SplitCommandLine("pxcreatebox -out box.mhd -s 10 -c 5 -r 2")
	report, plan, err = tool.Check(argv, cmdline.Config{})
	if report.Verdict != cmdline.VerdictPassed || err != nil || plan == nil {
		t.Fatalf("valid box: %s, %v", report.Verdict, err)
	}
}

func TestCheckStrictNumbers(t *testing.T) {
	argv, _ := cmdline.SplitCommandLine("pxreplacevoxel -in a.mhd -vox 1 2x 3 -val 4")

	_, plan, err := ReplaceVoxel().Check(argv, cmdline.Config{})
	if err != nil {
		t.Fatalf("lenient check failed: %v", err)
	}
	if v, _ := plan.Get("voxel"); !cmp.Equal(v, []int64{1, 2, 3}) {
		t.Errorf("voxel = %v", v)
	}

	_, _, err = ReplaceVoxel().Check(argv, cmdline.Config{NumericMode: cmdline.NumericStrict})
	if !cmdline.IsCode(err, cmdline.ErrCodeMalformedValue) {
		t.Errorf("expected %s, got %v", cmdline.ErrCodeMalformedValue, err)
	}
}
