package transform

import (
	"reflect"
	"testing"
)

func normalizeOrFail(t *testing.T, op Operation, raw map[string]any) (*Request, []Warning) {
	t.Helper()
	req, warnings, err := Normalize(op, raw, DefaultConfig())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return req, warnings
}

func TestNormalize_CohesiveContent(t *testing.T) {
	req, warnings := normalizeOrFail(t, OpCompress, map[string]any{
		"content":           "some text to compress",
		"target_percentage": float64(50),
	})

	if req.IsFragments {
		t.Error("single string content should not be a fragment batch")
	}
	if len(req.Fragments) != 1 {
		t.Fatalf("got %d fragments, want 1", len(req.Fragments))
	}
	if req.Params.Shape != ShapeFixed {
		t.Errorf("shape = %q, want fixed", req.Params.Shape)
	}
	if req.Params.TargetPercentage != 50 {
		t.Errorf("target = %d, want 50", req.Params.TargetPercentage)
	}
	if len(warnings) != 0 {
		t.Errorf("unexpected warnings: %+v", warnings)
	}
}

func TestNormalize_FragmentContentKeepsOrder(t *testing.T) {
	req, _ := normalizeOrFail(t, OpCompress, map[string]any{
		"content": []any{"first", "second", "third"},
	})

	if !req.IsFragments {
		t.Error("list content should be a fragment batch")
	}
	for i, want := range []string{"first", "second", "third"} {
		if req.Fragments[i].Index != i || req.Fragments[i].Text != want {
			t.Errorf("fragment %d = %+v, want %q", i, req.Fragments[i], want)
		}
	}
}

func TestNormalize_ContentRequired(t *testing.T) {
	tests := []struct {
		name string
		raw  map[string]any
	}{
		{"missing content", map[string]any{}},
		{"empty string", map[string]any{"content": "   "}},
		{"empty list", map[string]any{"content": []any{}}},
		{"empty fragment", map[string]any{"content": []any{"ok", ""}}},
		{"non-string fragment", map[string]any{"content": []any{"ok", float64(3)}}},
		{"wrong type", map[string]any{"content": float64(3)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := Normalize(OpCompress, tt.raw, DefaultConfig())
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if code := requestErrorCode(t, err); code != "validation_error" {
				t.Errorf("code = %q, want validation_error", code)
			}
		})
	}
}

func TestNormalize_UnknownParameterWarns(t *testing.T) {
	_, warnings := normalizeOrFail(t, OpCompress, map[string]any{
		"content": "text",
		"foo":     float64(1),
	})

	if len(warnings) != 1 {
		t.Fatalf("got %d warnings, want 1: %+v", len(warnings), warnings)
	}
	if warnings[0].Code != WarnValidation || warnings[0].Key != "foo" {
		t.Errorf("warning = %+v, want validation_warning keyed foo", warnings[0])
	}
}

func TestNormalize_VersionsRange(t *testing.T) {
	for _, versions := range []float64{0, 6, -1} {
		_, _, err := Normalize(OpCompress, map[string]any{
			"content":  "text",
			"versions": versions,
		}, DefaultConfig())
		if err == nil {
			t.Errorf("versions=%v should fail", versions)
		}
	}

	req, _ := normalizeOrFail(t, OpCompress, map[string]any{
		"content":  "text",
		"versions": float64(3),
	})
	if req.Params.Versions != 3 {
		t.Errorf("versions = %d, want 3", req.Params.Versions)
	}
}

func TestNormalize_VersionsMustBeInteger(t *testing.T) {
	_, _, err := Normalize(OpCompress, map[string]any{
		"content":  "text",
		"versions": 2.5,
	}, DefaultConfig())
	if err == nil {
		t.Fatal("fractional versions should fail")
	}
}

func TestNormalize_StaggeredWinsOverMulti(t *testing.T) {
	req, warnings := normalizeOrFail(t, OpCompress, map[string]any{
		"content":            "text",
		"start_percentage":   float64(80),
		"target_percentage":  float64(30),
		"steps_percentage":   float64(10),
		"target_percentages": []any{float64(75), float64(50)},
	})

	if req.Params.Shape != ShapeStaggered {
		t.Fatalf("shape = %q, want staggered", req.Params.Shape)
	}

	found := false
	for _, w := range warnings {
		if w.Key == "target_percentages" && w.Code == WarnValidation {
			found = true
		}
	}
	if !found {
		t.Errorf("expected warning for ignored target_percentages, got %+v", warnings)
	}
}

func TestNormalize_MultiWinsOverFixed(t *testing.T) {
	req, warnings := normalizeOrFail(t, OpCompress, map[string]any{
		"content":            "text",
		"target_percentage":  float64(50),
		"target_percentages": []any{float64(75), float64(50), float64(25)},
	})

	if req.Params.Shape != ShapeMulti {
		t.Fatalf("shape = %q, want multi", req.Params.Shape)
	}
	if !reflect.DeepEqual(req.Params.TargetPercentages, []int{75, 50, 25}) {
		t.Errorf("targets = %v, want [75 50 25]", req.Params.TargetPercentages)
	}

	found := false
	for _, w := range warnings {
		if w.Key == "target_percentage" {
			found = true
		}
	}
	if !found {
		t.Errorf("expected warning for ignored target_percentage, got %+v", warnings)
	}
}

func TestNormalize_StaggeredDirection(t *testing.T) {
	_, _, err := Normalize(OpCompress, map[string]any{
		"content":           "text",
		"start_percentage":  float64(30),
		"target_percentage": float64(80),
		"steps_percentage":  float64(10),
	}, DefaultConfig())
	if err == nil {
		t.Fatal("compression start below target should fail")
	}

	_, _, err = Normalize(OpExpand, map[string]any{
		"content":           "text",
		"start_percentage":  float64(250),
		"target_percentage": float64(150),
		"steps_percentage":  float64(20),
	}, DefaultConfig())
	if err == nil {
		t.Fatal("expansion start above target should fail")
	}
}

func TestNormalize_StepSizeRange(t *testing.T) {
	for _, step := range []float64{5, 60} {
		_, _, err := Normalize(OpCompress, map[string]any{
			"content":           "text",
			"start_percentage":  float64(80),
			"target_percentage": float64(30),
			"steps_percentage":  step,
		}, DefaultConfig())
		if err == nil {
			t.Errorf("step=%v should fail", step)
		}
	}
}

func TestNormalize_StepSignIgnored(t *testing.T) {
	req, _ := normalizeOrFail(t, OpCompress, map[string]any{
		"content":           "text",
		"start_percentage":  float64(80),
		"target_percentage": float64(30),
		"steps_percentage":  float64(-10),
	})
	if req.Params.StepsPercentage != 10 {
		t.Errorf("step = %d, want magnitude 10", req.Params.StepsPercentage)
	}
}

func TestNormalize_UnknownStyleDropped(t *testing.T) {
	req, warnings := normalizeOrFail(t, OpCompress, map[string]any{
		"content": "text",
		"style":   "baroque",
		"tone":    "formal",
	})

	if req.Params.Style != "" {
		t.Errorf("unknown style should be dropped, got %q", req.Params.Style)
	}
	if req.Params.Tone != "formal" {
		t.Errorf("valid tone should be kept, got %q", req.Params.Tone)
	}

	found := false
	for _, w := range warnings {
		if w.Key == "style" && w.Code == WarnValidation {
			found = true
		}
	}
	if !found {
		t.Errorf("expected warning for unknown style, got %+v", warnings)
	}
}

func TestNormalize_FragmentStyleSet(t *testing.T) {
	req, warnings := normalizeOrFail(t, OpFragment, map[string]any{
		"content": "text",
		"style":   "bullet",
	})
	if req.Params.Style != "bullet" {
		t.Errorf("style = %q, want bullet", req.Params.Style)
	}
	if len(warnings) != 0 {
		t.Errorf("unexpected warnings: %+v", warnings)
	}
}

func TestNormalize_FragmentIgnoresLengthParams(t *testing.T) {
	req, warnings := normalizeOrFail(t, OpFragment, map[string]any{
		"content":           "text",
		"target_percentage": float64(50),
	})

	if req.Params.TargetPercentage != 100 {
		t.Errorf("fragment operation should run at 100%%, got %d", req.Params.TargetPercentage)
	}

	found := false
	for _, w := range warnings {
		if w.Key == "target_percentage" {
			found = true
		}
	}
	if !found {
		t.Errorf("expected warning for ignored length parameter, got %+v", warnings)
	}
}

func TestNormalize_DefaultTargets(t *testing.T) {
	compress, _ := normalizeOrFail(t, OpCompress, map[string]any{"content": "text"})
	if compress.Params.TargetPercentage != 50 {
		t.Errorf("compress default = %d, want 50", compress.Params.TargetPercentage)
	}

	expand, _ := normalizeOrFail(t, OpExpand, map[string]any{"content": "text"})
	if expand.Params.TargetPercentage != 150 {
		t.Errorf("expand default = %d, want 150", expand.Params.TargetPercentage)
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	canonical := map[string]any{
		"content":           "a perfectly ordinary piece of text",
		"target_percentage": float64(50),
		"versions":          float64(2),
		"style":             "professional",
	}

	first, firstWarnings := normalizeOrFail(t, OpCompress, canonical)
	second, secondWarnings := normalizeOrFail(t, OpCompress, canonical)

	if len(firstWarnings) != 0 || len(secondWarnings) != 0 {
		t.Errorf("canonical request should not warn: %+v %+v", firstWarnings, secondWarnings)
	}
	if !reflect.DeepEqual(first, second) {
		t.Errorf("normalization is not stable:\nfirst  %+v\nsecond %+v", first, second)
	}

	cfg := DefaultConfig()
	firstPlan, err := BuildPlan(first, 200, cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	secondPlan, err := BuildPlan(second, 200, cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(firstPlan, secondPlan) {
		t.Errorf("plans differ:\nfirst  %+v\nsecond %+v", firstPlan, secondPlan)
	}
}

func TestNormalize_UnknownOperation(t *testing.T) {
	_, _, err := Normalize(Operation("rephrase"), map[string]any{"content": "text"}, DefaultConfig())
	if err == nil {
		t.Fatal("expected error, got nil")
	}
}
