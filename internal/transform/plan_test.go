package transform

import (
	"reflect"
	"testing"
)

func planRequest(op Operation, params Params) *Request {
	return &Request{
		Operation: op,
		Fragments: []Fragment{{Index: 0, Text: "text", Tokens: 100}},
		Params:    params,
	}
}

func TestBuildPlan_StaggeredSequence(t *testing.T) {
	plan, err := BuildPlan(planRequest(OpCompress, Params{
		Shape:            ShapeStaggered,
		StartPercentage:  80,
		TargetPercentage: 30,
		StepsPercentage:  10,
		Versions:         1,
	}), 100, DefaultConfig())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []int{80, 70, 60, 50, 40, 30}
	if !reflect.DeepEqual(plan.Percentages(), want) {
		t.Errorf("percentages = %v, want %v", plan.Percentages(), want)
	}

	seen := map[int]bool{}
	prev := 101
	for _, pct := range plan.Percentages() {
		if pct >= prev {
			t.Errorf("sequence not strictly descending at %d", pct)
		}
		if seen[pct] {
			t.Errorf("duplicate percentage %d", pct)
		}
		seen[pct] = true
		prev = pct
	}
}

func TestBuildPlan_StaggeredUnevenClampsToTarget(t *testing.T) {
	plan, err := BuildPlan(planRequest(OpCompress, Params{
		Shape:            ShapeStaggered,
		StartPercentage:  80,
		TargetPercentage: 35,
		StepsPercentage:  10,
		Versions:         1,
	}), 100, DefaultConfig())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []int{80, 70, 60, 50, 40, 35}
	if !reflect.DeepEqual(plan.Percentages(), want) {
		t.Errorf("percentages = %v, want %v", plan.Percentages(), want)
	}
}

func TestBuildPlan_ExpandStaggeredAscends(t *testing.T) {
	plan, err := BuildPlan(planRequest(OpExpand, Params{
		Shape:            ShapeStaggered,
		StartPercentage:  120,
		TargetPercentage: 200,
		StepsPercentage:  20,
		Versions:         1,
	}), 100, DefaultConfig())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []int{120, 140, 160, 180, 200}
	if !reflect.DeepEqual(plan.Percentages(), want) {
		t.Errorf("percentages = %v, want %v", plan.Percentages(), want)
	}
}

func TestBuildPlan_MultiPreservesOrder(t *testing.T) {
	plan, err := BuildPlan(planRequest(OpCompress, Params{
		Shape:             ShapeMulti,
		TargetPercentages: []int{75, 50, 25},
		Versions:          1,
	}), 100, DefaultConfig())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []int{75, 50, 25}
	if !reflect.DeepEqual(plan.Percentages(), want) {
		t.Errorf("percentages = %v, want %v", plan.Percentages(), want)
	}
}

func TestBuildPlan_TokenRounding(t *testing.T) {
	tests := []struct {
		originalTokens int
		percentage     int
		want           int
	}{
		{200, 50, 100},
		{3, 25, 1},
		{1, 20, 1},
		{150, 33, 50},
		{101, 50, 51},
	}

	for _, tt := range tests {
		got := TargetTokens(tt.originalTokens, tt.percentage)
		if got != tt.want {
			t.Errorf("TargetTokens(%d, %d) = %d, want %d", tt.originalTokens, tt.percentage, got, tt.want)
		}
	}
}

func TestBuildPlan_CompressHardRange(t *testing.T) {
	for _, pct := range []int{0, -10, 100, 140} {
		_, err := BuildPlan(planRequest(OpCompress, Params{
			Shape:            ShapeFixed,
			TargetPercentage: pct,
			Versions:         1,
		}), 100, DefaultConfig())
		if err == nil {
			t.Errorf("percentage %d should fail", pct)
			continue
		}
		if code := requestErrorCode(t, err); code != "validation_error" {
			t.Errorf("percentage %d: code = %q, want validation_error", pct, code)
		}
	}
}

func TestBuildPlan_CompressBusinessRange(t *testing.T) {
	for _, pct := range []int{15, 95} {
		_, err := BuildPlan(planRequest(OpCompress, Params{
			Shape:            ShapeFixed,
			TargetPercentage: pct,
			Versions:         1,
		}), 100, DefaultConfig())
		if err == nil {
			t.Errorf("percentage %d should fail", pct)
			continue
		}
		if code := requestErrorCode(t, err); code != "content_error" {
			t.Errorf("percentage %d: code = %q, want content_error", pct, code)
		}
	}
}

func TestBuildPlan_ExpandRange(t *testing.T) {
	for _, pct := range []int{100, 105, 350} {
		_, err := BuildPlan(planRequest(OpExpand, Params{
			Shape:            ShapeFixed,
			TargetPercentage: pct,
			Versions:         1,
		}), 100, DefaultConfig())
		if err == nil {
			t.Errorf("percentage %d should fail", pct)
			continue
		}
		if code := requestErrorCode(t, err); code != "validation_error" {
			t.Errorf("percentage %d: code = %q, want validation_error", pct, code)
		}
	}

	plan, err := BuildPlan(planRequest(OpExpand, Params{
		Shape:            ShapeFixed,
		TargetPercentage: 150,
		Versions:         1,
	}), 100, DefaultConfig())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if plan.Targets[0].Tokens != 150 {
		t.Errorf("tokens = %d, want 150", plan.Targets[0].Tokens)
	}
}

func TestBuildPlan_FixedHoldsSingleTarget(t *testing.T) {
	// Versions multiply at dispatch time, not in the plan.
	plan, err := BuildPlan(planRequest(OpCompress, Params{
		Shape:            ShapeFixed,
		TargetPercentage: 50,
		Versions:         5,
	}), 200, DefaultConfig())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(plan.Targets) != 1 {
		t.Errorf("got %d targets, want 1", len(plan.Targets))
	}
	if plan.Targets[0].Tokens != 100 {
		t.Errorf("tokens = %d, want 100", plan.Targets[0].Tokens)
	}
}
