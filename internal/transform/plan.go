package transform

import (
	"fmt"
	"math"
)

// LengthTarget is one desired output size: a percentage of the original
// token count and its absolute token equivalent.
type LengthTarget struct {
	Percentage int
	Tokens     int
}

// Plan is the ordered sequence of length targets a request resolves to.
// Token counts are resolved against the reference token count passed to
// BuildPlan (the cohesive text, or the first fragment of a batch); fragments
// with different sizes resolve their own counts through TargetTokens.
type Plan struct {
	Shape    PlanShape
	Targets  []LengthTarget
	StepSize int
}

func (p *Plan) Percentages() []int {
	out := make([]int, len(p.Targets))
	for i, t := range p.Targets {
		out[i] = t.Percentage
	}
	return out
}

// TargetTokens converts a percentage to an absolute token count, never below 1.
func TargetTokens(originalTokens, percentage int) int {
	tokens := int(math.Round(float64(originalTokens) * float64(percentage) / 100))
	if tokens < 1 {
		tokens = 1
	}
	return tokens
}

// BuildPlan turns the normalized length parameters into an ordered plan.
// Staggered plans run from start_percentage towards target_percentage in
// steps_percentage increments; when the distance is not evenly divisible by
// the step, the final step is clamped to land exactly on the target.
func BuildPlan(req *Request, originalTokens int, cfg Config) (*Plan, error) {
	p := req.Params

	var percentages []int
	switch p.Shape {
	case ShapeMulti:
		percentages = p.TargetPercentages
	case ShapeStaggered:
		percentages = staggeredPercentages(req.Operation, p.StartPercentage, p.TargetPercentage, p.StepsPercentage)
	default:
		percentages = []int{p.TargetPercentage}
	}

	targets := make([]LengthTarget, 0, len(percentages))
	for _, pct := range percentages {
		if err := validatePercentage(req.Operation, pct, cfg); err != nil {
			return nil, err
		}
		targets = append(targets, LengthTarget{
			Percentage: pct,
			Tokens:     TargetTokens(originalTokens, pct),
		})
	}

	return &Plan{
		Shape:    p.Shape,
		Targets:  targets,
		StepSize: p.StepsPercentage,
	}, nil
}

func staggeredPercentages(op Operation, start, target, step int) []int {
	percentages := []int{start}
	if op == OpExpand {
		for current := start + step; current < target; current += step {
			percentages = append(percentages, current)
		}
	} else {
		for current := start - step; current > target; current -= step {
			percentages = append(percentages, current)
		}
	}
	return append(percentages, target)
}

func validatePercentage(op Operation, pct int, cfg Config) error {
	switch op {
	case OpCompress:
		if pct <= 0 || pct >= 100 {
			return NewValidationError(
				"compression percentages must be between 1 and 99",
				fmt.Sprintf("got %d", pct),
			)
		}
		if pct < cfg.CompressFloor || pct > cfg.CompressCeiling {
			return NewContentError(
				fmt.Sprintf("compression targets must be between %d%% and %d%%", cfg.CompressFloor, cfg.CompressCeiling),
				fmt.Sprintf("got %d", pct),
			)
		}
	case OpExpand:
		if pct < cfg.ExpandFloor || pct > cfg.ExpandCeiling {
			return NewValidationError(
				fmt.Sprintf("expansion targets must be between %d%% and %d%%", cfg.ExpandFloor, cfg.ExpandCeiling),
				fmt.Sprintf("got %d", pct),
			)
		}
	}
	// Fragment and join run at the original length; no range to enforce.
	return nil
}
