package transform

import (
	"fmt"
	"math"
)

// FragmentCheck reports whether every fragment produced at least one version.
type FragmentCheck struct {
	Expected int  `json:"expected"`
	Received int  `json:"received"`
	Passed   bool `json:"passed"`
}

// LengthCheck reports whether every generated version landed within tolerance
// of its target. Expected lists the plan's target token counts in order.
type LengthCheck struct {
	Expected  []int   `json:"expected"`
	Passed    bool    `json:"passed"`
	Tolerance float64 `json:"tolerance"`
}

type ValidationResult struct {
	Fragments FragmentCheck `json:"fragments"`
	Lengths   LengthCheck   `json:"lengths"`
}

// ValidateResults runs the two advisory checks over the dispatch grid. It
// never fails the request; deviations and holes surface as warnings and a
// non-passing result.
func ValidateResults(req *Request, plan *Plan, grid [][][]*GenerationResult, cfg Config) (ValidationResult, []Warning) {
	var warnings []Warning

	received := 0
	lengthsPassed := true

	for fi := range grid {
		fragmentHasResult := false
		for li := range grid[fi] {
			target := plan.Targets[li]
			for vi := range grid[fi][li] {
				result := grid[fi][li][vi]
				if result == nil {
					continue
				}
				fragmentHasResult = true

				deviation := relativeDeviation(result.FinalPercentage, target.Percentage)
				if deviation > cfg.Tolerance {
					lengthsPassed = false
					warnings = append(warnings, Warning{
						Key:  fmt.Sprintf("%d.%d.%d", fi, li, vi),
						Code: WarnTargetDeviation,
						Message: fmt.Sprintf("Fragment %d, length %d, version %d: Target was %d%%, but achieved %.1f%%",
							fi+1, li+1, vi+1, target.Percentage, result.FinalPercentage),
					})
				}
			}
		}
		if fragmentHasResult {
			received++
		}
	}

	expected := len(req.Fragments)

	expectedTokens := make([]int, len(plan.Targets))
	for i, t := range plan.Targets {
		expectedTokens[i] = t.Tokens
	}

	return ValidationResult{
		Fragments: FragmentCheck{
			Expected: expected,
			Received: received,
			Passed:   expected == received,
		},
		Lengths: LengthCheck{
			Expected:  expectedTokens,
			Passed:    lengthsPassed,
			Tolerance: cfg.Tolerance,
		},
	}, warnings
}

func relativeDeviation(finalPercentage float64, targetPercentage int) float64 {
	if targetPercentage == 0 {
		return 0
	}
	return math.Abs(finalPercentage-float64(targetPercentage)) / float64(targetPercentage)
}
