package transform

import "fmt"

type VersionResult struct {
	Text            string  `json:"text"`
	FinalTokens     int     `json:"final_tokens"`
	FinalPercentage float64 `json:"final_percentage"`
}

type LengthResult struct {
	TargetPercentage int             `json:"target_percentage"`
	TargetTokens     int             `json:"target_tokens"`
	Versions         []VersionResult `json:"versions"`
}

type FragmentResult struct {
	Lengths []LengthResult `json:"lengths"`
}

type Metadata struct {
	Mode              string           `json:"mode"`
	Operation         string           `json:"operation"`
	OriginalTokens    any              `json:"original_tokens"`
	TargetPercentages []int            `json:"target_percentages"`
	StepSize          int              `json:"step_size,omitempty"`
	VersionsRequested int              `json:"versions_requested"`
	FinalVersions     int              `json:"final_versions"`
	Validation        ValidationResult `json:"validation"`
	Warnings          []Warning        `json:"warnings"`
}

// Response is the canonical result tree. Cohesive requests populate Lengths;
// fragment requests populate Fragments. Failed slots are simply absent from
// the version lists; the metadata says what is missing and why.
type Response struct {
	Type      string           `json:"type"`
	Lengths   []LengthResult   `json:"lengths,omitempty"`
	Fragments []FragmentResult `json:"fragments,omitempty"`
	Metadata  Metadata         `json:"metadata"`
}

// Assemble builds the response tree in plan/dispatch order. Parameter
// warnings come first, then per-slot warnings in traversal order regardless
// of whether they came from dispatch failures or tolerance checks.
func Assemble(req *Request, plan *Plan, grid [][][]*GenerationResult,
	validation ValidationResult, paramWarnings, slotWarnings []Warning) *Response {

	finalVersions := 0
	buildLengths := func(fragment Fragment, row [][]*GenerationResult) []LengthResult {
		lengths := make([]LengthResult, len(plan.Targets))
		for li, target := range plan.Targets {
			versions := make([]VersionResult, 0, len(row[li]))
			for _, result := range row[li] {
				if result == nil {
					continue
				}
				versions = append(versions, VersionResult{
					Text:            result.Text,
					FinalTokens:     result.FinalTokens,
					FinalPercentage: result.FinalPercentage,
				})
				finalVersions++
			}
			lengths[li] = LengthResult{
				TargetPercentage: target.Percentage,
				TargetTokens:     TargetTokens(fragment.Tokens, target.Percentage),
				Versions:         versions,
			}
		}
		return lengths
	}

	resp := &Response{}
	var originalTokens any

	if req.IsFragments {
		resp.Type = "fragments"
		tokens := make([]int, len(req.Fragments))
		resp.Fragments = make([]FragmentResult, len(req.Fragments))
		for fi, fragment := range req.Fragments {
			tokens[fi] = fragment.Tokens
			resp.Fragments[fi] = FragmentResult{Lengths: buildLengths(fragment, grid[fi])}
		}
		originalTokens = tokens
	} else {
		resp.Type = "cohesive"
		resp.Lengths = buildLengths(req.Fragments[0], grid[0])
		originalTokens = req.Fragments[0].Tokens
	}

	warnings := make([]Warning, 0, len(paramWarnings)+len(slotWarnings))
	warnings = append(warnings, paramWarnings...)
	warnings = append(warnings, orderSlotWarnings(slotWarnings, len(req.Fragments), len(plan.Targets), req.Params.Versions)...)

	resp.Metadata = Metadata{
		Mode:              responseMode(req, plan),
		Operation:         string(req.Operation),
		OriginalTokens:    originalTokens,
		TargetPercentages: plan.Percentages(),
		StepSize:          plan.StepSize,
		VersionsRequested: req.Params.Versions,
		FinalVersions:     finalVersions,
		Validation:        validation,
		Warnings:          warnings,
	}

	return resp
}

func responseMode(req *Request, plan *Plan) string {
	if req.IsFragments {
		return "fragments"
	}
	if plan.Shape == ShapeStaggered || plan.Shape == ShapeMulti {
		return "staggered"
	}
	return "fixed"
}

// orderSlotWarnings sorts per-slot warnings into fragment/length/version
// traversal order. A slot holds at most one warning: a failed slot has no
// generated text for the tolerance check to flag.
func orderSlotWarnings(warnings []Warning, fragments, lengths, versions int) []Warning {
	if len(warnings) < 2 {
		return warnings
	}

	byKey := make(map[string]Warning, len(warnings))
	for _, w := range warnings {
		byKey[w.Key] = w
	}

	ordered := make([]Warning, 0, len(warnings))
	for fi := 0; fi < fragments; fi++ {
		for li := 0; li < lengths; li++ {
			for vi := 0; vi < versions; vi++ {
				if w, ok := byKey[fmt.Sprintf("%d.%d.%d", fi, li, vi)]; ok {
					ordered = append(ordered, w)
				}
			}
		}
	}
	return ordered
}
