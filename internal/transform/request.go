package transform

import (
	"fmt"
	"math"
	"sort"
	"strings"
)

type Operation string

const (
	OpCompress Operation = "compress"
	OpExpand   Operation = "expand"
	OpFragment Operation = "fragment"
	OpJoin     Operation = "join"
)

// PlanShape identifies which of the three mutually exclusive length
// specifications a request resolved to.
type PlanShape string

const (
	ShapeFixed     PlanShape = "fixed"
	ShapeMulti     PlanShape = "multi"
	ShapeStaggered PlanShape = "staggered"
)

type Fragment struct {
	Index  int
	Text   string
	Tokens int
}

type Params struct {
	Shape             PlanShape
	TargetPercentage  int
	TargetPercentages []int
	StartPercentage   int
	StepsPercentage   int
	Versions          int
	Style             string
	Tone              string
	Aspects           []string
}

// Request is an immutable, validated transformation request. Fragment token
// counts are filled in by the engine before planning.
type Request struct {
	Operation   Operation
	IsFragments bool
	Fragments   []Fragment
	Params      Params
}

var recognizedParams = map[string]bool{
	"content":            true,
	"operation":          true,
	"style":              true,
	"tone":               true,
	"aspects":            true,
	"versions":           true,
	"target_percentage":  true,
	"target_percentages": true,
	"start_percentage":   true,
	"steps_percentage":   true,
}

const defaultStepSize = 25

// Normalize validates the raw request body and canonicalizes it into a
// Request. Unknown parameters and dropped values are reported as non-fatal
// warnings; structural problems abort with a RequestError.
func Normalize(op Operation, raw map[string]any, cfg Config) (*Request, []Warning, error) {
	switch op {
	case OpCompress, OpExpand, OpFragment, OpJoin:
	default:
		return nil, nil, NewValidationError(
			fmt.Sprintf("unknown operation %q", op),
			"operation must be one of compress, expand, fragment, join",
		)
	}

	var warnings []Warning

	for _, name := range sortedKeys(raw) {
		if !recognizedParams[name] {
			warnings = append(warnings, Warning{
				Key:     name,
				Code:    WarnValidation,
				Message: fmt.Sprintf("Unknown parameter %q ignored", name),
			})
		}
	}

	fragments, isFragments, err := normalizeContent(raw["content"])
	if err != nil {
		return nil, nil, err
	}

	params, paramWarnings, err := normalizeParams(op, raw, cfg)
	if err != nil {
		return nil, nil, err
	}
	warnings = append(warnings, paramWarnings...)

	return &Request{
		Operation:   op,
		IsFragments: isFragments,
		Fragments:   fragments,
		Params:      params,
	}, warnings, nil
}

func normalizeContent(value any) ([]Fragment, bool, error) {
	switch v := value.(type) {
	case nil:
		return nil, false, NewValidationError("content is required", "")
	case string:
		if strings.TrimSpace(v) == "" {
			return nil, false, NewValidationError("content must not be empty", "")
		}
		return []Fragment{{Index: 0, Text: v}}, false, nil
	case []any:
		if len(v) == 0 {
			return nil, false, NewValidationError("content must not be empty", "")
		}
		fragments := make([]Fragment, 0, len(v))
		for i, item := range v {
			text, ok := item.(string)
			if !ok {
				return nil, false, NewValidationError(
					"content fragments must be strings",
					fmt.Sprintf("fragment at index %d is not a string", i),
				)
			}
			if strings.TrimSpace(text) == "" {
				return nil, false, NewValidationError(
					"content fragments must not be empty",
					fmt.Sprintf("fragment at index %d is empty", i),
				)
			}
			fragments = append(fragments, Fragment{Index: i, Text: text})
		}
		return fragments, true, nil
	case []string:
		items := make([]any, len(v))
		for i, s := range v {
			items[i] = s
		}
		return normalizeContent(items)
	default:
		return nil, false, NewValidationError(
			"content must be a string or a list of strings", "",
		)
	}
}

func normalizeParams(op Operation, raw map[string]any, cfg Config) (Params, []Warning, error) {
	var warnings []Warning
	p := Params{Versions: 1}

	if v, present := raw["versions"]; present {
		versions, ok := intValue(v)
		if !ok {
			return p, nil, NewValidationError("versions must be an integer", "")
		}
		if versions < 1 || versions > cfg.MaxVersions {
			return p, nil, NewValidationError(
				fmt.Sprintf("versions must be between 1 and %d", cfg.MaxVersions),
				fmt.Sprintf("got %d", versions),
			)
		}
		p.Versions = versions
	}

	var err error
	if p.Style, err = stringParam(raw, "style"); err != nil {
		return p, nil, err
	}
	if p.Tone, err = stringParam(raw, "tone"); err != nil {
		return p, nil, err
	}
	if p.Aspects, err = stringListParam(raw, "aspects"); err != nil {
		return p, nil, err
	}
	warnings = append(warnings, validateOptions(op, &p, cfg)...)

	target, hasTarget, err := intParam(raw, "target_percentage")
	if err != nil {
		return p, nil, err
	}
	targets, hasTargets, err := intListParam(raw, "target_percentages")
	if err != nil {
		return p, nil, err
	}
	start, hasStart, err := intParam(raw, "start_percentage")
	if err != nil {
		return p, nil, err
	}
	step, hasStep, err := intParam(raw, "steps_percentage")
	if err != nil {
		return p, nil, err
	}

	// Fragment and join operate at the original length. Length-control
	// parameters do not apply and are dropped with a warning.
	if op == OpFragment || op == OpJoin {
		for _, ignored := range []struct {
			name    string
			present bool
		}{
			{"target_percentage", hasTarget},
			{"target_percentages", hasTargets},
			{"start_percentage", hasStart},
			{"steps_percentage", hasStep},
		} {
			if ignored.present {
				warnings = append(warnings, Warning{
					Key:     ignored.name,
					Code:    WarnValidation,
					Message: fmt.Sprintf("%s is ignored for the %s operation", ignored.name, op),
				})
			}
		}
		p.Shape = ShapeFixed
		p.TargetPercentage = 100
		return p, warnings, nil
	}

	// The three length specifications are mutually exclusive. When a request
	// mixes them, the most specific shape wins: staggered > multi > fixed.
	// start_percentage or steps_percentage selects the staggered shape, which
	// consumes target_percentage as its endpoint.
	switch {
	case hasStart || hasStep:
		p.Shape = ShapeStaggered
		if hasTargets {
			warnings = append(warnings, Warning{
				Key:     "target_percentages",
				Code:    WarnValidation,
				Message: "target_percentages is ignored when staggered parameters are present",
			})
		}

		if !hasStep {
			step = defaultStepSize
		}
		step = abs(step)
		if step < cfg.MinStepSize || step > cfg.MaxStepSize {
			return p, nil, NewValidationError(
				fmt.Sprintf("steps_percentage must be between %d and %d", cfg.MinStepSize, cfg.MaxStepSize),
				fmt.Sprintf("got %d", step),
			)
		}
		p.StepsPercentage = step

		if !hasTarget {
			target = defaultTarget(op, cfg)
		}
		p.TargetPercentage = target

		if !hasStart {
			if op == OpExpand {
				start = 100 + step
			} else {
				start = 100 - step
			}
		}
		p.StartPercentage = start

		if op == OpExpand && start >= target {
			return p, nil, NewValidationError(
				"start_percentage must be less than target_percentage for expansion",
				fmt.Sprintf("start %d, target %d", start, target),
			)
		}
		if op == OpCompress && start <= target {
			return p, nil, NewValidationError(
				"start_percentage must be greater than target_percentage for compression",
				fmt.Sprintf("start %d, target %d", start, target),
			)
		}

	case hasTargets:
		p.Shape = ShapeMulti
		if hasTarget {
			warnings = append(warnings, Warning{
				Key:     "target_percentage",
				Code:    WarnValidation,
				Message: "target_percentage is ignored when target_percentages is present",
			})
		}
		if len(targets) == 0 {
			return p, nil, NewValidationError("target_percentages must not be empty", "")
		}
		p.TargetPercentages = targets

	default:
		p.Shape = ShapeFixed
		if !hasTarget {
			target = defaultTarget(op, cfg)
		}
		p.TargetPercentage = target
	}

	return p, warnings, nil
}

func validateOptions(op Operation, p *Params, cfg Config) []Warning {
	var warnings []Warning

	styles := cfg.ValidStyles
	if op == OpFragment {
		styles = cfg.ValidFragmentStyles
	}
	if p.Style != "" && !styles[p.Style] {
		warnings = append(warnings, Warning{
			Key:     "style",
			Code:    WarnValidation,
			Message: fmt.Sprintf("Unknown style %q ignored", p.Style),
		})
		p.Style = ""
	}

	if p.Tone != "" && !cfg.ValidTones[p.Tone] {
		warnings = append(warnings, Warning{
			Key:     "tone",
			Code:    WarnValidation,
			Message: fmt.Sprintf("Unknown tone %q ignored", p.Tone),
		})
		p.Tone = ""
	}

	if len(p.Aspects) > 0 {
		kept := p.Aspects[:0]
		for _, aspect := range p.Aspects {
			if cfg.ValidAspects[aspect] {
				kept = append(kept, aspect)
				continue
			}
			warnings = append(warnings, Warning{
				Key:     "aspects",
				Code:    WarnValidation,
				Message: fmt.Sprintf("Unknown aspect %q ignored", aspect),
			})
		}
		p.Aspects = kept
	}

	return warnings
}

func defaultTarget(op Operation, cfg Config) int {
	if op == OpExpand {
		return cfg.DefaultExpand
	}
	return cfg.DefaultCompress
}

func intValue(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case float64:
		if n != math.Trunc(n) {
			return 0, false
		}
		return int(n), true
	default:
		return 0, false
	}
}

func intParam(raw map[string]any, name string) (int, bool, error) {
	v, present := raw[name]
	if !present {
		return 0, false, nil
	}
	n, ok := intValue(v)
	if !ok {
		return 0, false, NewValidationError(name+" must be an integer", "")
	}
	return n, true, nil
}

func intListParam(raw map[string]any, name string) ([]int, bool, error) {
	v, present := raw[name]
	if !present {
		return nil, false, nil
	}

	var items []any
	switch list := v.(type) {
	case []any:
		items = list
	case []int:
		for _, n := range list {
			items = append(items, n)
		}
	default:
		return nil, false, NewValidationError(name+" must be a list of integers", "")
	}

	values := make([]int, 0, len(items))
	for _, item := range items {
		n, ok := intValue(item)
		if !ok {
			return nil, false, NewValidationError(name+" must be a list of integers", "")
		}
		values = append(values, n)
	}
	return values, true, nil
}

func stringParam(raw map[string]any, name string) (string, error) {
	v, present := raw[name]
	if !present {
		return "", nil
	}
	s, ok := v.(string)
	if !ok {
		return "", NewValidationError(name+" must be a string", "")
	}
	return s, nil
}

func stringListParam(raw map[string]any, name string) ([]string, error) {
	v, present := raw[name]
	if !present {
		return nil, nil
	}

	switch list := v.(type) {
	case []string:
		return list, nil
	case []any:
		values := make([]string, 0, len(list))
		for _, item := range list {
			s, ok := item.(string)
			if !ok {
				return nil, NewValidationError(name+" must be a list of strings", "")
			}
			values = append(values, s)
		}
		return values, nil
	default:
		return nil, NewValidationError(name+" must be a list of strings", "")
	}
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
