package transform

import (
	"context"
	"log/slog"
	"strings"

	"github.com/julianfleck/fragment-editor-api/pkg/llm"
	"github.com/julianfleck/fragment-editor-api/pkg/token"
)

// Engine runs the full transformation pipeline: normalize, plan, dispatch,
// validate, assemble. One Engine serves all requests; each request's state
// lives entirely on the stack of Transform.
type Engine struct {
	dispatcher *Dispatcher
	counter    token.Counter
	cfg        Config
}

func NewEngine(gen llm.Generator, counter token.Counter, cfg Config) *Engine {
	return &Engine{
		dispatcher: NewDispatcher(gen, cfg),
		counter:    counter,
		cfg:        cfg,
	}
}

func (e *Engine) Transform(ctx context.Context, op Operation, raw map[string]any) (*Response, error) {
	req, paramWarnings, err := Normalize(op, raw, e.cfg)
	if err != nil {
		return nil, err
	}

	if err := checkOperationShape(req); err != nil {
		return nil, err
	}

	for i := range req.Fragments {
		req.Fragments[i].Tokens = e.counter.Count(req.Fragments[i].Text)
	}

	if req.Operation == OpFragment && req.Fragments[0].Tokens < e.cfg.MinFragmentTokens {
		return nil, NewContentError(
			"content is too short to fragment",
			"the fragment operation requires longer input",
		)
	}

	// Join merges the fragments into a single work unit before generation;
	// the response keeps the fragments type because the request content was
	// a sequence.
	if req.Operation == OpJoin {
		texts := make([]string, len(req.Fragments))
		for i, f := range req.Fragments {
			texts[i] = f.Text
		}
		joined := strings.Join(texts, "\n\n")
		req.Fragments = []Fragment{{Index: 0, Text: joined, Tokens: e.counter.Count(joined)}}
	}

	plan, err := BuildPlan(req, req.Fragments[0].Tokens, e.cfg)
	if err != nil {
		return nil, err
	}

	slog.Info("dispatching transformation",
		"operation", req.Operation,
		"fragments", len(req.Fragments),
		"lengths", len(plan.Targets),
		"versions", req.Params.Versions,
	)

	grid, dispatchWarnings := e.dispatcher.Dispatch(ctx, req, plan)

	if countResults(grid) == 0 {
		details := ""
		if len(dispatchWarnings) > 0 {
			details = dispatchWarnings[0].Message
		}
		return nil, NewUpstreamError("generation failed for every work item", details)
	}

	validation, deviationWarnings := ValidateResults(req, plan, grid, e.cfg)
	if !validation.Fragments.Passed || !validation.Lengths.Passed {
		slog.Warn("transformation completed with validation failures",
			"operation", req.Operation,
			"fragments_received", validation.Fragments.Received,
			"fragments_expected", validation.Fragments.Expected,
			"lengths_passed", validation.Lengths.Passed,
		)
	}

	slotWarnings := append(dispatchWarnings, deviationWarnings...)

	return Assemble(req, plan, grid, validation, paramWarnings, slotWarnings), nil
}

func checkOperationShape(req *Request) error {
	if req.Operation == OpJoin && !req.IsFragments {
		return NewOperationError(
			"join requires a list of fragments",
			"content is a single cohesive text",
		)
	}
	if req.Operation == OpFragment && req.IsFragments {
		return NewOperationError(
			"fragment requires a single cohesive text",
			"content is already a list of fragments",
		)
	}
	return nil
}

func countResults(grid [][][]*GenerationResult) int {
	total := 0
	for fi := range grid {
		for li := range grid[fi] {
			for vi := range grid[fi][li] {
				if grid[fi][li][vi] != nil {
					total++
				}
			}
		}
	}
	return total
}
