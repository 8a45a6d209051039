package transform

import (
	"context"
	"fmt"
	"math"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/julianfleck/fragment-editor-api/pkg/llm"
)

// GenerationResult is one successfully generated version.
type GenerationResult struct {
	Text            string
	FinalTokens     int
	FinalPercentage float64
}

// Dispatcher fans generation work out to the model, one call per
// (fragment, length, version) triple.
type Dispatcher struct {
	gen llm.Generator
	cfg Config
}

func NewDispatcher(gen llm.Generator, cfg Config) *Dispatcher {
	return &Dispatcher{gen: gen, cfg: cfg}
}

// Dispatch runs every work item concurrently, bounded by the configured
// concurrency limit. Each item writes only its own slot in the pre-sized
// grid, so no locking is needed; a nil slot means that item failed and has a
// matching warning. A failed item never aborts the batch.
func (d *Dispatcher) Dispatch(ctx context.Context, req *Request, plan *Plan) ([][][]*GenerationResult, []Warning) {
	fragments := req.Fragments
	versions := req.Params.Versions

	grid := make([][][]*GenerationResult, len(fragments))
	warnGrid := make([][][]*Warning, len(fragments))
	for fi := range fragments {
		grid[fi] = make([][]*GenerationResult, len(plan.Targets))
		warnGrid[fi] = make([][]*Warning, len(plan.Targets))
		for li := range plan.Targets {
			grid[fi][li] = make([]*GenerationResult, versions)
			warnGrid[fi][li] = make([]*Warning, versions)
		}
	}

	var g errgroup.Group
	g.SetLimit(d.cfg.MaxConcurrency)

	for fi := range fragments {
		for li := range plan.Targets {
			for vi := 0; vi < versions; vi++ {
				fi, li, vi := fi, li, vi
				g.Go(func() error {
					fragment := fragments[fi]
					target := plan.Targets[li]

					result, err := d.generate(ctx, req, fragment, target)
					if err != nil {
						warnGrid[fi][li][vi] = &Warning{
							Key:  fmt.Sprintf("%d.%d.%d", fi, li, vi),
							Code: slotWarningCode(len(fragments), len(plan.Targets), versions),
							Message: fmt.Sprintf("Fragment %d, length %d, version %d: generation failed: %v",
								fi+1, li+1, vi+1, err),
						}
						return nil
					}
					grid[fi][li][vi] = result
					return nil
				})
			}
		}
	}

	g.Wait()

	// Grid slots are only read after the join point above, so the flattened
	// warning order is deterministic regardless of completion order.
	var warnings []Warning
	for fi := range warnGrid {
		for li := range warnGrid[fi] {
			for vi := range warnGrid[fi][li] {
				if w := warnGrid[fi][li][vi]; w != nil {
					warnings = append(warnings, *w)
				}
			}
		}
	}

	return grid, warnings
}

func (d *Dispatcher) generate(ctx context.Context, req *Request, fragment Fragment, target LengthTarget) (*GenerationResult, error) {
	input := llm.GenerateInput{
		Operation:        string(req.Operation),
		Text:             fragment.Text,
		TargetTokens:     TargetTokens(fragment.Tokens, target.Percentage),
		TargetPercentage: target.Percentage,
		Style:            req.Params.Style,
		Tone:             req.Params.Tone,
		Aspects:          req.Params.Aspects,
	}

	var lastErr error
	for attempt := 1; attempt <= d.cfg.MaxAttempts; attempt++ {
		callCtx, cancel := context.WithTimeout(ctx, d.cfg.CallTimeout)
		out, err := d.gen.Generate(callCtx, input)
		cancel()

		if err == nil {
			return &GenerationResult{
				Text:            out.Text,
				FinalTokens:     out.Tokens,
				FinalPercentage: roundPercentage(out.Tokens, fragment.Tokens),
			}, nil
		}

		lastErr = err
		if !llm.IsTransient(err) || attempt == d.cfg.MaxAttempts {
			break
		}

		select {
		case <-time.After(d.cfg.RetryBackoff):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	return nil, lastErr
}

// slotWarningCode names the granularity lost by a failed slot: a version
// when more were requested, a whole length when it had a single version, a
// whole fragment when it had a single length and version.
func slotWarningCode(fragmentCount, lengthCount, versions int) string {
	switch {
	case versions > 1:
		return WarnVersionError
	case lengthCount > 1:
		return WarnLengthError
	case fragmentCount > 1:
		return WarnFragmentError
	default:
		return WarnVersionError
	}
}

func roundPercentage(finalTokens, originalTokens int) float64 {
	if originalTokens == 0 {
		return 0
	}
	pct := float64(finalTokens) / float64(originalTokens) * 100
	return math.Round(pct*10) / 10
}
