package llm

import (
	"context"
	"errors"
	"fmt"
)

type GenerateInput struct {
	Operation        string
	Text             string
	TargetTokens     int
	TargetPercentage int
	Style            string
	Tone             string
	Aspects          []string
}

type GenerateOutput struct {
	Text   string
	Tokens int
}

type Generator interface {
	Generate(ctx context.Context, input GenerateInput) (*GenerateOutput, error)
}

// Error wraps a provider failure. Transient errors (rate limits, timeouts,
// provider 5xx) are worth retrying; everything else is permanent.
type Error struct {
	Code      string
	Message   string
	Transient bool
	Err       error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func IsTransient(err error) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Transient
	}
	return errors.Is(err, context.DeadlineExceeded)
}

func transientStatus(status int) bool {
	return status == 408 || status == 429 || status >= 500
}

// maxCompletionTokens sizes the completion budget from the target length,
// with headroom for the JSON envelope around the generated text.
func maxCompletionTokens(targetTokens int) int64 {
	budget := targetTokens*2 + 256
	if budget < 1024 {
		budget = 1024
	}
	return int64(budget)
}
