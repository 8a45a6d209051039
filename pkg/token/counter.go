package token

import (
	"fmt"
	"unicode/utf8"

	"github.com/pkoukk/tiktoken-go"
)

// Counter reports how many tokens a piece of text occupies. Implementations
// must be deterministic: the same text always yields the same count.
type Counter interface {
	Count(text string) int
}

// TiktokenCounter counts tokens with the cl100k_base encoding, the same
// encoding the generation models are billed against.
type TiktokenCounter struct {
	enc *tiktoken.Tiktoken
}

func NewTiktokenCounter() (*TiktokenCounter, error) {
	enc, err := tiktoken.GetEncoding("cl100k_base")
	if err != nil {
		return nil, fmt.Errorf("loading cl100k_base encoding: %w", err)
	}
	return &TiktokenCounter{enc: enc}, nil
}

func (c *TiktokenCounter) Count(text string) int {
	if text == "" {
		return 0
	}
	return len(c.enc.Encode(text, nil, nil))
}

// HeuristicCounter estimates tokens at ~4 characters per token. Used as a
// fallback when the BPE encoding cannot be loaded (e.g. no network access to
// fetch it on first use).
type HeuristicCounter struct{}

func (HeuristicCounter) Count(text string) int {
	if text == "" {
		return 0
	}
	n := utf8.RuneCountInString(text) / 4
	if n < 1 {
		n = 1
	}
	return n
}

// NewCounter returns a tiktoken-backed counter, falling back to the
// heuristic counter if the encoding is unavailable.
func NewCounter() Counter {
	c, err := NewTiktokenCounter()
	if err != nil {
		return HeuristicCounter{}
	}
	return c
}
