package transform

import "time"

// Config carries the validation constants and dispatch limits for the
// transformation pipeline. It is built once at startup and injected; nothing
// mutates it afterwards.
type Config struct {
	// Compression retains a percentage of the original text. Values outside
	// the hard range (0,100) are rejected outright; values inside the hard
	// range but outside the business range produce a content error.
	CompressFloor   int
	CompressCeiling int
	DefaultCompress int

	// Expansion targets are percentages above 100.
	ExpandFloor   int
	ExpandCeiling int
	DefaultExpand int

	MinStepSize int
	MaxStepSize int

	MaxVersions int

	// MinFragmentTokens is the floor below which the fragment operation
	// refuses to split a text.
	MinFragmentTokens int

	// Tolerance is the maximum relative deviation between achieved and
	// target percentage before a version is flagged.
	Tolerance float64

	MaxConcurrency int
	CallTimeout    time.Duration
	MaxAttempts    int
	RetryBackoff   time.Duration

	ValidStyles         map[string]bool
	ValidTones          map[string]bool
	ValidAspects        map[string]bool
	ValidFragmentStyles map[string]bool
}

func DefaultConfig() Config {
	return Config{
		CompressFloor:   20,
		CompressCeiling: 90,
		DefaultCompress: 50,

		ExpandFloor:   110,
		ExpandCeiling: 300,
		DefaultExpand: 150,

		MinStepSize: 10,
		MaxStepSize: 50,

		MaxVersions: 5,

		MinFragmentTokens: 30,

		Tolerance: 0.20,

		MaxConcurrency: 8,
		CallTimeout:    60 * time.Second,
		MaxAttempts:    2,
		RetryBackoff:   2 * time.Second,

		ValidStyles: map[string]bool{
			"professional": true,
			"casual":       true,
			"technical":    true,
			"formal":       true,
			"concise":      true,
			"creative":     true,
		},
		ValidTones: map[string]bool{
			"formal":   true,
			"informal": true,
			"friendly": true,
			"strict":   true,
			"neutral":  true,
		},
		ValidAspects: map[string]bool{
			"context":           true,
			"examples":          true,
			"implications":      true,
			"technical_details": true,
			"counterarguments":  true,
			"key actions":       true,
			"main subjects":     true,
		},
		ValidFragmentStyles: map[string]bool{
			"bullet":    true,
			"narrative": true,
			"outline":   true,
		},
	}
}
