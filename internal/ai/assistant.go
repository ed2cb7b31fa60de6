package ai

import (
	"context"
	"errors"
	"strings"
)

// ErrOutOfMemory is returned by generators when the backend ran out of memory
// while decoding. Callers may retry once with smaller sampling parameters.
var ErrOutOfMemory = errors.New("model ran out of memory")

// Generator produces free text for a prompt.
type Generator interface {
	Generate(ctx context.Context, prompt string, params SamplingParams) (string, error)
	Model() string
}

// SamplingParams controls decoding on the backend. Zero values are left to the
// backend defaults.
type SamplingParams struct {
	MaxLength          int     `mapstructure:"max-length" json:"max_length,omitempty"`
	MinLength          int     `mapstructure:"min-length" json:"min_length,omitempty"`
	NumBeams           int     `mapstructure:"num-beams" json:"num_beams,omitempty"`
	NoRepeatNgramSize  int     `mapstructure:"no-repeat-ngram-size" json:"no_repeat_ngram_size,omitempty"`
	DoSample           bool    `mapstructure:"do-sample" json:"do_sample,omitempty"`
	Temperature        float64 `mapstructure:"temperature" json:"temperature,omitempty"`
	TopP               float64 `mapstructure:"top-p" json:"top_p,omitempty"`
	TopK               int     `mapstructure:"top-k" json:"top_k,omitempty"`
	NumReturnSequences int     `mapstructure:"num-return-sequences" json:"num_return_sequences,omitempty"`
	EarlyStopping      bool    `mapstructure:"early-stopping" json:"early_stopping,omitempty"`
	LengthPenalty      float64 `mapstructure:"length-penalty" json:"length_penalty,omitempty"`
}

// PrimaryParams favours long, varied answers.
func PrimaryParams() SamplingParams {
	return SamplingParams{
		MaxLength:          1000,
		MinLength:          200,
		NumBeams:           6,
		NoRepeatNgramSize:  3,
		DoSample:           true,
		Temperature:        0.85,
		TopP:               0.92,
		TopK:               60,
		NumReturnSequences: 1,
		EarlyStopping:      true,
		LengthPenalty:      1.2,
	}
}

// ReducedParams is used after the backend ran out of memory with PrimaryParams.
func ReducedParams() SamplingParams {
	return SamplingParams{
		MaxLength:          450,
		MinLength:          150,
		NumBeams:           4,
		DoSample:           true,
		Temperature:        0.75,
		TopP:               0.9,
		TopK:               40,
		NumReturnSequences: 1,
		LengthPenalty:      1.1,
	}
}

// IsOutOfMemory reports whether err is, or reads like, a backend memory exhaustion.
func IsOutOfMemory(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrOutOfMemory) {
		return true
	}
	return strings.Contains(strings.ToLower(err.Error()), "out of memory")
}
