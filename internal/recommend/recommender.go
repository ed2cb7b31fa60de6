// Package recommend turns a profile into exactly three career recommendations
// with a single model call.
package recommend

import (
	"context"
	"fmt"

	"github.com/spigell/career-recommender/internal/ai"
	"github.com/spigell/career-recommender/internal/career"
	"github.com/spigell/career-recommender/internal/filtering"
	"github.com/spigell/career-recommender/internal/recovery"
	"github.com/spigell/career-recommender/internal/schemas"
	"github.com/spigell/career-recommender/internal/utils"

	"go.uber.org/zap"
)

const defaultMaxLogLength = 2000

// Config tunes a Recommender.
type Config struct {
	Primary      ai.SamplingParams
	Reduced      ai.SamplingParams
	MaxLogLength int
	Filtering    *filtering.Config
}

// Recommender prompts the model once and recovers records from its answer.
type Recommender struct {
	generator ai.Generator
	config    Config
	logger    *zap.Logger
}

func New(generator ai.Generator, config Config, logger *zap.Logger) *Recommender {
	if logger == nil {
		logger = zap.NewNop()
	}
	if config.MaxLogLength <= 0 {
		config.MaxLogLength = defaultMaxLogLength
	}
	if config.Filtering == nil {
		config.Filtering = &filtering.Config{}
	}

	return &Recommender{
		generator: generator,
		config:    config,
		logger:    logger,
	}
}

// Recommend returns exactly career.Count complete records for profile. Errors
// are only returned when the model call itself fails.
func (r *Recommender) Recommend(ctx context.Context, profile *career.Profile) ([]career.Recommendation, error) {
	if r.generator == nil {
		return nil, fmt.Errorf("model is not loaded")
	}

	text, err := BuildPrompt(profile)
	if err != nil {
		return nil, err
	}

	r.logger.Debug("prompt", zap.String("prompt", utils.TruncateForLog(text, r.config.MaxLogLength)))

	raw, err := r.generate(ctx, text)
	if err != nil {
		return nil, err
	}

	r.logger.Debug("generated raw text", zap.String("raw", utils.TruncateForLog(raw, r.config.MaxLogLength)))

	parsed := recovery.Parse(raw, profile.Budget)
	r.logger.Info("recovered records from model output",
		zap.String("strategy", string(parsed.Strategy)),
		zap.Int("records", len(parsed.Records)),
		zap.Any("failed_strategies", parsed.Attempts),
	)

	steps := filtering.Default()
	for _, name := range r.config.Filtering.Disabled {
		filtering.DisableByName(steps, name, "disabled in configuration")
	}

	deps := filtering.Deps{Logger: r.logger, Profile: profile}
	result, err := filtering.Run(ctx, r.config.Filtering, deps, steps, career.NewRecommendations(parsed.Records))
	if err != nil {
		return nil, fmt.Errorf("filtering recommendations: %w", err)
	}

	records := result.Values()
	if err := schemas.Validate(schemas.Recommendations, records); err != nil {
		r.logger.Warn("answer does not match the schema, using canned recommendations", zap.Error(err))
		return career.Fallback(profile.Budget), nil
	}

	return records, nil
}

// generate calls the model with the primary parameters and retries once with
// the reduced ones when the backend ran out of memory.
func (r *Recommender) generate(ctx context.Context, prompt string) (string, error) {
	r.logger.Info("generating recommendations")

	raw, err := r.generator.Generate(ctx, prompt, r.config.Primary)
	if err == nil {
		return raw, nil
	}

	if !ai.IsOutOfMemory(err) || ctx.Err() != nil {
		return "", err
	}

	r.logger.Warn("model ran out of memory, trying with smaller parameters", zap.Error(err))

	return r.generator.Generate(ctx, prompt, r.config.Reduced)
}
