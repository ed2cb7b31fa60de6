package ai

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
)

// Candidate is one way of obtaining a generator, tried in order by Load.
type Candidate struct {
	Provider string
	Model    string
	Open     func(ctx context.Context) (Generator, error)
}

// Checker is implemented by generators that can verify the model is reachable
// before the first request.
type Checker interface {
	Check(ctx context.Context) error
}

// Load returns the first candidate that opens and passes its readiness check.
// When every candidate fails the individual errors are joined.
func Load(ctx context.Context, candidates []Candidate, logger *zap.Logger) (Generator, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	if len(candidates) == 0 {
		return nil, errors.New("no model candidates configured")
	}

	var errs []error
	for i, c := range candidates {
		log := logger.With(
			zap.String("provider", c.Provider),
			zap.String("model", c.Model),
			zap.Int("candidate", i+1),
		)

		log.Info("loading model")

		generator, err := open(ctx, c)
		if err != nil {
			log.Warn("could not load model", zap.Error(err))
			errs = append(errs, fmt.Errorf("%s/%s: %w", c.Provider, c.Model, err))
			if ctx.Err() != nil {
				break
			}
			continue
		}

		log.Info("model loaded")
		return generator, nil
	}

	return nil, fmt.Errorf("loading model: %w", errors.Join(errs...))
}

func open(ctx context.Context, c Candidate) (Generator, error) {
	if c.Open == nil {
		return nil, errors.New("candidate has no opener")
	}

	generator, err := c.Open(ctx)
	if err != nil {
		return nil, err
	}
	if generator == nil {
		return nil, errors.New("opener returned no generator")
	}

	if checker, ok := generator.(Checker); ok {
		if err := checker.Check(ctx); err != nil {
			return nil, fmt.Errorf("readiness check: %w", err)
		}
	}

	return generator, nil
}

// LoadWithRetry calls Load and, when it fails, tries the whole list once more.
func LoadWithRetry(ctx context.Context, candidates []Candidate, logger *zap.Logger) (Generator, error) {
	generator, err := Load(ctx, candidates, logger)
	if err == nil || ctx.Err() != nil {
		return generator, err
	}

	if logger != nil {
		logger.Warn("model was not loaded, attempting one more load", zap.Error(err))
	}

	return Load(ctx, candidates, logger)
}
