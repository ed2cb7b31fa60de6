// Package filtering runs the validation and enhancement pass over recovered
// recommendations. Steps run in order and each one reports how many records it
// dropped.
package filtering

import (
	"context"
	"errors"
	"fmt"

	"github.com/spigell/career-recommender/internal/career"

	"go.uber.org/zap"
)

// Filter represents a single step applied to recommendations.
type Filter interface {
	Name() string
	Disable(reason string)
	IsEnabled() bool

	Validate(cfg *Config) error
	Apply(ctx context.Context, deps Deps, r *career.Recommendations) (*career.Recommendations, Step, error)
}

// Deps aggregates dependencies shared across all steps.
type Deps struct {
	Logger  *zap.Logger
	Profile *career.Profile
}

// Step describes the result of executing a step.
type Step struct {
	Initial int
	Dropped int
	Left    int
}

// Config contains settings consumed by the steps.
type Config struct {
	// DomainTerms extends the built-in career vocabulary used by relevance.
	DomainTerms []string `mapstructure:"domain-terms"`
	// Disabled lists step names to skip.
	Disabled []string `mapstructure:"disabled"`
}

// Status represents runtime information about a step.
type Status struct {
	Name    string
	Enabled bool
	Reason  string
	Details map[string]string
}

// statusProvider is implemented by steps that can supply detailed status information.
type statusProvider interface {
	Status() Status
}

// Default returns the standard pipeline in execution order.
func Default() []Filter {
	return []Filter{
		NewSanitize(),
		NewTemplateEcho(),
		NewDedupe(),
		NewRelevance(),
		NewComplete(),
		NewBackfill(),
	}
}

// DisableByName marks a step with the provided name as disabled while keeping it in the list.
func DisableByName(steps []Filter, name, reason string) {
	for _, step := range steps {
		if step.Name() == name {
			step.Disable(reason)
		}
	}
}

// Run executes the supplied steps sequentially and returns the resulting list.
func Run(ctx context.Context, cfg *Config, deps Deps, steps []Filter, r *career.Recommendations) (*career.Recommendations, error) {
	if r == nil {
		return nil, errors.New("recommendations are required")
	}

	for _, step := range steps {
		if !step.IsEnabled() {
			continue
		}
		if err := step.Validate(cfg); err != nil {
			return nil, fmt.Errorf("%s: %w", step.Name(), err)
		}
	}

	for _, step := range steps {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		if !step.IsEnabled() {
			if deps.Logger != nil {
				deps.Logger.Info("filter disabled", zap.String("name", step.Name()))
			}
			continue
		}

		next, info, err := step.Apply(ctx, deps, r)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", step.Name(), err)
		}

		if deps.Logger != nil {
			deps.Logger.Info("filter step",
				zap.String("name", step.Name()),
				zap.Int("initial", info.Initial),
				zap.Int("dropped", info.Dropped),
				zap.Int("left", info.Left),
			)
		}

		r = next
	}

	return r, nil
}

// Describe returns status entries for the provided steps.
func Describe(steps []Filter) []Status {
	statuses := make([]Status, 0, len(steps))
	for _, step := range steps {
		if reporter, ok := step.(statusProvider); ok {
			statuses = append(statuses, reporter.Status())
			continue
		}

		statuses = append(statuses, Status{
			Name:    step.Name(),
			Enabled: step.IsEnabled(),
		})
	}
	return statuses
}

// Validate rejects disabled step names the default pipeline does not know.
func (c *Config) Validate() error {
	if c == nil {
		return nil
	}

	known := make(map[string]bool)
	for _, step := range Default() {
		known[step.Name()] = true
	}

	for _, name := range c.Disabled {
		if !known[name] {
			return fmt.Errorf("unknown filter step %q", name)
		}
	}

	return nil
}

// toggle holds the disabled state shared by every step.
type toggle struct {
	disabled bool
	reason   string
}

func (t *toggle) Disable(reason string) {
	t.disabled = true
	t.reason = reason
}

func (t *toggle) IsEnabled() bool { return !t.disabled }
