package filtering

import (
	"context"

	"github.com/spigell/career-recommender/internal/career"
)

type completeFilter struct {
	toggle
}

// NewComplete creates a step that fills empty fields with default sentences.
func NewComplete() Filter {
	return &completeFilter{}
}

func (f *completeFilter) Name() string { return "complete" }

func (f *completeFilter) Validate(*Config) error { return nil }

func (f *completeFilter) Apply(_ context.Context, _ Deps, r *career.Recommendations) (*career.Recommendations, Step, error) {
	for _, rec := range r.Items {
		if rec.Career == "" {
			rec.Career = career.DefaultCareer
		}
		if rec.Description == "" {
			rec.Description = career.DefaultDescription
		}
		if rec.SkillMatch == "" {
			rec.SkillMatch = career.DefaultSkillMatch
		}
		if rec.BudgetFit == "" {
			rec.BudgetFit = career.DefaultBudgetFit
		}
	}

	return r, Step{Initial: r.Len(), Left: r.Len()}, nil
}
