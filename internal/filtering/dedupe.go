package filtering

import (
	"context"

	"github.com/spigell/career-recommender/internal/career"
)

type dedupeFilter struct {
	toggle
}

// NewDedupe creates a step that keeps the first record of every career title.
// Untitled records are left for the complete step to name.
func NewDedupe() Filter {
	return &dedupeFilter{}
}

func (f *dedupeFilter) Name() string { return "dedupe" }

func (f *dedupeFilter) Validate(*Config) error { return nil }

func (f *dedupeFilter) Apply(_ context.Context, _ Deps, r *career.Recommendations) (*career.Recommendations, Step, error) {
	initial := r.Len()

	seen := make(map[string]struct{}, r.Len())
	removed := r.Retain(func(rec *career.Recommendation) bool {
		key := career.TitleKey(rec.Career)
		if key == "" {
			return true
		}
		if _, ok := seen[key]; ok {
			return false
		}
		seen[key] = struct{}{}
		return true
	})

	return r, Step{Initial: initial, Dropped: len(removed), Left: r.Len()}, nil
}
