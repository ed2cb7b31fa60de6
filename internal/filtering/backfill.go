package filtering

import (
	"context"
	"strconv"

	"github.com/spigell/career-recommender/internal/career"

	"go.uber.org/zap"
)

type backfillFilter struct {
	toggle
	count int
}

// NewBackfill creates a step that tops the list up with canned recommendations
// and cuts it to career.Count records.
func NewBackfill() Filter {
	return &backfillFilter{}
}

func (f *backfillFilter) Name() string { return "backfill" }

func (f *backfillFilter) Validate(*Config) error {
	f.count = career.Count
	return nil
}

func (f *backfillFilter) Apply(_ context.Context, deps Deps, r *career.Recommendations) (*career.Recommendations, Step, error) {
	initial := r.Len()

	var budget float64
	if deps.Profile != nil {
		budget = deps.Profile.Budget
	}

	var added []string
	for _, canned := range career.Fallback(budget) {
		if r.Len() >= f.count {
			break
		}
		if r.Contains(canned.Career) {
			continue
		}
		rec := canned
		r.Items = append(r.Items, &rec)
		added = append(added, rec.Career)
	}

	dropped := 0
	if r.Len() > f.count {
		dropped = r.Len() - f.count
		r.Items = r.Items[:f.count]
	}

	if deps.Logger != nil && len(added) > 0 {
		deps.Logger.Info("adding canned recommendations", zap.Strings("added", added))
	}

	return r, Step{Initial: initial, Dropped: dropped, Left: r.Len()}, nil
}

func (f *backfillFilter) Status() Status {
	return Status{
		Name:    f.Name(),
		Enabled: f.IsEnabled(),
		Reason:  f.reason,
		Details: map[string]string{"count": strconv.Itoa(f.count)},
	}
}
