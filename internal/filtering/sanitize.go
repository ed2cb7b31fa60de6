package filtering

import (
	"context"
	"regexp"
	"strings"

	"github.com/spigell/career-recommender/internal/career"

	"go.uber.org/zap"
)

var listMarker = regexp.MustCompile(`^(?:\d+\s*[.)]|[-*•])\s+`)

type sanitizeFilter struct {
	toggle
}

// NewSanitize creates a step that cleans up whitespace, list markers and
// wrapping quotes, dropping records left with neither a title nor a description.
func NewSanitize() Filter {
	return &sanitizeFilter{}
}

func (f *sanitizeFilter) Name() string { return "sanitize" }

func (f *sanitizeFilter) Validate(*Config) error { return nil }

func (f *sanitizeFilter) Apply(_ context.Context, deps Deps, r *career.Recommendations) (*career.Recommendations, Step, error) {
	initial := r.Len()

	for _, rec := range r.Items {
		rec.Career = cleanTitle(rec.Career)
		rec.Description = cleanText(rec.Description)
		rec.SkillMatch = cleanText(rec.SkillMatch)
		rec.BudgetFit = cleanText(rec.BudgetFit)
	}

	removed := r.Retain(func(rec *career.Recommendation) bool {
		return rec.Career != "" || rec.Description != ""
	})
	if deps.Logger != nil && len(removed) > 0 {
		deps.Logger.Debug("dropping empty records", zap.Int("count", len(removed)))
	}

	return r, Step{Initial: initial, Dropped: len(removed), Left: r.Len()}, nil
}

func (f *sanitizeFilter) Status() Status {
	return Status{Name: f.Name(), Enabled: f.IsEnabled(), Reason: f.reason}
}

func cleanText(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	return unwrap(s)
}

func cleanTitle(s string) string {
	s = cleanText(s)
	for {
		next := listMarker.ReplaceAllString(s, "")
		next = unwrap(strings.TrimSpace(next))
		next = strings.TrimRight(next, ":.-– ")
		if next == s {
			return s
		}
		s = next
	}
}

func unwrap(s string) string {
	for _, pair := range [][2]string{{`"`, `"`}, {`'`, `'`}, {"“", "”"}, {"**", "**"}, {"`", "`"}} {
		if len(s) >= len(pair[0])+len(pair[1]) && strings.HasPrefix(s, pair[0]) && strings.HasSuffix(s, pair[1]) {
			s = strings.TrimSpace(s[len(pair[0]) : len(s)-len(pair[1])])
		}
	}
	return s
}
