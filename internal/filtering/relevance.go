package filtering

import (
	"context"
	"regexp"
	"strconv"
	"strings"

	"github.com/spigell/career-recommender/internal/career"

	"go.uber.org/zap"
)

// domainTerms are occupational words a real career recommendation is expected to mention.
var domainTerms = []string{
	"accountant", "administrator", "advisor", "analyst", "architect", "artist",
	"assistant", "coach", "consultant", "coordinator", "designer",
	"developer", "director", "editor", "educator", "engineer", "entrepreneur",
	"freelance", "instructor", "manager", "marketer", "nurse", "officer",
	"photographer", "planner", "producer", "programmer", "researcher",
	"scientist", "specialist", "strategist", "teacher", "technician",
	"therapist", "trainer", "tutor", "writer",
}

type relevanceFilter struct {
	toggle
	terms []*regexp.Regexp
}

// NewRelevance creates a step that keeps records mentioning the profile or a career term.
func NewRelevance() Filter {
	return &relevanceFilter{}
}

func (f *relevanceFilter) Name() string { return "relevance" }

func (f *relevanceFilter) Validate(cfg *Config) error {
	terms := domainTerms
	if cfg != nil {
		terms = append(append([]string{}, domainTerms...), cfg.DomainTerms...)
	}
	f.terms = termPatterns(terms)
	return nil
}

func (f *relevanceFilter) Apply(_ context.Context, deps Deps, r *career.Recommendations) (*career.Recommendations, Step, error) {
	initial := r.Len()

	terms := f.terms
	if deps.Profile != nil {
		terms = append(termPatterns(deps.Profile.Terms()), terms...)
	}

	removed := r.Retain(func(rec *career.Recommendation) bool {
		text := rec.Text()
		for _, term := range terms {
			if term.MatchString(text) {
				return true
			}
		}
		return false
	})
	if deps.Logger != nil && len(removed) > 0 {
		deps.Logger.Info("excluding records unrelated to the profile", zap.Strings("excluded", removed))
	}

	return r, Step{Initial: initial, Dropped: len(removed), Left: r.Len()}, nil
}

func (f *relevanceFilter) Status() Status {
	return Status{
		Name:    f.Name(),
		Enabled: f.IsEnabled(),
		Reason:  f.reason,
		Details: map[string]string{"terms": strconv.Itoa(len(f.terms))},
	}
}

// termPatterns matches each term as a whole word, allowing a plural ending,
// so "r" does not match "engineer" and "analyst" matches "analysts".
func termPatterns(terms []string) []*regexp.Regexp {
	patterns := make([]*regexp.Regexp, 0, len(terms))
	for _, term := range terms {
		term = strings.ToLower(strings.TrimSpace(term))
		if term == "" {
			continue
		}
		patterns = append(patterns, regexp.MustCompile(
			`(?i)(?:^|[^\p{L}\p{N}])`+regexp.QuoteMeta(term)+`(?:s|es)?(?:$|[^\p{L}\p{N}])`,
		))
	}
	return patterns
}
