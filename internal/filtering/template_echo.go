package filtering

import (
	"context"
	"regexp"
	"strings"

	"github.com/spigell/career-recommender/internal/career"

	"go.uber.org/zap"
)

var (
	exampleTitle = regexp.MustCompile(`(?i)^specific job title(?:\s*\d+)?$`)

	exampleTexts = []string{
		"detailed description of the career including responsibilities and growth potential",
		"explanation of how their skills in",
		"analysis of how their",
	}
)

type templateEchoFilter struct {
	toggle
}

// NewTemplateEcho creates a step that removes records copied from the prompt example.
func NewTemplateEcho() Filter {
	return &templateEchoFilter{}
}

func (f *templateEchoFilter) Name() string { return "template_echo" }

func (f *templateEchoFilter) Validate(*Config) error { return nil }

func (f *templateEchoFilter) Apply(_ context.Context, deps Deps, r *career.Recommendations) (*career.Recommendations, Step, error) {
	initial := r.Len()

	removed := r.Retain(func(rec *career.Recommendation) bool {
		return !isTemplateEcho(rec)
	})
	if deps.Logger != nil && len(removed) > 0 {
		deps.Logger.Info("excluding records echoing the prompt example", zap.Strings("excluded", removed))
	}

	return r, Step{Initial: initial, Dropped: len(removed), Left: r.Len()}, nil
}

func (f *templateEchoFilter) Status() Status {
	return Status{Name: f.Name(), Enabled: f.IsEnabled(), Reason: f.reason}
}

func isTemplateEcho(rec *career.Recommendation) bool {
	if exampleTitle.MatchString(rec.Career) || career.TitleKey(rec.Career) == strings.ToLower(career.ErrorCareer) {
		return true
	}

	description := strings.ToLower(rec.Description)
	for _, text := range exampleTexts {
		if strings.HasPrefix(description, text) {
			return true
		}
	}

	return false
}
