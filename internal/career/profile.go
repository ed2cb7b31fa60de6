// Package career holds the request and answer types exchanged with the host process.
package career

import (
	"errors"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
)

var (
	// ErrMissingSkillsOrInterests is returned when the profile has no usable skills or interests.
	ErrMissingSkillsOrInterests = errors.New("skills and interests must be provided")
	// ErrNegativeBudget is returned when the budget is below zero.
	ErrNegativeBudget = errors.New("budget must be a non-negative number")
	// ErrNegativeExperience is returned when the years of experience are below zero.
	ErrNegativeExperience = errors.New("experience must be a non-negative number")
)

var validate = validator.New()

// Profile is the user profile sent by the host for a single recommendation request.
type Profile struct {
	Skills         []string `json:"skills" mapstructure:"skills" validate:"required,min=1,dive,required"`
	Interests      []string `json:"interests" mapstructure:"interests" validate:"required,min=1,dive,required"`
	Budget         float64  `json:"budget" mapstructure:"budget" validate:"gte=0"`
	EducationLevel string   `json:"educationLevel,omitempty" mapstructure:"educationLevel"`
	Experience     *float64 `json:"experience,omitempty" mapstructure:"experience" validate:"omitempty,gte=0"`
}

// Normalize trims every list entry, splits comma separated entries and drops empty ones.
func (p *Profile) Normalize() {
	p.Skills = normalizeList(p.Skills)
	p.Interests = normalizeList(p.Interests)
	p.EducationLevel = strings.TrimSpace(p.EducationLevel)
}

// Validate reports the first problem found in the profile as one of the package errors.
func (p *Profile) Validate() error {
	err := validate.Struct(p)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	for _, fe := range verrs {
		field := fe.StructField()
		switch {
		case strings.HasPrefix(field, "Skills"), strings.HasPrefix(field, "Interests"):
			return ErrMissingSkillsOrInterests
		case field == "Budget":
			return ErrNegativeBudget
		case field == "Experience":
			return ErrNegativeExperience
		}
	}

	return err
}

// Terms returns skills and interests lowercased, used for relevance checks.
func (p *Profile) Terms() []string {
	terms := make([]string, 0, len(p.Skills)+len(p.Interests))
	for _, v := range append(append([]string{}, p.Skills...), p.Interests...) {
		if v = strings.ToLower(strings.TrimSpace(v)); v != "" {
			terms = append(terms, v)
		}
	}
	return terms
}

// FormatBudget renders a budget without trailing zeros: 5000, 1250.5.
func FormatBudget(budget float64) string {
	return strconv.FormatFloat(budget, 'f', -1, 64)
}

func normalizeList(items []string) []string {
	result := make([]string, 0, len(items))
	for _, item := range items {
		for _, part := range strings.Split(item, ",") {
			if part = strings.TrimSpace(part); part != "" {
				result = append(result, part)
			}
		}
	}
	return result
}
