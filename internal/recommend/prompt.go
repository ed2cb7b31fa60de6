package recommend

import (
	_ "embed"
	"fmt"
	"strconv"
	"strings"
	"text/template"

	"github.com/spigell/career-recommender/internal/career"
)

//go:embed prompt.md
var promptTemplate string

var prompt = template.Must(template.New("prompt").Parse(promptTemplate))

type promptData struct {
	Skills         string
	Interests      string
	Budget         string
	EducationLevel string
	Experience     string
	Examples       []int
}

// BuildPrompt renders the instruction text sent to the model for profile.
func BuildPrompt(profile *career.Profile) (string, error) {
	data := promptData{
		Skills:         strings.Join(profile.Skills, ", "),
		Interests:      strings.Join(profile.Interests, ", "),
		Budget:         career.FormatBudget(profile.Budget),
		EducationLevel: profile.EducationLevel,
		Examples:       []int{1, 2, 3},
	}
	if profile.Experience != nil {
		data.Experience = strconv.FormatFloat(*profile.Experience, 'f', -1, 64)
	}

	var sb strings.Builder
	if err := prompt.Execute(&sb, data); err != nil {
		return "", fmt.Errorf("render prompt: %w", err)
	}

	return strings.TrimSpace(sb.String()), nil
}
