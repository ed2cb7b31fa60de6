package career

import "strings"

const (
	// ErrorCareer is the career title used by error records.
	ErrorCareer = "Error"

	DefaultCareer      = "Unspecified Career"
	DefaultDescription = "No description provided."
	DefaultSkillMatch  = "This career utilizes your existing skills."
	DefaultBudgetFit   = "Your budget is sufficient for the required training."

	// Count is the number of recommendations in every successful answer.
	Count = 3
)

// Recommendation is a single career suggestion as written to the host.
type Recommendation struct {
	Career      string `json:"career" mapstructure:"career"`
	Description string `json:"description" mapstructure:"description"`
	SkillMatch  string `json:"skill_match,omitempty" mapstructure:"skill_match"`
	BudgetFit   string `json:"budget_fit,omitempty" mapstructure:"budget_fit"`
}

// ErrorRecord builds the single record sent back when a request cannot be served.
func ErrorRecord(message string) Recommendation {
	return Recommendation{Career: ErrorCareer, Description: message}
}

// IsComplete reports whether all four fields carry text.
func (r *Recommendation) IsComplete() bool {
	return strings.TrimSpace(r.Career) != "" &&
		strings.TrimSpace(r.Description) != "" &&
		strings.TrimSpace(r.SkillMatch) != "" &&
		strings.TrimSpace(r.BudgetFit) != ""
}

// Text joins every field, lowercased, for keyword matching.
func (r *Recommendation) Text() string {
	return strings.ToLower(strings.Join([]string{r.Career, r.Description, r.SkillMatch, r.BudgetFit}, " "))
}

// Recommendations is an ordered list of recommendations.
type Recommendations struct {
	Items []*Recommendation
}

// NewRecommendations copies the records into a list.
func NewRecommendations(records []Recommendation) *Recommendations {
	items := make([]*Recommendation, 0, len(records))
	for i := range records {
		rec := records[i]
		items = append(items, &rec)
	}
	return &Recommendations{Items: items}
}

func (r *Recommendations) Len() int {
	return len(r.Items)
}

func (r *Recommendations) Titles() []string {
	titles := make([]string, 0, len(r.Items))
	for _, v := range r.Items {
		titles = append(titles, v.Career)
	}
	return titles
}

// Contains reports whether a record with the same career title (case-insensitive) exists.
func (r *Recommendations) Contains(career string) bool {
	key := TitleKey(career)
	for _, v := range r.Items {
		if TitleKey(v.Career) == key {
			return true
		}
	}
	return false
}

// Retain keeps the records accepted by keep and returns the titles of removed ones.
func (r *Recommendations) Retain(keep func(*Recommendation) bool) []string {
	kept := make([]*Recommendation, 0, len(r.Items))
	removed := make([]string, 0)
	for _, v := range r.Items {
		if keep(v) {
			kept = append(kept, v)
			continue
		}
		removed = append(removed, v.Career)
	}
	r.Items = kept
	return removed
}

// Values returns the records by value, ready to be encoded.
func (r *Recommendations) Values() []Recommendation {
	values := make([]Recommendation, 0, len(r.Items))
	for _, v := range r.Items {
		values = append(values, *v)
	}
	return values
}

// TitleKey is the comparison key for career titles.
func TitleKey(career string) string {
	return strings.ToLower(strings.Join(strings.Fields(career), " "))
}
