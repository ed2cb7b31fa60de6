package recovery

import (
	"encoding/json"
	"fmt"
	"maps"
	"slices"
	"strings"
	"unicode"

	"github.com/mitchellh/mapstructure"

	"github.com/spigell/career-recommender/internal/career"
)

// fieldAliases lists the accepted keys per field, most specific first.
var fieldAliases = []struct {
	field   string
	aliases []string
}{
	{"career", []string{"career", "career_title", "career_path", "job_title", "title", "profession", "job", "role"}},
	{"description", []string{"description", "desc", "summary", "details"}},
	{"skill_match", []string{"skill_match", "skills_match", "skill_fit", "match", "why"}},
	{"budget_fit", []string{"budget_fit", "budget_match", "budget_notes", "cost"}},
}

// decodeRecord converts a loosely shaped JSON object into a recommendation.
// Objects that carry neither a career nor a description are rejected.
func decodeRecord(raw map[string]any) (career.Recommendation, bool) {
	byKey := make(map[string]any, len(raw))
	for _, key := range slices.Sorted(maps.Keys(raw)) {
		name := normalizeKey(key)
		if _, seen := byKey[name]; !seen {
			byKey[name] = raw[key]
		}
	}

	canonical := make(map[string]any, len(fieldAliases))
	for _, f := range fieldAliases {
		for _, alias := range f.aliases {
			value, ok := byKey[alias]
			if !ok || coerceString(value) == "" {
				continue
			}
			canonical[f.field] = value
			break
		}
	}

	if len(canonical) == 0 {
		return career.Recommendation{}, false
	}

	var rec career.Recommendation
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           &rec,
	})
	if err == nil {
		err = decoder.Decode(canonical)
	}
	if err != nil {
		rec = career.Recommendation{
			Career:      coerceString(canonical["career"]),
			Description: coerceString(canonical["description"]),
			SkillMatch:  coerceString(canonical["skill_match"]),
			BudgetFit:   coerceString(canonical["budget_fit"]),
		}
	}

	rec.Career = strings.TrimSpace(rec.Career)
	rec.Description = strings.TrimSpace(rec.Description)
	rec.SkillMatch = strings.TrimSpace(rec.SkillMatch)
	rec.BudgetFit = strings.TrimSpace(rec.BudgetFit)

	if rec.Career == "" && rec.Description == "" {
		return career.Recommendation{}, false
	}

	return rec, true
}

// normalizeKey maps "Skill Match", "skillMatch" and "skill-match" to "skill_match".
func normalizeKey(key string) string {
	var b strings.Builder
	runes := []rune(strings.TrimSpace(key))
	for i, r := range runes {
		switch {
		case r == ' ' || r == '-' || r == '.':
			b.WriteRune('_')
		case unicode.IsUpper(r):
			if i > 0 && (unicode.IsLower(runes[i-1]) || unicode.IsDigit(runes[i-1])) {
				b.WriteRune('_')
			}
			b.WriteRune(unicode.ToLower(r))
		default:
			b.WriteRune(r)
		}
	}

	normalized := b.String()
	for strings.Contains(normalized, "__") {
		normalized = strings.ReplaceAll(normalized, "__", "_")
	}
	return strings.Trim(normalized, "_")
}

func coerceString(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(val)
	case []any:
		parts := make([]string, 0, len(val))
		for _, item := range val {
			if s := coerceString(item); s != "" {
				parts = append(parts, s)
			}
		}
		return strings.Join(parts, ", ")
	case fmt.Stringer:
		return strings.TrimSpace(val.String())
	default:
		bytes, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprintf("%v", v)
		}
		return string(bytes)
	}
}
