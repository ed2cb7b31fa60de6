package recovery

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/spigell/career-recommender/internal/career"
)

const (
	careerNames      = `career|job[_ ]title|title|profession`
	descriptionNames = `description|desc|summary`
	skillMatchNames  = `skills?[_ ]match|skill[_ ]fit`
	budgetFitNames   = `budget[_ ]fit|budget[_ ]match`

	// valuePattern captures a double quoted, single quoted or bare value. A bare
	// value ends at the next `, key:` pair, a closing bracket or the end of line.
	valuePattern = `(?:"((?:[^"\\]|\\.)*)"|'((?:[^'\\]|\\.)*)'|([^\n]+?)[ \t]*(?:,[ \t]*["']?[A-Za-z_ ]+["']?[ \t]*[:=]|[}\]]|$))`
)

var (
	careerField      = fieldRegexp(careerNames)
	descriptionField = fieldRegexp(descriptionNames)
	skillMatchField  = fieldRegexp(skillMatchNames)
	budgetFitField   = fieldRegexp(budgetFitNames)
)

// fieldRegexp matches `"key": value`, `'key': value`, or an unquoted key at the
// start of a line or right after { or ,.
func fieldRegexp(names string) *regexp.Regexp {
	key := `(?:"(?:` + names + `)"|'(?:` + names + `)'|(?:^|[{,])[ \t]*(?:` + names + `))[ \t]*[:=][ \t]*`
	return regexp.MustCompile(`(?im)` + key + valuePattern)
}

// parseKeyValue groups key/value pairs by career occurrence: every career key
// opens a segment that runs until the next career key.
func parseKeyValue(text string) []career.Recommendation {
	matches := careerField.FindAllStringSubmatchIndex(text, -1)
	if len(matches) == 0 {
		return nil
	}

	records := make([]career.Recommendation, 0, len(matches))
	detailed := false
	for i, m := range matches {
		end := len(text)
		if i+1 < len(matches) {
			end = matches[i+1][0]
		}
		segment := text[m[0]:end]

		rec := career.Recommendation{
			Career:      submatchValue(text, m),
			Description: findValue(descriptionField, segment),
			SkillMatch:  findValue(skillMatchField, segment),
			BudgetFit:   findValue(budgetFitField, segment),
		}
		if rec.Career == "" {
			continue
		}
		if rec.Description != "" || rec.SkillMatch != "" || rec.BudgetFit != "" {
			detailed = true
		}
		records = append(records, rec)
	}

	// Bare titles without any detail are left to the line parser, which
	// understands headings followed by paragraphs.
	if !detailed {
		return nil
	}

	return records
}

func findValue(re *regexp.Regexp, segment string) string {
	m := re.FindStringSubmatchIndex(segment)
	if m == nil {
		return ""
	}
	return submatchValue(segment, m)
}

func submatchValue(text string, m []int) string {
	for group := 1; group <= 3; group++ {
		start, end := m[2*group], m[2*group+1]
		if start < 0 {
			continue
		}
		value := text[start:end]
		if group == 1 {
			if unquoted, err := strconv.Unquote(`"` + value + `"`); err == nil {
				value = unquoted
			}
		}
		value = strings.TrimSpace(value)
		if group == 3 {
			value = strings.Trim(value, `"'`)
		}
		if value != "" {
			return value
		}
	}
	return ""
}
