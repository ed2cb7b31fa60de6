package recovery

import (
	"regexp"
	"strings"

	"github.com/spigell/career-recommender/internal/career"
)

var (
	titleLine      = regexp.MustCompile(`(?i)^(?:career|job(?:[ _]title)?|profession|title)(?:\s*:|\s+-\s)\s*(.*)$`)
	fieldLine      = regexp.MustCompile(`(?i)^(description|skills?[ _]match|budget[ _]fit)\s*:\s*(.*)$`)
	enumeratedLine = regexp.MustCompile(`^(\d+\s*[.)]|[-*•])\s+(.+)$`)
	inlineSplit    = regexp.MustCompile(`^(.{2,80}?)\s*(?::|\s-\s|\s–\s)\s*(.+)$`)
)

// maxTitleWords bounds how long an enumerated line can be before it is treated
// as prose instead of a career title.
const maxTitleWords = 8

type lineRecord struct {
	rec         career.Recommendation
	description []string
	// prefixed records were opened by a "Career:" style line; bullets under them
	// are description, not new titles.
	prefixed bool
	// numbered records were opened by "1." style lines; dash bullets under them
	// are description.
	numbered bool
}

// parseLines is the last textual strategy: it reads the output as a list of
// titled paragraphs.
func parseLines(text string) []career.Recommendation {
	var (
		records []career.Recommendation
		current *lineRecord
	)

	flush := func() {
		if current == nil {
			return
		}
		rec := current.rec
		rec.Description = strings.TrimSpace(strings.Join(current.description, " "))
		if rec.Career != "" && rec.Description != "" {
			records = append(records, rec)
		}
		current = nil
	}

	for _, line := range strings.Split(text, "\n") {
		line = cleanLine(line)
		if line == "" {
			continue
		}

		bullet := enumeratedLine.FindStringSubmatch(line)
		plain := line
		if bullet != nil {
			plain = strings.TrimSpace(bullet[2])
		}
		numbered := bullet != nil && isDigit(bullet[1][0])

		if m := titleLine.FindStringSubmatch(plain); m != nil {
			flush()
			current = &lineRecord{rec: career.Recommendation{Career: cleanTitle(m[1])}, prefixed: true}
			continue
		}

		if current != nil {
			if m := fieldLine.FindStringSubmatch(plain); m != nil {
				value := strings.TrimSpace(m[2])
				switch strings.ToLower(m[1][:1]) {
				case "d":
					if value != "" {
						current.description = append(current.description, value)
					}
				case "s":
					current.rec.SkillMatch = value
				case "b":
					current.rec.BudgetFit = value
				}
				continue
			}
		}

		if bullet != nil && (current == nil || (!current.prefixed && (numbered || !current.numbered))) {
			title, rest := plain, ""
			if parts := inlineSplit.FindStringSubmatch(plain); parts != nil {
				title, rest = parts[1], parts[2]
			}
			if len(strings.Fields(title)) <= maxTitleWords {
				flush()
				current = &lineRecord{rec: career.Recommendation{Career: cleanTitle(title)}, numbered: numbered}
				if rest = strings.TrimSpace(rest); rest != "" {
					current.description = append(current.description, rest)
				}
				continue
			}
		}

		if current == nil {
			continue
		}

		if current.rec.Career == "" {
			current.rec.Career = cleanTitle(plain)
			continue
		}

		current.description = append(current.description, plain)
	}

	flush()

	return records
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func cleanLine(line string) string {
	line = strings.TrimSpace(line)
	line = strings.TrimLeft(line, "#>")
	return strings.TrimSpace(line)
}

func cleanTitle(title string) string {
	title = strings.ReplaceAll(title, "**", "")
	title = strings.ReplaceAll(title, "__", "")
	title = strings.TrimSpace(title)
	title = strings.Trim(title, `"'`+"`")
	title = strings.TrimRight(title, ":.-–")
	return strings.TrimSpace(title)
}
