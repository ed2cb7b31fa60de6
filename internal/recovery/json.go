package recovery

import (
	"encoding/json"
	"regexp"
	"strings"

	"github.com/spigell/career-recommender/internal/career"
)

var (
	arrayPattern     = regexp.MustCompile(`(?s)\[.*\]`)
	trailingComma    = regexp.MustCompile(`,\s*([\]}])`)
	wrapperKeys      = []string{"recommendations", "careers", "results", "data"}
	maxLanguageIDLen = 20
)

func parseDirect(text string) []career.Recommendation {
	return decodeJSON(stripCodeFence(text))
}

func parseArray(text string) []career.Recommendation {
	text = stripCodeFence(text)

	if match := arrayPattern.FindString(text); match != "" {
		if records := decodeJSON(match); len(records) > 0 {
			return records
		}
		if records := decodeJSON(repairJSON(match)); len(records) > 0 {
			return records
		}
	}

	var records []career.Recommendation
	for _, object := range scanObjects(text) {
		found := decodeJSON(object)
		if len(found) == 0 {
			found = decodeJSON(repairJSON(object))
		}
		records = append(records, found...)
	}

	return records
}

func decodeJSON(text string) []career.Recommendation {
	var value any
	if err := json.Unmarshal([]byte(text), &value); err != nil {
		return nil
	}
	return recordsFromValue(value)
}

func recordsFromValue(value any) []career.Recommendation {
	switch v := value.(type) {
	case []any:
		records := make([]career.Recommendation, 0, len(v))
		for _, item := range v {
			switch typed := item.(type) {
			case map[string]any:
				if rec, ok := decodeRecord(typed); ok {
					records = append(records, rec)
				}
			case string:
				if title := strings.TrimSpace(typed); title != "" {
					records = append(records, career.Recommendation{Career: title})
				}
			}
		}
		return records
	case map[string]any:
		for _, key := range wrapperKeys {
			for k, nested := range v {
				if strings.EqualFold(k, key) {
					if list, ok := nested.([]any); ok {
						return recordsFromValue(list)
					}
				}
			}
		}
		if rec, ok := decodeRecord(v); ok {
			return []career.Recommendation{rec}
		}
	}

	return nil
}

// stripCodeFence removes a markdown code block around the payload, including an
// optional language identifier on the opening line.
func stripCodeFence(raw string) string {
	raw = strings.TrimSpace(raw)
	start := strings.Index(raw, "```")
	if start == -1 {
		return raw
	}

	body := raw[start+3:]
	if nl := strings.IndexByte(body, '\n'); nl != -1 {
		lang := strings.TrimSpace(body[:nl])
		if len(lang) < maxLanguageIDLen && !strings.ContainsAny(lang, " {[\"") {
			body = body[nl+1:]
		}
	} else {
		body = strings.TrimPrefix(body, "json")
	}

	if end := strings.LastIndex(body, "```"); end != -1 {
		body = body[:end]
	}

	return strings.TrimSpace(strings.Trim(body, "`"))
}

// repairJSON fixes the two mistakes seen most often in generated JSON: trailing
// commas and unescaped quotes inside string values.
func repairJSON(src string) string {
	return trailingComma.ReplaceAllString(escapeInnerQuotes(src), "$1")
}

// escapeInnerQuotes escapes a quote found inside a string literal unless the next
// non-blank character closes the value (one of : , ] }).
func escapeInnerQuotes(src string) string {
	var b strings.Builder
	b.Grow(len(src))

	inString := false
	escaped := false

	for i := 0; i < len(src); i++ {
		c := src[i]

		switch {
		case escaped:
			escaped = false
			b.WriteByte(c)
		case c == '\\':
			escaped = true
			b.WriteByte(c)
		case c == '"' && !inString:
			inString = true
			b.WriteByte(c)
		case c == '"':
			j := i + 1
			for j < len(src) && strings.IndexByte(" \t\r\n", src[j]) != -1 {
				j++
			}
			if j >= len(src) || strings.IndexByte(":,]}", src[j]) != -1 {
				inString = false
				b.WriteByte(c)
			} else {
				b.WriteString(`\"`)
			}
		default:
			b.WriteByte(c)
		}
	}

	return b.String()
}

// scanObjects returns every balanced top-level {...} block. Quotes are only
// tracked inside a block so stray quotes in prose do not derail the scan.
func scanObjects(s string) []string {
	var objects []string

	depth, start := 0, -1
	inString, escaped := false, false

	for i := 0; i < len(s); i++ {
		c := s[i]

		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}

		switch c {
		case '"':
			if depth > 0 {
				inString = true
			}
		case '{':
			if depth == 0 {
				start = i
			}
			depth++
		case '}':
			if depth == 0 {
				continue
			}
			depth--
			if depth == 0 {
				objects = append(objects, s[start:i+1])
			}
		}
	}

	return objects
}
