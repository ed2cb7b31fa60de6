// Package bridge implements the one-shot stdin/stdout exchange with the host
// process: one JSON profile in, one JSON array of records out.
package bridge

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/spigell/career-recommender/internal/career"

	"github.com/mitchellh/mapstructure"
)

// DefaultMaxInputBytes bounds how much of stdin is read for one request.
const DefaultMaxInputBytes = 1 << 20

var (
	// ErrInvalidInput is returned when stdin does not hold a JSON object.
	ErrInvalidInput = errors.New("invalid json input")
	// ErrEmptyInput is returned when stdin is empty or blank.
	ErrEmptyInput = errors.New("empty input")
	// ErrInputTooLarge is returned when stdin exceeds the configured limit.
	ErrInputTooLarge = errors.New("input too large")
)

// InputError carries the detail shown to the host for malformed input.
type InputError struct {
	Detail string
	Err    error
}

func (e *InputError) Error() string {
	return fmt.Sprintf("%s: %s", ErrInvalidInput, e.Detail)
}

func (e *InputError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrInvalidInput}
	}
	return []error{ErrInvalidInput, e.Err}
}

// ReadProfile reads one JSON object from r and decodes it into a normalized,
// validated profile. limit caps the number of bytes read; zero means
// DefaultMaxInputBytes.
func ReadProfile(r io.Reader, limit int64) (*career.Profile, error) {
	if limit <= 0 {
		limit = DefaultMaxInputBytes
	}

	data, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, fmt.Errorf("reading input: %w", err)
	}
	if int64(len(data)) > limit {
		return nil, &InputError{Detail: fmt.Sprintf("input exceeds %d bytes", limit), Err: ErrInputTooLarge}
	}

	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, &InputError{Detail: "no data received", Err: ErrEmptyInput}
	}

	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, &InputError{Detail: err.Error(), Err: err}
	}

	fields, ok := raw.(map[string]any)
	if !ok {
		return nil, &InputError{Detail: fmt.Sprintf("expected a JSON object, got %s", kind(raw))}
	}

	profile, err := decodeProfile(fields)
	if err != nil {
		return nil, err
	}

	profile.Normalize()

	if err := profile.Validate(); err != nil {
		return nil, err
	}

	return profile, nil
}

func decodeProfile(fields map[string]any) (*career.Profile, error) {
	// null entries behave like absent ones
	for k, v := range fields {
		if v == nil {
			delete(fields, k)
		}
	}

	profile := &career.Profile{}
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           profile,
		MatchName: func(mapKey, fieldName string) bool {
			return normalizeName(mapKey) == normalizeName(fieldName)
		},
	})
	if err != nil {
		return nil, err
	}

	if err := decoder.Decode(fields); err != nil {
		return nil, &InputError{Detail: err.Error(), Err: err}
	}

	return profile, nil
}

func kind(v any) string {
	switch v.(type) {
	case []any:
		return "array"
	case string:
		return "string"
	case float64:
		return "number"
	case bool:
		return "boolean"
	default:
		return "null"
	}
}

// normalizeName lets education_level, education-level and educationLevel all match.
func normalizeName(name string) string {
	out := make([]byte, 0, len(name))
	for i := 0; i < len(name); i++ {
		c := name[i]
		switch {
		case c == '_' || c == '-' || c == ' ':
			continue
		case c >= 'A' && c <= 'Z':
			out = append(out, c+'a'-'A')
		default:
			out = append(out, c)
		}
	}
	return string(out)
}

// WriteRecords writes records as a single JSON line.
func WriteRecords(w io.Writer, records []career.Recommendation) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	return enc.Encode(records)
}

// WriteIndented writes records as indented JSON, for people rather than processes.
func WriteIndented(w io.Writer, records []career.Recommendation) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	return enc.Encode(records)
}
