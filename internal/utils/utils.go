package utils

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"
)

// WaitFor blocks for d or until ctx is done, whichever comes first.
func WaitFor(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// TruncateForLog keeps the first limit runes of the trimmed s and notes how
// many were cut. A non-positive limit logs nothing.
func TruncateForLog(s string, limit int) string {
	if limit <= 0 {
		return ""
	}

	s = strings.TrimSpace(s)
	total := utf8.RuneCountInString(s)
	if total <= limit {
		return s
	}

	cut := 0
	for i := range s {
		if cut == limit {
			return fmt.Sprintf("%s... (%d more runes)", s[:i], total-limit)
		}
		cut++
	}

	return s
}
