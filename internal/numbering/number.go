// Package numbering produces the year-scoped sequential numbers carried by
// work orders and refill requests, in the form "<sequence>-<2-digit-year>".
package numbering

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// YearSuffix returns the 2-digit year scope for a point in time, e.g. "25".
func YearSuffix(t time.Time) string {
	return t.Format("06")
}

// Format renders a sequence and year suffix as a human-facing number.
func Format(seq int, year string) string {
	return fmt.Sprintf("%d-%s", seq, year)
}

// Split breaks a number into its numeric prefix and year suffix.
func Split(number string) (seq int, year string, err error) {
	prefix, suffix, found := strings.Cut(number, "-")
	if !found {
		return 0, "", fmt.Errorf("malformed number %q", number)
	}
	seq, err = strconv.Atoi(prefix)
	if err != nil {
		return 0, "", fmt.Errorf("malformed number %q: %w", number, err)
	}
	return seq, suffix, nil
}

// Prefix returns the numeric prefix of a number.
func Prefix(number string) (int, error) {
	seq, _, err := Split(number)
	return seq, err
}
