package domain

import (
	"strings"
	"time"
)

// Transaction dates arrive in mixed formats: the web client stores ISO
// YYYY-MM-DD, older CSV imports produced DD/MM/YYYY, and some rows carry a
// full RFC3339 timestamp. All of them are normalized to a canonical
// YYYY-MM-DD string at the store boundary so that ordering and filtering can
// use plain lexicographic comparison. Raw heterogeneous strings are never
// compared directly.

const canonicalDateLayout = "2006-01-02"

// NormalizeDate converts a date string of any accepted format to canonical
// YYYY-MM-DD. The second return value is false when the input cannot be
// parsed; callers keep the raw string for display in that case.
func NormalizeDate(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", false
	}

	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.Format(canonicalDateLayout), true
	}
	if t, err := time.Parse(canonicalDateLayout, s); err == nil {
		return t.Format(canonicalDateLayout), true
	}
	if t, err := time.Parse("02/01/2006", s); err == nil {
		return t.Format(canonicalDateLayout), true
	}

	return s, false
}

// ParseDate returns the time value for an accepted date string, at UTC
// midnight for date-only inputs.
func ParseDate(s string) (time.Time, bool) {
	norm, ok := NormalizeDate(s)
	if !ok {
		return time.Time{}, false
	}
	t, err := time.Parse(canonicalDateLayout, norm)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// LaterDate returns the later of two canonical date strings. Empty strings
// lose to any non-empty date.
func LaterDate(a, b string) string {
	if a == "" {
		return b
	}
	if b == "" {
		return a
	}
	if a > b {
		return a
	}
	return b
}
