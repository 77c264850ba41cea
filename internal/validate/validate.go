// Package validate holds the pure format checks used by the conversation flows.
package validate

import (
	"regexp"
	"time"
)

var (
	timePattern = regexp.MustCompile(`^([01][0-9]|2[0-3]):[0-5][0-9]$`)
	datePattern = regexp.MustCompile(`^\d{2}/\d{2}/\d{4}$`)
)

// ValidTime reports whether s is a strict HH:MM between 00:00 and 23:59.
// Single-digit hours ("9:00") are rejected.
func ValidTime(s string) bool {
	return timePattern.MatchString(s)
}

// ValidDate reports whether s is a strict DD/MM/YYYY denoting a real
// calendar date. "31/02/2025" and "00/01/2025" are rejected.
func ValidDate(s string) bool {
	if !datePattern.MatchString(s) {
		return false
	}
	_, err := time.Parse("02/01/2006", s)
	return err == nil
}

// ValidRating reports whether n is a feedback rating between 1 and 5.
func ValidRating(n int) bool {
	return n >= 1 && n <= 5
}
