package domain

import (
	"regexp"
)

// Validation Helpers

var slugRegex = regexp.MustCompile(`^[a-z0-9]+(?:[-_.][a-z0-9]+)*$`)

// IsValidSlug checks if the string is a lowercase slug-like identifier as
// used for vendor_id / product_id values.
func IsValidSlug(s string) bool {
	if len(s) == 0 || len(s) > 128 {
		return false
	}
	return slugRegex.MatchString(s)
}

// Severities allowed in pattern metadata.
var Severities = []string{"low", "medium", "high", "critical"}

// IsValidSeverity checks a metadata severity value.
func IsValidSeverity(s string) bool {
	for _, known := range Severities {
		if s == known {
			return true
		}
	}
	return false
}
