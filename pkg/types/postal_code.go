package types

import (
	"regexp"
	"strings"
)

var postalCodePattern = regexp.MustCompile(`^[0-9]{6}$`)

// NormalizePostalCode trims surrounding whitespace.
func NormalizePostalCode(raw string) string {
	return strings.TrimSpace(raw)
}

// IsPostalCode reports whether v is a six digit postal code.
func IsPostalCode(v string) bool {
	return postalCodePattern.MatchString(v)
}
