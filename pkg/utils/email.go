package utils

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

// NormalizeEmail trims, NFC-normalises and lower-cases an address so that
// uniqueness checks are case-insensitive
func NormalizeEmail(email string) string {
	email = strings.TrimSpace(email)
	if email == "" {
		return ""
	}
	// a Caser is stateful, so each call gets its own
	return cases.Lower(language.Und).String(norm.NFC.String(email))
}
