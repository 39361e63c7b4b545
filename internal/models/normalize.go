package models

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

// NormalizeCategory trims, collapses inner whitespace and title-cases a
// category so "  behind the SCENES " and "Behind The Scenes" compare equal.
// Input is NFC-normalized first so composed and decomposed accents match.
func NormalizeCategory(category string) string {
	fields := strings.Fields(norm.NFC.String(category))
	if len(fields) == 0 {
		return ""
	}
	// Caser keeps state between calls and must not be shared.
	return cases.Title(language.English).String(strings.Join(fields, " "))
}
