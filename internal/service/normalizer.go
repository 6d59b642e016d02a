package service

import (
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var (
	titleCaser = cases.Title(language.English)

	// Bank feeds append card/reference numbers to merchant strings.
	refNumberPattern = regexp.MustCompile(`\s+[#*]?\d{4,}$`)
)

// normalizeMerchant cleans a raw merchant string from a detection feed:
// collapses whitespace, strips trailing reference numbers, and title-cases
// all-caps names.
func normalizeMerchant(raw string) string {
	s := strings.Join(strings.Fields(raw), " ")
	s = refNumberPattern.ReplaceAllString(s, "")
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	if s == strings.ToUpper(s) {
		s = titleCaser.String(strings.ToLower(s))
	}
	return s
}
