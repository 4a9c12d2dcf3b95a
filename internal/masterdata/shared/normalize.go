package shared

import (
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var (
	whitespaceRun = regexp.MustCompile(`\s+`)
	upper         = cases.Upper(language.Und)
)

// NormalizeProductName trims, collapses interior whitespace and uppercases.
// Product names are unique under this normalization; importers and CRUD both
// apply it before lookups so spreadsheet variants resolve to the same row.
func NormalizeProductName(value string) string {
	value = whitespaceRun.ReplaceAllString(strings.TrimSpace(value), " ")
	return upper.String(value)
}

// NormalizeSupplierName applies the same trim/collapse/uppercase rules.
func NormalizeSupplierName(value string) string {
	return NormalizeProductName(value)
}

// NormalizeDesignCode trims and collapses whitespace, keeping case.
func NormalizeDesignCode(value string) string {
	return whitespaceRun.ReplaceAllString(strings.TrimSpace(value), " ")
}
