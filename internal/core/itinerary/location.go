package itinerary

import (
	"regexp"
	"strings"
)

var (
	lineBreakRe  = regexp.MustCompile(`\r?\n`)
	whitespaceRe = regexp.MustCompile(`\s+`)
	commasRe     = regexp.MustCompile(`,+`)
	commaSpaceRe = regexp.MustCompile(`,\s+`)
)

// abbreviations maps street-type short forms to their long forms.
var abbreviations = map[string]string{
	"st":   "street",
	"ave":  "avenue",
	"blvd": "boulevard",
	"dr":   "drive",
	"ct":   "court",
	"rd":   "road",
	"ln":   "lane",
	"apt":  "apartment",
	"pkwy": "parkway",
	"pl":   "place",
	"trl":  "trail",
	"cir":  "circle",
	"bldg": "building",
	"fwy":  "freeway",
}

// NormalizeAddress tidies a free-text address for display and geocoding.
// Line breaks become commas, whitespace and comma runs collapse, spaces after
// commas are dropped and surrounding spaces and commas are trimmed.
func NormalizeAddress(s string) string {
	if s == "" {
		return ""
	}
	s = lineBreakRe.ReplaceAllString(s, ", ")
	s = whitespaceRe.ReplaceAllString(s, " ")
	s = commasRe.ReplaceAllString(s, ",")
	s = commaSpaceRe.ReplaceAllString(s, ",")
	return strings.Trim(s, " ,")
}

// Standardize reduces an address to a comparison key of [a-z0-9] only.
// Everything else is stripped before the abbreviation table is applied, so
// only an address that is a bare abbreviation gets expanded; containment in
// Equivalent covers the rest ("123mainst" is inside "123mainstreet").
func Standardize(s string) string {
	s = strings.ToLower(NormalizeAddress(s))

	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	key := b.String()
	if long, ok := abbreviations[key]; ok {
		return long
	}
	return key
}

// Equivalent reports whether two addresses name the same place.
// It is true when either standardised form contains the other, so it is
// permissive: "123 Main St, Suite 4" matches "123 Main Street".
//
// Equivalent is not an equivalence relation. It is not transitive and short
// or generic addresses can collide: an address with nothing left after
// standardising (a non-Latin script, punctuation only) matches every
// address. Callers must only ever compare pairs and never group addresses
// into clusters with it.
func Equivalent(a, b string) bool {
	if a == "" || b == "" {
		return false
	}
	sa, sb := Standardize(a), Standardize(b)
	return strings.Contains(sa, sb) || strings.Contains(sb, sa)
}
