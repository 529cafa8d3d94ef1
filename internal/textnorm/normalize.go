// Package textnorm canonicalizes Turkish free text so accent and case variants
// compare equal under plain substring search.
package textnorm

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// folder maps the Turkish letters that survive lowercasing to their closest
// ASCII counterpart.
var folder = strings.NewReplacer(
	"ğ", "g",
	"ü", "u",
	"ş", "s",
	"ı", "i",
	"ö", "o",
	"ç", "c",
)

// Normalize lowercases s under Turkish casing rules (I→ı, İ→i) and folds
// ğ, ü, ş, ı, ö, ç to g, u, s, i, o, c. Whitespace is left untouched; see
// Fields for the collapsing step.
//
// A cases.Caser keeps state between calls, so one is built per call to keep
// Normalize safe for concurrent use.
func Normalize(s string) string {
	if s == "" {
		return ""
	}
	lower := cases.Lower(language.Turkish).String(s)
	return folder.Replace(lower)
}

// Fields collapses every run of whitespace to a single space and trims both
// ends.
func Fields(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// Canonical is Normalize followed by Fields. Member names and search box
// text go through it before any comparison.
func Canonical(s string) string {
	return Fields(Normalize(s))
}

// Contains reports whether needle occurs in haystack once both are
// canonicalized. An empty needle is contained in everything.
func Contains(haystack, needle string) bool {
	return strings.Contains(Canonical(haystack), Canonical(needle))
}

// Equal reports whether a and b are the same text ignoring case, Turkish
// diacritics and spacing.
func Equal(a, b string) bool {
	return Canonical(a) == Canonical(b)
}
