// Package command turns free-text Turkish payment commands such as
// "Ali Veli ekim ayı ödendi" into an Intent and plans the payment updates it
// implies for a roster.
//
// Everything here is pure: no I/O, no shared mutable state. Interpretation is
// keyword and substring based and deliberately forgiving, so it accepts many
// phrasings at the cost of occasional false positives ("Temel" contains the
// July alias "tem").
package command

import (
	"strings"
	"unicode"

	"github.com/mmynk/odemetakip/internal/calendar"
	"github.com/mmynk/odemetakip/internal/textnorm"
)

// Keywords, already normalized.
const (
	paidPhrase   = "odendi"
	unpaidPhrase = "odenmedi"
	wildcardWord = "tum"
)

// stopWords are dropped from the residual name fragment, together with the
// inflected forms of "ay" (month) built by monthWordForms.
var stopWords = func() map[string]bool {
	words := map[string]bool{
		paidPhrase:   true,
		unpaidPhrase: true,
		wildcardWord: true,
		"tumu":       true,
		"tumunu":     true,
		"ve":         true,
		"ile":        true,
		"de":         true,
		"da":         true,
	}
	for _, w := range monthWordForms() {
		words[w] = true
	}
	return words
}()

// aySuffixes are the case endings of "ay" and "aylar" as they appear after
// normalization (ayı → ayi, ayında → ayinda). Bare "a", "da" and "dan" are
// left out for the singular so that names like Ayda and Aydan survive.
var aySuffixes = []string{
	"", "i", "in", "ini", "inin", "ina", "inda", "indan", "indaki",
}

func monthWordForms() []string {
	var forms []string
	for _, suffix := range aySuffixes {
		forms = append(forms, "ay"+suffix, "aylar"+suffix)
	}
	for _, suffix := range []string{"a", "da", "dan", "daki"} {
		forms = append(forms, "aylar"+suffix)
	}
	return forms
}

// monthSuffixes are the inflections accepted after a month alias when the
// alias is stripped from the name fragment ("ekimi", "şubatta", "eylül'ün").
// Normalization folds ı/ü to i/u, so both harmony rows collapse onto these.
var monthSuffixes = []string{
	"", "i", "u", "a", "e",
	"in", "un", "ini", "unu", "inin", "unun",
	"ina", "ine", "una", "une",
	"inda", "inde", "unda", "unde",
	"da", "de", "ta", "te",
	"dan", "den", "tan", "ten",
}

// Intent is the structured reading of one command.
type Intent struct {
	// IsPaid and IsUnpaid are never both true.
	IsPaid   bool
	IsUnpaid bool

	// Wildcard reports that "tüm" was present.
	Wildcard bool

	// Months are the target month keys in chronological order.
	Months []string

	// NameFragment is the normalized text left after removing keywords,
	// month names and punctuation. It selects athletes by substring.
	NameFragment string

	// Text is the normalized command.
	Text string
}

// HasAction reports whether a paid or unpaid keyword was found.
func (i Intent) HasAction() bool {
	return i.IsPaid || i.IsUnpaid
}

// Broad reports whether the command names nobody, in which case it applies
// to every athlete in scope.
func (i Intent) Broad() bool {
	return i.NameFragment == ""
}

// Err returns ErrNoActionKeyword when the command cannot be acted on.
func (i Intent) Err() error {
	if !i.HasAction() {
		return ErrNoActionKeyword
	}
	return nil
}

// Interpret reads raw and returns its Intent.
//
// "ödenmedi" is checked first so that an unpaid command is never also read
// as paid. Specific month names win over "tüm": the wildcard selects the
// whole calendar only when no month alias matched.
func Interpret(raw string) Intent {
	text := textnorm.Normalize(strings.TrimSpace(raw))

	unpaid := strings.Contains(text, unpaidPhrase)
	paid := strings.Contains(text, paidPhrase) && !unpaid
	wildcard := strings.Contains(text, wildcardWord)

	matched := calendar.MatchMonths(text)
	months := matched
	if wildcard && len(matched) == 0 {
		months = calendar.Keys()
	}
	if months == nil {
		months = []string{}
	}

	return Intent{
		IsPaid:       paid,
		IsUnpaid:     unpaid,
		Wildcard:     wildcard,
		Months:       months,
		NameFragment: residual(text, matched),
		Text:         text,
	}
}

// residual removes punctuation, stop words and the aliases of the matched
// months from text, then collapses whitespace. Aliases are removed as whole
// words (optionally inflected) so that names merely containing an alias keep
// their letters.
func residual(text string, matched []string) string {
	aliases := calendar.NormalizedAliases(matched)

	var kept []string
	for _, tok := range strings.Fields(stripPunct(text)) {
		if stopWords[tok] || isMonthWord(tok, aliases) {
			continue
		}
		kept = append(kept, tok)
	}
	return strings.Join(kept, " ")
}

// isMonthWord reports whether tok is one of the aliases, possibly inflected.
// Three-letter abbreviations only match bare: with endings they spell names
// (nis+a, mar+ina).
func isMonthWord(tok string, aliases []string) bool {
	for _, alias := range aliases {
		if len(alias) <= 3 {
			if tok == alias {
				return true
			}
			continue
		}
		if hasMonthSuffix(tok, alias) {
			return true
		}
		// Final k softens before a vowel: ocak → ocağı, aralık → aralığı.
		if stem, ok := strings.CutSuffix(alias, "k"); ok && hasMonthSuffix(tok, stem+"g") {
			return true
		}
	}
	return false
}

func hasMonthSuffix(tok, stem string) bool {
	rest, ok := strings.CutPrefix(tok, stem)
	if !ok {
		return false
	}
	for _, suffix := range monthSuffixes {
		if rest == suffix {
			return true
		}
	}
	return false
}

// stripPunct replaces punctuation with spaces. Apostrophes are deleted
// instead, which glues a case ending back onto its word: "şubat'ı" becomes
// one token that isMonthWord recognizes.
func stripPunct(s string) string {
	return strings.Map(func(r rune) rune {
		if r == '\'' || r == '’' {
			return -1
		}
		if unicode.IsPunct(r) || unicode.IsSymbol(r) {
			return ' '
		}
		return r
	}, s)
}
