// Package taxonomy resolves free-text education, role, seniority, cargo and
// sentence descriptions onto the closed enumerations of the domain. Every
// function here is total: unknown text resolves to the enumeration's
// "none" or default member and never to an error.
package taxonomy

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Fold accent-folds and case-folds s, turns every run of non-alphanumeric
// characters into a single space and trims the result. "Maestría en
// Gestión_Pública" folds to "maestria en gestion publica".
func Fold(s string) string {
	if s == "" {
		return ""
	}

	// Transformers carry state, so each call builds its own chain.
	strip := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	stripped, _, err := transform.String(strip, s)
	if err != nil {
		stripped = s
	}
	folded := cases.Fold().String(stripped)

	var b strings.Builder
	b.Grow(len(folded))
	pendingSpace := false
	for _, r := range folded {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if pendingSpace && b.Len() > 0 {
				b.WriteByte(' ')
			}
			pendingSpace = false
			b.WriteRune(r)
			continue
		}
		pendingSpace = true
	}
	return b.String()
}

// canonicalKey folds s and joins its words with underscores so that
// "University Complete" and "university-complete" both become
// "university_complete".
func canonicalKey(s string) string {
	return strings.ReplaceAll(Fold(s), " ", "_")
}

// keywords is a folded keyword set matched at word starts. A keyword
// matches when the folded text contains it beginning at a word boundary,
// so the stem "maestr" matches "maestria" but "gerente" does not match
// "subgerente".
type keywords []string

func newKeywords(raw []string) keywords {
	out := make(keywords, 0, len(raw))
	for _, k := range raw {
		if f := Fold(k); f != "" {
			out = append(out, f)
		}
	}
	return out
}

// matchIn reports whether any keyword occurs at a word start of folded.
func (k keywords) matchIn(folded string) bool {
	if len(k) == 0 || folded == "" {
		return false
	}
	padded := " " + folded
	for _, kw := range k {
		if strings.Contains(padded, " "+kw) {
			return true
		}
	}
	return false
}
