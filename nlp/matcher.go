// Package nlp provides the keyword-containment capability the feature
// transformer uses to detect amenities mentioned in free-text descriptions.
// Matchers are explicit, passed-in collaborators; the transformer never
// touches global state.
package nlp

import (
	"strings"
	"unicode"
)

// KeywordMatcher reports whether a text mentions any of the given keywords.
// Keywords are base (dictionary) forms.
type KeywordMatcher interface {
	Contains(text string, keywords []string) bool
}

// Disabled is the no-op matcher used when description enrichment is off. It
// never matches, so amenity flags fall back to the structured fields alone.
type Disabled struct{}

func (Disabled) Contains(string, []string) bool { return false }

// FoldingMatcher matches Polish inflected forms by case-folding, stripping
// diacritics and comparing token prefixes against the keyword base form:
// "zmywarka" matches "zmywarką" and "Zmywarki". Word lengths may differ by at
// most two runes so that short keywords do not match unrelated longer words.
type FoldingMatcher struct{}

const maxSuffixSlack = 2

func (FoldingMatcher) Contains(text string, keywords []string) bool {
	if text == "" || len(keywords) == 0 {
		return false
	}

	folded := make([]string, len(keywords))
	for i, kw := range keywords {
		folded[i] = foldPolish(kw)
	}

	for _, token := range tokenize(text) {
		token = foldPolish(token)
		for _, kw := range folded {
			if len(kw) == 0 {
				continue
			}
			stem := trimInflection(kw)
			if strings.HasPrefix(token, stem) && len(token)-len(stem) <= len(kw)-len(stem)+maxSuffixSlack {
				return true
			}
		}
	}
	return false
}

// trimInflection drops the final vowel of a keyword so that the common Polish
// case endings still match ("zmywarka" → "zmywark" → "zmywarką").
func trimInflection(kw string) string {
	r := []rune(kw)
	if len(r) > 3 && strings.ContainsRune("aeiouy", r[len(r)-1]) {
		return string(r[:len(r)-1])
	}
	return kw
}

var polishFolder = strings.NewReplacer(
	"ł", "l", "ą", "a", "ć", "c", "ę", "e", "ń", "n",
	"ó", "o", "ś", "s", "ż", "z", "ź", "z",
)

func foldPolish(s string) string {
	return polishFolder.Replace(strings.ToLower(s))
}

func tokenize(text string) []string {
	return strings.FieldsFunc(text, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}
