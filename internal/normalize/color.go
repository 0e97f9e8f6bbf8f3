package normalize

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// titleCase capitalizes a fallback color. A fresh caser per call: cases.Caser
// carries transformer state and is not safe for concurrent use.
func titleCase(s string) string {
	return cases.Title(language.BrazilianPortuguese).String(strings.ToLower(s))
}

// Color maps a raw color token to the canonical color name for the model's
// family. Lookup order: whole token in the family dictionary, then each word
// of the token, then the input capitalized as a safe fallback. Dictionaries
// are scoped per family, so "space gray" resolves on an iPhone 11 Pro but
// not on an iPhone 11. Pure and total: any non-empty input yields a
// non-empty result.
func Color(raw, model string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}

	family := familyFor(model)
	if family == nil {
		return titleCase(raw)
	}

	key := Fold(raw)
	if canonical, ok := family.Colors[key]; ok {
		return canonical
	}

	// A compound token such as "azul ize lacrado" may still carry a known
	// color in one of its words.
	for _, word := range strings.Fields(key) {
		if canonical, ok := family.Colors[word]; ok {
			return canonical
		}
	}

	return titleCase(raw)
}
