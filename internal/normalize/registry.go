package normalize

import (
	"sort"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// ModelFamily binds a model pattern to its color dictionary. Families are
// matched by substring against the lower-cased model; when several patterns
// match, the longest (most specific) one wins, so "iPhone 17 Pro Max" never
// resolves to the "iphone 17" family.
type ModelFamily struct {
	Pattern string
	Colors  map[string]string
}

var families []ModelFamily

func init() {
	families = buildFamilies()
	// Longest pattern first so the most specific family is found first.
	sort.Slice(families, func(i, j int) bool {
		return len(families[i].Pattern) > len(families[j].Pattern)
	})
}

// familyFor returns the color dictionary for the most specific family
// matching the model, or nil when the model belongs to no known family.
func familyFor(model string) *ModelFamily {
	m := Fold(model)
	for i := range families {
		if strings.Contains(m, families[i].Pattern) {
			return &families[i]
		}
	}
	return nil
}

var accentStripper = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Fold lower-cases, trims and strips diacritics so that "Titânio" and
// "titanio" land on the same dictionary key.
func Fold(s string) string {
	folded, _, err := transform.String(accentStripper, strings.ToLower(strings.TrimSpace(s)))
	if err != nil {
		return strings.ToLower(strings.TrimSpace(s))
	}
	return folded
}

// merge copies entries of every given dictionary into a fresh map; later
// maps override earlier ones.
func merge(dicts ...map[string]string) map[string]string {
	out := make(map[string]string)
	for _, d := range dicts {
		for k, v := range d {
			out[k] = v
		}
	}
	return out
}

// Shared alias sets. Keys are accent-folded lower-case raw tokens as they
// show up in supplier lists (English and Portuguese mixed freely).
var basicColors = map[string]string{
	"preto":        "Preto",
	"black":        "Preto",
	"branco":       "Branco",
	"white":        "Branco",
	"azul":         "Azul",
	"blue":         "Azul",
	"verde":        "Verde",
	"green":        "Verde",
	"vermelho":     "Vermelho",
	"red":          "Vermelho",
	"product red":  "Vermelho",
	"(product)red": "Vermelho",
	"amarelo":      "Amarelo",
	"yellow":       "Amarelo",
	"roxo":         "Roxo",
	"purple":       "Roxo",
	"rosa":         "Rosa",
	"pink":         "Rosa",
}

var proFinishes = map[string]string{
	"dourado":  "Dourado",
	"gold":     "Dourado",
	"prateado": "Prateado",
	"prata":    "Prateado",
	"silver":   "Prateado",
}

var spaceGray = map[string]string{
	"cinza espacial": "Cinza Espacial",
	"space gray":     "Cinza Espacial",
	"space grey":     "Cinza Espacial",
	"cinza":          "Cinza Espacial",
	"gray":           "Cinza Espacial",
	"grey":           "Cinza Espacial",
}

var midnightStarlight = map[string]string{
	"meia-noite": "Meia-noite",
	"meia noite": "Meia-noite",
	"midnight":   "Meia-noite",
	"estelar":    "Estelar",
	"starlight":  "Estelar",
}

func buildFamilies() []ModelFamily {
	return []ModelFamily{
		{Pattern: "iphone 17 pro max", Colors: merge(proFinishes, map[string]string{
			"laranja cosmico": "Laranja Cósmico",
			"cosmic orange":   "Laranja Cósmico",
			"laranja":         "Laranja Cósmico",
			"orange":          "Laranja Cósmico",
			"azul profundo":   "Azul Profundo",
			"deep blue":       "Azul Profundo",
			"azul":            "Azul Profundo",
			"blue":            "Azul Profundo",
		})},
		{Pattern: "iphone 17 pro", Colors: merge(proFinishes, map[string]string{
			"laranja cosmico": "Laranja Cósmico",
			"cosmic orange":   "Laranja Cósmico",
			"laranja":         "Laranja Cósmico",
			"orange":          "Laranja Cósmico",
			"azul profundo":   "Azul Profundo",
			"deep blue":       "Azul Profundo",
			"azul":            "Azul Profundo",
			"blue":            "Azul Profundo",
		})},
		{Pattern: "iphone 17", Colors: merge(basicColors, map[string]string{
			"lavanda":    "Lavanda",
			"lavender":   "Lavanda",
			"salvia":     "Sálvia",
			"sage":       "Sálvia",
			"nevoa azul": "Névoa Azul",
			"mist blue":  "Névoa Azul",
		})},
		{Pattern: "iphone air", Colors: map[string]string{
			"azul celeste":   "Azul Celeste",
			"sky blue":       "Azul Celeste",
			"dourado claro":  "Dourado Claro",
			"light gold":     "Dourado Claro",
			"branco nuvem":   "Branco Nuvem",
			"cloud white":    "Branco Nuvem",
			"preto espacial": "Preto Espacial",
			"space black":    "Preto Espacial",
		}},
		{Pattern: "iphone 16 pro max", Colors: titaniumColors()},
		{Pattern: "iphone 16 pro", Colors: titaniumColors()},
		{Pattern: "iphone 16", Colors: merge(basicColors, map[string]string{
			"ultramarino":       "Ultramarino",
			"ultramarine":       "Ultramarino",
			"verde-acinzentado": "Verde-acinzentado",
			"teal":              "Verde-acinzentado",
		})},
		{Pattern: "iphone 15 pro max", Colors: merge(map[string]string{
			"titanio azul":     "Titânio Azul",
			"blue titanium":    "Titânio Azul",
			"titanio natural":  "Titânio Natural",
			"natural titanium": "Titânio Natural",
			"titanio branco":   "Titânio Branco",
			"white titanium":   "Titânio Branco",
			"titanio preto":    "Titânio Preto",
			"black titanium":   "Titânio Preto",
		})},
		{Pattern: "iphone 15 pro", Colors: merge(map[string]string{
			"titanio azul":     "Titânio Azul",
			"blue titanium":    "Titânio Azul",
			"titanio natural":  "Titânio Natural",
			"natural titanium": "Titânio Natural",
			"titanio branco":   "Titânio Branco",
			"white titanium":   "Titânio Branco",
			"titanio preto":    "Titânio Preto",
			"black titanium":   "Titânio Preto",
		})},
		{Pattern: "iphone 15", Colors: basicColors},
		{Pattern: "iphone 14 pro max", Colors: merge(proFinishes, map[string]string{
			"roxo-profundo":  "Roxo-profundo",
			"roxo profundo":  "Roxo-profundo",
			"deep purple":    "Roxo-profundo",
			"roxo":           "Roxo-profundo",
			"purple":         "Roxo-profundo",
			"preto-espacial": "Preto-espacial",
			"preto espacial": "Preto-espacial",
			"space black":    "Preto-espacial",
		})},
		{Pattern: "iphone 14 pro", Colors: merge(proFinishes, map[string]string{
			"roxo-profundo":  "Roxo-profundo",
			"roxo profundo":  "Roxo-profundo",
			"deep purple":    "Roxo-profundo",
			"roxo":           "Roxo-profundo",
			"purple":         "Roxo-profundo",
			"preto-espacial": "Preto-espacial",
			"preto espacial": "Preto-espacial",
			"space black":    "Preto-espacial",
		})},
		{Pattern: "iphone 14", Colors: merge(basicColors, midnightStarlight)},
		{Pattern: "iphone 13 pro max", Colors: merge(proFinishes, map[string]string{
			"azul sierra":  "Azul Sierra",
			"sierra blue":  "Azul Sierra",
			"grafite":      "Grafite",
			"graphite":     "Grafite",
			"verde-alpino": "Verde-alpino",
			"verde alpino": "Verde-alpino",
			"alpine green": "Verde-alpino",
		})},
		{Pattern: "iphone 13 pro", Colors: merge(proFinishes, map[string]string{
			"azul sierra":  "Azul Sierra",
			"sierra blue":  "Azul Sierra",
			"grafite":      "Grafite",
			"graphite":     "Grafite",
			"verde-alpino": "Verde-alpino",
			"verde alpino": "Verde-alpino",
			"alpine green": "Verde-alpino",
		})},
		{Pattern: "iphone 13", Colors: merge(basicColors, midnightStarlight)},
		{Pattern: "iphone 12 pro max", Colors: merge(proFinishes, map[string]string{
			"azul pacifico": "Azul Pacífico",
			"pacific blue":  "Azul Pacífico",
			"grafite":       "Grafite",
			"graphite":      "Grafite",
		})},
		{Pattern: "iphone 12 pro", Colors: merge(proFinishes, map[string]string{
			"azul pacifico": "Azul Pacífico",
			"pacific blue":  "Azul Pacífico",
			"grafite":       "Grafite",
			"graphite":      "Grafite",
		})},
		{Pattern: "iphone 12", Colors: basicColors},
		{Pattern: "iphone 11 pro max", Colors: merge(proFinishes, spaceGray, map[string]string{
			"verde meia-noite": "Verde Meia-noite",
			"verde meia noite": "Verde Meia-noite",
			"midnight green":   "Verde Meia-noite",
		})},
		{Pattern: "iphone 11 pro", Colors: merge(proFinishes, spaceGray, map[string]string{
			"verde meia-noite": "Verde Meia-noite",
			"verde meia noite": "Verde Meia-noite",
			"midnight green":   "Verde Meia-noite",
		})},
		{Pattern: "iphone 11", Colors: basicColors},
		{Pattern: "iphone xs max", Colors: merge(proFinishes, spaceGray)},
		{Pattern: "iphone xs", Colors: merge(proFinishes, spaceGray)},
		{Pattern: "iphone xr", Colors: merge(basicColors, map[string]string{
			"coral": "Coral",
		})},
		{Pattern: "iphone se", Colors: merge(midnightStarlight, map[string]string{
			"vermelho": "Vermelho",
			"red":      "Vermelho",
		})},
		{Pattern: "galaxy s24 ultra", Colors: map[string]string{
			"titanio cinza":   "Titânio Cinza",
			"titanium gray":   "Titânio Cinza",
			"titanio preto":   "Titânio Preto",
			"titanium black":  "Titânio Preto",
			"titanio violeta": "Titânio Violeta",
			"titanium violet": "Titânio Violeta",
			"titanio amarelo": "Titânio Amarelo",
			"titanium yellow": "Titânio Amarelo",
		}},
		{Pattern: "galaxy", Colors: basicColors},
	}
}

func titaniumColors() map[string]string {
	return map[string]string{
		"titanio deserto":  "Titânio Deserto",
		"desert titanium":  "Titânio Deserto",
		"titanio natural":  "Titânio Natural",
		"natural titanium": "Titânio Natural",
		"titanio branco":   "Titânio Branco",
		"white titanium":   "Titânio Branco",
		"titanio preto":    "Titânio Preto",
		"black titanium":   "Titânio Preto",
	}
}
