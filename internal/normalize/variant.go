package normalize

import (
	"strings"
)

// Variant tags recognized in supplier lists, highest priority first. The
// first tag whose probe appears in the concatenated input wins.
var variantRules = []struct {
	Tag    string
	Probes []string
}{
	{"ANATEL", []string{"anatel"}},
	{"E-SIM", []string{"e-sim", "esim", "e sim"}},
	{"CHIP FÍSICO", []string{"chip fisico", "sim fisico", "fisico"}},
	{"CHIP VIRTUAL", []string{"chip virtual", "sim virtual", "virtual"}},
	{"CHINÊS", []string{"chines", "china"}},
	{"JAPONÊS", []string{"japones", "japao", "japan"}},
	{"INDIANO", []string{"indiano", "india"}},
	{"AMERICANO", []string{"americano", "american", "eua", "usa"}},
	{"CPO", []string{"cpo"}},
}

// Variant detects a network/region tag from any of the given free-text
// fields (variant, network, notes, model, name). Returns "" when no tag is
// present.
func Variant(fields ...string) string {
	text := Fold(strings.Join(fields, " "))
	if text == "" {
		return ""
	}

	for _, rule := range variantRules {
		for _, probe := range rule.Probes {
			if containsToken(text, probe) {
				return rule.Tag
			}
		}
	}
	return ""
}

// containsToken reports whether probe occurs in text bounded by non-word
// characters, so "usa" never fires inside "usado".
func containsToken(text, probe string) bool {
	for start := 0; start <= len(text)-len(probe); {
		i := strings.Index(text[start:], probe)
		if i < 0 {
			return false
		}
		i += start
		end := i + len(probe)
		before := i == 0 || !isWordByte(text[i-1])
		after := end == len(text) || !isWordByte(text[end])
		if before && after {
			return true
		}
		start = i + 1
	}
	return false
}

func isWordByte(b byte) bool {
	return b >= 'a' && b <= 'z' || b >= '0' && b <= '9'
}
