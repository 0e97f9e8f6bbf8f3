package normalize

import (
	"strings"

	"github.com/igestorphone/igestorphone-sub000/internal/model"
)

// conditionBuckets maps label fragments to canonical conditions. Order
// matters: "seminovo" must land on Used-Good before the "novo" probe can
// claim it for New, and "cpo" must win over "usado".
var conditionBuckets = []struct {
	Canonical string
	Probes    []string
}{
	{model.ConditionRefurbished, []string{"cpo", "recond", "refurb", "remanufatur"}},
	{model.ConditionUsedGood, []string{"semi", "vitrine", "showroom", "used-good", "open box", "openbox"}},
	{model.ConditionUsed, []string{"swap", "usado", "used", "troca"}},
	{model.ConditionNew, []string{"lacrad", "novo", "new", "seal"}},
}

// Condition buckets a raw condition label into one of the four canonical
// conditions and preserves the verbatim label (upper-cased) as the detail.
// An unrecognized label yields an empty canonical value; callers reject the
// candidate instead of guessing.
func Condition(raw string) (canonical, detail string) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", ""
	}
	detail = strings.ToUpper(trimmed)

	// Canonical names pass through unchanged.
	switch trimmed {
	case model.ConditionNew, model.ConditionUsedGood, model.ConditionUsed, model.ConditionRefurbished:
		return trimmed, detail
	}

	folded := Fold(trimmed)
	for _, bucket := range conditionBuckets {
		for _, probe := range bucket.Probes {
			if strings.Contains(folded, probe) {
				return bucket.Canonical, detail
			}
		}
	}
	return "", detail
}
