package catalog

import (
	"fmt"

	"github.com/igestorphone/igestorphone-sub000/internal/model"
)

// List kinds accepted by the ingestion entry points
const (
	ListKindSealedNew = "sealed-new"
	ListKindUsed      = "used"
	ListKindMixed     = "mixed"
)

// ConditionClass returns the set of canonical conditions a list kind speaks
// for. Reconciliation must never deactivate a row whose condition the list
// knows nothing about.
func ConditionClass(listKind string) ([]string, error) {
	switch listKind {
	case ListKindSealedNew:
		return []string{model.ConditionNew}, nil
	case ListKindUsed:
		return []string{model.ConditionUsedGood, model.ConditionUsed, model.ConditionRefurbished}, nil
	case ListKindMixed:
		return []string{model.ConditionNew, model.ConditionUsedGood, model.ConditionUsed, model.ConditionRefurbished}, nil
	default:
		return nil, fmt.Errorf("unknown list kind %q", listKind)
	}
}

// ConditionAllowed reports whether a candidate's canonical condition fits
// the list kind it arrived in.
func ConditionAllowed(listKind, condition string) bool {
	class, err := ConditionClass(listKind)
	if err != nil {
		return false
	}
	for _, c := range class {
		if c == condition {
			return true
		}
	}
	return false
}
