package catalog

import (
	"strings"
)

// ProductKey derives the composite identity key used for matching and
// reconciliation: lower(trim(model))|lower(trim(color))|lower(trim(storage))|condition.
// The key is case- and whitespace-insensitive; an absent color or storage is
// the empty string, a distinct stable bucket rather than a wildcard. Scoping
// by supplier and product type happens at query level, not inside the key.
func ProductKey(model, color, storage, condition string) string {
	return strings.Join([]string{
		strings.ToLower(strings.TrimSpace(model)),
		strings.ToLower(strings.TrimSpace(color)),
		strings.ToLower(strings.TrimSpace(storage)),
		condition,
	}, "|")
}
