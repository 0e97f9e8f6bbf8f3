package catalog

import (
	"fmt"
	"regexp"
	"strings"

	"gorm.io/gorm"

	"github.com/igestorphone/igestorphone-sub000/internal/model"
)

// Matcher resolves normalized candidates against the existing catalog.
type Matcher struct {
	db *gorm.DB
}

// NewMatcher creates a matcher bound to a database handle
func NewMatcher(db *gorm.DB) *Matcher {
	return &Matcher{db: db}
}

// Match finds the active product a candidate should update, or nil when the
// candidate is new. Primary match is exact equality over the normalized
// identity columns; when it yields nothing and a model is present, a
// spacing-tolerant regex over the stored model column is tried with the
// remaining identity columns still held equal. Most recently updated row
// wins on ties.
func (m *Matcher) Match(supplierID uint, productType, modelName, color, storage, condition string) (*model.Product, error) {
	modelName = strings.TrimSpace(modelName)
	color = strings.TrimSpace(color)
	storage = strings.TrimSpace(storage)

	var product model.Product
	err := m.db.
		Where("supplier_id = ? AND product_type = ? AND is_active = ?", supplierID, productType, true).
		Where("LOWER(TRIM(model)) = ? AND LOWER(TRIM(color)) = ? AND LOWER(TRIM(storage)) = ? AND condition = ?",
			strings.ToLower(modelName), strings.ToLower(color), strings.ToLower(storage), condition).
		Order("updated_at DESC").
		First(&product).Error
	if err == nil {
		return &product, nil
	}
	if err != gorm.ErrRecordNotFound {
		return nil, fmt.Errorf("primary match query: %w", err)
	}

	if modelName == "" {
		return nil, nil
	}
	return m.fallbackMatch(supplierID, productType, modelName, color, storage, condition)
}

// fallbackMatch tolerates punctuation and spacing drift between list-to-list
// phrasings of the same model ("iPhone 13Pro" vs "iPhone 13 Pro") without
// over-matching a different model number. Candidate rows are narrowed in SQL
// by the other identity columns; the regex runs client-side so it behaves
// identically on every storage engine.
func (m *Matcher) fallbackMatch(supplierID uint, productType, modelName, color, storage, condition string) (*model.Product, error) {
	pattern, err := flexibleModelPattern(modelName)
	if err != nil {
		return nil, nil
	}

	var rows []model.Product
	err = m.db.
		Where("supplier_id = ? AND product_type = ? AND is_active = ?", supplierID, productType, true).
		Where("LOWER(TRIM(color)) = ? AND LOWER(TRIM(storage)) = ? AND condition = ?",
			strings.ToLower(color), strings.ToLower(storage), condition).
		Order("updated_at DESC").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("fallback match query: %w", err)
	}

	for i := range rows {
		if pattern.MatchString(strings.ToLower(strings.TrimSpace(rows[i].Model))) {
			return &rows[i], nil
		}
	}
	return nil, nil
}

// flexibleModelPattern compiles an anchored regex from a model name where
// every run of spaces or punctuation matches any such run, including none.
// Tokens are also split at letter/digit boundaries so "13Pro" and "13 Pro"
// produce the same pattern regardless of which side carried the separator.
func flexibleModelPattern(modelName string) (*regexp.Regexp, error) {
	var tokens []string
	for _, field := range strings.FieldsFunc(strings.ToLower(modelName), isSeparator) {
		for _, part := range splitClassBoundaries(field) {
			tokens = append(tokens, regexp.QuoteMeta(part))
		}
	}
	if len(tokens) == 0 {
		return nil, fmt.Errorf("model %q has no matchable tokens", modelName)
	}
	return regexp.Compile(`^` + strings.Join(tokens, `[\s\-_./]*`) + `$`)
}

// splitClassBoundaries breaks a token wherever a digit meets a letter, so
// "13pro" becomes ["13", "pro"] and "a2890" becomes ["a", "2890"].
func splitClassBoundaries(token string) []string {
	var parts []string
	start := 0
	runes := []rune(token)
	for i := 1; i < len(runes); i++ {
		if isDigit(runes[i]) != isDigit(runes[i-1]) {
			parts = append(parts, string(runes[start:i]))
			start = i
		}
	}
	return append(parts, string(runes[start:]))
}

func isDigit(r rune) bool { return r >= '0' && r <= '9' }

func isSeparator(r rune) bool {
	switch r {
	case ' ', '\t', '-', '_', '.', '/':
		return true
	}
	return false
}
