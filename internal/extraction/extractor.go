package extraction

import (
	"context"
	"strings"
)

// Candidate is a structured product record proposed by the extraction
// collaborator, validated at the boundary before normalization. Price and
// condition are required; everything else may be absent.
type Candidate struct {
	Name            string   `json:"name"`
	Model           string   `json:"model,omitempty"`
	Color           string   `json:"color,omitempty"`
	Storage         string   `json:"storage,omitempty"`
	Condition       string   `json:"condition"`
	ConditionDetail string   `json:"condition_detail,omitempty"`
	Variant         string   `json:"variant,omitempty"`
	Notes           string   `json:"notes,omitempty"`
	Price           *float64 `json:"price"`
	Confidence      float64  `json:"confidence,omitempty"`
}

// Result is the extraction collaborator's answer for one raw list
type Result struct {
	Valid             bool        `json:"valid"`
	Errors            []string    `json:"errors,omitempty"`
	Warnings          []string    `json:"warnings,omitempty"`
	ValidatedProducts []Candidate `json:"validated_products"`
}

// Extractor turns raw free-form list text into candidate records. The
// list-kind hint steers the prompt; it never changes the output contract.
type Extractor interface {
	ExtractProducts(ctx context.Context, rawText, listKind string) (*Result, error)
}

// Sanitize drops candidates that do not conform to the contract (no name,
// or fields that are only whitespace) and trims the rest. Non-conforming
// entries are reported back as warnings, never guessed at.
func Sanitize(result *Result) *Result {
	if result == nil {
		return &Result{Valid: false}
	}

	kept := make([]Candidate, 0, len(result.ValidatedProducts))
	for _, c := range result.ValidatedProducts {
		c.Name = strings.TrimSpace(c.Name)
		c.Model = strings.TrimSpace(c.Model)
		c.Color = strings.TrimSpace(c.Color)
		c.Storage = strings.TrimSpace(c.Storage)
		c.Condition = strings.TrimSpace(c.Condition)
		c.Variant = strings.TrimSpace(c.Variant)
		if c.Name == "" {
			result.Warnings = append(result.Warnings, "dropped candidate without a name")
			continue
		}
		kept = append(kept, c)
	}
	result.ValidatedProducts = kept
	return result
}
