package ingest

import (
	"regexp"
	"strings"
)

var (
	priceTokenRe = regexp.MustCompile(`(?i)(?:r\$\s*)?\d{3,}(?:[.,]\d{2,3})?`)

	productTokens = []string{
		"iphone", "ipad", "apple watch", "airpods", "macbook",
		"galaxy", "xiaomi", "redmi", "motorola",
		"gb", "tb", "lacrado", "seminovo", "swap", "cpo", "anatel", "chip",
	}
)

// LooksLikeProductList is the minimum-plausibility gate for passive-channel
// payloads: long enough, carries enough price-looking numbers and enough
// product vocabulary. Anything below the thresholds is chat noise and is
// discarded before enqueueing.
func LooksLikeProductList(text string, minLength, minPriceTokens, minProductTokens int) bool {
	trimmed := strings.TrimSpace(text)
	if len(trimmed) < minLength {
		return false
	}

	if len(priceTokenRe.FindAllString(trimmed, minPriceTokens)) < minPriceTokens {
		return false
	}

	lower := strings.ToLower(trimmed)
	found := 0
	for _, token := range productTokens {
		found += strings.Count(lower, token)
		if found >= minProductTokens {
			return true
		}
	}
	return false
}
