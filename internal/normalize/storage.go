package normalize

import (
	"regexp"
	"strconv"
)

var (
	terabyteRe         = regexp.MustCompile(`\b([1248])\s*(?:tb|tera|t)\b`)
	gigabyteSuffixedRe = regexp.MustCompile(`\b(16|32|64|128|256|512|1024|2048|4096|8192)\s*(?:gb|gig|giga|g)\b`)
	gigabyteBareRe     = regexp.MustCompile(`\b(16|32|64|128|256|512|1024|2048|4096|8192)\b`)
)

// Storage extracts the canonical storage capacity (one of 16GB..8TB) from
// raw storage or model text, or returns "" when no capacity is present.
// Terabyte spellings are probed before gigabyte ones so "1T" never parses as
// a bare gigabyte number, and unit-suffixed numbers beat bare ones so the 16
// in "iPhone 16 128GB" never beats the explicit capacity. Bare numbers are
// accepted only when they equal a known capacity value, which keeps
// arbitrary numbers in the text from producing false positives. Idempotent:
// Storage("256GB") == "256GB".
func Storage(raw string) string {
	text := Fold(raw)
	if text == "" {
		return ""
	}

	if m := terabyteRe.FindStringSubmatch(text); m != nil {
		return m[1] + "TB"
	}

	if m := gigabyteSuffixedRe.FindStringSubmatch(text); m != nil {
		return gigabytes(m[1])
	}
	if m := gigabyteBareRe.FindStringSubmatch(text); m != nil {
		return gigabytes(m[1])
	}

	return ""
}

func gigabytes(digits string) string {
	value, _ := strconv.Atoi(digits)
	// 1024 and up are terabyte capacities written in gigabytes.
	if value >= 1024 {
		return strconv.Itoa(value/1024) + "TB"
	}
	return digits + "GB"
}
