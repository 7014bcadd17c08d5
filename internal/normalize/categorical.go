//-------------------------------------------------------------------------
//
// pgEdge Sales Warehouse Loader
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package normalize

import "strings"

// NotInformed replaces blank or missing categorical attributes.
const NotInformed = "Not Informed"

// Canonical discount types.
const (
	DiscountFixed      = "Fixed Amount"
	DiscountPercentage = "Percentage"
	DiscountUnknown    = NotInformed
)

var (
	fixedTokens   = []string{"fixed", "fixo"}
	percentTokens = []string{"%", "percent"}
)

// DiscountType maps free text onto one of the canonical discount types.
// Fixed-amount tokens win over percentage tokens.
func DiscountType(raw *string) string {
	if raw == nil {
		return DiscountUnknown
	}
	txt := Fold(*raw)
	if containsAny(txt, fixedTokens) {
		return DiscountFixed
	}
	if containsAny(txt, percentTokens) {
		return DiscountPercentage
	}
	return DiscountUnknown
}

// Text trims a nullable categorical value and substitutes NotInformed when
// it is missing or blank.
func Text(raw *string) string {
	if raw == nil {
		return NotInformed
	}
	if v := strings.TrimSpace(*raw); v != "" {
		return v
	}
	return NotInformed
}

// Name trims an identifying name. The boolean is false when no usable name
// is present; such records must be dropped rather than defaulted.
func Name(raw *string) (string, bool) {
	if raw == nil {
		return "", false
	}
	v := strings.TrimSpace(*raw)
	return v, v != ""
}

// Age returns the customer age, or 0 when unknown.
func Age(raw *int32) int32 {
	if raw == nil {
		return 0
	}
	return *raw
}

// Display renders a nullable raw value for log messages.
func Display(raw *string) string {
	if raw == nil {
		return "<null>"
	}
	return *raw
}

func containsAny(s string, tokens []string) bool {
	for _, tok := range tokens {
		if strings.Contains(s, tok) {
			return true
		}
	}
	return false
}
