// Package normalize canonicalizes money-like values pulled out of
// certificates and policies so they can be compared across formats.
package normalize

import (
	"encoding/json"
	"strconv"
	"strings"
)

// Value applies the normalization rules in order and returns the canonical
// form: a digits-only string ("181472"), the sentinel "Included", a
// percentage or Inside/Outside string passed through verbatim, or ok=false
// for anything with no comparable form.
//
// Note the deliberate quirk in the digit-strip rule: a decimal point is
// removed, not truncated at, so "1,234.56" normalizes to "123456". Cents are
// insignificant in every comparison this feeds, and downstream equality
// relies on the exact behavior.
func Value(v any) (string, bool) {
	switch x := v.(type) {
	case nil:
		return "", false
	case int:
		return strconv.Itoa(x), true
	case int64:
		return strconv.FormatInt(x, 10), true
	case float64:
		return strconv.FormatInt(int64(x), 10), true
	case json.Number:
		if f, err := x.Float64(); err == nil {
			return strconv.FormatInt(int64(f), 10), true
		}
		return "", false
	case string:
		return normalizeString(x)
	default:
		return "", false
	}
}

func normalizeString(s string) (string, bool) {
	v := strings.TrimSpace(s)
	if v == "" {
		return "", false
	}
	lower := strings.ToLower(v)
	if lower == "included" {
		return "Included", true
	}
	// percentages stay as-is (deductibles like "1%")
	if strings.HasSuffix(v, "%") {
		return v, true
	}
	// compound limits like "Inside $10,000 / Outside $10,000" stay as-is
	if strings.Contains(lower, "inside") || strings.Contains(lower, "outside") {
		return v, true
	}
	var digits strings.Builder
	for _, r := range v {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}
	if digits.Len() == 0 {
		return "", false
	}
	return digits.String(), true
}

// Equal reports whether two raw values normalize to the same canonical
// form. Two values with no comparable form are equal.
func Equal(a, b any) bool {
	na, okA := Value(a)
	nb, okB := Value(b)
	if okA != okB {
		return false
	}
	return na == nb
}
