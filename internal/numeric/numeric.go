// Package numeric converts locale-formatted spreadsheet values into numbers.
//
// Two policies exist on purpose. ToNumber is lenient: a fee component that
// cannot be read contributes zero. ToNullable keeps "not recorded" apart from
// "recorded as zero" so drift reports can tell them apart.
package numeric

import (
	"math"
	"strconv"
	"strings"
)

var cleaner = strings.NewReplacer(",", "", "%", "")

// Clean strips thousands separators, percent signs, and surrounding whitespace.
func Clean(s string) string {
	return strings.TrimSpace(cleaner.Replace(s))
}

// ToNumber coerces v to a float64, returning 0 for empty or unparseable input.
func ToNumber(v any) float64 {
	f := ToNullable(v)
	if f == nil {
		return 0
	}
	return *f
}

// ToNullable coerces v to a float64, returning nil for nil, empty, or
// unparseable input.
func ToNullable(v any) *float64 {
	var f float64
	switch val := v.(type) {
	case nil:
		return nil
	case float64:
		f = val
	case float32:
		f = float64(val)
	case int:
		f = float64(val)
	case int64:
		f = float64(val)
	case bool:
		return nil
	case string:
		cleaned := Clean(val)
		if cleaned == "" || isHex(cleaned) {
			return nil
		}
		parsed, err := strconv.ParseFloat(cleaned, 64)
		if err != nil {
			return nil
		}
		f = parsed
	default:
		return nil
	}

	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	return &f
}

// isHex reports whether s is hexadecimal notation, which ParseFloat accepts
// but spreadsheets never mean.
func isHex(s string) bool {
	s = strings.TrimLeft(s, "+-")
	return len(s) > 1 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X')
}

// Equal reports whether two nullable values are the same. Two nils are equal.
func Equal(a, b *float64) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
