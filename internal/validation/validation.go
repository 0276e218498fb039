// Package validation checks single form values against a small set of optional constraints.
//
// A constraint only applies to values of the matching kind: length bounds apply to strings and
// numeric bounds apply to numbers. A constraint that does not apply is skipped, not failed.
package validation

import (
	"fmt"
	"math"
	"reflect"
	"strings"
	"unicode/utf8"
)

// Validatable is a value plus the constraints it must satisfy.
// A nil bound leaves that axis unconstrained.
type Validatable struct {
	Value     any
	Required  bool
	MinLength *int
	MaxLength *int
	Min       *float64
	Max       *float64
}

// Int returns a pointer to n, for use as a length bound.
func Int(n int) *int { return &n }

// Float returns a pointer to f, for use as a numeric bound.
func Float(f float64) *float64 { return &f }

// Validate reports whether every present constraint holds for v.Value.
func Validate(v Validatable) bool {
	if v.Required && strings.TrimSpace(stringForm(v.Value)) == "" {
		return false
	}

	if s, ok := v.Value.(string); ok {
		n := utf8.RuneCountInString(s)
		if v.MinLength != nil && n < *v.MinLength {
			return false
		}
		if v.MaxLength != nil && n > *v.MaxLength {
			return false
		}
	}

	if f, ok := numeric(v.Value); ok {
		// NaN compares false against any bound, so it fails whichever bound is present.
		if v.Min != nil && !(f >= *v.Min) {
			return false
		}
		if v.Max != nil && !(f <= *v.Max) {
			return false
		}
	}

	return true
}

func stringForm(value any) string {
	if value == nil {
		return ""
	}
	if s, ok := value.(string); ok {
		return s
	}
	return fmt.Sprint(value)
}

// numeric converts any Go integer or float kind to float64.
func numeric(value any) (float64, bool) {
	if value == nil {
		return 0, false
	}
	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(rv.Int()), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return float64(rv.Uint()), true
	case reflect.Float32, reflect.Float64:
		return rv.Float(), true
	default:
		return math.NaN(), false
	}
}
