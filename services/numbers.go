package services

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// NumberFrom reads a JSON-decoded value as a number. Numeric strings are
// accepted; anything else reports false.
func NumberFrom(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		return f, err == nil
	}
	return 0, false
}

// StrictNumberFrom accepts only values decoded from a JSON number. Numeric
// strings report false.
func StrictNumberFrom(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	}
	return 0, false
}

// IDFrom reads an entity id from a JSON-decoded value.
func IDFrom(v any) (uint, bool) {
	f, ok := NumberFrom(v)
	if !ok || !isPositive(f) || f != math.Trunc(f) || f > math.MaxUint32 {
		return 0, false
	}
	return uint(f), true
}

// ParseID parses a path parameter id.
func ParseID(s string) (uint, bool) {
	id, err := strconv.ParseUint(s, 10, 32)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

func isPositive(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0) && f > 0
}

// wholeQuantity truncates a positive quantity to an integer, clamped to int32.
func wholeQuantity(f float64) int {
	if f >= math.MaxInt32 {
		return math.MaxInt32
	}
	return int(math.Floor(f))
}
