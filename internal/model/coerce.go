package model

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ErrNotANumber is returned when a value has no finite numeric reading.
var ErrNotANumber = errors.New("not a number")

// CoerceString converts an arbitrary JSON value to a string. Missing values and
// null become "", numbers are printed in their shortest form, and arrays or
// objects keep their compact JSON text.
func CoerceString(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}

	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return string(raw)
	}

	switch v := v.(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	}

	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		return string(raw)
	}
	return buf.String()
}

// CoerceNumber converts an arbitrary JSON value to a finite number. Numeric
// strings are parsed, booleans map to 1 and 0, and null maps to 0. Missing
// values, objects, arrays and unparsable strings are rejected.
func CoerceNumber(raw json.RawMessage) (float64, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return 0, fmt.Errorf("missing value: %w", ErrNotANumber)
	}

	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return 0, fmt.Errorf("%s: %w", raw, ErrNotANumber)
	}

	switch v := v.(type) {
	case nil:
		return 0, nil
	case float64:
		return v, nil
	case bool:
		if v {
			return 1, nil
		}
		return 0, nil
	case string:
		return ParseNumber(v)
	}
	return 0, fmt.Errorf("%s: %w", raw, ErrNotANumber)
}

// ParseNumber parses a numeric string. Surrounding whitespace is ignored and
// a blank string is 0.
func ParseNumber(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	n, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(n) || math.IsInf(n, 0) {
		return 0, fmt.Errorf("%q: %w", s, ErrNotANumber)
	}
	return n, nil
}
