package feature

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Payload carries feature-specific input fields. Values are whatever a JSON
// decoder produces (string, float64, bool, []any, map[string]any) plus the
// native Go equivalents callers may pass directly.
type Payload map[string]any

// Raw returns the value stored under key.
func (p Payload) Raw(key string) (any, bool) {
	v, ok := p[key]
	return v, ok
}

// String returns the value under key as a trimmed string, or def when the key
// is missing or blank.
func (p Payload) String(key, def string) string {
	v, ok := p[key]
	if !ok || v == nil {
		return def
	}
	var s string
	switch t := v.(type) {
	case string:
		s = t
	case json.Number:
		s = t.String()
	case float64:
		s = strconv.FormatFloat(t, 'f', -1, 64)
	case int:
		s = strconv.Itoa(t)
	case fmt.Stringer:
		s = t.String()
	default:
		s = fmt.Sprint(t)
	}
	if s = strings.TrimSpace(s); s == "" {
		return def
	}
	return s
}

// Int returns the value under key as an int, or def when missing or not
// numeric.
func (p Payload) Int(key string, def int) int {
	f, ok := toFloat(p[key])
	if !ok {
		return def
	}
	return int(f)
}

// Number returns the value under key as a float64 and whether it was numeric.
func (p Payload) Number(key string) (float64, bool) {
	return toFloat(p[key])
}

// Float returns the value under key as a float64, or def.
func (p Payload) Float(key string, def float64) float64 {
	f, ok := toFloat(p[key])
	if !ok {
		return def
	}
	return f
}

// Strings returns the value under key as a string slice. A single string is
// returned as a one-element slice.
func (p Payload) Strings(key string) []string {
	switch t := p[key].(type) {
	case []string:
		return append([]string(nil), t...)
	case []any:
		out := make([]string, 0, len(t))
		for _, v := range t {
			if s := strings.TrimSpace(fmt.Sprint(v)); s != "" && v != nil {
				out = append(out, s)
			}
		}
		return out
	case string:
		if s := strings.TrimSpace(t); s != "" {
			return []string{s}
		}
	}
	return nil
}

// Maps returns the value under key as a slice of objects, skipping entries
// that are not objects.
func (p Payload) Maps(key string) []map[string]any {
	switch t := p[key].(type) {
	case []map[string]any:
		return t
	case []any:
		out := make([]map[string]any, 0, len(t))
		for _, v := range t {
			if m, ok := v.(map[string]any); ok {
				out = append(out, m)
			}
		}
		return out
	}
	return nil
}

// toFloat converts numeric values and numeric strings. NaN and infinities
// are rejected so they never reach a result.
func toFloat(v any) (float64, bool) {
	var f float64
	switch t := v.(type) {
	case float64:
		f = t
	case float32:
		f = float64(t)
	case int:
		f = float64(t)
	case int64:
		f = float64(t)
	case json.Number:
		var err error
		if f, err = t.Float64(); err != nil {
			return 0, false
		}
	case string:
		var err error
		if f, err = strconv.ParseFloat(strings.TrimSpace(t), 64); err != nil {
			return 0, false
		}
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}
