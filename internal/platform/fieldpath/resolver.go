// Package fieldpath resolves values out of untyped JSON trees through ordered
// candidate paths. Provider payloads disagree on where a field lives; callers
// list every known location and take the first hit.
package fieldpath

import (
	"strconv"
	"strings"
)

// Get walks a dotted path through maps and slices. Numeric segments index
// into slices ("teams.0.team.name"). The second return is false when any
// segment is absent or the wrong shape. Get never panics.
func Get(node any, path string) (any, bool) {
	current := node
	if path == "" {
		return current, current != nil
	}
	for _, segment := range strings.Split(path, ".") {
		switch typed := current.(type) {
		case map[string]any:
			next, ok := typed[segment]
			if !ok {
				return nil, false
			}
			current = next
		case []any:
			idx, err := strconv.Atoi(segment)
			if err != nil || idx < 0 || idx >= len(typed) {
				return nil, false
			}
			current = typed[idx]
		default:
			return nil, false
		}
	}
	if current == nil {
		return nil, false
	}
	return current, true
}

// Resolve tries each candidate path in order and returns the first value
// that is present and non-empty. Empty strings and nils do not count as
// found; the fallback is returned when every path misses.
func Resolve(node any, paths []string, fallback any) any {
	for _, path := range paths {
		value, ok := Get(node, path)
		if !ok {
			continue
		}
		if text, isString := value.(string); isString && strings.TrimSpace(text) == "" {
			continue
		}
		return value
	}
	return fallback
}

// String resolves the first candidate path that coerces to a non-empty
// string. Numbers and booleans stringify so id fields survive providers that
// send them as JSON numbers; objects and lists are skipped, not errors.
func String(node any, paths []string, fallback string) string {
	for _, path := range paths {
		value, ok := Get(node, path)
		if !ok {
			continue
		}
		switch typed := value.(type) {
		case string:
			if trimmed := strings.TrimSpace(typed); trimmed != "" {
				return trimmed
			}
		case float64:
			return formatFloat(typed)
		case float32:
			return formatFloat(float64(typed))
		case int:
			return strconv.Itoa(typed)
		case int64:
			return strconv.FormatInt(typed, 10)
		case bool:
			return strconv.FormatBool(typed)
		}
	}
	return fallback
}

// Int resolves to an int, parsing numeric strings. Paths that resolve to a
// non-numeric value are skipped, not errors.
func Int(node any, paths []string, fallback int) int {
	for _, path := range paths {
		value, ok := Get(node, path)
		if !ok {
			continue
		}
		if parsed, ok := asInt(value); ok {
			return parsed
		}
	}
	return fallback
}

// Float resolves to a float64, parsing numeric strings.
func Float(node any, paths []string, fallback float64) float64 {
	for _, path := range paths {
		value, ok := Get(node, path)
		if !ok {
			continue
		}
		if parsed, ok := asFloat(value); ok {
			return parsed
		}
	}
	return fallback
}

// Bool resolves to a bool, accepting "true"/"false" strings and 0/1 numbers.
func Bool(node any, paths []string, fallback bool) bool {
	for _, path := range paths {
		value, ok := Get(node, path)
		if !ok {
			continue
		}
		switch typed := value.(type) {
		case bool:
			return typed
		case string:
			parsed, err := strconv.ParseBool(strings.TrimSpace(typed))
			if err == nil {
				return parsed
			}
		case float64:
			return typed != 0
		}
	}
	return fallback
}

// List resolves the first candidate path that holds a non-empty slice.
func List(node any, paths []string) []any {
	for _, path := range paths {
		value, ok := Get(node, path)
		if !ok {
			continue
		}
		if list, isList := value.([]any); isList && len(list) > 0 {
			return list
		}
	}
	return nil
}

// Child resolves the first candidate path that holds an object.
func Child(node any, paths []string) map[string]any {
	for _, path := range paths {
		value, ok := Get(node, path)
		if !ok {
			continue
		}
		if obj, isObj := value.(map[string]any); isObj {
			return obj
		}
	}
	return nil
}

func asInt(value any) (int, bool) {
	switch typed := value.(type) {
	case float64:
		return int(typed), true
	case float32:
		return int(typed), true
	case int:
		return typed, true
	case int64:
		return int(typed), true
	case string:
		trimmed := strings.TrimSpace(typed)
		if trimmed == "" {
			return 0, false
		}
		if parsed, err := strconv.Atoi(trimmed); err == nil {
			return parsed, true
		}
		// scraped cells sometimes carry decimals for whole numbers
		if parsed, err := strconv.ParseFloat(trimmed, 64); err == nil {
			return int(parsed), true
		}
		return 0, false
	default:
		return 0, false
	}
}

func asFloat(value any) (float64, bool) {
	switch typed := value.(type) {
	case float64:
		return typed, true
	case float32:
		return float64(typed), true
	case int:
		return float64(typed), true
	case int64:
		return float64(typed), true
	case string:
		trimmed := strings.TrimSpace(typed)
		if trimmed == "" {
			return 0, false
		}
		parsed, err := strconv.ParseFloat(trimmed, 64)
		if err != nil {
			return 0, false
		}
		return parsed, true
	default:
		return 0, false
	}
}

func formatFloat(value float64) string {
	if value == float64(int64(value)) {
		return strconv.FormatInt(int64(value), 10)
	}
	return strconv.FormatFloat(value, 'f', -1, 64)
}
