// Package nodeconfig reads loosely typed values out of resolved node configs.
package nodeconfig

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var leadingInt = regexp.MustCompile(`^\s*[-+]?\d+`)

// String returns config[key] as text, or def when the key is absent, nil or empty.
func String(config map[string]any, key, def string) string {
	value, ok := config[key]
	if !ok || value == nil {
		return def
	}

	var text string

	switch v := value.(type) {
	case string:
		text = v
	case float64:
		text = strconv.FormatFloat(v, 'f', -1, 64)
	default:
		text = fmt.Sprint(v)
	}

	if text == "" {
		return def
	}

	return text
}

// Int parses config[key] leniently: numbers are truncated and strings are read up to the first
// non-digit. Anything unparseable, and zero, yields def.
func Int(config map[string]any, key string, def int) int {
	n, ok := ParseInt(config[key])
	if !ok || n == 0 {
		return def
	}

	return n
}

// ParseInt converts a number or numeric prefix string to an int.
func ParseInt(value any) (int, bool) {
	switch v := value.(type) {
	case int:
		return v, true
	case int64:
		return int(v), true
	case float64:
		return int(v), true
	case json.Number:
		f, err := v.Float64()
		if err != nil {
			return 0, false
		}

		return int(f), true
	case string:
		match := leadingInt.FindString(v)
		if match == "" {
			return 0, false
		}

		n, err := strconv.Atoi(strings.TrimSpace(match))
		if err != nil {
			return 0, false
		}

		return n, true
	default:
		return 0, false
	}
}

// Float parses config[key] as a float. The second result is false when no number was found.
func Float(config map[string]any, key string) (float64, bool) {
	return ParseFloat(config[key])
}

// ParseFloat converts a number or numeric string to a float64.
func ParseFloat(value any) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case json.Number:
		f, err := v.Float64()

		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)

		return f, err == nil
	default:
		return 0, false
	}
}

// Bool reads a boolean flag, accepting booleans and "true"/"false" strings.
func Bool(config map[string]any, key string, def bool) bool {
	switch v := config[key].(type) {
	case bool:
		return v
	case string:
		b, err := strconv.ParseBool(v)
		if err != nil {
			return def
		}

		return b
	default:
		return def
	}
}

// JSONValue returns value decoded from JSON when it is a string holding JSON, or value itself.
// Strings that are not valid JSON are returned unchanged.
func JSONValue(value any) any {
	text, ok := value.(string)
	if !ok {
		return value
	}

	var decoded any
	if err := json.Unmarshal([]byte(text), &decoded); err != nil {
		return value
	}

	return decoded
}

// List returns value as a slice. JSON array strings are decoded; anything else yields nil.
func List(value any) []any {
	switch v := JSONValue(value).(type) {
	case []any:
		return v
	case []string:
		out := make([]any, len(v))
		for i, s := range v {
			out[i] = s
		}

		return out
	default:
		return nil
	}
}

// Unescape turns the literal sequences \n and \t into newline and tab.
func Unescape(s string) string {
	return strings.NewReplacer(`\n`, "\n", `\t`, "\t").Replace(s)
}

// Truncate shortens s to at most n runes for log lines.
func Truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}

	return string(runes[:n]) + "..."
}
