// Package template resolves {{path}} placeholders in node configuration against run variables.
package template

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"reflect"
	"regexp"
	"strconv"
	"strings"
)

var (
	wholePlaceholder    = regexp.MustCompile(`^\{\{([^}]+)\}\}$`)
	embeddedPlaceholder = regexp.MustCompile(`\{\{([^}]+)\}\}`)
	segmentPattern      = regexp.MustCompile(`^([^\[\]]*)((?:\[\d+\])*)$`)
	indexPattern        = regexp.MustCompile(`\[(\d+)\]`)
)

// Scope is the variable source placeholders are looked up in.
type Scope interface {
	Get(name string) (any, bool)
}

// MapScope adapts a plain map to Scope.
type MapScope map[string]any

func (m MapScope) Get(name string) (any, bool) {
	value, ok := m[name]

	return value, ok
}

// Interpolator resolves placeholders. Unresolved placeholders are kept verbatim and logged at debug.
type Interpolator struct {
	logger *slog.Logger
}

func NewInterpolator(logger *slog.Logger) *Interpolator {
	if logger == nil {
		logger = slog.Default()
	}

	return &Interpolator{logger: logger.With("module", "interpolator")}
}

// Resolve returns a new config with every placeholder resolved. The input is not modified.
func (i *Interpolator) Resolve(config map[string]any, scope Scope) map[string]any {
	if config == nil {
		return nil
	}

	resolved := make(map[string]any, len(config))
	for key, value := range config {
		resolved[key] = i.Value(value, scope)
	}

	return resolved
}

// Value resolves a single config value, recursing into maps and slices.
func (i *Interpolator) Value(value any, scope Scope) any {
	switch v := value.(type) {
	case string:
		return i.String(v, scope)
	case map[string]any:
		return i.Resolve(v, scope)
	case []any:
		out := make([]any, len(v))
		for idx, item := range v {
			out[idx] = i.Value(item, scope)
		}

		return out
	default:
		return value
	}
}

// String resolves placeholders in s. A string that is exactly one placeholder resolves to the
// raw typed value; otherwise each placeholder is replaced by its text form.
func (i *Interpolator) String(s string, scope Scope) any {
	if !strings.Contains(s, "{{") {
		return s
	}

	if match := wholePlaceholder.FindStringSubmatch(s); match != nil {
		value, ok := Lookup(scope, match[1])
		if !ok {
			i.miss(match[1])

			return s
		}

		return value
	}

	return embeddedPlaceholder.ReplaceAllStringFunc(s, func(placeholder string) string {
		path := embeddedPlaceholder.FindStringSubmatch(placeholder)[1]

		value, ok := Lookup(scope, path)
		if !ok {
			i.miss(path)

			return placeholder
		}

		return Stringify(value)
	})
}

func (i *Interpolator) miss(path string) {
	i.logger.Debug("Unresolved placeholder left as literal", "path", strings.TrimSpace(path))
}

// Lookup resolves a dotted path such as "user.items[0][1].name" against scope.
func Lookup(scope Scope, path string) (any, bool) {
	path = strings.TrimSpace(path)
	if path == "" || scope == nil {
		return nil, false
	}

	segments := strings.Split(path, ".")

	var (
		current any
		found   bool
	)

	for idx, segment := range segments {
		segment = strings.TrimSpace(segment)

		name, indices := splitSegment(segment)

		if idx == 0 {
			if name == "" {
				return nil, false
			}

			current, found = scope.Get(name)
		} else if name != "" {
			current, found = member(current, name)
		}

		if !found || current == nil && (len(indices) > 0 || idx < len(segments)-1) {
			return nil, false
		}

		for _, index := range indices {
			current, found = element(current, index)
			if !found {
				return nil, false
			}
		}
	}

	if current == nil && !found {
		return nil, false
	}

	return current, true
}

func splitSegment(segment string) (string, []int) {
	match := segmentPattern.FindStringSubmatch(segment)
	if match == nil {
		return segment, nil
	}

	var indices []int

	for _, idx := range indexPattern.FindAllStringSubmatch(match[2], -1) {
		n, err := strconv.Atoi(idx[1])
		if err != nil {
			return segment, nil
		}

		indices = append(indices, n)
	}

	return match[1], indices
}

func member(value any, name string) (any, bool) {
	switch v := value.(type) {
	case nil:
		return nil, false
	case map[string]any:
		found, ok := v[name]

		return found, ok
	case []any:
		n, err := strconv.Atoi(name)
		if err != nil {
			if name == "length" {
				return len(v), true
			}

			return nil, false
		}

		return element(v, n)
	}

	rv := reflect.ValueOf(value)

	switch rv.Kind() {
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return nil, false
		}

		found := rv.MapIndex(reflect.ValueOf(name).Convert(rv.Type().Key()))
		if !found.IsValid() {
			return nil, false
		}

		return found.Interface(), true
	case reflect.Slice, reflect.Array:
		n, err := strconv.Atoi(name)
		if err != nil {
			return nil, false
		}

		return element(value, n)
	default:
		return nil, false
	}
}

func element(value any, index int) (any, bool) {
	if value == nil || index < 0 {
		return nil, false
	}

	if list, ok := value.([]any); ok {
		if index >= len(list) {
			return nil, false
		}

		return list[index], true
	}

	rv := reflect.ValueOf(value)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, false
	}

	if index >= rv.Len() {
		return nil, false
	}

	return rv.Index(index).Interface(), true
}

// Stringify renders a value the way embedded placeholders show it: objects and arrays as
// indented JSON, everything else in its plain text form.
func Stringify(value any) string {
	switch v := value.(type) {
	case nil:
		return "null"
	case string:
		return v
	case bool:
		return strconv.FormatBool(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(v), 'f', -1, 32)
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return fmt.Sprint(v)
	case json.Number:
		return v.String()
	case error:
		return v.Error()
	}

	switch reflect.ValueOf(value).Kind() {
	case reflect.Map, reflect.Slice, reflect.Array, reflect.Struct, reflect.Pointer:
		text, err := MarshalIndent(value)
		if err != nil {
			return fmt.Sprint(value)
		}

		return text
	default:
		return fmt.Sprint(value)
	}
}

// MarshalIndent encodes value as two-space indented JSON without HTML escaping.
func MarshalIndent(value any) (string, error) {
	var buf bytes.Buffer

	encoder := json.NewEncoder(&buf)
	encoder.SetEscapeHTML(false)
	encoder.SetIndent("", "  ")

	if err := encoder.Encode(value); err != nil {
		return "", err
	}

	return strings.TrimSuffix(buf.String(), "\n"), nil
}
