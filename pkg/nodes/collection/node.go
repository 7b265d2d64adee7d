// Package collection provides the array and object field nodes.
package collection

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"slices"
	"strings"

	"github.com/forgeflow/forgeflow/pkg/models"
	"github.com/forgeflow/forgeflow/pkg/nodes/nodeconfig"
	"github.com/forgeflow/forgeflow/pkg/protocol"
	"github.com/forgeflow/forgeflow/pkg/template"
	"github.com/forgeflow/forgeflow/pkg/variables"
)

const (
	DefaultSeparator = ", "

	FieldModeGet = "get"
	FieldModeSet = "set"
)

var indexedSegment = regexp.MustCompile(`^(\w+)\[(\d+)\]$`)

func lastOutput(in protocol.Input) any {
	if in.Variables == nil {
		return nil
	}

	value, _ := in.Variables.Get(variables.AliasOutput)

	return value
}

// ArrayNode applies a list operation to the array config, falling back to the last node output.
type ArrayNode struct{}

func NewArrayNode() *ArrayNode {
	return &ArrayNode{}
}

func (n *ArrayNode) Handle(_ context.Context, in protocol.Input) (any, error) {
	input := in.Data["array"]
	if input == nil || input == "" {
		input = lastOutput(in)
	}

	arr := nodeconfig.List(input)
	if arr == nil {
		arr = []any{}
	}

	mode := nodeconfig.String(in.Data, "mode", "length")
	field := nodeconfig.String(in.Data, "field", "")

	in.Logf(models.LogLevelInfo, fmt.Sprintf("Array: %s (%d items)", mode, len(arr)))

	switch mode {
	case "length":
		return len(arr), nil
	case "push":
		return append(slices.Clone(arr), nodeconfig.JSONValue(in.Data["item"])), nil
	case "slice":
		return sliceOf(arr, nodeconfig.Int(in.Data, "start", 0), in.Data["end"]), nil
	case "join":
		separator := nodeconfig.Unescape(nodeconfig.String(in.Data, "separator", DefaultSeparator))
		parts := make([]string, len(arr))

		for i, item := range arr {
			parts[i] = compactString(item)
		}

		return strings.Join(parts, separator), nil
	case "map":
		out := make([]any, len(arr))
		for i, item := range arr {
			out[i] = fieldValue(item, field)
		}

		return out, nil
	case "sort":
		return sorted(arr, field, nodeconfig.String(in.Data, "order", "asc") == "desc"), nil
	case "reverse":
		out := slices.Clone(arr)
		slices.Reverse(out)

		return out, nil
	case "unique":
		return unique(arr, field), nil
	case "flatten":
		return flatten(arr), nil
	case "first":
		if len(arr) == 0 {
			return nil, nil
		}

		return arr[0], nil
	case "last":
		if len(arr) == 0 {
			return nil, nil
		}

		return arr[len(arr)-1], nil
	default:
		return arr, nil
	}
}

// sliceOf follows JavaScript Array.prototype.slice index rules.
func sliceOf(arr []any, start int, endValue any) []any {
	size := len(arr)
	end := size

	if n, ok := nodeconfig.ParseInt(endValue); ok {
		end = n
	}

	clamp := func(i int) int {
		if i < 0 {
			i += size
		}

		return min(max(i, 0), size)
	}

	start, end = clamp(start), clamp(end)
	if start >= end {
		return []any{}
	}

	return slices.Clone(arr[start:end])
}

// compactString renders objects and lists as compact JSON and everything else as text.
func compactString(value any) string {
	switch value.(type) {
	case map[string]any, []any:
		data, err := json.Marshal(value)
		if err != nil {
			return template.Stringify(value)
		}

		return string(data)
	default:
		return template.Stringify(value)
	}
}

func fieldValue(item any, field string) any {
	if field == "" {
		return item
	}

	value := item

	for _, part := range strings.Split(field, ".") {
		object, ok := value.(map[string]any)
		if !ok {
			return nil
		}

		value = object[part]
	}

	return value
}

func sorted(arr []any, field string, desc bool) []any {
	out := slices.Clone(arr)

	slices.SortStableFunc(out, func(a, b any) int {
		return compare(fieldValue(a, field), fieldValue(b, field))
	})

	if desc {
		slices.Reverse(out)
	}

	return out
}

// compare orders nil last, numbers numerically and everything else as case-insensitive text.
func compare(a, b any) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return 1
	case b == nil:
		return -1
	}

	fa, aNum := a.(float64)
	fb, bNum := b.(float64)

	if aNum && bNum {
		switch {
		case fa < fb:
			return -1
		case fa > fb:
			return 1
		default:
			return 0
		}
	}

	return strings.Compare(strings.ToLower(compactString(a)), strings.ToLower(compactString(b)))
}

func unique(arr []any, field string) []any {
	seen := make(map[string]struct{}, len(arr))
	out := make([]any, 0, len(arr))

	for _, item := range arr {
		value := fieldValue(item, field)

		key, err := json.Marshal(value)
		if err != nil {
			key = []byte(fmt.Sprint(value))
		}

		if _, ok := seen[string(key)]; ok {
			continue
		}

		seen[string(key)] = struct{}{}
		out = append(out, item)
	}

	return out
}

func flatten(arr []any) []any {
	out := make([]any, 0, len(arr))

	for _, item := range arr {
		if nested, ok := item.([]any); ok {
			out = append(out, flatten(nested)...)
		} else {
			out = append(out, item)
		}
	}

	return out
}

// FieldNode reads or writes a dotted path on the last node output.
type FieldNode struct{}

func NewFieldNode() *FieldNode {
	return &FieldNode{}
}

func (n *FieldNode) Handle(_ context.Context, in protocol.Input) (any, error) {
	mode := nodeconfig.String(in.Data, "mode", FieldModeGet)
	path := nodeconfig.String(in.Data, "path", "")

	in.Logf(models.LogLevelInfo, fmt.Sprintf("Field: %s %s", mode, path))

	if mode == FieldModeGet {
		object := lastOutput(in)

		switch object.(type) {
		case map[string]any, []any:
		default:
			in.Logf(models.LogLevelWarn, "No object in output")

			return nil, nil
		}

		return getPath(object, path), nil
	}

	root, ok := deepCopy(lastOutput(in)).(map[string]any)
	if !ok {
		root = map[string]any{}
	}

	parts := strings.Split(path, ".")
	current := root

	for _, part := range parts[:len(parts)-1] {
		next, ok := current[part].(map[string]any)
		if !ok {
			next = map[string]any{}
			current[part] = next
		}

		current = next
	}

	current[parts[len(parts)-1]] = nodeconfig.JSONValue(in.Data["value"])

	return root, nil
}

func getPath(value any, path string) any {
	for _, part := range strings.Split(path, ".") {
		if value == nil {
			return nil
		}

		object, ok := value.(map[string]any)
		if !ok {
			return nil
		}

		if m := indexedSegment.FindStringSubmatch(part); m != nil {
			list, ok := object[m[1]].([]any)
			if !ok {
				return nil
			}

			index, _ := nodeconfig.ParseInt(m[2])
			if index >= len(list) {
				return nil
			}

			value = list[index]

			continue
		}

		value = object[part]
	}

	return value
}

// deepCopy clones JSON-shaped values so the stored output is never mutated.
func deepCopy(value any) any {
	switch v := value.(type) {
	case map[string]any:
		out := make(map[string]any, len(v))
		for k, item := range v {
			out[k] = deepCopy(item)
		}

		return out
	case []any:
		out := make([]any, len(v))
		for i, item := range v {
			out[i] = deepCopy(item)
		}

		return out
	default:
		return v
	}
}
