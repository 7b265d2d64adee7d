// Package transform provides the nodes that reshape data: JSON codecs, templates, regular
// expressions and arithmetic.
package transform

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"regexp"

	"github.com/forgeflow/forgeflow/pkg/models"
	"github.com/forgeflow/forgeflow/pkg/nodes/nodeconfig"
	"github.com/forgeflow/forgeflow/pkg/protocol"
	"github.com/forgeflow/forgeflow/pkg/template"
)

const (
	RegexModeMatch    = "match"
	RegexModeMatchAll = "matchAll"
	RegexModeReplace  = "replace"
	RegexModeTest     = "test"

	TemplateEngineGo = "go"
)

var ErrDivisionByZero = errors.New("division by zero")

// JSONParseNode decodes the json config string.
type JSONParseNode struct{}

func NewJSONParseNode() *JSONParseNode {
	return &JSONParseNode{}
}

func (n *JSONParseNode) Handle(_ context.Context, in protocol.Input) (any, error) {
	raw, ok := in.Data["json"]
	if !ok || raw == nil {
		return nil, errors.New("json is required")
	}

	text, ok := raw.(string)
	if !ok {
		// Already structured after interpolation.
		return raw, nil
	}

	var parsed any
	if err := json.Unmarshal([]byte(text), &parsed); err != nil {
		return nil, fmt.Errorf("invalid JSON: %w", err)
	}

	in.Logf(models.LogLevelInfo, "Parsed JSON")

	return parsed, nil
}

// JSONStringifyNode encodes the object config as indented JSON.
type JSONStringifyNode struct{}

func NewJSONStringifyNode() *JSONStringifyNode {
	return &JSONStringifyNode{}
}

func (n *JSONStringifyNode) Handle(_ context.Context, in protocol.Input) (any, error) {
	text, err := template.MarshalIndent(nodeconfig.JSONValue(in.Data["object"]))
	if err != nil {
		return nil, fmt.Errorf("failed to stringify: %w", err)
	}

	in.Logf(models.LogLevelInfo, "Stringified JSON")

	return text, nil
}

// TemplateNode returns its template. Placeholders are resolved before dispatch; the go engine
// additionally renders the result as a text/template over the run variables.
type TemplateNode struct{}

func NewTemplateNode() *TemplateNode {
	return &TemplateNode{}
}

func (n *TemplateNode) Handle(_ context.Context, in protocol.Input) (any, error) {
	text := nodeconfig.String(in.Data, "template", "")

	if nodeconfig.String(in.Data, "engine", "") == TemplateEngineGo {
		var data map[string]any
		if in.Variables != nil {
			data = in.Variables.Snapshot()
		}

		rendered, err := template.Render(text, data)
		if err != nil {
			return nil, err
		}

		text = rendered
	}

	in.Logf(models.LogLevelInfo, "Rendered template: "+nodeconfig.Truncate(text, 50))

	return text, nil
}

// RegexNode applies a regular expression to the text config.
type RegexNode struct{}

func NewRegexNode() *RegexNode {
	return &RegexNode{}
}

func (n *RegexNode) Handle(_ context.Context, in protocol.Input) (any, error) {
	pattern := nodeconfig.String(in.Data, "pattern", "")
	input := nodeconfig.String(in.Data, "text", "")
	mode := nodeconfig.String(in.Data, "mode", RegexModeMatch)

	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("invalid pattern: %w", err)
	}

	in.Logf(models.LogLevelInfo, fmt.Sprintf("Regex %s: /%s/", mode, pattern))

	switch mode {
	case RegexModeMatch:
		match := re.FindStringIndex(input)
		if match == nil {
			return nil, nil
		}

		return input[match[0]:match[1]], nil
	case RegexModeMatchAll:
		matches := re.FindAllString(input, -1)
		if matches == nil {
			return []any{}, nil
		}

		return toAny(matches), nil
	case RegexModeReplace:
		return re.ReplaceAllString(input, nodeconfig.String(in.Data, "replacement", "")), nil
	case RegexModeTest:
		return re.MatchString(input), nil
	default:
		return nil, nil
	}
}

func toAny(values []string) []any {
	out := make([]any, len(values))
	for i, v := range values {
		out[i] = v
	}

	return out
}

// MathNode applies operation to the numeric operands a and b.
type MathNode struct{}

func NewMathNode() *MathNode {
	return &MathNode{}
}

func (n *MathNode) Handle(_ context.Context, in protocol.Input) (any, error) {
	operation := nodeconfig.String(in.Data, "operation", "add")

	a, ok := nodeconfig.Float(in.Data, "a")
	if !ok {
		return nil, fmt.Errorf("invalid number for a: %v", in.Data["a"])
	}

	b, ok := nodeconfig.Float(in.Data, "b")
	if !ok && binary(operation) {
		return nil, fmt.Errorf("invalid number for b: %v", in.Data["b"])
	}

	var result float64

	switch operation {
	case "add":
		result = a + b
	case "subtract":
		result = a - b
	case "multiply":
		result = a * b
	case "divide":
		if b == 0 {
			return nil, ErrDivisionByZero
		}

		result = a / b
	case "modulo":
		if b == 0 {
			return nil, ErrDivisionByZero
		}

		result = math.Mod(a, b)
	case "power":
		result = math.Pow(a, b)
	case "round":
		result = math.Floor(a + 0.5)
	case "floor":
		result = math.Floor(a)
	case "ceil":
		result = math.Ceil(a)
	case "abs":
		result = math.Abs(a)
	default:
		result = a
	}

	in.Logf(models.LogLevelInfo, fmt.Sprintf("Math %s = %v", operation, result))

	return result, nil
}

func binary(operation string) bool {
	switch operation {
	case "round", "floor", "ceil", "abs":
		return false
	default:
		return true
	}
}
