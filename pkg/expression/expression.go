// Package expression evaluates condition expressions in a sandboxed grammar.
//
// Expressions use HCL native syntax: literals, variable references with attribute and index
// access, arithmetic, comparison, boolean operators, the conditional operator and a small set
// of pure functions. Nothing in an expression can reach the host process.
package expression

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"regexp"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/function"
	"github.com/zclconf/go-cty/cty/function/stdlib"
)

var (
	ErrEmptyExpression = errors.New("empty expression")
	ErrParse           = errors.New("expression parse error")
	ErrEval            = errors.New("expression evaluation error")
)

var identifierPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_-]*$`)

var functions = map[string]function.Function{
	"abs":      stdlib.AbsoluteFunc,
	"ceil":     stdlib.CeilFunc,
	"contains": stdlib.ContainsFunc,
	"floor":    stdlib.FloorFunc,
	"length":   stdlib.LengthFunc,
	"lower":    stdlib.LowerFunc,
	"max":      stdlib.MaxFunc,
	"min":      stdlib.MinFunc,
	"strlen":   stdlib.StrlenFunc,
	"trim":     stdlib.TrimSpaceFunc,
	"upper":    stdlib.UpperFunc,
}

// Expression is a parsed expression ready for evaluation.
type Expression struct {
	source string
	expr   hclsyntax.Expression
}

// Compile parses src. JavaScript style operators (===, !==) and single-quoted strings are
// accepted and rewritten to their native equivalents.
func Compile(src string) (*Expression, error) {
	normalized := Normalize(src)
	if strings.TrimSpace(normalized) == "" {
		return nil, ErrEmptyExpression
	}

	expr, diags := hclsyntax.ParseExpression([]byte(normalized), "condition", hcl.Pos{Line: 1, Column: 1, Byte: 0})
	if diags.HasErrors() {
		return nil, fmt.Errorf("%w: %s", ErrParse, diags.Error())
	}

	return &Expression{source: src, expr: expr}, nil
}

// Source returns the expression text as given to Compile.
func (e *Expression) Source() string {
	return e.source
}

// Variables returns the root names the expression references.
func (e *Expression) Variables() []string {
	seen := make(map[string]struct{})

	var names []string

	for _, traversal := range e.expr.Variables() {
		name := traversal.RootName()
		if _, ok := seen[name]; ok {
			continue
		}

		seen[name] = struct{}{}
		names = append(names, name)
	}

	return names
}

// Eval evaluates the expression with vars as the variable scope. Only variables the expression
// references are converted.
func (e *Expression) Eval(vars map[string]any) (any, error) {
	ctx := &hcl.EvalContext{
		Variables: make(map[string]cty.Value),
		Functions: functions,
	}

	for _, name := range e.Variables() {
		value, ok := vars[name]
		if !ok || !identifierPattern.MatchString(name) {
			continue
		}

		converted, err := ToCty(value)
		if err != nil {
			return nil, fmt.Errorf("%w: variable %q: %w", ErrEval, name, err)
		}

		ctx.Variables[name] = converted
	}

	value, diags := e.expr.Value(ctx)
	if diags.HasErrors() {
		return nil, fmt.Errorf("%w: %s", ErrEval, diags.Error())
	}

	return FromCty(value)
}

// Eval compiles and evaluates src in one step.
func Eval(src string, vars map[string]any) (any, error) {
	expr, err := Compile(src)
	if err != nil {
		return nil, err
	}

	return expr.Eval(vars)
}

// EvalBool evaluates src and coerces the result with Truthy.
func EvalBool(src string, vars map[string]any) (bool, error) {
	value, err := Eval(src, vars)
	if err != nil {
		return false, err
	}

	return Truthy(value), nil
}

// Truthy coerces a value to a boolean: nil, false, zero, NaN and the empty string are false;
// everything else is true.
func Truthy(value any) bool {
	switch v := value.(type) {
	case nil:
		return false
	case bool:
		return v
	case string:
		return v != ""
	case float64:
		return v != 0 && !math.IsNaN(v)
	case float32:
		return v != 0 && !math.IsNaN(float64(v))
	case int:
		return v != 0
	case int64:
		return v != 0
	case int32:
		return v != 0
	case json.Number:
		f, err := v.Float64()

		return err == nil && f != 0
	default:
		return true
	}
}

// Normalize rewrites JavaScript style equality operators and single-quoted string literals.
func Normalize(src string) string {
	var b strings.Builder

	b.Grow(len(src))

	runes := []rune(src)

	var quote rune

	for i := 0; i < len(runes); i++ {
		r := runes[i]

		switch {
		case quote != 0:
			switch {
			case r == '\\' && i+1 < len(runes):
				b.WriteRune(r)
				i++
				b.WriteRune(runes[i])
			case r == quote:
				quote = 0

				b.WriteRune('"')
			case r == '"' && quote == '\'':
				b.WriteString(`\"`)
			default:
				b.WriteRune(r)
			}
		case r == '"' || r == '\'':
			quote = r

			b.WriteRune('"')
		case (r == '=' || r == '!') && i+2 < len(runes) && runes[i+1] == '=' && runes[i+2] == '=':
			b.WriteRune(r)
			b.WriteRune('=')

			i += 2
		default:
			b.WriteRune(r)
		}
	}

	return b.String()
}
