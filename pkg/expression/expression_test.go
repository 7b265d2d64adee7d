package expression

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEval(t *testing.T) {
	vars := map[string]any{
		"output": 10.0,
		"user":   map[string]any{"name": "Ada", "roles": []any{"admin", "dev"}},
		"count":  3,
		"flag":   true,
		"none":   nil,
	}

	tests := []struct {
		name string
		src  string
		want any
	}{
		{"interpolated comparison", "10 > 5", true},
		{"variable comparison", "output > 5", true},
		{"arithmetic", "output * 2 + 1", 21.0},
		{"string equality", `user.name == "Ada"`, true},
		{"strict equality is accepted", `user.name === "Ada"`, true},
		{"strict inequality is accepted", `user.name !== "Ada"`, false},
		{"single quoted strings", `user.name == 'Ada'`, true},
		{"index access", `user.roles[1] == "dev"`, true},
		{"boolean logic", "flag && count >= 3 || false", true},
		{"negation", "!flag", false},
		{"conditional operator", `count > 2 ? "many" : "few"`, "many"},
		{"function", `length(user.roles) == 2 && upper(user.name) == "ADA"`, true},
		{"contains", `contains(user.roles, "admin")`, true},
		{"null check", "none == null", true},
		{"literal", "false", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Eval(tt.src, vars)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEval_Errors(t *testing.T) {
	tests := []struct {
		name    string
		src     string
		wantErr error
	}{
		{"empty", "   ", ErrEmptyExpression},
		{"syntax", "10 >", ErrParse},
		{"unknown variable", "missing > 1", ErrEval},
		{"unknown function", `exec("rm -rf /")`, ErrEval},
		{"type mismatch", `"a" > 1`, ErrEval},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Eval(tt.src, map[string]any{})
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestEvalBool(t *testing.T) {
	ok, err := EvalBool("output > 5", map[string]any{"output": 10})
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = EvalBool(`""`, nil)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCompile_Variables(t *testing.T) {
	expr, err := Compile("a.b > c[0] && a.x")
	require.NoError(t, err)

	assert.Equal(t, []string{"a", "c"}, expr.Variables())
	assert.Equal(t, "a.b > c[0] && a.x", expr.Source())
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"a === b", "a == b"},
		{"a !== b", "a != b"},
		{"a == b", "a == b"},
		{"'it\"s'", `"it\"s"`},
		{`"keep === inside"`, `"keep === inside"`},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.in))
		})
	}
}

func TestTruthy(t *testing.T) {
	tests := []struct {
		name  string
		value any
		want  bool
	}{
		{"nil", nil, false},
		{"true", true, true},
		{"false", false, false},
		{"empty string", "", false},
		{"string", "no", true},
		{"zero", 0.0, false},
		{"number", 2.5, true},
		{"int zero", 0, false},
		{"empty slice", []any{}, true},
		{"map", map[string]any{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Truthy(tt.value))
		})
	}
}

func TestToCtyRoundTrip(t *testing.T) {
	in := map[string]any{"list": []any{1.0, "two", false}, "nested": map[string]any{"k": nil}}

	value, err := ToCty(in)
	require.NoError(t, err)

	out, err := FromCty(value)
	require.NoError(t, err)
	assert.Equal(t, in, out)
}
