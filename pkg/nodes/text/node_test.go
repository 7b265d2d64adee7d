package text

import (
	"context"
	"regexp"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/forgeflow/forgeflow/pkg/protocol"
	"github.com/forgeflow/forgeflow/pkg/variables"
)

func TestStringNode_Handle(t *testing.T) {
	tests := []struct {
		name string
		data map[string]any
		want any
	}{
		{"lower", map[string]any{"text": "HeLLo"}, "hello"},
		{"upper", map[string]any{"text": "hello", "mode": "upper"}, "HELLO"},
		{"title", map[string]any{"text": "hello big world", "mode": "title"}, "Hello Big World"},
		{"camel", map[string]any{"text": "Hello big_world-now", "mode": "camel"}, "helloBigWorldNow"},
		{"snake", map[string]any{"text": "helloBigWorld now", "mode": "snake"}, "hello_big_world_now"},
		{"kebab", map[string]any{"text": "HelloBig_world now", "mode": "kebab"}, "hello-big-world-now"},
		{"trim", map[string]any{"text": "  x  ", "mode": "trim"}, "x"},
		{"pad start", map[string]any{"text": "7", "mode": "padStart", "length": 3, "char": "0"}, "007"},
		{"pad end default", map[string]any{"text": "ab", "mode": "padEnd"}, "ab        "},
		{"split default", map[string]any{"text": "a,b,c", "mode": "split"}, []any{"a", "b", "c"}},
		{"split newline", map[string]any{"text": "a\nb", "mode": "split", "delimiter": `\n`}, []any{"a", "b"}},
		{"replace", map[string]any{"text": "a1b22c", "mode": "replace", "delimiter": `\d+`, "replacement": "-"}, "a-b-c"},
		{"substring", map[string]any{"text": "abcdef", "mode": "substring", "start": 2, "length": 3}, "cde"},
		{"substring to end", map[string]any{"text": "abcdef", "mode": "substring", "start": "4"}, "ef"},
		{"unknown mode", map[string]any{"text": "Same", "mode": "rot13"}, "Same"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := NewStringNode().Handle(context.Background(), protocol.Input{Data: tt.data})
			require.NoError(t, err)
			assert.Equal(t, tt.want, out)
		})
	}
}

func TestStringNode_DefaultsToLastOutput(t *testing.T) {
	store := variables.New(nil)
	store.RecordOutput("prev", "FROM PREVIOUS")

	out, err := NewStringNode().Handle(context.Background(), protocol.Input{
		Data:      map[string]any{},
		Variables: store,
	})
	require.NoError(t, err)
	assert.Equal(t, "from previous", out)
}

func TestGenerateNode_Handle(t *testing.T) {
	out, err := NewGenerateNode().Handle(context.Background(), protocol.Input{Data: map[string]any{}})
	require.NoError(t, err)

	_, err = uuid.Parse(out.(string))
	require.NoError(t, err)

	for range 50 {
		out, err = NewGenerateNode().Handle(context.Background(), protocol.Input{
			Data: map[string]any{"mode": "number", "min": 5, "max": 7},
		})
		require.NoError(t, err)
		assert.GreaterOrEqual(t, out.(int), 5)
		assert.LessOrEqual(t, out.(int), 7)
	}

	out, err = NewGenerateNode().Handle(context.Background(), protocol.Input{
		Data: map[string]any{"mode": "string", "length": 12},
	})
	require.NoError(t, err)
	assert.Regexp(t, regexp.MustCompile(`^[A-Za-z0-9]{12}$`), out)

	_, err = NewGenerateNode().Handle(context.Background(), protocol.Input{
		Data: map[string]any{"mode": "number", "min": 10, "max": 1},
	})
	require.Error(t, err)
}
