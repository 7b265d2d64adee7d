package loop

import (
	"context"
	"testing"

	"github.com/forgeflow/forgeflow/pkg/protocol"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestForEachNode_Handle(t *testing.T) {
	tests := []struct {
		name string
		data map[string]any
		want map[string]any
	}{
		{
			name: "list",
			data: map[string]any{"array": []any{"a", "b"}},
			want: map[string]any{"items": []any{"a", "b"}, "itemVar": "item", "indexVar": "index", "count": 2},
		},
		{
			name: "json string with custom names",
			data: map[string]any{"array": `[1, 2, 3]`, "itemVar": "row", "indexVar": "n"},
			want: map[string]any{"items": []any{1.0, 2.0, 3.0}, "itemVar": "row", "indexVar": "n", "count": 3},
		},
		{
			name: "not an array",
			data: map[string]any{"array": "nope"},
			want: map[string]any{"items": []any{}, "itemVar": "item", "indexVar": "index", "count": 0},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := NewForEachNode().Handle(context.Background(), protocol.Input{Data: tt.data})
			require.NoError(t, err)
			assert.Equal(t, tt.want, out)
		})
	}
}

func TestRepeatNode_Handle(t *testing.T) {
	out, err := NewRepeatNode().Handle(context.Background(), protocol.Input{Data: map[string]any{}})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"count": 1, "indexVar": "i"}, out)

	out, err = NewRepeatNode().Handle(context.Background(), protocol.Input{Data: map[string]any{"count": "5"}})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"count": 5, "indexVar": "i"}, out)
}

func TestWhileNode_Handle(t *testing.T) {
	out, err := NewWhileNode().Handle(context.Background(), protocol.Input{
		Data: map[string]any{"condition": "x < 3"},
	})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"condition": "x < 3", "maxIterations": 100}, out)
}
