package switchnode

import (
	"context"
	"testing"

	"github.com/forgeflow/forgeflow/pkg/protocol"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSwitchNode_Handle(t *testing.T) {
	cases := []any{
		map[string]any{"value": "active", "output_port": "case1"},
		map[string]any{"value": "blocked", "output_port": "case2"},
	}

	tests := []struct {
		name string
		data map[string]any
		want string
	}{
		{"value names branch", map[string]any{"value": "case2"}, "case2"},
		{"empty value", map[string]any{"value": ""}, "default"},
		{"missing value", map[string]any{}, "default"},
		{"number value", map[string]any{"value": 3.0}, "3"},
		{"matching case", map[string]any{"value": "blocked", "cases": cases}, "case2"},
		{"unmatched case", map[string]any{"value": "other", "cases": cases}, "default"},
		{"cases as json", map[string]any{"value": "a", "cases": `[{"value":"a","output_port":"x"}]`}, "x"},
		{"port defaults to value", map[string]any{"value": "a", "cases": []any{map[string]any{"value": "a"}}}, "a"},
	}

	node := NewSwitchNode()

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := node.Handle(context.Background(), protocol.Input{Data: tt.data})
			require.NoError(t, err)
			assert.Equal(t, tt.want, out)
		})
	}
}

func TestSwitchNode_InvalidCases(t *testing.T) {
	node := NewSwitchNode()

	_, err := node.Handle(context.Background(), protocol.Input{Data: map[string]any{"value": "a", "cases": "nope"}})
	require.Error(t, err)

	_, err = node.Handle(context.Background(), protocol.Input{Data: map[string]any{"value": "a", "cases": []any{"x"}}})
	require.Error(t, err)
}
