package log

import (
	"context"
	"testing"

	"github.com/forgeflow/forgeflow/pkg/models"
	"github.com/forgeflow/forgeflow/pkg/protocol"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type captured struct {
	level   models.LogLevel
	message string
}

func TestLogNode_Handle(t *testing.T) {
	tests := []struct {
		name      string
		data      map[string]any
		wantLevel models.LogLevel
	}{
		{"default level", map[string]any{"message": "hello"}, models.LogLevelInfo},
		{"warn", map[string]any{"message": "hello", "level": "warn"}, models.LogLevelWarn},
		{"error", map[string]any{"message": "hello", "level": "error"}, models.LogLevelError},
		{"unknown level", map[string]any{"message": "hello", "level": "loud"}, models.LogLevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var lines []captured

			out, err := NewLogNode(nil).Handle(context.Background(), protocol.Input{
				NodeID: "log",
				Data:   tt.data,
				Log: func(level models.LogLevel, message string) {
					lines = append(lines, captured{level, message})
				},
			})
			require.NoError(t, err)

			require.Len(t, lines, 1)
			assert.Equal(t, tt.wantLevel, lines[0].level)
			assert.Equal(t, "hello", lines[0].message)

			output := out.(map[string]any)
			assert.Equal(t, true, output["logged"])
			assert.Equal(t, "hello", output["message"])
		})
	}
}

func TestNotificationNode_Handle(t *testing.T) {
	var lines []captured

	node := NewNotificationNode(models.NodeTypeOutputNotification, nil)

	out, err := node.Handle(context.Background(), protocol.Input{
		Data: map[string]any{"title": "Done", "message": "All good"},
		Log: func(level models.LogLevel, message string) {
			lines = append(lines, captured{level, message})
		},
	})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"notified": true}, out)
	assert.Equal(t, "Notification: Done", lines[0].message)
	assert.Equal(t, models.LogLevelSuccess, lines[len(lines)-1].level)
	assert.Equal(t, models.NodeTypeOutputNotification, node.Type())
	assert.Equal(t, "Final Notification", node.Name())
}
