package trigger

import (
	"context"
	"testing"

	"github.com/forgeflow/forgeflow/pkg/models"
	"github.com/forgeflow/forgeflow/pkg/protocol"
	"github.com/forgeflow/forgeflow/pkg/variables"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTriggerNodes_Output(t *testing.T) {
	tests := []struct {
		name    string
		handler protocol.NodeHandler
		data    map[string]any
		want    map[string]any
	}{
		{
			name:    "manual",
			handler: NewManualTriggerNode(),
			want:    map[string]any{"triggered": true},
		},
		{
			name:    "schedule",
			handler: NewScheduleTriggerNode(),
			data:    map[string]any{"cron": "* * * * *"},
			want:    map[string]any{"triggered": true, "cron": "* * * * *"},
		},
		{
			name:    "webhook",
			handler: NewWebhookTriggerNode(),
			data:    map[string]any{"method": "POST", "path": "/orders"},
			want:    map[string]any{"triggered": true, "method": "POST", "path": "/orders"},
		},
		{
			name:    "file watch",
			handler: NewFileWatchTriggerNode(),
			data:    map[string]any{"path": "/tmp", "events": "create"},
			want:    map[string]any{"triggered": true, "path": "/tmp", "events": "create", "event": "create"},
		},
		{
			name:    "queue",
			handler: NewQueueTriggerNode(),
			data:    map[string]any{"queue": "jobs"},
			want:    map[string]any{"triggered": true, "queue": "jobs", "message": nil},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := tt.handler.Handle(context.Background(), protocol.Input{
				NodeID:    "t",
				NodeType:  tt.handler.Type(),
				Data:      tt.data,
				Variables: variables.New(nil),
			})
			require.NoError(t, err)

			output, ok := out.(map[string]any)
			require.True(t, ok)
			assert.NotZero(t, output["timestamp"])

			for key, value := range tt.want {
				assert.Equal(t, value, output[key], key)
			}
		})
	}
}

func TestTriggerNode_Payload(t *testing.T) {
	store := variables.New(map[string]any{
		PayloadVariable: map[string]any{"event": "modify", "file": "/tmp/a.txt"},
	})

	var lines []string

	out, err := NewFileWatchTriggerNode().Handle(context.Background(), protocol.Input{
		NodeID:    "watch",
		Data:      map[string]any{"path": "/tmp", "events": "all"},
		Variables: store,
		Log: func(_ models.LogLevel, message string) {
			lines = append(lines, message)
		},
	})
	require.NoError(t, err)

	output := out.(map[string]any)
	assert.Equal(t, "modify", output["event"])
	assert.Equal(t, map[string]any{"event": "modify", "file": "/tmp/a.txt"}, output["payload"])
	assert.Equal(t, []string{"Watching: /tmp (all)"}, lines)
}

func TestTriggerNode_QueueMessage(t *testing.T) {
	tests := []struct {
		name    string
		payload map[string]any
		want    any
	}{
		{
			name:    "text message",
			payload: map[string]any{"message": "hello", "queue": "jobs"},
			want:    "hello",
		},
		{
			name:    "object message",
			payload: map[string]any{"id": 7.0, "queue": "jobs"},
			want:    map[string]any{"id": 7.0, "queue": "jobs"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := NewQueueTriggerNode().Handle(context.Background(), protocol.Input{
				NodeID:    "queue",
				Data:      map[string]any{"queue": "jobs"},
				Variables: variables.New(map[string]any{PayloadVariable: tt.payload}),
			})
			require.NoError(t, err)

			output := out.(map[string]any)
			assert.Equal(t, tt.want, output["message"])
			assert.Equal(t, "jobs", output["queue"])
			assert.Equal(t, tt.payload, output["payload"])
		})
	}
}

func TestTriggerNode_Metadata(t *testing.T) {
	handler := NewScheduleTriggerNode()

	assert.Equal(t, models.NodeTypeTriggerSchedule, handler.Type())
	assert.Equal(t, "Schedule", handler.Name())
	assert.NotEmpty(t, handler.Description())
	assert.Equal(t, []string{"cron"}, handler.Schema()["required"])
}
