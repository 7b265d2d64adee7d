package flowfile_test

import (
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/forgeflow/forgeflow/pkg/flowfile"
	"github.com/forgeflow/forgeflow/pkg/models"
	"github.com/forgeflow/forgeflow/pkg/registry"
)

const jsonFlow = `{
  "name": "Greeter",
  "variables": {"who": "Ada"},
  "graph": {
    "nodes": [
      {"id": "start", "type": "trigger_manual"},
      {"id": "wait", "type": "action_delay", "config": {"duration": 5}},
      {"id": "say", "type": "action_log", "config": {"message": "Hello {{who}}"}}
    ],
    "edges": [
      {"id": "e1", "source": "start", "target": "wait"},
      {"id": "e2", "source": "wait", "target": "say"}
    ]
  }
}`

const yamlFlow = `
name: Greeter
variables:
  who: Ada
graph:
  nodes:
    - id: start
      type: trigger_manual
    - id: check
      type: condition_if
      config:
        condition: "who == \"Ada\""
    - id: yes
      type: action_log
      config:
        message: yes
  edges:
    - source: start
      target: check
    - source: check
      target: "yes"
      source_handle: "true"
`

func newValidator(t *testing.T) *flowfile.Validator {
	t.Helper()

	reg := registry.NewRegistry(slog.New(slog.DiscardHandler))
	require.NoError(t, reg.RegisterDefaultNodes())

	return flowfile.NewValidator(nil, reg)
}

func TestParse(t *testing.T) {
	t.Parallel()

	t.Run("json", func(t *testing.T) {
		flow, err := flowfile.Parse([]byte(jsonFlow), flowfile.FormatJSON)
		require.NoError(t, err)

		assert.Equal(t, "Greeter", flow.Name)
		assert.Equal(t, "Ada", flow.Variables["who"])
		require.Len(t, flow.Graph.Nodes, 3)
		assert.Equal(t, models.NodeTypeActionDelay, flow.Graph.Nodes[1].Type)
		assert.InDelta(t, 5.0, flow.Graph.Nodes[1].Config["duration"], 0)
	})

	t.Run("yaml", func(t *testing.T) {
		flow, err := flowfile.Parse([]byte(yamlFlow), flowfile.FormatYAML)
		require.NoError(t, err)

		require.Len(t, flow.Graph.Edges, 2)
		assert.Equal(t, "true", flow.Graph.Edges[1].SourceHandle)
		assert.Equal(t, "yes", flow.Graph.Edges[1].Target)
	})

	t.Run("schema violations", func(t *testing.T) {
		_, err := flowfile.Parse([]byte(`{"graph": {"nodes": [{"id": "a"}]}}`), flowfile.FormatJSON)
		assert.ErrorIs(t, err, flowfile.ErrSchema)
	})

	t.Run("malformed yaml", func(t *testing.T) {
		_, err := flowfile.Parse([]byte("name: [unclosed"), flowfile.FormatYAML)
		assert.Error(t, err)
	})
}

func TestLoad(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	path := filepath.Join(dir, "greeter.yml")
	require.NoError(t, os.WriteFile(path, []byte(yamlFlow), 0o600))

	flow, err := flowfile.Load(path)
	require.NoError(t, err)
	assert.Equal(t, "Greeter", flow.Name)

	_, err = flowfile.Load(filepath.Join(dir, "greeter.toml"))
	assert.ErrorIs(t, err, flowfile.ErrUnsupportedFormat)

	_, err = flowfile.Load(filepath.Join(dir, "missing.json"))
	assert.Error(t, err)
}

func TestValidator(t *testing.T) {
	t.Parallel()

	v := newValidator(t)

	t.Run("valid flow", func(t *testing.T) {
		flow, err := flowfile.Parse([]byte(jsonFlow), flowfile.FormatJSON)
		require.NoError(t, err)

		assert.Empty(t, v.Check(flow))
		assert.NoError(t, v.Validate(flow))
	})

	tests := []struct {
		name    string
		flow    models.Flow
		wantErr error
		warning bool
	}{
		{
			name: "unknown node type",
			flow: models.Flow{Name: "x", Graph: models.Graph{Nodes: []models.Node{{ID: "a", Type: "action_teleport"}}}},
			wantErr: registry.ErrUnknownNodeType,
		},
		{
			name: "duplicate node ids",
			flow: models.Flow{Name: "x", Graph: models.Graph{Nodes: []models.Node{
				{ID: "a", Type: models.NodeTypeTriggerManual},
				{ID: "a", Type: models.NodeTypeTriggerManual},
			}}},
			wantErr: models.ErrDuplicateNodeID,
		},
		{
			name: "no entry point",
			flow: models.Flow{Name: "x", Graph: models.Graph{
				Nodes: []models.Node{{ID: "a", Type: models.NodeTypeActionDelay}, {ID: "b", Type: models.NodeTypeActionDelay}},
				Edges: []models.Edge{{Source: "a", Target: "b"}, {Source: "b", Target: "a"}},
			}},
			wantErr: flowfile.ErrNoEntryPoint,
		},
		{
			name: "config rejected by schema",
			flow: models.Flow{Name: "x", Graph: models.Graph{Nodes: []models.Node{
				{ID: "run", Type: models.NodeTypeActionShell, Config: map[string]any{}},
			}}},
			wantErr: registry.ErrInvalidConfig,
		},
		{
			name: "dangling edge only warns",
			flow: models.Flow{Name: "x", Graph: models.Graph{
				Nodes: []models.Node{{ID: "a", Type: models.NodeTypeTriggerManual}},
				Edges: []models.Edge{{Source: "a", Target: "ghost"}},
			}},
			wantErr: flowfile.ErrDanglingEdge,
			warning: true,
		},
		{
			name: "missing handler only warns",
			flow: models.Flow{Name: "x", Graph: models.Graph{Nodes: []models.Node{
				{ID: "ai", Type: models.NodeTypeAISummarize},
			}}},
			wantErr: flowfile.ErrUnknownHandler,
			warning: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			issues := v.Check(&tt.flow)
			require.NotEmpty(t, issues)

			found := false
			for _, issue := range issues {
				if issue.Warning == tt.warning && errors.Is(issue.Err, tt.wantErr) {
					found = true
				}
			}
			assert.True(t, found, "expected issue %v in %v", tt.wantErr, issues)

			if tt.warning {
				assert.NoError(t, v.Validate(&tt.flow))
			} else {
				assert.ErrorIs(t, v.Validate(&tt.flow), tt.wantErr)
			}
		})
	}
}
