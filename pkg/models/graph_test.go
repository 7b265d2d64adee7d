package models

import (
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleGraph() Graph {
	return Graph{
		Nodes: []Node{
			{ID: "a", Type: NodeTypeTriggerManual},
			{ID: "b", Type: NodeTypeActionLog},
			{ID: "c", Type: NodeTypeActionLog},
			{ID: "d", Type: NodeTypeTriggerSchedule},
		},
		Edges: []Edge{
			{ID: "e1", Source: "a", Target: "b"},
			{ID: "e2", Source: "a", Target: "c"},
			{ID: "e3", Source: "b", Target: "ghost"},
		},
	}
}

func TestGraph_EntryPoints(t *testing.T) {
	g := sampleGraph()

	assert.Equal(t, []string{"a", "d"}, g.EntryPoints())
}

func TestGraph_EntryPoints_None(t *testing.T) {
	g := Graph{
		Nodes: []Node{{ID: "a", Type: NodeTypeActionLog}, {ID: "b", Type: NodeTypeActionLog}},
		Edges: []Edge{{Source: "a", Target: "b"}, {Source: "b", Target: "a"}},
	}

	assert.Empty(t, g.EntryPoints())
}

func TestGraph_Normalize(t *testing.T) {
	g := sampleGraph()

	dropped := g.Normalize()

	require.Len(t, dropped, 1)
	assert.Equal(t, "e3", dropped[0].ID)
	assert.Len(t, g.Edges, 2)
}

func TestGraph_Outgoing(t *testing.T) {
	g := sampleGraph()

	out := g.Outgoing("a")

	require.Len(t, out, 2)
	assert.Equal(t, "e1", out[0].ID)
	assert.Equal(t, "e2", out[1].ID)
	assert.Empty(t, g.Outgoing("c"))
}

func TestGraph_Validate(t *testing.T) {
	validate := validator.New(validator.WithRequiredStructEnabled())

	tests := []struct {
		name    string
		graph   Graph
		wantErr bool
	}{
		{
			name:  "valid",
			graph: sampleGraph(),
		},
		{
			name: "missing node type",
			graph: Graph{
				Nodes: []Node{{ID: "a"}},
			},
			wantErr: true,
		},
		{
			name: "duplicate id",
			graph: Graph{
				Nodes: []Node{
					{ID: "a", Type: NodeTypeActionLog},
					{ID: "a", Type: NodeTypeActionLog},
				},
			},
			wantErr: true,
		},
		{
			name: "edge without target",
			graph: Graph{
				Nodes: []Node{{ID: "a", Type: NodeTypeActionLog}},
				Edges: []Edge{{Source: "a"}},
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.graph.Validate(validate)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestNode_Disabled(t *testing.T) {
	assert.True(t, (&Node{Config: map[string]any{"disabled": true}}).Disabled())
	assert.False(t, (&Node{Config: map[string]any{"disabled": "true"}}).Disabled())
	assert.False(t, (&Node{}).Disabled())
}

func TestNodeType_Category(t *testing.T) {
	tests := []struct {
		nodeType NodeType
		want     Category
	}{
		{NodeTypeTriggerManual, CategoryTrigger},
		{NodeTypeConditionSwitch, CategoryCondition},
		{NodeTypeActionDelay, CategoryAction},
		{NodeTypeAIGenerate, CategoryAI},
		{NodeTypeLoopWhile, CategoryLoop},
		{NodeTypeUtilMerge, CategoryUtility},
		{NodeTypeOutputFile, CategoryOutput},
		{NodeType("mystery"), ""},
	}

	for _, tt := range tests {
		t.Run(string(tt.nodeType), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.nodeType.Category())
		})
	}
}

func TestNodeType_Valid(t *testing.T) {
	for _, nodeType := range NodeTypes() {
		assert.True(t, nodeType.Valid(), nodeType)
		assert.NotEmpty(t, nodeType.Category(), nodeType)
	}

	assert.False(t, NodeType("action_teleport").Valid())
}

func TestFlow_TriggerNodes(t *testing.T) {
	flow := Flow{Graph: Graph{Nodes: []Node{
		{ID: "t1", Type: NodeTypeTriggerSchedule},
		{ID: "t2", Type: NodeTypeTriggerWebhook, Config: map[string]any{"disabled": true}},
		{ID: "a", Type: NodeTypeActionLog},
	}}}

	triggers := flow.TriggerNodes()

	require.Len(t, triggers, 1)
	assert.Equal(t, "t1", triggers[0].ID)
}
