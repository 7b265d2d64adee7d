package file

import "github.com/forgeflow/forgeflow/pkg/models"

func pathSchema(extra map[string]any) map[string]any {
	properties := map[string]any{
		"path": map[string]any{"type": "string", "description": "File path"},
	}

	for k, v := range extra {
		properties[k] = v
	}

	return map[string]any{
		"type":       "object",
		"required":   []string{"path"},
		"properties": properties,
	}
}

func (n *ReadNode) Type() models.NodeType  { return models.NodeTypeActionFileRead }
func (n *ReadNode) Name() string           { return "Read File" }
func (n *ReadNode) Description() string    { return "Reads a file and outputs its content." }
func (n *ReadNode) Schema() map[string]any { return pathSchema(nil) }

func (n *WriteNode) Type() models.NodeType { return n.nodeType }

func (n *WriteNode) Name() string {
	if n.nodeType == models.NodeTypeOutputFile {
		return "Save File"
	}

	return "Write File"
}

func (n *WriteNode) Description() string {
	return "Writes content to a file, creating parent directories."
}

func (n *WriteNode) Schema() map[string]any {
	return pathSchema(map[string]any{
		"content":   map[string]any{"description": "Text to write. Other values are written as JSON"},
		"append":    map[string]any{"type": "boolean", "default": false},
		"overwrite": map[string]any{"type": "boolean", "default": true},
	})
}

func (n *DeleteNode) Type() models.NodeType  { return models.NodeTypeActionFileDelete }
func (n *DeleteNode) Name() string           { return "Delete File" }
func (n *DeleteNode) Description() string    { return "Deletes a file." }
func (n *DeleteNode) Schema() map[string]any { return pathSchema(nil) }

func (n *CopyNode) Type() models.NodeType {
	if n.move {
		return models.NodeTypeActionFileMove
	}

	return models.NodeTypeActionFileCopy
}

func (n *CopyNode) Name() string {
	if n.move {
		return "Move File"
	}

	return "Copy File"
}

func (n *CopyNode) Description() string {
	if n.move {
		return "Moves a file to a new location."
	}

	return "Copies a file to a new location."
}

func (n *CopyNode) Schema() map[string]any {
	return map[string]any{
		"type":     "object",
		"required": []string{"source", "destination"},
		"properties": map[string]any{
			"source":      map[string]any{"type": "string"},
			"destination": map[string]any{"type": "string"},
		},
	}
}
