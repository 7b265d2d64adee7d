package shell

import "github.com/forgeflow/forgeflow/pkg/models"

func (n *ShellNode) Type() models.NodeType {
	return models.NodeTypeActionShell
}

func (n *ShellNode) Name() string {
	return "Shell Command"
}

func (n *ShellNode) Description() string {
	return "Runs a command and captures its output and exit code."
}

func (n *ShellNode) Schema() map[string]any {
	return map[string]any{
		"type":     "object",
		"required": []string{"command"},
		"properties": map[string]any{
			"command": map[string]any{"type": "string"},
			"args": map[string]any{
				"type":        []string{"string", "array"},
				"description": "Arguments as a list or a space separated string",
			},
			"workDir": map[string]any{"type": "string"},
			"timeout": map[string]any{"type": "integer", "description": "Timeout in seconds"},
		},
	}
}
