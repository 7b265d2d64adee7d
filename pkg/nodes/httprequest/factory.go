package httprequest

import "github.com/forgeflow/forgeflow/pkg/models"

func (n *HTTPRequestNode) Type() models.NodeType {
	return models.NodeTypeActionHTTP
}

func (n *HTTPRequestNode) Name() string {
	return "HTTP Request"
}

func (n *HTTPRequestNode) Description() string {
	return "Performs an HTTP request. JSON responses are decoded, anything else is returned as text."
}

func (n *HTTPRequestNode) Schema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"url": map[string]any{
				"type":        "string",
				"description": "Request URL",
			},
			"method": map[string]any{
				"type": "string",
				"enum": []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "get", "post", "put", "patch", "delete", "head"},
			},
			"headers": map[string]any{
				"type":        []string{"object", "string"},
				"description": "Header map, or a JSON object encoded as text",
			},
			"body": map[string]any{
				"description": "Request body. Non-string values are sent as JSON",
			},
			"timeout": map[string]any{
				"type":        []string{"integer", "string"},
				"description": "Timeout in seconds",
			},
			"retries": map[string]any{
				"type": "object",
				"properties": map[string]any{
					"attempts": map[string]any{"type": "integer", "minimum": 1},
					"delay":    map[string]any{"type": "integer", "minimum": 0},
				},
			},
		},
		"required": []string{"url"},
	}
}
