// Package output provides the output_http node. It records the status and body a flow wants to
// answer with as a node output; webhook calls are acknowledged before the run starts, so nothing
// is written to the caller.
package output

import (
	"context"
	"fmt"
	"net/http"

	"github.com/forgeflow/forgeflow/pkg/models"
	"github.com/forgeflow/forgeflow/pkg/nodes/nodeconfig"
	"github.com/forgeflow/forgeflow/pkg/protocol"
	"github.com/forgeflow/forgeflow/pkg/template"
)

// HTTPResponseNode validates the configured status and returns {status, body, sent} for later nodes
// and the execution record.
type HTTPResponseNode struct{}

func NewHTTPResponseNode() *HTTPResponseNode {
	return &HTTPResponseNode{}
}

func (n *HTTPResponseNode) Handle(_ context.Context, in protocol.Input) (any, error) {
	status := nodeconfig.Int(in.Data, "status", http.StatusOK)
	if status < 100 || status > 599 {
		return nil, fmt.Errorf("invalid HTTP status: %d", status)
	}

	body := in.Data["body"]

	in.Logf(models.LogLevelInfo, fmt.Sprintf("HTTP Response: %d", status))
	in.Logf(models.LogLevelInfo, "Body: "+nodeconfig.Truncate(template.Stringify(body), 100))

	return map[string]any{
		"status": status,
		"body":   body,
		"sent":   true,
	}, nil
}

func (n *HTTPResponseNode) Type() models.NodeType {
	return models.NodeTypeOutputHTTP
}

func (n *HTTPResponseNode) Name() string {
	return "HTTP Response"
}

func (n *HTTPResponseNode) Description() string {
	return "Records an HTTP status and body as the flow result."
}

func (n *HTTPResponseNode) Schema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"status": map[string]any{"type": []string{"integer", "string"}, "default": http.StatusOK},
			"body":   map[string]any{},
		},
	}
}
