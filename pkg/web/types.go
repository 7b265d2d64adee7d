package web

import "github.com/forgeflow/forgeflow/pkg/models"

// FlowRequest is the body of flow create and update calls.
type FlowRequest struct {
	ID          string         `json:"id,omitempty"`
	Name        string         `json:"name"                  validate:"required,min=1,max=255"`
	Description string         `json:"description,omitempty" validate:"max=1000"`
	Graph       models.Graph   `json:"graph"`
	Variables   map[string]any `json:"variables,omitempty"`
}

func (r FlowRequest) Flow() *models.Flow {
	return &models.Flow{
		ID:          r.ID,
		Name:        r.Name,
		Description: r.Description,
		Graph:       r.Graph,
		Variables:   r.Variables,
	}
}

// RunRequest is the optional body of POST /flows/:id/run.
type RunRequest struct {
	Payload map[string]any `json:"payload,omitempty"`
}

// WebhookResponse acknowledges a webhook that started a flow.
type WebhookResponse struct {
	FlowID   string `json:"flow_id"`
	Accepted bool   `json:"accepted"`
}
