// Package persistence provides the storage abstraction for flows and their executions.
package persistence

import (
	"context"

	"github.com/forgeflow/forgeflow/pkg/models"
)

type Persistence interface {
	Flows(ctx context.Context) ([]*models.Flow, error)
	Flow(ctx context.Context, id string) (*models.Flow, error)
	SaveFlow(ctx context.Context, flow *models.Flow) error
	DeleteFlow(ctx context.Context, id string) error

	SaveExecution(ctx context.Context, execution *models.FlowExecution) error
	Execution(ctx context.Context, id string) (*models.FlowExecution, error)
	// Executions returns the executions of flowID, most recent first.
	Executions(ctx context.Context, flowID string) ([]*models.FlowExecution, error)

	HealthCheck(ctx context.Context) error
	Close(ctx context.Context) error
}
