package postgresql

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/forgeflow/forgeflow/pkg/models"
	"github.com/forgeflow/forgeflow/pkg/persistence"
)

const flowColumns = "id, name, description, graph, variables, created_at, updated_at"

// Flows returns every stored flow, newest first.
func (p *Persistence) Flows(ctx context.Context) ([]*models.Flow, error) {
	rows, err := p.db.QueryContext(ctx, "SELECT "+flowColumns+" FROM flows ORDER BY created_at DESC")
	if err != nil {
		return nil, fmt.Errorf("failed to query flows: %w", err)
	}
	defer func() { _ = rows.Close() }()

	flows := make([]*models.Flow, 0)

	for rows.Next() {
		flow, err := scanFlow(rows)
		if err != nil {
			return nil, err
		}

		flows = append(flows, flow)
	}

	err = rows.Err()
	if err != nil {
		return nil, fmt.Errorf("failed to iterate flows: %w", err)
	}

	return flows, nil
}

func (p *Persistence) Flow(ctx context.Context, id string) (*models.Flow, error) {
	row := p.db.QueryRowContext(ctx, "SELECT "+flowColumns+" FROM flows WHERE id = $1", id)

	flow, err := scanFlow(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, persistence.NewFlowError("Flow", id, persistence.ErrFlowNotFound)
	}

	if err != nil {
		return nil, persistence.NewFlowError("Flow", id, err)
	}

	return flow, nil
}

// SaveFlow upserts the flow, keeping the original created_at.
func (p *Persistence) SaveFlow(ctx context.Context, flow *models.Flow) error {
	if err := persistence.ValidateID(flow.ID); err != nil {
		return persistence.NewFlowError("SaveFlow", flow.ID, err)
	}

	graphJSON, err := json.Marshal(flow.Graph)
	if err != nil {
		return persistence.NewFlowError("SaveFlow", flow.ID, fmt.Errorf("failed to marshal graph: %w", err))
	}

	variables := flow.Variables
	if variables == nil {
		variables = map[string]any{}
	}

	variablesJSON, err := json.Marshal(variables)
	if err != nil {
		return persistence.NewFlowError("SaveFlow", flow.ID, fmt.Errorf("failed to marshal variables: %w", err))
	}

	now := time.Now().UTC().Truncate(time.Microsecond)
	if flow.CreatedAt.IsZero() {
		flow.CreatedAt = now
	}

	flow.UpdatedAt = now

	query := `
		INSERT INTO flows (id, name, description, graph, variables, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			description = EXCLUDED.description,
			graph = EXCLUDED.graph,
			variables = EXCLUDED.variables,
			updated_at = EXCLUDED.updated_at
		RETURNING created_at
	`

	err = p.db.QueryRowContext(ctx, query,
		flow.ID, flow.Name, flow.Description, graphJSON, variablesJSON, flow.CreatedAt, flow.UpdatedAt,
	).Scan(&flow.CreatedAt)
	if err != nil {
		return persistence.NewFlowError("SaveFlow", flow.ID, err)
	}

	return nil
}

// DeleteFlow removes the flow; its executions go with it through the foreign key.
func (p *Persistence) DeleteFlow(ctx context.Context, id string) error {
	result, err := p.db.ExecContext(ctx, "DELETE FROM flows WHERE id = $1", id)
	if err != nil {
		return persistence.NewFlowError("DeleteFlow", id, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return persistence.NewFlowError("DeleteFlow", id, err)
	}

	if affected == 0 {
		return persistence.NewFlowError("DeleteFlow", id, persistence.ErrFlowNotFound)
	}

	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanFlow(row scanner) (*models.Flow, error) {
	var (
		flow          models.Flow
		graphJSON     []byte
		variablesJSON []byte
	)

	err := row.Scan(&flow.ID, &flow.Name, &flow.Description, &graphJSON, &variablesJSON, &flow.CreatedAt, &flow.UpdatedAt)
	if err != nil {
		return nil, err
	}

	err = json.Unmarshal(graphJSON, &flow.Graph)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal graph of flow %s: %w", flow.ID, err)
	}

	err = json.Unmarshal(variablesJSON, &flow.Variables)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal variables of flow %s: %w", flow.ID, err)
	}

	return &flow, nil
}
