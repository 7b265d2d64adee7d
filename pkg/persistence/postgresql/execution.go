package postgresql

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/forgeflow/forgeflow/pkg/models"
	"github.com/forgeflow/forgeflow/pkg/persistence"
)

const executionColumns = "id, flow_id, status, results, logs, trigger_data, error, started_at, ended_at"

// SaveExecution upserts the execution record. Running executions are saved again once they finish.
func (p *Persistence) SaveExecution(ctx context.Context, execution *models.FlowExecution) error {
	if err := persistence.ValidateID(execution.ID); err != nil {
		return persistence.NewExecutionError("SaveExecution", execution.ID, err)
	}

	results := execution.Results
	if results == nil {
		results = []models.NodeResult{}
	}

	logs := execution.Logs
	if logs == nil {
		logs = []models.LogEntry{}
	}

	resultsJSON, err := json.Marshal(results)
	if err != nil {
		return persistence.NewExecutionError("SaveExecution", execution.ID, fmt.Errorf("failed to marshal results: %w", err))
	}

	logsJSON, err := json.Marshal(logs)
	if err != nil {
		return persistence.NewExecutionError("SaveExecution", execution.ID, fmt.Errorf("failed to marshal logs: %w", err))
	}

	var triggerJSON []byte
	if execution.Trigger != nil {
		triggerJSON, err = json.Marshal(execution.Trigger)
		if err != nil {
			return persistence.NewExecutionError("SaveExecution", execution.ID, fmt.Errorf("failed to marshal trigger: %w", err))
		}
	}

	query := `
		INSERT INTO executions (id, flow_id, status, results, logs, trigger_data, error, started_at, ended_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (id) DO UPDATE SET
			status = EXCLUDED.status,
			results = EXCLUDED.results,
			logs = EXCLUDED.logs,
			error = EXCLUDED.error,
			ended_at = EXCLUDED.ended_at
	`

	_, err = p.db.ExecContext(ctx, query,
		execution.ID, execution.FlowID, string(execution.Status), resultsJSON, logsJSON, triggerJSON,
		execution.Error, execution.StartedAt, execution.EndedAt,
	)
	if err != nil {
		return persistence.NewExecutionError("SaveExecution", execution.ID, err)
	}

	return nil
}

func (p *Persistence) Execution(ctx context.Context, id string) (*models.FlowExecution, error) {
	row := p.db.QueryRowContext(ctx, "SELECT "+executionColumns+" FROM executions WHERE id = $1", id)

	execution, err := scanExecution(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, persistence.NewExecutionError("Execution", id, persistence.ErrExecutionNotFound)
	}

	if err != nil {
		return nil, persistence.NewExecutionError("Execution", id, err)
	}

	return execution, nil
}

func (p *Persistence) Executions(ctx context.Context, flowID string) ([]*models.FlowExecution, error) {
	rows, err := p.db.QueryContext(ctx,
		"SELECT "+executionColumns+" FROM executions WHERE flow_id = $1 ORDER BY started_at DESC", flowID)
	if err != nil {
		return nil, persistence.NewFlowError("Executions", flowID, err)
	}
	defer func() { _ = rows.Close() }()

	executions := make([]*models.FlowExecution, 0)

	for rows.Next() {
		execution, err := scanExecution(rows)
		if err != nil {
			return nil, persistence.NewFlowError("Executions", flowID, err)
		}

		executions = append(executions, execution)
	}

	err = rows.Err()
	if err != nil {
		return nil, persistence.NewFlowError("Executions", flowID, err)
	}

	return executions, nil
}

func scanExecution(row scanner) (*models.FlowExecution, error) {
	var (
		execution   models.FlowExecution
		status      string
		resultsJSON []byte
		logsJSON    []byte
		triggerJSON []byte
		endedAt     sql.NullTime
	)

	err := row.Scan(&execution.ID, &execution.FlowID, &status, &resultsJSON, &logsJSON, &triggerJSON,
		&execution.Error, &execution.StartedAt, &endedAt)
	if err != nil {
		return nil, err
	}

	execution.Status = models.ExecutionStatus(status)

	if endedAt.Valid {
		execution.EndedAt = &endedAt.Time
	}

	err = json.Unmarshal(resultsJSON, &execution.Results)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal results: %w", err)
	}

	err = json.Unmarshal(logsJSON, &execution.Logs)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal logs: %w", err)
	}

	if len(triggerJSON) > 0 {
		err = json.Unmarshal(triggerJSON, &execution.Trigger)
		if err != nil {
			return nil, fmt.Errorf("failed to unmarshal trigger: %w", err)
		}
	}

	return &execution, nil
}
