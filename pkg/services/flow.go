package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/forgeflow/forgeflow/pkg/flowfile"
	"github.com/forgeflow/forgeflow/pkg/models"
	"github.com/forgeflow/forgeflow/pkg/persistence"
)

type Flow struct {
	persistence persistence.Persistence
	validator   *flowfile.Validator
}

// NewFlow creates a new flow service.
func NewFlow(persistence persistence.Persistence, validator *flowfile.Validator) *Flow {
	return &Flow{
		persistence: persistence,
		validator:   validator,
	}
}

// HealthCheck checks the health of the persistence layer.
func (f *Flow) HealthCheck(ctx context.Context) (string, bool) {
	if f.persistence == nil {
		return "Persistence layer not initialized", false
	}

	err := f.persistence.HealthCheck(ctx)
	if err != nil {
		return "Persistence layer is unhealthy: " + err.Error(), false
	}

	return "Persistence layer is healthy", true
}

func (f *Flow) List(ctx context.Context) ([]*models.Flow, error) {
	flows, err := f.persistence.Flows(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list flows: %w", err)
	}

	return flows, nil
}

func (f *Flow) Get(ctx context.Context, id string) (*models.Flow, error) {
	return f.persistence.Flow(ctx, id)
}

// Create validates and stores a new flow, generating its id when empty.
func (f *Flow) Create(ctx context.Context, flow *models.Flow) (*models.Flow, error) {
	if flow == nil {
		return nil, ErrFlowNil
	}

	if flow.ID == "" {
		flow.ID = uuid.New().String()
	}

	flow.CreatedAt = time.Time{}

	if err := f.check("Create", flow); err != nil {
		return nil, err
	}

	err := f.persistence.SaveFlow(ctx, flow)
	if err != nil {
		return nil, fmt.Errorf("failed to save flow: %w", err)
	}

	return flow, nil
}

// Update replaces the stored flow id with flow, keeping its creation time.
func (f *Flow) Update(ctx context.Context, id string, flow *models.Flow) (*models.Flow, error) {
	if flow == nil {
		return nil, ErrFlowNil
	}

	existing, err := f.persistence.Flow(ctx, id)
	if err != nil {
		return nil, err
	}

	flow.ID = id
	flow.CreatedAt = existing.CreatedAt

	if err := f.check("Update", flow); err != nil {
		return nil, err
	}

	err = f.persistence.SaveFlow(ctx, flow)
	if err != nil {
		return nil, fmt.Errorf("failed to save flow: %w", err)
	}

	return flow, nil
}

func (f *Flow) Delete(ctx context.Context, id string) error {
	return f.persistence.DeleteFlow(ctx, id)
}

func (f *Flow) check(op string, flow *models.Flow) error {
	if err := persistence.ValidateID(flow.ID); err != nil {
		return NewValidationError(op, "INVALID_ID", err.Error(), err)
	}

	if f.validator == nil {
		return nil
	}

	if err := f.validator.Validate(flow); err != nil {
		return NewValidationError(op, "INVALID_FLOW", err.Error(), err)
	}

	return nil
}
