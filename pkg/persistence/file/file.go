// Package file provides file-based persistence for flows and executions.
package file

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/forgeflow/forgeflow/pkg/models"
	"github.com/forgeflow/forgeflow/pkg/persistence"
)

const (
	dirPerm  = 0o750
	filePerm = 0o600

	flowsDir      = "flows"
	executionsDir = "executions"
)

// Persistence implements the persistence.Persistence interface using the file system.
//
// Flows live in <root>/flows/<id>.json and executions in
// <root>/executions/<flow id>/<execution id>.json.
type Persistence struct {
	root string
	mu   sync.RWMutex
	now  func() time.Time
}

// NewPersistence creates a new instance of Persistence with the specified root directory.
func NewPersistence(root string) *Persistence {
	return &Persistence{
		root: strings.Replace(root, "file://", "", 1),
		now:  time.Now,
	}
}

// Close performs any necessary cleanup. For file-based persistence, there is nothing to clean up.
func (fp *Persistence) Close(_ context.Context) error {
	return nil
}

// HealthCheck checks if the file persistence layer is healthy by verifying the root directory exists.
func (fp *Persistence) HealthCheck(_ context.Context) error {
	if _, err := os.Stat(fp.root); os.IsNotExist(err) {
		return os.ErrNotExist
	}

	return nil
}

func (fp *Persistence) Flows(_ context.Context) ([]*models.Flow, error) {
	fp.mu.RLock()
	defer fp.mu.RUnlock()

	files, err := fs.Glob(os.DirFS(fp.root), flowsDir+"/*.json")
	if err != nil {
		return nil, fmt.Errorf("failed to list flow files: %w", err)
	}

	flows := make([]*models.Flow, 0, len(files))

	for _, name := range files {
		var flow models.Flow

		err := readJSON(filepath.Join(fp.root, name), &flow)
		if err != nil {
			return nil, fmt.Errorf("failed to load flow %s: %w", name, err)
		}

		flows = append(flows, &flow)
	}

	slices.SortFunc(flows, func(a, b *models.Flow) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})

	return flows, nil
}

func (fp *Persistence) Flow(_ context.Context, id string) (*models.Flow, error) {
	if err := persistence.ValidateID(id); err != nil {
		return nil, persistence.NewFlowError("Flow", id, err)
	}

	fp.mu.RLock()
	defer fp.mu.RUnlock()

	var flow models.Flow

	err := readJSON(fp.flowPath(id), &flow)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, persistence.NewFlowError("Flow", id, persistence.ErrFlowNotFound)
	}

	if err != nil {
		return nil, persistence.NewFlowError("Flow", id, err)
	}

	return &flow, nil
}

// SaveFlow stores the flow, stamping CreatedAt on first save and UpdatedAt on every save.
func (fp *Persistence) SaveFlow(_ context.Context, flow *models.Flow) error {
	if err := persistence.ValidateID(flow.ID); err != nil {
		return persistence.NewFlowError("SaveFlow", flow.ID, err)
	}

	fp.mu.Lock()
	defer fp.mu.Unlock()

	now := fp.now().UTC()
	if flow.CreatedAt.IsZero() {
		flow.CreatedAt = now
	}

	flow.UpdatedAt = now

	err := writeJSON(fp.flowPath(flow.ID), flow)
	if err != nil {
		return persistence.NewFlowError("SaveFlow", flow.ID, err)
	}

	return nil
}

// DeleteFlow removes the flow together with its executions.
func (fp *Persistence) DeleteFlow(_ context.Context, id string) error {
	if err := persistence.ValidateID(id); err != nil {
		return persistence.NewFlowError("DeleteFlow", id, err)
	}

	fp.mu.Lock()
	defer fp.mu.Unlock()

	err := os.Remove(fp.flowPath(id))
	if errors.Is(err, fs.ErrNotExist) {
		return persistence.NewFlowError("DeleteFlow", id, persistence.ErrFlowNotFound)
	}

	if err != nil {
		return persistence.NewFlowError("DeleteFlow", id, err)
	}

	err = os.RemoveAll(filepath.Join(fp.root, executionsDir, id))
	if err != nil {
		return persistence.NewFlowError("DeleteFlow", id, fmt.Errorf("failed to remove executions: %w", err))
	}

	return nil
}

func (fp *Persistence) SaveExecution(_ context.Context, execution *models.FlowExecution) error {
	if err := persistence.ValidateID(execution.ID); err != nil {
		return persistence.NewExecutionError("SaveExecution", execution.ID, err)
	}

	if err := persistence.ValidateID(execution.FlowID); err != nil {
		return persistence.NewExecutionError("SaveExecution", execution.ID, err)
	}

	fp.mu.Lock()
	defer fp.mu.Unlock()

	err := writeJSON(filepath.Join(fp.root, executionsDir, execution.FlowID, execution.ID+".json"), execution)
	if err != nil {
		return persistence.NewExecutionError("SaveExecution", execution.ID, err)
	}

	return nil
}

func (fp *Persistence) Execution(_ context.Context, id string) (*models.FlowExecution, error) {
	if err := persistence.ValidateID(id); err != nil {
		return nil, persistence.NewExecutionError("Execution", id, err)
	}

	fp.mu.RLock()
	defer fp.mu.RUnlock()

	matches, err := fs.Glob(os.DirFS(fp.root), executionsDir+"/*/"+id+".json")
	if err != nil {
		return nil, persistence.NewExecutionError("Execution", id, err)
	}

	if len(matches) == 0 {
		return nil, persistence.NewExecutionError("Execution", id, persistence.ErrExecutionNotFound)
	}

	var execution models.FlowExecution

	err = readJSON(filepath.Join(fp.root, matches[0]), &execution)
	if err != nil {
		return nil, persistence.NewExecutionError("Execution", id, err)
	}

	return &execution, nil
}

func (fp *Persistence) Executions(_ context.Context, flowID string) ([]*models.FlowExecution, error) {
	if err := persistence.ValidateID(flowID); err != nil {
		return nil, persistence.NewFlowError("Executions", flowID, err)
	}

	fp.mu.RLock()
	defer fp.mu.RUnlock()

	files, err := fs.Glob(os.DirFS(fp.root), executionsDir+"/"+flowID+"/*.json")
	if err != nil {
		return nil, persistence.NewFlowError("Executions", flowID, err)
	}

	executions := make([]*models.FlowExecution, 0, len(files))

	for _, name := range files {
		var execution models.FlowExecution

		err := readJSON(filepath.Join(fp.root, name), &execution)
		if err != nil {
			return nil, persistence.NewFlowError("Executions", flowID, err)
		}

		executions = append(executions, &execution)
	}

	slices.SortFunc(executions, func(a, b *models.FlowExecution) int {
		return b.StartedAt.Compare(a.StartedAt)
	})

	return executions, nil
}

func (fp *Persistence) flowPath(id string) string {
	return filepath.Join(fp.root, flowsDir, id+".json")
}

func readJSON(path string, target any) error {
	body, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	err = json.Unmarshal(body, target)
	if err != nil {
		return fmt.Errorf("failed to decode %s: %w", filepath.Base(path), err)
	}

	return nil
}

func writeJSON(path string, value any) error {
	body, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode: %w", err)
	}

	err = os.MkdirAll(filepath.Dir(path), dirPerm)
	if err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	return os.WriteFile(path, body, filePerm)
}
