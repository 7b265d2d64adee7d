package web_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/forgeflow/forgeflow/pkg/flowfile"
	"github.com/forgeflow/forgeflow/pkg/models"
	"github.com/forgeflow/forgeflow/pkg/persistence/file"
	"github.com/forgeflow/forgeflow/pkg/registry"
	"github.com/forgeflow/forgeflow/pkg/services"
	"github.com/forgeflow/forgeflow/pkg/triggers"
	"github.com/forgeflow/forgeflow/pkg/triggers/webhook"
	"github.com/forgeflow/forgeflow/pkg/web"
)

func setupTestApp(t *testing.T) (*fiber.App, *services.Flow) {
	t.Helper()

	logger := slog.New(slog.DiscardHandler)
	store := file.NewPersistence(t.TempDir())
	validate := validator.New(validator.WithRequiredStructEnabled())

	reg := registry.NewRegistry(logger)
	require.NoError(t, reg.RegisterDefaultNodes())

	flowService := services.NewFlow(store, flowfile.NewValidator(validate, reg))
	executions := services.NewExecutions(logger, reg, services.WithPersistence(store))

	hooks := webhook.NewHost(logger)
	manager := triggers.NewManager(logger, executions.TriggerCallback(flowService), hooks)

	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		_ = manager.Stop(ctx)
		_ = executions.Shutdown(ctx)
	})

	handlers := web.NewAPIHandlers(flowService, executions, validate, reg, hooks, manager)

	return web.NewApp(handlers, false), flowService
}

func logFlow(id string) *models.Flow {
	return &models.Flow{
		ID:        id,
		Name:      "Greeter",
		Variables: map[string]any{"who": "Ada"},
		Graph: models.Graph{
			Nodes: []models.Node{
				{ID: "start", Type: models.NodeTypeTriggerManual},
				{ID: "greet", Type: models.NodeTypeActionLog, Config: map[string]any{"message": "hello {{who}}"}},
			},
			Edges: []models.Edge{{ID: "e1", Source: "start", Target: "greet"}},
		},
	}
}

func doJSON(t *testing.T, app *fiber.App, method, path string, body any) (*http.Response, []byte) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)

		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := app.Test(req)
	require.NoError(t, err)

	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	return resp, data
}

func TestAPIHandlers_CreateFlow(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name           string
		requestBody    any
		expectedStatus int
	}{
		{
			name: "valid flow",
			requestBody: web.FlowRequest{
				Name:  "Greeter",
				Graph: logFlow("").Graph,
			},
			expectedStatus: http.StatusCreated,
		},
		{
			name:           "missing name",
			requestBody:    web.FlowRequest{Graph: logFlow("").Graph},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "no entry point",
			requestBody: web.FlowRequest{
				Name: "Loop",
				Graph: models.Graph{
					Nodes: []models.Node{
						{ID: "a", Type: models.NodeTypeActionLog, Config: map[string]any{"message": "a"}},
						{ID: "b", Type: models.NodeTypeActionLog, Config: map[string]any{"message": "b"}},
					},
					Edges: []models.Edge{
						{ID: "ab", Source: "a", Target: "b"},
						{ID: "ba", Source: "b", Target: "a"},
					},
				},
			},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "invalid json",
			requestBody:    "not an object",
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			app, _ := setupTestApp(t)

			resp, body := doJSON(t, app, http.MethodPost, "/flows", tt.requestBody)
			assert.Equal(t, tt.expectedStatus, resp.StatusCode, string(body))

			if tt.expectedStatus == http.StatusCreated {
				var created models.Flow
				require.NoError(t, json.Unmarshal(body, &created))
				assert.NotEmpty(t, created.ID)
				assert.False(t, created.CreatedAt.IsZero())
			}
		})
	}
}

func TestAPIHandlers_FlowLifecycle(t *testing.T) {
	t.Parallel()

	app, flowService := setupTestApp(t)

	_, err := flowService.Create(t.Context(), logFlow("greeter"))
	require.NoError(t, err)

	resp, body := doJSON(t, app, http.MethodGet, "/flows/greeter", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), `"name":"Greeter"`)

	update := web.FlowRequest{Name: "Greeter v2", Graph: logFlow("").Graph}
	resp, body = doJSON(t, app, http.MethodPut, "/flows/greeter", update)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	assert.Contains(t, string(body), `"name":"Greeter v2"`)

	resp, body = doJSON(t, app, http.MethodGet, "/flows", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var flows []models.Flow
	require.NoError(t, json.Unmarshal(body, &flows))
	assert.Len(t, flows, 1)

	resp, _ = doJSON(t, app, http.MethodDelete, "/flows/greeter", nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp, body = doJSON(t, app, http.MethodGet, "/flows/greeter", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Contains(t, string(body), "flow_not_found")
}

func TestAPIHandlers_RunFlow(t *testing.T) {
	t.Parallel()

	app, flowService := setupTestApp(t)

	_, err := flowService.Create(t.Context(), logFlow("greeter"))
	require.NoError(t, err)

	resp, body := doJSON(t, app, http.MethodPost, "/flows/greeter/run?wait=true", web.RunRequest{})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))

	var execution models.FlowExecution
	require.NoError(t, json.Unmarshal(body, &execution))
	assert.Equal(t, models.ExecutionStatusSuccess, execution.Status)
	assert.Len(t, execution.Results, 2)

	resp, body = doJSON(t, app, http.MethodGet, "/executions/"+execution.ID, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), execution.ID)

	resp, _ = doJSON(t, app, http.MethodPost, "/executions/"+execution.ID+"/stop", nil)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	resp, body = doJSON(t, app, http.MethodGet, "/flows/greeter/executions", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var executions []models.FlowExecution
	require.NoError(t, json.Unmarshal(body, &executions))
	assert.Len(t, executions, 1)

	resp, _ = doJSON(t, app, http.MethodPost, "/flows/missing/run", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestAPIHandlers_Webhook(t *testing.T) {
	t.Parallel()

	app, _ := setupTestApp(t)

	flow := web.FlowRequest{
		ID:   "hooked",
		Name: "Hooked",
		Graph: models.Graph{
			Nodes: []models.Node{
				{ID: "hook", Type: models.NodeTypeTriggerWebhook, Config: map[string]any{"path": "/incoming"}},
				{ID: "greet", Type: models.NodeTypeActionLog, Config: map[string]any{"message": "got {{trigger.body.name}}"}},
			},
			Edges: []models.Edge{{ID: "e1", Source: "hook", Target: "greet"}},
		},
	}

	resp, body := doJSON(t, app, http.MethodPost, "/flows", flow)
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))

	resp, body = doJSON(t, app, http.MethodPost, "/hooks/incoming", map[string]any{"name": "Ada"})
	require.Equal(t, http.StatusAccepted, resp.StatusCode, string(body))
	assert.Contains(t, string(body), `"flow_id":"hooked"`)

	assert.Eventually(t, func() bool {
		resp, body := doJSON(t, app, http.MethodGet, "/flows/hooked/executions", nil)
		if resp.StatusCode != http.StatusOK {
			return false
		}

		var executions []models.FlowExecution
		if json.Unmarshal(body, &executions) != nil || len(executions) != 1 {
			return false
		}

		return executions[0].Status == models.ExecutionStatusSuccess
	}, 5*time.Second, 20*time.Millisecond)

	resp, _ = doJSON(t, app, http.MethodGet, "/hooks/incoming", nil)
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)

	resp, _ = doJSON(t, app, http.MethodPost, "/hooks/unknown", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, _ = doJSON(t, app, http.MethodDelete, "/flows/hooked", nil)
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp, _ = doJSON(t, app, http.MethodPost, "/hooks/incoming", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestAPIHandlers_WebhookPathConflict(t *testing.T) {
	t.Parallel()

	app, _ := setupTestApp(t)

	hooked := func(id, path string) web.FlowRequest {
		return web.FlowRequest{
			ID:   id,
			Name: id,
			Graph: models.Graph{
				Nodes: []models.Node{
					{ID: "hook", Type: models.NodeTypeTriggerWebhook, Config: map[string]any{"path": path}},
					{ID: "greet", Type: models.NodeTypeActionLog, Config: map[string]any{"message": "hi"}},
				},
				Edges: []models.Edge{{ID: "e1", Source: "hook", Target: "greet"}},
			},
		}
	}

	resp, body := doJSON(t, app, http.MethodPost, "/flows", hooked("first", "/shared"))
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))

	resp, body = doJSON(t, app, http.MethodPost, "/flows", hooked("second", "/shared"))
	require.Equal(t, http.StatusConflict, resp.StatusCode, string(body))
	assert.Contains(t, string(body), "webhook_path_taken")

	resp, _ = doJSON(t, app, http.MethodGet, "/flows/second", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, body = doJSON(t, app, http.MethodPost, "/flows", hooked("second", "/other"))
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))

	resp, body = doJSON(t, app, http.MethodPut, "/flows/second", hooked("second", "/shared"))
	require.Equal(t, http.StatusConflict, resp.StatusCode, string(body))

	resp, body = doJSON(t, app, http.MethodPost, "/hooks/shared", map[string]any{})
	require.Equal(t, http.StatusAccepted, resp.StatusCode, string(body))
	assert.Contains(t, string(body), `"flow_id":"first"`)
}

func TestAPIHandlers_NodesAndHealth(t *testing.T) {
	t.Parallel()

	app, _ := setupTestApp(t)

	resp, body := doJSON(t, app, http.MethodGet, "/nodes", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var descriptors []registry.Descriptor
	require.NoError(t, json.Unmarshal(body, &descriptors))
	assert.NotEmpty(t, descriptors)

	resp, body = doJSON(t, app, http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), `"status":"healthy"`)
}
