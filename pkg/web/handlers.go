// Package web provides the REST API for flows, executions and webhook triggers.
package web

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"

	"github.com/forgeflow/forgeflow/pkg/log"
	"github.com/forgeflow/forgeflow/pkg/models"
	"github.com/forgeflow/forgeflow/pkg/registry"
	"github.com/forgeflow/forgeflow/pkg/services"
	"github.com/forgeflow/forgeflow/pkg/triggers/webhook"
)

// TriggerSync keeps trigger hosts in step with stored flows.
type TriggerSync interface {
	Sync(ctx context.Context, flow *models.Flow) error
	Remove(ctx context.Context, flowID string) error
}

type APIHandlers struct {
	flowService      *services.Flow
	executionService *services.Executions
	validator        *validator.Validate
	registry         *registry.Registry
	webhooks         *webhook.Host
	triggers         TriggerSync
}

func NewAPIHandlers(
	flowService *services.Flow,
	executionService *services.Executions,
	validator *validator.Validate,
	registry *registry.Registry,
	webhooks *webhook.Host,
	triggers TriggerSync,
) *APIHandlers {
	return &APIHandlers{
		flowService:      flowService,
		executionService: executionService,
		validator:        validator,
		registry:         registry,
		webhooks:         webhooks,
		triggers:         triggers,
	}
}

func (h *APIHandlers) GetFlows(c fiber.Ctx) error {
	flows, err := h.flowService.List(c.Context())
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(flows)
}

func (h *APIHandlers) GetFlow(c fiber.Ctx) error {
	flow, err := h.flowService.Get(c.Context(), c.Params("id"))
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(flow)
}

func (h *APIHandlers) CreateFlow(c fiber.Ctx) error {
	req, err := h.bindFlow(c)
	if err != nil {
		return badRequest(c, err.Error())
	}

	created, err := h.flowService.Create(c.Context(), req.Flow())
	if err != nil {
		return handleServiceError(c, err)
	}

	if err := h.syncTriggers(created); err != nil {
		h.removeTriggers(c.Context(), created.ID)

		if delErr := h.flowService.Delete(context.Background(), created.ID); delErr != nil {
			log.FromContext(c.Context()).Error("Failed to roll back flow", "flow_id", created.ID, "error", delErr)
		}

		return triggerError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(created)
}

func (h *APIHandlers) UpdateFlow(c fiber.Ctx) error {
	req, err := h.bindFlow(c)
	if err != nil {
		return badRequest(c, err.Error())
	}

	updated, err := h.flowService.Update(c.Context(), c.Params("id"), req.Flow())
	if err != nil {
		return handleServiceError(c, err)
	}

	if err := h.syncTriggers(updated); err != nil {
		return triggerError(c, err)
	}

	return c.JSON(updated)
}

func (h *APIHandlers) DeleteFlow(c fiber.Ctx) error {
	id := c.Params("id")

	err := h.flowService.Delete(c.Context(), id)
	if err != nil {
		return handleServiceError(c, err)
	}

	h.removeTriggers(c.Context(), id)

	return c.SendStatus(fiber.StatusNoContent)
}

// RunFlow starts the flow. With ?wait=true the call blocks and returns the final record.
func (h *APIHandlers) RunFlow(c fiber.Ctx) error {
	var req RunRequest

	if len(c.Body()) > 0 {
		if err := c.Bind().JSON(&req); err != nil {
			return badRequest(c, "Invalid JSON format")
		}
	}

	flow, err := h.flowService.Get(c.Context(), c.Params("id"))
	if err != nil {
		return handleServiceError(c, err)
	}

	payload := req.Payload
	if payload == nil {
		payload = map[string]any{"source": "api"}
	}

	wait, _ := strconv.ParseBool(c.Query("wait"))
	if wait {
		// A failed run is still a completed request; the record carries the error.
		record, err := h.executionService.Run(context.Background(), flow, payload)
		if record == nil {
			return handleServiceError(c, err)
		}

		return c.JSON(record)
	}

	record, err := h.executionService.Start(context.Background(), flow, payload)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.Status(fiber.StatusAccepted).JSON(record)
}

func (h *APIHandlers) GetFlowExecutions(c fiber.Ctx) error {
	id := c.Params("id")

	if _, err := h.flowService.Get(c.Context(), id); err != nil {
		return handleServiceError(c, err)
	}

	executions, err := h.executionService.List(c.Context(), id)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(executions)
}

func (h *APIHandlers) GetExecution(c fiber.Ctx) error {
	execution, err := h.executionService.Get(c.Context(), c.Params("id"))
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(execution)
}

func (h *APIHandlers) StopExecution(c fiber.Ctx) error {
	err := h.executionService.Stop(c.Context(), c.Params("id"))
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.SendStatus(fiber.StatusAccepted)
}

// GetNodes lists the node catalog with the registration state of every type.
func (h *APIHandlers) GetNodes(c fiber.Ctx) error {
	return c.JSON(h.registry.Descriptors())
}

// Webhook hands the request to the trigger_webhook node registered for the path after /hooks.
func (h *APIHandlers) Webhook(c fiber.Ctx) error {
	path := c.Params("*")

	flowID, err := h.webhooks.Dispatch(context.Background(), c.Method(), path, webhookPayload(c))
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.Status(fiber.StatusAccepted).JSON(WebhookResponse{FlowID: flowID, Accepted: true})
}

func (h *APIHandlers) HealthCheck(c fiber.Ctx) error {
	repositoryCheck, repOk := h.flowService.HealthCheck(c.Context())

	status := "unhealthy"
	message := "forgeflow API is unhealthy"
	httpStatus := http.StatusInternalServerError

	if repOk {
		status = "healthy"
		message = "forgeflow API is healthy"
		httpStatus = http.StatusOK
	}

	return c.Status(httpStatus).JSON(fiber.Map{
		"status":  status,
		"message": message,
		"checkers": fiber.Map{
			"registry":   strconv.Itoa(len(h.registry.Types())) + " node handlers registered",
			"repository": repositoryCheck,
		},
		"timestamp": time.Now().UTC(),
	})
}

func (h *APIHandlers) bindFlow(c fiber.Ctx) (*FlowRequest, error) {
	var req FlowRequest

	if err := c.Bind().JSON(&req); err != nil {
		return nil, errInvalidJSON
	}

	if err := h.validator.Struct(req); err != nil {
		return nil, err
	}

	return &req, nil
}

// syncTriggers runs outside the request context; trigger hosts keep it for their lifetime.
func (h *APIHandlers) syncTriggers(flow *models.Flow) error {
	if h.triggers == nil {
		return nil
	}

	return h.triggers.Sync(context.Background(), flow)
}

func (h *APIHandlers) removeTriggers(ctx context.Context, flowID string) {
	if h.triggers == nil {
		return
	}

	if err := h.triggers.Remove(context.Background(), flowID); err != nil {
		log.FromContext(ctx).Warn("Failed to remove flow triggers", "flow_id", flowID, "error", err)
	}
}

func webhookPayload(c fiber.Ctx) map[string]any {
	headers := make(map[string]any)
	for name, values := range c.GetReqHeaders() {
		if len(values) > 0 {
			headers[name] = values[0]
		}
	}

	query := make(map[string]any)
	for key, value := range c.Queries() {
		query[key] = value
	}

	payload := map[string]any{
		"method":  c.Method(),
		"path":    "/" + c.Params("*"),
		"headers": headers,
		"query":   query,
	}

	if body := c.Body(); len(body) > 0 {
		var decoded any
		if err := json.Unmarshal(body, &decoded); err == nil {
			payload["body"] = decoded
		} else {
			payload["body"] = string(body)
		}
	}

	return payload
}
