package web

import (
	"errors"

	"github.com/gofiber/fiber/v3"
	"github.com/moogar0880/problems"

	"github.com/forgeflow/forgeflow/pkg/persistence"
	"github.com/forgeflow/forgeflow/pkg/services"
	"github.com/forgeflow/forgeflow/pkg/triggers/webhook"
)

func problem(c fiber.Ctx, status int, problemType, detail string) error {
	p := problems.NewStatusProblem(status).
		WithInstance(c.Path()).
		WithType(problemType).
		WithDetail(detail)

	return c.Status(status).JSON(p)
}

func badRequest(c fiber.Ctx, detail string) error {
	return problem(c, fiber.StatusBadRequest, "validation_error", detail)
}

func internalError(c fiber.Ctx, err error) error {
	p := problems.NewStatusProblem(fiber.StatusInternalServerError).
		WithInstance(c.Path()).
		WithType("internal_error").
		WithError(err)

	return c.Status(fiber.StatusInternalServerError).JSON(p)
}

// triggerError maps a failed trigger registration. A webhook path owned by another flow is a
// conflict; any other host error means the trigger config is invalid.
func triggerError(c fiber.Ctx, err error) error {
	if errors.Is(err, webhook.ErrPathTaken) {
		return problem(c, fiber.StatusConflict, "webhook_path_taken", err.Error())
	}

	return problem(c, fiber.StatusBadRequest, "invalid_trigger", err.Error())
}

// handleServiceError maps service and persistence errors to problem responses.
func handleServiceError(c fiber.Ctx, err error) error {
	switch {
	case services.IsValidationError(err):
		return badRequest(c, err.Error())
	case services.IsConflictError(err):
		return problem(c, fiber.StatusConflict, "conflict", err.Error())
	case persistence.IsFlowNotFound(err):
		return problem(c, fiber.StatusNotFound, "flow_not_found", "flow not found")
	case persistence.IsExecutionNotFound(err):
		return problem(c, fiber.StatusNotFound, "execution_not_found", "execution not found")
	case errors.Is(err, webhook.ErrNoWebhook):
		return problem(c, fiber.StatusNotFound, "webhook_not_found", err.Error())
	case errors.Is(err, webhook.ErrMethodNotAllowed):
		return problem(c, fiber.StatusMethodNotAllowed, "method_not_allowed", err.Error())
	default:
		return internalError(c, err)
	}
}
