package utils

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	webmodels "github.com/collectorsden/shelftrack/internal/web/models"
)

// SendJSON sends a JSON response with the given status.
func SendJSON(c *fiber.Ctx, statusCode int, data interface{}) error {
	return c.Status(statusCode).JSON(data)
}

// SendSuccess sends a successful JSON envelope.
func SendSuccess(c *fiber.Ctx, data interface{}, message string) error {
	return SendJSON(c, http.StatusOK, webmodels.NewSuccessResponse(data, message))
}

// SendCreated sends a created-resource JSON envelope.
func SendCreated(c *fiber.Ctx, data interface{}, message string) error {
	return SendJSON(c, http.StatusCreated, webmodels.NewSuccessResponse(data, message))
}

// SendPaginated sends one page of a list with its meta block.
func SendPaginated(c *fiber.Ctx, data interface{}, meta *webmodels.PageMeta, message string) error {
	return SendJSON(c, http.StatusOK, webmodels.NewPaginatedResponse(data, meta, message))
}

// SendError sends an error JSON envelope.
func SendError(c *fiber.Ctx, statusCode int, code, message string, details map[string]string) error {
	return SendJSON(c, statusCode, webmodels.NewErrorResponse(code, message, details))
}

// SendBadRequest sends a bad request error response.
func SendBadRequest(c *fiber.Ctx, message string, details map[string]string) error {
	return SendError(c, http.StatusBadRequest, "BAD_REQUEST", message, details)
}

// SendNotFound sends a not found error response.
func SendNotFound(c *fiber.Ctx, message string) error {
	return SendError(c, http.StatusNotFound, "NOT_FOUND", message, nil)
}

// SendConflict sends a conflict error response.
func SendConflict(c *fiber.Ctx, message string, details map[string]string) error {
	return SendError(c, http.StatusConflict, "CONFLICT", message, details)
}

// SendInternalServerError sends an internal server error response.
func SendInternalServerError(c *fiber.Ctx, message string) error {
	return SendError(c, http.StatusInternalServerError, "INTERNAL_SERVER_ERROR", message, nil)
}

// SendUnprocessableEntity sends a validation-failure error response.
func SendUnprocessableEntity(c *fiber.Ctx, message string, details map[string]string) error {
	return SendError(c, http.StatusUnprocessableEntity, "VALIDATION_ERROR", message, details)
}

// SendNoContent sends an empty response.
func SendNoContent(c *fiber.Ctx) error {
	return c.SendStatus(http.StatusNoContent)
}

// HandleValidationErrors converts validation errors into the 422
// envelope, keyed by field.
func HandleValidationErrors(c *fiber.Ctx, errors []ValidationError) error {
	details := make(map[string]string, len(errors))
	for _, err := range errors {
		details[err.Field] = err.Description
	}
	return SendUnprocessableEntity(c, "Validation failed", details)
}
