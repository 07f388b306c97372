package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"codereview/internal/http/middleware"
	"codereview/internal/service"
)

// errorPayload defines the standardized error response body.
// Error carries the underlying error string on 500 responses only.
type errorPayload struct {
	RequestID string `json:"request_id"`
	Code      string `json:"code"`
	Message   string `json:"message"`
	Error     string `json:"error,omitempty"`
}

// requestIDFromCtx extracts request_id previously stored by middleware.RequestID.
func requestIDFromCtx(c *fiber.Ctx) string {
	if v := c.Locals(middleware.RequestIDLocalKey); v != nil {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// writeError writes a standardized JSON error response.
//
// Parameters:
// - status: HTTP status code to return
// - code: machine-readable short error code (e.g., "NOT_FOUND", "VALIDATION_ERROR")
// - message: human-readable safe message
func writeError(c *fiber.Ctx, status int, code, message string) error {
	return c.Status(status).JSON(errorPayload{
		RequestID: requestIDFromCtx(c),
		Code:      code,
		Message:   message,
	})
}

// writeInternal writes a 500 with a generic message plus the error string for diagnostics.
func writeInternal(c *fiber.Ctx, message string, err error) error {
	return c.Status(fiber.StatusInternalServerError).JSON(errorPayload{
		RequestID: requestIDFromCtx(c),
		Code:      "INTERNAL_ERROR",
		Message:   message,
		Error:     err.Error(),
	})
}

// writeServiceError maps service errors onto the HTTP taxonomy. Anything
// unrecognised becomes a 500 with failMsg.
func writeServiceError(c *fiber.Ctx, err error, failMsg string) error {
	var ve *service.ValidationError
	switch {
	case errors.As(err, &ve):
		return writeError(c, fiber.StatusBadRequest, "VALIDATION_ERROR", ve.Message)
	case errors.Is(err, service.ErrIDRequired):
		return writeError(c, fiber.StatusBadRequest, "ID_REQUIRED", "id is required")
	case errors.Is(err, service.ErrNotCompleted):
		return writeError(c, fiber.StatusBadRequest, "NOT_COMPLETED", "Analysis not completed yet")
	case errors.Is(err, service.ErrNoFiles):
		return writeError(c, fiber.StatusBadRequest, "NO_FILES", "Session has no files")
	case errors.Is(err, service.ErrNotFound):
		return writeError(c, fiber.StatusNotFound, "NOT_FOUND", "Session not found")
	case errors.Is(err, service.ErrFileNotFound):
		return writeError(c, fiber.StatusNotFound, "FILE_NOT_FOUND", "File not found")
	case errors.Is(err, service.ErrConflict):
		return writeError(c, fiber.StatusConflict, "CONFLICT", "File already finished processing")
	case errors.Is(err, service.ErrQueueFull):
		return writeError(c, fiber.StatusServiceUnavailable, "QUEUE_FULL", "Processing queue is full, try again later")
	default:
		return writeInternal(c, failMsg, err)
	}
}

// ErrorHandler returns a Fiber global error handler that standardizes error responses.
func ErrorHandler() fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		status := fiber.StatusInternalServerError
		var fe *fiber.Error
		if errors.As(err, &fe) {
			status = fe.Code
		}

		switch status {
		case fiber.StatusBadRequest:
			return writeError(c, status, "BAD_REQUEST", "bad request")
		case fiber.StatusNotFound:
			return writeError(c, status, "NOT_FOUND", "resource not found")
		case fiber.StatusMethodNotAllowed:
			return writeError(c, status, "METHOD_NOT_ALLOWED", "method not allowed")
		case fiber.StatusRequestEntityTooLarge:
			return writeError(c, status, "PAYLOAD_TOO_LARGE", "request body too large")
		default:
			return writeInternal(c, "internal server error", err)
		}
	}
}
