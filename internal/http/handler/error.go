package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"docviewer/internal/http/middleware"
	"docviewer/internal/service"
)

// errorPayload defines the standardized error response body.
type errorPayload struct {
	Success   bool   `json:"success"`
	Error     string `json:"error"`
	Code      string `json:"code"`
	RequestID string `json:"request_id,omitempty"`
}

// writeError writes a standardized JSON error response without leaking internal errors.
//
// Parameters:
// - status: HTTP status code to return
// - code: machine-readable short error code (e.g., "NOT_FOUND", "TEXT_REQUIRED", "INTERNAL_ERROR")
// - message: human-readable safe message (no internal details)
func writeError(c *fiber.Ctx, status int, code, message string) error {
	return c.Status(status).JSON(errorPayload{
		Success:   false,
		Error:     message,
		Code:      code,
		RequestID: middleware.RequestIDFromCtx(c),
	})
}

// statusOf maps a service error kind to an HTTP status.
func statusOf(k service.Kind) int {
	switch k {
	case service.KindInvalidInput, service.KindExtraction:
		return fiber.StatusBadRequest
	case service.KindNotAuthenticated:
		return fiber.StatusUnauthorized
	case service.KindNotFound:
		return fiber.StatusNotFound
	}
	return fiber.StatusInternalServerError
}

// writeServiceError renders any error returned by a service. Internal causes are never sent.
func writeServiceError(c *fiber.Ctx, err error) error {
	se := service.AsError(err)
	return writeError(c, statusOf(se.Kind), se.Code, se.Message)
}

// ErrorHandler returns a Fiber global error handler that standardizes error responses.
func ErrorHandler() fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		var se *service.Error
		if errors.As(err, &se) {
			return writeServiceError(c, se)
		}

		status := fiber.StatusInternalServerError
		var fe *fiber.Error
		if errors.As(err, &fe) {
			status = fe.Code
		}

		switch status {
		case fiber.StatusBadRequest:
			return writeError(c, status, "BAD_REQUEST", "bad request")
		case fiber.StatusUnauthorized:
			msg := "authentication required"
			if fe != nil && fe.Message != "" {
				msg = fe.Message
			}
			return writeError(c, status, service.ErrNotAuthenticated.Code, msg)
		case fiber.StatusNotFound:
			return writeError(c, status, "NOT_FOUND", "resource not found")
		case fiber.StatusMethodNotAllowed:
			return writeError(c, status, "METHOD_NOT_ALLOWED", "method not allowed")
		case fiber.StatusRequestEntityTooLarge:
			return writeError(c, status, service.ErrFileTooLarge.Code, service.ErrFileTooLarge.Message)
		default:
			return writeError(c, status, "INTERNAL_ERROR", "internal server error")
		}
	}
}
