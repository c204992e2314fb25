package handlers

import (
	"errors"

	"github.com/Doscoding187/real-estate-portal-sub005/internal/services"
	"github.com/gofiber/fiber/v2"
)

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// ErrorHandler is the custom error handler for Fiber. Typed service errors
// map to client statuses; everything else is a 500.
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal Server Error"

	switch {
	case errors.Is(err, services.ErrInvalidBounds):
		code = fiber.StatusBadRequest
		message = err.Error()
	case errors.Is(err, services.ErrLocationNotFound):
		code = fiber.StatusNotFound
		message = "Location not found"
	case errors.Is(err, services.ErrParentNotFound):
		code = fiber.StatusUnprocessableEntity
		message = "Parent location not found"
	default:
		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) {
			code = fiberErr.Code
			message = fiberErr.Message
		}
	}

	return c.Status(code).JSON(ErrorResponse{
		Error: message,
	})
}
