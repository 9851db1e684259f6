package server

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/placette/messaging/internal/apierr"
	"github.com/placette/messaging/internal/wire"
)

// statusFor maps the error taxonomy onto HTTP statuses.
func statusFor(code apierr.Code) int {
	switch code {
	case apierr.Unauthorized:
		return fiber.StatusUnauthorized
	case apierr.Forbidden:
		return fiber.StatusForbidden
	case apierr.NotFound:
		return fiber.StatusNotFound
	case apierr.InvalidArgument:
		return fiber.StatusBadRequest
	case apierr.Transient:
		return fiber.StatusServiceUnavailable
	default:
		return fiber.StatusInternalServerError
	}
}

func writeError(c *fiber.Ctx, code apierr.Code, format string, args ...any) error {
	return c.Status(statusFor(code)).JSON(wire.ErrorResponse{
		Status:  "error",
		Code:    string(code),
		Message: fmt.Sprintf(format, args...),
	})
}
