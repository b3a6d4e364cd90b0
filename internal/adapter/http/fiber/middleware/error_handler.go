package middleware

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/seu-repo/sigec-posto/internal/service/simulation"
	"github.com/seu-repo/sigec-posto/pkg/config"
)

func ErrorHandler(log *zap.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		code := StatusFor(err)

		if code == fiber.StatusInternalServerError {
			log.Error("Internal Server Error", zap.Error(err), zap.String("path", c.Path()))
		}

		return c.Status(code).JSON(fiber.Map{
			"error": err.Error(),
		})
	}
}

// StatusFor maps domain errors to HTTP status codes.
func StatusFor(err error) int {
	var fe *fiber.Error
	switch {
	case errors.As(err, &fe):
		return fe.Code
	case errors.Is(err, config.ErrInvalidConfig):
		return fiber.StatusBadRequest
	case errors.Is(err, simulation.ErrPumpCountChanged), errors.Is(err, simulation.ErrStopped):
		return fiber.StatusConflict
	default:
		return fiber.StatusInternalServerError
	}
}
