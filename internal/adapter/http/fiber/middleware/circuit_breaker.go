package middleware

import (
	"github.com/gofiber/fiber/v2"
	"github.com/sony/gobreaker"

	"github.com/seu-repo/sigec-posto/internal/infrastructure/circuitbreaker"
)

// CircuitBreaker counts handler errors and 5xx responses as failures and
// answers 503 while the breaker is open.
func CircuitBreaker(cb *gobreaker.CircuitBreaker) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var handlerErr error
		_, err := cb.Execute(func() (interface{}, error) {
			handlerErr = c.Next()
			if handlerErr != nil && StatusFor(handlerErr) >= fiber.StatusInternalServerError {
				return nil, handlerErr
			}
			if c.Response().StatusCode() >= fiber.StatusInternalServerError {
				return nil, fiber.NewError(c.Response().StatusCode())
			}
			return nil, nil
		})

		if circuitbreaker.IsOpen(err) {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
				"error": "Service temporarily unavailable",
			})
		}

		return handlerErr
	}
}
