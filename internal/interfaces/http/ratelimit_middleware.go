package http

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/mvinueza/contaec/internal/application/dto"
	"github.com/mvinueza/contaec/pkg/security"
)

// RateLimit devuelve un middleware Fiber que limita peticiones por IP con
// ventana fija. Superado el máximo responde 429 con Retry-After apuntando
// al fin de la ventana.
func RateLimit(guard *security.Guard, max int, window time.Duration) fiber.Handler {
	return func(c *fiber.Ctx) error {
		key := c.Route().Path + "|" + c.IP()
		result := guard.CheckRateLimit(key, max, window)
		c.Set("X-RateLimit-Remaining", strconv.Itoa(result.Remaining))
		if !result.Allowed {
			retryAfter := int(time.Until(result.ResetTime).Seconds())
			if retryAfter < 1 {
				retryAfter = 1
			}
			c.Set("Retry-After", strconv.Itoa(retryAfter))
			return c.Status(fiber.StatusTooManyRequests).JSON(dto.ErrorResponse{
				Code:    "RATE_LIMITED",
				Message: "demasiadas peticiones, intente más tarde",
			})
		}
		return c.Next()
	}
}
