package middleware

import (
	"crypto/subtle"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/meddela/dispatch/internal/constants"
	"go.uber.org/zap"
)

// CronAuth guards the campaign-processing trigger with a shared bearer
// secret. An unconfigured secret is a deployment fault (500), not an
// authorization failure.
func CronAuth(secret string, logger *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if secret == "" {
			logger.Error("Cron secret is not configured")
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"code":  constants.ErrCodeConfig,
				"error": constants.GetErrorMessage(constants.ErrCodeConfig),
			})
		}

		header := c.Get(fiber.HeaderAuthorization)
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || subtle.ConstantTimeCompare([]byte(token), []byte(secret)) != 1 {
			logger.Warn("Campaign trigger rejected, bad cron token",
				zap.String("ip", c.IP()))
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"code":  constants.ErrCodeUnauthorized,
				"error": constants.GetErrorMessage(constants.ErrCodeUnauthorized),
			})
		}

		return c.Next()
	}
}
