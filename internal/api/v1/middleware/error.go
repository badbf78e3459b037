package middleware

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/meddela/dispatch/internal/constants"
	"github.com/meddela/dispatch/internal/service"
)

func ErrorHandler() fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		var serviceErr service.Error
		if errors.As(err, &serviceErr) {
			return handleServiceError(c, serviceErr)
		}

		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) {
			return c.Status(fiberErr.Code).JSON(fiber.Map{
				"error": fiberErr.Message,
			})
		}

		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"code":  constants.ErrCodeInternalError,
			"error": constants.GetErrorMessage(constants.ErrCodeInternalError),
		})
	}
}

func handleServiceError(c *fiber.Ctx, err service.Error) error {
	status := constants.GetHTTPStatus(err.Code)

	body := fiber.Map{
		"code":  err.Code,
		"error": err.Error(),
	}

	if len(err.Tokens) > 0 {
		body["unmatched"] = err.Tokens
	}

	// Internal causes are not echoed to the caller.
	if status == 500 {
		body["error"] = constants.GetErrorMessage(constants.ErrCodeInternalError)
	}

	return c.Status(status).JSON(body)
}
