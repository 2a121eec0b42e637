package handlers

import (
	"errors"

	"gudang/internal/services"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// failure describes how one route reports service errors.
type failure struct {
	message         string // used for internal errors and as the conflict fallback
	conflictStatus  int
	conflictMessage string
}

// respondError maps a service error onto a status code and a success:false envelope.
func respondError(c *fiber.Ctx, logger *zap.Logger, err error, f failure) error {
	var svcErr *services.Error
	if !errors.As(err, &svcErr) {
		svcErr = services.NewInternalError(f.message, err)
	}

	switch svcErr.Kind {
	case services.KindValidation:
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": svcErr.Message,
			"errors":  svcErr.Fields,
		})
	case services.KindNotFound:
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"success": false,
			"message": svcErr.Message,
		})
	case services.KindConflict:
		status, message := f.conflictStatus, f.conflictMessage
		if status == 0 {
			status = fiber.StatusConflict
		}
		if message == "" {
			message = f.message
		}
		return c.Status(status).JSON(fiber.Map{
			"success": false,
			"message": message,
			"error":   svcErr.Message,
		})
	case services.KindUnauthorized:
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"success": false,
			"message": svcErr.Message,
		})
	default:
		logger.Error(f.message, zap.String("path", c.Path()), zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": f.message,
			"error":   err.Error(),
		})
	}
}

func invalidBody(c *fiber.Ctx, err error) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"success": false,
		"message": "Invalid request body",
		"error":   err.Error(),
	})
}
