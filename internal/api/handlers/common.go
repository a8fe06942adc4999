package handlers

import (
	"errors"
	"time"

	"finsight/internal/ledger"
	"finsight/internal/models"
	"finsight/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// queryPeriod reads the optional ?period=YYYY-MM parameter, defaulting
// to the current month.
func queryPeriod(c *fiber.Ctx) (models.Period, error) {
	raw := c.Query("period")
	if raw == "" {
		return models.PeriodOf(time.Now().UTC()), nil
	}
	return models.ParsePeriod(raw)
}

func getUserID(c *fiber.Ctx) (uuid.UUID, error) {
	userIDStr, ok := c.Locals("userID").(string)
	if !ok {
		return uuid.Nil, fiber.ErrUnauthorized
	}

	userID, err := uuid.Parse(userIDStr)
	if err != nil {
		return uuid.Nil, err
	}

	return userID, nil
}

// respondError maps domain errors onto HTTP statuses. Anything outside
// the known taxonomy is logged and reported as the generic message so
// internals never leak to clients.
func respondError(c *fiber.Ctx, logger *zap.Logger, err error, fallback string) error {
	var validation *ledger.ValidationError
	var upstream *service.UpstreamError

	switch {
	case errors.Is(err, ledger.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Not found",
		})
	case errors.Is(err, ledger.ErrStaleVersion):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error": "Ledger version is stale, refresh and retry",
		})
	case errors.As(err, &validation):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": validation.Error(),
		})
	case errors.As(err, &upstream):
		logger.Error("Upstream assistant failure", zap.Error(err))
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
			"error": "Assistant is temporarily unavailable",
		})
	default:
		logger.Error(fallback, zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": fallback,
		})
	}
}
