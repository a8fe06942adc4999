package handlers

import (
	"finsight/internal/dto"
	"finsight/internal/service"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type AnalyticsHandler struct {
	ledgerService *service.LedgerService
	logger        *zap.Logger
}

func NewAnalyticsHandler(ledgerService *service.LedgerService, logger *zap.Logger) *AnalyticsHandler {
	return &AnalyticsHandler{
		ledgerService: ledgerService,
		logger:        logger,
	}
}

// GetSnapshot godoc
// @Summary Period snapshot
// @Description Per-category spend against budgets plus totals for one month
// @Tags analytics
// @Produce json
// @Param period query string false "Period YYYY-MM" default(current month)
// @Security Bearer
// @Success 200 {object} dto.SnapshotResponse
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Router /api/v1/analytics/snapshot [get]
func (h *AnalyticsHandler) GetSnapshot(c *fiber.Ctx) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Unauthorized",
		})
	}

	period, err := queryPeriod(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid period, expected YYYY-MM",
		})
	}

	snap, err := h.ledgerService.Snapshot(c.Context(), userID, period)
	if err != nil {
		return respondError(c, h.logger, err, "Failed to compute snapshot")
	}

	return c.JSON(dto.NewSnapshotResponse(snap))
}

// GetInsights godoc
// @Summary Budget and trend insights
// @Description Rule-derived observations for one month, most severe first
// @Tags analytics
// @Produce json
// @Param period query string false "Period YYYY-MM" default(current month)
// @Security Bearer
// @Success 200 {object} dto.InsightsResponse
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Router /api/v1/insights [get]
func (h *AnalyticsHandler) GetInsights(c *fiber.Ctx) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Unauthorized",
		})
	}

	period, err := queryPeriod(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid period, expected YYYY-MM",
		})
	}

	insights, version, err := h.ledgerService.Insights(c.Context(), userID, period)
	if err != nil {
		return respondError(c, h.logger, err, "Failed to derive insights")
	}

	return c.JSON(dto.NewInsightsResponse(period, version, insights))
}

// GetTrends godoc
// @Summary Daily spending trends
// @Description Per-day, per-category expenses over a trailing window
// @Tags analytics
// @Produce json
// @Param days query int false "Window size in days" default(30)
// @Security Bearer
// @Success 200 {object} dto.TrendsResponse
// @Failure 401 {object} map[string]string
// @Router /api/v1/analytics/trends [get]
func (h *AnalyticsHandler) GetTrends(c *fiber.Ctx) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Unauthorized",
		})
	}

	days := c.QueryInt("days", 30)
	points, err := h.ledgerService.Trends(c.Context(), userID, days)
	if err != nil {
		return respondError(c, h.logger, err, "Failed to compute trends")
	}

	return c.JSON(dto.NewTrendsResponse(days, points))
}

// GetSeries godoc
// @Summary Monthly totals
// @Description Income and spend totals for the trailing months
// @Tags analytics
// @Produce json
// @Param period query string false "Last period YYYY-MM" default(current month)
// @Param months query int false "Number of months" default(6)
// @Security Bearer
// @Success 200 {object} dto.PeriodSeriesResponse
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Router /api/v1/analytics/series [get]
func (h *AnalyticsHandler) GetSeries(c *fiber.Ctx) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Unauthorized",
		})
	}

	period, err := queryPeriod(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid period, expected YYYY-MM",
		})
	}

	months := c.QueryInt("months", 6)
	series, err := h.ledgerService.PeriodSeries(c.Context(), userID, period, months)
	if err != nil {
		return respondError(c, h.logger, err, "Failed to compute series")
	}

	return c.JSON(dto.NewPeriodSeriesResponse(series))
}

// GetForecast godoc
// @Summary Spending forecast
// @Description Projected per-category spend for a month from recent history
// @Tags analytics
// @Produce json
// @Param period query string false "Period YYYY-MM" default(current month)
// @Param lookback query int false "Months of history" default(3)
// @Security Bearer
// @Success 200 {object} dto.ForecastResponse
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Router /api/v1/analytics/forecast [get]
func (h *AnalyticsHandler) GetForecast(c *fiber.Ctx) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Unauthorized",
		})
	}

	period, err := queryPeriod(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid period, expected YYYY-MM",
		})
	}

	lookback := c.QueryInt("lookback", 3)
	forecast, err := h.ledgerService.Forecast(c.Context(), userID, period, lookback)
	if err != nil {
		return respondError(c, h.logger, err, "Failed to compute forecast")
	}

	return c.JSON(dto.NewForecastResponse(period, lookback, forecast))
}

// GetAnomalies godoc
// @Summary Outlier expenses
// @Description Expenses far outside their category's usual range
// @Tags analytics
// @Produce json
// @Param period query string false "Period YYYY-MM" default(current month)
// @Security Bearer
// @Success 200 {object} dto.AnomaliesResponse
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Router /api/v1/analytics/anomalies [get]
func (h *AnalyticsHandler) GetAnomalies(c *fiber.Ctx) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Unauthorized",
		})
	}

	period, err := queryPeriod(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid period, expected YYYY-MM",
		})
	}

	anomalies, err := h.ledgerService.Anomalies(c.Context(), userID, period)
	if err != nil {
		return respondError(c, h.logger, err, "Failed to detect anomalies")
	}

	return c.JSON(dto.NewAnomaliesResponse(period, anomalies))
}
