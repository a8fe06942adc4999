package handlers

import (
	"finsight/internal/dto"
	"finsight/internal/models"
	"finsight/internal/service"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type BudgetHandler struct {
	ledgerService *service.LedgerService
	logger        *zap.Logger
}

func NewBudgetHandler(ledgerService *service.LedgerService, logger *zap.Logger) *BudgetHandler {
	return &BudgetHandler{
		ledgerService: ledgerService,
		logger:        logger,
	}
}

// SetBudget godoc
// @Summary Set a budget
// @Description Create or replace the spending limit for (category, period)
// @Tags budgets
// @Accept json
// @Produce json
// @Param request body dto.SetBudgetRequest true "Budget"
// @Security Bearer
// @Success 200 {object} dto.BudgetResponse
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Router /api/v1/budgets [put]
func (h *BudgetHandler) SetBudget(c *fiber.Ctx) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Unauthorized",
		})
	}

	var req dto.SetBudgetRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	budget, err := h.ledgerService.SetBudget(c.Context(), userID, &req)
	if err != nil {
		return respondError(c, h.logger, err, "Failed to set budget")
	}

	return c.JSON(dto.NewBudgetResponse(budget))
}

// ListBudgets godoc
// @Summary List budgets
// @Description List budgets, optionally for one period
// @Tags budgets
// @Produce json
// @Param period query string false "Period YYYY-MM; empty for all"
// @Security Bearer
// @Success 200 {object} dto.ListBudgetsResponse
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Router /api/v1/budgets [get]
func (h *BudgetHandler) ListBudgets(c *fiber.Ctx) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Unauthorized",
		})
	}

	var period models.Period
	if raw := c.Query("period"); raw != "" {
		period, err = models.ParsePeriod(raw)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Invalid period, expected YYYY-MM",
			})
		}
	}

	budgets, version, err := h.ledgerService.Budgets(c.Context(), userID, period)
	if err != nil {
		return respondError(c, h.logger, err, "Failed to list budgets")
	}

	return c.JSON(dto.NewListBudgetsResponse(budgets, version))
}
