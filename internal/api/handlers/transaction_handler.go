package handlers

import (
	"finsight/internal/dto"
	"finsight/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type TransactionHandler struct {
	ledgerService *service.LedgerService
	logger        *zap.Logger
}

func NewTransactionHandler(ledgerService *service.LedgerService, logger *zap.Logger) *TransactionHandler {
	return &TransactionHandler{
		ledgerService: ledgerService,
		logger:        logger,
	}
}

// CreateTransaction godoc
// @Summary Add a transaction
// @Description Record an expense (negative amount) or income (positive amount)
// @Tags transactions
// @Accept json
// @Produce json
// @Param request body dto.CreateTransactionRequest true "Transaction"
// @Security Bearer
// @Success 201 {object} dto.TransactionResponse
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Router /api/v1/transactions [post]
func (h *TransactionHandler) CreateTransaction(c *fiber.Ctx) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Unauthorized",
		})
	}

	var req dto.CreateTransactionRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	tx, err := h.ledgerService.AddTransaction(c.Context(), userID, &req)
	if err != nil {
		return respondError(c, h.logger, err, "Failed to add transaction")
	}

	return c.Status(fiber.StatusCreated).JSON(dto.NewTransactionResponse(tx))
}

// ListTransactions godoc
// @Summary List transactions
// @Description List live transactions, newest first
// @Tags transactions
// @Produce json
// @Param limit query int false "Limit" default(50)
// @Param offset query int false "Offset" default(0)
// @Security Bearer
// @Success 200 {object} dto.ListTransactionsResponse
// @Failure 401 {object} map[string]string
// @Router /api/v1/transactions [get]
func (h *TransactionHandler) ListTransactions(c *fiber.Ctx) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Unauthorized",
		})
	}

	limit := c.QueryInt("limit", 50)
	offset := c.QueryInt("offset", 0)

	txs, version, err := h.ledgerService.ListTransactions(c.Context(), userID, limit, offset)
	if err != nil {
		return respondError(c, h.logger, err, "Failed to list transactions")
	}

	return c.JSON(dto.NewListTransactionsResponse(txs, version))
}

// GetTransaction godoc
// @Summary Get one transaction
// @Tags transactions
// @Produce json
// @Param id path string true "Transaction ID"
// @Security Bearer
// @Success 200 {object} dto.TransactionResponse
// @Failure 404 {object} map[string]string
// @Router /api/v1/transactions/{id} [get]
func (h *TransactionHandler) GetTransaction(c *fiber.Ctx) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Unauthorized",
		})
	}

	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid transaction ID",
		})
	}

	tx, err := h.ledgerService.GetTransaction(c.Context(), userID, id)
	if err != nil {
		return respondError(c, h.logger, err, "Failed to get transaction")
	}

	return c.JSON(dto.NewTransactionResponse(tx))
}

// UpdateTransaction godoc
// @Summary Edit a transaction
// @Description Apply a partial update; omitted fields keep their values
// @Tags transactions
// @Accept json
// @Produce json
// @Param id path string true "Transaction ID"
// @Param request body dto.UpdateTransactionRequest true "Fields to change"
// @Security Bearer
// @Success 200 {object} dto.TransactionResponse
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /api/v1/transactions/{id} [patch]
func (h *TransactionHandler) UpdateTransaction(c *fiber.Ctx) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Unauthorized",
		})
	}

	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid transaction ID",
		})
	}

	var req dto.UpdateTransactionRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	tx, err := h.ledgerService.EditTransaction(c.Context(), userID, id, &req)
	if err != nil {
		return respondError(c, h.logger, err, "Failed to edit transaction")
	}

	return c.JSON(dto.NewTransactionResponse(tx))
}

// DeleteTransaction godoc
// @Summary Remove a transaction
// @Description Tombstone a transaction; it stops counting immediately
// @Tags transactions
// @Produce json
// @Param id path string true "Transaction ID"
// @Security Bearer
// @Success 204
// @Failure 404 {object} map[string]string
// @Router /api/v1/transactions/{id} [delete]
func (h *TransactionHandler) DeleteTransaction(c *fiber.Ctx) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Unauthorized",
		})
	}

	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid transaction ID",
		})
	}

	if err := h.ledgerService.RemoveTransaction(c.Context(), userID, id); err != nil {
		return respondError(c, h.logger, err, "Failed to remove transaction")
	}

	return c.SendStatus(fiber.StatusNoContent)
}
