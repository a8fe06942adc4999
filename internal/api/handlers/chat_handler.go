package handlers

import (
	"finsight/internal/dto"
	"finsight/internal/service"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type ChatHandler struct {
	chatService *service.ChatService
	logger      *zap.Logger
}

func NewChatHandler(chatService *service.ChatService, logger *zap.Logger) *ChatHandler {
	return &ChatHandler{
		chatService: chatService,
		logger:      logger,
	}
}

// Chat godoc
// @Summary Ask the assistant
// @Description Answer a question grounded in the caller's ledger; set ledger_version to reject stale answers
// @Tags chat
// @Accept json
// @Produce json
// @Param request body dto.ChatRequest true "Question"
// @Security Bearer
// @Success 200 {object} dto.ChatResponse
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Failure 502 {object} map[string]string
// @Router /api/v1/chat [post]
func (h *ChatHandler) Chat(c *fiber.Ctx) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Unauthorized",
		})
	}

	var req dto.ChatRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	resp, err := h.chatService.Chat(c.Context(), userID, &req)
	if err != nil {
		return respondError(c, h.logger, err, "Failed to answer")
	}

	return c.JSON(resp)
}

// GetHistory godoc
// @Summary Chat history
// @Description Recent question and answer exchanges, newest first
// @Tags chat
// @Produce json
// @Param limit query int false "Limit" default(20)
// @Security Bearer
// @Success 200 {object} dto.ChatHistoryResponse
// @Failure 401 {object} map[string]string
// @Router /api/v1/chat/history [get]
func (h *ChatHandler) GetHistory(c *fiber.Ctx) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Unauthorized",
		})
	}

	limit := c.QueryInt("limit", 20)
	messages, err := h.chatService.History(c.Context(), userID, limit)
	if err != nil {
		return respondError(c, h.logger, err, "Failed to load history")
	}

	return c.JSON(dto.NewChatHistoryResponse(messages))
}
