package handlers

import (
	"errors"
	"time"

	"apexbox/internal/dto"
	"apexbox/internal/service"

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
// @Summary Ask for a setup
// @Description Grounds the prompt on search results and stored setups, then asks the completion provider. Degraded search context still answers; a completion failure does not.
// @Tags chat
// @Accept json
// @Produce json
// @Param request body dto.ChatRequest true "User prompt"
// @Success 200 {object} dto.ChatResponse
// @Failure 400 {object} map[string]string
// @Failure 500 {object} map[string]string
// @Failure 502 {object} map[string]string
// @Router /chat [post]
func (h *ChatHandler) Chat(c *fiber.Ctx) error {
	var req dto.ChatRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	if req.Prompt == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Prompt is required",
		})
	}

	exchange, err := h.chatService.Answer(c.Context(), req.Prompt)
	if err != nil {
		h.logger.Error("Chat request failed", zap.Error(err))
		// A store fault is ours; a completion fault is the upstream's.
		if errors.Is(err, service.ErrStoreFailure) {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Storage failed",
			})
		}
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
			"error": "Completion failed",
		})
	}

	return c.JSON(dto.ChatResponse{Response: exchange.Response})
}

// History godoc
// @Summary List recent chat exchanges
// @Description Newest completed prompt/response pairs, most recent first
// @Tags chat
// @Produce json
// @Param limit query int false "Limit" default(20)
// @Success 200 {array} dto.ChatExchangeResponse
// @Failure 500 {object} map[string]string
// @Router /chat/history [get]
func (h *ChatHandler) History(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 20)
	if limit < 1 || limit > 100 {
		limit = 20
	}

	exchanges, err := h.chatService.History(c.Context(), limit)
	if err != nil {
		h.logger.Error("Failed to list chat history", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to list history",
		})
	}

	resp := make([]dto.ChatExchangeResponse, 0, len(exchanges))
	for _, ex := range exchanges {
		resp = append(resp, dto.ChatExchangeResponse{
			ID:        ex.ID.String(),
			Prompt:    ex.Prompt,
			Response:  ex.Response,
			CreatedAt: ex.CreatedAt.Format(time.RFC3339),
		})
	}
	return c.JSON(resp)
}
