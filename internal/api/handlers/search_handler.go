package handlers

import (
	"apexbox/internal/dto"
	"apexbox/internal/service"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type SearchHandler struct {
	resolver service.SearchResolver
	logger   *zap.Logger
}

func NewSearchHandler(resolver service.SearchResolver, logger *zap.Logger) *SearchHandler {
	return &SearchHandler{
		resolver: resolver,
		logger:   logger,
	}
}

// Resolve godoc
// @Summary Resolve a query through the search fallback chain
// @Description Tries the configured providers in order; total exhaustion returns an empty, degraded result, never an error
// @Tags search
// @Produce json
// @Param q query string true "Search query"
// @Success 200 {object} dto.SearchResponse
// @Failure 400 {object} map[string]string
// @Router /api/v1/search [get]
func (h *SearchHandler) Resolve(c *fiber.Ctx) error {
	query := c.Query("q")
	if query == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Query parameter 'q' is required",
		})
	}

	resolution := h.resolver.Resolve(c.Context(), query)
	return c.JSON(dto.SearchResponse{
		Provider: resolution.Provider,
		Results:  resolution.Results,
		Degraded: len(resolution.Results) == 0,
	})
}
