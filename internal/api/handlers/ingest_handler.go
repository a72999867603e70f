package handlers

import (
	"apexbox/internal/dto"
	"apexbox/internal/service"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type IngestHandler struct {
	ingestService *service.IngestService
	logger        *zap.Logger
}

func NewIngestHandler(ingestService *service.IngestService, logger *zap.Logger) *IngestHandler {
	return &IngestHandler{
		ingestService: ingestService,
		logger:        logger,
	}
}

// Run godoc
// @Summary Trigger an ingestion run
// @Description Pull candidate setups from the configured sources, dedupe and store them. Returns per-source counts; a failed source is reported, never a 500.
// @Tags ingest
// @Accept json
// @Produce json
// @Param request body dto.IngestRequest true "Ingestion scope"
// @Success 200 {object} dto.IngestResponse
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Security Bearer
// @Router /api/v1/ingest [post]
func (h *IngestHandler) Run(c *fiber.Ctx) error {
	var req dto.IngestRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	resp := h.ingestService.Run(c.Context(), &req)
	return c.JSON(resp)
}
