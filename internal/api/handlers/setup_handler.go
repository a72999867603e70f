package handlers

import (
	"apexbox/internal/dto"
	"apexbox/internal/models"
	"apexbox/internal/service"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type SetupHandler struct {
	store  service.SetupStore
	logger *zap.Logger
}

func NewSetupHandler(store service.SetupStore, logger *zap.Logger) *SetupHandler {
	return &SetupHandler{
		store:  store,
		logger: logger,
	}
}

// Recent godoc
// @Summary List recent setups
// @Description Newest stored setup records, ordered by creation time descending
// @Tags setups
// @Produce json
// @Param limit query int false "Limit" default(10)
// @Success 200 {array} dto.SetupResponse
// @Failure 500 {object} map[string]string
// @Router /api/v1/setups/recent [get]
func (h *SetupHandler) Recent(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 10)
	if limit < 1 || limit > 100 {
		limit = 10
	}

	records, err := h.store.Recent(c.Context(), limit)
	if err != nil {
		h.logger.Error("Failed to list recent setups", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to list setups",
		})
	}

	resp := make([]dto.SetupResponse, 0, len(records))
	for _, rec := range records {
		resp = append(resp, dto.NewSetupResponse(rec))
	}
	return c.JSON(resp)
}

// Exists godoc
// @Summary Check whether setup content is already stored
// @Description Computes the content fingerprint for the given fields and reports whether a record with it exists
// @Tags setups
// @Produce json
// @Param car query string true "Car"
// @Param track query string false "Track (defaults to Unknown)"
// @Param notes query string false "Notes"
// @Success 200 {object} dto.FingerprintCheckResponse
// @Failure 400 {object} map[string]string
// @Failure 500 {object} map[string]string
// @Router /api/v1/setups/exists [get]
func (h *SetupHandler) Exists(c *fiber.Ctx) error {
	car := c.Query("car")
	if car == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Query parameter 'car' is required",
		})
	}
	track := c.Query("track")
	if track == "" {
		track = models.TrackUnknown
	}

	fingerprint := models.Fingerprint(car, track, c.Query("notes"))
	exists, err := h.store.Exists(c.Context(), fingerprint)
	if err != nil {
		h.logger.Error("Fingerprint lookup failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Lookup failed",
		})
	}

	return c.JSON(dto.FingerprintCheckResponse{Fingerprint: fingerprint, Exists: exists})
}
