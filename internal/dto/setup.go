package dto

import (
	"time"

	"apexbox/internal/models"
)

// FingerprintCheckResponse reports whether content with the given
// fingerprint is already stored.
type FingerprintCheckResponse struct {
	Fingerprint string `json:"fingerprint"`
	Exists      bool   `json:"exists"`
}

type SetupResponse struct {
	ID        string `json:"id"`
	Car       string `json:"car"`
	Track     string `json:"track"`
	URL       string `json:"url"`
	Source    string `json:"source"`
	Notes     string `json:"notes,omitempty"`
	CreatedAt string `json:"created_at"`
}

func NewSetupResponse(rec *models.SetupRecord) SetupResponse {
	return SetupResponse{
		ID:        rec.ID.String(),
		Car:       rec.Car,
		Track:     rec.Track,
		URL:       rec.URL,
		Source:    string(rec.Source),
		Notes:     rec.Notes,
		CreatedAt: rec.CreatedAt.Format(time.RFC3339),
	}
}
