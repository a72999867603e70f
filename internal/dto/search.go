package dto

import "apexbox/internal/models"

// SearchResponse is the resolved fallback-chain outcome. Degraded is set
// when every provider failed or returned nothing.
type SearchResponse struct {
	Provider string                `json:"provider,omitempty"`
	Results  []models.SearchResult `json:"results"`
	Degraded bool                  `json:"degraded"`
}
