// Package search implements the web-search fallback chain: an ordered list
// of interchangeable providers tried sequentially until one yields results.
package search

import (
	"context"

	"apexbox/internal/models"
)

// Provider is one external web-search backend.
type Provider interface {
	Name() string
	// Search returns up to the provider's configured result limit.
	// An empty slice with a nil error means "no results"; the chain
	// treats both the same way and moves on.
	Search(ctx context.Context, query string) ([]models.SearchResult, error)
}
