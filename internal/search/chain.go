package search

import (
	"context"
	"strings"
	"time"

	"apexbox/internal/models"

	"go.uber.org/zap"
)

// NoResultsText is returned when every provider failed or came back empty.
// The chat flow proceeds with this degraded context instead of failing.
const NoResultsText = "No relevant search results found."

// Resolution is the outcome of one chain traversal. An empty Provider
// means total exhaustion.
type Resolution struct {
	Provider string                `json:"provider,omitempty"`
	Results  []models.SearchResult `json:"results"`
}

// Format renders results as prompt-ready "- title: url" lines.
func (r Resolution) Format() string {
	if len(r.Results) == 0 {
		return NoResultsText
	}
	lines := make([]string, 0, len(r.Results))
	for _, res := range r.Results {
		lines = append(lines, "- "+res.Title+": "+res.URL)
	}
	return strings.Join(lines, "\n")
}

// Chain tries providers strictly in configuration order. Attempts are
// sequential, never raced: determinism is worth more than latency here.
type Chain struct {
	providers []Provider
	timeout   time.Duration
	logger    *zap.Logger
}

func NewChain(providers []Provider, timeout time.Duration, logger *zap.Logger) *Chain {
	return &Chain{
		providers: providers,
		timeout:   timeout,
		logger:    logger,
	}
}

// Resolve walks the chain until a provider yields at least one result.
// Provider errors and empty result sets both advance to the next provider;
// exhaustion returns an empty Resolution, never an error.
func (c *Chain) Resolve(ctx context.Context, query string) Resolution {
	for _, provider := range c.providers {
		attemptCtx, cancel := context.WithTimeout(ctx, c.timeout)
		results, err := provider.Search(attemptCtx, query)
		cancel()

		if err != nil {
			c.logger.Warn("search provider failed, trying next",
				zap.String("provider", provider.Name()),
				zap.Error(err),
			)
			continue
		}
		if len(results) == 0 {
			c.logger.Info("search provider returned no results, trying next",
				zap.String("provider", provider.Name()),
			)
			continue
		}

		return Resolution{Provider: provider.Name(), Results: results}
	}

	c.logger.Warn("all search providers exhausted", zap.String("query", query))
	return Resolution{}
}
