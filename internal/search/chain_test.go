package search

import (
	"context"
	"errors"
	"testing"
	"time"

	"apexbox/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type stubProvider struct {
	name    string
	results []models.SearchResult
	err     error
	calls   int
}

func (p *stubProvider) Name() string { return p.name }

func (p *stubProvider) Search(ctx context.Context, query string) ([]models.SearchResult, error) {
	p.calls++
	if p.err != nil {
		return nil, p.err
	}
	return p.results, nil
}

func newTestChain(providers ...Provider) *Chain {
	return NewChain(providers, time.Second, zap.NewNop())
}

func TestChainFirstProviderWins(t *testing.T) {
	first := &stubProvider{name: "brave", results: []models.SearchResult{{Title: "a", URL: "https://a.example"}}}
	second := &stubProvider{name: "serpapi", results: []models.SearchResult{{Title: "b", URL: "https://b.example"}}}

	res := newTestChain(first, second).Resolve(context.Background(), "query")

	assert.Equal(t, "brave", res.Provider)
	require.Len(t, res.Results, 1)
	assert.Equal(t, "a", res.Results[0].Title)
	assert.Equal(t, 0, second.calls)
}

func TestChainFallsBackOnError(t *testing.T) {
	first := &stubProvider{name: "brave", err: errors.New("HTTP 429")}
	second := &stubProvider{name: "serpapi", results: []models.SearchResult{{Title: "b", URL: "https://b.example"}}}

	res := newTestChain(first, second).Resolve(context.Background(), "query")

	assert.Equal(t, "serpapi", res.Provider)
	assert.Equal(t, 1, first.calls)
	assert.Equal(t, 1, second.calls)
}

func TestChainFallsBackOnEmptyResults(t *testing.T) {
	first := &stubProvider{name: "brave"}
	second := &stubProvider{name: "serpapi", results: []models.SearchResult{{Title: "b", URL: "https://b.example"}}}

	res := newTestChain(first, second).Resolve(context.Background(), "query")

	assert.Equal(t, "serpapi", res.Provider)
}

func TestChainExhaustionIsNotAnError(t *testing.T) {
	first := &stubProvider{name: "brave", err: errors.New("HTTP 500")}
	second := &stubProvider{name: "serpapi"}

	res := newTestChain(first, second).Resolve(context.Background(), "query")

	assert.Empty(t, res.Provider)
	assert.Empty(t, res.Results)
	assert.Equal(t, NoResultsText, res.Format())
}

func TestResolutionFormat(t *testing.T) {
	res := Resolution{
		Provider: "brave",
		Results: []models.SearchResult{
			{Title: "MX-5 guide", URL: "https://guide.example"},
			{Title: "Okayama lap", URL: "https://lap.example"},
		},
	}

	assert.Equal(t, "- MX-5 guide: https://guide.example\n- Okayama lap: https://lap.example", res.Format())
}
