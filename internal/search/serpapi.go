package search

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"apexbox/internal/models"
)

// SerpProvider queries SerpAPI's Google engine. Configured second in the
// chain: it only sees traffic when Brave fails or comes back empty.
type SerpProvider struct {
	apiKey  string
	baseURL string
	limit   int
	client  *http.Client
}

func NewSerpProvider(apiKey, baseURL string, limit int) *SerpProvider {
	return &SerpProvider{
		apiKey:  apiKey,
		baseURL: strings.TrimRight(baseURL, "/"),
		limit:   limit,
		client:  &http.Client{},
	}
}

func (p *SerpProvider) Name() string {
	return "serpapi"
}

func (p *SerpProvider) Search(ctx context.Context, query string) ([]models.SearchResult, error) {
	endpoint := fmt.Sprintf("%s/search?q=%s&api_key=%s&engine=google&num=%d",
		p.baseURL, url.QueryEscape(query), url.QueryEscape(p.apiKey), p.limit)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("serpapi returned HTTP %d", resp.StatusCode)
	}

	var payload struct {
		OrganicResults []struct {
			Title string `json:"title"`
			Link  string `json:"link"`
		} `json:"organic_results"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("failed to decode serpapi response: %w", err)
	}

	results := make([]models.SearchResult, 0, len(payload.OrganicResults))
	for _, item := range payload.OrganicResults {
		if len(results) >= p.limit {
			break
		}
		results = append(results, models.SearchResult{Title: item.Title, URL: item.Link})
	}

	return results, nil
}
