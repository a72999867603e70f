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

// BraveProvider queries the Brave Search REST API.
type BraveProvider struct {
	apiKey  string
	baseURL string
	limit   int
	client  *http.Client
}

func NewBraveProvider(apiKey, baseURL string, limit int) *BraveProvider {
	return &BraveProvider{
		apiKey:  apiKey,
		baseURL: strings.TrimRight(baseURL, "/"),
		limit:   limit,
		client:  &http.Client{},
	}
}

func (p *BraveProvider) Name() string {
	return "brave"
}

func (p *BraveProvider) Search(ctx context.Context, query string) ([]models.SearchResult, error) {
	endpoint := fmt.Sprintf("%s/res/v1/web/search?q=%s&count=%d",
		p.baseURL, url.QueryEscape(query), p.limit)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Subscription-Token", p.apiKey)

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("brave search returned HTTP %d", resp.StatusCode)
	}

	var payload struct {
		Web struct {
			Results []struct {
				Title string `json:"title"`
				URL   string `json:"url"`
			} `json:"results"`
		} `json:"web"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("failed to decode brave response: %w", err)
	}

	results := make([]models.SearchResult, 0, len(payload.Web.Results))
	for _, item := range payload.Web.Results {
		if len(results) >= p.limit {
			break
		}
		results = append(results, models.SearchResult{Title: item.Title, URL: item.URL})
	}

	return results, nil
}
