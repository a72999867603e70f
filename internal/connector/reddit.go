package connector

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"apexbox/internal/models"
	"apexbox/pkg/config"

	"go.uber.org/zap"
)

// RedditConnector searches a fixed subreddit through the official API.
// Every Fetch performs a fresh client-credentials token exchange; tokens
// are not cached because ingestion runs are infrequent and a stale token
// would just turn into a SourceError anyway.
type RedditConnector struct {
	cfg    config.RedditConfig
	client *http.Client
	logger *zap.Logger
}

func NewRedditConnector(cfg config.RedditConfig, logger *zap.Logger) *RedditConnector {
	return &RedditConnector{
		cfg:    cfg,
		client: &http.Client{},
		logger: logger,
	}
}

func (r *RedditConnector) Name() string {
	return "reddit"
}

func (r *RedditConnector) Source() models.Source {
	return models.SourceSocial
}

func (r *RedditConnector) Fetch(ctx context.Context, query string) ([]RawItem, error) {
	token, err := r.authenticate(ctx)
	if err != nil {
		return nil, &SourceError{Source: r.Name(), Err: fmt.Errorf("auth failed: %w", err)}
	}

	searchURL := fmt.Sprintf("%s/r/%s/search.json?q=%s&restrict_sr=1&sort=new&limit=%d",
		strings.TrimRight(r.cfg.BaseURL, "/"),
		url.PathEscape(r.cfg.Subreddit),
		url.QueryEscape(query),
		r.cfg.ResultLimit,
	)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, searchURL, nil)
	if err != nil {
		return nil, &SourceError{Source: r.Name(), Err: err}
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("User-Agent", r.cfg.UserAgent)

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, &SourceError{Source: r.Name(), Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &SourceError{Source: r.Name(), Err: fmt.Errorf("search returned HTTP %d", resp.StatusCode)}
	}

	var listing struct {
		Data struct {
			Children []struct {
				Data struct {
					Title     string `json:"title"`
					Selftext  string `json:"selftext"`
					Permalink string `json:"permalink"`
				} `json:"data"`
			} `json:"children"`
		} `json:"data"`
	}
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxScrapeBody)).Decode(&listing); err != nil {
		return nil, &SourceError{Source: r.Name(), Err: fmt.Errorf("failed to decode listing: %w", err)}
	}

	items := make([]RawItem, 0, len(listing.Data.Children))
	for _, child := range listing.Data.Children {
		if child.Data.Title == "" {
			continue
		}
		items = append(items, RawItem{
			Title: child.Data.Title,
			URL:   "https://www.reddit.com" + child.Data.Permalink,
			Body:  child.Data.Selftext,
		})
	}

	r.logger.Debug("reddit search completed",
		zap.String("subreddit", r.cfg.Subreddit),
		zap.Int("items", len(items)),
	)
	return items, nil
}

// authenticate performs the OAuth2 client-credentials exchange.
func (r *RedditConnector) authenticate(ctx context.Context) (string, error) {
	form := url.Values{}
	form.Set("grant_type", "client_credentials")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.cfg.TokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	req.SetBasicAuth(r.cfg.ClientID, r.cfg.ClientSecret)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("User-Agent", r.cfg.UserAgent)

	resp, err := r.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("token endpoint returned HTTP %d", resp.StatusCode)
	}

	var tokenResp struct {
		AccessToken string `json:"access_token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&tokenResp); err != nil {
		return "", fmt.Errorf("failed to decode token response: %w", err)
	}
	if tokenResp.AccessToken == "" {
		return "", fmt.Errorf("token response missing access_token")
	}

	return tokenResp.AccessToken, nil
}
