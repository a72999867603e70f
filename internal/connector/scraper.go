package connector

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"apexbox/internal/models"

	"go.uber.org/zap"
	"golang.org/x/net/html"
)

const maxScrapeBody = 1 << 20 // 1MB

// SiteScraper fetches a search page from one setup site and selects
// candidate elements by a configured CSS class. A selector that matches
// nothing (markup changed, empty result page) yields zero items and no
// error; only transport and parse failures are errors.
type SiteScraper struct {
	name      string
	source    models.Source
	urlFormat string
	itemClass string
	client    *http.Client
	logger    *zap.Logger
}

func NewSiteScraper(name string, source models.Source, urlFormat, itemClass string, logger *zap.Logger) *SiteScraper {
	return &SiteScraper{
		name:      name,
		source:    source,
		urlFormat: urlFormat,
		itemClass: itemClass,
		client:    &http.Client{},
		logger:    logger,
	}
}

func (s *SiteScraper) Name() string {
	return s.name
}

func (s *SiteScraper) Source() models.Source {
	return s.source
}

func (s *SiteScraper) Fetch(ctx context.Context, query string) ([]RawItem, error) {
	pageURL := fmt.Sprintf(s.urlFormat, url.QueryEscape(query))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, &SourceError{Source: s.name, Err: err}
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36")
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, &SourceError{Source: s.name, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &SourceError{Source: s.name, Err: fmt.Errorf("HTTP %d: %s", resp.StatusCode, resp.Status)}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxScrapeBody))
	if err != nil {
		return nil, &SourceError{Source: s.name, Err: fmt.Errorf("failed to read response: %w", err)}
	}

	doc, err := html.Parse(strings.NewReader(string(body)))
	if err != nil {
		return nil, &SourceError{Source: s.name, Err: fmt.Errorf("failed to parse HTML: %w", err)}
	}

	items := s.selectItems(doc)
	s.logger.Debug("scrape completed",
		zap.String("source", s.name),
		zap.String("url", pageURL),
		zap.Int("items", len(items)),
	)
	return items, nil
}

// selectItems walks the DOM and collects every element whose class
// attribute contains the configured item class.
func (s *SiteScraper) selectItems(doc *html.Node) []RawItem {
	var items []RawItem

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && hasClass(n, s.itemClass) {
			if item, ok := extractItem(n); ok {
				items = append(items, item)
			}
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}

	walk(doc)
	return items
}

// extractItem pulls the first link out of a candidate element. The link
// text becomes the title and the element's remaining text the body.
func extractItem(n *html.Node) (RawItem, bool) {
	var item RawItem

	var findLink func(*html.Node)
	findLink = func(n *html.Node) {
		if item.URL != "" {
			return
		}
		if n.Type == html.ElementNode && n.Data == "a" {
			item.URL = getAttr(n, "href")
			item.Title = textContent(n)
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			findLink(c)
		}
	}
	findLink(n)

	if item.URL == "" || item.Title == "" {
		return RawItem{}, false
	}

	item.Body = textContent(n)
	return item, true
}

func hasClass(n *html.Node, class string) bool {
	for _, attr := range n.Attr {
		if attr.Key != "class" {
			continue
		}
		for _, c := range strings.Fields(attr.Val) {
			if c == class {
				return true
			}
		}
	}
	return false
}

func getAttr(n *html.Node, key string) string {
	for _, attr := range n.Attr {
		if attr.Key == key {
			return attr.Val
		}
	}
	return ""
}

func textContent(n *html.Node) string {
	var sb strings.Builder

	var collect func(*html.Node)
	collect = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
			sb.WriteString(" ")
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			collect(c)
		}
	}
	collect(n)

	return strings.Join(strings.Fields(sb.String()), " ")
}
