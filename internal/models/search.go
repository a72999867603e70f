package models

// SearchResult is one hit from a web-search provider. Results live for a
// single request cycle and are never persisted.
type SearchResult struct {
	Title string `json:"title"`
	URL   string `json:"url"`
}
