package search

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSerpSearch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/search", r.URL.Path)
		assert.Equal(t, "mx-5 setup", r.URL.Query().Get("q"))
		assert.Equal(t, "test-key", r.URL.Query().Get("api_key"))
		assert.Equal(t, "google", r.URL.Query().Get("engine"))

		_, _ = w.Write([]byte(`{
			"organic_results": [
				{"title": "MX-5 guide", "link": "https://guide.example"}
			]
		}`))
	}))
	defer srv.Close()

	p := NewSerpProvider("test-key", srv.URL, 3)
	results, err := p.Search(context.Background(), "mx-5 setup")

	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "MX-5 guide", results[0].Title)
	assert.Equal(t, "https://guide.example", results[0].URL)
}

func TestSerpSearchHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	p := NewSerpProvider("bad-key", srv.URL, 3)
	_, err := p.Search(context.Background(), "query")

	assert.ErrorContains(t, err, "401")
}
