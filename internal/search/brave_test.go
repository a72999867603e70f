package search

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBraveSearch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/res/v1/web/search", r.URL.Path)
		assert.Equal(t, "mx-5 setup", r.URL.Query().Get("q"))
		assert.Equal(t, "test-key", r.Header.Get("X-Subscription-Token"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"web": {
				"results": [
					{"title": "MX-5 guide", "url": "https://guide.example"},
					{"title": "Okayama lap", "url": "https://lap.example"}
				]
			}
		}`))
	}))
	defer srv.Close()

	p := NewBraveProvider("test-key", srv.URL, 3)
	results, err := p.Search(context.Background(), "mx-5 setup")

	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "MX-5 guide", results[0].Title)
	assert.Equal(t, "https://guide.example", results[0].URL)
}

func TestBraveSearchTruncatesToLimit(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"web":{"results":[
			{"title":"a","url":"https://a.example"},
			{"title":"b","url":"https://b.example"},
			{"title":"c","url":"https://c.example"}
		]}}`))
	}))
	defer srv.Close()

	p := NewBraveProvider("test-key", srv.URL, 2)
	results, err := p.Search(context.Background(), "query")

	require.NoError(t, err)
	assert.Len(t, results, 2)
}

func TestBraveSearchHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	p := NewBraveProvider("test-key", srv.URL, 3)
	_, err := p.Search(context.Background(), "query")

	assert.ErrorContains(t, err, "429")
}
