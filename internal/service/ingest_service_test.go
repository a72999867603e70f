package service

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	"apexbox/internal/connector"
	"apexbox/internal/dto"
	"apexbox/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeConnector struct {
	name   string
	source models.Source
	items  []connector.RawItem
	err    error
}

func (f *fakeConnector) Name() string          { return f.name }
func (f *fakeConnector) Source() models.Source { return f.source }

func (f *fakeConnector) Fetch(ctx context.Context, query string) ([]connector.RawItem, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.items, nil
}

// memStore is an in-memory SetupStore with the same insert-if-absent
// contract as the Postgres repository.
type memStore struct {
	mu         sync.Mutex
	byFp       map[string]*models.SetupRecord
	records    []*models.SetupRecord
	fail       error
	failInsert error
}

func newMemStore() *memStore {
	return &memStore{byFp: make(map[string]*models.SetupRecord)}
}

func (m *memStore) InsertIfAbsent(ctx context.Context, rec *models.SetupRecord) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail != nil {
		return false, m.fail
	}
	if m.failInsert != nil {
		return false, m.failInsert
	}
	if _, ok := m.byFp[rec.Fingerprint]; ok {
		return false, nil
	}
	m.byFp[rec.Fingerprint] = rec
	m.records = append(m.records, rec)
	return true, nil
}

func (m *memStore) Exists(ctx context.Context, fingerprint string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail != nil {
		return false, m.fail
	}
	_, ok := m.byFp[fingerprint]
	return ok, nil
}

func (m *memStore) Recent(ctx context.Context, limit int) ([]*models.SetupRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail != nil {
		return nil, m.fail
	}
	out := make([]*models.SetupRecord, len(m.records))
	copy(out, m.records)
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func newTestIngestService(store SetupStore, conns ...connector.Connector) *IngestService {
	logger := zap.NewNop()
	return NewIngestService(conns, NewNormalizer(logger), store, 5*time.Second, logger)
}

func reportFor(t *testing.T, resp *dto.IngestResponse, source string) dto.SourceReport {
	t.Helper()
	for _, r := range resp.Reports {
		if r.Source == source {
			return r
		}
	}
	t.Fatalf("no report for source %q", source)
	return dto.SourceReport{}
}

func TestIngestRunCountsPerSource(t *testing.T) {
	store := newMemStore()

	// Pre-seed the content both sites carry: the sources run in parallel,
	// so the duplicate skip must not depend on which one commits first.
	_, err := store.InsertIfAbsent(context.Background(),
		models.NewSetupRecord("Mazda MX-5", "Okayama", "https://seed.example/1", models.SourceRsetups, "soft front"))
	require.NoError(t, err)

	svc := newTestIngestService(store,
		&fakeConnector{
			name:   "rsetups",
			source: models.SourceRsetups,
			items: []connector.RawItem{
				{Title: "Mazda MX-5 - Okayama", URL: "https://a.example/1", Body: "soft front"},
				{Title: "BMW M4 GT3 - Spa", URL: "https://a.example/2", Body: "low wing"},
			},
		},
		&fakeConnector{
			name:   "gridbank",
			source: models.SourceGridbank,
			items: []connector.RawItem{
				{Title: "Mazda MX-5 - Okayama", URL: "https://b.example/9", Body: "soft front"},
			},
		},
	)

	resp := svc.Run(context.Background(), &dto.IngestRequest{Car: "Mazda MX-5", Track: "Okayama"})

	require.Len(t, resp.Reports, 2)
	assert.Equal(t, "Mazda MX-5 Okayama setup", resp.Query)

	rs := reportFor(t, resp, "rsetups")
	assert.Equal(t, 2, rs.Attempted)
	assert.Equal(t, 2, rs.Normalized)
	assert.Equal(t, 1, rs.Inserted)
	assert.Equal(t, 1, rs.SkippedDuplicate)

	gb := reportFor(t, resp, "gridbank")
	assert.Equal(t, 1, gb.Attempted)
	assert.Equal(t, 0, gb.Inserted)
	assert.Equal(t, 1, gb.SkippedDuplicate)

	assert.Len(t, store.records, 2)
}

func TestIngestFailedSourceIsolated(t *testing.T) {
	store := newMemStore()
	svc := newTestIngestService(store,
		&fakeConnector{
			name:   "rsetups",
			source: models.SourceRsetups,
			err:    &connector.SourceError{Source: "rsetups", Err: errors.New("HTTP 503")},
		},
		&fakeConnector{
			name:   "gridbank",
			source: models.SourceGridbank,
			items: []connector.RawItem{
				{Title: "Porsche 992 - Monza", URL: "https://b.example/1"},
			},
		},
	)

	resp := svc.Run(context.Background(), &dto.IngestRequest{})

	rs := reportFor(t, resp, "rsetups")
	assert.NotEmpty(t, rs.Error)
	assert.Equal(t, 0, rs.Inserted)

	gb := reportFor(t, resp, "gridbank")
	assert.Empty(t, gb.Error)
	assert.Equal(t, 1, gb.Inserted)
}

func TestIngestDropsUnparsableItems(t *testing.T) {
	store := newMemStore()
	svc := newTestIngestService(store,
		&fakeConnector{
			name:   "rsetups",
			source: models.SourceRsetups,
			items: []connector.RawItem{
				{Title: "Mazda MX-5 - Okayama", URL: "https://a.example/1"},
				{Title: "   ", URL: "https://a.example/blank"},
			},
		},
	)

	resp := svc.Run(context.Background(), &dto.IngestRequest{})

	rs := reportFor(t, resp, "rsetups")
	assert.Equal(t, 2, rs.Attempted)
	assert.Equal(t, 1, rs.Normalized)
	assert.Equal(t, 1, rs.Inserted)
	assert.Empty(t, rs.Error)
}

func TestIngestStoreFailureSurfacesInReport(t *testing.T) {
	store := newMemStore()
	store.fail = errors.New("connection refused")
	svc := newTestIngestService(store,
		&fakeConnector{
			name:   "rsetups",
			source: models.SourceRsetups,
			items: []connector.RawItem{
				{Title: "Mazda MX-5 - Okayama", URL: "https://a.example/1"},
			},
		},
	)

	resp := svc.Run(context.Background(), &dto.IngestRequest{})

	rs := reportFor(t, resp, "rsetups")
	assert.Contains(t, rs.Error, "store:")
	assert.Equal(t, 0, rs.Inserted)
}

func TestIngestSourceFilter(t *testing.T) {
	store := newMemStore()
	svc := newTestIngestService(store,
		&fakeConnector{name: "rsetups", source: models.SourceRsetups},
		&fakeConnector{name: "gridbank", source: models.SourceGridbank},
		&fakeConnector{name: "reddit", source: models.SourceSocial},
	)

	resp := svc.Run(context.Background(), &dto.IngestRequest{Sources: []string{"Reddit"}})
	require.Len(t, resp.Reports, 1)
	assert.Equal(t, "reddit", resp.Reports[0].Source)

	// Matching by source identifier works too.
	resp = svc.Run(context.Background(), &dto.IngestRequest{Sources: []string{"scraped-gridbank"}})
	require.Len(t, resp.Reports, 1)
	assert.Equal(t, "gridbank", resp.Reports[0].Source)

	// Empty filter selects everything.
	resp = svc.Run(context.Background(), &dto.IngestRequest{})
	assert.Len(t, resp.Reports, 3)
}

func TestInsertIfAbsentConcurrentSingleWinner(t *testing.T) {
	store := newMemStore()
	rec := func() *models.SetupRecord {
		return models.NewSetupRecord("Mazda MX-5", "Okayama", "https://a.example/1", models.SourceRsetups, "soft front")
	}

	const workers = 16
	results := make([]bool, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			ok, err := store.InsertIfAbsent(context.Background(), rec())
			assert.NoError(t, err)
			results[i] = ok
		}(i)
	}
	wg.Wait()

	inserted := 0
	for _, ok := range results {
		if ok {
			inserted++
		}
	}
	assert.Equal(t, 1, inserted)
	assert.Len(t, store.records, 1)
}
