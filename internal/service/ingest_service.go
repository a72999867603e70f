package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"apexbox/internal/connector"
	"apexbox/internal/dto"
	"apexbox/internal/models"

	"go.uber.org/zap"
)

// SetupStore is the slice of the setup repository the services need.
// InsertIfAbsent must be atomic under concurrent callers: two simultaneous
// inserts of the same fingerprint must yield exactly one true. Exists is a
// read-only lookup; writers go straight through InsertIfAbsent.
type SetupStore interface {
	Exists(ctx context.Context, fingerprint string) (bool, error)
	InsertIfAbsent(ctx context.Context, rec *models.SetupRecord) (bool, error)
	Recent(ctx context.Context, limit int) ([]*models.SetupRecord, error)
}

// IngestService drives the configured source connectors for one ingestion
// run: fetch, normalize, fingerprint, commit. Sources run in parallel and
// share no mutable state; the store insert is the only synchronization
// point.
type IngestService struct {
	connectors []connector.Connector
	normalizer *Normalizer
	store      SetupStore
	timeout    time.Duration
	logger     *zap.Logger
}

func NewIngestService(
	connectors []connector.Connector,
	normalizer *Normalizer,
	store SetupStore,
	timeout time.Duration,
	logger *zap.Logger,
) *IngestService {
	return &IngestService{
		connectors: connectors,
		normalizer: normalizer,
		store:      store,
		timeout:    timeout,
		logger:     logger,
	}
}

// Run executes one ingestion pass and reports per-source counts. A failed
// source degrades to zero contribution without touching its siblings.
func (s *IngestService) Run(ctx context.Context, req *dto.IngestRequest) *dto.IngestResponse {
	query := buildQuery(req.Car, req.Track)
	conns := s.selectConnectors(req.Sources)

	reports := make([]dto.SourceReport, len(conns))
	var wg sync.WaitGroup
	for i, conn := range conns {
		wg.Add(1)
		go func(i int, conn connector.Connector) {
			defer wg.Done()
			reports[i] = s.runSource(ctx, conn, query)
		}(i, conn)
	}
	wg.Wait()

	return &dto.IngestResponse{Query: query, Reports: reports}
}

func (s *IngestService) runSource(ctx context.Context, conn connector.Connector, query string) dto.SourceReport {
	report := dto.SourceReport{Source: conn.Name()}

	fetchCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	items, err := conn.Fetch(fetchCtx, query)
	if err != nil {
		s.logger.Warn("source fetch failed",
			zap.String("source", conn.Name()),
			zap.Error(err),
		)
		report.Error = err.Error()
		return report
	}

	for _, item := range items {
		report.Attempted++

		rec, err := s.normalizer.Normalize(item, conn.Source())
		if err != nil {
			continue
		}
		report.Normalized++

		inserted, err := s.store.InsertIfAbsent(ctx, rec)
		if err != nil {
			// Store failures are never swallowed: they end this
			// source's run and surface in its report.
			s.logger.Error("setup store insert failed",
				zap.String("source", conn.Name()),
				zap.String("fingerprint", rec.Fingerprint),
				zap.Error(err),
			)
			report.Error = fmt.Sprintf("store: %v", err)
			return report
		}
		if inserted {
			report.Inserted++
		} else {
			report.SkippedDuplicate++
		}
	}

	s.logger.Info("source ingestion completed",
		zap.String("source", conn.Name()),
		zap.Int("attempted", report.Attempted),
		zap.Int("inserted", report.Inserted),
		zap.Int("skipped_duplicate", report.SkippedDuplicate),
	)
	return report
}

// selectConnectors filters the configured list by the requested source
// names; an empty filter selects everything.
func (s *IngestService) selectConnectors(names []string) []connector.Connector {
	if len(names) == 0 {
		return s.connectors
	}

	wanted := make(map[string]bool, len(names))
	for _, name := range names {
		wanted[strings.ToLower(name)] = true
	}

	var selected []connector.Connector
	for _, conn := range s.connectors {
		if wanted[strings.ToLower(conn.Name())] || wanted[strings.ToLower(string(conn.Source()))] {
			selected = append(selected, conn)
		}
	}
	return selected
}

func buildQuery(car, track string) string {
	parts := make([]string, 0, 3)
	if car = strings.TrimSpace(car); car != "" {
		parts = append(parts, car)
	}
	if track = strings.TrimSpace(track); track != "" {
		parts = append(parts, track)
	}
	if len(parts) == 0 {
		parts = append(parts, "sim racing")
	}
	parts = append(parts, "setup")
	return strings.Join(parts, " ")
}
