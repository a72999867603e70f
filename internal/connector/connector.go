// Package connector implements the source connectors that produce raw
// candidate setup items from external systems. Each connector is
// independent: a failure in one surfaces as a SourceError and never affects
// the others.
package connector

import (
	"context"
	"fmt"

	"apexbox/internal/models"
)

// RawItem is one unprocessed candidate from a source, before normalization.
type RawItem struct {
	Title string
	URL   string
	Body  string
}

// Connector fetches raw candidate items for a query. Fetch re-issues
// network I/O on every call; results are finite and bounded by the
// caller's context deadline.
type Connector interface {
	Name() string
	Source() models.Source
	Fetch(ctx context.Context, query string) ([]RawItem, error)
}

// SourceError wraps any connector-level I/O, parsing, or auth failure so
// the coordinator can report it per source.
type SourceError struct {
	Source string
	Err    error
}

func (e *SourceError) Error() string {
	return fmt.Sprintf("source %s: %v", e.Source, e.Err)
}

func (e *SourceError) Unwrap() error {
	return e.Err
}
