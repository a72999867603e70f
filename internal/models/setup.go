package models

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Source records where a setup came from. It is fixed at creation and never
// mutated afterwards.
type Source string

const (
	SourceRsetups  Source = "scraped-rsetups"
	SourceGridbank Source = "scraped-gridbank"
	SourceSocial   Source = "social-api"
	SourceAI       Source = "AI"
)

// TrackUnknown is the sentinel used when a source cannot tell the track
// apart from the car. It is a valid value, not an error.
const TrackUnknown = "Unknown"

// SetupRecord is one tuning entry for a car/track combination. Records are
// immutable: a changed setup is a new record with a new fingerprint.
type SetupRecord struct {
	ID          uuid.UUID `db:"id"`
	Car         string    `db:"car"`
	Track       string    `db:"track"`
	URL         string    `db:"url"`
	Source      Source    `db:"source"`
	Notes       string    `db:"notes"`
	Fingerprint string    `db:"fingerprint"`
	CreatedAt   time.Time `db:"created_at"`
}

// Fingerprint derives the deduplication key from record content, not
// provenance: the same setup found on two sites collapses to one row.
// Case-insensitive so "MX-5" and "mx-5" collide.
func Fingerprint(car, track, notes string) string {
	payload := strings.ToLower(car) + "|" + strings.ToLower(track) + "|" + strings.ToLower(notes)
	sum := sha256.Sum256([]byte(payload))
	return hex.EncodeToString(sum[:])
}

// NewSetupRecord builds a complete record ready for insertion. Fingerprint
// and timestamps are derived here so no partially populated record ever
// reaches the store.
func NewSetupRecord(car, track, url string, source Source, notes string) *SetupRecord {
	return &SetupRecord{
		ID:          uuid.New(),
		Car:         car,
		Track:       track,
		URL:         url,
		Source:      source,
		Notes:       notes,
		Fingerprint: Fingerprint(car, track, notes),
		CreatedAt:   time.Now().UTC(),
	}
}
