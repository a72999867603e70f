package service

import (
	"errors"
	"strings"

	"apexbox/internal/connector"
	"apexbox/internal/models"

	"go.uber.org/zap"
)

// ErrUnparsableItem marks a raw item that carries no usable car
// information. Such items are dropped with a diagnostic, never propagated
// as fatal.
var ErrUnparsableItem = errors.New("item has no usable car information")

type extractFunc func(item connector.RawItem) (car, track, notes string)

// Normalizer converts raw source items into canonical SetupRecords. The
// extraction rules are source-scoped because every site titles its entries
// differently, but all strategies converge on the same shape. When a
// strategy cannot tell the track apart, it falls back to "Unknown" instead
// of discarding the item.
type Normalizer struct {
	strategies map[models.Source]extractFunc
	logger     *zap.Logger
}

func NewNormalizer(logger *zap.Logger) *Normalizer {
	return &Normalizer{
		strategies: map[models.Source]extractFunc{
			models.SourceRsetups:  extractScrapedItem,
			models.SourceGridbank: extractScrapedItem,
			models.SourceSocial:   extractForumItem,
		},
		logger: logger,
	}
}

// Normalize produces a fully populated record or an error; it never
// panics and never returns a partial record.
func (n *Normalizer) Normalize(item connector.RawItem, source models.Source) (*models.SetupRecord, error) {
	extract, ok := n.strategies[source]
	if !ok {
		extract = extractScrapedItem
	}

	car, track, notes := extract(item)
	car = collapseWhitespace(car)
	track = collapseWhitespace(track)
	notes = collapseWhitespace(notes)

	if car == "" {
		n.logger.Debug("dropping unparsable item",
			zap.String("source", string(source)),
			zap.String("title", item.Title),
		)
		return nil, ErrUnparsableItem
	}
	if track == "" {
		track = models.TrackUnknown
	}

	return models.NewSetupRecord(car, track, item.URL, source, notes), nil
}

// FromPrompt pulls a best-effort car/track pair out of a free-text user
// prompt ("... setup for Mazda MX-5 at Okayama"). Used when the completion
// provider hands back a structured setup that needs a home in the store.
func (n *Normalizer) FromPrompt(prompt string) (car, track string) {
	car, track = models.TrackUnknown, models.TrackUnknown

	// The last " for " wins: "looking for a setup for X" should keep X.
	rest := prompt
	if idx := lastIndexFold(prompt, " for "); idx >= 0 {
		rest = prompt[idx+len(" for "):]
	}

	if c, t, ok := splitCarTrack(rest); ok {
		car, track = c, t
	} else if cleaned := collapseWhitespace(trimSetupWords(rest)); cleaned != "" {
		car = cleaned
	}
	return car, track
}

// extractScrapedItem handles setup-site titles, which separate car and
// track with a delimiter ("Mazda MX-5 - Okayama", "BMW M4 GT3 @ Spa").
func extractScrapedItem(item connector.RawItem) (string, string, string) {
	notes := item.Body
	if notes == item.Title {
		notes = ""
	}

	for _, sep := range []string{" - ", " @ ", " | "} {
		if idx := strings.Index(item.Title, sep); idx > 0 {
			return item.Title[:idx], item.Title[idx+len(sep):], notes
		}
	}
	if c, t, ok := splitCarTrack(item.Title); ok {
		return c, t, notes
	}
	return item.Title, "", notes
}

// extractForumItem handles free-form forum post titles ("Looking for a
// stable MX-5 setup at Okayama"). The post body becomes the notes.
func extractForumItem(item connector.RawItem) (string, string, string) {
	title := item.Title
	if idx := lastIndexFold(title, " for "); idx >= 0 {
		title = title[idx+len(" for "):]
	}

	if c, t, ok := splitCarTrack(title); ok {
		return c, t, item.Body
	}
	return trimSetupWords(title), "", item.Body
}

// splitCarTrack splits "car at track" style phrases.
func splitCarTrack(s string) (string, string, bool) {
	for _, sep := range []string{" at ", " @ "} {
		if idx := indexFold(s, sep); idx > 0 {
			car := trimSetupWords(s[:idx])
			track := trimSetupWords(s[idx+len(sep):])
			if car != "" && track != "" {
				return car, track, true
			}
		}
	}
	return "", "", false
}

// trimSetupWords drops the filler words posts wrap around car and track
// names so they do not pollute the fingerprint.
func trimSetupWords(s string) string {
	fields := strings.Fields(s)
	for len(fields) > 0 {
		switch strings.ToLower(strings.Trim(fields[len(fields)-1], ".,!?:;")) {
		case "setup", "setups", "tune", "config", "configuration":
			fields = fields[:len(fields)-1]
		default:
			return strings.Join(fields, " ")
		}
	}
	return ""
}

func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// indexFold and lastIndexFold locate an ASCII separator in s without regard
// to case. They compare windows of the original string, so the returned
// offset is always valid for slicing s; an offset computed on a lowered copy
// is not, because lowercasing can change a rune's byte length.
func indexFold(s, substr string) int {
	for i := 0; i+len(substr) <= len(s); i++ {
		if strings.EqualFold(s[i:i+len(substr)], substr) {
			return i
		}
	}
	return -1
}

func lastIndexFold(s, substr string) int {
	for i := len(s) - len(substr); i >= 0; i-- {
		if strings.EqualFold(s[i:i+len(substr)], substr) {
			return i
		}
	}
	return -1
}
