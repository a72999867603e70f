package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"apexbox/internal/models"
	"apexbox/internal/search"

	"go.uber.org/zap"
)

// ErrStoreFailure marks a persistence fault inside the answer cycle. The
// boundary reports it as a storage error, distinct from a completion
// provider failure.
var ErrStoreFailure = errors.New("store failure")

// SearchResolver is the fallback chain as the chat flow sees it: one call,
// always an answer, possibly degraded.
type SearchResolver interface {
	Resolve(ctx context.Context, query string) search.Resolution
}

// Completer is the opaque generative-text backend.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// HistoryStore persists completed exchanges, append-only. Recent reads
// never observe a partially written exchange.
type HistoryStore interface {
	Append(ctx context.Context, ex *models.ChatExchange) error
	Recent(ctx context.Context, limit int) ([]*models.ChatExchange, error)
}

// ChatService assembles grounded prompts and drives the completion
// provider. Search degradation never fails a request; completion failure
// always does, with nothing persisted.
type ChatService struct {
	resolver    SearchResolver
	store       SetupStore
	history     HistoryStore
	llm         Completer
	normalizer  *Normalizer
	recentLimit int
	logger      *zap.Logger
}

func NewChatService(
	resolver SearchResolver,
	store SetupStore,
	history HistoryStore,
	llm Completer,
	normalizer *Normalizer,
	recentLimit int,
	logger *zap.Logger,
) *ChatService {
	return &ChatService{
		resolver:    resolver,
		store:       store,
		history:     history,
		llm:         llm,
		normalizer:  normalizer,
		recentLimit: recentLimit,
		logger:      logger,
	}
}

// Answer runs one full request cycle: resolve search context, pull recent
// stored setups, complete, persist the exchange, and capture any structured
// setup the completion produced.
func (s *ChatService) Answer(ctx context.Context, prompt string) (*models.ChatExchange, error) {
	resolution := s.resolver.Resolve(ctx, prompt)

	recent, err := s.store.Recent(ctx, s.recentLimit)
	if err != nil {
		return nil, fmt.Errorf("%w: setup store: %v", ErrStoreFailure, err)
	}

	fullPrompt := assemblePrompt(prompt, resolution.Format(), recent)

	response, err := s.llm.Complete(ctx, fullPrompt)
	if err != nil {
		s.logger.Error("completion failed", zap.Error(err))
		return nil, err
	}

	exchange := models.NewChatExchange(prompt, response)
	if err := s.history.Append(ctx, exchange); err != nil {
		return nil, fmt.Errorf("%w: history store: %v", ErrStoreFailure, err)
	}

	s.captureGeneratedSetup(ctx, prompt, response)

	return exchange, nil
}

// History returns the newest exchanges, most recent first.
func (s *ChatService) History(ctx context.Context, limit int) ([]*models.ChatExchange, error) {
	exchanges, err := s.history.Recent(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("%w: history store: %v", ErrStoreFailure, err)
	}
	return exchanges, nil
}

// assemblePrompt concatenates the user query, the formatted search
// results, and the most recent stored setups into one completion prompt.
func assemblePrompt(prompt, searchContext string, recent []*models.SetupRecord) string {
	var sb strings.Builder
	sb.WriteString("User request: ")
	sb.WriteString(prompt)
	sb.WriteString("\n\nSearch results:\n")
	sb.WriteString(searchContext)

	if len(recent) > 0 {
		sb.WriteString("\n\nKnown setups:\n")
		for _, rec := range recent {
			sb.WriteString("- ")
			sb.WriteString(rec.Car)
			sb.WriteString(" at ")
			sb.WriteString(rec.Track)
			sb.WriteString(" -> ")
			sb.WriteString(rec.URL)
			sb.WriteString("\n")
		}
	}

	sb.WriteString("\nPlease provide the detailed setup parameters or a full expert setup.")
	return sb.String()
}

// captureGeneratedSetup stores a completion that parses as a structured
// setup, with source AI. The content fingerprint is the same one scraped
// records use, so an AI answer identical to an already-scraped setup is a
// duplicate skip, not a second row. Insert errors are logged, not returned:
// the user's answer already succeeded and is persisted.
func (s *ChatService) captureGeneratedSetup(ctx context.Context, prompt, response string) {
	notes, ok := extractSetupJSON(response)
	if !ok {
		return
	}

	car, track := s.normalizer.FromPrompt(prompt)
	rec := models.NewSetupRecord(car, track, "N/A", models.SourceAI, notes)

	inserted, err := s.store.InsertIfAbsent(ctx, rec)
	if err != nil {
		s.logger.Error("failed to store AI-generated setup",
			zap.String("fingerprint", rec.Fingerprint),
			zap.Error(err),
		)
		return
	}

	s.logger.Info("captured AI-generated setup",
		zap.String("car", car),
		zap.String("track", track),
		zap.Bool("inserted", inserted),
	)
}

// extractSetupJSON recognizes a completion that is a structured setup
// object. The tire_pressure_front key is the marker the prompt asks for.
func extractSetupJSON(content string) (string, bool) {
	trimmed := strings.TrimSpace(content)

	if strings.HasPrefix(trimmed, "```") {
		trimmed = strings.TrimPrefix(trimmed, "```json")
		trimmed = strings.TrimPrefix(trimmed, "```")
		trimmed = strings.TrimSuffix(strings.TrimSpace(trimmed), "```")
		trimmed = strings.TrimSpace(trimmed)
	}

	var parsed map[string]interface{}
	if err := json.Unmarshal([]byte(trimmed), &parsed); err != nil {
		return "", false
	}
	if _, ok := parsed["tire_pressure_front"]; !ok {
		return "", false
	}

	compact, err := json.Marshal(parsed)
	if err != nil {
		return "", false
	}
	return string(compact), true
}
