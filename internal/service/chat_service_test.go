package service

import (
	"context"
	"errors"
	"testing"

	"apexbox/internal/models"
	"apexbox/internal/search"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeResolver struct {
	resolution search.Resolution
}

func (f *fakeResolver) Resolve(ctx context.Context, query string) search.Resolution {
	return f.resolution
}

type fakeCompleter struct {
	response string
	err      error
	prompts  []string
}

func (f *fakeCompleter) Complete(ctx context.Context, prompt string) (string, error) {
	f.prompts = append(f.prompts, prompt)
	if f.err != nil {
		return "", f.err
	}
	return f.response, nil
}

type fakeHistory struct {
	exchanges []*models.ChatExchange
	fail      error
}

func (f *fakeHistory) Append(ctx context.Context, ex *models.ChatExchange) error {
	if f.fail != nil {
		return f.fail
	}
	f.exchanges = append(f.exchanges, ex)
	return nil
}

func (f *fakeHistory) Recent(ctx context.Context, limit int) ([]*models.ChatExchange, error) {
	if f.fail != nil {
		return nil, f.fail
	}
	out := make([]*models.ChatExchange, 0, limit)
	for i := len(f.exchanges) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, f.exchanges[i])
	}
	return out, nil
}

func newTestChatService(resolver SearchResolver, store SetupStore, history HistoryStore, llm Completer) *ChatService {
	logger := zap.NewNop()
	return NewChatService(resolver, store, history, llm, NewNormalizer(logger), 5, logger)
}

func TestAnswerPersistsExchange(t *testing.T) {
	store := newMemStore()
	history := &fakeHistory{}
	llm := &fakeCompleter{response: "Run 26.5 psi front, 27.0 rear."}
	svc := newTestChatService(&fakeResolver{}, store, history, llm)

	ex, err := svc.Answer(context.Background(), "MX-5 at Okayama?")

	require.NoError(t, err)
	require.Len(t, history.exchanges, 1)
	assert.Equal(t, ex, history.exchanges[0])
	assert.Equal(t, "MX-5 at Okayama?", ex.Prompt)
	assert.Equal(t, "Run 26.5 psi front, 27.0 rear.", ex.Response)
}

func TestAnswerPromptContainsAllContext(t *testing.T) {
	store := newMemStore()
	_, err := store.InsertIfAbsent(context.Background(),
		models.NewSetupRecord("BMW M4 GT3", "Spa", "https://a.example/m4", models.SourceGridbank, "low wing"))
	require.NoError(t, err)

	resolver := &fakeResolver{resolution: search.Resolution{
		Provider: "brave",
		Results:  []models.SearchResult{{Title: "MX-5 guide", URL: "https://guide.example"}},
	}}
	llm := &fakeCompleter{response: "answer"}
	svc := newTestChatService(resolver, store, &fakeHistory{}, llm)

	_, err = svc.Answer(context.Background(), "best MX-5 setup?")
	require.NoError(t, err)

	require.Len(t, llm.prompts, 1)
	prompt := llm.prompts[0]
	assert.Contains(t, prompt, "User request: best MX-5 setup?")
	assert.Contains(t, prompt, "- MX-5 guide: https://guide.example")
	assert.Contains(t, prompt, "- BMW M4 GT3 at Spa -> https://a.example/m4")
}

func TestAnswerDegradedSearchStillSucceeds(t *testing.T) {
	llm := &fakeCompleter{response: "answer"}
	svc := newTestChatService(&fakeResolver{}, newMemStore(), &fakeHistory{}, llm)

	_, err := svc.Answer(context.Background(), "anything")

	require.NoError(t, err)
	require.Len(t, llm.prompts, 1)
	assert.Contains(t, llm.prompts[0], search.NoResultsText)
}

func TestAnswerCompletionFailurePersistsNothing(t *testing.T) {
	store := newMemStore()
	history := &fakeHistory{}
	llm := &fakeCompleter{err: errors.New("provider timeout")}
	svc := newTestChatService(&fakeResolver{}, store, history, llm)

	_, err := svc.Answer(context.Background(), "anything")

	assert.Error(t, err)
	assert.Empty(t, history.exchanges)
	assert.Empty(t, store.records)
}

func TestAnswerHistoryFailureSurfaces(t *testing.T) {
	history := &fakeHistory{fail: errors.New("connection refused")}
	llm := &fakeCompleter{response: "answer"}
	svc := newTestChatService(&fakeResolver{}, newMemStore(), history, llm)

	_, err := svc.Answer(context.Background(), "anything")

	assert.ErrorContains(t, err, "history store")
	assert.ErrorIs(t, err, ErrStoreFailure)
}

func TestAnswerStoreFailureIsStoreError(t *testing.T) {
	store := newMemStore()
	store.fail = errors.New("connection refused")
	llm := &fakeCompleter{response: "answer"}
	svc := newTestChatService(&fakeResolver{}, store, &fakeHistory{}, llm)

	_, err := svc.Answer(context.Background(), "anything")

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrStoreFailure)
}

func TestAnswerCompletionFailureIsNotStoreError(t *testing.T) {
	llm := &fakeCompleter{err: errors.New("provider timeout")}
	svc := newTestChatService(&fakeResolver{}, newMemStore(), &fakeHistory{}, llm)

	_, err := svc.Answer(context.Background(), "anything")

	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrStoreFailure))
}

func TestAnswerCapturesStructuredSetup(t *testing.T) {
	store := newMemStore()
	llm := &fakeCompleter{response: "```json\n{\"tire_pressure_front\": 26.5, \"brake_bias\": 52}\n```"}
	svc := newTestChatService(&fakeResolver{}, store, &fakeHistory{}, llm)

	_, err := svc.Answer(context.Background(), "setup for Mazda MX-5 at Okayama")

	require.NoError(t, err)
	require.Len(t, store.records, 1)
	rec := store.records[0]
	assert.Equal(t, models.SourceAI, rec.Source)
	assert.Equal(t, "Mazda MX-5", rec.Car)
	assert.Equal(t, "Okayama", rec.Track)
	assert.Equal(t, "N/A", rec.URL)
	assert.Contains(t, rec.Notes, "tire_pressure_front")
}

func TestAnswerIgnoresProseResponse(t *testing.T) {
	store := newMemStore()
	llm := &fakeCompleter{response: "You should soften the front springs and add a click of rebound."}
	svc := newTestChatService(&fakeResolver{}, store, &fakeHistory{}, llm)

	_, err := svc.Answer(context.Background(), "setup for Mazda MX-5 at Okayama")

	require.NoError(t, err)
	assert.Empty(t, store.records)
}

func TestAnswerIgnoresJSONWithoutMarkerKey(t *testing.T) {
	store := newMemStore()
	llm := &fakeCompleter{response: "{\"front_wing\": 3}"}
	svc := newTestChatService(&fakeResolver{}, store, &fakeHistory{}, llm)

	_, err := svc.Answer(context.Background(), "setup for Mazda MX-5")

	require.NoError(t, err)
	assert.Empty(t, store.records)
}

func TestAnswerDuplicateAISetupSkipped(t *testing.T) {
	store := newMemStore()
	history := &fakeHistory{}
	llm := &fakeCompleter{response: "{\"tire_pressure_front\": 26.5}"}
	svc := newTestChatService(&fakeResolver{}, store, history, llm)

	_, err := svc.Answer(context.Background(), "setup for Mazda MX-5 at Okayama")
	require.NoError(t, err)
	_, err = svc.Answer(context.Background(), "setup for Mazda MX-5 at Okayama")
	require.NoError(t, err)

	// Same content fingerprint: one stored setup, but both exchanges kept.
	assert.Len(t, store.records, 1)
	assert.Len(t, history.exchanges, 2)
}

func TestAnswerCaptureStoreFailureDoesNotFailAnswer(t *testing.T) {
	store := newMemStore()
	store.failInsert = errors.New("connection refused")
	history := &fakeHistory{}
	llm := &fakeCompleter{response: "{\"tire_pressure_front\": 26.5}"}
	svc := newTestChatService(&fakeResolver{}, store, history, llm)

	ex, err := svc.Answer(context.Background(), "setup for Mazda MX-5")

	// The answer was already delivered and persisted; a failed capture
	// insert only loses the AI record.
	require.NoError(t, err)
	assert.NotNil(t, ex)
	assert.Len(t, history.exchanges, 1)
	assert.Empty(t, store.records)
}

func TestHistoryNewestFirst(t *testing.T) {
	history := &fakeHistory{}
	llm := &fakeCompleter{response: "answer"}
	svc := newTestChatService(&fakeResolver{}, newMemStore(), history, llm)

	_, err := svc.Answer(context.Background(), "first")
	require.NoError(t, err)
	_, err = svc.Answer(context.Background(), "second")
	require.NoError(t, err)

	exchanges, err := svc.History(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, exchanges, 2)
	assert.Equal(t, "second", exchanges[0].Prompt)
	assert.Equal(t, "first", exchanges[1].Prompt)
}

func TestExtractSetupJSON(t *testing.T) {
	tests := []struct {
		name    string
		content string
		ok      bool
	}{
		{"bare object", `{"tire_pressure_front": 26.5}`, true},
		{"fenced json", "```json\n{\"tire_pressure_front\": 26.5}\n```", true},
		{"fenced plain", "```\n{\"tire_pressure_front\": 26.5}\n```", true},
		{"missing marker", `{"brake_bias": 52}`, false},
		{"prose", "soften the front springs", false},
		{"invalid json", `{"tire_pressure_front": }`, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			notes, ok := extractSetupJSON(tt.content)
			assert.Equal(t, tt.ok, ok)
			if ok {
				assert.Contains(t, notes, "tire_pressure_front")
			}
		})
	}
}
