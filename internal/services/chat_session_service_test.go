package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"testing"
	"time"

	"aneka-keramik/internal/constants"
	"aneka-keramik/internal/models"
	"aneka-keramik/internal/repositories"
	"aneka-keramik/pkg/llm"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memorySessionRepo mirrors the Mongo repository: expired sessions are invisible
// and updates are guarded by version.
type memorySessionRepo struct {
	mu       sync.Mutex
	sessions map[string]models.ChatSession
	now      func() time.Time
	writes   int
}

func newMemorySessionRepo(now func() time.Time) *memorySessionRepo {
	return &memorySessionRepo{sessions: map[string]models.ChatSession{}, now: now}
}

func (r *memorySessionRepo) EnsureIndexes(ctx context.Context) error { return nil }

func (r *memorySessionRepo) live(id string) (models.ChatSession, bool) {
	session, ok := r.sessions[id]
	if !ok || !session.ExpiresAt.After(r.now()) {
		return models.ChatSession{}, false
	}
	return session, true
}

func (r *memorySessionRepo) FindBySessionID(ctx context.Context, id string) (*models.ChatSession, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	session, ok := r.live(id)
	if !ok {
		return nil, nil
	}
	session.DisplayHistory = append([]models.ChatTurn(nil), session.DisplayHistory...)
	session.Messages = append([]llm.Message(nil), session.Messages...)
	return &session, nil
}

func (r *memorySessionRepo) Create(ctx context.Context, session *models.ChatSession) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.sessions[session.SessionID]; exists {
		return errors.New("duplicate session id")
	}
	r.writes++
	r.sessions[session.SessionID] = *session
	return nil
}

func (r *memorySessionRepo) Update(ctx context.Context, session *models.ChatSession, expectedVersion int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.live(session.SessionID)
	if !ok || stored.Version != expectedVersion {
		return repositories.ErrSessionConflict
	}
	r.writes++
	session.Version = expectedVersion + 1
	r.sessions[session.SessionID] = *session
	return nil
}

func (r *memorySessionRepo) DeleteBySessionID(ctx context.Context, id string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.live(id); !ok {
		return false, nil
	}
	delete(r.sessions, id)
	return true, nil
}

// stubEngine answers every prompt with the same products and echoes the history back.
type stubEngine struct {
	products []models.ProductResponse
	err      error
	received [][]llm.Message
	block    bool
}

func (e *stubEngine) Recommend(ctx context.Context, prompt string, history []llm.Message) (*RecommendationResult, error) {
	e.received = append(e.received, history)
	if e.block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if e.err != nil {
		return nil, e.err
	}
	reply := "jawaban untuk " + prompt
	messages := append(append([]llm.Message(nil), history...), llm.UserMessage(prompt), llm.AssistantText(reply))
	return &RecommendationResult{
		Message:         &reply,
		Products:        e.products,
		UpdatedMessages: messages,
		State:           StateDone,
	}, nil
}

type testClock struct {
	t time.Time
}

func newTestClock() *testClock {
	return &testClock{t: time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)}
}

func (c *testClock) Now() time.Time { return c.t }

func (c *testClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func requireResponseError(t *testing.T, err error) *ResponseError {
	var responseErr *ResponseError
	require.True(t, errors.As(err, &responseErr), "expected *ResponseError, got %v", err)
	return responseErr
}

func statusOf(t *testing.T, err error) int {
	return requireResponseError(t, err).Status
}

func newSessionFixture(engine RecommendationEngine) (ChatSessionService, *memorySessionRepo, *testClock) {
	clock := newTestClock()
	repo := newMemorySessionRepo(clock.Now)
	ids := 0
	svc := NewChatSessionService(repo, engine, time.Minute,
		WithClock(clock.Now),
		WithIDGenerator(func() string {
			ids++
			return fmt.Sprintf("session-%d", ids)
		}),
	)
	return svc, repo, clock
}

func TestConverse_CreatesSession(t *testing.T) {
	engine := &stubEngine{products: sampleProducts()}
	svc, repo, clock := newSessionFixture(engine)

	resp, err := svc.Converse(context.Background(), "  keramik putih kamar mandi  ", "")
	require.NoError(t, err)

	assert.Equal(t, "session-1", resp.SessionID)
	require.NotNil(t, resp.Message)
	assert.Equal(t, "jawaban untuk keramik putih kamar mandi", *resp.Message)
	assert.Equal(t, sampleProducts(), resp.Products)
	require.Len(t, resp.History, 2)
	assert.Equal(t, models.ChatTurnUser, resp.History[0].Role)
	assert.Equal(t, "keramik putih kamar mandi", resp.History[0].Text)
	assert.Equal(t, sampleProducts(), resp.History[1].Products)
	assert.Empty(t, engine.received[0])

	stored := repo.sessions["session-1"]
	assert.Equal(t, clock.Now().Add(24*time.Hour), stored.ExpiresAt)
	assert.Len(t, stored.Messages, 2)
}

func TestConverse_BlankPrompt(t *testing.T) {
	svc, repo, _ := newSessionFixture(&stubEngine{})

	_, err := svc.Converse(context.Background(), "   ", "")
	assert.Equal(t, http.StatusBadRequest, statusOf(t, err))
	assert.Zero(t, repo.writes)
}

func TestConverse_ContinuesAndSlidesExpiry(t *testing.T) {
	engine := &stubEngine{products: sampleProducts()}
	svc, repo, clock := newSessionFixture(engine)

	first, err := svc.Converse(context.Background(), "pertama", "")
	require.NoError(t, err)

	clock.Advance(23 * time.Hour)
	second, err := svc.Converse(context.Background(), "kedua", first.SessionID)
	require.NoError(t, err)

	assert.Equal(t, first.SessionID, second.SessionID)
	assert.Len(t, second.History, 4)
	assert.Len(t, engine.received[1], 2)

	stored := repo.sessions[first.SessionID]
	assert.Equal(t, clock.Now(), stored.UpdatedAt)
	assert.Equal(t, stored.UpdatedAt.Add(24*time.Hour), stored.ExpiresAt)
	assert.Len(t, stored.Messages, 4)
	assert.EqualValues(t, 1, stored.Version)
}

func TestConverse_UnknownOrExpiredSession(t *testing.T) {
	svc, _, clock := newSessionFixture(&stubEngine{})

	_, err := svc.Converse(context.Background(), "halo", "does-not-exist")
	assert.Equal(t, http.StatusNotFound, statusOf(t, err))

	created, err := svc.Converse(context.Background(), "halo", "")
	require.NoError(t, err)
	clock.Advance(24*time.Hour + time.Second)

	_, err = svc.Converse(context.Background(), "lagi", created.SessionID)
	assert.Equal(t, http.StatusNotFound, statusOf(t, err))
	_, err = svc.GetHistory(context.Background(), created.SessionID)
	assert.Equal(t, http.StatusNotFound, statusOf(t, err))
}

func TestConverse_TurnLimit(t *testing.T) {
	engine := &stubEngine{}
	svc, repo, _ := newSessionFixture(engine)

	resp, err := svc.Converse(context.Background(), "turn 1", "")
	require.NoError(t, err)
	for i := 2; i <= constants.MaxTurnsPerSession; i++ {
		_, err = svc.Converse(context.Background(), fmt.Sprintf("turn %d", i), resp.SessionID)
		require.NoError(t, err)
	}

	before := repo.sessions[resp.SessionID]
	writes := repo.writes
	calls := len(engine.received)

	_, err = svc.Converse(context.Background(), "one too many", resp.SessionID)
	responseErr := requireResponseError(t, err)
	assert.Equal(t, http.StatusBadRequest, responseErr.Status)
	assert.Equal(t, "Maximum 20 turns reached. Please start a new session.", responseErr.Message)

	assert.Equal(t, writes, repo.writes)
	assert.Equal(t, calls, len(engine.received))
	assert.Equal(t, before, repo.sessions[resp.SessionID])
	assert.Equal(t, constants.MaxTurnsPerSession, before.UserTurns())
}

func TestConverse_EngineErrorLeavesSessionUntouched(t *testing.T) {
	engine := &stubEngine{}
	svc, repo, _ := newSessionFixture(engine)
	resp, err := svc.Converse(context.Background(), "halo", "")
	require.NoError(t, err)
	before := repo.sessions[resp.SessionID]

	engine.err = llm.ErrRateLimited
	_, err = svc.Converse(context.Background(), "lagi", resp.SessionID)
	assert.ErrorIs(t, err, llm.ErrRateLimited)
	assert.Equal(t, before, repo.sessions[resp.SessionID])
}

func TestConverse_Deadline(t *testing.T) {
	clock := newTestClock()
	repo := newMemorySessionRepo(clock.Now)
	svc := NewChatSessionService(repo, &stubEngine{block: true}, 10*time.Millisecond, WithClock(clock.Now))

	_, err := svc.Converse(context.Background(), "halo", "")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Zero(t, repo.writes)
}

func TestConverse_ConcurrentUpdateConflicts(t *testing.T) {
	svc, repo, _ := newSessionFixture(&stubEngine{})
	resp, err := svc.Converse(context.Background(), "halo", "")
	require.NoError(t, err)

	// another writer bumps the version between our read and write
	stale, err := repo.FindBySessionID(context.Background(), resp.SessionID)
	require.NoError(t, err)
	_, err = svc.Converse(context.Background(), "lagi", resp.SessionID)
	require.NoError(t, err)

	err = repo.Update(context.Background(), stale, stale.Version)
	assert.ErrorIs(t, err, repositories.ErrSessionConflict)
}

func TestGetHistoryAndDelete(t *testing.T) {
	svc, _, clock := newSessionFixture(&stubEngine{products: sampleProducts()})
	created := clock.Now()
	resp, err := svc.Converse(context.Background(), "halo", "")
	require.NoError(t, err)

	history, err := svc.GetHistory(context.Background(), resp.SessionID)
	require.NoError(t, err)
	assert.Equal(t, resp.SessionID, history.SessionID)
	assert.Len(t, history.History, 2)
	assert.Equal(t, sampleProducts(), history.LastProducts)
	assert.Equal(t, created, history.CreatedAt)

	require.NoError(t, svc.DeleteSession(context.Background(), resp.SessionID))
	_, err = svc.GetHistory(context.Background(), resp.SessionID)
	assert.Equal(t, http.StatusNotFound, statusOf(t, err))
	err = svc.DeleteSession(context.Background(), resp.SessionID)
	assert.Equal(t, http.StatusNotFound, statusOf(t, err))
}
