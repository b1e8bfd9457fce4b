package core

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/maeum-ai/maeum-go/pkg/directive"
	"github.com/maeum-ai/maeum-go/pkg/storage"
)

// fakeStore is an in-memory storage.Store for engine tests. When fail is
// set every call returns an error.
type fakeStore struct {
	fail bool

	nextID        int64
	memories      map[string]*storage.Memory
	profiles      map[string]*storage.PatternProfile
	intimacy      map[string]float64
	conversations []*storage.Conversation
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		memories: map[string]*storage.Memory{},
		profiles: map[string]*storage.PatternProfile{},
		intimacy: map[string]float64{},
	}
}

var errStoreDown = errors.New("store down")

func (s *fakeStore) id() int64 {
	s.nextID++
	return s.nextID
}

func memKey(userID, category, key string) string {
	return userID + "/" + category + "/" + key
}

func (s *fakeStore) UpsertMemory(_ context.Context, m *storage.Memory) (*storage.Memory, error) {
	if s.fail {
		return nil, errStoreDown
	}
	now := time.Now()
	k := memKey(m.UserID, m.Category, m.Key)
	if existing, ok := s.memories[k]; ok {
		existing.Value = m.Value
		existing.MentionCount++
		if m.Importance > existing.Importance {
			existing.Importance = m.Importance
		}
		existing.LastMentionedAt = now
		out := *existing
		return &out, nil
	}
	stored := *m
	stored.ID = s.id()
	stored.MentionCount = 1
	stored.CreatedAt = now
	stored.LastMentionedAt = now
	s.memories[k] = &stored
	out := stored
	return &out, nil
}

func (s *fakeStore) QueryMemories(_ context.Context, userID string, limit int) ([]*storage.Memory, error) {
	if s.fail {
		return nil, errStoreDown
	}
	var out []*storage.Memory
	for _, m := range s.memories {
		if m.UserID == userID && len(out) < limit {
			copied := *m
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (s *fakeStore) CountMemories(_ context.Context, userID string) (int, error) {
	if s.fail {
		return 0, errStoreDown
	}
	count := 0
	for _, m := range s.memories {
		if m.UserID == userID {
			count++
		}
	}
	return count, nil
}

func (s *fakeStore) SavePatternProfile(_ context.Context, p *storage.PatternProfile) error {
	if s.fail {
		return errStoreDown
	}
	copied := *p
	s.profiles[p.UserID] = &copied
	return nil
}

func (s *fakeStore) GetPatternProfile(_ context.Context, userID string) (*storage.PatternProfile, error) {
	if s.fail {
		return nil, errStoreDown
	}
	p, ok := s.profiles[userID]
	if !ok {
		return nil, nil
	}
	copied := *p
	return &copied, nil
}

func (s *fakeStore) GetIntimacy(_ context.Context, userID string) (*storage.IntimacyScore, error) {
	if s.fail {
		return nil, errStoreDown
	}
	return &storage.IntimacyScore{UserID: userID, Score: s.intimacy[userID]}, nil
}

func (s *fakeStore) UpdateIntimacy(_ context.Context, userID string, delta float64) (*storage.IntimacyScore, error) {
	if s.fail {
		return nil, errStoreDown
	}
	score := s.intimacy[userID] + delta
	if score > 100 {
		score = 100
	}
	s.intimacy[userID] = score
	return &storage.IntimacyScore{UserID: userID, Score: score, LastInteractionAt: time.Now()}, nil
}

func (s *fakeStore) CreateConversation(_ context.Context, userID string) (*storage.Conversation, error) {
	if s.fail {
		return nil, errStoreDown
	}
	conv := &storage.Conversation{ID: s.id(), UserID: userID, CreatedAt: time.Now()}
	s.conversations = append(s.conversations, conv)
	return conv, nil
}

func (s *fakeStore) AppendMessage(_ context.Context, conversationID int64, role, content string) (*storage.Message, error) {
	if s.fail {
		return nil, errStoreDown
	}
	msg := &storage.Message{
		ID:             s.id(),
		ConversationID: conversationID,
		Role:           role,
		Content:        content,
		CreatedAt:      time.Now(),
	}
	for _, conv := range s.conversations {
		if conv.ID == conversationID {
			conv.Messages = append(conv.Messages, msg)
			return msg, nil
		}
	}
	return msg, nil
}

func (s *fakeStore) ListRecentConversations(_ context.Context, userID string, limit int) ([]*storage.Conversation, error) {
	if s.fail {
		return nil, errStoreDown
	}
	var out []*storage.Conversation
	for i := len(s.conversations) - 1; i >= 0 && len(out) < limit; i-- {
		conv := s.conversations[i]
		if conv.UserID == userID && len(conv.Messages) > 0 {
			out = append(out, conv)
		}
	}
	return out, nil
}

func (s *fakeStore) Close() error { return nil }

func newTestEngine(t *testing.T, store storage.Store) *Engine {
	t.Helper()
	engine, err := NewEngine(&Config{}, WithStore(store))
	assert.NoError(t, err)
	return engine
}

func TestLearnUpsertsWithoutDuplicates(t *testing.T) {
	store := newFakeStore()
	engine := newTestEngine(t, store)
	ctx := context.Background()

	first, err := engine.Learn(ctx, "user-1", "오늘 헬스 다녀왔어")
	assert.NoError(t, err)
	assert.NotEmpty(t, first.Memories)

	var sports *Memory
	for _, m := range first.Memories {
		if m.Category == CategoryHobby && m.Key == "sports" {
			sports = m
		}
	}
	assert.NotNil(t, sports)
	assert.Equal(t, "헬스", sports.Value)
	assert.Equal(t, 3, sports.Importance)
	assert.Equal(t, 1, sports.MentionCount)

	second, err := engine.Learn(ctx, "user-1", "오늘 헬스 다녀왔어")
	assert.NoError(t, err)
	for _, m := range second.Memories {
		if m.Category == CategoryHobby && m.Key == "sports" {
			assert.Equal(t, 2, m.MentionCount)
			assert.Equal(t, 3, m.Importance)
		}
	}

	// Still one row for the key.
	count, err := store.CountMemories(ctx, "user-1")
	assert.NoError(t, err)
	assert.Equal(t, len(first.Memories), count)
}

func TestLearnMovesIntimacyOnlyWithCandidates(t *testing.T) {
	store := newFakeStore()
	engine := newTestEngine(t, store)
	ctx := context.Background()

	result, err := engine.Learn(ctx, "user-1", "hmm")
	assert.NoError(t, err)
	assert.Empty(t, result.Memories)
	assert.Nil(t, result.Intimacy)
	assert.Equal(t, 0.0, store.intimacy["user-1"])

	result, err = engine.Learn(ctx, "user-1", "요즘 요가 배우고 있어")
	assert.NoError(t, err)
	assert.NotEmpty(t, result.Memories)
	assert.NotNil(t, result.Intimacy)
	assert.Equal(t, 1.0, result.Intimacy.Score)
}

func TestBuildDirectiveDefaultForNewUser(t *testing.T) {
	engine := newTestEngine(t, newFakeStore())

	result := engine.BuildDirective(context.Background(), "stranger", "안녕")
	assert.Equal(t, directive.DefaultDirective, result.Directive)
	assert.Equal(t, string(directive.StrategyDefault), result.Strategy)
}

func TestBuildDirectiveRelationshipStrategy(t *testing.T) {
	store := newFakeStore()
	store.intimacy["user-1"] = 45
	engine := newTestEngine(t, store)
	ctx := context.Background()

	_, err := engine.Learn(ctx, "user-1", "오늘 헬스 다녀왔어")
	assert.NoError(t, err)

	result := engine.BuildDirective(ctx, "user-1", "헬스 얘기 하자")
	assert.Equal(t, string(directive.StrategyRelationship), result.Strategy)
	assert.Contains(t, result.Directive, "헬스")
	assert.NotEmpty(t, result.Memories)
}

func TestBuildDirectiveRelationshipBeatsPattern(t *testing.T) {
	store := newFakeStore()
	store.intimacy["user-1"] = 80
	store.profiles["user-1"] = &storage.PatternProfile{
		UserID:             "user-1",
		Confidence:         0.8,
		GeneratedDirective: "패턴 기반 지시문",
	}
	engine := newTestEngine(t, store)
	ctx := context.Background()

	_, err := engine.Learn(ctx, "user-1", "주말마다 등산 다녀")
	assert.NoError(t, err)

	result := engine.BuildDirective(ctx, "user-1", "이번 주말에 뭐 할까")
	assert.Equal(t, string(directive.StrategyRelationship), result.Strategy)
	assert.NotEqual(t, "패턴 기반 지시문", result.Directive)
}

func TestBuildDirectiveDegradesWhenStoreFails(t *testing.T) {
	store := newFakeStore()
	store.intimacy["user-1"] = 80
	engine := newTestEngine(t, store)

	store.fail = true
	result := engine.BuildDirective(context.Background(), "user-1", "안녕")
	assert.Equal(t, directive.DefaultDirective, result.Directive)
	assert.Equal(t, string(directive.StrategyDefault), result.Strategy)
}

func TestLearnRefreshesProfileOnCadence(t *testing.T) {
	store := newFakeStore()
	engine, err := NewEngine(&Config{Engine: EngineConfig{RefreshEvery: 1}}, WithStore(store))
	assert.NoError(t, err)
	ctx := context.Background()

	// Enough history for the analyzer.
	for i := 0; i < 6; i++ {
		conv, err := store.CreateConversation(ctx, "user-1")
		assert.NoError(t, err)
		_, err = store.AppendMessage(ctx, conv.ID, storage.RoleAssistant, "어떤 하루였어?")
		assert.NoError(t, err)
		_, err = store.AppendMessage(ctx, conv.ID, storage.RoleUser, "그런데 오늘 진짜 재밌는 일이 많았어 고마워")
		assert.NoError(t, err)
	}

	result, err := engine.Learn(ctx, "user-1", "오늘 헬스 다녀왔어")
	assert.NoError(t, err)
	assert.True(t, result.ProfileRefreshed)
	assert.NotNil(t, store.profiles["user-1"])
	assert.Equal(t, 6, store.profiles["user-1"].SampleSize)
}

func TestAnalyzePatternsInsufficientHistory(t *testing.T) {
	engine := newTestEngine(t, newFakeStore())

	profile, err := engine.AnalyzePatterns(context.Background(), "user-1")
	assert.NoError(t, err)
	assert.Nil(t, profile)
}

func TestAsyncLearn(t *testing.T) {
	store := newFakeStore()
	engine, err := NewEngine(&Config{}, WithStore(store))
	assert.NoError(t, err)
	async := &AsyncEngine{Engine: engine}

	outcome := <-async.LearnAsync(context.Background(), "user-1", "오늘 헬스 다녀왔어")
	assert.NoError(t, outcome.Error)
	assert.NotEmpty(t, outcome.Result.Memories)
	async.Wait()
}
