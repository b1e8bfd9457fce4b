package intimacy

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/maeum-ai/maeum-go/pkg/storage"
)

// memStore is an in-memory IntimacyStore.
type memStore struct {
	scores map[string]float64
}

func newMemStore() *memStore {
	return &memStore{scores: map[string]float64{}}
}

func (s *memStore) GetIntimacy(_ context.Context, userID string) (*storage.IntimacyScore, error) {
	return &storage.IntimacyScore{UserID: userID, Score: s.scores[userID]}, nil
}

func (s *memStore) UpdateIntimacy(_ context.Context, userID string, delta float64) (*storage.IntimacyScore, error) {
	score := s.scores[userID] + delta
	if score > 100 {
		score = 100
	}
	s.scores[userID] = score
	return &storage.IntimacyScore{UserID: userID, Score: score, LastInteractionAt: time.Now()}, nil
}

func TestTierOf(t *testing.T) {
	assert.Equal(t, TierNew, TierOf(0))
	assert.Equal(t, TierNew, TierOf(19.9))
	assert.Equal(t, TierAcquainted, TierOf(20))
	assert.Equal(t, TierAcquainted, TierOf(39.9))
	assert.Equal(t, TierClose, TierOf(40))
	assert.Equal(t, TierClose, TierOf(69.9))
	assert.Equal(t, TierIntimate, TierOf(70))
	assert.Equal(t, TierIntimate, TierOf(100))
}

func TestTierAtLeast(t *testing.T) {
	assert.True(t, TierIntimate.AtLeast(TierAcquainted))
	assert.True(t, TierAcquainted.AtLeast(TierAcquainted))
	assert.False(t, TierNew.AtLeast(TierAcquainted))
}

func TestUpdateClampsAtHundred(t *testing.T) {
	tracker := NewTracker(newMemStore())
	ctx := context.Background()

	var last float64
	for i := 0; i < 150; i++ {
		score, err := tracker.Update(ctx, "user-1", 1)
		assert.NoError(t, err)
		assert.LessOrEqual(t, score.Score, 100.0)
		assert.GreaterOrEqual(t, score.Score, last)
		last = score.Score
	}
	assert.Equal(t, 100.0, last)
}

func TestUpdateIgnoresNegativeDelta(t *testing.T) {
	tracker := NewTracker(newMemStore())
	ctx := context.Background()

	score, err := tracker.Update(ctx, "user-1", 10)
	assert.NoError(t, err)
	assert.Equal(t, 10.0, score.Score)

	score, err = tracker.Update(ctx, "user-1", -5)
	assert.NoError(t, err)
	assert.Equal(t, 10.0, score.Score)
}

func TestTierForNewUser(t *testing.T) {
	tracker := NewTracker(newMemStore())

	tier, err := tracker.TierFor(context.Background(), "stranger")
	assert.NoError(t, err)
	assert.Equal(t, TierNew, tier)
}
