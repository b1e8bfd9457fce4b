package relevance

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/maeum-ai/maeum-go/pkg/storage"
)

func memoryAt(category, key, value string, importance int, lastMentioned time.Time) *storage.Memory {
	return &storage.Memory{
		UserID:          "user-1",
		Category:        category,
		Key:             key,
		Value:           value,
		Importance:      importance,
		MentionCount:    1,
		CreatedAt:       lastMentioned,
		LastMentionedAt: lastMentioned,
	}
}

func TestRankDirectMatchWins(t *testing.T) {
	ranker := NewRanker(DefaultWeights())
	now := time.Now()

	memories := []*storage.Memory{
		memoryAt("hobby", "sports", "헬스", 3, now.Add(-2*24*time.Hour)),
		memoryAt("preference", "food", "맛있", 2, now.Add(-2*24*time.Hour)),
	}

	ranked := ranker.Rank("헬스 끝나고 뭐 먹을까", memories, 5)

	assert.NotEmpty(t, ranked)
	assert.Equal(t, "sports", ranked[0].Key)
	assert.Greater(t, ranked[0].Score, 0.8)
}

func TestRankDiscardsLowScores(t *testing.T) {
	ranker := NewRanker(DefaultWeights())
	old := time.Now().Add(-90 * 24 * time.Hour)

	// No direct match, no category hint, stale: importance and recency
	// terms alone cannot clear the minimum.
	memories := []*storage.Memory{
		memoryAt("preference", "weather", "더워", 2, old),
		memoryAt("hobby", "gaming", "게임", 2, old),
	}

	ranked := ranker.Rank("내일 몇 시에 만날까", memories, 5)
	assert.Empty(t, ranked)
}

func TestRankNeverExceedsLimit(t *testing.T) {
	ranker := NewRanker(DefaultWeights())
	now := time.Now()

	var memories []*storage.Memory
	for i := 0; i < 20; i++ {
		memories = append(memories,
			memoryAt("hobby", fmt.Sprintf("key%d", i), "헬스", 5, now.Add(-time.Hour)))
	}

	ranked := ranker.Rank("헬스 얘기 좀 하자", memories, 5)
	assert.Len(t, ranked, 5)

	ranked = ranker.Rank("헬스 얘기 좀 하자", memories, 0)
	assert.Len(t, ranked, DefaultLimit)
}

func TestRankScoreCappedAtOne(t *testing.T) {
	ranker := NewRanker(DefaultWeights())
	now := time.Now()

	memories := []*storage.Memory{
		memoryAt("hobby", "sports", "헬스", 5, now.Add(-time.Hour)),
	}

	// Direct match + category hint + importance + recency exceeds 1.0
	// before the cap.
	ranked := ranker.Rank("취미로 헬스 시작했어", memories, 5)
	assert.Len(t, ranked, 1)
	assert.Equal(t, 1.0, ranked[0].Score)
}

func TestRankTieBreaksOnImportance(t *testing.T) {
	ranker := NewRanker(DefaultWeights())
	now := time.Now()

	memories := []*storage.Memory{
		memoryAt("relationship", "friends", "친구", 3, now.Add(-time.Hour)),
		memoryAt("relationship", "family", "가족", 4, now.Add(-time.Hour)),
	}

	ranked := ranker.Rank("친구랑 가족 모임 얘기", memories, 5)
	assert.Len(t, ranked, 2)
	assert.Equal(t, "family", ranked[0].Key)
}

func TestRankDoesNotMutateInput(t *testing.T) {
	ranker := NewRanker(DefaultWeights())
	now := time.Now()

	m := memoryAt("hobby", "sports", "헬스", 3, now.Add(-time.Hour))
	ranker.Rank("헬스 갔다 왔어", []*storage.Memory{m}, 5)

	assert.Equal(t, 0.0, m.Score)
}
