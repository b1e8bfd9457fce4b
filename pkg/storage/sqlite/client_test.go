package sqlite_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maeum-ai/maeum-go/pkg/storage"
	"github.com/maeum-ai/maeum-go/pkg/storage/sqlite"
)

func setupSQLiteTest(t *testing.T) (*sqlite.Client, func()) {
	testDBPath := "./test_maeum.db"
	_ = os.Remove(testDBPath)

	client, err := sqlite.NewClient(&sqlite.Config{DBPath: testDBPath})
	require.NoError(t, err)
	require.NotNil(t, client)

	cleanup := func() {
		_ = client.Close()
		_ = os.Remove(testDBPath)
	}
	return client, cleanup
}

func TestSQLiteClient_UpsertMemory(t *testing.T) {
	client, cleanup := setupSQLiteTest(t)
	defer cleanup()

	ctx := context.Background()

	first, err := client.UpsertMemory(ctx, &storage.Memory{
		UserID:     "user-1",
		Category:   "hobby",
		Key:        "sports",
		Value:      "헬스",
		Importance: 3,
	})
	require.NoError(t, err)
	assert.NotZero(t, first.ID)
	assert.Equal(t, 1, first.MentionCount)
	assert.Equal(t, 3, first.Importance)

	// Re-mentioning replaces the value, bumps the count, and keeps the
	// higher importance.
	second, err := client.UpsertMemory(ctx, &storage.Memory{
		UserID:     "user-1",
		Category:   "hobby",
		Key:        "sports",
		Value:      "수영",
		Importance: 2,
	})
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, 2, second.MentionCount)
	assert.Equal(t, 3, second.Importance)
	assert.Equal(t, "수영", second.Value)

	// A more important mention raises the stored importance.
	third, err := client.UpsertMemory(ctx, &storage.Memory{
		UserID:     "user-1",
		Category:   "hobby",
		Key:        "sports",
		Value:      "수영",
		Importance: 5,
	})
	require.NoError(t, err)
	assert.Equal(t, 3, third.MentionCount)
	assert.Equal(t, 5, third.Importance)

	count, err := client.CountMemories(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestSQLiteClient_QueryMemories(t *testing.T) {
	client, cleanup := setupSQLiteTest(t)
	defer cleanup()

	ctx := context.Background()

	seeds := []*storage.Memory{
		{UserID: "user-1", Category: "hobby", Key: "sports", Value: "헬스", Importance: 3},
		{UserID: "user-1", Category: "goal", Key: "future_plan", Value: "이직 준비", Importance: 4},
		{UserID: "user-1", Category: "preference", Key: "food", Value: "매운맛", Importance: 2},
		{UserID: "user-2", Category: "hobby", Key: "music", Value: "노래", Importance: 5},
	}
	for _, seed := range seeds {
		_, err := client.UpsertMemory(ctx, seed)
		require.NoError(t, err)
	}

	memories, err := client.QueryMemories(ctx, "user-1", 2)
	require.NoError(t, err)
	require.Len(t, memories, 2)
	assert.Equal(t, "future_plan", memories[0].Key)
	assert.Equal(t, "sports", memories[1].Key)
}

func TestSQLiteClient_IntimacyClamp(t *testing.T) {
	client, cleanup := setupSQLiteTest(t)
	defer cleanup()

	ctx := context.Background()

	// No row yet reads as a zero score, not an error.
	fresh, err := client.GetIntimacy(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, 0.0, fresh.Score)

	score, err := client.UpdateIntimacy(ctx, "user-1", 60)
	require.NoError(t, err)
	assert.Equal(t, 60.0, score.Score)

	score, err = client.UpdateIntimacy(ctx, "user-1", 60)
	require.NoError(t, err)
	assert.Equal(t, 100.0, score.Score)

	score, err = client.UpdateIntimacy(ctx, "user-1", 1)
	require.NoError(t, err)
	assert.Equal(t, 100.0, score.Score)
}

func TestSQLiteClient_PatternProfile(t *testing.T) {
	client, cleanup := setupSQLiteTest(t)
	defer cleanup()

	ctx := context.Background()

	missing, err := client.GetPatternProfile(ctx, "user-1")
	require.NoError(t, err)
	assert.Nil(t, missing)

	profile := &storage.PatternProfile{
		UserID:                   "user-1",
		LengthPreference:         "short",
		ConversationStyle:        "prefers_questions",
		TopicDepthPreference:     "balanced",
		FormalityLevel:           "casual",
		ContinuationStyle:        "moderate_length",
		ResponseSpeedExpectation: "normal",
		Confidence:               0.53,
		SampleSize:               8,
		GeneratedDirective:       "짧게 대답해줘",
		UpdatedAt:                time.Now(),
	}
	require.NoError(t, client.SavePatternProfile(ctx, profile))

	// Saving again replaces the snapshot.
	profile.LengthPreference = "long"
	profile.SampleSize = 12
	require.NoError(t, client.SavePatternProfile(ctx, profile))

	got, err := client.GetPatternProfile(ctx, "user-1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "long", got.LengthPreference)
	assert.Equal(t, 12, got.SampleSize)
	assert.Equal(t, 0.53, got.Confidence)
}

func TestSQLiteClient_Conversations(t *testing.T) {
	client, cleanup := setupSQLiteTest(t)
	defer cleanup()

	ctx := context.Background()

	older, err := client.CreateConversation(ctx, "user-1")
	require.NoError(t, err)
	time.Sleep(5 * time.Millisecond)
	newer, err := client.CreateConversation(ctx, "user-1")
	require.NoError(t, err)
	time.Sleep(5 * time.Millisecond)
	empty, err := client.CreateConversation(ctx, "user-1")
	require.NoError(t, err)

	_, err = client.AppendMessage(ctx, older.ID, storage.RoleUser, "안녕")
	require.NoError(t, err)
	_, err = client.AppendMessage(ctx, older.ID, storage.RoleAssistant, "안녕! 잘 지냈어?")
	require.NoError(t, err)
	_, err = client.AppendMessage(ctx, newer.ID, storage.RoleUser, "오늘 헬스 다녀왔어")
	require.NoError(t, err)

	conversations, err := client.ListRecentConversations(ctx, "user-1", 10)
	require.NoError(t, err)
	require.Len(t, conversations, 2)

	// Most recent first; the empty conversation is omitted.
	assert.Equal(t, newer.ID, conversations[0].ID)
	assert.Equal(t, older.ID, conversations[1].ID)
	for _, conv := range conversations {
		assert.NotEqual(t, empty.ID, conv.ID)
	}

	// Turns come back in chronological order.
	turns := conversations[1].Messages
	require.Len(t, turns, 2)
	assert.Equal(t, storage.RoleUser, turns[0].Role)
	assert.Equal(t, "안녕", turns[0].Content)
	assert.Equal(t, storage.RoleAssistant, turns[1].Role)
}
