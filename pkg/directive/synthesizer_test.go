package directive

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/maeum-ai/maeum-go/pkg/intimacy"
	"github.com/maeum-ai/maeum-go/pkg/storage"
)

func TestBuildDefaultForNewUser(t *testing.T) {
	s := NewSynthesizer()

	out, strategy := s.Build(Input{Tier: intimacy.TierNew})
	assert.Equal(t, DefaultDirective, out)
	assert.Equal(t, StrategyDefault, strategy)
}

func TestBuildPatternStrategy(t *testing.T) {
	s := NewSynthesizer()

	profile := &storage.PatternProfile{
		Confidence:         0.53,
		GeneratedDirective: "너는 사용자의 대화 패턴을 학습한 맞춤형 AI야.",
	}

	out, strategy := s.Build(Input{Tier: intimacy.TierNew, Profile: profile})
	assert.Equal(t, profile.GeneratedDirective, out)
	assert.Equal(t, StrategyPattern, strategy)
}

func TestBuildLowConfidenceProfileIgnored(t *testing.T) {
	s := NewSynthesizer()

	profile := &storage.PatternProfile{
		Confidence:         0.2,
		GeneratedDirective: "무시되어야 하는 지시문",
	}

	out, strategy := s.Build(Input{Tier: intimacy.TierNew, Profile: profile})
	assert.Equal(t, DefaultDirective, out)
	assert.Equal(t, StrategyDefault, strategy)
}

func TestBuildRelationshipBeatsPattern(t *testing.T) {
	s := NewSynthesizer()

	profile := &storage.PatternProfile{
		Confidence:         0.8,
		GeneratedDirective: "패턴 기반 지시문",
	}
	memories := []*storage.Memory{
		{Category: "hobby", Key: "sports", Value: "헬스", Importance: 3},
	}

	out, strategy := s.Build(Input{
		Tier:        intimacy.TierIntimate,
		MemoryCount: 1,
		Memories:    memories,
		Profile:     profile,
	})
	assert.Equal(t, StrategyRelationship, strategy)
	assert.NotEqual(t, profile.GeneratedDirective, out)
	assert.Contains(t, out, "헬스")
	assert.Contains(t, out, "친한 친구")
}

func TestBuildRelationshipNeedsMemories(t *testing.T) {
	s := NewSynthesizer()

	// Tier qualifies but the user has no stored memories.
	out, strategy := s.Build(Input{Tier: intimacy.TierClose, MemoryCount: 0})
	assert.Equal(t, DefaultDirective, out)
	assert.Equal(t, StrategyDefault, strategy)
}

func TestBuildRelationshipCapsMemoryList(t *testing.T) {
	s := NewSynthesizer()

	var memories []*storage.Memory
	for i := 0; i < 10; i++ {
		memories = append(memories, &storage.Memory{
			Category: "hobby", Key: "sports", Value: "운동",
		})
	}
	memories = append(memories, &storage.Memory{
		Category: "goal", Key: "future_plan", Value: "제빵 배우기",
	})

	out, strategy := s.Build(Input{
		Tier:        intimacy.TierAcquainted,
		MemoryCount: len(memories),
		Memories:    memories,
	})
	assert.Equal(t, StrategyRelationship, strategy)

	// Only the first five ranked memories are listed, so the goal beyond
	// the cap never appears.
	assert.NotContains(t, out, "제빵")
}

func TestBuildRelationshipGroupsByCategory(t *testing.T) {
	s := NewSynthesizer()

	memories := []*storage.Memory{
		{Category: "hobby", Key: "sports", Value: "헬스"},
		{Category: "relationship", Key: "family", Value: "엄마"},
		{Category: "hobby", Key: "music", Value: "피아노"},
	}

	out, _ := s.Build(Input{
		Tier:        intimacy.TierClose,
		MemoryCount: 3,
		Memories:    memories,
	})
	assert.Contains(t, out, "헬스을(를) 즐겨")
	assert.Contains(t, out, "피아노을(를) 즐겨")
	assert.Contains(t, out, "주변 사람: 엄마")
}
