package extraction

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func findCandidate(candidates []Candidate, category, key string) (Candidate, bool) {
	for _, c := range candidates {
		if c.Category == category && c.Key == key {
			return c, true
		}
	}
	return Candidate{}, false
}

func TestExtractGymUtterance(t *testing.T) {
	extractor := NewExtractor(nil)

	candidates := extractor.Extract("오늘 헬스 다녀왔어", nil)

	sports, ok := findCandidate(candidates, CategoryHobby, "sports")
	assert.True(t, ok, "expected a hobby/sports candidate")
	assert.Equal(t, "헬스", sports.Value)
	assert.Equal(t, 3, sports.Importance)

	// "오늘" also marks a recent experience, valued with the full utterance.
	exp, ok := findCandidate(candidates, CategoryExperience, "recent_experience")
	assert.True(t, ok, "expected an experience candidate")
	assert.Equal(t, "오늘 헬스 다녀왔어", exp.Value)
}

func TestExtractNoMatches(t *testing.T) {
	extractor := NewExtractor(nil)

	candidates := extractor.Extract("hmm", nil)
	assert.Empty(t, candidates)

	candidates = extractor.Extract("", nil)
	assert.Empty(t, candidates)
}

func TestExtractOneCandidatePerKey(t *testing.T) {
	extractor := NewExtractor(nil)

	// Multiple sports patterns in one utterance still yield a single
	// hobby/sports candidate, valued with the first matching pattern.
	candidates := extractor.Extract("운동 삼아 헬스랑 수영 둘 다 해", nil)

	count := 0
	for _, c := range candidates {
		if c.Category == CategoryHobby && c.Key == "sports" {
			count++
			assert.Equal(t, "운동", c.Value)
		}
	}
	assert.Equal(t, 1, count)
}

func TestExtractCaseInsensitive(t *testing.T) {
	extractor := NewExtractor(nil)

	candidates := extractor.Extract("주말엔 pc방 가서 게임해", nil)

	gaming, ok := findCandidate(candidates, CategoryHobby, "gaming")
	assert.True(t, ok)
	assert.Equal(t, 2, gaming.Importance)
}

func TestExtractGoalCapturesUtterance(t *testing.T) {
	extractor := NewExtractor(nil)

	utterance := "내년에는 기타를 배우고 싶어"
	candidates := extractor.Extract(utterance, nil)

	goal, ok := findCandidate(candidates, CategoryGoal, "future_plan")
	assert.True(t, ok)
	assert.Equal(t, utterance, goal.Value)
	assert.Equal(t, 4, goal.Importance)
}

func TestExtractTruncatesLongUtterance(t *testing.T) {
	extractor := NewExtractor(nil)

	long := "오늘 " + strings.Repeat("가", 200)
	candidates := extractor.Extract(long, nil)

	exp, ok := findCandidate(candidates, CategoryExperience, "recent_experience")
	assert.True(t, ok)
	assert.Equal(t, MaxValueRunes, len([]rune(exp.Value)))
}

func TestExtractDeterministic(t *testing.T) {
	extractor := NewExtractor(nil)

	first := extractor.Extract("어제 회사에서 친구랑 여행 계획 짰어", nil)
	second := extractor.Extract("어제 회사에서 친구랑 여행 계획 짰어", nil)
	assert.Equal(t, first, second)
	assert.NotEmpty(t, first)
}
