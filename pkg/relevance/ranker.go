// Package relevance scores stored memories against the current utterance and
// selects the few worth injecting into a directive. Ranking is pure: it never
// touches storage and never fails.
package relevance

import (
	"sort"
	"strings"
	"time"

	"github.com/maeum-ai/maeum-go/pkg/storage"
)

// Default scoring parameters.
const (
	DefaultDirectMatchScore  = 0.8
	DefaultCategoryHintScore = 0.6
	DefaultImportanceWeight  = 0.1
	DefaultRecentScore       = 0.3
	DefaultOldScore          = 0.1
	DefaultMinScore          = 0.3
	DefaultLimit             = 5

	recentWindow = 7 * 24 * time.Hour
	oldWindow    = 30 * 24 * time.Hour
)

// Weights holds the scoring parameters of a ranker.
type Weights struct {
	// DirectMatch is awarded when the utterance contains the memory's key
	// or value.
	DirectMatch float64

	// CategoryHint is awarded when the utterance contains a marker word of
	// the memory's category.
	CategoryHint float64

	// ImportanceWeight scales the normalized importance term:
	// (importance / 5) * ImportanceWeight.
	ImportanceWeight float64

	// Recent is awarded when the memory was mentioned within the last week.
	Recent float64

	// Old is awarded when the memory was mentioned within the last month
	// but not the last week.
	Old float64

	// MinScore is the exclusive lower bound: memories scoring at or below
	// it are discarded.
	MinScore float64

	// CategoryMarkers maps a category to the marker words that hint at it.
	CategoryMarkers map[string][]string
}

// DefaultWeights returns the standard scoring parameters.
func DefaultWeights() Weights {
	return Weights{
		DirectMatch:      DefaultDirectMatchScore,
		CategoryHint:     DefaultCategoryHintScore,
		ImportanceWeight: DefaultImportanceWeight,
		Recent:           DefaultRecentScore,
		Old:              DefaultOldScore,
		MinScore:         DefaultMinScore,
		CategoryMarkers: map[string][]string{
			"hobby": {"취미", "여가"},
			"work":  {"일", "회사"},
		},
	}
}

// Ranker scores memories against utterances.
type Ranker struct {
	weights Weights
	now     func() time.Time
}

// NewRanker creates a ranker with the given weights.
func NewRanker(weights Weights) *Ranker {
	return &Ranker{weights: weights, now: time.Now}
}

// Rank scores each memory against the utterance and returns up to limit
// memories ordered by descending relevance. Memories scoring at or below the
// minimum are discarded even if fewer than limit remain. A limit <= 0 falls
// back to DefaultLimit.
//
// Ties break on importance descending, then last-mentioned descending. The
// input slice is not modified; returned memories carry their score in the
// ephemeral Score field.
func (r *Ranker) Rank(utterance string, memories []*storage.Memory, limit int) []*storage.Memory {
	if limit <= 0 {
		limit = DefaultLimit
	}
	now := r.now()
	lowered := strings.ToLower(utterance)

	var ranked []*storage.Memory
	for _, m := range memories {
		score := r.score(lowered, m, now)
		if score <= r.weights.MinScore {
			continue
		}
		scored := *m
		scored.Score = score
		ranked = append(ranked, &scored)
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Score != ranked[j].Score {
			return ranked[i].Score > ranked[j].Score
		}
		if ranked[i].Importance != ranked[j].Importance {
			return ranked[i].Importance > ranked[j].Importance
		}
		return ranked[i].LastMentionedAt.After(ranked[j].LastMentionedAt)
	})

	if len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked
}

// score computes the relevance of a single memory, capped at 1.0.
func (r *Ranker) score(lowered string, m *storage.Memory, now time.Time) float64 {
	var score float64

	if strings.Contains(lowered, strings.ToLower(m.Key)) ||
		strings.Contains(lowered, strings.ToLower(m.Value)) {
		score += r.weights.DirectMatch
	}

	for _, marker := range r.weights.CategoryMarkers[m.Category] {
		if strings.Contains(lowered, strings.ToLower(marker)) {
			score += r.weights.CategoryHint
			break
		}
	}

	score += float64(m.Importance) / 5.0 * r.weights.ImportanceWeight

	age := now.Sub(m.LastMentionedAt)
	switch {
	case age < recentWindow:
		score += r.weights.Recent
	case age < oldWindow:
		score += r.weights.Old
	}

	if score > 1.0 {
		score = 1.0
	}
	return score
}
