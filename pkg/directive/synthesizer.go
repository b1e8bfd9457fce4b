// Package directive composes the system directive prepended to each outbound
// message list. It selects between three strategies in fixed precedence:
// relationship-aware, pattern-based, and a static default.
package directive

import (
	"fmt"
	"strings"

	"github.com/maeum-ai/maeum-go/pkg/intimacy"
	"github.com/maeum-ai/maeum-go/pkg/storage"
)

// DefaultDirective is the static fallback used when nothing is known about
// the user or the store is unreachable.
const DefaultDirective = "너는 사용자의 친한 친구야. 자연스럽고 친근하게 대화해줘."

// MinPatternConfidence is the confidence a profile needs for its directive
// to be used.
const MinPatternConfidence = 0.3

// MaxMemoriesInDirective bounds how many memories a relationship directive
// lists.
const MaxMemoriesInDirective = 5

// Strategy identifies which directive strategy produced the output.
type Strategy string

const (
	StrategyRelationship Strategy = "relationship"
	StrategyPattern      Strategy = "pattern"
	StrategyDefault      Strategy = "default"
)

// Input is the per-user state the synthesizer selects a strategy from. All
// fields are pre-fetched by the caller; the synthesizer performs no I/O.
type Input struct {
	// Tier is the user's current relationship tier.
	Tier intimacy.Tier

	// MemoryCount is the user's total stored-memory count.
	MemoryCount int

	// Memories are the ranked memories to surface, best first. Only the
	// first MaxMemoriesInDirective are rendered.
	Memories []*storage.Memory

	// Profile is the user's pattern snapshot, or nil.
	Profile *storage.PatternProfile
}

// Synthesizer builds directives from per-user state.
type Synthesizer struct {
	minConfidence float64
}

// NewSynthesizer creates a synthesizer with the default confidence threshold.
func NewSynthesizer() *Synthesizer {
	return &Synthesizer{minConfidence: MinPatternConfidence}
}

// Build returns the directive for the given state and the strategy that
// produced it.
//
// The relationship strategy applies when the tier is at least acquainted and
// the user has stored memories. Otherwise a pattern profile with sufficient
// confidence supplies its directive verbatim. Everything else falls through
// to the static default.
func (s *Synthesizer) Build(in Input) (string, Strategy) {
	if in.Tier.AtLeast(intimacy.TierAcquainted) && in.MemoryCount > 0 {
		return renderRelationshipDirective(in.Tier, in.Memories), StrategyRelationship
	}
	if in.Profile != nil && in.Profile.Confidence > s.minConfidence && in.Profile.GeneratedDirective != "" {
		return in.Profile.GeneratedDirective, StrategyPattern
	}
	return DefaultDirective, StrategyDefault
}

// tier framing lines for the relationship directive.
var tierFraming = map[intimacy.Tier]string{
	intimacy.TierAcquainted: "너는 사용자와 조금씩 친해지고 있는 친구야.",
	intimacy.TierClose:      "너는 사용자와 꽤 친한 친구야.",
	intimacy.TierIntimate:   "너는 이 사용자와 대화를 많이 나눠본 친한 친구야.",
}

// per-category phrasing for remembered facts.
var categoryPhrases = map[string]string{
	"hobby":        "%s을(를) 즐겨",
	"work":         "회사/학교 관련: %s",
	"relationship": "주변 사람: %s",
	"goal":         "목표: %s",
	"preference":   "선호: %s",
	"experience":   "최근 경험: %s",
}

// renderRelationshipDirective renders the tier framing plus up to five
// remembered facts grouped by category.
func renderRelationshipDirective(tier intimacy.Tier, memories []*storage.Memory) string {
	var b strings.Builder
	b.WriteString(tierFraming[tier])
	b.WriteString("\n")

	if len(memories) > MaxMemoriesInDirective {
		memories = memories[:MaxMemoriesInDirective]
	}
	if len(memories) > 0 {
		b.WriteString("\n사용자에 대해 기억하는 것들:\n")
		for _, m := range groupByCategory(memories) {
			b.WriteString("- ")
			b.WriteString(phraseFor(m))
			b.WriteString("\n")
		}
	}

	b.WriteString("\n이 기억들을 바탕으로 자연스럽고 친근하게 대화해줘.")
	return b.String()
}

// phraseFor renders one memory with its category phrasing.
func phraseFor(m *storage.Memory) string {
	phrase, ok := categoryPhrases[m.Category]
	if !ok {
		return m.Value
	}
	return fmt.Sprintf(phrase, m.Value)
}

// groupByCategory reorders memories so same-category facts sit together,
// with categories appearing in rank order of first appearance.
func groupByCategory(memories []*storage.Memory) []*storage.Memory {
	index := map[string]int{}
	var groups [][]*storage.Memory
	for _, m := range memories {
		i, ok := index[m.Category]
		if !ok {
			i = len(groups)
			index[m.Category] = i
			groups = append(groups, nil)
		}
		groups[i] = append(groups[i], m)
	}

	out := make([]*storage.Memory, 0, len(memories))
	for _, group := range groups {
		out = append(out, group...)
	}
	return out
}
