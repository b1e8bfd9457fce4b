// Package extraction turns raw user utterances into memory candidates using a
// keyword lexicon. Extraction is pure and deterministic: the same utterance
// against the same lexicon always yields the same candidates, and no I/O is
// performed.
package extraction

import "strings"

// Candidate is a fact proposed for storage. It carries everything needed for
// an upsert but no row identity or timestamps.
type Candidate struct {
	// Category is the memory category (e.g. "hobby").
	Category string

	// Key is the normalized key within the category (e.g. "sports").
	Key string

	// Value is the captured text: the matched pattern, or the truncated
	// utterance for free-text entries.
	Value string

	// Importance is the fact's weight, 1-5.
	Importance int
}

// Extractor scans utterances against a lexicon.
type Extractor struct {
	lexicon Lexicon
}

// NewExtractor creates an extractor with the given lexicon. A nil lexicon
// falls back to DefaultLexicon.
func NewExtractor(lexicon Lexicon) *Extractor {
	if lexicon == nil {
		lexicon = DefaultLexicon()
	}
	return &Extractor{lexicon: lexicon}
}

// Extract returns the memory candidates found in the utterance.
//
// Matching is case-insensitive substring matching. Each (category, key)
// produces at most one candidate per utterance: the first matching pattern of
// an entry wins and later patterns of the same entry are not considered.
// Extraction never fails; an utterance with no matches yields an empty slice.
//
// The recent turns are accepted for future context-aware matching but do not
// influence the current keyword pass.
func (e *Extractor) Extract(utterance string, recentTurns []string) []Candidate {
	lowered := strings.ToLower(utterance)

	var candidates []Candidate
	for _, entry := range e.lexicon {
		for _, pattern := range entry.Patterns {
			if !strings.Contains(lowered, strings.ToLower(pattern)) {
				continue
			}
			value := pattern
			if entry.Mode == ValueUtterance {
				value = truncateRunes(utterance, MaxValueRunes)
			}
			candidates = append(candidates, Candidate{
				Category:   entry.Category,
				Key:        entry.Key,
				Value:      value,
				Importance: entry.Importance,
			})
			break
		}
	}
	return candidates
}

// truncateRunes shortens s to at most n runes.
func truncateRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
