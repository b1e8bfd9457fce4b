package patterns

import "strings"

// Marker word lists for the engagement heuristic.
var (
	questionMarkers   = []string{"?", "어떻게", "왜", "뭐"}
	continuityMarkers = []string{"그런데", "근데", "그래서"}
	gratitudeMarkers  = []string{"고마워", "감사", "도움"}

	// Bare acknowledgments that signal disengagement regardless of the
	// additive terms.
	acknowledgmentTokens = map[string]bool{
		"응":  true,
		"그래": true,
		"아":  true,
		"음":  true,
		"ㅇㅇ": true,
	}

	// Markers that classify an assistant turn as a question.
	assistantQuestionMarkers = []string{"?", "어떤", "무엇", "언제"}
)

// Engagement estimates how much a user reply signals interest in the
// preceding assistant turn, in [0, 1].
//
// Length, question, continuity, and gratitude signals add up. A reply
// shorter than 5 runes or consisting of a bare acknowledgment token
// (whitespace-trimmed) has 0.4 subtracted, floored at 0; the result is then
// capped at 1. Length is measured on the raw content.
func Engagement(content string) float64 {
	length := len([]rune(content))

	var score float64
	if length > 10 {
		score += 0.2
	}
	if length > 30 {
		score += 0.2
	}
	if length > 50 {
		score += 0.1
	}
	if containsAny(content, questionMarkers) {
		score += 0.3
	}
	if containsAny(content, continuityMarkers) {
		score += 0.2
	}
	if containsAny(content, gratitudeMarkers) {
		score += 0.3
	}

	if length < 5 || acknowledgmentTokens[strings.TrimSpace(content)] {
		score -= 0.4
		if score < 0 {
			score = 0
		}
	}
	if score > 1 {
		score = 1
	}
	return score
}

// isQuestion reports whether an assistant turn reads as a question.
func isQuestion(content string) bool {
	return containsAny(content, assistantQuestionMarkers)
}

func containsAny(s string, markers []string) bool {
	for _, marker := range markers {
		if strings.Contains(s, marker) {
			return true
		}
	}
	return false
}
