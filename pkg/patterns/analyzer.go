// Package patterns derives a per-user conversation-style profile from recent
// conversation history. The analyzer is pure and deterministic: identical
// input always produces an identical profile, and no I/O is performed.
package patterns

import (
	"time"

	"github.com/maeum-ai/maeum-go/pkg/storage"
)

// Metric label values.
const (
	LengthShort  = "short"
	LengthMedium = "medium"
	LengthLong   = "long"

	StyleQuestions  = "prefers_questions"
	StyleStatements = "prefers_statements"
	StyleBalanced   = "balanced"

	DepthDeep     = "prefers_deep"
	DepthShallow  = "prefers_shallow"
	DepthBalanced = "balanced"

	FormalityFormal = "formal"
	FormalityCasual = "casual"
	FormalityMixed  = "mixed"

	ContinuationLong     = "likes_long_conversations"
	ContinuationBrief    = "prefers_brief"
	ContinuationModerate = "moderate_length"

	SpeedFast    = "expects_fast"
	SpeedPatient = "patient"
	SpeedNormal  = "normal"
)

// Config holds the analyzer thresholds.
type Config struct {
	// MinConversations is the minimum history size; below it Analyze
	// returns nil.
	MinConversations int

	// MinBucketSamples is the minimum sample count for a reply-length
	// bucket to be considered.
	MinBucketSamples int

	// StyleGap is the engagement gap required to prefer questions or
	// statements.
	StyleGap float64

	// DepthGap is the engagement gap required to prefer deep or shallow
	// topics.
	DepthGap float64

	// ConfidenceCap bounds the confidence of any profile.
	ConfidenceCap float64
}

// DefaultConfig returns the standard analyzer thresholds.
func DefaultConfig() Config {
	return Config{
		MinConversations: 5,
		MinBucketSamples: 5,
		StyleGap:         0.2,
		DepthGap:         0.15,
		ConfidenceCap:    0.8,
	}
}

// Formality and urgency marker lists.
var (
	formalMarkers  = []string{"습니다", "해주세요", "부탁드립니다", "감사합니다"}
	casualMarkers  = []string{"ㅋㅋ", "ㅎㅎ", "~", "야"}
	urgencyMarkers = []string{"빨리", "급해", "어떡해", "도와줘", "!!!!"}
)

// Analyzer computes pattern profiles from conversation history.
type Analyzer struct {
	cfg Config
	now func() time.Time
}

// NewAnalyzer creates an analyzer with the given thresholds.
func NewAnalyzer(cfg Config) *Analyzer {
	if cfg.MinConversations <= 0 {
		cfg = DefaultConfig()
	}
	return &Analyzer{cfg: cfg, now: time.Now}
}

// pairSample is one (assistant turn, following user turn) observation.
type pairSample struct {
	assistantLen int
	isQuestion   bool
	engagement   float64
}

// Analyze derives a profile from the user's recent conversations.
//
// Fewer conversations than the minimum yields nil, which means insufficient
// data rather than an error. The returned profile carries a rendered
// directive and a confidence in [0, ConfidenceCap].
func (a *Analyzer) Analyze(userID string, conversations []*storage.Conversation) *storage.PatternProfile {
	if len(conversations) < a.cfg.MinConversations {
		return nil
	}

	var pairs []pairSample
	var deepEngagements, shallowEngagements []float64
	var totalTurns int

	for _, conv := range conversations {
		turns := conv.Messages
		totalTurns += len(turns)

		var convPairs []pairSample
		for i := 0; i+1 < len(turns); i++ {
			if turns[i].Role != storage.RoleAssistant || turns[i+1].Role != storage.RoleUser {
				continue
			}
			convPairs = append(convPairs, pairSample{
				assistantLen: len([]rune(turns[i].Content)),
				isQuestion:   isQuestion(turns[i].Content),
				engagement:   Engagement(turns[i+1].Content),
			})
		}
		pairs = append(pairs, convPairs...)

		convEngagement := conversationEngagement(turns)
		if isDeepConversation(turns) {
			deepEngagements = append(deepEngagements, convEngagement)
		} else {
			shallowEngagements = append(shallowEngagements, convEngagement)
		}
	}

	profile := &storage.PatternProfile{
		UserID:                   userID,
		LengthPreference:         a.lengthPreference(pairs),
		ConversationStyle:        a.conversationStyle(pairs),
		TopicDepthPreference:     a.topicDepthPreference(deepEngagements, shallowEngagements),
		FormalityLevel:           formalityLevel(conversations),
		ContinuationStyle:        continuationStyle(totalTurns, len(conversations)),
		ResponseSpeedExpectation: responseSpeedExpectation(conversations),
		SampleSize:               len(conversations),
		UpdatedAt:                a.now(),
	}
	profile.Confidence = a.confidence(profile)
	profile.GeneratedDirective = RenderDirective(profile)
	return profile
}

// lengthPreference picks the assistant reply-length bucket with the highest
// mean follow-on engagement. Buckets with fewer samples than the minimum are
// ignored; with no qualifying bucket the preference defaults to medium.
func (a *Analyzer) lengthPreference(pairs []pairSample) string {
	sums := map[string]float64{}
	counts := map[string]int{}
	for _, p := range pairs {
		bucket := LengthMedium
		switch {
		case p.assistantLen < 50:
			bucket = LengthShort
		case p.assistantLen >= 150:
			bucket = LengthLong
		}
		sums[bucket] += p.engagement
		counts[bucket]++
	}

	best := ""
	bestMean := -1.0
	for _, bucket := range []string{LengthShort, LengthMedium, LengthLong} {
		if counts[bucket] < a.cfg.MinBucketSamples {
			continue
		}
		mean := sums[bucket] / float64(counts[bucket])
		if mean > bestMean {
			best = bucket
			bestMean = mean
		}
	}
	if best == "" {
		return LengthMedium
	}
	return best
}

// conversationStyle compares engagement after assistant questions against
// engagement after assistant statements. A side with no observations scores
// 0, so a one-sided history can still resolve a preference.
func (a *Analyzer) conversationStyle(pairs []pairSample) string {
	var qSum, sSum float64
	var qCount, sCount int
	for _, p := range pairs {
		if p.isQuestion {
			qSum += p.engagement
			qCount++
		} else {
			sSum += p.engagement
			sCount++
		}
	}
	if qCount == 0 && sCount == 0 {
		return StyleBalanced
	}

	var qMean, sMean float64
	if qCount > 0 {
		qMean = qSum / float64(qCount)
	}
	if sCount > 0 {
		sMean = sSum / float64(sCount)
	}
	switch {
	case qMean-sMean > a.cfg.StyleGap:
		return StyleQuestions
	case sMean-qMean > a.cfg.StyleGap:
		return StyleStatements
	default:
		return StyleBalanced
	}
}

// topicDepthPreference compares conversation-level engagement of deep
// conversations against shallow ones. An empty side scores 0.
func (a *Analyzer) topicDepthPreference(deep, shallow []float64) string {
	if len(deep) == 0 && len(shallow) == 0 {
		return DepthBalanced
	}
	deepMean := mean(deep)
	shallowMean := mean(shallow)
	switch {
	case deepMean-shallowMean > a.cfg.DepthGap:
		return DepthDeep
	case shallowMean-deepMean > a.cfg.DepthGap:
		return DepthShallow
	default:
		return DepthBalanced
	}
}

// isDeepConversation classifies a conversation as deep when it runs past 6
// turns or its user turns average more than 30 runes.
func isDeepConversation(turns []*storage.Message) bool {
	if len(turns) > 6 {
		return true
	}
	var userLen, userCount int
	for _, t := range turns {
		if t.Role == storage.RoleUser {
			userLen += len([]rune(t.Content))
			userCount++
		}
	}
	return userCount > 0 && float64(userLen)/float64(userCount) > 30
}

// formalityLevel computes the formal-marker ratio across user turns. Each
// turn counts once, with formal markers taking precedence over casual ones,
// and the denominator carries +1 smoothing.
func formalityLevel(conversations []*storage.Conversation) string {
	var formal, casual int
	for _, conv := range conversations {
		for _, turn := range conv.Messages {
			if turn.Role != storage.RoleUser {
				continue
			}
			switch {
			case containsAny(turn.Content, formalMarkers):
				formal++
			case containsAny(turn.Content, casualMarkers):
				casual++
			}
		}
	}

	ratio := float64(formal) / float64(formal+casual+1)
	switch {
	case ratio > 0.6:
		return FormalityFormal
	case ratio < 0.2:
		return FormalityCasual
	default:
		return FormalityMixed
	}
}

// continuationStyle labels the user by mean conversation length in turns.
func continuationStyle(totalTurns, conversationCount int) string {
	meanTurns := float64(totalTurns) / float64(conversationCount)
	switch {
	case meanTurns > 8:
		return ContinuationLong
	case meanTurns < 4:
		return ContinuationBrief
	default:
		return ContinuationModerate
	}
}

// responseSpeedExpectation labels the user by the fraction of user turns
// carrying an urgency marker.
func responseSpeedExpectation(conversations []*storage.Conversation) string {
	var urgent, total int
	for _, conv := range conversations {
		for _, turn := range conv.Messages {
			if turn.Role != storage.RoleUser {
				continue
			}
			total++
			if containsAny(turn.Content, urgencyMarkers) {
				urgent++
			}
		}
	}
	if total == 0 {
		return SpeedNormal
	}

	ratio := float64(urgent) / float64(total)
	switch {
	case ratio > 0.3:
		return SpeedFast
	case ratio < 0.1:
		return SpeedPatient
	default:
		return SpeedNormal
	}
}

// confidence is the fraction of metrics that resolved to a non-balanced
// label, scaled by the cap.
func (a *Analyzer) confidence(p *storage.PatternProfile) float64 {
	metrics := []string{
		p.LengthPreference,
		p.ConversationStyle,
		p.TopicDepthPreference,
		p.FormalityLevel,
		p.ContinuationStyle,
		p.ResponseSpeedExpectation,
	}
	informative := 0
	for _, m := range metrics {
		if m != "" && m != StyleBalanced {
			informative++
		}
	}
	return float64(informative) / float64(len(metrics)) * a.cfg.ConfidenceCap
}

// conversationEngagement is the mean engagement over every user turn in a
// conversation, or 0 when it has none.
func conversationEngagement(turns []*storage.Message) float64 {
	var sum float64
	var count int
	for _, t := range turns {
		if t.Role != storage.RoleUser {
			continue
		}
		sum += Engagement(t.Content)
		count++
	}
	if count == 0 {
		return 0
	}
	return sum / float64(count)
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}
