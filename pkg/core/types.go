package core

import "time"

// Memory categories.
const (
	CategoryHobby        = "hobby"
	CategoryWork         = "work"
	CategoryRelationship = "relationship"
	CategoryGoal         = "goal"
	CategoryPreference   = "preference"
	CategoryExperience   = "experience"
)

// Message roles.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Memory is a durable fact remembered about a user.
type Memory struct {
	// ID is the unique identifier of the memory.
	ID int64 `json:"id"`

	// UserID identifies the user this fact belongs to.
	UserID string `json:"user_id"`

	// Category is the memory category (hobby, work, relationship, goal,
	// preference, experience).
	Category string `json:"category"`

	// Key is the normalized key within the category.
	Key string `json:"key"`

	// Value is the remembered text.
	Value string `json:"value"`

	// Importance is the fact's weight, 1-5.
	Importance int `json:"importance"`

	// MentionCount is how many times the fact has come up.
	MentionCount int `json:"mention_count"`

	// CreatedAt is when the fact was first extracted.
	CreatedAt time.Time `json:"created_at"`

	// LastMentionedAt is when the fact most recently came up.
	LastMentionedAt time.Time `json:"last_mentioned_at"`

	// Score is the relevance score from the latest ranking, 0.0-1.0.
	Score float64 `json:"score,omitempty"`
}

// PatternProfile is a snapshot of a user's learned conversation style.
type PatternProfile struct {
	// UserID identifies the user.
	UserID string `json:"user_id"`

	// LengthPreference is short, medium, or long.
	LengthPreference string `json:"length_preference"`

	// ConversationStyle is prefers_questions, prefers_statements, or balanced.
	ConversationStyle string `json:"conversation_style"`

	// TopicDepthPreference is prefers_deep, prefers_shallow, or balanced.
	TopicDepthPreference string `json:"topic_depth_preference"`

	// FormalityLevel is formal, casual, or mixed.
	FormalityLevel string `json:"formality_level"`

	// ContinuationStyle is likes_long_conversations, prefers_brief, or
	// moderate_length.
	ContinuationStyle string `json:"continuation_style"`

	// ResponseSpeedExpectation is expects_fast, patient, or normal.
	ResponseSpeedExpectation string `json:"response_speed_expectation"`

	// Confidence is how strongly the profile should be applied, 0.0-0.8.
	Confidence float64 `json:"confidence"`

	// SampleSize is the number of conversations behind the snapshot.
	SampleSize int `json:"sample_size"`

	// GeneratedDirective is the rendered pattern directive.
	GeneratedDirective string `json:"generated_directive"`

	// UpdatedAt is when the snapshot was computed.
	UpdatedAt time.Time `json:"updated_at"`
}

// IntimacyScore is a user's relationship score and tier.
type IntimacyScore struct {
	// UserID identifies the user.
	UserID string `json:"user_id"`

	// Score is the accumulated relationship score, 0-100.
	Score float64 `json:"score"`

	// Tier is the relationship tier derived from the score:
	// new, acquainted, close, or intimate.
	Tier string `json:"tier"`

	// LastInteractionAt is when the score last moved.
	LastInteractionAt time.Time `json:"last_interaction_at"`
}

// Conversation is an ordered list of turns in one session.
type Conversation struct {
	// ID is the unique identifier of the conversation.
	ID int64 `json:"id"`

	// UserID identifies the user.
	UserID string `json:"user_id"`

	// Messages are the turns in chronological order.
	Messages []*Message `json:"messages"`

	// CreatedAt is when the conversation started.
	CreatedAt time.Time `json:"created_at"`
}

// Message is a single conversation turn.
type Message struct {
	// ID is the unique identifier of the message.
	ID int64 `json:"id"`

	// ConversationID is the conversation this turn belongs to.
	ConversationID int64 `json:"conversation_id"`

	// Role is "user" or "assistant".
	Role string `json:"role"`

	// Content is the turn text.
	Content string `json:"content"`

	// CreatedAt is when the turn was recorded.
	CreatedAt time.Time `json:"created_at"`
}

// DirectiveResult is the outcome of directive synthesis.
type DirectiveResult struct {
	// Directive is the plain-text system directive to prepend to the
	// outbound message list.
	Directive string `json:"directive"`

	// Strategy names the strategy that produced the directive:
	// relationship, pattern, or default.
	Strategy string `json:"strategy"`

	// Memories are the ranked memories surfaced by the relationship
	// strategy, if any.
	Memories []*Memory `json:"memories,omitempty"`
}

// LearnResult is the outcome of one learning pass over an utterance.
type LearnResult struct {
	// Memories are the facts extracted and persisted from the utterance.
	Memories []*Memory `json:"memories"`

	// Intimacy is the relationship score after the pass, if it moved.
	Intimacy *IntimacyScore `json:"intimacy,omitempty"`

	// ProfileRefreshed reports whether this pass recomputed the user's
	// pattern profile.
	ProfileRefreshed bool `json:"profile_refreshed"`
}
