// Package storage provides interfaces and record types for persistence backends.
//
// It defines the narrow store interfaces the engine components read and write
// through (MemoryStore, PatternStore, IntimacyStore, ConversationStore), the
// combined Store interface all backends implement, and the persisted record
// types. The record types are defined here rather than in core to avoid
// circular dependencies; core mirrors them with JSON-tagged public types.
package storage

import (
	"context"
	"time"
)

// Memory is a single durable fact extracted about a user.
//
// A memory is unique per (UserID, Category, Key). Re-extraction of the same
// key updates the row in place: the value is replaced, MentionCount is
// incremented, Importance keeps the maximum of old and new, and
// LastMentionedAt is touched. Rows are never deleted by the engine.
type Memory struct {
	// ID is the unique identifier of the memory row.
	ID int64

	// UserID identifies the user this fact belongs to.
	UserID string

	// Category is one of: hobby, work, relationship, goal, preference, experience.
	Category string

	// Key is the normalized lexicon key within the category (e.g. "sports").
	Key string

	// Value is the captured text: the matched phrase, or a truncated
	// utterance for free-text categories.
	Value string

	// Importance is the fact's weight, 1-5.
	Importance int

	// MentionCount is how many times this fact has been extracted (>= 1).
	MentionCount int

	// CreatedAt is when the fact was first extracted.
	CreatedAt time.Time

	// LastMentionedAt is when the fact was most recently extracted.
	LastMentionedAt time.Time

	// Score is the relevance score from ranking operations (0.0-1.0).
	// Ephemeral; never persisted.
	Score float64
}

// PatternProfile is a per-user snapshot of aggregated conversation-style
// statistics together with the directive rendered from them.
//
// A profile is wholly replaced on each recomputation, never merged.
type PatternProfile struct {
	// UserID identifies the user this profile belongs to.
	UserID string

	// LengthPreference is the preferred assistant reply length:
	// short, medium, or long.
	LengthPreference string

	// ConversationStyle is prefers_questions, prefers_statements, or balanced.
	ConversationStyle string

	// TopicDepthPreference is prefers_deep, prefers_shallow, or balanced.
	TopicDepthPreference string

	// FormalityLevel is formal, casual, or mixed.
	FormalityLevel string

	// ContinuationStyle is likes_long_conversations, prefers_brief, or
	// moderate_length.
	ContinuationStyle string

	// ResponseSpeedExpectation is expects_fast, patient, or normal.
	ResponseSpeedExpectation string

	// Confidence is how strongly the metrics should be applied, 0.0-0.8.
	Confidence float64

	// SampleSize is the number of conversations the snapshot was computed from.
	SampleSize int

	// GeneratedDirective is the rendered pattern directive.
	GeneratedDirective string

	// UpdatedAt is when the snapshot was computed.
	UpdatedAt time.Time
}

// IntimacyScore is the bounded relationship score for a user.
type IntimacyScore struct {
	// UserID identifies the user.
	UserID string

	// Score is the accumulated relationship score, 0-100, clamped at 100
	// and never decreased by the engine.
	Score float64

	// LastInteractionAt is when the score was last updated.
	LastInteractionAt time.Time
}

// Conversation is an ordered list of turns belonging to one user session.
type Conversation struct {
	// ID is the unique identifier of the conversation.
	ID int64

	// UserID identifies the user who had this conversation.
	UserID string

	// Messages are the turns in chronological order.
	Messages []*Message

	// CreatedAt is when the conversation started.
	CreatedAt time.Time
}

// Message roles.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is a single turn within a conversation.
type Message struct {
	// ID is the unique identifier of the message.
	ID int64

	// ConversationID is the conversation this turn belongs to.
	ConversationID int64

	// Role is "user" or "assistant".
	Role string

	// Content is the turn text.
	Content string

	// CreatedAt is when the turn was recorded.
	CreatedAt time.Time
}

// MemoryStore persists extracted facts.
type MemoryStore interface {
	// UpsertMemory creates the (UserID, Category, Key) row or updates it in
	// place: value replaced, mention count incremented, importance raised to
	// max(existing, new), last-mentioned timestamp touched.
	//
	// Returns the stored row after the write.
	UpsertMemory(ctx context.Context, memory *Memory) (*Memory, error)

	// QueryMemories returns up to limit memories for the user, ordered by
	// importance descending then last-mentioned descending.
	QueryMemories(ctx context.Context, userID string, limit int) ([]*Memory, error)

	// CountMemories returns the number of stored memories for the user.
	CountMemories(ctx context.Context, userID string) (int, error)
}

// PatternStore persists pattern-profile snapshots.
type PatternStore interface {
	// SavePatternProfile wholly replaces the user's profile snapshot.
	SavePatternProfile(ctx context.Context, profile *PatternProfile) error

	// GetPatternProfile returns the user's snapshot, or nil if none exists.
	GetPatternProfile(ctx context.Context, userID string) (*PatternProfile, error)
}

// IntimacyStore persists the bounded relationship score.
type IntimacyStore interface {
	// GetIntimacy returns the user's score. A user with no row yet gets a
	// zero-valued score, not an error.
	GetIntimacy(ctx context.Context, userID string) (*IntimacyScore, error)

	// UpdateIntimacy adds delta (>= 0) to the user's score, clamping at 100,
	// and touches the last-interaction timestamp.
	//
	// Returns the score after the write.
	UpdateIntimacy(ctx context.Context, userID string, delta float64) (*IntimacyScore, error)
}

// ConversationStore persists turn history for pattern analysis.
type ConversationStore interface {
	// CreateConversation starts a new conversation for the user.
	CreateConversation(ctx context.Context, userID string) (*Conversation, error)

	// AppendMessage appends a turn to a conversation.
	AppendMessage(ctx context.Context, conversationID int64, role, content string) (*Message, error)

	// ListRecentConversations returns up to limit conversations for the user,
	// most recent first, each with its turns in chronological order.
	// Conversations with no turns are omitted.
	ListRecentConversations(ctx context.Context, userID string, limit int) ([]*Conversation, error)
}

// Store is the combined persistence interface all backends implement.
type Store interface {
	MemoryStore
	PatternStore
	IntimacyStore
	ConversationStore

	// Close closes the store and releases resources.
	Close() error
}
