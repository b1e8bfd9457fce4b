// Package postgres provides the PostgreSQL persistence backend.
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/bwmarrin/snowflake"
	_ "github.com/lib/pq"

	"github.com/maeum-ai/maeum-go/pkg/storage"
)

// Config contains configuration for creating a PostgreSQL store.
type Config struct {
	// Host is the database host (default: "localhost").
	Host string

	// Port is the database port (default: 5432).
	Port int

	// User is the database user.
	User string

	// Password is the database password.
	Password string

	// DBName is the database name.
	DBName string

	// SSLMode is the libpq sslmode value (default: "disable").
	SSLMode string

	// NodeID is the snowflake node ID used for row IDs (default: 1).
	NodeID int64
}

// Client implements storage.Store using PostgreSQL as the backend.
type Client struct {
	db   *sql.DB
	node *snowflake.Node
}

// NewClient creates a new PostgreSQL store and initializes the schema.
func NewClient(cfg *Config) (*Client, error) {
	if cfg.Host == "" {
		cfg.Host = "localhost"
	}
	if cfg.Port == 0 {
		cfg.Port = 5432
	}
	if cfg.SSLMode == "" {
		cfg.SSLMode = "disable"
	}
	if cfg.NodeID == 0 {
		cfg.NodeID = 1
	}

	dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.DBName, cfg.SSLMode)

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	node, err := snowflake.NewNode(cfg.NodeID)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create snowflake node: %w", err)
	}

	client := &Client{db: db, node: node}
	if err := client.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return client, nil
}

// initSchema initializes the database table structure.
func (c *Client) initSchema(ctx context.Context) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS memories (
			id BIGINT PRIMARY KEY,
			user_id TEXT NOT NULL,
			category TEXT NOT NULL,
			key TEXT NOT NULL,
			value TEXT NOT NULL,
			importance INTEGER NOT NULL,
			mention_count INTEGER NOT NULL DEFAULT 1,
			created_at TIMESTAMPTZ NOT NULL,
			last_mentioned_at TIMESTAMPTZ NOT NULL,
			UNIQUE(user_id, category, key)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_memories_user_rank
			ON memories(user_id, importance DESC, last_mentioned_at DESC)`,
		`CREATE TABLE IF NOT EXISTS pattern_profiles (
			user_id TEXT PRIMARY KEY,
			length_preference TEXT NOT NULL,
			conversation_style TEXT NOT NULL,
			topic_depth_preference TEXT NOT NULL,
			formality_level TEXT NOT NULL,
			continuation_style TEXT NOT NULL,
			response_speed_expectation TEXT NOT NULL,
			confidence DOUBLE PRECISION NOT NULL,
			sample_size INTEGER NOT NULL,
			generated_directive TEXT NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS intimacy_scores (
			user_id TEXT PRIMARY KEY,
			score DOUBLE PRECISION NOT NULL DEFAULT 0,
			last_interaction_at TIMESTAMPTZ NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS conversations (
			id BIGINT PRIMARY KEY,
			user_id TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_conversations_user
			ON conversations(user_id, created_at DESC)`,
		`CREATE TABLE IF NOT EXISTS conversation_messages (
			id BIGINT PRIMARY KEY,
			conversation_id BIGINT NOT NULL,
			role TEXT NOT NULL,
			content TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_messages_conversation
			ON conversation_messages(conversation_id, created_at)`,
	}

	for _, stmt := range statements {
		if _, err := c.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to initialize schema: %w", err)
		}
	}
	return nil
}

// UpsertMemory creates or updates the (user, category, key) fact row in a
// single statement, returning the stored row.
func (c *Client) UpsertMemory(ctx context.Context, memory *storage.Memory) (*storage.Memory, error) {
	now := time.Now()
	id := c.node.Generate().Int64()

	var m storage.Memory
	err := c.db.QueryRowContext(ctx,
		`INSERT INTO memories (id, user_id, category, key, value, importance, mention_count, created_at, last_mentioned_at)
		 VALUES ($1, $2, $3, $4, $5, $6, 1, $7, $7)
		 ON CONFLICT (user_id, category, key) DO UPDATE SET
			value = EXCLUDED.value,
			importance = GREATEST(memories.importance, EXCLUDED.importance),
			mention_count = memories.mention_count + 1,
			last_mentioned_at = EXCLUDED.last_mentioned_at
		 RETURNING id, user_id, category, key, value, importance, mention_count, created_at, last_mentioned_at`,
		id, memory.UserID, memory.Category, memory.Key, memory.Value, memory.Importance, now,
	).Scan(&m.ID, &m.UserID, &m.Category, &m.Key, &m.Value, &m.Importance, &m.MentionCount, &m.CreatedAt, &m.LastMentionedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert memory: %w", err)
	}
	return &m, nil
}

// QueryMemories returns up to limit memories for the user, ordered by
// importance descending then last-mentioned descending.
func (c *Client) QueryMemories(ctx context.Context, userID string, limit int) ([]*storage.Memory, error) {
	rows, err := c.db.QueryContext(ctx,
		`SELECT id, user_id, category, key, value, importance, mention_count, created_at, last_mentioned_at
		 FROM memories WHERE user_id = $1
		 ORDER BY importance DESC, last_mentioned_at DESC
		 LIMIT $2`, userID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query memories: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var memories []*storage.Memory
	for rows.Next() {
		var m storage.Memory
		if err := rows.Scan(&m.ID, &m.UserID, &m.Category, &m.Key, &m.Value, &m.Importance,
			&m.MentionCount, &m.CreatedAt, &m.LastMentionedAt); err != nil {
			return nil, fmt.Errorf("failed to scan memory: %w", err)
		}
		memories = append(memories, &m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}
	return memories, nil
}

// CountMemories returns the number of stored memories for the user.
func (c *Client) CountMemories(ctx context.Context, userID string) (int, error) {
	var count int
	err := c.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM memories WHERE user_id = $1`, userID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count memories: %w", err)
	}
	return count, nil
}

// SavePatternProfile wholly replaces the user's profile snapshot.
func (c *Client) SavePatternProfile(ctx context.Context, profile *storage.PatternProfile) error {
	_, err := c.db.ExecContext(ctx,
		`INSERT INTO pattern_profiles
			(user_id, length_preference, conversation_style, topic_depth_preference,
			 formality_level, continuation_style, response_speed_expectation,
			 confidence, sample_size, generated_directive, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		 ON CONFLICT (user_id) DO UPDATE SET
			length_preference = EXCLUDED.length_preference,
			conversation_style = EXCLUDED.conversation_style,
			topic_depth_preference = EXCLUDED.topic_depth_preference,
			formality_level = EXCLUDED.formality_level,
			continuation_style = EXCLUDED.continuation_style,
			response_speed_expectation = EXCLUDED.response_speed_expectation,
			confidence = EXCLUDED.confidence,
			sample_size = EXCLUDED.sample_size,
			generated_directive = EXCLUDED.generated_directive,
			updated_at = EXCLUDED.updated_at`,
		profile.UserID, profile.LengthPreference, profile.ConversationStyle,
		profile.TopicDepthPreference, profile.FormalityLevel, profile.ContinuationStyle,
		profile.ResponseSpeedExpectation, profile.Confidence, profile.SampleSize,
		profile.GeneratedDirective, profile.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save pattern profile: %w", err)
	}
	return nil
}

// GetPatternProfile returns the user's snapshot, or nil if none exists.
func (c *Client) GetPatternProfile(ctx context.Context, userID string) (*storage.PatternProfile, error) {
	var p storage.PatternProfile
	err := c.db.QueryRowContext(ctx,
		`SELECT user_id, length_preference, conversation_style, topic_depth_preference,
			formality_level, continuation_style, response_speed_expectation,
			confidence, sample_size, generated_directive, updated_at
		 FROM pattern_profiles WHERE user_id = $1`, userID,
	).Scan(&p.UserID, &p.LengthPreference, &p.ConversationStyle, &p.TopicDepthPreference,
		&p.FormalityLevel, &p.ContinuationStyle, &p.ResponseSpeedExpectation,
		&p.Confidence, &p.SampleSize, &p.GeneratedDirective, &p.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get pattern profile: %w", err)
	}
	return &p, nil
}

// GetIntimacy returns the user's score. A user with no row yet gets a
// zero-valued score, not an error.
func (c *Client) GetIntimacy(ctx context.Context, userID string) (*storage.IntimacyScore, error) {
	var s storage.IntimacyScore
	err := c.db.QueryRowContext(ctx,
		`SELECT user_id, score, last_interaction_at FROM intimacy_scores WHERE user_id = $1`,
		userID,
	).Scan(&s.UserID, &s.Score, &s.LastInteractionAt)
	if err == sql.ErrNoRows {
		return &storage.IntimacyScore{UserID: userID}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get intimacy score: %w", err)
	}
	return &s, nil
}

// UpdateIntimacy adds delta to the user's score, clamping at 100.
func (c *Client) UpdateIntimacy(ctx context.Context, userID string, delta float64) (*storage.IntimacyScore, error) {
	var s storage.IntimacyScore
	err := c.db.QueryRowContext(ctx,
		`INSERT INTO intimacy_scores (user_id, score, last_interaction_at)
		 VALUES ($1, LEAST(100.0, $2), $3)
		 ON CONFLICT (user_id) DO UPDATE SET
			score = LEAST(100.0, intimacy_scores.score + $2),
			last_interaction_at = EXCLUDED.last_interaction_at
		 RETURNING user_id, score, last_interaction_at`,
		userID, delta, time.Now(),
	).Scan(&s.UserID, &s.Score, &s.LastInteractionAt)
	if err != nil {
		return nil, fmt.Errorf("failed to update intimacy score: %w", err)
	}
	return &s, nil
}

// CreateConversation starts a new conversation for the user.
func (c *Client) CreateConversation(ctx context.Context, userID string) (*storage.Conversation, error) {
	now := time.Now()
	id := c.node.Generate().Int64()
	_, err := c.db.ExecContext(ctx,
		`INSERT INTO conversations (id, user_id, created_at) VALUES ($1, $2, $3)`,
		id, userID, now,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create conversation: %w", err)
	}
	return &storage.Conversation{ID: id, UserID: userID, CreatedAt: now}, nil
}

// AppendMessage appends a turn to a conversation.
func (c *Client) AppendMessage(ctx context.Context, conversationID int64, role, content string) (*storage.Message, error) {
	now := time.Now()
	id := c.node.Generate().Int64()
	_, err := c.db.ExecContext(ctx,
		`INSERT INTO conversation_messages (id, conversation_id, role, content, created_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		id, conversationID, role, content, now,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to append message: %w", err)
	}
	return &storage.Message{ID: id, ConversationID: conversationID, Role: role, Content: content, CreatedAt: now}, nil
}

// ListRecentConversations returns up to limit conversations for the user,
// most recent first, each with its turns in chronological order.
func (c *Client) ListRecentConversations(ctx context.Context, userID string, limit int) ([]*storage.Conversation, error) {
	rows, err := c.db.QueryContext(ctx,
		`SELECT id, user_id, created_at FROM conversations
		 WHERE user_id = $1 ORDER BY created_at DESC LIMIT $2`, userID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query conversations: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var conversations []*storage.Conversation
	for rows.Next() {
		var conv storage.Conversation
		if err := rows.Scan(&conv.ID, &conv.UserID, &conv.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan conversation: %w", err)
		}
		conversations = append(conversations, &conv)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	var withTurns []*storage.Conversation
	for _, conv := range conversations {
		messages, err := c.listMessages(ctx, conv.ID)
		if err != nil {
			return nil, err
		}
		if len(messages) == 0 {
			continue
		}
		conv.Messages = messages
		withTurns = append(withTurns, conv)
	}
	return withTurns, nil
}

// listMessages reads a conversation's turns in chronological order.
func (c *Client) listMessages(ctx context.Context, conversationID int64) ([]*storage.Message, error) {
	rows, err := c.db.QueryContext(ctx,
		`SELECT id, conversation_id, role, content, created_at
		 FROM conversation_messages WHERE conversation_id = $1 ORDER BY created_at, id`,
		conversationID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query messages: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var messages []*storage.Message
	for rows.Next() {
		var m storage.Message
		if err := rows.Scan(&m.ID, &m.ConversationID, &m.Role, &m.Content, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan message: %w", err)
		}
		messages = append(messages, &m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}
	return messages, nil
}

// Close closes the database connection.
func (c *Client) Close() error {
	if c.db != nil {
		return c.db.Close()
	}
	return nil
}
