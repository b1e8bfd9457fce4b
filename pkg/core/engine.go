package core

import (
	"context"
	"fmt"
	"log"
	"sync"

	"github.com/maeum-ai/maeum-go/pkg/directive"
	"github.com/maeum-ai/maeum-go/pkg/extraction"
	"github.com/maeum-ai/maeum-go/pkg/intimacy"
	"github.com/maeum-ai/maeum-go/pkg/llm"
	"github.com/maeum-ai/maeum-go/pkg/llm/openai"
	"github.com/maeum-ai/maeum-go/pkg/patterns"
	"github.com/maeum-ai/maeum-go/pkg/relevance"
	"github.com/maeum-ai/maeum-go/pkg/storage"
	"github.com/maeum-ai/maeum-go/pkg/storage/oceanbase"
	"github.com/maeum-ai/maeum-go/pkg/storage/postgres"
	"github.com/maeum-ai/maeum-go/pkg/storage/sqlite"
)

// Engine is the conversational memory and personalization engine.
//
// It learns durable facts from user utterances, tracks the relationship
// score, analyzes conversation-style patterns, and synthesizes the system
// directive prepended to each outbound message list.
//
// Example:
//
//	config, _ := core.LoadConfigFromEnv()
//	engine, _ := core.NewEngine(config)
//	defer engine.Close()
//
//	result := engine.BuildDirective(ctx, "user_001", "오늘 헬스 다녀왔어")
//	fmt.Println(result.Directive)
type Engine struct {
	cfg      EngineConfig
	store    storage.Store
	provider llm.Provider

	extractor   *extraction.Extractor
	ranker      *relevance.Ranker
	analyzer    *patterns.Analyzer
	tracker     *intimacy.Tracker
	synthesizer *directive.Synthesizer
	logger      *log.Logger

	mu      sync.Mutex
	learned map[string]int
	wg      sync.WaitGroup
}

// NewEngine creates a new engine from the given configuration.
//
// The store and provider can be injected with WithStore and WithProvider;
// otherwise they are built from the Store and LLM configuration sections.
// An engine without an LLM section works fully except for Chat.
func NewEngine(cfg *Config, opts ...Option) (*Engine, error) {
	if cfg == nil {
		return nil, NewEngineError("NewEngine", ErrInvalidConfig)
	}

	options := &engineOptions{}
	for _, opt := range opts {
		opt(options)
	}

	store := options.store
	if store == nil {
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
		var err error
		store, err = createStore(&cfg.Store)
		if err != nil {
			return nil, NewEngineError("NewEngine", err)
		}
	}

	provider := options.provider
	if provider == nil && cfg.LLM != nil {
		var err error
		provider, err = createProvider(cfg.LLM)
		if err != nil {
			return nil, NewEngineError("NewEngine", err)
		}
	}

	weights := relevance.DefaultWeights()
	if options.weights != nil {
		weights = *options.weights
	}
	analyzerCfg := patterns.DefaultConfig()
	if options.analyzer != nil {
		analyzerCfg = *options.analyzer
	}
	logger := options.logger
	if logger == nil {
		logger = log.Default()
	}

	return &Engine{
		cfg:         cfg.Engine.withDefaults(),
		store:       store,
		provider:    provider,
		extractor:   extraction.NewExtractor(options.lexicon),
		ranker:      relevance.NewRanker(weights),
		analyzer:    patterns.NewAnalyzer(analyzerCfg),
		tracker:     intimacy.NewTracker(store),
		synthesizer: directive.NewSynthesizer(),
		logger:      logger,
		learned:     make(map[string]int),
	}, nil
}

// createStore builds a persistence backend from its configuration section.
func createStore(cfg *StoreConfig) (storage.Store, error) {
	switch cfg.Provider {
	case "sqlite":
		return sqlite.NewClient(&sqlite.Config{
			DBPath: getStringOption(cfg.Config, "db_path", "./maeum.db"),
			NodeID: int64(getIntOption(cfg.Config, "node_id", 1)),
		})
	case "postgres":
		return postgres.NewClient(&postgres.Config{
			Host:     getStringOption(cfg.Config, "host", "localhost"),
			Port:     getIntOption(cfg.Config, "port", 5432),
			User:     getStringOption(cfg.Config, "user", "postgres"),
			Password: getStringOption(cfg.Config, "password", ""),
			DBName:   getStringOption(cfg.Config, "db_name", "maeum"),
			SSLMode:  getStringOption(cfg.Config, "ssl_mode", "disable"),
			NodeID:   int64(getIntOption(cfg.Config, "node_id", 1)),
		})
	case "oceanbase":
		return oceanbase.NewClient(&oceanbase.Config{
			Host:     getStringOption(cfg.Config, "host", "127.0.0.1"),
			Port:     getIntOption(cfg.Config, "port", 2881),
			User:     getStringOption(cfg.Config, "user", "root@sys"),
			Password: getStringOption(cfg.Config, "password", ""),
			DBName:   getStringOption(cfg.Config, "db_name", "maeum"),
			NodeID:   int64(getIntOption(cfg.Config, "node_id", 1)),
		})
	default:
		return nil, fmt.Errorf("unsupported store provider: %s", cfg.Provider)
	}
}

// createProvider builds a text-generation provider from its configuration
// section.
func createProvider(cfg *LLMConfig) (llm.Provider, error) {
	switch cfg.Provider {
	case "openai":
		return openai.NewClient(&openai.Config{
			APIKey:  cfg.APIKey,
			Model:   cfg.Model,
			BaseURL: cfg.BaseURL,
		})
	default:
		return nil, fmt.Errorf("unsupported llm provider: %s", cfg.Provider)
	}
}

// getStringOption reads a string from a provider config map.
func getStringOption(config map[string]interface{}, key, defaultValue string) string {
	if v, ok := config[key].(string); ok && v != "" {
		return v
	}
	return defaultValue
}

// getIntOption reads an int from a provider config map. JSON decoding
// produces float64 numbers, so both are accepted.
func getIntOption(config map[string]interface{}, key string, defaultValue int) int {
	switch v := config[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	default:
		return defaultValue
	}
}

// BuildDirective synthesizes the system directive for the user's next reply.
//
// It never fails: any store error is logged and the static default directive
// is returned, so the reply path is never blocked by persistence trouble.
func (e *Engine) BuildDirective(ctx context.Context, userID, utterance string) *DirectiveResult {
	fallback := &DirectiveResult{
		Directive: directive.DefaultDirective,
		Strategy:  string(directive.StrategyDefault),
	}

	tier, err := e.tracker.TierFor(ctx, userID)
	if err != nil {
		e.logger.Printf("maeum: BuildDirective: intimacy read failed for %s: %v", userID, err)
		return fallback
	}

	count, err := e.store.CountMemories(ctx, userID)
	if err != nil {
		e.logger.Printf("maeum: BuildDirective: memory count failed for %s: %v", userID, err)
		return fallback
	}

	var ranked []*storage.Memory
	if count > 0 {
		candidates, err := e.store.QueryMemories(ctx, userID, e.cfg.CandidateLimit)
		if err != nil {
			e.logger.Printf("maeum: BuildDirective: memory query failed for %s: %v", userID, err)
			return fallback
		}
		ranked = e.ranker.Rank(utterance, candidates, e.cfg.RankLimit)
		if len(ranked) == 0 {
			// Nothing cleared the relevance floor; surface the most
			// important memories instead of none.
			if len(candidates) > e.cfg.RankLimit {
				candidates = candidates[:e.cfg.RankLimit]
			}
			ranked = candidates
		}
	}

	profile, err := e.store.GetPatternProfile(ctx, userID)
	if err != nil {
		e.logger.Printf("maeum: BuildDirective: profile read failed for %s: %v", userID, err)
		profile = nil
	}

	text, strategy := e.synthesizer.Build(directive.Input{
		Tier:        tier,
		MemoryCount: count,
		Memories:    ranked,
		Profile:     profile,
	})

	result := &DirectiveResult{
		Directive: text,
		Strategy:  string(strategy),
	}
	if strategy == directive.StrategyRelationship {
		if len(ranked) > directive.MaxMemoriesInDirective {
			ranked = ranked[:directive.MaxMemoriesInDirective]
		}
		result.Memories = memoriesFromStorage(ranked)
	}
	return result
}

// Learn runs one learning pass over a user utterance: extracts memory
// candidates, persists them, and advances the intimacy score when the
// utterance taught us something. Every RefreshEvery learned turns the user's
// pattern profile is recomputed.
//
// Learn is safe to call from the reply path's background side; see
// LearnAsync on AsyncEngine and Chat.
func (e *Engine) Learn(ctx context.Context, userID, utterance string) (*LearnResult, error) {
	candidates := e.extractor.Extract(utterance, nil)

	result := &LearnResult{}
	for _, c := range candidates {
		stored, err := e.store.UpsertMemory(ctx, &storage.Memory{
			UserID:     userID,
			Category:   c.Category,
			Key:        c.Key,
			Value:      c.Value,
			Importance: c.Importance,
		})
		if err != nil {
			return nil, NewEngineError("Learn", err)
		}
		result.Memories = append(result.Memories, memoryFromStorage(stored))
	}

	if len(candidates) > 0 {
		score, err := e.tracker.Update(ctx, userID, e.cfg.IntimacyDelta)
		if err != nil {
			return nil, NewEngineError("Learn", err)
		}
		result.Intimacy = intimacyFromStorage(score)
	}

	e.mu.Lock()
	e.learned[userID]++
	turns := e.learned[userID]
	e.mu.Unlock()

	if turns%e.cfg.RefreshEvery == 0 {
		profile, err := e.AnalyzePatterns(ctx, userID)
		if err != nil {
			e.logger.Printf("maeum: Learn: pattern refresh failed for %s: %v", userID, err)
		} else if profile != nil {
			result.ProfileRefreshed = true
		}
	}
	return result, nil
}

// AnalyzePatterns recomputes and persists the user's pattern profile from
// recent conversation history.
//
// Returns nil without error when the history is too small to analyze.
func (e *Engine) AnalyzePatterns(ctx context.Context, userID string) (*PatternProfile, error) {
	conversations, err := e.store.ListRecentConversations(ctx, userID, e.cfg.HistoryLimit)
	if err != nil {
		return nil, NewEngineError("AnalyzePatterns", err)
	}

	profile := e.analyzer.Analyze(userID, conversations)
	if profile == nil {
		return nil, nil
	}
	if err := e.store.SavePatternProfile(ctx, profile); err != nil {
		return nil, NewEngineError("AnalyzePatterns", err)
	}
	return profileFromStorage(profile), nil
}

// StartConversation opens a new conversation for the user.
func (e *Engine) StartConversation(ctx context.Context, userID string) (*Conversation, error) {
	conv, err := e.store.CreateConversation(ctx, userID)
	if err != nil {
		return nil, NewEngineError("StartConversation", err)
	}
	return conversationFromStorage(conv), nil
}

// RecordTurn appends a turn to a conversation.
func (e *Engine) RecordTurn(ctx context.Context, conversationID int64, role, content string) (*Message, error) {
	msg, err := e.store.AppendMessage(ctx, conversationID, role, content)
	if err != nil {
		return nil, NewEngineError("RecordTurn", err)
	}
	return &Message{
		ID:             msg.ID,
		ConversationID: msg.ConversationID,
		Role:           msg.Role,
		Content:        msg.Content,
		CreatedAt:      msg.CreatedAt,
	}, nil
}

// Memories returns up to limit stored facts about the user, most important
// first.
func (e *Engine) Memories(ctx context.Context, userID string, limit int) ([]*Memory, error) {
	memories, err := e.store.QueryMemories(ctx, userID, limit)
	if err != nil {
		return nil, NewEngineError("Memories", err)
	}
	return memoriesFromStorage(memories), nil
}

// Intimacy returns the user's relationship score and tier.
func (e *Engine) Intimacy(ctx context.Context, userID string) (*IntimacyScore, error) {
	score, err := e.tracker.Get(ctx, userID)
	if err != nil {
		return nil, NewEngineError("Intimacy", err)
	}
	return intimacyFromStorage(score), nil
}

// PatternProfile returns the user's stored pattern snapshot, or nil if none
// has been computed yet.
func (e *Engine) PatternProfile(ctx context.Context, userID string) (*PatternProfile, error) {
	profile, err := e.store.GetPatternProfile(ctx, userID)
	if err != nil {
		return nil, NewEngineError("PatternProfile", err)
	}
	return profileFromStorage(profile), nil
}

// Chat produces a personalized reply in a conversation.
//
// It synthesizes the directive, prepends it to the conversation history,
// calls the text-generation provider, records both turns, and kicks off a
// fire-and-forget learning pass over the user's utterance. Persistence
// failures after the reply is generated are logged, never surfaced.
func (e *Engine) Chat(ctx context.Context, userID string, conversationID int64, utterance string) (string, error) {
	if e.provider == nil {
		return "", NewEngineError("Chat", ErrNoProvider)
	}

	result := e.BuildDirective(ctx, userID, utterance)

	messages := []llm.Message{
		{Role: RoleSystem, Content: result.Directive},
	}
	conversations, err := e.store.ListRecentConversations(ctx, userID, e.cfg.HistoryLimit)
	if err != nil {
		e.logger.Printf("maeum: Chat: history read failed for %s: %v", userID, err)
	} else {
		for _, conv := range conversations {
			if conv.ID != conversationID {
				continue
			}
			for _, turn := range conv.Messages {
				messages = append(messages, llm.Message{Role: turn.Role, Content: turn.Content})
			}
		}
	}
	messages = append(messages, llm.Message{Role: RoleUser, Content: utterance})

	reply, err := e.provider.GenerateWithMessages(ctx, messages)
	if err != nil {
		return "", NewEngineError("Chat", err)
	}

	if _, err := e.store.AppendMessage(ctx, conversationID, storage.RoleUser, utterance); err != nil {
		e.logger.Printf("maeum: Chat: failed to record user turn: %v", err)
	}
	if _, err := e.store.AppendMessage(ctx, conversationID, storage.RoleAssistant, reply); err != nil {
		e.logger.Printf("maeum: Chat: failed to record assistant turn: %v", err)
	}

	e.wg.Add(1)
	go func() {
		defer e.wg.Done()
		if _, err := e.Learn(context.Background(), userID, utterance); err != nil {
			e.logger.Printf("maeum: Chat: background learning failed for %s: %v", userID, err)
		}
	}()

	return reply, nil
}

// Close waits for background learning to finish and releases the store and
// provider.
func (e *Engine) Close() error {
	e.wg.Wait()

	var firstErr error
	if e.provider != nil {
		if err := e.provider.Close(); err != nil {
			firstErr = err
		}
	}
	if err := e.store.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	return NewEngineError("Close", firstErr)
}
