package core

import (
	"log"

	"github.com/maeum-ai/maeum-go/pkg/extraction"
	"github.com/maeum-ai/maeum-go/pkg/llm"
	"github.com/maeum-ai/maeum-go/pkg/patterns"
	"github.com/maeum-ai/maeum-go/pkg/relevance"
	"github.com/maeum-ai/maeum-go/pkg/storage"
)

// Option is a function type for configuring engine construction.
//
// Options are applied using the functional options pattern, allowing
// injection of custom components without requiring all parameters.
type Option func(*engineOptions)

// engineOptions collects construction-time overrides.
type engineOptions struct {
	store    storage.Store
	provider llm.Provider
	lexicon  extraction.Lexicon
	weights  *relevance.Weights
	analyzer *patterns.Config
	logger   *log.Logger
}

// WithStore injects a pre-built store, bypassing the Store section of the
// configuration.
//
// Example:
//
//	engine, _ := core.NewEngine(cfg, core.WithStore(myStore))
func WithStore(store storage.Store) Option {
	return func(opts *engineOptions) {
		opts.store = store
	}
}

// WithProvider injects a pre-built text-generation provider, bypassing the
// LLM section of the configuration.
func WithProvider(provider llm.Provider) Option {
	return func(opts *engineOptions) {
		opts.provider = provider
	}
}

// WithLexicon replaces the built-in extraction lexicon.
//
// Example:
//
//	lex := extraction.DefaultLexicon()
//	lex = append(lex, myEntries...)
//	engine, _ := core.NewEngine(cfg, core.WithLexicon(lex))
func WithLexicon(lexicon extraction.Lexicon) Option {
	return func(opts *engineOptions) {
		opts.lexicon = lexicon
	}
}

// WithRankerWeights replaces the default relevance scoring parameters.
func WithRankerWeights(weights relevance.Weights) Option {
	return func(opts *engineOptions) {
		opts.weights = &weights
	}
}

// WithAnalyzerConfig replaces the default pattern-analysis thresholds.
func WithAnalyzerConfig(cfg patterns.Config) Option {
	return func(opts *engineOptions) {
		opts.analyzer = &cfg
	}
}

// WithLogger sets the logger used for the background learning path.
func WithLogger(logger *log.Logger) Option {
	return func(opts *engineOptions) {
		opts.logger = logger
	}
}
