package core

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
)

// Config contains the complete configuration for a Maeum engine.
//
// Example:
//
//	config := &core.Config{
//	    Store: core.StoreConfig{
//	        Provider: "sqlite",
//	        Config: map[string]interface{}{
//	            "db_path": "./maeum.db",
//	        },
//	    },
//	    LLM: &core.LLMConfig{
//	        Provider: "openai",
//	        APIKey:   "sk-...",
//	        Model:    "gpt-4o-mini",
//	    },
//	}
type Config struct {
	// Store contains persistence backend configuration.
	Store StoreConfig `json:"store"`

	// LLM contains text-generation provider configuration (optional).
	// Without it the engine still learns and builds directives, but Chat
	// is unavailable.
	LLM *LLMConfig `json:"llm,omitempty"`

	// Engine contains engine tuning parameters.
	Engine EngineConfig `json:"engine"`
}

// StoreConfig contains configuration for the persistence backend.
//
// Supported providers: sqlite, postgres, oceanbase
type StoreConfig struct {
	// Provider is the backend name (sqlite, postgres, oceanbase).
	Provider string `json:"provider"`

	// Config contains provider-specific configuration.
	// For SQLite: db_path, node_id
	// For PostgreSQL: host, port, user, password, db_name, ssl_mode, node_id
	// For OceanBase: host, port, user, password, db_name, node_id
	Config map[string]interface{} `json:"config"`
}

// LLMConfig contains configuration for the text-generation provider.
//
// Supported providers: openai
type LLMConfig struct {
	// Provider is the provider name (openai).
	Provider string `json:"provider"`

	// APIKey is the API key for the provider.
	APIKey string `json:"api_key"`

	// Model is the model name to use.
	Model string `json:"model"`

	// BaseURL is the base URL for the API (optional).
	BaseURL string `json:"base_url,omitempty"`
}

// EngineConfig contains engine tuning parameters. Zero values fall back to
// the defaults.
type EngineConfig struct {
	// RankLimit is how many ranked memories a directive may surface
	// (default 5).
	RankLimit int `json:"rank_limit,omitempty"`

	// CandidateLimit is how many stored memories are fetched for ranking
	// (default 10).
	CandidateLimit int `json:"candidate_limit,omitempty"`

	// RefreshEvery recomputes the pattern profile after this many learned
	// turns (default 5).
	RefreshEvery int `json:"refresh_every,omitempty"`

	// HistoryLimit is how many recent conversations pattern analysis
	// reads (default 20).
	HistoryLimit int `json:"history_limit,omitempty"`

	// IntimacyDelta is the score increment for a turn that produced at
	// least one memory (default 1).
	IntimacyDelta float64 `json:"intimacy_delta,omitempty"`
}

// Engine tuning defaults.
const (
	DefaultRankLimit      = 5
	DefaultCandidateLimit = 10
	DefaultRefreshEvery   = 5
	DefaultHistoryLimit   = 20
	DefaultIntimacyDelta  = 1.0
)

// withDefaults fills unset engine parameters.
func (c EngineConfig) withDefaults() EngineConfig {
	if c.RankLimit <= 0 {
		c.RankLimit = DefaultRankLimit
	}
	if c.CandidateLimit <= 0 {
		c.CandidateLimit = DefaultCandidateLimit
	}
	if c.RefreshEvery <= 0 {
		c.RefreshEvery = DefaultRefreshEvery
	}
	if c.HistoryLimit <= 0 {
		c.HistoryLimit = DefaultHistoryLimit
	}
	if c.IntimacyDelta <= 0 {
		c.IntimacyDelta = DefaultIntimacyDelta
	}
	return c
}

// LoadConfigFromEnv loads configuration from environment variables.
//
// The function:
//  1. Searches for .env or .env.example files (up to 5 directory levels up)
//  2. Loads environment variables from the found file
//  3. Parses environment variables into a Config struct
//
// Supported environment variables:
//   - DATABASE_PROVIDER (sqlite, postgres, oceanbase)
//   - SQLITE_PATH
//   - POSTGRES_HOST, POSTGRES_PORT, POSTGRES_USER, POSTGRES_PASSWORD, etc.
//   - OCEANBASE_HOST, OCEANBASE_PORT, OCEANBASE_USER, OCEANBASE_PASSWORD, etc.
//   - LLM_PROVIDER, LLM_API_KEY, LLM_MODEL, LLM_BASE_URL
//   - ENGINE_RANK_LIMIT, ENGINE_REFRESH_EVERY, ENGINE_HISTORY_LIMIT,
//     ENGINE_INTIMACY_DELTA
func LoadConfigFromEnv() (*Config, error) {
	envPath, found := FindEnvFile()
	if found {
		_ = godotenv.Load(envPath)
	} else {
		_ = godotenv.Load()
	}

	provider := getEnvOrDefault("DATABASE_PROVIDER", "sqlite")

	storeConfig := make(map[string]interface{})
	switch provider {
	case "sqlite":
		storeConfig = map[string]interface{}{
			"db_path": getEnvOrDefault("SQLITE_PATH", "./maeum.db"),
		}
	case "postgres":
		port, _ := strconv.Atoi(getEnvOrDefault("POSTGRES_PORT", "5432"))
		storeConfig = map[string]interface{}{
			"host":     getEnvOrDefault("POSTGRES_HOST", "localhost"),
			"port":     port,
			"user":     getEnvOrDefault("POSTGRES_USER", "postgres"),
			"password": os.Getenv("POSTGRES_PASSWORD"),
			"db_name":  getEnvOrDefault("POSTGRES_DATABASE", "maeum"),
			"ssl_mode": getEnvOrDefault("POSTGRES_SSLMODE", "disable"),
		}
	case "oceanbase":
		port, _ := strconv.Atoi(getEnvOrDefault("OCEANBASE_PORT", "2881"))
		storeConfig = map[string]interface{}{
			"host":     getEnvOrDefault("OCEANBASE_HOST", "127.0.0.1"),
			"port":     port,
			"user":     getEnvOrDefault("OCEANBASE_USER", "root@sys"),
			"password": os.Getenv("OCEANBASE_PASSWORD"),
			"db_name":  getEnvOrDefault("OCEANBASE_DATABASE", "maeum"),
		}
	}

	config := &Config{
		Store: StoreConfig{
			Provider: provider,
			Config:   storeConfig,
		},
	}

	if apiKey := os.Getenv("LLM_API_KEY"); apiKey != "" {
		config.LLM = &LLMConfig{
			Provider: getEnvOrDefault("LLM_PROVIDER", "openai"),
			APIKey:   apiKey,
			Model:    os.Getenv("LLM_MODEL"),
			BaseURL:  os.Getenv("LLM_BASE_URL"),
		}
	}

	config.Engine.RankLimit, _ = strconv.Atoi(os.Getenv("ENGINE_RANK_LIMIT"))
	config.Engine.RefreshEvery, _ = strconv.Atoi(os.Getenv("ENGINE_REFRESH_EVERY"))
	config.Engine.HistoryLimit, _ = strconv.Atoi(os.Getenv("ENGINE_HISTORY_LIMIT"))
	config.Engine.IntimacyDelta, _ = strconv.ParseFloat(os.Getenv("ENGINE_INTIMACY_DELTA"), 64)

	return config, nil
}

// LoadConfigFromEnvFile loads configuration from a specific .env file.
func LoadConfigFromEnvFile(envPath string) (*Config, error) {
	if err := godotenv.Load(envPath); err != nil {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}
	return LoadConfigFromEnv()
}

// LoadConfigFromJSON loads configuration from a JSON file.
func LoadConfigFromJSON(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, NewEngineError("LoadConfigFromJSON", err)
	}

	var config Config
	if err := json.Unmarshal(data, &config); err != nil {
		return nil, NewEngineError("LoadConfigFromJSON", err)
	}

	return &config, nil
}

// Validate validates the configuration.
//
// The store provider is required; the LLM section, if present, needs a
// provider and API key.
func (c *Config) Validate() error {
	if c.Store.Provider == "" {
		return NewEngineError("Validate", ErrInvalidConfig)
	}
	if c.LLM != nil {
		if c.LLM.Provider == "" || c.LLM.APIKey == "" {
			return NewEngineError("Validate", ErrInvalidConfig)
		}
	}
	return nil
}

// getEnvOrDefault gets an environment variable or returns the default value.
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// FindEnvFile searches for .env or .env.example files.
//
// The search:
//  1. Checks the current directory
//  2. Searches up to 5 directory levels up
//  3. Returns the first .env or .env.example file found
func FindEnvFile() (string, bool) {
	if _, err := os.Stat(".env"); err == nil {
		return ".env", true
	}
	if _, err := os.Stat(".env.example"); err == nil {
		return ".env.example", true
	}

	dir, err := os.Getwd()
	if err != nil {
		return "", false
	}
	for i := 0; i < 5; i++ {
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent

		envPath := filepath.Join(dir, ".env")
		if _, err := os.Stat(envPath); err == nil {
			return envPath, true
		}
		examplePath := filepath.Join(dir, ".env.example")
		if _, err := os.Stat(examplePath); err == nil {
			return examplePath, true
		}
	}
	return "", false
}
