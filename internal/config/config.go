package config

import (
	"fmt"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Port  string `envconfig:"PORT" default:"8080"`
	Debug bool   `envconfig:"DEBUG" default:"false"`

	// Knowledge base index
	DocsRoot     string `envconfig:"DOCS_ROOT" default:"./docs"`
	CachePath    string `envconfig:"CACHE_PATH" default:"./data/index_cache.json"`
	IndexVersion int    `envconfig:"INDEX_VERSION" default:"3"`
	ChunkSize    int    `envconfig:"CHUNK_SIZE" default:"1200"`
	ChunkOverlap int    `envconfig:"CHUNK_OVERLAP" default:"200"`

	// Search
	TopK            int           `envconfig:"TOP_K" default:"5"`
	SearchCacheTTL  time.Duration `envconfig:"SEARCH_CACHE_TTL" default:"10m"`
	SearchCacheSize int           `envconfig:"SEARCH_CACHE_SIZE" default:"256"`

	// Rebuilds are detached from the triggering request; this bounds the
	// whole hydrate-or-build sequence so a cold start cannot hang forever.
	BuildTimeout    time.Duration `envconfig:"BUILD_TIMEOUT" default:"5m"`
	ReindexInterval time.Duration `envconfig:"REINDEX_INTERVAL"`

	OpenAIAPIKey   string `envconfig:"OPENAI_API_KEY"`
	EmbeddingModel string `envconfig:"EMBEDDING_MODEL" default:"text-embedding-3-small"`
	ChatModel      string `envconfig:"CHAT_MODEL" default:"gpt-4o-mini"`

	AdminToken      string `envconfig:"ADMIN_TOKEN"`
	AdminRatePerMin int    `envconfig:"ADMIN_RATE_PER_MIN" default:"6"`
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("QANOONI", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	return cfg
}

// Validate rejects chunking parameters that would stall the chunker.
// The advance step is ChunkSize-ChunkOverlap and must be strictly positive.
func (c *Config) Validate() error {
	if c.ChunkSize <= 0 {
		return fmt.Errorf("invalid chunk config: chunk size must be positive, got %d", c.ChunkSize)
	}
	if c.ChunkOverlap < 0 {
		return fmt.Errorf("invalid chunk config: chunk overlap must not be negative, got %d", c.ChunkOverlap)
	}
	if c.ChunkOverlap >= c.ChunkSize {
		return fmt.Errorf("invalid chunk config: overlap %d must be smaller than size %d", c.ChunkOverlap, c.ChunkSize)
	}
	if c.TopK <= 0 {
		return fmt.Errorf("invalid search config: top_k must be positive, got %d", c.TopK)
	}
	if c.SearchCacheSize <= 0 {
		return fmt.Errorf("invalid search config: cache size must be positive, got %d", c.SearchCacheSize)
	}
	return nil
}

func (c *Config) HasOpenAI() bool {
	return c.OpenAIAPIKey != ""
}

func (c *Config) HasAdminToken() bool {
	return c.AdminToken != ""
}
