// Package config loads the service configuration from the environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"

	"github.com/itish2003/supportbot/llm"
	"github.com/itish2003/supportbot/services"
	"github.com/itish2003/supportbot/store"
)

// ErrMissingCredential is returned when a selected provider has no API key.
var ErrMissingCredential = errors.New("missing provider credential")

// ErrInvalidConfig wraps every other validation failure.
var ErrInvalidConfig = errors.New("invalid configuration")

// Config is the complete service configuration.
type Config struct {
	OpenAIKey     string `env:"OPENAI_API_KEY"`
	OpenAIBaseURL string `env:"OPENAI_BASE_URL"`
	GeminiKey     string `env:"GEMINI_API_KEY"`

	ChatProvider  string  `env:"RAG_CHAT_PROVIDER" envDefault:"openai"`
	EmbedProvider string  `env:"RAG_EMBED_PROVIDER" envDefault:"openai"`
	ChatModel     string  `env:"RAG_CHAT_MODEL"`
	EmbedModel    string  `env:"RAG_EMBED_MODEL"`
	Temperature   float32 `env:"RAG_TEMPERATURE" envDefault:"0.2"`
	TopK          int     `env:"RAG_TOP_K" envDefault:"4"`

	ChunkStrategy string `env:"RAG_CHUNK_STRATEGY" envDefault:"paragraph"`
	ChunkMaxChars int    `env:"RAG_CHUNK_MAX_CHARS" envDefault:"800"`
	ChunkOverlap  int    `env:"RAG_CHUNK_OVERLAP" envDefault:"100"`
	KnowledgeDir  string `env:"RAG_KNOWLEDGE_DIR" envDefault:"knowledge"`

	Store      string `env:"RAG_STORE" envDefault:"local"`
	DBPath     string `env:"RAG_DB_PATH" envDefault:"chroma_db"`
	Collection string `env:"RAG_COLLECTION" envDefault:"support_kb"`
	ChromaURL  string `env:"CHROMA_URL" envDefault:"http://localhost:8000"`
	OllamaURL  string `env:"OLLAMA_URL" envDefault:"http://localhost:11434"`

	EmbedBatch    int           `env:"RAG_EMBED_BATCH" envDefault:"64"`
	RedisAddr     string        `env:"REDIS_ADDR"`
	EmbedCacheTTL time.Duration `env:"RAG_EMBED_CACHE_TTL" envDefault:"24h"`

	HTTPAddr  string `env:"RAG_HTTP_ADDR" envDefault:":8080"`
	StaticDir string `env:"RAG_STATIC_DIR" envDefault:"static"`

	Log LogConfig
}

// LogConfig selects the logging engine and output.
type LogConfig struct {
	Level       string `env:"LOG_LEVEL" envDefault:"INFO"`
	Format      string `env:"LOG_FORMAT" envDefault:"console"`
	Engine      string `env:"LOG_ENGINE" envDefault:"zap"`
	Development bool   `env:"LOG_DEVELOPMENT" envDefault:"false"`
}

var defaultChatModels = map[string]string{
	llm.ProviderOpenAI: "gpt-4o-mini",
	llm.ProviderGemini: "gemini-2.5-flash",
}

var defaultEmbedModels = map[string]string{
	llm.ProviderOpenAI: "text-embedding-3-small",
	llm.ProviderGemini: "text-embedding-004",
	llm.ProviderOllama: "nomic-embed-text:v1.5",
}

// Load reads envFile (a missing file is not an error), parses the
// environment and validates the result.
func Load(envFile string) (*Config, error) {
	cfg, err := Parse(envFile)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Parse reads envFile and the environment without validating.
func Parse(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("can't read %s: %w", envFile, err)
		}
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("can't read config: %w", err)
	}
	if cfg.ChatModel == "" {
		cfg.ChatModel = defaultChatModels[cfg.ChatProvider]
	}
	if cfg.EmbedModel == "" {
		cfg.EmbedModel = defaultEmbedModels[cfg.EmbedProvider]
	}
	return cfg, nil
}

// Validate checks provider names, credentials and numeric bounds.
func (c *Config) Validate() error {
	if _, ok := defaultChatModels[c.ChatProvider]; !ok {
		return fmt.Errorf("%w: unknown chat provider %q", ErrInvalidConfig, c.ChatProvider)
	}
	if _, ok := defaultEmbedModels[c.EmbedProvider]; !ok {
		return fmt.Errorf("%w: unknown embedding provider %q", ErrInvalidConfig, c.EmbedProvider)
	}
	for _, provider := range []string{c.ChatProvider, c.EmbedProvider} {
		name, key := c.Credential(provider)
		if name != "" && key == "" {
			return fmt.Errorf("%w: %s is required for the %s provider", ErrMissingCredential, name, provider)
		}
	}

	switch c.Store {
	case store.BackendLocal, store.BackendChroma:
	default:
		return fmt.Errorf("%w: unknown vector store %q", ErrInvalidConfig, c.Store)
	}
	switch c.ChunkStrategy {
	case services.StrategyParagraph, services.StrategyRecursive:
	default:
		return fmt.Errorf("%w: unknown chunk strategy %q", ErrInvalidConfig, c.ChunkStrategy)
	}

	if c.TopK < 1 {
		return fmt.Errorf("%w: RAG_TOP_K must be at least 1, got %d", ErrInvalidConfig, c.TopK)
	}
	if c.ChunkMaxChars < 1 {
		return fmt.Errorf("%w: RAG_CHUNK_MAX_CHARS must be at least 1, got %d", ErrInvalidConfig, c.ChunkMaxChars)
	}
	if c.ChunkOverlap < 0 || c.ChunkOverlap >= c.ChunkMaxChars {
		return fmt.Errorf("%w: RAG_CHUNK_OVERLAP must be in [0, %d), got %d", ErrInvalidConfig, c.ChunkMaxChars, c.ChunkOverlap)
	}
	if c.EmbedBatch < 1 {
		return fmt.Errorf("%w: RAG_EMBED_BATCH must be at least 1, got %d", ErrInvalidConfig, c.EmbedBatch)
	}
	return nil
}

// Credential returns the variable name and value of the API key provider
// needs. Providers without a key return empty strings.
func (c *Config) Credential(provider string) (name, value string) {
	switch provider {
	case llm.ProviderOpenAI:
		return "OPENAI_API_KEY", c.OpenAIKey
	case llm.ProviderGemini:
		return "GEMINI_API_KEY", c.GeminiKey
	default:
		return "", ""
	}
}
