package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/kart-io/logger"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	goredis "github.com/redis/go-redis/v9"

	"github.com/itish2003/supportbot/config"
	"github.com/itish2003/supportbot/llm"
	"github.com/itish2003/supportbot/metrics"
	"github.com/itish2003/supportbot/services"
	"github.com/itish2003/supportbot/store"
)

// app holds the clients built once at startup and shared by both pipelines.
type app struct {
	cfg       *config.Config
	registry  *prometheus.Registry
	metrics   *metrics.Metrics
	embedder  llm.Embedder
	completer llm.Completer
	store     store.VectorStore
	chunker   services.Chunker
	redis     *goredis.Client
}

// boot loads and validates the configuration and initializes logging.
func boot() (*config.Config, error) {
	cfg, err := config.Load(envFile)
	if err != nil {
		return nil, err
	}
	if err := config.InitLogger(cfg.Log); err != nil {
		return nil, err
	}
	return cfg, nil
}

func newApp(ctx context.Context, cfg *config.Config) (*app, error) {
	a := &app{cfg: cfg, registry: prometheus.NewRegistry()}
	a.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	a.metrics = metrics.New(a.registry)

	if err := a.initProviders(ctx); err != nil {
		return nil, err
	}
	a.initCache(ctx)

	chunker, err := services.NewChunker(cfg.ChunkStrategy, cfg.ChunkMaxChars, cfg.ChunkOverlap)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.chunker = chunker

	vs, err := a.openStore(ctx)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.store = vs

	logger.Infow("Support bot initialized",
		"store", cfg.Store,
		"collection", cfg.Collection,
		"embed_provider", cfg.EmbedProvider,
		"embed_model", cfg.EmbedModel,
		"chat_provider", cfg.ChatProvider,
		"chat_model", cfg.ChatModel,
		"embed_cache", a.redis != nil,
	)
	return a, nil
}

// openStore returns an untyped nil store on failure so Close never sees a
// nil pointer wrapped in the interface.
func (a *app) openStore(ctx context.Context) (store.VectorStore, error) {
	cfg := a.cfg
	switch cfg.Store {
	case store.BackendChroma:
		vs, err := store.NewChromaStore(ctx, cfg.ChromaURL, cfg.Collection, a.embedder, cfg.EmbedBatch)
		if err != nil {
			return nil, err
		}
		return vs, nil
	default:
		vs, err := store.NewLocalStore(cfg.DBPath, cfg.Collection, a.embedder, cfg.EmbedBatch)
		if err != nil {
			return nil, err
		}
		return vs, nil
	}
}

func (a *app) initProviders(ctx context.Context) error {
	cfg := a.cfg
	var (
		openaiProvider *llm.OpenAIProvider
		geminiProvider *llm.GeminiProvider
	)
	if cfg.ChatProvider == llm.ProviderOpenAI || cfg.EmbedProvider == llm.ProviderOpenAI {
		openaiProvider = llm.NewOpenAIProvider(cfg.OpenAIKey, cfg.OpenAIBaseURL, cfg.EmbedModel)
	}
	if cfg.ChatProvider == llm.ProviderGemini || cfg.EmbedProvider == llm.ProviderGemini {
		p, err := llm.NewGeminiProvider(ctx, cfg.GeminiKey, cfg.EmbedModel)
		if err != nil {
			return err
		}
		geminiProvider = p
	}

	switch cfg.EmbedProvider {
	case llm.ProviderOpenAI:
		a.embedder = openaiProvider
	case llm.ProviderGemini:
		a.embedder = geminiProvider
	case llm.ProviderOllama:
		a.embedder = llm.NewOllamaEmbedder(&http.Client{Timeout: 30 * time.Second}, cfg.OllamaURL, cfg.EmbedModel)
	default:
		return fmt.Errorf("%w: unknown embedding provider %q", config.ErrInvalidConfig, cfg.EmbedProvider)
	}

	switch cfg.ChatProvider {
	case llm.ProviderOpenAI:
		a.completer = openaiProvider
	case llm.ProviderGemini:
		a.completer = geminiProvider
	default:
		return fmt.Errorf("%w: unknown chat provider %q", config.ErrInvalidConfig, cfg.ChatProvider)
	}
	return nil
}

// initCache wraps the embedder with the Redis cache when REDIS_ADDR is set
// and the server answers a ping.
func (a *app) initCache(ctx context.Context) {
	if a.cfg.RedisAddr == "" {
		return
	}
	client := goredis.NewClient(&goredis.Options{Addr: a.cfg.RedisAddr})
	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		logger.Warnw("Redis unreachable, embedding cache disabled", "addr", a.cfg.RedisAddr, "error", err.Error())
		_ = client.Close()
		return
	}
	a.redis = client
	a.embedder = llm.NewCachedEmbedder(a.embedder, client, a.cfg.EmbedModel, a.cfg.EmbedCacheTTL)
}

func (a *app) ragService() services.RAGService {
	return services.NewRAGService(a.store, a.completer, services.QueryOptions{
		Model:       a.cfg.ChatModel,
		Temperature: a.cfg.Temperature,
		TopK:        a.cfg.TopK,
	}, a.metrics)
}

func (a *app) indexer() *services.FileIndexingService {
	return services.NewFileIndexingService(a.store, a.chunker, a.metrics)
}

// Close releases the store and cache connections.
func (a *app) Close() error {
	var errs []error
	if a.store != nil {
		errs = append(errs, a.store.Close())
	}
	if a.redis != nil {
		errs = append(errs, a.redis.Close())
	}
	if err := errors.Join(errs...); err != nil {
		logger.Warnw("Failed to release resources", "error", err.Error())
		return err
	}
	return nil
}
