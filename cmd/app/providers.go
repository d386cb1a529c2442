package main

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/valkey-io/valkey-go"

	"github.com/tessely/summarizer/internal/domain/summarizer"
	"github.com/tessely/summarizer/internal/infra/config"
	"github.com/tessely/summarizer/internal/infra/embedder"
	"github.com/tessely/summarizer/internal/infra/generator"
	"github.com/tessely/summarizer/internal/infra/llm/chatgpt"
	"github.com/tessely/summarizer/internal/infra/resultstore"
	"github.com/tessely/summarizer/internal/infra/runrepo"
)

func provideSummarizerConfig(cfg *config.Config) summarizer.Config {
	return summarizer.Config{
		Damping:             cfg.Pipeline.Damping,
		MaxIterations:       cfg.Pipeline.MaxIterations,
		ConvergenceTol:      cfg.Pipeline.ConvergenceTol,
		BlendWeight:         cfg.Pipeline.BlendWeight,
		CandidateMultiplier: cfg.Pipeline.CandidateMultiplier,
		DefaultTopK:         cfg.Pipeline.DefaultTopK,
		MaxTopK:             cfg.Pipeline.MaxTopK,
		MaxInputChars:       cfg.Pipeline.MaxInputChars,
		TargetSummaryWords:  cfg.Pipeline.TargetSummaryWords,
		GenerationTimeout:   cfg.Pipeline.GenerationTimeout,
		CacheTTL:            cfg.Cache.TTL,
	}
}

// provideEmbedder prefers the OpenAI-compatible embedding endpoint and falls
// back to the deterministic embedder when no API key is configured. The
// fallback keeps the extractive and semantic tiers usable offline.
func provideEmbedder(cfg *config.Config, logger *slog.Logger) summarizer.Embedder {
	if strings.TrimSpace(cfg.LLM.APIKey) == "" {
		logger.Warn("llm api key not set, using deterministic embedder")
		return embedder.NewDeterministicEmbedder(0)
	}
	client, err := chatgpt.NewClient(cfg.LLM.APIKey, cfg.LLM.BaseURL)
	if err != nil {
		logger.Error("failed to create llm client, using deterministic embedder", "error", err)
		return embedder.NewDeterministicEmbedder(0)
	}
	return embedder.NewChatGPTEmbedder(client, cfg.LLM.EmbeddingModel, logger)
}

func provideGenerator(cfg *config.Config, logger *slog.Logger) summarizer.Generator {
	if strings.TrimSpace(cfg.LLM.APIKey) == "" {
		logger.Warn("llm api key not set, abstractive tier will degrade to semantic")
		return generator.NewUnconfigured()
	}
	client, err := chatgpt.NewClient(cfg.LLM.APIKey, cfg.LLM.BaseURL)
	if err != nil {
		logger.Error("failed to create llm client, abstractive tier will degrade to semantic", "error", err)
		return generator.NewUnconfigured()
	}
	return generator.NewChatGPTGenerator(client, cfg.LLM.Model, cfg.LLM.Temperature, cfg.LLM.MaxTokens, logger)
}

func provideResultStore(cfg *config.Config, logger *slog.Logger) summarizer.ResultStore {
	if cfg.Cache.Valkey.Enabled {
		client, err := valkey.NewClient(valkey.ClientOption{
			InitAddress: []string{cfg.Cache.Valkey.Addr},
		})
		if err != nil {
			logger.Error("failed to create valkey client, falling back to memory store", "error", err)
			return resultstore.NewMemoryStore()
		}
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := client.Do(ctx, client.B().Ping().Build()).Error(); err != nil {
			logger.Error("valkey ping failed, falling back to memory store", "error", err)
		} else {
			logger.Info("valkey result store enabled", "addr", cfg.Cache.Valkey.Addr)
			return resultstore.NewValkeyStore(client, "summarizer")
		}
	}
	return resultstore.NewMemoryStore()
}

func provideRunRepository(cfg *config.Config, logger *slog.Logger) summarizer.RunRepository {
	fallback := runrepo.NewMemoryRepository()
	dsn := strings.TrimSpace(cfg.History.Postgres.DSN)
	if dsn == "" {
		logger.Info("history postgres dsn not set, using memory repository")
		return fallback
	}
	poolConfig, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		logger.Error("invalid postgres dsn, using memory repository", "error", err)
		return fallback
	}
	if cfg.History.Postgres.MaxConns > 0 {
		poolConfig.MaxConns = cfg.History.Postgres.MaxConns
	}
	if cfg.History.Postgres.MinConns > 0 {
		poolConfig.MinConns = cfg.History.Postgres.MinConns
	}
	pool, err := pgxpool.NewWithConfig(context.Background(), poolConfig)
	if err != nil {
		logger.Error("failed to initialize postgres pool, using memory repository", "error", err)
		return fallback
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := pool.Ping(ctx); err != nil {
		logger.Error("postgres ping failed, using memory repository", "error", err)
		pool.Close()
		return fallback
	}
	logger.Info("history postgres repository enabled")
	return runrepo.NewPostgresRepository(pool)
}
