// Package app assembles the bot from its parts according to the loaded
// configuration.
package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/antoniostano/memora/internal/brain"
	"github.com/antoniostano/memora/internal/config"
	"github.com/antoniostano/memora/internal/httpapi"
	"github.com/antoniostano/memora/internal/memory"
	"github.com/antoniostano/memora/internal/observability"
	"github.com/antoniostano/memora/internal/processor"
	"github.com/antoniostano/memora/internal/room"
	"github.com/antoniostano/memora/internal/token"
)

type BuildResult struct {
	Config    config.Config
	API       *httpapi.Server
	Bot       *room.Bot // nil when no room is configured
	Processor *processor.Processor
	Metrics   *observability.Metrics

	// Cleanup releases external resources (store connection, room socket).
	Cleanup func() error
}

// Build wires the pipeline. Degradation decisions are made here, once: a
// missing Gemini key selects template replies, a missing or unreachable
// database selects the local file store. Neither prevents startup.
func Build(ctx context.Context, cfg config.Config) (*BuildResult, error) {
	metrics := observability.NewMetrics(cfg.MetricsNamespace)

	generator, err := brain.NewGenerator(ctx, brain.Config{
		Mode:    "auto",
		APIKey:  cfg.GeminiAPIKey,
		Model:   cfg.GeminiModel,
		Timeout: cfg.GenerateTimeout,
		OnReply: func(source string) {
			metrics.GeneratorResponses.WithLabelValues(source).Inc()
		},
	})
	if err != nil {
		return nil, fmt.Errorf("generator init failed: %w", err)
	}
	slog.Info("generator selected", "variant", generator.Name())

	var embedder memory.Embedder
	if chain, ok := generator.(*brain.FallbackGenerator); ok {
		if e := chain.Embedder(); e != nil {
			embedder = e
		}
	}

	store, err := memory.NewStore(ctx, cfg.DatabaseURL, cfg.MemoryPath, embedder, cfg.MemoryEmbeddingDim)
	if err != nil {
		slog.Error("primary memory backend unavailable, using local store", "err", err)
		store, err = memory.NewFileStore(cfg.MemoryPath)
		if err != nil {
			return nil, fmt.Errorf("local memory store init failed: %w", err)
		}
	}
	resilient := memory.NewResilient(store, metrics)

	proc := processor.New(resilient, generator, metrics)

	var issuer *token.Issuer
	if cfg.TokenSigningKey != "" {
		issuer = token.NewIssuer(cfg.TokenSigningKey, cfg.TokenTTL)
	} else {
		slog.Warn("TOKEN_SIGNING_KEY not set; /token will refuse requests")
	}
	api := httpapi.New(issuer)

	var bot *room.Bot
	if cfg.RoomURL != "" {
		client := room.NewClient(room.Config{
			URL:      cfg.RoomURL,
			Room:     cfg.RoomName,
			Token:    cfg.RoomToken,
			Identity: cfg.BotIdentity,
		}, metrics)
		bot = room.NewBot(client, proc, cfg.BotIdentity, metrics)
	} else {
		slog.Warn("ROOM_URL not set; running without a room connection")
	}

	return &BuildResult{
		Config:    cfg,
		API:       api,
		Bot:       bot,
		Processor: proc,
		Metrics:   metrics,
		Cleanup:   resilient.Close,
	}, nil
}
