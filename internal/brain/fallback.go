package brain

import (
	"context"
	"log/slog"
	"time"

	"github.com/antoniostano/memora/internal/memory"
)

// FallbackGenerator tries a primary generator under an enforced latency bound
// and falls back to a local substitute on error or timeout. The chain is
// fixed at construction; there is no per-call re-selection.
type FallbackGenerator struct {
	primary  Generator
	fallback Generator
	timeout  time.Duration
	onReply  func(source string)
}

func NewFallbackGenerator(primary, fallback Generator, timeout time.Duration) *FallbackGenerator {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &FallbackGenerator{
		primary:  primary,
		fallback: fallback,
		timeout:  timeout,
	}
}

func (g *FallbackGenerator) Name() string { return g.primary.Name() }

func (g *FallbackGenerator) Generate(ctx context.Context, message string, history []memory.ContextEntry) (string, error) {
	genCtx, cancel := context.WithTimeout(ctx, g.timeout)
	text, err := g.primary.Generate(genCtx, message, history)
	cancel()
	if err == nil {
		g.served(g.primary.Name())
		return text, nil
	}

	slog.Warn("primary generator failed, using fallback",
		"primary", g.primary.Name(), "err", err)
	text, err = g.fallback.Generate(ctx, message, history)
	if err == nil {
		g.served(g.fallback.Name())
	}
	return text, err
}

// Embedder exposes the primary's embedder when it has one, for wiring into
// the memory store.
func (g *FallbackGenerator) Embedder() *Embedder {
	if gemini, ok := g.primary.(*GeminiGenerator); ok {
		return gemini.Embedder()
	}
	return nil
}

func (g *FallbackGenerator) served(source string) {
	if g.onReply != nil {
		g.onReply(source)
	}
}
