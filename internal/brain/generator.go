// Package brain turns an inbound message plus conversational context into
// reply text. The primary backend is Gemini; when it is unconfigured or
// failing, deterministic templated replies keep the pipeline answering.
package brain

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/antoniostano/memora/internal/memory"
)

// Generator produces reply text for a message given the user's recent
// context, oldest first.
type Generator interface {
	Generate(ctx context.Context, message string, history []memory.ContextEntry) (string, error)

	// Name labels the variant for logs and metrics.
	Name() string
}

// Config controls generator construction.
type Config struct {
	Mode    string // auto | gemini | template | mock
	APIKey  string
	Model   string
	Timeout time.Duration

	// OnReply, when set, is called with the variant name that served each
	// successful reply. Used for metrics attribution.
	OnReply func(source string)
}

// NewGenerator selects a generator variant once at startup. In auto mode a
// configured API key yields Gemini guarded by the template fallback; without
// one the template generator serves alone. The choice is never re-attempted
// per call.
func NewGenerator(ctx context.Context, cfg Config) (Generator, error) {
	mode := strings.ToLower(strings.TrimSpace(cfg.Mode))
	if mode == "" {
		mode = "auto"
	}

	switch mode {
	case "auto":
		if strings.TrimSpace(cfg.APIKey) == "" {
			return counted{NewTemplateGenerator(), cfg.OnReply}, nil
		}
		gemini, err := NewGeminiGenerator(ctx, cfg.APIKey, cfg.Model)
		if err != nil {
			// A bad key degrades the same way a missing one does.
			return counted{NewTemplateGenerator(), cfg.OnReply}, nil
		}
		return newChain(gemini, cfg), nil
	case "gemini":
		gemini, err := NewGeminiGenerator(ctx, cfg.APIKey, cfg.Model)
		if err != nil {
			return nil, err
		}
		return newChain(gemini, cfg), nil
	case "template":
		return counted{NewTemplateGenerator(), cfg.OnReply}, nil
	case "mock":
		return counted{NewMockGenerator(), cfg.OnReply}, nil
	default:
		return nil, fmt.Errorf("unsupported generator mode %q", cfg.Mode)
	}
}

func newChain(primary Generator, cfg Config) Generator {
	chain := NewFallbackGenerator(primary, NewTemplateGenerator(), cfg.Timeout)
	chain.onReply = cfg.OnReply
	return chain
}

// counted attributes replies from a standalone variant the same way the
// fallback chain attributes its own.
type counted struct {
	Generator
	onReply func(source string)
}

func (c counted) Generate(ctx context.Context, message string, history []memory.ContextEntry) (string, error) {
	text, err := c.Generator.Generate(ctx, message, history)
	if err == nil && c.onReply != nil {
		c.onReply(c.Generator.Name())
	}
	return text, err
}
