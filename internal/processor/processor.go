// Package processor coordinates the message pipeline: fetch the sender's
// context window, generate a reply, persist the exchange, return the reply.
// Its single contract is that Process always returns usable text, whatever
// state the two adapters are in.
package processor

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/antoniostano/memora/internal/brain"
	"github.com/antoniostano/memora/internal/memory"
	"github.com/antoniostano/memora/internal/observability"
)

// ApologyReply is the only reply a sender sees when the pipeline hits an
// unexpected failure. Raw errors never leave the process.
const ApologyReply = "Sorry, I encountered an error processing your message. Please try again."

// Persistence gets its own budget so a wedged backend cannot hold a reply
// goroutine indefinitely.
const saveTimeout = 5 * time.Second

// Processor owns explicit references to its two adapters; there is no
// ambient global state.
type Processor struct {
	store     *memory.Resilient
	generator brain.Generator
	metrics   *observability.Metrics
}

func New(store *memory.Resilient, generator brain.Generator, metrics *observability.Metrics) *Processor {
	return &Processor{
		store:     store,
		generator: generator,
		metrics:   metrics,
	}
}

// Process handles one inbound message and returns the reply text. It never
// panics and never returns an empty string: internal failures collapse to
// ApologyReply. Concurrent calls are safe; each call runs its steps strictly
// in order. One attempt per message, no retries.
func (p *Processor) Process(ctx context.Context, content, sender string) (reply string) {
	start := time.Now()
	outcome := "ok"
	defer func() {
		if r := recover(); r != nil {
			slog.Error("panic in message pipeline", "sender", sender, "panic", r)
			reply = ApologyReply
			outcome = "apology"
		}
		p.metrics.MessagesProcessed.WithLabelValues(outcome).Inc()
		p.metrics.ObserveProcessing(time.Since(start))
	}()

	slog.Info("processing message", "sender", sender, "chars", len(content))

	history := p.store.Context(ctx, sender)

	text, err := p.generator.Generate(ctx, content, history)
	if err != nil || text == "" {
		// The generator chain absorbs backend failures itself; reaching
		// here means even the substitute path broke.
		slog.Error("generator returned no reply", "sender", sender, "err", err)
		outcome = "apology"
		return ApologyReply
	}

	// Best-effort: the reply is already decided, a failed save only costs
	// future personalization.
	saveCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), saveTimeout)
	defer cancel()
	p.store.StoreInteraction(saveCtx, sender, content, text)

	return text
}

// ConversationSummary describes the bot's history with a user in a couple of
// sentences, generated from the stored synopsis.
func (p *Processor) ConversationSummary(ctx context.Context, userID string) string {
	synopsis, ok := p.store.Summary(ctx, userID)
	if !ok {
		return fmt.Sprintf("This is my first conversation with %s.", userID)
	}

	prompt := fmt.Sprintf("Summarize this conversation history in 2-3 sentences: %s", synopsis)
	text, err := p.generator.Generate(ctx, prompt, nil)
	if err != nil || text == "" {
		return synopsis
	}
	return text
}
