package memory

import (
	"context"
	"log/slog"

	"github.com/antoniostano/memora/internal/observability"
)

// Resilient adapts a Store into the fail-open contract the reply path needs:
// retrieval errors become an empty context and failed saves become a logged
// false, so a misbehaving backend can only degrade personalization, never
// abort a reply.
type Resilient struct {
	store   Store
	metrics *observability.Metrics
}

func NewResilient(store Store, metrics *observability.Metrics) *Resilient {
	return &Resilient{store: store, metrics: metrics}
}

// Context returns the user's context window, or an empty one when the backend
// fails. A user with no retrievable history is indistinguishable from a
// brand-new user.
func (r *Resilient) Context(ctx context.Context, userID string) []ContextEntry {
	entries, err := r.store.Context(ctx, userID)
	r.metrics.CountMemoryOp("context", err)
	if err != nil {
		slog.Error("context fetch failed, proceeding without history", "user", userID, "err", err)
		return nil
	}
	return entries
}

// StoreInteraction appends one interaction, reporting success. Persistence is
// best-effort: the reply has already been computed when this runs.
func (r *Resilient) StoreInteraction(ctx context.Context, userID, userMessage, botResponse string) bool {
	err := r.store.SaveInteraction(ctx, userID, userMessage, botResponse)
	r.metrics.CountMemoryOp("save", err)
	if err != nil {
		slog.Error("interaction save failed", "user", userID, "err", err)
		return false
	}
	return true
}

// Summary returns the user's history synopsis; backend failures read as "no
// history".
func (r *Resilient) Summary(ctx context.Context, userID string) (string, bool) {
	summary, ok, err := r.store.Summary(ctx, userID)
	r.metrics.CountMemoryOp("summary", err)
	if err != nil {
		slog.Error("summary fetch failed", "user", userID, "err", err)
		return "", false
	}
	return summary, ok
}

func (r *Resilient) Close() error {
	return r.store.Close()
}
