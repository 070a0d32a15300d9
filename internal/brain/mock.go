package brain

import (
	"context"
	"fmt"
	"strings"

	"github.com/antoniostano/memora/internal/memory"
)

// MockGenerator provides deterministic replies for tests and local runs.
type MockGenerator struct {
	// Err, when set, is returned from every Generate call.
	Err error
}

func NewMockGenerator() *MockGenerator { return &MockGenerator{} }

func (g *MockGenerator) Name() string { return "mock" }

func (g *MockGenerator) Generate(ctx context.Context, message string, history []memory.ContextEntry) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if g.Err != nil {
		return "", g.Err
	}

	base := strings.TrimSpace(message)
	if base == "" {
		base = "I am listening."
	}
	if len(history) == 0 {
		return fmt.Sprintf("I heard you: %s", base), nil
	}

	last := strings.TrimSpace(history[len(history)-1].Content)
	if last == "" {
		return fmt.Sprintf("I heard you: %s", base), nil
	}
	return fmt.Sprintf("I heard you: %s (remembering: %s)", base, last), nil
}
