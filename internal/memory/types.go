package memory

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// Roles used in context entries handed to the generator.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Cap on entries returned by Context: 10 exchanges, two entries each.
const contextEntryCap = 20

// Interaction is one (user message, bot reply) pair, the atomic unit of
// memory. Immutable once stored.
type Interaction struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	UserMessage string    `json:"user_message"`
	BotResponse string    `json:"bot_response"`
	CreatedAt   time.Time `json:"created_at"`
}

// ContextEntry is one conversational turn derived from a stored interaction.
type ContextEntry struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Store persists and retrieves per-user conversational memory. All memory is
// partitioned by user ID; no implementation may leak one user's interactions
// into another's context.
type Store interface {
	// Context returns at most 20 entries for the user, oldest to newest.
	Context(ctx context.Context, userID string) ([]ContextEntry, error)

	// SaveInteraction appends one interaction to the user's history.
	SaveInteraction(ctx context.Context, userID, userMessage, botResponse string) error

	// Summary returns a short synopsis of the user's history. ok is false
	// when the user has no stored interactions.
	Summary(ctx context.Context, userID string) (summary string, ok bool, err error)

	// ClearUser removes all interactions stored for the user.
	ClearUser(ctx context.Context, userID string) error

	Close() error
}

// entriesFromInteractions flattens chronological interactions into alternating
// user/assistant turns, truncated to the most recent contextEntryCap entries.
func entriesFromInteractions(items []Interaction) []ContextEntry {
	entries := make([]ContextEntry, 0, len(items)*2)
	for _, it := range items {
		entries = append(entries,
			ContextEntry{Role: RoleUser, Content: it.UserMessage},
			ContextEntry{Role: RoleAssistant, Content: it.BotResponse},
		)
	}
	if len(entries) > contextEntryCap {
		entries = entries[len(entries)-contextEntryCap:]
	}
	return entries
}

// summaryText builds the human-readable synopsis shared by both store
// variants: interaction count plus up to three recent topics, each truncated
// to 50 characters. recent must be in chronological order.
func summaryText(userID string, count int, recent []Interaction) string {
	if len(recent) > 3 {
		recent = recent[len(recent)-3:]
	}

	topics := make([]string, 0, len(recent))
	for _, it := range recent {
		topic := it.UserMessage
		if topic == "" {
			continue
		}
		if len(topic) > 50 {
			topic = topic[:50] + "..."
		}
		topics = append(topics, topic)
	}

	summary := fmt.Sprintf("User %s: %d previous interactions", userID, count)
	if len(topics) > 0 {
		summary += ". Recent topics: " + strings.Join(topics, ", ")
	}
	return summary
}
