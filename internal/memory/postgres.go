package memory

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"
)

// Embedder generates an embedding vector for a piece of text. Optional: a nil
// embedder leaves the embedding column empty.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// PostgresStore persists conversational memory in PostgreSQL with a pgvector
// column for semantic retrieval.
type PostgresStore struct {
	pool     *pgxpool.Pool
	embedder Embedder
}

// Cap applied to Context queries: 10 interactions yield 20 entries.
const contextInteractionLimit = contextEntryCap / 2

func NewPostgresStore(ctx context.Context, databaseURL string, embedder Embedder, embeddingDim int) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	if err := initSchema(ctx, pool, embeddingDim); err != nil {
		pool.Close()
		return nil, err
	}

	return &PostgresStore{pool: pool, embedder: embedder}, nil
}

func initSchema(ctx context.Context, pool *pgxpool.Pool, embeddingDim int) error {
	stmts := []string{
		`CREATE EXTENSION IF NOT EXISTS vector;`,
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS interactions (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL,
			user_message TEXT NOT NULL,
			bot_response TEXT NOT NULL,
			embedding vector(%d),
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		);`, embeddingDim),
		`CREATE INDEX IF NOT EXISTS idx_interactions_user_created ON interactions (user_id, created_at);`,
	}

	for _, stmt := range stmts {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("init schema failed on %q: %w", stmt, err)
		}
	}
	return nil
}

func (s *PostgresStore) Context(ctx context.Context, userID string) ([]ContextEntry, error) {
	items, err := s.recentInteractions(ctx, userID, contextInteractionLimit)
	if err != nil {
		return nil, err
	}
	return entriesFromInteractions(items), nil
}

func (s *PostgresStore) SaveInteraction(ctx context.Context, userID, userMessage, botResponse string) error {
	record := Interaction{
		ID:          uuid.NewString(),
		UserID:      userID,
		UserMessage: userMessage,
		BotResponse: botResponse,
		CreatedAt:   time.Now().UTC(),
	}

	// The embedding enriches later semantic search; missing it never blocks
	// the write.
	var embedding *pgvector.Vector
	if s.embedder != nil {
		if vec, err := s.embedder.Embed(ctx, userMessage); err != nil {
			slog.Warn("embedding skipped", "user", userID, "err", err)
		} else {
			v := pgvector.NewVector(vec)
			embedding = &v
		}
	}

	_, err := s.pool.Exec(ctx,
		`INSERT INTO interactions (id, user_id, user_message, bot_response, embedding, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		record.ID,
		record.UserID,
		record.UserMessage,
		record.BotResponse,
		embedding,
		record.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("save interaction: %w", err)
	}
	return nil
}

func (s *PostgresStore) Summary(ctx context.Context, userID string) (string, bool, error) {
	var count int
	if err := s.pool.QueryRow(ctx,
		`SELECT count(*) FROM interactions WHERE user_id=$1`, userID,
	).Scan(&count); err != nil {
		return "", false, fmt.Errorf("count interactions: %w", err)
	}
	if count == 0 {
		return "", false, nil
	}

	recent, err := s.recentInteractions(ctx, userID, 3)
	if err != nil {
		return "", false, err
	}

	return summaryText(userID, count, recent), true, nil
}

func (s *PostgresStore) ClearUser(ctx context.Context, userID string) error {
	if _, err := s.pool.Exec(ctx, `DELETE FROM interactions WHERE user_id=$1`, userID); err != nil {
		return fmt.Errorf("clear user %s: %w", userID, err)
	}
	return nil
}

func (s *PostgresStore) recentInteractions(ctx context.Context, userID string, limit int) ([]Interaction, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, user_id, user_message, bot_response, created_at
		 FROM interactions WHERE user_id=$1 ORDER BY created_at DESC LIMIT $2`,
		userID,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query recent interactions: %w", err)
	}
	defer rows.Close()

	items := make([]Interaction, 0, limit)
	for rows.Next() {
		var it Interaction
		if err := rows.Scan(&it.ID, &it.UserID, &it.UserMessage, &it.BotResponse, &it.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan interaction row: %w", err)
		}
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate interaction rows: %w", err)
	}

	// Reverse into chronological order for prompt coherence.
	for i, j := 0, len(items)-1; i < j; i, j = i+1, j-1 {
		items[i], items[j] = items[j], items[i]
	}

	return items, nil
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}
