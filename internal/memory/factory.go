package memory

import (
	"context"
	"strings"
)

// NewStore creates a postgres-backed store when a database URL is configured,
// otherwise the local file substitute. The choice is made once at startup and
// held for the process lifetime; callers never observe which variant serves a
// request.
func NewStore(ctx context.Context, databaseURL, filePath string, embedder Embedder, embeddingDim int) (Store, error) {
	if strings.TrimSpace(databaseURL) == "" {
		return NewFileStore(filePath)
	}
	return NewPostgresStore(ctx, databaseURL, embedder, embeddingDim)
}
