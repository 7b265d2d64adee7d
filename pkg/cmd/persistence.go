package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/forgeflow/forgeflow/pkg/persistence"
	"github.com/forgeflow/forgeflow/pkg/persistence/file"
	"github.com/forgeflow/forgeflow/pkg/persistence/postgresql"
)

// PersistenceProvider names the storage backend selected by a database URL.
func PersistenceProvider(databaseURL string) string {
	scheme, _, found := strings.Cut(databaseURL, "://")
	if !found {
		return "file"
	}

	switch strings.ToLower(scheme) {
	case "postgres", "postgresql":
		return "postgresql"
	default:
		return "file"
	}
}

// NewPersistence opens the store for databaseURL. Anything that is not a postgres URL is a file path.
func NewPersistence(ctx context.Context, logger *slog.Logger, databaseURL string) (persistence.Persistence, error) {
	switch PersistenceProvider(databaseURL) {
	case "postgresql":
		store, err := postgresql.NewPersistence(ctx, logger, databaseURL)
		if err != nil {
			return nil, fmt.Errorf("failed to open postgresql persistence: %w", err)
		}

		return store, nil
	default:
		return file.NewPersistence(databaseURL), nil
	}
}
