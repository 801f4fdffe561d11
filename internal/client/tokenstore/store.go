// Package tokenstore persists the session token between client runs. It is
// the single durable slot of the session: one raw token string.
package tokenstore

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/gymkeeper/internal/client/repositories/metadata"
)

type SQLiteStore struct {
	repo *metadata.Repository
}

func NewSQLiteStore(db *sql.DB) *SQLiteStore {
	return &SQLiteStore{repo: metadata.NewRepository(db)}
}

// Load returns the persisted token, or "" when none is stored.
func (s *SQLiteStore) Load(ctx context.Context) (string, error) {
	tok, _, err := s.repo.Lookup(ctx, metadata.KeySessionToken)
	if err != nil {
		return "", fmt.Errorf("load token: %w", err)
	}
	return tok, nil
}

// Save replaces the slot. An empty token clears it.
func (s *SQLiteStore) Save(ctx context.Context, token string) error {
	if token == "" {
		return s.Clear(ctx)
	}
	if err := s.repo.Put(ctx, metadata.KeySessionToken, token); err != nil {
		return fmt.Errorf("save token: %w", err)
	}
	return nil
}

// Clear empties the slot. Clearing an empty slot is not an error.
func (s *SQLiteStore) Clear(ctx context.Context) error {
	if err := s.repo.Remove(ctx, metadata.KeySessionToken); err != nil {
		return fmt.Errorf("clear token: %w", err)
	}
	return nil
}
