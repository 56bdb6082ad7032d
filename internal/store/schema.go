package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"social-dashboard-backend/internal/engagement"
)

const schemaSQL = `
	CREATE TABLE IF NOT EXISTS datasets (
		id UUID PRIMARY KEY,
		source VARCHAR(255) NOT NULL DEFAULT '',
		columns TEXT NOT NULL DEFAULT '[]',
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS posts (
		dataset_id UUID NOT NULL REFERENCES datasets(id) ON DELETE CASCADE,
		position INTEGER NOT NULL,
		post_id VARCHAR(255) NOT NULL DEFAULT '',
		post_type VARCHAR(255) NOT NULL DEFAULT '',
		likes INTEGER NOT NULL DEFAULT 0,
		shares INTEGER NOT NULL DEFAULT 0,
		comments INTEGER NOT NULL DEFAULT 0,
		date_posted VARCHAR(64) NOT NULL DEFAULT '',
		PRIMARY KEY (dataset_id, position)
	);

	CREATE INDEX IF NOT EXISTS idx_posts_dataset_type ON posts(dataset_id, post_type);
`

// EnsureSchema creates the tables if they do not exist yet.
func EnsureSchema(db *sql.DB) error {
	if _, err := db.Exec(schemaSQL); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

// SeedDemo stores ds as the current dataset when none exists yet.
// Idempotent: reports false and leaves the store alone if data is present.
func SeedDemo(ctx context.Context, s DatasetStore, ds engagement.Dataset) (bool, error) {
	if _, err := s.Current(ctx); err == nil {
		return false, nil
	} else if !errors.Is(err, ErrNoDataset) {
		return false, fmt.Errorf("checking current dataset: %w", err)
	}

	rec := Record{
		ID:        uuid.NewString(),
		Source:    "demo",
		CreatedAt: time.Now().UTC(),
		Dataset:   ds,
	}
	if err := s.Replace(ctx, rec); err != nil {
		return false, fmt.Errorf("seeding demo dataset: %w", err)
	}
	return true, nil
}
