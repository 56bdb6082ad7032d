package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"social-dashboard-backend/internal/engagement"
)

// ErrNoDataset is returned by Current when nothing has been stored yet.
var ErrNoDataset = errors.New("store: no dataset")

// Record is a stored dataset with its version ID and provenance.
type Record struct {
	ID        string
	Source    string
	CreatedAt time.Time
	Dataset   engagement.Dataset
}

// DatasetStore keeps exactly one current dataset. Replace swaps it wholesale.
type DatasetStore interface {
	Replace(ctx context.Context, rec Record) error
	Current(ctx context.Context) (Record, error)
	Ping(ctx context.Context) error
}

// PostgresStore keeps the current dataset in the datasets and posts tables.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore wraps an open database handle.
func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// Replace deletes any stored dataset and inserts rec in one transaction.
func (s *PostgresStore) Replace(ctx context.Context, rec Record) error {
	columns, err := json.Marshal(rec.Dataset.Columns)
	if err != nil {
		return fmt.Errorf("encoding columns: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if _, err := tx.ExecContext(ctx, `DELETE FROM datasets`); err != nil {
		return fmt.Errorf("clearing datasets: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO datasets (id, source, columns, created_at) VALUES ($1, $2, $3, $4)`,
		rec.ID, rec.Source, string(columns), rec.CreatedAt,
	); err != nil {
		return fmt.Errorf("inserting dataset: %w", err)
	}

	const insertPost = `
		INSERT INTO posts (dataset_id, position, post_id, post_type, likes, shares, comments, date_posted)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	for i, p := range rec.Dataset.Posts {
		if _, err := tx.ExecContext(ctx, insertPost,
			rec.ID, i, p.ID, p.PostType, p.Likes, p.Shares, p.Comments, p.DatePosted,
		); err != nil {
			return fmt.Errorf("inserting post %d: %w", i, err)
		}
	}

	return tx.Commit()
}

// Current loads the stored dataset with posts in their original order.
func (s *PostgresStore) Current(ctx context.Context) (Record, error) {
	var (
		rec     Record
		columns string
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT id, source, columns, created_at FROM datasets ORDER BY created_at DESC LIMIT 1`,
	).Scan(&rec.ID, &rec.Source, &columns, &rec.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Record{}, ErrNoDataset
	}
	if err != nil {
		return Record{}, fmt.Errorf("loading dataset: %w", err)
	}

	rec.Dataset.Columns = make([]string, 0)
	if err := json.Unmarshal([]byte(columns), &rec.Dataset.Columns); err != nil {
		return Record{}, fmt.Errorf("decoding columns: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT post_id, post_type, likes, shares, comments, date_posted
		FROM posts
		WHERE dataset_id = $1
		ORDER BY position
	`, rec.ID)
	if err != nil {
		return Record{}, fmt.Errorf("loading posts: %w", err)
	}
	defer rows.Close()

	// ensure empty slice instead of nil when no rows
	rec.Dataset.Posts = make([]engagement.Post, 0)
	for rows.Next() {
		var p engagement.Post
		if err := rows.Scan(&p.ID, &p.PostType, &p.Likes, &p.Shares, &p.Comments, &p.DatePosted); err != nil {
			return Record{}, fmt.Errorf("scanning post: %w", err)
		}
		rec.Dataset.Posts = append(rec.Dataset.Posts, p)
	}
	if err := rows.Err(); err != nil {
		return Record{}, fmt.Errorf("loading posts: %w", err)
	}

	return rec, nil
}

// Ping checks the database connection.
func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// MemoryStore keeps the current dataset in process memory. It is used when
// no database is configured.
type MemoryStore struct {
	mu  sync.RWMutex
	rec *Record
}

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Replace swaps the stored record.
func (m *MemoryStore) Replace(_ context.Context, rec Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rec = &rec
	return nil
}

// Current returns the stored record or ErrNoDataset.
func (m *MemoryStore) Current(_ context.Context) (Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.rec == nil {
		return Record{}, ErrNoDataset
	}
	return *m.rec, nil
}

// Ping always succeeds.
func (m *MemoryStore) Ping(context.Context) error { return nil }
