package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/locvowork/performpulse/internal/domain"
	"github.com/locvowork/performpulse/internal/repository/builder"
)

const blobTable = "performpulse_blobs"

const createBlobTable = `CREATE TABLE IF NOT EXISTS performpulse_blobs (
	name TEXT PRIMARY KEY,
	data BYTEA NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
)`

// PostgresBlobStore keeps blobs in a single name-keyed table.
type PostgresBlobStore struct {
	db *sql.DB
}

func NewPostgresBlobStore(db *sql.DB) *PostgresBlobStore {
	return &PostgresBlobStore{db: db}
}

// EnsureSchema creates the blob table when missing.
func (s *PostgresBlobStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, createBlobTable); err != nil {
		return fmt.Errorf("create %s: %w", blobTable, err)
	}
	return nil
}

func (s *PostgresBlobStore) Get(ctx context.Context, name string) ([]byte, error) {
	query, args := builder.NewSQLBuilder().
		Select("data").
		From(blobTable).
		Where("name = ?", name).
		Build()

	var data []byte
	err := s.db.QueryRowContext(ctx, query, args...).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrBlobNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("select blob %s: %w", name, err)
	}
	return data, nil
}

func (s *PostgresBlobStore) Set(ctx context.Context, name string, data []byte) error {
	query, args := builder.NewSQLBuilder().
		Insert(blobTable, "name", "data", "updated_at").
		Values(name, data, time.Now().UTC()).
		OnConflict([]string{"name"}, "data", "updated_at").
		Build()

	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert blob %s: %w", name, err)
	}
	return nil
}
