package postgres

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/msomdec/blog-api/internal/domain"
)

// fileStore keeps asset bytes in a BYTEA column.
type fileStore struct {
	pool *pgxpool.Pool
}

func (s *fileStore) Save(ctx context.Context, key, contentType string, r io.Reader) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("read file data: %w", err)
	}
	_, err = s.pool.Exec(ctx,
		"INSERT INTO file_blobs (storage_key, content_type, data, created_at) VALUES ($1, $2, $3, $4)",
		key, contentType, data, now(),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: storage key %s", domain.ErrAlreadyExists, key)
		}
		return fmt.Errorf("save file blob: %w", err)
	}
	return nil
}

func (s *fileStore) Get(ctx context.Context, key string) (*domain.Asset, error) {
	asset := &domain.Asset{Key: key}
	err := s.pool.QueryRow(ctx,
		"SELECT content_type, data FROM file_blobs WHERE storage_key = $1", key,
	).Scan(&asset.ContentType, &asset.Data)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get file blob: %w", err)
	}
	return asset, nil
}

func (s *fileStore) Delete(ctx context.Context, key string) error {
	if _, err := s.pool.Exec(ctx, "DELETE FROM file_blobs WHERE storage_key = $1", key); err != nil {
		return fmt.Errorf("delete file blob: %w", err)
	}
	return nil
}
