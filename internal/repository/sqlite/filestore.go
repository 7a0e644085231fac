package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/msomdec/blog-api/internal/domain"
)

// fileStore implements domain.FileStore using SQLite BLOBs.
type fileStore struct {
	db *sql.DB
}

func (s *fileStore) Save(ctx context.Context, key, contentType string, r io.Reader) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("read file data: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		"INSERT INTO file_blobs (storage_key, content_type, data, created_at) VALUES (?, ?, ?, ?)",
		key, contentType, data, toUnix(time.Now()),
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return fmt.Errorf("%w: storage key %s", domain.ErrAlreadyExists, key)
		}
		return fmt.Errorf("save file blob: %w", err)
	}
	return nil
}

func (s *fileStore) Get(ctx context.Context, key string) (*domain.Asset, error) {
	asset := &domain.Asset{Key: key}
	err := s.db.QueryRowContext(ctx,
		"SELECT content_type, data FROM file_blobs WHERE storage_key = ?", key,
	).Scan(&asset.ContentType, &asset.Data)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get file blob: %w", err)
	}
	return asset, nil
}

func (s *fileStore) Delete(ctx context.Context, key string) error {
	_, err := s.db.ExecContext(ctx,
		"DELETE FROM file_blobs WHERE storage_key = ?", key,
	)
	if err != nil {
		return fmt.Errorf("delete file blob: %w", err)
	}
	return nil
}
