package domain

import (
	"context"
	"io"
)

// Upload is a temporary upload artifact on local disk. Whoever receives an
// Upload owns the file at Path and must remove it.
type Upload struct {
	Path        string
	Filename    string
	ContentType string
}

// Asset is a stored binary object.
type Asset struct {
	Key         string
	ContentType string
	Data        []byte
}

// AssetStore persists uploaded binaries and addresses them by durable URL.
type AssetStore interface {
	// Upload stores the upload's bytes under folder and returns a durable URL.
	Upload(ctx context.Context, upload *Upload, folder string) (string, error)
	// Delete removes the asset addressed by url.
	Delete(ctx context.Context, url string) error
	// Open returns the asset stored under key.
	Open(ctx context.Context, key string) (*Asset, error)
}

// FileStore abstracts raw byte storage keyed by an opaque string.
type FileStore interface {
	Save(ctx context.Context, key, contentType string, r io.Reader) error
	Get(ctx context.Context, key string) (*Asset, error)
	Delete(ctx context.Context, key string) error
}
