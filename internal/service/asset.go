package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"
	"path"
	"strings"

	"github.com/msomdec/blog-api/internal/domain"
)

// AssetPathPrefix is the URL path under which stored assets are served.
const AssetPathPrefix = "/assets/"

// AssetService implements domain.AssetStore on top of a FileStore. Assets
// are addressed by baseURL + AssetPathPrefix + key.
type AssetService struct {
	files   domain.FileStore
	baseURL string
}

var _ domain.AssetStore = (*AssetService)(nil)

// NewAssetService creates a new AssetService. baseURL may be empty, in
// which case durable URLs are host-relative.
func NewAssetService(files domain.FileStore, baseURL string) *AssetService {
	return &AssetService{files: files, baseURL: strings.TrimRight(baseURL, "/")}
}

// Upload copies the upload's bytes into the file store under folder.
// It does not remove the temporary file; that remains the caller's job.
func (s *AssetService) Upload(ctx context.Context, upload *domain.Upload, folder string) (string, error) {
	f, err := os.Open(upload.Path)
	if err != nil {
		return "", fmt.Errorf("open upload: %w", err)
	}
	defer f.Close()

	key, err := generateStorageKey(folder)
	if err != nil {
		return "", fmt.Errorf("generate storage key: %w", err)
	}

	if err := s.files.Save(ctx, key, upload.ContentType, f); err != nil {
		return "", fmt.Errorf("save file: %w", err)
	}

	return s.baseURL + AssetPathPrefix + key, nil
}

// Delete removes the asset addressed by url. URLs that do not point into
// this store are rejected with ErrInvalidInput.
func (s *AssetService) Delete(ctx context.Context, url string) error {
	key, ok := s.KeyFromURL(url)
	if !ok {
		return fmt.Errorf("%w: %q is not a stored asset url", domain.ErrInvalidInput, url)
	}
	if err := s.files.Delete(ctx, key); err != nil {
		return fmt.Errorf("delete file: %w", err)
	}
	return nil
}

// Open returns the stored asset for key.
func (s *AssetService) Open(ctx context.Context, key string) (*domain.Asset, error) {
	return s.files.Get(ctx, key)
}

// KeyFromURL extracts the storage key from a durable URL produced by Upload.
func (s *AssetService) KeyFromURL(url string) (string, bool) {
	key, ok := strings.CutPrefix(url, s.baseURL+AssetPathPrefix)
	if !ok || key == "" {
		return "", false
	}
	return key, true
}

func generateStorageKey(folder string) (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return path.Join(folder, hex.EncodeToString(b)), nil
}
