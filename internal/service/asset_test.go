package service_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/msomdec/blog-api/internal/domain"
	"github.com/msomdec/blog-api/internal/service"
)

func TestAssetService_UploadOpenDelete(t *testing.T) {
	db := newTestDB(t)
	assets := service.NewAssetService(db.FileStore(), "https://cdn.example.com/")
	ctx := context.Background()
	upload := writeTempUpload(t, "bytes")

	url, err := assets.Upload(ctx, upload, "posts")
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}
	if !strings.HasPrefix(url, "https://cdn.example.com/assets/posts/") {
		t.Fatalf("unexpected url %q", url)
	}

	key, ok := assets.KeyFromURL(url)
	if !ok || !strings.HasPrefix(key, "posts/") || len(key) != len("posts/")+32 {
		t.Fatalf("unexpected key %q from %q", key, url)
	}

	asset, err := assets.Open(ctx, key)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if string(asset.Data) != "bytes" || asset.ContentType != "image/png" {
		t.Fatalf("unexpected asset: %+v", asset)
	}

	if err := assets.Delete(ctx, url); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := assets.Open(ctx, key); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestAssetService_UniqueKeys(t *testing.T) {
	db := newTestDB(t)
	assets := service.NewAssetService(db.FileStore(), "")
	ctx := context.Background()

	a, err := assets.Upload(ctx, writeTempUpload(t, "same"), "posts")
	if err != nil {
		t.Fatalf("Upload a: %v", err)
	}
	b, err := assets.Upload(ctx, writeTempUpload(t, "same"), "posts")
	if err != nil {
		t.Fatalf("Upload b: %v", err)
	}
	if a == b {
		t.Fatal("expected distinct urls for separate uploads")
	}
}

func TestAssetService_DeleteForeignURL(t *testing.T) {
	db := newTestDB(t)
	assets := service.NewAssetService(db.FileStore(), "")

	err := assets.Delete(context.Background(), "https://elsewhere.example.com/img.png")
	if !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestAssetService_UploadMissingFile(t *testing.T) {
	db := newTestDB(t)
	assets := service.NewAssetService(db.FileStore(), "")

	_, err := assets.Upload(context.Background(), &domain.Upload{Path: "/nonexistent/upload", ContentType: "image/png"}, "posts")
	if err == nil {
		t.Fatal("expected error for missing upload file")
	}
}
