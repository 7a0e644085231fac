package handler

import (
	"net/http"
	"strconv"

	"github.com/msomdec/blog-api/internal/domain"
)

// AssetHandler serves stored binary assets.
type AssetHandler struct {
	assets domain.AssetStore
}

// NewAssetHandler creates a new AssetHandler.
func NewAssetHandler(assets domain.AssetStore) *AssetHandler {
	return &AssetHandler{assets: assets}
}

// HandleServe writes the asset bytes with their stored content type.
// Keys are random and never reused, so responses are cacheable forever.
// GET /assets/{key...}
func (h *AssetHandler) HandleServe(w http.ResponseWriter, r *http.Request) {
	asset, err := h.assets.Open(r.Context(), r.PathValue("key"))
	if err != nil {
		writeServiceError(w, "serve asset", err)
		return
	}

	w.Header().Set("Content-Type", asset.ContentType)
	w.Header().Set("Cache-Control", "public, max-age=31536000, immutable")
	w.Header().Set("Content-Length", strconv.Itoa(len(asset.Data)))
	w.Write(asset.Data)
}
