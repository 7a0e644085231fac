package handler

import (
	"net/http"

	"github.com/msomdec/blog-api/internal/domain"
	"github.com/msomdec/blog-api/internal/service"
)

// DefaultMaxUploadBytes bounds image uploads when no limit is configured.
const DefaultMaxUploadBytes = 10 << 20

// RegisterRoutes sets up all HTTP routes on the given mux. db backs the
// health check. maxUploadBytes <= 0 selects DefaultMaxUploadBytes.
func RegisterRoutes(mux *http.ServeMux, db Pinger, auth *service.AuthService, posts *service.PostService, assets domain.AssetStore, maxUploadBytes int64) {
	if maxUploadBytes <= 0 {
		maxUploadBytes = DefaultMaxUploadBytes
	}

	healthHandler := NewHealthHandler(db)
	authHandler := NewAuthHandler(auth)
	postHandler := NewPostHandler(posts, maxUploadBytes)
	assetHandler := NewAssetHandler(assets)

	mux.HandleFunc("GET /healthz", healthHandler.HandleHealthz)

	mux.HandleFunc("POST /api/auth/register", authHandler.HandleRegister)
	mux.HandleFunc("POST /api/auth/login", authHandler.HandleLogin)
	mux.Handle("GET /api/auth/me", RequireAuth(auth, http.HandlerFunc(authHandler.HandleMe)))

	mux.HandleFunc("GET /api/posts", postHandler.HandleList)
	mux.HandleFunc("GET /api/posts/{id}", postHandler.HandleGet)
	mux.HandleFunc("GET /api/users/{id}/posts", postHandler.HandleListByAuthor)
	mux.Handle("POST /api/posts", RequireAuth(auth, http.HandlerFunc(postHandler.HandleCreate)))
	mux.Handle("PUT /api/posts/{id}", RequireAuth(auth, http.HandlerFunc(postHandler.HandleUpdate)))
	mux.Handle("DELETE /api/posts/{id}", RequireAuth(auth, http.HandlerFunc(postHandler.HandleDelete)))

	mux.HandleFunc("GET "+service.AssetPathPrefix+"{key...}", assetHandler.HandleServe)
}
