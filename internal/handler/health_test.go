package handler_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/msomdec/blog-api/internal/handler"
)

type pingFunc func(ctx context.Context) error

func (f pingFunc) Ping(ctx context.Context) error { return f(ctx) }

func TestHandleHealthz(t *testing.T) {
	tests := []struct {
		name       string
		ping       pingFunc
		wantStatus int
		wantBody   map[string]string
	}{
		{
			name:       "database reachable",
			ping:       func(context.Context) error { return nil },
			wantStatus: http.StatusOK,
			wantBody:   map[string]string{"status": "ok", "database": "ok"},
		},
		{
			name:       "database down",
			ping:       func(context.Context) error { return errors.New("connection refused") },
			wantStatus: http.StatusServiceUnavailable,
			wantBody:   map[string]string{"status": "unavailable", "database": "unreachable"},
		},
		{
			name: "ping gets a deadline",
			ping: func(ctx context.Context) error {
				if _, ok := ctx.Deadline(); !ok {
					return errors.New("no deadline")
				}
				return nil
			},
			wantStatus: http.StatusOK,
			wantBody:   map[string]string{"status": "ok", "database": "ok"},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			handler.NewHealthHandler(tc.ping).HandleHealthz(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))

			if w.Code != tc.wantStatus {
				t.Fatalf("expected %d, got %d", tc.wantStatus, w.Code)
			}
			if ct := w.Header().Get("Content-Type"); ct != "application/json" {
				t.Fatalf("expected application/json, got %s", ct)
			}
			var body map[string]string
			if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
				t.Fatalf("decode body: %v", err)
			}
			for k, v := range tc.wantBody {
				if body[k] != v {
					t.Fatalf("expected %s=%s, got %v", k, v, body)
				}
			}
		})
	}
}

func TestHealthzReflectsDatabaseState(t *testing.T) {
	svc := newTestServices(t)

	mux := http.NewServeMux()
	handler.RegisterRoutes(mux, svc.db, svc.auth, svc.posts, svc.assets, 0)
	srv := httptest.NewServer(mux)
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/healthz")
	if err != nil {
		t.Fatalf("GET /healthz: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 with open database, got %d", resp.StatusCode)
	}

	if err := svc.db.Close(); err != nil {
		t.Fatalf("close db: %v", err)
	}
	resp, err = http.Get(srv.URL + "/healthz")
	if err != nil {
		t.Fatalf("GET /healthz: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 with closed database, got %d", resp.StatusCode)
	}
}
