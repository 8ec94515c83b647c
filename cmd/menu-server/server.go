package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/orussy/online-menu/pkg/cache"
	"github.com/orussy/online-menu/pkg/menu"
)

// cacheAdmin is the slice of the cache store the admin surface uses.
type cacheAdmin interface {
	Entries(ctx context.Context) []cache.Info
	Clear(ctx context.Context, key string) int64
	ClearAll(ctx context.Context) int64
}

// warmer triggers a fresh category fetch after a cache wipe.
type warmer interface {
	Refresh(ctx context.Context) error
}

type server struct {
	menu    *menu.Service
	store   cacheAdmin
	catalog warmer
	secret  string
	ttl     float64 // hours, reported by status
	logger  zerolog.Logger
}

func (s *server) routes() http.Handler {
	r := chi.NewRouter()
	r.Get("/healthz", s.handleHealth)
	r.Handle("/metrics", promhttp.Handler())
	r.Get("/menu/categories", s.handleCategories)
	r.Get("/menu/categories/{categoryID}/products", s.handleProducts)
	r.Get("/admin/cache", s.handleCacheAdmin)
	return r
}

func (s *server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

func (s *server) handleCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := s.menu.Categories(r.Context())
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to load categories")
		writeJSON(w, http.StatusBadGateway, map[string]any{
			"success": false,
			"error":   "failed to load categories",
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success":    true,
		"categories": categories,
	})
}

func (s *server) handleProducts(w http.ResponseWriter, r *http.Request) {
	categoryID := chi.URLParam(r, "categoryID")

	category, products, err := s.menu.Products(r.Context(), categoryID)
	if err != nil {
		if errors.Is(err, menu.ErrCategoryNotFound) {
			writeJSON(w, http.StatusNotFound, map[string]any{
				"success": false,
				"error":   "category not found",
			})
			return
		}
		s.logger.Error().Err(err).Str("category_id", categoryID).Msg("Failed to load products")
		writeJSON(w, http.StatusBadGateway, map[string]any{
			"success": false,
			"error":   "failed to load products",
		})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success":  true,
		"category": category,
		"products": products,
	})
}

// handleCacheAdmin implements the cache administration surface: status is
// open, mutating actions require the shared secret.
func (s *server) handleCacheAdmin(w http.ResponseWriter, r *http.Request) {
	action := r.URL.Query().Get("action")
	if action == "" {
		action = "status"
	}

	switch action {
	case "status":
		entries := s.store.Entries(r.Context())
		writeJSON(w, http.StatusOK, map[string]any{
			"success":            true,
			"cache_expiry_hours": s.ttl,
			"total_entries":      len(entries),
			"entries":            entries,
		})

	case "sync", "clear", "refresh":
		if !s.authorized(r) {
			writeJSON(w, http.StatusForbidden, map[string]any{
				"success": false,
				"error":   "unauthorized: invalid sync key",
			})
			return
		}
		s.handleMutatingAction(w, r, action)

	default:
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"success": false,
			"error":   "unknown action: " + action,
		})
	}
}

func (s *server) handleMutatingAction(w http.ResponseWriter, r *http.Request, action string) {
	ctx := r.Context()

	switch action {
	case "sync":
		deleted := s.store.ClearAll(ctx)
		if err := s.catalog.Refresh(ctx); err != nil {
			writeJSON(w, http.StatusBadGateway, map[string]any{
				"success": false,
				"deleted": deleted,
				"error":   "cache cleared but warm fetch failed",
			})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"success": true,
			"message": "cache cleared and synced",
			"deleted": deleted,
		})

	case "clear":
		deleted := s.store.ClearAll(ctx)
		writeJSON(w, http.StatusOK, map[string]any{
			"success": true,
			"message": "cache cleared",
			"deleted": deleted,
		})

	case "refresh":
		key := r.URL.Query().Get("key")
		if key == "" {
			writeJSON(w, http.StatusBadRequest, map[string]any{
				"success": false,
				"error":   "key parameter required for refresh",
			})
			return
		}
		s.store.Clear(ctx, key)
		writeJSON(w, http.StatusOK, map[string]any{
			"success": true,
			"message": "cache refreshed for key: " + key,
		})
	}
}

// authorized checks the shared secret. An unset secret disables mutating
// actions entirely.
func (s *server) authorized(r *http.Request) bool {
	return s.secret != "" && r.URL.Query().Get("secret") == s.secret
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
