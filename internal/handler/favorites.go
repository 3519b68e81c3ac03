package handler

import (
	"context"
	"log/slog"
	"net/http"

	"qwksearch/internal/domain/models"
	"qwksearch/internal/httputil"
	"qwksearch/internal/service/favorite"
)

// FavoriteService manages bookmarks. *favorite.Service implements it.
type FavoriteService interface {
	List(ctx context.Context, userID string) ([]models.Favorite, error)
	Add(ctx context.Context, userID string, req *favorite.AddRequest) (*models.Favorite, bool, error)
	Remove(ctx context.Context, userID, url string) error
}

// FavoritesHandler serves /api/favorites for signed-in users
type FavoritesHandler struct {
	favorites FavoriteService
	logger    *slog.Logger
}

// NewFavoritesHandler creates a new favorites handler
func NewFavoritesHandler(favorites FavoriteService, logger *slog.Logger) *FavoritesHandler {
	return &FavoritesHandler{favorites: favorites, logger: logger}
}

// ListFavorites handles GET /api/favorites
func (h *FavoritesHandler) ListFavorites(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	favorites, err := h.favorites.List(r.Context(), userID)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, map[string]any{"favorites": favorites})
}

// AddFavorite handles POST /api/favorites. An already saved URL answers 200
// with the existing favorite.
func (h *FavoritesHandler) AddFavorite(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req favorite.AddRequest
	if !parseBody(w, r, &req) {
		return
	}

	fav, created, err := h.favorites.Add(r.Context(), userID, &req)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	if !created {
		httputil.RespondJSON(w, http.StatusOK, map[string]any{
			"message":  "Article already favorited",
			"favorite": fav,
		})
		return
	}
	httputil.RespondJSON(w, http.StatusCreated, map[string]any{
		"message":  "Favorite added",
		"favorite": fav,
	})
}

// RemoveFavorite handles DELETE /api/favorites?url=
func (h *FavoritesHandler) RemoveFavorite(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	if err := h.favorites.Remove(r.Context(), userID, r.URL.Query().Get("url")); err != nil {
		handleError(w, h.logger, err)
		return
	}
	httputil.RespondMessage(w, http.StatusOK, "Favorite removed")
}
