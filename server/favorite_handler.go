package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"bmapp/core/catalog"
	"bmapp/logger"
	"bmapp/model"

	"github.com/gorilla/mux"
)

// ListFavoritesHandler handles GET /api/favorites.
func (h *APIHandler) ListFavoritesHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := GetUserIDFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	ids, err := h.favorites.List(r.Context(), userID)
	if err != nil {
		logger.Error("[Favorites] 获取收藏失败", logger.Int64("userId", userID), logger.ErrorField(err))
		writeError(w, http.StatusInternalServerError, "Failed to fetch favorites")
		return
	}
	clips, err := h.catalog.Lookup(r.Context(), ids)
	if err != nil {
		logger.Error("[Favorites] 查询收藏音频失败", logger.Int64("userId", userID), logger.ErrorField(err))
		writeError(w, http.StatusInternalServerError, "Failed to fetch favorites")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"data":    clips,
	})
}

// AddFavoriteHandler handles POST /api/favorites {audioId}.
func (h *APIHandler) AddFavoriteHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := GetUserIDFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req struct {
		AudioID string `json:"audioId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	clip, err := h.catalog.Get(r.Context(), strings.TrimSpace(req.AudioID))
	switch {
	case errors.Is(err, catalog.ErrInvalidID):
		writeError(w, http.StatusBadRequest, "Invalid audio ID format")
		return
	case errors.Is(err, catalog.ErrNotFound):
		writeError(w, http.StatusNotFound, "Audio not found")
		return
	case err != nil:
		logger.Error("[Favorites] 查询音频失败", logger.ErrorField(err))
		writeError(w, http.StatusInternalServerError, "Failed to add favorite")
		return
	}

	if err := h.favorites.Add(r.Context(), userID, clip.ID); err != nil {
		logger.Error("[Favorites] 添加收藏失败", logger.Int64("userId", userID), logger.ErrorField(err))
		writeError(w, http.StatusInternalServerError, "Failed to add favorite")
		return
	}
	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"success": true,
		"message": "Added to favorites",
		"data":    clip,
	})
}

// RemoveFavoriteHandler handles DELETE /api/favorites/{id}.
func (h *APIHandler) RemoveFavoriteHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := GetUserIDFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	id := mux.Vars(r)["id"]
	if !model.IsValidClipID(id) {
		writeError(w, http.StatusBadRequest, "Invalid audio ID format")
		return
	}
	if err := h.favorites.Remove(r.Context(), userID, id); err != nil {
		logger.Error("[Favorites] 删除收藏失败", logger.Int64("userId", userID), logger.ErrorField(err))
		writeError(w, http.StatusInternalServerError, "Failed to remove favorite")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "Removed from favorites",
	})
}
