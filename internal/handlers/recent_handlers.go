package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"pdf-presenter/internal/services"
)

// RecentHandler handles HTTP requests for the recent files history
type RecentHandler struct {
	store  *services.RecentStore
	logger *logrus.Logger
}

// NewRecentHandler creates a new recent files handler
func NewRecentHandler(store *services.RecentStore, logger *logrus.Logger) *RecentHandler {
	return &RecentHandler{
		store:  store,
		logger: logger,
	}
}

// ListRecent returns the history, newest first
// GET /api/recent
func (h *RecentHandler) ListRecent(w http.ResponseWriter, r *http.Request) {
	files, err := h.store.List(r.Context())
	if err != nil {
		h.serverError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, files)
}

// SearchRecent fuzzy-matches the q parameter against document names
// GET /api/recent/search?q=...
func (h *RecentHandler) SearchRecent(w http.ResponseWriter, r *http.Request) {
	files, err := h.store.Search(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		h.serverError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, files)
}

// GetRecent returns one entry
// GET /api/recent/{id}
func (h *RecentHandler) GetRecent(w http.ResponseWriter, r *http.Request) {
	file, err := h.store.Get(r.Context(), mux.Vars(r)["id"])
	if errors.Is(err, services.ErrRecentNotFound) {
		http.Error(w, "recent file not found", http.StatusNotFound)
		return
	}
	if err != nil {
		h.serverError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, file)
}

// DeleteRecent removes one entry
// DELETE /api/recent/{id}
func (h *RecentHandler) DeleteRecent(w http.ResponseWriter, r *http.Request) {
	err := h.store.Remove(r.Context(), mux.Vars(r)["id"])
	if errors.Is(err, services.ErrRecentNotFound) {
		http.Error(w, "recent file not found", http.StatusNotFound)
		return
	}
	if err != nil {
		h.serverError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ClearRecent removes the whole history
// DELETE /api/recent
func (h *RecentHandler) ClearRecent(w http.ResponseWriter, r *http.Request) {
	if err := h.store.Clear(r.Context()); err != nil {
		h.serverError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetSettings returns the history settings
// GET /api/settings
func (h *RecentHandler) GetSettings(w http.ResponseWriter, r *http.Request) {
	settings, err := h.store.Settings(r.Context())
	if err != nil {
		h.serverError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, settings)
}

// UpdateSettingsRequest is a partial settings update
type UpdateSettingsRequest struct {
	SaveHistory *bool `json:"saveHistory"`
}

// UpdateSettings applies the fields present in the request
// PUT /api/settings
func (h *RecentHandler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	var req UpdateSettingsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}

	settings, err := h.store.Settings(r.Context())
	if err != nil {
		h.serverError(w, err)
		return
	}
	if req.SaveHistory != nil {
		settings.SaveHistory = *req.SaveHistory
	}
	if err := h.store.UpdateSettings(r.Context(), settings); err != nil {
		h.serverError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, settings)
}

func (h *RecentHandler) serverError(w http.ResponseWriter, err error) {
	h.logger.WithError(err).Error("Recent store request failed")
	http.Error(w, "internal error", http.StatusInternalServerError)
}
