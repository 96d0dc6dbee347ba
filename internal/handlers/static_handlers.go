package handlers

import (
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"

	"pdf-presenter/internal/services"
)

// StaticHandler serves the presenter and audience front-end files
type StaticHandler struct {
	dir string
}

// NewStaticHandler creates a static handler rooted at dir. An empty dir
// disables static serving.
func NewStaticHandler(dir string) *StaticHandler {
	return &StaticHandler{dir: dir}
}

// ServeHTTP serves files from the static directory, falling back to
// index.html so client-side routes resolve
func (h *StaticHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if h.dir == "" {
		http.NotFound(w, r)
		return
	}

	path := filepath.Join(h.dir, filepath.Clean("/"+r.URL.Path))
	if info, err := os.Stat(path); err != nil || info.IsDir() {
		path = filepath.Join(h.dir, "index.html")
	}
	http.ServeFile(w, r, path)
}

// HealthHandler reports relay status
type HealthHandler struct {
	wsService *services.WebSocketService
	logger    *logrus.Logger
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(wsService *services.WebSocketService, logger *logrus.Logger) *HealthHandler {
	return &HealthHandler{
		wsService: wsService,
		logger:    logger,
	}
}

// HealthResponse is the body of GET /healthz
type HealthResponse struct {
	Status string         `json:"status"`
	Rooms  map[string]int `json:"rooms"`
}

// Health returns the connected clients per channel
// GET /healthz
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	rooms, err := h.wsService.RoomSizes(r.Context())
	if err != nil {
		h.logger.WithError(err).Warn("Health check failed")
		http.Error(w, "relay unavailable", http.StatusServiceUnavailable)
		return
	}
	writeJSON(w, http.StatusOK, HealthResponse{Status: "ok", Rooms: rooms})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
