package handlers

import (
	"net/http"
	"net/url"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"pdf-presenter/internal/services"
)

// WebSocketHandler upgrades relay connections
type WebSocketHandler struct {
	wsService *services.WebSocketService
	upgrader  websocket.Upgrader
	logger    *logrus.Logger
}

// NewWebSocketHandler creates a new websocket handler
func NewWebSocketHandler(wsService *services.WebSocketService, logger *logrus.Logger) *WebSocketHandler {
	return &WebSocketHandler{
		wsService: wsService,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			// Presenter and audience may be served from another origin
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		logger: logger,
	}
}

// ServeWS joins the named relay room
// GET /ws/{channel}
func (h *WebSocketHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	channel, err := url.PathUnescape(mux.Vars(r)["channel"])
	if err != nil || channel == "" {
		http.Error(w, "channel is required", http.StatusBadRequest)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote the HTTP error
		h.logger.WithError(err).WithField("channel", channel).Warn("WebSocket upgrade failed")
		return
	}

	h.wsService.Serve(r.Context(), conn, channel)
}
