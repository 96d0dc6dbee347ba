package handlers

import (
	"net/http"

	"github.com/gorilla/mux"
)

// SetupRoutes wires every handler into a router
func SetupRoutes(
	wsHandler *WebSocketHandler,
	staticHandler *StaticHandler,
	healthHandler *HealthHandler,
	resolveHandler *ResolveHandler,
	recentHandler *RecentHandler,
) *mux.Router {
	// Channel names are file names and may contain escaped slashes
	r := mux.NewRouter().UseEncodedPath()

	r.HandleFunc("/ws/{channel}", wsHandler.ServeWS).Methods(http.MethodGet)
	r.HandleFunc("/healthz", healthHandler.Health).Methods(http.MethodGet)

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/resolve", resolveHandler.Resolve).Methods(http.MethodPost)

	api.HandleFunc("/recent", recentHandler.ListRecent).Methods(http.MethodGet)
	api.HandleFunc("/recent", recentHandler.ClearRecent).Methods(http.MethodDelete)
	api.HandleFunc("/recent/search", recentHandler.SearchRecent).Methods(http.MethodGet)
	api.HandleFunc("/recent/{id}", recentHandler.GetRecent).Methods(http.MethodGet)
	api.HandleFunc("/recent/{id}", recentHandler.DeleteRecent).Methods(http.MethodDelete)

	api.HandleFunc("/settings", recentHandler.GetSettings).Methods(http.MethodGet)
	api.HandleFunc("/settings", recentHandler.UpdateSettings).Methods(http.MethodPut)

	r.PathPrefix("/").Handler(staticHandler)

	return r
}
