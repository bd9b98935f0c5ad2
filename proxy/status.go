package proxy

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
)

// StatusHandler returns a read-only HTTP handler exposing GET /status as
// JSON-encoded Stats, for an ops dashboard to poll independently of the
// TCP protocol proper.
func (s *Server) StatusHandler() http.Handler {
	router := mux.NewRouter()
	router.HandleFunc("/status", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(s.Stats())
	}).Methods(http.MethodGet)
	return router
}
