package server

import (
	"encoding/json"
	"net/http"
)

// Health is the body of GET /healthz.
type Health struct {
	Status  string `json:"status"`
	Tick    int64  `json:"tick"`
	Clients int64  `json:"clients"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.Header().Set("Allow", "GET, HEAD")
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	status := "ok"
	if s.closed.Load() {
		status = "closed"
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(Health{
		Status:  status,
		Tick:    s.src.TickCount(),
		Clients: s.Metrics().Clients,
	})
}
