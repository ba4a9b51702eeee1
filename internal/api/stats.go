package api

import (
	"net/http"
	"sync"
)

// runStats counts batch outcomes served by this process.
type runStats struct {
	mu        sync.Mutex
	total     int
	succeeded int
	failed    int
}

func (st *runStats) record(ok bool) {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.total++
	if ok {
		st.succeeded++
	} else {
		st.failed++
	}
}

// statsResponse is the JSON response for GET /v1/stats.
type statsResponse struct {
	Total     int `json:"total"`
	Succeeded int `json:"succeeded"`
	Failed    int `json:"failed"`
}

func (s *Server) handleGetStats(w http.ResponseWriter, r *http.Request) {
	s.stats.mu.Lock()
	resp := statsResponse{
		Total:     s.stats.total,
		Succeeded: s.stats.succeeded,
		Failed:    s.stats.failed,
	}
	s.stats.mu.Unlock()

	s.writeJSON(w, http.StatusOK, resp)
}
