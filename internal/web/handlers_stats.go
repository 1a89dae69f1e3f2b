package web

import "net/http"

// handleHealth reports liveness and whether a write is running.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, map[string]any{
		"status":     "ok",
		"writesBusy": s.service.WritesBusy(),
	})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	st, err := s.service.Stats(r.Context())
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, r, st)
}

// handleMonthlyStats returns {"YYYY-MM": count}.
func (s *Server) handleMonthlyStats(w http.ResponseWriter, r *http.Request) {
	months, err := s.service.SalesByMonth(r.Context())
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, r, months)
}

// handleBuildings returns the building codes for the filter dropdown.
func (s *Server) handleBuildings(w http.ResponseWriter, r *http.Request) {
	buildings, err := s.service.Buildings(r.Context())
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, r, map[string][]string{"buildings": buildings})
}
