package web

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// handleListSales returns one filtered, sorted page.
func (s *Server) handleListSales(w http.ResponseWriter, r *http.Request) {
	view, err := parseView(r.URL.Query())
	if err != nil {
		fail(w, r, err)
		return
	}

	res, err := s.service.List(r.Context(), view)
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, r, res)
}

// handleGetSale returns one sale.
func (s *Server) handleGetSale(w http.ResponseWriter, r *http.Request) {
	sale, err := s.service.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, r, sale)
}

// handleCreateSale validates and stores a new sale.
func (s *Server) handleCreateSale(w http.ResponseWriter, r *http.Request) {
	sale, err := decodeSale(w, r)
	if err != nil {
		fail(w, r, err)
		return
	}

	added, err := s.service.Add(r.Context(), sale)
	if err != nil {
		fail(w, r, err)
		return
	}

	w.Header().Set("Location", "/api/sales/"+added.ID)
	writeJSONStatus(w, r, http.StatusCreated, added)
}

// handleUpdateSale replaces an existing sale.
func (s *Server) handleUpdateSale(w http.ResponseWriter, r *http.Request) {
	sale, err := decodeSale(w, r)
	if err != nil {
		fail(w, r, err)
		return
	}

	updated, err := s.service.Update(r.Context(), chi.URLParam(r, "id"), sale)
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, r, updated)
}

// handleDeleteSale removes one sale.
func (s *Server) handleDeleteSale(w http.ResponseWriter, r *http.Request) {
	if err := s.service.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleClearSales removes every sale.
func (s *Server) handleClearSales(w http.ResponseWriter, r *http.Request) {
	n, err := s.service.Clear(r.Context())
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, r, map[string]int{"deleted": n})
}
