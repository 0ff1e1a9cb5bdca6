package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

func (s *Server) handleListDepartments(w http.ResponseWriter, r *http.Request) {
	s.respondWithJSON(w, r, http.StatusOK, s.manager.Catalog().Options())
}

func (s *Server) handleGetDepartment(w http.ResponseWriter, r *http.Request) {
	opt, ok := s.manager.Catalog().Lookup(chi.URLParam(r, "id"))
	if !ok {
		s.respondWithError(w, r, http.StatusNotFound, "Department not found", nil)
		return
	}
	s.respondWithJSON(w, r, http.StatusOK, opt)
}
