package api

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/CreativeUnicorns/recruitprefs"
)

type sessionResponse struct {
	SessionID string                      `json:"session_id"`
	Mode      string                      `json:"mode"`
	Selection recruitprefs.SelectionState `json:"selection"`
}

type modeRequest struct {
	Mode string `json:"mode"`
}

type selectRequest struct {
	OptionID string `json:"option_id"`
}

func newSessionResponse(sess *recruitprefs.Session) sessionResponse {
	return sessionResponse{
		SessionID: sess.ID,
		Mode:      sess.Selector.Mode().String(),
		Selection: sess.Selector.CurrentState(),
	}
}

func (s *Server) session(w http.ResponseWriter, r *http.Request) (*recruitprefs.Session, bool) {
	sess, err := s.sessions.Get(chi.URLParam(r, "id"))
	if err != nil {
		s.respondWithDomainError(w, r, err)
		return nil, false
	}
	return sess, true
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	sess := s.sessions.Create()
	s.metrics.IncSessions()
	s.respondWithJSON(w, r, http.StatusCreated, newSessionResponse(sess))
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	s.respondWithJSON(w, r, http.StatusOK, newSessionResponse(sess))
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, err := s.sessions.Get(id); err != nil {
		s.respondWithDomainError(w, r, err)
		return
	}
	s.sessions.Delete(id)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleSetMode(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}

	var req modeRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.respondWithError(w, r, http.StatusBadRequest, "Invalid request payload", err)
		return
	}
	mode, err := recruitprefs.ParseMode(req.Mode)
	if err != nil {
		s.respondWithDomainError(w, r, err)
		return
	}
	if err := sess.Selector.SetMode(mode); err != nil {
		s.respondWithDomainError(w, r, err)
		return
	}
	s.respondWithJSON(w, r, http.StatusOK, newSessionResponse(sess))
}

func (s *Server) handleSelect(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}

	var req selectRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.respondWithError(w, r, http.StatusBadRequest, "Invalid request payload", err)
		return
	}

	_, mode, err := sess.Selector.Choose(req.OptionID)
	if err != nil {
		var conflict *recruitprefs.ConflictError
		if errors.As(err, &conflict) {
			s.metrics.IncSelection(mode.String(), "conflict")
		} else {
			s.metrics.IncSelection(mode.String(), "error")
		}
		s.respondWithDomainError(w, r, err)
		return
	}

	s.metrics.IncSelection(mode.String(), "ok")
	s.respondWithJSON(w, r, http.StatusOK, newSessionResponse(sess))
}

func (s *Server) handleResetSession(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	sess.Reset()
	s.respondWithJSON(w, r, http.StatusOK, newSessionResponse(sess))
}
