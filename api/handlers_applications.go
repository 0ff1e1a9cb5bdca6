package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/CreativeUnicorns/recruitprefs"
)

type submitRequest struct {
	SessionID string `json:"session_id"`
	recruitprefs.ApplicationForm
}

type submitResponse struct {
	ApplicationID       string    `json:"application_id"`
	PrimaryDepartment   string    `json:"primary_department"`
	SecondaryDepartment string    `json:"secondary_department,omitempty"`
	SubmittedAt         time.Time `json:"submitted_at"`
	Message             string    `json:"message"`
}

type statsResponse struct {
	Total       int                            `json:"total"`
	Departments []recruitprefs.DepartmentCount `json:"departments"`
}

// handleSubmitApplication submits the form with the session's current selection and,
// on success, raises the reset event on the session so every bound view clears.
func (s *Server) handleSubmitApplication(w http.ResponseWriter, r *http.Request) {
	var req submitRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.metrics.IncSubmission("bad_request")
		s.respondWithError(w, r, http.StatusBadRequest, "Invalid request payload", err)
		return
	}

	sess, err := s.sessions.Get(req.SessionID)
	if err != nil {
		s.metrics.IncSubmission("no_session")
		s.respondWithDomainError(w, r, err)
		return
	}

	app, err := s.manager.Submit(r.Context(), recruitprefs.Submission{
		Form:      req.ApplicationForm,
		Selection: sess.Selector.CurrentState(),
		ClientID:  clientID(r),
		Source:    "web",
	})
	if err != nil {
		s.metrics.IncSubmission(submissionStatus(err))
		s.respondWithDomainError(w, r, err)
		return
	}

	sess.Reset()
	s.metrics.IncSubmission("accepted")
	s.respondWithJSON(w, r, http.StatusCreated, submitResponse{
		ApplicationID:       app.ID,
		PrimaryDepartment:   app.PrimaryDepartment,
		SecondaryDepartment: app.SecondaryDepartment,
		SubmittedAt:         app.SubmittedAt,
		Message:             "Application submitted successfully!",
	})
}

func submissionStatus(err error) string {
	var (
		verr     *recruitprefs.ValidationError
		conflict *recruitprefs.ConflictError
		limited  *recruitprefs.RateLimitError
	)
	switch {
	case errors.As(err, &verr):
		return "invalid"
	case errors.As(err, &conflict):
		return "conflict"
	case errors.As(err, &limited):
		return "rate_limited"
	case errors.Is(err, recruitprefs.ErrBotDetected):
		return "bot"
	case errors.Is(err, recruitprefs.ErrSuspiciousInput):
		return "suspicious"
	case errors.Is(err, recruitprefs.ErrMissingPreference):
		return "missing_preference"
	default:
		return "error"
	}
}

func (s *Server) handleGetApplication(w http.ResponseWriter, r *http.Request) {
	app, err := s.manager.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.respondWithDomainError(w, r, err)
		return
	}
	s.respondWithJSON(w, r, http.StatusOK, app)
}

func (s *Server) handleListApplications(w http.ResponseWriter, r *http.Request) {
	var (
		apps []*recruitprefs.Application
		err  error
	)
	if dept := r.URL.Query().Get("department"); dept != "" {
		apps, err = s.manager.ListByDepartment(r.Context(), dept)
	} else {
		apps, err = s.manager.GetAll(r.Context())
	}
	if err != nil {
		s.respondWithDomainError(w, r, err)
		return
	}
	if apps == nil {
		apps = []*recruitprefs.Application{}
	}
	s.respondWithJSON(w, r, http.StatusOK, apps)
}

func (s *Server) handleApplicationStats(w http.ResponseWriter, r *http.Request) {
	counts, err := s.manager.CountByDepartment(r.Context())
	if err != nil {
		s.respondWithDomainError(w, r, err)
		return
	}

	total := 0
	for _, c := range counts {
		total += c.Primary
	}
	s.respondWithJSON(w, r, http.StatusOK, statsResponse{Total: total, Departments: counts})
}

func (s *Server) handleDeleteApplication(w http.ResponseWriter, r *http.Request) {
	if err := s.manager.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.respondWithDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleSecurityEvents(w http.ResponseWriter, r *http.Request) {
	s.respondWithJSON(w, r, http.StatusOK, s.manager.SecurityEvents())
}
