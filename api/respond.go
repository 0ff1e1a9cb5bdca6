package api

import (
	"encoding/json"
	"errors"
	"math"
	"net"
	"net/http"
	"strconv"

	"github.com/CreativeUnicorns/recruitprefs"
)

// maxBodyBytes bounds every JSON request body.
const maxBodyBytes = 64 * 1024

type errorPayload struct {
	Message string            `json:"message"`
	Code    string            `json:"code,omitempty"`
	Fields  map[string]string `json:"fields,omitempty"`
}

func errorBody(message string, extra func(*errorPayload)) map[string]errorPayload {
	p := errorPayload{Message: message}
	if extra != nil {
		extra(&p)
	}
	return map[string]errorPayload{"error": p}
}

// decodeJSON reads a single JSON object from the request body into dst.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	return decoder.Decode(dst)
}

// respondWithError sends a JSON error with an explicit status.
func (s *Server) respondWithError(w http.ResponseWriter, r *http.Request, status int, message string, err error) {
	if status >= http.StatusInternalServerError {
		s.logger.Error("API Error", "status", status, "message", message, "path", r.URL.Path, "error", err)
	} else {
		s.logger.Debug("API request rejected", "status", status, "message", message, "path", r.URL.Path, "error", err)
	}
	respondWithJSONRaw(w, status, errorBody(message, nil))
}

// respondWithDomainError maps package errors to HTTP statuses and applicant-facing messages.
func (s *Server) respondWithDomainError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		verr     *recruitprefs.ValidationError
		conflict *recruitprefs.ConflictError
		limited  *recruitprefs.RateLimitError
	)

	switch {
	case errors.As(err, &verr):
		respondWithJSONRaw(w, http.StatusBadRequest, errorBody("Please correct the highlighted fields.", func(p *errorPayload) {
			p.Code = "validation_failed"
			p.Fields = verr.Fields
		}))
	case errors.As(err, &conflict):
		respondWithJSONRaw(w, http.StatusConflict, errorBody(conflict.UserMessage(), func(p *errorPayload) {
			p.Code = "duplicate_selection"
		}))
	case errors.As(err, &limited):
		w.Header().Set("Retry-After", strconv.Itoa(int(math.Ceil(limited.RetryAfter.Seconds()))))
		respondWithJSONRaw(w, http.StatusTooManyRequests, errorBody("Too many submissions. Please try again later.", func(p *errorPayload) {
			p.Code = limited.Reason
		}))
	case errors.Is(err, recruitprefs.ErrMissingPreference):
		respondWithJSONRaw(w, http.StatusUnprocessableEntity, errorBody(recruitprefs.FieldMessage("department"), func(p *errorPayload) {
			p.Code = "missing_preference"
		}))
	case errors.Is(err, recruitprefs.ErrSessionNotFound):
		s.respondWithError(w, r, http.StatusNotFound, "Session not found", err)
	case errors.Is(err, recruitprefs.ErrNotFound):
		s.respondWithError(w, r, http.StatusNotFound, "Not found", err)
	case errors.Is(err, recruitprefs.ErrUnknownOption):
		s.respondWithError(w, r, http.StatusBadRequest, "Unknown department", err)
	case errors.Is(err, recruitprefs.ErrInvalidMode):
		s.respondWithError(w, r, http.StatusBadRequest, "Mode must be primary or secondary", err)
	case errors.Is(err, recruitprefs.ErrBotDetected), errors.Is(err, recruitprefs.ErrSuspiciousInput):
		s.respondWithError(w, r, http.StatusBadRequest, "Submission rejected. Please remove special characters and try again.", err)
	case errors.Is(err, recruitprefs.ErrInvalidInput):
		s.respondWithError(w, r, http.StatusBadRequest, "Invalid request", err)
	case errors.Is(err, recruitprefs.ErrStorageUnavailable), errors.Is(err, recruitprefs.ErrCacheUnavailable):
		s.respondWithError(w, r, http.StatusServiceUnavailable, "Service temporarily unavailable", err)
	default:
		s.respondWithError(w, r, http.StatusInternalServerError, "Internal server error", err)
	}
}

// respondWithJSON is a helper to send JSON responses.
func (s *Server) respondWithJSON(w http.ResponseWriter, _ *http.Request, status int, payload interface{}) {
	data, err := json.Marshal(payload)
	if err != nil {
		s.logger.Error("Failed to marshal JSON response", "error", err)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":{"message":"Failed to marshal response"}}`))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(data)
}

// respondWithJSONRaw is the logger-free variant used by middleware and error paths.
func respondWithJSONRaw(w http.ResponseWriter, status int, payload interface{}) {
	data, err := json.Marshal(payload)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":{"message":"Critical: Failed to marshal error response"}}`))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(data)
}

// clientID identifies the caller for rate limiting. middleware.RealIP has already
// rewritten RemoteAddr from proxy headers.
func clientID(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
