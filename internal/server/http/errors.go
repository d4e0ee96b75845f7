package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/and161185/bloglist/internal/errs"
)

type errorBody struct {
	Error string `json:"error"`
}

type validationBody struct {
	Name    string `json:"name"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps domain errors to HTTP responses in one place. Unmapped
// errors are logged and answered with 500; their text is only exposed in dev mode.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var fe *errs.FieldError
	switch {
	case errors.Is(err, errs.ErrInvalidToken):
		writeJSON(w, http.StatusUnauthorized, errorBody{Error: errs.ErrInvalidToken.Error()})
	case errors.Is(err, errs.ErrForbidden):
		writeJSON(w, http.StatusUnauthorized, errorBody{Error: errs.ErrForbidden.Error()})
	case errors.Is(err, errs.ErrUnauthorized):
		writeJSON(w, http.StatusUnauthorized, errorBody{Error: "invalid username or password"})
	case errors.Is(err, errs.ErrRateLimited):
		writeJSON(w, http.StatusTooManyRequests, errorBody{Error: "too many failed login attempts"})
	case errors.Is(err, errs.ErrInvalidPassword):
		writeJSON(w, http.StatusBadRequest, errorBody{Error: errs.ErrInvalidPassword.Error()})
	case errors.Is(err, errs.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorBody{Error: "not found"})
	case errors.As(err, &fe):
		writeJSON(w, http.StatusBadRequest, errorBody{Error: fe.Error()})
	case errors.Is(err, errs.ErrValidation):
		writeJSON(w, http.StatusBadRequest, errorBody{Error: err.Error()})
	default:
		s.log.Error("request failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
		msg := "internal error"
		if s.dev {
			msg = err.Error()
		}
		writeJSON(w, http.StatusInternalServerError, errorBody{Error: msg})
	}
}

// writeUserValidation renders account validation failures in the
// {name, message} shape clients of POST /api/users expect.
func writeUserValidation(w http.ResponseWriter, fe *errs.FieldError) {
	writeJSON(w, http.StatusBadRequest, validationBody{
		Name:    "ValidationError",
		Message: "User validation failed: " + fe.Error(),
	})
}
