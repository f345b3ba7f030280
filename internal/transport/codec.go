package transport

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/rpggio/dailylog/internal/api"
	"github.com/rpggio/dailylog/internal/domain/habit"
	"github.com/rpggio/dailylog/internal/domain/logitem"
	"github.com/rpggio/dailylog/internal/domain/project"
)

// maxBodyBytes bounds request bodies.
const maxBodyBytes = 4 << 20

var errBadRequest = errors.New("bad request")

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return fmt.Errorf("%w: %v", errBadRequest, err)
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		s.logger.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		msg = "internal error"
	}
	writeJSON(w, status, api.Failure(msg))
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, errBadRequest),
		errors.Is(err, logitem.ErrInvalidDate),
		errors.Is(err, logitem.ErrInvalidInput),
		errors.Is(err, project.ErrInvalidInput),
		errors.Is(err, project.ErrInvalidRelation),
		errors.Is(err, habit.ErrInvalidInput),
		errors.Is(err, habit.ErrInvalidStatus):
		return http.StatusBadRequest
	case errors.Is(err, logitem.ErrItemNotFound),
		errors.Is(err, project.ErrItemNotFound),
		errors.Is(err, project.ErrParentNotFound),
		errors.Is(err, habit.ErrHabitNotFound):
		return http.StatusNotFound
	case errors.Is(err, project.ErrHasChildren):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
