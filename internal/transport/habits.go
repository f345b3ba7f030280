package transport

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rpggio/dailylog/internal/api"
	"github.com/rpggio/dailylog/internal/domain/habit"
)

func (s *Server) handleGetHabits(w http.ResponseWriter, r *http.Request) {
	habits, err := s.svc.Habits.List(r.Context(), r.URL.Query().Get("date"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, api.HabitsResponse{Envelope: api.Success(), Habits: habits})
}

func (s *Server) handleAddHabit(w http.ResponseWriter, r *http.Request) {
	var req api.AddHabitRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	h, err := s.svc.Habits.Create(r.Context(), habit.CreateRequest{Title: req.Title, Color: req.Color, GroupID: req.GroupID})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, api.AddHabitResponse{Envelope: api.Success(), ID: h.ID})
}

func (s *Server) handleUpdateHabit(w http.ResponseWriter, r *http.Request) {
	var req api.UpdateHabitRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.svc.Habits.Update(r.Context(), req.HabitID, req.Patch()); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, api.Success())
}

func (s *Server) handleDeleteHabit(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		s.writeError(w, r, fmt.Errorf("%w: habit id must be numeric", errBadRequest))
		return
	}
	if err := s.svc.Habits.Delete(r.Context(), id); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, api.Success())
}

func (s *Server) handleToggleHabit(w http.ResponseWriter, r *http.Request) {
	var req api.ToggleHabitRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.svc.Habits.Toggle(r.Context(), req.Date, req.HabitID, req.Status); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, api.Success())
}

func (s *Server) handleMarkAllDone(w http.ResponseWriter, r *http.Request) {
	n, err := s.svc.Habits.MarkAllDone(r.Context(), r.URL.Query().Get("date"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, api.MarkAllDoneResponse{Envelope: api.Success(), Updated: n})
}
