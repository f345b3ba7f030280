package transport

import (
	"bytes"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rpggio/dailylog/internal/api"
	"github.com/rpggio/dailylog/internal/domain/logitem"
)

func (s *Server) handleGetLog(w http.ResponseWriter, r *http.Request) {
	day, err := s.svc.Logs.GetDay(r.Context(), chi.URLParam(r, "date"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, api.LogResponse{Envelope: api.Success(), Date: day.Date, Items: day.Items})
}

func (s *Server) handleSaveLog(w http.ResponseWriter, r *http.Request) {
	var req api.SaveLogRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	saved, err := s.svc.Logs.SaveDay(r.Context(), logitem.DayLog{Date: req.Date, Items: req.Items})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, api.LogResponse{Envelope: api.Success(), Date: saved.Date, Items: saved.Items})
}

func (s *Server) handleAllLogs(w http.ResponseWriter, r *http.Request) {
	days, err := s.svc.Logs.ListDays(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if days == nil {
		days = []logitem.DayLog{}
	}
	writeJSON(w, http.StatusOK, api.AllLogsResponse{Envelope: api.Success(), Logs: days})
}

func (s *Server) handleProjectHistory(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	h, err := s.svc.Logs.History(r.Context(), q.Get("title"), q.Get("tags"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, api.HistoryResponse{Envelope: api.Success(), TotalDays: h.TotalDays, History: h.Entries})
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	if err := s.svc.Logs.ExportMonth(r.Context(), chi.URLParam(r, "date"), &buf); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}
