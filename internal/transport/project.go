package transport

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rpggio/dailylog/internal/api"
	"github.com/rpggio/dailylog/internal/domain/activity"
	"github.com/rpggio/dailylog/internal/domain/project"
)

func (s *Server) handleTree(w http.ResponseWriter, r *http.Request) {
	originID := chi.URLParam(r, "originID")
	items, err := s.svc.Projects.Tree(r.Context(), originID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, api.TreeResponse{Envelope: api.Success(), OriginID: originID, Tree: items})
}

func (s *Server) handleAddMilestone(w http.ResponseWriter, r *http.Request) {
	var req api.AddMilestoneRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	item, err := s.svc.Projects.AddMilestone(r.Context(), project.MilestoneRequest{
		OriginID: req.OriginID,
		Title:    req.Title,
		Date:     req.Date,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, api.AddMilestoneResponse{Envelope: api.Success(), ItemID: item.ID})
}

func (s *Server) handleUpdateRelation(w http.ResponseWriter, r *http.Request) {
	var req api.UpdateRelationRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	err := s.svc.Projects.UpdateRelation(r.Context(), project.RelationRequest{
		ItemID:         req.ItemID,
		TargetParentID: req.TargetParentID,
		RelationType:   req.RelationType,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, api.Success())
}

func (s *Server) handleDeleteItem(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.Projects.DeleteItem(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, api.Success())
}

func (s *Server) handleActivity(w http.ResponseWriter, r *http.Request) {
	if s.svc.Activity == nil {
		writeJSON(w, http.StatusOK, api.ActivityResponse{Envelope: api.Success(), Activity: []activity.Entry{}})
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	entries, err := s.svc.Activity.Recent(r.Context(), activity.ListOptions{Limit: limit})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if entries == nil {
		entries = []activity.Entry{}
	}
	writeJSON(w, http.StatusOK, api.ActivityResponse{Envelope: api.Success(), Activity: entries})
}
