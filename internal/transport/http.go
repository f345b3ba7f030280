// Package transport serves the daily log REST API.
package transport

import (
	"context"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rpggio/dailylog/internal/domain/activity"
	"github.com/rpggio/dailylog/internal/domain/habit"
	"github.com/rpggio/dailylog/internal/domain/logitem"
	"github.com/rpggio/dailylog/internal/domain/project"
)

// LogService is the day log surface used by the API.
type LogService interface {
	GetDay(ctx context.Context, date string) (*logitem.DayLog, error)
	SaveDay(ctx context.Context, log logitem.DayLog) (*logitem.DayLog, error)
	ListDays(ctx context.Context) ([]logitem.DayLog, error)
	History(ctx context.Context, title, tagFilter string) (*logitem.History, error)
	ExportMonth(ctx context.Context, date string, w io.Writer) error
}

// ProjectService is the lineage surface used by the API.
type ProjectService interface {
	Tree(ctx context.Context, originID string) ([]logitem.Item, error)
	AddMilestone(ctx context.Context, req project.MilestoneRequest) (*logitem.Item, error)
	UpdateRelation(ctx context.Context, req project.RelationRequest) error
	DeleteItem(ctx context.Context, id string) error
}

// HabitService is the habit surface used by the API.
type HabitService interface {
	List(ctx context.Context, date string) ([]habit.Habit, error)
	Create(ctx context.Context, req habit.CreateRequest) (*habit.Habit, error)
	Update(ctx context.Context, id int64, patch habit.Patch) error
	Delete(ctx context.Context, id int64) error
	Toggle(ctx context.Context, date string, id int64, status habit.Status) error
	MarkAllDone(ctx context.Context, date string) (int, error)
}

// ActivityService lists recent structural writes.
type ActivityService interface {
	Recent(ctx context.Context, opts activity.ListOptions) ([]activity.Entry, error)
}

// Services bundles the domain services behind the API. Activity may be nil.
type Services struct {
	Logs     LogService
	Projects ProjectService
	Habits   HabitService
	Activity ActivityService
}

// Server wires HTTP handlers.
type Server struct {
	svc    Services
	logger *slog.Logger
}

// NewServer creates the API router with middleware. mcpHandler, when not
// nil, is mounted at /mcp.
func NewServer(svc Services, logger *slog.Logger, mcpHandler http.Handler) *chi.Mux {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(RequestLogger(logger))

	srv := &Server{svc: svc, logger: logger}

	r.Get("/get-log/{date}", srv.handleGetLog)
	r.Post("/save-log", srv.handleSaveLog)
	r.Get("/get-all-logs", srv.handleAllLogs)
	r.Get("/get-project-history", srv.handleProjectHistory)
	r.Get("/export/{date}", srv.handleExport)

	r.Get("/get-habits", srv.handleGetHabits)
	r.Post("/add-habit", srv.handleAddHabit)
	r.Post("/update-habit", srv.handleUpdateHabit)
	r.Delete("/delete-habit/{id}", srv.handleDeleteHabit)
	r.Post("/toggle-habit", srv.handleToggleHabit)
	r.Post("/mark-all-done", srv.handleMarkAllDone)

	r.Route("/project", func(r chi.Router) {
		r.Get("/tree/{originID}", srv.handleTree)
		r.Post("/add-milestone", srv.handleAddMilestone)
		r.Patch("/update-relation", srv.handleUpdateRelation)
		r.Delete("/item/{id}", srv.handleDeleteItem)
	})

	r.Get("/activity", srv.handleActivity)
	r.Get("/health", srv.handleHealth)

	if mcpHandler != nil {
		r.Handle("/mcp", mcpHandler)
	}

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}
