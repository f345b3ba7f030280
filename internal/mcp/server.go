package mcp

import (
	"context"
	"log/slog"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/rpggio/dailylog/internal/clock"
	"github.com/rpggio/dailylog/internal/domain/activity"
	"github.com/rpggio/dailylog/internal/domain/habit"
	"github.com/rpggio/dailylog/internal/domain/logitem"
	"github.com/rpggio/dailylog/internal/domain/project"
)

// LogService defines day log operations needed by MCP.
type LogService interface {
	GetDay(ctx context.Context, date string) (*logitem.DayLog, error)
	SaveDay(ctx context.Context, log logitem.DayLog) (*logitem.DayLog, error)
	ListDays(ctx context.Context) ([]logitem.DayLog, error)
	History(ctx context.Context, title, tagFilter string) (*logitem.History, error)
}

// ProjectService defines lineage operations needed by MCP.
type ProjectService interface {
	Tree(ctx context.Context, originID string) ([]logitem.Item, error)
	AddMilestone(ctx context.Context, req project.MilestoneRequest) (*logitem.Item, error)
	UpdateRelation(ctx context.Context, req project.RelationRequest) error
	DeleteItem(ctx context.Context, id string) error
}

// HabitService defines habit operations needed by MCP.
type HabitService interface {
	List(ctx context.Context, date string) ([]habit.Habit, error)
	Toggle(ctx context.Context, date string, id int64, status habit.Status) error
	MarkAllDone(ctx context.Context, date string) (int, error)
}

// ActivityService defines activity operations needed by MCP.
type ActivityService interface {
	Recent(ctx context.Context, opts activity.ListOptions) ([]activity.Entry, error)
}

// Services contains all domain services needed by MCP.
type Services struct {
	Logs     LogService
	Projects ProjectService
	Habits   HabitService
	Activity ActivityService
}

// Config contains server configuration.
type Config struct {
	Services Services
	Logger   *slog.Logger
	// Clock resolves omitted dates to today. Defaults to the wall clock.
	Clock clock.Clock
}

// NewServer creates and configures an MCP server with all tools and middleware.
func NewServer(cfg Config) *sdkmcp.Server {
	server := sdkmcp.NewServer(&sdkmcp.Implementation{
		Name:    "dailylog",
		Version: "0.1.0",
	}, &sdkmcp.ServerOptions{
		Instructions: serverInstructions,
		Logger:       cfg.Logger,
	})

	registerDocResources(server)

	server.AddReceivingMiddleware(trafficLogger(cfg.Logger, "inbound"))
	server.AddSendingMiddleware(trafficLogger(cfg.Logger, "outbound"))

	if cfg.Clock == nil {
		cfg.Clock = clock.Real{}
	}
	registerTools(server, cfg.Services, cfg.Clock)

	return server
}
