// Package testserver runs the full backend over in-memory SQLite for
// end-to-end tests.
package testserver

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/require"

	"github.com/rpggio/dailylog/internal/client"
	"github.com/rpggio/dailylog/internal/domain/activity"
	"github.com/rpggio/dailylog/internal/domain/habit"
	"github.com/rpggio/dailylog/internal/domain/logitem"
	"github.com/rpggio/dailylog/internal/domain/project"
	"github.com/rpggio/dailylog/internal/mcp"
	"github.com/rpggio/dailylog/internal/sqlite"
	"github.com/rpggio/dailylog/internal/transport"
)

type TestServer struct {
	Server   *httptest.Server
	DB       *sqlite.DB
	Logs     *logitem.Service
	Projects *project.Service
	Habits   *habit.Service
	Activity *activity.Service
}

// Option adjusts the server before it starts.
type Option func(*options)

type options struct {
	exportDir string
	wrap      func(transport.Services) transport.Services
}

// WithExportDir enables the month archive.
func WithExportDir(dir string) Option {
	return func(o *options) { o.exportDir = dir }
}

// WithServices lets a test decorate the services, for example to inject failures.
func WithServices(wrap func(transport.Services) transport.Services) Option {
	return func(o *options) { o.wrap = wrap }
}

func New(t *testing.T, opts ...Option) *TestServer {
	t.Helper()

	var o options
	for _, opt := range opts {
		opt(&o)
	}

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := sqlite.New(dsn)
	require.NoError(t, err)
	require.NoError(t, db.RunMigrations())

	activityRepo := sqlite.NewActivityRepository(db)

	ts := &TestServer{
		DB:       db,
		Logs:     logitem.NewService(sqlite.NewLogRepository(db), activityRepo, nil).WithExportDir(o.exportDir),
		Projects: project.NewService(sqlite.NewProjectRepository(db), activityRepo, nil),
		Habits:   habit.NewService(sqlite.NewHabitRepository(db), activityRepo, nil),
		Activity: activity.NewService(activityRepo, nil),
	}

	svc := transport.Services{
		Logs:     ts.Logs,
		Projects: ts.Projects,
		Habits:   ts.Habits,
		Activity: ts.Activity,
	}
	if o.wrap != nil {
		svc = o.wrap(svc)
	}

	mcpServer := mcp.NewServer(mcp.Config{Services: mcp.Services{
		Logs:     svc.Logs,
		Projects: svc.Projects,
		Habits:   svc.Habits,
		Activity: svc.Activity,
	}})
	mcpHandler := sdkmcp.NewStreamableHTTPHandler(
		func(*http.Request) *sdkmcp.Server { return mcpServer },
		nil,
	)

	ts.Server = httptest.NewServer(transport.NewServer(svc, nil, mcpHandler))

	t.Cleanup(func() {
		ts.Server.Close()
		_ = db.Close()
	})

	return ts
}

// URL is the base URL of the running server.
func (ts *TestServer) URL() string {
	return ts.Server.URL
}

// Client returns an API client pointed at the server.
func (ts *TestServer) Client(opts ...client.Option) *client.Client {
	return client.New(ts.Server.URL, opts...)
}
