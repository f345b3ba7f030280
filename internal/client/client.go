// Package client is a typed HTTP client for the daily log API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rpggio/dailylog/internal/api"
	"github.com/rpggio/dailylog/internal/domain/habit"
	"github.com/rpggio/dailylog/internal/domain/logitem"
)

// DefaultTimeout bounds each request when no HTTP client is supplied.
const DefaultTimeout = 10 * time.Second

// Client talks to the log server.
type Client struct {
	baseURL string
	http    *http.Client
	logger  *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// WithTimeout sets the per-request timeout. A client supplied with
// WithHTTPClient is copied, not modified.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		h := *c.http
		h.Timeout = d
		c.http = &h
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// New creates a client for the server at baseURL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: DefaultTimeout},
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the server address.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// GetLog fetches one day's items.
func (c *Client) GetLog(ctx context.Context, date string) (*logitem.DayLog, error) {
	var resp api.LogResponse
	if err := c.do(ctx, "get log", http.MethodGet, "/get-log/"+url.PathEscape(date), nil, nil, &resp); err != nil {
		return nil, err
	}
	items := resp.Items
	if items == nil {
		items = []logitem.Item{}
	}
	return &logitem.DayLog{Date: resp.Date, Items: items}, nil
}

// SaveLog replaces a day's items.
func (c *Client) SaveLog(ctx context.Context, date string, items []logitem.Item) error {
	payload := api.SaveLogRequest{Date: date, Items: make([]logitem.Item, len(items))}
	for i, item := range items {
		item.Date = ""
		payload.Items[i] = item
	}
	var resp api.Envelope
	return c.do(ctx, "save log", http.MethodPost, "/save-log", nil, payload, &resp)
}

// AllLogs fetches every day, newest first.
func (c *Client) AllLogs(ctx context.Context) ([]logitem.DayLog, error) {
	var resp api.AllLogsResponse
	if err := c.do(ctx, "get all logs", http.MethodGet, "/get-all-logs", nil, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Logs, nil
}

// ProjectHistory fetches every occurrence of a project title.
func (c *Client) ProjectHistory(ctx context.Context, title, tagFilter string) (*logitem.History, error) {
	q := url.Values{}
	q.Set("title", title)
	q.Set("tags", tagFilter)
	var resp api.HistoryResponse
	if err := c.do(ctx, "get project history", http.MethodGet, "/get-project-history", q, nil, &resp); err != nil {
		return nil, err
	}
	return &logitem.History{TotalDays: resp.TotalDays, Entries: resp.History}, nil
}

// ExportMonth fetches the text archive for date's month.
func (c *Client) ExportMonth(ctx context.Context, date string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/export/"+url.PathEscape(date), nil)
	if err != nil {
		return "", fmt.Errorf("building export request: %w", err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return "", &NetworkError{Op: "export month", Err: err}
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &NetworkError{Op: "export month", Err: err}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", backendFailure("export month", resp.StatusCode, data)
	}
	return string(data), nil
}

// Habits lists habits with their status on date.
func (c *Client) Habits(ctx context.Context, date string) ([]habit.Habit, error) {
	q := url.Values{}
	q.Set("date", date)
	var resp api.HabitsResponse
	if err := c.do(ctx, "get habits", http.MethodGet, "/get-habits", q, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Habits, nil
}

// AddHabit creates a habit and returns its id.
func (c *Client) AddHabit(ctx context.Context, req api.AddHabitRequest) (int64, error) {
	var resp api.AddHabitResponse
	if err := c.do(ctx, "add habit", http.MethodPost, "/add-habit", nil, req, &resp); err != nil {
		return 0, err
	}
	return resp.ID, nil
}

// UpdateHabit applies a partial update.
func (c *Client) UpdateHabit(ctx context.Context, req api.UpdateHabitRequest) error {
	var resp api.Envelope
	return c.do(ctx, "update habit", http.MethodPost, "/update-habit", nil, req, &resp)
}

// DeleteHabit removes a habit and its history.
func (c *Client) DeleteHabit(ctx context.Context, id int64) error {
	var resp api.Envelope
	return c.do(ctx, "delete habit", http.MethodDelete, "/delete-habit/"+strconv.FormatInt(id, 10), nil, nil, &resp)
}

// ToggleHabit records status for a habit on date.
func (c *Client) ToggleHabit(ctx context.Context, date string, id int64, status habit.Status) error {
	var resp api.Envelope
	body := api.ToggleHabitRequest{Date: date, HabitID: id, Status: status}
	return c.do(ctx, "toggle habit", http.MethodPost, "/toggle-habit", nil, body, &resp)
}

// MarkAllDone sets every habit to done on date.
func (c *Client) MarkAllDone(ctx context.Context, date string) error {
	q := url.Values{}
	q.Set("date", date)
	var resp api.MarkAllDoneResponse
	return c.do(ctx, "mark all done", http.MethodPost, "/mark-all-done", q, nil, &resp)
}

// ProjectTree fetches the origin and its descendants.
func (c *Client) ProjectTree(ctx context.Context, originID string) ([]logitem.Item, error) {
	var resp api.TreeResponse
	if err := c.do(ctx, "get project tree", http.MethodGet, "/project/tree/"+url.PathEscape(originID), nil, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Tree, nil
}

// AddMilestone creates an evolve milestone and returns its id.
func (c *Client) AddMilestone(ctx context.Context, req api.AddMilestoneRequest) (string, error) {
	var resp api.AddMilestoneResponse
	if err := c.do(ctx, "add milestone", http.MethodPost, "/project/add-milestone", nil, req, &resp); err != nil {
		return "", err
	}
	if resp.ItemID == "" {
		return "", &BackendError{Op: "add milestone", Status: resp.Status, Message: "response carried no item_id"}
	}
	return resp.ItemID, nil
}

// UpdateRelation reparents an item.
func (c *Client) UpdateRelation(ctx context.Context, req api.UpdateRelationRequest) error {
	var resp api.Envelope
	return c.do(ctx, "update relation", http.MethodPatch, "/project/update-relation", nil, req, &resp)
}

// DeleteItem hard-deletes an item.
func (c *Client) DeleteItem(ctx context.Context, id string) error {
	var resp api.Envelope
	return c.do(ctx, "delete item", http.MethodDelete, "/project/item/"+url.PathEscape(id), nil, nil, &resp)
}

func (c *Client) do(ctx context.Context, op, method, path string, query url.Values, body, out any) error {
	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("%s: encoding request: %w", op, err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return fmt.Errorf("%s: building request: %w", op, err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Warn("request failed", "op", op, "error", err)
		return &NetworkError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return &NetworkError{Op: op, Err: err}
	}
	c.logger.Debug("request done", "op", op, "status", resp.StatusCode, "duration", time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return backendFailure(op, resp.StatusCode, data)
	}

	var env api.Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return &BackendError{Op: op, StatusCode: resp.StatusCode, Message: "malformed response: " + err.Error()}
	}
	if !env.OK() {
		return &BackendError{Op: op, StatusCode: resp.StatusCode, Status: env.Status, Message: env.Message}
	}
	if err := json.Unmarshal(data, out); err != nil {
		return &BackendError{Op: op, StatusCode: resp.StatusCode, Status: env.Status, Message: "malformed response: " + err.Error()}
	}
	return nil
}

func backendFailure(op string, code int, data []byte) *BackendError {
	be := &BackendError{Op: op, StatusCode: code}
	var env api.Envelope
	if json.Unmarshal(data, &env) == nil {
		be.Status = env.Status
		be.Message = env.Message
	}
	if be.Message == "" {
		be.Message = http.StatusText(code)
	}
	return be
}
