package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/rpggio/dailylog/internal/autosave"
	"github.com/rpggio/dailylog/internal/domain/logitem"
	"github.com/rpggio/dailylog/internal/session"
)

type loadedMsg struct{ err error }

type intentMsg struct {
	intent session.Intent
	err    error
}

type feedMsg struct {
	days []logitem.DayLog
	err  error
}

type dashboardMsg struct {
	cardID string
	d      *session.Dashboard
	err    error
}

type savedMsg struct{ err error }

type statusMsg autosave.Status

type closedMsg struct{ err error }

func waitForStatus(ch <-chan autosave.Status) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		s, ok := <-ch
		if !ok {
			return nil
		}
		return statusMsg(s)
	}
}

func (m Model) start() tea.Cmd {
	sess, ctx, date := m.sess, m.ctx, m.startAt
	return func() tea.Msg {
		return loadedMsg{err: sess.Start(ctx, date)}
	}
}

func (m Model) changeDate(date string) tea.Cmd {
	sess, ctx := m.sess, m.ctx
	return func() tea.Msg {
		return loadedMsg{err: sess.ChangeDate(ctx, date)}
	}
}

// dispatch sends an intent that talks to the backend.
func (m Model) dispatch(in session.Intent) tea.Cmd {
	sess, ctx := m.sess, m.ctx
	return func() tea.Msg {
		return intentMsg{intent: in, err: sess.Dispatch(ctx, in)}
	}
}

func (m Model) loadFeed(filter string) tea.Cmd {
	sess, ctx := m.sess, m.ctx
	return func() tea.Msg {
		days, err := sess.Feed(ctx, filter)
		return feedMsg{days: days, err: err}
	}
}

func (m Model) loadDashboard(cardID string) tea.Cmd {
	sess, ctx := m.sess, m.ctx
	return func() tea.Msg {
		d, err := sess.History(ctx, cardID)
		return dashboardMsg{cardID: cardID, d: d, err: err}
	}
}

func (m Model) flush() tea.Cmd {
	sess, ctx := m.sess, m.ctx
	return func() tea.Msg {
		return savedMsg{err: sess.Flush(ctx)}
	}
}

func (m Model) closeSession() tea.Cmd {
	sess, ctx := m.sess, m.ctx
	return func() tea.Msg {
		return closedMsg{err: sess.Close(ctx)}
	}
}
