package session

import (
	"context"
	"fmt"
	"strings"

	"github.com/rpggio/dailylog/internal/domain/logitem"
)

// Dashboard is a card's project history on other days.
type Dashboard struct {
	TotalDays int
	Past      []logitem.HistoryEntry
}

// History fetches the project dashboard for a card. It returns nil when
// the backend knows at most one entry or every entry is the active day.
func (s *Session) History(ctx context.Context, cardID string) (*Dashboard, error) {
	card, ok := s.Card(cardID)
	if !ok {
		return nil, ErrUnknownCard
	}
	title := strings.TrimSpace(card.Title)
	if title == "" {
		return nil, nil
	}
	h, err := s.api.ProjectHistory(ctx, title, card.Tags.String())
	if err != nil {
		return nil, fmt.Errorf("load project history: %w", err)
	}
	if len(h.Entries) <= 1 {
		return nil, nil
	}
	today := s.Date()
	var past []logitem.HistoryEntry
	for _, e := range h.Entries {
		if e.Date != today {
			past = append(past, e)
		}
	}
	if len(past) == 0 {
		return nil, nil
	}
	return &Dashboard{TotalDays: h.TotalDays, Past: past}, nil
}

// Feed fetches every day, newest first, keeping items whose title, notes
// or tags contain filter (case-insensitive). Days left empty are dropped.
func (s *Session) Feed(ctx context.Context, filter string) ([]logitem.DayLog, error) {
	days, err := s.api.AllLogs(ctx)
	if err != nil {
		return nil, fmt.Errorf("load history feed: %w", err)
	}
	needle := strings.ToLower(strings.TrimSpace(filter))
	if needle == "" {
		return days, nil
	}
	var out []logitem.DayLog
	for _, day := range days {
		var items []logitem.Item
		for _, it := range day.Items {
			if matches(it, needle) {
				items = append(items, it)
			}
		}
		if len(items) > 0 {
			out = append(out, logitem.DayLog{Date: day.Date, Items: items})
		}
	}
	return out, nil
}

func matches(it logitem.Item, needle string) bool {
	for _, field := range []string{it.Title, it.Content, it.Tags.String()} {
		if strings.Contains(strings.ToLower(field), needle) {
			return true
		}
	}
	return false
}
