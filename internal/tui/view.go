package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/rpggio/dailylog/internal/autosave"
	"github.com/rpggio/dailylog/internal/domain/habit"
	"github.com/rpggio/dailylog/internal/domain/logitem"
	"github.com/rpggio/dailylog/internal/habitbar"
	"github.com/rpggio/dailylog/internal/projectmap"
	"github.com/rpggio/dailylog/internal/tags"
)

var statusLabels = map[autosave.Status]string{
	autosave.StatusIdle:    "READY",
	autosave.StatusEditing: "EDITING",
	autosave.StatusSaving:  "SAVING",
	autosave.StatusSaved:   "SYNCED",
	autosave.StatusError:   "ERROR",
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if m.modal != nil {
		return m.place(m.renderModal())
	}

	var body string
	switch m.mode {
	case modeMap:
		body = m.renderMap()
	case modeFeed:
		body = m.renderFeed()
	case modeHabits:
		body = m.renderSettings()
	default:
		body = m.renderDay()
	}

	var b strings.Builder
	b.WriteString(body)
	if m.inline != "" {
		b.WriteString("\n" + errorStyle.Render(m.inline) + "\n")
	}
	b.WriteString("\n" + m.help.View(m.keys))
	return b.String()
}

func (m Model) place(s string) string {
	if m.width == 0 || m.height == 0 {
		return s + "\n"
	}
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, s)
}

func (m Model) renderModal() string {
	md := m.modal
	if md.kind == modalAlert {
		return modalStyle.Render(fmt.Sprintf("%s\n\n%s\n\n%s",
			errorStyle.Render(strings.ToUpper(md.title)), md.body, dimStyle.Render("enter to dismiss")))
	}
	return confirmStyle.Render(fmt.Sprintf("%s\n\n%s\n\n%s",
		amberStyle.Render(md.title), md.body, dimStyle.Render("y to confirm · n to cancel")))
}

func statusIndicator(s autosave.Status) string {
	label, ok := statusLabels[s]
	if !ok {
		label = "READY"
	}
	return statusStyles[label].Render("● " + label)
}

func (m Model) renderDay() string {
	var b strings.Builder

	fmt.Fprintf(&b, "%s %s  %s\n", titleStyle.Render("DAILY LOG"), m.sess.Date(), statusIndicator(m.sess.SaveStatus()))
	b.WriteString(m.renderHabits() + "\n\n")

	if m.sess.Loading() {
		b.WriteString(dimStyle.Render("loading…") + "\n")
		return b.String()
	}
	if err := m.sess.LoadErr(); err != nil {
		b.WriteString(errorStyle.Render("could not load this day: "+err.Error()) + "\n")
		b.WriteString(dimStyle.Render("editing is disabled; change day to retry") + "\n")
		return b.String()
	}

	for i, card := range m.sess.Cards() {
		cursor := "  "
		if i == m.cursor {
			cursor = selectedStyle.Render("> ")
		}
		check := "[ ]"
		title := displayTitle(card.Title)
		switch {
		case card.IsDone:
			check = "[x]"
			title = doneStyle.Render(title)
		case strings.TrimSpace(card.Title) == "":
			title = dimStyle.Render(title)
		case i == m.cursor:
			title = selectedStyle.Render(title)
		}
		line := cursor + check + " " + title
		if card.RelationType == logitem.RelationEvolve {
			line += " " + starStyle.Render("◆")
		}
		if caps := renderCapsules(card.Tags); caps != "" {
			line += "  " + caps
		}
		b.WriteString(line + "\n")
		if i == m.cursor && card.Content != "" && m.editing != editContent {
			for _, l := range strings.Split(card.Content, "\n") {
				b.WriteString("      " + dimStyle.Render(l) + "\n")
			}
		}
	}

	switch m.editing {
	case editTitle:
		b.WriteString("\ntitle: " + m.input.View() + "\n")
	case editContent:
		b.WriteString("\n" + m.notes.View() + "\n" + dimStyle.Render("esc to finish") + "\n")
	case editTag:
		if m.tagEdit != nil {
			b.WriteString("\ntags: " + renderCapsules(m.tagEdit.Tokens()) + " " + m.tagEdit.Pending() + "▏\n")
		}
	}

	if d := m.dashboard; d != nil {
		fmt.Fprintf(&b, "\n%s %s\n", amberStyle.Render("PROJECT HISTORY"), dimStyle.Render(fmt.Sprintf("%d days", d.TotalDays)))
		for _, e := range d.Past {
			line := "  " + e.Date
			if e.Content != "" {
				line += "  " + e.Content
			}
			if caps := renderCapsules(e.Tags); caps != "" {
				line += "  " + caps
			}
			b.WriteString(line + "\n")
		}
	}
	return b.String()
}

func (m Model) renderHabits() string {
	bar := m.sess.Habits()
	if err := bar.LoadErr(); err != nil {
		return errorStyle.Render("habits unavailable: " + err.Error())
	}
	n := 0
	var parts []string
	for _, slot := range habitbar.Layout(bar.Habits()) {
		var hs []string
		for _, h := range slot.Habits {
			n++
			hs = append(hs, renderHabit(n, h))
		}
		if slot.Chain() {
			parts = append(parts, "⟦"+strings.Join(hs, " ")+"⟧")
		} else {
			parts = append(parts, hs...)
		}
	}
	if len(parts) == 0 {
		return dimStyle.Render("no habits")
	}
	return strings.Join(parts, "  ")
}

func (m Model) renderSettings() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("HABIT SETTINGS") + "\n\n")
	st, ok := m.sess.HabitSettings()
	if !ok {
		return b.String()
	}
	if m.editing == editHabitNew || m.editing == editHabitName {
		b.WriteString(m.input.View() + "\n\n")
	}
	chain := 0
	for i, row := range settingsRows(st) {
		cursor := "  "
		if i == m.habitCursor {
			cursor = "▸ "
		}
		var line string
		switch {
		case row.habit != nil:
			line = "    " + row.habit.Title
			if row.habit.ID == m.habitCarry {
				line += amberStyle.Render("  (moving)")
			}
		case row.groupID == 0:
			line = dimStyle.Render("UNGROUPED")
		default:
			chain++
			line = amberStyle.Render(fmt.Sprintf("CHAIN %d", chain))
			if row.pending {
				line += dimStyle.Render("  (empty)")
			}
		}
		b.WriteString(cursor + line + "\n")
	}
	return b.String()
}

func renderHabit(n int, h habit.Habit) string {
	label := h.Title
	if n <= 9 {
		label = fmt.Sprintf("%d:%s", n, h.Title)
	}
	switch h.Status {
	case habit.StatusDone:
		return habitDone.Render("✔ " + label)
	case habit.StatusFailed:
		return habitFailed.Render("✘ " + label)
	}
	return habitUnset.Render("○ " + label)
}

func renderCapsules(l tags.List) string {
	caps := make([]string, 0, len(l))
	for _, t := range l {
		caps = append(caps, capsuleStyle.Render(t))
	}
	return strings.Join(caps, " ")
}

func (m Model) renderMap() string {
	var b strings.Builder
	mp, ok := m.sess.Map()
	if !ok {
		b.WriteString(titleStyle.Render("PROJECT MAP") + "\n\n")
		if err := m.sess.MapErr(); err != nil {
			b.WriteString(errorStyle.Render("could not load project map: "+err.Error()) + "\n")
		} else {
			b.WriteString(dimStyle.Render("loading…") + "\n")
		}
		return b.String()
	}

	fmt.Fprintf(&b, "%s %s  %s  %s\n\n", titleStyle.Render("PROJECT MAP"), mp.Title(),
		dimStyle.Render(fmt.Sprintf("%d days", mp.TotalDays)), statusIndicator(m.sess.SaveStatus()))

	for i, row := range mapRows(mp) {
		cursor := "  "
		if i == m.mapCursor {
			cursor = selectedStyle.Render("> ")
		}
		if row.ms < 0 {
			label := mp.Ghost.Label
			if label == "" {
				label = projectmap.GhostLabel
			}
			b.WriteString(cursor + ghostStyle.Render(label) + "\n")
			continue
		}
		ms := mp.Milestones[row.ms]
		if row.child < 0 {
			b.WriteString(cursor + renderMilestoneHeader(ms) + "\n")
			continue
		}
		child := ms.Children[row.child]
		marker := "•"
		if m.carrying != nil && m.carrying.itemID == child.ID {
			marker = amberStyle.Render("⇡")
		}
		title := displayTitle(child.Title)
		if child.IsDone {
			title = doneStyle.Render(title)
		}
		fmt.Fprintf(&b, "%s    %s %s %s\n", cursor, marker, title, dimStyle.Render(child.Date))
	}
	if m.carrying != nil {
		b.WriteString("\n" + dimStyle.Render("enter to drop · esc to cancel") + "\n")
	}
	return b.String()
}

func renderMilestoneHeader(ms projectmap.Milestone) string {
	badge := genesisStyle.Render("GENESIS")
	if !ms.IsRoot {
		badge = starStyle.Render(strings.Repeat("★", ms.Rank))
	}
	date := dimStyle.Render(ms.HeaderDate)
	if ms.DatePrecedes {
		date = amberStyle.Render(ms.HeaderDate)
	}
	return fmt.Sprintf("%s %s %s", badge, displayTitle(ms.Item.Title), date)
}

func (m Model) renderFeed() string {
	var b strings.Builder
	header := titleStyle.Render("FEED")
	if m.feedFilter != "" {
		header += " " + dimStyle.Render("filter: "+m.feedFilter)
	}
	b.WriteString(header + "\n\n")
	if m.editing == editFilter {
		b.WriteString("/ " + m.input.View() + "\n\n")
	}

	entries := feedEntries(m.feed)
	if len(entries) == 0 {
		b.WriteString(dimStyle.Render("nothing here yet") + "\n")
		return b.String()
	}
	lastDate := ""
	for i, e := range entries {
		if e.date != lastDate {
			b.WriteString(amberStyle.Render(e.date) + "\n")
			lastDate = e.date
		}
		cursor := "  "
		title := displayTitle(e.item.Title)
		if i == m.feedCursor {
			cursor = selectedStyle.Render("> ")
			title = selectedStyle.Render(title)
		}
		line := cursor + title
		if caps := renderCapsules(e.item.Tags); caps != "" {
			line += "  " + caps
		}
		b.WriteString(line + "\n")
	}
	b.WriteString("\n" + dimStyle.Render("enter to continue on the current day") + "\n")
	return b.String()
}
