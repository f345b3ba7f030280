// Package projectmap groups a project's flat lineage list into ordered
// milestones and keeps reparenting in sync with the backend.
package projectmap

import (
	"sort"

	"github.com/rpggio/dailylog/internal/domain/logitem"
)

const (
	// GhostID is the drop target that creates a new milestone.
	GhostID = "TEMP_NEW"
	// GhostLabel is shown on the ghost drop target.
	GhostLabel = "DRAG TO EVOLVE"
	// MilestoneTitle is the placeholder title of milestones created by a drop.
	MilestoneTitle = "Evolution Node"
)

// Milestone is a drop target holding the leaf tasks attached to it.
type Milestone struct {
	Item     logitem.Item
	Children []logitem.Item
	// Rank is the 1-based position among non-root milestones; 0 for the root.
	Rank   int
	IsRoot bool
	// Synthetic is set when the list held no root and one was made up for
	// the origin id.
	Synthetic bool
	// HeaderDate is the earlier of the milestone's own date and its first child's.
	HeaderDate string
	// DatePrecedes flags a child dated before the milestone itself.
	DatePrecedes bool
}

// ID is the milestone's item id, used as its drop target id.
func (m *Milestone) ID() string {
	return m.Item.ID
}

// DropTarget is a synthetic insertion point.
type DropTarget struct {
	ID    string
	Label string
}

// Map is the rendered lineage of one project.
type Map struct {
	OriginID string
	// Root points into Milestones.
	Root       *Milestone
	Milestones []Milestone
	Ghost      DropTarget
	TotalDays  int
}

// Title is the root milestone's title.
func (m Map) Title() string {
	if m.Root == nil {
		return ""
	}
	return m.Root.Item.Title
}

// OriginDate is the root milestone's own date.
func (m Map) OriginDate() string {
	if m.Root == nil {
		return ""
	}
	return m.Root.Item.Date
}

// Milestone returns the milestone with the given id.
func (m Map) Milestone(id string) (*Milestone, bool) {
	for i := range m.Milestones {
		if m.Milestones[i].Item.ID == id {
			return &m.Milestones[i], true
		}
	}
	return nil, false
}

// Locate finds the milestone holding the given leaf task.
func (m Map) Locate(itemID string) (*Milestone, int, bool) {
	for i := range m.Milestones {
		for j, child := range m.Milestones[i].Children {
			if child.ID == itemID {
				return &m.Milestones[i], j, true
			}
		}
	}
	return nil, -1, false
}

// IsMilestone reports whether item acts as a milestone for originID.
func IsMilestone(item logitem.Item, originID string) bool {
	switch item.RelationType {
	case logitem.RelationRoot, logitem.RelationEvolve:
		return true
	}
	return item.ID == originID
}

// Build groups a flat lineage list into milestones ordered by date.
// Leaf tasks whose parent is not a known milestone attach to the root.
func Build(items []logitem.Item, originID string) Map {
	m := Map{OriginID: originID, Ghost: DropTarget{ID: GhostID, Label: GhostLabel}}

	index := make(map[string]int)
	dates := make(map[string]struct{})
	var milestones []Milestone
	var leaves []logitem.Item
	for _, item := range items {
		if item.Date != "" {
			dates[item.Date] = struct{}{}
		}
		if !IsMilestone(item, originID) {
			leaves = append(leaves, item)
			continue
		}
		if _, seen := index[item.ID]; seen {
			continue
		}
		index[item.ID] = len(milestones)
		milestones = append(milestones, Milestone{Item: item})
	}
	m.TotalDays = len(dates)

	root, ok := index[originID]
	if !ok {
		root = -1
		for i := range milestones {
			if milestones[i].Item.RelationType == logitem.RelationRoot {
				root = i
				break
			}
		}
	}
	if root < 0 {
		milestones = append(milestones, Milestone{
			Item:      logitem.Item{ID: originID, RelationType: logitem.RelationRoot},
			Synthetic: true,
		})
		root = len(milestones) - 1
	}
	milestones[root].IsRoot = true

	for _, leaf := range leaves {
		target := root
		if leaf.ParentID != nil {
			if i, ok := index[*leaf.ParentID]; ok {
				target = i
			}
		}
		milestones[target].Children = append(milestones[target].Children, leaf)
	}

	sort.SliceStable(milestones, func(i, j int) bool {
		return milestones[i].Item.Date < milestones[j].Item.Date
	})
	m.Milestones = milestones
	m.settle()
	return m
}

// settle sorts children, assigns ranks and header dates, and repoints Root.
func (m *Map) settle() {
	m.Root = nil
	rank := 0
	for i := range m.Milestones {
		ms := &m.Milestones[i]
		sortByDate(ms.Children)
		if ms.IsRoot {
			ms.Rank = 0
			m.Root = ms
		} else {
			rank++
			ms.Rank = rank
		}
		ms.refreshHeader()
	}
}

func (ms *Milestone) refreshHeader() {
	ms.HeaderDate = ms.Item.Date
	ms.DatePrecedes = false
	if len(ms.Children) == 0 {
		return
	}
	first := ms.Children[0].Date
	if first == "" {
		return
	}
	if ms.HeaderDate == "" {
		ms.HeaderDate = first
		return
	}
	if first < ms.HeaderDate {
		ms.HeaderDate = first
		ms.DatePrecedes = true
	}
}

func sortByDate(items []logitem.Item) {
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].Date < items[j].Date
	})
}

// clone copies milestones and their children so the result can be
// changed without touching m.
func (m Map) clone() Map {
	out := m
	out.Milestones = make([]Milestone, len(m.Milestones))
	for i, ms := range m.Milestones {
		ms.Children = append([]logitem.Item(nil), ms.Children...)
		out.Milestones[i] = ms
	}
	out.settle()
	return out
}

// withMove returns a copy of m with itemID moved under toID as an
// inherit child.
func (m Map) withMove(itemID, toID string) Map {
	out := m.clone()
	to, ok := out.Milestone(toID)
	if !ok {
		return out
	}
	from, idx, ok := out.Locate(itemID)
	if !ok {
		return out
	}
	item := from.Children[idx]
	from.Children = append(from.Children[:idx], from.Children[idx+1:]...)

	parent := toID
	item.ParentID = &parent
	item.RelationType = logitem.RelationInherit
	to.Children = append(to.Children, item)
	out.settle()
	return out
}
