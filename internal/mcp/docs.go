package mcp

import (
	"context"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

const serverInstructions = `dailylog stores a daily work journal. Each day is a list of task items; items that
share a title across days form a project lineage rooted at an origin item.

Core concepts:
- Day log: the ordered items for one YYYY-MM-DD date.
- Item: title, content, tags, done flag, plus optional origin_id, parent_id and relation_type.
- Lineage: origin item (relation "root"), milestones (relation "evolve") and continuation
  items (relation "inherit") that point at a milestone as their parent.
- Habit: a daily check with status done (1), failed (0) or unset (null).

Workflow:
1) Read with get_log (today when date is omitted), list_logs or project_history.
2) Inspect a lineage with project_tree(origin_id).
3) Write a whole day with save_log. Items missing from the list are removed; milestones are kept.
4) Restructure with add_milestone, update_relation and delete_item.
5) Track habits with list_habits, toggle_habit and mark_all_habits_done.

Docs:
- dailylog://docs/lineage
- dailylog://docs/habits
`

type docResource struct {
	URI         string
	Name        string
	Title       string
	Description string
	Content     string
}

var docResources = []docResource{
	{
		URI:         "dailylog://docs/lineage",
		Name:        "docs_lineage",
		Title:       "Project lineage",
		Description: "How origin, milestone and continuation items link across days.",
		Content: `# Project lineage

A project starts as an ordinary item. Continuing it on a later day creates a new item with:

- ` + "`origin_id`" + `: the first item of the project.
- ` + "`parent_id`" + `: the milestone it continues, or the origin when there is none.
- ` + "`relation_type`" + `: ` + "`inherit`" + `.

## Milestones

` + "`add_milestone`" + ` inserts an item with relation ` + "`evolve`" + ` and title "Evolution Node" on the
given date. Milestones are ranked by date; the origin is GENESIS and is never ranked.

## Moving items

` + "`update_relation`" + ` reparents an item. Pass ` + "`target_parent_id`" + ` empty to move an item back to
the origin. Relation must be ` + "`inherit`" + ` or ` + "`evolve`" + `.

## Deleting

` + "`delete_item`" + ` fails with HAS_CHILDREN while any item still names it as parent. Move the
children first.
`,
	},
	{
		URI:         "dailylog://docs/habits",
		Name:        "docs_habits",
		Title:       "Habits",
		Description: "Habit statuses, chains and bulk completion.",
		Content: `# Habits

Each habit has one status per date: ` + "`1`" + ` done, ` + "`0`" + ` failed, ` + "`null`" + ` unset.

- ` + "`toggle_habit`" + ` writes a status for a date. Only 0 and 1 are accepted.
- ` + "`mark_all_habits_done`" + ` sets every active habit to done for the date.
- Habits sharing a non-zero ` + "`group_id`" + ` form a chain and are shown together.
`,
	},
}

func registerDocResources(server *sdkmcp.Server) {
	for _, doc := range docResources {
		doc := doc

		server.AddResource(&sdkmcp.Resource{
			URI:         doc.URI,
			Name:        doc.Name,
			Title:       doc.Title,
			Description: doc.Description,
			MIMEType:    "text/markdown",
			Size:        int64(len(doc.Content)),
		}, func(_ context.Context, req *sdkmcp.ReadResourceRequest) (*sdkmcp.ReadResourceResult, error) {
			uri := doc.URI
			if req != nil && req.Params != nil && req.Params.URI != "" {
				uri = req.Params.URI
			}
			return &sdkmcp.ReadResourceResult{
				Contents: []*sdkmcp.ResourceContents{{
					URI:      uri,
					MIMEType: "text/markdown",
					Text:     doc.Content,
				}},
			}, nil
		})
	}
}
