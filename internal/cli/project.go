package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rpggio/dailylog/internal/projectmap"
)

func newMapCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "map <origin-id>",
		Short: "Print a project's milestones and tasks",
		Args:  cobra.ExactArgs(1),
		RunE: withEnv(func(ctx context.Context, cmd *cobra.Command, e *env, args []string) error {
			items, err := e.api.ProjectTree(ctx, args[0])
			if err != nil {
				return err
			}
			mp := projectmap.Build(items, args[0])
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s  (%d days)\n", mp.Title(), mp.TotalDays)
			for _, ms := range mp.Milestones {
				badge := "GENESIS"
				if !ms.IsRoot {
					badge = strings.Repeat("*", ms.Rank)
				}
				date := ms.HeaderDate
				if ms.DatePrecedes {
					date += " !"
				}
				fmt.Fprintf(out, "%s %s  %s  %s\n", badge, ms.Item.Title, date, ms.ID())
				for _, c := range ms.Children {
					fmt.Fprintf(out, "    - %s  %s  %s\n", c.Title, c.Date, c.ID)
				}
			}
			return nil
		}),
	}
}
