package cli

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/rpggio/dailylog/internal/domain/habit"
	"github.com/rpggio/dailylog/internal/habitbar"
)

func newHabitsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "habits",
		Short: "Show the habit bar for a day",
		Args:  cobra.NoArgs,
	}
	cmd.PersistentFlags().String("date", "", "Day (YYYY-MM-DD), today by default")
	cmd.RunE = withEnv(func(ctx context.Context, cmd *cobra.Command, e *env, _ []string) error {
		bar, err := loadBar(ctx, cmd, e)
		if err != nil {
			return err
		}
		printBar(cmd, bar)
		return nil
	})

	toggle := &cobra.Command{
		Use:   "toggle <habit-id>",
		Short: "Flip a habit between done and failed",
		Args:  cobra.ExactArgs(1),
		RunE: withEnv(func(ctx context.Context, cmd *cobra.Command, e *env, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid habit id %q", args[0])
			}
			bar, err := loadBar(ctx, cmd, e)
			if err != nil {
				return err
			}
			if err := bar.Toggle(ctx, id); err != nil {
				return err
			}
			printBar(cmd, bar)
			return nil
		}),
	}
	cmd.AddCommand(toggle)
	return cmd
}

func loadBar(ctx context.Context, cmd *cobra.Command, e *env) (*habitbar.Bar, error) {
	raw, _ := cmd.Flags().GetString("date")
	date, err := dateArg([]string{raw})
	if err != nil {
		return nil, err
	}
	bar := habitbar.NewBar(e.api, e.logger)
	if _, err := bar.Load(ctx, date); err != nil {
		return nil, err
	}
	return bar, nil
}

func printBar(cmd *cobra.Command, bar *habitbar.Bar) {
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, bar.Date())
	slots := bar.Slots()
	if len(slots) == 0 {
		fmt.Fprintln(out, "  no habits")
		return
	}
	for _, slot := range slots {
		indent := "  "
		if slot.Chain() {
			fmt.Fprintf(out, "  chain %d\n", slot.GroupID)
			indent = "    "
		}
		for _, h := range slot.Habits {
			fmt.Fprintf(out, "%s%s %s  %d\n", indent, habitMark(h.Status), h.Title, h.ID)
		}
	}
}

func habitMark(s habit.Status) string {
	switch s {
	case habit.StatusDone:
		return "[x]"
	case habit.StatusFailed:
		return "[-]"
	}
	return "[ ]"
}
