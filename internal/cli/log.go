package cli

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rpggio/dailylog/internal/domain/logitem"
	"github.com/rpggio/dailylog/internal/session"
)

func newLogCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "log",
		Short: "Read day logs",
	}
	show := &cobra.Command{
		Use:   "show [date]",
		Short: "Print the cards of one day",
		Args:  cobra.MaximumNArgs(1),
		RunE: withEnv(func(ctx context.Context, cmd *cobra.Command, e *env, args []string) error {
			date, err := dateArg(args)
			if err != nil {
				return err
			}
			day, err := e.api.GetLog(ctx, date)
			if err != nil {
				return err
			}
			printDay(cmd.OutOrStdout(), *day)
			return nil
		}),
	}
	cmd.AddCommand(show)
	return cmd
}

func newFeedCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "feed",
		Short: "Print every day, newest first",
		Args:  cobra.NoArgs,
	}
	cmd.Flags().String("filter", "", "Keep items whose title, notes or tags contain this text")
	cmd.RunE = withEnv(func(ctx context.Context, cmd *cobra.Command, e *env, _ []string) error {
		filter, _ := cmd.Flags().GetString("filter")
		sess := session.New(e.api, session.Options{Logger: e.logger})
		defer sess.Close(ctx)
		days, err := sess.Feed(ctx, filter)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if len(days) == 0 {
			fmt.Fprintln(out, "No entries.")
			return nil
		}
		for i, day := range days {
			if i > 0 {
				fmt.Fprintln(out)
			}
			printDay(out, day)
		}
		return nil
	})
	return cmd
}

func newExportCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "export [date]",
		Short: "Print the text archive for a month",
		Args:  cobra.MaximumNArgs(1),
		RunE: withEnv(func(ctx context.Context, cmd *cobra.Command, e *env, args []string) error {
			date, err := dateArg(args)
			if err != nil {
				return err
			}
			text, err := e.api.ExportMonth(ctx, date)
			if err != nil {
				return err
			}
			_, err = io.WriteString(cmd.OutOrStdout(), text)
			return err
		}),
	}
}

func printDay(w io.Writer, day logitem.DayLog) {
	fmt.Fprintf(w, "%s\n", day.Date)
	if len(day.Items) == 0 {
		fmt.Fprintln(w, "  (empty)")
		return
	}
	for _, it := range day.Items {
		check := "[ ]"
		if it.IsDone {
			check = "[x]"
		}
		line := fmt.Sprintf("  %s %s", check, it.Title)
		if it.RelationType == logitem.RelationEvolve {
			line += " (milestone)"
		}
		if len(it.Tags) > 0 {
			line += "  #" + strings.Join(it.Tags, " #")
		}
		fmt.Fprintf(w, "%s  %s\n", line, it.ID)
		if it.Content != "" {
			for _, l := range strings.Split(it.Content, "\n") {
				fmt.Fprintf(w, "      %s\n", l)
			}
		}
	}
}
