package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/rpggio/dailylog/internal/autosave"
	"github.com/rpggio/dailylog/internal/session"
	"github.com/rpggio/dailylog/internal/tui"
)

func newTUICommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tui",
		Short: "Open the interactive daily log",
		Args:  cobra.NoArgs,
	}
	cmd.Flags().String("date", "", "Day to open (YYYY-MM-DD), today by default")
	cmd.RunE = withEnv(func(ctx context.Context, cmd *cobra.Command, e *env, _ []string) error {
		date, _ := cmd.Flags().GetString("date")
		if date != "" {
			if _, err := dateArg([]string{date}); err != nil {
				return err
			}
		}

		status := make(chan autosave.Status, 16)
		sess := session.New(e.api, session.Options{
			Logger:      e.logger,
			SaveDelay:   e.cfg.Client.SaveDelay,
			SavedWindow: e.cfg.Client.SavedWindow,
			Timeout:     e.cfg.Client.RequestTimeout,
			OnStatus: func(s autosave.Status) {
				select {
				case status <- s:
				default:
				}
			},
		})
		e.logger.Info("starting tui", "api", e.api.BaseURL(), "date", date)
		return tui.Run(ctx, sess, tui.Options{Date: date, Status: status})
	})
	return cmd
}
