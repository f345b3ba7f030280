// Package cli is the dailylog command tree.
package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/rpggio/dailylog/internal/client"
	"github.com/rpggio/dailylog/internal/clientlog"
	"github.com/rpggio/dailylog/internal/clock"
	"github.com/rpggio/dailylog/internal/config"
	"github.com/rpggio/dailylog/internal/domain/logitem"
)

// env is what every command needs: configuration, a logger and a client.
type env struct {
	cfg    config.Config
	logger *slog.Logger
	api    *client.Client
	closer io.Closer
}

func newEnv() (*env, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	logger, closer, err := clientlog.New(clientlog.Config{Path: cfg.Client.LogPath, Level: cfg.Log.Level})
	if err != nil {
		return nil, fmt.Errorf("opening client log: %w", err)
	}
	api := client.New(cfg.Client.APIURL,
		client.WithTimeout(cfg.Client.RequestTimeout),
		client.WithLogger(logger),
	)
	return &env{cfg: cfg, logger: logger, api: api, closer: closer}, nil
}

func (e *env) Close() {
	if e.closer != nil {
		_ = e.closer.Close()
	}
}

// withEnv adapts a command body that needs an env into a cobra RunE.
func withEnv(run func(ctx context.Context, cmd *cobra.Command, e *env, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		e, err := newEnv()
		if err != nil {
			return err
		}
		defer e.Close()
		return run(cmd.Context(), cmd, e, args)
	}
}

// NewRootCommand builds the dailylog command tree. Output goes to out.
func NewRootCommand(out io.Writer) *cobra.Command {
	root := &cobra.Command{
		Use:           "dailylog",
		Short:         "Daily log, habits and project lineage in the terminal",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(out)

	tuiCmd := newTUICommand()
	root.RunE = tuiCmd.RunE
	root.Flags().AddFlagSet(tuiCmd.Flags())

	root.AddCommand(
		tuiCmd,
		newLogCommand(),
		newMapCommand(),
		newHabitsCommand(),
		newFeedCommand(),
		newExportCommand(),
	)
	return root
}

// dateArg returns args[0] when given, otherwise today.
func dateArg(args []string) (string, error) {
	if len(args) == 0 || args[0] == "" {
		return clock.Today(clock.Real{}), nil
	}
	if !logitem.ValidDate(args[0]) {
		return "", fmt.Errorf("invalid date %q: want YYYY-MM-DD", args[0])
	}
	return args[0], nil
}
