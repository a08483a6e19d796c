package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/harrison/paver/internal/config"
	"github.com/harrison/paver/internal/display"
	"github.com/harrison/paver/internal/history"
)

type historyOptions struct {
	format string
	limit  int
	stats  bool
}

// NewHistoryCommand creates and returns the history subcommand
func NewHistoryCommand() *cobra.Command {
	opts := &historyOptions{}
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recorded verification runs",
		Long: `List the verification runs stored by 'paver verify --record',
newest first. With --stats, commands that have both passed and failed
across runs are listed as flaky.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistory(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.format, "format", "text", "Output format: text, json")
	cmd.Flags().IntVar(&opts.limit, "limit", 10, "Maximum number of runs to show")
	cmd.Flags().BoolVar(&opts.stats, "stats", false, "Include per-command statistics")

	return cmd
}

func runHistory(cmd *cobra.Command, opts *historyOptions) error {
	format, err := display.ParseFormat(opts.format)
	if err != nil {
		return err
	}
	if opts.limit < 1 {
		return fmt.Errorf("--limit must be at least 1")
	}

	env, err := loadEnvironment(cmd)
	if err != nil {
		return err
	}

	// Avoid creating .paver/ just to report that nothing was recorded.
	base := env.cfg.BaseDir(env.cwd)
	if _, err := os.Stat(filepath.Join(base, config.StateDirName, config.HistoryDBName)); os.IsNotExist(err) {
		return display.RenderHistory(cmd.OutOrStdout(), display.HistoryView{}, format)
	}

	dbPath, err := config.HistoryDBPath(base)
	if err != nil {
		return err
	}
	store, err := history.NewStore(dbPath)
	if err != nil {
		return fmt.Errorf("open history: %w", err)
	}
	defer store.Close()

	ctx := cmd.Context()
	view := display.HistoryView{}
	if view.Runs, err = store.ListRuns(ctx, opts.limit); err != nil {
		return fmt.Errorf("list runs: %w", err)
	}
	if opts.stats {
		if view.Stats, err = store.Stats(ctx); err != nil {
			return fmt.Errorf("command stats: %w", err)
		}
	}
	return display.RenderHistory(cmd.OutOrStdout(), view, format)
}
