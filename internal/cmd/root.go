package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/harrison/paver/internal/config"
	"github.com/harrison/paver/internal/logger"
)

// Version is injected at build time via -ldflags
var Version = "dev"

// ExitError carries a non-zero exit status for a run that completed but
// did not pass. Message is empty when the rendered output already explains
// the failure.
type ExitError struct {
	Code    int
	Message string
}

func (e *ExitError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("exit status %d", e.Code)
	}
	return e.Message
}

// ExitCode maps an Execute error to a process exit status and reports
// whether it should be printed.
func ExitCode(err error) (int, bool) {
	if err == nil {
		return 0, false
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code, exitErr.Message != ""
	}
	return 1, true
}

// NewRootCommand creates and returns the root cobra command for paver
func NewRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "paver",
		Short: "Documentation checker for agent-facing markdown",
		Long: `Paver keeps a tree of markdown documentation honest.

It checks each document for the sections agents rely on (Purpose,
Verification, Examples), keeps documents short, and runs the shell
commands in Verification sections to prove they still work.`,
		Version: Version,
		// Silence usage on errors to avoid duplicate help text
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().String("config", "", "Path to config file (default: nearest .paver.toml or .paver.yaml)")
	cmd.PersistentFlags().String("log-level", "", "Log level: trace, debug, info, warn, error (default: from config)")

	cmd.AddCommand(NewCheckCommand())
	cmd.AddCommand(NewVerifyCommand())
	cmd.AddCommand(NewCoverageCommand())
	cmd.AddCommand(NewHistoryCommand())
	cmd.AddCommand(NewInitCommand())
	cmd.AddCommand(NewNewCommand())

	return cmd
}

// environment is what every subcommand needs before doing its own work.
type environment struct {
	cfg    *config.Config
	cwd    string
	logger *logger.ConsoleLogger
}

// loadEnvironment discovers the configuration from the working directory,
// applies the global flags and builds the stderr logger.
func loadEnvironment(cmd *cobra.Command) (*environment, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("failed to get working directory: %w", err)
	}

	configPath, _ := cmd.Flags().GetString("config")
	cfg, err := config.Discover(cwd, configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if cmd.Flags().Changed("log-level") {
		level, _ := cmd.Flags().GetString("log-level")
		cfg.MergeWithFlags(nil, nil, nil, &level)
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
	}

	log := logger.NewConsoleLogger(cmd.ErrOrStderr(), cfg.LogLevel)
	if cfg.Path != "" {
		log.LogDebug("Using config %s", cfg.Path)
	} else {
		log.LogDebug("No config file found, using defaults")
	}
	return &environment{cfg: cfg, cwd: cwd, logger: log}, nil
}

// targets returns the paths to process: args, or the configured docs root.
func (e *environment) targets(args []string) ([]string, error) {
	if len(args) > 0 {
		return args, nil
	}
	root := e.cfg.DocsRoot(e.cwd)
	if _, err := os.Stat(root); err != nil {
		return nil, fmt.Errorf("docs root %s not found (set docs.root in the config or pass paths)", root)
	}
	return []string{root}, nil
}
