package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/harrison/paver/internal/display"
	"github.com/harrison/paver/internal/fileutil"
	"github.com/harrison/paver/internal/parser"
	"github.com/harrison/paver/internal/report"
	"github.com/harrison/paver/internal/rules"
	"github.com/harrison/paver/internal/watch"
)

type checkOptions struct {
	format  string
	strict  bool
	gradual bool
	watch   bool
}

// NewCheckCommand creates and returns the check subcommand
func NewCheckCommand() *cobra.Command {
	opts := &checkOptions{}
	cmd := &cobra.Command{
		Use:   "check [paths...]",
		Short: "Check documents against the documentation rules",
		Long: `Check markdown documents for:
  - Required sections (Purpose, Verification, Examples)
  - A code block in the Examples section
  - Maximum document length
  - Extractable commands in Verification (optional)

Paths may be files or directories; with no paths the configured docs
root is checked.

Exit code: 0 if all checks pass, 1 if errors are found (or warnings with --strict)`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(cmd, args, opts)
		},
	}

	cmd.Flags().StringVar(&opts.format, "format", "text", "Output format: text, json, github")
	cmd.Flags().BoolVar(&opts.strict, "strict", false, "Treat warnings as errors (disables gradual mode)")
	cmd.Flags().BoolVar(&opts.gradual, "gradual", false, "Report errors as warnings")
	cmd.Flags().BoolVar(&opts.watch, "watch", false, "Re-check whenever a document changes")

	return cmd
}

func runCheck(cmd *cobra.Command, args []string, opts *checkOptions) error {
	format, err := display.ParseFormat(opts.format)
	if err != nil {
		return err
	}
	if opts.strict && opts.gradual {
		return fmt.Errorf("--strict and --gradual cannot be used together")
	}

	env, err := loadEnvironment(cmd)
	if err != nil {
		return err
	}
	paths, err := env.targets(args)
	if err != nil {
		return err
	}

	mode := env.cfg.Mode(opts.strict, opts.gradual)
	if env.cfg.Rules.Gradual && !opts.strict && !opts.gradual && mode.DeadlinePassed(time.Now()) {
		display.WarnGradualDeadlinePassed(env.cfg.Rules.GradualUntil).Display(cmd.ErrOrStderr())
	}

	checker := &checker{
		paths:   paths,
		exclude: env.cfg.Mapping.Exclude,
		rules:   env.cfg.RuleSet(),
		mode:    mode,
		format:  format,
		out:     cmd.OutOrStdout(),
		errOut:  cmd.ErrOrStderr(),
	}

	batch, err := checker.run(time.Now())
	if err != nil {
		return err
	}
	if !opts.watch {
		if code := batch.ExitCode(mode.Strict); code != 0 {
			return &ExitError{Code: code}
		}
		return nil
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return checker.rerunOnChange(ctx, env)
}

// checker runs one check pass over a fixed set of paths.
type checker struct {
	paths   []string
	exclude []string
	rules   rules.RuleSet
	mode    report.Mode
	format  display.Format
	out     io.Writer
	errOut  io.Writer
}

func (c *checker) run(now time.Time) (report.BatchReport, error) {
	files, scanErrs, err := fileutil.FindMarkdown(c.paths, c.exclude)
	if err != nil {
		return report.BatchReport{}, err
	}
	if len(scanErrs) > 0 {
		display.WarnScanErrors(scanErrs).Display(c.errOut)
	}
	if len(files) == 0 {
		display.WarnNoDocuments(c.paths).Display(c.errOut)
	}

	docs := make([]report.DocumentReport, 0, len(files))
	for _, path := range files {
		doc, err := parser.ParseFile(path)
		if err != nil {
			return report.BatchReport{}, err
		}
		findings, err := rules.Evaluate(doc, c.rules)
		if err != nil {
			return report.BatchReport{}, err
		}
		docs = append(docs, report.DocumentReport{
			Path:     displayPath(path),
			Findings: c.mode.Apply(findings, now),
		})
	}

	batch := report.Aggregate(docs)
	if err := display.RenderCheck(c.out, batch, c.mode.GradualActive(now), c.format); err != nil {
		return report.BatchReport{}, err
	}
	return batch, nil
}

// rerunOnChange re-runs the check after each debounced batch of document changes
// until ctx is cancelled.
func (c *checker) rerunOnChange(ctx context.Context, env *environment) error {
	roots := make([]string, 0, len(c.paths))
	for _, p := range c.paths {
		info, err := os.Stat(p)
		if err != nil {
			return fmt.Errorf("cannot access %s: %w", p, err)
		}
		if !info.IsDir() {
			p = filepath.Dir(p)
		}
		roots = append(roots, p)
	}

	w, err := watch.New(roots, c.exclude)
	if err != nil {
		return err
	}
	env.logger.LogInfo("Watching %d path(s) for changes, press Ctrl+C to stop", len(roots))

	return w.Run(ctx, func(changed []string) {
		env.logger.LogInfo("%d document(s) changed, re-checking", len(changed))
		if _, err := c.run(time.Now()); err != nil {
			env.logger.LogError("Check failed: %v", err)
		}
	}, func(err error) {
		env.logger.LogWarn("Watch error: %v", err)
	})
}

// displayPath shortens path relative to the working directory when it lies
// below it.
func displayPath(path string) string {
	cwd, err := os.Getwd()
	if err != nil {
		return path
	}
	rel, err := filepath.Rel(cwd, path)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return path
	}
	return filepath.ToSlash(rel)
}
