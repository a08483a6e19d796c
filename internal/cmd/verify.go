package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/harrison/paver/internal/config"
	"github.com/harrison/paver/internal/display"
	"github.com/harrison/paver/internal/executor"
	"github.com/harrison/paver/internal/filelock"
	"github.com/harrison/paver/internal/fileutil"
	"github.com/harrison/paver/internal/history"
	"github.com/harrison/paver/internal/models"
	"github.com/harrison/paver/internal/parser"
	"github.com/harrison/paver/internal/report"
)

// exitInterrupted matches the shell convention for SIGINT.
const exitInterrupted = 130

type verifyOptions struct {
	format      string
	timeout     string
	keepGoing   bool
	concurrency int
	reportPath  string
	record      bool
}

// NewVerifyCommand creates and returns the verify subcommand
func NewVerifyCommand() *cobra.Command {
	opts := &verifyOptions{}
	cmd := &cobra.Command{
		Use:   "verify [paths...]",
		Short: "Run the commands in each document's Verification section",
		Long: `Extract the shell commands from every Verification section and run
them with sh -c, one at a time, in document order.

A command passes when it exits 0. Commands that exceed the timeout are
killed together with any processes they started. By default a document
stops at its first failing command; --keep-going runs the rest.

Only one verify may run per working tree at a time.

Exit code: 0 if every command passes, 1 otherwise`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runVerify(cmd, args, opts)
		},
	}

	cmd.Flags().StringVar(&opts.format, "format", "text", "Output format: text, json, github")
	cmd.Flags().StringVar(&opts.timeout, "timeout", "", "Per-command timeout (e.g., 30s, 2m; bare numbers are seconds)")
	cmd.Flags().BoolVar(&opts.keepGoing, "keep-going", false, "Run every command even after one fails")
	cmd.Flags().IntVar(&opts.concurrency, "concurrency", 1, "Number of documents verified in parallel")
	cmd.Flags().StringVar(&opts.reportPath, "report", "", "Also write the JSON report to this file")
	cmd.Flags().BoolVar(&opts.record, "record", false, "Record the run in .paver/history.db")

	return cmd
}

func runVerify(cmd *cobra.Command, args []string, opts *verifyOptions) error {
	format, err := display.ParseFormat(opts.format)
	if err != nil {
		return err
	}

	env, err := loadEnvironment(cmd)
	if err != nil {
		return err
	}
	if err := mergeVerifyFlags(cmd, env.cfg, opts); err != nil {
		return err
	}

	paths, err := env.targets(args)
	if err != nil {
		return err
	}
	files, scanErrs, err := fileutil.FindMarkdown(paths, env.cfg.Mapping.Exclude)
	if err != nil {
		return err
	}
	if len(scanErrs) > 0 {
		display.WarnScanErrors(scanErrs).Display(cmd.ErrOrStderr())
	}
	if len(files) == 0 {
		display.WarnNoDocuments(paths).Display(cmd.ErrOrStderr())
	}

	docs := make([]*models.Document, 0, len(files))
	for _, path := range files {
		doc, err := parser.ParseFile(path)
		if err != nil {
			return err
		}
		doc.Path = displayPath(path)
		docs = append(docs, doc)
	}

	base := env.cfg.BaseDir(env.cwd)
	lockPath, err := config.VerifyLockPath(base)
	if err != nil {
		return err
	}
	lock, err := filelock.TryAcquire(lockPath)
	if err != nil {
		return err
	}
	defer lock.Unlock()

	runner, err := executor.NewRunner(env.cfg.RunnerConfig(env.cwd), env.logger)
	if err != nil {
		return err
	}
	if format == display.FormatText && display.IsTerminal(cmd.ErrOrStderr()) {
		progress := display.NewProgressIndicator(cmd.ErrOrStderr(), len(docs))
		runner.OnDocument(func(v models.DocumentVerification) {
			progress.Step(v.Path, v.Status() == models.OutcomePass)
		})
		defer progress.Complete()
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	startedAt := time.Now()
	env.logger.LogInfo("Verifying %d document(s)", len(docs))
	verifications := runner.VerifyDocuments(ctx, docs, env.cfg.Verify.Concurrency)
	elapsed := time.Since(startedAt)
	interrupted := ctx.Err() != nil

	reports := make([]report.DocumentReport, len(verifications))
	for i := range verifications {
		reports[i] = report.DocumentReport{
			Path:         verifications[i].Path,
			Findings:     []models.Finding{},
			Verification: &verifications[i],
		}
	}
	batch := report.Aggregate(reports)
	for _, doc := range batch.FailedDocuments() {
		env.logger.LogDebug("%s:\n%s", doc.Path, executor.FormatResults(doc.Verification.Commands))
	}

	if err := display.RenderVerify(cmd.OutOrStdout(), batch, format); err != nil {
		return err
	}
	if opts.reportPath != "" {
		data, err := display.MarshalReport(batch)
		if err != nil {
			return err
		}
		if err := filelock.AtomicWrite(opts.reportPath, data); err != nil {
			return fmt.Errorf("failed to write report: %w", err)
		}
		env.logger.LogInfo("Report written to %s", opts.reportPath)
	}
	if opts.record {
		if err := recordRun(cmd, base, batch, startedAt, elapsed, env); err != nil {
			return err
		}
	}
	env.logger.LogSummary(batch.Totals, elapsed)

	if interrupted {
		return &ExitError{Code: exitInterrupted, Message: "verification interrupted"}
	}
	if code := batch.ExitCode(false); code != 0 {
		return &ExitError{Code: code}
	}
	return nil
}

// mergeVerifyFlags applies the flags the user set on top of the config.
func mergeVerifyFlags(cmd *cobra.Command, cfg *config.Config, opts *verifyOptions) error {
	var (
		timeout     *time.Duration
		keepGoing   *bool
		concurrency *int
	)
	if cmd.Flags().Changed("timeout") {
		d, err := config.ParseTimeout(opts.timeout)
		if err != nil {
			return fmt.Errorf("invalid --timeout: %w", err)
		}
		timeout = &d
	}
	if cmd.Flags().Changed("keep-going") {
		keepGoing = &opts.keepGoing
	}
	if cmd.Flags().Changed("concurrency") {
		concurrency = &opts.concurrency
	}
	cfg.MergeWithFlags(timeout, keepGoing, concurrency, nil)
	return cfg.Validate()
}

func recordRun(cmd *cobra.Command, base string, batch report.BatchReport, startedAt time.Time, elapsed time.Duration, env *environment) error {
	dbPath, err := config.HistoryDBPath(base)
	if err != nil {
		return err
	}
	store, err := history.NewStore(dbPath)
	if err != nil {
		return fmt.Errorf("open history: %w", err)
	}
	defer store.Close()

	id, err := store.Record(cmd.Context(), batch, startedAt, elapsed)
	if err != nil {
		return fmt.Errorf("record run: %w", err)
	}
	env.logger.LogDebug("Recorded run %s in %s", id, dbPath)
	return nil
}
