package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/harrison/paver/internal/coverage"
	"github.com/harrison/paver/internal/display"
	"github.com/harrison/paver/internal/fileutil"
)

type coverageOptions struct {
	format    string
	threshold float64
	include   []string
	exclude   []string
}

// NewCoverageCommand creates and returns the coverage subcommand
func NewCoverageCommand() *cobra.Command {
	opts := &coverageOptions{}
	cmd := &cobra.Command{
		Use:   "coverage [dir]",
		Short: "Report which code files are covered by documentation",
		Long: `Match the code files under dir (default: the project root, where the
config file lives) against the patterns listed in each document's
"## Paths" section or "pave.paths" frontmatter.

Patterns are doublestar globs relative to the project root; a pattern
ending in "/" covers everything below that directory.

Exit code: 0, or 1 if --threshold is set and not met`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCoverage(cmd, args, opts)
		},
	}

	cmd.Flags().StringVar(&opts.format, "format", "text", "Output format: text, json, github")
	cmd.Flags().Float64Var(&opts.threshold, "threshold", 0, "Fail if coverage is below this percentage")
	cmd.Flags().StringSliceVar(&opts.include, "include", nil, "Only consider code files matching these globs")
	cmd.Flags().StringSliceVar(&opts.exclude, "exclude", nil, "Ignore code files matching these globs (added to mapping.exclude)")

	return cmd
}

func runCoverage(cmd *cobra.Command, args []string, opts *coverageOptions) error {
	format, err := display.ParseFormat(opts.format)
	if err != nil {
		return err
	}

	env, err := loadEnvironment(cmd)
	if err != nil {
		return err
	}

	root := env.cfg.BaseDir(env.cwd)
	if len(args) == 1 {
		root = args[0]
	}
	if info, err := os.Stat(root); err != nil || !info.IsDir() {
		return fmt.Errorf("code directory %s not found", root)
	}

	docPaths, err := env.targets(nil)
	if err != nil {
		return err
	}
	docs, _, err := fileutil.FindMarkdown(docPaths, nil)
	if err != nil {
		return err
	}
	mappings, err := coverage.LoadMappings(docs)
	if err != nil {
		return err
	}
	env.logger.LogDebug("Loaded %d mapping(s) from %d document(s)", len(mappings), len(docs))

	exclude := append(append([]string{}, env.cfg.Mapping.Exclude...), opts.exclude...)
	files, err := coverage.CollectCodeFiles(root, opts.include, exclude)
	if err != nil {
		return err
	}

	var threshold *float64
	if cmd.Flags().Changed("threshold") {
		threshold = &opts.threshold
	}
	view := display.NewCoverageView(coverage.Analyze(files, mappings), threshold)
	if err := display.RenderCoverage(cmd.OutOrStdout(), view, format); err != nil {
		return err
	}

	if view.ThresholdMet != nil && !*view.ThresholdMet {
		return &ExitError{
			Code:    1,
			Message: fmt.Sprintf("coverage %.1f%% is below threshold %g%%", view.Percentage, opts.threshold),
		}
	}
	return nil
}
