package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/harrison/paver/internal/filelock"
	"github.com/harrison/paver/internal/templates"
)

// NewNewCommand creates and returns the new subcommand
func NewNewCommand() *cobra.Command {
	var (
		kind   string
		output string
	)
	cmd := &cobra.Command{
		Use:   "new <name>",
		Short: "Create a document from a PAVED template",
		Long: `Create a component, runbook or ADR document that already passes
'paver check'. The file goes to <docs root>/<type>s/<name>.md unless
--output is given.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := args[0]
			if name == "" || strings.ContainsAny(name, `/\`) {
				return fmt.Errorf("invalid document name %q", name)
			}
			k, err := templates.ParseKind(kind)
			if err != nil {
				return err
			}

			env, err := loadEnvironment(cmd)
			if err != nil {
				return err
			}
			path := output
			if path == "" {
				path = templates.DefaultPath(env.cfg.DocsRoot(env.cwd), k, name)
			}
			if _, err := os.Stat(path); err == nil {
				return fmt.Errorf("file already exists: %s", path)
			}

			content, err := templates.Render(k, name)
			if err != nil {
				return err
			}
			if err := filelock.AtomicWrite(path, content); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Created %s at %s\n", k, displayPath(absPath(path)))
			fmt.Fprintln(out, "\nNext steps:")
			fmt.Fprintln(out, "  1. Open the file and fill in the sections")
			fmt.Fprintln(out, "  2. Run 'paver check' to validate the document")
			return nil
		},
	}

	cmd.Flags().StringVarP(&kind, "type", "t", string(templates.Component), "Document type: component, runbook, adr")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Write to this path instead of the docs root")
	return cmd
}

func absPath(p string) string {
	if abs, err := filepath.Abs(p); err == nil {
		return abs
	}
	return p
}
