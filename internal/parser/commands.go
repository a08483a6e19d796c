package parser

import (
	"regexp"
	"strings"

	"github.com/harrison/paver/internal/models"
)

// VerificationSection is the section whose shell blocks are executed.
const VerificationSection = "verification"

var shellLanguages = map[string]bool{
	"bash":    true,
	"sh":      true,
	"shell":   true,
	"console": true,
}

var promptPrefix = regexp.MustCompile(`^[$>]\s+`)

// IsShellLanguage reports whether a fence language hint marks a block as executable.
func IsShellLanguage(lang string) bool {
	return shellLanguages[strings.ToLower(lang)]
}

// CommandLines normalizes the content of a shell block: lines are trimmed,
// comments and blank lines dropped, and a leading "$ " or "> " prompt removed.
func CommandLines(content string) []string {
	var out []string
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		line = strings.TrimSpace(promptPrefix.ReplaceAllString(line, ""))
		if line != "" {
			out = append(out, line)
		}
	}
	return out
}

// JoinCommand collapses a shell block into a single command in which every
// line only runs if the previous one succeeded. Empty blocks return "".
func JoinCommand(content string) string {
	return strings.Join(CommandLines(content), " && ")
}

// ExtractCommands returns one command per qualifying block of the
// verification section, in document order.
func ExtractCommands(doc *models.Document) []string {
	specs := ExtractCommandSpecs(doc)
	commands := make([]string, 0, len(specs))
	for _, spec := range specs {
		commands = append(commands, spec.Command)
	}
	return commands
}

// ExtractCommandSpecs is ExtractCommands with the per-block working directory
// and environment attached. A block-level working_dir marker takes precedence
// over the frontmatter working_dir.
func ExtractCommandSpecs(doc *models.Document) []models.CommandSpec {
	var defaultDir string
	if doc.Frontmatter != nil {
		defaultDir = doc.Frontmatter.WorkingDir
	}

	var specs []models.CommandSpec
	for _, section := range doc.Sections {
		if section.Name != VerificationSection {
			continue
		}
		for _, block := range section.CodeBlocks {
			if !IsShellLanguage(block.Language) {
				continue
			}
			command := JoinCommand(block.Content)
			if command == "" {
				continue
			}
			dir := block.WorkingDir
			if dir == "" {
				dir = defaultDir
			}
			specs = append(specs, models.CommandSpec{
				Command:    command,
				Line:       block.StartLine,
				WorkingDir: dir,
				Env:        append([]string(nil), block.Env...),
			})
		}
	}
	return specs
}
