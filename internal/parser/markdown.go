package parser

import (
	"regexp"
	"strings"

	"github.com/harrison/paver/internal/models"
)

var (
	workingDirMarker = regexp.MustCompile(`^<!--\s*pave:working_dir\s+(.+?)\s*-->$`)
	envMarker        = regexp.MustCompile(`^<!--\s*pave:env\s+([^=\s]+)\s*=\s*(.*?)\s*-->$`)
)

// blockBuilder accumulates an open code fence.
type blockBuilder struct {
	block   models.CodeBlock
	content []string
}

func (b *blockBuilder) finish(endLine int) models.CodeBlock {
	b.block.Content = strings.Join(b.content, "\n")
	b.block.EndLine = endLine
	return b.block
}

// scanBody walks lines[start:] once, recording the title, section headings and
// fenced code blocks. Headings inside fences are content, not structure.
func scanBody(doc *models.Document, start int) {
	lines := doc.Lines

	type heading struct {
		line int
		text string
	}
	var headings []heading
	var open *blockBuilder
	var pendingDir string
	var pendingEnv []string

	for i := start; i < len(lines); i++ {
		lineNo := i + 1
		trimmed := strings.TrimSpace(lines[i])

		// Inside a fence only a closing fence matters
		if open != nil {
			if isClosingFence(trimmed) {
				doc.CodeBlocks = append(doc.CodeBlocks, open.finish(lineNo))
				open = nil
				continue
			}
			open.content = append(open.content, lines[i])
			continue
		}

		if lang, ok := openingFence(trimmed); ok {
			open = &blockBuilder{block: models.CodeBlock{
				Language:   lang,
				StartLine:  lineNo,
				WorkingDir: pendingDir,
				Env:        pendingEnv,
			}}
			pendingDir, pendingEnv = "", nil
			continue
		}

		if m := workingDirMarker.FindStringSubmatch(trimmed); m != nil {
			pendingDir = m[1]
			continue
		}
		if m := envMarker.FindStringSubmatch(trimmed); m != nil {
			pendingEnv = append(pendingEnv, m[1]+"="+m[2])
			continue
		}

		if name, ok := strings.CutPrefix(trimmed, "## "); ok {
			headings = append(headings, heading{line: lineNo, text: strings.TrimSpace(name)})
			continue
		}

		if doc.Title == "" && len(headings) == 0 {
			if title, ok := strings.CutPrefix(trimmed, "# "); ok {
				doc.Title = strings.TrimSpace(title)
			}
		}
	}

	// An unterminated fence runs to the end of the document
	if open != nil {
		doc.CodeBlocks = append(doc.CodeBlocks, open.finish(len(lines)))
	}

	for i, h := range headings {
		end := len(lines)
		if i+1 < len(headings) {
			end = headings[i+1].line - 1
		}
		section := models.Section{
			Name:      models.NormalizeSectionName(h.text),
			Heading:   h.text,
			StartLine: h.line,
			EndLine:   end,
		}
		for _, block := range doc.CodeBlocks {
			if block.StartLine > section.StartLine && block.StartLine <= section.EndLine {
				section.CodeBlocks = append(section.CodeBlocks, block)
			}
		}
		doc.Sections = append(doc.Sections, section)
	}
}

// openingFence reports whether trimmed opens a code fence and returns the
// first word of its info string as the language hint.
func openingFence(trimmed string) (string, bool) {
	n := countBackticks(trimmed)
	if n < 3 {
		return "", false
	}
	info := strings.Fields(trimmed[n:])
	if len(info) == 0 {
		return "", true
	}
	return info[0], true
}

// isClosingFence reports whether trimmed is made only of three or more backticks.
func isClosingFence(trimmed string) bool {
	n := countBackticks(trimmed)
	return n >= 3 && n == len(trimmed)
}

func countBackticks(s string) int {
	n := 0
	for n < len(s) && s[n] == '`' {
		n++
	}
	return n
}
