package parser

import (
	"strings"

	"github.com/adrg/frontmatter"

	"github.com/harrison/paver/internal/models"
)

type frontmatterEnvelope struct {
	Pave *models.Frontmatter `yaml:"pave"`
}

// frontmatterEnd returns the index of the closing "---" line of a leading
// frontmatter block, or -1 when the document has none.
func frontmatterEnd(lines []string) int {
	if len(lines) < 2 || strings.TrimSpace(lines[0]) != "---" {
		return -1
	}
	for i := 1; i < len(lines); i++ {
		if strings.TrimSpace(lines[i]) == "---" {
			return i
		}
	}
	return -1
}

// decodeFrontmatter extracts the pave: block. Malformed YAML yields nil so
// that parsing stays total.
func decodeFrontmatter(text string) *models.Frontmatter {
	var env frontmatterEnvelope
	if _, err := frontmatter.Parse(strings.NewReader(text), &env); err != nil {
		return nil
	}
	return env.Pave
}
