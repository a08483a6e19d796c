// Package parser turns markdown text into a models.Document and extracts the
// executable verification commands and path patterns it declares.
//
// Parsing is total: malformed markdown degrades to fewer sections or blocks,
// never to an error. Only reading a file from disk can fail.
package parser

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/harrison/paver/internal/models"
)

// IsMarkdownFile reports whether filename has a markdown extension.
func IsMarkdownFile(filename string) bool {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".md", ".markdown":
		return true
	default:
		return false
	}
}

// ParseFile reads and parses the document at path.
func ParseFile(path string) (*models.Document, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read document: %w", err)
	}
	return Parse(path, content), nil
}

// Parse parses raw document content. path is carried through unchanged.
func Parse(path string, content []byte) *models.Document {
	return ParseString(path, string(content))
}

// ParseString parses document text.
func ParseString(path, text string) *models.Document {
	lines := splitLines(text)
	doc := &models.Document{
		Path:  path,
		Lines: lines,
	}

	bodyStart := 0
	if end := frontmatterEnd(lines); end >= 0 {
		doc.Frontmatter = decodeFrontmatter(text)
		bodyStart = end + 1
	}

	scanBody(doc, bodyStart)
	return doc
}

// splitLines splits text into lines, dropping the empty element produced by a
// trailing newline and any carriage returns.
func splitLines(text string) []string {
	if text == "" {
		return nil
	}
	lines := strings.Split(text, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	for i, line := range lines {
		lines[i] = strings.TrimSuffix(line, "\r")
	}
	return lines
}
