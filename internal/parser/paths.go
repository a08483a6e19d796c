package parser

import (
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"

	"github.com/harrison/paver/internal/models"
)

// PathsSection lists the code paths a document covers. The parser keeps it as
// an ordinary section; only the coverage mapping reads its list items.
const PathsSection = "paths"

// PathPatterns returns the code path patterns a document declares: the
// frontmatter paths followed by the list items of every Paths section,
// deduplicated in first-seen order.
func PathPatterns(doc *models.Document) []string {
	seen := make(map[string]bool)
	var patterns []string
	add := func(p string) {
		p = strings.Trim(strings.TrimSpace(p), "`")
		if p != "" && !seen[p] {
			seen[p] = true
			patterns = append(patterns, p)
		}
	}

	if doc.Frontmatter != nil {
		for _, p := range doc.Frontmatter.Paths {
			add(p)
		}
	}

	for i := range doc.Sections {
		section := &doc.Sections[i]
		if section.Name != PathsSection {
			continue
		}
		for _, item := range listItems(strings.Join(section.Body(doc), "\n")) {
			add(item)
		}
	}
	return patterns
}

// listItems returns the raw first line of every list item in src, nested
// items included. Raw source is used instead of rendered text so glob
// characters are not read as emphasis.
func listItems(src string) []string {
	source := []byte(src)
	root := goldmark.New().Parser().Parse(text.NewReader(source))

	var items []string
	_ = ast.Walk(root, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering || n.Kind() != ast.KindListItem {
			return ast.WalkContinue, nil
		}
		first := n.FirstChild()
		if first == nil || first.Lines().Len() == 0 {
			return ast.WalkContinue, nil
		}
		seg := first.Lines().At(0)
		items = append(items, string(seg.Value(source)))
		return ast.WalkContinue, nil
	})
	return items
}
