package models

import "strings"

// Document is a parsed markdown file. It is produced once per file and never
// mutated afterwards, so it can be shared between the rule engine and the
// verification runner without copying.
type Document struct {
	Path        string       `json:"path"`                  // Identifier supplied by discovery, not interpreted
	Lines       []string     `json:"-"`                     // Source lines, index 0 is line 1
	Title       string       `json:"title,omitempty"`       // Text of the first "# " heading, empty if absent
	Sections    []Section    `json:"sections"`              // "## " sections in document order
	CodeBlocks  []CodeBlock  `json:"code_blocks,omitempty"` // Every fenced block, including those outside sections
	Frontmatter *Frontmatter `json:"frontmatter,omitempty"` // pave: frontmatter block, nil if absent or malformed
}

// Section is a region of the document opened by a second-level heading.
type Section struct {
	Name       string      `json:"name"`    // Case-folded heading text, used for lookups
	Heading    string      `json:"heading"` // Heading text as written
	StartLine  int         `json:"start_line"`
	EndLine    int         `json:"end_line"`
	CodeBlocks []CodeBlock `json:"code_blocks,omitempty"`
}

// CodeBlock is a fenced code block.
type CodeBlock struct {
	Language   string   `json:"language,omitempty"` // Fence info string (first word), may be empty
	Content    string   `json:"content"`
	StartLine  int      `json:"start_line"` // Line of the opening fence
	EndLine    int      `json:"end_line"`   // Line of the closing fence, or last line when unterminated
	WorkingDir string   `json:"working_dir,omitempty"`
	Env        []string `json:"env,omitempty"` // KEY=VALUE pairs from pave:env markers
}

// Frontmatter holds the pave: block of a document's YAML frontmatter.
type Frontmatter struct {
	Paths      []string `yaml:"paths" json:"paths,omitempty"`
	WorkingDir string   `yaml:"working_dir" json:"working_dir,omitempty"`
}

// NormalizeSectionName folds a heading into the form used for section identity.
func NormalizeSectionName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// LineCount returns the number of lines in the source text.
func (d *Document) LineCount() int {
	return len(d.Lines)
}

// Line returns the 1-indexed source line n.
func (d *Document) Line(n int) (string, bool) {
	if n < 1 || n > len(d.Lines) {
		return "", false
	}
	return d.Lines[n-1], true
}

// Section returns the first section whose name matches, ignoring case.
func (d *Document) Section(name string) (*Section, bool) {
	key := NormalizeSectionName(name)
	for i := range d.Sections {
		if d.Sections[i].Name == key {
			return &d.Sections[i], true
		}
	}
	return nil, false
}

// HasSection reports whether a section with the given name exists.
func (d *Document) HasSection(name string) bool {
	_, ok := d.Section(name)
	return ok
}

// Body returns the section's content lines, excluding the heading line.
func (s *Section) Body(doc *Document) []string {
	if s.StartLine >= s.EndLine || s.EndLine > len(doc.Lines) {
		return nil
	}
	return doc.Lines[s.StartLine:s.EndLine]
}
