// Package coverage maps code files to the documents whose Paths section or
// `pave: paths` frontmatter claims them, and reports what is left undocumented.
package coverage

import (
	"fmt"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/harrison/paver/internal/fileutil"
	"github.com/harrison/paver/internal/parser"
)

// CodeExtensions are the file extensions counted as code.
var CodeExtensions = []string{
	"rs", "py", "js", "ts", "jsx", "tsx", "go", "java", "c", "cpp", "h", "hpp", "rb", "php",
	"swift", "kt", "scala", "sh", "bash", "zsh", "pl", "pm", "lua", "ex", "exs", "erl", "hrl",
	"hs", "ml", "mli", "fs", "fsi", "clj", "cljs", "lisp", "el", "vim", "sql",
}

// skipDirs are build and dependency directories never counted as code.
var skipDirs = []string{"target", "node_modules", "dist", "build", "__pycache__", "vendor"}

// maxSuggestions bounds the suggestion list.
const maxSuggestions = 5

// Mapping is the set of code path patterns one document claims.
type Mapping struct {
	Doc      string   `json:"doc"`
	Patterns []string `json:"patterns"`
}

// DirectoryCoverage is the coverage of one directory's direct files.
type DirectoryCoverage struct {
	Path       string  `json:"path"`
	Covered    int     `json:"covered"`
	Total      int     `json:"total"`
	Percentage float64 `json:"percentage"`
}

// Suggestion proposes a document covering a cluster of uncovered files.
type Suggestion struct {
	Description string   `json:"description"`
	Files       []string `json:"files"`
}

// Result is the outcome of a coverage analysis. File paths are slash
// separated and relative to the analyzed root.
type Result struct {
	CoveredFiles   int                 `json:"covered_files"`
	UncoveredFiles int                 `json:"uncovered_files"`
	TotalFiles     int                 `json:"total_files"`
	Percentage     float64             `json:"coverage_percentage"`
	ByDirectory    []DirectoryCoverage `json:"by_directory"`
	Covered        []string            `json:"covered"`
	Uncovered      []string            `json:"uncovered"`
	Suggestions    []Suggestion        `json:"suggestions,omitempty"`
}

// ThresholdMet reports whether the overall percentage reaches threshold.
func (r Result) ThresholdMet(threshold float64) bool {
	return r.Percentage >= threshold
}

// LoadMappings parses docs and keeps those declaring at least one pattern.
// index.md files and anything under a templates directory are skipped.
func LoadMappings(docs []string) ([]Mapping, error) {
	var mappings []Mapping
	for _, docPath := range docs {
		if filepath.Base(docPath) == "index.md" || underTemplates(docPath) {
			continue
		}
		doc, err := parser.ParseFile(docPath)
		if err != nil {
			return nil, err
		}
		patterns := parser.PathPatterns(doc)
		if len(patterns) == 0 {
			continue
		}
		mappings = append(mappings, Mapping{Doc: docPath, Patterns: patterns})
	}
	return mappings, nil
}

func underTemplates(p string) bool {
	for _, part := range strings.Split(filepath.ToSlash(filepath.Dir(p)), "/") {
		if part == "templates" {
			return true
		}
	}
	return false
}

// CollectCodeFiles lists code files under root as sorted slash-separated
// relative paths. exclude globs drop files; a non-empty include keeps only
// matching files.
func CollectCodeFiles(root string, include, exclude []string) ([]string, error) {
	result, err := fileutil.ScanDirectory(root, fileutil.ScanOptions{
		Extensions:  CodeExtensions,
		Recursive:   true,
		ExcludeDirs: skipDirs,
		Exclude:     exclude,
	})
	if err != nil {
		return nil, err
	}

	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %s: %w", root, err)
	}

	files := make([]string, 0, len(result.Files))
	for _, f := range result.Files {
		rel, err := filepath.Rel(absRoot, f)
		if err != nil {
			continue
		}
		rel = filepath.ToSlash(rel)
		if len(include) > 0 && !Matches(include, rel) {
			continue
		}
		files = append(files, rel)
	}
	sort.Strings(files)
	return files, nil
}

// Matches reports whether file is claimed by any pattern. Besides doublestar
// globs, a pattern ending in "/" or "*" also claims everything below its prefix.
func Matches(patterns []string, file string) bool {
	if fileutil.MatchAny(patterns, file) {
		return true
	}
	for _, p := range patterns {
		if strings.HasSuffix(p, "*") {
			prefix := strings.TrimRight(p, "*/")
			if prefix != "" && strings.HasPrefix(file, prefix) {
				return true
			}
		}
	}
	return false
}

// Analyze splits files into covered and uncovered against every mapping's
// patterns and computes per-directory statistics.
func Analyze(files []string, mappings []Mapping) Result {
	var patterns []string
	for _, m := range mappings {
		patterns = append(patterns, m.Patterns...)
	}

	r := Result{Covered: []string{}, Uncovered: []string{}}
	for _, f := range files {
		if Matches(patterns, f) {
			r.Covered = append(r.Covered, f)
		} else {
			r.Uncovered = append(r.Uncovered, f)
		}
	}

	r.CoveredFiles = len(r.Covered)
	r.UncoveredFiles = len(r.Uncovered)
	r.TotalFiles = len(files)
	r.Percentage = percentage(r.CoveredFiles, r.TotalFiles)
	r.ByDirectory = byDirectory(r.Covered, r.Uncovered)
	r.Suggestions = suggestions(r.Uncovered)
	return r
}

func percentage(covered, total int) float64 {
	if total == 0 {
		return 100
	}
	return float64(covered) / float64(total) * 100
}

func dirOf(file string) string {
	dir := path.Dir(file)
	if dir == "" {
		return "."
	}
	return dir
}

func byDirectory(covered, uncovered []string) []DirectoryCoverage {
	stats := make(map[string]*DirectoryCoverage)
	get := func(dir string) *DirectoryCoverage {
		if s, ok := stats[dir]; ok {
			return s
		}
		s := &DirectoryCoverage{Path: dir}
		stats[dir] = s
		return s
	}
	for _, f := range covered {
		s := get(dirOf(f))
		s.Covered++
		s.Total++
	}
	for _, f := range uncovered {
		get(dirOf(f)).Total++
	}

	out := make([]DirectoryCoverage, 0, len(stats))
	for _, s := range stats {
		s.Percentage = percentage(s.Covered, s.Total)
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out
}

// suggestions proposes one component doc per directory holding two or more
// uncovered files, largest clusters first.
func suggestions(uncovered []string) []Suggestion {
	byDir := make(map[string][]string)
	for _, f := range uncovered {
		dir := dirOf(f)
		byDir[dir] = append(byDir[dir], f)
	}

	var out []Suggestion
	for dir, files := range byDir {
		if len(files) < 2 {
			continue
		}
		out = append(out, Suggestion{
			Description: fmt.Sprintf("Create %s covering %s/", SuggestDocName(dir), dir),
			Files:       files,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if len(out[i].Files) != len(out[j].Files) {
			return len(out[i].Files) > len(out[j].Files)
		}
		return out[i].Description < out[j].Description
	})
	if len(out) > maxSuggestions {
		out = out[:maxSuggestions]
	}
	return out
}

// SuggestDocName proposes a document path for a code directory.
func SuggestDocName(dir string) string {
	name := path.Base(dir)
	if name == "." || name == "/" {
		name = "component"
	}
	return fmt.Sprintf("docs/components/%s.md", name)
}
