// Package templates holds the PAVED document skeletons written by `paver new`.
// Every template satisfies the default rule set as rendered.
package templates

import (
	"bytes"
	"embed"
	"fmt"
	"path/filepath"
	"strings"
	"text/template"
	"unicode"
)

//go:embed component.md runbook.md adr.md
var files embed.FS

// Kind selects a template.
type Kind string

// Template kinds
const (
	Component Kind = "component"
	Runbook   Kind = "runbook"
	ADR       Kind = "adr"
)

// Kinds lists every template kind.
var Kinds = []Kind{Component, Runbook, ADR}

// ParseKind validates a --type value.
func ParseKind(s string) (Kind, error) {
	k := Kind(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Kinds {
		if k == known {
			return k, nil
		}
	}
	return "", fmt.Errorf("unknown document type %q (expected component, runbook or adr)", s)
}

// Dir is the docs subdirectory documents of this kind go in.
func (k Kind) Dir() string {
	return string(k) + "s"
}

// DefaultPath returns <docsRoot>/<kind>s/<name>.md.
func DefaultPath(docsRoot string, k Kind, name string) string {
	return filepath.Join(docsRoot, k.Dir(), name+".md")
}

// Render fills the template of kind k for the document called name.
func Render(k Kind, name string) ([]byte, error) {
	src, err := files.ReadFile(string(k) + ".md")
	if err != nil {
		return nil, fmt.Errorf("unknown document type %q", k)
	}
	tmpl, err := template.New(string(k)).Parse(string(src))
	if err != nil {
		return nil, fmt.Errorf("parse %s template: %w", k, err)
	}

	var buf bytes.Buffer
	data := struct{ Name, Title string }{Name: name, Title: TitleCase(name)}
	if err := tmpl.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("render %s template: %w", k, err)
	}
	return buf.Bytes(), nil
}

// TitleCase turns "auth-service" or "auth_service" into "Auth Service".
func TitleCase(name string) string {
	words := strings.FieldsFunc(name, func(r rune) bool { return r == '-' || r == '_' })
	for i, w := range words {
		runes := []rune(w)
		runes[0] = unicode.ToUpper(runes[0])
		words[i] = string(runes)
	}
	return strings.Join(words, " ")
}
