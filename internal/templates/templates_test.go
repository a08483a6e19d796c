package templates

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harrison/paver/internal/parser"
	"github.com/harrison/paver/internal/rules"
)

func TestTitleCase(t *testing.T) {
	tests := map[string]string{
		"auth-service":      "Auth Service",
		"deploy_production": "Deploy Production",
		"auth":              "Auth",
		"use--postgresql":   "Use Postgresql",
	}
	for in, want := range tests {
		assert.Equal(t, want, TitleCase(in), in)
	}
}

func TestParseKind(t *testing.T) {
	k, err := ParseKind("ADR")
	require.NoError(t, err)
	assert.Equal(t, ADR, k)

	_, err = ParseKind("memo")
	assert.Error(t, err)
}

func TestDefaultPath(t *testing.T) {
	assert.Equal(t, filepath.Join("docs", "components", "auth-service.md"), DefaultPath("docs", Component, "auth-service"))
	assert.Equal(t, filepath.Join("docs", "adrs", "use-sqlite.md"), DefaultPath("docs", ADR, "use-sqlite"))
}

func TestRenderedTemplatesPassDefaultRules(t *testing.T) {
	for _, k := range Kinds {
		t.Run(string(k), func(t *testing.T) {
			out, err := Render(k, "auth-service")
			require.NoError(t, err)

			doc := parser.Parse("new.md", out)
			assert.Equal(t, "Auth Service", doc.Title)
			assert.NotContains(t, string(out), "{{")

			findings, err := rules.Evaluate(doc, rules.DefaultRuleSet())
			require.NoError(t, err)
			assert.Empty(t, findings)
			assert.Len(t, parser.ExtractCommands(doc), 1)
		})
	}
}

func TestComponentTemplateDeclaresPaths(t *testing.T) {
	out, err := Render(Component, "billing")
	require.NoError(t, err)
	assert.Equal(t, []string{"src/billing/"}, parser.PathPatterns(parser.Parse("billing.md", out)))
}
