package prompt

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmbeddedPersona(t *testing.T) {
	persona, err := Persona("")
	require.NoError(t, err)
	assert.Equal(t, PersonaSlug, persona.Config.Slug)
	assert.Equal(t, 1024, persona.Config.MaxTokens)
	require.NotNil(t, persona.Config.Sampling)
	assert.True(t, *persona.Config.Sampling)
	assert.Contains(t, persona.Config.SystemTemplate, "{{date}}")
	assert.Contains(t, persona.Config.SystemTemplate, "Keep responses under 150 words")
	assert.Contains(t, persona.Config.SystemTemplate, "depends on requirements")
}

func TestRenderSubstitutesPlaceholders(t *testing.T) {
	persona, err := Persona("")
	require.NoError(t, err)

	rendered := persona.Render(map[string]string{
		"company": "Lightspeed",
		"date":    "18 October 2026",
	})
	assert.Contains(t, rendered, "You are a helpful assistant for Lightspeed")
	assert.Contains(t, rendered, "Current date: 18 October 2026")
	assert.NotContains(t, rendered, "{{")
}

func TestPersonaOverrideFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "custom.md")
	require.NoError(t, os.WriteFile(path, []byte("---\nmax_tokens: 256\n---\nBe brief. Today is {{ date }}.\n"), 0o600))

	persona, err := Persona(path)
	require.NoError(t, err)
	assert.Equal(t, PersonaSlug, persona.Config.Slug)
	assert.Equal(t, 256, persona.Config.MaxTokens)
	assert.Equal(t, "Be brief. Today is Monday.", persona.Render(map[string]string{"date": "Monday"}))
}

func TestLoadRejectsInvalidDefinitions(t *testing.T) {
	_, err := Load("empty.md", []byte("   "))
	assert.Error(t, err)

	_, err = Load("no-body.md", []byte("---\nslug: x\n---\n"))
	assert.ErrorContains(t, err, "system_template")

	_, err = Load("hot.yaml", []byte("slug: hot\nsystem_template: hi\ntemperature: 3.5\n"))
	assert.ErrorContains(t, err, "temperature")
}

func TestLoadPlainYAML(t *testing.T) {
	p, err := Load("x.yaml", []byte("slug: other\nsystem_template: replaced\nmax_tokens: 64\n"))
	require.NoError(t, err)
	assert.Equal(t, "replaced", p.Config.SystemTemplate)
	assert.Equal(t, 64, p.Config.MaxTokens)

	_, err = Load("open.md", []byte("---\nslug: x\nBody without a closing fence\n"))
	assert.ErrorContains(t, err, "unterminated")
}
