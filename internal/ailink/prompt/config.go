package prompt

import (
	"sort"
	"strings"
)

// Config describes a prompt definition: YAML frontmatter plus a template body.
type Config struct {
	Slug           string   `yaml:"slug" json:"slug"`
	Name           string   `yaml:"name,omitempty" json:"name,omitempty"`
	Description    string   `yaml:"description,omitempty" json:"description,omitempty"`
	Version        string   `yaml:"version,omitempty" json:"version,omitempty"`
	SystemTemplate string   `yaml:"system_template,omitempty" json:"system_template,omitempty"`
	MaxTokens      int      `yaml:"max_tokens,omitempty" json:"max_tokens,omitempty"`
	Temperature    *float64 `yaml:"temperature,omitempty" json:"temperature,omitempty"`
	Sampling       *bool    `yaml:"sampling,omitempty" json:"sampling,omitempty"`
}

// Prompt wraps a validated prompt configuration with its source.
type Prompt struct {
	Config Config
	Source string
}

// Render substitutes {{name}} placeholders in the system template. Unknown
// placeholders are left as they are.
func (p *Prompt) Render(vars map[string]string) string {
	if p == nil {
		return ""
	}
	out := p.Config.SystemTemplate
	keys := make([]string, 0, len(vars))
	for k := range vars {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		out = strings.ReplaceAll(out, "{{"+k+"}}", vars[k])
		out = strings.ReplaceAll(out, "{{ "+k+" }}", vars[k])
	}
	return strings.TrimSpace(out)
}
