package prompt

import (
	_ "embed"
	"strings"
)

// PersonaSlug names the prompt used by the public chat assistant.
const PersonaSlug = "site-assistant"

//go:embed prompts/site-assistant.md
var embeddedPersona []byte

// Persona returns the assistant persona. An override file, when given,
// replaces the embedded definition and takes its slug.
func Persona(overridePath string) (*Prompt, error) {
	var (
		p   *Prompt
		err error
	)
	if path := strings.TrimSpace(overridePath); path != "" {
		p, err = LoadFile(path)
	} else {
		p, err = Load("embedded:"+PersonaSlug+".md", embeddedPersona)
	}
	if err != nil {
		return nil, err
	}
	p.Config.Slug = PersonaSlug
	return p, nil
}
