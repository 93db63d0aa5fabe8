package prompt

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

var frontmatterFence = []byte("---")

// Load parses and validates a prompt definition. The input is either plain
// YAML or Markdown with YAML frontmatter, in which case the body becomes the
// system template unless system_template is set.
func Load(source string, data []byte) (*Prompt, error) {
	cfg, body, err := splitDefinition(data)
	if err != nil {
		return nil, fmt.Errorf("parse prompt %s: %w", source, err)
	}
	if strings.TrimSpace(cfg.SystemTemplate) == "" {
		cfg.SystemTemplate = strings.TrimSpace(body)
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("validate prompt %s: %w", source, err)
	}
	return &Prompt{Config: cfg, Source: source}, nil
}

// LoadFile reads a single prompt definition from disk.
func LoadFile(path string) (*Prompt, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- prompt path comes from operator config
	if err != nil {
		return nil, fmt.Errorf("read prompt %s: %w", path, err)
	}
	return Load(path, data)
}

func splitDefinition(data []byte) (Config, string, error) {
	var cfg Config
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return cfg, "", errors.New("empty prompt")
	}

	rest, fenced := bytes.CutPrefix(trimmed, frontmatterFence)
	if !fenced {
		if err := yaml.Unmarshal(trimmed, &cfg); err != nil {
			return cfg, "", fmt.Errorf("invalid yaml: %w", err)
		}
		return cfg, "", nil
	}

	front, body, closed := bytes.Cut(rest, append([]byte("\n"), frontmatterFence...))
	if !closed {
		return cfg, "", errors.New("unterminated frontmatter")
	}
	if err := yaml.Unmarshal(front, &cfg); err != nil {
		return cfg, "", fmt.Errorf("invalid frontmatter: %w", err)
	}
	return cfg, string(body), nil
}

func (c Config) validate() error {
	switch {
	case strings.TrimSpace(c.SystemTemplate) == "":
		return errors.New("missing system_template")
	case c.MaxTokens < 0:
		return errors.New("max_tokens must not be negative")
	case c.Temperature != nil && (*c.Temperature < 0 || *c.Temperature > 2):
		return fmt.Errorf("temperature %.2f outside [0, 2]", *c.Temperature)
	}
	return nil
}
