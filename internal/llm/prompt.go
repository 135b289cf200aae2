package llm

import (
	"bytes"
	"fmt"
	"os"
	"strings"
	"text/template"

	"gopkg.in/yaml.v2"
)

// PromptConfig is a prompt template file together with its model settings.
type PromptConfig struct {
	Name        string  `yaml:"name"`
	Model       string  `yaml:"model"`
	Temperature float32 `yaml:"temperature"`
	Template    string  `yaml:"template"`

	tmpl *template.Template
}

// LoadPrompt reads and compiles a YAML prompt file.
func LoadPrompt(path string) (*PromptConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read prompt %s: %w", path, err)
	}
	return ParsePrompt(data)
}

// ParsePrompt compiles a YAML prompt document.
func ParsePrompt(data []byte) (*PromptConfig, error) {
	var cfg PromptConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("decode prompt: %w", err)
	}
	if strings.TrimSpace(cfg.Template) == "" {
		return nil, fmt.Errorf("prompt %q has no template", cfg.Name)
	}

	tmpl, err := template.New(cfg.Name).Option("missingkey=error").Parse(cfg.Template)
	if err != nil {
		return nil, fmt.Errorf("parse prompt %q: %w", cfg.Name, err)
	}
	cfg.tmpl = tmpl
	return &cfg, nil
}

// Render executes the template with data. Values are embedded verbatim.
func (p *PromptConfig) Render(data interface{}) (string, error) {
	var buf bytes.Buffer
	if err := p.tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render prompt %q: %w", p.Name, err)
	}
	return buf.String(), nil
}
