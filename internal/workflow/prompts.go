package workflow

import (
	"context"
	_ "embed"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/schema"
	"gopkg.in/yaml.v3"
)

// Prompt names every workflow needs.
const (
	PromptPlanner    = "planner"
	PromptReplanner  = "replanner"
	PromptResearcher = "researcher"
	PromptGrader     = "grader"
	PromptGenerator  = "generator"

	// PromptTravelGuide drives the standalone travel guide.
	PromptTravelGuide = "travel_guide"
)

var requiredPrompts = []string{PromptPlanner, PromptReplanner, PromptResearcher, PromptGrader, PromptGenerator, PromptTravelGuide}

//go:embed prompts.yaml
var defaultCatalog []byte

// DefaultLanguage is the answer language when none is configured.
const DefaultLanguage = "Korean"

type promptSpec struct {
	System string `yaml:"system"`
	User   string `yaml:"user"`
}

// Prompts renders the workflow prompt catalog.
type Prompts struct {
	language  string
	templates map[string]prompt.ChatTemplate
}

// DefaultPrompts loads the built-in catalog.
func DefaultPrompts(language string) (*Prompts, error) {
	return LoadPrompts(defaultCatalog, language)
}

// LoadPrompts parses a YAML catalog mapping prompt names to system and
// user templates. Every workflow prompt must be present.
func LoadPrompts(catalog []byte, language string) (*Prompts, error) {
	var specs map[string]promptSpec
	if err := yaml.Unmarshal(catalog, &specs); err != nil {
		return nil, fmt.Errorf("parse prompt catalog: %w", err)
	}

	if language == "" {
		language = DefaultLanguage
	}
	p := &Prompts{language: language, templates: make(map[string]prompt.ChatTemplate, len(specs))}

	for _, name := range requiredPrompts {
		spec, ok := specs[name]
		if !ok || strings.TrimSpace(spec.User) == "" {
			return nil, fmt.Errorf("prompt catalog: %s needs a user template", name)
		}

		var msgs []schema.MessagesTemplate
		if strings.TrimSpace(spec.System) != "" {
			msgs = append(msgs, schema.SystemMessage(spec.System))
		}
		msgs = append(msgs, schema.UserMessage(spec.User))
		p.templates[name] = prompt.FromMessages(schema.GoTemplate, msgs...)
	}
	return p, nil
}

// Language returns the answer language passed to every template.
func (p *Prompts) Language() string { return p.language }

// Render formats the named prompt into chat messages.
func (p *Prompts) Render(ctx context.Context, name string, vars map[string]any) ([]*schema.Message, error) {
	tpl, ok := p.templates[name]
	if !ok {
		return nil, fmt.Errorf("unknown prompt %q", name)
	}

	all := make(map[string]any, len(vars)+1)
	for k, v := range vars {
		all[k] = v
	}
	all["language"] = p.language

	msgs, err := tpl.Format(ctx, all)
	if err != nil {
		return nil, fmt.Errorf("render prompt %s: %w", name, err)
	}
	return msgs, nil
}

// RenderText formats the named prompt into one string, for capabilities
// that take a plain task.
func (p *Prompts) RenderText(ctx context.Context, name string, vars map[string]any) (string, error) {
	msgs, err := p.Render(ctx, name, vars)
	if err != nil {
		return "", err
	}

	parts := make([]string, 0, len(msgs))
	for _, m := range msgs {
		parts = append(parts, strings.TrimSpace(m.Content))
	}
	return strings.Join(parts, "\n\n"), nil
}
