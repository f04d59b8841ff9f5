package io

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/fieldops/intervention/internal/model"
)

//go:embed templates/*.yaml
var builtinTemplates embed.FS

// DefaultTemplatePath is the path of the default template inside the builtin templates.
const DefaultTemplatePath = "ppf-standard.yaml"

// BuiltinTemplates returns the templates shipped with the application.
func BuiltinTemplates() fs.FS {
	sub, err := fs.Sub(builtinTemplates, "templates")
	if err != nil {
		panic(err)
	}
	return sub
}

// TemplateYAMLRepository loads workflow templates from YAML files.
type TemplateYAMLRepository struct {
	fs fs.FS
}

// NewTemplateYAMLRepository creates a new YAML template repository.
func NewTemplateYAMLRepository(filesystem fs.FS) *TemplateYAMLRepository {
	return &TemplateYAMLRepository{fs: filesystem}
}

// GetTemplate loads a workflow template from a YAML file and returns a validated domain model.
func (r *TemplateYAMLRepository) GetTemplate(ctx context.Context, path string) (model.WorkflowTemplate, error) {
	data, err := fs.ReadFile(r.fs, strings.TrimPrefix(path, "/"))
	if err != nil {
		return model.WorkflowTemplate{}, fmt.Errorf("reading template file: %w", err)
	}

	if ctx.Err() != nil {
		return model.WorkflowTemplate{}, ctx.Err()
	}

	var tpl WorkflowTemplate
	if err := yaml.Unmarshal(data, &tpl); err != nil {
		return model.WorkflowTemplate{}, fmt.Errorf("parsing YAML: %w", err)
	}

	m := tpl.toModel()
	if err := m.Validate(); err != nil {
		return model.WorkflowTemplate{}, fmt.Errorf("invalid template: %w", err)
	}

	return m, nil
}

// WorkflowTemplate represents the YAML structure of a workflow template.
type WorkflowTemplate struct {
	Name  string         `yaml:"name"`
	Steps []StepTemplate `yaml:"steps"`
}

// StepTemplate represents the YAML structure of a template step.
type StepTemplate struct {
	Name string `yaml:"name"`
	// Mandatory defaults to true when not set.
	Mandatory *bool `yaml:"mandatory,omitempty"`
}

func (t WorkflowTemplate) toModel() model.WorkflowTemplate {
	m := model.WorkflowTemplate{Name: t.Name}
	for _, s := range t.Steps {
		mandatory := true
		if s.Mandatory != nil {
			mandatory = *s.Mandatory
		}
		m.Steps = append(m.Steps, model.StepTemplate{
			Name:      strings.TrimSpace(s.Name),
			Mandatory: mandatory,
		})
	}
	return m
}
