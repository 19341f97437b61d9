// Package prompt holds the instructions and response schema sent to the
// upstream model. Both are configuration: an embedded default can be replaced
// by a YAML file at startup.
package prompt

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"google.golang.org/genai"
	"gopkg.in/yaml.v3"
)

//go:embed prompt.yaml
var defaultPrompt []byte

// Prompt is the upstream-facing prompt configuration.
type Prompt struct {
	SystemInstruction      string  `yaml:"system_instruction"`
	QuestionPrefix         string  `yaml:"question_prefix"`
	AttachmentInstruction  string  `yaml:"attachment_instruction"`
	WebhookDefaultQuestion string  `yaml:"webhook_default_question"`
	SchemaName             string  `yaml:"schema_name"`
	Schema                 *Schema `yaml:"schema"`
}

// Schema is a JSON-schema subset: object, array and scalar types with
// descriptions and required keys. Property order is preserved from YAML.
type Schema struct {
	Type        string     `yaml:"type"`
	Description string     `yaml:"description,omitempty"`
	Properties  Properties `yaml:"properties,omitempty"`
	Items       *Schema    `yaml:"items,omitempty"`
	Required    []string   `yaml:"required,omitempty"`
}

// Property is one named member of an object schema.
type Property struct {
	Name   string
	Schema *Schema
}

// Properties is an ordered list of object members.
type Properties []Property

// UnmarshalYAML decodes a mapping node keeping key order.
func (p *Properties) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: properties must be a mapping", node.Line)
	}
	out := make(Properties, 0, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		var s Schema
		if err := node.Content[i+1].Decode(&s); err != nil {
			return err
		}
		out = append(out, Property{Name: node.Content[i].Value, Schema: &s})
	}
	*p = out
	return nil
}

// Default returns the embedded prompt.
func Default() (*Prompt, error) {
	return Parse(defaultPrompt)
}

// Load returns the prompt from path, or the embedded default when path is empty.
func Load(path string) (*Prompt, error) {
	if path == "" {
		return Default()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading prompt file: %w", err)
	}
	return Parse(data)
}

// Parse decodes and validates a YAML prompt document.
func Parse(data []byte) (*Prompt, error) {
	var p Prompt
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("parsing prompt: %w", err)
	}
	if strings.TrimSpace(p.SystemInstruction) == "" {
		return nil, fmt.Errorf("prompt: system_instruction is required")
	}
	if p.Schema == nil || p.Schema.Type != "object" {
		return nil, fmt.Errorf("prompt: schema must be an object")
	}
	if err := p.Schema.validate("schema"); err != nil {
		return nil, err
	}
	if p.SchemaName == "" {
		p.SchemaName = "analysis"
	}
	return &p, nil
}

// UserText builds the instruction part for a question. An empty question
// asks for a report on the attachments.
func (p *Prompt) UserText(question string) string {
	if strings.TrimSpace(question) == "" {
		return p.AttachmentInstruction
	}
	return p.QuestionPrefix + question
}

// WebhookQuestion returns the question posted to a webhook upstream.
func (p *Prompt) WebhookQuestion(question string) string {
	if strings.TrimSpace(question) == "" {
		return p.WebhookDefaultQuestion
	}
	return question
}

func (s *Schema) validate(path string) error {
	switch s.Type {
	case "object":
		names := make(map[string]bool, len(s.Properties))
		for _, prop := range s.Properties {
			names[prop.Name] = true
			if err := prop.Schema.validate(path + "." + prop.Name); err != nil {
				return err
			}
		}
		for _, r := range s.Required {
			if !names[r] {
				return fmt.Errorf("prompt: %s requires unknown property %q", path, r)
			}
		}
	case "array":
		if s.Items == nil {
			return fmt.Errorf("prompt: %s is an array without items", path)
		}
		return s.Items.validate(path + "[]")
	case "string", "number", "integer", "boolean":
	default:
		return fmt.Errorf("prompt: %s has unsupported type %q", path, s.Type)
	}
	return nil
}

var genaiTypes = map[string]genai.Type{
	"object":  genai.TypeObject,
	"array":   genai.TypeArray,
	"string":  genai.TypeString,
	"number":  genai.TypeNumber,
	"integer": genai.TypeInteger,
	"boolean": genai.TypeBoolean,
}

// GenAI converts the schema for a Gemini response schema.
func (s *Schema) GenAI() *genai.Schema {
	out := &genai.Schema{
		Type:        genaiTypes[s.Type],
		Description: s.Description,
		Required:    s.Required,
	}
	if len(s.Properties) > 0 {
		out.Properties = make(map[string]*genai.Schema, len(s.Properties))
		for _, prop := range s.Properties {
			out.Properties[prop.Name] = prop.Schema.GenAI()
			out.PropertyOrdering = append(out.PropertyOrdering, prop.Name)
		}
	}
	if s.Items != nil {
		out.Items = s.Items.GenAI()
	}
	return out
}

// JSONSchema renders the schema as a JSON Schema document.
func (s *Schema) JSONSchema() (json.RawMessage, error) {
	return json.Marshal(s.jsonMap())
}

func (s *Schema) jsonMap() map[string]any {
	out := map[string]any{"type": s.Type}
	if s.Description != "" {
		out["description"] = s.Description
	}
	if len(s.Properties) > 0 {
		props := make(map[string]any, len(s.Properties))
		for _, prop := range s.Properties {
			props[prop.Name] = prop.Schema.jsonMap()
		}
		out["properties"] = props
	}
	if len(s.Required) > 0 {
		out["required"] = s.Required
	}
	if s.Items != nil {
		out["items"] = s.Items.jsonMap()
	}
	return out
}
