package common

import (
	"encoding/json"
	"fmt"

	"github.com/invopop/jsonschema"
	"github.com/mark3labs/mcp-go/mcp"
)

// Mutability classifies what a tool does to the user's data.
type Mutability string

const (
	// ReadOnly tools never change data.
	ReadOnly Mutability = "readonly"
	// Additive tools only create data.
	Additive Mutability = "additive"
	// Mutating tools change or delete existing data.
	Mutating Mutability = "mutating"
)

// Annotation maps the mutability onto MCP hint flags.
func (m Mutability) Annotation(title string) mcp.ToolAnnotation {
	a := mcp.ToolAnnotation{
		Title:         title,
		OpenWorldHint: mcp.ToBoolPtr(false),
	}
	switch m {
	case ReadOnly:
		a.ReadOnlyHint = mcp.ToBoolPtr(true)
		a.IdempotentHint = mcp.ToBoolPtr(true)
		a.DestructiveHint = mcp.ToBoolPtr(false)
	case Additive:
		a.ReadOnlyHint = mcp.ToBoolPtr(false)
		a.IdempotentHint = mcp.ToBoolPtr(false)
		a.DestructiveHint = mcp.ToBoolPtr(false)
	default:
		a.ReadOnlyHint = mcp.ToBoolPtr(false)
		a.IdempotentHint = mcp.ToBoolPtr(false)
		a.DestructiveHint = mcp.ToBoolPtr(true)
	}
	return a
}

// Definition describes one tool: its identity, its mutability class, its
// input parameters and the schema of its structured output.
type Definition struct {
	Name        string
	Title       string
	Description string
	Mutability  Mutability
	Params      []mcp.ToolOption

	outputOption mcp.ToolOption
	outputSchema *jsonschema.Schema
}

// NewDefinition builds a Definition whose structured output has type O.
func NewDefinition[O any](name, title, description string, mutability Mutability, params ...mcp.ToolOption) Definition {
	return Definition{
		Name:         name,
		Title:        title,
		Description:  description,
		Mutability:   mutability,
		Params:       params,
		outputOption: mcp.WithOutputSchema[O](),
		outputSchema: reflectSchema[O](),
	}
}

// Tool builds the MCP tool declaration.
func (d Definition) Tool() mcp.Tool {
	opts := []mcp.ToolOption{
		mcp.WithDescription(d.Description),
		mcp.WithToolAnnotation(d.Mutability.Annotation(d.Title)),
	}
	opts = append(opts, d.Params...)
	if d.outputOption != nil {
		opts = append(opts, d.outputOption)
	}
	return mcp.NewTool(d.Name, opts...)
}

// OutputSchema returns the JSON schema of the tool's structured output,
// or nil for tools without one.
func (d Definition) OutputSchema() *jsonschema.Schema {
	return d.outputSchema
}

// OutputSchemaJSON renders the output schema, indented.
func (d Definition) OutputSchemaJSON() (string, error) {
	if d.outputSchema == nil {
		return "", nil
	}
	raw, err := json.MarshalIndent(d.outputSchema, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal output schema of %s: %w", d.Name, err)
	}
	return string(raw), nil
}

func reflectSchema[O any]() *jsonschema.Schema {
	r := jsonschema.Reflector{
		DoNotReference: true,
		Anonymous:      true,
	}
	var zero O
	schema := r.Reflect(zero)
	// gojsonschema does not know the 2020-12 meta-schema.
	schema.Version = ""
	schema.ID = ""
	return schema
}
