package llm

import (
	"encoding/json"
	"strings"
)

// Request is one generation exchange.
type Request struct {
	SystemPrompt string
	UserPrompt   string
	Tools        []Tool
}

// ToolParam describes one tool argument.
type ToolParam struct {
	Name        string
	Type        string
	Description string
	Required    bool
}

// Tool is a function the model may call during an exchange. Call receives
// the raw JSON arguments and returns the result text sent back to the model.
type Tool struct {
	Name        string
	Description string
	Params      []ToolParam
	Call        func(args json.RawMessage) (string, error)
}

// FindTool returns the tool registered under name.
func (r Request) FindTool(name string) (Tool, bool) {
	name = strings.TrimSpace(name)
	for _, tool := range r.Tools {
		if tool.Name == name {
			return tool, true
		}
	}
	return Tool{}, false
}

// ParameterSchema renders the tool parameters as a JSON schema object.
func (t Tool) ParameterSchema() map[string]any {
	properties := make(map[string]any, len(t.Params))
	required := make([]string, 0, len(t.Params))
	for _, param := range t.Params {
		typ := param.Type
		if typ == "" {
			typ = "string"
		}
		properties[param.Name] = map[string]any{
			"type":        typ,
			"description": param.Description,
		}
		if param.Required {
			required = append(required, param.Name)
		}
	}
	schema := map[string]any{
		"type":       "object",
		"properties": properties,
	}
	if len(required) > 0 {
		schema["required"] = required
	}
	return schema
}
