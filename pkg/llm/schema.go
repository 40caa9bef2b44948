package llm

import (
	"encoding/json"
	"fmt"
)

type PropertyType string

const (
	TypeString  PropertyType = "string"
	TypeNumber  PropertyType = "number"
	TypeBoolean PropertyType = "boolean"
	TypeObject  PropertyType = "object"
	TypeArray   PropertyType = "array"
)

// PropertySchema describes one parameter of a tool, optionally nested
type PropertySchema struct {
	Type        PropertyType               `json:"type"`
	Description string                     `json:"description,omitempty"`
	Enum        []string                   `json:"enum,omitempty"`
	Items       *PropertySchema            `json:"items,omitempty"`
	Properties  map[string]*PropertySchema `json:"properties,omitempty"`
}

type ToolParameters struct {
	Type       PropertyType               `json:"type"`
	Properties map[string]*PropertySchema `json:"properties"`
}

// Tool describes one function the model may call
type Tool struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Parameters  ToolParameters `json:"parameters"`
}

// jsonSchema renders a property as the plain JSON-schema map OpenAI-style vendors expect.
func (p *PropertySchema) jsonSchema() map[string]interface{} {
	schema := map[string]interface{}{"type": string(p.Type)}
	if p.Description != "" {
		schema["description"] = p.Description
	}
	if len(p.Enum) > 0 {
		schema["enum"] = p.Enum
	}
	if p.Items != nil {
		schema["items"] = p.Items.jsonSchema()
	}
	if len(p.Properties) > 0 {
		schema["properties"] = propertiesSchema(p.Properties)
	}
	return schema
}

func propertiesSchema(props map[string]*PropertySchema) map[string]interface{} {
	out := make(map[string]interface{}, len(props))
	for name, prop := range props {
		if prop == nil {
			continue
		}
		out[name] = prop.jsonSchema()
	}
	return out
}

// toJSONMap normalises any value into plain JSON types (map[string]interface{}, []interface{}, ...).
// History loaded back from Mongo holds driver-specific types that vendor SDKs refuse.
func toJSONMap(v interface{}) (map[string]interface{}, error) {
	if v == nil {
		return map[string]interface{}{}, nil
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to encode value: %w", err)
	}
	out := map[string]interface{}{}
	if err := json.Unmarshal(raw, &out); err != nil {
		// not an object, wrap it so every vendor receives a mapping
		var scalar interface{}
		if err := json.Unmarshal(raw, &scalar); err != nil {
			return nil, fmt.Errorf("failed to decode value: %w", err)
		}
		return map[string]interface{}{"result": scalar}, nil
	}
	return out, nil
}

// decodeArguments parses a JSON-encoded argument payload. Blank payloads are an empty mapping.
func decodeArguments(raw string) (map[string]interface{}, error) {
	args := map[string]interface{}{}
	if raw == "" {
		return args, nil
	}
	if err := json.Unmarshal([]byte(raw), &args); err != nil {
		return nil, fmt.Errorf("failed to decode tool arguments %q: %w", raw, err)
	}
	if args == nil {
		args = map[string]interface{}{}
	}
	return args, nil
}
