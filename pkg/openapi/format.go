package openapi

import (
	"encoding/json"
	"fmt"

	"github.com/appforge-io/forgectl/pkg/client"
)

// FormatDefinition renders a stored function definition in the requested
// format. The tool formats (openai, openai_responses, anthropic) publish the
// parameters schema with hidden properties filtered out; raw and basic are
// record views.
func FormatDefinition(function client.Function, format client.DefinitionFormat) (map[string]any, error) {
	switch format {
	case client.FormatRaw:
		return map[string]any{
			"name":          function.Name,
			"app_name":      client.ParseAppNameFromFunctionName(function.Name),
			"description":   function.Description,
			"tags":          function.Tags,
			"visibility":    function.Visibility,
			"active":        function.Active,
			"protocol":      function.Protocol,
			"protocol_data": function.ProtocolData,
			"parameters":    encodeSchema(function.Parameters),
			"response":      encodeSchema(function.Response),
			"created_at":    function.CreatedAt,
			"updated_at":    function.UpdatedAt,
		}, nil
	case client.FormatBasic:
		return map[string]any{
			"name":         function.Name,
			"description":  function.Description,
			"tags":         function.Tags,
			"display_name": client.GenerateDisplayName(function.Name),
		}, nil
	case client.FormatOpenAI:
		return map[string]any{
			"type": "function",
			"function": map[string]any{
				"name":        function.Name,
				"description": function.Description,
				"parameters":  FilterVisible(function.Parameters),
			},
		}, nil
	case client.FormatOpenAIResponses:
		return map[string]any{
			"type":        "function",
			"name":        function.Name,
			"description": function.Description,
			"parameters":  FilterVisible(function.Parameters),
		}, nil
	case client.FormatAnthropic:
		return map[string]any{
			"name":         function.Name,
			"description":  function.Description,
			"input_schema": FilterVisible(function.Parameters),
		}, nil
	default:
		return nil, fmt.Errorf("invalid definition format %q (valid: raw, basic, openai, openai_responses, anthropic)", format)
	}
}

// encodeSchema renders a schema as a JSON string for the raw record view,
// or an empty string when there is no schema.
func encodeSchema(schema map[string]any) string {
	if len(schema) == 0 {
		return ""
	}
	data, err := json.Marshal(schema)
	if err != nil {
		return ""
	}
	return string(data)
}

// FilterVisible returns a copy of a schema with hidden properties removed.
// A property is hidden when its parent object carries a visible list that
// does not include it; objects without a visible list keep everything.
// Pruned names are dropped from required, and the visible annotation itself
// is removed at every level, it is internal to the platform.
func FilterVisible(schema map[string]any) map[string]any {
	if schema == nil {
		return map[string]any{}
	}

	keep := func(string) bool { return true }
	if visible, ok := toStringSet(schema["visible"]); ok {
		keep = func(name string) bool {
			_, ok := visible[name]
			return ok
		}
	}

	filtered := make(map[string]any, len(schema))
	for key, value := range schema {
		switch key {
		case "visible":
			// Dropped from published schemas.
		case "properties":
			properties, ok := value.(map[string]any)
			if !ok {
				filtered[key] = value
				continue
			}
			kept := make(map[string]any, len(properties))
			for name, property := range properties {
				if !keep(name) {
					continue
				}
				kept[name] = filterSubschema(property)
			}
			filtered[key] = kept
		case "required":
			names, ok := toStringSlice(value)
			if !ok {
				filtered[key] = value
				continue
			}
			keptNames := []string{}
			for _, name := range names {
				if keep(name) {
					keptNames = append(keptNames, name)
				}
			}
			filtered[key] = keptNames
		case "items", "additionalProperties", "propertyNames", "if", "then", "else", "not":
			filtered[key] = filterSubschema(value)
		case "allOf", "oneOf", "anyOf":
			filtered[key] = filterSubschema(value)
		case "patternProperties", "dependentSchemas":
			children, ok := value.(map[string]any)
			if !ok {
				filtered[key] = value
				continue
			}
			kept := make(map[string]any, len(children))
			for name, child := range children {
				kept[name] = filterSubschema(child)
			}
			filtered[key] = kept
		default:
			filtered[key] = value
		}
	}
	return filtered
}

// filterSubschema filters a subschema position that may hold a schema map,
// a list of schemas, or a plain value such as additionalProperties: false.
func filterSubschema(value any) any {
	switch typed := value.(type) {
	case map[string]any:
		return FilterVisible(typed)
	case []any:
		kept := make([]any, 0, len(typed))
		for _, item := range typed {
			kept = append(kept, filterSubschema(item))
		}
		return kept
	default:
		return value
	}
}

func toStringSlice(value any) ([]string, bool) {
	switch typed := value.(type) {
	case []string:
		return typed, true
	case []any:
		names := make([]string, 0, len(typed))
		for _, item := range typed {
			name, ok := item.(string)
			if !ok {
				return nil, false
			}
			names = append(names, name)
		}
		return names, true
	default:
		return nil, false
	}
}

func toStringSet(value any) (map[string]struct{}, bool) {
	names, ok := toStringSlice(value)
	if !ok {
		return nil, false
	}
	set := make(map[string]struct{}, len(names))
	for _, name := range names {
		set[name] = struct{}{}
	}
	return set, true
}
