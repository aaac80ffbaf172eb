package openapi

import (
	"github.com/getkin/kin-openapi/openapi3"
)

// SchemaToMap converts a parsed OpenAPI schema into a plain JSON-style map,
// the form Normalize operates on. Reference cycles are cut at the point of
// re-entry with a permissive object stub, so the result is always a finite
// tree that marshals cleanly. Shared non-cyclic references are expanded at
// every site.
func SchemaToMap(ref *openapi3.SchemaRef) map[string]any {
	return schemaToMap(ref, map[*openapi3.Schema]struct{}{})
}

func schemaToMap(ref *openapi3.SchemaRef, stack map[*openapi3.Schema]struct{}) map[string]any {
	if ref == nil || ref.Value == nil {
		return map[string]any{}
	}
	schema := ref.Value

	if _, cyclic := stack[schema]; cyclic {
		stub := map[string]any{
			"type":                 "object",
			"additionalProperties": true,
		}
		if schema.Description != "" {
			stub["description"] = schema.Description
		}
		return stub
	}
	stack[schema] = struct{}{}
	defer delete(stack, schema)

	node := map[string]any{}

	nullable := schema.Nullable
	if schema.Type != nil {
		for _, name := range *schema.Type {
			// 3.1 documents express nullability as a "null" type entry.
			if name == "null" {
				nullable = true
				continue
			}
			if _, ok := node["type"]; !ok {
				node["type"] = name
			}
		}
	}
	if nullable {
		node["nullable"] = true
	}

	if schema.Description != "" {
		node["description"] = schema.Description
	}
	if schema.Title != "" {
		node["title"] = schema.Title
	}
	if schema.Format != "" {
		node["format"] = schema.Format
	}
	if schema.Default != nil {
		node["default"] = schema.Default
	}
	if len(schema.Enum) > 0 {
		node["enum"] = append([]any{}, schema.Enum...)
	}

	if len(schema.Properties) > 0 {
		properties := make(map[string]any, len(schema.Properties))
		for name, property := range schema.Properties {
			properties[name] = schemaToMap(property, stack)
		}
		node["properties"] = properties
	}
	if len(schema.Required) > 0 {
		node["required"] = append([]string{}, schema.Required...)
	}

	if schema.Items != nil {
		node["items"] = schemaToMap(schema.Items, stack)
	}

	if schema.AdditionalProperties.Schema != nil {
		node["additionalProperties"] = schemaToMap(schema.AdditionalProperties.Schema, stack)
	} else if schema.AdditionalProperties.Has != nil {
		node["additionalProperties"] = *schema.AdditionalProperties.Has
	}

	if len(schema.AllOf) > 0 {
		node["allOf"] = schemaRefsToList(schema.AllOf, stack)
	}
	if len(schema.OneOf) > 0 {
		node["oneOf"] = schemaRefsToList(schema.OneOf, stack)
	}
	if len(schema.AnyOf) > 0 {
		node["anyOf"] = schemaRefsToList(schema.AnyOf, stack)
	}
	if schema.Not != nil {
		node["not"] = schemaToMap(schema.Not, stack)
	}

	if schema.Min != nil {
		node["minimum"] = *schema.Min
	}
	if schema.Max != nil {
		node["maximum"] = *schema.Max
	}
	if schema.MultipleOf != nil {
		node["multipleOf"] = *schema.MultipleOf
	}
	if schema.MinLength > 0 {
		node["minLength"] = schema.MinLength
	}
	if schema.MaxLength != nil {
		node["maxLength"] = *schema.MaxLength
	}
	if schema.Pattern != "" {
		node["pattern"] = schema.Pattern
	}
	if schema.MinItems > 0 {
		node["minItems"] = schema.MinItems
	}
	if schema.MaxItems != nil {
		node["maxItems"] = *schema.MaxItems
	}
	if schema.UniqueItems {
		node["uniqueItems"] = true
	}

	return node
}

func schemaRefsToList(refs openapi3.SchemaRefs, stack map[*openapi3.Schema]struct{}) []any {
	list := make([]any, 0, len(refs))
	for _, ref := range refs {
		list = append(list, schemaToMap(ref, stack))
	}
	return list
}
