package client

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

//go:embed schemas/function_upsert.schema.json
var functionUpsertSchema []byte

// ValidateFunctionUpserts checks that data holds a JSON array of function
// definitions conforming to the upsert schema, then decodes it. Omitted
// optional fields receive the platform defaults: visibility public and
// active true.
func ValidateFunctionUpserts(data []byte) ([]FunctionUpsert, error) {
	result, err := gojsonschema.Validate(
		gojsonschema.NewBytesLoader(functionUpsertSchema),
		gojsonschema.NewBytesLoader(data),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to parse function definitions: %w", err)
	}
	if !result.Valid() {
		return nil, formatSchemaErrors(result.Errors())
	}

	var entries []upsertFileEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("failed to decode function definitions: %w", err)
	}

	definitions := make([]FunctionUpsert, 0, len(entries))
	for _, entry := range entries {
		definitions = append(definitions, entry.withDefaults())
	}
	return definitions, nil
}

// upsertFileEntry distinguishes an omitted active field from an explicit
// false. The outer pointer shadows the embedded bool during decoding.
type upsertFileEntry struct {
	FunctionUpsert
	Active *bool `json:"active"`
}

func (e upsertFileEntry) withDefaults() FunctionUpsert {
	definition := e.FunctionUpsert
	definition.Active = e.Active == nil || *e.Active
	if definition.Visibility == "" {
		definition.Visibility = "public"
	}
	if definition.Tags == nil {
		definition.Tags = []string{}
	}
	if definition.Parameters == nil {
		definition.Parameters = map[string]any{}
	}
	return definition
}

// formatSchemaErrors flattens schema validation failures into a single
// error listing every offending location.
func formatSchemaErrors(resultErrors []gojsonschema.ResultError) error {
	if len(resultErrors) == 1 {
		return fmt.Errorf("invalid function definitions: %s at '%s'",
			resultErrors[0].Description(), resultErrors[0].Field())
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "invalid function definitions with %d errors:", len(resultErrors))
	for i, resultError := range resultErrors {
		fmt.Fprintf(&sb, "\n  %d. %s at '%s'", i+1, resultError.Description(), resultError.Field())
	}
	return fmt.Errorf("%s", sb.String())
}
