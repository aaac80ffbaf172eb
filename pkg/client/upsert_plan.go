package client

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// UpsertAction classifies what an upsert would do to one function.
type UpsertAction string

const (
	// UpsertActionCreate means the function does not exist on the platform.
	UpsertActionCreate UpsertAction = "create"
	// UpsertActionUpdate means the stored definition differs from the file.
	UpsertActionUpdate UpsertAction = "update"
	// UpsertActionUnchanged means the stored definition already matches.
	UpsertActionUnchanged UpsertAction = "unchanged"
)

// UpsertPlanEntry pairs a function definition with its planned action.
type UpsertPlanEntry struct {
	Definition FunctionUpsert
	Action     UpsertAction
}

// UpsertPlan is the result of comparing a definitions file against the
// functions currently stored for an app.
type UpsertPlan struct {
	AppName string
	Entries []UpsertPlanEntry
}

// Counts tallies the plan entries per action.
func (p *UpsertPlan) Counts() (create, update, unchanged int) {
	for _, entry := range p.Entries {
		switch entry.Action {
		case UpsertActionCreate:
			create++
		case UpsertActionUpdate:
			update++
		case UpsertActionUnchanged:
			unchanged++
		}
	}
	return create, update, unchanged
}

// Changed returns the definitions that would create or update a function,
// in file order. Unchanged definitions are skipped so executing the plan
// only touches what differs.
func (p *UpsertPlan) Changed() []FunctionUpsert {
	var changed []FunctionUpsert
	for _, entry := range p.Entries {
		if entry.Action != UpsertActionUnchanged {
			changed = append(changed, entry.Definition)
		}
	}
	return changed
}

// UpsertAppName returns the single app the definitions belong to. Upserts
// are scoped to one app, so definitions spanning several apps or repeating
// a function name are rejected before any network call.
func UpsertAppName(definitions []FunctionUpsert) (string, error) {
	if len(definitions) == 0 {
		return "", errEmptyArgument("function definitions")
	}

	appName := ParseAppNameFromFunctionName(definitions[0].Name)
	seen := make(map[string]struct{}, len(definitions))
	for _, definition := range definitions {
		if other := ParseAppNameFromFunctionName(definition.Name); other != appName {
			return "", fmt.Errorf("function definitions span multiple apps: %s and %s", appName, other)
		}
		if _, ok := seen[definition.Name]; ok {
			return "", fmt.Errorf("duplicate function definition: %s", definition.Name)
		}
		seen[definition.Name] = struct{}{}
	}
	return appName, nil
}

// PlanUpserts classifies each definition against the stored functions.
// Definitions keep their file order in the plan.
func PlanUpserts(definitions []FunctionUpsert, existing []Function) (*UpsertPlan, error) {
	appName, err := UpsertAppName(definitions)
	if err != nil {
		return nil, err
	}

	stored := make(map[string][]byte, len(existing))
	for i := range existing {
		upsert := existing[i].Upsert()
		encoded, err := canonicalUpsertJSON(upsert)
		if err != nil {
			return nil, fmt.Errorf("failed to encode stored function %s: %w", upsert.Name, err)
		}
		stored[upsert.Name] = encoded
	}

	plan := &UpsertPlan{
		AppName: appName,
		Entries: make([]UpsertPlanEntry, 0, len(definitions)),
	}
	for _, definition := range definitions {
		encoded, err := canonicalUpsertJSON(definition)
		if err != nil {
			return nil, fmt.Errorf("failed to encode function %s: %w", definition.Name, err)
		}

		action := UpsertActionCreate
		if storedEncoded, ok := stored[definition.Name]; ok {
			action = UpsertActionUpdate
			if bytes.Equal(encoded, storedEncoded) {
				action = UpsertActionUnchanged
			}
		}
		plan.Entries = append(plan.Entries, UpsertPlanEntry{Definition: definition, Action: action})
	}
	return plan, nil
}

// canonicalUpsertJSON encodes a definition for comparison. Nil collections
// are mapped to their empty forms so a stored null and a file-supplied []
// do not register as a change.
func canonicalUpsertJSON(definition FunctionUpsert) ([]byte, error) {
	if definition.Tags == nil {
		definition.Tags = []string{}
	}
	if definition.Parameters == nil {
		definition.Parameters = map[string]any{}
	}
	return json.Marshal(definition)
}
