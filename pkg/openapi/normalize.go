package openapi

import (
	"fmt"
	"reflect"
	"sort"
)

// RequiredPolicy controls how Normalize fills the required list on object
// schemas. The policy replaces whatever the source document declared.
type RequiredPolicy string

const (
	// RequiredNone leaves required empty on every object.
	RequiredNone RequiredPolicy = "none"
	// RequiredAll marks every declared property required.
	RequiredAll RequiredPolicy = "all"
	// RequiredNonNullable marks a property required unless its schema is
	// nullable or carries a default.
	RequiredNonNullable RequiredPolicy = "nonNullable"
)

// ValidRequiredPolicies lists the accepted --infer-required values.
var ValidRequiredPolicies = []RequiredPolicy{RequiredNone, RequiredAll, RequiredNonNullable}

// ParseRequiredPolicy validates a required-policy string. The flag-friendly
// spelling "non-nullable" is accepted alongside the canonical value.
func ParseRequiredPolicy(value string) (RequiredPolicy, error) {
	if value == "non-nullable" {
		return RequiredNonNullable, nil
	}
	for _, policy := range ValidRequiredPolicies {
		if string(policy) == value {
			return policy, nil
		}
	}
	return "", fmt.Errorf("invalid required policy %q (valid: none, all, non-nullable)", value)
}

// DefaultTruncateDepth bounds schema expansion for recursive or deeply
// nested documents.
const DefaultTruncateDepth = 6

// Options configure schema normalization.
type Options struct {
	// InferRequired selects the required-field policy. Empty behaves as
	// RequiredNone.
	InferRequired RequiredPolicy

	// TruncateDepth collapses object schemas nested at or beyond this depth.
	// Zero or negative means DefaultTruncateDepth.
	TruncateDepth int
}

// Keys removed unconditionally at every node. They carry documentation
// baggage that has no meaning in a function definition.
var strippedKeys = []string{"externalDocs", "xml", "example", "examples", "deprecated"}

// Normalize mutates a schema node in place so that every object node below
// the truncation depth carries additionalProperties, visible, and required,
// and every object node at or beyond it is collapsed to a permissive blob.
// Malformed fragments pass through untouched; Normalize never fails.
//
// Nodes are tracked by map identity, so schemas with shared or cyclic
// references are normalized exactly once per node and traversal always
// terminates.
func Normalize(node map[string]any, opts Options) {
	if opts.TruncateDepth <= 0 {
		opts.TruncateDepth = DefaultTruncateDepth
	}
	normalizeNode(node, 0, opts, map[uintptr]struct{}{})
}

func normalizeNode(node map[string]any, depth int, opts Options, visited map[uintptr]struct{}) {
	if node == nil {
		return
	}
	id := reflect.ValueOf(node).Pointer()
	if _, seen := visited[id]; seen {
		return
	}
	visited[id] = struct{}{}

	for _, key := range strippedKeys {
		delete(node, key)
	}

	if isObjectNode(node) {
		if depth >= opts.TruncateDepth {
			collapse(node)
			return
		}
		applyObjectDefaults(node, opts)
	}

	recurse(node, depth, opts, visited)
}

func isObjectNode(node map[string]any) bool {
	typeName, ok := node["type"].(string)
	return ok && typeName == "object"
}

// collapse replaces a too-deep object with a permissive stub, keeping only
// its description and nullability.
func collapse(node map[string]any) {
	description, hasDescription := node["description"]
	nullable, hasNullable := node["nullable"]
	clear(node)
	node["type"] = "object"
	node["additionalProperties"] = true
	if hasDescription {
		node["description"] = description
	}
	if hasNullable {
		node["nullable"] = nullable
	}
}

// applyObjectDefaults fills additionalProperties, visible, and required on
// an object node below the truncation depth. visible is only defaulted when
// absent so callers can pre-declare a subset; required is always recomputed
// from the policy.
func applyObjectDefaults(node map[string]any, opts Options) {
	if _, ok := node["additionalProperties"]; !ok {
		node["additionalProperties"] = false
	}

	value, ok := node["properties"]
	if !ok {
		node["properties"] = map[string]any{}
		node["required"] = []string{}
		node["visible"] = []string{}
		return
	}
	properties, ok := value.(map[string]any)
	if !ok {
		// Malformed properties, leave the node alone.
		return
	}

	keys := sortedKeys(properties)
	if _, ok := node["visible"]; !ok {
		node["visible"] = append([]string{}, keys...)
	}
	node["required"] = requiredKeys(properties, keys, opts.InferRequired)
}

func requiredKeys(properties map[string]any, keys []string, policy RequiredPolicy) []string {
	switch policy {
	case RequiredAll:
		return append([]string{}, keys...)
	case RequiredNonNullable:
		required := []string{}
		for _, key := range keys {
			schema, ok := properties[key].(map[string]any)
			if !ok {
				// Can't inspect it, assume the strictest reading.
				required = append(required, key)
				continue
			}
			if nullable, _ := schema["nullable"].(bool); nullable {
				continue
			}
			if _, hasDefault := schema["default"]; hasDefault {
				continue
			}
			required = append(required, key)
		}
		return required
	default:
		return []string{}
	}
}

// recurse visits every subschema position. Child schemas under properties,
// patternProperties, dependentSchemas, additionalProperties, propertyNames,
// and items sit one level deeper; combinator branches and conditionals
// constrain the same value, so they stay at the current depth.
func recurse(node map[string]any, depth int, opts Options, visited map[uintptr]struct{}) {
	for _, key := range []string{"properties", "patternProperties", "dependentSchemas"} {
		children, ok := node[key].(map[string]any)
		if !ok {
			continue
		}
		// Sorted order keeps the first-visit depth of shared nodes stable.
		for _, name := range sortedKeys(children) {
			if child, ok := children[name].(map[string]any); ok {
				normalizeNode(child, depth+1, opts, visited)
			}
		}
	}

	if child, ok := node["additionalProperties"].(map[string]any); ok {
		normalizeNode(child, depth+1, opts, visited)
	}
	if child, ok := node["propertyNames"].(map[string]any); ok {
		normalizeNode(child, depth+1, opts, visited)
	}

	switch items := node["items"].(type) {
	case map[string]any:
		normalizeNode(items, depth+1, opts, visited)
	case []any:
		for _, item := range items {
			if child, ok := item.(map[string]any); ok {
				normalizeNode(child, depth+1, opts, visited)
			}
		}
	}

	for _, key := range []string{"allOf", "oneOf", "anyOf"} {
		branches, ok := node[key].([]any)
		if !ok {
			continue
		}
		for _, branch := range branches {
			if child, ok := branch.(map[string]any); ok {
				normalizeNode(child, depth, opts, visited)
			}
		}
	}
	for _, key := range []string{"if", "then", "else", "not"} {
		if child, ok := node[key].(map[string]any); ok {
			normalizeNode(child, depth, opts, visited)
		}
	}
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
