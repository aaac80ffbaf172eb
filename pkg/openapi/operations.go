package openapi

import (
	"sort"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
)

// Parameter buckets appear in the composite schema in this order.
var parameterLocations = []string{
	openapi3.ParameterInPath,
	openapi3.ParameterInQuery,
	openapi3.ParameterInHeader,
	openapi3.ParameterInCookie,
}

// mergeParameters combines path-level and operation-level parameters.
// An operation-level parameter replaces a path-level one with the same
// location and name; everything else keeps its document order, path level
// first.
func mergeParameters(pathLevel, operationLevel openapi3.Parameters) []*openapi3.Parameter {
	type identity struct {
		in   string
		name string
	}

	overridden := make(map[identity]struct{}, len(operationLevel))
	for _, ref := range operationLevel {
		if ref != nil && ref.Value != nil {
			overridden[identity{ref.Value.In, ref.Value.Name}] = struct{}{}
		}
	}

	merged := make([]*openapi3.Parameter, 0, len(pathLevel)+len(operationLevel))
	for _, ref := range pathLevel {
		if ref == nil || ref.Value == nil {
			continue
		}
		if _, ok := overridden[identity{ref.Value.In, ref.Value.Name}]; ok {
			continue
		}
		merged = append(merged, ref.Value)
	}
	for _, ref := range operationLevel {
		if ref != nil && ref.Value != nil {
			merged = append(merged, ref.Value)
		}
	}
	return merged
}

type parameterBucket struct {
	properties map[string]any
	required   []string
	visible    []string
}

// groupParameters builds the composite parameters schema for an operation:
// one object property per parameter location that has members, plus a body
// property for the first JSON-like request body media type. The composite
// marks a bucket required when any of its members is required; the body is
// required when the request body says so.
func groupParameters(parameters []*openapi3.Parameter, requestBody *openapi3.RequestBody) map[string]any {
	buckets := map[string]*parameterBucket{}
	for _, parameter := range parameters {
		if parameter.Name == "" || parameter.In == "" {
			continue
		}
		bucket := buckets[parameter.In]
		if bucket == nil {
			bucket = &parameterBucket{properties: map[string]any{}}
			buckets[parameter.In] = bucket
		}
		if _, duplicate := bucket.properties[parameter.Name]; duplicate {
			continue
		}

		schema := SchemaToMap(parameter.Schema)
		if parameter.Description != "" {
			if _, ok := schema["description"]; !ok {
				schema["description"] = parameter.Description
			}
		}
		bucket.properties[parameter.Name] = schema
		bucket.visible = append(bucket.visible, parameter.Name)
		if parameter.Required {
			bucket.required = append(bucket.required, parameter.Name)
		}
	}

	compositeProperties := map[string]any{}
	compositeRequired := []string{}
	compositeVisible := []string{}

	for _, location := range parameterLocations {
		bucket := buckets[location]
		if bucket == nil {
			continue
		}
		required := bucket.required
		if required == nil {
			required = []string{}
		}
		compositeProperties[location] = map[string]any{
			"type":                 "object",
			"properties":           bucket.properties,
			"required":             required,
			"visible":              bucket.visible,
			"additionalProperties": false,
		}
		compositeVisible = append(compositeVisible, location)
		if len(required) > 0 {
			compositeRequired = append(compositeRequired, location)
		}
	}

	if body, required, ok := requestBodySchema(requestBody); ok {
		compositeProperties["body"] = body
		compositeVisible = append(compositeVisible, "body")
		if required {
			compositeRequired = append(compositeRequired, "body")
		}
	}

	return map[string]any{
		"type":                 "object",
		"properties":           compositeProperties,
		"required":             compositeRequired,
		"visible":              compositeVisible,
		"additionalProperties": false,
	}
}

// requestBodySchema extracts the schema of the first JSON-like request body
// media type. The third return value reports whether a body bucket should
// exist at all.
func requestBodySchema(requestBody *openapi3.RequestBody) (map[string]any, bool, bool) {
	if requestBody == nil {
		return nil, false, false
	}
	media := firstJSONMedia(requestBody.Content)
	if media == nil {
		return nil, false, false
	}
	return SchemaToMap(media.Schema), requestBody.Required, true
}

// firstJSONMedia picks application/json when present, then scans the
// remaining media types in sorted order so conversion output is stable.
func firstJSONMedia(content openapi3.Content) *openapi3.MediaType {
	if media, ok := content["application/json"]; ok {
		return media
	}
	names := make([]string, 0, len(content))
	for name := range content {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if jsonLikeMedia(name) {
			return content[name]
		}
	}
	return nil
}

// jsonLikeMedia reports whether a media type carries JSON, ignoring
// parameters such as charset.
func jsonLikeMedia(mediaType string) bool {
	mediaType = strings.ToLower(strings.TrimSpace(mediaType))
	if i := strings.Index(mediaType, ";"); i >= 0 {
		mediaType = strings.TrimSpace(mediaType[:i])
	}
	return mediaType == "application/json" || strings.HasSuffix(mediaType, "+json") || mediaType == "*/*"
}

// responseSchema selects the response schema for an operation: status codes
// 200, 201, 202 in that order, then any other 2xx ascending, then default.
// The first candidate with a JSON-like media type wins; operations with no
// such response yield nil.
func responseSchema(responses *openapi3.Responses) map[string]any {
	if responses == nil {
		return nil
	}
	byStatus := responses.Map()
	for _, status := range responseStatusOrder(byStatus) {
		ref := byStatus[status]
		if ref == nil || ref.Value == nil {
			continue
		}
		if media := firstJSONMedia(ref.Value.Content); media != nil {
			return SchemaToMap(media.Schema)
		}
	}
	return nil
}

func responseStatusOrder(byStatus map[string]*openapi3.ResponseRef) []string {
	order := make([]string, 0, len(byStatus))
	preferred := map[string]struct{}{}
	for _, status := range []string{"200", "201", "202"} {
		preferred[status] = struct{}{}
		if _, ok := byStatus[status]; ok {
			order = append(order, status)
		}
	}

	other := []string{}
	for status := range byStatus {
		if _, ok := preferred[status]; ok {
			continue
		}
		if strings.HasPrefix(status, "2") && len(status) == 3 {
			other = append(other, status)
		}
	}
	sort.Strings(other)
	order = append(order, other...)

	if _, ok := byStatus["default"]; ok {
		order = append(order, "default")
	}
	return order
}
