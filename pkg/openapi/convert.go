package openapi

import (
	"fmt"
	"net/http"
	"sort"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/appforge-io/forgectl/pkg/client"
	forgeerrors "github.com/appforge-io/forgectl/pkg/errors"
)

// maxDescriptionSize caps a generated function description, in bytes.
const maxDescriptionSize = 1024

// Operations are emitted per path in this method order.
var methodOrder = []string{
	http.MethodGet,
	http.MethodPost,
	http.MethodPut,
	http.MethodPatch,
	http.MethodDelete,
	http.MethodHead,
	http.MethodOptions,
	http.MethodTrace,
}

// ConvertOptions configure OpenAPI-to-function conversion.
type ConvertOptions struct {
	// AppName is the SCREAMING_SNAKE app the generated functions belong to.
	AppName string

	// ServerURL overrides the document's first server URL.
	ServerURL string

	// Normalize options applied to every parameter and response schema.
	Normalize Options
}

// Convert flattens every operation in the document into a function
// definition ready for upload. Paths are visited in sorted order and methods
// in a fixed order, so output is stable for a given document.
func Convert(doc *openapi3.T, opts ConvertOptions) ([]client.FunctionUpsert, error) {
	if doc == nil {
		return nil, forgeerrors.NewInvalidArgumentError("OpenAPI document must not be nil", nil)
	}
	if !client.IsValidAppName(opts.AppName) {
		return nil, forgeerrors.NewInvalidArgumentError(
			fmt.Sprintf("invalid app name %q, want SCREAMING_SNAKE_CASE without a double underscore", opts.AppName), nil)
	}

	serverURL := opts.ServerURL
	if serverURL == "" && len(doc.Servers) > 0 {
		serverURL = doc.Servers[0].URL
	}

	definitions := []client.FunctionUpsert{}
	if doc.Paths == nil {
		return definitions, nil
	}

	pathsByName := doc.Paths.Map()
	pathNames := make([]string, 0, len(pathsByName))
	for name := range pathsByName {
		pathNames = append(pathNames, name)
	}
	sort.Strings(pathNames)

	// Function name → originating operation, for duplicate reporting.
	seen := map[string]string{}

	for _, pathName := range pathNames {
		pathItem := pathsByName[pathName]
		if pathItem == nil {
			continue
		}
		for _, method := range methodOrder {
			operation := operationForMethod(pathItem, method)
			if operation == nil {
				continue
			}

			name := functionName(opts.AppName, method, pathName, operation.OperationID)
			origin := fmt.Sprintf("%s %s", method, pathName)
			if previous, duplicate := seen[name]; duplicate {
				return nil, forgeerrors.NewValidationError(
					fmt.Sprintf("operations %s and %s both map to function name %s", previous, origin, name), nil)
			}
			seen[name] = origin

			definitions = append(definitions, convertOperation(
				name, method, pathName, serverURL, pathItem, operation, opts.Normalize))
		}
	}
	return definitions, nil
}

func convertOperation(
	name, method, path, serverURL string,
	pathItem *openapi3.PathItem,
	operation *openapi3.Operation,
	normalizeOpts Options,
) client.FunctionUpsert {
	parameters := mergeParameters(pathItem.Parameters, operation.Parameters)
	var requestBody *openapi3.RequestBody
	if operation.RequestBody != nil {
		requestBody = operation.RequestBody.Value
	}

	composite := groupParameters(parameters, requestBody)
	normalizeComposite(composite, normalizeOpts)

	response := responseSchema(operation.Responses)
	if response != nil {
		Normalize(response, normalizeOpts)
	}

	description := operation.Summary
	if description == "" {
		description = operation.Description
	}

	tags := operation.Tags
	if tags == nil {
		tags = []string{}
	}

	return client.FunctionUpsert{
		Name:        name,
		Description: client.TruncateIfTooLarge(description, maxDescriptionSize),
		Tags:        tags,
		Visibility:  "public",
		Active:      true,
		Protocol:    "rest",
		ProtocolData: client.ProtocolData{
			Method:    method,
			Path:      path,
			ServerURL: serverURL,
		},
		Parameters: composite,
		Response:   response,
	}
}

// normalizeComposite normalizes the document-derived parts of the composite
// parameters schema. The composite and its location buckets are built
// complete by the grouper, with required lists reflecting parameter
// requiredness rather than a policy, so only parameter schemas and the body
// bucket run through Normalize.
func normalizeComposite(composite map[string]any, opts Options) {
	properties, ok := composite["properties"].(map[string]any)
	if !ok {
		return
	}
	for location, value := range properties {
		bucket, ok := value.(map[string]any)
		if !ok {
			continue
		}
		if location == "body" {
			Normalize(bucket, opts)
			continue
		}
		members, ok := bucket["properties"].(map[string]any)
		if !ok {
			continue
		}
		for _, memberValue := range members {
			if member, ok := memberValue.(map[string]any); ok {
				Normalize(member, opts)
			}
		}
	}
}

// functionName derives APP__OPERATION from the operationId, falling back to
// the method and path when the document omits one.
func functionName(appName, method, path, operationID string) string {
	part := operationID
	if part == "" {
		part = method + "_" + path
	}
	return client.BuildFunctionName(appName, client.ToScreamingSnake(part))
}

func operationForMethod(pathItem *openapi3.PathItem, method string) *openapi3.Operation {
	switch method {
	case http.MethodGet:
		return pathItem.Get
	case http.MethodPost:
		return pathItem.Post
	case http.MethodPut:
		return pathItem.Put
	case http.MethodPatch:
		return pathItem.Patch
	case http.MethodDelete:
		return pathItem.Delete
	case http.MethodHead:
		return pathItem.Head
	case http.MethodOptions:
		return pathItem.Options
	case http.MethodTrace:
		return pathItem.Trace
	default:
		return nil
	}
}
