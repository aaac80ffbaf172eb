// Package client implements the typed REST client for the AppForge platform API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/appforge-io/forgectl/pkg/errors"
	"github.com/appforge-io/forgectl/pkg/networking"
)

const (
	// APIKeyEnvVar overrides the stored API key when set.
	APIKeyEnvVar = "FORGECTL_API_KEY"

	// APIKeySecretName is the name under which `forgectl auth login`
	// stores the API key in the secrets provider.
	APIKeySecretName = "api_key"

	// apiPrefix is the version prefix for all platform API paths.
	apiPrefix = "/v1"
)

// Client talks to the AppForge platform API. Construct it with New and use
// the per-resource services hanging off it.
type Client struct {
	baseURL string
	http    networking.HTTPClient

	Apps       *AppsService
	AppConfigs *AppConfigsService
	Accounts   *LinkedAccountsService
	Functions  *FunctionsService
	APIKeys    *APIKeysService
	MCPServers *MCPServersService
	Logs       *ExecutionLogsService
	Analytics  *AnalyticsService
	Project    *ProjectService
}

// service shares the client between the per-resource services.
type service struct {
	client *Client
}

// Option customizes the client.
type Option func(*options)

type options struct {
	httpClient    networking.HTTPClient
	allowInsecure bool
}

// WithHTTPClient overrides the HTTP client. Used by tests.
func WithHTTPClient(httpClient networking.HTTPClient) Option {
	return func(o *options) {
		o.httpClient = httpClient
	}
}

// WithAllowInsecure allows plain HTTP endpoints.
func WithAllowInsecure(allow bool) Option {
	return func(o *options) {
		o.allowInsecure = allow
	}
}

// New creates a platform API client for the given endpoint. The API key is
// attached to every request as the X-API-KEY header.
func New(endpoint, apiKey string, opts ...Option) (*Client, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	if endpoint == "" {
		return nil, errors.NewInvalidArgumentError("API endpoint cannot be empty", nil)
	}

	httpClient := o.httpClient
	if httpClient == nil {
		built, err := networking.NewHttpClientBuilder().
			WithAPIKey(apiKey).
			WithAllowInsecure(o.allowInsecure).
			WithPrivateIPs(true).
			Build()
		if err != nil {
			return nil, fmt.Errorf("failed to build HTTP client: %w", err)
		}
		httpClient = built
	}

	c := &Client{
		baseURL: strings.TrimRight(endpoint, "/"),
		http:    httpClient,
	}

	c.Apps = &AppsService{service{c}}
	c.AppConfigs = &AppConfigsService{service{c}}
	c.Accounts = &LinkedAccountsService{service{c}}
	c.Functions = &FunctionsService{service{c}}
	c.APIKeys = &APIKeysService{service{c}}
	c.MCPServers = &MCPServersService{service{c}}
	c.Logs = &ExecutionLogsService{service{c}}
	c.Analytics = &AnalyticsService{service{c}}
	c.Project = &ProjectService{service{c}}

	return c, nil
}

// url joins the base URL, the /v1 prefix, the path and the query string.
func (c *Client) url(path string, query url.Values) string {
	requestURL := c.baseURL + apiPrefix + path
	if len(query) > 0 {
		requestURL += "?" + query.Encode()
	}
	return requestURL
}

// Paged is the envelope for paginated list responses.
type Paged[T any] struct {
	Total int `json:"total"`
	Items []T `json:"items"`
}

// ListParams are the common pagination parameters.
type ListParams struct {
	Offset int
	Limit  int
}

// values encodes the pagination parameters, omitting unset ones.
func (p ListParams) values() url.Values {
	query := url.Values{}
	if p.Offset > 0 {
		query.Set("offset", strconv.Itoa(p.Offset))
	}
	if p.Limit > 0 {
		query.Set("limit", strconv.Itoa(p.Limit))
	}
	return query
}

// get performs a GET request and decodes the JSON response into T.
func get[T any](ctx context.Context, c *Client, path string, query url.Values) (*T, error) {
	return do[T](ctx, c, http.MethodGet, path, query, nil)
}

// do performs a request with an optional JSON body and decodes the response.
// CRUD calls are never retried, failures surface immediately as typed errors.
func do[T any](ctx context.Context, c *Client, method, path string, query url.Values, body any) (*T, error) {
	requestURL := c.url(path, query)

	opts := []networking.FetchOption{
		networking.WithMethod(method),
		networking.WithErrorHandler(decodeAPIError),
	}
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request body: %w", err)
		}
		opts = append(opts,
			networking.WithBody(bytes.NewReader(encoded)),
			networking.WithHeader("Content-Type", networking.ContentTypeJSON),
		)
	}

	result, err := networking.FetchJSON[T](ctx, c.http, requestURL, opts...)
	if err != nil {
		return nil, err
	}
	return &result.Data, nil
}

// errEmptyArgument reports a missing required argument without a round trip.
func errEmptyArgument(what string) error {
	return errors.NewInvalidArgumentError(what+" cannot be empty", nil)
}

// decodeAPIError maps the platform's JSON error envelope onto typed errors.
// The envelope carries the message under "error" or "detail".
func decodeAPIError(resp *http.Response, body []byte) error {
	message := gjson.GetBytes(body, "error").String()
	if message == "" {
		message = gjson.GetBytes(body, "detail").String()
	}
	if message == "" {
		message = strings.TrimSpace(string(body))
	}
	if message == "" {
		message = http.StatusText(resp.StatusCode)
	}

	switch resp.StatusCode {
	case http.StatusBadRequest:
		return errors.NewInvalidArgumentError(message, nil)
	case http.StatusUnauthorized, http.StatusForbidden:
		return errors.NewUnauthorizedError(message, nil)
	case http.StatusNotFound:
		return errors.NewNotFoundError(message, nil)
	case http.StatusConflict:
		return errors.NewAlreadyExistsError(message, nil)
	case http.StatusUnprocessableEntity:
		return errors.NewValidationError(message, nil)
	case http.StatusTooManyRequests:
		return errors.NewQuotaExceededError(message, nil)
	case http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return errors.NewUnavailableError(message, nil)
	default:
		return errors.NewInternalError(fmt.Sprintf("unexpected status %d: %s", resp.StatusCode, message), nil)
	}
}
