package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// DefinitionFormat selects the rendering of a function definition.
type DefinitionFormat string

const (
	// FormatRaw is the full stored record.
	FormatRaw DefinitionFormat = "raw"
	// FormatBasic is the abbreviated record for catalog display.
	FormatBasic DefinitionFormat = "basic"
	// FormatOpenAI is the OpenAI chat completions tool shape.
	FormatOpenAI DefinitionFormat = "openai"
	// FormatOpenAIResponses is the OpenAI responses API tool shape.
	FormatOpenAIResponses DefinitionFormat = "openai_responses"
	// FormatAnthropic is the Anthropic tool shape.
	FormatAnthropic DefinitionFormat = "anthropic"
)

// ValidDefinitionFormats lists the accepted --format values for definitions.
var ValidDefinitionFormats = []DefinitionFormat{
	FormatRaw, FormatBasic, FormatOpenAI, FormatOpenAIResponses, FormatAnthropic,
}

// ParseDefinitionFormat validates a definition format string.
func ParseDefinitionFormat(value string) (DefinitionFormat, error) {
	for _, format := range ValidDefinitionFormats {
		if string(format) == value {
			return format, nil
		}
	}
	return "", fmt.Errorf("invalid definition format %q (valid: raw, basic, openai, openai_responses, anthropic)", value)
}

// ProtocolData describes how the platform executes a REST function.
type ProtocolData struct {
	Method    string `json:"method"`
	Path      string `json:"path"`
	ServerURL string `json:"server_url"`
}

// FunctionUpsert is a function definition as sent to the platform.
type FunctionUpsert struct {
	Name         string         `json:"name"`
	Description  string         `json:"description"`
	Tags         []string       `json:"tags"`
	Visibility   string         `json:"visibility"`
	Active       bool           `json:"active"`
	Protocol     string         `json:"protocol"`
	ProtocolData ProtocolData   `json:"protocol_data"`
	Parameters   map[string]any `json:"parameters"`
	Response     map[string]any `json:"response,omitempty"`
}

// Function is a stored function definition with platform metadata.
type Function struct {
	Name         string         `json:"name"`
	Description  string         `json:"description"`
	Tags         []string       `json:"tags"`
	Visibility   string         `json:"visibility"`
	Active       bool           `json:"active"`
	Protocol     string         `json:"protocol"`
	ProtocolData ProtocolData   `json:"protocol_data"`
	Parameters   map[string]any `json:"parameters"`
	Response     map[string]any `json:"response,omitempty"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
}

// Upsert converts a stored function back into its upsert form, used for
// dry-run comparison.
func (f *Function) Upsert() FunctionUpsert {
	return FunctionUpsert{
		Name:         f.Name,
		Description:  f.Description,
		Tags:         f.Tags,
		Visibility:   f.Visibility,
		Active:       f.Active,
		Protocol:     f.Protocol,
		ProtocolData: f.ProtocolData,
		Parameters:   f.Parameters,
		Response:     f.Response,
	}
}

// FunctionsService manages function definitions.
type FunctionsService struct {
	service
}

// ListFunctionsParams filters the function list.
type ListFunctionsParams struct {
	ListParams
	AppNames []string
}

// List returns function definitions, optionally restricted to apps.
func (s *FunctionsService) List(ctx context.Context, params ListFunctionsParams) (*Paged[Function], error) {
	query := params.values()
	for _, name := range params.AppNames {
		query.Add("app_names", name)
	}
	return get[Paged[Function]](ctx, s.client, "/functions", query)
}

// SearchFunctionsParams drives the intent-based function search.
type SearchFunctionsParams struct {
	ListParams
	Intent   string
	AppNames []string
}

// Search performs an intent-based function search.
func (s *FunctionsService) Search(ctx context.Context, params SearchFunctionsParams) (*Paged[Function], error) {
	query := params.values()
	if params.Intent != "" {
		query.Set("intent", params.Intent)
	}
	for _, name := range params.AppNames {
		query.Add("app_names", name)
	}
	return get[Paged[Function]](ctx, s.client, "/functions/search", query)
}

// Get returns the stored function definition.
func (s *FunctionsService) Get(ctx context.Context, name string) (*Function, error) {
	if name == "" {
		return nil, errEmptyArgument("function name")
	}
	return get[Function](ctx, s.client, functionPath(name), nil)
}

// GetDefinition returns the server-rendered definition in the given format.
func (s *FunctionsService) GetDefinition(ctx context.Context, name string, format DefinitionFormat) (map[string]any, error) {
	if name == "" {
		return nil, errEmptyArgument("function name")
	}
	query := url.Values{}
	if format != "" {
		query.Set("format", string(format))
	}
	result, err := get[map[string]any](ctx, s.client, functionPath(name)+"/definition", query)
	if err != nil {
		return nil, err
	}
	return *result, nil
}

// Upsert creates or updates the given function definitions.
func (s *FunctionsService) Upsert(ctx context.Context, definitions []FunctionUpsert) ([]Function, error) {
	if len(definitions) == 0 {
		return nil, errEmptyArgument("function definitions")
	}
	result, err := do[[]Function](ctx, s.client, http.MethodPost, "/functions", nil, definitions)
	if err != nil {
		return nil, err
	}
	return *result, nil
}

func functionPath(name string) string {
	return fmt.Sprintf("/functions/%s", url.PathEscape(name))
}
