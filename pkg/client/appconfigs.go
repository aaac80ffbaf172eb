package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// AppConfig enables an app for the project and records how it authenticates.
type AppConfig struct {
	ID                      string         `json:"id"`
	ProjectID               string         `json:"project_id"`
	AppName                 string         `json:"app_name"`
	SecurityScheme          string         `json:"security_scheme"`
	SecuritySchemeOverrides map[string]any `json:"security_scheme_overrides,omitempty"`
	Enabled                 bool           `json:"enabled"`
	AllFunctionsEnabled     bool           `json:"all_functions_enabled"`
	EnabledFunctions        []string       `json:"enabled_functions"`
	CreatedAt               time.Time      `json:"created_at"`
	UpdatedAt               time.Time      `json:"updated_at"`
}

// CreateAppConfigRequest is the payload for enabling an app.
type CreateAppConfigRequest struct {
	AppName                 string         `json:"app_name"`
	SecurityScheme          string         `json:"security_scheme"`
	SecuritySchemeOverrides map[string]any `json:"security_scheme_overrides,omitempty"`
	AllFunctionsEnabled     bool           `json:"all_functions_enabled"`
	EnabledFunctions        []string       `json:"enabled_functions,omitempty"`
}

// UpdateAppConfigRequest carries the mutable app configuration fields.
// Nil pointers leave the server-side value unchanged.
type UpdateAppConfigRequest struct {
	SecurityScheme          *string        `json:"security_scheme,omitempty"`
	SecuritySchemeOverrides map[string]any `json:"security_scheme_overrides,omitempty"`
	Enabled                 *bool          `json:"enabled,omitempty"`
	AllFunctionsEnabled     *bool          `json:"all_functions_enabled,omitempty"`
	EnabledFunctions        []string       `json:"enabled_functions,omitempty"`
}

// AppConfigsService manages per-app configurations.
type AppConfigsService struct {
	service
}

// List returns the project's app configurations.
func (s *AppConfigsService) List(ctx context.Context, params ListParams) (*Paged[AppConfig], error) {
	return get[Paged[AppConfig]](ctx, s.client, "/app-configurations", params.values())
}

// Get returns the configuration for the named app.
func (s *AppConfigsService) Get(ctx context.Context, appName string) (*AppConfig, error) {
	if appName == "" {
		return nil, errEmptyArgument("app name")
	}
	return get[AppConfig](ctx, s.client, appConfigPath(appName), nil)
}

// Create enables an app for the project.
func (s *AppConfigsService) Create(ctx context.Context, request CreateAppConfigRequest) (*AppConfig, error) {
	if request.AppName == "" {
		return nil, errEmptyArgument("app name")
	}
	return do[AppConfig](ctx, s.client, http.MethodPost, "/app-configurations", nil, request)
}

// Update patches the configuration for the named app.
func (s *AppConfigsService) Update(ctx context.Context, appName string, request UpdateAppConfigRequest) (*AppConfig, error) {
	if appName == "" {
		return nil, errEmptyArgument("app name")
	}
	return do[AppConfig](ctx, s.client, http.MethodPatch, appConfigPath(appName), nil, request)
}

// Delete removes the app configuration. The platform cascades the delete to
// linked accounts and MCP servers that reference it.
func (s *AppConfigsService) Delete(ctx context.Context, appName string) error {
	if appName == "" {
		return errEmptyArgument("app name")
	}
	_, err := do[struct{}](ctx, s.client, http.MethodDelete, appConfigPath(appName), nil, nil)
	return err
}

func appConfigPath(appName string) string {
	return fmt.Sprintf("/app-configurations/%s", url.PathEscape(appName))
}
