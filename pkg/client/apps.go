package client

import (
	"context"
	"fmt"
	"net/url"
	"time"
)

// App is a catalog entry for an integrated application.
type App struct {
	Name            string    `json:"name"`
	DisplayName     string    `json:"display_name"`
	Provider        string    `json:"provider"`
	Version         string    `json:"version"`
	Description     string    `json:"description"`
	Logo            string    `json:"logo,omitempty"`
	Categories      []string  `json:"categories"`
	Visibility      string    `json:"visibility"`
	Active          bool      `json:"active"`
	SecuritySchemes []string  `json:"security_schemes"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// AppDetails is an app with its function summaries embedded.
type AppDetails struct {
	App
	Functions []FunctionSummary `json:"functions"`
}

// FunctionSummary is the abbreviated function record embedded in app details.
type FunctionSummary struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Tags        []string `json:"tags"`
}

// AppsService manages the app catalog.
type AppsService struct {
	service
}

// ListAppsParams filters the app list.
type ListAppsParams struct {
	ListParams
	// AppNames restricts the result to the named apps.
	AppNames []string
	// ActiveOnly restricts the result to active apps.
	ActiveOnly bool
}

// List returns the app catalog page matching the params.
func (s *AppsService) List(ctx context.Context, params ListAppsParams) (*Paged[App], error) {
	query := params.values()
	for _, name := range params.AppNames {
		query.Add("app_names", name)
	}
	if params.ActiveOnly {
		query.Set("active", "true")
	}
	return get[Paged[App]](ctx, s.client, "/apps", query)
}

// SearchAppsParams drives the intent-based catalog search.
type SearchAppsParams struct {
	ListParams
	Intent     string
	Categories []string
}

// Search performs an intent-based catalog search.
func (s *AppsService) Search(ctx context.Context, params SearchAppsParams) (*Paged[App], error) {
	query := params.values()
	if params.Intent != "" {
		query.Set("intent", params.Intent)
	}
	for _, category := range params.Categories {
		query.Add("categories", category)
	}
	return get[Paged[App]](ctx, s.client, "/apps/search", query)
}

// Get returns an app with its function summaries.
func (s *AppsService) Get(ctx context.Context, name string) (*AppDetails, error) {
	if name == "" {
		return nil, errEmptyArgument("app name")
	}
	return get[AppDetails](ctx, s.client, fmt.Sprintf("/apps/%s", url.PathEscape(name)), nil)
}
