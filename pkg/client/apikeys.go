package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// APIKey authenticates a caller against the platform API.
// The key material is only populated on create and rotate responses.
type APIKey struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Key       string    `json:"key,omitempty"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// APIKeysService manages the project's API keys.
type APIKeysService struct {
	service
}

// List returns the project's API keys without key material.
func (s *APIKeysService) List(ctx context.Context, params ListParams) (*Paged[APIKey], error) {
	return get[Paged[APIKey]](ctx, s.client, "/api-keys", params.values())
}

// Create provisions a new API key. The response is the only place the key
// material appears, so callers must show or store it immediately.
func (s *APIKeysService) Create(ctx context.Context, name string) (*APIKey, error) {
	if name == "" {
		return nil, errEmptyArgument("API key name")
	}
	request := struct {
		Name string `json:"name"`
	}{Name: name}
	return do[APIKey](ctx, s.client, http.MethodPost, "/api-keys", nil, request)
}

// Rotate replaces the key material, invalidating the previous key.
func (s *APIKeysService) Rotate(ctx context.Context, id string) (*APIKey, error) {
	if id == "" {
		return nil, errEmptyArgument("API key id")
	}
	return do[APIKey](ctx, s.client, http.MethodPost, apiKeyPath(id)+"/rotate", nil, nil)
}

// Delete revokes the API key.
func (s *APIKeysService) Delete(ctx context.Context, id string) error {
	if id == "" {
		return errEmptyArgument("API key id")
	}
	_, err := do[struct{}](ctx, s.client, http.MethodDelete, apiKeyPath(id), nil, nil)
	return err
}

func apiKeyPath(id string) string {
	return fmt.Sprintf("/api-keys/%s", url.PathEscape(id))
}
