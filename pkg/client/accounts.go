package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// LinkedAccount connects an end user's credentials to an enabled app.
type LinkedAccount struct {
	ID                   string     `json:"id"`
	ProjectID            string     `json:"project_id"`
	AppName              string     `json:"app_name"`
	LinkedAccountOwnerID string     `json:"linked_account_owner_id"`
	SecurityScheme       string     `json:"security_scheme"`
	Enabled              bool       `json:"enabled"`
	CreatedAt            time.Time  `json:"created_at"`
	UpdatedAt            time.Time  `json:"updated_at"`
	LastUsedAt           *time.Time `json:"last_used_at,omitempty"`
}

// LinkedAccountsService manages end-user account links.
type LinkedAccountsService struct {
	service
}

// ListLinkedAccountsParams filters the linked account list.
type ListLinkedAccountsParams struct {
	ListParams
	AppName              string
	LinkedAccountOwnerID string
}

// List returns linked accounts matching the params.
func (s *LinkedAccountsService) List(ctx context.Context, params ListLinkedAccountsParams) (*Paged[LinkedAccount], error) {
	query := params.values()
	if params.AppName != "" {
		query.Set("app_name", params.AppName)
	}
	if params.LinkedAccountOwnerID != "" {
		query.Set("linked_account_owner_id", params.LinkedAccountOwnerID)
	}
	return get[Paged[LinkedAccount]](ctx, s.client, "/linked-accounts", query)
}

// Get returns the linked account with the given id.
func (s *LinkedAccountsService) Get(ctx context.Context, id string) (*LinkedAccount, error) {
	if id == "" {
		return nil, errEmptyArgument("linked account id")
	}
	return get[LinkedAccount](ctx, s.client, linkedAccountPath(id), nil)
}

// SetEnabled enables or disables the linked account.
func (s *LinkedAccountsService) SetEnabled(ctx context.Context, id string, enabled bool) (*LinkedAccount, error) {
	if id == "" {
		return nil, errEmptyArgument("linked account id")
	}
	request := struct {
		Enabled bool `json:"enabled"`
	}{Enabled: enabled}
	return do[LinkedAccount](ctx, s.client, http.MethodPatch, linkedAccountPath(id), nil, request)
}

// Delete removes the linked account and its stored credentials.
func (s *LinkedAccountsService) Delete(ctx context.Context, id string) error {
	if id == "" {
		return errEmptyArgument("linked account id")
	}
	_, err := do[struct{}](ctx, s.client, http.MethodDelete, linkedAccountPath(id), nil, nil)
	return err
}

func linkedAccountPath(id string) string {
	return fmt.Sprintf("/linked-accounts/%s", url.PathEscape(id))
}
