package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// MCPServer is a platform-hosted MCP endpoint exposing selected functions
// as tools.
type MCPServer struct {
	ID           string     `json:"id"`
	Name         string     `json:"name"`
	MCPLink      string     `json:"mcp_link"`
	AllowedTools []string   `json:"allowed_tools"`
	AppConfigIDs []string   `json:"app_config_ids"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
	LastUsedAt   *time.Time `json:"last_used_at,omitempty"`
}

// CreateMCPServerRequest is the payload for creating an MCP server.
type CreateMCPServerRequest struct {
	Name         string   `json:"name"`
	AppConfigIDs []string `json:"app_config_ids"`
	AllowedTools []string `json:"allowed_tools,omitempty"`
}

// MCPServersService manages platform-hosted MCP servers.
type MCPServersService struct {
	service
}

// List returns the project's MCP servers.
func (s *MCPServersService) List(ctx context.Context, params ListParams) (*Paged[MCPServer], error) {
	return get[Paged[MCPServer]](ctx, s.client, "/mcp-servers", params.values())
}

// Get returns the MCP server with the given id.
func (s *MCPServersService) Get(ctx context.Context, id string) (*MCPServer, error) {
	if id == "" {
		return nil, errEmptyArgument("MCP server id")
	}
	return get[MCPServer](ctx, s.client, mcpServerPath(id), nil)
}

// Create provisions a new MCP server over the given app configurations.
func (s *MCPServersService) Create(ctx context.Context, request CreateMCPServerRequest) (*MCPServer, error) {
	if request.Name == "" {
		return nil, errEmptyArgument("MCP server name")
	}
	if len(request.AppConfigIDs) == 0 {
		return nil, errEmptyArgument("app config ids")
	}
	return do[MCPServer](ctx, s.client, http.MethodPost, "/mcp-servers", nil, request)
}

// UpdateTools replaces the server's allowed tool list.
func (s *MCPServersService) UpdateTools(ctx context.Context, id string, allowedTools []string) (*MCPServer, error) {
	if id == "" {
		return nil, errEmptyArgument("MCP server id")
	}
	request := struct {
		AllowedTools []string `json:"allowed_tools"`
	}{AllowedTools: allowedTools}
	return do[MCPServer](ctx, s.client, http.MethodPut, mcpServerPath(id)+"/tools", nil, request)
}

// RegenerateLink replaces the server's MCP link, invalidating the old one.
func (s *MCPServersService) RegenerateLink(ctx context.Context, id string) (*MCPServer, error) {
	if id == "" {
		return nil, errEmptyArgument("MCP server id")
	}
	return do[MCPServer](ctx, s.client, http.MethodPost, mcpServerPath(id)+"/regenerate-link", nil, nil)
}

// Delete removes the MCP server.
func (s *MCPServersService) Delete(ctx context.Context, id string) error {
	if id == "" {
		return errEmptyArgument("MCP server id")
	}
	_, err := do[struct{}](ctx, s.client, http.MethodDelete, mcpServerPath(id), nil, nil)
	return err
}

func mcpServerPath(id string) string {
	return fmt.Sprintf("/mcp-servers/%s", url.PathEscape(id))
}
