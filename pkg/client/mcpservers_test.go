package client_test

import (
	"context"
	"io"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/appforge-io/forgectl/pkg/client"
	"github.com/appforge-io/forgectl/pkg/errors"
)

func TestMCPServersCreate(t *testing.T) {
	t.Parallel()

	mux, c := setup(t)
	mux.HandleFunc("/v1/mcp-servers", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)

		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		assert.JSONEq(t, `{
			"name": "support-bot",
			"app_config_ids": ["cfg_1", "cfg_2"],
			"allowed_tools": ["GMAIL__SEND_EMAIL"]
		}`, string(body))

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		writeJSON(w, `{
			"id": "mcp_1",
			"name": "support-bot",
			"mcp_link": "https://mcp.appforge.io/s/abc",
			"allowed_tools": ["GMAIL__SEND_EMAIL"],
			"app_config_ids": ["cfg_1", "cfg_2"]
		}`)
	})

	server, err := c.MCPServers.Create(context.Background(), client.CreateMCPServerRequest{
		Name:         "support-bot",
		AppConfigIDs: []string{"cfg_1", "cfg_2"},
		AllowedTools: []string{"GMAIL__SEND_EMAIL"},
	})
	require.NoError(t, err)
	assert.Equal(t, "mcp_1", server.ID)
	assert.NotEmpty(t, server.MCPLink)
}

func TestMCPServersCreate_Validation(t *testing.T) {
	t.Parallel()

	_, c := setup(t)

	_, err := c.MCPServers.Create(context.Background(), client.CreateMCPServerRequest{
		AppConfigIDs: []string{"cfg_1"},
	})
	require.Error(t, err)
	assert.True(t, errors.IsInvalidArgument(err), "expected invalid argument, got %v", err)

	_, err = c.MCPServers.Create(context.Background(), client.CreateMCPServerRequest{
		Name: "support-bot",
	})
	require.Error(t, err)
	assert.True(t, errors.IsInvalidArgument(err), "expected invalid argument, got %v", err)
}

func TestMCPServersUpdateTools(t *testing.T) {
	t.Parallel()

	mux, c := setup(t)
	mux.HandleFunc("/v1/mcp-servers/mcp_1/tools", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)

		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		assert.JSONEq(t, `{"allowed_tools": ["GMAIL__SEND_EMAIL", "SLACK__POST_MESSAGE"]}`, string(body))

		writeJSON(w, `{"id": "mcp_1", "allowed_tools": ["GMAIL__SEND_EMAIL", "SLACK__POST_MESSAGE"]}`)
	})

	server, err := c.MCPServers.UpdateTools(context.Background(), "mcp_1",
		[]string{"GMAIL__SEND_EMAIL", "SLACK__POST_MESSAGE"})
	require.NoError(t, err)
	assert.Len(t, server.AllowedTools, 2)
}

func TestMCPServersRegenerateLink(t *testing.T) {
	t.Parallel()

	mux, c := setup(t)
	mux.HandleFunc("/v1/mcp-servers/mcp_1/regenerate-link", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		writeJSON(w, `{"id": "mcp_1", "mcp_link": "https://mcp.appforge.io/s/fresh"}`)
	})

	server, err := c.MCPServers.RegenerateLink(context.Background(), "mcp_1")
	require.NoError(t, err)
	assert.Equal(t, "https://mcp.appforge.io/s/fresh", server.MCPLink)
}
