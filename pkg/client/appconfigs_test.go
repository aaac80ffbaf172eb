package client_test

import (
	"context"
	"io"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/appforge-io/forgectl/pkg/client"
)

func TestAppConfigsCreate(t *testing.T) {
	t.Parallel()

	mux, c := setup(t)
	mux.HandleFunc("/v1/app-configurations", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)

		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		assert.JSONEq(t, `{
			"app_name": "GMAIL",
			"security_scheme": "oauth2",
			"all_functions_enabled": true
		}`, string(body))

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		writeJSON(w, `{
			"id": "cfg_1",
			"app_name": "GMAIL",
			"security_scheme": "oauth2",
			"enabled": true,
			"all_functions_enabled": true
		}`)
	})

	config, err := c.AppConfigs.Create(context.Background(), client.CreateAppConfigRequest{
		AppName:             "GMAIL",
		SecurityScheme:      "oauth2",
		AllFunctionsEnabled: true,
	})
	require.NoError(t, err)
	assert.Equal(t, "cfg_1", config.ID)
	assert.True(t, config.Enabled)
}

func TestAppConfigsUpdate(t *testing.T) {
	t.Parallel()

	mux, c := setup(t)
	mux.HandleFunc("/v1/app-configurations/GMAIL", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPatch, r.Method)

		// Only the set fields go over the wire, the rest stay untouched
		// server-side.
		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		assert.JSONEq(t, `{"enabled": false}`, string(body))

		writeJSON(w, `{"id": "cfg_1", "app_name": "GMAIL", "enabled": false}`)
	})

	enabled := false
	config, err := c.AppConfigs.Update(context.Background(), "GMAIL", client.UpdateAppConfigRequest{
		Enabled: &enabled,
	})
	require.NoError(t, err)
	assert.False(t, config.Enabled)
}

func TestAppConfigsDelete(t *testing.T) {
	t.Parallel()

	mux, c := setup(t)
	mux.HandleFunc("/v1/app-configurations/GMAIL", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		w.WriteHeader(http.StatusNoContent)
	})

	err := c.AppConfigs.Delete(context.Background(), "GMAIL")
	require.NoError(t, err)
}

func TestAppConfigsGetAndList(t *testing.T) {
	t.Parallel()

	mux, c := setup(t)
	mux.HandleFunc("/v1/app-configurations", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, `{"total": 1, "items": [{"id": "cfg_1", "app_name": "GMAIL"}]}`)
	})
	mux.HandleFunc("/v1/app-configurations/GMAIL", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, `{"id": "cfg_1", "app_name": "GMAIL", "enabled_functions": ["GMAIL__SEND_EMAIL"]}`)
	})

	page, err := c.AppConfigs.List(context.Background(), client.ListParams{})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)

	config, err := c.AppConfigs.Get(context.Background(), "GMAIL")
	require.NoError(t, err)
	assert.Equal(t, []string{"GMAIL__SEND_EMAIL"}, config.EnabledFunctions)
}
