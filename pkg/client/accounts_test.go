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

func TestLinkedAccountsList(t *testing.T) {
	t.Parallel()

	mux, c := setup(t)
	mux.HandleFunc("/v1/linked-accounts", func(w http.ResponseWriter, r *http.Request) {
		query := r.URL.Query()
		assert.Equal(t, "GMAIL", query.Get("app_name"))
		assert.Equal(t, "user-42", query.Get("linked_account_owner_id"))
		writeJSON(w, `{
			"total": 1,
			"items": [
				{
					"id": "la_1",
					"app_name": "GMAIL",
					"linked_account_owner_id": "user-42",
					"security_scheme": "oauth2",
					"enabled": true,
					"last_used_at": "2024-01-15T10:00:00Z"
				}
			]
		}`)
	})

	page, err := c.Accounts.List(context.Background(), client.ListLinkedAccountsParams{
		AppName:              "GMAIL",
		LinkedAccountOwnerID: "user-42",
	})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	account := page.Items[0]
	assert.Equal(t, "la_1", account.ID)
	require.NotNil(t, account.LastUsedAt)
	assert.Equal(t, 2024, account.LastUsedAt.Year())
}

func TestLinkedAccountsSetEnabled(t *testing.T) {
	t.Parallel()

	mux, c := setup(t)
	mux.HandleFunc("/v1/linked-accounts/la_1", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPatch, r.Method)

		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		assert.JSONEq(t, `{"enabled": false}`, string(body))

		writeJSON(w, `{"id": "la_1", "app_name": "GMAIL", "enabled": false}`)
	})

	account, err := c.Accounts.SetEnabled(context.Background(), "la_1", false)
	require.NoError(t, err)
	assert.False(t, account.Enabled)
}

func TestLinkedAccountsDelete(t *testing.T) {
	t.Parallel()

	mux, c := setup(t)
	mux.HandleFunc("/v1/linked-accounts/la_1", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		w.WriteHeader(http.StatusNoContent)
	})

	require.NoError(t, c.Accounts.Delete(context.Background(), "la_1"))
}
