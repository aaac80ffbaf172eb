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

func TestAPIKeysCreate(t *testing.T) {
	t.Parallel()

	mux, c := setup(t)
	mux.HandleFunc("/v1/api-keys", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)

		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		assert.JSONEq(t, `{"name": "ci"}`, string(body))

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		writeJSON(w, `{"id": "key_1", "name": "ci", "key": "api_abc123", "status": "active"}`)
	})

	key, err := c.APIKeys.Create(context.Background(), "ci")
	require.NoError(t, err)
	assert.Equal(t, "key_1", key.ID)
	assert.Equal(t, "api_abc123", key.Key, "create is the only call that returns key material")
}

func TestAPIKeysRotate(t *testing.T) {
	t.Parallel()

	mux, c := setup(t)
	mux.HandleFunc("/v1/api-keys/key_1/rotate", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		writeJSON(w, `{"id": "key_1", "name": "ci", "key": "api_def456", "status": "active"}`)
	})

	key, err := c.APIKeys.Rotate(context.Background(), "key_1")
	require.NoError(t, err)
	assert.Equal(t, "api_def456", key.Key)
}

func TestAPIKeysListOmitsKeyMaterial(t *testing.T) {
	t.Parallel()

	mux, c := setup(t)
	mux.HandleFunc("/v1/api-keys", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, `{"total": 1, "items": [{"id": "key_1", "name": "ci", "status": "active"}]}`)
	})

	page, err := c.APIKeys.List(context.Background(), client.ListParams{})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Empty(t, page.Items[0].Key)
}

func TestAPIKeysDelete(t *testing.T) {
	t.Parallel()

	mux, c := setup(t)
	mux.HandleFunc("/v1/api-keys/key_1", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		w.WriteHeader(http.StatusNoContent)
	})

	require.NoError(t, c.APIKeys.Delete(context.Background(), "key_1"))
}
