package secrets

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNoneManager_GetSecret(t *testing.T) {
	t.Parallel()
	manager, err := NewNoneManager()
	require.NoError(t, err)

	ctx := context.Background()

	secret, err := manager.GetSecret(ctx, "test-secret")
	require.Error(t, err)
	assert.Empty(t, secret)
	assert.ErrorIs(t, err, ErrSecretNotFound)
	assert.Contains(t, err.Error(), "none provider doesn't store secrets")

	_, err = manager.GetSecret(ctx, "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "secret name cannot be empty")
}

func TestNoneManager_SetSecret(t *testing.T) {
	t.Parallel()
	manager, err := NewNoneManager()
	require.NoError(t, err)

	ctx := context.Background()

	err = manager.SetSecret(ctx, "test-secret", "test-value")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "none provider doesn't support storing secrets")

	err = manager.SetSecret(ctx, "", "test-value")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "secret name cannot be empty")
}

func TestNoneManager_DeleteSecret(t *testing.T) {
	t.Parallel()
	manager, err := NewNoneManager()
	require.NoError(t, err)

	ctx := context.Background()

	err = manager.DeleteSecret(ctx, "test-secret")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cannot delete non-existent secret: test-secret")

	err = manager.DeleteSecret(ctx, "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "secret name cannot be empty")
}

func TestNoneManager_ListSecrets(t *testing.T) {
	t.Parallel()
	manager, err := NewNoneManager()
	require.NoError(t, err)

	descriptions, err := manager.ListSecrets(context.Background())
	require.NoError(t, err)
	assert.Empty(t, descriptions)
}

func TestNoneManager_CleanupAndCapabilities(t *testing.T) {
	t.Parallel()
	manager, err := NewNoneManager()
	require.NoError(t, err)

	assert.NoError(t, manager.Cleanup())

	caps := manager.Capabilities()
	assert.False(t, caps.CanRead)
	assert.False(t, caps.CanWrite)
	assert.True(t, caps.CanList)
	assert.Equal(t, "custom", caps.String())
}
