package secrets

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubProvider is a minimal in-memory provider for fallback tests.
type stubProvider struct {
	values map[string]string
	getErr error
}

func (s *stubProvider) GetSecret(_ context.Context, name string) (string, error) {
	if s.getErr != nil {
		return "", s.getErr
	}
	value, ok := s.values[name]
	if !ok {
		return "", ErrSecretNotFound
	}
	return value, nil
}

func (s *stubProvider) SetSecret(_ context.Context, name, value string) error {
	s.values[name] = value
	return nil
}

func (s *stubProvider) DeleteSecret(_ context.Context, name string) error {
	delete(s.values, name)
	return nil
}

func (s *stubProvider) ListSecrets(_ context.Context) ([]SecretDescription, error) {
	var descriptions []SecretDescription
	for key := range s.values {
		descriptions = append(descriptions, SecretDescription{Key: key})
	}
	return descriptions, nil
}

func (*stubProvider) Cleanup() error { return nil }

func (*stubProvider) Capabilities() ProviderCapabilities {
	return ProviderCapabilities{CanRead: true, CanWrite: true, CanDelete: true, CanList: true, CanCleanup: true}
}

func TestFallbackProvider_PrimaryWins(t *testing.T) { //nolint:paralleltest // uses t.Setenv
	primary := &stubProvider{values: map[string]string{"api_key": "from_primary"}}
	provider := NewFallbackProvider(primary)

	t.Setenv(EnvVarPrefix+"API_KEY", "from_env")

	value, err := provider.GetSecret(context.Background(), "api_key")
	require.NoError(t, err)
	assert.Equal(t, "from_primary", value)
}

func TestFallbackProvider_FallsBackToEnvironment(t *testing.T) { //nolint:paralleltest // uses t.Setenv
	primary := &stubProvider{values: map[string]string{}}
	provider := NewFallbackProvider(primary)

	t.Setenv(EnvVarPrefix+"API_KEY", "from_env")

	value, err := provider.GetSecret(context.Background(), "api_key")
	require.NoError(t, err)
	assert.Equal(t, "from_env", value)
}

func TestFallbackProvider_NotFoundAnywhere(t *testing.T) {
	t.Parallel()
	primary := &stubProvider{values: map[string]string{}}
	provider := NewFallbackProvider(primary)

	_, err := provider.GetSecret(context.Background(), "missing_everywhere")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrSecretNotFound)
}

func TestFallbackProvider_NonNotFoundErrorPropagates(t *testing.T) { //nolint:paralleltest // uses t.Setenv
	primaryErr := errors.New("backend unavailable")
	primary := &stubProvider{getErr: primaryErr}
	provider := NewFallbackProvider(primary)

	// Even with the env var set, a hard failure must not be masked.
	t.Setenv(EnvVarPrefix+"API_KEY", "from_env")

	_, err := provider.GetSecret(context.Background(), "api_key")
	require.Error(t, err)
	assert.ErrorIs(t, err, primaryErr)
}

func TestFallbackProvider_WritesGoToPrimary(t *testing.T) {
	t.Parallel()
	primary := &stubProvider{values: map[string]string{}}
	provider := NewFallbackProvider(primary)
	ctx := context.Background()

	require.NoError(t, provider.SetSecret(ctx, "api_key", "value"))
	assert.Equal(t, "value", primary.values["api_key"])

	require.NoError(t, provider.DeleteSecret(ctx, "api_key"))
	assert.NotContains(t, primary.values, "api_key")
}
