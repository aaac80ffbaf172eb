package secrets

import (
	"context"
	"errors"

	"github.com/appforge-io/forgectl/pkg/logger"
)

// FallbackProvider wraps a primary provider with environment variable fallback.
// Reads that miss the primary provider are retried against FORGECTL_SECRET_*
// variables, so CI jobs can inject credentials without touching the keyring.
type FallbackProvider struct {
	primary     Provider
	envProvider Provider
}

// NewFallbackProvider creates a new provider with environment variable fallback.
func NewFallbackProvider(primary Provider) Provider {
	return &FallbackProvider{
		primary:     primary,
		envProvider: NewEnvironmentProvider(),
	}
}

// GetSecret attempts to get a secret from the primary provider,
// falling back to environment variables if not found.
func (f *FallbackProvider) GetSecret(ctx context.Context, name string) (string, error) {
	value, err := f.primary.GetSecret(ctx, name)
	if err == nil {
		return value, nil
	}

	if !errors.Is(err, ErrSecretNotFound) {
		return "", err
	}

	envValue, envErr := f.envProvider.GetSecret(ctx, name)
	if envErr == nil {
		logger.Debugf("secret %q retrieved from environment variable fallback", name)
		return envValue, nil
	}

	// Return the original error if no fallback was found.
	return "", err
}

// SetSecret always uses the primary provider (no env var writes).
func (f *FallbackProvider) SetSecret(ctx context.Context, name, value string) error {
	return f.primary.SetSecret(ctx, name, value)
}

// DeleteSecret always uses the primary provider (no env var deletes).
func (f *FallbackProvider) DeleteSecret(ctx context.Context, name string) error {
	return f.primary.DeleteSecret(ctx, name)
}

// ListSecrets only lists from the primary provider. Environment variables
// are deliberately not enumerated here.
func (f *FallbackProvider) ListSecrets(ctx context.Context) ([]SecretDescription, error) {
	return f.primary.ListSecrets(ctx)
}

// Cleanup delegates to the primary provider.
func (f *FallbackProvider) Cleanup() error {
	return f.primary.Cleanup()
}

// Capabilities returns the primary provider's capabilities.
func (f *FallbackProvider) Capabilities() ProviderCapabilities {
	return f.primary.Capabilities()
}
