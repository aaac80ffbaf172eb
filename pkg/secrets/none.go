package secrets

import (
	"context"
	"errors"
	"fmt"
)

// NoneManager is a secrets provider that does not store secrets.
// It is intended for users who do not want any credential persisted
// on disk and supply the API key per invocation instead.
type NoneManager struct{}

// NewNoneManager creates an instance of NoneManager.
func NewNoneManager() (Provider, error) {
	return &NoneManager{}, nil
}

// GetSecret always fails because the none provider doesn't store secrets.
func (*NoneManager) GetSecret(_ context.Context, name string) (string, error) {
	if name == "" {
		return "", errors.New("secret name cannot be empty")
	}
	return "", fmt.Errorf("%w: %s (none provider doesn't store secrets)", ErrSecretNotFound, name)
}

// SetSecret always fails because the none provider doesn't support storing secrets.
func (*NoneManager) SetSecret(_ context.Context, name, _ string) error {
	if name == "" {
		return errors.New("secret name cannot be empty")
	}
	return errors.New("none provider doesn't support storing secrets")
}

// DeleteSecret always fails because there is nothing to delete.
func (*NoneManager) DeleteSecret(_ context.Context, name string) error {
	if name == "" {
		return errors.New("secret name cannot be empty")
	}
	return fmt.Errorf("cannot delete non-existent secret: %s (none provider doesn't store secrets)", name)
}

// ListSecrets returns an empty list.
func (*NoneManager) ListSecrets(_ context.Context) ([]SecretDescription, error) {
	return []SecretDescription{}, nil
}

// Cleanup is a no-op for the none provider.
func (*NoneManager) Cleanup() error {
	return nil
}

// Capabilities returns the capabilities of the none provider.
// Listing works (it returns an empty list), everything else is unsupported.
func (*NoneManager) Capabilities() ProviderCapabilities {
	return ProviderCapabilities{
		CanList: true,
	}
}
