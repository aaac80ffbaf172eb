package secrets

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
)

// EnvironmentProvider reads secrets from environment variables.
// A secret named `api_key` maps to the variable FORGECTL_SECRET_API_KEY.
// The provider is read-only.
type EnvironmentProvider struct {
	prefix string
}

// NewEnvironmentProvider creates a provider which reads secrets from
// FORGECTL_SECRET_* environment variables.
func NewEnvironmentProvider() Provider {
	return &EnvironmentProvider{prefix: EnvVarPrefix}
}

func (e *EnvironmentProvider) envVarName(name string) string {
	return e.prefix + strings.ToUpper(name)
}

// GetSecret retrieves a secret from the environment.
func (e *EnvironmentProvider) GetSecret(_ context.Context, name string) (string, error) {
	if name == "" {
		return "", errors.New("secret name cannot be empty")
	}

	value, ok := os.LookupEnv(e.envVarName(name))
	if !ok || value == "" {
		return "", fmt.Errorf("%w: %s (environment variable %s not set)",
			ErrSecretNotFound, name, e.envVarName(name))
	}
	return value, nil
}

// SetSecret is not supported for environment variables.
func (e *EnvironmentProvider) SetSecret(_ context.Context, name, _ string) error {
	if name == "" {
		return errors.New("secret name cannot be empty")
	}
	return fmt.Errorf("environment provider is read-only: set %s instead", e.envVarName(name))
}

// DeleteSecret is not supported for environment variables.
func (e *EnvironmentProvider) DeleteSecret(_ context.Context, name string) error {
	if name == "" {
		return errors.New("secret name cannot be empty")
	}
	return fmt.Errorf("environment provider is read-only: unset %s instead", e.envVarName(name))
}

// ListSecrets returns the names of all secrets present in the environment.
func (e *EnvironmentProvider) ListSecrets(_ context.Context) ([]SecretDescription, error) {
	var descriptions []SecretDescription

	for _, kv := range os.Environ() {
		name, _, ok := strings.Cut(kv, "=")
		if !ok || !strings.HasPrefix(name, e.prefix) {
			continue
		}
		descriptions = append(descriptions, SecretDescription{
			Key:         strings.ToLower(strings.TrimPrefix(name, e.prefix)),
			Description: "from environment variable " + name,
		})
	}

	return descriptions, nil
}

// Cleanup is a no-op for the environment provider.
func (*EnvironmentProvider) Cleanup() error {
	return nil
}

// Capabilities returns the capabilities of the environment provider.
func (*EnvironmentProvider) Capabilities() ProviderCapabilities {
	return ProviderCapabilities{
		CanRead: true,
		CanList: true,
	}
}
