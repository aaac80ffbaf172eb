// Package config contains the definition of the application config structure
// and logic required to load and update it.
package config

import (
	"context"
	"fmt"
	"os"

	"github.com/adrg/xdg"
	"gopkg.in/yaml.v3"

	"github.com/appforge-io/forgectl/pkg/secrets"
)

// DefaultAPIEndpoint is the platform API endpoint used when none is configured.
const DefaultAPIEndpoint = "https://api.appforge.io"

// EndpointEnvVar overrides the configured API endpoint when set.
const EndpointEnvVar = "FORGECTL_API_ENDPOINT"

// Config represents the configuration of the application.
type Config struct {
	API     API     `yaml:"api"`
	Secrets Secrets `yaml:"secrets"`
	Output  Output  `yaml:"output,omitempty"`
	Catalog Catalog `yaml:"catalog,omitempty"`
}

// API contains settings for reaching the platform API.
type API struct {
	Endpoint string `yaml:"endpoint"`
	// AllowInsecure permits plain http endpoints, intended for local
	// development against a platform instance on localhost.
	AllowInsecure bool `yaml:"allow_insecure,omitempty"`
}

// Secrets contains the settings for secrets management.
type Secrets struct {
	ProviderType   string `yaml:"provider_type"`
	SetupCompleted bool   `yaml:"setup_completed"`
}

// Output contains settings for command output rendering.
type Output struct {
	// DefaultFormat is used when a command's --format flag is not given.
	// Valid values are "json" and "text"; empty means "text".
	DefaultFormat string `yaml:"default_format,omitempty"`
}

// Catalog contains settings for the local catalog cache.
type Catalog struct {
	// DBPath overrides the default XDG data location of the cache database.
	DBPath string `yaml:"db_path,omitempty"`
}

// validateProviderType validates and returns the secrets provider type.
func validateProviderType(provider string) (secrets.ProviderType, error) {
	switch provider {
	case string(secrets.EncryptedType):
		return secrets.EncryptedType, nil
	case string(secrets.EnvironmentType):
		return secrets.EnvironmentType, nil
	case string(secrets.NoneType):
		return secrets.NoneType, nil
	default:
		return "", fmt.Errorf("invalid secrets provider type: %s (valid types: %s, %s, %s)",
			provider, string(secrets.EncryptedType), string(secrets.EnvironmentType), string(secrets.NoneType))
	}
}

// GetProviderType returns the secrets provider type from the environment
// variable or application config. It first checks the FORGECTL_SECRETS_PROVIDER
// environment variable, and falls back to the config file.
// Returns ErrSecretsNotSetup if secrets have not been configured yet.
func (s *Secrets) GetProviderType() (secrets.ProviderType, error) {
	// The env var allows headless environments to bypass setup entirely.
	if envVar := os.Getenv(secrets.ProviderEnvVar); envVar != "" {
		return validateProviderType(envVar)
	}

	if !s.SetupCompleted {
		return "", secrets.ErrSecretsNotSetup
	}

	return validateProviderType(s.ProviderType)
}

// defaultPathGenerator generates the default config path using xdg
var defaultPathGenerator = func() (string, error) {
	return xdg.ConfigFile("forgectl/config.yaml")
}

// getConfigPath is the current path generator, can be replaced in tests
var getConfigPath = defaultPathGenerator

// createNewConfigWithDefaults creates a new config with default values
func createNewConfigWithDefaults() Config {
	return Config{
		API: API{
			Endpoint: DefaultAPIEndpoint,
		},
		Secrets: Secrets{
			ProviderType:   "", // No default provider - user must run setup
			SetupCompleted: false,
		},
	}
}

// LoadOrCreateConfig fetches the application configuration.
// If it does not already exist - it will create a new config file with default values.
func LoadOrCreateConfig() (*Config, error) {
	store, err := NewConfigStore()
	if err != nil {
		return nil, fmt.Errorf("failed to create config store: %w", err)
	}

	ctx := context.Background()
	return store.Load(ctx)
}

// LoadOrCreateConfigWithPath fetches the application configuration from a specific path.
// If configPath is empty, it uses the default path.
// If it does not already exist - it will create a new config file with default values.
func LoadOrCreateConfigWithPath(configPath string) (*Config, error) {
	store, err := NewConfigStoreWithPath(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to create config store: %w", err)
	}

	ctx := context.Background()
	return store.Load(ctx)
}

// Save serializes the config struct and writes it to disk.
func (c *Config) save() error {
	return c.saveToPath("")
}

// saveToPath serializes the config struct and writes it to a specific path.
// If configPath is empty, it uses the default path.
func (c *Config) saveToPath(configPath string) error {
	if configPath == "" {
		var err error
		configPath, err = getConfigPath()
		if err != nil {
			return fmt.Errorf("unable to fetch config path: %w", err)
		}
	}

	configBytes, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("error serializing config file: %w", err)
	}

	err = os.WriteFile(configPath, configBytes, 0600)
	if err != nil {
		return fmt.Errorf("error writing config file: %w", err)
	}
	return nil
}

// UpdateConfig loads config from appropriate store, applies changes, and saves back
func UpdateConfig(updateFn func(*Config)) error {
	return UpdateConfigWithStore(nil, updateFn)
}

// UpdateConfigWithStore uses the provided store or creates a new one to update config
func UpdateConfigWithStore(store Store, updateFn func(*Config)) error {
	var err error
	if store == nil {
		store, err = NewConfigStore()
		if err != nil {
			return fmt.Errorf("failed to create config store: %w", err)
		}
	}

	ctx := context.Background()

	err = store.Update(ctx, updateFn)
	if err != nil {
		return err
	}

	// Refresh the singleton cache if it has been populated already.
	if appConfig != nil {
		config, err := store.Load(ctx)
		if err != nil {
			return fmt.Errorf("failed to reload config: %w", err)
		}
		lock.Lock()
		appConfig = config
		lock.Unlock()
	}

	return nil
}

// UpdateConfigAtPath loads config using appropriate store, applies changes, and saves back
// If configPath is empty, it uses the default path.
func UpdateConfigAtPath(configPath string, updateFn func(*Config)) error {
	store, err := NewConfigStoreWithPath(configPath)
	if err != nil {
		return fmt.Errorf("failed to create config store: %w", err)
	}

	ctx := context.Background()
	return store.Update(ctx, updateFn)
}
