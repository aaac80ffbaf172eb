package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/appforge-io/forgectl/pkg/secrets"
)

// useTempConfig points the package at a throwaway config file and restores
// the default path generator when the test completes.
func useTempConfig(t *testing.T) string {
	t.Helper()
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	prev := getConfigPath
	getConfigPath = func() (string, error) { return configPath, nil }
	t.Cleanup(func() {
		getConfigPath = prev
		ResetSingleton()
	})
	return configPath
}

func TestLoadOrCreateConfig_Defaults(t *testing.T) { //nolint:paralleltest // overrides getConfigPath
	configPath := useTempConfig(t)

	cfg, err := LoadOrCreateConfig()
	require.NoError(t, err)

	assert.Equal(t, DefaultAPIEndpoint, cfg.API.Endpoint)
	assert.False(t, cfg.API.AllowInsecure)
	assert.False(t, cfg.Secrets.SetupCompleted)
	assert.Empty(t, cfg.Secrets.ProviderType)

	// The default config must have been persisted with restrictive perms.
	info, err := os.Stat(configPath)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
}

func TestUpdateConfig_Persists(t *testing.T) { //nolint:paralleltest // overrides getConfigPath
	useTempConfig(t)

	err := UpdateConfig(func(c *Config) {
		c.API.Endpoint = "https://platform.example.com"
		c.Secrets.ProviderType = string(secrets.EncryptedType)
		c.Secrets.SetupCompleted = true
	})
	require.NoError(t, err)

	cfg, err := LoadOrCreateConfig()
	require.NoError(t, err)
	assert.Equal(t, "https://platform.example.com", cfg.API.Endpoint)
	assert.Equal(t, string(secrets.EncryptedType), cfg.Secrets.ProviderType)
	assert.True(t, cfg.Secrets.SetupCompleted)
}

func TestLocalStore_Exists(t *testing.T) { //nolint:paralleltest // overrides getConfigPath
	useTempConfig(t)
	store, err := NewConfigStore()
	require.NoError(t, err)

	ctx := context.Background()

	exists, err := store.Exists(ctx)
	require.NoError(t, err)
	assert.False(t, exists, "config file should not exist before first load")

	_, err = store.Load(ctx)
	require.NoError(t, err)

	exists, err = store.Exists(ctx)
	require.NoError(t, err)
	assert.True(t, exists, "config file should exist after first load")
}

func TestSecrets_GetProviderType(t *testing.T) { //nolint:paralleltest // uses t.Setenv
	tests := []struct {
		name      string
		secrets   Secrets
		envValue  string
		want      secrets.ProviderType
		wantError bool
	}{
		{
			name:      "not setup returns error",
			secrets:   Secrets{},
			wantError: true,
		},
		{
			name:    "setup with encrypted provider",
			secrets: Secrets{ProviderType: "encrypted", SetupCompleted: true},
			want:    secrets.EncryptedType,
		},
		{
			name:    "setup with none provider",
			secrets: Secrets{ProviderType: "none", SetupCompleted: true},
			want:    secrets.NoneType,
		},
		{
			name:      "setup with invalid provider",
			secrets:   Secrets{ProviderType: "vault", SetupCompleted: true},
			wantError: true,
		},
		{
			name:     "env var bypasses setup",
			secrets:  Secrets{},
			envValue: "environment",
			want:     secrets.EnvironmentType,
		},
		{
			name:     "env var overrides config value",
			secrets:  Secrets{ProviderType: "encrypted", SetupCompleted: true},
			envValue: "none",
			want:     secrets.NoneType,
		},
		{
			name:      "invalid env var value",
			secrets:   Secrets{ProviderType: "encrypted", SetupCompleted: true},
			envValue:  "bogus",
			wantError: true,
		},
	}

	for _, tt := range tests { //nolint:paralleltest // uses t.Setenv
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(secrets.ProviderEnvVar, tt.envValue)

			got, err := tt.secrets.GetProviderType()
			if tt.wantError {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSetAPIEndpoint(t *testing.T) { //nolint:paralleltest // overrides getConfigPath
	tests := []struct {
		name          string
		endpoint      string
		allowInsecure bool
		wantErr       bool
		wantStored    string
	}{
		{
			name:       "valid https endpoint",
			endpoint:   "https://platform.example.com",
			wantStored: "https://platform.example.com",
		},
		{
			name:       "trailing slash is trimmed",
			endpoint:   "https://platform.example.com/",
			wantStored: "https://platform.example.com",
		},
		{
			name:     "http rejected by default",
			endpoint: "http://localhost:8000",
			wantErr:  true,
		},
		{
			name:          "http accepted with allow-insecure",
			endpoint:      "http://localhost:8000",
			allowInsecure: true,
			wantStored:    "http://localhost:8000",
		},
		{
			name:     "missing host rejected",
			endpoint: "https://",
			wantErr:  true,
		},
		{
			name:     "non-http scheme rejected",
			endpoint: "ftp://platform.example.com",
			wantErr:  true,
		},
	}

	for _, tt := range tests { //nolint:paralleltest // overrides getConfigPath
		t.Run(tt.name, func(t *testing.T) {
			useTempConfig(t)
			provider := NewDefaultProvider()

			err := provider.SetAPIEndpoint(tt.endpoint, tt.allowInsecure)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)

			cfg, err := LoadOrCreateConfig()
			require.NoError(t, err)
			assert.Equal(t, tt.wantStored, cfg.API.Endpoint)
			assert.Equal(t, tt.allowInsecure, cfg.API.AllowInsecure)
		})
	}
}

func TestGetAPIEndpoint(t *testing.T) { //nolint:paralleltest // overrides getConfigPath and env
	t.Run("default when unconfigured", func(t *testing.T) {
		useTempConfig(t)
		endpoint, insecure := NewDefaultProvider().GetAPIEndpoint()
		assert.Equal(t, DefaultAPIEndpoint, endpoint)
		assert.False(t, insecure)
	})

	t.Run("env var wins over config", func(t *testing.T) {
		useTempConfig(t)
		require.NoError(t, UpdateConfig(func(c *Config) {
			c.API.Endpoint = "https://configured.example.com"
		}))
		t.Setenv(EndpointEnvVar, "http://localhost:9000/")

		endpoint, _ := NewDefaultProvider().GetAPIEndpoint()
		assert.Equal(t, "http://localhost:9000", endpoint)
	})
}

func TestUnsetAPIEndpoint(t *testing.T) { //nolint:paralleltest // overrides getConfigPath
	useTempConfig(t)
	provider := NewDefaultProvider()

	require.NoError(t, provider.SetAPIEndpoint("https://platform.example.com", false))
	require.NoError(t, provider.UnsetAPIEndpoint())

	cfg, err := LoadOrCreateConfig()
	require.NoError(t, err)
	assert.Equal(t, DefaultAPIEndpoint, cfg.API.Endpoint)
	assert.False(t, cfg.API.AllowInsecure)
}
