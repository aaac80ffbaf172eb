package config

// Provider defines the interface for configuration operations
type Provider interface {
	GetConfig() *Config
	UpdateConfig(updateFn func(*Config)) error
	LoadOrCreateConfig() (*Config, error)

	// API endpoint operations
	SetAPIEndpoint(endpoint string, allowInsecure bool) error
	UnsetAPIEndpoint() error
	GetAPIEndpoint() (endpoint string, allowInsecure bool)
}

// DefaultProvider implements Provider using the default XDG config path
type DefaultProvider struct{}

// NewDefaultProvider creates a new default config provider
func NewDefaultProvider() *DefaultProvider {
	return &DefaultProvider{}
}

// GetConfig returns the singleton config (for backward compatibility)
func (*DefaultProvider) GetConfig() *Config {
	return getSingletonConfig()
}

// UpdateConfig updates the config using the default path
func (*DefaultProvider) UpdateConfig(updateFn func(*Config)) error {
	return UpdateConfig(updateFn)
}

// LoadOrCreateConfig loads or creates config using the default path
func (*DefaultProvider) LoadOrCreateConfig() (*Config, error) {
	return LoadOrCreateConfig()
}

// SetAPIEndpoint validates and sets the platform API endpoint
func (d *DefaultProvider) SetAPIEndpoint(endpoint string, allowInsecure bool) error {
	return setAPIEndpoint(d, endpoint, allowInsecure)
}

// UnsetAPIEndpoint resets the API endpoint to the default
func (d *DefaultProvider) UnsetAPIEndpoint() error {
	return unsetAPIEndpoint(d)
}

// GetAPIEndpoint returns the resolved API endpoint
func (d *DefaultProvider) GetAPIEndpoint() (string, bool) {
	return getAPIEndpoint(d)
}

// PathProvider implements Provider using a specific config path
type PathProvider struct {
	configPath string
}

// NewPathProvider creates a new config provider with a specific path
func NewPathProvider(configPath string) *PathProvider {
	return &PathProvider{configPath: configPath}
}

// GetConfig loads and returns the config from the specific path
func (p *PathProvider) GetConfig() *Config {
	config, err := LoadOrCreateConfigWithPath(p.configPath)
	if err != nil {
		// Return default config on error, similar to singleton behavior
		defaultConfig := createNewConfigWithDefaults()
		return &defaultConfig
	}
	return config
}

// UpdateConfig updates the config at the specific path
func (p *PathProvider) UpdateConfig(updateFn func(*Config)) error {
	return UpdateConfigAtPath(p.configPath, updateFn)
}

// LoadOrCreateConfig loads or creates config at the specific path
func (p *PathProvider) LoadOrCreateConfig() (*Config, error) {
	return LoadOrCreateConfigWithPath(p.configPath)
}

// SetAPIEndpoint validates and sets the platform API endpoint
func (p *PathProvider) SetAPIEndpoint(endpoint string, allowInsecure bool) error {
	return setAPIEndpoint(p, endpoint, allowInsecure)
}

// UnsetAPIEndpoint resets the API endpoint to the default
func (p *PathProvider) UnsetAPIEndpoint() error {
	return unsetAPIEndpoint(p)
}

// GetAPIEndpoint returns the resolved API endpoint
func (p *PathProvider) GetAPIEndpoint() (string, bool) {
	return getAPIEndpoint(p)
}
