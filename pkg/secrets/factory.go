package secrets

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"os"

	"github.com/adrg/xdg"
	"github.com/zalando/go-keyring"
	"golang.org/x/term"

	"github.com/appforge-io/forgectl/pkg/logger"
)

const (
	// PasswordEnvVar is the environment variable used to specify the password
	// for encrypting and decrypting secrets. When set, the keyring is bypassed.
	PasswordEnvVar = "FORGECTL_SECRETS_PASSWORD"

	// ProviderEnvVar is the environment variable used to specify the secrets provider type.
	ProviderEnvVar = "FORGECTL_SECRETS_PROVIDER"

	// DisableFallbackEnvVar disables the environment variable fallback when set to "true".
	DisableFallbackEnvVar = "FORGECTL_DISABLE_ENV_FALLBACK"

	keyringService = "forgectl"
)

// ProviderType represents an enum of the types of available secrets providers.
type ProviderType string

const (
	// EncryptedType represents the encrypted secret provider.
	EncryptedType ProviderType = "encrypted"

	// EnvironmentType represents the environment variable secret provider.
	EnvironmentType ProviderType = "environment"

	// NoneType represents the none secret provider.
	NoneType ProviderType = "none"
)

// ErrUnknownManagerType is returned when an invalid value for ProviderType is specified.
var ErrUnknownManagerType = errors.New("unknown secret manager type")

// ErrSecretsNotSetup is returned when secrets functionality is used before running setup.
var ErrSecretsNotSetup = errors.New("secrets provider not configured. " +
	"Please run 'forgectl auth login' to configure credentials first")

// ErrKeyringNotAvailable is returned when the OS keyring is not available for the encrypted provider.
var ErrKeyringNotAvailable = errors.New("OS keyring is not available. " +
	"The encrypted provider requires an OS keyring to securely store the encryption password. " +
	"Set " + PasswordEnvVar + " or use a different secrets provider (environment, none)")

// SetupResult contains the result of a provider setup operation.
type SetupResult struct {
	ProviderType ProviderType
	Success      bool
	Message      string
	Error        error
}

// ValidateProvider validates that a provider can be created and performs
// basic functionality tests.
func ValidateProvider(ctx context.Context, providerType ProviderType) *SetupResult {
	return ValidateProviderWithPassword(ctx, providerType, "")
}

// ValidateProviderWithPassword validates that a provider can be created and performs
// basic functionality tests. If password is provided for the encrypted provider,
// it is used instead of reading from the keyring or stdin.
func ValidateProviderWithPassword(ctx context.Context, providerType ProviderType, password string) *SetupResult {
	result := &SetupResult{
		ProviderType: providerType,
		Success:      false,
	}

	provider, err := CreateSecretProviderWithPassword(providerType, password)
	if err != nil {
		result.Error = fmt.Errorf("failed to create provider: %w", err)
		result.Message = fmt.Sprintf("Failed to initialize %s provider", providerType)
		return result
	}

	switch providerType {
	case EncryptedType:
		return validateEncryptedProvider(ctx, provider, result)
	case EnvironmentType:
		return validateEnvironmentProvider(ctx, provider, result)
	case NoneType:
		result.Success = true
		result.Message = "None provider validation successful"
		return result
	default:
		result.Error = fmt.Errorf("unknown provider type: %s", providerType)
		result.Message = "Unknown provider type"
		return result
	}
}

// validateEncryptedProvider round-trips a throwaway secret through the store.
func validateEncryptedProvider(ctx context.Context, provider Provider, result *SetupResult) *SetupResult {
	testKey := "setup-validation-test"
	testValue := "test-value"

	if err := provider.SetSecret(ctx, testKey, testValue); err != nil {
		result.Error = fmt.Errorf("failed to test secret storage: %w", err)
		result.Message = "Failed to store test secret"
		return result
	}

	retrievedValue, err := provider.GetSecret(ctx, testKey)
	if err != nil {
		result.Error = fmt.Errorf("failed to test secret retrieval: %w", err)
		result.Message = "Failed to retrieve test secret"
		return result
	}

	if retrievedValue != testValue {
		result.Error = fmt.Errorf("secret test failed: expected %s, got %s", testValue, retrievedValue)
		result.Message = "Secret value mismatch during validation"
		return result
	}

	_ = provider.DeleteSecret(ctx, testKey)

	result.Success = true
	result.Message = "Encrypted provider validation successful"
	return result
}

// validateEnvironmentProvider checks that missing secrets produce the expected error.
func validateEnvironmentProvider(ctx context.Context, provider Provider, result *SetupResult) *SetupResult {
	_, err := provider.GetSecret(ctx, "nonexistent-test-secret")
	if err == nil {
		result.Error = errors.New("expected error for nonexistent secret, but got none")
		result.Message = "Environment provider validation failed"
		return result
	}
	if !errors.Is(err, ErrSecretNotFound) {
		result.Error = fmt.Errorf("unexpected error: %w", err)
		result.Message = "Environment provider validation failed"
		return result
	}

	result.Success = true
	result.Message = "Environment provider validation successful"
	return result
}

// IsKeyringAvailable tests if the OS keyring is available by attempting to
// set and delete a test value.
func IsKeyringAvailable() bool {
	testKey := "forgectl-keyring-test"

	if err := keyring.Set(keyringService, testKey, "test"); err != nil {
		return false
	}
	_ = keyring.Delete(keyringService, testKey)

	return true
}

// CreateSecretProvider creates the specified type of secrets provider.
func CreateSecretProvider(managerType ProviderType) (Provider, error) {
	return CreateSecretProviderWithPassword(managerType, "")
}

// CreateSecretProviderWithPassword creates the specified type of secrets provider
// with an optional password. If password is empty, it is read from the
// FORGECTL_SECRETS_PASSWORD environment variable, the OS keyring, or stdin,
// in that order.
func CreateSecretProviderWithPassword(managerType ProviderType, password string) (Provider, error) {
	var primary Provider

	switch managerType {
	case EncryptedType:
		secretsPassword, isNew, err := GetSecretsPassword(password)
		if err != nil {
			return nil, fmt.Errorf("failed to get secrets password: %w", err)
		}
		// Convert to 256-bit hash for use with AES-GCM.
		key := sha256.Sum256(secretsPassword)
		secretsPath, err := xdg.DataFile("forgectl/secrets_encrypted")
		if err != nil {
			return nil, fmt.Errorf("unable to access secrets file path: %w", err)
		}
		primary, err = NewEncryptedManager(secretsPath, key[:])
		if err != nil {
			// Decryption failed. Do not store the password in the keyring so
			// the user can retry with the correct one.
			return nil, err
		}

		// Only store the password in the keyring after a successful decrypt.
		if isNew {
			if storeErr := StoreSecretsPassword(secretsPassword); storeErr != nil {
				return nil, storeErr
			}
		}
	case EnvironmentType:
		// Direct environment provider, no fallback needed.
		return NewEnvironmentProvider(), nil
	case NoneType:
		var err error
		primary, err = NewNoneManager()
		if err != nil {
			return nil, err
		}
	default:
		return nil, ErrUnknownManagerType
	}

	if shouldEnableFallback() {
		return NewFallbackProvider(primary), nil
	}
	return primary, nil
}

// shouldEnableFallback determines if environment variable fallback should be enabled.
func shouldEnableFallback() bool {
	return os.Getenv(DisableFallbackEnvVar) != "true"
}

// GetSecretsPassword returns the password to use for encrypting and decrypting secrets.
// It returns (password, isNew, error) where isNew indicates the password did not come
// from the keyring and should be persisted via StoreSecretsPassword once it has been
// validated, e.g. after the secrets file decrypted successfully.
func GetSecretsPassword(optionalPassword string) ([]byte, bool, error) {
	// Environment variable wins and is never written back to the keyring.
	if envPassword := os.Getenv(PasswordEnvVar); envPassword != "" {
		return []byte(envPassword), false, nil
	}

	keyringSecret, err := keyring.Get(keyringService, keyringService)
	if err == nil {
		return []byte(keyringSecret), false, nil
	}

	// Distinguish "keyring works but holds nothing" from "no keyring at all".
	if errors.Is(err, keyring.ErrNotFound) {
		if optionalPassword != "" {
			return []byte(optionalPassword), true, nil
		}

		if !term.IsTerminal(int(os.Stdin.Fd())) {
			return nil, false, fmt.Errorf("cannot prompt for password: stdin is not a terminal (set %s)", PasswordEnvVar)
		}

		password, err := readPasswordStdin()
		if err != nil {
			return nil, false, fmt.Errorf("failed to read password: %w", err)
		}
		return password, true, nil
	}

	return nil, false, fmt.Errorf("%w: %w", ErrKeyringNotAvailable, err)
}

// StoreSecretsPassword stores the password in the OS keyring. It should only be
// called after the password has been validated against the secrets file.
func StoreSecretsPassword(password []byte) error {
	logger.Debugf("writing password to OS keyring")
	if err := keyring.Set(keyringService, keyringService, string(password)); err != nil {
		return fmt.Errorf("failed to store password in keyring: %w", err)
	}
	return nil
}

func readPasswordStdin() ([]byte, error) {
	printPasswordPrompt()
	password, err := term.ReadPassword(int(os.Stdin.Fd()))
	// Start a new line after receiving the password so errors print correctly.
	fmt.Println()
	if err != nil {
		return nil, fmt.Errorf("failed to read password: %w", err)
	}

	if len(password) == 0 {
		return nil, errors.New("password cannot be empty")
	}
	return password, nil
}

// ResetKeyringSecret clears out the secret from the keystore (if present).
func ResetKeyringSecret() error {
	return keyring.DeleteAll(keyringService)
}

// GenerateSecurePassword generates a cryptographically secure random password.
func GenerateSecurePassword() (string, error) {
	// 32 random bytes encoded as base64 gives a 44 character password.
	bytes := make([]byte, 32)
	if _, err := rand.Read(bytes); err != nil {
		return "", fmt.Errorf("failed to generate random bytes: %w", err)
	}
	return base64.URLEncoding.EncodeToString(bytes), nil
}

func printPasswordPrompt() {
	fmt.Print("forgectl needs a password to protect your API keys on disk.\n" +
		"The password encrypts the local secrets file and is stored in your OS keyring\n" +
		"so you won't need to enter it each time.\n" +
		"Please enter your keyring password: ")
}
