package secrets

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path"

	"golang.org/x/sync/syncmap"

	"github.com/appforge-io/forgectl/pkg/secrets/aes"
)

// EncryptedManager stores secrets in an encrypted file.
// AES-256-GCM is used for encryption.
type EncryptedManager struct {
	filePath string
	// Key used to re-encrypt the secrets file if changes are needed.
	key     []byte
	secrets syncmap.Map
}

// secretsFile is the plaintext structure of the secrets file.
type secretsFile struct {
	Secrets map[string]string `json:"secrets"`
}

// GetSecret retrieves a secret from the secret store.
func (e *EncryptedManager) GetSecret(_ context.Context, name string) (string, error) {
	if name == "" {
		return "", errors.New("secret name cannot be empty")
	}

	value, ok := e.secrets.Load(name)
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrSecretNotFound, name)
	}
	return value.(string), nil
}

// SetSecret stores a secret in the secret store and re-encrypts the file.
func (e *EncryptedManager) SetSecret(_ context.Context, name, value string) error {
	if name == "" {
		return errors.New("secret name cannot be empty")
	}

	e.secrets.Store(name, value)
	return e.updateFile()
}

// DeleteSecret removes a secret from the secret store.
func (e *EncryptedManager) DeleteSecret(_ context.Context, name string) error {
	if name == "" {
		return errors.New("secret name cannot be empty")
	}

	if _, ok := e.secrets.Load(name); !ok {
		return fmt.Errorf("cannot delete non-existent secret: %s", name)
	}

	e.secrets.Delete(name)
	return e.updateFile()
}

// ListSecrets returns a list of all secret names stored in the manager.
func (e *EncryptedManager) ListSecrets(_ context.Context) ([]SecretDescription, error) {
	var descriptions []SecretDescription

	e.secrets.Range(func(key, _ interface{}) bool {
		descriptions = append(descriptions, SecretDescription{Key: key.(string)})
		return true
	})

	return descriptions, nil
}

// Cleanup removes all secrets managed by this manager.
func (e *EncryptedManager) Cleanup() error {
	e.secrets = syncmap.Map{}
	return e.updateFile()
}

// Capabilities returns the capabilities of the encrypted provider.
func (*EncryptedManager) Capabilities() ProviderCapabilities {
	return ProviderCapabilities{
		CanRead:    true,
		CanWrite:   true,
		CanDelete:  true,
		CanList:    true,
		CanCleanup: true,
	}
}

func (e *EncryptedManager) updateFile() error {
	contentsMap := make(map[string]string)
	e.secrets.Range(func(key, value interface{}) bool {
		contentsMap[key.(string)] = value.(string)
		return true
	})

	contents, err := json.Marshal(secretsFile{Secrets: contentsMap})
	if err != nil {
		return fmt.Errorf("failed to marshal secrets: %w", err)
	}

	encryptedContents, err := aes.Encrypt(contents, e.key)
	if err != nil {
		return fmt.Errorf("failed to encrypt secrets: %w", err)
	}

	if err := os.WriteFile(e.filePath, encryptedContents, 0600); err != nil {
		return fmt.Errorf("failed to write secrets to file: %w", err)
	}
	return nil
}

// NewEncryptedManager creates an instance of EncryptedManager backed by the
// given file. The key must be 32 bytes, see aes.Encrypt.
func NewEncryptedManager(filePath string, key []byte) (Provider, error) {
	if len(key) == 0 {
		return nil, errors.New("key cannot be empty")
	}

	filePath = path.Clean(filePath)
	// #nosec G304: the path comes from the XDG data dir, not user input.
	file, err := os.OpenFile(filePath, os.O_CREATE|os.O_RDWR, 0600)
	if err != nil {
		return nil, fmt.Errorf("failed to open secrets file: %w", err)
	}
	defer file.Close()

	stat, err := file.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to stat secrets file: %w", err)
	}

	manager := &EncryptedManager{
		filePath: filePath,
		secrets:  syncmap.Map{},
		key:      key,
	}

	// If the file is not empty, decrypt it and load the stored secrets.
	if stat.Size() > 0 {
		encryptedContents, err := io.ReadAll(file)
		if err != nil {
			return nil, fmt.Errorf("failed to read secrets file: %w", err)
		}
		decryptedContents, err := aes.Decrypt(encryptedContents, key)
		if err != nil {
			return nil, fmt.Errorf("unable to decrypt secrets file: %w", err)
		}

		var contents secretsFile
		if err := json.Unmarshal(decryptedContents, &contents); err != nil {
			return nil, fmt.Errorf("failed to decode secrets file: %w", err)
		}

		for name, value := range contents.Secrets {
			manager.secrets.Store(name, value)
		}
	}

	return manager, nil
}
