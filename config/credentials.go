package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

const credentialsFile = "credentials.json"

// CredentialStore manages API keys, optionally encrypted at rest.
type CredentialStore struct {
	method      EncryptionMethod
	credentials map[string]string // providerID -> API key
	encManager  *EncryptionManager
}

// NewCredentialStore creates a credential store for the given method.
func NewCredentialStore(method EncryptionMethod, sshKeyPath string) *CredentialStore {
	return &CredentialStore{
		method:      method,
		credentials: make(map[string]string),
		encManager:  NewEncryptionManager(method, ExpandPath(sshKeyPath)),
	}
}

// SetPassphrase forwards the SSH key passphrase to the encryption manager.
func (c *CredentialStore) SetPassphrase(passphrase string) {
	c.encManager.SetPassphrase(passphrase)
}

// Load reads credentials from disk. A missing file is not an error.
func (c *CredentialStore) Load(dataDir string) error {
	if err := c.encManager.Initialize(); err != nil {
		return err
	}

	path := filepath.Join(dataDir, credentialsFile)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to read credentials: %w", err)
	}

	plain, err := c.encManager.Decrypt(data)
	if err != nil {
		return fmt.Errorf("failed to decrypt credentials: %w", err)
	}

	creds := make(map[string]string)
	if err := json.Unmarshal(plain, &creds); err != nil {
		return fmt.Errorf("failed to parse credentials: %w", err)
	}
	c.credentials = creds
	return nil
}

// Save writes credentials to disk with 0600 permissions.
func (c *CredentialStore) Save(dataDir string) error {
	plain, err := json.Marshal(c.credentials)
	if err != nil {
		return fmt.Errorf("failed to marshal credentials: %w", err)
	}

	data, err := c.encManager.Encrypt(plain)
	if err != nil {
		return fmt.Errorf("failed to encrypt credentials: %w", err)
	}

	path := filepath.Join(dataDir, credentialsFile)
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write credentials: %w", err)
	}
	return nil
}

// Get returns the API key for a provider. Environment variables of the form
// IASK_<PROVIDER>_API_KEY take precedence over stored values.
func (c *CredentialStore) Get(providerID string) string {
	if key := os.Getenv(envKeyFor(providerID)); key != "" {
		return key
	}
	return c.credentials[providerID]
}

// Set stores the API key for a provider in memory; call Save to persist.
func (c *CredentialStore) Set(providerID, apiKey string) {
	c.credentials[providerID] = apiKey
}

func envKeyFor(providerID string) string {
	switch providerID {
	case "anthropic":
		return "IASK_ANTHROPIC_API_KEY"
	case "openai":
		return "IASK_OPENAI_API_KEY"
	default:
		return "IASK_API_KEY"
	}
}
