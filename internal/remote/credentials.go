package remote

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Credentials holds the session for the sync server
type Credentials struct {
	ServerURL string `json:"server_url"`
	Token     string `json:"token"`
	UserID    string `json:"user_id"`
}

// CredentialsFile persists Credentials as JSON
type CredentialsFile struct {
	path string
}

// NewCredentialsFile returns a store for credentials at path
func NewCredentialsFile(path string) *CredentialsFile {
	return &CredentialsFile{path: path}
}

// DefaultCredentialsPath returns ~/.tasksync/auth.json
func DefaultCredentialsPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".tasksync", "auth.json"), nil
}

// Load reads credentials, returning empty ones if the file does not exist
func (f *CredentialsFile) Load() (Credentials, error) {
	var c Credentials

	data, err := os.ReadFile(f.path)
	if os.IsNotExist(err) {
		return c, nil
	}
	if err != nil {
		return c, fmt.Errorf("failed to read credentials: %w", err)
	}

	if err := json.Unmarshal(data, &c); err != nil {
		return c, fmt.Errorf("failed to parse credentials: %w", err)
	}
	return c, nil
}

// Save writes credentials readable only by the owner
func (f *CredentialsFile) Save(c Credentials) error {
	if err := os.MkdirAll(filepath.Dir(f.path), 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(f.path, data, 0600)
}
