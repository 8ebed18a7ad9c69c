package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// Credentials is the authenticated identity a client holds between runs.
type Credentials struct {
	Token    string `json:"token"`
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

// CredentialStore persists credentials to a file with an explicit
// load/save/clear lifecycle; nothing else touches the stored session.
type CredentialStore struct {
	path string
}

func NewCredentialStore(path string) (*CredentialStore, error) {
	if path == "" {
		return nil, errors.New("credential store path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("create credentials dir: %w", err)
	}
	return &CredentialStore{path: path}, nil
}

// Load returns the stored credentials, or ok=false when none are saved.
func (s *CredentialStore) Load() (Credentials, bool, error) {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return Credentials{}, false, nil
	}
	if err != nil {
		return Credentials{}, false, err
	}
	var creds Credentials
	if err := json.Unmarshal(data, &creds); err != nil {
		return Credentials{}, false, fmt.Errorf("decode credentials: %w", err)
	}
	if creds.Token == "" {
		return Credentials{}, false, nil
	}
	return creds, true, nil
}

func (s *CredentialStore) Save(creds Credentials) error {
	data, err := json.MarshalIndent(creds, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(s.path, data, 0o600)
}

// Clear removes the stored credentials. Clearing an empty store is a no-op.
func (s *CredentialStore) Clear() error {
	err := os.Remove(s.path)
	if os.IsNotExist(err) {
		return nil
	}
	return err
}
