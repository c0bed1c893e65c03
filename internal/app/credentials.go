package app

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// Credentials is the bearer token issued by the backend's auth flow. Token
// issuance itself happens elsewhere; campfire only stores and presents it.
type Credentials struct {
	Token   string    `json:"token"`
	SavedAt time.Time `json:"saved_at"`
}

// CredentialStore keeps the token in a JSON file under the user data dir.
// It is created at app start and passed explicitly to whatever needs it;
// there is no ambient global auth state. An unauthorized backend response
// clears it, forcing a fresh login.
type CredentialStore struct {
	Path string

	mu sync.Mutex
}

func DefaultCredentialsPath() string {
	if base := strings.TrimSpace(os.Getenv("XDG_DATA_HOME")); base != "" {
		return filepath.Join(base, "campfire", "credentials.json")
	}
	if base, err := os.UserHomeDir(); err == nil && base != "" {
		return filepath.Join(base, ".local", "share", "campfire", "credentials.json")
	}
	return filepath.Join(os.TempDir(), "campfire", "credentials.json")
}

func NewCredentialStore(path string) *CredentialStore {
	if strings.TrimSpace(path) == "" {
		path = DefaultCredentialsPath()
	}
	return &CredentialStore{Path: path}
}

// Token returns the current token. CAMPFIRE_TOKEN overrides the stored one,
// which keeps scripted use working without touching the credential file.
func (s *CredentialStore) Token() string {
	if tok := strings.TrimSpace(os.Getenv("CAMPFIRE_TOKEN")); tok != "" {
		return tok
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	data, err := os.ReadFile(s.Path)
	if err != nil {
		return ""
	}
	var creds Credentials
	if err := json.Unmarshal(data, &creds); err != nil {
		return ""
	}
	return creds.Token
}

func (s *CredentialStore) Save(token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return &ValidationError{Msg: "token must not be blank"}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := os.MkdirAll(filepath.Dir(s.Path), 0700); err != nil {
		return err
	}
	data, err := json.Marshal(Credentials{Token: token, SavedAt: time.Now().UTC()})
	if err != nil {
		return err
	}
	return os.WriteFile(s.Path, data, 0600)
}

// Clear removes the stored token. A missing file is not an error.
func (s *CredentialStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	err := os.Remove(s.Path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}
