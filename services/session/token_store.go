package session

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"powerme/models"
	"powerme/utils"

	"go.uber.org/zap"
)

// CredentialStore persists and retrieves the current credential.
type CredentialStore interface {
	Save(token string, user models.UserProfile, persistent bool) error
	Load() (*models.Credential, error)
	Clear()
}

// DualCredentialStore routes between a durable file-backed store, which
// survives restarts, and a process-scoped in-memory store. The persistent
// flag of Save picks the backend; Load prefers the durable one.
type DualCredentialStore struct {
	mu   sync.Mutex
	path string
	mem  *models.Credential
}

// NewCredentialStore returns a store whose durable backend lives at path.
func NewCredentialStore(path string) *DualCredentialStore {
	return &DualCredentialStore{path: path}
}

func (s *DualCredentialStore) Save(token string, user models.UserProfile, persistent bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cred := models.Credential{Token: token, User: user, Persistent: persistent}
	if !persistent {
		s.mem = &cred
		return nil
	}

	data, err := json.Marshal(cred)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return err
	}
	return os.WriteFile(s.path, data, 0o600)
}

// Load returns the stored credential, or nil when none is stored. A corrupt
// durable entry is removed opportunistically and treated as absent.
func (s *DualCredentialStore) Load() (*models.Credential, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if err == nil {
		var cred models.Credential
		if jsonErr := json.Unmarshal(data, &cred); jsonErr != nil || cred.Token == "" {
			utils.GetLogger().Warn("discarding corrupt stored credential",
				zap.String("path", s.path))
			_ = os.Remove(s.path)
			return s.memCredential(), nil
		}
		cred.Persistent = true
		return &cred, nil
	}
	if !os.IsNotExist(err) {
		return nil, err
	}
	return s.memCredential(), nil
}

// Clear wipes both backends unconditionally, covering a persistence mode
// switched mid-session.
func (s *DualCredentialStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	_ = os.Remove(s.path)
	s.mem = nil
}

func (s *DualCredentialStore) memCredential() *models.Credential {
	if s.mem == nil {
		return nil
	}
	cred := *s.mem
	return &cred
}
