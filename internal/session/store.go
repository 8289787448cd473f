// Package session holds the client's belief about the current authenticated
// identity: a bearer token persisted on disk, the user id decoded from it,
// and the most recently viewed project id.
//
// The store is injected explicitly into every component that needs it rather
// than read from ambient global state. Readers must tolerate the token
// disappearing between check and use; writes are last-write-wins with no
// cross-process coordination.
package session

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"github.com/devtracker/devtracker-cli/internal/errors"
)

// Store is the session persistence contract.
//
// Token and CurrentUserID never touch the network. Clear notifies
// subscribers so dependent views can react to logout immediately.
type Store interface {
	// Token returns the persisted bearer token, if any.
	Token() (string, bool)

	// SetToken persists a token, overwriting any prior value.
	SetToken(token string) error

	// Clear removes the token and notifies subscribers.
	// Clearing an already-empty store is a no-op and does not notify.
	Clear() error

	// CurrentUserID returns the userId claim decoded from the token.
	// Absent token, undecodable token, or missing claim all yield false;
	// this never fails on malformed input.
	CurrentUserID() (int64, bool)

	// LastProjectID returns the cached most-recently-viewed project id.
	// This is a convenience default, not a correctness-critical value.
	LastProjectID() (int64, bool)

	// SetLastProjectID caches the most-recently-viewed project id.
	SetLastProjectID(id int64) error

	// Subscribe registers a callback invoked after every Clear.
	Subscribe(fn func())
}

// sessionFile is the on-disk shape of the session state.
type sessionFile struct {
	Token         string `json:"token,omitempty"`
	LastProjectID int64  `json:"lastProjectId,omitempty"`
}

// FileStore implements Store backed by a JSON file.
//
// The file lives at <dir>/session.json with mode 0600. Concurrent writers
// (multiple devtracker processes) are last-write-wins.
type FileStore struct {
	path string

	mu          sync.Mutex
	subscribers []func()
}

// NewFileStore creates a file-backed store rooted at dir.
func NewFileStore(dir string) *FileStore {
	return &FileStore{path: filepath.Join(dir, "session.json")}
}

// DefaultDir returns the default state directory, ~/.devtracker.
func DefaultDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeFileReadFailed, errors.KindUnknown, "cannot resolve home directory", err)
	}
	return filepath.Join(home, ".devtracker"), nil
}

func (s *FileStore) load() sessionFile {
	var state sessionFile
	data, err := os.ReadFile(s.path)
	if err != nil {
		return state
	}
	// A corrupt file reads as an absent session.
	_ = json.Unmarshal(data, &state)
	return state
}

func (s *FileStore) save(state sessionFile) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return errors.Wrap(errors.ErrCodeFileWriteFailed, errors.KindUnknown, "cannot create state directory", err)
	}

	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return errors.Wrap(errors.ErrCodeFileWriteFailed, errors.KindUnknown, "cannot encode session state", err)
	}

	if err := os.WriteFile(s.path, data, 0o600); err != nil {
		return errors.Wrap(errors.ErrCodeFileWriteFailed, errors.KindUnknown, "cannot write session state", err)
	}
	return nil
}

// Token returns the persisted bearer token, if any.
func (s *FileStore) Token() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	state := s.load()
	if state.Token == "" {
		return "", false
	}
	return state.Token, true
}

// SetToken persists a token, overwriting any prior value.
func (s *FileStore) SetToken(token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	state := s.load()
	state.Token = token
	return s.save(state)
}

// Clear removes the token and notifies subscribers.
func (s *FileStore) Clear() error {
	s.mu.Lock()

	state := s.load()
	if state.Token == "" {
		s.mu.Unlock()
		return nil
	}
	state.Token = ""
	err := s.save(state)
	subs := make([]func(), len(s.subscribers))
	copy(subs, s.subscribers)
	s.mu.Unlock()

	if err != nil {
		return err
	}
	for _, fn := range subs {
		fn()
	}
	return nil
}

// CurrentUserID returns the userId claim decoded from the token.
func (s *FileStore) CurrentUserID() (int64, bool) {
	token, ok := s.Token()
	if !ok {
		return 0, false
	}
	return DecodeUserID(token)
}

// LastProjectID returns the cached most-recently-viewed project id.
func (s *FileStore) LastProjectID() (int64, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	state := s.load()
	if state.LastProjectID == 0 {
		return 0, false
	}
	return state.LastProjectID, true
}

// SetLastProjectID caches the most-recently-viewed project id.
func (s *FileStore) SetLastProjectID(id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	state := s.load()
	state.LastProjectID = id
	return s.save(state)
}

// Subscribe registers a callback invoked after every Clear.
func (s *FileStore) Subscribe(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subscribers = append(s.subscribers, fn)
}
