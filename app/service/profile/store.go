package profile

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/samber/oops"
)

// ErrNotFound means no profile exists for the phone number yet.
var ErrNotFound = errors.New("profile not found")

// Store is the durable key-value adapter keyed by phone number. Reads and
// writes for one phone number must be serialized by the implementation.
type Store interface {
	Get(phone string) (Profile, error)
	Put(phone string, p Profile) error
}

// FileStore keeps one JSON file per phone number under a data directory.
type FileStore struct {
	dir string
	mu  sync.RWMutex
}

func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, oops.Errorf("failed to create profile dir: %w", err)
	}

	return &FileStore{dir: dir}, nil
}

func (s *FileStore) path(phone string) string {
	safe := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' || r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' {
			return r
		}
		return -1
	}, phone)

	return filepath.Join(s.dir, safe+".json")
}

func (s *FileStore) Get(phone string) (Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, err := os.ReadFile(s.path(phone))
	if errors.Is(err, os.ErrNotExist) {
		return Profile{}, ErrNotFound
	}
	if err != nil {
		return Profile{}, oops.Errorf("failed to read profile: %w", err)
	}

	var p Profile
	if err = json.Unmarshal(data, &p); err != nil {
		return Profile{}, oops.Errorf("failed to parse profile: %w", err)
	}

	return p, nil
}

func (s *FileStore) Put(phone string, p Profile) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return oops.Errorf("failed to marshal profile: %w", err)
	}

	if err = os.WriteFile(s.path(phone), data, 0644); err != nil {
		return oops.Errorf("failed to write profile: %w", err)
	}

	return nil
}

// MemoryStore is an in-memory Store used by tests.
type MemoryStore struct {
	mu       sync.RWMutex
	profiles map[string]Profile
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{profiles: make(map[string]Profile)}
}

func (s *MemoryStore) Get(phone string) (Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.profiles[phone]
	if !ok {
		return Profile{}, ErrNotFound
	}

	return p, nil
}

func (s *MemoryStore) Put(phone string, p Profile) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.profiles[phone] = p

	return nil
}
