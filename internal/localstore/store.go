// Package localstore keeps the small amount of client side state the tool
// remembers between runs: the last seen VM id and address, and the last
// access token that worked. Nothing in here is a source of truth.
package localstore

import (
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

const cacheFileName = "cache.yaml"

// Hint is the last known id and address of the user's VM. It may be stale
// and must be re-verified against the control plane before use.
type Hint struct {
	VmId      string    `yaml:"vm_id,omitempty"`
	VmIp      string    `yaml:"vm_ip,omitempty"`
	UpdatedAt time.Time `yaml:"updated_at,omitempty"`
}

func (h Hint) IsEmpty() bool {
	return h.VmId == "" && h.VmIp == ""
}

type cacheFile struct {
	Hint        Hint   `yaml:"hint"`
	AccessToken string `yaml:"access_token,omitempty"`
	InstallId   string `yaml:"install_id,omitempty"`
}

type Store struct {
	mu   sync.Mutex
	path string
}

func New(dataDir string) *Store {
	return &Store{path: filepath.Join(dataDir, cacheFileName)}
}

func (s *Store) Path() string {
	return s.path
}

func (s *Store) LoadHint() (Hint, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cache, err := s.read()
	if err != nil {
		return Hint{}, err
	}
	return cache.Hint, nil
}

// SaveHint replaces the cached hint as a whole. Fields are never merged with
// what was cached before, so an empty address from the server clears a
// stale one.
func (s *Store) SaveHint(hint Hint) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cache, err := s.read()
	if err != nil {
		return err
	}
	if hint.UpdatedAt.IsZero() {
		hint.UpdatedAt = time.Now().UTC()
	}
	cache.Hint = hint
	return s.write(cache)
}

func (s *Store) ClearHint() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cache, err := s.read()
	if err != nil {
		return err
	}
	cache.Hint = Hint{}
	return s.write(cache)
}

func (s *Store) LoadToken() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cache, err := s.read()
	if err != nil || cache.AccessToken == "" {
		return "", false
	}
	return cache.AccessToken, true
}

func (s *Store) StoreToken(token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cache, err := s.read()
	if err != nil {
		return err
	}
	cache.AccessToken = token
	return s.write(cache)
}

func (s *Store) ClearToken() error {
	return s.StoreToken("")
}

// InstallId identifies this installation. It is generated on first use and
// kept for as long as the cache file exists.
func (s *Store) InstallId() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cache, err := s.read()
	if err != nil {
		return "", err
	}
	if cache.InstallId != "" {
		return cache.InstallId, nil
	}

	cache.InstallId = uuid.NewString()
	if err := s.write(cache); err != nil {
		return "", err
	}
	return cache.InstallId, nil
}

func (s *Store) read() (cacheFile, error) {
	var cache cacheFile
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return cache, nil
		}
		return cache, errors.Wrapf(err, "error reading %s", s.path)
	}

	if err := yaml.Unmarshal(data, &cache); err != nil {
		// A corrupt cache is only a lost convenience
		return cacheFile{}, nil
	}
	return cache, nil
}

func (s *Store) write(cache cacheFile) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return errors.Wrapf(err, "error creating %s", filepath.Dir(s.path))
	}

	data, err := yaml.Marshal(cache)
	if err != nil {
		return errors.Wrap(err, "error marshalling cache")
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return errors.Wrapf(err, "error writing %s", tmp)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return errors.Wrapf(err, "error replacing %s", s.path)
	}
	return nil
}
