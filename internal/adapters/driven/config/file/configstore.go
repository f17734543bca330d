package file

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/pelletier/go-toml/v2"

	"github.com/routy-labs/routy/internal/adapters/driven/config"
	"github.com/routy-labs/routy/internal/core/ports/driven"
)

var _ driven.ConfigStore = (*ConfigStore)(nil)

// HomeEnv overrides the default configuration directory.
const HomeEnv = "ROUTY_HOME"

const fileName = "config.toml"

// ConfigStore keeps settings in a TOML file. Keys are addressed with dots
// ("routes.tolerance_percent") and written back as nested tables. Every Set
// rewrites the file.
type ConfigStore struct {
	mu     sync.RWMutex
	path   string
	values config.Values
}

// DefaultDir returns $ROUTY_HOME, or ~/.routy when unset.
func DefaultDir() (string, error) {
	if dir := os.Getenv(HomeEnv); dir != "" {
		return dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home directory: %w", err)
	}
	return filepath.Join(home, ".routy"), nil
}

// NewConfigStore opens config.toml under dir, or under DefaultDir when dir
// is empty. A missing file is not an error.
func NewConfigStore(dir string) (*ConfigStore, error) {
	if dir == "" {
		d, err := DefaultDir()
		if err != nil {
			return nil, err
		}
		dir = d
	}
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("creating config directory: %w", err)
	}

	s := &ConfigStore{path: filepath.Join(dir, fileName), values: make(config.Values)}
	if err := s.Load(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *ConfigStore) Get(key string) (any, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.values[key]
	return v, ok
}

func (s *ConfigStore) GetString(key string) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.values.String(key)
}

func (s *ConfigStore) GetInt(key string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.values.Int(key)
}

func (s *ConfigStore) GetFloat(key string) float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.values.Float(key)
}

func (s *ConfigStore) GetBool(key string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.values.Bool(key)
}

func (s *ConfigStore) GetStringSlice(key string) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.values.Strings(key)
}

func (s *ConfigStore) Set(key string, value any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
	return s.write()
}

func (s *ConfigStore) Save() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.write()
}

// write must be called with mu held.
func (s *ConfigStore) write() error {
	data, err := toml.Marshal(s.values.Nest())
	if err != nil {
		return fmt.Errorf("encoding %s: %w", s.path, err)
	}
	return os.WriteFile(s.path, data, 0600)
}

// Load replaces the in-memory values with the file contents.
func (s *ConfigStore) Load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		s.values = make(config.Values)
		return nil
	}
	if err != nil {
		return err
	}

	var tree map[string]any
	if err := toml.Unmarshal(data, &tree); err != nil {
		return fmt.Errorf("parsing %s: %w", s.path, err)
	}
	s.values = config.Flatten(tree)
	return nil
}

func (s *ConfigStore) Path() string {
	return s.path
}
