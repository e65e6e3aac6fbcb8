// Package statestore provides a small persisted key-value store for caller
// state such as cached scans and selected targets.
package statestore

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/yaml.v3"
)

// Store is a key-value store whose values are arbitrary YAML-encodable data.
type Store interface {
	// Load decodes the value stored under key into out. It reports false
	// when the key is absent.
	Load(key string, out any) (bool, error)
	// Save stores value under key.
	Save(key string, value any) error
	// Keys returns the stored keys.
	Keys() []string
	// Clear removes every key.
	Clear() error
}

// Get returns the value stored under key, or def when it is absent.
func Get[T any](s Store, key string, def T) (T, error) {
	var value T

	ok, err := s.Load(key, &value)
	if err != nil {
		return def, err
	}

	if !ok {
		return def, nil
	}

	return value, nil
}

// Set stores value under key.
func Set[T any](s Store, key string, value T) error {
	return s.Save(key, value)
}

type memoryStore struct {
	mu      sync.Mutex
	entries map[string]yaml.Node
	// persist runs with mu held after every mutation.
	persist func(entries map[string]yaml.Node) error
}

// NewMemoryStore returns a Store that lives only in memory.
func NewMemoryStore() Store {
	return &memoryStore{entries: map[string]yaml.Node{}}
}

// Load implements Store.
func (s *memoryStore) Load(key string, out any) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	node, ok := s.entries[key]
	if !ok {
		return false, nil
	}

	if err := node.Decode(out); err != nil {
		slog.Error("failed to decode state entry", "key", key, "error", err)
		return false, fmt.Errorf("decode %q: %w", key, err)
	}

	return true, nil
}

// Save implements Store.
func (s *memoryStore) Save(key string, value any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var node yaml.Node
	if err := node.Encode(value); err != nil {
		slog.Error("failed to encode state entry", "key", key, "error", err)
		return fmt.Errorf("encode %q: %w", key, err)
	}

	s.entries[key] = node
	slog.Debug("saved state entry", "key", key)

	return s.flush()
}

// Keys implements Store.
func (s *memoryStore) Keys() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	keys := make([]string, 0, len(s.entries))
	for key := range s.entries {
		keys = append(keys, key)
	}

	return keys
}

// Clear implements Store.
func (s *memoryStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries = map[string]yaml.Node{}
	slog.Debug("cleared state")

	return s.flush()
}

func (s *memoryStore) flush() error {
	if s.persist == nil {
		return nil
	}

	return s.persist(s.entries)
}

// stateFile is the on-disk layout of a file store.
type stateFile struct {
	Version int                  `yaml:"version"`
	Entries map[string]yaml.Node `yaml:"entries"`
}

// OpenFileStore opens (or creates on first write) a YAML-backed Store at
// path. Entries written under a different version are discarded, so
// bumping version invalidates all previously persisted state.
func OpenFileStore(path string, version int) (Store, error) {
	store := &memoryStore{entries: map[string]yaml.Node{}}

	data, err := os.ReadFile(path)

	switch {
	case errors.Is(err, os.ErrNotExist):
		slog.Debug("state file does not exist yet", "path", path)
	case err != nil:
		slog.Error("failed to read state file", "path", path, "error", err)
		return nil, fmt.Errorf("read state file: %w", err)
	default:
		var file stateFile
		if err := yaml.Unmarshal(data, &file); err != nil {
			slog.Error("failed to parse state file", "path", path, "error", err)
			return nil, fmt.Errorf("parse state file %s: %w", path, err)
		}

		if file.Version == version {
			if file.Entries != nil {
				store.entries = file.Entries
			}
		} else {
			slog.Info("discarding state written by another version", "path", path, "found", file.Version, "want", version)
		}
	}

	store.persist = func(entries map[string]yaml.Node) error {
		return writeStateFile(path, stateFile{Version: version, Entries: entries})
	}

	return store, nil
}

func writeStateFile(path string, file stateFile) error {
	data, err := yaml.Marshal(file)
	if err != nil {
		return fmt.Errorf("encode state file: %w", err)
	}

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return fmt.Errorf("create state directory: %w", err)
		}
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		slog.Error("failed to write state file", "path", tmp, "error", err)
		return fmt.Errorf("write state file: %w", err)
	}

	if err := os.Rename(tmp, path); err != nil {
		slog.Error("failed to replace state file", "path", path, "error", err)
		return fmt.Errorf("replace state file: %w", err)
	}

	return nil
}
