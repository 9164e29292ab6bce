// Package kvstore is a small string key/value store persisted as one JSON
// file. It backs the auxiliary state the content service keeps outside the
// database: mirrors of user-created content and per-learner exposure logs.
package kvstore

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/natefinch/atomic"
)

var (
	// ErrNotFound is returned by GetJSON when the key is absent.
	ErrNotFound = errors.New("key not found")

	// ErrMalformed is returned by GetJSON when the stored value does not decode.
	ErrMalformed = errors.New("malformed value")
)

// Store is safe for concurrent use. With an empty path it keeps everything
// in memory.
type Store struct {
	path string

	mu   sync.RWMutex
	data map[string]string
}

// NewMemory returns a store that is never written to disk.
func NewMemory() *Store {
	return &Store{data: make(map[string]string)}
}

// Open loads the store from path, creating the parent directory if needed.
// A missing file starts empty. A corrupt file is logged and replaced by an
// empty store on the next write.
func Open(path string) (*Store, error) {
	if path == "" {
		return NewMemory(), nil
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create kv store dir: %w", err)
	}

	s := &Store{path: path, data: make(map[string]string)}

	raw, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read kv store: %w", err)
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return s, nil
	}

	if err := json.Unmarshal(raw, &s.data); err != nil {
		log.Printf("WARNING: kv store %s is corrupt, starting empty: %v", path, err)
		s.data = make(map[string]string)
	}
	return s, nil
}

// Path returns the backing file, or "" for a memory store.
func (s *Store) Path() string {
	return s.path
}

func (s *Store) Get(key string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.data[key]
	return v, ok
}

func (s *Store) Set(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev, had := s.data[key]
	s.data[key] = value
	if err := s.flushLocked(); err != nil {
		if had {
			s.data[key] = prev
		} else {
			delete(s.data, key)
		}
		return err
	}
	return nil
}

func (s *Store) Remove(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev, had := s.data[key]
	if !had {
		return nil
	}
	delete(s.data, key)
	if err := s.flushLocked(); err != nil {
		s.data[key] = prev
		return err
	}
	return nil
}

// Keys returns every key in sorted order.
func (s *Store) Keys() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	keys := make([]string, 0, len(s.data))
	for k := range s.data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// GetJSON decodes the value stored under key into v.
func (s *Store) GetJSON(key string, v any) error {
	raw, ok := s.Get(key)
	if !ok {
		return ErrNotFound
	}
	if err := json.Unmarshal([]byte(raw), v); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrMalformed, key, err)
	}
	return nil
}

// SetJSON encodes v and stores it under key.
func (s *Store) SetJSON(key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	return s.Set(key, string(raw))
}

func (s *Store) flushLocked() error {
	if s.path == "" {
		return nil
	}
	raw, err := json.MarshalIndent(s.data, "", "  ")
	if err != nil {
		return fmt.Errorf("encode kv store: %w", err)
	}
	if err := atomic.WriteFile(s.path, bytes.NewReader(raw)); err != nil {
		return fmt.Errorf("write kv store: %w", err)
	}
	return nil
}
