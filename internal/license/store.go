package license

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"
)

// Store persists licenses as a JSON document on disk. All operations are
// safe for concurrent use.
type Store struct {
	path string

	mu       sync.RWMutex
	licenses map[string]*License
}

type storeDocument struct {
	Version  string     `json:"version"`
	SavedAt  time.Time  `json:"saved_at"`
	Licenses []*License `json:"licenses"`
}

// NewStore opens (or creates) a license store at the given path
func NewStore(path string) (*Store, error) {
	s := &Store{
		path:     path,
		licenses: make(map[string]*License),
	}
	if err := s.load(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Store) load() error {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read license store: %w", err)
	}

	var doc storeDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("failed to parse license store: %w", err)
	}
	for _, l := range doc.Licenses {
		s.licenses[l.Key] = l
	}
	return nil
}

// save writes the store atomically via a temp file rename
func (s *Store) save() error {
	doc := storeDocument{
		Version: "1",
		SavedAt: time.Now().UTC(),
	}
	for _, l := range s.licenses {
		doc.Licenses = append(doc.Licenses, l)
	}
	sort.Slice(doc.Licenses, func(i, j int) bool {
		return doc.Licenses[i].CreatedAt.Before(doc.Licenses[j].CreatedAt)
	})

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode license store: %w", err)
	}

	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create license store directory: %w", err)
		}
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("failed to write license store: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("failed to replace license store: %w", err)
	}
	return nil
}

// Get returns the license for a key, or nil when unknown
func (s *Store) Get(key string) *License {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if l, ok := s.licenses[key]; ok {
		copied := *l
		return &copied
	}
	return nil
}

// Put inserts or replaces a license and persists the store
func (s *Store) Put(l *License) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := *l
	s.licenses[l.Key] = &copied
	return s.save()
}

// List returns all licenses ordered by creation time
func (s *Store) List() []*License {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*License, 0, len(s.licenses))
	for _, l := range s.licenses {
		copied := *l
		out = append(out, &copied)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}

// Len returns the number of stored licenses
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.licenses)
}
