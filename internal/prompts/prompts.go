// Package prompts manages the editable prompt templates used by the
// extraction and refinement flows. Defaults ship embedded in the binary;
// edits are kept as in-memory overrides layered on top, so a delete-less
// reset is always possible by restarting.
package prompts

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"sort"
	"strings"
	"sync"
)

//go:embed defaults/*.txt
var defaultsFS embed.FS

// ErrNotFound reports a prompt name with neither a default nor an override.
var ErrNotFound = errors.New("prompt not found")

// Store serves prompt templates by name. Safe for concurrent use.
type Store struct {
	mu        sync.RWMutex
	defaults  map[string]string
	overrides map[string]string
}

// NewStore loads the embedded default templates.
func NewStore() (*Store, error) {
	defaults := map[string]string{}
	entries, err := fs.ReadDir(defaultsFS, "defaults")
	if err != nil {
		return nil, fmt.Errorf("read default prompts: %w", err)
	}
	for _, e := range entries {
		name := strings.TrimSuffix(e.Name(), ".txt")
		content, err := defaultsFS.ReadFile("defaults/" + e.Name())
		if err != nil {
			return nil, fmt.Errorf("read default prompt %s: %w", name, err)
		}
		defaults[name] = string(content)
	}
	return &Store{
		defaults:  defaults,
		overrides: map[string]string{},
	}, nil
}

// List returns every known prompt name in sorted order.
func (s *Store) List() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	seen := map[string]bool{}
	for name := range s.defaults {
		seen[name] = true
	}
	for name := range s.overrides {
		seen[name] = true
	}
	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Get returns the current content for a prompt, override first.
func (s *Store) Get(name string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if content, ok := s.overrides[name]; ok {
		return content, nil
	}
	if content, ok := s.defaults[name]; ok {
		return content, nil
	}
	return "", fmt.Errorf("%w: %s", ErrNotFound, name)
}

// Save stores an override for a prompt. New names are allowed.
func (s *Store) Save(name, content string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.overrides[name] = content
}
