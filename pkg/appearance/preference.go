// Package appearance holds the light/dark preference and the theme tokens
// the HTML host paints with. The preference lives outside the editing
// session and survives restarts through a Store.
package appearance

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// Preference is the persisted colour scheme choice. The zero value means
// "follow the platform".
type Preference string

const (
	Unset Preference = ""
	Light Preference = "light"
	Dark  Preference = "dark"
)

// ParsePreference accepts "light", "dark" and treats anything else
// (including "auto") as Unset.
func ParsePreference(raw string) Preference {
	switch Preference(strings.ToLower(strings.TrimSpace(raw))) {
	case Light:
		return Light
	case Dark:
		return Dark
	default:
		return Unset
	}
}

// Next cycles dark -> light -> unset -> dark.
func (p Preference) Next() Preference {
	switch p {
	case Dark:
		return Light
	case Light:
		return Unset
	default:
		return Dark
	}
}

// String returns "auto" for Unset.
func (p Preference) String() string {
	if p == Unset {
		return "auto"
	}
	return string(p)
}

// Store persists the preference.
type Store interface {
	Load(ctx context.Context) (Preference, error)
	Save(ctx context.Context, p Preference) error
}

// FileStore keeps the preference in a one-line file; Unset removes it.
type FileStore struct {
	mu   sync.Mutex
	path string
}

// NewFileStore returns a store at path.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: filepath.Clean(path)}
}

func (s *FileStore) Load(ctx context.Context) (Preference, error) {
	if err := ctx.Err(); err != nil {
		return Unset, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return Unset, nil
	}
	if err != nil {
		return Unset, fmt.Errorf("appearance: read %s: %w", s.path, err)
	}
	return ParsePreference(string(data)), nil
}

func (s *FileStore) Save(ctx context.Context, p Preference) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if p == Unset {
		if err := os.Remove(s.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("appearance: clear %s: %w", s.path, err)
		}
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("appearance: create dir: %w", err)
	}
	if err := os.WriteFile(s.path, []byte(string(p)+"\n"), 0o644); err != nil {
		return fmt.Errorf("appearance: write %s: %w", s.path, err)
	}
	return nil
}

// MemoryStore keeps the preference in memory.
type MemoryStore struct {
	mu   sync.Mutex
	pref Preference
}

func (s *MemoryStore) Load(context.Context) (Preference, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pref, nil
}

func (s *MemoryStore) Save(_ context.Context, p Preference) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pref = p
	return nil
}

// Toggle advances the stored preference one step and returns the new value.
func Toggle(ctx context.Context, store Store) (Preference, error) {
	current, err := store.Load(ctx)
	if err != nil {
		return Unset, err
	}
	next := current.Next()
	if err := store.Save(ctx, next); err != nil {
		return current, err
	}
	return next, nil
}
