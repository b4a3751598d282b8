// Package jsonstore keeps a todo collection in a single human-readable
// JSON file.
package jsonstore

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/idilsaglam/todos/internal/model"
)

// DefaultFileName is used when no path is configured.
const DefaultFileName = "todos.json"

// Store reads and writes one JSON file. No locking; callers serialize access.
type Store struct {
	path string
}

// New returns a store backed by path. A relative path is resolved against
// the working directory.
func New(path string) (*Store, error) {
	if path == "" {
		path = DefaultFileName
	}
	if !filepath.IsAbs(path) {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("getwd: %w", err)
		}
		path = filepath.Join(wd, path)
	}
	return &Store{path: path}, nil
}

// Path is the absolute file location.
func (s *Store) Path() string { return s.path }

// Load returns the stored todos, or an empty collection when the file does
// not exist yet.
func (s *Store) Load() ([]model.Todo, error) {
	b, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []model.Todo{}, nil
		}
		return nil, fmt.Errorf("read file: %w", err)
	}
	var todos []model.Todo
	if err := json.Unmarshal(b, &todos); err != nil {
		return nil, fmt.Errorf("json unmarshal: %w", err)
	}
	return todos, nil
}

// Save replaces the file contents with todos.
func (s *Store) Save(todos []model.Todo) error {
	if todos == nil {
		todos = []model.Todo{}
	}
	b, err := json.MarshalIndent(todos, "", "  ")
	if err != nil {
		return fmt.Errorf("json marshal: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("mkdir: %w", err)
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, b, 0o644); err != nil {
		return fmt.Errorf("write file: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("rename: %w", err)
	}
	return nil
}
