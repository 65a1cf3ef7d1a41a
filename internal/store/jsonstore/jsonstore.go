package jsonstore

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/idilsaglam/grocery/internal/model"
)

// JSON-backed storage for the dev store. Single file, human-readable,
// portable. Writes go through a temp file and a rename.

// DefaultFileName is used when the dev store is given a directory.
const DefaultFileName = "items.json"

// File is one JSON array of items on disk.
type File struct {
	path string
}

// Open returns a File for path. If path is a directory the items live in
// DefaultFileName inside it. Nothing is read until Load.
func Open(path string) *File {
	if fi, err := os.Stat(path); err == nil && fi.IsDir() {
		path = filepath.Join(path, DefaultFileName)
	}
	return &File{path: path}
}

func (f *File) Path() string { return f.path }

// Load returns the stored items, or an empty list when the file is missing.
func (f *File) Load() ([]model.Item, error) {
	b, err := os.ReadFile(f.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []model.Item{}, nil
		}
		return nil, fmt.Errorf("read file: %w", err)
	}
	var items []model.Item
	if err := json.Unmarshal(b, &items); err != nil {
		return nil, fmt.Errorf("json unmarshal: %w", err)
	}
	if items == nil {
		items = []model.Item{}
	}
	return items, nil
}

// Save replaces the stored items.
func (f *File) Save(items []model.Item) error {
	if items == nil {
		items = []model.Item{}
	}
	b, err := json.MarshalIndent(items, "", "  ")
	if err != nil {
		return fmt.Errorf("json marshal: %w", err)
	}
	if dir := filepath.Dir(f.path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("mkdir: %w", err)
		}
	}
	tmp := f.path + ".tmp"
	if err := os.WriteFile(tmp, b, 0o644); err != nil {
		return fmt.Errorf("write file: %w", err)
	}
	if err := os.Rename(tmp, f.path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("rename: %w", err)
	}
	return nil
}
