// Package catsync mirrors product categories to folders on disk. The
// shop keeps per-category image assets in a directory tree that older
// tooling reads directly, so category writes keep that tree in step.
package catsync

import (
	"log"
	"os"
	"path/filepath"
	"strings"
)

// Hook receives category lifecycle notifications. Handlers call these
// only after the database write has committed; a failing hook never
// rolls back the category change.
type Hook interface {
	Created(nombre string)
	Renamed(old, nuevo string)
	Deleted(nombre string)
}

// Noop is the hook used when no categories directory is configured.
type Noop struct{}

func (Noop) Created(string)         {}
func (Noop) Renamed(string, string) {}
func (Noop) Deleted(string)         {}

// FolderMirror maintains one directory per category under a base path.
type FolderMirror struct {
	base string
}

// NewFolderMirror creates a FolderMirror rooted at base, creating the
// base directory if needed.
func NewFolderMirror(base string) (*FolderMirror, error) {
	if err := os.MkdirAll(base, 0o755); err != nil {
		return nil, err
	}
	return &FolderMirror{base: base}, nil
}

func (m *FolderMirror) Created(nombre string) {
	if err := os.MkdirAll(m.path(nombre), 0o755); err != nil {
		log.Printf("WARN: catsync create %q: %v", nombre, err)
	}
}

func (m *FolderMirror) Renamed(old, nuevo string) {
	if err := os.Rename(m.path(old), m.path(nuevo)); err != nil {
		if os.IsNotExist(err) {
			// The old folder was never created or was removed by hand.
			m.Created(nuevo)
			return
		}
		log.Printf("WARN: catsync rename %q -> %q: %v", old, nuevo, err)
	}
}

func (m *FolderMirror) Deleted(nombre string) {
	if err := os.RemoveAll(m.path(nombre)); err != nil {
		log.Printf("WARN: catsync delete %q: %v", nombre, err)
	}
}

// path maps a category name to its folder, flattening separators so a
// name can never escape the base directory.
func (m *FolderMirror) path(nombre string) string {
	safe := strings.NewReplacer("/", "_", "\\", "_", "..", "_").Replace(nombre)
	return filepath.Join(m.base, safe)
}
