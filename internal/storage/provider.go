// Package storage defines the vault file-system abstraction.
package storage

import "github.com/starford/diary/internal/models"

// Provider is the interface for vault file operations. All paths are
// relative to the vault root and use forward slashes.
type Provider interface {
	// List returns metadata for every entry file under dir.
	List(dir string) ([]models.EntryMeta, error)
	// Read returns the raw bytes of the file at path. Missing files yield an
	// error matching os.ErrNotExist.
	Read(path string) ([]byte, error)
	// Exists reports whether a regular file exists at path.
	Exists(path string) (bool, error)
	// Write atomically writes content to path, creating parent directories.
	Write(path string, content []byte) error
	// Delete removes the file at path.
	Delete(path string) error
	// Move renames oldPath to newPath.
	Move(oldPath, newPath string) error
}
