// Package storage defines the site file-system abstraction.
package storage

import "github.com/starford/wikity/internal/models"

// Provider is the interface for site file operations. Paths are relative to
// the site root and use forward slashes.
type Provider interface {
	// List returns metadata for every .wiki file under dir.
	List(dir string) ([]models.PageMetadata, error)
	// Files returns the regular files directly inside dir.
	Files(dir string) ([]string, error)
	// Exists reports whether a regular file exists at path.
	Exists(path string) bool
	// Read returns the raw bytes of the file at path.
	Read(path string) ([]byte, error)
	// Write atomically writes content to path, creating parent directories.
	Write(path string, content []byte) error
	// Copy atomically copies src to dst.
	Copy(src, dst string) error
	// Delete removes the file at path.
	Delete(path string) error
	// Digest fingerprints every .wiki file under dir.
	Digest(dir string) (string, error)
}
