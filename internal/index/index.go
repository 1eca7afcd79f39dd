package index

import "github.com/starford/wikity/internal/models"

// PageIndex defines the page indexing operations.
// Consumers should depend on this interface rather than the concrete *DB type
// to facilitate testing with fakes.
type PageIndex interface {
	UpsertPage(p PageRow, body string, links []string) error
	DeletePage(path string) error
	GetPage(path string) (*PageRow, error)
	GetChecksum(path string) (string, error)
	ListPages() ([]PageRow, error)
	AllChecksums() (map[string]string, error)
	Backlinks(name string) ([]string, error)
	Outlinks(path string) ([]models.Link, error)
	Search(query string, limit int) ([]SearchResult, error)
	Close() error
}

// Verify *DB satisfies PageIndex at compile time.
var _ PageIndex = (*DB)(nil)
