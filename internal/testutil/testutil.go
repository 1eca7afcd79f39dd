// Package testutil provides shared test helpers for setting up sites and databases.
package testutil

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/starford/wikity/internal/index"
	"github.com/starford/wikity/internal/parser"
	"github.com/starford/wikity/internal/storage"
)

// Site is a temporary site directory wired to a store, an index and an engine.
type Site struct {
	Root   string
	Store  *storage.FS
	DB     *index.DB
	Engine *parser.Engine
}

// TestDB creates a temporary SQLite database that is automatically cleaned up.
func TestDB(t *testing.T) *index.DB {
	t.Helper()
	db, err := index.Open(filepath.Join(t.TempDir(), "wikity-test.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// WriteFile writes body to name below root, creating directories.
func WriteFile(t *testing.T, root, name, body string) {
	t.Helper()
	p := filepath.Join(root, filepath.FromSlash(name))
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(p, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
}

// TestSite creates a site from files (path to body), builds its engine with
// a fixed clock and indexes every page.
func TestSite(t *testing.T, files map[string]string) *Site {
	t.Helper()
	root := t.TempDir()
	for name, body := range files {
		WriteFile(t, root, name, body)
	}
	cfg := parser.NewConfig()
	store, err := storage.NewFS(root, cfg.TemplatesFolder, cfg.ImagesFolder, cfg.OutputFolder)
	if err != nil {
		t.Fatal(err)
	}
	clock := func() time.Time { return time.Date(2024, 3, 5, 14, 7, 9, 0, time.UTC) }
	eng := parser.New(cfg, parser.WithSource(store.Source(cfg)), parser.WithClock(clock))
	db := TestDB(t)
	if err := index.Sync(db, store, eng, slog.New(slog.DiscardHandler)); err != nil {
		t.Fatal(err)
	}
	return &Site{Root: root, Store: store, DB: db, Engine: eng}
}
