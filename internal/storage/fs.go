package storage

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/natefinch/atomic"

	"github.com/starford/wikity/internal/apperr"
	"github.com/starford/wikity/internal/checksum"
	"github.com/starford/wikity/internal/models"
	"github.com/starford/wikity/internal/parser"
)

// SourceExt is the extension of wikitext sources.
const SourceExt = ".wiki"

// FS implements Provider backed by the local file system.
type FS struct {
	root    string // absolute path to the site directory
	exclude map[string]bool
}

// NewFS creates a new FS provider rooted at the given directory. Directories
// named in exclude (relative to root) are skipped by List unless listed
// directly. The directory must already exist.
func NewFS(root string, exclude ...string) (*FS, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("storage: resolve root: %w", err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("storage: stat root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("storage: root is not a directory: %s", abs)
	}
	f := &FS{root: abs, exclude: make(map[string]bool, len(exclude))}
	for _, e := range exclude {
		f.exclude[filepath.ToSlash(filepath.Clean(e))] = true
	}
	return f, nil
}

// Root returns the absolute site directory.
func (f *FS) Root() string {
	return f.root
}

// Source returns a parser.Source reading templates and images from the site.
func (f *FS) Source(cfg parser.Config) parser.Source {
	return parser.DirSource(f.root, cfg)
}

// safePath resolves a relative path against the site root and rejects
// any result that escapes it.
func (f *FS) safePath(rel string) (string, error) {
	if rel == "" {
		return f.root, nil
	}
	cleaned := filepath.Clean(filepath.FromSlash(rel))
	if filepath.IsAbs(cleaned) {
		return "", fmt.Errorf("storage: %s: %w", rel, apperr.ErrOutsideRoot)
	}
	abs, err := filepath.Abs(filepath.Join(f.root, cleaned))
	if err != nil {
		return "", fmt.Errorf("storage: resolve path: %w", err)
	}
	if !strings.HasPrefix(abs, f.root+string(os.PathSeparator)) && abs != f.root {
		return "", fmt.Errorf("storage: %s: %w", rel, apperr.ErrOutsideRoot)
	}
	return abs, nil
}

func (f *FS) rel(abs string) string {
	r, _ := filepath.Rel(f.root, abs)
	return filepath.ToSlash(r)
}

// List walks dir and returns metadata for every .wiki file. Hidden and
// excluded directories below dir are skipped. A missing dir lists nothing.
func (f *FS) List(dir string) ([]models.PageMetadata, error) {
	base, err := f.safePath(dir)
	if err != nil {
		return nil, err
	}
	var out []models.PageMetadata
	err = filepath.WalkDir(base, func(p string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() {
			if p != base && (strings.HasPrefix(d.Name(), ".") || f.exclude[f.rel(p)]) {
				return filepath.SkipDir
			}
			return nil
		}
		if !strings.HasSuffix(d.Name(), SourceExt) {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		data, err := os.ReadFile(p)
		if err != nil {
			return err
		}
		out = append(out, models.PageMetadata{
			Path:      f.rel(p),
			Checksum:  checksum.Sum(data),
			UpdatedAt: info.ModTime(),
		})
		return nil
	})
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("storage: list: %w", err)
	}
	return out, nil
}

// Files returns the regular files directly inside dir. A missing dir lists nothing.
func (f *FS) Files(dir string) ([]string, error) {
	base, err := f.safePath(dir)
	if err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(base)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("storage: files %s: %w", dir, err)
	}
	var out []string
	for _, e := range entries {
		if e.Type().IsRegular() {
			out = append(out, f.rel(filepath.Join(base, e.Name())))
		}
	}
	return out, nil
}

// Exists reports whether a regular file exists at path.
func (f *FS) Exists(path string) bool {
	abs, err := f.safePath(path)
	if err != nil {
		return false
	}
	info, err := os.Stat(abs)
	return err == nil && info.Mode().IsRegular()
}

// Read returns the raw bytes of a site file.
func (f *FS) Read(path string) ([]byte, error) {
	abs, err := f.safePath(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(abs)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("storage: read %s: %w", path, apperr.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("storage: read %s: %w", path, err)
	}
	return data, nil
}

// Write atomically replaces path with content.
func (f *FS) Write(path string, content []byte) error {
	abs, err := f.safePath(path)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
		return fmt.Errorf("storage: mkdir: %w", err)
	}
	if err := atomic.WriteFile(abs, bytes.NewReader(content)); err != nil {
		return fmt.Errorf("storage: write %s: %w", path, err)
	}
	return nil
}

// Copy atomically copies src to dst.
func (f *FS) Copy(src, dst string) error {
	absSrc, err := f.safePath(src)
	if err != nil {
		return err
	}
	absDst, err := f.safePath(dst)
	if err != nil {
		return err
	}
	in, err := os.Open(absSrc)
	if err != nil {
		return fmt.Errorf("storage: copy %s: %w", src, err)
	}
	defer in.Close()
	if err := os.MkdirAll(filepath.Dir(absDst), 0o755); err != nil {
		return fmt.Errorf("storage: mkdir: %w", err)
	}
	if err := atomic.WriteFile(absDst, in); err != nil {
		return fmt.Errorf("storage: copy %s: %w", src, err)
	}
	return nil
}

// Delete removes a file from the site.
func (f *FS) Delete(path string) error {
	abs, err := f.safePath(path)
	if err != nil {
		return err
	}
	if err := os.Remove(abs); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("storage: delete %s: %w", path, apperr.ErrNotFound)
		}
		return fmt.Errorf("storage: delete %s: %w", path, err)
	}
	return nil
}

// Digest fingerprints the paths and contents of every .wiki file under dir.
func (f *FS) Digest(dir string) (string, error) {
	metas, err := f.List(dir)
	if err != nil {
		return "", err
	}
	sort.Slice(metas, func(i, j int) bool { return metas[i].Path < metas[j].Path })
	parts := make([][]byte, 0, 2*len(metas))
	for _, m := range metas {
		parts = append(parts, []byte(m.Path), []byte(m.Checksum))
	}
	return checksum.Sum(parts...), nil
}

// PageName maps a source path to its page name: ".wiki" is dropped, spaces
// become underscores and each path segment starts upper-case.
// "guide/intro page.wiki" becomes "Guide/Intro_page".
func PageName(path string) string {
	path = strings.TrimSuffix(filepath.ToSlash(path), SourceExt)
	segs := strings.Split(strings.ReplaceAll(path, " ", "_"), "/")
	for i, s := range segs {
		r, n := utf8.DecodeRuneInString(s)
		if n > 0 {
			segs[i] = string(unicode.ToUpper(r)) + s[n:]
		}
	}
	return strings.Join(segs, "/")
}
