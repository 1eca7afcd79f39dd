// Package pageservice coordinates storage, index and engine for the API and
// MCP surfaces.
package pageservice

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/starford/wikity/internal/apperr"
	"github.com/starford/wikity/internal/index"
	"github.com/starford/wikity/internal/models"
	"github.com/starford/wikity/internal/parser"
	"github.com/starford/wikity/internal/site"
	"github.com/starford/wikity/internal/storage"
)

// PageListItem is a lightweight item in a list response.
type PageListItem struct {
	Path      string    `json:"path"`
	Name      string    `json:"name"`
	URL       string    `json:"url"`
	Title     string    `json:"title"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Service coordinates storage, index and engine operations.
type Service struct {
	store storage.Provider
	db    index.PageIndex
	eng   *parser.Engine
}

// NewService creates a new page service.
func NewService(store storage.Provider, db index.PageIndex, eng *parser.Engine) *Service {
	return &Service{store: store, db: db, eng: eng}
}

// Parse renders text with the site's engine, so templates and images
// resolve as they do for compiled pages.
func (s *Service) Parse(_ context.Context, text string) *parser.Result {
	return s.eng.Parse(text)
}

// GetPage renders the page at path and enriches it with index data. path is
// a source path ("guide/intro.wiki") or a page name ("Guide/Intro").
func (s *Service) GetPage(_ context.Context, path string) (*models.Page, error) {
	path, err := s.resolve(path)
	if err != nil {
		return nil, err
	}
	data, err := s.store.Read(path)
	if err != nil {
		return nil, err
	}
	text := string(data)
	res := s.eng.Parse(text)
	row := index.RowFor(path, "", res)

	page := &models.Page{
		Path:     path,
		Name:     row.Name,
		URL:      "/" + site.URL(path),
		Title:    row.Title,
		Source:   text,
		HTML:     res.Data,
		Metadata: res.Metadata,
		Links:    []models.Link{},
	}
	for _, target := range index.LinkTargets(text) {
		page.Links = append(page.Links, models.Link{Source: path, Target: target})
	}
	if indexed, err := s.db.GetPage(path); err == nil {
		page.Checksum = indexed.Checksum
		page.UpdatedAt = indexed.UpdatedAt
	} else if !errors.Is(err, apperr.ErrNotFound) {
		return nil, err
	}
	bl, err := s.db.Backlinks(row.Name)
	if err != nil {
		return nil, err
	}
	page.Backlinks = nonNilSlice(bl)
	return page, nil
}

// ListPages returns every indexed page.
func (s *Service) ListPages(_ context.Context) ([]PageListItem, error) {
	rows, err := s.db.ListPages()
	if err != nil {
		return nil, err
	}
	items := make([]PageListItem, len(rows))
	for i, r := range rows {
		items[i] = PageListItem{
			Path:      r.Path,
			Name:      r.Name,
			URL:       "/" + site.URL(r.Path),
			Title:     r.Title,
			UpdatedAt: r.UpdatedAt,
		}
	}
	return items, nil
}

// Search delegates search to the index.
func (s *Service) Search(_ context.Context, query string, limit int) ([]index.SearchResult, error) {
	results, err := s.db.Search(query, limit)
	return nonNilSlice(results), err
}

// Backlinks returns the source paths of pages linking to path, which is a
// source path or a page name.
func (s *Service) Backlinks(_ context.Context, path string) ([]string, error) {
	bl, err := s.db.Backlinks(storage.PageName(strings.TrimSuffix(path, ".html")))
	return nonNilSlice(bl), err
}

// resolve maps a page name to the source path of an indexed page. Source
// paths are returned unchanged.
func (s *Service) resolve(path string) (string, error) {
	path = strings.TrimPrefix(path, "/")
	if path == "" {
		return "", fmt.Errorf("pageservice: empty path: %w", apperr.ErrNotFound)
	}
	if strings.HasSuffix(path, storage.SourceExt) {
		return path, nil
	}
	name := storage.PageName(strings.TrimSuffix(path, ".html"))
	rows, err := s.db.ListPages()
	if err != nil {
		return "", err
	}
	for _, r := range rows {
		if r.Name == name {
			return r.Path, nil
		}
	}
	return "", fmt.Errorf("pageservice: page %s: %w", name, apperr.ErrNotFound)
}

func nonNilSlice[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
