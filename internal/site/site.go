// Package site compiles a folder of wikitext sources into a static HTML site.
//
// Pages are rendered in parallel by one shared engine. Each page is
// fingerprinted together with the template set and image names; pages whose
// fingerprint matches the index and whose output exists are skipped.
package site

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"path"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/starford/wikity/internal/apperr"
	"github.com/starford/wikity/internal/index"
	"github.com/starford/wikity/internal/parser"
	"github.com/starford/wikity/internal/storage"
)

// Event kinds passed to a Notifier.
const (
	EventCompiled = "compiled"
	EventRemoved  = "removed"
)

// DefaultJobs is the number of pages compiled concurrently.
const DefaultJobs = 4

// Notifier is called after a page output was written or removed.
type Notifier func(kind, path string)

// Report summarises one compile run.
type Report struct {
	Compiled int `json:"compiled"`
	Skipped  int `json:"skipped"`
	Removed  int `json:"removed"`
	Failed   int `json:"failed"`
}

// Option configures a Site.
type Option func(*Site)

// WithJobs sets the number of concurrent page compiles. Values below 1 are ignored.
func WithJobs(n int) Option {
	return func(s *Site) {
		if n > 0 {
			s.jobs = n
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Site) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithNotifier registers a callback for page events.
func WithNotifier(fn Notifier) Option {
	return func(s *Site) {
		s.notify = fn
	}
}

// Site compiles the sources of one site root.
type Site struct {
	store  storage.Provider
	db     index.PageIndex
	eng    *parser.Engine
	cfg    parser.Config
	jobs   int
	logger *slog.Logger
	notify Notifier
	shell  *template.Template
}

// New creates a Site. The engine's configuration decides folder names and
// output options.
func New(store storage.Provider, db index.PageIndex, eng *parser.Engine, opts ...Option) *Site {
	s := &Site{
		store:  store,
		db:     db,
		eng:    eng,
		cfg:    eng.Config(),
		jobs:   DefaultJobs,
		logger: slog.New(slog.DiscardHandler),
		shell:  pageShell,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// OutputPath returns the output file of a source path, relative to the root.
func (s *Site) OutputPath(src string) string {
	return path.Join(s.cfg.OutputFolder, URL(src))
}

// URL returns the page URL of a source path: "guide/intro page.wiki"
// becomes "Guide/Intro_page.html".
func URL(src string) string {
	return storage.PageName(src) + ".html"
}

// Compile renders every changed page, removes outputs of deleted sources and
// refreshes images and the stylesheet. Page failures are logged and
// counted; only site-level I/O errors and cancellation are returned.
func (s *Site) Compile(ctx context.Context) (Report, error) {
	var rep Report
	digest, err := index.AssetsDigest(s.store, s.cfg)
	if err != nil {
		return rep, fmt.Errorf("site: digest assets: %w", err)
	}
	metas, err := s.store.List("")
	if err != nil {
		return rep, fmt.Errorf("site: list sources: %w", err)
	}
	known, err := s.db.AllChecksums()
	if err != nil {
		return rep, fmt.Errorf("site: load index: %w", err)
	}

	var mu sync.Mutex
	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(s.jobs)
	for _, m := range metas {
		g.Go(func() error {
			if err := gCtx.Err(); err != nil {
				return err
			}
			compiled, err := s.compilePage(m.Path, digest, known[m.Path])
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err != nil:
				rep.Failed++
				s.logger.Error("site: compile failed", slog.String("path", m.Path), slog.String("error", err.Error()))
			case compiled:
				rep.Compiled++
			default:
				rep.Skipped++
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return rep, err
	}

	onDisk := make(map[string]struct{}, len(metas))
	for _, m := range metas {
		onDisk[m.Path] = struct{}{}
	}
	for p := range known {
		if _, ok := onDisk[p]; ok {
			continue
		}
		if err := s.Remove(p); err != nil {
			rep.Failed++
			s.logger.Error("site: remove failed", slog.String("path", p), slog.String("error", err.Error()))
			continue
		}
		rep.Removed++
	}

	if err := s.copyImages(); err != nil {
		return rep, err
	}
	if err := s.writeStylesheet(); err != nil {
		return rep, err
	}

	s.logger.Info("site: compiled",
		slog.Int("compiled", rep.Compiled),
		slog.Int("skipped", rep.Skipped),
		slog.Int("removed", rep.Removed),
		slog.Int("failed", rep.Failed))
	return rep, nil
}

// CompileFile renders one source unless its fingerprint is unchanged. It
// reports whether output was written.
func (s *Site) CompileFile(src string) (bool, error) {
	digest, err := index.AssetsDigest(s.store, s.cfg)
	if err != nil {
		return false, fmt.Errorf("site: digest assets: %w", err)
	}
	known, err := s.db.GetChecksum(src)
	if err != nil {
		return false, err
	}
	return s.compilePage(src, digest, known)
}

func (s *Site) compilePage(src, digest, known string) (bool, error) {
	data, err := s.store.Read(src)
	if err != nil {
		return false, err
	}
	sum := index.Fingerprint(data, digest)
	out := s.OutputPath(src)
	if sum == known && s.store.Exists(out) {
		return false, nil
	}

	text := string(data)
	res := s.eng.Parse(text)
	if !res.Converged {
		s.logger.Warn("site: page did not converge", slog.String("path", src), slog.Int("passes", res.Passes))
	}
	row := index.RowFor(src, sum, res)
	page, err := s.render(URL(src), row.Title, text, res)
	if err != nil {
		return false, err
	}
	if err := s.store.Write(out, page); err != nil {
		return false, err
	}
	if err := s.db.UpsertPage(row, text, index.LinkTargets(text)); err != nil {
		return false, err
	}
	s.logger.Debug("site: page written", slog.String("path", src), slog.String("output", out))
	s.emit(EventCompiled, src)
	return true, nil
}

// Remove deletes the output and index entry of a source path. A missing
// output file is not an error.
func (s *Site) Remove(src string) error {
	if err := s.store.Delete(s.OutputPath(src)); err != nil && !errors.Is(err, apperr.ErrNotFound) {
		return err
	}
	if err := s.db.DeletePage(src); err != nil {
		return err
	}
	s.emit(EventRemoved, src)
	return nil
}

func (s *Site) emit(kind, src string) {
	if s.notify != nil {
		s.notify(kind, src)
	}
}
