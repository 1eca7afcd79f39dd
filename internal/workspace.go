package internal

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/starford/wikity/internal/index"
	"github.com/starford/wikity/internal/parser"
	"github.com/starford/wikity/internal/site"
	"github.com/starford/wikity/internal/storage"
)

// workspace bundles the components every command works with.
type workspace struct {
	cfg    *Config
	logger *slog.Logger
	store  *storage.FS
	db     *index.DB
	engine *parser.Engine
}

func newApplication(opts []Option) (*application, error) {
	app := &application{version: "dev"}
	for _, opt := range opts {
		opt(app)
	}
	if app.config == nil {
		return nil, fmt.Errorf("config is required")
	}
	if app.logger == nil {
		app.logger = slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
			Level: app.config.App.LogLevel,
		}))
	}
	return app, nil
}

// openWorkspace opens the site root, the page index and the engine.
func openWorkspace(cfg *Config, logger *slog.Logger) (*workspace, error) {
	pc := cfg.Site.Config

	store, err := storage.NewFS(cfg.Site.Root, pc.TemplatesFolder, pc.ImagesFolder, pc.OutputFolder)
	if err != nil {
		return nil, fmt.Errorf("init storage: %w", err)
	}

	dbPath := cfg.DBPath()
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create cache dir: %w", err)
	}
	db, err := index.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("init index: %w", err)
	}

	engine := parser.New(pc,
		parser.WithSource(store.Source(pc)),
		parser.WithLogger(logger),
		parser.WithMaxPasses(cfg.Site.MaxPasses),
	)

	logger.Debug("workspace opened",
		slog.String("root", store.Root()),
		slog.String("db_path", dbPath))

	return &workspace{cfg: cfg, logger: logger, store: store, db: db, engine: engine}, nil
}

func (w *workspace) newSite(notify site.Notifier) *site.Site {
	opts := []site.Option{
		site.WithJobs(w.cfg.Site.Jobs),
		site.WithLogger(w.logger),
	}
	if notify != nil {
		opts = append(opts, site.WithNotifier(notify))
	}
	return site.New(w.store, w.db, w.engine, opts...)
}

func (w *workspace) outputDir() string {
	return filepath.Join(w.store.Root(), filepath.FromSlash(w.cfg.Site.OutputFolder))
}

func (w *workspace) Close() error {
	return w.db.Close()
}
