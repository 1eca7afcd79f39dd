// Package parser converts wikitext into HTML fragments.
//
// The engine is a fixed-point rewriter. Every pass applies the same ordered
// list of rules to the working text; parsing stops when a pass leaves the
// text unchanged or when the pass limit is reached. Hitting the limit is not
// an error: the partially expanded text is returned as is.
//
// Rule order within a pass is part of the contract, later rules assume the
// output shape of earlier ones:
//
//  1. escape: nowiki vault, comments, disallowed HTML, magic words
//  2. media: [[File:...]] embeds
//  3. links: internal and external links
//  4. functions: parser functions such as #if and #switch
//  5. templates: {{{placeholder}}} fallback and {{Template}} transclusion
//  6. structure: headings, rules, tables, lists, emphasis, paragraphs
//  7. references: <ref> registration
//
// After the loop the <references/> list is rendered and the post-processor
// restores vaulted content.
package parser

import (
	"log/slog"
	"time"
)

// DefaultMaxPasses bounds the number of rewrite passes over one document.
const DefaultMaxPasses = 20

// Config holds the folder layout used while rendering. It is read-only to
// the engine; the site compiler reads the remaining fields.
type Config struct {
	TemplatesFolder string `yaml:"templates_folder"`
	ImagesFolder    string `yaml:"images_folder"`
	OutputFolder    string `yaml:"output_folder"`
	Eleventy        bool   `yaml:"eleventy"`
	DefaultStyles   bool   `yaml:"default_styles"`
	CustomStyles    string `yaml:"custom_styles"`
}

// NewConfig returns a Config populated with the canonical folder names.
func NewConfig() Config {
	return Config{
		TemplatesFolder: "templates",
		ImagesFolder:    "images",
		OutputFolder:    "wikity-out",
		DefaultStyles:   true,
	}
}

func (c Config) withDefaults() Config {
	def := NewConfig()
	if c.TemplatesFolder == "" {
		c.TemplatesFolder = def.TemplatesFolder
	}
	if c.ImagesFolder == "" {
		c.ImagesFolder = def.ImagesFolder
	}
	if c.OutputFolder == "" {
		c.OutputFolder = def.OutputFolder
	}
	return c
}

// Metadata collects page directives found while parsing. Known keys are
// displayTitle (string) and toc, notoc, noindex (bool).
type Metadata map[string]any

// Bool reports whether key is set to true.
func (m Metadata) Bool(key string) bool {
	v, _ := m[key].(bool)
	return v
}

// String returns the string value of key or "".
func (m Metadata) String(key string) string {
	v, _ := m[key].(string)
	return v
}

// Result is the output of one parse.
type Result struct {
	Data      string   `json:"data"`
	Metadata  Metadata `json:"metadata"`
	Passes    int      `json:"passes"`
	Converged bool     `json:"converged"`
}

// Option configures an Engine.
type Option func(*Engine)

// WithSource sets where templates and images are looked up.
func WithSource(src Source) Option {
	return func(e *Engine) {
		e.source = src
	}
}

// WithLogger sets the logger used for non-fatal warnings.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithClock replaces time.Now for date functions.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}

// WithMaxPasses overrides DefaultMaxPasses. Values below 1 are ignored.
func WithMaxPasses(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.maxPasses = n
		}
	}
}

// Engine renders wikitext. It holds no per-document state and is safe for
// concurrent use; each call to Parse works on a fresh document.
type Engine struct {
	cfg       Config
	source    Source
	logger    *slog.Logger
	now       func() time.Time
	maxPasses int
}

// New creates an Engine. Without WithSource, templates and images are read
// relative to the working directory.
func New(cfg Config, opts ...Option) *Engine {
	e := &Engine{
		cfg:       cfg.withDefaults(),
		logger:    slog.New(slog.DiscardHandler),
		now:       time.Now,
		maxPasses: DefaultMaxPasses,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.source == nil {
		e.source = DirSource(".", e.cfg)
	}
	return e
}

// Config returns the engine configuration with defaults applied.
func (e *Engine) Config() Config {
	return e.cfg
}

// Parse renders text. It never fails: missing templates, bad arguments and
// runaway recursion all degrade to visible placeholder output.
func (e *Engine) Parse(text string) *Result {
	d := e.newDocument(text)
	out := d.run()
	return &Result{
		Data:      out,
		Metadata:  d.metadata,
		Passes:    d.passes,
		Converged: d.converged,
	}
}

// Parse renders text with a throwaway Engine reading from the working directory.
func Parse(text string, cfg Config) *Result {
	return New(cfg).Parse(text)
}
