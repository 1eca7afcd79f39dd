package internal

import (
	"fmt"
	"log/slog"
	"path/filepath"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/wikity/internal/parser"
)

// Auth modes.
const (
	AuthModeDisabled = "disabled"
	AuthModeToken    = "token"
)

// Config represents the application configuration.
type Config struct {
	App   ApplicationConfig `yaml:"app"`
	Site  SiteConfig        `yaml:"site"`
	Cache CacheConfig       `yaml:"cache"`
	Auth  AuthConfig        `yaml:"auth"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.App.Validate(); err != nil {
		return err
	}
	if err := c.Site.Validate(); err != nil {
		return err
	}
	return c.Auth.Validate()
}

// DBPath returns the index database file. An empty cache path places it in
// the output folder.
func (c *Config) DBPath() string {
	if c.Cache.Path != "" {
		return c.Cache.Path
	}
	return filepath.Join(c.Site.Root, c.Site.OutputFolder, ".wikity.db")
}

// ApplicationConfig holds application-level configuration.
type ApplicationConfig struct {
	LogLevel slog.Level `yaml:"log_level"`
	HTTP     HTTPConfig `yaml:"http"`
}

// Validate validates the application configuration.
func (c *ApplicationConfig) Validate() error {
	return c.HTTP.Validate()
}

// HTTPConfig holds HTTP server configuration.
type HTTPConfig struct {
	Port int `yaml:"port"`
}

// Address returns HTTP server address.
func (c *HTTPConfig) Address() string {
	return fmt.Sprintf(":%d", c.Port)
}

// Validate validates the HTTP configuration.
func (c *HTTPConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Port, validation.Required, validation.Min(1), validation.Max(65535)),
	)
}

// SiteConfig describes the site being compiled. The engine settings are
// inlined so that templates_folder and friends sit directly under site.
type SiteConfig struct {
	Root          string `yaml:"root"`
	Jobs          int    `yaml:"jobs"`
	MaxPasses     int    `yaml:"max_passes"`
	parser.Config `yaml:",inline"`
}

// Validate validates the site configuration.
func (c *SiteConfig) Validate() error {
	if err := validation.ValidateStruct(c,
		validation.Field(&c.Root, validation.Required),
		validation.Field(&c.Jobs, validation.Required, validation.Min(1), validation.Max(256)),
		validation.Field(&c.MaxPasses, validation.Required, validation.Min(1), validation.Max(1000)),
	); err != nil {
		return err
	}
	pc := &c.Config
	return validation.ValidateStruct(pc,
		validation.Field(&pc.TemplatesFolder, validation.Required),
		validation.Field(&pc.ImagesFolder, validation.Required),
		validation.Field(&pc.OutputFolder, validation.Required,
			validation.NotIn(".", "..", pc.TemplatesFolder, pc.ImagesFolder).
				Error("must be a dedicated folder")),
	)
}

// CacheConfig holds the SQLite page index location.
type CacheConfig struct {
	Path string `yaml:"path"`
}

// AuthConfig holds authentication configuration for the serve-mode API.
//
// Mode controls how authentication is enforced:
//   - "disabled" (default): no authentication required, suitable for local dev.
//   - "token": Bearer token authentication; Token must be non-empty.
type AuthConfig struct {
	Mode  string `yaml:"mode"`
	Token string `yaml:"token"`
}

// Validate validates the auth configuration.
func (c *AuthConfig) Validate() error {
	if c.Mode == "" {
		c.Mode = AuthModeDisabled
	}
	if err := validation.ValidateStruct(c,
		validation.Field(&c.Mode, validation.Required, validation.In(AuthModeDisabled, AuthModeToken)),
	); err != nil {
		return err
	}
	if c.Mode == AuthModeToken && c.Token == "" {
		return fmt.Errorf("auth: mode is %q but token is empty", AuthModeToken)
	}
	return nil
}

// AuthEnabled returns true when authentication is active.
func (c *AuthConfig) AuthEnabled() bool {
	return c.Mode == AuthModeToken
}

// NewDefaultConfig returns a new Config with sensible default values.
func NewDefaultConfig() *Config {
	return &Config{
		App: ApplicationConfig{
			LogLevel: slog.LevelInfo,
			HTTP: HTTPConfig{
				Port: 8080,
			},
		},
		Site: SiteConfig{
			Root:      ".",
			Jobs:      4,
			MaxPasses: parser.DefaultMaxPasses,
			Config:    parser.NewConfig(),
		},
		Auth: AuthConfig{
			Mode: AuthModeDisabled,
		},
	}
}
