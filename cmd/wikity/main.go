package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/joho/godotenv/autoload"
	"github.com/mattn/go-isatty"
	"github.com/urfave/cli/v3"

	"github.com/starford/wikity/internal"
	"github.com/starford/wikity/internal/parser"
	pkgconfig "github.com/starford/wikity/pkg/config"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

// newLogger writes text to a terminal and JSON otherwise.
func newLogger(w *os.File, level slog.Level) *slog.Logger {
	opts := &slog.HandlerOptions{Level: level}
	if isatty.IsTerminal(w.Fd()) || isatty.IsCygwinTerminal(w.Fd()) {
		return slog.New(slog.NewTextHandler(w, opts))
	}
	return slog.New(slog.NewJSONHandler(w, opts))
}

// loadConfig reads the config file, if any, then applies command line
// flags on top. With folderArg the first argument names the site root.
func loadConfig(cmd *cli.Command, folderArg bool) (*internal.Config, error) {
	cfg := internal.NewDefaultConfig()
	if err := pkgconfig.LoadOptional(cmd.String("config"), cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if dir := cmd.Args().First(); folderArg && dir != "" {
		cfg.Site.Root = dir
	}
	if cmd.IsSet("output") {
		cfg.Site.OutputFolder = cmd.String("output")
	}
	if cmd.IsSet("templates") {
		cfg.Site.TemplatesFolder = cmd.String("templates")
	}
	if cmd.IsSet("images") {
		cfg.Site.ImagesFolder = cmd.String("images")
	}
	if cmd.IsSet("eleventy") {
		cfg.Site.Eleventy = cmd.Bool("eleventy")
	}
	if cmd.IsSet("no-default-styles") {
		cfg.Site.DefaultStyles = !cmd.Bool("no-default-styles")
	}
	if cmd.IsSet("jobs") {
		cfg.Site.Jobs = int(cmd.Int("jobs"))
	}
	if cmd.IsSet("port") {
		cfg.App.HTTP.Port = int(cmd.Int("port"))
	}
	if cmd.Bool("verbose") {
		cfg.App.LogLevel = slog.LevelDebug
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func options(cmd *cli.Command) ([]internal.Option, error) {
	cfg, err := loadConfig(cmd, true)
	if err != nil {
		return nil, err
	}
	logger := newLogger(os.Stderr, cfg.App.LogLevel)
	slog.SetDefault(logger)
	return []internal.Option{
		internal.WithConfig(cfg),
		internal.WithLogger(logger),
		internal.WithVersion(version),
	}, nil
}

func compile(ctx context.Context, cmd *cli.Command) error {
	opts, err := options(cmd)
	if err != nil {
		return err
	}
	opts = append(opts, internal.WithWatch(cmd.Bool("watch")))
	rep, err := internal.Compile(ctx, opts...)
	if err != nil {
		return fmt.Errorf("compile: %w", err)
	}
	if rep.Failed > 0 {
		slog.Warn("some pages failed to compile", slog.Int("failed", rep.Failed))
	}
	return nil
}

func parse(_ context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd, false)
	if err != nil {
		return err
	}
	text := cmd.Args().First()
	if text == "" || text == "-" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return fmt.Errorf("read stdin: %w", err)
		}
		text = string(data)
	}

	pc := cfg.Site.Config
	eng := parser.New(pc,
		parser.WithSource(parser.DirSource(cfg.Site.Root, pc)),
		parser.WithLogger(newLogger(os.Stderr, cfg.App.LogLevel)),
		parser.WithMaxPasses(cfg.Site.MaxPasses),
	)
	res := eng.Parse(text)

	if cmd.Bool("json") {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(map[string]any{"data": res.Data, "metadata": res.Metadata})
	}
	_, err = fmt.Fprintln(os.Stdout, res.Data)
	return err
}

func serve(ctx context.Context, cmd *cli.Command) error {
	opts, err := options(cmd)
	if err != nil {
		return err
	}
	if err := internal.Run(ctx, opts...); err != nil {
		return fmt.Errorf("app run error: %w", err)
	}
	return nil
}

func serveMCP(ctx context.Context, cmd *cli.Command) error {
	opts, err := options(cmd)
	if err != nil {
		return err
	}
	return internal.ServeMCP(ctx, opts...)
}

func siteFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "output", Aliases: []string{"o"}, Usage: "Output folder, relative to the site root"},
		&cli.StringFlag{Name: "templates", Aliases: []string{"t"}, Usage: "Templates folder, relative to the site root"},
		&cli.StringFlag{Name: "images", Aliases: []string{"i"}, Usage: "Images folder, relative to the site root"},
		&cli.BoolFlag{Name: "eleventy", Aliases: []string{"e"}, Usage: "Emit Eleventy front matter"},
		&cli.BoolFlag{Name: "no-default-styles", Aliases: []string{"d"}, Usage: "Leave out the default stylesheet"},
		&cli.IntFlag{Name: "jobs", Aliases: []string{"j"}, Usage: "Pages compiled in parallel"},
	}
}

func main() {
	cmd := &cli.Command{
		Name:    "wikity",
		Usage:   "Compile wikitext folders into static HTML sites",
		Version: version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "Path to config file (optional)",
				DefaultText: "wikity.yaml",
				Value:       "wikity.yaml",
				Sources:     cli.EnvVars("WIKITY_CONFIG_FILE"),
			},
			&cli.BoolFlag{Name: "verbose", Usage: "Log at debug level"},
		},
		Commands: []*cli.Command{
			{
				Name:      "compile",
				Usage:     "Compile the wikitext files of a folder",
				ArgsUsage: "[folder]",
				Flags: append(siteFlags(),
					&cli.BoolFlag{Name: "watch", Aliases: []string{"w"}, Usage: "Recompile on file changes"},
				),
				Action: compile,
			},
			{
				Name:      "parse",
				Usage:     "Render a wikitext fragment to stdout",
				ArgsUsage: "<text|->",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "json", Usage: "Print data and metadata as JSON"},
				},
				Action: parse,
			},
			{
				Name:      "serve",
				Usage:     "Compile, watch and serve a folder with the API and live events",
				ArgsUsage: "[folder]",
				Flags: append(siteFlags(),
					&cli.IntFlag{Name: "port", Aliases: []string{"p"}, Usage: "HTTP port"},
				),
				Action: serve,
			},
			{
				Name:      "mcp",
				Usage:     "Serve MCP tools for a folder on stdin/stdout",
				ArgsUsage: "[folder]",
				Action:    serveMCP,
			},
			{
				Name:  "version",
				Usage: "Print the version",
				Action: func(_ context.Context, _ *cli.Command) error {
					fmt.Printf("The current version of wikity is %s\n", version)
					return nil
				},
			},
		},
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := cmd.Run(ctx, os.Args)
	stop()
	if err != nil {
		slog.Error("application error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
