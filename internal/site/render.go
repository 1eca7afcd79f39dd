package site

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"

	"gopkg.in/yaml.v3"

	"github.com/starford/wikity/internal/parser"
)

//go:embed assets
var assets embed.FS

var pageShell = template.Must(template.ParseFS(assets, "assets/page.html.tmpl"))

const descriptionLen = 256

type shellData struct {
	Title       string
	Description string
	NoIndex     bool
	Content     template.HTML
}

// frontMatter is the Eleventy data block written ahead of generated files.
type frontMatter struct {
	Permalink string `yaml:"permalink"`
}

func (s *Site) render(url, title, source string, res *parser.Result) ([]byte, error) {
	content := withTOC(res.Data, res.Metadata)

	var buf bytes.Buffer
	if s.cfg.Eleventy {
		if err := writeFrontMatter(&buf, "/wiki/"+url); err != nil {
			return nil, err
		}
	}
	err := s.shell.Execute(&buf, shellData{
		Title:       title,
		Description: truncate(source, descriptionLen),
		NoIndex:     res.Metadata.Bool("noindex"),
		Content:     template.HTML(content),
	})
	if err != nil {
		return nil, fmt.Errorf("site: render %s: %w", url, err)
	}
	return buf.Bytes(), nil
}

func writeFrontMatter(buf *bytes.Buffer, permalink string) error {
	out, err := yaml.Marshal(frontMatter{Permalink: permalink})
	if err != nil {
		return fmt.Errorf("site: front matter: %w", err)
	}
	buf.WriteString("---\n")
	buf.Write(out)
	buf.WriteString("---\n")
	return nil
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
