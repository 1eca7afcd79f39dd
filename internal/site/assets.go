package site

import (
	"bytes"
	"fmt"
	"path"
)

// StylesheetPermalink is where pages expect the stylesheet.
const StylesheetPermalink = "/wiki.css"

// stylesheet returns the default styles (unless disabled) followed by the
// custom styles.
func (s *Site) stylesheet() ([]byte, error) {
	var buf bytes.Buffer
	if s.cfg.DefaultStyles {
		css, err := assets.ReadFile("assets/wiki.css")
		if err != nil {
			return nil, fmt.Errorf("site: read default styles: %w", err)
		}
		buf.Write(css)
	}
	if s.cfg.CustomStyles != "" {
		buf.WriteString(s.cfg.CustomStyles)
		buf.WriteByte('\n')
	}
	return buf.Bytes(), nil
}

// writeStylesheet writes wiki.css, or wiki.css.njk with a permalink front
// matter for Eleventy builds.
func (s *Site) writeStylesheet() error {
	css, err := s.stylesheet()
	if err != nil {
		return err
	}
	name := "wiki.css"
	var buf bytes.Buffer
	if s.cfg.Eleventy {
		name = "wiki.css.njk"
		if err := writeFrontMatter(&buf, StylesheetPermalink); err != nil {
			return err
		}
	}
	buf.Write(css)
	if err := s.store.Write(path.Join(s.cfg.OutputFolder, name), buf.Bytes()); err != nil {
		return fmt.Errorf("site: write stylesheet: %w", err)
	}
	return nil
}

// copyImages mirrors the images folder into the output folder.
func (s *Site) copyImages() error {
	files, err := s.store.Files(s.cfg.ImagesFolder)
	if err != nil {
		return fmt.Errorf("site: list images: %w", err)
	}
	for _, f := range files {
		dst := path.Join(s.cfg.OutputFolder, s.cfg.ImagesFolder, path.Base(f))
		if err := s.store.Copy(f, dst); err != nil {
			return fmt.Errorf("site: copy image: %w", err)
		}
	}
	return nil
}
