package parser

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
)

// ErrTemplateNotFound is returned by a Source when no template file exists.
var ErrTemplateNotFound = errors.New("template not found")

// Source resolves the external files the engine reads. Implementations must
// be safe for concurrent use and must not mutate anything on read.
type Source interface {
	// ReadTemplate returns the body of the template with the given
	// canonical name, without the .wiki extension.
	ReadTemplate(name string) (string, error)
	// HasImage reports whether an image file with the given name exists.
	HasImage(name string) bool
}

// FSSource reads templates and images from a file system.
type FSSource struct {
	FS              fs.FS
	TemplatesFolder string
	ImagesFolder    string
}

// DirSource returns an FSSource rooted at dir using the folders of cfg.
func DirSource(dir string, cfg Config) FSSource {
	cfg = cfg.withDefaults()
	return FSSource{
		FS:              os.DirFS(dir),
		TemplatesFolder: cfg.TemplatesFolder,
		ImagesFolder:    cfg.ImagesFolder,
	}
}

func (s FSSource) ReadTemplate(name string) (string, error) {
	p := path.Join(s.TemplatesFolder, name+".wiki")
	if !fs.ValidPath(p) {
		return "", fmt.Errorf("parser: read template %q: %w", name, ErrTemplateNotFound)
	}
	b, err := fs.ReadFile(s.FS, p)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("parser: read template %q: %w", name, ErrTemplateNotFound)
		}
		return "", fmt.Errorf("parser: read template %q: %w", name, err)
	}
	return string(b), nil
}

func (s FSSource) HasImage(name string) bool {
	p := path.Join(s.ImagesFolder, name)
	if !fs.ValidPath(p) {
		return false
	}
	info, err := fs.Stat(s.FS, p)
	return err == nil && !info.IsDir()
}
