package site

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/starford/wikity/internal/storage"
)

// rebuildDelay debounces full compiles triggered by template, image and
// rename events.
const rebuildDelay = 200 * time.Millisecond

// Watch starts an fsnotify watcher on the site root and keeps the output
// current until ctx is cancelled.
//
// Writes to a page source recompile that page. Removing a source deletes
// its output. Renames, new directories and changes under the templates or
// images folder schedule a debounced full compile. The output folder and
// hidden directories are never watched.
func (s *Site) Watch(ctx context.Context, root string) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	root, err = filepath.Abs(root)
	if err != nil {
		return err
	}
	if err := s.addDirsRecursive(w, root, root); err != nil {
		return err
	}

	s.logger.Info("watcher: started", slog.String("root", root))

	var rebuildTimer *time.Timer
	var rebuildCh <-chan time.Time

	scheduleRebuild := func() {
		if rebuildTimer == nil {
			rebuildTimer = time.NewTimer(rebuildDelay)
			rebuildCh = rebuildTimer.C
		} else {
			rebuildTimer.Reset(rebuildDelay)
		}
	}

	for {
		select {
		case <-ctx.Done():
			if rebuildTimer != nil {
				rebuildTimer.Stop()
			}
			s.logger.Info("watcher: stopped")
			return nil

		case <-rebuildCh:
			if _, err := s.Compile(ctx); err != nil {
				s.logger.Warn("watcher: rebuild failed", slog.String("error", err.Error()))
			}

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			rel, relErr := filepath.Rel(root, ev.Name)
			if relErr != nil {
				continue
			}
			rel = filepath.ToSlash(rel)
			if s.ignored(rel) {
				continue
			}

			if ev.Op&fsnotify.Create != 0 {
				if info, statErr := os.Stat(ev.Name); statErr == nil && info.IsDir() {
					if addErr := s.addDirsRecursive(w, root, ev.Name); addErr != nil {
						s.logger.Warn("watcher: add new dir failed",
							slog.String("path", rel),
							slog.String("error", addErr.Error()))
					}
					scheduleRebuild()
					continue
				}
			}

			if s.isAsset(rel) {
				scheduleRebuild()
				continue
			}
			if !strings.HasSuffix(rel, storage.SourceExt) {
				continue
			}

			switch {
			case ev.Op&(fsnotify.Create|fsnotify.Write) != 0:
				if _, err := s.CompileFile(rel); err != nil {
					s.logger.Warn("watcher: compile failed", slog.String("path", rel), slog.String("error", err.Error()))
				}

			case ev.Op&fsnotify.Remove != 0:
				if err := s.Remove(rel); err != nil {
					s.logger.Warn("watcher: remove failed", slog.String("path", rel), slog.String("error", err.Error()))
				}

			case ev.Op&fsnotify.Rename != 0:
				// Rename fires on the old path only; the new name arrives as a
				// Create when it stays inside a watched directory.
				if err := s.Remove(rel); err != nil {
					s.logger.Warn("watcher: rename remove failed", slog.String("path", rel), slog.String("error", err.Error()))
				}
				scheduleRebuild()
			}

		case watchErr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			s.logger.Error("watcher: error", slog.String("error", watchErr.Error()))
		}
	}
}

// ignored reports whether a root-relative path lies in the output folder or
// a hidden directory.
func (s *Site) ignored(rel string) bool {
	out := path.Clean(s.cfg.OutputFolder)
	if rel == out || strings.HasPrefix(rel, out+"/") {
		return true
	}
	for _, seg := range strings.Split(rel, "/") {
		if strings.HasPrefix(seg, ".") && seg != "." {
			return true
		}
	}
	return false
}

func (s *Site) isAsset(rel string) bool {
	for _, dir := range []string{s.cfg.TemplatesFolder, s.cfg.ImagesFolder} {
		if strings.HasPrefix(rel, path.Clean(dir)+"/") {
			return true
		}
	}
	return false
}

// addDirsRecursive adds dir and its subdirectories to the watcher, skipping
// ignored ones.
func (s *Site) addDirsRecursive(w *fsnotify.Watcher, root, dir string) error {
	return filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if rel, relErr := filepath.Rel(root, p); relErr == nil && rel != "." && s.ignored(filepath.ToSlash(rel)) {
			return filepath.SkipDir
		}
		return w.Add(p)
	})
}
