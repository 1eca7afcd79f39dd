package index

import (
	"log/slog"

	"github.com/starford/wikity/internal/checksum"
	"github.com/starford/wikity/internal/parser"
	"github.com/starford/wikity/internal/storage"
)

// Fingerprint is the checksum stored for a page: its source combined with
// the assets digest it was rendered against.
func Fingerprint(data []byte, assetsDigest string) string {
	return checksum.Sum(data, []byte(assetsDigest))
}

// LinkTargets returns the page names linked from text, normalised the way
// page names are derived from source paths.
func LinkTargets(text string) []string {
	var out []string
	seen := make(map[string]bool)
	for _, l := range parser.Links(text) {
		name := storage.PageName(l)
		if !seen[name] {
			seen[name] = true
			out = append(out, name)
		}
	}
	return out
}

// AssetsDigest fingerprints what a render depends on besides the page
// source: the template set and the names of the available images.
func AssetsDigest(store storage.Provider, cfg parser.Config) (string, error) {
	templates, err := store.Digest(cfg.TemplatesFolder)
	if err != nil {
		return "", err
	}
	images, err := store.Files(cfg.ImagesFolder)
	if err != nil {
		return "", err
	}
	parts := [][]byte{[]byte(templates)}
	for _, img := range images {
		parts = append(parts, []byte(img))
	}
	return checksum.Sum(parts...), nil
}

// Sync brings the index up to date with the site without writing output:
//   - new or changed sources are parsed and upserted
//   - sources removed from disk are deleted from the index
func Sync(db *DB, store storage.Provider, eng *parser.Engine, logger *slog.Logger) error {
	digest, err := AssetsDigest(store, eng.Config())
	if err != nil {
		return err
	}
	metas, err := store.List("")
	if err != nil {
		return err
	}
	checksums, err := db.AllChecksums()
	if err != nil {
		return err
	}

	disk := make(map[string]struct{}, len(metas))
	for _, m := range metas {
		disk[m.Path] = struct{}{}

		data, err := store.Read(m.Path)
		if err != nil {
			logger.Warn("sync: read failed", slog.String("path", m.Path), slog.String("error", err.Error()))
			continue
		}
		sum := Fingerprint(data, digest)
		if checksums[m.Path] == sum {
			continue
		}
		res := eng.Parse(string(data))
		if err := db.UpsertPage(RowFor(m.Path, sum, res), string(data), LinkTargets(string(data))); err != nil {
			logger.Warn("sync: index failed", slog.String("path", m.Path), slog.String("error", err.Error()))
		} else {
			logger.Debug("sync: indexed", slog.String("path", m.Path))
		}
	}

	for p := range checksums {
		if _, ok := disk[p]; !ok {
			if err := db.DeletePage(p); err != nil {
				logger.Warn("sync: delete failed", slog.String("path", p), slog.String("error", err.Error()))
			} else {
				logger.Debug("sync: removed stale", slog.String("path", p))
			}
		}
	}

	return nil
}
