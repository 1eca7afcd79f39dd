package internal

import (
	"bytes"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/starford/wikity/internal/storage"
)

// liveReloadScript reloads the page whenever the site changes.
const liveReloadScript = `<script>new EventSource("/api/events").addEventListener("site.updated", () => location.reload());</script>`

// staticHandler serves the compiled output folder. Paths without an
// extension are page links and resolve to their page file, so
// "/guide/intro page" serves "Guide/Intro_page.html". Dot files such as
// the index database are never served. With liveReload, HTML pages get a
// script that reloads them on site.updated events.
func staticHandler(dir string, liveReload bool) http.Handler {
	files := http.FileServer(http.Dir(dir))
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p := path.Clean("/" + r.URL.Path)
		for _, seg := range strings.Split(p, "/") {
			if strings.HasPrefix(seg, ".") {
				http.NotFound(w, r)
				return
			}
		}
		if p != "/" && path.Ext(p) == "" {
			p = "/" + storage.PageName(strings.TrimPrefix(p, "/")) + ".html"
			r = r.Clone(r.Context())
			r.URL.RawPath = ""
			r.URL.Path = p
		}
		if liveReload && path.Ext(p) == ".html" {
			if body, err := os.ReadFile(filepath.Join(dir, filepath.FromSlash(p))); err == nil {
				w.Header().Set("Content-Type", "text/html; charset=utf-8")
				w.Header().Set("Cache-Control", "no-cache")
				_, _ = w.Write(injectScript(body))
				return
			}
		}
		files.ServeHTTP(w, r)
	})
}

// injectScript places the live reload script before the closing body tag,
// or at the end when there is none.
func injectScript(page []byte) []byte {
	i := bytes.LastIndex(page, []byte("</body>"))
	if i < 0 {
		return append(page, liveReloadScript...)
	}
	out := make([]byte, 0, len(page)+len(liveReloadScript))
	out = append(out, page[:i]...)
	out = append(out, liveReloadScript...)
	return append(out, page[i:]...)
}
