package internal

import (
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
)

func TestStaticHandler(t *testing.T) {
	dir := t.TempDir()
	write := func(name, body string) {
		p := filepath.Join(dir, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(p, []byte(body), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	write("Guide/Intro_page.html", "intro")
	write("wiki.css", "css")
	write(".wikity.db", "secret")

	h := staticHandler(dir, false)
	tests := []struct {
		target   string
		wantCode int
		wantBody string
	}{
		{"/Guide/Intro_page.html", http.StatusOK, "intro"},
		{"/guide/intro%20page", http.StatusOK, "intro"},
		{"/Guide/Intro_page", http.StatusOK, "intro"},
		{"/wiki.css", http.StatusOK, "css"},
		{"/.wikity.db", http.StatusNotFound, ""},
		{"/Missing", http.StatusNotFound, ""},
	}
	for _, tt := range tests {
		w := httptest.NewRecorder()
		h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, tt.target, nil))
		if w.Code != tt.wantCode {
			t.Errorf("%s: status = %d, want %d", tt.target, w.Code, tt.wantCode)
			continue
		}
		if tt.wantBody != "" {
			body, _ := io.ReadAll(w.Body)
			if string(body) != tt.wantBody {
				t.Errorf("%s: body = %q", tt.target, body)
			}
		}
	}
}

func TestStaticHandlerLiveReload(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "Home.html"), []byte("<html><body>hi</body></html>"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "wiki.css"), []byte("css"), 0o644); err != nil {
		t.Fatal(err)
	}
	h := staticHandler(dir, true)

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/home", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if want := "<html><body>hi" + liveReloadScript + "</body></html>"; w.Body.String() != want {
		t.Errorf("body = %q", w.Body.String())
	}

	w = httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/wiki.css", nil))
	if w.Body.String() != "css" {
		t.Errorf("css body = %q", w.Body.String())
	}
}

func TestInjectScriptWithoutBody(t *testing.T) {
	if got := string(injectScript([]byte("<p>x</p>"))); got != "<p>x</p>"+liveReloadScript {
		t.Errorf("got %q", got)
	}
}
