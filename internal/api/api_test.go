package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/starford/wikity/internal/pageservice"
	"github.com/starford/wikity/internal/testutil"
)

// testEnv builds a small indexed site and a router over it.
// An empty authToken disables auth.
func testEnv(t *testing.T, authToken string) http.Handler {
	t.Helper()
	s := testutil.TestSite(t, map[string]string{
		"home.wiki":          "{{DISPLAYTITLE:Welcome}}See [[guide/intro]].",
		"guide/intro.wiki":   "== Start ==\nBack to [[home]]. {{Sig}}",
		"templates/Sig.wiki": "-- the team",
	})
	svc := pageservice.NewService(s.Store, s.DB, s.Engine)
	return NewRouter(svc, authToken != "", authToken, nil)
}

func do(t *testing.T, h http.Handler, method, target string, body []byte) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, bytes.NewReader(body))
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestParse(t *testing.T) {
	router := testEnv(t, "")

	body, _ := json.Marshal(ParseRequest{Text: "__NOTOC__'''bold''' {{Sig}}"})
	w := do(t, router, http.MethodPost, "/parse", body)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	var resp ParseResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatal(err)
	}
	if resp.Data != "<b>bold</b> -- the team" {
		t.Errorf("data = %q", resp.Data)
	}
	if v, _ := resp.Metadata["notoc"].(bool); !v {
		t.Errorf("metadata = %v, want notoc", resp.Metadata)
	}
	if !resp.Converged || resp.Passes == 0 {
		t.Errorf("passes = %d, converged = %v", resp.Passes, resp.Converged)
	}
}

func TestParseInvalidBody(t *testing.T) {
	router := testEnv(t, "")
	w := do(t, router, http.MethodPost, "/parse", []byte("{not json"))
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
}

func TestListPages(t *testing.T) {
	router := testEnv(t, "")
	w := do(t, router, http.MethodGet, "/pages", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var resp PageListResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatal(err)
	}
	if resp.Total != 2 || len(resp.Pages) != 2 {
		t.Fatalf("pages = %+v", resp)
	}
	if resp.Pages[0].Name != "Guide/Intro" || resp.Pages[1].Title != "Welcome" {
		t.Errorf("unexpected order or titles: %+v", resp.Pages)
	}
}

func TestGetPage(t *testing.T) {
	router := testEnv(t, "")

	for _, target := range []string{"/pages/guide/intro.wiki", "/pages/guide%2Fintro.wiki", "/pages/Guide/Intro.html"} {
		w := do(t, router, http.MethodGet, target, nil)
		if w.Code != http.StatusOK {
			t.Fatalf("%s: status = %d, body = %s", target, w.Code, w.Body.String())
		}
		var page PageDetail
		if err := json.NewDecoder(w.Body).Decode(&page); err != nil {
			t.Fatal(err)
		}
		if page.Path != "guide/intro.wiki" {
			t.Errorf("%s: path = %q", target, page.Path)
		}
		if !strings.Contains(page.HTML, `<h2 id="start">Start</h2>`) || !strings.Contains(page.HTML, "-- the team") {
			t.Errorf("%s: html = %q", target, page.HTML)
		}
		if len(page.Backlinks) != 1 || page.Backlinks[0] != "home.wiki" {
			t.Errorf("%s: backlinks = %v", target, page.Backlinks)
		}
	}
}

func TestGetPageErrors(t *testing.T) {
	router := testEnv(t, "")
	tests := []struct {
		target string
		want   int
	}{
		{"/pages/missing.wiki", http.StatusNotFound},
		{"/pages/..%2F..%2Fetc%2Fpasswd.wiki", http.StatusBadRequest},
		{"/pages/", http.StatusBadRequest},
	}
	for _, tt := range tests {
		w := do(t, router, http.MethodGet, tt.target, nil)
		if w.Code != tt.want {
			t.Errorf("%s: status = %d, want %d (%s)", tt.target, w.Code, tt.want, w.Body.String())
		}
	}
}

func TestBacklinks(t *testing.T) {
	router := testEnv(t, "")
	w := do(t, router, http.MethodGet, "/backlinks/home.wiki", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var resp BacklinksResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatal(err)
	}
	if len(resp.Backlinks) != 1 || resp.Backlinks[0] != "guide/intro.wiki" {
		t.Errorf("backlinks = %v", resp.Backlinks)
	}
}

func TestSearch(t *testing.T) {
	router := testEnv(t, "")

	w := do(t, router, http.MethodGet, "/search?q=Start", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var resp SearchResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatal(err)
	}
	if len(resp.Results) != 1 || resp.Results[0].Path != "guide/intro.wiki" {
		t.Errorf("results = %+v", resp.Results)
	}

	w = do(t, router, http.MethodGet, "/search", nil)
	if w.Code != http.StatusBadRequest {
		t.Errorf("missing q: status = %d", w.Code)
	}
}

func TestAuthRequired(t *testing.T) {
	router := testEnv(t, "secret")

	w := do(t, router, http.MethodGet, "/pages", nil)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("no token: status = %d", w.Code)
	}

	req := httptest.NewRequest(http.MethodGet, "/pages", nil)
	req.Header.Set("Authorization", "Bearer wrong")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("wrong token: status = %d", rec.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/pages", nil)
	req.Header.Set("Authorization", "Bearer secret")
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("valid token: status = %d", rec.Code)
	}

	w = do(t, router, http.MethodGet, "/pages?token=secret", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("query token: status = %d", w.Code)
	}
}

func TestEventsMounted(t *testing.T) {
	s := testutil.TestSite(t, nil)
	svc := pageservice.NewService(s.Store, s.DB, s.Engine)
	called := false
	sse := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		w.WriteHeader(http.StatusNoContent)
	})
	router := NewRouter(svc, false, "", sse)
	w := do(t, router, http.MethodGet, "/events", nil)
	if !called || w.Code != http.StatusNoContent {
		t.Fatalf("events handler not reached: called=%v status=%d", called, w.Code)
	}
}
