package mcpserver

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/starford/wikity/internal/index"
	"github.com/starford/wikity/internal/pageservice"
	"github.com/starford/wikity/internal/testutil"
)

func testServer(t *testing.T) *Server {
	t.Helper()
	s := testutil.TestSite(t, map[string]string{
		"home.wiki":          "See [[guide/intro]] and [[guide/setup]].",
		"guide/intro.wiki":   "== Intro ==\nBack to [[home]]. {{Sig}}",
		"guide/setup.wiki":   "Install it.",
		"templates/Sig.wiki": "-- the team",
	})
	return New(pageservice.NewService(s.Store, s.DB, s.Engine), "test")
}

func callTool(t *testing.T, srv *Server, name string, args map[string]any) *mcp.CallToolResult {
	t.Helper()
	ctx := context.Background()
	req := mcp.CallToolRequest{}
	req.Method = "tools/call"
	req.Params.Name = name
	req.Params.Arguments = args

	// mcp-go has no in-process call helper, so handlers are invoked directly.
	handlers := map[string]func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error){
		"parse_wikitext":   srv.parseWikitext,
		"list_pages":       srv.listPages,
		"read_page":        srv.readPage,
		"search_pages":     srv.searchPages,
		"get_backlinks":    srv.getBacklinks,
		"get_markup_guide": srv.getMarkupGuide,
	}
	h, ok := handlers[name]
	if !ok {
		t.Fatalf("unknown tool: %s", name)
	}
	result, err := h(ctx, req)
	if err != nil {
		t.Fatalf("tool %s error: %v", name, err)
	}
	return result
}

func resultText(r *mcp.CallToolResult) string {
	if len(r.Content) > 0 {
		if tc, ok := r.Content[0].(mcp.TextContent); ok {
			return tc.Text
		}
	}
	return ""
}

func TestParseWikitext(t *testing.T) {
	srv := testServer(t)
	r := callTool(t, srv, "parse_wikitext", map[string]any{"text": "{{DISPLAYTITLE:Hi}}''x'' {{Sig}}"})
	if r.IsError {
		t.Fatalf("unexpected error: %s", resultText(r))
	}
	var out struct {
		Data     string         `json:"data"`
		Metadata map[string]any `json:"metadata"`
	}
	if err := json.Unmarshal([]byte(resultText(r)), &out); err != nil {
		t.Fatal(err)
	}
	if out.Data != "<i>x</i> -- the team" {
		t.Errorf("data = %q", out.Data)
	}
	if out.Metadata["displayTitle"] != "Hi" {
		t.Errorf("metadata = %v", out.Metadata)
	}

	r = callTool(t, srv, "parse_wikitext", map[string]any{})
	if !r.IsError {
		t.Error("expected error for missing text")
	}
}

func TestListPages(t *testing.T) {
	srv := testServer(t)

	text := resultText(callTool(t, srv, "list_pages", map[string]any{}))
	if text != "guide/intro.wiki\nguide/setup.wiki\nhome.wiki" {
		t.Errorf("list = %q", text)
	}

	text = resultText(callTool(t, srv, "list_pages", map[string]any{"folder": "guide/"}))
	if text != "guide/intro.wiki\nguide/setup.wiki" {
		t.Errorf("folder list = %q", text)
	}

	text = resultText(callTool(t, srv, "list_pages", map[string]any{"folder": "none"}))
	if text != "no pages found" {
		t.Errorf("empty folder = %q", text)
	}
}

func TestReadPage(t *testing.T) {
	srv := testServer(t)

	r := callTool(t, srv, "read_page", map[string]any{"path": "guide/intro.wiki"})
	if got := resultText(r); got != "== Intro ==\nBack to [[home]]. {{Sig}}" {
		t.Errorf("source = %q", got)
	}

	r = callTool(t, srv, "read_page", map[string]any{"path": "Guide/Intro", "format": "html"})
	got := resultText(r)
	if !strings.Contains(got, `<h2 id="intro">Intro</h2>`) || !strings.Contains(got, "-- the team") {
		t.Errorf("html = %q", got)
	}
}

func TestReadPageMissing(t *testing.T) {
	srv := testServer(t)
	for _, p := range []string{"nope.wiki", "../secret.wiki"} {
		r := callTool(t, srv, "read_page", map[string]any{"path": p})
		if !r.IsError {
			t.Errorf("%s: expected error", p)
		}
	}
}

func TestSearchPages(t *testing.T) {
	srv := testServer(t)
	r := callTool(t, srv, "search_pages", map[string]any{"query": "Install"})
	var results []index.SearchResult
	if err := json.Unmarshal([]byte(resultText(r)), &results); err != nil {
		t.Fatal(err)
	}
	if len(results) != 1 || results[0].Path != "guide/setup.wiki" {
		t.Errorf("results = %+v", results)
	}

	r = callTool(t, srv, "search_pages", map[string]any{"query": "zzz-nothing"})
	if got := resultText(r); got != "[]" {
		t.Errorf("empty search = %q", got)
	}
}

func TestGetBacklinks(t *testing.T) {
	srv := testServer(t)

	r := callTool(t, srv, "get_backlinks", map[string]any{"path": "guide/intro.wiki"})
	if got := resultText(r); got != "home.wiki" {
		t.Errorf("backlinks = %q, want home.wiki", got)
	}

	r = callTool(t, srv, "get_backlinks", map[string]any{"path": "guide/setup"})
	if got := resultText(r); got != "home.wiki" {
		t.Errorf("backlinks by name = %q", got)
	}

	r = callTool(t, srv, "get_backlinks", map[string]any{"path": "nobody"})
	if got := resultText(r); got != "no backlinks found" {
		t.Errorf("no backlinks = %q", got)
	}
}

func TestMarkupGuide(t *testing.T) {
	srv := testServer(t)
	if got := resultText(callTool(t, srv, "get_markup_guide", nil)); got != MarkupGuide {
		t.Error("tool returned a different guide")
	}

	contents, err := srv.readMarkupGuideResource(context.Background(), mcp.ReadResourceRequest{})
	if err != nil {
		t.Fatal(err)
	}
	tc, ok := contents[0].(mcp.TextResourceContents)
	if !ok || tc.URI != MarkupGuideURI || tc.Text != MarkupGuide {
		t.Errorf("resource = %+v", contents[0])
	}
}
