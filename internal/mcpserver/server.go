// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes wikity tools for LLM integration via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/wikity/internal/apperr"
	"github.com/starford/wikity/internal/pageservice"
)

// MarkupGuideURI identifies the markup guide resource.
const MarkupGuideURI = "wikity://markup-guide"

// Server wraps the MCP server with wikity tools.
type Server struct {
	mcp *server.MCPServer
	svc *pageservice.Service
}

// New creates a new MCP server with all wikity tools registered.
func New(svc *pageservice.Service, version string) *Server {
	s := &Server{svc: svc}

	s.mcp = server.NewMCPServer(
		"Wikity",
		version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("parse_wikitext",
		mcp.WithDescription("Render a wikitext fragment to HTML using the site's templates and images. "+
			"Returns JSON with data (HTML) and metadata (displayTitle, toc, notoc, noindex). "+
			"Read the markup guide first via get_markup_guide or the wikity://markup-guide resource."),
		mcp.WithString("text", mcp.Required(), mcp.Description("Wikitext to render")),
	), s.parseWikitext)

	s.mcp.AddTool(mcp.NewTool("list_pages",
		mcp.WithDescription("List all indexed pages or pages in a specific folder."),
		mcp.WithString("folder", mcp.Description("Optional folder to list (empty for all)")),
	), s.listPages)

	s.mcp.AddTool(mcp.NewTool("read_page",
		mcp.WithDescription("Read a page by source path (guide/intro.wiki) or page name (Guide/Intro)."),
		mcp.WithString("path", mcp.Required(), mcp.Description("Source path or page name")),
		mcp.WithString("format",
			mcp.Description("source returns the wikitext, html the rendered fragment"),
			mcp.Enum("source", "html"),
		),
	), s.readPage)

	s.mcp.AddTool(mcp.NewTool("search_pages",
		mcp.WithDescription("Search page titles and wikitext."),
		mcp.WithString("query", mcp.Required(), mcp.Description("Search query string")),
		mcp.WithNumber("limit", mcp.Description("Maximum number of results (default 20)")),
	), s.searchPages)

	s.mcp.AddTool(mcp.NewTool("get_backlinks",
		mcp.WithDescription("Find all pages that link to the specified page."),
		mcp.WithString("path", mcp.Required(), mcp.Description("Source path or page name of the target page")),
	), s.getBacklinks)

	s.mcp.AddTool(mcp.NewTool("get_markup_guide",
		mcp.WithDescription("Returns the wikitext markup guide. "+
			"Call this before writing wikitext to learn the supported syntax."),
	), s.getMarkupGuide)

	s.mcp.AddResource(
		mcp.NewResource(MarkupGuideURI, "Markup Guide",
			mcp.WithResourceDescription("Wikitext syntax supported by the wikity engine."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readMarkupGuideResource,
	)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) parseWikitext(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	text, err := req.RequireString("text")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	res := s.svc.Parse(ctx, text)
	return jsonResult(map[string]any{
		"data":     res.Data,
		"metadata": res.Metadata,
	})
}

func (s *Server) listPages(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	folder := strings.Trim(req.GetString("folder", ""), "/")

	items, err := s.svc.ListPages(ctx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var paths []string
	for _, it := range items {
		if folder != "" && !strings.HasPrefix(it.Path, folder+"/") {
			continue
		}
		paths = append(paths, it.Path)
	}
	if len(paths) == 0 {
		return mcp.NewToolResultText("no pages found"), nil
	}
	return mcp.NewToolResultText(strings.Join(paths, "\n")), nil
}

func (s *Server) readPage(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	page, err := s.svc.GetPage(ctx, path)
	switch {
	case errors.Is(err, apperr.ErrNotFound), errors.Is(err, apperr.ErrOutsideRoot):
		return mcp.NewToolResultError(fmt.Sprintf("not found: %s", path)), nil
	case err != nil:
		return mcp.NewToolResultError(err.Error()), nil
	}
	if req.GetString("format", "source") == "html" {
		return mcp.NewToolResultText(page.HTML), nil
	}
	return mcp.NewToolResultText(page.Source), nil
}

func (s *Server) searchPages(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	results, err := s.svc.Search(ctx, query, req.GetInt("limit", 20))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(results)
}

func (s *Server) getBacklinks(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	bl, err := s.svc.Backlinks(ctx, path)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if len(bl) == 0 {
		return mcp.NewToolResultText("no backlinks found"), nil
	}
	return mcp.NewToolResultText(strings.Join(bl, "\n")), nil
}

func (s *Server) getMarkupGuide(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(MarkupGuide), nil
}

func (s *Server) readMarkupGuideResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      MarkupGuideURI,
			MIMEType: "text/markdown",
			Text:     MarkupGuide,
		},
	}, nil
}
