package api

import (
	"github.com/starford/wikity/internal/index"
	"github.com/starford/wikity/internal/models"
	"github.com/starford/wikity/internal/pageservice"
	"github.com/starford/wikity/internal/parser"
)

// ParseRequest is the request body for rendering wikitext.
type ParseRequest struct {
	Text string `json:"text" example:"== Hello ==\n'''World'''" validate:"required"`
}

// ParseResponse is the rendered fragment with its page directives.
type ParseResponse struct {
	Data      string          `json:"data" example:"<h2 id=\"hello\">Hello</h2>" validate:"required"`
	Metadata  parser.Metadata `json:"metadata"`
	Passes    int             `json:"passes" example:"3"`
	Converged bool            `json:"converged" example:"true"`
}

// PageDetail is the full page response type (aliased from the domain layer).
type PageDetail = models.Page

// PageListItem is a lightweight item in a list response (aliased from the domain layer).
type PageListItem = pageservice.PageListItem

// PageListResponse wraps page listings.
type PageListResponse struct {
	Pages []PageListItem `json:"pages" validate:"required"`
	Total int            `json:"total" example:"42" validate:"required"`
}

// SearchResult is a single search hit in the API response.
type SearchResult = index.SearchResult

// SearchResponse wraps search results.
type SearchResponse struct {
	Results []SearchResult `json:"results" validate:"required"`
}

// BacklinksResponse lists the sources linking to a page.
type BacklinksResponse struct {
	Backlinks []string `json:"backlinks" validate:"required"`
}
