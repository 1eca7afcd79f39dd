// Package models defines the domain types for wikity.
package models

import "time"

// Page is a compiled wiki page together with its source.
type Page struct {
	Path      string         `json:"path"`
	Name      string         `json:"name"`
	URL       string         `json:"url"`
	Title     string         `json:"title"`
	Source    string         `json:"source,omitempty"`
	HTML      string         `json:"html,omitempty"`
	Metadata  map[string]any `json:"metadata,omitempty"`
	Links     []Link         `json:"links"`
	Backlinks []string       `json:"backlinks"`
	Checksum  string         `json:"checksum"`
	UpdatedAt time.Time      `json:"updated_at"`
}

// PageMetadata is a lightweight representation returned by list operations.
type PageMetadata struct {
	Path      string    `json:"path"`
	Checksum  string    `json:"checksum"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Link is a directed edge from a source file to a canonical page name.
type Link struct {
	Source string `json:"source"`
	Target string `json:"target"`
}
