// Package mcp provides an MCP (Model Context Protocol) server adapter for Mufti.
// It lets AI assistants search fatwas and browse the category tree.
package mcp

import "errors"

var (
	// ErrMissingSearchService is returned when the search service is not provided.
	ErrMissingSearchService = errors.New("mcp: search service is required")

	// ErrMissingCategoryService is returned when the category service is not provided.
	ErrMissingCategoryService = errors.New("mcp: category service is required")
)
