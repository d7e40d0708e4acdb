package mcp

import (
	"github.com/custodia-labs/mufti/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the MCP server.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Search runs the retrieval cascade.
	Search driving.SearchService

	// Categories resolves and browses the category tree.
	Categories driving.CategoryService

	// Fatwas reads individual fatwas. Optional; without it the
	// fatwa resource template reports every id as not found.
	Fatwas driving.FatwaService
}

// Validate ensures all required ports are set.
// Returns an error if any required port is nil.
func (p *Ports) Validate() error {
	if p.Search == nil {
		return ErrMissingSearchService
	}
	if p.Categories == nil {
		return ErrMissingCategoryService
	}
	return nil
}
