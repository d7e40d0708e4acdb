// Package tui provides an interactive terminal browser for the fatwa store.
// It implements a driving adapter following hexagonal architecture principles.
package tui

import (
	"github.com/custodia-labs/mufti/internal/core/ports/driving"
)

// Ports aggregates the driving port interfaces used by the TUI.
type Ports struct {
	// Search runs the retrieval cascade.
	Search driving.SearchService

	// Categories browses the category tree.
	Categories driving.CategoryService
}

// NewPorts creates a new Ports aggregate with the given services.
func NewPorts(search driving.SearchService, categories driving.CategoryService) *Ports {
	return &Ports{
		Search:     search,
		Categories: categories,
	}
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p == nil {
		return ErrInvalidPorts
	}
	if p.Search == nil {
		return ErrMissingSearchService
	}
	if p.Categories == nil {
		return ErrMissingCategoryService
	}
	return nil
}
