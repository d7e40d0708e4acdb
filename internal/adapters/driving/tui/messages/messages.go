// Package messages defines Bubbletea message types for the TUI.
// Messages represent events and commands that flow through the Elm architecture.
package messages

import (
	"github.com/custodia-labs/mufti/internal/core/domain"
)

// SearchRequested is a command to run a search.
type SearchRequested struct {
	Query   string
	Options domain.SearchOptions
}

// SearchCompleted carries one page of results back to the model.
type SearchCompleted struct {
	Query  string
	Result *domain.PaginatedResult
	Err    error
}

// CategoriesLoaded carries the category tree.
type CategoriesLoaded struct {
	Nodes []domain.CategoryNode
	Err   error
}

// CategorySelected scopes the search view to a category subtree.
type CategorySelected struct {
	ID    int64
	Title string
}

// FatwaSelected opens a fatwa in the detail view.
type FatwaSelected struct {
	Fatwa    domain.Fatwa
	Language domain.Language
}

// ViewChanged is sent when navigating between views.
type ViewChanged struct {
	View ViewType
}

// ViewType identifies which view is currently active.
type ViewType int

const (
	// ViewMenu is the main navigation menu.
	ViewMenu ViewType = iota
	// ViewSearch is the search input and results view.
	ViewSearch
	// ViewCategories is the category tree browser.
	ViewCategories
	// ViewFatwa shows a single fatwa.
	ViewFatwa
	// ViewHelp is the help/keybindings view.
	ViewHelp
)

// String returns the string representation of the view type.
func (v ViewType) String() string {
	switch v {
	case ViewMenu:
		return "menu"
	case ViewSearch:
		return "search"
	case ViewCategories:
		return "categories"
	case ViewFatwa:
		return "fatwa"
	case ViewHelp:
		return "help"
	default:
		return "unknown"
	}
}

// ErrorOccurred signals that an error happened.
type ErrorOccurred struct {
	Err error
}

// Quit signals the application should exit.
type Quit struct{}
