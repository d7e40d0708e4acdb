package tui

import "errors"

// ErrMissingSearchService is returned when the search service is not provided.
var ErrMissingSearchService = errors.New("tui: search service is required")

// ErrMissingCategoryService is returned when the category service is not provided.
var ErrMissingCategoryService = errors.New("tui: category service is required")

// ErrInvalidPorts is returned when no ports were supplied at all.
var ErrInvalidPorts = errors.New("tui: invalid ports configuration")
