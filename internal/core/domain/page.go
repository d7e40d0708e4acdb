package domain

import (
	"fmt"
	"math"
)

// Paging limits.
const (
	DefaultPageSize = 10
	MaxPageSize     = 100

	// MaxPage keeps Offset within int for every valid page size.
	MaxPage = math.MaxInt / MaxPageSize
)

// PageRequest is a one-based page selection.
type PageRequest struct {
	Page     int
	PageSize int
}

// Validate rejects pages outside [1, MaxPage] and sizes outside [1, MaxPageSize].
func (p PageRequest) Validate() error {
	if p.Page < 1 {
		return fmt.Errorf("%w: page must be >= 1", ErrInvalidInput)
	}
	if p.Page > MaxPage {
		return fmt.Errorf("%w: page must be <= %d", ErrInvalidInput, MaxPage)
	}
	if p.PageSize < 1 || p.PageSize > MaxPageSize {
		return fmt.Errorf("%w: page size must be between 1 and %d", ErrInvalidInput, MaxPageSize)
	}
	return nil
}

// Offset returns the zero-based index of the first item on the page.
// It saturates at math.MaxInt instead of wrapping, and is 0 for pages below one.
func (p PageRequest) Offset() int {
	if p.Page < 1 || p.PageSize < 1 {
		return 0
	}
	if p.Page-1 > math.MaxInt/p.PageSize {
		return math.MaxInt
	}
	return (p.Page - 1) * p.PageSize
}

// Window returns the [start, end) bounds of the page over n items.
// Both bounds are clamped to [0, n].
func (p PageRequest) Window(n int) (start, end int) {
	if n <= 0 {
		return 0, 0
	}
	start = min(p.Offset(), n)
	end = n
	if p.PageSize > 0 && p.PageSize < n-start {
		end = start + p.PageSize
	}
	if p.PageSize < 1 {
		end = start
	}
	return start, end
}
