package driven

import (
	"context"

	"github.com/custodia-labs/mufti/internal/core/domain"
)

// FatwaFilter narrows Find, FindIDs and Count.
type FatwaFilter struct {
	// IDs restricts results to these ids. Nil means no restriction;
	// a non-nil empty slice matches nothing.
	IDs []int64

	// Category restricts results to fatwas whose category title matches.
	Category string

	// ActiveOnly excludes soft-deleted fatwas.
	ActiveOnly bool

	// PendingIndex restricts results to fatwas the oracle has not indexed yet.
	PendingIndex bool

	// Offset and Limit page the results. Limit <= 0 means no limit.
	Offset int
	Limit  int
}

// FatwaStore persists fatwas.
type FatwaStore interface {
	// Insert stores a new fatwa. Returns domain.ErrAlreadyExists if the id is taken.
	Insert(ctx context.Context, fatwa *domain.Fatwa) error

	// Replace overwrites an existing fatwa. Returns domain.ErrNotFound if missing.
	Replace(ctx context.Context, fatwa *domain.Fatwa) error

	// Get retrieves a fatwa by id regardless of its active flag.
	Get(ctx context.Context, id int64) (*domain.Fatwa, error)

	// Delete removes a fatwa. Returns domain.ErrNotFound if missing.
	Delete(ctx context.Context, id int64) error

	// Find returns fatwas matching the filter. Order is not guaranteed.
	Find(ctx context.Context, filter FatwaFilter) ([]domain.Fatwa, error)

	// FindIDs returns matching ids, newest first.
	FindIDs(ctx context.Context, filter FatwaFilter) ([]int64, error)

	// Count returns the number of fatwas matching the filter, ignoring Offset and Limit.
	Count(ctx context.Context, filter FatwaFilter) (int, error)

	// TextMatch queries the store's native text index over title, question
	// and answer in both languages. Only active fatwas are returned, best
	// match first. Returns an error wrapping domain.ErrTextIndexUnavailable
	// when the index cannot serve the query. Limit <= 0 means no limit.
	TextMatch(ctx context.Context, query string, limit int) ([]int64, error)

	// PatternMatch performs case-insensitive substring matching over the same
	// fields as TextMatch. Only active fatwas are returned, newest first.
	PatternMatch(ctx context.Context, query string, limit int) ([]int64, error)

	// SetEmbedded records whether the oracle has indexed the fatwa.
	SetEmbedded(ctx context.Context, id int64, embedded bool) error
}
