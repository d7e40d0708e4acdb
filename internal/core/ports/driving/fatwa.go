package driving

import (
	"context"

	"github.com/custodia-labs/mufti/internal/core/domain"
)

// WriteOptions controls side effects of fatwa writes.
type WriteOptions struct {
	// Translate fills missing secondary fields from the primary text.
	Translate bool
}

// FatwaService manages the fatwa lifecycle.
type FatwaService interface {
	// Create validates and stores a new fatwa, then indexes it in the oracle.
	Create(ctx context.Context, fatwa *domain.Fatwa, opts WriteOptions) (*domain.Fatwa, error)

	// Update replaces an existing fatwa's content and re-indexes it.
	Update(ctx context.Context, fatwa *domain.Fatwa, opts WriteOptions) (*domain.Fatwa, error)

	// Delete removes a fatwa from the store and, best-effort, from the oracle.
	Delete(ctx context.Context, id int64) error

	// Deactivate soft-deletes a fatwa.
	Deactivate(ctx context.Context, id int64) error

	// Get retrieves a fatwa by id.
	Get(ctx context.Context, id int64) (*domain.Fatwa, error)

	// List returns active fatwas newest first, optionally within one category title.
	List(ctx context.Context, category string, page domain.PageRequest) (*domain.PaginatedResult, error)
}
