package driving

import (
	"context"

	"github.com/custodia-labs/mufti/internal/core/domain"
)

// SearchService resolves free-text queries into ranked pages of fatwas.
type SearchService interface {
	// Search runs the retrieval cascade and returns one page of results.
	// Dependency failures degrade to the next tier and are never returned;
	// the only errors are invalid paging and cancellation of ctx.
	Search(ctx context.Context, query string, opts domain.SearchOptions) (*domain.PaginatedResult, error)
}
