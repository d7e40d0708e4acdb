package driven

import (
	"context"

	"github.com/custodia-labs/mufti/internal/core/domain"
)

// RankingOracle is the external semantic-similarity service.
// This is an optional service - when nil, search starts at the text index.
// Availability is never guaranteed; callers must treat every call as best-effort.
type RankingOracle interface {
	// Rank returns fatwa ids ordered by similarity to the query, at most limit.
	Rank(ctx context.Context, query string, lang domain.Language, limit int) ([]int64, error)

	// Ping validates the service is reachable.
	Ping(ctx context.Context) error
}

// OracleIndexer keeps the oracle's index in step with the store.
// Only the write path uses it.
type OracleIndexer interface {
	// Index adds or replaces a fatwa in the oracle index.
	Index(ctx context.Context, fatwa domain.Fatwa) error

	// Remove deletes a fatwa from the oracle index. Removing an unknown id is not an error.
	Remove(ctx context.Context, id int64) error
}
