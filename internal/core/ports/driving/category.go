package driving

import (
	"context"

	"github.com/custodia-labs/mufti/internal/core/domain"
)

// CategoryService resolves and browses the category tree.
type CategoryService interface {
	// Descendants returns the ids of every category below categoryID, ascending.
	// An unknown id yields an empty slice, not an error.
	Descendants(ctx context.Context, categoryID int64) ([]int64, error)

	// ExtensionFatwaIDs returns the deduplicated fatwa ids attached to the
	// category or any of its descendants, ascending.
	ExtensionFatwaIDs(ctx context.Context, categoryID int64) ([]int64, error)

	// ListByCategory returns a page of active fatwas under the category subtree.
	// Returns domain.ErrNotFound if the category does not exist.
	ListByCategory(ctx context.Context, categoryID int64, page domain.PageRequest) (*domain.CategoryListing, error)

	// Get retrieves a category by id.
	Get(ctx context.Context, id int64) (*domain.Category, error)

	// List returns all active categories ordered by title.
	List(ctx context.Context) ([]domain.Category, error)

	// Tree returns the active categories nested under their roots.
	Tree(ctx context.Context) ([]domain.CategoryNode, error)

	// Save creates or updates a category.
	Save(ctx context.Context, category *domain.Category) error
}
