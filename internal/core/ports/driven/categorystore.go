package driven

import (
	"context"

	"github.com/custodia-labs/mufti/internal/core/domain"
)

// CategoryStore persists the category tree and its fatwa membership lists.
type CategoryStore interface {
	// Save stores or updates a category, including its membership list.
	Save(ctx context.Context, category *domain.Category) error

	// Get retrieves a category by id regardless of its active flag.
	Get(ctx context.Context, id int64) (*domain.Category, error)

	// Delete removes a category. Children keep their dangling parent id.
	Delete(ctx context.Context, id int64) error

	// List returns every category node.
	List(ctx context.Context) ([]domain.Category, error)

	// ListChildren returns the direct children of parentID.
	ListChildren(ctx context.Context, parentID int64) ([]domain.Category, error)

	// FindByIDs returns the categories with the given ids. Missing ids are skipped.
	FindByIDs(ctx context.Context, ids []int64) ([]domain.Category, error)

	// FindByTitle returns the active category with the given title.
	FindByTitle(ctx context.Context, title string) (*domain.Category, error)

	// AttachFatwa adds fatwaID to the category's membership list. Idempotent.
	AttachFatwa(ctx context.Context, categoryID, fatwaID int64) error

	// DetachFatwa removes fatwaID from every membership list.
	DetachFatwa(ctx context.Context, fatwaID int64) error
}
