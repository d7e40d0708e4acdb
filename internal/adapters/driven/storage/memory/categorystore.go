package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/custodia-labs/mufti/internal/core/domain"
	"github.com/custodia-labs/mufti/internal/core/ports/driven"
)

// Ensure CategoryStore implements the interface.
var _ driven.CategoryStore = (*CategoryStore)(nil)

// CategoryStore is an in-memory implementation of driven.CategoryStore.
type CategoryStore struct {
	mu         sync.RWMutex
	categories map[int64]domain.Category
}

// NewCategoryStore creates a new in-memory category store.
func NewCategoryStore() *CategoryStore {
	return &CategoryStore{
		categories: make(map[int64]domain.Category),
	}
}

// Save stores or updates a category.
func (s *CategoryStore) Save(_ context.Context, category *domain.Category) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.categories[category.ID] = cloneCategory(category)
	return nil
}

// Get retrieves a category by id.
func (s *CategoryStore) Get(_ context.Context, id int64) (*domain.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.categories[id]
	if !ok {
		return nil, fmt.Errorf("category %d: %w", id, domain.ErrNotFound)
	}
	out := cloneCategory(&c)
	return &out, nil
}

// Delete removes a category.
func (s *CategoryStore) Delete(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.categories[id]; !ok {
		return fmt.Errorf("category %d: %w", id, domain.ErrNotFound)
	}
	delete(s.categories, id)
	return nil
}

// List returns every category ordered by id.
func (s *CategoryStore) List(_ context.Context) ([]domain.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.collectLocked(func(domain.Category) bool { return true }), nil
}

// ListChildren returns the direct children of parentID ordered by id.
func (s *CategoryStore) ListChildren(_ context.Context, parentID int64) ([]domain.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.collectLocked(func(c domain.Category) bool {
		return c.ParentID != nil && *c.ParentID == parentID
	}), nil
}

// FindByIDs returns the categories with the given ids ordered by id.
func (s *CategoryStore) FindByIDs(_ context.Context, ids []int64) ([]domain.Category, error) {
	wanted := make(map[int64]bool, len(ids))
	for _, id := range ids {
		wanted[id] = true
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.collectLocked(func(c domain.Category) bool { return wanted[c.ID] }), nil
}

// FindByTitle returns the active category with the given title.
func (s *CategoryStore) FindByTitle(_ context.Context, title string) (*domain.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	matches := s.collectLocked(func(c domain.Category) bool {
		return c.IsActive && c.Title == title
	})
	if len(matches) == 0 {
		return nil, fmt.Errorf("category %q: %w", title, domain.ErrNotFound)
	}
	return &matches[0], nil
}

// AttachFatwa adds fatwaID to the category's membership list.
func (s *CategoryStore) AttachFatwa(_ context.Context, categoryID, fatwaID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.categories[categoryID]
	if !ok {
		return fmt.Errorf("category %d: %w", categoryID, domain.ErrNotFound)
	}
	if c.HasFatwa(fatwaID) {
		return nil
	}
	c.FatwaIDs = append(append([]int64(nil), c.FatwaIDs...), fatwaID)
	s.categories[categoryID] = c
	return nil
}

// DetachFatwa removes fatwaID from every membership list.
func (s *CategoryStore) DetachFatwa(_ context.Context, fatwaID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, c := range s.categories {
		if !c.HasFatwa(fatwaID) {
			continue
		}
		kept := make([]int64, 0, len(c.FatwaIDs))
		for _, fid := range c.FatwaIDs {
			if fid != fatwaID {
				kept = append(kept, fid)
			}
		}
		c.FatwaIDs = kept
		s.categories[id] = c
	}
	return nil
}

// collectLocked returns matching categories ordered by id (caller must hold lock).
func (s *CategoryStore) collectLocked(match func(domain.Category) bool) []domain.Category {
	result := make([]domain.Category, 0)
	for _, c := range s.categories {
		if match(c) {
			result = append(result, cloneCategory(&c))
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].ID < result[j].ID
	})
	return result
}

func cloneCategory(c *domain.Category) domain.Category {
	out := *c
	if c.ParentID != nil {
		parent := *c.ParentID
		out.ParentID = &parent
	}
	if c.FatwaIDs != nil {
		out.FatwaIDs = append([]int64(nil), c.FatwaIDs...)
	}
	return out
}
