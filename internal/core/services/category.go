package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync/atomic"
	"time"

	"github.com/custodia-labs/mufti/internal/core/domain"
	"github.com/custodia-labs/mufti/internal/core/ports/driven"
	"github.com/custodia-labs/mufti/internal/core/ports/driving"
	"github.com/custodia-labs/mufti/internal/logger"
)

// Ensure CategoryService implements the interface.
var _ driving.CategoryService = (*CategoryService)(nil)

// CategoryService resolves category subtrees and lists the fatwas under them.
//
// Every read loads the whole category table once and walks it in memory,
// so a call sees one consistent snapshot of the tree.
type CategoryService struct {
	categories driven.CategoryStore
	fatwas     driven.FatwaStore

	// storeTimeout bounds each tree load and hydration, in nanoseconds.
	storeTimeout atomic.Int64
}

// NewCategoryService creates a new category service.
func NewCategoryService(categories driven.CategoryStore, fatwas driven.FatwaStore) *CategoryService {
	s := &CategoryService{
		categories: categories,
		fatwas:     fatwas,
	}
	s.storeTimeout.Store(int64(domain.DefaultSearchTuning().StoreTimeout))
	return s
}

// SetStoreTimeout replaces the per-call store budget. Non-positive values are ignored.
func (s *CategoryService) SetStoreTimeout(d time.Duration) {
	if d > 0 {
		s.storeTimeout.Store(int64(d))
	}
}

func (s *CategoryService) withStoreTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, time.Duration(s.storeTimeout.Load()))
}

// Descendants returns the ids of every active category below categoryID.
func (s *CategoryService) Descendants(ctx context.Context, categoryID int64) ([]int64, error) {
	tree, err := s.loadTree(ctx, true)
	if err != nil {
		return nil, err
	}
	return tree.descendants(categoryID), nil
}

// ExtensionFatwaIDs returns the fatwa ids attached anywhere in the subtree rooted at categoryID.
func (s *CategoryService) ExtensionFatwaIDs(ctx context.Context, categoryID int64) ([]int64, error) {
	tree, err := s.loadTree(ctx, true)
	if err != nil {
		return nil, err
	}
	return tree.extension(categoryID), nil
}

// ListByCategory returns one page of active fatwas under the category subtree,
// ordered by ascending id.
func (s *CategoryService) ListByCategory(
	ctx context.Context, categoryID int64, page domain.PageRequest,
) (*domain.CategoryListing, error) {
	if err := page.Validate(); err != nil {
		return nil, err
	}

	tree, err := s.loadTree(ctx, true)
	if err != nil {
		return nil, err
	}
	node, ok := tree.nodes[categoryID]
	if !ok {
		return nil, fmt.Errorf("category %d: %w", categoryID, domain.ErrNotFound)
	}

	descendants := tree.descendants(categoryID)
	ids := tree.extension(categoryID)
	logger.Debug("Category %d: %d descendants, %d fatwas", categoryID, len(descendants), len(ids))

	listing := &domain.CategoryListing{
		PaginatedResult: domain.PaginatedResult{
			Page:         page.Page,
			PageSize:     page.PageSize,
			TotalResults: len(ids),
			Tier:         domain.TierAll,
			Items:        []domain.SearchResultItem{},
		},
		Category: domain.CategoryInfo{
			ID:              node.ID,
			Title:           node.Title,
			Description:     node.Description,
			DescendantCount: len(descendants),
		},
	}

	start, end := page.Window(len(ids))
	if start == end {
		return listing, nil
	}

	hctx, cancel := s.withStoreTimeout(ctx)
	fatwas, err := hydrate(hctx, s.fatwas, ids[start:end])
	cancel()
	if err != nil {
		return nil, fmt.Errorf("hydrate category %d: %w", categoryID, err)
	}
	listing.Items = resultItems(fatwas, domain.LanguagePrimary, domain.TierAll)
	return listing, nil
}

// Get retrieves a category by id.
func (s *CategoryService) Get(ctx context.Context, id int64) (*domain.Category, error) {
	return s.categories.Get(ctx, id)
}

// List returns all active categories ordered by title.
func (s *CategoryService) List(ctx context.Context) ([]domain.Category, error) {
	all, err := s.categories.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	active := make([]domain.Category, 0, len(all))
	for i := range all {
		if all[i].IsActive {
			active = append(active, all[i])
		}
	}
	sortByTitle(active)
	return active, nil
}

// Tree returns the active categories nested under their roots.
// Nodes whose parent is missing or inactive are left out with their subtrees.
func (s *CategoryService) Tree(ctx context.Context) ([]domain.CategoryNode, error) {
	tree, err := s.loadTree(ctx, true)
	if err != nil {
		return nil, err
	}

	visited := make(map[int64]bool, len(tree.nodes))
	var build func(id int64) domain.CategoryNode
	build = func(id int64) domain.CategoryNode {
		visited[id] = true
		node := domain.CategoryNode{Category: tree.nodes[id]}
		for _, child := range tree.sortedChildren(id) {
			if visited[child] {
				continue
			}
			node.Children = append(node.Children, build(child))
		}
		return node
	}

	roots := make([]domain.CategoryNode, 0)
	for _, id := range tree.sortedRoots() {
		roots = append(roots, build(id))
	}
	return roots, nil
}

// Save creates or updates a category.
//
// Active titles are unique. A parent must exist and must not sit inside the
// category's own subtree. A nil membership list keeps the stored one.
func (s *CategoryService) Save(ctx context.Context, category *domain.Category) error {
	if category == nil {
		return fmt.Errorf("%w: category is required", domain.ErrInvalidInput)
	}
	category.Title = strings.TrimSpace(category.Title)
	if err := category.Validate(); err != nil {
		return err
	}

	if category.IsActive {
		existing, err := s.categories.FindByTitle(ctx, category.Title)
		switch {
		case err == nil && existing.ID != category.ID:
			return fmt.Errorf("category %q: %w", category.Title, domain.ErrAlreadyExists)
		case err != nil && !errors.Is(err, domain.ErrNotFound):
			return fmt.Errorf("check category title: %w", err)
		}
	}

	if category.ParentID != nil {
		if err := s.checkParent(ctx, category.ID, *category.ParentID); err != nil {
			return err
		}
	}

	if category.FatwaIDs == nil {
		stored, err := s.categories.Get(ctx, category.ID)
		switch {
		case err == nil:
			category.FatwaIDs = stored.FatwaIDs
		case !errors.Is(err, domain.ErrNotFound):
			return fmt.Errorf("get category %d: %w", category.ID, err)
		}
	}

	if err := s.categories.Save(ctx, category); err != nil {
		return fmt.Errorf("save category %d: %w", category.ID, err)
	}
	logger.Info("Saved category %d (%s)", category.ID, category.Title)
	return nil
}

func (s *CategoryService) checkParent(ctx context.Context, id, parentID int64) error {
	if _, err := s.categories.Get(ctx, parentID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("%w: parent category %d does not exist", domain.ErrInvalidInput, parentID)
		}
		return fmt.Errorf("get parent category: %w", err)
	}

	// Inactive nodes count here: reactivating one must not close a loop.
	tree, err := s.loadTree(ctx, false)
	if err != nil {
		return err
	}
	for _, d := range tree.descendants(id) {
		if d == parentID {
			return fmt.Errorf("%w: category %d cannot move under its descendant %d",
				domain.ErrInvalidInput, id, parentID)
		}
	}
	return nil
}

func (s *CategoryService) loadTree(ctx context.Context, activeOnly bool) (*categoryTree, error) {
	lctx, cancel := s.withStoreTimeout(ctx)
	defer cancel()
	all, err := s.categories.List(lctx)
	if err != nil {
		return nil, fmt.Errorf("load category tree: %w", err)
	}
	return newCategoryTree(all, activeOnly), nil
}

// categoryTree is an adjacency snapshot of the category table.
type categoryTree struct {
	nodes    map[int64]domain.Category
	children map[int64][]int64
}

func newCategoryTree(categories []domain.Category, activeOnly bool) *categoryTree {
	tree := &categoryTree{
		nodes:    make(map[int64]domain.Category, len(categories)),
		children: make(map[int64][]int64),
	}
	for i := range categories {
		c := categories[i]
		if activeOnly && !c.IsActive {
			continue
		}
		tree.nodes[c.ID] = c
		if c.ParentID != nil {
			tree.children[*c.ParentID] = append(tree.children[*c.ParentID], c.ID)
		}
	}
	return tree
}

// descendants walks child edges breadth-first. The root is never included
// and a visited set stops traversal on cyclic data.
func (t *categoryTree) descendants(id int64) []int64 {
	result := make([]int64, 0)
	if _, ok := t.nodes[id]; !ok {
		return result
	}

	visited := map[int64]bool{id: true}
	queue := []int64{id}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		for _, child := range t.children[current] {
			if visited[child] {
				continue
			}
			if _, ok := t.nodes[child]; !ok {
				continue
			}
			visited[child] = true
			result = append(result, child)
			queue = append(queue, child)
		}
	}

	sort.Slice(result, func(i, j int) bool { return result[i] < result[j] })
	return result
}

// extension unions the membership lists of id and its descendants.
func (t *categoryTree) extension(id int64) []int64 {
	node, ok := t.nodes[id]
	if !ok {
		return []int64{}
	}

	seen := make(map[int64]bool)
	result := make([]int64, 0, len(node.FatwaIDs))
	add := func(ids []int64) {
		for _, fid := range ids {
			if !seen[fid] {
				seen[fid] = true
				result = append(result, fid)
			}
		}
	}

	add(node.FatwaIDs)
	for _, d := range t.descendants(id) {
		add(t.nodes[d].FatwaIDs)
	}

	sort.Slice(result, func(i, j int) bool { return result[i] < result[j] })
	return result
}

func (t *categoryTree) sortedRoots() []int64 {
	var roots []domain.Category
	for _, c := range t.nodes {
		if c.ParentID == nil {
			roots = append(roots, c)
		}
	}
	sortByTitle(roots)
	return categoryIDs(roots)
}

func (t *categoryTree) sortedChildren(id int64) []int64 {
	var children []domain.Category
	for _, child := range t.children[id] {
		if c, ok := t.nodes[child]; ok {
			children = append(children, c)
		}
	}
	sortByTitle(children)
	return categoryIDs(children)
}

func sortByTitle(categories []domain.Category) {
	sort.SliceStable(categories, func(i, j int) bool {
		if categories[i].Title != categories[j].Title {
			return categories[i].Title < categories[j].Title
		}
		return categories[i].ID < categories[j].ID
	})
}

func categoryIDs(categories []domain.Category) []int64 {
	ids := make([]int64, len(categories))
	for i := range categories {
		ids[i] = categories[i].ID
	}
	return ids
}
