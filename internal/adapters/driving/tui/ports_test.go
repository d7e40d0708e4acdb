package tui

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/custodia-labs/mufti/internal/core/domain"
	"github.com/custodia-labs/mufti/internal/core/ports/driving"
)

// mockSearchService implements driving.SearchService for testing.
type mockSearchService struct {
	result    *domain.PaginatedResult
	err       error
	lastQuery string
	lastOpts  domain.SearchOptions
}

var _ driving.SearchService = (*mockSearchService)(nil)

func (m *mockSearchService) Search(_ context.Context, query string, opts domain.SearchOptions) (*domain.PaginatedResult, error) {
	m.lastQuery = query
	m.lastOpts = opts
	if m.err != nil {
		return nil, m.err
	}
	if m.result == nil {
		return domain.EmptyResult(opts.PageRequest()), nil
	}
	return m.result, nil
}

// mockCategoryService implements driving.CategoryService for testing.
type mockCategoryService struct {
	tree []domain.CategoryNode
	err  error
}

var _ driving.CategoryService = (*mockCategoryService)(nil)

func (m *mockCategoryService) Descendants(context.Context, int64) ([]int64, error) {
	return []int64{}, nil
}

func (m *mockCategoryService) ExtensionFatwaIDs(context.Context, int64) ([]int64, error) {
	return []int64{}, nil
}

func (m *mockCategoryService) ListByCategory(context.Context, int64, domain.PageRequest) (*domain.CategoryListing, error) {
	return nil, domain.ErrNotFound
}

func (m *mockCategoryService) Get(context.Context, int64) (*domain.Category, error) {
	return nil, domain.ErrNotFound
}

func (m *mockCategoryService) List(context.Context) ([]domain.Category, error) {
	return nil, nil
}

func (m *mockCategoryService) Tree(context.Context) ([]domain.CategoryNode, error) {
	return m.tree, m.err
}

func (m *mockCategoryService) Save(context.Context, *domain.Category) error {
	return nil
}

func TestNewPorts(t *testing.T) {
	search := &mockSearchService{}
	cats := &mockCategoryService{}

	p := NewPorts(search, cats)

	assert.Same(t, search, p.Search)
	assert.Same(t, cats, p.Categories)
	assert.NoError(t, p.Validate())
}

func TestPorts_Validate(t *testing.T) {
	tests := []struct {
		name  string
		ports *Ports
		want  error
	}{
		{"nil ports", nil, ErrInvalidPorts},
		{"missing search", &Ports{Categories: &mockCategoryService{}}, ErrMissingSearchService},
		{"missing categories", &Ports{Search: &mockSearchService{}}, ErrMissingCategoryService},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, tt.ports.Validate(), tt.want)
		})
	}
}

func TestErrors_AreDistinct(t *testing.T) {
	seen := make(map[string]bool)
	for _, err := range []error{ErrMissingSearchService, ErrMissingCategoryService, ErrInvalidPorts} {
		assert.False(t, seen[err.Error()], "duplicate error message: %s", err)
		seen[err.Error()] = true
		assert.Contains(t, err.Error(), "tui:")
	}
}
