package mcp

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/mufti/internal/core/domain"
	"github.com/custodia-labs/mufti/internal/core/ports/driving"
)

// mockSearchService is a mock implementation of driving.SearchService.
type mockSearchService struct {
	result *domain.PaginatedResult
	err    error

	lastQuery string
	lastOpts  domain.SearchOptions
}

func (m *mockSearchService) Search(
	_ context.Context,
	query string,
	opts domain.SearchOptions,
) (*domain.PaginatedResult, error) {
	m.lastQuery, m.lastOpts = query, opts
	if m.err != nil {
		return nil, m.err
	}
	if m.result == nil {
		return domain.EmptyResult(opts.PageRequest()), nil
	}
	return m.result, nil
}

// mockCategoryService is a mock implementation of driving.CategoryService.
type mockCategoryService struct {
	descendants []int64
	listing     *domain.CategoryListing
	category    *domain.Category
	tree        []domain.CategoryNode
	err         error

	lastPage domain.PageRequest
}

var _ driving.CategoryService = (*mockCategoryService)(nil)

func (m *mockCategoryService) Descendants(_ context.Context, _ int64) ([]int64, error) {
	return m.descendants, m.err
}

func (m *mockCategoryService) ExtensionFatwaIDs(_ context.Context, _ int64) ([]int64, error) {
	return nil, m.err
}

func (m *mockCategoryService) ListByCategory(
	_ context.Context,
	_ int64,
	page domain.PageRequest,
) (*domain.CategoryListing, error) {
	m.lastPage = page
	return m.listing, m.err
}

func (m *mockCategoryService) Get(_ context.Context, _ int64) (*domain.Category, error) {
	if m.category == nil && m.err == nil {
		return nil, domain.ErrNotFound
	}
	return m.category, m.err
}

func (m *mockCategoryService) List(_ context.Context) ([]domain.Category, error) {
	return nil, m.err
}

func (m *mockCategoryService) Tree(_ context.Context) ([]domain.CategoryNode, error) {
	return m.tree, m.err
}

func (m *mockCategoryService) Save(_ context.Context, _ *domain.Category) error {
	return m.err
}

// mockFatwaService is a mock implementation of driving.FatwaService.
type mockFatwaService struct {
	fatwa *domain.Fatwa
	err   error
}

var _ driving.FatwaService = (*mockFatwaService)(nil)

func (m *mockFatwaService) Create(_ context.Context, f *domain.Fatwa, _ driving.WriteOptions) (*domain.Fatwa, error) {
	return f, m.err
}

func (m *mockFatwaService) Update(_ context.Context, f *domain.Fatwa, _ driving.WriteOptions) (*domain.Fatwa, error) {
	return f, m.err
}

func (m *mockFatwaService) Delete(_ context.Context, _ int64) error {
	return m.err
}

func (m *mockFatwaService) Deactivate(_ context.Context, _ int64) error {
	return m.err
}

func (m *mockFatwaService) Get(_ context.Context, _ int64) (*domain.Fatwa, error) {
	if m.fatwa == nil && m.err == nil {
		return nil, domain.ErrNotFound
	}
	return m.fatwa, m.err
}

func (m *mockFatwaService) List(_ context.Context, _ string, page domain.PageRequest) (*domain.PaginatedResult, error) {
	return domain.EmptyResult(page), m.err
}

func strPtr(s string) *string { return &s }

func testFatwa() domain.Fatwa {
	return domain.Fatwa{
		ID:              42,
		TitlePrimary:    "زكاة الذهب",
		QuestionPrimary: "هل في الذهب زكاة؟",
		AnswerPrimary:   "نعم إذا بلغ النصاب",
		TitleSecondary:  strPtr("Zakat on gold"),
		Category:        "الزكاة",
		Tags:            []string{"gold", "zakat"},
		IsActive:        true,
	}
}

func newTestServer(t *testing.T, ports *Ports) *Server {
	t.Helper()
	if ports.Search == nil {
		ports.Search = &mockSearchService{}
	}
	if ports.Categories == nil {
		ports.Categories = &mockCategoryService{}
	}
	server, err := NewServer(ports)
	require.NoError(t, err)
	return server
}
