package mcp

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/mufti/internal/core/domain"
)

func TestServer_handleSearch(t *testing.T) {
	ctx := context.Background()

	t.Run("returns search results", func(t *testing.T) {
		fatwa := testFatwa()
		mockSearch := &mockSearchService{
			result: &domain.PaginatedResult{
				Page:         1,
				PageSize:     10,
				TotalResults: 1,
				Tier:         domain.TierText,
				Items: []domain.SearchResultItem{{
					Fatwa:          fatwa,
					Text:           fatwa.Localize(domain.LanguageSecondary),
					RelevanceScore: 0.5,
				}},
			},
		}
		server := newTestServer(t, &Ports{Search: mockSearch})

		input := SearchInput{Query: "gold", Lang: "en", CategoryID: 7}
		_, output, err := server.handleSearch(ctx, nil, input)

		require.NoError(t, err)
		assert.Equal(t, "text", output.Tier)
		assert.Equal(t, 1, output.TotalResults)
		require.Len(t, output.Results, 1)
		assert.Equal(t, int64(42), output.Results[0].ID)
		assert.Equal(t, "en", output.Results[0].Language)
		assert.Equal(t, "Zakat on gold", output.Results[0].Title)
		assert.Equal(t, "هل في الذهب زكاة؟", output.Results[0].Question)
		assert.Equal(t, 0.5, output.Results[0].Score)

		assert.Equal(t, "gold", mockSearch.lastQuery)
		assert.Equal(t, domain.LanguageSecondary, mockSearch.lastOpts.Language)
		require.NotNil(t, mockSearch.lastOpts.CategoryID)
		assert.Equal(t, int64(7), *mockSearch.lastOpts.CategoryID)
	})

	t.Run("applies paging defaults", func(t *testing.T) {
		mockSearch := &mockSearchService{}
		server := newTestServer(t, &Ports{Search: mockSearch})

		_, output, err := server.handleSearch(ctx, nil, SearchInput{})

		require.NoError(t, err)
		assert.Equal(t, 1, mockSearch.lastOpts.Page)
		assert.Equal(t, domain.DefaultPageSize, mockSearch.lastOpts.PageSize)
		assert.Nil(t, mockSearch.lastOpts.CategoryID)
		assert.Equal(t, "none", output.Tier)
		assert.NotNil(t, output.Results)
	})

	t.Run("rejects unknown language", func(t *testing.T) {
		server := newTestServer(t, &Ports{})

		_, _, err := server.handleSearch(ctx, nil, SearchInput{Query: "x", Lang: "fr"})

		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})

	t.Run("returns error on search failure", func(t *testing.T) {
		mockSearch := &mockSearchService{err: errors.New("search failed")}
		server := newTestServer(t, &Ports{Search: mockSearch})

		_, _, err := server.handleSearch(ctx, nil, SearchInput{Query: "test"})

		require.Error(t, err)
		assert.Contains(t, err.Error(), "search failed")
	})
}

func TestServer_handleListByCategory(t *testing.T) {
	ctx := context.Background()

	t.Run("projects listing into requested language", func(t *testing.T) {
		fatwa := testFatwa()
		categories := &mockCategoryService{
			listing: &domain.CategoryListing{
				PaginatedResult: domain.PaginatedResult{
					Page:         2,
					PageSize:     5,
					TotalResults: 6,
					Tier:         domain.TierAll,
					Items: []domain.SearchResultItem{{
						Fatwa:          fatwa,
						Text:           fatwa.Localize(domain.LanguagePrimary),
						RelevanceScore: 1,
					}},
				},
				Category: domain.CategoryInfo{ID: 3, Title: "الزكاة", DescendantCount: 2},
			},
		}
		server := newTestServer(t, &Ports{Categories: categories})

		input := ListByCategoryInput{CategoryID: 3, Lang: "en", Page: 2, PageSize: 5}
		_, output, err := server.handleListByCategory(ctx, nil, input)

		require.NoError(t, err)
		assert.Equal(t, domain.PageRequest{Page: 2, PageSize: 5}, categories.lastPage)
		assert.Equal(t, int64(3), output.CategoryID)
		assert.Equal(t, "الزكاة", output.CategoryTitle)
		assert.Equal(t, 2, output.DescendantCount)
		assert.Equal(t, 6, output.TotalResults)
		require.Len(t, output.Results, 1)
		assert.Equal(t, "Zakat on gold", output.Results[0].Title)
	})

	t.Run("wraps not found", func(t *testing.T) {
		categories := &mockCategoryService{err: domain.ErrNotFound}
		server := newTestServer(t, &Ports{Categories: categories})

		_, _, err := server.handleListByCategory(ctx, nil, ListByCategoryInput{CategoryID: 99})

		assert.ErrorIs(t, err, domain.ErrNotFound)
		assert.Contains(t, err.Error(), "category 99")
	})
}

func TestServer_handleDescendants(t *testing.T) {
	ctx := context.Background()

	t.Run("returns descendant ids", func(t *testing.T) {
		categories := &mockCategoryService{descendants: []int64{2, 3, 4}}
		server := newTestServer(t, &Ports{Categories: categories})

		_, output, err := server.handleDescendants(ctx, nil, DescendantsInput{CategoryID: 1})

		require.NoError(t, err)
		assert.Equal(t, int64(1), output.CategoryID)
		assert.Equal(t, []int64{2, 3, 4}, output.Descendants)
	})

	t.Run("leaf yields empty array", func(t *testing.T) {
		server := newTestServer(t, &Ports{})

		_, output, err := server.handleDescendants(ctx, nil, DescendantsInput{CategoryID: 4})

		require.NoError(t, err)
		assert.Equal(t, []int64{}, output.Descendants)
	})
}
