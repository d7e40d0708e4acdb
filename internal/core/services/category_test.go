package services

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/mufti/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/mufti/internal/core/domain"
)

// seedCategoryStore builds the tree 1 -> {2, 3}, 2 -> {4} with the given memberships.
func seedCategoryStore(t *testing.T, members map[int64][]int64) *memory.CategoryStore {
	t.Helper()
	store := memory.NewCategoryStore()
	nodes := []domain.Category{
		{ID: 1, Title: "العبادات", Description: "أحكام العبادات"},
		{ID: 2, Title: "الزكاة", ParentID: int64Ptr(1)},
		{ID: 3, Title: "الصلاة", ParentID: int64Ptr(1)},
		{ID: 4, Title: "زكاة الفطر", ParentID: int64Ptr(2)},
	}
	for i := range nodes {
		nodes[i].IsActive = true
		nodes[i].FatwaIDs = members[nodes[i].ID]
		require.NoError(t, store.Save(context.Background(), &nodes[i]))
	}
	return store
}

func scenarioC(t *testing.T) *memory.CategoryStore {
	return seedCategoryStore(t, map[int64][]int64{
		1: {100},
		2: {},
		3: {101},
		4: {102},
	})
}

func TestCategoryService_Descendants(t *testing.T) {
	svc := NewCategoryService(scenarioC(t), memory.NewFatwaStore())
	ctx := context.Background()

	tests := []struct {
		name     string
		id       int64
		expected []int64
	}{
		{"root", 1, []int64{2, 3, 4}},
		{"middle", 2, []int64{4}},
		{"leaf", 4, []int64{}},
		{"unknown", 999, []int64{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := svc.Descendants(ctx, tt.id)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
			assert.NotContains(t, got, tt.id)
		})
	}
}

func TestCategoryService_ExtensionFatwaIDs(t *testing.T) {
	svc := NewCategoryService(scenarioC(t), memory.NewFatwaStore())
	ctx := context.Background()

	got, err := svc.ExtensionFatwaIDs(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, []int64{100, 101, 102}, got)

	again, err := svc.ExtensionFatwaIDs(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, got, again)

	got, err = svc.ExtensionFatwaIDs(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, []int64{102}, got)

	got, err = svc.ExtensionFatwaIDs(ctx, 999)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestCategoryService_ExtensionDeduplicatesAcrossNodes(t *testing.T) {
	store := seedCategoryStore(t, map[int64][]int64{
		1: {7, 5},
		2: {5, 9},
		4: {9, 7, 7},
	})
	svc := NewCategoryService(store, memory.NewFatwaStore())

	got, err := svc.ExtensionFatwaIDs(context.Background(), 1)

	require.NoError(t, err)
	assert.Equal(t, []int64{5, 7, 9}, got)
}

func TestCategoryService_InactiveNodesArePruned(t *testing.T) {
	store := scenarioC(t)
	ctx := context.Background()
	c, err := store.Get(ctx, 2)
	require.NoError(t, err)
	c.IsActive = false
	require.NoError(t, store.Save(ctx, c))
	svc := NewCategoryService(store, memory.NewFatwaStore())

	desc, err := svc.Descendants(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, []int64{3}, desc)

	ext, err := svc.ExtensionFatwaIDs(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, []int64{100, 101}, ext)
}

func TestCategoryService_CyclicDataTerminates(t *testing.T) {
	store := memory.NewCategoryStore()
	ctx := context.Background()
	for _, c := range []domain.Category{
		{ID: 1, Title: "a", ParentID: int64Ptr(3), IsActive: true, FatwaIDs: []int64{10}},
		{ID: 2, Title: "b", ParentID: int64Ptr(1), IsActive: true, FatwaIDs: []int64{20}},
		{ID: 3, Title: "c", ParentID: int64Ptr(2), IsActive: true, FatwaIDs: []int64{30}},
	} {
		c := c
		require.NoError(t, store.Save(ctx, &c))
	}
	svc := NewCategoryService(store, memory.NewFatwaStore())

	desc, err := svc.Descendants(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, []int64{2, 3}, desc)

	ext, err := svc.ExtensionFatwaIDs(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, []int64{10, 20, 30}, ext)
}

func seedMemberFatwas(t *testing.T, ids ...int64) *memory.FatwaStore {
	t.Helper()
	store := memory.NewFatwaStore()
	for i, id := range ids {
		f := testFatwa(id, "فتوى", i)
		require.NoError(t, store.Insert(context.Background(), &f))
	}
	return store
}

func TestCategoryService_ListByCategory(t *testing.T) {
	fatwas := seedMemberFatwas(t, 100, 101, 102)
	svc := NewCategoryService(scenarioC(t), fatwas)

	listing, err := svc.ListByCategory(context.Background(), 1, domain.PageRequest{Page: 1, PageSize: 2})

	require.NoError(t, err)
	assert.Equal(t, []int64{100, 101}, itemIDs(listing.Items))
	assert.Equal(t, 3, listing.TotalResults)
	assert.Equal(t, int64(1), listing.Category.ID)
	assert.Equal(t, "العبادات", listing.Category.Title)
	assert.Equal(t, "أحكام العبادات", listing.Category.Description)
	assert.Equal(t, 3, listing.Category.DescendantCount)

	listing, err = svc.ListByCategory(context.Background(), 1, domain.PageRequest{Page: 2, PageSize: 2})
	require.NoError(t, err)
	assert.Equal(t, []int64{102}, itemIDs(listing.Items))
}

func TestCategoryService_ListByCategory_LeafNode(t *testing.T) {
	store := seedCategoryStore(t, map[int64][]int64{3: {101, 101, 100}})
	svc := NewCategoryService(store, seedMemberFatwas(t, 100, 101))

	listing, err := svc.ListByCategory(context.Background(), 3, domain.PageRequest{Page: 1, PageSize: 10})

	require.NoError(t, err)
	assert.Equal(t, 0, listing.Category.DescendantCount)
	assert.Equal(t, 2, listing.TotalResults)
	assert.Equal(t, []int64{100, 101}, itemIDs(listing.Items))
}

func TestCategoryService_ListByCategory_DropsInactiveFatwas(t *testing.T) {
	fatwas := seedMemberFatwas(t, 100, 101, 102)
	deactivate(t, fatwas, 101)
	svc := NewCategoryService(scenarioC(t), fatwas)

	listing, err := svc.ListByCategory(context.Background(), 1, domain.PageRequest{Page: 1, PageSize: 10})

	require.NoError(t, err)
	assert.Equal(t, []int64{100, 102}, itemIDs(listing.Items))
	assert.Equal(t, 3, listing.TotalResults)
}

func TestCategoryService_ListByCategory_NotFound(t *testing.T) {
	store := scenarioC(t)
	ctx := context.Background()
	svc := NewCategoryService(store, memory.NewFatwaStore())

	_, err := svc.ListByCategory(ctx, 999, domain.PageRequest{Page: 1, PageSize: 10})
	assert.True(t, errors.Is(err, domain.ErrNotFound))

	c, err := store.Get(ctx, 3)
	require.NoError(t, err)
	c.IsActive = false
	require.NoError(t, store.Save(ctx, c))

	_, err = svc.ListByCategory(ctx, 3, domain.PageRequest{Page: 1, PageSize: 10})
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestCategoryService_ListByCategory_PageBeyondEnd(t *testing.T) {
	svc := NewCategoryService(scenarioC(t), memory.NewFatwaStore())

	listing, err := svc.ListByCategory(context.Background(), 2, domain.PageRequest{Page: 3, PageSize: 10})

	require.NoError(t, err)
	assert.NotNil(t, listing.Items)
	assert.Empty(t, listing.Items)
	assert.Equal(t, 1, listing.TotalResults)
}

func TestCategoryService_ListByCategory_InvalidPage(t *testing.T) {
	svc := NewCategoryService(scenarioC(t), memory.NewFatwaStore())

	_, err := svc.ListByCategory(context.Background(), 1, domain.PageRequest{Page: 0, PageSize: 10})

	assert.True(t, errors.Is(err, domain.ErrInvalidInput))
}

func TestCategoryService_ListAndTree(t *testing.T) {
	store := scenarioC(t)
	ctx := context.Background()
	inactive := domain.Category{ID: 5, Title: "مهجور", ParentID: int64Ptr(1)}
	require.NoError(t, store.Save(ctx, &inactive))
	svc := NewCategoryService(store, memory.NewFatwaStore())

	list, err := svc.List(ctx)
	require.NoError(t, err)
	titles := make([]string, len(list))
	for i := range list {
		titles[i] = list[i].Title
	}
	assert.Equal(t, []string{"الزكاة", "الصلاة", "العبادات", "زكاة الفطر"}, titles)

	tree, err := svc.Tree(ctx)
	require.NoError(t, err)
	require.Len(t, tree, 1)
	assert.Equal(t, int64(1), tree[0].ID)
	require.Len(t, tree[0].Children, 2)
	assert.Equal(t, int64(2), tree[0].Children[0].ID)
	assert.Equal(t, int64(3), tree[0].Children[1].ID)
	require.Len(t, tree[0].Children[0].Children, 1)
	assert.Equal(t, int64(4), tree[0].Children[0].Children[0].ID)
}

func TestCategoryService_Save(t *testing.T) {
	ctx := context.Background()

	t.Run("creates new category", func(t *testing.T) {
		store := scenarioC(t)
		svc := NewCategoryService(store, memory.NewFatwaStore())

		err := svc.Save(ctx, &domain.Category{ID: 6, Title: "  الصيام ", ParentID: int64Ptr(1), IsActive: true})

		require.NoError(t, err)
		got, err := store.Get(ctx, 6)
		require.NoError(t, err)
		assert.Equal(t, "الصيام", got.Title)
	})

	t.Run("keeps membership when none given", func(t *testing.T) {
		store := scenarioC(t)
		svc := NewCategoryService(store, memory.NewFatwaStore())

		err := svc.Save(ctx, &domain.Category{ID: 3, Title: "الصلاة", ParentID: int64Ptr(1), IsActive: true})

		require.NoError(t, err)
		got, err := store.Get(ctx, 3)
		require.NoError(t, err)
		assert.Equal(t, []int64{101}, got.FatwaIDs)
	})

	t.Run("duplicate active title", func(t *testing.T) {
		svc := NewCategoryService(scenarioC(t), memory.NewFatwaStore())

		err := svc.Save(ctx, &domain.Category{ID: 6, Title: "الزكاة", IsActive: true})

		assert.True(t, errors.Is(err, domain.ErrAlreadyExists))
	})

	t.Run("inactive category may reuse a title", func(t *testing.T) {
		svc := NewCategoryService(scenarioC(t), memory.NewFatwaStore())

		err := svc.Save(ctx, &domain.Category{ID: 6, Title: "الزكاة"})

		assert.NoError(t, err)
	})

	t.Run("missing parent", func(t *testing.T) {
		svc := NewCategoryService(scenarioC(t), memory.NewFatwaStore())

		err := svc.Save(ctx, &domain.Category{ID: 6, Title: "x", ParentID: int64Ptr(77), IsActive: true})

		assert.True(t, errors.Is(err, domain.ErrInvalidInput))
	})

	t.Run("parent inside own subtree", func(t *testing.T) {
		svc := NewCategoryService(scenarioC(t), memory.NewFatwaStore())

		err := svc.Save(ctx, &domain.Category{ID: 1, Title: "العبادات", ParentID: int64Ptr(4), IsActive: true})

		assert.True(t, errors.Is(err, domain.ErrInvalidInput))
	})

	t.Run("own parent", func(t *testing.T) {
		svc := NewCategoryService(scenarioC(t), memory.NewFatwaStore())

		err := svc.Save(ctx, &domain.Category{ID: 2, Title: "الزكاة", ParentID: int64Ptr(2), IsActive: true})

		assert.True(t, errors.Is(err, domain.ErrInvalidInput))
	})

	t.Run("nil category", func(t *testing.T) {
		svc := NewCategoryService(scenarioC(t), memory.NewFatwaStore())

		assert.True(t, errors.Is(svc.Save(ctx, nil), domain.ErrInvalidInput))
	})
}

func TestCategoryService_ListByCategory_HugePage(t *testing.T) {
	svc := NewCategoryService(scenarioC(t), seedMemberFatwas(t, 100, 101, 102))

	_, err := svc.ListByCategory(context.Background(), 1, domain.PageRequest{Page: math.MaxInt, PageSize: 10})
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))

	listing, err := svc.ListByCategory(context.Background(), 1, domain.PageRequest{Page: domain.MaxPage, PageSize: 10})
	require.NoError(t, err)
	assert.Empty(t, listing.Items)
	assert.Equal(t, 3, listing.TotalResults)
}

func TestCategoryService_HungTreeLoadIsBounded(t *testing.T) {
	svc := NewCategoryService(hungCategoryStore{scenarioC(t)}, memory.NewFatwaStore())
	svc.SetStoreTimeout(50 * time.Millisecond)

	start := time.Now()
	_, err := svc.ListByCategory(context.Background(), 1, domain.PageRequest{Page: 1, PageSize: 10})

	assert.True(t, errors.Is(err, context.DeadlineExceeded))
	assert.Less(t, time.Since(start), 2*time.Second)

	_, err = svc.ExtensionFatwaIDs(context.Background(), 1)
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
}

func TestCategoryService_HungHydrationIsBounded(t *testing.T) {
	fatwas := &flakyFatwaStore{FatwaStore: seedMemberFatwas(t, 100, 101, 102), findBlock: true}
	svc := NewCategoryService(scenarioC(t), fatwas)
	svc.SetStoreTimeout(50 * time.Millisecond)

	start := time.Now()
	_, err := svc.ListByCategory(context.Background(), 1, domain.PageRequest{Page: 1, PageSize: 10})

	assert.True(t, errors.Is(err, context.DeadlineExceeded))
	assert.Less(t, time.Since(start), 2*time.Second)
}

func TestCategoryService_SetStoreTimeoutIgnoresNonPositive(t *testing.T) {
	svc := NewCategoryService(scenarioC(t), memory.NewFatwaStore())
	svc.SetStoreTimeout(0)

	assert.Equal(t, int64(domain.DefaultSearchTuning().StoreTimeout), svc.storeTimeout.Load())
}
