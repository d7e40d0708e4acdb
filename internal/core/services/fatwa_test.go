package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/mufti/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/mufti/internal/core/domain"
	"github.com/custodia-labs/mufti/internal/core/ports/driving"
)

type fatwaFixture struct {
	svc        *FatwaService
	fatwas     *memory.FatwaStore
	categories *memory.CategoryStore
	oracle     *mockOracle
	translator *mockTranslator
	clock      time.Time
}

func newFatwaFixture(t *testing.T) *fatwaFixture {
	t.Helper()
	f := &fatwaFixture{
		fatwas:     memory.NewFatwaStore(),
		categories: scenarioC(t),
		oracle:     &mockOracle{},
		translator: &mockTranslator{},
		clock:      fixtureTime,
	}
	f.svc = NewFatwaService(f.fatwas, f.categories, f.oracle, f.translator)
	f.svc.now = func() time.Time { return f.clock }
	return f
}

func draft(id int64) *domain.Fatwa {
	return &domain.Fatwa{
		ID:              id,
		TitlePrimary:    "زكاة الفطر",
		QuestionPrimary: "متى تخرج زكاة الفطر؟",
		AnswerPrimary:   "قبل صلاة العيد",
		Category:        " زكاة الفطر ",
		Tags:            []string{"zakat", " fitr", "zakat"},
	}
}

func TestFatwaService_Create(t *testing.T) {
	fx := newFatwaFixture(t)
	ctx := context.Background()

	created, err := fx.svc.Create(ctx, draft(200), driving.WriteOptions{})

	require.NoError(t, err)
	assert.True(t, created.IsActive)
	assert.True(t, created.IsEmbedded)
	assert.Equal(t, fixtureTime, created.CreatedAt)
	assert.Equal(t, fixtureTime, created.UpdatedAt)
	assert.Equal(t, "زكاة الفطر", created.Category)
	assert.Equal(t, []string{"fitr", "zakat"}, created.Tags)
	assert.Nil(t, created.TitleSecondary)

	stored, err := fx.fatwas.Get(ctx, 200)
	require.NoError(t, err)
	assert.True(t, stored.IsEmbedded)

	category, err := fx.categories.Get(ctx, 4)
	require.NoError(t, err)
	assert.Equal(t, []int64{102, 200}, category.FatwaIDs)

	assert.Equal(t, []int64{200}, fx.oracle.indexed)
	assert.Equal(t, 0, fx.translator.calls)
}

func TestFatwaService_Create_Translates(t *testing.T) {
	fx := newFatwaFixture(t)
	input := draft(200)
	input.TitleSecondary = strPtr("Zakat al-Fitr")

	created, err := fx.svc.Create(context.Background(), input, driving.WriteOptions{Translate: true})

	require.NoError(t, err)
	assert.Equal(t, "Zakat al-Fitr", *created.TitleSecondary)
	require.NotNil(t, created.QuestionSecondary)
	assert.Equal(t, "[en] متى تخرج زكاة الفطر؟", *created.QuestionSecondary)
	require.NotNil(t, created.AnswerSecondary)
	assert.Equal(t, 2, fx.translator.calls)
}

func TestFatwaService_Create_TranslationFailureIsNotFatal(t *testing.T) {
	fx := newFatwaFixture(t)
	fx.translator.err = errBoom

	created, err := fx.svc.Create(context.Background(), draft(200), driving.WriteOptions{Translate: true})

	require.NoError(t, err)
	assert.Nil(t, created.TitleSecondary)
	assert.False(t, created.HasTranslation())
}

func TestFatwaService_Create_IndexFailureIsNotFatal(t *testing.T) {
	fx := newFatwaFixture(t)
	fx.oracle.indexErr = errBoom
	ctx := context.Background()

	created, err := fx.svc.Create(ctx, draft(200), driving.WriteOptions{})

	require.NoError(t, err)
	assert.False(t, created.IsEmbedded)
	stored, err := fx.fatwas.Get(ctx, 200)
	require.NoError(t, err)
	assert.False(t, stored.IsEmbedded)
}

func TestFatwaService_Create_WithoutOptionalServices(t *testing.T) {
	fatwas := memory.NewFatwaStore()
	svc := NewFatwaService(fatwas, memory.NewCategoryStore(), nil, nil)

	created, err := svc.Create(context.Background(), draft(200), driving.WriteOptions{Translate: true})

	require.NoError(t, err)
	assert.False(t, created.IsEmbedded)
	assert.Nil(t, created.AnswerSecondary)
}

func TestFatwaService_Create_Invalid(t *testing.T) {
	fx := newFatwaFixture(t)
	ctx := context.Background()

	_, err := fx.svc.Create(ctx, nil, driving.WriteOptions{})
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))

	bad := draft(200)
	bad.AnswerPrimary = "  "
	_, err = fx.svc.Create(ctx, bad, driving.WriteOptions{})
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))

	_, err = fx.svc.Create(ctx, draft(200), driving.WriteOptions{})
	require.NoError(t, err)
	_, err = fx.svc.Create(ctx, draft(200), driving.WriteOptions{})
	assert.True(t, errors.Is(err, domain.ErrAlreadyExists))
}

func TestFatwaService_Update(t *testing.T) {
	fx := newFatwaFixture(t)
	ctx := context.Background()
	_, err := fx.svc.Create(ctx, draft(200), driving.WriteOptions{})
	require.NoError(t, err)

	fx.clock = fixtureTime.Add(time.Hour)
	changed := draft(200)
	changed.AnswerPrimary = "قبل صلاة العيد بيوم أو يومين"
	changed.Category = "الصلاة"

	updated, err := fx.svc.Update(ctx, changed, driving.WriteOptions{})

	require.NoError(t, err)
	assert.Equal(t, fixtureTime, updated.CreatedAt)
	assert.Equal(t, fixtureTime.Add(time.Hour), updated.UpdatedAt)
	assert.True(t, updated.IsEmbedded)
	assert.Equal(t, []int64{200, 200}, fx.oracle.indexed)

	oldCategory, err := fx.categories.Get(ctx, 4)
	require.NoError(t, err)
	assert.Equal(t, []int64{102}, oldCategory.FatwaIDs)
	newCategory, err := fx.categories.Get(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, []int64{101, 200}, newCategory.FatwaIDs)
}

func TestFatwaService_Update_ClockSkew(t *testing.T) {
	fx := newFatwaFixture(t)
	ctx := context.Background()
	_, err := fx.svc.Create(ctx, draft(200), driving.WriteOptions{})
	require.NoError(t, err)

	fx.clock = fixtureTime.Add(-time.Hour)
	updated, err := fx.svc.Update(ctx, draft(200), driving.WriteOptions{})

	require.NoError(t, err)
	assert.Equal(t, updated.CreatedAt, updated.UpdatedAt)
}

func TestFatwaService_Update_NotFound(t *testing.T) {
	fx := newFatwaFixture(t)

	_, err := fx.svc.Update(context.Background(), draft(404), driving.WriteOptions{})

	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestFatwaService_Delete(t *testing.T) {
	fx := newFatwaFixture(t)
	ctx := context.Background()
	_, err := fx.svc.Create(ctx, draft(200), driving.WriteOptions{})
	require.NoError(t, err)

	require.NoError(t, fx.svc.Delete(ctx, 200))

	_, err = fx.fatwas.Get(ctx, 200)
	assert.True(t, errors.Is(err, domain.ErrNotFound))
	category, err := fx.categories.Get(ctx, 4)
	require.NoError(t, err)
	assert.Equal(t, []int64{102}, category.FatwaIDs)
	assert.Equal(t, []int64{200}, fx.oracle.removed)

	assert.True(t, errors.Is(fx.svc.Delete(ctx, 200), domain.ErrNotFound))
}

func TestFatwaService_Delete_OracleFailureIsNotFatal(t *testing.T) {
	fx := newFatwaFixture(t)
	ctx := context.Background()
	_, err := fx.svc.Create(ctx, draft(200), driving.WriteOptions{})
	require.NoError(t, err)
	fx.oracle.removeErr = errBoom

	assert.NoError(t, fx.svc.Delete(ctx, 200))
}

func TestFatwaService_Deactivate(t *testing.T) {
	fx := newFatwaFixture(t)
	ctx := context.Background()
	_, err := fx.svc.Create(ctx, draft(200), driving.WriteOptions{})
	require.NoError(t, err)

	require.NoError(t, fx.svc.Deactivate(ctx, 200))
	require.NoError(t, fx.svc.Deactivate(ctx, 200))

	stored, err := fx.fatwas.Get(ctx, 200)
	require.NoError(t, err)
	assert.False(t, stored.IsActive)
	assert.False(t, stored.IsEmbedded)
	assert.Equal(t, []int64{200}, fx.oracle.removed)

	assert.True(t, errors.Is(fx.svc.Deactivate(ctx, 404), domain.ErrNotFound))
}

func TestFatwaService_List(t *testing.T) {
	fx := newFatwaFixture(t)
	ctx := context.Background()
	for i, id := range []int64{201, 202, 203} {
		fx.clock = fixtureTime.Add(time.Duration(i) * time.Minute)
		_, err := fx.svc.Create(ctx, draft(id), driving.WriteOptions{})
		require.NoError(t, err)
	}
	other := draft(204)
	other.Category = "الصلاة"
	_, err := fx.svc.Create(ctx, other, driving.WriteOptions{})
	require.NoError(t, err)
	require.NoError(t, fx.svc.Deactivate(ctx, 202))

	result, err := fx.svc.List(ctx, "زكاة الفطر", domain.PageRequest{Page: 1, PageSize: 10})

	require.NoError(t, err)
	assert.Equal(t, []int64{203, 201}, itemIDs(result.Items))
	assert.Equal(t, 2, result.TotalResults)
	assert.Equal(t, domain.TierAll, result.Tier)

	result, err = fx.svc.List(ctx, "", domain.PageRequest{Page: 1, PageSize: 2})
	require.NoError(t, err)
	assert.Equal(t, 3, result.TotalResults)
	assert.Len(t, result.Items, 2)

	_, err = fx.svc.List(ctx, "", domain.PageRequest{Page: 1, PageSize: 0})
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))
}

func TestFatwaService_IndexPending(t *testing.T) {
	fx := newFatwaFixture(t)
	ctx := context.Background()
	fx.oracle.indexErr = errBoom
	for _, id := range []int64{201, 202} {
		_, err := fx.svc.Create(ctx, draft(id), driving.WriteOptions{})
		require.NoError(t, err)
	}

	fx.oracle.indexErr = nil
	n, err := fx.svc.IndexPending(ctx)

	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.ElementsMatch(t, []int64{201, 202}, fx.oracle.indexed)

	n, err = fx.svc.IndexPending(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestFatwaService_IndexPending_NoIndexer(t *testing.T) {
	svc := NewFatwaService(memory.NewFatwaStore(), memory.NewCategoryStore(), nil, nil)

	_, err := svc.IndexPending(context.Background())

	assert.True(t, errors.Is(err, domain.ErrOracleUnavailable))
}
