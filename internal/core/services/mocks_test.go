package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/mufti/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/mufti/internal/core/domain"
	"github.com/custodia-labs/mufti/internal/core/ports/driven"
)

var errBoom = errors.New("boom")

// --- Mock implementations ---

// mockOracle implements driven.RankingOracle and driven.OracleIndexer for testing.
type mockOracle struct {
	mu sync.Mutex

	ids   []int64
	err   error
	block bool

	rankCalls int
	lastQuery string
	lastLang  domain.Language
	lastLimit int

	indexErr  error
	removeErr error
	indexed   []int64
	removed   []int64
}

func (m *mockOracle) Rank(ctx context.Context, query string, lang domain.Language, limit int) ([]int64, error) {
	m.mu.Lock()
	m.rankCalls++
	m.lastQuery, m.lastLang, m.lastLimit = query, lang, limit
	block, ids, err := m.block, m.ids, m.err
	m.mu.Unlock()

	if block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if err != nil {
		return nil, err
	}
	return append([]int64(nil), ids...), nil
}

func (m *mockOracle) Ping(_ context.Context) error {
	return m.err
}

func (m *mockOracle) Index(_ context.Context, fatwa domain.Fatwa) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.indexErr != nil {
		return m.indexErr
	}
	m.indexed = append(m.indexed, fatwa.ID)
	return nil
}

func (m *mockOracle) Remove(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.removeErr != nil {
		return m.removeErr
	}
	m.removed = append(m.removed, id)
	return nil
}

// flakyFatwaStore wraps the memory store with injectable failures and call counts.
type flakyFatwaStore struct {
	*memory.FatwaStore

	findErr    error
	findBlock  bool
	findIDsErr error
	textErr    error
	patternErr error

	textCalls    int
	patternCalls int
}

func (s *flakyFatwaStore) Find(ctx context.Context, filter driven.FatwaFilter) ([]domain.Fatwa, error) {
	if s.findBlock {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if s.findErr != nil {
		return nil, s.findErr
	}
	return s.FatwaStore.Find(ctx, filter)
}

func (s *flakyFatwaStore) FindIDs(ctx context.Context, filter driven.FatwaFilter) ([]int64, error) {
	if s.findIDsErr != nil {
		return nil, s.findIDsErr
	}
	return s.FatwaStore.FindIDs(ctx, filter)
}

func (s *flakyFatwaStore) TextMatch(ctx context.Context, query string, limit int) ([]int64, error) {
	s.textCalls++
	if s.textErr != nil {
		return nil, s.textErr
	}
	return s.FatwaStore.TextMatch(ctx, query, limit)
}

func (s *flakyFatwaStore) PatternMatch(ctx context.Context, query string, limit int) ([]int64, error) {
	s.patternCalls++
	if s.patternErr != nil {
		return nil, s.patternErr
	}
	return s.FatwaStore.PatternMatch(ctx, query, limit)
}

// hungCategoryStore blocks List until the caller's context is done.
type hungCategoryStore struct {
	*memory.CategoryStore
}

func (s hungCategoryStore) List(ctx context.Context) ([]domain.Category, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

// staticScope implements CategoryScope for testing.
type staticScope struct {
	ids []int64
	err error
}

func (s staticScope) ExtensionFatwaIDs(_ context.Context, _ int64) ([]int64, error) {
	return s.ids, s.err
}

// mockTranslator implements driven.Translator for testing.
type mockTranslator struct {
	err   error
	calls int
}

func (m *mockTranslator) Translate(_ context.Context, text string, _, to domain.Language) (string, error) {
	m.calls++
	if m.err != nil {
		return "", m.err
	}
	return "[" + to.String() + "] " + text, nil
}

func (m *mockTranslator) ModelName() string {
	return "mock-translate"
}

// --- Fixtures ---

var fixtureTime = time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

func strPtr(s string) *string { return &s }

func int64Ptr(i int64) *int64 { return &i }

func testFatwa(id int64, title string, minutes int) domain.Fatwa {
	at := fixtureTime.Add(time.Duration(minutes) * time.Minute)
	return domain.Fatwa{
		ID:              id,
		TitlePrimary:    title,
		QuestionPrimary: "ما حكم " + title + "؟",
		AnswerPrimary:   "الجواب عن " + title,
		Category:        "العبادات",
		CreatedAt:       at,
		UpdatedAt:       at,
		IsActive:        true,
	}
}

// seedStore fills a store with five zakat fatwas (2, 5, 6, 7, 9) and two prayer fatwas (3, 4).
func seedStore(t *testing.T) *flakyFatwaStore {
	t.Helper()
	store := &flakyFatwaStore{FatwaStore: memory.NewFatwaStore()}
	ctx := context.Background()

	fatwas := []domain.Fatwa{
		testFatwa(2, "زكاة الذهب", 2),
		testFatwa(3, "صلاة المسافر", 3),
		testFatwa(4, "صلاة الجماعة", 4),
		testFatwa(5, "زكاة الفطر", 5),
		testFatwa(6, "زكاة الأسهم", 6),
		testFatwa(7, "زكاة الزروع", 7),
		testFatwa(9, "زكاة المال", 9),
	}
	fatwas[6].TitleSecondary = strPtr("Zakat on wealth")
	for i := range fatwas {
		require.NoError(t, store.Insert(ctx, &fatwas[i]))
	}
	return store
}

func deactivate(t *testing.T, store driven.FatwaStore, id int64) {
	t.Helper()
	ctx := context.Background()
	f, err := store.Get(ctx, id)
	require.NoError(t, err)
	f.IsActive = false
	require.NoError(t, store.Replace(ctx, f))
}

func itemIDs(items []domain.SearchResultItem) []int64 {
	ids := make([]int64, len(items))
	for i := range items {
		ids[i] = items[i].Fatwa.ID
	}
	return ids
}
