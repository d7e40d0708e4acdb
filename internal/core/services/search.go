package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/custodia-labs/mufti/internal/core/domain"
	"github.com/custodia-labs/mufti/internal/core/ports/driven"
	"github.com/custodia-labs/mufti/internal/core/ports/driving"
	"github.com/custodia-labs/mufti/internal/logger"
)

// Ensure SearchService implements the interface.
var _ driving.SearchService = (*SearchService)(nil)

// CategoryScope resolves a category to the fatwa ids in its subtree.
type CategoryScope interface {
	ExtensionFatwaIDs(ctx context.Context, categoryID int64) ([]int64, error)
}

// retrievalTier is one step of the search cascade.
type retrievalTier struct {
	tier    domain.SearchTier
	timeout time.Duration

	// final means an empty successful answer ends the cascade.
	final bool

	fetch func(ctx context.Context) ([]int64, error)
}

// SearchService resolves queries by cascading through the ranking oracle,
// the store text index and pattern matching, in that order.
type SearchService struct {
	fatwas driven.FatwaStore
	scope  CategoryScope

	mu     sync.RWMutex
	oracle driven.RankingOracle
	tuning domain.SearchTuning
}

// NewSearchService creates a new search service.
// The oracle parameter is optional (can be nil).
func NewSearchService(
	fatwas driven.FatwaStore,
	scope CategoryScope,
	oracle driven.RankingOracle,
) *SearchService {
	return &SearchService{
		fatwas: fatwas,
		scope:  scope,
		oracle: oracle,
		tuning: domain.DefaultSearchTuning(),
	}
}

// SetOracle replaces the ranking oracle. Nil disables the oracle tier.
func (s *SearchService) SetOracle(oracle driven.RankingOracle) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.oracle = oracle
}

// SetTuning replaces the cascade budgets. Zero fields keep their defaults.
func (s *SearchService) SetTuning(tuning domain.SearchTuning) {
	defaults := domain.DefaultSearchTuning()
	if tuning.OracleLimit <= 0 {
		tuning.OracleLimit = defaults.OracleLimit
	}
	if tuning.OracleTimeout <= 0 {
		tuning.OracleTimeout = defaults.OracleTimeout
	}
	if tuning.StoreTimeout <= 0 {
		tuning.StoreTimeout = defaults.StoreTimeout
	}
	if tuning.DefaultPageSize <= 0 {
		tuning.DefaultPageSize = defaults.DefaultPageSize
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.tuning = tuning
}

// Tuning returns the active cascade budgets.
func (s *SearchService) Tuning() domain.SearchTuning {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.tuning
}

// Search resolves query into one page of ranked fatwas.
func (s *SearchService) Search(
	ctx context.Context, query string, opts domain.SearchOptions,
) (*domain.PaginatedResult, error) {
	page := opts.PageRequest()
	if err := page.Validate(); err != nil {
		return nil, err
	}
	lang := opts.Language
	if lang == "" {
		lang = domain.LanguagePrimary
	}
	if !lang.IsValid() {
		return nil, fmt.Errorf("%w: unknown language %q", domain.ErrInvalidInput, lang)
	}

	s.mu.RLock()
	oracle, tuning := s.oracle, s.tuning
	s.mu.RUnlock()

	logger.Section("Search Execution")
	query = strings.TrimSpace(query)
	logger.Debug("Query: %q, language: %s, page: %d, size: %d", query, lang, page.Page, page.PageSize)

	ids, tier, err := s.candidates(ctx, query, lang, oracle, tuning)
	if err != nil {
		return nil, err
	}
	ids = dedupe(ids)
	logger.Debug("Tier %s produced %d candidates", tier, len(ids))

	if opts.CategoryID != nil {
		sctx, cancel := context.WithTimeout(ctx, tuning.StoreTimeout)
		scope, err := s.scope.ExtensionFatwaIDs(sctx, *opts.CategoryID)
		cancel()
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			logger.Error("Resolving category %d for search: %v", *opts.CategoryID, err)
			return domain.EmptyResult(page), nil
		}
		ids = intersect(ids, scope)
		logger.Debug("Category %d scope: %d candidates remain", *opts.CategoryID, len(ids))
	}

	result := &domain.PaginatedResult{
		Page:         page.Page,
		PageSize:     page.PageSize,
		TotalResults: len(ids),
		Tier:         tier,
		Items:        []domain.SearchResultItem{},
	}

	start, end := page.Window(len(ids))
	if start == end {
		return result, nil
	}

	hctx, cancel := context.WithTimeout(ctx, tuning.StoreTimeout)
	fatwas, err := hydrate(hctx, s.fatwas, ids[start:end])
	cancel()
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		logger.Error("Hydrating search results: %v", err)
		return domain.EmptyResult(page), nil
	}

	result.Items = resultItems(fatwas, lang, tier)
	logger.Info("Search %q: %d of %d results via %s tier", query, len(result.Items), result.TotalResults, tier)
	return result, nil
}

// candidates walks the cascade and returns the first usable id list.
// Dependency failures move on to the next tier; only cancellation of ctx is returned.
func (s *SearchService) candidates(
	ctx context.Context,
	query string,
	lang domain.Language,
	oracle driven.RankingOracle,
	tuning domain.SearchTuning,
) ([]int64, domain.SearchTier, error) {
	for _, t := range s.tiers(query, lang, oracle, tuning) {
		tctx, cancel := context.WithTimeout(ctx, t.timeout)
		ids, err := t.fetch(tctx)
		cancel()

		if ctx.Err() != nil {
			return nil, domain.TierNone, ctx.Err()
		}
		if err != nil {
			logger.Warn("Search tier %s failed: %v", t.tier, err)
			continue
		}
		if len(ids) == 0 && !t.final {
			logger.Debug("Search tier %s returned nothing, falling through", t.tier)
			continue
		}
		return ids, t.tier, nil
	}

	logger.Warn("All search tiers failed for %q", query)
	return []int64{}, domain.TierNone, nil
}

// tiers returns the cascade for query. An empty query lists every active fatwa.
func (s *SearchService) tiers(
	query string,
	lang domain.Language,
	oracle driven.RankingOracle,
	tuning domain.SearchTuning,
) []retrievalTier {
	if query == "" {
		return []retrievalTier{{
			tier:    domain.TierAll,
			timeout: tuning.StoreTimeout,
			final:   true,
			fetch: func(ctx context.Context) ([]int64, error) {
				return s.fatwas.FindIDs(ctx, driven.FatwaFilter{ActiveOnly: true})
			},
		}}
	}

	// Store tiers are uncapped so totals stay exact.
	limit := tuning.OracleLimit
	tiers := make([]retrievalTier, 0, 3)
	if oracle != nil {
		tiers = append(tiers, retrievalTier{
			tier:    domain.TierOracle,
			timeout: tuning.OracleTimeout,
			fetch: func(ctx context.Context) ([]int64, error) {
				ids, err := oracle.Rank(ctx, query, lang, limit)
				if err != nil && !errors.Is(err, domain.ErrOracleUnavailable) {
					err = fmt.Errorf("%w: %w", domain.ErrOracleUnavailable, err)
				}
				return ids, err
			},
		})
	}
	return append(tiers,
		retrievalTier{
			tier:    domain.TierText,
			timeout: tuning.StoreTimeout,
			final:   true,
			fetch: func(ctx context.Context) ([]int64, error) {
				return s.fatwas.TextMatch(ctx, query, 0)
			},
		},
		retrievalTier{
			tier:    domain.TierPattern,
			timeout: tuning.StoreTimeout,
			final:   true,
			fetch: func(ctx context.Context) ([]int64, error) {
				return s.fatwas.PatternMatch(ctx, query, 0)
			},
		},
	)
}
