package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/custodia-labs/mufti/internal/core/domain"
	"github.com/custodia-labs/mufti/internal/core/ports/driven"
	"github.com/custodia-labs/mufti/internal/core/ports/driving"
	"github.com/custodia-labs/mufti/internal/logger"
)

// Ensure FatwaService implements the interface.
var _ driving.FatwaService = (*FatwaService)(nil)

// DefaultIndexTimeout bounds each oracle index or remove call on the write path.
const DefaultIndexTimeout = 10 * time.Second

// FatwaService manages the fatwa lifecycle.
//
// Translation, category membership and oracle indexing are side effects of
// a write. They are best-effort: a failure is logged and the write stands.
type FatwaService struct {
	fatwas     driven.FatwaStore
	categories driven.CategoryStore
	indexer    driven.OracleIndexer
	translator driven.Translator

	indexTimeout time.Duration
	now          func() time.Time
}

// NewFatwaService creates a new fatwa service.
// The indexer and translator parameters are optional (can be nil).
func NewFatwaService(
	fatwas driven.FatwaStore,
	categories driven.CategoryStore,
	indexer driven.OracleIndexer,
	translator driven.Translator,
) *FatwaService {
	return &FatwaService{
		fatwas:       fatwas,
		categories:   categories,
		indexer:      indexer,
		translator:   translator,
		indexTimeout: DefaultIndexTimeout,
		now:          time.Now,
	}
}

// SetIndexTimeout changes the budget of each oracle call.
func (s *FatwaService) SetIndexTimeout(timeout time.Duration) {
	if timeout > 0 {
		s.indexTimeout = timeout
	}
}

// Create validates and stores a new fatwa, then indexes it in the oracle.
func (s *FatwaService) Create(
	ctx context.Context, fatwa *domain.Fatwa, opts driving.WriteOptions,
) (*domain.Fatwa, error) {
	if fatwa == nil {
		return nil, fmt.Errorf("%w: fatwa is required", domain.ErrInvalidInput)
	}

	f := *fatwa
	f.NormalizeTags()
	f.Category = strings.TrimSpace(f.Category)
	now := s.now().UTC()
	f.CreatedAt, f.UpdatedAt = now, now
	f.IsActive = true
	f.IsEmbedded = false
	if err := f.Validate(); err != nil {
		return nil, err
	}

	if opts.Translate {
		s.translate(ctx, &f)
	}

	if err := s.fatwas.Insert(ctx, &f); err != nil {
		return nil, fmt.Errorf("insert fatwa %d: %w", f.ID, err)
	}
	logger.Info("Created fatwa %d", f.ID)

	s.attach(ctx, &f)
	s.index(ctx, &f)
	return &f, nil
}

// Update replaces an existing fatwa's content and re-indexes it.
// CreatedAt and the active flag are kept from the stored copy.
func (s *FatwaService) Update(
	ctx context.Context, fatwa *domain.Fatwa, opts driving.WriteOptions,
) (*domain.Fatwa, error) {
	if fatwa == nil {
		return nil, fmt.Errorf("%w: fatwa is required", domain.ErrInvalidInput)
	}

	existing, err := s.fatwas.Get(ctx, fatwa.ID)
	if err != nil {
		return nil, fmt.Errorf("get fatwa %d: %w", fatwa.ID, err)
	}

	f := *fatwa
	f.NormalizeTags()
	f.Category = strings.TrimSpace(f.Category)
	f.CreatedAt = existing.CreatedAt
	f.UpdatedAt = s.now().UTC()
	if f.UpdatedAt.Before(f.CreatedAt) {
		f.UpdatedAt = f.CreatedAt
	}
	f.IsActive = existing.IsActive
	f.IsEmbedded = false
	if err := f.Validate(); err != nil {
		return nil, err
	}

	if opts.Translate {
		s.translate(ctx, &f)
	}

	if err := s.fatwas.Replace(ctx, &f); err != nil {
		return nil, fmt.Errorf("replace fatwa %d: %w", f.ID, err)
	}
	logger.Info("Updated fatwa %d", f.ID)

	if f.Category != existing.Category {
		if err := s.categories.DetachFatwa(ctx, f.ID); err != nil {
			logger.Warn("Detaching fatwa %d from categories: %v", f.ID, err)
		}
		s.attach(ctx, &f)
	}
	if f.IsActive {
		s.index(ctx, &f)
	}
	return &f, nil
}

// Delete removes a fatwa from the store and, best-effort, from the oracle.
func (s *FatwaService) Delete(ctx context.Context, id int64) error {
	if err := s.fatwas.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete fatwa %d: %w", id, err)
	}
	logger.Info("Deleted fatwa %d", id)

	if err := s.categories.DetachFatwa(ctx, id); err != nil {
		logger.Warn("Detaching fatwa %d from categories: %v", id, err)
	}
	s.remove(ctx, id)
	return nil
}

// Deactivate soft-deletes a fatwa. It stays in the store but leaves every
// search and category result.
func (s *FatwaService) Deactivate(ctx context.Context, id int64) error {
	f, err := s.fatwas.Get(ctx, id)
	if err != nil {
		return fmt.Errorf("get fatwa %d: %w", id, err)
	}
	if !f.IsActive {
		return nil
	}

	f.IsActive = false
	f.IsEmbedded = false
	f.UpdatedAt = s.now().UTC()
	if f.UpdatedAt.Before(f.CreatedAt) {
		f.UpdatedAt = f.CreatedAt
	}
	if err := s.fatwas.Replace(ctx, f); err != nil {
		return fmt.Errorf("deactivate fatwa %d: %w", id, err)
	}
	logger.Info("Deactivated fatwa %d", id)

	s.remove(ctx, id)
	return nil
}

// Get retrieves a fatwa by id.
func (s *FatwaService) Get(ctx context.Context, id int64) (*domain.Fatwa, error) {
	return s.fatwas.Get(ctx, id)
}

// List returns active fatwas newest first, optionally within one category title.
func (s *FatwaService) List(
	ctx context.Context, category string, page domain.PageRequest,
) (*domain.PaginatedResult, error) {
	if err := page.Validate(); err != nil {
		return nil, err
	}

	filter := driven.FatwaFilter{Category: strings.TrimSpace(category), ActiveOnly: true}
	total, err := s.fatwas.Count(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("count fatwas: %w", err)
	}

	filter.Offset = page.Offset()
	filter.Limit = page.PageSize
	ids, err := s.fatwas.FindIDs(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list fatwas: %w", err)
	}
	fatwas, err := hydrate(ctx, s.fatwas, ids)
	if err != nil {
		return nil, fmt.Errorf("hydrate fatwas: %w", err)
	}

	return &domain.PaginatedResult{
		Page:         page.Page,
		PageSize:     page.PageSize,
		TotalResults: total,
		Tier:         domain.TierAll,
		Items:        resultItems(fatwas, domain.LanguagePrimary, domain.TierAll),
	}, nil
}

// IndexPending indexes every active fatwa the oracle has not seen yet and
// returns how many were indexed. It stops at the first oracle failure.
func (s *FatwaService) IndexPending(ctx context.Context) (int, error) {
	if s.indexer == nil {
		return 0, domain.ErrOracleUnavailable
	}

	ids, err := s.fatwas.FindIDs(ctx, driven.FatwaFilter{ActiveOnly: true, PendingIndex: true})
	if err != nil {
		return 0, fmt.Errorf("find pending fatwas: %w", err)
	}

	indexed := 0
	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return indexed, err
		}
		f, err := s.fatwas.Get(ctx, id)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				continue
			}
			return indexed, fmt.Errorf("get fatwa %d: %w", id, err)
		}
		if err := s.indexOne(ctx, f); err != nil {
			return indexed, err
		}
		indexed++
	}
	return indexed, nil
}

// translate fills missing secondary fields from the primary text.
func (s *FatwaService) translate(ctx context.Context, f *domain.Fatwa) {
	if s.translator == nil {
		logger.Warn("Translation requested for fatwa %d but no translator is configured", f.ID)
		return
	}

	fields := []struct {
		name    string
		primary string
		target  **string
	}{
		{"title", f.TitlePrimary, &f.TitleSecondary},
		{"question", f.QuestionPrimary, &f.QuestionSecondary},
		{"answer", f.AnswerPrimary, &f.AnswerSecondary},
	}
	for _, field := range fields {
		if *field.target != nil && strings.TrimSpace(**field.target) != "" {
			continue
		}
		text, err := s.translator.Translate(ctx, field.primary, domain.LanguagePrimary, domain.LanguageSecondary)
		if err != nil {
			logger.Warn("Translating %s of fatwa %d: %v", field.name, f.ID, err)
			continue
		}
		*field.target = &text
	}
	logger.Debug("Translated fatwa %d with %s", f.ID, s.translator.ModelName())
}

// attach adds the fatwa to the membership list of its category node.
func (s *FatwaService) attach(ctx context.Context, f *domain.Fatwa) {
	if f.Category == "" {
		return
	}
	c, err := s.categories.FindByTitle(ctx, f.Category)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			logger.Debug("Fatwa %d: no active category titled %q", f.ID, f.Category)
		} else {
			logger.Warn("Looking up category %q: %v", f.Category, err)
		}
		return
	}
	if err := s.categories.AttachFatwa(ctx, c.ID, f.ID); err != nil {
		logger.Warn("Attaching fatwa %d to category %d: %v", f.ID, c.ID, err)
	}
}

func (s *FatwaService) index(ctx context.Context, f *domain.Fatwa) {
	if s.indexer == nil {
		return
	}
	if err := s.indexOne(ctx, f); err != nil {
		logger.Warn("Indexing fatwa %d: %v", f.ID, err)
	}
}

func (s *FatwaService) indexOne(ctx context.Context, f *domain.Fatwa) error {
	ictx, cancel := context.WithTimeout(ctx, s.indexTimeout)
	defer cancel()
	if err := s.indexer.Index(ictx, *f); err != nil {
		return fmt.Errorf("index fatwa %d: %w", f.ID, err)
	}
	if err := s.fatwas.SetEmbedded(ctx, f.ID, true); err != nil {
		return fmt.Errorf("mark fatwa %d embedded: %w", f.ID, err)
	}
	f.IsEmbedded = true
	return nil
}

func (s *FatwaService) remove(ctx context.Context, id int64) {
	if s.indexer == nil {
		return
	}
	rctx, cancel := context.WithTimeout(ctx, s.indexTimeout)
	defer cancel()
	if err := s.indexer.Remove(rctx, id); err != nil {
		logger.Warn("Removing fatwa %d from oracle: %v", id, err)
	}
}
