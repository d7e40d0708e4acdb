package memory

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"sync"

	"github.com/custodia-labs/mufti/internal/core/domain"
	"github.com/custodia-labs/mufti/internal/core/ports/driven"
)

// Ensure FatwaStore implements the interface.
var _ driven.FatwaStore = (*FatwaStore)(nil)

// FatwaStore is an in-memory implementation of driven.FatwaStore.
//
// Text matching requires every query term to appear in some field; hits are
// ranked by total term occurrences. It stands in for a real text index in
// tests and in --storage memory mode.
type FatwaStore struct {
	mu          sync.RWMutex
	fatwas      map[int64]domain.Fatwa
	noTextIndex bool
}

// NewFatwaStore creates a new in-memory fatwa store.
func NewFatwaStore() *FatwaStore {
	return &FatwaStore{
		fatwas: make(map[int64]domain.Fatwa),
	}
}

// DisableTextIndex makes TextMatch fail as if the store had no text index.
func (s *FatwaStore) DisableTextIndex() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.noTextIndex = true
}

// Insert stores a new fatwa.
func (s *FatwaStore) Insert(_ context.Context, fatwa *domain.Fatwa) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.fatwas[fatwa.ID]; ok {
		return fmt.Errorf("fatwa %d: %w", fatwa.ID, domain.ErrAlreadyExists)
	}
	s.fatwas[fatwa.ID] = clone(fatwa)
	return nil
}

// Replace overwrites an existing fatwa.
func (s *FatwaStore) Replace(_ context.Context, fatwa *domain.Fatwa) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.fatwas[fatwa.ID]; !ok {
		return fmt.Errorf("fatwa %d: %w", fatwa.ID, domain.ErrNotFound)
	}
	s.fatwas[fatwa.ID] = clone(fatwa)
	return nil
}

// Get retrieves a fatwa by id.
func (s *FatwaStore) Get(_ context.Context, id int64) (*domain.Fatwa, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	f, ok := s.fatwas[id]
	if !ok {
		return nil, fmt.Errorf("fatwa %d: %w", id, domain.ErrNotFound)
	}
	out := clone(&f)
	return &out, nil
}

// Delete removes a fatwa.
func (s *FatwaStore) Delete(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.fatwas[id]; !ok {
		return fmt.Errorf("fatwa %d: %w", id, domain.ErrNotFound)
	}
	delete(s.fatwas, id)
	return nil
}

// Find returns fatwas matching the filter, newest first.
func (s *FatwaStore) Find(_ context.Context, filter driven.FatwaFilter) ([]domain.Fatwa, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	matched := page(s.filterLocked(filter), filter.Offset, filter.Limit)
	out := make([]domain.Fatwa, len(matched))
	for i := range matched {
		out[i] = clone(&matched[i])
	}
	return out, nil
}

// FindIDs returns matching ids, newest first.
func (s *FatwaStore) FindIDs(_ context.Context, filter driven.FatwaFilter) ([]int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return ids(page(s.filterLocked(filter), filter.Offset, filter.Limit)), nil
}

// Count returns the number of fatwas matching the filter.
func (s *FatwaStore) Count(_ context.Context, filter driven.FatwaFilter) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.filterLocked(filter)), nil
}

// TextMatch returns active fatwas containing every query term, best match first.
func (s *FatwaStore) TextMatch(_ context.Context, query string, limit int) ([]int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.noTextIndex {
		return nil, fmt.Errorf("memory store: %w", domain.ErrTextIndexUnavailable)
	}

	terms := strings.Fields(strings.ToLower(query))
	if len(terms) == 0 {
		return []int64{}, nil
	}

	type hit struct {
		fatwa domain.Fatwa
		score int
	}
	var hits []hit
	for _, f := range s.fatwas {
		if !f.IsActive {
			continue
		}
		text := strings.ToLower(strings.Join(f.SearchableText(), "\n"))
		score := 0
		for _, term := range terms {
			n := strings.Count(text, term)
			if n == 0 {
				score = 0
				break
			}
			score += n
		}
		if score > 0 {
			hits = append(hits, hit{fatwa: f, score: score})
		}
	}

	sort.Slice(hits, func(i, j int) bool {
		if hits[i].score != hits[j].score {
			return hits[i].score > hits[j].score
		}
		return newer(hits[i].fatwa, hits[j].fatwa)
	})

	result := make([]int64, 0, len(hits))
	for _, h := range hits {
		if limit > 0 && len(result) == limit {
			break
		}
		result = append(result, h.fatwa.ID)
	}
	return result, nil
}

// PatternMatch returns active fatwas with a case-insensitive substring match, newest first.
// A blank query matches nothing.
func (s *FatwaStore) PatternMatch(_ context.Context, query string, limit int) ([]int64, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []int64{}, nil
	}
	pattern, err := regexp.Compile("(?i)" + regexp.QuoteMeta(query))
	if err != nil {
		return nil, fmt.Errorf("compiling pattern: %w", err)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var matched []domain.Fatwa
	for _, f := range s.fatwas {
		if !f.IsActive {
			continue
		}
		for _, field := range f.SearchableText() {
			if pattern.MatchString(field) {
				matched = append(matched, f)
				break
			}
		}
	}
	sortNewestFirst(matched)
	return ids(page(matched, 0, limit)), nil
}

// SetEmbedded records whether the oracle has indexed the fatwa.
func (s *FatwaStore) SetEmbedded(_ context.Context, id int64, embedded bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	f, ok := s.fatwas[id]
	if !ok {
		return fmt.Errorf("fatwa %d: %w", id, domain.ErrNotFound)
	}
	f.IsEmbedded = embedded
	s.fatwas[id] = f
	return nil
}

// filterLocked applies the filter and sorts newest first (caller must hold lock).
func (s *FatwaStore) filterLocked(filter driven.FatwaFilter) []domain.Fatwa {
	var wanted map[int64]bool
	if filter.IDs != nil {
		wanted = make(map[int64]bool, len(filter.IDs))
		for _, id := range filter.IDs {
			wanted[id] = true
		}
	}

	var matched []domain.Fatwa
	for id, f := range s.fatwas {
		if wanted != nil && !wanted[id] {
			continue
		}
		if filter.ActiveOnly && !f.IsActive {
			continue
		}
		if filter.Category != "" && f.Category != filter.Category {
			continue
		}
		if filter.PendingIndex && f.IsEmbedded {
			continue
		}
		matched = append(matched, f)
	}
	sortNewestFirst(matched)
	return matched
}

func sortNewestFirst(fatwas []domain.Fatwa) {
	sort.Slice(fatwas, func(i, j int) bool {
		return newer(fatwas[i], fatwas[j])
	})
}

func newer(a, b domain.Fatwa) bool {
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.After(b.CreatedAt)
	}
	return a.ID > b.ID
}

func page(fatwas []domain.Fatwa, offset, limit int) []domain.Fatwa {
	if offset >= len(fatwas) {
		return nil
	}
	if offset > 0 {
		fatwas = fatwas[offset:]
	}
	if limit > 0 && limit < len(fatwas) {
		fatwas = fatwas[:limit]
	}
	return fatwas
}

func ids(fatwas []domain.Fatwa) []int64 {
	out := make([]int64, len(fatwas))
	for i := range fatwas {
		out[i] = fatwas[i].ID
	}
	return out
}

func clone(f *domain.Fatwa) domain.Fatwa {
	out := *f
	if f.Tags != nil {
		out.Tags = append([]string(nil), f.Tags...)
	}
	return out
}
