package services

import (
	"context"

	"github.com/custodia-labs/mufti/internal/core/domain"
	"github.com/custodia-labs/mufti/internal/core/ports/driven"
)

// hydrate loads the active fatwas for ids and returns them in the order of ids.
// Ids that no longer resolve to an active fatwa are dropped.
func hydrate(ctx context.Context, store driven.FatwaStore, ids []int64) ([]domain.Fatwa, error) {
	if len(ids) == 0 {
		return []domain.Fatwa{}, nil
	}

	found, err := store.Find(ctx, driven.FatwaFilter{IDs: ids, ActiveOnly: true})
	if err != nil {
		return nil, err
	}

	byID := make(map[int64]domain.Fatwa, len(found))
	for i := range found {
		byID[found[i].ID] = found[i]
	}

	ordered := make([]domain.Fatwa, 0, len(ids))
	for _, id := range ids {
		if f, ok := byID[id]; ok {
			ordered = append(ordered, f)
		}
	}
	return ordered, nil
}

func resultItems(fatwas []domain.Fatwa, lang domain.Language, tier domain.SearchTier) []domain.SearchResultItem {
	items := make([]domain.SearchResultItem, len(fatwas))
	for i := range fatwas {
		items[i] = domain.SearchResultItem{
			Fatwa:          fatwas[i],
			Text:           fatwas[i].Localize(lang),
			RelevanceScore: tier.Score(),
		}
	}
	return items
}

// dedupe drops repeated ids, keeping the first occurrence.
func dedupe(ids []int64) []int64 {
	seen := make(map[int64]bool, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}

// intersect keeps the ids of candidates that are in scope, in candidate order.
func intersect(candidates, scope []int64) []int64 {
	members := make(map[int64]bool, len(scope))
	for _, id := range scope {
		members[id] = true
	}
	out := make([]int64, 0, len(candidates))
	for _, id := range candidates {
		if members[id] {
			out = append(out, id)
		}
	}
	return out
}
