package domain

// SearchTier identifies the retrieval strategy that produced a candidate list.
type SearchTier string

// Retrieval tiers, in cascade order.
const (
	// TierOracle is the external semantic ranking service.
	TierOracle SearchTier = "oracle"

	// TierText is the store-native text index.
	TierText SearchTier = "text"

	// TierPattern is case-insensitive substring matching.
	TierPattern SearchTier = "pattern"

	// TierAll lists every active fatwa (empty query).
	TierAll SearchTier = "all"

	// TierNone means every tier failed and the result is empty.
	TierNone SearchTier = "none"
)

// Score returns the coarse relevance assigned to results of the tier.
func (t SearchTier) Score() float64 {
	switch t {
	case TierOracle, TierAll:
		return 1.0
	case TierText, TierPattern:
		return 0.5
	default:
		return 0
	}
}

// String returns the string representation.
func (t SearchTier) String() string {
	return string(t)
}

// SearchOptions configures a search query.
type SearchOptions struct {
	// Language selects the display fields; both languages are always searched.
	Language Language

	// CategoryID restricts results to a category and its descendants.
	CategoryID *int64

	// Page is one-based.
	Page int

	// PageSize is the number of items per page.
	PageSize int
}

// PageRequest returns the paging part of the options.
func (o SearchOptions) PageRequest() PageRequest {
	return PageRequest{Page: o.Page, PageSize: o.PageSize}
}

// SearchResultItem is one hydrated fatwa on a result page.
type SearchResultItem struct {
	Fatwa          Fatwa         `json:"fatwa"`
	Text           LocalizedText `json:"text"`
	RelevanceScore float64       `json:"relevanceScore"`
}

// PaginatedResult is one page of ranked results.
//
// TotalResults counts candidates before pagination, so a page may hold fewer
// items than PageSize when some candidates no longer hydrate.
type PaginatedResult struct {
	Page         int                `json:"page"`
	PageSize     int                `json:"pageSize"`
	TotalResults int                `json:"totalResults"`
	Tier         SearchTier         `json:"tier"`
	Items        []SearchResultItem `json:"items"`
}

// EmptyResult returns a page with no items.
func EmptyResult(page PageRequest) *PaginatedResult {
	return &PaginatedResult{
		Page:     page.Page,
		PageSize: page.PageSize,
		Tier:     TierNone,
		Items:    []SearchResultItem{},
	}
}

// CategoryListing is a page of fatwas under a category subtree.
type CategoryListing struct {
	PaginatedResult
	Category CategoryInfo `json:"category"`
}
