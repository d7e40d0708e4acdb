package mcp

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/mufti/internal/core/domain"
)

// SearchInput is the input schema for the search tool.
type SearchInput struct {
	Query      string `json:"query" jsonschema:"free-text query in Arabic or English; empty lists every fatwa"`
	Lang       string `json:"lang,omitempty" jsonschema:"display language: ar (default) or en"`
	CategoryID int64  `json:"category_id,omitempty" jsonschema:"restrict results to this category and its descendants"`
	Page       int    `json:"page,omitempty" jsonschema:"1-based page number (default 1)"`
	PageSize   int    `json:"page_size,omitempty" jsonschema:"results per page (default 10, max 100)"`
}

// SearchOutput is the output schema for the search tool.
type SearchOutput struct {
	Tier         string        `json:"tier"`
	Page         int           `json:"page"`
	PageSize     int           `json:"page_size"`
	TotalResults int           `json:"total_results"`
	Results      []FatwaResult `json:"results"`
}

// FatwaResult is a single fatwa projected into the requested language.
type FatwaResult struct {
	ID       int64    `json:"id"`
	Language string   `json:"language"`
	Title    string   `json:"title"`
	Question string   `json:"question"`
	Answer   string   `json:"answer"`
	Category string   `json:"category"`
	Tags     []string `json:"tags,omitempty"`
	Score    float64  `json:"score"`
}

// ListByCategoryInput is the input schema for the list_by_category tool.
type ListByCategoryInput struct {
	CategoryID int64  `json:"category_id" jsonschema:"the category whose subtree to list"`
	Lang       string `json:"lang,omitempty" jsonschema:"display language: ar (default) or en"`
	Page       int    `json:"page,omitempty" jsonschema:"1-based page number (default 1)"`
	PageSize   int    `json:"page_size,omitempty" jsonschema:"results per page (default 10, max 100)"`
}

// ListByCategoryOutput is the output schema for the list_by_category tool.
type ListByCategoryOutput struct {
	CategoryID      int64  `json:"category_id"`
	CategoryTitle   string `json:"category_title"`
	DescendantCount int    `json:"descendant_count"`
	SearchOutput
}

// DescendantsInput is the input schema for the category_descendants tool.
type DescendantsInput struct {
	CategoryID int64 `json:"category_id" jsonschema:"the category to expand"`
}

// DescendantsOutput is the output schema for the category_descendants tool.
type DescendantsOutput struct {
	CategoryID  int64   `json:"category_id"`
	Descendants []int64 `json:"descendants"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "search",
		Description: "Search fatwas by free text, falling back from semantic to keyword to substring matching",
	}, s.handleSearch)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "list_by_category",
		Description: "List active fatwas in a category and all of its subcategories, newest first",
	}, s.handleListByCategory)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "category_descendants",
		Description: "List the ids of every category below the given category",
	}, s.handleDescendants)
}

// handleSearch handles the search tool invocation.
func (s *Server) handleSearch(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input SearchInput,
) (*mcp.CallToolResult, SearchOutput, error) {
	lang, err := domain.ParseLanguage(input.Lang)
	if err != nil {
		return nil, SearchOutput{}, err
	}

	opts := domain.SearchOptions{
		Language: lang,
		Page:     defaultInt(input.Page, 1),
		PageSize: defaultInt(input.PageSize, domain.DefaultPageSize),
	}
	if input.CategoryID > 0 {
		id := input.CategoryID
		opts.CategoryID = &id
	}

	result, err := s.ports.Search.Search(ctx, input.Query, opts)
	if err != nil {
		return nil, SearchOutput{}, err
	}

	return nil, toSearchOutput(result), nil
}

// handleListByCategory handles the list_by_category tool invocation.
func (s *Server) handleListByCategory(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input ListByCategoryInput,
) (*mcp.CallToolResult, ListByCategoryOutput, error) {
	lang, err := domain.ParseLanguage(input.Lang)
	if err != nil {
		return nil, ListByCategoryOutput{}, err
	}

	page := domain.PageRequest{
		Page:     defaultInt(input.Page, 1),
		PageSize: defaultInt(input.PageSize, domain.DefaultPageSize),
	}
	listing, err := s.ports.Categories.ListByCategory(ctx, input.CategoryID, page)
	if err != nil {
		return nil, ListByCategoryOutput{}, fmt.Errorf("listing category %d: %w", input.CategoryID, err)
	}

	// Category listings carry primary text; re-project for the requested language.
	for i := range listing.Items {
		listing.Items[i].Text = listing.Items[i].Fatwa.Localize(lang)
	}

	return nil, ListByCategoryOutput{
		CategoryID:      listing.Category.ID,
		CategoryTitle:   listing.Category.Title,
		DescendantCount: listing.Category.DescendantCount,
		SearchOutput:    toSearchOutput(&listing.PaginatedResult),
	}, nil
}

// handleDescendants handles the category_descendants tool invocation.
func (s *Server) handleDescendants(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input DescendantsInput,
) (*mcp.CallToolResult, DescendantsOutput, error) {
	ids, err := s.ports.Categories.Descendants(ctx, input.CategoryID)
	if err != nil {
		return nil, DescendantsOutput{}, err
	}
	if ids == nil {
		ids = []int64{}
	}
	return nil, DescendantsOutput{CategoryID: input.CategoryID, Descendants: ids}, nil
}

func toSearchOutput(result *domain.PaginatedResult) SearchOutput {
	output := SearchOutput{
		Tier:         result.Tier.String(),
		Page:         result.Page,
		PageSize:     result.PageSize,
		TotalResults: result.TotalResults,
		Results:      make([]FatwaResult, len(result.Items)),
	}

	for i := range result.Items {
		item := &result.Items[i]
		output.Results[i] = FatwaResult{
			ID:       item.Fatwa.ID,
			Language: item.Text.Language.String(),
			Title:    item.Text.Title,
			Question: item.Text.Question,
			Answer:   item.Text.Answer,
			Category: item.Fatwa.Category,
			Tags:     item.Fatwa.Tags,
			Score:    item.RelevanceScore,
		}
	}

	return output
}

func defaultInt(v, fallback int) int {
	if v <= 0 {
		return fallback
	}
	return v
}
