package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/mufti/internal/core/domain"
)

const (
	// uriScheme is the custom URI scheme for Mufti resources.
	uriScheme = "mufti://"

	mimeJSON = "application/json"
)

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	// Static resource for the whole category tree.
	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "categories",
		Name:        "categories",
		Description: "The active category tree",
		MIMEType:    mimeJSON,
	}, s.handleCategoriesResource)

	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: uriScheme + "categories/{categoryId}",
		Name:        "category",
		Description: "A single category with the ids of its descendants",
		MIMEType:    mimeJSON,
	}, s.handleCategoryResource)

	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: uriScheme + "fatwas/{fatwaId}",
		Name:        "fatwa",
		Description: "A single fatwa with both language versions",
		MIMEType:    mimeJSON,
	}, s.handleFatwaResource)
}

// handleCategoriesResource returns the category tree.
func (s *Server) handleCategoriesResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	tree, err := s.ports.Categories.Tree(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading category tree: %w", err)
	}
	if tree == nil {
		tree = []domain.CategoryNode{}
	}
	return jsonResource(req.Params.URI, tree)
}

// handleCategoryResource returns one category and its descendant ids.
func (s *Server) handleCategoryResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	id, ok := extractID(req.Params.URI, "categories/")
	if !ok {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	category, err := s.ports.Categories.Get(ctx, id)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}
	if err != nil {
		return nil, fmt.Errorf("getting category: %w", err)
	}

	descendants, err := s.ports.Categories.Descendants(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("resolving descendants: %w", err)
	}

	type categoryInfo struct {
		*domain.Category
		Descendants []int64 `json:"descendants"`
	}
	if descendants == nil {
		descendants = []int64{}
	}
	return jsonResource(req.Params.URI, categoryInfo{Category: category, Descendants: descendants})
}

// handleFatwaResource returns a single fatwa.
func (s *Server) handleFatwaResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	if s.ports.Fatwas == nil {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	id, ok := extractID(req.Params.URI, "fatwas/")
	if !ok {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	fatwa, err := s.ports.Fatwas.Get(ctx, id)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}
	if err != nil {
		return nil, fmt.Errorf("getting fatwa: %w", err)
	}

	return jsonResource(req.Params.URI, fatwa)
}

func jsonResource(uri string, v any) (*mcp.ReadResourceResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling %s: %w", uri, err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      uri,
			MIMEType: mimeJSON,
			Text:     string(data),
		}},
	}, nil
}

// extractID parses the positive numeric id from a URI like mufti://fatwas/{id}.
func extractID(uri, collection string) (int64, bool) {
	prefix := uriScheme + collection
	if !strings.HasPrefix(uri, prefix) {
		return 0, false
	}

	id, err := strconv.ParseInt(strings.TrimPrefix(uri, prefix), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
