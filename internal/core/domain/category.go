package domain

import (
	"fmt"
	"strings"
)

// Category is a node in the category tree. ParentID is nil for roots.
//
// FatwaIDs is the membership list of fatwas attached directly to this node.
// It is kept eventually consistent with Fatwa.Category and may contain ids
// that also appear under other nodes.
type Category struct {
	ID          int64   `json:"id"`
	Title       string  `json:"title"`
	ParentID    *int64  `json:"parentId,omitempty"`
	Description string  `json:"description,omitempty"`
	IsActive    bool    `json:"isActive"`
	FatwaIDs    []int64 `json:"fatwaIds,omitempty"`
}

// IsRoot returns true if the category has no parent.
func (c *Category) IsRoot() bool {
	return c.ParentID == nil
}

// Validate checks the fields a saved category must carry.
func (c *Category) Validate() error {
	if c.ID <= 0 {
		return fmt.Errorf("%w: category id must be positive", ErrInvalidInput)
	}
	if strings.TrimSpace(c.Title) == "" {
		return fmt.Errorf("%w: category title is required", ErrInvalidInput)
	}
	if c.ParentID != nil && *c.ParentID == c.ID {
		return fmt.Errorf("%w: category cannot be its own parent", ErrInvalidInput)
	}
	return nil
}

// HasFatwa reports whether id is in the membership list.
func (c *Category) HasFatwa(id int64) bool {
	for _, fid := range c.FatwaIDs {
		if fid == id {
			return true
		}
	}
	return false
}

// CategoryInfo summarises a category for listing responses.
type CategoryInfo struct {
	ID              int64  `json:"id"`
	Title           string `json:"title"`
	Description     string `json:"description,omitempty"`
	DescendantCount int    `json:"descendantCount"`
}

// CategoryNode is a category with its active children, used for tree views.
type CategoryNode struct {
	Category
	Children []CategoryNode `json:"children,omitempty"`
}
