// Package categories provides the category tree browser for the TUI.
package categories

import (
	"context"
	"errors"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/mufti/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/mufti/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/mufti/internal/core/domain"
	"github.com/custodia-labs/mufti/internal/core/ports/driving"
)

// ErrNoCategoryService indicates that no category service was provided.
var ErrNoCategoryService = errors.New("category service is required")

// row is one visible line of the flattened tree.
type row struct {
	category domain.Category
	depth    int
	children int
}

// View lists the category tree as an indented, navigable list.
type View struct {
	styles          *styles.Styles
	categoryService driving.CategoryService
	ctx             context.Context

	rows     []row
	selected int
	loading  bool
	err      error
	width    int
	height   int
	ready    bool
}

// NewView creates a new category browser.
func NewView(s *styles.Styles, categoryService driving.CategoryService) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	return &View{
		styles:          s,
		categoryService: categoryService,
		ctx:             context.Background(),
		width:           80,
		height:          24,
	}
}

// WithContext sets the context for the view.
func (v *View) WithContext(ctx context.Context) *View {
	v.ctx = ctx
	return v
}

// Init loads the tree.
func (v *View) Init() tea.Cmd {
	v.loading = true
	v.err = nil
	return v.loadTree()
}

func (v *View) loadTree() tea.Cmd {
	svc := v.categoryService
	ctx := v.ctx
	return func() tea.Msg {
		if svc == nil {
			return messages.CategoriesLoaded{Err: ErrNoCategoryService}
		}
		nodes, err := svc.Tree(ctx)
		return messages.CategoriesLoaded{Nodes: nodes, Err: err}
	}
}

// Update handles messages for the category view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)

	case messages.CategoriesLoaded:
		v.loading = false
		v.err = msg.Err
		v.rows = flatten(nil, msg.Nodes, 0)
		if v.selected >= len(v.rows) {
			v.selected = 0
		}

	case messages.ErrorOccurred:
		v.err = msg.Err

	case tea.KeyMsg:
		return v.handleKeyMsg(msg)
	}
	return v, nil
}

func (v *View) handleKeyMsg(msg tea.KeyMsg) (*View, tea.Cmd) {
	switch msg.String() {
	case "up", "k":
		if v.selected > 0 {
			v.selected--
		}
	case "down", "j":
		if v.selected < len(v.rows)-1 {
			v.selected++
		}
	case "g", "home":
		v.selected = 0
	case "G", "end":
		v.selected = max(len(v.rows)-1, 0)
	case "r":
		return v, v.Init()
	case "enter":
		if c := v.SelectedCategory(); c != nil {
			selected := messages.CategorySelected{ID: c.ID, Title: c.Title}
			return v, func() tea.Msg { return selected }
		}
	case "esc":
		return v, func() tea.Msg {
			return messages.ViewChanged{View: messages.ViewMenu}
		}
	}
	return v, nil
}

// flatten walks the tree depth first, appending one row per node.
func flatten(dst []row, nodes []domain.CategoryNode, depth int) []row {
	for i := range nodes {
		dst = append(dst, row{
			category: nodes[i].Category,
			depth:    depth,
			children: len(nodes[i].Children),
		})
		dst = flatten(dst, nodes[i].Children, depth+1)
	}
	return dst
}

// View renders the category tree.
func (v *View) View() string {
	if !v.ready {
		return "Initialising..."
	}

	var b strings.Builder
	b.WriteString(v.styles.Title.Render("Categories"))
	b.WriteString("\n\n")

	switch {
	case v.loading:
		b.WriteString(v.styles.Muted.Render("Loading categories..."))
	case v.err != nil:
		b.WriteString(v.styles.Error.Render("Error: " + v.err.Error()))
	case len(v.rows) == 0:
		b.WriteString(v.styles.Muted.Render("No categories"))
	default:
		b.WriteString(v.renderRows())
		if c := v.SelectedCategory(); c != nil && c.Description != "" {
			b.WriteString("\n\n")
			b.WriteString(v.styles.Muted.Render(c.Description))
		}
	}

	b.WriteString("\n\n")
	b.WriteString(v.styles.Help.Render("[j/k] navigate  [enter] list fatwas  [r] reload  [esc] back"))
	return b.String()
}

func (v *View) renderRows() string {
	visible := max(v.height-8, 1)
	start := 0
	if v.selected >= visible {
		start = v.selected - visible + 1
	}
	end := min(start+visible, len(v.rows))

	lines := make([]string, 0, end-start)
	for i := start; i < end; i++ {
		r := v.rows[i]
		marker := "  "
		if r.children > 0 {
			marker = "▸ "
		}
		label := fmt.Sprintf("%s%s%s (%d)", strings.Repeat("  ", r.depth), marker, r.category.Title, len(r.category.FatwaIDs))
		if i == v.selected {
			lines = append(lines, v.styles.Selected.Render("> "+label))
		} else {
			lines = append(lines, v.styles.Normal.Render("  "+label))
		}
	}
	return strings.Join(lines, "\n")
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true
}

// SelectedCategory returns the highlighted category, or nil when the tree is empty.
func (v *View) SelectedCategory() *domain.Category {
	if v.selected < 0 || v.selected >= len(v.rows) {
		return nil
	}
	return &v.rows[v.selected].category
}

// Count returns the number of categories in the tree.
func (v *View) Count() int {
	return len(v.rows)
}

// Err returns the last load error.
func (v *View) Err() error {
	return v.err
}
