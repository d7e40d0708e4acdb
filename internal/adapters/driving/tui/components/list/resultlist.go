// Package list provides list display components for the TUI.
package list

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/mufti/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/mufti/internal/core/domain"
)

// linesPerItem is the rendered height of one result: title, category, preview.
const linesPerItem = 3

// ResultList displays one page of search results in a navigable list.
type ResultList struct {
	items    []domain.SearchResultItem
	offset   int
	selected int
	styles   *styles.Styles
	width    int
	height   int
}

// NewResultList creates a new result list component.
func NewResultList(s *styles.Styles) *ResultList {
	if s == nil {
		s = styles.DefaultStyles()
	}

	return &ResultList{
		styles: s,
		width:  80,
		height: 10,
	}
}

// Init initialises the result list.
func (r *ResultList) Init() tea.Cmd {
	return nil
}

// Update handles list navigation messages.
func (r *ResultList) Update(msg tea.Msg) (*ResultList, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "up", "k":
			r.MoveUp()
		case "down", "j":
			r.MoveDown()
		}
	}
	return r, nil
}

// View renders the visible window of results.
func (r *ResultList) View() string {
	if len(r.items) == 0 {
		return r.styles.Muted.Render("No results")
	}

	visible := max((r.height-2)/linesPerItem, 1)
	start := 0
	if r.selected >= visible {
		start = r.selected - visible + 1
	}
	end := min(start+visible, len(r.items))

	lines := make([]string, 0, end-start)
	for i := start; i < end; i++ {
		lines = append(lines, r.renderItem(i, &r.items[i]))
	}
	return strings.Join(lines, "\n")
}

// renderItem formats a single result: numbered title with score, category and question preview.
func (r *ResultList) renderItem(index int, item *domain.SearchResultItem) string {
	indicator := "  "
	if index == r.selected {
		indicator = "> "
	}

	title := item.Text.Title
	if title == "" {
		title = fmt.Sprintf("Fatwa %d", item.Fatwa.ID)
	}
	prefix := fmt.Sprintf("%s%d. ", indicator, r.offset+index+1)
	titleWidth := max(r.width-len(prefix)-8, 10)
	title = Truncate(title, titleWidth)
	score := fmt.Sprintf("%.2f", item.RelevanceScore)

	var titleLine string
	if index == r.selected {
		titleLine = r.styles.Selected.Render(prefix + title + "  " + score)
	} else {
		titleLine = r.styles.Normal.Render(prefix+title+"  ") + r.styles.Muted.Render(score)
	}

	category := item.Fatwa.Category
	if category == "" {
		category = "-"
	}
	categoryLine := r.styles.Subtitle.Render("     " + category)

	preview := strings.Join(strings.Fields(item.Text.Question), " ")
	previewLine := r.styles.Muted.Render("     " + Truncate(preview, max(r.width-8, 20)))

	return titleLine + "\n" + categoryLine + "\n" + previewLine
}

// SetResults replaces the list with a page of items. offset is the number of
// items on earlier pages and is only used for numbering.
func (r *ResultList) SetResults(items []domain.SearchResultItem, offset int) {
	r.items = items
	r.offset = max(offset, 0)
	r.selected = 0
}

// Results returns the current items.
func (r *ResultList) Results() []domain.SearchResultItem {
	return r.items
}

// Selected returns the index of the selected item.
func (r *ResultList) Selected() int {
	return r.selected
}

// SetSelected sets the selected index.
func (r *ResultList) SetSelected(index int) {
	if index >= 0 && index < len(r.items) {
		r.selected = index
	}
}

// SelectedResult returns the currently selected item, or nil if none.
func (r *ResultList) SelectedResult() *domain.SearchResultItem {
	if r.selected < 0 || r.selected >= len(r.items) {
		return nil
	}
	return &r.items[r.selected]
}

// MoveUp moves selection up.
func (r *ResultList) MoveUp() {
	if r.selected > 0 {
		r.selected--
	}
}

// MoveDown moves selection down.
func (r *ResultList) MoveDown() {
	if r.selected < len(r.items)-1 {
		r.selected++
	}
}

// SetDimensions sets the component dimensions.
func (r *ResultList) SetDimensions(width, height int) {
	r.width = width
	r.height = height
}

// Width returns the current width.
func (r *ResultList) Width() int {
	return r.width
}

// Height returns the current height.
func (r *ResultList) Height() int {
	return r.height
}

// Count returns the number of items.
func (r *ResultList) Count() int {
	return len(r.items)
}

// IsEmpty returns whether the list is empty.
func (r *ResultList) IsEmpty() bool {
	return len(r.items) == 0
}

// Truncate shortens s to at most n runes, marking the cut with "...".
func Truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	if n <= 3 {
		return string(runes[:n])
	}
	return string(runes[:n-3]) + "..."
}
