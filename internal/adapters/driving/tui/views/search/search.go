// Package search provides the main search view for the TUI.
package search

import (
	"context"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/mufti/internal/adapters/driving/tui/components/input"
	"github.com/custodia-labs/mufti/internal/adapters/driving/tui/components/list"
	"github.com/custodia-labs/mufti/internal/adapters/driving/tui/components/status"
	"github.com/custodia-labs/mufti/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/mufti/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/mufti/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/mufti/internal/core/domain"
	"github.com/custodia-labs/mufti/internal/core/ports/driving"
)

// scope restricts searches to one category subtree.
type scope struct {
	id    int64
	title string
}

// View represents the search view with input, results list, and status bar.
type View struct {
	styles    *styles.Styles
	keymap    *keymap.KeyMap
	input     *input.SearchInput
	list      *list.ResultList
	statusbar *status.Bar

	searchService driving.SearchService
	ctx           context.Context

	scope    *scope
	query    string
	page     int
	pageSize int
	result   *domain.PaginatedResult
	searched bool

	width      int
	height     int
	ready      bool
	err        error
	focusInput bool // true = input mode (typing), false = results mode (navigating)
}

// NewView creates a new search view.
func NewView(s *styles.Styles, km *keymap.KeyMap, searchService driving.SearchService) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}

	return &View{
		styles:        s,
		keymap:        km,
		input:         input.NewSearchInput(s),
		list:          list.NewResultList(s),
		statusbar:     status.NewBar(s, km),
		searchService: searchService,
		ctx:           context.Background(),
		page:          1,
		pageSize:      domain.DefaultPageSize,
		width:         80,
		height:        24,
		focusInput:    true,
	}
}

// WithContext sets the context for the view.
func (v *View) WithContext(ctx context.Context) *View {
	v.ctx = ctx
	return v
}

// WithPageSize overrides the number of results per page.
func (v *View) WithPageSize(n int) *View {
	if n >= 1 && n <= domain.MaxPageSize {
		v.pageSize = n
	}
	return v
}

// Init initialises the view.
func (v *View) Init() tea.Cmd {
	return v.input.Init()
}

// Update handles messages for the search view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case tea.KeyMsg:
		return v.handleKeyMsg(msg)

	case messages.SearchCompleted:
		v.handleSearchCompleted(msg)
		return v, nil

	case messages.ErrorOccurred:
		v.err = msg.Err
		v.statusbar.SetState(status.StateError)
		v.statusbar.SetMessage(msg.Err.Error())
		return v, nil
	}

	var cmd tea.Cmd
	if v.focusInput {
		v.input, cmd = v.input.Update(msg)
	}
	return v, cmd
}

// handleKeyMsg processes keyboard input.
func (v *View) handleKeyMsg(msg tea.KeyMsg) (*View, tea.Cmd) {
	if key.Matches(msg, v.keymap.Back) {
		return v, func() tea.Msg {
			return messages.ViewChanged{View: messages.ViewMenu}
		}
	}

	// Language toggles in both modes and re-renders the current page.
	if key.Matches(msg, v.keymap.Language) {
		v.input.ToggleLanguage()
		if v.searched {
			return v, v.runSearch(v.query, v.page)
		}
		return v, nil
	}

	if v.focusInput {
		if msg.Type == tea.KeyEnter {
			v.focusInput = false
			v.input.Blur()
			return v, v.runSearch(v.input.Value(), 1)
		}
		var cmd tea.Cmd
		v.input, cmd = v.input.Update(msg)
		return v, cmd
	}

	switch {
	case key.Matches(msg, v.keymap.Open):
		if item := v.list.SelectedResult(); item != nil {
			selected := messages.FatwaSelected{Fatwa: item.Fatwa, Language: v.input.Language()}
			return v, func() tea.Msg { return selected }
		}
	case key.Matches(msg, v.keymap.Up):
		v.list.MoveUp()
	case key.Matches(msg, v.keymap.Down):
		v.list.MoveDown()
	case key.Matches(msg, v.keymap.NextPage):
		if v.HasNextPage() {
			return v, v.runSearch(v.query, v.page+1)
		}
	case key.Matches(msg, v.keymap.PrevPage):
		if v.page > 1 {
			return v, v.runSearch(v.query, v.page-1)
		}
	case key.Matches(msg, v.keymap.ClearScope):
		if v.scope != nil {
			v.scope = nil
			return v, v.runSearch(v.query, 1)
		}
	case key.Matches(msg, v.keymap.NewSearch):
		v.focusInput = true
		v.input.SetValue("")
		return v, v.input.Focus()
	}

	return v, nil
}

// runSearch marks the view busy and returns the command performing the search.
func (v *View) runSearch(query string, page int) tea.Cmd {
	v.statusbar.SetState(status.StateSearching)
	v.err = nil
	return v.performSearch(query, page)
}

// performSearch executes a search off the update loop. The options are
// captured up front so later key presses cannot change an in-flight request.
func (v *View) performSearch(query string, page int) tea.Cmd {
	svc := v.searchService
	ctx := v.ctx
	opts := domain.SearchOptions{
		Language: v.input.Language(),
		Page:     page,
		PageSize: v.pageSize,
	}
	if v.scope != nil {
		id := v.scope.id
		opts.CategoryID = &id
	}

	return func() tea.Msg {
		if svc == nil {
			return messages.ErrorOccurred{Err: ErrNoSearchService}
		}
		result, err := svc.Search(ctx, query, opts)
		return messages.SearchCompleted{Query: query, Result: result, Err: err}
	}
}

// handleSearchCompleted processes one page of results.
func (v *View) handleSearchCompleted(msg messages.SearchCompleted) {
	if msg.Err != nil {
		v.err = msg.Err
		v.statusbar.SetState(status.StateError)
		v.statusbar.SetMessage(msg.Err.Error())
		return
	}

	result := msg.Result
	if result == nil {
		result = domain.EmptyResult(domain.PageRequest{Page: 1, PageSize: v.pageSize})
	}

	v.err = nil
	v.searched = true
	v.query = msg.Query
	v.page = result.Page
	v.result = result
	v.list.SetResults(result.Items, (result.Page-1)*result.PageSize)
	v.statusbar.SetPage(result)
	v.statusbar.SetState(status.StateResults)

	v.focusInput = false
	v.input.Blur()
}

// SetCategory scopes the view to a category subtree and lists it.
func (v *View) SetCategory(id int64, title string) tea.Cmd {
	v.scope = &scope{id: id, title: title}
	v.focusInput = false
	v.input.Blur()
	v.input.SetValue("")
	return v.runSearch("", 1)
}

// View renders the search view.
func (v *View) View() string {
	if !v.ready {
		return "Initialising..."
	}

	sections := make([]string, 0, 10)
	sections = append(sections, v.styles.Title.Render("Mufti"), "", v.input.View())

	if v.scope != nil {
		sections = append(sections, v.styles.Muted.Render("Category: ")+
			v.styles.Subtitle.Render(v.scope.title)+
			v.styles.Muted.Render("  [x] all categories"))
	}
	sections = append(sections, "")

	if v.err != nil {
		sections = append(sections, v.styles.Error.Render("Error: "+v.err.Error()), "")
	}

	if v.searched {
		sections = append(sections, v.list.View())
	}

	sections = append(sections, "", v.statusbar.View())

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true

	v.input.SetWidth(width)
	v.list.SetDimensions(width, height-10) // header, input, scope, status
	v.statusbar.SetWidth(width)
}

// HasNextPage reports whether results exist beyond the current page.
func (v *View) HasNextPage() bool {
	return v.result != nil && v.page*v.result.PageSize < v.result.TotalResults
}

// Ready returns whether the view is ready to render.
func (v *View) Ready() bool {
	return v.ready
}

// Query returns the query of the displayed results.
func (v *View) Query() string {
	return v.query
}

// Page returns the current page number.
func (v *View) Page() int {
	return v.page
}

// Language returns the display language.
func (v *View) Language() domain.Language {
	return v.input.Language()
}

// CategoryID returns the scoped category, if any.
func (v *View) CategoryID() (int64, bool) {
	if v.scope == nil {
		return 0, false
	}
	return v.scope.id, true
}

// Result returns the displayed page.
func (v *View) Result() *domain.PaginatedResult {
	return v.result
}

// Results returns the items on the displayed page.
func (v *View) Results() []domain.SearchResultItem {
	return v.list.Results()
}

// SelectedIndex returns the index of the selected result.
func (v *View) SelectedIndex() int {
	return v.list.Selected()
}

// Err returns the current error, if any.
func (v *View) Err() error {
	return v.err
}

// InputFocused returns whether the input has focus.
func (v *View) InputFocused() bool {
	return v.focusInput
}

// Reset returns the view to an empty, unscoped input.
func (v *View) Reset() {
	v.focusInput = true
	v.input.Focus()
	v.input.SetValue("")
	v.list.SetResults(nil, 0)
	v.scope = nil
	v.query = ""
	v.page = 1
	v.result = nil
	v.searched = false
	v.err = nil
	v.statusbar.Clear()
}
