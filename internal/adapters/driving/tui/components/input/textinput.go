// Package input provides text input components for the TUI.
package input

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/mufti/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/mufti/internal/core/domain"
)

const (
	maxQueryLen   = 256
	minInputWidth = 20
)

var placeholders = map[domain.Language]string{
	domain.LanguagePrimary:   "ابحث عن فتوى...",
	domain.LanguageSecondary: "Search fatwas...",
}

// SearchInput wraps a bubbles textinput with a language badge.
type SearchInput struct {
	textinput textinput.Model
	styles    *styles.Styles
	language  domain.Language
	width     int
}

// NewSearchInput creates a focused search input in the primary language.
func NewSearchInput(s *styles.Styles) *SearchInput {
	if s == nil {
		s = styles.DefaultStyles()
	}

	ti := textinput.New()
	ti.CharLimit = maxQueryLen
	ti.Width = 50
	ti.Focus()

	in := &SearchInput{
		textinput: ti,
		styles:    s,
		width:     50,
	}
	in.SetLanguage(domain.LanguagePrimary)
	return in
}

// Init starts the cursor blink.
func (s *SearchInput) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles input messages.
func (s *SearchInput) Update(msg tea.Msg) (*SearchInput, tea.Cmd) {
	var cmd tea.Cmd
	s.textinput, cmd = s.textinput.Update(msg)
	return s, cmd
}

// View renders the badge followed by the bordered input.
func (s *SearchInput) View() string {
	badge := s.styles.Badge.Render(strings.ToUpper(s.language.String()))
	field := s.styles.InputField.Render(s.textinput.View())
	//nolint:misspell // lipgloss.Center is the correct constant from the library
	return lipgloss.JoinHorizontal(lipgloss.Center, badge, " ", field)
}

// Value returns the query with surrounding whitespace removed.
func (s *SearchInput) Value() string {
	return strings.TrimSpace(s.textinput.Value())
}

// SetValue sets the input value.
func (s *SearchInput) SetValue(value string) {
	s.textinput.SetValue(value)
}

// Language returns the display language.
func (s *SearchInput) Language() domain.Language {
	return s.language
}

// SetLanguage switches the display language and placeholder.
func (s *SearchInput) SetLanguage(lang domain.Language) {
	s.language = lang
	s.textinput.Placeholder = placeholders[lang]
}

// ToggleLanguage flips between the primary and secondary language.
func (s *SearchInput) ToggleLanguage() domain.Language {
	if s.language == domain.LanguageSecondary {
		s.SetLanguage(domain.LanguagePrimary)
	} else {
		s.SetLanguage(domain.LanguageSecondary)
	}
	return s.language
}

// Focus sets focus on the input.
func (s *SearchInput) Focus() tea.Cmd {
	return s.textinput.Focus()
}

// Blur removes focus from the input.
func (s *SearchInput) Blur() {
	s.textinput.Blur()
}

// Focused returns whether the input is focused.
func (s *SearchInput) Focused() bool {
	return s.textinput.Focused()
}

// SetWidth sets the width of the input.
func (s *SearchInput) SetWidth(width int) {
	s.width = width
	// Account for badge, border and padding
	s.textinput.Width = max(width-12, minInputWidth)
}

// Width returns the current width.
func (s *SearchInput) Width() int {
	return s.width
}

// Reset clears the input.
func (s *SearchInput) Reset() {
	s.textinput.Reset()
}
