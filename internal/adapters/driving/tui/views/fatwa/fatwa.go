// Package fatwa provides the single-fatwa reading view for the TUI.
package fatwa

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/mufti/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/mufti/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/mufti/internal/core/domain"
)

// chrome is the number of rows used by the header and footer.
const chrome = 6

// View shows one fatwa's question and answer in a scrollable pane.
type View struct {
	styles   *styles.Styles
	viewport viewport.Model

	fatwa    *domain.Fatwa
	language domain.Language
	width    int
	height   int
	ready    bool
}

// NewView creates a new fatwa view.
func NewView(s *styles.Styles) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	return &View{
		styles:   s,
		viewport: viewport.New(80, 24-chrome),
		language: domain.LanguagePrimary,
		width:    80,
		height:   24,
	}
}

// Init initialises the view.
func (v *View) Init() tea.Cmd {
	return nil
}

// SetFatwa shows f in lang from the top.
func (v *View) SetFatwa(f domain.Fatwa, lang domain.Language) {
	v.fatwa = &f
	v.language = lang
	v.render()
	v.viewport.GotoTop()
}

// Update handles scrolling, the language toggle and navigation back.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "esc", "backspace":
			return v, func() tea.Msg {
				return messages.ViewChanged{View: messages.ViewSearch}
			}
		case "tab":
			v.toggleLanguage()
			return v, nil
		case "g", "home":
			v.viewport.GotoTop()
			return v, nil
		case "G", "end":
			v.viewport.GotoBottom()
			return v, nil
		}
	}

	var cmd tea.Cmd
	v.viewport, cmd = v.viewport.Update(msg)
	return v, cmd
}

func (v *View) toggleLanguage() {
	if v.language == domain.LanguageSecondary {
		v.language = domain.LanguagePrimary
	} else {
		v.language = domain.LanguageSecondary
	}
	v.render()
}

// render rebuilds the viewport content for the current fatwa and language.
func (v *View) render() {
	if v.fatwa == nil {
		v.viewport.SetContent(v.styles.Muted.Render("(No fatwa selected)"))
		return
	}

	text := v.fatwa.Localize(v.language)
	wrap := lipgloss.NewStyle().Width(max(v.width-4, 20))

	var b strings.Builder
	b.WriteString(v.styles.Muted.Render(fmt.Sprintf("#%d  ", v.fatwa.ID)))
	b.WriteString(v.styles.Subtitle.Render(orDash(v.fatwa.Category)))
	if len(v.fatwa.Tags) > 0 {
		b.WriteString(v.styles.Muted.Render("  " + strings.Join(v.fatwa.Tags, ", ")))
	}
	b.WriteString("\n")
	if v.language == domain.LanguageSecondary && !v.fatwa.HasTranslation() {
		b.WriteString(v.styles.Warning.Render("Translation incomplete; showing original text where missing."))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(v.styles.Section.Render(heading(v.language, "question")))
	b.WriteString("\n")
	b.WriteString(wrap.Render(text.Question))
	b.WriteString("\n\n")
	b.WriteString(v.styles.Section.Render(heading(v.language, "answer")))
	b.WriteString("\n")
	b.WriteString(wrap.Render(text.Answer))

	v.viewport.SetContent(b.String())
}

var headings = map[domain.Language]map[string]string{
	domain.LanguagePrimary:   {"question": "السؤال", "answer": "الجواب"},
	domain.LanguageSecondary: {"question": "Question", "answer": "Answer"},
}

func heading(lang domain.Language, section string) string {
	return headings[lang][section]
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

// View renders the fatwa view.
func (v *View) View() string {
	if !v.ready {
		return "Initialising..."
	}

	title := "Fatwa"
	if v.fatwa != nil {
		title = v.fatwa.Localize(v.language).Title
	}

	var b strings.Builder
	b.WriteString(v.styles.Badge.Render(strings.ToUpper(v.language.String())))
	b.WriteString(" ")
	b.WriteString(v.styles.Title.Render(title))
	b.WriteString("\n")
	b.WriteString(v.styles.Muted.Render(strings.Repeat("─", min(max(v.width-4, 1), 60))))
	b.WriteString("\n")
	b.WriteString(v.viewport.View())
	b.WriteString("\n\n")
	b.WriteString(v.styles.Help.Render(fmt.Sprintf(
		"[↑/↓/PgUp/PgDn] scroll  [g/G] top/bottom  [tab] ar/en  [esc] back  %3.0f%%",
		v.viewport.ScrollPercent()*100,
	)))
	return b.String()
}

// SetDimensions sets the view dimensions and rewraps the content.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true
	v.viewport.Width = width
	v.viewport.Height = max(height-chrome, 1)
	v.render()
}

// Fatwa returns the displayed fatwa.
func (v *View) Fatwa() *domain.Fatwa {
	return v.fatwa
}

// Language returns the display language.
func (v *View) Language() domain.Language {
	return v.language
}
