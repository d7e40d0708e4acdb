package domain

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// Fatwa is a single religious ruling with bilingual content.
// Primary fields hold the source-language text and are always present;
// secondary fields hold translations and may be nil independently.
type Fatwa struct {
	// ID is assigned externally and never changes.
	ID int64 `json:"id"`

	TitlePrimary    string `json:"titlePrimary"`
	QuestionPrimary string `json:"questionPrimary"`
	AnswerPrimary   string `json:"answerPrimary"`

	TitleSecondary    *string `json:"titleSecondary,omitempty"`
	QuestionSecondary *string `json:"questionSecondary,omitempty"`
	AnswerSecondary   *string `json:"answerSecondary,omitempty"`

	// Category is the title of the category node the fatwa belongs to.
	Category string `json:"category"`

	// Tags behave as a set; see NormalizeTags.
	Tags []string `json:"tags,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	// IsActive is the soft-delete flag. Inactive fatwas never appear in
	// search or category results.
	IsActive bool `json:"isActive"`

	// IsEmbedded is true once the ranking oracle has indexed the fatwa.
	IsEmbedded bool `json:"isEmbedded"`
}

// LocalizedText is the display projection of a fatwa in one language.
type LocalizedText struct {
	Language Language `json:"language"`
	Title    string   `json:"title"`
	Question string   `json:"question"`
	Answer   string   `json:"answer"`
}

// Validate checks the invariants every stored fatwa must satisfy.
func (f *Fatwa) Validate() error {
	if f.ID <= 0 {
		return fmt.Errorf("%w: fatwa id must be positive", ErrInvalidInput)
	}
	if strings.TrimSpace(f.TitlePrimary) == "" {
		return fmt.Errorf("%w: primary title is required", ErrInvalidInput)
	}
	if strings.TrimSpace(f.QuestionPrimary) == "" {
		return fmt.Errorf("%w: primary question is required", ErrInvalidInput)
	}
	if strings.TrimSpace(f.AnswerPrimary) == "" {
		return fmt.Errorf("%w: primary answer is required", ErrInvalidInput)
	}
	if !f.CreatedAt.IsZero() && f.UpdatedAt.Before(f.CreatedAt) {
		return fmt.Errorf("%w: updatedAt precedes createdAt", ErrInvalidInput)
	}
	return nil
}

// Localize returns the title, question and answer for lang.
// Missing secondary fields fall back to the primary text one by one.
func (f *Fatwa) Localize(lang Language) LocalizedText {
	text := LocalizedText{
		Language: LanguagePrimary,
		Title:    f.TitlePrimary,
		Question: f.QuestionPrimary,
		Answer:   f.AnswerPrimary,
	}
	if lang != LanguageSecondary {
		return text
	}

	text.Language = LanguageSecondary
	text.Title = pick(f.TitleSecondary, f.TitlePrimary)
	text.Question = pick(f.QuestionSecondary, f.QuestionPrimary)
	text.Answer = pick(f.AnswerSecondary, f.AnswerPrimary)
	return text
}

// HasTranslation returns true if every secondary field is present.
func (f *Fatwa) HasTranslation() bool {
	return present(f.TitleSecondary) && present(f.QuestionSecondary) && present(f.AnswerSecondary)
}

// NormalizeTags trims, deduplicates and sorts the tag set.
func (f *Fatwa) NormalizeTags() {
	if len(f.Tags) == 0 {
		f.Tags = nil
		return
	}
	seen := make(map[string]bool, len(f.Tags))
	tags := make([]string, 0, len(f.Tags))
	for _, tag := range f.Tags {
		tag = strings.TrimSpace(tag)
		if tag == "" || seen[tag] {
			continue
		}
		seen[tag] = true
		tags = append(tags, tag)
	}
	sort.Strings(tags)
	if len(tags) == 0 {
		tags = nil
	}
	f.Tags = tags
}

// SearchableText joins every text field in both languages.
// Used by oracle indexing and in-memory matching.
func (f *Fatwa) SearchableText() []string {
	fields := []string{f.TitlePrimary, f.QuestionPrimary, f.AnswerPrimary}
	for _, p := range []*string{f.TitleSecondary, f.QuestionSecondary, f.AnswerSecondary} {
		if p != nil {
			fields = append(fields, *p)
		}
	}
	return fields
}

func pick(secondary *string, primary string) string {
	if present(secondary) {
		return *secondary
	}
	return primary
}

func present(s *string) bool {
	return s != nil && strings.TrimSpace(*s) != ""
}
