package domain

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func strPtr(s string) *string { return &s }

func validFatwa() Fatwa {
	now := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	return Fatwa{
		ID:              42,
		TitlePrimary:    "حكم الزكاة",
		QuestionPrimary: "ما حكم زكاة المال؟",
		AnswerPrimary:   "الزكاة واجبة",
		Category:        "العبادات",
		CreatedAt:       now,
		UpdatedAt:       now,
		IsActive:        true,
	}
}

func TestFatwa_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(f *Fatwa)
		valid  bool
	}{
		{"valid", func(_ *Fatwa) {}, true},
		{"zero id", func(f *Fatwa) { f.ID = 0 }, false},
		{"negative id", func(f *Fatwa) { f.ID = -3 }, false},
		{"blank title", func(f *Fatwa) { f.TitlePrimary = "  " }, false},
		{"blank question", func(f *Fatwa) { f.QuestionPrimary = "" }, false},
		{"blank answer", func(f *Fatwa) { f.AnswerPrimary = "\n" }, false},
		{"updated before created", func(f *Fatwa) { f.UpdatedAt = f.CreatedAt.Add(-time.Minute) }, false},
		{"missing secondary is fine", func(f *Fatwa) { f.TitleSecondary = nil }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := validFatwa()
			tt.mutate(&f)
			err := f.Validate()
			if tt.valid {
				assert.NoError(t, err)
			} else {
				assert.True(t, errors.Is(err, ErrInvalidInput))
			}
		})
	}
}

func TestFatwa_Localize_Primary(t *testing.T) {
	f := validFatwa()
	f.TitleSecondary = strPtr("Ruling on zakat")

	text := f.Localize(LanguagePrimary)

	assert.Equal(t, LanguagePrimary, text.Language)
	assert.Equal(t, "حكم الزكاة", text.Title)
	assert.Equal(t, "ما حكم زكاة المال؟", text.Question)
}

func TestFatwa_Localize_SecondaryFallsBackPerField(t *testing.T) {
	f := validFatwa()
	f.TitleSecondary = strPtr("Ruling on zakat")
	f.AnswerSecondary = strPtr("   ")

	text := f.Localize(LanguageSecondary)

	assert.Equal(t, LanguageSecondary, text.Language)
	assert.Equal(t, "Ruling on zakat", text.Title)
	assert.Equal(t, f.QuestionPrimary, text.Question)
	assert.Equal(t, f.AnswerPrimary, text.Answer)
}

func TestFatwa_HasTranslation(t *testing.T) {
	f := validFatwa()
	assert.False(t, f.HasTranslation())

	f.TitleSecondary = strPtr("t")
	f.QuestionSecondary = strPtr("q")
	assert.False(t, f.HasTranslation())

	f.AnswerSecondary = strPtr("a")
	assert.True(t, f.HasTranslation())
}

func TestFatwa_NormalizeTags(t *testing.T) {
	f := validFatwa()
	f.Tags = []string{" zakat", "money", "zakat", "", "charity "}

	f.NormalizeTags()

	assert.Equal(t, []string{"charity", "money", "zakat"}, f.Tags)
}

func TestFatwa_NormalizeTags_AllEmpty(t *testing.T) {
	f := validFatwa()
	f.Tags = []string{" ", ""}

	f.NormalizeTags()

	assert.Nil(t, f.Tags)
}

func TestFatwa_SearchableText(t *testing.T) {
	f := validFatwa()
	assert.Len(t, f.SearchableText(), 3)

	f.AnswerSecondary = strPtr("Zakat is obligatory")
	fields := f.SearchableText()
	assert.Len(t, fields, 4)
	assert.Contains(t, fields, "Zakat is obligatory")
}
