package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLanguage(t *testing.T) {
	tests := []struct {
		input    string
		expected Language
	}{
		{"", LanguagePrimary},
		{"ar", LanguagePrimary},
		{"AR", LanguagePrimary},
		{"primary", LanguagePrimary},
		{"en", LanguageSecondary},
		{" secondary ", LanguageSecondary},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			lang, err := ParseLanguage(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, lang)
		})
	}
}

func TestParseLanguage_Unknown(t *testing.T) {
	_, err := ParseLanguage("fr")
	assert.True(t, errors.Is(err, ErrInvalidInput))
}

func TestLanguage_Other(t *testing.T) {
	assert.Equal(t, LanguageSecondary, LanguagePrimary.Other())
	assert.Equal(t, LanguagePrimary, LanguageSecondary.Other())
}

func TestLanguage_IsValid(t *testing.T) {
	assert.True(t, LanguagePrimary.IsValid())
	assert.True(t, LanguageSecondary.IsValid())
	assert.False(t, Language("fr").IsValid())
}
