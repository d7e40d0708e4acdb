package domain

import (
	"fmt"
	"strings"
)

// Language selects which field set of a fatwa is used for display.
// Searching always covers both languages.
type Language string

const (
	// LanguagePrimary is the source language of every fatwa (Arabic).
	LanguagePrimary Language = "ar"

	// LanguageSecondary is the translated language (English).
	LanguageSecondary Language = "en"
)

// ParseLanguage accepts a language code or its role name.
// An empty string selects the primary language.
func ParseLanguage(s string) (Language, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "ar", "primary":
		return LanguagePrimary, nil
	case "en", "secondary":
		return LanguageSecondary, nil
	default:
		return "", fmt.Errorf("%w: unknown language %q", ErrInvalidInput, s)
	}
}

// IsValid returns true if the language is recognised.
func (l Language) IsValid() bool {
	return l == LanguagePrimary || l == LanguageSecondary
}

// Other returns the opposite language.
func (l Language) Other() Language {
	if l == LanguageSecondary {
		return LanguagePrimary
	}
	return LanguageSecondary
}

// String returns the string representation.
func (l Language) String() string {
	return string(l)
}
