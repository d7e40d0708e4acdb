package driven

import (
	"context"

	"github.com/custodia-labs/mufti/internal/core/domain"
)

// Translator translates fatwa text between the primary and secondary language.
// This is an optional service - when nil, secondary fields are left as given.
type Translator interface {
	// Translate returns text rendered in the target language.
	Translate(ctx context.Context, text string, from, to domain.Language) (string, error)

	// ModelName returns the model used for translation.
	ModelName() string
}
