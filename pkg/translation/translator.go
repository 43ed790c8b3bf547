package translation

import (
	"context"
	"strings"

	"github.com/smith3v/sentence-trainer/pkg/apperr"
)

// Translator translates a single sentence between two supported languages.
type Translator interface {
	Translate(ctx context.Context, text, source, target string) (string, error)
	Name() string
}

func cleanInput(text string) (string, error) {
	cleaned := strings.TrimSpace(text)
	if cleaned == "" {
		return "", apperr.Validation("sentence to translate must not be empty")
	}
	return cleaned, nil
}
