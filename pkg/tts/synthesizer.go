package tts

import (
	"context"
	"strings"

	"github.com/smith3v/sentence-trainer/pkg/apperr"
)

// Synthesizer turns one sentence into MP3 audio.
type Synthesizer interface {
	Synthesize(ctx context.Context, text, language string) ([]byte, error)
	VoiceLabel(language string) string
	Name() string
}

func cleanInput(text string) (string, error) {
	cleaned := strings.TrimSpace(text)
	if cleaned == "" {
		return "", apperr.Validation("text for audio generation must not be empty")
	}
	return cleaned, nil
}

// pickVoice returns the first non-empty voice for language across the maps.
func pickVoice(language string, sources ...map[string]string) string {
	for _, source := range sources {
		if voice := strings.TrimSpace(source[language]); voice != "" {
			return voice
		}
	}
	return ""
}
