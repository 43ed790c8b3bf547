package providers

import (
	"context"
	"fmt"
	"strings"

	"github.com/smith3v/sentence-trainer/pkg/apperr"
	"github.com/smith3v/sentence-trainer/pkg/db"
	"github.com/smith3v/sentence-trainer/pkg/languages"
	"github.com/smith3v/sentence-trainer/pkg/logger"
	"github.com/smith3v/sentence-trainer/pkg/tts"
)

// voicePrefixes restricts voice ids and locales offered per language.
var voicePrefixes = map[string]string{
	"en": "en-gb",
	"de": "de-de",
	"pl": "pl-",
}

func (r *Resolver) SetTranslationProvider(ctx context.Context, value string) error {
	kind, ok := ParseTranslationKind(value)
	if !ok {
		return apperr.Validation("unknown translation provider")
	}
	if err := db.SetSetting(r.db(ctx), db.SettingTranslationProvider, string(kind)); err != nil {
		return apperr.Processing("failed to save translation provider", err)
	}
	logger.Info("translation provider changed", "provider", kind)
	return nil
}

func (r *Resolver) SetTTSProvider(ctx context.Context, value string) error {
	kind, ok := ParseTTSKind(value)
	if !ok {
		return apperr.Validation("unknown tts provider")
	}
	if err := db.SetSetting(r.db(ctx), db.SettingTTSProvider, string(kind)); err != nil {
		return apperr.Processing("failed to save tts provider", err)
	}
	logger.Info("tts provider changed", "provider", kind)
	return nil
}

// SetVoice stores the voice override for provider and language. An empty
// voice removes the override.
func (r *Resolver) SetVoice(ctx context.Context, provider, language, voice string) error {
	kind, ok := ParseTTSKind(provider)
	if !ok || kind == TTSMock {
		return apperr.Validation("voices can only be set for azure or google")
	}
	language = languages.Normalize(language)
	if !languages.IsSupported(language) {
		return apperr.Validation("allowed languages are: pl, en, de")
	}
	voice = strings.TrimSpace(voice)
	if voice != "" && kind == TTSGoogle {
		prefix := voicePrefixes[language]
		if !strings.HasPrefix(strings.ToLower(voice), prefix) {
			return apperr.Validation(fmt.Sprintf("Google voice for %s must start with %s", languages.Name(language), prefix))
		}
	}
	if err := db.SetSetting(r.db(ctx), db.VoiceSettingKey(string(kind), language), voice); err != nil {
		return apperr.Processing("failed to save voice", err)
	}
	logger.Info("voice override changed", "provider", kind, "language", language, "voice", voice)
	return nil
}

// AzureVoicesByLanguage groups the cached Azure catalog per language,
// keeping only the locales offered in the admin (en-GB, de-DE, pl-PL).
func (r *Resolver) AzureVoicesByLanguage(ctx context.Context) (map[string][]tts.Voice, error) {
	voices, err := r.AzureVoices(ctx)
	if err != nil {
		return nil, err
	}
	grouped := tts.GroupByLanguage(voices)
	for lang, list := range grouped {
		prefix := voicePrefixes[lang]
		kept := list[:0]
		for _, voice := range list {
			if strings.HasPrefix(strings.ToLower(voice.Locale), prefix) {
				kept = append(kept, voice)
			}
		}
		grouped[lang] = kept
	}
	return grouped, nil
}
