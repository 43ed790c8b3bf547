package sentences

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/smith3v/sentence-trainer/pkg/apperr"
	"github.com/smith3v/sentence-trainer/pkg/db"
	"github.com/smith3v/sentence-trainer/pkg/languages"
	"github.com/smith3v/sentence-trainer/pkg/logger"
	"github.com/smith3v/sentence-trainer/pkg/metrics"
	"gorm.io/gorm"
)

const (
	DefaultPerPage = 20
	MaxPerPage     = 50
)

type ListOptions struct {
	SourceLanguage string
	Query          string
	Page           int
	PerPage        int
}

// Trainer manages the sentences students create for themselves.
type Trainer struct {
	db        *gorm.DB
	providers Providers
}

func NewTrainer(gdb *gorm.DB, p Providers) *Trainer {
	return &Trainer{db: gdb, providers: p}
}

func (t *Trainer) List(ctx context.Context, userID uint, opts ListOptions) (db.Page[db.Sentence], error) {
	if opts.PerPage == 0 {
		opts.PerPage = DefaultPerPage
	}
	page, perPage := db.ClampPaging(opts.Page, opts.PerPage, MaxPerPage)

	query := t.db.WithContext(ctx).Model(&db.Sentence{}).Where("user_id = ?", userID)
	if lang := languages.Normalize(opts.SourceLanguage); languages.IsSupported(lang) {
		query = query.Where("source_language = ?", lang)
	}
	if q := strings.ToLower(strings.TrimSpace(opts.Query)); q != "" {
		pattern := likePattern(q)
		query = query.Where(
			"LOWER(source_text) LIKE ? OR LOWER(translated_text_1) LIKE ? OR LOWER(translated_text_2) LIKE ?",
			pattern, pattern, pattern,
		)
	}

	result, err := db.Paginate[db.Sentence](query, "created_at DESC, id DESC", page, perPage)
	if err != nil {
		return result, fmt.Errorf("failed to list sentences: %w", err)
	}
	return result, nil
}

// Get returns the student's sentence or nil when it does not exist.
func (t *Trainer) Get(ctx context.Context, userID, id uint) (*db.Sentence, error) {
	var sentence db.Sentence
	err := t.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).First(&sentence).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load sentence %d: %w", id, err)
	}
	return &sentence, nil
}

// Create translates text into the two other languages, records audio for
// all three and stores the sentence. Either everything is persisted or the
// row is rolled back and the uploaded audio removed again.
func (t *Trainer) Create(ctx context.Context, userID uint, text, source string) (*db.Sentence, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, apperr.Validation("sentence text must not be empty")
	}
	source = languages.Normalize(source)
	target1, target2, err := languages.DetermineTargets(source)
	if err != nil {
		return nil, err
	}
	if err := languages.ValidateSelection(source, target1, target2); err != nil {
		return nil, err
	}

	translator := t.providers.Translator(ctx)
	translated1, err := translator.Translate(ctx, text, source, target1)
	if err != nil {
		return nil, asProcessing("translation failed", err)
	}
	translated2, err := translator.Translate(ctx, text, source, target2)
	if err != nil {
		return nil, asProcessing("translation failed", err)
	}

	synth := t.providers.Synthesizer(ctx)
	store, err := t.providers.Storage(ctx)
	if err != nil {
		return nil, asProcessing("audio storage is not available", err)
	}

	sentence := &db.Sentence{
		UserID:              userID,
		SourceLanguage:      source,
		SourceText:          text,
		TargetLanguage1:     target1,
		TargetLanguage2:     target2,
		TranslatedText1:     translated1,
		TranslatedText2:     translated2,
		TranslationProvider: servedTranslator(translator).Name(),
	}

	var uploaded []string
	err = t.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(sentence).Error; err != nil {
			return fmt.Errorf("failed to insert sentence: %w", err)
		}
		owner := ownerSegment(userID)
		keyFor := func(language string) string {
			return AudioKey(t.providers.Prefix(), owner, sentence.ID, language)
		}
		var err error
		uploaded, err = renderAudio(ctx, synth, store, keyFor, []track{
			{language: source, text: text, url: &sentence.AudioURLSource},
			{language: target1, text: translated1, url: &sentence.AudioURL1},
			{language: target2, text: translated2, url: &sentence.AudioURL2},
		})
		if err != nil {
			return err
		}
		served := servedSynthesizer(synth)
		sentence.TTSProvider = served.Name()
		sentence.TTSVoiceSource = served.VoiceLabel(source)
		sentence.TTSVoice1 = served.VoiceLabel(target1)
		sentence.TTSVoice2 = served.VoiceLabel(target2)
		if err := tx.Save(sentence).Error; err != nil {
			return fmt.Errorf("failed to store audio urls: %w", err)
		}
		return nil
	})
	if err != nil {
		logger.Error("sentence creation rolled back", "user_id", userID, "source", source, "error", err)
		removeAudio(ctx, store, uploaded)
		return nil, asProcessing("failed to generate audio for the sentence", err)
	}

	metrics.RecordSentenceCreated("student")
	logger.Info("sentence created", "user_id", userID, "sentence_id", sentence.ID, "source", source)
	return sentence, nil
}

// Delete removes the student's sentence and its audio. It reports false
// when there was nothing to delete.
func (t *Trainer) Delete(ctx context.Context, userID, id uint) (bool, error) {
	sentence, err := t.Get(ctx, userID, id)
	if err != nil || sentence == nil {
		return false, err
	}

	if store, err := t.providers.Storage(ctx); err != nil {
		logger.Warn("audio storage unavailable, leaving audio in place", "sentence_id", id, "error", err)
	} else {
		owner := ownerSegment(userID)
		var keys []string
		for _, a := range []struct {
			language string
			url      *string
		}{
			{sentence.SourceLanguage, sentence.AudioURLSource},
			{sentence.TargetLanguage1, sentence.AudioURL1},
			{sentence.TargetLanguage2, sentence.AudioURL2},
		} {
			if a.url != nil {
				keys = append(keys, AudioKey(t.providers.Prefix(), owner, sentence.ID, a.language))
			}
		}
		removeAudio(ctx, store, keys)
	}

	if err := t.db.WithContext(ctx).Delete(sentence).Error; err != nil {
		return false, fmt.Errorf("failed to delete sentence %d: %w", id, err)
	}
	logger.Info("sentence deleted", "user_id", userID, "sentence_id", id)
	return true, nil
}
