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
	"github.com/smith3v/sentence-trainer/pkg/notify"
	"gorm.io/gorm"
)

const (
	SharedDefaultPerPage = 50
	SharedMaxPerPage     = 100
)

type SharedListOptions struct {
	Difficulty     string
	Query          string
	OnlyTranslated bool
	Page           int
	PerPage        int
}

// Shared manages the admin-curated sentence bank.
type Shared struct {
	db        *gorm.DB
	providers Providers
	notifier  notify.Notifier
}

func NewShared(gdb *gorm.DB, p Providers, n notify.Notifier) *Shared {
	if n == nil {
		n = notify.Nop{}
	}
	return &Shared{db: gdb, providers: p, notifier: n}
}

func (s *Shared) List(ctx context.Context, opts SharedListOptions) (db.Page[db.SharedSentence], error) {
	if opts.PerPage == 0 {
		opts.PerPage = SharedDefaultPerPage
	}
	page, perPage := db.ClampPaging(opts.Page, opts.PerPage, SharedMaxPerPage)

	query := s.db.WithContext(ctx).Model(&db.SharedSentence{})
	if opts.OnlyTranslated {
		query = query.Where("status = ?", db.SharedStatusTranslated)
	}
	if difficulty := strings.ToLower(strings.TrimSpace(opts.Difficulty)); db.IsDifficulty(difficulty) {
		query = query.Where("difficulty = ?", difficulty)
	}
	if q := strings.ToLower(strings.TrimSpace(opts.Query)); q != "" {
		pattern := likePattern(q)
		query = query.Where(
			"LOWER(source_text) LIKE ? OR LOWER(translated_text_1) LIKE ? OR LOWER(translated_text_2) LIKE ? OR LOWER(prompt) LIKE ?",
			pattern, pattern, pattern, pattern,
		)
	}

	result, err := db.Paginate[db.SharedSentence](query, "created_at DESC, id DESC", page, perPage)
	if err != nil {
		return result, fmt.Errorf("failed to list shared sentences: %w", err)
	}
	return result, nil
}

func (s *Shared) Get(ctx context.Context, id uint) (*db.SharedSentence, error) {
	var shared db.SharedSentence
	err := s.db.WithContext(ctx).First(&shared, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load shared sentence %d: %w", id, err)
	}
	return &shared, nil
}

// CreateFromPrompt stores one draft per non-empty text.
func (s *Shared) CreateFromPrompt(ctx context.Context, prompt, difficulty, source string, texts []string, createdBy, batchID *uint) ([]db.SharedSentence, error) {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return nil, apperr.Validation("prompt must not be empty")
	}
	difficulty = strings.ToLower(strings.TrimSpace(difficulty))
	if !db.IsDifficulty(difficulty) {
		return nil, apperr.Validation("difficulty must be one of: " + strings.Join(db.Difficulties, ", "))
	}
	source = languages.Normalize(source)
	target1, target2, err := languages.DetermineTargets(source)
	if err != nil {
		return nil, err
	}

	var drafts []db.SharedSentence
	for _, text := range texts {
		text = strings.TrimSpace(text)
		if text == "" {
			continue
		}
		drafts = append(drafts, db.SharedSentence{
			Prompt:          prompt,
			Difficulty:      difficulty,
			SourceLanguage:  source,
			SourceText:      text,
			TargetLanguage1: target1,
			TargetLanguage2: target2,
			Status:          db.SharedStatusDraft,
			CreatedBy:       createdBy,
			BatchID:         batchID,
		})
	}
	if len(drafts) == 0 {
		return nil, nil
	}
	if err := s.db.WithContext(ctx).Create(&drafts).Error; err != nil {
		return nil, fmt.Errorf("failed to insert shared sentences: %w", err)
	}
	logger.Info("shared drafts created", "count", len(drafts), "difficulty", difficulty, "source", source)
	return drafts, nil
}

// GenerateDrafts asks gen for sentences, records the batch and stores the
// sentences as drafts.
func (s *Shared) GenerateDrafts(ctx context.Context, gen Generator, prompt, difficulty, source string, createdBy *uint) (*db.GenerationBatch, []db.SharedSentence, error) {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return nil, nil, apperr.Validation("prompt must not be empty")
	}
	difficulty = strings.ToLower(strings.TrimSpace(difficulty))
	if !db.IsDifficulty(difficulty) {
		return nil, nil, apperr.Validation("difficulty must be one of: " + strings.Join(db.Difficulties, ", "))
	}
	source = languages.Normalize(source)
	if !languages.IsSupported(source) {
		return nil, nil, apperr.Validation("allowed languages are: " + strings.Join(languages.Supported, ", "))
	}

	result, err := gen.Generate(ctx, prompt)
	if err != nil {
		return nil, nil, asProcessing("sentence generation failed", err)
	}
	batch, err := newBatch(prompt, difficulty, source, createdBy, result)
	if err != nil {
		return nil, nil, err
	}
	if err := s.db.WithContext(ctx).Create(batch).Error; err != nil {
		return nil, nil, fmt.Errorf("failed to record generation batch: %w", err)
	}

	drafts, err := s.CreateFromPrompt(ctx, prompt, difficulty, source, result.Sentences, createdBy, &batch.ID)
	if err != nil {
		return batch, nil, err
	}
	notify.Send(ctx, s.notifier, notify.BatchGeneratedMessage(batch, len(drafts)))
	return batch, drafts, nil
}

// RecentBatches returns the latest generation batches, newest first.
func (s *Shared) RecentBatches(ctx context.Context, limit int) ([]db.GenerationBatch, error) {
	var batches []db.GenerationBatch
	err := s.db.WithContext(ctx).Order("created_at DESC, id DESC").Limit(limit).Find(&batches).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list generation batches: %w", err)
	}
	return batches, nil
}

// Translate runs the translation and audio pipeline for one shared
// sentence and marks it translated. On failure the stored row is untouched.
func (s *Shared) Translate(ctx context.Context, shared *db.SharedSentence) error {
	if err := languages.ValidateSelection(shared.SourceLanguage, shared.TargetLanguage1, shared.TargetLanguage2); err != nil {
		return err
	}
	if strings.TrimSpace(shared.SourceText) == "" {
		return apperr.Validation("sentence text must not be empty")
	}

	translator := s.providers.Translator(ctx)
	translated1, err := translator.Translate(ctx, shared.SourceText, shared.SourceLanguage, shared.TargetLanguage1)
	if err != nil {
		return asProcessing("translation failed", err)
	}
	translated2, err := translator.Translate(ctx, shared.SourceText, shared.SourceLanguage, shared.TargetLanguage2)
	if err != nil {
		return asProcessing("translation failed", err)
	}

	synth := s.providers.Synthesizer(ctx)
	store, err := s.providers.Storage(ctx)
	if err != nil {
		return asProcessing("audio storage is not available", err)
	}

	updated := *shared
	updated.TranslatedText1 = translated1
	updated.TranslatedText2 = translated2
	updated.TranslationProvider = servedTranslator(translator).Name()
	updated.Status = db.SharedStatusTranslated

	keyFor := func(language string) string {
		return AudioKey(s.providers.Prefix(), sharedOwner, shared.ID, language)
	}
	var uploaded []string
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		uploaded, err = renderAudio(ctx, synth, store, keyFor, []track{
			{language: updated.SourceLanguage, text: updated.SourceText, url: &updated.AudioURLSource},
			{language: updated.TargetLanguage1, text: translated1, url: &updated.AudioURL1},
			{language: updated.TargetLanguage2, text: translated2, url: &updated.AudioURL2},
		})
		if err != nil {
			return err
		}
		served := servedSynthesizer(synth)
		updated.TTSProvider = served.Name()
		updated.TTSVoiceSource = served.VoiceLabel(updated.SourceLanguage)
		updated.TTSVoice1 = served.VoiceLabel(updated.TargetLanguage1)
		updated.TTSVoice2 = served.VoiceLabel(updated.TargetLanguage2)
		if err := tx.Save(&updated).Error; err != nil {
			return fmt.Errorf("failed to store shared sentence: %w", err)
		}
		return nil
	})
	if err != nil {
		logger.Error("shared sentence translation rolled back", "shared_id", shared.ID, "error", err)
		// Keys of a translated row are overwritten in place, so only a draft
		// can leave orphaned audio behind.
		if shared.Status != db.SharedStatusTranslated {
			removeAudio(ctx, store, uploaded)
		}
		return asProcessing("failed to generate audio for the shared sentence", err)
	}

	*shared = updated
	metrics.RecordSentenceCreated("shared")
	logger.Info("shared sentence translated", "shared_id", shared.ID)
	notify.Send(ctx, s.notifier, notify.SharedTranslatedMessage(shared))
	return nil
}

// Delete removes a shared sentence and its audio.
func (s *Shared) Delete(ctx context.Context, id uint) (bool, error) {
	shared, err := s.Get(ctx, id)
	if err != nil || shared == nil {
		return false, err
	}
	s.removeSharedAudio(ctx, []db.SharedSentence{*shared})
	if err := s.db.WithContext(ctx).Delete(shared).Error; err != nil {
		return false, fmt.Errorf("failed to delete shared sentence %d: %w", id, err)
	}
	logger.Info("shared sentence deleted", "shared_id", id)
	return true, nil
}

// BulkDelete removes every listed shared sentence that exists and returns
// how many rows were deleted.
func (s *Shared) BulkDelete(ctx context.Context, ids []uint) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	var rows []db.SharedSentence
	if err := s.db.WithContext(ctx).Where("id IN ?", ids).Find(&rows).Error; err != nil {
		return 0, fmt.Errorf("failed to load shared sentences: %w", err)
	}
	if len(rows) == 0 {
		return 0, nil
	}
	s.removeSharedAudio(ctx, rows)

	found := make([]uint, len(rows))
	for i, row := range rows {
		found[i] = row.ID
	}
	result := s.db.WithContext(ctx).Where("id IN ?", found).Delete(&db.SharedSentence{})
	if result.Error != nil {
		return 0, fmt.Errorf("failed to delete shared sentences: %w", result.Error)
	}
	logger.Info("shared sentences deleted", "count", result.RowsAffected)
	return result.RowsAffected, nil
}

func (s *Shared) removeSharedAudio(ctx context.Context, rows []db.SharedSentence) {
	store, err := s.providers.Storage(ctx)
	if err != nil {
		logger.Warn("audio storage unavailable, leaving audio in place", "error", err)
		return
	}
	var keys []string
	for _, row := range rows {
		for _, a := range []struct {
			language string
			url      *string
		}{
			{row.SourceLanguage, row.AudioURLSource},
			{row.TargetLanguage1, row.AudioURL1},
			{row.TargetLanguage2, row.AudioURL2},
		} {
			if a.url != nil {
				keys = append(keys, AudioKey(s.providers.Prefix(), sharedOwner, row.ID, a.language))
			}
		}
	}
	removeAudio(ctx, store, keys)
}
