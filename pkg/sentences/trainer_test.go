package sentences

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"testing"

	"github.com/smith3v/sentence-trainer/pkg/apperr"
	"github.com/smith3v/sentence-trainer/pkg/db"
	"github.com/smith3v/sentence-trainer/pkg/internal/testutil"
	"github.com/smith3v/sentence-trainer/pkg/translation"
	"github.com/smith3v/sentence-trainer/pkg/tts"
)

func TestCreateSentenceEndToEnd(t *testing.T) {
	gdb := testutil.SetupTestDB(t)
	student := testutil.CreateStudent(t, gdb, "anna", false)
	p, dir := newMockProviders(t)
	trainer := NewTrainer(gdb, p)

	sentence, err := trainer.Create(context.Background(), student.ID, "  To jest zdanie testowe ", "PL")
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	if sentence.UserID != student.ID {
		t.Fatalf("expected owner %d, got %d", student.ID, sentence.UserID)
	}
	if sentence.SourceText != "To jest zdanie testowe" || sentence.SourceLanguage != "pl" {
		t.Fatalf("unexpected source %q/%q", sentence.SourceText, sentence.SourceLanguage)
	}
	if sentence.TargetLanguage1 != "en" || sentence.TargetLanguage2 != "de" {
		t.Fatalf("unexpected targets %q/%q", sentence.TargetLanguage1, sentence.TargetLanguage2)
	}
	if sentence.TranslatedText1 != "To jest zdanie testowe ⇒ EN" {
		t.Fatalf("unexpected translation %q", sentence.TranslatedText1)
	}
	for _, url := range []*string{sentence.AudioURLSource, sentence.AudioURL1, sentence.AudioURL2} {
		if url == nil || !strings.HasPrefix(*url, "/static/audio/") {
			t.Fatalf("expected public audio url, got %v", url)
		}
	}
	wantURL := fmt.Sprintf("/static/audio/sentence-trainer/%d/%d/pl.mp3", student.ID, sentence.ID)
	if *sentence.AudioURLSource != wantURL {
		t.Fatalf("expected %q, got %q", wantURL, *sentence.AudioURLSource)
	}
	if sentence.TranslationProvider != "mock" || sentence.TTSProvider != "mock" || sentence.TTSVoice2 != "mock" {
		t.Fatalf("unexpected provider metadata: %+v", sentence)
	}

	data, err := os.ReadFile(audioPath(dir, AudioKey(testPrefix, ownerSegment(student.ID), sentence.ID, "de")))
	if err != nil {
		t.Fatalf("failed to read audio file: %v", err)
	}
	if string(data) != "MOCK::de::To jest zdanie testowe ⇒ DE" {
		t.Fatalf("unexpected audio payload %q", data)
	}

	stored, err := trainer.Get(context.Background(), student.ID, sentence.ID)
	if err != nil || stored == nil {
		t.Fatalf("expected stored sentence, got %v, %v", stored, err)
	}
	if stored.AudioURL2 == nil || *stored.AudioURL2 != *sentence.AudioURL2 {
		t.Fatalf("expected persisted audio url, got %v", stored.AudioURL2)
	}
}

func TestCreateSentenceValidation(t *testing.T) {
	gdb := testutil.SetupTestDB(t)
	student := testutil.CreateStudent(t, gdb, "anna", false)
	p, _ := newMockProviders(t)
	trainer := NewTrainer(gdb, p)

	if _, err := trainer.Create(context.Background(), student.ID, "   ", "pl"); !apperr.IsValidation(err) {
		t.Fatalf("expected validation error for empty text, got %v", err)
	}
	if _, err := trainer.Create(context.Background(), student.ID, "Bonjour", "fr"); !apperr.IsValidation(err) {
		t.Fatalf("expected validation error for unsupported language, got %v", err)
	}

	var count int64
	gdb.Model(&db.Sentence{}).Count(&count)
	if count != 0 {
		t.Fatalf("expected no rows, got %d", count)
	}
}

func TestCreateSentenceRollsBackOnUploadFailure(t *testing.T) {
	gdb := testutil.SetupTestDB(t)
	student := testutil.CreateStudent(t, gdb, "anna", false)
	p, dir := newMockProviders(t)
	p.store = &flakyStore{Backend: p.store, failAt: 3}
	trainer := NewTrainer(gdb, p)

	_, err := trainer.Create(context.Background(), student.ID, "Guten Morgen", "de")
	if !apperr.IsProcessing(err) {
		t.Fatalf("expected processing error, got %v", err)
	}

	var count int64
	if err := gdb.Model(&db.Sentence{}).Count(&count).Error; err != nil {
		t.Fatalf("failed to count sentences: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected rollback to leave no rows, got %d", count)
	}

	// The row id was 1 inside the rolled back transaction.
	for _, lang := range []string{"de", "pl"} {
		if fileExists(t, audioPath(dir, AudioKey(testPrefix, ownerSegment(student.ID), 1, lang))) {
			t.Fatalf("expected uploaded %s audio to be cleaned up", lang)
		}
	}
}

func TestDeleteSentence(t *testing.T) {
	gdb := testutil.SetupTestDB(t)
	owner := testutil.CreateStudent(t, gdb, "anna", false)
	other := testutil.CreateStudent(t, gdb, "ben", false)
	p, dir := newMockProviders(t)
	trainer := NewTrainer(gdb, p)
	ctx := context.Background()

	sentence, err := trainer.Create(ctx, owner.ID, "Hello there", "en")
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	path := audioPath(dir, AudioKey(testPrefix, ownerSegment(owner.ID), sentence.ID, "en"))
	if !fileExists(t, path) {
		t.Fatalf("expected audio file at %s", path)
	}

	if deleted, err := trainer.Delete(ctx, other.ID, sentence.ID); err != nil || deleted {
		t.Fatalf("expected other student to not delete the sentence, got %v, %v", deleted, err)
	}
	deleted, err := trainer.Delete(ctx, owner.ID, sentence.ID)
	if err != nil || !deleted {
		t.Fatalf("expected sentence to be deleted, got %v, %v", deleted, err)
	}
	if fileExists(t, path) {
		t.Fatal("expected audio file to be removed")
	}
	if stored, _ := trainer.Get(ctx, owner.ID, sentence.ID); stored != nil {
		t.Fatal("expected row to be removed")
	}

	deleted, err = trainer.Delete(ctx, owner.ID, 9999)
	if err != nil || deleted {
		t.Fatalf("expected missing sentence to report false without error, got %v, %v", deleted, err)
	}
}

func TestListSentences(t *testing.T) {
	gdb := testutil.SetupTestDB(t)
	anna := testutil.CreateStudent(t, gdb, "anna", false)
	ben := testutil.CreateStudent(t, gdb, "ben", false)
	p, _ := newMockProviders(t)
	trainer := NewTrainer(gdb, p)
	ctx := context.Background()

	inputs := []struct{ text, lang string }{
		{"Dzień dobry", "pl"},
		{"Good morning", "en"},
		{"Guten Abend", "de"},
		{"Good night", "en"},
	}
	for _, in := range inputs {
		if _, err := trainer.Create(ctx, anna.ID, in.text, in.lang); err != nil {
			t.Fatalf("Create(%q) returned error: %v", in.text, err)
		}
	}
	if _, err := trainer.Create(ctx, ben.ID, "Good luck", "en"); err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	page, err := trainer.List(ctx, anna.ID, ListOptions{})
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if page.Total != 4 || len(page.Items) != 4 {
		t.Fatalf("expected 4 sentences for anna, got %d/%d", page.Total, len(page.Items))
	}
	if page.Items[0].SourceText != "Good night" {
		t.Fatalf("expected newest first, got %q", page.Items[0].SourceText)
	}

	page, _ = trainer.List(ctx, anna.ID, ListOptions{SourceLanguage: "en"})
	if page.Total != 2 {
		t.Fatalf("expected 2 english sentences, got %d", page.Total)
	}

	// Search also matches translated texts.
	page, _ = trainer.List(ctx, anna.ID, ListOptions{Query: "⇒ de"})
	if page.Total != 3 {
		t.Fatalf("expected 3 sentences translated to German, got %d", page.Total)
	}

	page, _ = trainer.List(ctx, anna.ID, ListOptions{Query: "GOOD"})
	if page.Total != 2 {
		t.Fatalf("expected case-insensitive search to match 2, got %d", page.Total)
	}

	page, _ = trainer.List(ctx, anna.ID, ListOptions{Page: 2, PerPage: 3})
	if len(page.Items) != 1 || page.Pages() != 2 {
		t.Fatalf("expected 1 item on page 2 of 2, got %d items, %d pages", len(page.Items), page.Pages())
	}

	page, _ = trainer.List(ctx, anna.ID, ListOptions{PerPage: 500})
	if page.PerPage != MaxPerPage {
		t.Fatalf("expected per page clamp %d, got %d", MaxPerPage, page.PerPage)
	}
}

func TestCreateSentenceRecordsServingBackend(t *testing.T) {
	gdb := testutil.SetupTestDB(t)
	student := testutil.CreateStudent(t, gdb, "anna", false)
	p, _ := newMockProviders(t)
	p.translator = translation.NewFallback(scriptedTranslator{name: "openai", err: errors.New("status 503")})
	p.synth = tts.NewFallback(downSynth{})
	trainer := NewTrainer(gdb, p)

	sentence, err := trainer.Create(context.Background(), student.ID, "Dzień dobry", "pl")
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if sentence.TranslationProvider != "mock" || sentence.TTSProvider != "mock" {
		t.Fatalf("expected mock after provider outage, got %q/%q", sentence.TranslationProvider, sentence.TTSProvider)
	}
	if sentence.TTSVoiceSource != "mock" || sentence.TTSVoice1 != "mock" || sentence.TTSVoice2 != "mock" {
		t.Fatalf("expected mock voices, got %+v", sentence)
	}

	var stored db.Sentence
	if err := gdb.First(&stored, sentence.ID).Error; err != nil {
		t.Fatalf("failed to reload sentence: %v", err)
	}
	if stored.TranslationProvider != "mock" || stored.TTSProvider != "mock" {
		t.Fatalf("expected persisted mock providers, got %q/%q", stored.TranslationProvider, stored.TTSProvider)
	}

	p.translator = translation.NewFallback(scriptedTranslator{name: "aws"})
	sentence, err = trainer.Create(context.Background(), student.ID, "Dobranoc", "pl")
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if sentence.TranslationProvider != "aws" || sentence.TranslatedText1 != "aws:en:Dobranoc" {
		t.Fatalf("expected aws to serve the translation, got %q %q", sentence.TranslationProvider, sentence.TranslatedText1)
	}
}
