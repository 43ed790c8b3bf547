package db

import (
	"testing"
	"time"

	"gorm.io/datatypes"
)

func TestCleanupGenerationBatches(t *testing.T) {
	gdb := openTestDB(t)

	now := time.Date(2025, 1, 10, 12, 0, 0, 0, time.UTC)
	raw := datatypes.JSON([]byte(`["Dzień dobry"]`))

	expired := GenerationBatch{
		Prompt:         "greetings",
		Difficulty:     "beginner",
		SourceLanguage: "pl",
		Sentences:      raw,
		CreatedAt:      now.Add(-100 * 24 * time.Hour),
	}
	recent := GenerationBatch{
		Prompt:         "weather",
		Difficulty:     "beginner",
		SourceLanguage: "pl",
		Sentences:      raw,
		CreatedAt:      now.Add(-time.Hour),
	}
	if err := gdb.Create(&expired).Error; err != nil {
		t.Fatalf("failed to seed expired batch: %v", err)
	}
	if err := gdb.Create(&recent).Error; err != nil {
		t.Fatalf("failed to seed recent batch: %v", err)
	}

	shared := SharedSentence{
		Prompt:          "greetings",
		Difficulty:      "beginner",
		SourceLanguage:  "pl",
		SourceText:      "Dzień dobry",
		TargetLanguage1: "en",
		TargetLanguage2: "de",
		Status:          SharedStatusDraft,
		BatchID:         &expired.ID,
	}
	if err := gdb.Create(&shared).Error; err != nil {
		t.Fatalf("failed to seed shared sentence: %v", err)
	}

	deleted, err := CleanupGenerationBatches(gdb, now.Add(-90*24*time.Hour))
	if err != nil {
		t.Fatalf("cleanup failed: %v", err)
	}
	if deleted != 1 {
		t.Fatalf("expected 1 deleted batch, got %d", deleted)
	}

	var remaining []GenerationBatch
	if err := gdb.Find(&remaining).Error; err != nil {
		t.Fatalf("failed to load batches: %v", err)
	}
	if len(remaining) != 1 || remaining[0].ID != recent.ID {
		t.Fatalf("expected only the recent batch to remain, got %+v", remaining)
	}

	var reloaded SharedSentence
	if err := gdb.First(&reloaded, shared.ID).Error; err != nil {
		t.Fatalf("failed to reload shared sentence: %v", err)
	}
	if reloaded.BatchID != nil {
		t.Fatalf("expected batch reference to be cleared, got %d", *reloaded.BatchID)
	}
}

func TestCleanupGenerationBatchesWithoutDB(t *testing.T) {
	deleted, err := CleanupGenerationBatches(nil, time.Now())
	if err != nil || deleted != 0 {
		t.Fatalf("expected no-op without a database, got %d err=%v", deleted, err)
	}
}
