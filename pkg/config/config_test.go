package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadConfigSuccess(t *testing.T) {
	original := AppConfig
	originalStore := store
	t.Cleanup(func() {
		AppConfig = original
		store = originalStore
	})

	dir := t.TempDir()
	configPath := filepath.Join(dir, "config.json")
	content := `{
		"database": {
			"driver": "postgres",
			"host": "localhost",
			"user": "test-user",
			"password": "test-pass",
			"dbname": "testdb",
			"port": 5433,
			"sslmode": "disable"
		},
		"translation": {
			"provider": "openai"
		},
		"storage": {
			"s3_bucket": "audio-bucket"
		},
		"tts_voice_google_de": "de-DE-Wavenet-C"
	}`

	if err := os.WriteFile(configPath, []byte(content), 0o600); err != nil {
		t.Fatalf("failed to write config fixture: %v", err)
	}

	if err := LoadConfig(configPath); err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}

	if AppConfig.Database.Driver != "postgres" {
		t.Errorf("expected driver to be postgres, got %q", AppConfig.Database.Driver)
	}
	if AppConfig.Database.Port != 5433 {
		t.Errorf("expected port to be 5433, got %d", AppConfig.Database.Port)
	}
	if AppConfig.Translation.Provider != "openai" {
		t.Errorf("expected translation provider openai, got %q", AppConfig.Translation.Provider)
	}
	if AppConfig.Storage.S3Bucket != "audio-bucket" {
		t.Errorf("expected bucket audio-bucket, got %q", AppConfig.Storage.S3Bucket)
	}
	if AppConfig.Storage.Prefix != "sentence-trainer" {
		t.Errorf("expected default storage prefix, got %q", AppConfig.Storage.Prefix)
	}
	if AppConfig.Storage.PublicPrefix != "/static/audio" {
		t.Errorf("expected default public prefix, got %q", AppConfig.Storage.PublicPrefix)
	}
	if AppConfig.Generation.BatchRetentionDays != 90 {
		t.Errorf("expected default batch retention, got %d", AppConfig.Generation.BatchRetentionDays)
	}
	if got := Lookup("tts_voice_google_de"); got != "de-DE-Wavenet-C" {
		t.Errorf("expected voice override from file, got %q", got)
	}
}

func TestLoadConfigEnvironmentOverrides(t *testing.T) {
	original := AppConfig
	originalStore := store
	t.Cleanup(func() {
		AppConfig = original
		store = originalStore
	})

	t.Setenv("AZURE_SPEECH_KEY", "secret")
	t.Setenv("AZURE_REGION", "westeurope")
	t.Setenv("TTS_VOICE_AZURE_PL", "pl-PL-MarekNeural")

	if err := LoadConfig(""); err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}

	if AppConfig.Azure.SpeechKey != "secret" {
		t.Errorf("expected speech key from env, got %q", AppConfig.Azure.SpeechKey)
	}
	if AppConfig.Azure.Region != "westeurope" {
		t.Errorf("expected region from env, got %q", AppConfig.Azure.Region)
	}
	if got := Lookup("TTS_VOICE_AZURE_PL"); got != "pl-PL-MarekNeural" {
		t.Errorf("expected voice override from env, got %q", got)
	}
	if got := Lookup("tts_voice_azure_en"); got != "" {
		t.Errorf("expected empty lookup for unset key, got %q", got)
	}
	if voices := AppConfig.Azure.Voices(); voices["de"] != "de-DE-MajaNeural" {
		t.Errorf("expected default German voice, got %q", voices["de"])
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	original := AppConfig
	originalStore := store
	t.Cleanup(func() {
		AppConfig = original
		store = originalStore
	})

	if err := LoadConfig(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Fatal("expected an error when loading a missing config file")
	}
}
