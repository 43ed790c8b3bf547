package tts

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/smith3v/sentence-trainer/pkg/apperr"
	"github.com/smith3v/sentence-trainer/pkg/logger"
	"github.com/smith3v/sentence-trainer/pkg/metrics"
)

// Fallback serves each call from Primary and, when it fails with anything
// other than a validation error, from Backup. Name and VoiceLabel describe
// Primary; Served tells which backend actually produced the audio.
type Fallback struct {
	Primary    Synthesizer
	Backup     Synthesizer
	OnFallback func(provider string, err error)

	fellBack atomic.Bool
}

func NewFallback(primary Synthesizer) *Fallback {
	return &Fallback{Primary: primary, Backup: Mock{}}
}

func (f *Fallback) Name() string { return f.Primary.Name() }

func (f *Fallback) VoiceLabel(language string) string { return f.Primary.VoiceLabel(language) }

// Served is Backup once any call fell back and Primary otherwise.
func (f *Fallback) Served() Synthesizer {
	if f.fellBack.Load() {
		return f.Backup
	}
	return f.Primary
}

func (f *Fallback) Synthesize(ctx context.Context, text, language string) ([]byte, error) {
	started := time.Now()
	audio, err := f.Primary.Synthesize(ctx, text, language)
	metrics.ObserveProviderCall(metrics.KindTTS, f.Primary.Name(), started, err)
	if err == nil {
		return audio, nil
	}
	if apperr.IsValidation(err) {
		return nil, err
	}

	logger.Warn("primary speech synthesizer failed, falling back to mock", "provider", f.Primary.Name(), "language", language, "error", err)
	metrics.RecordFallback(metrics.KindTTS, f.Primary.Name())
	f.fellBack.Store(true)
	if f.OnFallback != nil {
		f.OnFallback(f.Primary.Name(), err)
	}
	return f.Backup.Synthesize(ctx, text, language)
}
