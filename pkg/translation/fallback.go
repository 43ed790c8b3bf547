package translation

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/smith3v/sentence-trainer/pkg/apperr"
	"github.com/smith3v/sentence-trainer/pkg/logger"
	"github.com/smith3v/sentence-trainer/pkg/metrics"
)

// Fallback serves each call from Primary and, when it fails with anything
// other than a validation error, from Backup. The primary is never retried.
// A Fallback is built per operation, so Served describes that operation.
type Fallback struct {
	Primary    Translator
	Backup     Translator
	OnFallback func(provider string, err error)

	fellBack atomic.Bool
}

func NewFallback(primary Translator) *Fallback {
	return &Fallback{Primary: primary, Backup: Mock{}}
}

func (f *Fallback) Name() string { return f.Primary.Name() }

// Served is Backup once any call fell back and Primary otherwise.
func (f *Fallback) Served() Translator {
	if f.fellBack.Load() {
		return f.Backup
	}
	return f.Primary
}

func (f *Fallback) Translate(ctx context.Context, text, source, target string) (string, error) {
	started := time.Now()
	translated, err := f.Primary.Translate(ctx, text, source, target)
	metrics.ObserveProviderCall(metrics.KindTranslation, f.Primary.Name(), started, err)
	if err == nil {
		return translated, nil
	}
	if apperr.IsValidation(err) {
		return "", err
	}

	logger.Warn("primary translator failed, falling back to mock", "provider", f.Primary.Name(), "source", source, "target", target, "error", err)
	metrics.RecordFallback(metrics.KindTranslation, f.Primary.Name())
	f.fellBack.Store(true)
	if f.OnFallback != nil {
		f.OnFallback(f.Primary.Name(), err)
	}
	return f.Backup.Translate(ctx, text, source, target)
}
