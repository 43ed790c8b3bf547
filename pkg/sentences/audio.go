package sentences

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/smith3v/sentence-trainer/pkg/apperr"
	"github.com/smith3v/sentence-trainer/pkg/logger"
	"github.com/smith3v/sentence-trainer/pkg/metrics"
	"github.com/smith3v/sentence-trainer/pkg/storage"
	"github.com/smith3v/sentence-trainer/pkg/translation"
	"github.com/smith3v/sentence-trainer/pkg/tts"
)

// Providers hands out the backends for one operation. *providers.Resolver
// satisfies it.
type Providers interface {
	Translator(ctx context.Context) translation.Translator
	Synthesizer(ctx context.Context) tts.Synthesizer
	Storage(ctx context.Context) (storage.Backend, error)
	Prefix() string
}

const sharedOwner = "shared"

// AudioKey is the storage key of one audio file:
// {prefix}/{owner}/{sentence-id}/{language}.mp3.
func AudioKey(prefix, owner string, sentenceID uint, language string) string {
	return fmt.Sprintf("%s/%s/%d/%s.mp3", prefix, owner, sentenceID, language)
}

func ownerSegment(userID uint) string {
	return strconv.FormatUint(uint64(userID), 10)
}

type track struct {
	language string
	text     string
	url      **string
}

// renderAudio synthesizes and uploads every track in order and stores the
// public URLs through the track pointers. The keys uploaded so far are
// returned even on failure.
func renderAudio(ctx context.Context, synth tts.Synthesizer, store storage.Backend, keyFor func(language string) string, tracks []track) ([]string, error) {
	var uploaded []string
	for _, tr := range tracks {
		audio, err := synth.Synthesize(ctx, tr.text, tr.language)
		if err != nil {
			return uploaded, err
		}
		key := keyFor(tr.language)
		started := time.Now()
		url, err := store.Upload(ctx, audio, key, storage.AudioContentType)
		metrics.ObserveProviderCall(metrics.KindStorage, store.Name(), started, err)
		if err != nil {
			return uploaded, err
		}
		uploaded = append(uploaded, key)
		*tr.url = &url
	}
	return uploaded, nil
}

// removeAudio deletes keys and only logs failures.
func removeAudio(ctx context.Context, store storage.Backend, keys []string) {
	for _, key := range keys {
		started := time.Now()
		err := store.Delete(ctx, key)
		metrics.ObserveProviderCall(metrics.KindStorage, store.Name(), started, err)
		if err != nil {
			logger.Warn("failed to delete audio", "key", key, "backend", store.Name(), "error", err)
		}
	}
}

// servedTranslator is the backend whose output the caller received: the
// mock after a fallback, the translator itself otherwise.
func servedTranslator(translator translation.Translator) translation.Translator {
	if fb, ok := translator.(*translation.Fallback); ok {
		return fb.Served()
	}
	return translator
}

func servedSynthesizer(synth tts.Synthesizer) tts.Synthesizer {
	if fb, ok := synth.(*tts.Fallback); ok {
		return fb.Served()
	}
	return synth
}

func asProcessing(msg string, err error) error {
	if apperr.IsValidation(err) || apperr.IsProcessing(err) {
		return err
	}
	return apperr.Processing(msg, err)
}

func likePattern(query string) string {
	return "%" + query + "%"
}
