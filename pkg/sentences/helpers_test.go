package sentences

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/smith3v/sentence-trainer/pkg/apperr"
	"github.com/smith3v/sentence-trainer/pkg/storage"
	"github.com/smith3v/sentence-trainer/pkg/translation"
	"github.com/smith3v/sentence-trainer/pkg/tts"
)

const testPrefix = "sentence-trainer"

type stubProviders struct {
	translator translation.Translator
	synth      tts.Synthesizer
	store      storage.Backend
}

func (p *stubProviders) Translator(context.Context) translation.Translator { return p.translator }
func (p *stubProviders) Synthesizer(context.Context) tts.Synthesizer       { return p.synth }
func (p *stubProviders) Storage(context.Context) (storage.Backend, error)  { return p.store, nil }
func (p *stubProviders) Prefix() string                                    { return testPrefix }

func newMockProviders(t *testing.T) (*stubProviders, string) {
	t.Helper()
	dir := t.TempDir()
	return &stubProviders{
		translator: translation.Mock{},
		synth:      tts.Mock{},
		store:      storage.NewLocal(dir, "/static/audio"),
	}, dir
}

// flakyStore fails the upload with the given 1-based index.
type flakyStore struct {
	storage.Backend
	failAt  int
	uploads int
}

func (s *flakyStore) Upload(ctx context.Context, data []byte, key, contentType string) (string, error) {
	s.uploads++
	if s.uploads == s.failAt {
		return "", apperr.Processing("upload failed", errors.New("bucket unavailable"))
	}
	return s.Backend.Upload(ctx, data, key, contentType)
}

func audioPath(dir, key string) string {
	return filepath.Join(dir, filepath.FromSlash(key))
}

func fileExists(t *testing.T, path string) bool {
	t.Helper()
	_, err := os.Stat(path)
	if err == nil {
		return true
	}
	if errors.Is(err, os.ErrNotExist) {
		return false
	}
	t.Fatalf("failed to stat %s: %v", path, err)
	return false
}

// scriptedTranslator answers with err when set and with a tagged text otherwise.
type scriptedTranslator struct {
	name string
	err  error
}

func (s scriptedTranslator) Name() string {
	return s.name
}

func (s scriptedTranslator) Translate(_ context.Context, text, _, target string) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	return s.name + ":" + target + ":" + text, nil
}

type downSynth struct{}

func (downSynth) Name() string {
	return "azure"
}

func (downSynth) VoiceLabel(language string) string {
	return language + "-AzureNeural"
}

func (downSynth) Synthesize(context.Context, string, string) ([]byte, error) {
	return nil, apperr.Processing("Azure TTS returned status 503", nil)
}
