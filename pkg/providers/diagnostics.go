package providers

import (
	"context"
	"strings"
	"time"

	"github.com/smith3v/sentence-trainer/pkg/languages"
	"github.com/smith3v/sentence-trainer/pkg/metrics"
	"github.com/smith3v/sentence-trainer/pkg/storage"
	"github.com/smith3v/sentence-trainer/pkg/translation"
	"github.com/smith3v/sentence-trainer/pkg/tts"
)

type TranslationDiagnostics struct {
	Configured     string
	Backend        string
	AWSCredentials bool
	Region         string
	OpenAIKey      bool
	GeminiKey      bool
	MissingEnv     []string
	Note           string
	LastFallback   *Degradation
}

type TTSDiagnostics struct {
	Configured        string
	Backend           string
	AzureKey          bool
	AzureRegion       string
	GoogleCredentials bool
	GoogleProject     string
	MissingEnv        []string
	Note              string
	LastFallback      *Degradation
	Voices            map[string]string
}

type StorageDiagnostics struct {
	Backend string
	Bucket  string
	Region  string
	BaseURL string
	BaseDir string
	Note    string
}

type Diagnostics struct {
	Translation TranslationDiagnostics
	TTS         TTSDiagnostics
	Storage     StorageDiagnostics
}

func (r *Resolver) recordDegradation(kind string) func(provider string, err error) {
	return func(provider string, err error) {
		r.mu.Lock()
		defer r.mu.Unlock()
		if r.degradations == nil {
			r.degradations = make(map[string]Degradation)
		}
		r.degradations[kind] = Degradation{Provider: provider, Error: err.Error(), At: time.Now()}
	}
}

// LastDegradation returns the most recent per-call fallback for kind.
func (r *Resolver) LastDegradation(kind string) *Degradation {
	r.mu.Lock()
	defer r.mu.Unlock()
	d, ok := r.degradations[kind]
	if !ok {
		return nil
	}
	return &d
}

// Diagnostics reports what is configured and what is actually active.
// Building the backends is local, no provider is called.
func (r *Resolver) Diagnostics(ctx context.Context) Diagnostics {
	return Diagnostics{
		Translation: r.translationDiagnostics(ctx),
		TTS:         r.ttsDiagnostics(ctx),
		Storage:     r.storageDiagnostics(ctx),
	}
}

func (r *Resolver) translationDiagnostics(ctx context.Context) TranslationDiagnostics {
	configured := r.TranslationProvider(ctx)
	backend := r.Translator(ctx)
	d := TranslationDiagnostics{
		Configured:     string(configured),
		Backend:        backend.Name(),
		AWSCredentials: r.lookup("aws_access_key_id") != "" && r.lookup("aws_secret_access_key") != "",
		Region:         r.translateRegion(),
		OpenAIKey:      r.Config.OpenAI.APIKey != "",
		GeminiKey:      r.Config.Gemini.APIKey != "",
		LastFallback:   r.LastDegradation(metrics.KindTranslation),
	}
	switch configured {
	case TranslationAWS:
		if r.lookup("aws_access_key_id") == "" {
			d.MissingEnv = append(d.MissingEnv, "AWS_ACCESS_KEY_ID")
		}
		if r.lookup("aws_secret_access_key") == "" {
			d.MissingEnv = append(d.MissingEnv, "AWS_SECRET_ACCESS_KEY")
		}
		if d.Region == "" {
			d.MissingEnv = append(d.MissingEnv, "AWS_TRANSLATE_REGION")
		}
	case TranslationOpenAI:
		if !d.OpenAIKey {
			d.MissingEnv = append(d.MissingEnv, "OPENAI_API_KEY")
		}
	case TranslationGemini:
		if !d.GeminiKey {
			d.MissingEnv = append(d.MissingEnv, "GEMINI_API_KEY")
		}
	}
	if _, isMock := backend.(translation.Mock); isMock {
		d.Backend = "mock"
		d.Note = "Using the mock translator (mock selected or provider credentials missing)."
	}
	return d
}

func (r *Resolver) ttsDiagnostics(ctx context.Context) TTSDiagnostics {
	configured := r.TTSProvider(ctx)
	backend := r.Synthesizer(ctx)
	d := TTSDiagnostics{
		Configured:        string(configured),
		Backend:           backend.Name(),
		AzureKey:          r.Config.Azure.SpeechKey != "",
		AzureRegion:       r.Config.Azure.Region,
		GoogleCredentials: r.Config.Google.CredentialsFile != "" || r.lookup("google_application_credentials") != "",
		GoogleProject:     r.Config.Google.Project,
		LastFallback:      r.LastDegradation(metrics.KindTTS),
		Voices:            make(map[string]string),
	}
	switch configured {
	case TTSAzure:
		if !d.AzureKey {
			d.MissingEnv = append(d.MissingEnv, "AZURE_SPEECH_KEY")
		}
		if d.AzureRegion == "" {
			d.MissingEnv = append(d.MissingEnv, "AZURE_REGION")
		}
	case TTSGoogle:
		if !d.GoogleCredentials {
			d.MissingEnv = append(d.MissingEnv, "GOOGLE_APPLICATION_CREDENTIALS")
		}
	}
	if _, isMock := backend.(tts.Mock); isMock {
		d.Note = "Using the mock synthesizer (mock selected or provider credentials missing)."
	}
	for _, lang := range languages.Supported {
		d.Voices[lang] = backend.VoiceLabel(lang)
	}
	return d
}

func (r *Resolver) storageDiagnostics(ctx context.Context) StorageDiagnostics {
	cfg := r.Config.Storage
	backend, err := r.Storage(ctx)
	if err != nil {
		return StorageDiagnostics{Backend: "s3", Bucket: cfg.S3Bucket, Note: err.Error()}
	}
	switch b := backend.(type) {
	case *storage.S3:
		return StorageDiagnostics{Backend: b.Name(), Bucket: b.Bucket(), Region: b.Region(), BaseURL: strings.TrimSuffix(b.URL(""), "/")}
	case *storage.Local:
		return StorageDiagnostics{
			Backend: b.Name(),
			BaseDir: b.BaseDir,
			BaseURL: b.PublicPrefix,
			Note:    "Local audio storage, files are not uploaded to S3.",
		}
	default:
		return StorageDiagnostics{Backend: backend.Name()}
	}
}
