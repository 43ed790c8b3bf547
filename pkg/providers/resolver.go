package providers

import (
	"context"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/smith3v/sentence-trainer/pkg/apperr"
	"github.com/smith3v/sentence-trainer/pkg/config"
	"github.com/smith3v/sentence-trainer/pkg/db"
	"github.com/smith3v/sentence-trainer/pkg/languages"
	"github.com/smith3v/sentence-trainer/pkg/logger"
	"github.com/smith3v/sentence-trainer/pkg/metrics"
	"github.com/smith3v/sentence-trainer/pkg/storage"
	"github.com/smith3v/sentence-trainer/pkg/translation"
	"github.com/smith3v/sentence-trainer/pkg/tts"
	"gorm.io/gorm"
)

const defaultPrefix = "sentence-trainer"

// Degradation remembers the last per-call fallback of one subsystem.
type Degradation struct {
	Provider string
	Error    string
	At       time.Time
}

// Resolver decides which backends are active and owns the process-wide
// provider state: Azure tokens, the Google and Gemini clients, AWS SDK
// config and the Azure voice catalog.
type Resolver struct {
	DB     *gorm.DB
	Config config.Config
	Lookup func(key string) string
	Client *http.Client

	LoadAWSConfig   func(ctx context.Context, region string) (aws.Config, error)
	NewGoogleClient func(ctx context.Context, credentialsFile string) (tts.GoogleSpeechClient, error)
	NewGeminiModels func(ctx context.Context, apiKey string) (translation.GeminiModels, error)

	mu            sync.Mutex
	azureTokens   map[string]*tts.AzureTokenSource
	voiceCatalogs map[string]*tts.VoiceCatalog
	awsConfigs    map[string]aws.Config
	googleClient  tts.GoogleSpeechClient
	googleCreds   string
	geminiModels  map[string]translation.GeminiModels
	degradations  map[string]Degradation
}

func NewResolver(gdb *gorm.DB, cfg config.Config) *Resolver {
	return &Resolver{
		DB:              gdb,
		Config:          cfg,
		Lookup:          config.Lookup,
		Client:          &http.Client{Timeout: 15 * time.Second},
		LoadAWSConfig:   loadAWSConfig,
		NewGoogleClient: newGoogleClient,
		NewGeminiModels: translation.NewGeminiModels,
	}
}

func loadAWSConfig(ctx context.Context, region string) (aws.Config, error) {
	var opts []func(*awsconfig.LoadOptions) error
	if region != "" {
		opts = append(opts, awsconfig.WithRegion(region))
	}
	return awsconfig.LoadDefaultConfig(ctx, opts...)
}

func newGoogleClient(ctx context.Context, credentialsFile string) (tts.GoogleSpeechClient, error) {
	return tts.NewGoogleClient(ctx, credentialsFile)
}

func (r *Resolver) db(ctx context.Context) *gorm.DB {
	gdb := r.DB
	if gdb == nil {
		gdb = db.DB
	}
	if gdb == nil {
		return nil
	}
	return gdb.WithContext(ctx)
}

func (r *Resolver) setting(ctx context.Context, key string) string {
	value, err := db.GetSetting(r.db(ctx), key)
	if err != nil {
		logger.Warn("failed to read app setting", "key", key, "error", err)
		return ""
	}
	return strings.TrimSpace(value)
}

func (r *Resolver) lookup(key string) string {
	if r.Lookup == nil {
		return ""
	}
	return strings.TrimSpace(r.Lookup(key))
}

// TranslationProvider returns the configured translation provider:
// app setting, then static config, then aws when AWS keys are present,
// then mock.
func (r *Resolver) TranslationProvider(ctx context.Context) TranslationKind {
	for _, candidate := range []string{r.setting(ctx, db.SettingTranslationProvider), r.Config.Translation.Provider} {
		if candidate == "" {
			continue
		}
		kind, ok := ParseTranslationKind(candidate)
		if !ok {
			logger.Warn("unknown translation provider, using mock", "value", candidate)
		}
		return kind
	}
	if r.lookup("aws_access_key_id") != "" && r.lookup("aws_secret_access_key") != "" {
		return TranslationAWS
	}
	return TranslationMock
}

// TTSProvider returns the configured speech provider. Without an explicit
// choice Azure wins whenever any Azure credential is present.
func (r *Resolver) TTSProvider(ctx context.Context) TTSKind {
	for _, candidate := range []string{r.setting(ctx, db.SettingTTSProvider), r.Config.TTS.Provider} {
		if candidate == "" {
			continue
		}
		kind, ok := ParseTTSKind(candidate)
		if !ok {
			logger.Warn("unknown tts provider, using mock", "value", candidate)
		}
		return kind
	}
	if r.Config.Azure.SpeechKey != "" || r.Config.Azure.Region != "" {
		return TTSAzure
	}
	return TTSMock
}

// VoiceOverrides returns per-language voices for provider from app settings,
// falling back to config or environment keys of the same name.
func (r *Resolver) VoiceOverrides(ctx context.Context, provider TTSKind) map[string]string {
	voices := make(map[string]string)
	for _, lang := range languages.Supported {
		key := db.VoiceSettingKey(string(provider), lang)
		value := r.setting(ctx, key)
		if value == "" {
			value = r.lookup(key)
		}
		if value != "" {
			voices[lang] = value
		}
	}
	return voices
}

// Translator builds the configured translator. Construction failures yield
// the mock; a real backend is wrapped so per-call failures also reach it.
func (r *Resolver) Translator(ctx context.Context) translation.Translator {
	primary, err := r.buildTranslator(ctx, r.TranslationProvider(ctx))
	if err != nil {
		logger.Warn("translation provider unavailable, using mock translator", "error", err)
		return translation.Mock{}
	}
	if _, isMock := primary.(translation.Mock); isMock {
		return primary
	}
	fallback := translation.NewFallback(primary)
	fallback.OnFallback = r.recordDegradation(metrics.KindTranslation)
	return fallback
}

func (r *Resolver) buildTranslator(ctx context.Context, kind TranslationKind) (translation.Translator, error) {
	cfg := r.Config
	switch kind {
	case TranslationAWS:
		awsCfg, err := r.awsConfig(ctx, r.translateRegion())
		if err != nil {
			return nil, err
		}
		return translation.NewAWSFromConfig(awsCfg), nil
	case TranslationOpenAI:
		return translation.NewOpenAI(cfg.OpenAI.APIKey, cfg.OpenAI.BaseURL, cfg.OpenAI.TranslateModel)
	case TranslationGemini:
		models, err := r.geminiClient(ctx, cfg.Gemini.APIKey)
		if err != nil {
			return nil, err
		}
		return translation.NewGeminiWithModels(models, cfg.Gemini.Model), nil
	default:
		return translation.Mock{}, nil
	}
}

// Synthesizer builds the configured speech backend with the same fallback
// rules as Translator.
func (r *Resolver) Synthesizer(ctx context.Context) tts.Synthesizer {
	kind := r.TTSProvider(ctx)
	primary, err := r.buildSynthesizer(ctx, kind)
	if err != nil {
		logger.Warn("tts provider unavailable, using mock synthesizer", "provider", kind, "error", err)
		return tts.Mock{}
	}
	if _, isMock := primary.(tts.Mock); isMock {
		return primary
	}
	fallback := tts.NewFallback(primary)
	fallback.OnFallback = r.recordDegradation(metrics.KindTTS)
	return fallback
}

func (r *Resolver) buildSynthesizer(ctx context.Context, kind TTSKind) (tts.Synthesizer, error) {
	cfg := r.Config
	switch kind {
	case TTSAzure:
		if cfg.Azure.SpeechKey == "" || cfg.Azure.Region == "" {
			return nil, apperr.Processing("Azure speech key or region is missing", nil)
		}
		return tts.NewAzure(tts.AzureOptions{
			Key:       cfg.Azure.SpeechKey,
			Region:    cfg.Azure.Region,
			Voices:    cfg.Azure.Voices(),
			Overrides: r.VoiceOverrides(ctx, TTSAzure),
			Tokens:    r.azureTokenSource(cfg.Azure.SpeechKey, cfg.Azure.Region),
			Client:    r.Client,
		})
	case TTSGoogle:
		client, err := r.googleSpeechClient(ctx)
		if err != nil {
			return nil, err
		}
		return tts.NewGoogle(client, cfg.TTS.LanguageFallbacks, r.VoiceOverrides(ctx, TTSGoogle)), nil
	default:
		return tts.Mock{}, nil
	}
}

// Storage returns S3 when a bucket is configured and local disk otherwise.
func (r *Resolver) Storage(ctx context.Context) (storage.Backend, error) {
	cfg := r.Config.Storage
	if strings.TrimSpace(cfg.S3Bucket) == "" {
		return storage.NewLocal(cfg.LocalDir, cfg.PublicPrefix), nil
	}
	region := cfg.S3Region
	if region == "" {
		region = r.Config.AWS.Region
	}
	awsCfg, err := r.awsConfig(ctx, region)
	if err != nil {
		return nil, err
	}
	return storage.NewS3FromConfig(awsCfg, cfg.S3Bucket, cfg.S3BaseURL)
}

// Prefix is the first segment of every audio key.
func (r *Resolver) Prefix() string {
	prefix := strings.Trim(r.Config.Storage.Prefix, "/")
	if prefix == "" {
		return defaultPrefix
	}
	return prefix
}

// AzureVoices lists Azure voices through the shared TTL cache. Without Azure
// credentials it returns an empty list.
func (r *Resolver) AzureVoices(ctx context.Context) ([]tts.Voice, error) {
	key, region := r.Config.Azure.SpeechKey, r.Config.Azure.Region
	if key == "" || region == "" {
		return nil, nil
	}
	r.mu.Lock()
	if r.voiceCatalogs == nil {
		r.voiceCatalogs = make(map[string]*tts.VoiceCatalog)
	}
	cacheKey := key + "|" + region
	catalog, ok := r.voiceCatalogs[cacheKey]
	if !ok {
		catalog = tts.NewVoiceCatalog(tts.AzureVoiceFetcher(key, tts.AzureVoicesURL(region), r.Client), tts.VoiceCacheTTL)
		r.voiceCatalogs[cacheKey] = catalog
	}
	r.mu.Unlock()
	return catalog.Voices(ctx)
}

func (r *Resolver) translateRegion() string {
	for _, region := range []string{r.Config.AWS.TranslateRegion, r.Config.Storage.S3Region, r.Config.AWS.Region} {
		if region != "" {
			return region
		}
	}
	return ""
}

func (r *Resolver) awsConfig(ctx context.Context, region string) (aws.Config, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if cfg, ok := r.awsConfigs[region]; ok {
		return cfg, nil
	}
	load := r.LoadAWSConfig
	if load == nil {
		load = loadAWSConfig
	}
	cfg, err := load(ctx, region)
	if err != nil {
		return aws.Config{}, apperr.Processing("failed to load AWS configuration", err)
	}
	if r.awsConfigs == nil {
		r.awsConfigs = make(map[string]aws.Config)
	}
	r.awsConfigs[region] = cfg
	return cfg, nil
}

func (r *Resolver) azureTokenSource(key, region string) *tts.AzureTokenSource {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.azureTokens == nil {
		r.azureTokens = make(map[string]*tts.AzureTokenSource)
	}
	cacheKey := key + "|" + region
	source, ok := r.azureTokens[cacheKey]
	if !ok {
		source = tts.NewAzureTokenSource(key, region, r.Client)
		r.azureTokens[cacheKey] = source
	}
	return source
}

func (r *Resolver) googleSpeechClient(ctx context.Context) (tts.GoogleSpeechClient, error) {
	creds := r.Config.Google.CredentialsFile
	if creds == "" {
		creds = r.lookup("google_application_credentials")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.googleClient != nil && r.googleCreds == creds {
		return r.googleClient, nil
	}
	create := r.NewGoogleClient
	if create == nil {
		create = newGoogleClient
	}
	// The client outlives the request that happened to create it.
	client, err := create(context.WithoutCancel(ctx), creds)
	if err != nil {
		return nil, err
	}
	r.googleClient = client
	r.googleCreds = creds
	return client, nil
}

func (r *Resolver) geminiClient(ctx context.Context, apiKey string) (translation.GeminiModels, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, apperr.Processing("Gemini API key is missing", nil)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if models, ok := r.geminiModels[apiKey]; ok {
		return models, nil
	}
	create := r.NewGeminiModels
	if create == nil {
		create = translation.NewGeminiModels
	}
	models, err := create(context.WithoutCancel(ctx), apiKey)
	if err != nil {
		return nil, err
	}
	if r.geminiModels == nil {
		r.geminiModels = make(map[string]translation.GeminiModels)
	}
	r.geminiModels[apiKey] = models
	return models, nil
}
