package config

import (
	"strings"

	"github.com/smith3v/sentence-trainer/pkg/logger"
	"github.com/spf13/viper"
)

type Config struct {
	Server      ServerConfig      `mapstructure:"server"`
	Database    DatabaseConfig    `mapstructure:"database"`
	Logging     LoggingConfig     `mapstructure:"logging"`
	Translation TranslationConfig `mapstructure:"translation"`
	TTS         TTSConfig         `mapstructure:"tts"`
	Azure       AzureConfig       `mapstructure:"azure"`
	Google      GoogleConfig      `mapstructure:"google"`
	AWS         AWSConfig         `mapstructure:"aws"`
	OpenAI      OpenAIConfig      `mapstructure:"openai"`
	Gemini      GeminiConfig      `mapstructure:"gemini"`
	Storage     StorageConfig     `mapstructure:"storage"`
	Telegram    TelegramConfig    `mapstructure:"telegram"`
	Generation  GenerationConfig  `mapstructure:"generation"`
}

type ServerConfig struct {
	Addr          string `mapstructure:"addr"`
	SessionSecret string `mapstructure:"session_secret"`
	CookieName    string `mapstructure:"cookie_name"`
	CookieSecure  bool   `mapstructure:"cookie_secure"`
}

type DatabaseConfig struct {
	Driver   string `mapstructure:"driver"`
	Host     string `mapstructure:"host"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
	Port     int    `mapstructure:"port"`
	SSLMode  string `mapstructure:"sslmode"`
	Path     string `mapstructure:"path"`
}

type LoggingConfig struct {
	Level     string `mapstructure:"level"`
	File      string `mapstructure:"file"`
	GormLevel string `mapstructure:"gorm_level"`
}

type TranslationConfig struct {
	Provider string `mapstructure:"provider"`
}

type TTSConfig struct {
	Provider          string `mapstructure:"provider"`
	LanguageFallbacks string `mapstructure:"language_fallbacks"`
}

type AzureConfig struct {
	SpeechKey string `mapstructure:"speech_key"`
	Region    string `mapstructure:"region"`
	VoicePL   string `mapstructure:"voice_pl"`
	VoiceEN   string `mapstructure:"voice_en"`
	VoiceDE   string `mapstructure:"voice_de"`
}

// Voices returns the configured Azure voice per language code.
func (c AzureConfig) Voices() map[string]string {
	return map[string]string{"pl": c.VoicePL, "en": c.VoiceEN, "de": c.VoiceDE}
}

type GoogleConfig struct {
	CredentialsFile string `mapstructure:"credentials_file"`
	Project         string `mapstructure:"project"`
}

type AWSConfig struct {
	Region          string `mapstructure:"region"`
	TranslateRegion string `mapstructure:"translate_region"`
}

type OpenAIConfig struct {
	APIKey         string `mapstructure:"api_key"`
	BaseURL        string `mapstructure:"base_url"`
	TranslateModel string `mapstructure:"translate_model"`
	GeneratorModel string `mapstructure:"generator_model"`
}

type GeminiConfig struct {
	APIKey string `mapstructure:"api_key"`
	Model  string `mapstructure:"model"`
}

type StorageConfig struct {
	S3Bucket     string `mapstructure:"s3_bucket"`
	S3Region     string `mapstructure:"s3_region"`
	S3BaseURL    string `mapstructure:"s3_base_url"`
	Prefix       string `mapstructure:"prefix"`
	LocalDir     string `mapstructure:"local_dir"`
	PublicPrefix string `mapstructure:"public_prefix"`
}

type TelegramConfig struct {
	Token       string `mapstructure:"token"`
	AdminChatID int64  `mapstructure:"admin_chat_id"`
}

// GenerationConfig controls how long LLM generation batches are kept.
// Zero disables pruning.
type GenerationConfig struct {
	BatchRetentionDays int `mapstructure:"batch_retention_days"`
}

var (
	AppConfig Config
	store     *viper.Viper
)

var defaults = map[string]any{
	"server.addr":                     ":8080",
	"server.session_secret":           "dev",
	"server.cookie_name":              "learning_platform_session",
	"server.cookie_secure":            false,
	"database.driver":                 "sqlite",
	"database.host":                   "localhost",
	"database.user":                   "",
	"database.password":               "",
	"database.dbname":                 "sentence_trainer",
	"database.port":                   5432,
	"database.sslmode":                "disable",
	"database.path":                   "instance/learning_platform.db",
	"logging.level":                   "info",
	"logging.file":                    "",
	"logging.gorm_level":              "warn",
	"translation.provider":            "",
	"tts.provider":                    "",
	"tts.language_fallbacks":          "pl-PL,en-US,de-DE",
	"azure.speech_key":                "",
	"azure.region":                    "",
	"azure.voice_pl":                  "pl-PL-AgnieszkaNeural",
	"azure.voice_en":                  "en-GB-MiaNeural",
	"azure.voice_de":                  "de-DE-MajaNeural",
	"google.credentials_file":         "",
	"google.project":                  "",
	"aws.region":                      "",
	"aws.translate_region":            "",
	"openai.api_key":                  "",
	"openai.base_url":                 "",
	"openai.translate_model":          "gpt-4o-mini",
	"openai.generator_model":          "gpt-4o-mini",
	"gemini.api_key":                  "",
	"gemini.model":                    "gemini-2.0-flash",
	"storage.s3_bucket":               "",
	"storage.s3_region":               "",
	"storage.s3_base_url":             "",
	"storage.prefix":                  "sentence-trainer",
	"storage.local_dir":               "static/audio",
	"storage.public_prefix":           "/static/audio",
	"telegram.token":                  "",
	"telegram.admin_chat_id":          0,
	"generation.batch_retention_days": 90,
}

func init() {
	store = newStore()
	if err := store.Unmarshal(&AppConfig); err != nil {
		logger.Error("failed to apply default config", "error", err)
	}
}

func newStore() *viper.Viper {
	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// LoadConfig reads the JSON config file (when filename is set) on top of
// defaults and environment variables and replaces AppConfig.
func LoadConfig(filename string) error {
	v := newStore()
	if strings.TrimSpace(filename) != "" {
		v.SetConfigFile(filename)
		v.SetConfigType("json")
		if err := v.ReadInConfig(); err != nil {
			logger.Error("failed to read config file", "error", err)
			return err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		logger.Error("failed to decode config file", "error", err)
		return err
	}

	store = v
	AppConfig = cfg
	return nil
}

// Lookup returns a free-form key from the config file or the environment
// (tts_voice_azure_pl is read from TTS_VOICE_AZURE_PL).
func Lookup(key string) string {
	key = strings.ToLower(strings.TrimSpace(key))
	if key == "" {
		return ""
	}
	return strings.TrimSpace(store.GetString(key))
}
