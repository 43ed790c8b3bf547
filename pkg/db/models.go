// pkg/db/models.go
package db

import (
	"time"

	"gorm.io/datatypes"
)

const (
	SharedStatusDraft      = "draft"
	SharedStatusTranslated = "translated"
)

var Difficulties = []string{"beginner", "intermediate", "advanced"}

func IsDifficulty(value string) bool {
	for _, d := range Difficulties {
		if d == value {
			return true
		}
	}
	return false
}

type StudentAccount struct {
	ID           uint       `gorm:"primaryKey"`
	Username     string     `gorm:"size:80;not null;uniqueIndex"`
	PasswordHash string     `gorm:"size:255;not null"`
	IsAdmin      bool       `gorm:"not null;default:false"`
	CreatedAt    time.Time  `gorm:"not null"`
	Sentences    []Sentence `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
}

func (StudentAccount) TableName() string {
	return "lp_students"
}

type Sentence struct {
	ID                  uint      `gorm:"primaryKey" json:"id"`
	UserID              uint      `gorm:"not null;index:ix_lp_sentences_user_created,priority:1" json:"user_id"`
	SourceLanguage      string    `gorm:"size:2;not null" json:"source_language"`
	SourceText          string    `gorm:"type:text;not null" json:"source_text"`
	TargetLanguage1     string    `gorm:"column:target_language_1;size:2;not null;check:ck_targets_unique,target_language_1 <> target_language_2" json:"target_language_1"`
	TargetLanguage2     string    `gorm:"column:target_language_2;size:2;not null" json:"target_language_2"`
	TranslatedText1     string    `gorm:"column:translated_text_1;type:text;not null" json:"translated_text_1"`
	TranslatedText2     string    `gorm:"column:translated_text_2;type:text;not null" json:"translated_text_2"`
	AudioURLSource      *string   `gorm:"column:audio_url_source;size:512" json:"audio_url_source"`
	AudioURL1           *string   `gorm:"column:audio_url_1;size:512" json:"audio_url_1"`
	AudioURL2           *string   `gorm:"column:audio_url_2;size:512" json:"audio_url_2"`
	TranslationProvider string    `gorm:"size:32" json:"translation_provider"`
	TTSProvider         string    `gorm:"column:tts_provider;size:32" json:"tts_provider"`
	TTSVoiceSource      string    `gorm:"column:tts_voice_source;size:128" json:"tts_voice_source"`
	TTSVoice1           string    `gorm:"column:tts_voice_1;size:128" json:"tts_voice_1"`
	TTSVoice2           string    `gorm:"column:tts_voice_2;size:128" json:"tts_voice_2"`
	CreatedAt           time.Time `gorm:"not null;index:ix_lp_sentences_user_created,priority:2" json:"created_at"`
	UpdatedAt           time.Time `gorm:"not null" json:"updated_at"`
}

func (Sentence) TableName() string {
	return "lp_sentences"
}

type SharedSentence struct {
	ID                  uint      `gorm:"primaryKey" json:"id"`
	Prompt              string    `gorm:"type:text;not null" json:"prompt"`
	Difficulty          string    `gorm:"size:16;not null;index" json:"difficulty"`
	SourceLanguage      string    `gorm:"size:2;not null" json:"source_language"`
	SourceText          string    `gorm:"type:text;not null" json:"source_text"`
	TargetLanguage1     string    `gorm:"column:target_language_1;size:2;not null;check:ck_shared_targets_unique,target_language_1 <> target_language_2" json:"target_language_1"`
	TargetLanguage2     string    `gorm:"column:target_language_2;size:2;not null" json:"target_language_2"`
	TranslatedText1     string    `gorm:"column:translated_text_1;type:text;not null;default:''" json:"translated_text_1"`
	TranslatedText2     string    `gorm:"column:translated_text_2;type:text;not null;default:''" json:"translated_text_2"`
	AudioURLSource      *string   `gorm:"column:audio_url_source;size:512" json:"audio_url_source"`
	AudioURL1           *string   `gorm:"column:audio_url_1;size:512" json:"audio_url_1"`
	AudioURL2           *string   `gorm:"column:audio_url_2;size:512" json:"audio_url_2"`
	TranslationProvider string    `gorm:"size:32" json:"translation_provider"`
	TTSProvider         string    `gorm:"column:tts_provider;size:32" json:"tts_provider"`
	TTSVoiceSource      string    `gorm:"column:tts_voice_source;size:128" json:"tts_voice_source"`
	TTSVoice1           string    `gorm:"column:tts_voice_1;size:128" json:"tts_voice_1"`
	TTSVoice2           string    `gorm:"column:tts_voice_2;size:128" json:"tts_voice_2"`
	Status              string    `gorm:"size:16;not null;default:draft;index" json:"status"`
	CreatedBy           *uint     `json:"created_by"`
	BatchID             *uint     `gorm:"index" json:"batch_id"`
	CreatedAt           time.Time `gorm:"not null;index" json:"created_at"`
	UpdatedAt           time.Time `gorm:"not null" json:"updated_at"`
}

func (SharedSentence) TableName() string {
	return "lp_shared_sentences"
}

// GenerationBatch records one LLM generation call for the admin audit view.
type GenerationBatch struct {
	ID             uint           `gorm:"primaryKey"`
	Prompt         string         `gorm:"type:text;not null"`
	Difficulty     string         `gorm:"size:16;not null"`
	SourceLanguage string         `gorm:"size:2;not null"`
	Sentences      datatypes.JSON `gorm:"not null"`
	RawResponse    string         `gorm:"type:text"`
	UsedFallback   bool           `gorm:"not null;default:false"`
	CreatedBy      *uint
	CreatedAt      time.Time `gorm:"not null;index"`
}

func (GenerationBatch) TableName() string {
	return "lp_generation_batches"
}

type AppSetting struct {
	Key       string  `gorm:"primaryKey;size:64"`
	Value     *string `gorm:"size:255"`
	UpdatedAt time.Time
}

func (AppSetting) TableName() string {
	return "lp_app_settings"
}

// AllModels lists every table managed by AutoMigrate.
func AllModels() []any {
	return []any{&StudentAccount{}, &Sentence{}, &SharedSentence{}, &GenerationBatch{}, &AppSetting{}}
}
