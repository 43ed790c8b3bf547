package db

import (
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	SettingTranslationProvider = "translation_provider"
	SettingTTSProvider         = "tts_provider"
)

// VoiceSettingKey names the per-provider voice override, e.g. tts_voice_azure_pl.
func VoiceSettingKey(provider, language string) string {
	return "tts_voice_" + strings.ToLower(provider) + "_" + strings.ToLower(language)
}

// GetSetting returns the stored value or "" when the key is unset.
func GetSetting(gdb *gorm.DB, key string) (string, error) {
	if gdb == nil {
		return "", nil
	}
	var setting AppSetting
	err := gdb.Where(&AppSetting{Key: key}).First(&setting).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	if setting.Value == nil {
		return "", nil
	}
	return *setting.Value, nil
}

// SetSetting upserts key. An empty value removes the key.
func SetSetting(gdb *gorm.DB, key, value string) error {
	value = strings.TrimSpace(value)
	if value == "" {
		return gdb.Delete(&AppSetting{Key: key}).Error
	}
	setting := AppSetting{Key: key, Value: &value, UpdatedAt: time.Now().UTC()}
	return gdb.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&setting).Error
}
