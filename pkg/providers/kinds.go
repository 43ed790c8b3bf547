package providers

import "strings"

type TranslationKind string

const (
	TranslationMock   TranslationKind = "mock"
	TranslationAWS    TranslationKind = "aws"
	TranslationOpenAI TranslationKind = "openai"
	TranslationGemini TranslationKind = "gemini"
)

var TranslationKinds = []TranslationKind{TranslationAWS, TranslationOpenAI, TranslationGemini, TranslationMock}

func ParseTranslationKind(value string) (TranslationKind, bool) {
	kind := TranslationKind(strings.ToLower(strings.TrimSpace(value)))
	for _, known := range TranslationKinds {
		if kind == known {
			return kind, true
		}
	}
	return TranslationMock, false
}

type TTSKind string

const (
	TTSMock   TTSKind = "mock"
	TTSAzure  TTSKind = "azure"
	TTSGoogle TTSKind = "google"
)

var TTSKinds = []TTSKind{TTSAzure, TTSGoogle, TTSMock}

func ParseTTSKind(value string) (TTSKind, bool) {
	kind := TTSKind(strings.ToLower(strings.TrimSpace(value)))
	for _, known := range TTSKinds {
		if kind == known {
			return kind, true
		}
	}
	return TTSMock, false
}
