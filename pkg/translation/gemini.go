package translation

import (
	"context"
	"strings"
	"time"

	"github.com/smith3v/sentence-trainer/pkg/apperr"
	"google.golang.org/genai"
)

const (
	geminiTimeout      = 15 * time.Second
	DefaultGeminiModel = "gemini-2.0-flash"
)

// GeminiModels is satisfied by (*genai.Client).Models.
type GeminiModels interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

type Gemini struct {
	models GeminiModels
	model  string
}

// NewGeminiModels creates a Gemini API client. The client is safe for
// concurrent use and is meant to be shared.
func NewGeminiModels(ctx context.Context, apiKey string) (GeminiModels, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, apperr.Processing("Gemini API key is missing", nil)
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, apperr.Processing("failed to create Gemini client", err)
	}
	return client.Models, nil
}

func NewGeminiWithModels(models GeminiModels, model string) *Gemini {
	if strings.TrimSpace(model) == "" {
		model = DefaultGeminiModel
	}
	return &Gemini{models: models, model: model}
}

func (t *Gemini) Name() string { return "gemini" }

func (t *Gemini) Translate(ctx context.Context, text, source, target string) (string, error) {
	cleaned, err := cleanInput(text)
	if err != nil {
		return "", err
	}
	if source == target {
		return cleaned, nil
	}

	ctx, cancel := context.WithTimeout(ctx, geminiTimeout)
	defer cancel()

	temperature := float32(openAITemperature)
	resp, err := t.models.GenerateContent(ctx, t.model, genai.Text(translationPrompt(cleaned, source, target)), &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(translatorSystemPrompt, genai.RoleUser),
		Temperature:       &temperature,
	})
	if err != nil {
		return "", apperr.Processing("Gemini request failed", err)
	}
	translated := strings.TrimSpace(resp.Text())
	if translated == "" {
		return "", apperr.Processing("Gemini returned an empty translation", nil)
	}
	return translated, nil
}
