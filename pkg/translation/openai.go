package translation

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"
	"github.com/smith3v/sentence-trainer/pkg/apperr"
	"github.com/smith3v/sentence-trainer/pkg/languages"
)

const (
	openAITimeout      = 15 * time.Second
	openAITemperature  = 0.2
	DefaultOpenAIModel = openai.GPT4oMini
)

const translatorSystemPrompt = "You are a translator. Return only the translation without any commentary. " +
	"Keep the original punctuation and do not add anything of your own."

// ChatClient is the part of the go-openai client used here.
type ChatClient interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

type OpenAI struct {
	client ChatClient
	model  string
}

// NewOpenAIClient builds a go-openai client. baseURL may be either the API
// root or the full chat completions endpoint.
func NewOpenAIClient(apiKey, baseURL string) *openai.Client {
	cfg := openai.DefaultConfig(apiKey)
	if base := strings.TrimSpace(baseURL); base != "" {
		cfg.BaseURL = strings.TrimSuffix(strings.TrimSuffix(base, "/"), "/chat/completions")
	}
	return openai.NewClientWithConfig(cfg)
}

func NewOpenAI(apiKey, baseURL, model string) (*OpenAI, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, apperr.Processing("OpenAI API key is missing", nil)
	}
	return NewOpenAIWithClient(NewOpenAIClient(apiKey, baseURL), model), nil
}

func NewOpenAIWithClient(client ChatClient, model string) *OpenAI {
	if strings.TrimSpace(model) == "" {
		model = DefaultOpenAIModel
	}
	return &OpenAI{client: client, model: model}
}

func (t *OpenAI) Name() string { return "openai" }

func (t *OpenAI) Translate(ctx context.Context, text, source, target string) (string, error) {
	cleaned, err := cleanInput(text)
	if err != nil {
		return "", err
	}
	if source == target {
		return cleaned, nil
	}

	ctx, cancel := context.WithTimeout(ctx, openAITimeout)
	defer cancel()

	resp, err := t.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: t.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: translatorSystemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: translationPrompt(cleaned, source, target)},
		},
		Temperature: openAITemperature,
	})
	if err != nil {
		var apiErr *openai.APIError
		if errors.As(err, &apiErr) {
			return "", apperr.Processing(fmt.Sprintf("OpenAI returned an error (status %d)", apiErr.HTTPStatusCode), err)
		}
		return "", apperr.Processing("OpenAI connection failed", err)
	}
	if len(resp.Choices) == 0 {
		return "", apperr.Processing("OpenAI returned no choices", nil)
	}
	translated := strings.TrimSpace(resp.Choices[0].Message.Content)
	if translated == "" {
		return "", apperr.Processing("OpenAI returned an empty translation", nil)
	}
	return translated, nil
}

func translationPrompt(text, source, target string) string {
	return fmt.Sprintf("Translate the text from %s (%s) to %s (%s): %s",
		languages.Name(source), source, languages.Name(target), target, text)
}
