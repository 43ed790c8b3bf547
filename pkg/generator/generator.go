package generator

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"github.com/smith3v/sentence-trainer/pkg/apperr"
	"github.com/smith3v/sentence-trainer/pkg/logger"
	"github.com/smith3v/sentence-trainer/pkg/metrics"
	"github.com/smith3v/sentence-trainer/pkg/translation"
)

const (
	DefaultModel     = openai.GPT4oMini
	generatorTimeout = 30 * time.Second
	temperature      = 0.4
	systemPrompt     = `Return only JSON with a list of sentences under the root key "sentences".`
)

// Result is one generation outcome. RawResponse keeps whatever the model
// returned, also when the sentences come from the mock.
type Result struct {
	Sentences   []string
	RawResponse string
	Fallback    bool
}

type Generator interface {
	Generate(ctx context.Context, prompt string) (Result, error)
}

type ChatClient interface {
	CreateChatCompletion(ctx context.Context, request openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// Mock produces two placeholder sentences derived from the prompt.
type Mock struct{}

func (Mock) Generate(_ context.Context, prompt string) (Result, error) {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return Result{}, apperr.Validation("prompt must not be empty")
	}
	return mockResult(prompt, "fallback: mock generator"), nil
}

func mockResult(prompt, raw string) Result {
	label := prompt
	if runes := []rune(label); len(runes) > 30 {
		label = string(runes[:30])
	}
	if label == "" {
		label = "sentence"
	}
	return Result{
		Sentences: []string{
			fmt.Sprintf("Sample sentence 1 (%s)", label),
			fmt.Sprintf("Sample sentence 2 (%s)", label),
		},
		RawResponse: raw,
		Fallback:    true,
	}
}

// Service asks an OpenAI-compatible chat model for sentences. Without a
// client every call is answered by the mock.
type Service struct {
	client ChatClient
	model  string
}

func New(apiKey, baseURL, model string) *Service {
	if strings.TrimSpace(apiKey) == "" {
		return &Service{model: model}
	}
	return NewWithClient(translation.NewOpenAIClient(apiKey, baseURL), model)
}

func NewWithClient(client ChatClient, model string) *Service {
	if strings.TrimSpace(model) == "" {
		model = DefaultModel
	}
	return &Service{client: client, model: model}
}

func (s *Service) Generate(ctx context.Context, prompt string) (Result, error) {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return Result{}, apperr.Validation("prompt must not be empty")
	}
	if s.client == nil {
		logger.Warn("generator has no API key, using mock generator")
		return mockResult(prompt, "fallback: mock generator"), nil
	}

	callCtx, cancel := context.WithTimeout(ctx, generatorTimeout)
	defer cancel()

	started := time.Now()
	resp, err := s.client.CreateChatCompletion(callCtx, openai.ChatCompletionRequest{
		Model:       s.model,
		Temperature: temperature,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	})
	metrics.ObserveProviderCall(metrics.KindGenerator, "openai", started, err)
	if err != nil {
		raw := err.Error()
		var apiErr *openai.APIError
		if errors.As(err, &apiErr) {
			raw = fmt.Sprintf("HTTP %d: %s", apiErr.HTTPStatusCode, apiErr.Message)
		}
		logger.Warn("generator request failed, using mock generator", "model", s.model, "error", err)
		metrics.RecordFallback(metrics.KindGenerator, "openai")
		return mockResult(prompt, raw), nil
	}
	if len(resp.Choices) == 0 {
		logger.Warn("generator returned no choices, using mock generator", "model", s.model)
		metrics.RecordFallback(metrics.KindGenerator, "openai")
		return mockResult(prompt, ""), nil
	}

	content := resp.Choices[0].Message.Content
	sentences, err := ParseContent(content)
	if err != nil {
		logger.Warn("generator response could not be parsed, using mock generator", "error", err)
		metrics.RecordFallback(metrics.KindGenerator, "openai")
		return mockResult(prompt, content), nil
	}
	return Result{Sentences: sentences, RawResponse: content}, nil
}
