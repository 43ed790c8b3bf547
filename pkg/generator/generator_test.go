package generator

import (
	"context"
	"errors"
	"strings"
	"testing"

	openai "github.com/sashabaranov/go-openai"
	"github.com/smith3v/sentence-trainer/pkg/apperr"
)

type fakeChat struct {
	content  string
	err      error
	requests []openai.ChatCompletionRequest
}

func (f *fakeChat) CreateChatCompletion(_ context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	f.requests = append(f.requests, req)
	if f.err != nil {
		return openai.ChatCompletionResponse{}, f.err
	}
	return openai.ChatCompletionResponse{
		Choices: []openai.ChatCompletionChoice{{Message: openai.ChatCompletionMessage{Content: f.content}}},
	}, nil
}

func TestParseContentShapes(t *testing.T) {
	cases := []struct {
		name    string
		content string
		want    []string
	}{
		{"root list", `["a", {"text": "b"}]`, []string{"a", "b"}},
		{"sentences key", `{"sentences": ["a", {"sentence": "b"}]}`, []string{"a", "b"}},
		{"polish key", `{"lista": ["a", "b"]}`, []string{"a", "b"}},
		{"digit keys", `{"1": "first", "2": "second", "10": "tenth"}`, []string{"first", "second", "tenth"}},
		{"any list field", `{"note": "x", "output": [{"content": "c"}]}`, []string{"c"}},
		{"first list in document order", `{"zeta": ["from zeta"], "alpha": ["from alpha"]}`, []string{"from zeta"}},
		{"numeric text field", `{"sentences": [{"text": 42}, "b"]}`, []string{"42", "b"}},
		{"falsy text field skipped", `{"sentences": [{"text": "", "content": "c"}, {"text": 0, "sentence": 1.5}]}`, []string{"c", "1.5"}},
		{"fenced", "Here you go:\n```json\n{\"items\": [\"x\", \"y\"]}\n```\nEnjoy", []string{"x", "y"}},
		{"prose around", `Sure! {"data": ["one", " ", "two"]} Hope it helps.`, []string{"one", "two"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ParseContent(tc.content)
			if err != nil {
				t.Fatalf("ParseContent returned error: %v", err)
			}
			if strings.Join(got, "|") != strings.Join(tc.want, "|") {
				t.Fatalf("ParseContent = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestParseContentRejects(t *testing.T) {
	for _, content := range []string{`{"note": "x"}`, `not json at all`, `[]`, `{"sentences": [1, 2]}`} {
		if _, err := ParseContent(content); err == nil {
			t.Fatalf("expected error for %q", content)
		}
	}
}

func TestMockGenerator(t *testing.T) {
	result, err := Mock{}.Generate(context.Background(), "Animals in the zoo and their daily routines")
	if err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}
	if len(result.Sentences) != 2 || !result.Fallback {
		t.Fatalf("unexpected mock result: %+v", result)
	}
	if result.Sentences[0] != "Sample sentence 1 (Animals in the zoo and their d)" {
		t.Fatalf("unexpected first sentence %q", result.Sentences[0])
	}
	if _, err := (Mock{}).Generate(context.Background(), "  "); !apperr.IsValidation(err) {
		t.Fatalf("expected validation error for empty prompt, got %v", err)
	}
}

func TestServiceWithoutKeyUsesMock(t *testing.T) {
	result, err := New("", "", "").Generate(context.Background(), "food")
	if err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}
	if !result.Fallback || result.Sentences[1] != "Sample sentence 2 (food)" {
		t.Fatalf("unexpected result: %+v", result)
	}
}

func TestServiceParsesModelReply(t *testing.T) {
	chat := &fakeChat{content: `{"sentences": ["Ich lerne Deutsch.", "Das Wetter ist schön."]}`}
	result, err := NewWithClient(chat, "").Generate(context.Background(), "weather, A2")
	if err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}
	if result.Fallback || len(result.Sentences) != 2 {
		t.Fatalf("unexpected result: %+v", result)
	}
	if result.RawResponse != chat.content {
		t.Fatalf("expected raw response to be kept, got %q", result.RawResponse)
	}

	req := chat.requests[0]
	if req.Model != DefaultModel {
		t.Fatalf("expected default model, got %q", req.Model)
	}
	if req.ResponseFormat == nil || req.ResponseFormat.Type != openai.ChatCompletionResponseFormatTypeJSONObject {
		t.Fatalf("expected JSON response format, got %+v", req.ResponseFormat)
	}
	if req.Messages[1].Content != "weather, A2" {
		t.Fatalf("expected prompt as user message, got %q", req.Messages[1].Content)
	}
}

func TestServiceFallsBackOnBadReply(t *testing.T) {
	chat := &fakeChat{content: "I cannot help with that."}
	result, err := NewWithClient(chat, "gpt-test").Generate(context.Background(), "travel")
	if err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}
	if !result.Fallback || result.RawResponse != "I cannot help with that." {
		t.Fatalf("expected mock result with raw content, got %+v", result)
	}
}

func TestServiceFallsBackOnRequestError(t *testing.T) {
	chat := &fakeChat{err: &openai.APIError{HTTPStatusCode: 429, Message: "rate limited"}}
	result, err := NewWithClient(chat, "").Generate(context.Background(), "travel")
	if err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}
	if !result.Fallback || result.RawResponse != "HTTP 429: rate limited" {
		t.Fatalf("unexpected result: %+v", result)
	}

	chat.err = errors.New("connection refused")
	result, _ = NewWithClient(chat, "").Generate(context.Background(), "travel")
	if result.RawResponse != "connection refused" {
		t.Fatalf("expected transport error as raw response, got %q", result.RawResponse)
	}
}
