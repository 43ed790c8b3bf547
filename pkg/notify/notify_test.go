package notify

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"strings"
	"testing"
	"time"

	telegram "github.com/go-telegram/bot"
	"github.com/smith3v/sentence-trainer/pkg/config"
	"github.com/smith3v/sentence-trainer/pkg/db"
)

type recordedRequest struct {
	path        string
	contentType string
	body        []byte
}

type mockClient struct {
	requests []recordedRequest
	response string
	status   int
}

func newMockClient() *mockClient {
	return &mockClient{
		response: `{"ok":true,"result":{}}`,
		status:   http.StatusOK,
	}
}

func (m *mockClient) Do(req *http.Request) (*http.Response, error) {
	body, err := io.ReadAll(req.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read request body: %w", err)
	}
	if err := req.Body.Close(); err != nil {
		return nil, fmt.Errorf("failed to close request body: %w", err)
	}
	m.requests = append(m.requests, recordedRequest{
		path:        req.URL.Path,
		contentType: req.Header.Get("Content-Type"),
		body:        body,
	})
	return &http.Response{
		StatusCode: m.status,
		Body:       io.NopCloser(strings.NewReader(m.response)),
		Header:     make(http.Header),
	}, nil
}

func (m *mockClient) lastField(t *testing.T, name string) string {
	t.Helper()
	if len(m.requests) == 0 {
		t.Fatalf("expected at least one recorded request")
	}
	req := m.requests[len(m.requests)-1]

	mediaType, params, err := mime.ParseMediaType(req.contentType)
	if err != nil {
		t.Fatalf("failed to parse media type: %v", err)
	}
	if !strings.HasPrefix(mediaType, "multipart/") {
		t.Fatalf("unexpected media type: %s", mediaType)
	}

	reader := multipart.NewReader(bytes.NewReader(req.body), params["boundary"])
	for {
		part, err := reader.NextPart()
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("failed to read multipart part: %v", err)
		}
		if part.FormName() == name {
			data, err := io.ReadAll(part)
			if err != nil {
				t.Fatalf("failed to read %s part: %v", name, err)
			}
			return string(data)
		}
	}
	t.Fatalf("%s field not found in request", name)
	return ""
}

func TestTelegramNotify(t *testing.T) {
	client := newMockClient()
	n, err := NewTelegram("test-token", 4242, telegram.WithHTTPClient(time.Second, client))
	if err != nil {
		t.Fatalf("NewTelegram returned error: %v", err)
	}

	if err := n.Notify(context.Background(), "batch ready"); err != nil {
		t.Fatalf("Notify returned error: %v", err)
	}
	if len(client.requests) != 1 {
		t.Fatalf("expected one request, got %d", len(client.requests))
	}
	if !strings.HasSuffix(client.requests[0].path, "/sendMessage") {
		t.Fatalf("unexpected request path %q", client.requests[0].path)
	}
	if got := client.lastField(t, "text"); got != "batch ready" {
		t.Fatalf("unexpected text %q", got)
	}
	if got := client.lastField(t, "chat_id"); got != "4242" {
		t.Fatalf("unexpected chat id %q", got)
	}
}

func TestTelegramNotifyError(t *testing.T) {
	client := newMockClient()
	client.status = http.StatusBadRequest
	client.response = `{"ok":false,"error_code":400,"description":"Bad Request: chat not found"}`
	n, err := NewTelegram("test-token", 1, telegram.WithHTTPClient(time.Second, client))
	if err != nil {
		t.Fatalf("NewTelegram returned error: %v", err)
	}
	if err := n.Notify(context.Background(), "hello"); err == nil {
		t.Fatal("expected an error for a rejected message")
	}
}

func TestFromConfig(t *testing.T) {
	if _, ok := FromConfig(config.TelegramConfig{}).(Nop); !ok {
		t.Fatal("expected Nop without a token")
	}
	if _, ok := FromConfig(config.TelegramConfig{Token: "x"}).(Nop); !ok {
		t.Fatal("expected Nop without an admin chat")
	}
	if _, ok := FromConfig(config.TelegramConfig{Token: "x", AdminChatID: 7}).(*Telegram); !ok {
		t.Fatal("expected Telegram notifier when fully configured")
	}
}

func TestMessages(t *testing.T) {
	batch := &db.GenerationBatch{Prompt: "food", Difficulty: "beginner", SourceLanguage: "pl", UsedFallback: true}
	msg := BatchGeneratedMessage(batch, 2)
	if !strings.Contains(msg, "Generated 2 beginner") || !strings.Contains(msg, "mock generator") {
		t.Fatalf("unexpected batch message %q", msg)
	}

	shared := &db.SharedSentence{ID: 3, SourceLanguage: "de", TargetLanguage1: "pl", TargetLanguage2: "en", SourceText: "Hallo"}
	if msg := SharedTranslatedMessage(shared); !strings.Contains(msg, "#3") || !strings.Contains(msg, "Hallo") {
		t.Fatalf("unexpected shared message %q", msg)
	}

	if got := truncate(strings.Repeat("a", 5), 3); got != "aaa…" {
		t.Fatalf("unexpected truncation %q", got)
	}
}
