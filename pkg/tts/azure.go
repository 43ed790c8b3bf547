package tts

import (
	"bytes"
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/smith3v/sentence-trainer/pkg/apperr"
	"github.com/smith3v/sentence-trainer/pkg/languages"
)

const (
	azureOutputFormat = "audio-24khz-48kbitrate-mono-mp3"
	azureTimeout      = 15 * time.Second
)

var AzureDefaultVoices = map[string]string{
	"pl": "pl-PL-ZofiaNeural",
	"en": "en-US-AriaNeural",
	"de": "de-DE-KatjaNeural",
}

func AzureSynthesizeURL(region string) string {
	return fmt.Sprintf("https://%s.tts.speech.microsoft.com/cognitiveservices/v1", region)
}

type AzureOptions struct {
	Key       string
	Region    string
	Voices    map[string]string
	Overrides map[string]string
	Tokens    *AzureTokenSource
	Client    *http.Client
	// Endpoint replaces the regional synthesis URL.
	Endpoint string
}

type Azure struct {
	voices    map[string]string
	overrides map[string]string
	tokens    *AzureTokenSource
	client    *http.Client
	endpoint  string
}

func NewAzure(opts AzureOptions) (*Azure, error) {
	if strings.TrimSpace(opts.Key) == "" || strings.TrimSpace(opts.Region) == "" {
		return nil, apperr.Processing("Azure Speech is not configured", nil)
	}
	client := opts.Client
	if client == nil {
		client = &http.Client{Timeout: azureTimeout}
	}
	tokens := opts.Tokens
	if tokens == nil {
		tokens = NewAzureTokenSource(opts.Key, opts.Region, client)
	}
	endpoint := opts.Endpoint
	if endpoint == "" {
		endpoint = AzureSynthesizeURL(opts.Region)
	}
	return &Azure{
		voices:    opts.Voices,
		overrides: opts.Overrides,
		tokens:    tokens,
		client:    client,
		endpoint:  endpoint,
	}, nil
}

func (a *Azure) Name() string { return "azure" }

func (a *Azure) VoiceLabel(language string) string {
	voice, _ := a.voiceFor(language)
	return voice
}

// voiceFor returns the voice name and the xml:lang derived from its first
// two dash-separated segments.
func (a *Azure) voiceFor(language string) (string, string) {
	voice := pickVoice(language, a.overrides, a.voices, AzureDefaultVoices)
	if voice == "" {
		voice = AzureDefaultVoices["en"]
	}
	parts := strings.Split(voice, "-")
	if len(parts) >= 2 {
		return voice, parts[0] + "-" + parts[1]
	}
	if tag := languages.Locale(language); tag != "" {
		return voice, tag
	}
	return voice, "en-US"
}

func (a *Azure) Synthesize(ctx context.Context, text, language string) ([]byte, error) {
	cleaned, err := cleanInput(text)
	if err != nil {
		return nil, err
	}
	token, err := a.tokens.Token(ctx)
	if err != nil {
		return nil, err
	}

	voice, lang := a.voiceFor(language)
	ctx, cancel := context.WithTimeout(ctx, azureTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.endpoint, bytes.NewReader(buildSSML(cleaned, voice, lang)))
	if err != nil {
		return nil, apperr.Processing("failed to build Azure TTS request", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/ssml+xml")
	req.Header.Set("X-Microsoft-OutputFormat", azureOutputFormat)
	req.Header.Set("User-Agent", "SentenceTrainer/1.0")

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, apperr.Processing("Azure TTS request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return nil, apperr.Processing(fmt.Sprintf("Azure TTS returned status %d", resp.StatusCode), nil)
	}
	audio, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, apperr.Processing("failed to read Azure TTS audio", err)
	}
	return audio, nil
}

func buildSSML(text, voice, lang string) []byte {
	var escaped bytes.Buffer
	_ = xml.EscapeText(&escaped, []byte(text))
	return []byte(fmt.Sprintf(
		"<speak version='1.0' xml:lang='%s'><voice xml:lang='%s' name='%s'>%s</voice></speak>",
		lang, lang, voice, escaped.String(),
	))
}
