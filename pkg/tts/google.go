package tts

import (
	"context"
	"strings"
	"time"

	texttospeech "cloud.google.com/go/texttospeech/apiv1"
	"cloud.google.com/go/texttospeech/apiv1/texttospeechpb"
	"github.com/googleapis/gax-go/v2"
	"github.com/smith3v/sentence-trainer/pkg/apperr"
	"github.com/smith3v/sentence-trainer/pkg/languages"
	"google.golang.org/api/option"
)

const googleTimeout = 20 * time.Second

var GoogleDefaultVoices = map[string]string{
	"pl": "pl-PL-Wavenet-E",
	"en": "en-US-Wavenet-D",
	"de": "de-DE-Wavenet-B",
}

// GoogleSpeechClient is satisfied by *texttospeech.Client.
type GoogleSpeechClient interface {
	SynthesizeSpeech(context.Context, *texttospeechpb.SynthesizeSpeechRequest, ...gax.CallOption) (*texttospeechpb.SynthesizeSpeechResponse, error)
}

// NewGoogleClient creates a Text-to-Speech client, using credentialsFile
// when set and application default credentials otherwise.
func NewGoogleClient(ctx context.Context, credentialsFile string) (*texttospeech.Client, error) {
	var opts []option.ClientOption
	if strings.TrimSpace(credentialsFile) != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}
	client, err := texttospeech.NewClient(ctx, opts...)
	if err != nil {
		return nil, apperr.Processing("failed to create Google Text-to-Speech client", err)
	}
	return client, nil
}

type Google struct {
	client    GoogleSpeechClient
	fallbacks []string
	overrides map[string]string
}

// NewGoogle takes the comma-separated locale list used when a language has
// no fixed locale mapping.
func NewGoogle(client GoogleSpeechClient, languageFallbacks string, overrides map[string]string) *Google {
	var fallbacks []string
	for _, tag := range strings.Split(languageFallbacks, ",") {
		if tag = strings.TrimSpace(tag); tag != "" {
			fallbacks = append(fallbacks, tag)
		}
	}
	return &Google{client: client, fallbacks: fallbacks, overrides: overrides}
}

func (g *Google) Name() string { return "google" }

func (g *Google) VoiceLabel(language string) string {
	if voice := pickVoice(language, g.overrides, GoogleDefaultVoices); voice != "" {
		return voice
	}
	return GoogleDefaultVoices["en"]
}

func (g *Google) languageTag(language string) string {
	if tag := languages.Locale(language); tag != "" {
		return tag
	}
	if len(g.fallbacks) > 0 {
		return g.fallbacks[0]
	}
	return "en-US"
}

func (g *Google) Synthesize(ctx context.Context, text, language string) ([]byte, error) {
	cleaned, err := cleanInput(text)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, googleTimeout)
	defer cancel()

	resp, err := g.client.SynthesizeSpeech(ctx, &texttospeechpb.SynthesizeSpeechRequest{
		Input: &texttospeechpb.SynthesisInput{
			InputSource: &texttospeechpb.SynthesisInput_Text{Text: cleaned},
		},
		Voice: &texttospeechpb.VoiceSelectionParams{
			LanguageCode: g.languageTag(language),
			Name:         g.VoiceLabel(language),
			SsmlGender:   texttospeechpb.SsmlVoiceGender_NEUTRAL,
		},
		AudioConfig: &texttospeechpb.AudioConfig{
			AudioEncoding: texttospeechpb.AudioEncoding_MP3,
		},
	})
	if err != nil {
		return nil, apperr.Processing("Google TTS request failed", err)
	}
	return resp.GetAudioContent(), nil
}
