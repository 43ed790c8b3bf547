package tts

import "context"

type Mock struct{}

func (Mock) Name() string { return "mock" }

func (Mock) VoiceLabel(string) string { return "mock" }

func (Mock) Synthesize(_ context.Context, text, language string) ([]byte, error) {
	cleaned, err := cleanInput(text)
	if err != nil {
		return nil, err
	}
	return []byte("MOCK::" + language + "::" + cleaned), nil
}
