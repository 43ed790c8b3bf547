package tts

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/smith3v/sentence-trainer/pkg/apperr"
)

// AzureTokenTTL is shorter than the ten minutes Azure grants a token.
const AzureTokenTTL = 9 * time.Minute

func AzureTokenURL(region string) string {
	return fmt.Sprintf("https://%s.api.cognitive.microsoft.com/sts/v1.0/issueToken", region)
}

// AzureTokenSource issues bearer tokens and reuses them until they expire.
type AzureTokenSource struct {
	key    string
	url    string
	client *http.Client
	now    func() time.Time

	mu     sync.Mutex
	token  string
	expiry time.Time
}

func NewAzureTokenSource(key, region string, client *http.Client) *AzureTokenSource {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &AzureTokenSource{key: key, url: AzureTokenURL(region), client: client, now: time.Now}
}

func (s *AzureTokenSource) Token(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.token != "" && s.now().Before(s.expiry) {
		return s.token, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, nil)
	if err != nil {
		return "", apperr.Processing("failed to build Azure token request", err)
	}
	req.Header.Set("Ocp-Apim-Subscription-Key", s.key)

	resp, err := s.client.Do(req)
	if err != nil {
		return "", apperr.Processing("failed to fetch Azure TTS token", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", apperr.Processing("failed to read Azure TTS token", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", apperr.Processing(fmt.Sprintf("failed to fetch Azure TTS token (status %d)", resp.StatusCode), nil)
	}

	s.token = strings.TrimSpace(string(body))
	s.expiry = s.now().Add(AzureTokenTTL)
	return s.token, nil
}
