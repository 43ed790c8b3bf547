package tts

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/smith3v/sentence-trainer/pkg/apperr"
	"github.com/smith3v/sentence-trainer/pkg/languages"
)

const VoiceCacheTTL = 10 * time.Minute

// Voice mirrors one entry of the Azure voices/list response.
type Voice struct {
	Name        string `json:"Name"`
	DisplayName string `json:"DisplayName"`
	LocalName   string `json:"LocalName"`
	ShortName   string `json:"ShortName"`
	Gender      string `json:"Gender"`
	Locale      string `json:"Locale"`
	LocaleName  string `json:"LocaleName"`
	VoiceType   string `json:"VoiceType"`
}

type VoiceFetcher func(ctx context.Context) ([]Voice, error)

// VoiceCatalog caches the last fetched voice list for a fixed TTL.
type VoiceCatalog struct {
	fetch VoiceFetcher
	ttl   time.Duration
	now   func() time.Time

	mu        sync.Mutex
	voices    []Voice
	fetchedAt time.Time
}

func NewVoiceCatalog(fetch VoiceFetcher, ttl time.Duration) *VoiceCatalog {
	if ttl <= 0 {
		ttl = VoiceCacheTTL
	}
	return &VoiceCatalog{fetch: fetch, ttl: ttl, now: time.Now}
}

// Fresh reports whether the cached list can still be served at now.
func (c *VoiceCatalog) Fresh(now time.Time) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.freshLocked(now)
}

func (c *VoiceCatalog) freshLocked(now time.Time) bool {
	return len(c.voices) > 0 && now.Sub(c.fetchedAt) < c.ttl
}

func (c *VoiceCatalog) Voices(ctx context.Context) ([]Voice, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	if c.freshLocked(now) {
		return c.voices, nil
	}
	voices, err := c.fetch(ctx)
	if err != nil {
		return nil, err
	}
	c.voices = voices
	c.fetchedAt = now
	return voices, nil
}

func AzureVoicesURL(region string) string {
	return fmt.Sprintf("https://%s.tts.speech.microsoft.com/cognitiveservices/voices/list", region)
}

// AzureVoiceFetcher lists voices using the subscription key directly.
func AzureVoiceFetcher(key, url string, client *http.Client) VoiceFetcher {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return func(ctx context.Context) ([]Voice, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, apperr.Processing("failed to build Azure voice list request", err)
		}
		req.Header.Set("Ocp-Apim-Subscription-Key", key)
		resp, err := client.Do(req)
		if err != nil {
			return nil, apperr.Processing("failed to fetch Azure voice list", err)
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			return nil, apperr.Processing(fmt.Sprintf("failed to fetch Azure voice list (status %d)", resp.StatusCode), nil)
		}
		var voices []Voice
		if err := json.NewDecoder(resp.Body).Decode(&voices); err != nil {
			return nil, apperr.Processing("failed to decode Azure voice list", err)
		}
		return voices, nil
	}
}

// GroupByLanguage buckets voices by supported language code using the
// locale prefix, sorted by display name.
func GroupByLanguage(voices []Voice) map[string][]Voice {
	grouped := make(map[string][]Voice, len(languages.Supported))
	for _, code := range languages.Supported {
		grouped[code] = nil
	}
	for _, voice := range voices {
		locale := strings.ToLower(voice.Locale)
		for _, code := range languages.Supported {
			if strings.HasPrefix(locale, code) {
				grouped[code] = append(grouped[code], voice)
			}
		}
	}
	for code := range grouped {
		list := grouped[code]
		sort.Slice(list, func(i, j int) bool {
			return strings.ToLower(list[i].DisplayName) < strings.ToLower(list[j].DisplayName)
		})
	}
	return grouped
}
