package notify

import (
	"context"
	"fmt"
	"strings"

	telegram "github.com/go-telegram/bot"
	"github.com/smith3v/sentence-trainer/pkg/config"
	"github.com/smith3v/sentence-trainer/pkg/db"
	"github.com/smith3v/sentence-trainer/pkg/logger"
)

// Notifier delivers short admin notices. Delivery failures are reported to
// the caller, which logs and continues.
type Notifier interface {
	Notify(ctx context.Context, message string) error
}

type Nop struct{}

func (Nop) Notify(context.Context, string) error { return nil }

// Telegram posts notices to a single admin chat.
type Telegram struct {
	bot    *telegram.Bot
	chatID int64
}

func NewTelegram(token string, chatID int64, opts ...telegram.Option) (*Telegram, error) {
	opts = append([]telegram.Option{telegram.WithSkipGetMe()}, opts...)
	b, err := telegram.New(token, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create telegram bot: %w", err)
	}
	return &Telegram{bot: b, chatID: chatID}, nil
}

func (t *Telegram) Notify(ctx context.Context, message string) error {
	_, err := t.bot.SendMessage(ctx, &telegram.SendMessageParams{
		ChatID: t.chatID,
		Text:   message,
	})
	if err != nil {
		return fmt.Errorf("failed to send telegram notice: %w", err)
	}
	return nil
}

// FromConfig returns a Telegram notifier when both token and admin chat are
// configured and Nop otherwise.
func FromConfig(cfg config.TelegramConfig) Notifier {
	if strings.TrimSpace(cfg.Token) == "" || cfg.AdminChatID == 0 {
		return Nop{}
	}
	n, err := NewTelegram(cfg.Token, cfg.AdminChatID)
	if err != nil {
		logger.Warn("telegram notifications disabled", "error", err)
		return Nop{}
	}
	return n
}

// Send delivers message and only logs failures.
func Send(ctx context.Context, n Notifier, message string) {
	if n == nil {
		return
	}
	if err := n.Notify(ctx, message); err != nil {
		logger.Warn("failed to deliver admin notice", "error", err)
	}
}

func BatchGeneratedMessage(batch *db.GenerationBatch, created int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Generated %d %s draft sentence(s) in %s", created, batch.Difficulty, batch.SourceLanguage)
	if batch.UsedFallback {
		b.WriteString(" using the mock generator")
	}
	fmt.Fprintf(&b, ".\nPrompt: %s", truncate(batch.Prompt, 200))
	return b.String()
}

func SharedTranslatedMessage(shared *db.SharedSentence) string {
	return fmt.Sprintf("Shared sentence #%d translated (%s → %s, %s).\n%s",
		shared.ID, shared.SourceLanguage, shared.TargetLanguage1, shared.TargetLanguage2, truncate(shared.SourceText, 200))
}

func truncate(text string, limit int) string {
	runes := []rune(strings.TrimSpace(text))
	if len(runes) <= limit {
		return string(runes)
	}
	return string(runes[:limit]) + "…"
}
