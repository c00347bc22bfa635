package notify

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"golang.org/x/time/rate"

	"gighunt-engine/internal/domain"
)

var ErrNoChat = errors.New("notify: telegram chat id is not set")

type TelegramConfig struct {
	Token    string
	ChatID   int64
	Spacing  time.Duration // minimum gap between messages
	Endpoint string        // bot API endpoint format; empty = api.telegram.org
}

type Telegram struct {
	bot    *tgbotapi.BotAPI
	chatID int64
	lim    *rate.Limiter
	log    *slog.Logger
}

func NewTelegram(cfg TelegramConfig, log *slog.Logger) (*Telegram, error) {
	if cfg.ChatID == 0 {
		return nil, ErrNoChat
	}
	if log == nil {
		log = slog.Default()
	}

	var (
		bot *tgbotapi.BotAPI
		err error
	)
	if cfg.Endpoint != "" {
		bot, err = tgbotapi.NewBotAPIWithAPIEndpoint(cfg.Token, cfg.Endpoint)
	} else {
		bot, err = tgbotapi.NewBotAPI(cfg.Token)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to init telegram bot: %w", err)
	}

	every := rate.Inf
	if cfg.Spacing > 0 {
		every = rate.Every(cfg.Spacing)
	}
	return &Telegram{
		bot:    bot,
		chatID: cfg.ChatID,
		lim:    rate.NewLimiter(every, 1),
		log:    log,
	}, nil
}

// SendText sends one HTML message, waiting for the spacing interval first.
func (t *Telegram) SendText(ctx context.Context, text string) error {
	if err := t.lim.Wait(ctx); err != nil {
		return err
	}
	msg := tgbotapi.NewMessage(t.chatID, LimitMessage(text))
	msg.ParseMode = tgbotapi.ModeHTML
	msg.DisableWebPagePreview = true
	_, err := t.bot.Send(msg)
	return err
}

func (t *Telegram) Notify(ctx context.Context, alerts []domain.ScoredPosting) (int, error) {
	sent := 0
	for _, a := range alerts {
		if err := t.SendText(ctx, FormatAlert(a)); err != nil {
			t.log.ErrorContext(ctx, "telegram send failed",
				"category", "notify_failed", "fingerprint", a.Fingerprint, "link", a.Posting.Link, "error", err)
			return sent, fmt.Errorf("telegram send: %w", err)
		}
		sent++
		t.log.InfoContext(ctx, "alert sent",
			"fingerprint", a.Fingerprint, "title", a.Posting.Title,
			"recommendation", a.Score.Recommendation, "difficulty", a.Score.Difficulty)
	}
	return sent, nil
}

func (t *Telegram) NotifySummary(ctx context.Context, s Summary) error {
	return t.SendText(ctx, FormatSummary(s))
}
