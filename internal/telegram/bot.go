// Package telegram runs the long-polling bot that answers position queries
// and delivers alerts to the configured chat.
package telegram

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/alxparaschiv/All-Whale-Tracker-Bot/internal/metrics"
	"github.com/alxparaschiv/All-Whale-Tracker-Bot/internal/positions"
	"github.com/alxparaschiv/All-Whale-Tracker-Bot/internal/report"
)

const updateTimeoutSec = 60

// client is the slice of tgbotapi.BotAPI the bot uses, split out so tests can
// drive the update loop without the network.
type client interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
}

// Bot answers "go" in the configured chat with the current positions report.
// Messages from any other chat are ignored.
type Bot struct {
	client client
	chatID int64
	source positions.Source
	logger *slog.Logger
	nowFn  func() time.Time
}

// New connects to the Telegram API and returns a ready bot.
func New(token string, chatID int64, source positions.Source, logger *slog.Logger) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("connect telegram bot: %w", err)
	}
	logger.Info("telegram bot authorized", "username", api.Self.UserName)
	return newWithClient(api, chatID, source, logger), nil
}

func newWithClient(c client, chatID int64, source positions.Source, logger *slog.Logger) *Bot {
	return &Bot{
		client: c,
		chatID: chatID,
		source: source,
		logger: logger.With("component", "telegram"),
		nowFn:  time.Now,
	}
}

// Run announces startup and processes updates until ctx is cancelled.
func (b *Bot) Run(ctx context.Context) error {
	if err := b.SendHTML(ctx, report.Startup(len(b.source.Whales()))); err != nil {
		b.logger.Warn("startup announcement failed", "error", err)
	}

	updateCfg := tgbotapi.NewUpdate(0)
	updateCfg.Timeout = updateTimeoutSec
	updates := b.client.GetUpdatesChan(updateCfg)

	for {
		select {
		case <-ctx.Done():
			b.client.StopReceivingUpdates()
			b.logger.Info("telegram bot stopping")
			return ctx.Err()
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			b.handleUpdate(ctx, update)
		}
	}
}

func (b *Bot) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	msg := update.Message
	if msg == nil {
		return
	}
	if msg.Chat == nil || msg.Chat.ID != b.chatID {
		b.logger.Debug("ignoring message from foreign chat", "chat_id", chatIDOf(msg))
		return
	}

	switch strings.ToLower(strings.TrimSpace(msg.Text)) {
	case "go":
		metrics.TelegramCommandsTotal.WithLabelValues("go").Inc()
		b.handleGo(ctx)
	default:
		// Anything else in the chat is not for us.
	}
}

func chatIDOf(msg *tgbotapi.Message) int64 {
	if msg.Chat == nil {
		return 0
	}
	return msg.Chat.ID
}

// handleGo fetches the current state and replies with the rendered report,
// split into as many messages as needed.
func (b *Bot) handleGo(ctx context.Context) {
	b.sendTyping()

	all, err := b.source.Snapshot(ctx)
	if err != nil {
		b.logger.Error("position fetch for report failed", "error", err)
		if sendErr := b.SendHTML(ctx, "⚠️ Could not fetch positions right now, try again in a minute"); sendErr != nil {
			b.logger.Error("error reply failed", "error", sendErr)
		}
		return
	}

	text := report.Render(all, b.nowFn())
	for _, part := range report.Split(text, report.MaxMessageLen) {
		if err := b.SendHTML(ctx, part); err != nil {
			b.logger.Error("report send failed", "error", err)
			return
		}
	}
}

func (b *Bot) sendTyping() {
	action := tgbotapi.NewChatAction(b.chatID, tgbotapi.ChatTyping)
	if _, err := b.client.Request(action); err != nil {
		b.logger.Debug("typing action failed", "error", err)
	}
}

// SendHTML delivers one HTML-formatted message to the configured chat. It
// also backs the Telegram alert channel.
func (b *Bot) SendHTML(ctx context.Context, text string) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}

	msg := tgbotapi.NewMessage(b.chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	msg.DisableWebPagePreview = true

	if _, err := b.client.Send(msg); err != nil {
		metrics.TelegramSendErrors.Inc()
		return fmt.Errorf("send message: %w", err)
	}
	metrics.TelegramMessagesSent.Inc()
	return nil
}
