// Package telegram connects the duplicate detector to the Telegram Bot API.
// It owns the long-polling loop, the webhook registration gate, and the
// translation of raw updates into inbound messages for the detector.
package telegram

import (
	"context"
	"strconv"
	"strings"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog/log"

	"github.com/dupewatch/go-dupewatch/internal/config"
	"github.com/dupewatch/go-dupewatch/internal/services"
	"github.com/dupewatch/go-dupewatch/internal/sysutil"
)

// Detector decides whether an inbound message is a repeat and,
// if so, produces the report to send back.
type Detector interface {
	Process(ctx context.Context, msg services.InboundMessage) (string, bool)
}

// botClient is the subset of *tgbotapi.BotAPI the service depends on.
type botClient interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	GetUpdatesChan(cfg tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
}

// BotService receives Telegram updates, feeds them to the detector,
// and replies with a duplicate report when one is produced.
type BotService struct {
	api      botClient
	detector Detector
	cfg      config.TelegramConfig

	readyMu sync.Mutex
	ready   bool
}

// NewBotService authenticates against the Bot API and returns a service
// wired to the given detector.
func NewBotService(detector Detector, cfg config.TelegramConfig) (*BotService, error) {
	bot, err := tgbotapi.NewBotAPI(cfg.BotToken)
	if err != nil {
		return nil, err
	}
	bot.Debug = false
	log.Info().Str("account", bot.Self.UserName).Msg("authorized on Telegram")

	return &BotService{api: bot, detector: detector, cfg: cfg}, nil
}

// Token returns the bot token used to authenticate webhook calls.
func (s *BotService) Token() string { return s.cfg.BotToken }

// EnsureReady performs one-time webhook registration. The first caller pays
// the cost; concurrent callers block until it finishes. A failed attempt
// leaves the service not ready so a later call can retry.
func (s *BotService) EnsureReady(ctx context.Context) error {
	s.readyMu.Lock()
	defer s.readyMu.Unlock()

	if s.ready {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	wh, err := tgbotapi.NewWebhook(s.cfg.WebhookURL + "/webhook/" + s.cfg.BotToken)
	if err != nil {
		return err
	}
	if _, err := s.api.Request(wh); err != nil {
		return err
	}

	s.ready = true
	return nil
}

// StartWebhook registers the webhook with Telegram at deployment start.
// Telegram only delivers updates after setWebhook succeeds, so this must
// run before any POST can arrive. A failure is logged rather than fatal:
// the webhook handler calls EnsureReady again and retries registration
// on the first incoming request.
func (s *BotService) StartWebhook(ctx context.Context) {
	if err := s.EnsureReady(ctx); err != nil {
		log.Warn().Err(err).Msg("webhook registration failed, will retry on first request")
		return
	}
	log.Info().Str("url", s.cfg.WebhookURL).Msg("webhook registered")
}

// Ready reports whether webhook registration has completed.
func (s *BotService) Ready() bool {
	s.readyMu.Lock()
	defer s.readyMu.Unlock()
	return s.ready
}

// Run starts the long-polling loop and blocks until ctx is cancelled.
// Any webhook left over from a previous deployment is removed first,
// otherwise getUpdates is rejected by the API. Updates queued while the
// bot was down are dropped: stale reposts are better missed than answered
// minutes late.
func (s *BotService) Run(ctx context.Context) {
	if _, err := s.api.Request(tgbotapi.DeleteWebhookConfig{DropPendingUpdates: true}); err != nil {
		log.Warn().Err(err).Msg("removing stale webhook failed")
	}

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := s.api.GetUpdatesChan(u)

	log.Info().Msg("long polling for updates")
	for {
		select {
		case <-ctx.Done():
			s.api.StopReceivingUpdates()
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			s.HandleUpdate(ctx, update)
		}
	}
}

// HandleUpdate processes a single update. It is shared by the polling loop
// and the webhook handler. Updates that are not plain text messages are
// ignored, as are bot commands.
func (s *BotService) HandleUpdate(ctx context.Context, update tgbotapi.Update) {
	msg := update.Message
	if msg == nil || msg.Text == "" || msg.IsCommand() {
		return
	}

	inbound := services.InboundMessage{
		ChatID:     msg.Chat.ID,
		Text:       msg.Text,
		ReceivedAt: time.Unix(int64(msg.Date), 0).UTC(),
	}
	if msg.From != nil {
		inbound.SenderID = msg.From.ID
		inbound.SenderName = senderName(msg.From)
	}

	report, dup := s.detector.Process(ctx, inbound)
	if !dup {
		return
	}

	reply := tgbotapi.NewMessage(msg.Chat.ID, report)
	reply.ReplyToMessageID = msg.MessageID
	if _, err := s.api.Send(reply); err != nil {
		log.Warn().Err(err).Int64("chat_id", msg.Chat.ID).Msg("sending duplicate report failed")
	}
}

// senderName builds a display name from whatever profile fields are set,
// falling back to the numeric ID so the report never shows a blank sender.
func senderName(from *tgbotapi.User) string {
	name := sysutil.FirstNonEmpty(from.FirstName, from.UserName, strconv.FormatInt(from.ID, 10))
	if from.LastName != "" && from.FirstName != "" {
		name = strings.TrimSpace(name + " " + from.LastName)
	}
	return name
}
