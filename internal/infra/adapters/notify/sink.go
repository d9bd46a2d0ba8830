// File: internal/infra/adapters/notify/sink.go
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"

	"github.com/zavul0nn/STEALTHNET-Admin-Panel-sub000/internal/domain/ports/adapter"
	red "github.com/zavul0nn/STEALTHNET-Admin-Panel-sub000/internal/infra/redis"
)

var _ adapter.NotificationSink = (*Sink)(nil)

// Sink mirrors a settled order outward: drops the cached entitlement
// snapshot, pokes the companion bot's sync endpoint, and tells the
// buyer on Telegram. Everything here is advisory; settlement never
// waits on or rolls back for any of it.
type Sink struct {
	cache   *red.EntitlementCache
	syncURL string
	client  *http.Client
	bot     *tgbotapi.BotAPI
	log     *zerolog.Logger
}

func NewSink(cache *red.EntitlementCache, syncURL string, timeout time.Duration, botToken string, logger *zerolog.Logger) (*Sink, error) {
	sinkLog := logger.With().Str("component", "NotifySink").Logger()
	s := &Sink{
		cache:   cache,
		syncURL: syncURL,
		client:  &http.Client{Timeout: timeout},
		log:     &sinkLog,
	}
	if botToken != "" {
		bot, err := tgbotapi.NewBotAPI(botToken)
		if err != nil {
			return nil, fmt.Errorf("telegram bot: %w", err)
		}
		s.bot = bot
	}
	return s, nil
}

func (s *Sink) SettlementCompleted(ctx context.Context, note adapter.SettlementNote) error {
	var errs []error

	if err := s.cache.Invalidate(ctx, note.User.RemnawaveUUID); err != nil {
		s.log.Warn().Err(err).Str("order_id", note.Order.ID).Msg("entitlement cache invalidation failed")
		errs = append(errs, err)
	}

	if s.syncURL != "" {
		if err := s.postBotSync(ctx, note); err != nil {
			s.log.Warn().Err(err).Str("order_id", note.Order.ID).Msg("bot sync push failed")
			errs = append(errs, err)
		}
	}

	if s.bot != nil && note.User.TelegramID != nil {
		if err := s.tellBuyer(note); err != nil {
			s.log.Warn().Err(err).Str("order_id", note.Order.ID).Msg("buyer notification failed")
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}

func (s *Sink) postBotSync(ctx context.Context, note adapter.SettlementNote) error {
	payload := map[string]any{
		"user_uuid":  note.User.RemnawaveUUID,
		"order_id":   note.Order.ID,
		"expires_at": note.Entitlement.ExpiresAt.UTC().Format(time.RFC3339),
	}
	b, _ := json.Marshal(payload)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.syncURL, bytes.NewReader(b))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("bot sync http %d", resp.StatusCode)
	}
	return nil
}

func (s *Sink) tellBuyer(note adapter.SettlementNote) error {
	text := fmt.Sprintf(
		"Оплата получена. Подписка «%s» активна до %s.",
		note.Tariff.Name,
		note.Entitlement.ExpiresAt.Format("02.01.2006"),
	)
	chatID := *note.User.TelegramID

	// Edit the "awaiting payment" message when we know it, else send fresh.
	if note.Order.TelegramMessageID != nil {
		edit := tgbotapi.NewEditMessageText(chatID, *note.Order.TelegramMessageID, text)
		if _, err := s.bot.Send(edit); err == nil {
			return nil
		}
	}
	_, err := s.bot.Send(tgbotapi.NewMessage(chatID, text))
	return err
}
