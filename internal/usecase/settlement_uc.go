// File: internal/usecase/settlement_uc.go
package usecase

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/rs/zerolog"

	"github.com/zavul0nn/STEALTHNET-Admin-Panel-sub000/internal/domain"
	"github.com/zavul0nn/STEALTHNET-Admin-Panel-sub000/internal/domain/model"
	"github.com/zavul0nn/STEALTHNET-Admin-Panel-sub000/internal/domain/ports/adapter"
	"github.com/zavul0nn/STEALTHNET-Admin-Panel-sub000/internal/domain/ports/repository"
	"github.com/zavul0nn/STEALTHNET-Admin-Panel-sub000/internal/infra/metrics"
)

type SettleOutcome string

const (
	OutcomeSettled      SettleOutcome = "settled"       // order paid, entitlement extended
	OutcomeDuplicate    SettleOutcome = "duplicate"     // order already paid or expired; no-op
	OutcomeIgnored      SettleOutcome = "ignored"       // non-success callback; no-op
	OutcomeUnknownOrder SettleOutcome = "unknown_order" // no matching order; no-op
)

// SettleResult tells the HTTP layer how to answer the provider.
type SettleResult struct {
	Outcome SettleOutcome
	AckBody string
}

// Compile-time check
var _ SettlementUseCase = (*settlementUC)(nil)

type SettlementUseCase interface {
	// Settle processes one raw provider callback end to end. A returned
	// error wrapping domain.ErrBadWebhook means the payload could not be
	// parsed or verified; domain.ErrEntitlementSync means the order is
	// still pending and the provider should redeliver.
	Settle(ctx context.Context, providerName model.Provider, body []byte, header http.Header) (SettleResult, error)
}

type settlementUC struct {
	orders    repository.OrderRepository
	tariffs   repository.TariffRepository
	users     repository.UserRepository
	promos    repository.PromoRepository
	providers ProviderResolver
	entitle   adapter.EntitlementClient
	sink      adapter.NotificationSink
	tm        repository.TransactionManager
	log       *zerolog.Logger
}

func NewSettlementUseCase(
	orders repository.OrderRepository,
	tariffs repository.TariffRepository,
	users repository.UserRepository,
	promos repository.PromoRepository,
	providers ProviderResolver,
	entitle adapter.EntitlementClient,
	sink adapter.NotificationSink,
	tm repository.TransactionManager,
	logger *zerolog.Logger,
) *settlementUC {
	l := logger.With().Str("component", "SettlementUC").Logger()
	return &settlementUC{
		orders:    orders,
		tariffs:   tariffs,
		users:     users,
		promos:    promos,
		providers: providers,
		entitle:   entitle,
		sink:      sink,
		tm:        tm,
		log:       &l,
	}
}

func (u *settlementUC) Settle(ctx context.Context, providerName model.Provider, body []byte, header http.Header) (SettleResult, error) {
	prov, err := u.providers.Get(providerName)
	if err != nil {
		return SettleResult{}, err
	}

	ev, err := prov.ParseWebhook(body, header)
	if err != nil {
		metrics.IncWebhookParseFailure(string(providerName))
		u.log.Warn().Err(err).Str("provider", string(providerName)).Msg("webhook rejected")
		return SettleResult{}, fmt.Errorf("%w: %v", domain.ErrBadWebhook, err)
	}

	// Non-success callbacks (pending, canceled, failed) never mutate state.
	if !ev.Paid {
		u.log.Debug().Str("provider", string(providerName)).Str("status", ev.RawStatus).Msg("non-success callback ignored")
		metrics.IncSettlement(string(providerName), string(OutcomeIgnored))
		return SettleResult{Outcome: OutcomeIgnored, AckBody: prov.AckBody(ev)}, nil
	}

	outcome := OutcomeSettled
	var note adapter.SettlementNote

	err = u.tm.WithTx(ctx, pgx.TxOptions{}, func(ctx context.Context, tx repository.Tx) error {
		order, err := u.locateOrder(ctx, tx, providerName, ev)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				outcome = OutcomeUnknownOrder
				return nil
			}
			return err
		}

		// Idempotency gate: the conditional transition serializes
		// concurrent deliveries. Zero rows means someone else already
		// settled (or the sweep expired) this order.
		now := time.Now()
		won, err := u.orders.MarkPaidIfPending(ctx, tx, order.ID, now)
		if err != nil {
			return err
		}
		if !won {
			u.log.Info().Str("order_id", order.ID).Str("prior_status", string(order.Status)).Msg("duplicate delivery ignored")
			outcome = OutcomeDuplicate
			return nil
		}

		user, err := u.users.FindByID(ctx, tx, order.UserID)
		if err != nil {
			return err
		}
		tariff, err := u.tariffs.FindByID(ctx, tx, order.TariffID)
		if err != nil {
			return err
		}

		ent, err := u.entitle.Get(ctx, user.RemnawaveUUID)
		if err != nil {
			return fmt.Errorf("%w: %v", domain.ErrEntitlementSync, err)
		}

		newExpiry := model.NextExpiry(now, ent.ExpiresAt, tariff.DurationDays)
		patch := adapter.EntitlementPatch{
			ExternalID: user.RemnawaveUUID,
			ExpiresAt:  newExpiry,
			SquadIDs:   u.squadsFor(ctx, tx, order, tariff, ent),
		}
		if tariff.TrafficLimitBytes > 0 {
			limit := tariff.TrafficLimitBytes
			patch.TrafficLimitBytes = &limit
			patch.TrafficLimitStrategy = "NO_RESET"
		}

		// A patch failure aborts the transaction: the paid transition
		// rolls back, the promo stays untouched, and the provider gets
		// a non-200 so it can redeliver.
		start := time.Now()
		if err := u.entitle.Patch(ctx, patch); err != nil {
			return fmt.Errorf("%w: %v", domain.ErrEntitlementSync, err)
		}
		metrics.ObserveEntitlementPatch(time.Since(start).Seconds())

		if order.PromoCodeID != nil {
			consumed, err := u.promos.ConsumeIfAvailable(ctx, tx, *order.PromoCodeID)
			if err != nil {
				return err
			}
			if consumed {
				metrics.IncPromoConsumed()
			} else {
				// Admin raced the last use away; the sale still stands.
				u.log.Warn().Str("order_id", order.ID).Str("promo_id", *order.PromoCodeID).Msg("promo exhausted before consumption")
			}
		}

		ent.ExpiresAt = newExpiry
		ent.SquadIDs = patch.SquadIDs
		order.Status = model.OrderStatusPaid
		order.PaidAt = &now
		note = adapter.SettlementNote{Order: order, User: user, Tariff: tariff, Entitlement: ent}
		return nil
	})
	if err != nil {
		metrics.IncSettlement(string(providerName), "sync_failed")
		return SettleResult{}, err
	}

	metrics.IncSettlement(string(providerName), string(outcome))
	if outcome == OutcomeSettled {
		metrics.IncOrder(string(providerName), "paid")
		metrics.AddPaymentRevenue(string(note.Order.Currency), note.Order.Amount)
		u.log.Info().Str("order_id", note.Order.ID).Time("new_expiry", note.Entitlement.ExpiresAt).Msg("order settled")
		u.notify(note)
	}
	return SettleResult{Outcome: outcome, AckBody: prov.AckBody(ev)}, nil
}

// locateOrder correlates a webhook with an order: by the provider's own
// reference first, falling back to our order id for providers that echo it.
func (u *settlementUC) locateOrder(ctx context.Context, tx repository.Tx, providerName model.Provider, ev adapter.WebhookEvent) (*model.PaymentOrder, error) {
	if ev.ProviderRef != "" {
		order, err := u.orders.FindByProviderRef(ctx, tx, providerName, ev.ProviderRef)
		if err == nil {
			return order, nil
		}
		if !errors.Is(err, domain.ErrNotFound) {
			return nil, err
		}
	}
	if ev.OrderID != "" {
		return u.orders.FindByID(ctx, tx, ev.OrderID)
	}
	return nil, domain.ErrNotFound
}

// squadsFor picks the squads written on settlement: the tariff's, else
// the promo's pinned squad, else whatever the user already has.
func (u *settlementUC) squadsFor(ctx context.Context, tx repository.Tx, order *model.PaymentOrder, tariff *model.Tariff, ent model.Entitlement) []string {
	if len(tariff.SquadIDs) > 0 {
		return tariff.SquadIDs
	}
	if order.PromoCodeID != nil {
		if promo, err := u.promos.FindByID(ctx, tx, *order.PromoCodeID); err == nil && promo.SquadID != nil {
			return []string{*promo.SquadID}
		}
	}
	return ent.SquadIDs
}

// notify runs the sink detached: settlement is committed, the mirror is
// eventual and advisory.
func (u *settlementUC) notify(note adapter.SettlementNote) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := u.sink.SettlementCompleted(ctx, note); err != nil {
			u.log.Warn().Err(err).Str("order_id", note.Order.ID).Msg("notification sink reported errors")
		}
	}()
}
