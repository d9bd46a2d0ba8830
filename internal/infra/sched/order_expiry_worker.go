package sched

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/zavul0nn/STEALTHNET-Admin-Panel-sub000/internal/domain/ports/repository"
	"github.com/zavul0nn/STEALTHNET-Admin-Panel-sub000/internal/infra/metrics"
)

// OrderExpiryWorker periodically sweeps stale pending orders into the
// terminal expired state, so an order that never hears back from its
// provider does not stay payable forever.
type OrderExpiryWorker struct {
	interval   time.Duration
	pendingTTL time.Duration
	orders     repository.OrderRepository
	log        *zerolog.Logger
}

func NewOrderExpiryWorker(interval, pendingTTL time.Duration, orders repository.OrderRepository, logger *zerolog.Logger) *OrderExpiryWorker {
	l := logger.With().Str("component", "OrderExpiryWorker").Logger()
	if interval <= 0 {
		interval = 10 * time.Minute
	}
	if pendingTTL <= 0 {
		pendingTTL = 24 * time.Hour
	}
	return &OrderExpiryWorker{interval: interval, pendingTTL: pendingTTL, orders: orders, log: &l}
}

func (w *OrderExpiryWorker) Run(ctx context.Context) error {
	w.log.Info().Dur("interval", w.interval).Dur("pending_ttl", w.pendingTTL).Msg("Starting order expiry worker")
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("Stopping order expiry worker")
			return ctx.Err()
		case <-ticker.C:
			cutoff := time.Now().Add(-w.pendingTTL)
			n, err := w.orders.ExpirePendingOlderThan(ctx, nil, cutoff)
			if err != nil {
				w.log.Error().Err(err).Msg("expiry sweep error")
				continue
			}
			if n > 0 {
				metrics.AddOrdersExpired(n)
				w.log.Info().Int64("count", n).Msg("pending orders expired")
			}
		}
	}
}
