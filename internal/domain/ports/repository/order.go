package repository

import (
	"context"
	"time"

	"github.com/zavul0nn/STEALTHNET-Admin-Panel-sub000/internal/domain/model"
)

type OrderRepository interface {
	// Save inserts a new order. Orders are created pending and never
	// rewritten wholesale afterwards.
	Save(ctx context.Context, tx Tx, o *model.PaymentOrder) error
	FindByID(ctx context.Context, tx Tx, id string) (*model.PaymentOrder, error)
	// FindByProviderRef correlates an inbound webhook when the provider
	// echoes its own reference instead of our order id.
	FindByProviderRef(ctx context.Context, tx Tx, provider model.Provider, ref string) (*model.PaymentOrder, error)

	// MarkPaidIfPending performs the single conditional transition
	// pending→paid. false with nil error means the order was not
	// pending anymore: the caller must treat the delivery as a duplicate.
	MarkPaidIfPending(ctx context.Context, tx Tx, id string, paidAt time.Time) (bool, error)

	SetTelegramMessageID(ctx context.Context, tx Tx, id string, messageID int) error

	// ExpirePendingOlderThan sweeps stale pending orders into the
	// terminal expired state and reports how many rows moved.
	ExpirePendingOlderThan(ctx context.Context, tx Tx, cutoff time.Time) (int64, error)
}
