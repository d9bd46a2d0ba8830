package adapter

import (
	"context"

	"github.com/zavul0nn/STEALTHNET-Admin-Panel-sub000/internal/domain/model"
)

// SettlementNote carries everything the sink needs to mirror a settled
// order outward: cache invalidation, bot sync, buyer message.
type SettlementNote struct {
	Order       *model.PaymentOrder
	User        *model.User
	Tariff      *model.Tariff
	Entitlement model.Entitlement // the post-patch state
}

// NotificationSink is best-effort and advisory: it runs after the
// settlement transaction commits and its errors never roll anything back.
type NotificationSink interface {
	SettlementCompleted(ctx context.Context, note SettlementNote) error
}
