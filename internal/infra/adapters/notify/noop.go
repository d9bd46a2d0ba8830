// File: internal/infra/adapters/notify/noop.go
package notify

import (
	"context"

	"github.com/zavul0nn/STEALTHNET-Admin-Panel-sub000/internal/domain/ports/adapter"
)

var _ adapter.NotificationSink = Noop{}

// Noop discards settlement notifications. Used when bot sync is disabled.
type Noop struct{}

func (Noop) SettlementCompleted(context.Context, adapter.SettlementNote) error { return nil }
