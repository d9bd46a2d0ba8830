package repository

import (
	"context"

	"github.com/zavul0nn/STEALTHNET-Admin-Panel-sub000/internal/domain/model"
)

type PromoRepository interface {
	// FindByCode previews a promo for checkout pricing without consuming it.
	FindByCode(ctx context.Context, tx Tx, code string) (*model.PromoCode, error)
	FindByID(ctx context.Context, tx Tx, id string) (*model.PromoCode, error)

	// ConsumeIfAvailable atomically decrements uses_left, refusing to go
	// below zero. false with nil error means the code was already spent.
	// Only the settlement path calls this, behind the order's
	// pending→paid gate, so a code is consumed at most once per order.
	ConsumeIfAvailable(ctx context.Context, tx Tx, id string) (bool, error)
}
