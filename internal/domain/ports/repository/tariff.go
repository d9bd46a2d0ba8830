package repository

import (
	"context"

	"github.com/zavul0nn/STEALTHNET-Admin-Panel-sub000/internal/domain/model"
)

// TariffRepository is read-only here: the admin console owns writes.
type TariffRepository interface {
	FindByID(ctx context.Context, tx Tx, id string) (*model.Tariff, error)
	ListActive(ctx context.Context, tx Tx) ([]*model.Tariff, error)
}
