// File: internal/usecase/status_uc.go
package usecase

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/zavul0nn/STEALTHNET-Admin-Panel-sub000/internal/domain/model"
	"github.com/zavul0nn/STEALTHNET-Admin-Panel-sub000/internal/domain/ports/adapter"
	"github.com/zavul0nn/STEALTHNET-Admin-Panel-sub000/internal/domain/ports/repository"
	"github.com/zavul0nn/STEALTHNET-Admin-Panel-sub000/internal/infra/metrics"
)

// Compile-time check
var _ StatusUseCase = (*statusUC)(nil)

type StatusUseCase interface {
	// Subscription returns the user's current entitlement: the cached
	// snapshot when one exists, the control plane otherwise.
	Subscription(ctx context.Context, userID string) (*model.Entitlement, error)
}

type statusUC struct {
	users   repository.UserRepository
	entitle adapter.EntitlementClient
	cache   adapter.EntitlementCache
	log     *zerolog.Logger
}

func NewStatusUseCase(
	users repository.UserRepository,
	entitle adapter.EntitlementClient,
	cache adapter.EntitlementCache,
	logger *zerolog.Logger,
) *statusUC {
	l := logger.With().Str("component", "StatusUC").Logger()
	return &statusUC{users: users, entitle: entitle, cache: cache, log: &l}
}

// Subscription is a read-through: settlement invalidates the snapshot,
// the first status query after a sale repopulates it. The snapshot is
// advisory only; nothing here ever writes to the control plane.
func (u *statusUC) Subscription(ctx context.Context, userID string) (*model.Entitlement, error) {
	user, err := u.users.FindByID(ctx, nil, userID)
	if err != nil {
		return nil, err
	}

	if cached, err := u.cache.Get(ctx, user.RemnawaveUUID); err == nil && cached != nil {
		return cached, nil
	}

	ent, err := u.entitle.Get(ctx, user.RemnawaveUUID)
	if err != nil {
		return nil, err
	}
	if err := u.cache.Store(ctx, ent); err != nil {
		u.log.Warn().Err(err).Str("user_id", userID).Msg("entitlement snapshot store failed")
	}
	metrics.IncCacheOp("entitlement", "fill")
	return &ent, nil
}
