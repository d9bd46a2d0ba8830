package adapter

import (
	"context"
	"time"

	"github.com/zavul0nn/STEALTHNET-Admin-Panel-sub000/internal/domain/model"
)

// EntitlementPatch describes the conditional write pushed to the VPN
// control plane after a successful settlement.
type EntitlementPatch struct {
	ExternalID string
	ExpiresAt  time.Time
	SquadIDs   []string
	// nil = leave the limit untouched.
	TrafficLimitBytes *int64
	// Control-plane strategy; settlements always use "NO_RESET" so a
	// limit bump never zeroes the user's consumed-traffic counter.
	TrafficLimitStrategy string
}

// EntitlementClient is the hex port for the external VPN control plane.
// The engine reads, computes, and patches; it never owns this record.
type EntitlementClient interface {
	Get(ctx context.Context, externalID string) (model.Entitlement, error)
	Patch(ctx context.Context, patch EntitlementPatch) error
}

// EntitlementCache holds advisory snapshots in front of the control
// plane. Settlement invalidates; reads repopulate. A nil entitlement
// with a nil error is a miss.
type EntitlementCache interface {
	Store(ctx context.Context, ent model.Entitlement) error
	Get(ctx context.Context, externalID string) (*model.Entitlement, error)
	Invalidate(ctx context.Context, externalID string) error
}
