package model

import "time"

// Entitlement is the control-plane-owned record of what a user is
// allowed. The engine holds only an advisory read of it; the sole write
// path is the control plane's patch API.
type Entitlement struct {
	ExternalID        string    `json:"uuid"`
	ExpiresAt         time.Time `json:"expireAt"`
	SquadIDs          []string  `json:"activeInternalSquads"`
	TrafficLimitBytes int64     `json:"trafficLimitBytes"`
}

// NextExpiry extends an active entitlement from its current expiry and
// restarts an already-expired one from now, so paid time is never lost
// and lapsed time is never credited.
func NextExpiry(now, current time.Time, durationDays int) time.Time {
	base := now
	if current.After(now) {
		base = current
	}
	return base.AddDate(0, 0, durationDays)
}
