package model

import "time"

type User struct {
	ID                string // UUID
	Email             string
	RemnawaveUUID     string // external VPN control-plane id
	TelegramID        *int64
	PreferredCurrency Currency
	RegisteredAt      time.Time
}
