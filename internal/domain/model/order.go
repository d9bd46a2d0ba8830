package model

import (
	"fmt"
	"time"
)

type OrderStatus string

const (
	OrderStatusPending OrderStatus = "pending" // invoice created on provider side; awaiting webhook
	OrderStatusPaid    OrderStatus = "paid"    // settled: entitlement extended, promo consumed
	OrderStatusExpired OrderStatus = "expired" // swept: no successful webhook before the pending TTL
)

type Provider string

const (
	ProviderYooKassa   Provider = "yookassa"
	ProviderHeleket    Provider = "heleket"
	ProviderCrystalPay Provider = "crystalpay"
	ProviderPlatega    Provider = "platega"
	ProviderMulenPay   Provider = "mulenpay"
	ProviderRobokassa  Provider = "robokassa"
	ProviderFreeKassa  Provider = "freekassa"
	ProviderMonobank   Provider = "monobank"
)

// PaymentOrder records one purchase attempt. Amount and currency are
// computed once at creation and never recomputed; the only mutation the
// engine performs afterwards is the pending→paid/expired transition.
type PaymentOrder struct {
	ID          string // "u{user}-t{tariff}-{unix}"
	UserID      string // UUID
	TariffID    string // UUID
	Provider    Provider
	ProviderRef string // provider-assigned invoice/transaction id
	Amount      int64  // minor units (kopecks, cents)
	Currency    Currency
	PromoCodeID *string // set when a percent promo was applied at checkout
	Status      OrderStatus
	CreatedAt   time.Time
	PaidAt      *time.Time
	// Telegram message shown to the buyer at checkout; edited on success.
	TelegramMessageID *int
}

// NewOrderID builds the deterministic order id used to correlate
// webhooks from providers that echo our id instead of their own.
func NewOrderID(userID, tariffID string, now time.Time) string {
	return fmt.Sprintf("u%s-t%s-%d", userID, tariffID, now.Unix())
}
