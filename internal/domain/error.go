package domain

import "errors"

var (
	// Common domain errors
	ErrNotFound           = errors.New("entity not found")
	ErrAlreadyExists      = errors.New("entity already exists")
	ErrInvalidArgument    = errors.New("invalid argument")
	ErrOperationFailed    = errors.New("operation failed")
	ErrInvalidExecContext = errors.New("invalid exec context")
	ErrReadDatabaseRow    = errors.New("failed to read database row")

	// Checkout errors (surfaced to the caller, HTTP 4xx)
	ErrTariffNotFound      = errors.New("tariff not found")
	ErrUnsupportedCurrency = errors.New("currency not supported by provider")
	ErrPromoNotFound       = errors.New("promo code not found")
	ErrPromoExhausted      = errors.New("promo code has no uses left")
	ErrPromoNotPayable     = errors.New("promo code grants days, not a discount")
	ErrUnknownProvider     = errors.New("unknown payment provider")

	// Settlement errors
	ErrBadWebhook      = errors.New("malformed or unverifiable webhook payload")
	ErrEntitlementSync = errors.New("entitlement sync failed")
)
