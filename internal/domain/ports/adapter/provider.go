package adapter

import (
	"context"
	"net/http"

	"github.com/zavul0nn/STEALTHNET-Admin-Panel-sub000/internal/domain/model"
)

// InvoiceRequest is the provider-agnostic "create a remote invoice" input.
// Amount is in minor units of Currency.
type InvoiceRequest struct {
	OrderID     string
	Amount      int64
	Currency    model.Currency
	ReturnURL   string
	CallbackURL string
	Description string
}

// Invoice is what the caller needs back: where to send the user and how
// the provider will refer to this invoice in callbacks.
type Invoice struct {
	PaymentURL  string
	ProviderRef string
}

// WebhookEvent is the normalized form of one provider callback. Exactly
// one of OrderID / ProviderRef may be empty: providers differ on which
// identifier they echo back.
type WebhookEvent struct {
	OrderID     string
	ProviderRef string
	RawStatus   string
	Paid        bool
}

// PaymentProvider is the hex port for payment providers. One
// implementation per provider; the engine selects them through a
// registry and never branches on provider identity.
type PaymentProvider interface {
	Name() model.Provider

	// CreateInvoice creates the remote invoice. Implementations must
	// reject a currency they cannot settle (domain.ErrUnsupportedCurrency)
	// before any remote call is made.
	CreateInvoice(ctx context.Context, inv InvoiceRequest) (Invoice, error)

	// ParseWebhook validates (signature, shape) and normalizes a raw
	// callback body. A payload that cannot be verified is an error; a
	// well-formed non-success callback is returned with Paid=false.
	ParseWebhook(body []byte, header http.Header) (WebhookEvent, error)

	// AckBody is the acknowledgement body this provider expects on a
	// handled callback ("OK", "YES", "OK{InvId}", ...).
	AckBody(ev WebhookEvent) string
}
