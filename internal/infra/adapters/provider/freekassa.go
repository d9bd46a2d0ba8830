// File: internal/infra/adapters/provider/freekassa.go
package provider

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/zavul0nn/STEALTHNET-Admin-Panel-sub000/internal/domain"
	"github.com/zavul0nn/STEALTHNET-Admin-Panel-sub000/internal/domain/model"
	"github.com/zavul0nn/STEALTHNET-Admin-Panel-sub000/internal/domain/ports/adapter"
)

var _ adapter.PaymentProvider = (*FreeKassa)(nil)

// FreeKassa is link-based like Robokassa, with two secret words: one
// signs the outbound payment link, the other the inbound notification.
// It echoes our order id back verbatim, so that is the provider ref too.
type FreeKassa struct {
	merchantID string
	secret1    string
	secret2    string
	payURL     string
}

func NewFreeKassa(merchantID, secret1, secret2 string) (*FreeKassa, error) {
	if merchantID == "" || secret1 == "" || secret2 == "" {
		return nil, errors.New("freekassa: merchant_id, secret1 and secret2 required")
	}
	return &FreeKassa{
		merchantID: merchantID,
		secret1:    secret1,
		secret2:    secret2,
		payURL:     "https://pay.fk.money/",
	}, nil
}

func (f *FreeKassa) Name() model.Provider { return model.ProviderFreeKassa }

func (f *FreeKassa) CreateInvoice(_ context.Context, inv adapter.InvoiceRequest) (adapter.Invoice, error) {
	if inv.Currency != model.CurrencyRUB {
		return adapter.Invoice{}, fmt.Errorf("%w: freekassa settles RUB only", domain.ErrUnsupportedCurrency)
	}
	amount := formatMajor(inv.Amount)
	sig := md5Hex(fmt.Sprintf("%s:%s:%s:%s:%s", f.merchantID, amount, f.secret1, inv.Currency, inv.OrderID))

	q := url.Values{}
	q.Set("m", f.merchantID)
	q.Set("oa", amount)
	q.Set("currency", string(inv.Currency))
	q.Set("o", inv.OrderID)
	q.Set("s", sig)

	return adapter.Invoice{
		PaymentURL:  f.payURL + "?" + q.Encode(),
		ProviderRef: inv.OrderID,
	}, nil
}

func (f *FreeKassa) ParseWebhook(body []byte, _ http.Header) (adapter.WebhookEvent, error) {
	form, err := url.ParseQuery(string(body))
	if err != nil {
		return adapter.WebhookEvent{}, fmt.Errorf("%w: %v", domain.ErrBadWebhook, err)
	}
	merchant := form.Get("MERCHANT_ID")
	amount := form.Get("AMOUNT")
	orderID := form.Get("MERCHANT_ORDER_ID")
	got := form.Get("SIGN")
	if merchant == "" || amount == "" || orderID == "" || got == "" {
		return adapter.WebhookEvent{}, fmt.Errorf("%w: missing notification fields", domain.ErrBadWebhook)
	}
	want := md5Hex(fmt.Sprintf("%s:%s:%s:%s", merchant, amount, f.secret2, orderID))
	if !strings.EqualFold(got, want) {
		return adapter.WebhookEvent{}, fmt.Errorf("%w: sign mismatch", domain.ErrBadWebhook)
	}
	// FreeKassa only notifies on success.
	return adapter.WebhookEvent{
		OrderID:     orderID,
		ProviderRef: orderID,
		RawStatus:   "paid",
		Paid:        true,
	}, nil
}

// FreeKassa keeps redelivering until it reads the literal "YES".
func (f *FreeKassa) AckBody(_ adapter.WebhookEvent) string { return "YES" }
