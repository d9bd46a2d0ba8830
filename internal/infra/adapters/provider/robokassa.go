// File: internal/infra/adapters/provider/robokassa.go
package provider

import (
	"context"
	"errors"
	"fmt"
	"hash/crc32"
	"net/http"
	"net/url"
	"strings"

	"github.com/zavul0nn/STEALTHNET-Admin-Panel-sub000/internal/domain"
	"github.com/zavul0nn/STEALTHNET-Admin-Panel-sub000/internal/domain/model"
	"github.com/zavul0nn/STEALTHNET-Admin-Panel-sub000/internal/domain/ports/adapter"
)

var _ adapter.PaymentProvider = (*Robokassa)(nil)

// Robokassa has no invoice API: the payment URL itself carries an md5
// signature over password1, and the ResultURL form post carries one
// over password2. InvId must be numeric, so the order id travels in the
// Shp_order custom parameter (which both signatures must include).
type Robokassa struct {
	login     string
	password1 string
	password2 string
	payURL    string
}

func NewRobokassa(login, password1, password2 string) (*Robokassa, error) {
	if login == "" || password1 == "" || password2 == "" {
		return nil, errors.New("robokassa: login, password1 and password2 required")
	}
	return &Robokassa{
		login:     login,
		password1: password1,
		password2: password2,
		payURL:    "https://auth.robokassa.ru/Merchant/Index.aspx",
	}, nil
}

func (r *Robokassa) Name() model.Provider { return model.ProviderRobokassa }

func invID(orderID string) uint32 { return crc32.ChecksumIEEE([]byte(orderID)) }

func (r *Robokassa) CreateInvoice(_ context.Context, inv adapter.InvoiceRequest) (adapter.Invoice, error) {
	if inv.Currency != model.CurrencyRUB {
		return adapter.Invoice{}, fmt.Errorf("%w: robokassa settles RUB only", domain.ErrUnsupportedCurrency)
	}
	outSum := formatMajor(inv.Amount)
	id := invID(inv.OrderID)
	shp := "Shp_order=" + inv.OrderID
	sig := md5Hex(fmt.Sprintf("%s:%s:%d:%s:%s", r.login, outSum, id, r.password1, shp))

	q := url.Values{}
	q.Set("MerchantLogin", r.login)
	q.Set("OutSum", outSum)
	q.Set("InvId", fmt.Sprintf("%d", id))
	q.Set("Description", inv.Description)
	q.Set("Shp_order", inv.OrderID)
	q.Set("SignatureValue", sig)

	return adapter.Invoice{
		PaymentURL:  r.payURL + "?" + q.Encode(),
		ProviderRef: fmt.Sprintf("%d", id),
	}, nil
}

// ParseWebhook validates a ResultURL form post. Robokassa only posts on
// successful payment, so a verified signature means paid.
func (r *Robokassa) ParseWebhook(body []byte, _ http.Header) (adapter.WebhookEvent, error) {
	form, err := url.ParseQuery(string(body))
	if err != nil {
		return adapter.WebhookEvent{}, fmt.Errorf("%w: %v", domain.ErrBadWebhook, err)
	}
	outSum := form.Get("OutSum")
	id := form.Get("InvId")
	orderID := form.Get("Shp_order")
	got := form.Get("SignatureValue")
	if outSum == "" || id == "" || got == "" {
		return adapter.WebhookEvent{}, fmt.Errorf("%w: missing OutSum/InvId/SignatureValue", domain.ErrBadWebhook)
	}
	shp := "Shp_order=" + orderID
	want := md5Hex(fmt.Sprintf("%s:%s:%s:%s", outSum, id, r.password2, shp))
	if !strings.EqualFold(got, want) {
		return adapter.WebhookEvent{}, fmt.Errorf("%w: signature mismatch", domain.ErrBadWebhook)
	}
	return adapter.WebhookEvent{
		OrderID:     orderID,
		ProviderRef: id,
		RawStatus:   "paid",
		Paid:        true,
	}, nil
}

// Robokassa requires the literal "OK{InvId}" answer or it keeps retrying.
func (r *Robokassa) AckBody(ev adapter.WebhookEvent) string { return "OK" + ev.ProviderRef }
